// services/push_service.go
package services

import (
	"fmt"
	"log"

	"github.com/project-catalyst/catalyst-loader/models"
)

// Store is the slice of the relational backend the push pipeline uses.
// Implemented by database.Store.
type Store interface {
	GetAllFundNumbers() ([]int, error)
	GetFundByNumber(number int) (models.Fund, error)
	InsertFunds(funds []models.Fund) error

	GetChallengesByFund(fundID int64) ([]models.Challenge, error)
	InsertChallenges(challenges []models.Challenge) error

	GetProposalsByFund(fundID int64) ([]models.Proposal, error)
	InsertProposals(proposals []models.Proposal) error

	GetAllAssessors() ([]models.Assessor, error)
	InsertAssessors(assessors []models.Assessor) error

	CountAssessmentsByFund(fundID int64) (int, error)
	InsertAssessments(assessments []models.Assessment) error
}

// SourceClient fetches the raw governance artifacts.
// Implemented by sources.Client.
type SourceClient interface {
	CheckFundDataAvailable(fundNumber int) (bool, error)
	FetchChallenges(fundNumber int) ([]models.RawChallenge, error)
	FetchProposals(fundNumber int) ([]models.RawProposal, error)
	FetchAssessments() ([]models.RawAssessment, error)
}

// PushService drives the per-fund pipeline:
// fund → challenges → proposals → assessors → assessments.
// The stages run strictly in that order because each stage resolves
// foreign keys against the store-assigned ids of the previous one; any
// fatal condition aborts the run at its stage, leaving already-inserted
// tables as they are.
type PushService struct {
	store   Store
	sources SourceClient
}

func NewPushService(store Store, sources SourceClient) *PushService {
	return &PushService{store: store, sources: sources}
}

// PushFundData runs the full pipeline for one fund number.
func (s *PushService) PushFundData(fundNumber int) error {
	log.Printf("=============================\n Service: pushFundData(%d)\n=============================\n", fundNumber)

	// Advisory pre-check: a scrape failure is only a warning, but a
	// definitive "no data folder" answer stops the run before it touches
	// the database.
	if available, err := s.sources.CheckFundDataAvailable(fundNumber); err != nil {
		log.Printf("WARN Service: could not check data availability for fund %d: %v\n", fundNumber, err)
	} else if !available {
		return fmt.Errorf("no voter-tool data folder published for fund %d", fundNumber)
	}

	fund, err := s.ensureFund(fundNumber)
	if err != nil {
		return fmt.Errorf("fund stage: %w", err)
	}

	challenges, err := s.ensureChallenges(fund)
	if err != nil {
		return fmt.Errorf("challenges stage: %w", err)
	}

	proposals, err := s.ensureProposals(fund, challenges)
	if err != nil {
		return fmt.Errorf("proposals stage: %w", err)
	}

	// The assessments CSV feeds both of the remaining stages; fetch once.
	rawAssessments, err := s.sources.FetchAssessments()
	if err != nil {
		return fmt.Errorf("assessors stage: %w", err)
	}
	if len(rawAssessments) == 0 {
		return fmt.Errorf("assessors stage: the assessments CSV holds no rows")
	}

	assessors, err := s.ensureAssessors(rawAssessments)
	if err != nil {
		return fmt.Errorf("assessors stage: %w", err)
	}

	if err := s.insertAssessments(fund, challenges, proposals, rawAssessments, assessors); err != nil {
		return fmt.Errorf("assessments stage: %w", err)
	}

	log.Printf("Service: pushFundData(%d) completed.\n", fundNumber)
	return nil
}

// ensureFund inserts the fund row unless its number already exists, then
// reads the row back so later stages have the store-assigned id.
func (s *PushService) ensureFund(fundNumber int) (models.Fund, error) {
	log.Println(">> TBL-funds:")

	numbers, err := s.store.GetAllFundNumbers()
	if err != nil {
		return models.Fund{}, err
	}

	exists := false
	for _, n := range numbers {
		if n == fundNumber {
			exists = true
			break
		}
	}

	if exists {
		log.Printf("Service: funds table already contains fund %d, skipping insert.\n", fundNumber)
	} else {
		fund := models.Fund{
			Number: fundNumber,
			Title:  fmt.Sprintf("Fund %d", fundNumber),
		}
		if err := s.store.InsertFunds([]models.Fund{fund}); err != nil {
			return models.Fund{}, err
		}
	}

	return s.store.GetFundByNumber(fundNumber)
}

// ensureChallenges loads the fund's challenges. Rows already stored for
// the fund short-circuit the fetch and insert; they are read back either
// way so the ids are available for proposal and assessment resolution.
func (s *PushService) ensureChallenges(fund models.Fund) ([]models.Challenge, error) {
	log.Println(">> TBL-challenges:")

	existing, err := s.store.GetChallengesByFund(fund.ID)
	if err != nil {
		return nil, err
	}
	if len(existing) > 0 {
		log.Printf("Service: challenges table already contains %d rows for fund %d, skipping insert.\n",
			len(existing), fund.Number)
		return existing, nil
	}

	raw, err := s.sources.FetchChallenges(fund.Number)
	if err != nil {
		return nil, err
	}

	rows := ReconcileChallenges(raw, fund)
	if err := s.store.InsertChallenges(rows); err != nil {
		return nil, err
	}

	challenges, err := s.store.GetChallengesByFund(fund.ID)
	if err != nil {
		return nil, err
	}
	if len(challenges) == 0 {
		return nil, fmt.Errorf("no challenges stored for fund %d after insert", fund.Number)
	}
	return challenges, nil
}

func (s *PushService) ensureProposals(fund models.Fund, challenges []models.Challenge) ([]models.Proposal, error) {
	log.Println(">> TBL-proposals:")

	existing, err := s.store.GetProposalsByFund(fund.ID)
	if err != nil {
		return nil, err
	}
	if len(existing) > 0 {
		log.Printf("Service: proposals table already contains %d rows for fund %d, skipping insert.\n",
			len(existing), fund.Number)
		return existing, nil
	}

	raw, err := s.sources.FetchProposals(fund.Number)
	if err != nil {
		return nil, err
	}

	rows, err := ReconcileProposals(raw, fund, challenges)
	if err != nil {
		return nil, err
	}
	if err := s.store.InsertProposals(rows); err != nil {
		return nil, err
	}

	proposals, err := s.store.GetProposalsByFund(fund.ID)
	if err != nil {
		return nil, err
	}
	if len(proposals) == 0 {
		return nil, fmt.Errorf("no proposals stored for fund %d after insert", fund.Number)
	}
	return proposals, nil
}

// ensureAssessors inserts the reviewer identities the CSV mentions that
// are not stored yet (anon_id is global across funds), then reads the
// full set back for assessment resolution.
func (s *PushService) ensureAssessors(rawAssessments []models.RawAssessment) ([]models.Assessor, error) {
	log.Println(">> TBL-assessors:")

	derived := ReconcileAssessors(rawAssessments)

	existing, err := s.store.GetAllAssessors()
	if err != nil {
		return nil, err
	}
	known := make(map[string]bool, len(existing))
	for _, a := range existing {
		known[a.AnonID] = true
	}

	var missing []models.Assessor
	for _, a := range derived {
		if !known[a.AnonID] {
			missing = append(missing, a)
		}
	}

	if len(missing) == 0 {
		log.Printf("Service: all %d assessors from the CSV are already stored.\n", len(derived))
	} else {
		if err := s.store.InsertAssessors(missing); err != nil {
			return nil, err
		}
	}

	return s.store.GetAllAssessors()
}

func (s *PushService) insertAssessments(
	fund models.Fund,
	challenges []models.Challenge,
	proposals []models.Proposal,
	rawAssessments []models.RawAssessment,
	assessors []models.Assessor,
) error {
	log.Println(">> TBL-assessments:")

	count, err := s.store.CountAssessmentsByFund(fund.ID)
	if err != nil {
		return err
	}
	if count > 0 {
		log.Printf("Service: assessments table already contains %d rows for fund %d, skipping insert.\n",
			count, fund.Number)
		return nil
	}

	rows, err := ReconcileAssessments(fund, challenges, proposals, rawAssessments, assessors)
	if err != nil {
		return err
	}
	return s.store.InsertAssessments(rows)
}
