// database/store.go
package database

import (
	"database/sql"
	"errors"
	"fmt"
	"log"

	"github.com/project-catalyst/catalyst-loader/models"
)

// ErrNotFound reports that a row the pipeline requires (a fund, or the
// row set of an upstream table) is absent from the store.
var ErrNotFound = errors.New("record not found")

// Store wraps the backend connection with the typed selects and bulk
// inserts the push pipeline needs. One Store is constructed at startup
// and injected into the services that use it.
type Store struct {
	db *sql.DB
}

func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// knownTables guards CountRows against arbitrary identifiers; table names
// cannot be bound as placeholders.
var knownTables = map[string]bool{
	"funds":       true,
	"challenges":  true,
	"proposals":   true,
	"assessors":   true,
	"assessments": true,
}

// CountRows returns the row count of one of the pipeline's tables.
// Used by the ping command as a connectivity probe.
func (s *Store) CountRows(table string) (int, error) {
	if !knownTables[table] {
		return 0, fmt.Errorf("unknown table %q", table)
	}
	var count int
	if err := s.db.QueryRow("SELECT COUNT(*) FROM " + table).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count rows of %s: %w", table, err)
	}
	return count, nil
}

// --- funds ---

// GetAllFundNumbers returns the business keys of every fund already stored.
func (s *Store) GetAllFundNumbers() ([]int, error) {
	rows, err := s.db.Query("SELECT number FROM funds")
	if err != nil {
		return nil, fmt.Errorf("failed to query fund numbers: %w", err)
	}
	defer rows.Close()

	var numbers []int
	for rows.Next() {
		var n int
		if err := rows.Scan(&n); err != nil {
			return nil, fmt.Errorf("failed to scan fund number: %w", err)
		}
		numbers = append(numbers, n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating fund number rows: %w", err)
	}
	return numbers, nil
}

// GetFundByNumber returns the fund row for the given fund number.
// Returns ErrNotFound when no such fund exists.
func (s *Store) GetFundByNumber(number int) (models.Fund, error) {
	var f models.Fund
	err := s.db.QueryRow(
		"SELECT id, number, title FROM funds WHERE number = ?", number,
	).Scan(&f.ID, &f.Number, &f.Title)
	if err != nil {
		if err == sql.ErrNoRows {
			return models.Fund{}, fmt.Errorf("fund %d: %w", number, ErrNotFound)
		}
		return models.Fund{}, fmt.Errorf("failed to query fund %d: %w", number, err)
	}
	return f, nil
}

func (s *Store) InsertFunds(funds []models.Fund) error {
	if len(funds) == 0 {
		log.Println("Store: no fund rows provided to insert.")
		return nil
	}
	return InsertChunked(funds, s.insertFundChunk)
}

func (s *Store) insertFundChunk(funds []models.Fund) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction for funds: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare("INSERT INTO funds (number, title) VALUES (?, ?)")
	if err != nil {
		return fmt.Errorf("failed to prepare fund insert statement: %w", err)
	}
	defer stmt.Close()

	for _, f := range funds {
		if _, err := stmt.Exec(f.Number, f.Title); err != nil {
			return fmt.Errorf("failed to insert fund %d: %w", f.Number, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction for funds: %w", err)
	}
	log.Printf("Store: inserted %d fund rows.\n", len(funds))
	return nil
}

// --- challenges ---

func (s *Store) GetChallengesByFund(fundID int64) ([]models.Challenge, error) {
	rows, err := s.db.Query(`
		SELECT id, internal_id, title, brief, budget, currency, url, challenge_setting, fund_id
		FROM challenges
		WHERE fund_id = ?
		ORDER BY internal_id
	`, fundID)
	if err != nil {
		return nil, fmt.Errorf("failed to query challenges for fund id %d: %w", fundID, err)
	}
	defer rows.Close()

	var challenges []models.Challenge
	for rows.Next() {
		var c models.Challenge
		if err := rows.Scan(
			&c.ID, &c.InternalID, &c.Title, &c.Brief, &c.Budget,
			&c.Currency, &c.URL, &c.ChallengeSetting, &c.FundID,
		); err != nil {
			return nil, fmt.Errorf("failed to scan challenge row: %w", err)
		}
		challenges = append(challenges, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating challenge rows: %w", err)
	}
	return challenges, nil
}

func (s *Store) InsertChallenges(challenges []models.Challenge) error {
	if len(challenges) == 0 {
		log.Println("Store: no challenge rows provided to insert.")
		return nil
	}
	return InsertChunked(challenges, s.insertChallengeChunk)
}

func (s *Store) insertChallengeChunk(challenges []models.Challenge) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction for challenges: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT INTO challenges (
			internal_id, title, brief, budget, currency, url, challenge_setting, fund_id
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare challenge insert statement: %w", err)
	}
	defer stmt.Close()

	for _, c := range challenges {
		if _, err := stmt.Exec(
			c.InternalID, c.Title, c.Brief, c.Budget,
			c.Currency, c.URL, c.ChallengeSetting, c.FundID,
		); err != nil {
			return fmt.Errorf("failed to insert challenge internal_id %d (%q): %w", c.InternalID, c.Title, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction for challenges: %w", err)
	}
	log.Printf("Store: inserted %d challenge rows.\n", len(challenges))
	return nil
}

// --- proposals ---

func (s *Store) GetProposalsByFund(fundID int64) ([]models.Proposal, error) {
	rows, err := s.db.Query(`
		SELECT id, internal_id, title, url, author, problem_statement, problem_solution,
		       relevant_experience, budget, currency, tags, challenge_id, fund_id
		FROM proposals
		WHERE fund_id = ?
		ORDER BY internal_id
	`, fundID)
	if err != nil {
		return nil, fmt.Errorf("failed to query proposals for fund id %d: %w", fundID, err)
	}
	defer rows.Close()

	var proposals []models.Proposal
	for rows.Next() {
		var p models.Proposal
		if err := rows.Scan(
			&p.ID, &p.InternalID, &p.Title, &p.URL, &p.Author,
			&p.ProblemStatement, &p.ProblemSolution, &p.RelevantExperience,
			&p.Budget, &p.Currency, &p.Tags, &p.ChallengeID, &p.FundID,
		); err != nil {
			return nil, fmt.Errorf("failed to scan proposal row: %w", err)
		}
		proposals = append(proposals, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating proposal rows: %w", err)
	}
	return proposals, nil
}

func (s *Store) InsertProposals(proposals []models.Proposal) error {
	if len(proposals) == 0 {
		log.Println("Store: no proposal rows provided to insert.")
		return nil
	}
	return InsertChunked(proposals, s.insertProposalChunk)
}

func (s *Store) insertProposalChunk(proposals []models.Proposal) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction for proposals: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT INTO proposals (
			internal_id, title, url, author, problem_statement, problem_solution,
			relevant_experience, budget, currency, tags, challenge_id, fund_id
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare proposal insert statement: %w", err)
	}
	defer stmt.Close()

	for _, p := range proposals {
		if _, err := stmt.Exec(
			p.InternalID, p.Title, p.URL, p.Author,
			p.ProblemStatement, p.ProblemSolution, p.RelevantExperience,
			p.Budget, p.Currency, p.Tags, p.ChallengeID, p.FundID,
		); err != nil {
			return fmt.Errorf("failed to insert proposal internal_id %d (%q): %w", p.InternalID, p.Title, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction for proposals: %w", err)
	}
	log.Printf("Store: inserted %d proposal rows.\n", len(proposals))
	return nil
}

// --- assessors ---

func (s *Store) GetAllAssessors() ([]models.Assessor, error) {
	rows, err := s.db.Query("SELECT id, anon_id FROM assessors")
	if err != nil {
		return nil, fmt.Errorf("failed to query assessors: %w", err)
	}
	defer rows.Close()

	var assessors []models.Assessor
	for rows.Next() {
		var a models.Assessor
		if err := rows.Scan(&a.ID, &a.AnonID); err != nil {
			return nil, fmt.Errorf("failed to scan assessor row: %w", err)
		}
		assessors = append(assessors, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating assessor rows: %w", err)
	}
	return assessors, nil
}

func (s *Store) InsertAssessors(assessors []models.Assessor) error {
	if len(assessors) == 0 {
		log.Println("Store: no assessor rows provided to insert.")
		return nil
	}
	return InsertChunked(assessors, s.insertAssessorChunk)
}

func (s *Store) insertAssessorChunk(assessors []models.Assessor) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction for assessors: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare("INSERT INTO assessors (anon_id) VALUES (?)")
	if err != nil {
		return fmt.Errorf("failed to prepare assessor insert statement: %w", err)
	}
	defer stmt.Close()

	for _, a := range assessors {
		if _, err := stmt.Exec(a.AnonID); err != nil {
			return fmt.Errorf("failed to insert assessor %q: %w", a.AnonID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction for assessors: %w", err)
	}
	log.Printf("Store: inserted %d assessor rows.\n", len(assessors))
	return nil
}

// --- assessments ---

func (s *Store) CountAssessmentsByFund(fundID int64) (int, error) {
	var count int
	err := s.db.QueryRow(
		"SELECT COUNT(*) FROM assessments WHERE fund_id = ?", fundID,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count assessments for fund id %d: %w", fundID, err)
	}
	return count, nil
}

func (s *Store) InsertAssessments(assessments []models.Assessment) error {
	if len(assessments) == 0 {
		log.Println("Store: no assessment rows provided to insert.")
		return nil
	}
	return InsertChunked(assessments, s.insertAssessmentChunk)
}

func (s *Store) insertAssessmentChunk(assessments []models.Assessment) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction for assessments: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT INTO assessments (
			assessor_id, proposal_id, challenge_id, fund_id,
			impact_note, impact_rating, feasibility_note, feasibility_rating,
			auditability_note, auditability_rating,
			proposer_mark, proposer_filteredout,
			rating_excellent, rating_good, rating_filteredout,
			vpa_feedback, blank, rating_avg, notes_len
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare assessment insert statement: %w", err)
	}
	defer stmt.Close()

	for _, a := range assessments {
		if _, err := stmt.Exec(
			a.AssessorID, a.ProposalID, a.ChallengeID, a.FundID,
			a.ImpactNote, a.ImpactRating, a.FeasibilityNote, a.FeasibilityRating,
			a.AuditabilityNote, a.AuditabilityRating,
			a.ProposerMark, a.ProposerFilteredOut,
			a.RatingExcellent, a.RatingGood, a.RatingFilteredOut,
			a.VPAFeedback, a.Blank, a.RatingAvg, a.NotesLen,
		); err != nil {
			return fmt.Errorf("failed to insert assessment (assessor id %d, challenge id %d): %w",
				a.AssessorID, a.ChallengeID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction for assessments: %w", err)
	}
	log.Printf("Store: inserted %d assessment rows.\n", len(assessments))
	return nil
}
