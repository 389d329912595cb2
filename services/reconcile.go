// services/reconcile.go
package services

import (
	"database/sql"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/project-catalyst/catalyst-loader/models"
)

// ErrUnresolvedReference reports a failed business-key join: a raw record
// references an upstream row (challenge, assessor) that does not exist in
// the collection materialized for its fund. Mandatory joins wrap this
// error and abort the table; the one optional join (assessment →
// proposal) recovers to a NULL reference instead.
var ErrUnresolvedReference = errors.New("unresolved business-key reference")

// Titles like "Fund9 Challenge Setting: ..." mark the meta-challenge that
// collects challenge-setting proposals for the next fund.
var challengeSettingRegex = regexp.MustCompile(`Fund\d*\s*[Cc]hallenge\s*[Ss]etting`)

// Every destination amount is currently denominated in dollars.
const defaultCurrency = "$"

// --- business-key lookups ---
//
// All joins are exact equality on a single key. The lookups return an
// explicit (row, ok) pair so each call site states its own fatal vs
// recovered policy.

func findChallengeByInternalID(challenges []models.Challenge, internalID int64) (models.Challenge, bool) {
	for _, c := range challenges {
		if c.InternalID == internalID {
			return c, true
		}
	}
	return models.Challenge{}, false
}

func findProposalByInternalID(proposals []models.Proposal, internalID int64) (models.Proposal, bool) {
	for _, p := range proposals {
		if p.InternalID == internalID {
			return p, true
		}
	}
	return models.Proposal{}, false
}

func findAssessorByAnonID(assessors []models.Assessor, anonID string) (models.Assessor, bool) {
	for _, a := range assessors {
		if a.AnonID == anonID {
			return a, true
		}
	}
	return models.Assessor{}, false
}

// parseRatingCell turns a free-text rating cell into a nullable integer.
// Non-numeric and empty cells yield the invalid (NULL) value; downstream
// consumers read NULL as "rating absent", so no default is substituted.
func parseRatingCell(cell string) sql.NullInt64 {
	trimmed := strings.TrimSpace(cell)
	if trimmed == "" {
		return sql.NullInt64{}
	}
	n, err := strconv.ParseInt(trimmed, 10, 64)
	if err != nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: n, Valid: true}
}

// ReconcileChallenges maps raw voter-tool challenges onto challenge rows
// for the given fund. There is no error path: a title that does not match
// the challenge-setting pattern simply yields challenge_setting = false.
func ReconcileChallenges(raw []models.RawChallenge, fund models.Fund) []models.Challenge {
	challenges := make([]models.Challenge, 0, len(raw))
	for _, ch := range raw {
		challenges = append(challenges, models.Challenge{
			InternalID:       ch.ID,
			Title:            ch.Title,
			Brief:            ch.Description,
			Budget:           ch.Amount,
			Currency:         defaultCurrency,
			URL:              ch.URL,
			ChallengeSetting: challengeSettingRegex.MatchString(ch.Title),
			FundID:           fund.ID,
		})
	}
	return challenges
}

// ReconcileProposals maps raw voter-tool proposals onto proposal rows,
// resolving each proposal's challenge by matching its category code
// against the challenge internal ids already stored for the fund. An
// unresolved category is fatal: no row set is returned and the table's
// insert must not happen.
func ReconcileProposals(raw []models.RawProposal, fund models.Fund, challenges []models.Challenge) ([]models.Proposal, error) {
	proposals := make([]models.Proposal, 0, len(raw))
	for _, p := range raw {
		challenge, ok := findChallengeByInternalID(challenges, p.Category)
		if !ok {
			return nil, fmt.Errorf("proposal %d (%q): category %d matches no challenge of fund %d: %w",
				p.ID, p.Title, p.Category, fund.Number, ErrUnresolvedReference)
		}

		// Newer exports renamed two fields; prefer the new key and fall
		// back to the legacy one only when the new key is absent.
		solution := ""
		if p.HowDoesSuccessLookLike != nil {
			solution = *p.HowDoesSuccessLookLike
		} else if p.ProblemSolution != nil {
			solution = *p.ProblemSolution
		}
		experience := ""
		if p.Importance != nil {
			experience = *p.Importance
		} else if p.RelevantExperience != nil {
			experience = *p.RelevantExperience
		}

		proposals = append(proposals, models.Proposal{
			InternalID:         p.ID,
			Title:              p.Title,
			URL:                p.URL,
			Author:             p.Author,
			ProblemStatement:   p.Description,
			ProblemSolution:    solution,
			RelevantExperience: experience,
			Budget:             p.RequestedFunds,
			Currency:           defaultCurrency,
			Tags:               p.Tags,
			ChallengeID:        challenge.ID,
			FundID:             fund.ID,
		})
	}
	return proposals, nil
}

// ReconcileAssessors derives the set of distinct reviewer identities seen
// across the raw assessment rows, one row per anon_id, in first-occurrence
// order so the result is deterministic.
func ReconcileAssessors(raw []models.RawAssessment) []models.Assessor {
	seen := make(map[string]bool, len(raw))
	var assessors []models.Assessor
	for _, row := range raw {
		if seen[row.Assessor] {
			continue
		}
		seen[row.Assessor] = true
		assessors = append(assessors, models.Assessor{AnonID: row.Assessor})
	}
	return assessors
}

// ReconcileAssessments maps raw assessment CSV rows onto assessment rows.
// The assessor and challenge references must resolve (fatal otherwise);
// the proposal reference is optional and recovers to NULL when the raw
// proposal_id matches no proposal of the fund, which is the normal case
// for challenge-level assessments.
func ReconcileAssessments(
	fund models.Fund,
	challenges []models.Challenge,
	proposals []models.Proposal,
	raw []models.RawAssessment,
	assessors []models.Assessor,
) ([]models.Assessment, error) {
	assessments := make([]models.Assessment, 0, len(raw))
	for i, row := range raw {
		assessor, ok := findAssessorByAnonID(assessors, row.Assessor)
		if !ok {
			return nil, fmt.Errorf("assessment row %d: assessor %q is not stored: %w",
				i+1, row.Assessor, ErrUnresolvedReference)
		}

		challengeInternalID, err := strconv.ParseInt(strings.TrimSpace(row.ChallengeID), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("assessment row %d: challenge_id %q is not an integer: %w",
				i+1, row.ChallengeID, ErrUnresolvedReference)
		}
		challenge, ok := findChallengeByInternalID(challenges, challengeInternalID)
		if !ok {
			return nil, fmt.Errorf("assessment row %d: challenge_id %d matches no challenge of fund %d: %w",
				i+1, challengeInternalID, fund.Number, ErrUnresolvedReference)
		}

		var proposalRef sql.NullInt64
		if proposalInternalID, err := strconv.ParseInt(strings.TrimSpace(row.ProposalID), 10, 64); err == nil {
			if proposal, ok := findProposalByInternalID(proposals, proposalInternalID); ok {
				proposalRef = sql.NullInt64{Int64: proposal.ID, Valid: true}
			}
		}

		a := models.Assessment{
			AssessorID:  assessor.ID,
			ProposalID:  proposalRef,
			ChallengeID: challenge.ID,
			FundID:      fund.ID,

			ImpactNote:         row.ImpactNote,
			ImpactRating:       parseRatingCell(row.ImpactRating),
			FeasibilityNote:    row.FeasibilityNote,
			FeasibilityRating:  parseRatingCell(row.FeasibilityRating),
			AuditabilityNote:   row.AuditabilityNote,
			AuditabilityRating: parseRatingCell(row.AuditabilityRating),

			ProposerMark:        row.ProposerMark,
			ProposerFilteredOut: row.ProposerFilteredOut,
			RatingExcellent:     row.Excellent,
			RatingGood:          row.Good,
			RatingFilteredOut:   row.FilteredOut,
			VPAFeedback:         row.VPAFeedback,
			Blank:               row.Blank,
		}
		a.RatingAvg = ratingAverage(a.ImpactRating, a.FeasibilityRating, a.AuditabilityRating)
		a.NotesLen = len(a.ImpactNote) + len(a.FeasibilityNote) + len(a.AuditabilityNote)

		assessments = append(assessments, a)
	}
	return assessments, nil
}

// ratingAverage averages the ratings that parsed; NULL when none did.
func ratingAverage(ratings ...sql.NullInt64) sql.NullFloat64 {
	sum, count := 0, 0
	for _, r := range ratings {
		if r.Valid {
			sum += int(r.Int64)
			count++
		}
	}
	if count == 0 {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: float64(sum) / float64(count), Valid: true}
}
