// models/rows.go
package models

import "database/sql"

// Fund represents one numbered funding round in the funds table.
// `number` is the business key; the pipeline never inserts a second
// row for an existing number.
type Fund struct {
	ID     int64  `db:"id"`
	Number int    `db:"number"`
	Title  string `db:"title"`
}

// Challenge represents a funding category within a Fund.
// internal_id is the id the challenge carries in the voter-tool data,
// unique within its fund; proposals reference it through their category code.
type Challenge struct {
	ID               int64   `db:"id"`
	InternalID       int64   `db:"internal_id"`
	Title            string  `db:"title"`
	Brief            string  `db:"brief"`
	Budget           float64 `db:"budget"`
	Currency         string  `db:"currency"`
	URL              string  `db:"url"`
	ChallengeSetting bool    `db:"challenge_setting"`
	FundID           int64   `db:"fund_id"`
}

// Proposal represents a funding submission under a Challenge.
type Proposal struct {
	ID                 int64   `db:"id"`
	InternalID         int64   `db:"internal_id"`
	Title              string  `db:"title"`
	URL                string  `db:"url"`
	Author             string  `db:"author"`
	ProblemStatement   string  `db:"problem_statement"`
	ProblemSolution    string  `db:"problem_solution"`
	RelevantExperience string  `db:"relevant_experience"`
	Budget             float64 `db:"budget"`
	Currency           string  `db:"currency"`
	Tags               string  `db:"tags"`
	ChallengeID        int64   `db:"challenge_id"`
	FundID             int64   `db:"fund_id"`
}

// Assessor is an anonymized reviewer identity. anon_id is globally
// unique across funds.
type Assessor struct {
	ID     int64  `db:"id"`
	AnonID string `db:"anon_id"`
}

// Assessment is one reviewer's scored evaluation of a proposal (or of a
// challenge-level item, in which case ProposalID is NULL).
//
// The three rating columns stay NULL when the source CSV cell did not
// parse as an integer; downstream consumers read NULL as "rating absent",
// so no default is ever substituted.
type Assessment struct {
	ID          int64         `db:"id"`
	AssessorID  int64         `db:"assessor_id"`
	ProposalID  sql.NullInt64 `db:"proposal_id"`
	ChallengeID int64         `db:"challenge_id"`
	FundID      int64         `db:"fund_id"`

	ImpactNote         string        `db:"impact_note"`
	ImpactRating       sql.NullInt64 `db:"impact_rating"`
	FeasibilityNote    string        `db:"feasibility_note"`
	FeasibilityRating  sql.NullInt64 `db:"feasibility_rating"`
	AuditabilityNote   string        `db:"auditability_note"`
	AuditabilityRating sql.NullInt64 `db:"auditability_rating"`

	ProposerMark        string `db:"proposer_mark"`
	ProposerFilteredOut string `db:"proposer_filteredout"`
	RatingExcellent     string `db:"rating_excellent"`
	RatingGood          string `db:"rating_good"`
	RatingFilteredOut   string `db:"rating_filteredout"`
	VPAFeedback         string `db:"vpa_feedback"`
	Blank               string `db:"blank"`

	// Derived during reconciliation: mean of the ratings that parsed
	// (NULL when none did) and the combined length of the three notes.
	RatingAvg sql.NullFloat64 `db:"rating_avg"`
	NotesLen  int             `db:"notes_len"`
}
