// models/source.go
package models

// RawChallenge is one entry of the voter-tool challenges.json file for a fund.
type RawChallenge struct {
	ID          int64   `json:"id"`
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Amount      float64 `json:"amount"`
	URL         string  `json:"url"`
}

// RawProposal is one entry of the voter-tool proposals.json file for a fund.
//
// Two fields changed name between funds: newer exports carry
// "how_does_success_look_like_" where older ones carry "problem_solution",
// and "importance" where older ones carry "relevant_experience". Both
// spellings are kept as pointers so reconciliation can tell an absent key
// from an empty value.
type RawProposal struct {
	ID                     int64   `json:"id"`
	Title                  string  `json:"title"`
	URL                    string  `json:"url"`
	Author                 string  `json:"author"`
	Description            string  `json:"description"`
	ProblemSolution        *string `json:"problem_solution"`
	HowDoesSuccessLookLike *string `json:"how_does_success_look_like_"`
	RelevantExperience     *string `json:"relevant_experience"`
	Importance             *string `json:"importance"`
	RequestedFunds         float64 `json:"requested_funds"`
	Tags                   string  `json:"tags"`
	Category               int64   `json:"category"`
}

// RawAssessment is one row of the vCA aggregate assessments CSV.
// CSV tags EXACTLY match the headers of the aggregate file; several hold
// free text even where the destination column is numeric, so everything
// stays a string until reconciliation.
type RawAssessment struct {
	Assessor            string `csv:"Assessor"`
	ProposalID          string `csv:"proposal_id"`
	ChallengeID         string `csv:"challenge_id"`
	ImpactNote          string `csv:"Impact / Alignment Note"`
	ImpactRating        string `csv:"Impact / Alignment Rating"`
	FeasibilityNote     string `csv:"Feasibility Note"`
	FeasibilityRating   string `csv:"Feasibility Rating"`
	AuditabilityNote    string `csv:"Auditability Note"`
	AuditabilityRating  string `csv:"Auditability Rating"`
	ProposerMark        string `csv:"Proposer Mark"`
	ProposerFilteredOut string `csv:"Proposer Filtered Out rationale or Feedback"`
	Excellent           string `csv:"Excellent"`
	Good                string `csv:"Good"`
	FilteredOut         string `csv:"Filtered Out"`
	VPAFeedback         string `csv:"vPA Feedback"`
	Blank               string `csv:"Blank"`
}
