package services

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/project-catalyst/catalyst-loader/models"
)

// fakeStore is an in-memory Store that assigns surrogate ids on insert,
// the way the backend does.
type fakeStore struct {
	nextID int64

	funds       []models.Fund
	challenges  []models.Challenge
	proposals   []models.Proposal
	assessors   []models.Assessor
	assessments []models.Assessment

	fundInserts       int
	challengeInserts  int
	proposalInserts   int
	assessorInserts   int
	assessmentInserts int
}

func newFakeStore() *fakeStore { return &fakeStore{nextID: 1} }

func (f *fakeStore) assignID() int64 {
	id := f.nextID
	f.nextID++
	return id
}

func (f *fakeStore) GetAllFundNumbers() ([]int, error) {
	var numbers []int
	for _, fund := range f.funds {
		numbers = append(numbers, fund.Number)
	}
	return numbers, nil
}

func (f *fakeStore) GetFundByNumber(number int) (models.Fund, error) {
	for _, fund := range f.funds {
		if fund.Number == number {
			return fund, nil
		}
	}
	return models.Fund{}, errors.New("fund not found")
}

func (f *fakeStore) InsertFunds(funds []models.Fund) error {
	f.fundInserts++
	for _, fund := range funds {
		fund.ID = f.assignID()
		f.funds = append(f.funds, fund)
	}
	return nil
}

func (f *fakeStore) GetChallengesByFund(fundID int64) ([]models.Challenge, error) {
	var out []models.Challenge
	for _, c := range f.challenges {
		if c.FundID == fundID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (f *fakeStore) InsertChallenges(challenges []models.Challenge) error {
	f.challengeInserts++
	for _, c := range challenges {
		c.ID = f.assignID()
		f.challenges = append(f.challenges, c)
	}
	return nil
}

func (f *fakeStore) GetProposalsByFund(fundID int64) ([]models.Proposal, error) {
	var out []models.Proposal
	for _, p := range f.proposals {
		if p.FundID == fundID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *fakeStore) InsertProposals(proposals []models.Proposal) error {
	f.proposalInserts++
	for _, p := range proposals {
		p.ID = f.assignID()
		f.proposals = append(f.proposals, p)
	}
	return nil
}

func (f *fakeStore) GetAllAssessors() ([]models.Assessor, error) {
	return append([]models.Assessor(nil), f.assessors...), nil
}

func (f *fakeStore) InsertAssessors(assessors []models.Assessor) error {
	f.assessorInserts++
	for _, a := range assessors {
		a.ID = f.assignID()
		f.assessors = append(f.assessors, a)
	}
	return nil
}

func (f *fakeStore) CountAssessmentsByFund(fundID int64) (int, error) {
	count := 0
	for _, a := range f.assessments {
		if a.FundID == fundID {
			count++
		}
	}
	return count, nil
}

func (f *fakeStore) InsertAssessments(assessments []models.Assessment) error {
	f.assessmentInserts++
	for _, a := range assessments {
		a.ID = f.assignID()
		f.assessments = append(f.assessments, a)
	}
	return nil
}

type fakeSources struct {
	available   bool
	challenges  []models.RawChallenge
	proposals   []models.RawProposal
	assessments []models.RawAssessment

	challengeFetches  int
	proposalFetches   int
	assessmentFetches int
}

func (f *fakeSources) CheckFundDataAvailable(fundNumber int) (bool, error) {
	return f.available, nil
}

func (f *fakeSources) FetchChallenges(fundNumber int) ([]models.RawChallenge, error) {
	f.challengeFetches++
	return f.challenges, nil
}

func (f *fakeSources) FetchProposals(fundNumber int) ([]models.RawProposal, error) {
	f.proposalFetches++
	return f.proposals, nil
}

func (f *fakeSources) FetchAssessments() ([]models.RawAssessment, error) {
	f.assessmentFetches++
	return f.assessments, nil
}

func fund9Sources() *fakeSources {
	return &fakeSources{
		available: true,
		challenges: []models.RawChallenge{
			{ID: 1, Title: "Fund9 Challenge Setting: Open Source", Amount: 200000},
			{ID: 2, Title: "Developer Ecosystem", Amount: 500000},
		},
		proposals: []models.RawProposal{
			{ID: 11, Title: "A", Category: 1},
			{ID: 12, Title: "B", Category: 1},
			{ID: 13, Title: "C", Category: 2},
		},
		assessments: []models.RawAssessment{
			{Assessor: "z_1", ProposalID: "11", ChallengeID: "1", ImpactRating: "4"},
			{Assessor: "z_2", ProposalID: "12", ChallengeID: "1", ImpactRating: "3"},
			{Assessor: "z_1", ProposalID: "13", ChallengeID: "2", ImpactRating: "5"},
			{Assessor: "z_3", ProposalID: "999", ChallengeID: "2"},
			{Assessor: "z_2", ProposalID: "", ChallengeID: "1"},
		},
	}
}

func TestPushFundData_EndToEnd(t *testing.T) {
	store := newFakeStore()
	srcs := fund9Sources()
	svc := NewPushService(store, srcs)

	require.NoError(t, svc.PushFundData(9))

	require.Len(t, store.funds, 1)
	fund := store.funds[0]
	assert.Equal(t, 9, fund.Number)
	assert.Equal(t, "Fund 9", fund.Title)

	require.Len(t, store.challenges, 2)
	byInternal := map[int64]models.Challenge{}
	for _, c := range store.challenges {
		assert.Equal(t, fund.ID, c.FundID)
		byInternal[c.InternalID] = c
	}
	assert.True(t, byInternal[1].ChallengeSetting)
	assert.False(t, byInternal[2].ChallengeSetting)

	require.Len(t, store.proposals, 3)
	proposalChallenge := map[int64]int64{}
	for _, p := range store.proposals {
		assert.Equal(t, fund.ID, p.FundID)
		proposalChallenge[p.InternalID] = p.ChallengeID
	}
	assert.Equal(t, byInternal[1].ID, proposalChallenge[11])
	assert.Equal(t, byInternal[1].ID, proposalChallenge[12])
	assert.Equal(t, byInternal[2].ID, proposalChallenge[13])

	// 3 distinct Assessor values among the 5 rows.
	require.Len(t, store.assessors, 3)

	require.Len(t, store.assessments, 5)
	nullRefs := 0
	for _, a := range store.assessments {
		assert.Equal(t, fund.ID, a.FundID)
		assert.NotZero(t, a.AssessorID)
		assert.NotZero(t, a.ChallengeID)
		if !a.ProposalID.Valid {
			nullRefs++
		}
	}
	// Rows "999" and "" do not match any proposal.
	assert.Equal(t, 2, nullRefs)
}

func TestPushFundData_RerunShortCircuits(t *testing.T) {
	store := newFakeStore()
	srcs := fund9Sources()
	svc := NewPushService(store, srcs)

	require.NoError(t, svc.PushFundData(9))
	require.NoError(t, svc.PushFundData(9))

	// Exactly one fund row and no duplicated table contents.
	assert.Len(t, store.funds, 1)
	assert.Len(t, store.challenges, 2)
	assert.Len(t, store.proposals, 3)
	assert.Len(t, store.assessors, 3)
	assert.Len(t, store.assessments, 5)

	// The second run must not re-insert or re-fetch the per-fund tables.
	assert.Equal(t, 1, store.fundInserts)
	assert.Equal(t, 1, store.challengeInserts)
	assert.Equal(t, 1, store.proposalInserts)
	assert.Equal(t, 1, store.assessmentInserts)
	assert.Equal(t, 1, srcs.challengeFetches)
	assert.Equal(t, 1, srcs.proposalFetches)
}

func TestPushFundData_AbortsWhenNoDataFolder(t *testing.T) {
	store := newFakeStore()
	srcs := fund9Sources()
	srcs.available = false
	svc := NewPushService(store, srcs)

	err := svc.PushFundData(9)
	require.Error(t, err)
	assert.Empty(t, store.funds)
}

func TestPushFundData_UnresolvedProposalCategoryAborts(t *testing.T) {
	store := newFakeStore()
	srcs := fund9Sources()
	srcs.proposals = append(srcs.proposals, models.RawProposal{ID: 14, Title: "D", Category: 77})
	svc := NewPushService(store, srcs)

	err := svc.PushFundData(9)
	require.ErrorIs(t, err, ErrUnresolvedReference)

	// The earlier stages stay as inserted; the proposals table gets nothing.
	assert.Len(t, store.funds, 1)
	assert.Len(t, store.challenges, 2)
	assert.Empty(t, store.proposals)
	assert.Empty(t, store.assessments)
}
