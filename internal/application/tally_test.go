package application_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ericfisherdev/meritbot/internal/application"
	"github.com/ericfisherdev/meritbot/internal/domain/model"
)

func TestTallyVotes(t *testing.T) {
	scorer := application.NewDisagreementScorer(model.DefaultVotingPolicy())

	tests := []struct {
		name         string
		votes        model.Vote
		contributors model.MeritocracySet
		want         model.VoteTotal
	}{
		{
			name:  "no votes",
			votes: model.Vote{},
			want:  model.VoteTotal{Sum: 0, Variance: 0},
		},
		{
			name:  "unanimous support has no variance",
			votes: model.Vote{"alice": 1, "bob": 1, "carol": 1},
			want:  model.VoteTotal{Sum: 3, Variance: 0},
		},
		{
			name:         "weighted example with non-contributor dissent",
			votes:        model.Vote{"alice": 3, "bob": 2, "carol": -1},
			contributors: model.NewMeritocracySet("alice"),
			// support = 3*2 + 2*1, opposition = 1*1
			want: model.VoteTotal{Sum: 4, Variance: 1},
		},
		{
			name:         "contributor dissent weighs double",
			votes:        model.Vote{"alice": 1, "bob": 1, "carol": 1, "dave": -1},
			contributors: model.NewMeritocracySet("dave"),
			want:         model.VoteTotal{Sum: 2, Variance: 2},
		},
		{
			name:         "contributor lookup ignores case",
			votes:        model.Vote{"alice": -1, "bob": 1},
			contributors: model.NewMeritocracySet("Alice", "BOB"),
			want:         model.VoteTotal{Sum: 0, Variance: 2},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := application.TallyVotes(tt.votes, tt.contributors, scorer)
			assert.Equal(t, tt.want, got)
		})
	}
}

type negativeScorer struct{}

func (negativeScorer) Variance(model.Vote, model.MeritocracySet) int { return -7 }

func TestTallyVotes_ClampsNegativeVariance(t *testing.T) {
	got := application.TallyVotes(model.Vote{"alice": 1}, nil, negativeScorer{})
	assert.Equal(t, 0, got.Variance)
	assert.Equal(t, 1, got.Sum)
}

func TestNewDisagreementScorer_UsesPolicyWeights(t *testing.T) {
	scorer := application.NewDisagreementScorer(model.VotingPolicy{ContributorWeight: 5, VoterWeight: 3})
	assert.Equal(t, 5, scorer.ContributorWeight)
	assert.Equal(t, 3, scorer.VoterWeight)

	defaults := application.NewDisagreementScorer(model.VotingPolicy{})
	assert.Equal(t, 2, defaults.ContributorWeight)
	assert.Equal(t, 1, defaults.VoterWeight)
}
