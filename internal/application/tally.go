// Package application contains use-case orchestration services.
package application

import "github.com/ericfisherdev/meritbot/internal/domain/model"

// Scorer measures how contested a vote is. Implementations must return a
// non-negative value; a variance at or above the approval threshold marks
// the outcome as not yet stable.
type Scorer interface {
	Variance(votes model.Vote, contributors model.MeritocracySet) int
}

// DisagreementScorer scales each vote by ContributorWeight when the voter is
// a repository contributor and by VoterWeight otherwise, then returns the
// smaller of the scaled support and the scaled opposition. A unanimous vote
// has variance 0; contributor votes move it the most.
type DisagreementScorer struct {
	ContributorWeight int
	VoterWeight       int
}

// NewDisagreementScorer builds a scorer from the voting policy weights.
func NewDisagreementScorer(policy model.VotingPolicy) DisagreementScorer {
	policy = policy.WithDefaults()
	return DisagreementScorer{
		ContributorWeight: policy.ContributorWeight,
		VoterWeight:       policy.VoterWeight,
	}
}

// Variance implements Scorer.
func (s DisagreementScorer) Variance(votes model.Vote, contributors model.MeritocracySet) int {
	var support, opposition int
	for login, weight := range votes {
		factor := s.VoterWeight
		if contributors.Contains(login) {
			factor = s.ContributorWeight
		}

		scaled := weight * factor
		switch {
		case scaled > 0:
			support += scaled
		case scaled < 0:
			opposition -= scaled
		}
	}
	return min(support, opposition)
}

// TallyVotes sums the vote weights and measures variance with scorer. It
// has no side effects.
func TallyVotes(votes model.Vote, contributors model.MeritocracySet, scorer Scorer) model.VoteTotal {
	var sum int
	for _, weight := range votes {
		sum += weight
	}

	variance := scorer.Variance(votes, contributors)
	if variance < 0 {
		variance = 0
	}

	return model.VoteTotal{Sum: sum, Variance: variance}
}
