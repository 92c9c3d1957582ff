package application

import (
	"time"

	"github.com/ericfisherdev/meritbot/internal/domain/model"
)

// VotingWindowPolicy decides how long a PR must sit untouched before the
// engine acts on it.
type VotingWindowPolicy struct {
	base     time.Duration
	extended time.Duration
}

// NewVotingWindowPolicy creates a policy. The extended window is clamped to
// be at least the base window so contested PRs never wait less.
func NewVotingWindowPolicy(base, extended time.Duration) VotingWindowPolicy {
	return VotingWindowPolicy{base: base, extended: max(base, extended)}
}

// Base returns the window for PRs on track to an unambiguous outcome.
func (p VotingWindowPolicy) Base() time.Duration {
	return p.base
}

// Extended returns the window for contested PRs.
func (p VotingWindowPolicy) Extended() time.Duration {
	return p.extended
}

// Apply returns the window that gates a PR and whether elapsed has passed
// it. Contested PRs always get the extended window.
func (p VotingWindowPolicy) Apply(contested bool, elapsed time.Duration) (time.Duration, bool) {
	window := p.base
	if contested {
		window = p.extended
	}
	return window, elapsed > window
}

// SecondsSinceUpdated returns how long ago the PR's code last changed,
// truncated to whole seconds. A future timestamp yields zero.
func SecondsSinceUpdated(pr model.PullRequest, now time.Time) time.Duration {
	updated := pr.UpdatedAt
	if pr.CreatedAt.After(updated) {
		updated = pr.CreatedAt
	}

	elapsed := now.Sub(updated).Truncate(time.Second)
	if elapsed < 0 {
		return 0
	}
	return elapsed
}
