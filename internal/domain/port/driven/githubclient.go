// Package driven defines secondary port interfaces for external adapters.
package driven

import (
	"context"
	"time"

	"github.com/ericfisherdev/meritbot/internal/domain/model"
)

// GitHubClient defines the driven port for reading repository state from
// the GitHub API.
type GitHubClient interface {
	// ListReadyPullRequests returns open, non-WIP pull requests whose last
	// code update is at least minAge old.
	ListReadyPullRequests(ctx context.Context, repoFullName string, minAge time.Duration) ([]model.PullRequest, error)

	// FetchContributors returns contributor statistics in the order GitHub
	// reports them. Callers rank them.
	FetchContributors(ctx context.Context, repoFullName string) ([]model.ContributorStat, error)

	// FetchVoteSignals returns every raw vote observation on the PR:
	// reactions on the PR itself and submitted reviews.
	FetchVoteSignals(ctx context.Context, repoFullName string, pr model.PullRequest) ([]model.VoteSignal, error)

	// FetchWatcherCount returns the number of users watching the repository.
	FetchWatcherCount(ctx context.Context, repoFullName string) (int, error)
}
