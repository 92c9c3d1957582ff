package driven

import (
	"context"
	"errors"

	"github.com/ericfisherdev/meritbot/internal/domain/model"
)

// ErrCouldNotMerge indicates GitHub refused the merge: a conflict, a head
// that moved since the PR was listed, or a failing required check. The
// lifecycle recovers from it by labeling the PR and moving on.
var ErrCouldNotMerge = errors.New("could not merge pull request")

// GitHubWriter defines the driven port for GitHub write operations.
// It is intentionally separate from GitHubClient (read operations).
type GitHubWriter interface {
	// PostStatus sets the bot's commit status on sha.
	PostStatus(ctx context.Context, repoFullName, sha string, kind model.StatusKind, description string) error

	// CreateIssueComment creates a top-level comment on a pull request.
	CreateIssueComment(ctx context.Context, repoFullName string, prNumber int, body string) error

	// AddLabels adds labels to a pull request, keeping existing ones.
	AddLabels(ctx context.Context, repoFullName string, prNumber int, labels []string) error

	// MergePullRequest merges the PR at its current head and returns the
	// merge commit SHA. Returns an error wrapping ErrCouldNotMerge when
	// GitHub refuses the merge.
	MergePullRequest(ctx context.Context, repoFullName string, pr model.PullRequest, commitMessage string) (string, error)

	// ClosePullRequest closes the PR without merging.
	ClosePullRequest(ctx context.Context, repoFullName string, prNumber int) error

	// FollowUser follows login from the bot account.
	FollowUser(ctx context.Context, login string) error
}
