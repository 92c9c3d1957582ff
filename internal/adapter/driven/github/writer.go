package github

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	gh "github.com/google/go-github/v82/github"

	"github.com/ericfisherdev/meritbot/internal/domain/model"
	"github.com/ericfisherdev/meritbot/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.GitHubWriter = (*Client)(nil)

// statusContext names the bot's commit status on PR head commits.
const statusContext = "meritbot/vote"

// PostStatus sets the meritbot/vote commit status on sha.
func (c *Client) PostStatus(ctx context.Context, repoFullName, sha string, kind model.StatusKind, description string) error {
	owner, repo, err := splitRepo(repoFullName)
	if err != nil {
		return err
	}

	_, _, err = c.gh.Repositories.CreateStatus(ctx, owner, repo, sha, gh.RepoStatus{
		State:       gh.Ptr(kind.State()),
		Description: gh.Ptr(description),
		Context:     gh.Ptr(statusContext),
	})
	if err != nil {
		return fmt.Errorf("posting %s status on %s@%s: %w", kind, repoFullName, sha, err)
	}

	return nil
}

// CreateIssueComment creates a top-level (non-diff) comment on a pull request.
func (c *Client) CreateIssueComment(ctx context.Context, repoFullName string, prNumber int, body string) error {
	owner, repo, err := splitRepo(repoFullName)
	if err != nil {
		return err
	}

	_, _, err = c.gh.Issues.CreateComment(ctx, owner, repo, prNumber, &gh.IssueComment{
		Body: gh.Ptr(body),
	})
	if err != nil {
		return fmt.Errorf("creating issue comment on %s#%d: %w", repoFullName, prNumber, err)
	}

	return nil
}

// AddLabels adds labels to a pull request. GitHub creates labels that do
// not exist yet.
func (c *Client) AddLabels(ctx context.Context, repoFullName string, prNumber int, labels []string) error {
	owner, repo, err := splitRepo(repoFullName)
	if err != nil {
		return err
	}

	if _, _, err := c.gh.Issues.AddLabelsToIssue(ctx, owner, repo, prNumber, labels); err != nil {
		return fmt.Errorf("labeling %s#%d: %w", repoFullName, prNumber, err)
	}

	return nil
}

// MergePullRequest merges the PR pinned to the head SHA it was evaluated
// at, so a push after the vote cannot be merged unreviewed. GitHub answers
// 405 when the PR is not mergeable and 409 when the head moved; both are
// reported as driven.ErrCouldNotMerge.
func (c *Client) MergePullRequest(ctx context.Context, repoFullName string, pr model.PullRequest, commitMessage string) (string, error) {
	owner, repo, err := splitRepo(repoFullName)
	if err != nil {
		return "", err
	}

	result, _, err := c.gh.PullRequests.Merge(ctx, owner, repo, pr.Number, commitMessage, &gh.PullRequestOptions{
		SHA:         pr.HeadSHA,
		MergeMethod: "merge",
	})
	if err != nil {
		var ghErr *gh.ErrorResponse
		if errors.As(err, &ghErr) && ghErr.Response != nil {
			switch ghErr.Response.StatusCode {
			case http.StatusMethodNotAllowed, http.StatusConflict, http.StatusUnprocessableEntity:
				return "", fmt.Errorf("%w: %s#%d: %w", driven.ErrCouldNotMerge, repoFullName, pr.Number, err)
			}
		}
		return "", fmt.Errorf("merging %s#%d: %w", repoFullName, pr.Number, err)
	}

	if !result.GetMerged() {
		return "", fmt.Errorf("%w: %s#%d: %s", driven.ErrCouldNotMerge, repoFullName, pr.Number, result.GetMessage())
	}

	return result.GetSHA(), nil
}

// ClosePullRequest closes the PR without merging.
func (c *Client) ClosePullRequest(ctx context.Context, repoFullName string, prNumber int) error {
	owner, repo, err := splitRepo(repoFullName)
	if err != nil {
		return err
	}

	_, _, err = c.gh.PullRequests.Edit(ctx, owner, repo, prNumber, &gh.PullRequest{
		State: gh.Ptr("closed"),
	})
	if err != nil {
		return fmt.Errorf("closing %s#%d: %w", repoFullName, prNumber, err)
	}

	return nil
}

// FollowUser follows login from the authenticated account.
func (c *Client) FollowUser(ctx context.Context, login string) error {
	if _, err := c.gh.Users.Follow(ctx, login); err != nil {
		return fmt.Errorf("following %s: %w", login, err)
	}
	return nil
}
