// Package github implements the GitHubClient and GitHubWriter ports using the go-github library.
package github

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	gh "github.com/google/go-github/v82/github"
	"github.com/gregjones/httpcache"

	"github.com/gofri/go-github-ratelimit/v2/github_ratelimit"

	"github.com/ericfisherdev/meritbot/internal/domain/model"
	"github.com/ericfisherdev/meritbot/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.GitHubClient = (*Client)(nil)

// Reaction contents that count as votes.
const (
	reactionUp   = "+1"
	reactionDown = "-1"
)

// Review states that count as votes.
const (
	reviewApproved         = "APPROVED"
	reviewChangesRequested = "CHANGES_REQUESTED"
)

// Client implements the driven.GitHubClient and driven.GitHubWriter ports
// using the go-github library.
type Client struct {
	gh       *gh.Client
	username string // Bot login; its own reactions and reviews are not votes.
	now      func() time.Time
}

// NewClient creates a new GitHub API client with the following transport stack:
//  1. httpcache (ETag-based conditional request caching)
//  2. go-github-ratelimit (secondary rate limit middleware, sleeps on 429)
//  3. go-github (GitHub REST API client with PAT auth)
func NewClient(token, username string) *Client {
	cacheTransport := httpcache.NewMemoryCacheTransport()
	rateLimitClient := github_ratelimit.NewClient(cacheTransport)
	client := gh.NewClient(rateLimitClient).WithAuthToken(token)

	return &Client{
		gh:       client,
		username: username,
		now:      time.Now,
	}
}

// NewClientWithHTTPClient creates a Client with a custom http.Client and base URL.
// This constructor is intended for testing, allowing injection of an httptest server.
func NewClientWithHTTPClient(httpClient *http.Client, baseURL, username string, now func() time.Time) (*Client, error) {
	client := gh.NewClient(httpClient)

	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parsing base URL: %w", err)
	}
	client.BaseURL = u

	if now == nil {
		now = time.Now
	}

	return &Client{
		gh:       client,
		username: username,
		now:      now,
	}, nil
}

// ListReadyPullRequests retrieves open pull requests that are not drafts or
// titled WIP and whose last code update is at least minAge old. UpdatedAt
// is the later of the PR creation time and the head commit's committer
// date, so comments and reactions do not reset the voting window.
func (c *Client) ListReadyPullRequests(ctx context.Context, repoFullName string, minAge time.Duration) ([]model.PullRequest, error) {
	owner, repo, err := splitRepo(repoFullName)
	if err != nil {
		return nil, err
	}

	opts := &gh.PullRequestListOptions{
		State:     "open",
		Sort:      "created",
		Direction: "asc",
		ListOptions: gh.ListOptions{
			PerPage: 100,
		},
	}

	ready := []model.PullRequest{}
	now := c.now()

	for {
		prs, resp, err := c.gh.PullRequests.List(ctx, owner, repo, opts)
		if err != nil {
			return nil, fmt.Errorf("listing pull requests for %s (page %d): %w", repoFullName, opts.Page, err)
		}

		logRateLimit(resp, repoFullName, opts.Page, len(prs))

		for _, p := range prs {
			pr := mapPullRequest(p, repoFullName)
			if pr.IsWorkInProgress() {
				continue
			}

			committed, err := c.headCommitDate(ctx, owner, repo, pr.HeadSHA)
			if err != nil {
				return nil, fmt.Errorf("fetching head commit of %s#%d: %w", repoFullName, pr.Number, err)
			}
			if committed.After(pr.UpdatedAt) {
				pr.UpdatedAt = committed
			}

			if now.Sub(pr.UpdatedAt) < minAge {
				continue
			}
			ready = append(ready, pr)
		}

		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}

	return ready, nil
}

func (c *Client) headCommitDate(ctx context.Context, owner, repo, sha string) (time.Time, error) {
	if sha == "" {
		return time.Time{}, nil
	}

	commit, _, err := c.gh.Repositories.GetCommit(ctx, owner, repo, sha, nil)
	if err != nil {
		return time.Time{}, err
	}
	return commit.GetCommit().GetCommitter().GetDate().Time, nil
}

// FetchContributors returns contributor commit totals. GitHub computes the
// statistics asynchronously and answers 202 while they are not ready; in
// that case the plain contributor list with contribution counts is used.
func (c *Client) FetchContributors(ctx context.Context, repoFullName string) ([]model.ContributorStat, error) {
	owner, repo, err := splitRepo(repoFullName)
	if err != nil {
		return nil, err
	}

	stats, resp, err := c.gh.Repositories.ListContributorsStats(ctx, owner, repo)
	var accepted *gh.AcceptedError
	switch {
	case errors.As(err, &accepted):
		slog.Info("contributor stats not ready, using contributor list", "repo", repoFullName)
		return c.listContributors(ctx, owner, repo, repoFullName)
	case err != nil:
		return nil, fmt.Errorf("fetching contributor stats for %s: %w", repoFullName, err)
	}

	logRateLimit(resp, repoFullName, 0, len(stats))

	contributors := make([]model.ContributorStat, 0, len(stats))
	for _, s := range stats {
		login := s.GetAuthor().GetLogin()
		if login == "" {
			continue
		}
		contributors = append(contributors, model.ContributorStat{Login: login, Total: s.GetTotal()})
	}

	return contributors, nil
}

func (c *Client) listContributors(ctx context.Context, owner, repo, repoFullName string) ([]model.ContributorStat, error) {
	opts := &gh.ListContributorsOptions{
		ListOptions: gh.ListOptions{PerPage: 100},
	}
	contributors := []model.ContributorStat{}

	for {
		page, resp, err := c.gh.Repositories.ListContributors(ctx, owner, repo, opts)
		if err != nil {
			return nil, fmt.Errorf("listing contributors for %s (page %d): %w", repoFullName, opts.Page, err)
		}

		logRateLimit(resp, repoFullName, opts.Page, len(page))

		for _, contributor := range page {
			if contributor.GetLogin() == "" {
				continue
			}
			contributors = append(contributors, model.ContributorStat{
				Login: contributor.GetLogin(),
				Total: contributor.GetContributions(),
			})
		}

		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}

	return contributors, nil
}

// FetchVoteSignals returns thumbs-up/down reactions on the PR and approving
// or changes-requested reviews. Reviews are returned in submission order so
// a later review by the same login overrides an earlier one.
func (c *Client) FetchVoteSignals(ctx context.Context, repoFullName string, pr model.PullRequest) ([]model.VoteSignal, error) {
	owner, repo, err := splitRepo(repoFullName)
	if err != nil {
		return nil, err
	}

	reactions, err := c.reactionSignals(ctx, owner, repo, repoFullName, pr.Number)
	if err != nil {
		return nil, err
	}

	reviews, err := c.reviewSignals(ctx, owner, repo, repoFullName, pr)
	if err != nil {
		return nil, err
	}

	return append(reactions, reviews...), nil
}

func (c *Client) reactionSignals(ctx context.Context, owner, repo, repoFullName string, number int) ([]model.VoteSignal, error) {
	opts := &gh.ListReactionOptions{
		ListOptions: gh.ListOptions{PerPage: 100},
	}
	var signals []model.VoteSignal

	for {
		reactions, resp, err := c.gh.Reactions.ListIssueReactions(ctx, owner, repo, number, opts)
		if err != nil {
			return nil, fmt.Errorf("listing reactions for %s#%d (page %d): %w", repoFullName, number, opts.Page, err)
		}

		for _, r := range reactions {
			login := r.GetUser().GetLogin()
			if login == "" || strings.EqualFold(login, c.username) {
				continue
			}

			switch r.GetContent() {
			case reactionUp:
				signals = append(signals, model.VoteSignal{Login: login, Weight: 1, Source: model.SourceReaction, Current: true})
			case reactionDown:
				signals = append(signals, model.VoteSignal{Login: login, Weight: -1, Source: model.SourceReaction, Current: true})
			}
		}

		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}

	return signals, nil
}

func (c *Client) reviewSignals(ctx context.Context, owner, repo, repoFullName string, pr model.PullRequest) ([]model.VoteSignal, error) {
	opts := &gh.ListOptions{PerPage: 100}
	var signals []model.VoteSignal

	for {
		reviews, resp, err := c.gh.PullRequests.ListReviews(ctx, owner, repo, pr.Number, opts)
		if err != nil {
			return nil, fmt.Errorf("listing reviews for %s#%d (page %d): %w", repoFullName, pr.Number, opts.Page, err)
		}

		for _, r := range reviews {
			login := r.GetUser().GetLogin()
			if login == "" || strings.EqualFold(login, c.username) {
				continue
			}

			var weight int
			switch r.GetState() {
			case reviewApproved:
				weight = 1
			case reviewChangesRequested:
				weight = -1
			default:
				continue
			}

			signals = append(signals, model.VoteSignal{
				Login:   login,
				Weight:  weight,
				Source:  model.SourceReview,
				Current: r.GetCommitID() == pr.HeadSHA,
			})
		}

		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}

	return signals, nil
}

// FetchWatcherCount returns the repository's subscriber (watcher) count.
func (c *Client) FetchWatcherCount(ctx context.Context, repoFullName string) (int, error) {
	owner, repo, err := splitRepo(repoFullName)
	if err != nil {
		return 0, err
	}

	r, resp, err := c.gh.Repositories.Get(ctx, owner, repo)
	if err != nil {
		return 0, fmt.Errorf("fetching repository %s: %w", repoFullName, err)
	}

	logRateLimit(resp, repoFullName, 0, 1)

	return r.GetSubscribersCount(), nil
}

func logRateLimit(resp *gh.Response, endpoint string, page, count int) {
	if resp == nil {
		return
	}

	slog.Debug("github api call",
		"endpoint", endpoint,
		"page", page,
		"count", count,
		"rate_remaining", resp.Rate.Remaining,
		"rate_limit", resp.Rate.Limit,
	)

	if resp.Rate.Limit > 0 && resp.Rate.Remaining < 100 {
		slog.Warn("github rate limit low",
			"remaining", resp.Rate.Remaining,
			"reset_in", time.Until(resp.Rate.Reset.Time).Round(time.Second),
		)
	}
}

// mapPullRequest converts a go-github PullRequest to a domain model PullRequest.
// It uses GetXxx() helper methods exclusively to avoid nil pointer panics.
// UpdatedAt starts at the creation time; the caller advances it to the head
// commit date.
func mapPullRequest(pr *gh.PullRequest, repoFullName string) model.PullRequest {
	labels := make([]string, 0, len(pr.Labels))
	for _, l := range pr.Labels {
		labels = append(labels, l.GetName())
	}

	return model.PullRequest{
		Number:       pr.GetNumber(),
		RepoFullName: repoFullName,
		Title:        pr.GetTitle(),
		Author:       pr.GetUser().GetLogin(),
		HeadSHA:      pr.GetHead().GetSHA(),
		IsDraft:      pr.GetDraft(),
		URL:          pr.GetHTMLURL(),
		Labels:       labels,
		CreatedAt:    pr.GetCreatedAt().Time,
		UpdatedAt:    pr.GetCreatedAt().Time,
	}
}

func splitRepo(fullName string) (string, string, error) {
	parts := strings.SplitN(fullName, "/", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", fmt.Errorf("invalid repo name %q: expected owner/repo", fullName)
	}
	return parts[0], parts[1], nil
}
