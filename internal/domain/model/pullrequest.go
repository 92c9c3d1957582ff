package model

import (
	"strings"
	"time"
)

// PullRequest represents an open GitHub pull request considered for voting.
// The engine only reads it; state changes go through the GitHubWriter port.
type PullRequest struct {
	Number       int
	RepoFullName string
	Title        string
	Author       string
	HeadSHA      string // Head commit SHA; statuses and mention dedup key on it.
	IsDraft      bool
	URL          string
	Labels       []string
	CreatedAt    time.Time
	// UpdatedAt is the last code update: the later of PR creation and the
	// head commit's committer date. Comments and reactions do not move it.
	UpdatedAt time.Time
}

// AuthorLogin returns the author's login normalized to lowercase.
func (pr PullRequest) AuthorLogin() string {
	return strings.ToLower(pr.Author)
}

// IsWorkInProgress reports whether the PR is a draft or titled as WIP.
func (pr PullRequest) IsWorkInProgress() bool {
	if pr.IsDraft {
		return true
	}
	title := strings.ToLower(strings.TrimSpace(pr.Title))
	return strings.HasPrefix(title, "wip") || strings.HasPrefix(title, "[wip]")
}
