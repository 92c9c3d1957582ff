package github_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	ghAdapter "github.com/ericfisherdev/meritbot/internal/adapter/driven/github"
	"github.com/ericfisherdev/meritbot/internal/domain/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2026, 1, 10, 12, 0, 0, 0, time.UTC)

// newTestClient creates a Client backed by the given httptest handler.
func newTestClient(t *testing.T, handler http.Handler) (*ghAdapter.Client, *httptest.Server) {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := ghAdapter.NewClientWithHTTPClient(
		server.Client(),
		server.URL+"/",
		"chaosbot",
		func() time.Time { return fixedNow },
	)
	require.NoError(t, err)

	return client, server
}

func writeJSON(t *testing.T, w http.ResponseWriter, status int, v any) {
	t.Helper()
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	assert.NoError(t, json.NewEncoder(w).Encode(v))
}

// prJSON is a helper struct for building GitHub API pull request responses.
type prJSON struct {
	Number  int       `json:"number"`
	Title   string    `json:"title"`
	State   string    `json:"state"`
	Draft   bool      `json:"draft"`
	HTMLURL string    `json:"html_url"`
	User    userJSON  `json:"user"`
	Head    refJSON   `json:"head"`
	Labels  []lblJSON `json:"labels"`
	Created string    `json:"created_at,omitempty"`
	Updated string    `json:"updated_at,omitempty"`
}

type userJSON struct {
	Login string `json:"login"`
}

type refJSON struct {
	Ref string `json:"ref"`
	SHA string `json:"sha,omitempty"`
}

type lblJSON struct {
	Name string `json:"name"`
}

func commitJSON(sha, date string) map[string]any {
	return map[string]any{
		"sha": sha,
		"commit": map[string]any{
			"committer": map[string]any{"date": date},
		},
	}
}

func TestListReadyPullRequests(t *testing.T) {
	prs := []prJSON{
		{
			Number:  42,
			Title:   "Add feature X",
			State:   "open",
			HTMLURL: "https://github.com/owner/repo/pull/42",
			User:    userJSON{Login: "alice"},
			Head:    refJSON{Ref: "feature-x", SHA: "aaa"},
			Labels:  []lblJSON{{Name: "enhancement"}},
			Created: "2026-01-01T00:00:00Z",
			Updated: "2026-01-10T11:59:00Z",
		},
		{
			Number:  43,
			Title:   "WIP: refactor",
			State:   "open",
			User:    userJSON{Login: "bob"},
			Head:    refJSON{Ref: "wip", SHA: "bbb"},
			Created: "2026-01-01T00:00:00Z",
			Updated: "2026-01-01T00:00:00Z",
		},
		{
			Number:  44,
			Title:   "Draft thing",
			State:   "open",
			Draft:   true,
			User:    userJSON{Login: "carol"},
			Head:    refJSON{Ref: "draft", SHA: "ccc"},
			Created: "2026-01-01T00:00:00Z",
			Updated: "2026-01-01T00:00:00Z",
		},
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /repos/owner/repo/pulls", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "open", r.URL.Query().Get("state"))
		writeJSON(t, w, http.StatusOK, prs)
	})
	mux.HandleFunc("GET /repos/owner/repo/commits/aaa", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(t, w, http.StatusOK, commitJSON("aaa", "2026-01-05T00:00:00Z"))
	})

	client, _ := newTestClient(t, mux)
	result, err := client.ListReadyPullRequests(context.Background(), "owner/repo", 0)

	require.NoError(t, err)
	require.Len(t, result, 1, "drafts and WIP PRs are skipped")

	pr := result[0]
	assert.Equal(t, 42, pr.Number)
	assert.Equal(t, "owner/repo", pr.RepoFullName)
	assert.Equal(t, "Add feature X", pr.Title)
	assert.Equal(t, "alice", pr.Author)
	assert.Equal(t, "aaa", pr.HeadSHA)
	assert.Equal(t, "https://github.com/owner/repo/pull/42", pr.URL)
	assert.Equal(t, []string{"enhancement"}, pr.Labels)
	assert.Equal(t, time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC), pr.CreatedAt.UTC())
	// The PR's updated_at moves with comments; the head commit date does not.
	assert.Equal(t, time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC), pr.UpdatedAt.UTC())
}

func TestListReadyPullRequests_MinAge(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /repos/owner/repo/pulls", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(t, w, http.StatusOK, []prJSON{
			{Number: 1, Title: "old", User: userJSON{Login: "a"}, Head: refJSON{SHA: "old"}, Created: "2026-01-01T00:00:00Z", Updated: "2026-01-01T00:00:00Z"},
			{Number: 2, Title: "fresh", User: userJSON{Login: "b"}, Head: refJSON{SHA: "new"}, Created: "2026-01-01T00:00:00Z", Updated: "2026-01-01T00:00:00Z"},
		})
	})
	mux.HandleFunc("GET /repos/owner/repo/commits/old", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(t, w, http.StatusOK, commitJSON("old", "2026-01-09T00:00:00Z"))
	})
	mux.HandleFunc("GET /repos/owner/repo/commits/new", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(t, w, http.StatusOK, commitJSON("new", "2026-01-10T11:30:00Z"))
	})

	client, _ := newTestClient(t, mux)
	result, err := client.ListReadyPullRequests(context.Background(), "owner/repo", time.Hour)

	require.NoError(t, err)
	require.Len(t, result, 1)
	assert.Equal(t, 1, result[0].Number)
}

func TestListReadyPullRequests_Pagination(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /repos/owner/repo/pulls", func(w http.ResponseWriter, r *http.Request) {
		page := r.URL.Query().Get("page")
		if page == "" || page == "1" {
			// Page 1: include Link header pointing to page 2
			w.Header().Set("Link", fmt.Sprintf(`<%s?page=2>; rel="next"`, "http://"+r.Host+r.URL.Path))
			writeJSON(t, w, http.StatusOK, []prJSON{
				{Number: 1, Title: "PR One", User: userJSON{Login: "dev1"}, Created: "2026-01-01T00:00:00Z", Updated: "2026-01-01T00:00:00Z"},
			})
			return
		}
		// Page 2: no Link header (last page)
		writeJSON(t, w, http.StatusOK, []prJSON{
			{Number: 2, Title: "PR Two", User: userJSON{Login: "dev2"}, Created: "2026-01-02T00:00:00Z", Updated: "2026-01-02T00:00:00Z"},
		})
	})

	client, _ := newTestClient(t, mux)
	result, err := client.ListReadyPullRequests(context.Background(), "owner/repo", 0)

	require.NoError(t, err)
	require.Len(t, result, 2)
	assert.Equal(t, "PR One", result[0].Title)
	assert.Equal(t, "PR Two", result[1].Title)
}

func TestListReadyPullRequests_MissingTimestamps(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /repos/owner/repo/pulls", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(t, w, http.StatusOK, []prJSON{
			{Number: 3, Title: "no dates", User: userJSON{Login: "dev3"}},
		})
	})

	client, _ := newTestClient(t, mux)
	result, err := client.ListReadyPullRequests(context.Background(), "owner/repo", 0)

	require.NoError(t, err)
	require.Len(t, result, 1)
	assert.True(t, result[0].UpdatedAt.IsZero())
}

func TestListReadyPullRequests_InvalidRepoName(t *testing.T) {
	client, _ := newTestClient(t, http.NotFoundHandler())

	for _, name := range []string{"", "owner", "/repo", "owner/"} {
		_, err := client.ListReadyPullRequests(context.Background(), name, 0)
		assert.Error(t, err, "repo name %q", name)
	}
}

func TestFetchContributors_Stats(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /repos/owner/repo/stats/contributors", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(t, w, http.StatusOK, []map[string]any{
			{"author": map[string]any{"login": "alice"}, "total": 12},
			{"author": map[string]any{"login": "bob"}, "total": 3},
			{"total": 99},
		})
	})

	client, _ := newTestClient(t, mux)
	result, err := client.FetchContributors(context.Background(), "owner/repo")

	require.NoError(t, err)
	assert.Equal(t, []model.ContributorStat{
		{Login: "alice", Total: 12},
		{Login: "bob", Total: 3},
	}, result)
}

func TestFetchContributors_FallsBackWhileStatsCompute(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /repos/owner/repo/stats/contributors", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(t, w, http.StatusAccepted, map[string]any{})
	})
	mux.HandleFunc("GET /repos/owner/repo/contributors", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(t, w, http.StatusOK, []map[string]any{
			{"login": "carol", "contributions": 40},
			{"login": "dave", "contributions": 2},
		})
	})

	client, _ := newTestClient(t, mux)
	result, err := client.FetchContributors(context.Background(), "owner/repo")

	require.NoError(t, err)
	assert.Equal(t, []model.ContributorStat{
		{Login: "carol", Total: 40},
		{Login: "dave", Total: 2},
	}, result)
}

func TestFetchVoteSignals(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /repos/owner/repo/issues/7/reactions", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(t, w, http.StatusOK, []map[string]any{
			{"content": "+1", "user": map[string]any{"login": "alice"}},
			{"content": "-1", "user": map[string]any{"login": "bob"}},
			{"content": "heart", "user": map[string]any{"login": "carol"}},
			{"content": "+1", "user": map[string]any{"login": "ChaosBot"}},
		})
	})
	mux.HandleFunc("GET /repos/owner/repo/pulls/7/reviews", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(t, w, http.StatusOK, []map[string]any{
			{"state": "APPROVED", "commit_id": "head", "user": map[string]any{"login": "dave"}},
			{"state": "APPROVED", "commit_id": "old", "user": map[string]any{"login": "erin"}},
			{"state": "CHANGES_REQUESTED", "commit_id": "old", "user": map[string]any{"login": "frank"}},
			{"state": "COMMENTED", "commit_id": "head", "user": map[string]any{"login": "gina"}},
		})
	})

	client, _ := newTestClient(t, mux)
	result, err := client.FetchVoteSignals(context.Background(), "owner/repo", model.PullRequest{Number: 7, HeadSHA: "head"})

	require.NoError(t, err)
	assert.Equal(t, []model.VoteSignal{
		{Login: "alice", Weight: 1, Source: model.SourceReaction, Current: true},
		{Login: "bob", Weight: -1, Source: model.SourceReaction, Current: true},
		{Login: "dave", Weight: 1, Source: model.SourceReview, Current: true},
		{Login: "erin", Weight: 1, Source: model.SourceReview, Current: false},
		{Login: "frank", Weight: -1, Source: model.SourceReview, Current: false},
	}, result)
}

func TestFetchVoteSignals_Error(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /repos/owner/repo/issues/7/reactions", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(t, w, http.StatusInternalServerError, map[string]any{"message": "boom"})
	})

	client, _ := newTestClient(t, mux)
	_, err := client.FetchVoteSignals(context.Background(), "owner/repo", model.PullRequest{Number: 7})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "listing reactions for owner/repo#7")
}

func TestFetchWatcherCount(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /repos/owner/repo", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(t, w, http.StatusOK, map[string]any{
			"full_name":         "owner/repo",
			"subscribers_count": 250,
			"watchers_count":    1000,
		})
	})

	client, _ := newTestClient(t, mux)
	count, err := client.FetchWatcherCount(context.Background(), "owner/repo")

	require.NoError(t, err)
	assert.Equal(t, 250, count)
}
