package application_test

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/ericfisherdev/meritbot/internal/domain/model"
	"github.com/ericfisherdev/meritbot/internal/domain/port/driven"
)

// --- Mock implementations ---

type mockGitHubClient struct {
	prs          []model.PullRequest
	contributors []model.ContributorStat
	signals      map[int][]model.VoteSignal
	watchers     int

	listErr    error
	signalsErr error
}

var _ driven.GitHubClient = (*mockGitHubClient)(nil)

func (m *mockGitHubClient) ListReadyPullRequests(_ context.Context, _ string, _ time.Duration) ([]model.PullRequest, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	return m.prs, nil
}

func (m *mockGitHubClient) FetchContributors(_ context.Context, _ string) ([]model.ContributorStat, error) {
	return m.contributors, nil
}

func (m *mockGitHubClient) FetchVoteSignals(_ context.Context, _ string, pr model.PullRequest) ([]model.VoteSignal, error) {
	if m.signalsErr != nil {
		return nil, m.signalsErr
	}
	return m.signals[pr.Number], nil
}

func (m *mockGitHubClient) FetchWatcherCount(_ context.Context, _ string) (int, error) {
	return m.watchers, nil
}

// writerCall records one GitHubWriter invocation as a comparable string.
type writerCall string

type mockGitHubWriter struct {
	mu    sync.Mutex
	calls []writerCall

	comments map[int][]string

	// mergeErr maps a PR number to the error MergePullRequest returns.
	mergeErr   map[int]error
	commentErr error
	statusErr  error

	// onMerge runs after a successful merge is recorded.
	onMerge func(number int)
}

var _ driven.GitHubWriter = (*mockGitHubWriter)(nil)

func newMockWriter() *mockGitHubWriter {
	return &mockGitHubWriter{comments: map[int][]string{}, mergeErr: map[int]error{}}
}

func (m *mockGitHubWriter) record(format string, args ...any) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, writerCall(fmt.Sprintf(format, args...)))
}

func (m *mockGitHubWriter) PostStatus(_ context.Context, _, sha string, kind model.StatusKind, _ string) error {
	if m.statusErr != nil {
		return m.statusErr
	}
	m.record("status %s %s", sha, kind)
	return nil
}

func (m *mockGitHubWriter) CreateIssueComment(_ context.Context, _ string, prNumber int, body string) error {
	if m.commentErr != nil {
		return m.commentErr
	}
	m.record("comment %d", prNumber)
	m.mu.Lock()
	m.comments[prNumber] = append(m.comments[prNumber], body)
	m.mu.Unlock()
	return nil
}

func (m *mockGitHubWriter) AddLabels(_ context.Context, _ string, prNumber int, labels []string) error {
	m.record("label %d %s", prNumber, strings.Join(labels, ","))
	return nil
}

func (m *mockGitHubWriter) MergePullRequest(_ context.Context, _ string, pr model.PullRequest, _ string) (string, error) {
	if err := m.mergeErr[pr.Number]; err != nil {
		return "", err
	}
	m.record("merge %d", pr.Number)
	if m.onMerge != nil {
		m.onMerge(pr.Number)
	}
	return "merge-" + pr.HeadSHA, nil
}

func (m *mockGitHubWriter) ClosePullRequest(_ context.Context, _ string, prNumber int) error {
	m.record("close %d", prNumber)
	return nil
}

func (m *mockGitHubWriter) FollowUser(_ context.Context, login string) error {
	m.record("follow %s", login)
	return nil
}

func (m *mockGitHubWriter) Calls() []writerCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]writerCall, len(m.calls))
	copy(out, m.calls)
	return out
}

func (m *mockGitHubWriter) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = nil
	m.comments = map[int][]string{}
}

type mockVoterStore struct {
	mu     sync.Mutex
	votes  map[string]int
	topErr error
}

var _ driven.VoterStore = (*mockVoterStore)(nil)

func newMockVoterStore() *mockVoterStore {
	return &mockVoterStore{votes: map[string]int{}}
}

func (m *mockVoterStore) GetOrCreateUser(_ context.Context, login string) (model.VoterCredit, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if v, ok := m.votes[login]; ok {
		return model.VoterCredit{Login: login, Votes: v}, false, nil
	}
	m.votes[login] = 1
	return model.VoterCredit{Login: login, Votes: 1}, true, nil
}

func (m *mockVoterStore) IncrementVotes(_ context.Context, login string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.votes[login]; !ok {
		return fmt.Errorf("voter %s not found", login)
	}
	m.votes[login]++
	return nil
}

func (m *mockVoterStore) TopVoters(ctx context.Context, limit int) ([]model.VoterCredit, error) {
	if m.topErr != nil {
		return nil, m.topErr
	}
	all, _ := m.ListVoters(ctx)
	if len(all) > limit {
		all = all[:limit]
	}
	return all, nil
}

func (m *mockVoterStore) ListVoters(_ context.Context) ([]model.VoterCredit, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]model.VoterCredit, 0, len(m.votes))
	for login, v := range m.votes {
		out = append(out, model.VoterCredit{Login: login, Votes: v})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Votes != out[j].Votes {
			return out[i].Votes > out[j].Votes
		}
		return out[i].Login < out[j].Login
	})
	return out, nil
}

func (m *mockVoterStore) Votes(login string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.votes[login]
}

type mockMentionStore struct {
	mu      sync.Mutex
	mention map[string]bool
	err     error
}

var _ driven.MentionStore = (*mockMentionStore)(nil)

func newMockMentionStore() *mockMentionStore {
	return &mockMentionStore{mention: map[string]bool{}}
}

func (m *mockMentionStore) GetOrCreateMention(_ context.Context, commitHash string) (model.MeritocracyMention, bool, error) {
	if m.err != nil {
		return model.MeritocracyMention{}, false, m.err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.mention[commitHash] {
		return model.MeritocracyMention{CommitHash: commitHash}, false, nil
	}
	m.mention[commitHash] = true
	return model.MeritocracyMention{CommitHash: commitHash}, true, nil
}

type mockPublisher struct {
	published []model.MeritocracySet
	err       error
}

func (m *mockPublisher) Publish(_ context.Context, set model.MeritocracySet) error {
	m.published = append(m.published, set)
	return m.err
}

type mockRestarter struct {
	mu    sync.Mutex
	count int
}

func (m *mockRestarter) Restart() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.count++
	return nil
}

func (m *mockRestarter) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.count
}
