package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/ericfisherdev/meritbot/internal/domain/model"
	"github.com/ericfisherdev/meritbot/internal/domain/port/driven"
)

// Actions taken on a PR during a cycle, reported in PROutcome.
const (
	ActionMerged         = "merged"
	ActionCantMerge      = "cant_merge"
	ActionAcceptedStatus = "accepted_status"
	ActionClosed         = "closed"
	ActionRejectedStatus = "rejected_status"
	ActionPendingStatus  = "pending_status"
)

// CycleConfig is the explicit configuration of the decision engine.
type CycleConfig struct {
	RepoFullName    string
	BotLogin        string
	Production      bool
	TopVoters       int
	TopContributors int
	Windows         VotingWindowPolicy
	Policy          model.VotingPolicy
	// Scorer measures variance; nil uses a DisagreementScorer built from
	// Policy.
	Scorer Scorer
	// Now returns the current time; nil uses time.Now.
	Now func() time.Time
}

// PROutcome describes what one cycle did with one PR.
type PROutcome struct {
	Number    int
	Decision  model.Decision
	Action    string
	Voters    []string
	Mentioned bool
}

// CycleResult summarizes one cycle.
type CycleResult struct {
	ID          string
	StartedAt   time.Time
	FinishedAt  time.Time
	Meritocracy []string
	Threshold   int
	Outcomes    []PROutcome
	Merged      int
	Rejected    int
	Pending     int
	// RestartRequested is set when at least one PR was merged. The driver
	// honours it once, after every PR has been processed.
	RestartRequested bool
}

// CycleService runs the PR lifecycle: one call to RunCycle evaluates every
// ready PR and executes the resulting actions. No per-PR state survives a
// cycle; each one is rebuilt from live votes and timestamps.
type CycleService struct {
	ghClient   driven.GitHubClient
	ghWriter   driven.GitHubWriter
	voterStore driven.VoterStore
	notifier   *MentionNotifier
	publisher  driven.MeritocracyPublisher
	cfg        CycleConfig
	scorer     Scorer
	now        func() time.Time
	logger     *slog.Logger
}

// NewCycleService creates a CycleService with all required dependencies.
func NewCycleService(
	ghClient driven.GitHubClient,
	ghWriter driven.GitHubWriter,
	voterStore driven.VoterStore,
	mentionStore driven.MentionStore,
	publisher driven.MeritocracyPublisher,
	cfg CycleConfig,
) *CycleService {
	cfg.Policy = cfg.Policy.WithDefaults()

	scorer := cfg.Scorer
	if scorer == nil {
		scorer = NewDisagreementScorer(cfg.Policy)
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}

	return &CycleService{
		ghClient:   ghClient,
		ghWriter:   ghWriter,
		voterStore: voterStore,
		notifier:   NewMentionNotifier(mentionStore, ghWriter),
		publisher:  publisher,
		cfg:        cfg,
		scorer:     scorer,
		now:        now,
		logger:     slog.Default(),
	}
}

// RunCycle evaluates every ready PR once. Merge conflicts and mention
// failures are recovered per PR; any other error aborts the cycle and the
// next scheduled cycle starts over from live data.
func (s *CycleService) RunCycle(ctx context.Context) (CycleResult, error) {
	result := CycleResult{ID: uuid.NewString(), StartedAt: s.now()}
	logger := s.logger.With("cycle_id", result.ID, "repo", s.cfg.RepoFullName)
	logger.Info("looking for PRs")

	prs, err := s.ghClient.ListReadyPullRequests(ctx, s.cfg.RepoFullName, 0)
	if err != nil {
		return result, fmt.Errorf("list ready pull requests: %w", err)
	}

	meritocracy, err := s.meritocracy(ctx, logger)
	if err != nil {
		return result, err
	}
	result.Meritocracy = meritocracy.Members.Sorted()

	watchers, err := s.ghClient.FetchWatcherCount(ctx, s.cfg.RepoFullName)
	if err != nil {
		return result, fmt.Errorf("fetch watcher count: %w", err)
	}
	result.Threshold = ApprovalThreshold(watchers, s.cfg.Policy)

	for _, pr := range prs {
		if err := ctx.Err(); err != nil {
			result.RestartRequested = result.Merged > 0
			result.FinishedAt = s.now()
			return result, fmt.Errorf("process PR #%d: %w", pr.Number, err)
		}

		outcome, err := s.processPR(ctx, logger, pr, meritocracy, result.Threshold)
		if err != nil {
			// Code merged before the abort still needs the restart.
			if outcome.Action == ActionMerged {
				result.Merged++
			}
			result.RestartRequested = result.Merged > 0
			result.FinishedAt = s.now()
			return result, fmt.Errorf("process PR #%d: %w", pr.Number, err)
		}

		result.Outcomes = append(result.Outcomes, outcome)
		switch outcome.Action {
		case ActionMerged:
			result.Merged++
		case ActionClosed, ActionRejectedStatus:
			result.Rejected++
		case ActionPendingStatus:
			result.Pending++
		}
	}

	result.RestartRequested = result.Merged > 0
	result.FinishedAt = s.now()

	logger.Info("cycle complete",
		"prs", len(prs),
		"merged", result.Merged,
		"rejected", result.Rejected,
		"pending", result.Pending,
		"restart_requested", result.RestartRequested,
		"duration", result.FinishedAt.Sub(result.StartedAt).Round(time.Millisecond),
	)

	return result, nil
}

// CurrentMeritocracy computes the meritocracy from live contributor stats
// and stored vote credit without publishing it.
func (s *CycleService) CurrentMeritocracy(ctx context.Context) (Meritocracy, error) {
	contributors, err := s.ghClient.FetchContributors(ctx, s.cfg.RepoFullName)
	if err != nil {
		return Meritocracy{}, fmt.Errorf("fetch contributors: %w", err)
	}

	topVoters, err := s.voterStore.TopVoters(ctx, s.cfg.TopVoters)
	if err != nil {
		return Meritocracy{}, fmt.Errorf("load top voters: %w", err)
	}

	return BuildMeritocracy(topVoters, contributors, s.cfg.TopContributors), nil
}

// meritocracy builds and publishes this cycle's meritocracy. Publishing is a
// side channel: a failure is logged and the cycle continues.
func (s *CycleService) meritocracy(ctx context.Context, logger *slog.Logger) (Meritocracy, error) {
	m, err := s.CurrentMeritocracy(ctx)
	if err != nil {
		return Meritocracy{}, err
	}

	logger.Info("generated meritocracy",
		"members", m.Members.Sorted(),
		"top_voters", m.TopVoters,
		"top_contributors", m.TopContributors,
	)

	if s.publisher != nil {
		if err := s.publisher.Publish(ctx, m.Members); err != nil {
			logger.Error("publish meritocracy failed", "error", err)
		}
	}

	return m, nil
}

// processPR decides one PR and executes the resulting actions.
func (s *CycleService) processPR(ctx context.Context, logger *slog.Logger, pr model.PullRequest, m Meritocracy, threshold int) (PROutcome, error) {
	logger = logger.With("pr", pr.Number)
	logger.Info("processing PR")

	signals, err := s.ghClient.FetchVoteSignals(ctx, s.cfg.RepoFullName, pr)
	if err != nil {
		return PROutcome{}, fmt.Errorf("fetch votes: %w", err)
	}

	votes, satisfied := CollectVotes(pr, signals, m.Members, s.cfg.Policy.MeritocracyQuorum)
	total := TallyVotes(votes, m.Contributors, s.scorer)
	elapsed := SecondsSinceUpdated(pr, s.now())
	decision := Decide(total, threshold, satisfied, elapsed, s.cfg.Windows)

	outcome := PROutcome{Number: pr.Number, Decision: decision, Voters: votes.Voters()}

	logger.Info("PR evaluated",
		"disposition", string(decision.Disposition),
		"vote_total", total.Sum,
		"variance", total.Variance,
		"threshold", threshold,
		"meritocracy_satisfied", satisfied,
		"contested", decision.Contested,
		"window", decision.Window,
		"elapsed", elapsed,
		"in_window", decision.InWindow,
	)

	if s.shouldMentionMeritocracy(decision, elapsed) {
		mentioned, err := s.mentionMeritocracy(ctx, pr, m)
		switch {
		case errors.Is(err, ErrMentionFailed):
			logger.Error("failed to process meritocracy mention", "error", err)
		case err != nil:
			return outcome, err
		default:
			outcome.Mentioned = mentioned
		}
	}

	if decision.Approved() {
		merged, err := s.handleApproved(ctx, logger, pr, votes, decision)
		if errors.Is(err, driven.ErrCouldNotMerge) {
			logger.Info("couldn't merge PR, skipping", "error", err)
			if err := s.ghWriter.AddLabels(ctx, s.cfg.RepoFullName, pr.Number, []string{model.LabelCantMerge}); err != nil {
				return outcome, fmt.Errorf("label can't merge: %w", err)
			}
			outcome.Action = ActionCantMerge
			return outcome, nil
		}
		outcome.Action = ActionAcceptedStatus
		if merged {
			outcome.Action = ActionMerged
		}
		if err != nil {
			return outcome, err
		}
	} else {
		action, err := s.handleNotApproved(ctx, logger, pr, votes, decision)
		if err != nil {
			return outcome, err
		}
		outcome.Action = action
	}

	if err := s.creditVoters(ctx, votes); err != nil {
		return outcome, err
	}

	return outcome, nil
}

// shouldMentionMeritocracy reports whether a contested PR with enough
// community support has waited past the base window without a trusted vote.
func (s *CycleService) shouldMentionMeritocracy(d model.Decision, elapsed time.Duration) bool {
	if !d.Contested || !s.cfg.Production || d.MeritocracySatisfied {
		return false
	}
	if float64(d.Total.Sum) < float64(d.Threshold)*s.cfg.Policy.MentionFraction {
		return false
	}
	return elapsed > s.cfg.Windows.Base()
}

// mentionMeritocracy pings every meritocracy member except the author and
// the bot itself.
func (s *CycleService) mentionMeritocracy(ctx context.Context, pr model.PullRequest, m Meritocracy) (bool, error) {
	mentions := m.Members.Without(pr.AuthorLogin(), s.cfg.BotLogin)
	return s.notifier.Notify(ctx, s.cfg.RepoFullName, pr, mentions)
}

// handleApproved posts the accepted status and, once in window, merges.
// It reports whether the PR was merged. A refused merge is returned as an
// error wrapping driven.ErrCouldNotMerge.
func (s *CycleService) handleApproved(ctx context.Context, logger *slog.Logger, pr model.PullRequest, votes model.Vote, d model.Decision) (bool, error) {
	logger.Info("PR status: will be approved")

	if err := s.postStatus(ctx, pr, model.StatusAccepted, d); err != nil {
		return false, err
	}

	if !d.InWindow {
		return false, nil
	}

	logger.Info("PR approved for merging")
	sha, err := s.ghWriter.MergePullRequest(ctx, s.cfg.RepoFullName, pr, mergeCommitMessage(pr, votes, d))
	if err != nil {
		return false, fmt.Errorf("merge: %w", err)
	}

	if err := s.ghWriter.CreateIssueComment(ctx, s.cfg.RepoFullName, pr.Number, acceptComment(sha, votes, d)); err != nil {
		return true, fmt.Errorf("accept comment: %w", err)
	}
	if err := s.ghWriter.AddLabels(ctx, s.cfg.RepoFullName, pr.Number, []string{model.LabelAccepted}); err != nil {
		return true, fmt.Errorf("label accepted: %w", err)
	}
	// Merged authors are rewarded with a follow.
	if err := s.ghWriter.FollowUser(ctx, pr.Author); err != nil {
		return true, fmt.Errorf("follow %s: %w", pr.Author, err)
	}

	logger.Info("PR merged", "sha", sha)
	return true, nil
}

// handleNotApproved closes rejected PRs once in window and otherwise only
// reports the provisional outcome as a status.
func (s *CycleService) handleNotApproved(ctx context.Context, logger *slog.Logger, pr model.PullRequest, votes model.Vote, d model.Decision) (string, error) {
	logger.Info("PR status: will be rejected")

	switch {
	case d.InWindow:
		if err := s.postStatus(ctx, pr, model.StatusRejected, d); err != nil {
			return "", err
		}
		logger.Info("PR rejected, closing")
		if err := s.ghWriter.CreateIssueComment(ctx, s.cfg.RepoFullName, pr.Number, rejectComment(votes, d)); err != nil {
			return "", fmt.Errorf("reject comment: %w", err)
		}
		if err := s.ghWriter.AddLabels(ctx, s.cfg.RepoFullName, pr.Number, []string{model.LabelRejected}); err != nil {
			return "", fmt.Errorf("label rejected: %w", err)
		}
		if err := s.ghWriter.ClosePullRequest(ctx, s.cfg.RepoFullName, pr.Number); err != nil {
			return "", fmt.Errorf("close: %w", err)
		}
		return ActionClosed, nil
	case d.Total.Sum < 0:
		if err := s.postStatus(ctx, pr, model.StatusRejected, d); err != nil {
			return "", err
		}
		return ActionRejectedStatus, nil
	default:
		if err := s.postStatus(ctx, pr, model.StatusPending, d); err != nil {
			return "", err
		}
		return ActionPendingStatus, nil
	}
}

func (s *CycleService) postStatus(ctx context.Context, pr model.PullRequest, kind model.StatusKind, d model.Decision) error {
	if err := s.ghWriter.PostStatus(ctx, s.cfg.RepoFullName, pr.HeadSHA, kind, statusDescription(kind, d)); err != nil {
		return fmt.Errorf("post %s status: %w", kind, err)
	}
	return nil
}

// creditVoters adds one vote credit to every distinct voter on the PR. The
// new credits only affect the next cycle's meritocracy.
func (s *CycleService) creditVoters(ctx context.Context, votes model.Vote) error {
	for _, login := range votes.Voters() {
		_, created, err := s.voterStore.GetOrCreateUser(ctx, login)
		if err != nil {
			return fmt.Errorf("credit voter %s: %w", login, err)
		}
		if created {
			continue
		}
		if err := s.voterStore.IncrementVotes(ctx, login); err != nil {
			return fmt.Errorf("credit voter %s: %w", login, err)
		}
	}
	return nil
}
