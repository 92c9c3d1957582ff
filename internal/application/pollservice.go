package application

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/ericfisherdev/meritbot/internal/domain/port/driven"
)

// CycleRunner runs one decision cycle. *CycleService implements it.
type CycleRunner interface {
	RunCycle(ctx context.Context) (CycleResult, error)
}

// triggerRequest represents a manual cycle trigger.
type triggerRequest struct {
	done chan triggerResponse
}

type triggerResponse struct {
	result CycleResult
	err    error
}

// PollService drives decision cycles on a fixed interval and restarts the
// process after a cycle that merged code.
type PollService struct {
	runner    CycleRunner
	restarter driven.Restarter
	interval  time.Duration
	triggerCh chan triggerRequest

	mu       sync.RWMutex
	last     *CycleResult
	lastErr  error
	lastTime time.Time
}

// NewPollService creates a new PollService. restarter may be nil, in which
// case restart requests are only logged.
func NewPollService(runner CycleRunner, restarter driven.Restarter, interval time.Duration) *PollService {
	return &PollService{
		runner:    runner,
		restarter: restarter,
		interval:  interval,
		triggerCh: make(chan triggerRequest),
	}
}

// Start begins the polling loop. It runs an immediate cycle, then one per
// interval. It also serves manual triggers. Start blocks until the context
// is canceled. Cycles never overlap: triggers are handled on the same
// goroutine as scheduled cycles.
func (s *PollService) Start(ctx context.Context) {
	if _, err := s.runAndRestart(ctx); err != nil {
		slog.Error("initial cycle failed", "error", err)
	}

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("poll service stopped")
			return
		case <-ticker.C:
			if _, err := s.runAndRestart(ctx); err != nil {
				slog.Error("cycle failed", "error", err)
			}
		case req := <-s.triggerCh:
			result, err := s.runAndRestart(ctx)
			req.done <- triggerResponse{result: result, err: err}
		}
	}
}

// TriggerCycle asks the running loop for an immediate cycle, bypassing the
// interval. It blocks until the cycle completes or the context is canceled.
func (s *PollService) TriggerCycle(ctx context.Context) (CycleResult, error) {
	done := make(chan triggerResponse, 1)
	req := triggerRequest{done: done}

	select {
	case s.triggerCh <- req:
	case <-ctx.Done():
		return CycleResult{}, ctx.Err()
	}

	select {
	case resp := <-done:
		return resp.result, resp.err
	case <-ctx.Done():
		return CycleResult{}, ctx.Err()
	}
}

// LastResult returns the most recent cycle result and error. ok is false
// before the first cycle completes.
func (s *PollService) LastResult() (result CycleResult, err error, at time.Time, ok bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.last == nil {
		return CycleResult{}, nil, time.Time{}, false
	}
	return *s.last, s.lastErr, s.lastTime, true
}

// runAndRestart runs one cycle, records it, and restarts the process if the
// cycle asked for it. The restart is the last action of the cycle so no PR
// is left half-processed.
func (s *PollService) runAndRestart(ctx context.Context) (CycleResult, error) {
	result, err := s.runner.RunCycle(ctx)

	s.mu.Lock()
	s.last = &result
	s.lastErr = err
	s.lastTime = time.Now()
	s.mu.Unlock()

	if !result.RestartRequested {
		return result, err
	}

	slog.Info("restarting after merge", "cycle_id", result.ID, "merged", result.Merged)
	if s.restarter == nil {
		return result, err
	}
	if rerr := s.restarter.Restart(); rerr != nil {
		slog.Error("restart failed", "cycle_id", result.ID, "error", rerr)
	}
	return result, err
}
