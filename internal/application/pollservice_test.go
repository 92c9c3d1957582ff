package application_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ericfisherdev/meritbot/internal/application"
)

type stubRunner struct {
	mu     sync.Mutex
	runs   int
	result application.CycleResult
	err    error
}

func (s *stubRunner) RunCycle(_ context.Context) (application.CycleResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.runs++
	r := s.result
	r.ID = "cycle"
	return r, s.err
}

func (s *stubRunner) set(result application.CycleResult, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.result = result
	s.err = err
}

func (s *stubRunner) Runs() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.runs
}

// startPoll runs the PollService loop in the background and returns a stop
// function that cancels it and waits for Start to return.
func startPoll(t *testing.T, svc *application.PollService) (context.Context, func()) {
	t.Helper()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		svc.Start(ctx)
		close(done)
	}()

	return ctx, func() {
		cancel()
		<-done
	}
}

func TestPollService_RunsImmediatelyAndOnTrigger(t *testing.T) {
	runner := &stubRunner{}
	svc := application.NewPollService(runner, nil, time.Hour)

	ctx, stop := startPoll(t, svc)
	defer stop()

	_, err := svc.TriggerCycle(ctx)
	require.NoError(t, err)
	_, err = svc.TriggerCycle(ctx)
	require.NoError(t, err)

	assert.Equal(t, 3, runner.Runs())
}

func TestPollService_RestartsOnlyWhenRequested(t *testing.T) {
	runner := &stubRunner{}
	restarter := &mockRestarter{}
	svc := application.NewPollService(runner, restarter, time.Hour)

	ctx, stop := startPoll(t, svc)
	defer stop()

	_, err := svc.TriggerCycle(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, restarter.Count())

	runner.set(application.CycleResult{Merged: 2, RestartRequested: true}, nil)
	_, err = svc.TriggerCycle(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, restarter.Count())
}

func TestPollService_RestartsAfterAbortedCycleThatMerged(t *testing.T) {
	runner := &stubRunner{
		result: application.CycleResult{Merged: 1, RestartRequested: true},
		err:    errors.New("github unavailable"),
	}
	restarter := &mockRestarter{}
	svc := application.NewPollService(runner, restarter, time.Hour)

	ctx, stop := startPoll(t, svc)
	defer stop()

	// The initial cycle and the triggered one both merged before failing.
	_, err := svc.TriggerCycle(ctx)
	require.Error(t, err)
	assert.Equal(t, 2, restarter.Count())
}

func TestPollService_LastResult(t *testing.T) {
	runner := &stubRunner{err: errors.New("boom")}
	svc := application.NewPollService(runner, nil, time.Hour)

	_, _, _, ok := svc.LastResult()
	assert.False(t, ok)

	ctx, stop := startPoll(t, svc)
	defer stop()

	_, err := svc.TriggerCycle(ctx)
	require.Error(t, err)

	result, lastErr, at, ok := svc.LastResult()
	require.True(t, ok)
	assert.Equal(t, "cycle", result.ID)
	assert.EqualError(t, lastErr, "boom")
	assert.False(t, at.IsZero())
}

func TestPollService_TriggerHonoursContext(t *testing.T) {
	svc := application.NewPollService(&stubRunner{}, nil, time.Hour)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	// No loop is running, so only the canceled context can unblock it.
	_, err := svc.TriggerCycle(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestPollService_StopsOnCancel(t *testing.T) {
	runner := &stubRunner{}
	svc := application.NewPollService(runner, nil, 10*time.Millisecond)

	_, stop := startPoll(t, svc)
	require.Eventually(t, func() bool { return runner.Runs() >= 2 }, time.Second, 5*time.Millisecond)
	stop()

	runs := runner.Runs()
	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, runs, runner.Runs())
}
