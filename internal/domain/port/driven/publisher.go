package driven

import (
	"context"

	"github.com/ericfisherdev/meritbot/internal/domain/model"
)

// MeritocracyPublisher receives the meritocracy computed each cycle. It is
// an output side channel for inspection; the engine never reads it back.
type MeritocracyPublisher interface {
	Publish(ctx context.Context, meritocracy model.MeritocracySet) error
}

// Restarter replaces or ends the running process after a cycle merged code.
// A successful exec-style Restart does not return.
type Restarter interface {
	Restart() error
}
