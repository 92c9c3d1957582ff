package driven

import (
	"context"
	"errors"

	"github.com/ericfisherdev/meritbot/internal/domain/model"
)

// ErrVoterNotFound is returned by IncrementVotes for a login without a
// credit record.
var ErrVoterNotFound = errors.New("voter not found")

// VoterStore defines the driven port for per-login vote credit persistence.
// Logins are stored lowercase.
type VoterStore interface {
	// GetOrCreateUser returns the credit record for login, creating it with
	// one vote when absent. created reports whether this call inserted it.
	GetOrCreateUser(ctx context.Context, login string) (credit model.VoterCredit, created bool, err error)

	// IncrementVotes adds one vote to an existing record atomically. Returns
	// ErrVoterNotFound when login has no record.
	IncrementVotes(ctx context.Context, login string) error

	// TopVoters returns at most limit records ordered by votes descending,
	// ties broken by login ascending.
	TopVoters(ctx context.Context, limit int) ([]model.VoterCredit, error)

	// ListVoters returns every record in TopVoters order.
	ListVoters(ctx context.Context) ([]model.VoterCredit, error)
}

// MentionStore defines the driven port for meritocracy mention dedup.
type MentionStore interface {
	// GetOrCreateMention atomically inserts a mention for commitHash if none
	// exists. created is true only for the caller whose insert won.
	GetOrCreateMention(ctx context.Context, commitHash string) (mention model.MeritocracyMention, created bool, err error)
}
