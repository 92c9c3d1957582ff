package application

import (
	"context"
	"errors"
	"fmt"

	"github.com/ericfisherdev/meritbot/internal/domain/model"
	"github.com/ericfisherdev/meritbot/internal/domain/port/driven"
)

// ErrMentionFailed wraps every failure on the meritocracy mention path. The
// lifecycle logs and swallows errors of this kind only.
var ErrMentionFailed = errors.New("meritocracy mention failed")

// MentionNotifier posts the meritocracy reminder at most once per commit.
// The MentionStore insert is the synchronization point: only the caller
// whose insert created the record posts the comment.
type MentionNotifier struct {
	store  driven.MentionStore
	writer driven.GitHubWriter
}

// NewMentionNotifier creates a MentionNotifier.
func NewMentionNotifier(store driven.MentionStore, writer driven.GitHubWriter) *MentionNotifier {
	return &MentionNotifier{store: store, writer: writer}
}

// Notify requests the reminder comment on pr naming mentions. It returns
// true when this call posted the comment and false when a mention for the
// head commit already existed.
func (n *MentionNotifier) Notify(ctx context.Context, repoFullName string, pr model.PullRequest, mentions model.MeritocracySet) (bool, error) {
	_, created, err := n.store.GetOrCreateMention(ctx, pr.HeadSHA)
	if err != nil {
		return false, fmt.Errorf("%w: record mention for %s: %w", ErrMentionFailed, pr.HeadSHA, err)
	}
	if !created {
		return false, nil
	}

	if err := n.writer.CreateIssueComment(ctx, repoFullName, pr.Number, meritocracyComment(mentions.Sorted())); err != nil {
		return false, fmt.Errorf("%w: comment on %s#%d: %w", ErrMentionFailed, repoFullName, pr.Number, err)
	}

	return true, nil
}
