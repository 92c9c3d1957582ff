package sqlite

import (
	"context"
	"fmt"

	"github.com/ericfisherdev/meritbot/internal/domain/model"
	"github.com/ericfisherdev/meritbot/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.MentionStore = (*MentionRepo)(nil)

// MentionRepo is the SQLite implementation of the MentionStore port interface.
type MentionRepo struct {
	db *DB
}

// NewMentionRepo creates a new MentionRepo backed by the given DB.
func NewMentionRepo(db *DB) *MentionRepo {
	return &MentionRepo{db: db}
}

// GetOrCreateMention inserts a mention for commitHash unless one exists.
// The primary key makes the insert atomic: of any number of concurrent
// callers exactly one sees created == true.
func (r *MentionRepo) GetOrCreateMention(ctx context.Context, commitHash string) (model.MeritocracyMention, bool, error) {
	const insert = `INSERT INTO meritocracy_mentions (commit_hash) VALUES (?) ON CONFLICT(commit_hash) DO NOTHING`
	res, err := r.db.Writer.ExecContext(ctx, insert, commitHash)
	if err != nil {
		return model.MeritocracyMention{}, false, fmt.Errorf("create mention for %s: %w", commitHash, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return model.MeritocracyMention{}, false, fmt.Errorf("create mention for %s: %w", commitHash, err)
	}

	const query = `SELECT commit_hash, created_at FROM meritocracy_mentions WHERE commit_hash = ?`
	var m model.MeritocracyMention
	var createdAt string
	if err := r.db.Writer.QueryRowContext(ctx, query, commitHash).Scan(&m.CommitHash, &createdAt); err != nil {
		return model.MeritocracyMention{}, false, fmt.Errorf("get mention for %s: %w", commitHash, err)
	}
	m.CreatedAt, err = parseTime(createdAt)
	if err != nil {
		return model.MeritocracyMention{}, false, fmt.Errorf("parse created_at for mention %s: %w", commitHash, err)
	}

	return m, affected == 1, nil
}
