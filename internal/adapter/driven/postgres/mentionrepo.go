package postgres

import (
	"context"
	"fmt"

	"github.com/ericfisherdev/meritbot/internal/domain/model"
	"github.com/ericfisherdev/meritbot/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.MentionStore = (*MentionRepo)(nil)

// MentionRepo is the PostgreSQL implementation of the MentionStore port interface.
type MentionRepo struct {
	db *DB
}

// NewMentionRepo creates a new MentionRepo backed by the given DB.
func NewMentionRepo(db *DB) *MentionRepo {
	return &MentionRepo{db: db}
}

// GetOrCreateMention inserts a mention for commitHash unless one exists.
// ON CONFLICT DO NOTHING on the primary key gives exactly one winner among
// concurrent callers, across processes sharing the database.
func (r *MentionRepo) GetOrCreateMention(ctx context.Context, commitHash string) (model.MeritocracyMention, bool, error) {
	const insert = `INSERT INTO meritocracy_mentions (commit_hash) VALUES ($1) ON CONFLICT (commit_hash) DO NOTHING`
	tag, err := r.db.pool.Exec(ctx, insert, commitHash)
	if err != nil {
		return model.MeritocracyMention{}, false, fmt.Errorf("create mention for %s: %w", commitHash, err)
	}

	const query = `SELECT commit_hash, created_at FROM meritocracy_mentions WHERE commit_hash = $1`
	var m model.MeritocracyMention
	if err := r.db.pool.QueryRow(ctx, query, commitHash).Scan(&m.CommitHash, &m.CreatedAt); err != nil {
		return model.MeritocracyMention{}, false, fmt.Errorf("get mention for %s: %w", commitHash, err)
	}

	return m, tag.RowsAffected() == 1, nil
}
