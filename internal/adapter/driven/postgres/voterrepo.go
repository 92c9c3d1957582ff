package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/ericfisherdev/meritbot/internal/domain/model"
	"github.com/ericfisherdev/meritbot/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.VoterStore = (*VoterRepo)(nil)

// VoterRepo is the PostgreSQL implementation of the VoterStore port interface.
type VoterRepo struct {
	db *DB
}

// NewVoterRepo creates a new VoterRepo backed by the given DB.
func NewVoterRepo(db *DB) *VoterRepo {
	return &VoterRepo{db: db}
}

// GetOrCreateUser inserts login with one vote if it is absent and returns
// the stored record.
func (r *VoterRepo) GetOrCreateUser(ctx context.Context, login string) (model.VoterCredit, bool, error) {
	login = strings.ToLower(login)

	const insert = `INSERT INTO voters (login, votes) VALUES ($1, 1) ON CONFLICT (login) DO NOTHING`
	tag, err := r.db.pool.Exec(ctx, insert, login)
	if err != nil {
		return model.VoterCredit{}, false, fmt.Errorf("create voter %s: %w", login, err)
	}

	const query = `SELECT login, votes, created_at FROM voters WHERE login = $1`
	var v model.VoterCredit
	if err := r.db.pool.QueryRow(ctx, query, login).Scan(&v.Login, &v.Votes, &v.CreatedAt); err != nil {
		return model.VoterCredit{}, false, fmt.Errorf("get voter %s: %w", login, err)
	}

	return v, tag.RowsAffected() == 1, nil
}

// IncrementVotes adds one vote in a single UPDATE so concurrent increments
// never lose a write.
func (r *VoterRepo) IncrementVotes(ctx context.Context, login string) error {
	login = strings.ToLower(login)

	const query = `UPDATE voters SET votes = votes + 1 WHERE login = $1`
	tag, err := r.db.pool.Exec(ctx, query, login)
	if err != nil {
		return fmt.Errorf("increment votes for %s: %w", login, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("increment votes for %s: %w", login, driven.ErrVoterNotFound)
	}
	return nil
}

// TopVoters returns at most limit voters ordered by votes DESC, login ASC.
func (r *VoterRepo) TopVoters(ctx context.Context, limit int) ([]model.VoterCredit, error) {
	if limit <= 0 {
		return []model.VoterCredit{}, nil
	}

	const query = `SELECT login, votes, created_at FROM voters ORDER BY votes DESC, login ASC LIMIT $1`
	rows, err := r.db.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("list top voters: %w", err)
	}

	return collectVoters(rows)
}

// ListVoters returns every voter ordered by votes DESC, login ASC.
func (r *VoterRepo) ListVoters(ctx context.Context) ([]model.VoterCredit, error) {
	const query = `SELECT login, votes, created_at FROM voters ORDER BY votes DESC, login ASC`
	rows, err := r.db.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list voters: %w", err)
	}

	return collectVoters(rows)
}

func collectVoters(rows pgx.Rows) ([]model.VoterCredit, error) {
	voters, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (model.VoterCredit, error) {
		var v model.VoterCredit
		err := row.Scan(&v.Login, &v.Votes, &v.CreatedAt)
		return v, err
	})
	if err != nil {
		return nil, fmt.Errorf("scan voters: %w", err)
	}
	if voters == nil {
		voters = []model.VoterCredit{}
	}
	return voters, nil
}
