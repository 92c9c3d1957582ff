package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/ericfisherdev/meritbot/internal/domain/model"
	"github.com/ericfisherdev/meritbot/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.VoterStore = (*VoterRepo)(nil)

// VoterRepo is the SQLite implementation of the VoterStore port interface.
type VoterRepo struct {
	db *DB
}

// NewVoterRepo creates a new VoterRepo backed by the given DB.
func NewVoterRepo(db *DB) *VoterRepo {
	return &VoterRepo{db: db}
}

// GetOrCreateUser inserts login with one vote if it is absent and returns
// the stored record. The insert and the read both use the writer so the
// caller sees its own write.
func (r *VoterRepo) GetOrCreateUser(ctx context.Context, login string) (model.VoterCredit, bool, error) {
	login = strings.ToLower(login)

	const insert = `INSERT INTO voters (login, votes) VALUES (?, 1) ON CONFLICT(login) DO NOTHING`
	res, err := r.db.Writer.ExecContext(ctx, insert, login)
	if err != nil {
		return model.VoterCredit{}, false, fmt.Errorf("create voter %s: %w", login, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return model.VoterCredit{}, false, fmt.Errorf("create voter %s: %w", login, err)
	}

	const query = `SELECT login, votes, created_at FROM voters WHERE login = ?`
	credit, err := scanVoter(r.db.Writer.QueryRowContext(ctx, query, login))
	if err != nil {
		return model.VoterCredit{}, false, fmt.Errorf("get voter %s: %w", login, err)
	}

	return credit, affected == 1, nil
}

// IncrementVotes adds one vote in a single UPDATE so concurrent increments
// never lose a write.
func (r *VoterRepo) IncrementVotes(ctx context.Context, login string) error {
	login = strings.ToLower(login)

	const query = `UPDATE voters SET votes = votes + 1 WHERE login = ?`
	res, err := r.db.Writer.ExecContext(ctx, query, login)
	if err != nil {
		return fmt.Errorf("increment votes for %s: %w", login, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("increment votes for %s: %w", login, err)
	}
	if affected == 0 {
		return fmt.Errorf("increment votes for %s: %w", login, driven.ErrVoterNotFound)
	}
	return nil
}

// TopVoters returns at most limit voters ordered by votes DESC, login ASC.
func (r *VoterRepo) TopVoters(ctx context.Context, limit int) ([]model.VoterCredit, error) {
	if limit <= 0 {
		return []model.VoterCredit{}, nil
	}

	const query = `SELECT login, votes, created_at FROM voters ORDER BY votes DESC, login ASC LIMIT ?`
	rows, err := r.db.Reader.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("list top voters: %w", err)
	}
	defer rows.Close()

	return scanVoters(rows)
}

// ListVoters returns every voter ordered by votes DESC, login ASC.
func (r *VoterRepo) ListVoters(ctx context.Context) ([]model.VoterCredit, error) {
	const query = `SELECT login, votes, created_at FROM voters ORDER BY votes DESC, login ASC`
	rows, err := r.db.Reader.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list voters: %w", err)
	}
	defer rows.Close()

	return scanVoters(rows)
}

func scanVoters(rows *sql.Rows) ([]model.VoterCredit, error) {
	voters := []model.VoterCredit{}
	for rows.Next() {
		v, err := scanVoter(rows)
		if err != nil {
			return nil, err
		}
		voters = append(voters, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate voters: %w", err)
	}
	return voters, nil
}

// scanner is satisfied by both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanVoter(s scanner) (model.VoterCredit, error) {
	var v model.VoterCredit
	var createdAt string
	if err := s.Scan(&v.Login, &v.Votes, &createdAt); err != nil {
		return model.VoterCredit{}, fmt.Errorf("scan voter: %w", err)
	}

	t, err := parseTime(createdAt)
	if err != nil {
		return model.VoterCredit{}, fmt.Errorf("parse created_at for voter %s: %w", v.Login, err)
	}
	v.CreatedAt = t

	return v, nil
}
