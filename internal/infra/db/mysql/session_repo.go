package mysql

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/bryanwahyu/genefit/internal/domain/session"
)

// SessionRepository implements session.Storage on the session_entries table.
type SessionRepository struct {
	db *sql.DB
}

func NewSessionRepository(db *sql.DB) *SessionRepository {
	return &SessionRepository{db: db}
}

func (r *SessionRepository) Get(ctx context.Context, namespace, key string) ([]byte, error) {
	var v []byte
	err := r.db.QueryRowContext(ctx,
		`SELECT value FROM session_entries WHERE namespace=? AND entry_key=?`, namespace, key).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, session.ErrNoEntry
	}
	return v, err
}

func (r *SessionRepository) Set(ctx context.Context, namespace, key string, value []byte) error {
	const q = `
INSERT INTO session_entries (namespace, entry_key, value, updated_at)
VALUES (?,?,?,?)
ON DUPLICATE KEY UPDATE value=VALUES(value), updated_at=VALUES(updated_at);
`
	_, err := r.db.ExecContext(ctx, q, namespace, key, value, time.Now().UTC())
	return err
}

func (r *SessionRepository) Delete(ctx context.Context, namespace, key string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM session_entries WHERE namespace=? AND entry_key=?`, namespace, key)
	return err
}
