package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// DBTX is the subset of pgxpool.Pool the stores use.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

const sessionSchema = `
CREATE TABLE IF NOT EXISTS admin_sessions (
    id          UUID PRIMARY KEY,
    token       TEXT        NOT NULL,
    user_id     TEXT        NOT NULL DEFAULT '',
    user_name   TEXT        NOT NULL DEFAULT '',
    user_email  TEXT        NOT NULL DEFAULT '',
    user_role   TEXT        NOT NULL DEFAULT '',
    created_at  TIMESTAMPTZ NOT NULL,
    expires_at  TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS admin_sessions_expires_at_idx ON admin_sessions (expires_at);`

// PostgresStore keeps sessions in the admin_sessions table so they survive
// restarts and are shared between instances.
type PostgresStore struct {
	db DBTX
}

// NewPostgresStore creates a store on db.
func NewPostgresStore(db DBTX) *PostgresStore {
	return &PostgresStore{db: db}
}

// Migrate creates the sessions table when missing.
func (p *PostgresStore) Migrate(ctx context.Context) error {
	if _, err := p.db.Exec(ctx, sessionSchema); err != nil {
		return fmt.Errorf("migrate sessions: %w", err)
	}
	return nil
}

func (p *PostgresStore) Load(ctx context.Context, id string) (*Session, error) {
	if !validID(id) {
		return nil, ErrSessionNotFound
	}

	var s Session
	err := p.db.QueryRow(ctx, `
		SELECT id::text, token, user_id, user_name, user_email, user_role, created_at, expires_at
		FROM admin_sessions
		WHERE id = $1 AND expires_at > $2`,
		id, time.Now().UTC(),
	).Scan(&s.ID, &s.Token, &s.User.ID, &s.User.Name, &s.User.Email, &s.User.Role, &s.CreatedAt, &s.ExpiresAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}
	return &s, nil
}

func (p *PostgresStore) Save(ctx context.Context, s *Session) error {
	_, err := p.db.Exec(ctx, `
		INSERT INTO admin_sessions (id, token, user_id, user_name, user_email, user_role, created_at, expires_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (id) DO UPDATE SET
			token = EXCLUDED.token,
			user_id = EXCLUDED.user_id,
			user_name = EXCLUDED.user_name,
			user_email = EXCLUDED.user_email,
			user_role = EXCLUDED.user_role,
			expires_at = EXCLUDED.expires_at`,
		s.ID, s.Token, s.User.ID, s.User.Name, s.User.Email, s.User.Role, s.CreatedAt, s.ExpiresAt,
	)
	if err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

func (p *PostgresStore) Delete(ctx context.Context, id string) error {
	if !validID(id) {
		return nil
	}
	if _, err := p.db.Exec(ctx, `DELETE FROM admin_sessions WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

func (p *PostgresStore) PurgeExpired(ctx context.Context, now time.Time) (int64, error) {
	tag, err := p.db.Exec(ctx, `DELETE FROM admin_sessions WHERE expires_at <= $1`, now)
	if err != nil {
		return 0, fmt.Errorf("purge sessions: %w", err)
	}
	return tag.RowsAffected(), nil
}
