package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStore keeps sessions in the sessions table.
type PostgresStore struct {
	dbPool  *pgxpool.Pool
	timeout time.Duration
}

// NewPostgresStore returns a store backed by dbPool. timeout bounds each statement.
func NewPostgresStore(dbPool *pgxpool.Pool, timeout time.Duration) *PostgresStore {
	return &PostgresStore{dbPool: dbPool, timeout: timeout}
}

func (p *PostgresStore) Get(ctx context.Context, id uuid.UUID) (*Session, error) {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	s := &Session{ID: id}
	var flash []byte
	err := p.dbPool.QueryRow(ctx,
		`SELECT user_id, return_to, flash, created_at, expires_at FROM sessions WHERE id = $1`, id,
	).Scan(&s.UserID, &s.ReturnTo, &flash, &s.CreatedAt, &s.ExpiresAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("loading session: %w", err)
	}
	if err := json.Unmarshal(flash, &s.Flash); err != nil {
		return nil, fmt.Errorf("decoding session flash: %w", err)
	}
	return s, nil
}

func (p *PostgresStore) Save(ctx context.Context, s *Session) error {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	flash := s.Flash
	if flash == nil {
		flash = []FlashMessage{}
	}
	raw, err := json.Marshal(flash)
	if err != nil {
		return fmt.Errorf("encoding session flash: %w", err)
	}
	_, err = p.dbPool.Exec(ctx,
		`INSERT INTO sessions (id, user_id, return_to, flash, created_at, expires_at)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 ON CONFLICT (id) DO UPDATE SET
		   user_id = EXCLUDED.user_id,
		   return_to = EXCLUDED.return_to,
		   flash = EXCLUDED.flash,
		   expires_at = EXCLUDED.expires_at`,
		s.ID, s.UserID, s.ReturnTo, raw, s.CreatedAt, s.ExpiresAt)
	if err != nil {
		return fmt.Errorf("saving session: %w", err)
	}
	return nil
}

func (p *PostgresStore) Delete(ctx context.Context, id uuid.UUID) error {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	if _, err := p.dbPool.Exec(ctx, `DELETE FROM sessions WHERE id = $1`, id); err != nil {
		return fmt.Errorf("deleting session: %w", err)
	}
	return nil
}

func (p *PostgresStore) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	tag, err := p.dbPool.Exec(ctx, `DELETE FROM sessions WHERE expires_at <= $1`, now)
	if err != nil {
		return 0, fmt.Errorf("deleting expired sessions: %w", err)
	}
	return tag.RowsAffected(), nil
}
