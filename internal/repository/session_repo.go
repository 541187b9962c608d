package repository

import (
	"context"
	"fmt"
)

// SessionRepository is the token allow-list. Rows are keyed by the token signature.
type SessionRepository interface {
	Create(ctx context.Context, signature string, userID int) error
	Exists(ctx context.Context, signature string) (bool, error)
	Delete(ctx context.Context, signature string) error
}

type sessionRepository struct {
	db DB
}

func NewSessionRepository(db DB) SessionRepository {
	return &sessionRepository{db: db}
}

func (r *sessionRepository) Create(ctx context.Context, signature string, userID int) error {
	sql := `INSERT INTO auth (token, user_id) VALUES ($1, $2) ON CONFLICT (token) DO UPDATE SET user_id = EXCLUDED.user_id`
	if _, err := r.db.Exec(ctx, sql, signature, userID); err != nil {
		return fmt.Errorf("failed to record session: %w", err)
	}
	return nil
}

func (r *sessionRepository) Exists(ctx context.Context, signature string) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM auth WHERE token = $1)`, signature).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to look up session: %w", err)
	}
	return exists, nil
}

// Delete removes the session. Deleting an unknown signature is not an error.
func (r *sessionRepository) Delete(ctx context.Context, signature string) error {
	if _, err := r.db.Exec(ctx, `DELETE FROM auth WHERE token = $1`, signature); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}
