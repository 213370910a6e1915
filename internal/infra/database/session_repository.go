package database

import (
	"context"
	"database/sql"
)

type SessionRepository struct {
	DB *sql.DB
}

func NewSessionRepository(db *sql.DB) *SessionRepository {
	return &SessionRepository{DB: db}
}

// Ensure registra a sessão se for a primeira vez. Idempotente.
func (r *SessionRepository) Ensure(ctx context.Context, sessionID string) error {
	query := `
		INSERT INTO sessions (session_id)
		VALUES ($1)
		ON CONFLICT (session_id) DO NOTHING
	`
	_, err := r.DB.ExecContext(ctx, query, sessionID)
	return err
}
