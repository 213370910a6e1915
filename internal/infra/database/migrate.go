package database

import (
	"database/sql"
	"fmt"
	"log"
)

// Migrate roda o DDL idempotente no boot, antes do servidor subir.
// Sem ferramenta de migração externa: é o mesmo esquema sempre,
// CREATE IF NOT EXISTS resolve.
func Migrate(db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS sessions (
			session_id TEXT PRIMARY KEY,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE TABLE IF NOT EXISTS teams (
			id UUID PRIMARY KEY,
			team_id TEXT NOT NULL UNIQUE,
			team_name TEXT,
			domain TEXT,
			is_active BOOLEAN NOT NULL DEFAULT TRUE,
			session_id TEXT,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE TABLE IF NOT EXISTS integration_credentials (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			team_id TEXT NOT NULL,
			provider TEXT NOT NULL,
			access_token TEXT NOT NULL,
			refresh_token TEXT,
			expires_at TIMESTAMPTZ,
			user_email TEXT,
			bot_user_id TEXT,
			api_domain TEXT,
			installed BOOLEAN NOT NULL DEFAULT TRUE,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			UNIQUE (team_id, provider)
		)`,
		`CREATE TABLE IF NOT EXISTS event_logs (
			id BIGSERIAL PRIMARY KEY,
			event_type TEXT NOT NULL,
			event_data JSONB,
			status TEXT NOT NULL,
			error_message TEXT,
			team_id TEXT,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE INDEX IF NOT EXISTS idx_event_logs_team_created
			ON event_logs (team_id, created_at DESC)`,
		`CREATE TABLE IF NOT EXISTS projects (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			name TEXT NOT NULL,
			location TEXT NOT NULL,
			property_type TEXT NOT NULL,
			min_price BIGINT NOT NULL,
			max_price BIGINT NOT NULL,
			min_bedrooms INT NOT NULL,
			max_bedrooms INT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE TABLE IF NOT EXISTS leads (
			id UUID PRIMARY KEY,
			first_name TEXT,
			last_name TEXT,
			phone TEXT,
			location TEXT,
			property_type TEXT,
			bedrooms INT,
			budget BIGINT,
			matched_projects TEXT[],
			team_id TEXT,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
	}

	for _, stmt := range stmts {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("migration falhou: %w", err)
		}
	}

	log.Println("✅ Migrations aplicadas")
	return nil
}
