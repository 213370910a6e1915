package database

import (
	"context"
	"database/sql"
	"errors"

	"github.com/xavierca1/leadstream/internal/entity"
)

type CredentialRepository struct {
	DB *sql.DB
}

func NewCredentialRepository(db *sql.DB) *CredentialRepository {
	return &CredentialRepository{DB: db}
}

// Put sobrescreve a credencial do par (team, provider). O upsert em
// statement único + unique constraint serializa callbacks OAuth
// concorrentes para o mesmo par.
func (r *CredentialRepository) Put(ctx context.Context, cred *entity.Credential) error {
	query := `
		INSERT INTO integration_credentials
			(team_id, provider, access_token, refresh_token, expires_at,
			 user_email, bot_user_id, api_domain, installed, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, NOW())
		ON CONFLICT (team_id, provider)
		DO UPDATE SET
			access_token = EXCLUDED.access_token,
			refresh_token = EXCLUDED.refresh_token,
			expires_at = EXCLUDED.expires_at,
			user_email = EXCLUDED.user_email,
			bot_user_id = EXCLUDED.bot_user_id,
			api_domain = EXCLUDED.api_domain,
			installed = EXCLUDED.installed,
			updated_at = NOW()
		RETURNING created_at, updated_at
	`
	return r.DB.QueryRowContext(
		ctx,
		query,
		cred.TeamID,
		cred.Provider,
		cred.AccessToken,
		nullString(cred.RefreshToken),
		cred.ExpiresAt,
		nullString(cred.UserEmail),
		nullString(cred.BotUserID),
		nullString(cred.APIDomain),
		cred.Installed,
	).Scan(&cred.CreatedAt, &cred.UpdatedAt)
}

func (r *CredentialRepository) Get(ctx context.Context, teamID, provider string) (*entity.Credential, error) {
	query := `
		SELECT team_id, provider, access_token, COALESCE(refresh_token, ''),
		       expires_at, COALESCE(user_email, ''), COALESCE(bot_user_id, ''),
		       COALESCE(api_domain, ''), installed, created_at, updated_at
		FROM integration_credentials
		WHERE team_id = $1 AND provider = $2
	`
	cred := &entity.Credential{}
	err := r.DB.QueryRowContext(ctx, query, teamID, provider).Scan(
		&cred.TeamID,
		&cred.Provider,
		&cred.AccessToken,
		&cred.RefreshToken,
		&cred.ExpiresAt,
		&cred.UserEmail,
		&cred.BotUserID,
		&cred.APIDomain,
		&cred.Installed,
		&cred.CreatedAt,
		&cred.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, entity.ErrCredentialNotFound
	}
	if err != nil {
		return nil, err
	}
	return cred, nil
}

// GetAll carrega as credenciais do time indexadas por provider, para a
// tela de status montar o trio slack/zoho/gmail numa query só.
func (r *CredentialRepository) GetAll(ctx context.Context, teamID string) (map[string]*entity.Credential, error) {
	query := `
		SELECT team_id, provider, access_token, COALESCE(refresh_token, ''),
		       expires_at, COALESCE(user_email, ''), COALESCE(bot_user_id, ''),
		       COALESCE(api_domain, ''), installed, created_at, updated_at
		FROM integration_credentials
		WHERE team_id = $1
	`
	rows, err := r.DB.QueryContext(ctx, query, teamID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	creds := make(map[string]*entity.Credential)
	for rows.Next() {
		cred := &entity.Credential{}
		if err := rows.Scan(
			&cred.TeamID,
			&cred.Provider,
			&cred.AccessToken,
			&cred.RefreshToken,
			&cred.ExpiresAt,
			&cred.UserEmail,
			&cred.BotUserID,
			&cred.APIDomain,
			&cred.Installed,
			&cred.CreatedAt,
			&cred.UpdatedAt,
		); err != nil {
			return nil, err
		}
		creds[cred.Provider] = cred
	}
	return creds, rows.Err()
}
