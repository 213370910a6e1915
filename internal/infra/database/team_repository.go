package database

import (
	"context"
	"database/sql"
	"errors"

	"github.com/xavierca1/leadstream/internal/entity"
)

type TeamRepository struct {
	DB *sql.DB
}

func NewTeamRepository(db *sql.DB) *TeamRepository {
	return &TeamRepository{DB: db}
}

func (r *TeamRepository) Create(ctx context.Context, team *entity.Team) error {
	query := `
		INSERT INTO teams (id, team_id, team_name, domain, is_active, session_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW(), NOW())
		RETURNING created_at, updated_at
	`
	return r.DB.QueryRowContext(
		ctx,
		query,
		team.ID,
		team.TeamID,
		nullString(team.TeamName),
		nullString(team.Domain),
		team.IsActive,
		nullString(team.SessionID),
	).Scan(&team.CreatedAt, &team.UpdatedAt)
}

func (r *TeamRepository) FindByTeamID(ctx context.Context, teamID string) (*entity.Team, error) {
	query := `
		SELECT id, team_id, COALESCE(team_name, ''), COALESCE(domain, ''),
		       is_active, COALESCE(session_id, ''), created_at, updated_at
		FROM teams
		WHERE team_id = $1
	`
	team := &entity.Team{}
	err := r.DB.QueryRowContext(ctx, query, teamID).Scan(
		&team.ID,
		&team.TeamID,
		&team.TeamName,
		&team.Domain,
		&team.IsActive,
		&team.SessionID,
		&team.CreatedAt,
		&team.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, entity.ErrTeamNotFound
	}
	if err != nil {
		return nil, err
	}
	return team, nil
}

func (r *TeamRepository) Update(ctx context.Context, team *entity.Team) error {
	query := `
		UPDATE teams
		SET team_name = $2, domain = $3, is_active = $4, updated_at = NOW()
		WHERE team_id = $1
	`
	res, err := r.DB.ExecContext(ctx, query, team.TeamID, nullString(team.TeamName), nullString(team.Domain), team.IsActive)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return entity.ErrTeamNotFound
	}
	return nil
}

func (r *TeamRepository) FindVisibleToSession(ctx context.Context, sessionID string) ([]*entity.Team, error) {
	// Times da sessão + legados sem dono. O fail-open dos legados é
	// intencional: dado pré-existente continua visível até ser
	// reivindicado por um callback OAuth.
	query := `
		SELECT id, team_id, COALESCE(team_name, ''), COALESCE(domain, ''),
		       is_active, COALESCE(session_id, ''), created_at, updated_at
		FROM teams
		WHERE is_active = TRUE AND (session_id = $1 OR session_id IS NULL)
		ORDER BY created_at DESC
	`
	rows, err := r.DB.QueryContext(ctx, query, sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var teams []*entity.Team
	for rows.Next() {
		team := &entity.Team{}
		if err := rows.Scan(
			&team.ID,
			&team.TeamID,
			&team.TeamName,
			&team.Domain,
			&team.IsActive,
			&team.SessionID,
			&team.CreatedAt,
			&team.UpdatedAt,
		); err != nil {
			return nil, err
		}
		teams = append(teams, team)
	}
	return teams, rows.Err()
}

func (r *TeamRepository) ClaimSession(ctx context.Context, teamID, sessionID string) error {
	// First writer wins: só reivindica time sem session_id. Dois
	// callbacks OAuth concorrentes não se sobrescrevem.
	query := `
		UPDATE teams
		SET session_id = $2, updated_at = NOW()
		WHERE team_id = $1 AND session_id IS NULL
	`
	_, err := r.DB.ExecContext(ctx, query, teamID, sessionID)
	return err
}

func nullString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
