package entity

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

var ErrTeamNotFound = errors.New("team not found")

// Entidade: Team (tenant). O TeamID vem do Slack (workspace ID) e é
// imutável depois de criado. SessionID vazio = time "legado", visível
// para qualquer sessão.
type Team struct {
	ID        string    `json:"-"`
	TeamID    string    `json:"team_id"`
	TeamName  string    `json:"team_name,omitempty"`
	Domain    string    `json:"domain,omitempty"`
	IsActive  bool      `json:"is_active"`
	SessionID string    `json:"-"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Factory
func NewTeam(teamID, teamName, domain string) *Team {
	return &Team{
		ID:        uuid.New().String(),
		TeamID:    teamID,
		TeamName:  teamName,
		Domain:    domain,
		IsActive:  true,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
}

type TeamRepositoryInterface interface {
	Create(ctx context.Context, team *Team) error
	FindByTeamID(ctx context.Context, teamID string) (*Team, error)
	Update(ctx context.Context, team *Team) error

	// FindVisibleToSession retorna os times da sessão + os legados
	// (session_id NULL), mais recentes primeiro.
	FindVisibleToSession(ctx context.Context, sessionID string) ([]*Team, error)

	// ClaimSession associa um time sem dono à sessão. Não sobrescreve
	// um vínculo existente (first writer wins).
	ClaimSession(ctx context.Context, teamID, sessionID string) error
}

type SessionRepositoryInterface interface {
	Ensure(ctx context.Context, sessionID string) error
}
