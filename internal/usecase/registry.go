package usecase

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/xavierca1/leadstream/internal/entity"
)

// Registry isola os dados entre sessões de navegador. Não é
// autenticação de verdade: é só para usuários de demo não verem os
// leads uns dos outros num deploy compartilhado.
type Registry struct {
	Sessions entity.SessionRepositoryInterface
	Teams    entity.TeamRepositoryInterface
}

func NewRegistry(sessions entity.SessionRepositoryInterface, teams entity.TeamRepositoryInterface) *Registry {
	return &Registry{Sessions: sessions, Teams: teams}
}

// EnsureSession registra o session id se for a primeira vez que ele
// aparece. Idempotente, seguro chamar a cada request.
func (r *Registry) EnsureSession(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return &DomainError{Code: "MISSING_SESSION", Message: "session_id é obrigatório"}
	}
	return r.Sessions.Ensure(ctx, sessionID)
}

// ResolveTeams devolve os times que a sessão pode enxergar: os
// vinculados a ela mais os legados (sem vínculo nenhum).
func (r *Registry) ResolveTeams(ctx context.Context, sessionID string) ([]*entity.Team, error) {
	return r.Teams.FindVisibleToSession(ctx, sessionID)
}

// VisibleToSession é O ponto único da política de visibilidade
// fail-open: time sem dono é visível para qualquer sessão. Para
// endurecer o isolamento depois, basta mexer aqui.
func VisibleToSession(team *entity.Team, sessionID string) bool {
	return team.SessionID == "" || team.SessionID == sessionID
}

// Bind reivindica um time para a sessão. First writer wins: se outro
// callback OAuth chegou antes, o vínculo existente fica como está.
func (r *Registry) Bind(ctx context.Context, sessionID, teamID string) error {
	if sessionID == "" || teamID == "" {
		return nil
	}
	if err := r.Teams.ClaimSession(ctx, teamID, sessionID); err != nil {
		return fmt.Errorf("falha ao vincular time %s à sessão: %w", teamID, err)
	}
	return nil
}

type EnsureTeamResult string

const (
	TeamCreated EnsureTeamResult = "created"
	TeamUpdated EnsureTeamResult = "updated"
	TeamExists  EnsureTeamResult = "exists"
)

// EnsureTeam cria o time se não existe, ou completa campos vazios com
// os defaults. Nunca rebaixa campo preenchido para vazio: chamar duas
// vezes com nomes diferentes mantém o primeiro não-vazio.
func (r *Registry) EnsureTeam(ctx context.Context, teamID, teamName, domain string) (EnsureTeamResult, error) {
	team, err := r.Teams.FindByTeamID(ctx, teamID)
	if errors.Is(err, entity.ErrTeamNotFound) {
		team = entity.NewTeam(teamID, teamName, domain)
		if err := r.Teams.Create(ctx, team); err != nil {
			return "", fmt.Errorf("falha ao criar time %s: %w", teamID, err)
		}
		log.Printf("✅ Time criado: %s", teamID)
		return TeamCreated, nil
	}
	if err != nil {
		return "", err
	}

	updated := false
	if teamName != "" && team.TeamName != teamName {
		team.TeamName = teamName
		updated = true
	}
	if domain != "" && team.Domain != domain {
		team.Domain = domain
		updated = true
	}
	if !updated {
		return TeamExists, nil
	}

	if err := r.Teams.Update(ctx, team); err != nil {
		return "", fmt.Errorf("falha ao atualizar time %s: %w", teamID, err)
	}
	log.Printf("🔄 Time atualizado: %s", teamID)
	return TeamUpdated, nil
}
