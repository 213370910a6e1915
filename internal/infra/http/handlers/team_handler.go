package handlers

import (
	"errors"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/xavierca1/leadstream/internal/entity"
	"github.com/xavierca1/leadstream/internal/infra/http/middleware"
	"github.com/xavierca1/leadstream/internal/usecase"
)

type TeamHandler struct {
	Registry *usecase.Registry
	Tokens   *usecase.TokenStore
	Events   *usecase.EventLogger
}

func NewTeamHandler(registry *usecase.Registry, tokens *usecase.TokenStore, events *usecase.EventLogger) *TeamHandler {
	return &TeamHandler{Registry: registry, Tokens: tokens, Events: events}
}

// HandleInitSession registra a sessão do browser. O cliente pode mandar
// o próprio id; sem id a gente gera um. Idempotente.
func (h *TeamHandler) HandleInitSession(w http.ResponseWriter, r *http.Request) {
	sessionID := middleware.SessionID(r)
	if sessionID == "" {
		sessionID = uuid.New().String()
	}

	if err := h.Registry.EnsureSession(r.Context(), sessionID); err != nil {
		log.Printf("❌ Falha ao iniciar sessão: %v", err)
		writeError(w, http.StatusInternalServerError, "Failed to initialize session")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"session_id": sessionID,
		"message":    "Session initialized successfully",
	})
}

type teamSummary struct {
	TeamID       string                    `json:"team_id"`
	TeamName     string                    `json:"team_name,omitempty"`
	Domain       string                    `json:"domain,omitempty"`
	CreatedAt    string                    `json:"created_at"`
	Integrations *usecase.IntegrationStatus `json:"integrations"`
}

// HandleList devolve os times visíveis à sessão, com o status das três
// integrações já embutido.
func (h *TeamHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	sessionID := middleware.SessionID(r)

	teams, err := h.Registry.ResolveTeams(r.Context(), sessionID)
	if err != nil {
		log.Printf("❌ Falha ao listar times: %v", err)
		writeError(w, http.StatusInternalServerError, "Failed to list teams")
		return
	}

	summaries := make([]teamSummary, 0, len(teams))
	for _, team := range teams {
		status, err := h.Tokens.Status(r.Context(), team.TeamID)
		if err != nil {
			log.Printf("⚠️ Falha no status de integrações de %s: %v", team.TeamID, err)
			status = &usecase.IntegrationStatus{}
		}
		summaries = append(summaries, teamSummary{
			TeamID:       team.TeamID,
			TeamName:     team.TeamName,
			Domain:       team.Domain,
			CreatedAt:    team.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
			Integrations: status,
		})
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"teams": summaries,
		"total": len(summaries),
	})
}

// HandleGet devolve o detalhe de um time, com contagem de eventos.
// Time invisível à sessão é 404, não 403: não vazamos existência.
func (h *TeamHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	teamID := chi.URLParam(r, "teamID")
	sessionID := middleware.SessionID(r)

	team, err := h.Registry.Teams.FindByTeamID(r.Context(), teamID)
	if errors.Is(err, entity.ErrTeamNotFound) {
		writeError(w, http.StatusNotFound, "Team not found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get team details")
		return
	}
	if !usecase.VisibleToSession(team, sessionID) {
		writeError(w, http.StatusNotFound, "Team not found")
		return
	}

	status, err := h.Tokens.Status(r.Context(), teamID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get team details")
		return
	}

	events, err := h.Events.Recent(r.Context(), teamID, usecase.DefaultEventLimit)
	if err != nil {
		log.Printf("⚠️ Falha ao contar eventos de %s: %v", teamID, err)
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"team_id":    team.TeamID,
		"team_name":  team.TeamName,
		"domain":     team.Domain,
		"is_active":  team.IsActive,
		"created_at": team.CreatedAt,
		"updated_at": team.UpdatedAt,
		"stats": map[string]any{
			"total_events": len(events),
		},
		"integrations": status,
	})
}

// HandleEnsure cria ou completa o time. Usado pelos fluxos OAuth.
func (h *TeamHandler) HandleEnsure(w http.ResponseWriter, r *http.Request) {
	teamID := chi.URLParam(r, "teamID")
	teamName := r.URL.Query().Get("team_name")
	domain := r.URL.Query().Get("domain")

	result, err := h.Registry.EnsureTeam(r.Context(), teamID, teamName, domain)
	if err != nil {
		log.Printf("❌ Falha no ensure do time %s: %v", teamID, err)
		writeError(w, http.StatusInternalServerError, "Failed to ensure team exists")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"status":  string(result),
		"team_id": teamID,
	})
}

// HandleIntegrations devolve o trio de status. Time desconhecido não é
// erro: volta tudo desconectado, o dashboard mostra "not configured".
func (h *TeamHandler) HandleIntegrations(w http.ResponseWriter, r *http.Request) {
	teamID := chi.URLParam(r, "teamID")
	sessionID := middleware.SessionID(r)

	team, err := h.Registry.Teams.FindByTeamID(r.Context(), teamID)
	if err == nil && !usecase.VisibleToSession(team, sessionID) {
		writeJSON(w, http.StatusOK, &usecase.IntegrationStatus{
			Slack: usecase.ProviderStatus{Configured: true},
			Zoho:  usecase.ProviderStatus{Configured: true},
			Gmail: usecase.ProviderStatus{Configured: true},
		})
		return
	}

	status, err := h.Tokens.Status(r.Context(), teamID)
	if err != nil {
		log.Printf("❌ Falha no status de integrações de %s: %v", teamID, err)
		writeError(w, http.StatusInternalServerError, "Failed to get team integrations")
		return
	}

	writeJSON(w, http.StatusOK, status)
}
