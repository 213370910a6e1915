package handlers

import (
	"encoding/json"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/xavierca1/leadstream/internal/entity"
	"github.com/xavierca1/leadstream/internal/infra/http/middleware"
	"github.com/xavierca1/leadstream/internal/infra/integration/zoho"
	"github.com/xavierca1/leadstream/internal/usecase"
)

type ZohoHandler struct {
	Client   *zoho.Client
	CRM      *zoho.CRM
	Tokens   *usecase.TokenStore
	Registry *usecase.Registry
}

func NewZohoHandler(client *zoho.Client, crm *zoho.CRM, tokens *usecase.TokenStore, registry *usecase.Registry) *ZohoHandler {
	return &ZohoHandler{Client: client, CRM: crm, Tokens: tokens, Registry: registry}
}

func (h *ZohoHandler) HandleStatus(w http.ResponseWriter, r *http.Request) {
	teamID := r.URL.Query().Get("team_id")

	resp := map[string]any{
		"connected":  false,
		"service":    "zoho",
		"configured": h.Client.Configured(),
	}
	if teamID != "" {
		resp["team_id"] = teamID
		if cred, err := h.Tokens.Get(r.Context(), teamID, entity.ProviderZoho); err == nil {
			resp["connected"] = true
			resp["expired"] = cred.Expired(time.Now())
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

// HandleAuthorize exige team_id: o token do Zoho é por time, e o state
// carrega "teamID|sessionID" para o callback vincular os dois.
func (h *ZohoHandler) HandleAuthorize(w http.ResponseWriter, r *http.Request) {
	if !h.Client.Configured() {
		writeError(w, http.StatusBadRequest, "Zoho not configured")
		return
	}

	teamID := r.URL.Query().Get("team_id")
	if teamID == "" {
		writeError(w, http.StatusBadRequest, "team_id is required")
		return
	}
	sessionID := middleware.SessionID(r)

	writeJSON(w, http.StatusOK, map[string]string{
		"auth_url": h.Client.AuthorizeURL(teamID + "|" + sessionID),
	})
}

func (h *ZohoHandler) HandleOAuthCallback(w http.ResponseWriter, r *http.Request) {
	code := r.URL.Query().Get("code")
	state := r.URL.Query().Get("state")
	if code == "" || state == "" {
		writeError(w, http.StatusBadRequest, "Missing code or state")
		return
	}

	teamID, sessionID := splitState(state)

	tokens, err := h.Client.ExchangeCode(r.Context(), code)
	if err != nil {
		middleware.RecordIntegrationError("zoho")
		log.Printf("❌ [ZOHO] OAuth falhou: %v", err)
		writeError(w, http.StatusBadRequest, "Zoho OAuth error")
		return
	}

	expiresAt := time.Now().Add(time.Duration(tokens.ExpiresIn) * time.Second)
	cred := &entity.Credential{
		TeamID:       teamID,
		Provider:     entity.ProviderZoho,
		AccessToken:  tokens.AccessToken,
		RefreshToken: tokens.RefreshToken,
		APIDomain:    tokens.APIDomain,
		ExpiresAt:    &expiresAt,
		Installed:    true,
	}
	if err := h.Tokens.Put(r.Context(), cred); err != nil {
		log.Printf("❌ [ZOHO] Falha ao gravar credencial: %v", err)
		writeError(w, http.StatusInternalServerError, "Zoho OAuth error")
		return
	}

	if _, err := h.Registry.EnsureTeam(r.Context(), teamID, "", ""); err != nil {
		log.Printf("⚠️ [ZOHO] Falha no ensure do time %s: %v", teamID, err)
	}
	if sessionID != "" {
		if err := h.Registry.EnsureSession(r.Context(), sessionID); err == nil {
			if err := h.Registry.Bind(r.Context(), sessionID, teamID); err != nil {
				log.Printf("⚠️ [ZOHO] Falha ao vincular time à sessão: %v", err)
			}
		}
	}

	log.Printf("✅ [ZOHO] Integração concluída para o time %s", teamID)
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "success",
		"message": "Zoho CRM integration successful",
		"team_id": teamID,
	})
}

type insertLeadRequest struct {
	FirstName       string   `json:"first_name"`
	LastName        string   `json:"last_name"`
	Phone           string   `json:"phone"`
	Location        string   `json:"location"`
	PropertyType    string   `json:"property_type"`
	Bedrooms        int      `json:"bedrooms"`
	Budget          int64    `json:"budget"`
	MatchedProjects []string `json:"matched_projects"`
}

// HandleInsertLead dá um caminho direto para o CRM, sem passar pelo
// pipeline do Slack. Útil para reprocessar um lead à mão.
func (h *ZohoHandler) HandleInsertLead(w http.ResponseWriter, r *http.Request) {
	teamID := chi.URLParam(r, "teamID")

	var req insertLeadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	if req.FirstName == "" {
		writeError(w, http.StatusBadRequest, "first_name is required")
		return
	}

	lead := &entity.Lead{
		TeamID:          teamID,
		FirstName:       req.FirstName,
		LastName:        req.LastName,
		Phone:           req.Phone,
		Location:        req.Location,
		PropertyType:    req.PropertyType,
		Bedrooms:        req.Bedrooms,
		Budget:          req.Budget,
		MatchedProjects: req.MatchedProjects,
	}

	leadID, err := h.CRM.InsertLead(r.Context(), teamID, lead)
	if err != nil {
		middleware.RecordIntegrationError("zoho")
		log.Printf("❌ [ZOHO] Insert manual falhou: %v", err)
		writeError(w, http.StatusBadGateway, "Failed to insert lead")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "success",
		"lead_id": leadID,
	})
}

// splitState desfaz o "teamID|sessionID" do authorize. State antigo sem
// separador é só o team id.
func splitState(state string) (teamID, sessionID string) {
	if i := strings.IndexByte(state, '|'); i >= 0 {
		return state[:i], state[i+1:]
	}
	return state, ""
}
