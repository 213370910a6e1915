package handlers

import (
	"log"
	"net/http"
	"time"

	"github.com/xavierca1/leadstream/internal/entity"
	"github.com/xavierca1/leadstream/internal/infra/http/middleware"
	"github.com/xavierca1/leadstream/internal/infra/integration/gmail"
	"github.com/xavierca1/leadstream/internal/usecase"
)

type GmailHandler struct {
	Client   *gmail.Client
	Tokens   *usecase.TokenStore
	Registry *usecase.Registry
}

func NewGmailHandler(client *gmail.Client, tokens *usecase.TokenStore, registry *usecase.Registry) *GmailHandler {
	return &GmailHandler{Client: client, Tokens: tokens, Registry: registry}
}

func (h *GmailHandler) HandleStatus(w http.ResponseWriter, r *http.Request) {
	teamID := r.URL.Query().Get("team_id")

	resp := map[string]any{
		"connected":  false,
		"service":    "gmail",
		"configured": h.Client.Configured(),
	}
	if teamID != "" {
		resp["team_id"] = teamID
		if cred, err := h.Tokens.Get(r.Context(), teamID, entity.ProviderGmail); err == nil {
			resp["connected"] = true
			resp["user_email"] = cred.UserEmail
			resp["expired"] = cred.Expired(time.Now())
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *GmailHandler) HandleAuthorize(w http.ResponseWriter, r *http.Request) {
	if !h.Client.Configured() {
		writeError(w, http.StatusBadRequest, "Gmail not configured")
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

// HandleOAuthCallback troca o code e já resolve o e-mail conectado via
// userinfo: é ele que o notificador usa como destinatário.
func (h *GmailHandler) HandleOAuthCallback(w http.ResponseWriter, r *http.Request) {
	code := r.URL.Query().Get("code")
	state := r.URL.Query().Get("state")
	if code == "" || state == "" {
		writeError(w, http.StatusBadRequest, "Missing code or state")
		return
	}

	teamID, sessionID := splitState(state)

	tokens, err := h.Client.ExchangeCode(r.Context(), code)
	if err != nil {
		middleware.RecordIntegrationError("gmail")
		log.Printf("❌ [GMAIL] OAuth falhou: %v", err)
		writeError(w, http.StatusBadRequest, "Gmail OAuth error")
		return
	}

	userEmail, err := h.Client.UserEmail(r.Context(), tokens.AccessToken)
	if err != nil {
		log.Printf("⚠️ [GMAIL] Falha ao resolver userinfo: %v", err)
	}

	expiresAt := time.Now().Add(time.Duration(tokens.ExpiresIn) * time.Second)
	cred := &entity.Credential{
		TeamID:       teamID,
		Provider:     entity.ProviderGmail,
		AccessToken:  tokens.AccessToken,
		RefreshToken: tokens.RefreshToken,
		ExpiresAt:    &expiresAt,
		UserEmail:    userEmail,
		Installed:    true,
	}
	if err := h.Tokens.Put(r.Context(), cred); err != nil {
		log.Printf("❌ [GMAIL] Falha ao gravar credencial: %v", err)
		writeError(w, http.StatusInternalServerError, "Gmail OAuth error")
		return
	}

	if _, err := h.Registry.EnsureTeam(r.Context(), teamID, "", ""); err != nil {
		log.Printf("⚠️ [GMAIL] Falha no ensure do time %s: %v", teamID, err)
	}
	if sessionID != "" {
		if err := h.Registry.EnsureSession(r.Context(), sessionID); err == nil {
			if err := h.Registry.Bind(r.Context(), sessionID, teamID); err != nil {
				log.Printf("⚠️ [GMAIL] Falha ao vincular time à sessão: %v", err)
			}
		}
	}

	log.Printf("✅ [GMAIL] Integração concluída para o time %s (%s)", teamID, userEmail)
	writeJSON(w, http.StatusOK, map[string]string{
		"status":     "success",
		"message":    "Gmail integration successful",
		"team_id":    teamID,
		"user_email": userEmail,
	})
}
