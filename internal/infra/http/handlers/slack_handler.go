package handlers

import (
	"encoding/json"
	"io"
	"log"
	"net/http"

	"github.com/google/uuid"

	"github.com/xavierca1/leadstream/internal/entity"
	"github.com/xavierca1/leadstream/internal/infra/http/middleware"
	"github.com/xavierca1/leadstream/internal/infra/integration/slack"
	"github.com/xavierca1/leadstream/internal/infra/queue"
	"github.com/xavierca1/leadstream/internal/usecase"
)

const maxEventBodySize = 2 << 20

type SlackHandler struct {
	Client   *slack.Client
	Tokens   *usecase.TokenStore
	Registry *usecase.Registry
	Producer queue.InboundProducerInterface
	Deduper  *slack.Deduper
}

func NewSlackHandler(
	client *slack.Client,
	tokens *usecase.TokenStore,
	registry *usecase.Registry,
	producer queue.InboundProducerInterface,
) *SlackHandler {
	return &SlackHandler{
		Client:   client,
		Tokens:   tokens,
		Registry: registry,
		Producer: producer,
		Deduper:  slack.NewDeduper(),
	}
}

func (h *SlackHandler) HandleStatus(w http.ResponseWriter, r *http.Request) {
	teamID := r.URL.Query().Get("team_id")

	resp := map[string]any{
		"connected":  false,
		"service":    "slack",
		"configured": h.Client.Configured(),
	}
	if teamID != "" {
		resp["team_id"] = teamID
		if _, err := h.Tokens.Get(r.Context(), teamID, entity.ProviderSlack); err == nil {
			resp["connected"] = true
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

// HandleAuthorize devolve a URL de autorização com o session id no
// state, para o callback saber a quem vincular o time.
func (h *SlackHandler) HandleAuthorize(w http.ResponseWriter, r *http.Request) {
	if !h.Client.Configured() {
		writeError(w, http.StatusBadRequest, "Slack not configured")
		return
	}

	sessionID := middleware.SessionID(r)
	if sessionID == "" {
		sessionID = uuid.New().String()
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"auth_url": h.Client.AuthorizeURL(sessionID),
	})
}

type slackEventEnvelope struct {
	Type      string `json:"type"`
	Challenge string `json:"challenge"`
	EventID   string `json:"event_id"`
	TeamID    string `json:"team_id"`
	Event     struct {
		Type     string `json:"type"`
		BotID    string `json:"bot_id"`
		Text     string `json:"text"`
		Channel  string `json:"channel"`
		TS       string `json:"ts"`
		ThreadTS string `json:"thread_ts"`
	} `json:"event"`
}

// HandleEvents é o webhook do Slack. Responde rápido: a mensagem vai
// para a fila e o worker toca o pipeline fora do ciclo do request.
func (h *SlackHandler) HandleEvents(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxEventBodySize))
	if err != nil {
		writeError(w, http.StatusBadRequest, "read body failed")
		return
	}

	var envelope slackEventEnvelope
	if err := json.Unmarshal(body, &envelope); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	// Challenge de verificação de URL vem antes da assinatura
	if envelope.Type == "url_verification" {
		w.Header().Set("Content-Type", "text/plain")
		w.Write([]byte(envelope.Challenge))
		return
	}

	timestamp := r.Header.Get("X-Slack-Request-Timestamp")
	signature := r.Header.Get("X-Slack-Signature")
	if !h.Client.VerifySignature(body, timestamp, signature) {
		middleware.RecordIntegrationError("slack")
		writeError(w, http.StatusUnauthorized, "Invalid Slack request")
		return
	}

	// Slack reenvia quando o ack demora; dedup por event_id
	if h.Deduper.IsDuplicate(envelope.EventID) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
		return
	}

	ev := envelope.Event
	if ev.Type != "message" || ev.BotID != "" || ev.Text == "" {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
		return
	}

	threadTS := ev.ThreadTS
	if threadTS == "" {
		threadTS = ev.TS
	}

	msg := usecase.InboundMessage{
		TeamID:   envelope.TeamID,
		Text:     ev.Text,
		Channel:  ev.Channel,
		ThreadTS: threadTS,
	}
	if err := h.Producer.PublishInbound(r.Context(), msg); err != nil {
		log.Printf("❌ [SLACK] Falha ao enfileirar mensagem: %v", err)
		writeError(w, http.StatusInternalServerError, "Slack event handler error")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// HandleOAuthCallback fecha o ciclo da instalação: troca o code,
// grava a credencial, garante o time e vincula à sessão do state.
func (h *SlackHandler) HandleOAuthCallback(w http.ResponseWriter, r *http.Request) {
	code := r.URL.Query().Get("code")
	sessionID := r.URL.Query().Get("state")
	if code == "" {
		writeError(w, http.StatusBadRequest, "Missing code")
		return
	}

	oauth, err := h.Client.ExchangeCode(r.Context(), code)
	if err != nil {
		middleware.RecordIntegrationError("slack")
		log.Printf("❌ [SLACK] OAuth falhou: %v", err)
		writeError(w, http.StatusBadRequest, "Slack OAuth error")
		return
	}

	cred := &entity.Credential{
		TeamID:      oauth.Team.ID,
		Provider:    entity.ProviderSlack,
		AccessToken: oauth.AccessToken,
		BotUserID:   oauth.BotUserID,
		Installed:   true,
	}
	if err := h.Tokens.Put(r.Context(), cred); err != nil {
		log.Printf("❌ [SLACK] Falha ao gravar credencial: %v", err)
		writeError(w, http.StatusInternalServerError, "Slack OAuth error")
		return
	}

	if _, err := h.Registry.EnsureTeam(r.Context(), oauth.Team.ID, oauth.Team.Name, ""); err != nil {
		log.Printf("⚠️ [SLACK] Falha no ensure do time %s: %v", oauth.Team.ID, err)
	}
	if sessionID != "" {
		if err := h.Registry.EnsureSession(r.Context(), sessionID); err == nil {
			if err := h.Registry.Bind(r.Context(), sessionID, oauth.Team.ID); err != nil {
				log.Printf("⚠️ [SLACK] Falha ao vincular time à sessão: %v", err)
			}
		}
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "success",
		"message": "Slack integration successful",
	})
}
