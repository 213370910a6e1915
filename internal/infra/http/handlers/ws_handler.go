package handlers

import (
	"log"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/xavierca1/leadstream/internal/entity"
	"github.com/xavierca1/leadstream/internal/infra/http/middleware"
	"github.com/xavierca1/leadstream/internal/infra/notifier"
	"github.com/xavierca1/leadstream/internal/usecase"
)

const (
	writeWait    = 10 * time.Second
	pingInterval = 30 * time.Second
	maxFrameSize = 1 << 20
)

type WSHandler struct {
	Hub      *notifier.Hub
	Events   *usecase.EventLogger
	Registry *usecase.Registry

	upgrader websocket.Upgrader
}

func NewWSHandler(hub *notifier.Hub, events *usecase.EventLogger, registry *usecase.Registry) *WSHandler {
	return &WSHandler{
		Hub:      hub,
		Events:   events,
		Registry: registry,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// Demo: aceita qualquer origem, o isolamento é por sessão
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

type wsMessage struct {
	Type    string          `json:"type"`
	Events  []*entity.Event `json:"events,omitempty"`
	Event   *entity.Event   `json:"event,omitempty"`
	Message string          `json:"message,omitempty"`
}

// Handle abre a assinatura: registra no hub ANTES de montar o snapshot
// (evento perdido é pior que duplicado — o cliente substitui por id),
// manda o snapshot e só então começa a drenar os updates ao vivo.
func (h *WSHandler) Handle(w http.ResponseWriter, r *http.Request) {
	sessionID := middleware.SessionID(r)
	teamID := r.URL.Query().Get("team_id")

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("❌ [WS] Upgrade falhou: %v", err)
		return
	}

	if sessionID != "" {
		if err := h.Registry.EnsureSession(r.Context(), sessionID); err != nil {
			log.Printf("⚠️ [WS] Falha ao garantir sessão %s: %v", sessionID, err)
		}
	}

	sub := notifier.NewSubscriber(sessionID, teamID)
	h.Hub.Register(sub)
	middleware.SubscriberConnected()
	log.Printf("🔌 [WS] Assinante conectado (session=%s, team=%s)", sessionID, teamID)

	snapshot, err := h.Events.Recent(r.Context(), teamID, usecase.DefaultEventLimit)
	if err != nil {
		log.Printf("⚠️ [WS] Falha no snapshot: %v", err)
	}

	go h.writePump(conn, sub, snapshot)
	h.readPump(conn, sub)
}

func (h *WSHandler) writePump(conn *websocket.Conn, sub *notifier.Subscriber, snapshot []*entity.Event) {
	ticker := time.NewTicker(pingInterval)
	defer func() {
		ticker.Stop()
		conn.Close()
	}()

	// Backfill vem marcado como initial_events para o cliente saber que
	// não é atividade nova; sessão zerada ganha um welcome.
	first := wsMessage{Type: "initial_events", Events: snapshot}
	if len(snapshot) == 0 {
		first = wsMessage{Type: "welcome", Message: "Connected. Waiting for activity..."}
	}
	conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := conn.WriteJSON(first); err != nil {
		h.drop(sub)
		return
	}

	for {
		select {
		case event, ok := <-sub.Send:
			if !ok {
				// Hub descartou o assinante (shutdown ou buffer cheio)
				middleware.SubscriberDisconnected()
				conn.SetWriteDeadline(time.Now().Add(writeWait))
				conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteJSON(wsMessage{Type: "event_update", Event: event}); err != nil {
				h.drop(sub)
				return
			}
		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				h.drop(sub)
				return
			}
		}
	}
}

// readPump só existe para detectar o disconnect do cliente.
func (h *WSHandler) readPump(conn *websocket.Conn, sub *notifier.Subscriber) {
	defer func() {
		h.drop(sub)
		conn.Close()
	}()

	conn.SetReadLimit(maxFrameSize)
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			log.Printf("🔌 [WS] Assinante desconectado (session=%s)", sub.SessionID)
			return
		}
	}
}

func (h *WSHandler) drop(sub *notifier.Subscriber) {
	if h.Hub.Unregister(sub) {
		middleware.SubscriberDisconnected()
	}
}
