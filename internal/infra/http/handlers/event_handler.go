package handlers

import (
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/xavierca1/leadstream/internal/entity"
	"github.com/xavierca1/leadstream/internal/usecase"
)

type EventHandler struct {
	Events  *usecase.EventLogger
	Monitor *usecase.TimeoutMonitor
}

func NewEventHandler(events *usecase.EventLogger, monitor *usecase.TimeoutMonitor) *EventHandler {
	return &EventHandler{Events: events, Monitor: monitor}
}

// HandleList é o caminho REST do dashboard: mesmos ordenação e teto do
// snapshot do WebSocket, para o cliente nunca ver gap entre os dois.
func (h *EventHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	teamID := r.URL.Query().Get("team_id")
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	events, err := h.Events.Recent(r.Context(), teamID, limit)
	if err != nil {
		log.Printf("❌ Falha ao listar eventos: %v", err)
		writeJSON(w, http.StatusOK, map[string]any{"logs": []any{}, "error": err.Error()})
		return
	}
	if events == nil {
		events = []*entity.Event{}
	}

	writeJSON(w, http.StatusOK, map[string]any{"logs": events})
}

// HandleTestEvent cria um evento de demonstração já em success.
func (h *EventHandler) HandleTestEvent(w http.ResponseWriter, r *http.Request) {
	teamID := r.URL.Query().Get("team_id")
	if teamID == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"status": "error", "error": "team_id is required"})
		return
	}

	event, err := h.Events.Log(r.Context(), teamID, "test_event", map[string]any{
		"message":   "This is a test event",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"team_id":   teamID,
	}, entity.StatusSuccess)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"status": "error", "error": err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"status":   "success",
		"event_id": event.ID,
		"message":  "Test event created",
	})
}

// HandleTestProcessingEvent cria um evento preso em processing, para
// exercitar o monitor de timeout.
func (h *EventHandler) HandleTestProcessingEvent(w http.ResponseWriter, r *http.Request) {
	teamID := r.URL.Query().Get("team_id")
	if teamID == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"status": "error", "error": "team_id is required"})
		return
	}

	event, err := h.Events.Log(r.Context(), teamID, "test_processing_event", map[string]any{
		"message":   "This is a test processing event that will timeout",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"team_id":   teamID,
	}, entity.StatusProcessing)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"status": "error", "error": err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"status":   "success",
		"event_id": event.ID,
		"message":  "Test processing event created (will timeout)",
	})
}

// HandleCheckTimeouts dispara a varredura manualmente (admin/testes).
func (h *EventHandler) HandleCheckTimeouts(w http.ResponseWriter, r *http.Request) {
	if err := h.Monitor.Sweep(r.Context()); err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Timeout check completed successfully"})
}

func (h *EventHandler) HandleTimeoutConfig(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.Monitor.Config())
}
