package notifier

import (
	"log"
	"sync"

	"github.com/xavierca1/leadstream/internal/entity"
	"github.com/xavierca1/leadstream/internal/infra/http/middleware"
)

const subscriberBuffer = 32

// Subscriber é uma conexão viva do dashboard. O canal Send é drenado
// pelo write pump do transporte (WebSocket); o hub nunca bloqueia nele.
type Subscriber struct {
	SessionID string
	TeamID    string // vazio = recebe tudo

	Send chan *entity.Event
}

func NewSubscriber(sessionID, teamID string) *Subscriber {
	return &Subscriber{
		SessionID: sessionID,
		TeamID:    teamID,
		Send:      make(chan *entity.Event, subscriberBuffer),
	}
}

// Matches aplica o filtro de time por igualdade exata.
func (s *Subscriber) Matches(event *entity.Event) bool {
	return s.TeamID == "" || s.TeamID == event.TeamID
}

// Hub é o registro process-wide de assinantes: nasce vazio, entradas
// somem no disconnect e tudo é derrubado no shutdown.
type Hub struct {
	mu          sync.Mutex
	subscribers map[*Subscriber]struct{}
	closed      bool
}

func NewHub() *Hub {
	return &Hub{
		subscribers: make(map[*Subscriber]struct{}),
	}
}

func (h *Hub) Register(sub *Subscriber) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		close(sub.Send)
		return
	}
	h.subscribers[sub] = struct{}{}
}

// Unregister remove e fecha o canal do assinante. Retorna false se ele
// já tinha sido removido (as duas pumps do transporte chamam isso).
func (h *Hub) Unregister(sub *Subscriber) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.subscribers[sub]; !ok {
		return false
	}
	delete(h.subscribers, sub)
	close(sub.Send)
	return true
}

// Publish empurra o registro completo para todo assinante cujo filtro
// casa. Assinante com buffer cheio é descartado na hora: um cliente
// lento não pode atrasar a entrega para os demais.
func (h *Hub) Publish(event *entity.Event) {
	middleware.RecordEventLogged(event.EventType, event.Status)

	h.mu.Lock()
	defer h.mu.Unlock()

	for sub := range h.subscribers {
		if !sub.Matches(event) {
			continue
		}
		select {
		case sub.Send <- event:
		default:
			log.Printf("⚠️ [HUB] Assinante lento descartado (session=%s)", sub.SessionID)
			delete(h.subscribers, sub)
			close(sub.Send)
		}
	}
}

func (h *Hub) Count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subscribers)
}

// Close derruba todos os assinantes no shutdown do processo.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.closed = true
	for sub := range h.subscribers {
		delete(h.subscribers, sub)
		close(sub.Send)
	}
}
