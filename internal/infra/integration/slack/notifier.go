package slack

import (
	"context"
	"fmt"
	"sync"

	"github.com/xavierca1/leadstream/internal/entity"
)

// TokenSource é o recorte do TokenStore que o notifier precisa.
type TokenSource interface {
	Get(ctx context.Context, teamID, provider string) (*entity.Credential, error)
}

// Notifier implementa usecase.ChatClient: busca o bot token do time e
// posta na thread.
type Notifier struct {
	Tokens TokenSource
	Client *Client
}

func NewNotifier(tokens TokenSource, client *Client) *Notifier {
	return &Notifier{Tokens: tokens, Client: client}
}

func (n *Notifier) PostMessage(ctx context.Context, teamID, channel, threadTS, text string) error {
	cred, err := n.Tokens.Get(ctx, teamID, entity.ProviderSlack)
	if err != nil {
		return fmt.Errorf("sem bot token do Slack para o time %s: %w", teamID, err)
	}
	return n.Client.PostMessage(ctx, cred.AccessToken, channel, threadTS, text)
}

// O Slack reenvia em minutos; a capacidade cobre essa janela com folga
// antes de o id mais antigo sair do conjunto.
const dedupeCapacity = 4096

// Deduper filtra event_ids repetidos: o Slack reenvia eventos quando o
// ack demora. O conjunto é limitado pelo ring, então a memória não
// cresce com o uptime.
type Deduper struct {
	mu   sync.Mutex
	seen map[string]struct{}
	ring [dedupeCapacity]string
	next int
}

func NewDeduper() *Deduper {
	return &Deduper{seen: make(map[string]struct{}, dedupeCapacity)}
}

func (d *Deduper) IsDuplicate(eventID string) bool {
	if eventID == "" {
		return true
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, ok := d.seen[eventID]; ok {
		return true
	}
	if oldest := d.ring[d.next]; oldest != "" {
		delete(d.seen, oldest)
	}
	d.ring[d.next] = eventID
	d.next = (d.next + 1) % dedupeCapacity
	d.seen[eventID] = struct{}{}
	return false
}
