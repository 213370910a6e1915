package usecase

import (
	"context"

	"github.com/xavierca1/leadstream/internal/entity"
)

// EventNotifier recebe o registro completo de todo create/update do
// Event Log. Implementado pelo hub de WebSocket.
type EventNotifier interface {
	Publish(event *entity.Event)
}

// LeadExtractor transforma a mensagem bruta do Slack em lead
// estruturado (LLM hospedado).
type LeadExtractor interface {
	ExtractLead(ctx context.Context, message string) (*entity.Lead, error)
}

// CRMClient insere o lead no CRM do time. Retorna o ID remoto.
type CRMClient interface {
	InsertLead(ctx context.Context, teamID string, lead *entity.Lead) (string, error)
}

// EmailNotifier envia o email de notificação do resultado.
type EmailNotifier interface {
	SendLeadNotification(ctx context.Context, teamID string, lead *entity.Lead, success bool, errorMessage string) error
}

// ChatClient responde na thread do Slack de origem.
type ChatClient interface {
	PostMessage(ctx context.Context, teamID, channel, threadTS, text string) error
}
