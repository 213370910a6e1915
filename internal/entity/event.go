package entity

import (
	"context"
	"errors"
	"time"
)

var ErrEventNotFound = errors.New("event not found")

const (
	StatusPending    = "pending"
	StatusProcessing = "processing"
	StatusSuccess    = "success"
	StatusError      = "error"
)

// Event é um registro da atividade de processamento de lead. Nunca é
// deletado: o pipeline cria um e vai atualizando status/payload até o
// estado terminal (success/error).
type Event struct {
	ID           int64          `json:"id"`
	EventType    string         `json:"event_type"`
	EventData    map[string]any `json:"event_data,omitempty"`
	Status       string         `json:"status"`
	ErrorMessage string         `json:"error_message,omitempty"`
	TeamID       string         `json:"team_id,omitempty"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
}

// EventPatch descreve uma atualização parcial: campo nil = não mexe.
// EventData é mesclado chave a chave no payload existente.
type EventPatch struct {
	Status       *string
	EventData    map[string]any
	ErrorMessage *string
}

type EventRepositoryInterface interface {
	Create(ctx context.Context, event *Event) error
	Update(ctx context.Context, id int64, patch EventPatch) (*Event, error)
	ListRecent(ctx context.Context, teamID string, limit int) ([]*Event, error)

	// FindStuckProcessing retorna eventos ainda em "processing" criados
	// antes do cutoff (usado pelo monitor de timeout).
	FindStuckProcessing(ctx context.Context, cutoff time.Time) ([]*Event, error)
}
