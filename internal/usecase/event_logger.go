package usecase

import (
	"context"
	"fmt"
	"log"

	"github.com/xavierca1/leadstream/internal/entity"
)

const DefaultEventLimit = 50

// EventLogger é o único caminho de escrita do Event Log. A publicação
// no notifier acontece aqui dentro, como efeito colateral de todo
// Log/Update — nenhum chamador tem como esquecer de notificar.
type EventLogger struct {
	Repo     entity.EventRepositoryInterface
	Notifier EventNotifier
}

func NewEventLogger(repo entity.EventRepositoryInterface, notifier EventNotifier) *EventLogger {
	return &EventLogger{Repo: repo, Notifier: notifier}
}

func (l *EventLogger) Log(ctx context.Context, teamID, eventType string, data map[string]any, status string) (*entity.Event, error) {
	event := &entity.Event{
		EventType: eventType,
		EventData: data,
		Status:    status,
		TeamID:    teamID,
	}
	if err := l.Repo.Create(ctx, event); err != nil {
		return nil, &TechnicalError{
			Code:    "EVENT_WRITE_FAILED",
			Message: fmt.Sprintf("falha ao gravar evento %s: %v", eventType, err),
		}
	}

	l.Notifier.Publish(event)
	log.Printf("📋 Evento #%d registrado: %s - %s", event.ID, eventType, status)
	return event, nil
}

func (l *EventLogger) Update(ctx context.Context, id int64, patch entity.EventPatch) (*entity.Event, error) {
	event, err := l.Repo.Update(ctx, id, patch)
	if err != nil {
		return nil, err
	}

	l.Notifier.Publish(event)
	log.Printf("📋 Evento #%d atualizado: %s", event.ID, event.Status)
	return event, nil
}

func (l *EventLogger) Recent(ctx context.Context, teamID string, limit int) ([]*entity.Event, error) {
	if limit <= 0 || limit > DefaultEventLimit {
		limit = DefaultEventLimit
	}
	return l.Repo.ListRecent(ctx, teamID, limit)
}

// Helpers de patch para o pipeline não montar ponteiro na mão.

func StatusPatch(status string) entity.EventPatch {
	return entity.EventPatch{Status: &status}
}

func ErrorPatch(message string) entity.EventPatch {
	status := entity.StatusError
	return entity.EventPatch{Status: &status, ErrorMessage: &message}
}

func DataPatch(data map[string]any) entity.EventPatch {
	return entity.EventPatch{EventData: data}
}
