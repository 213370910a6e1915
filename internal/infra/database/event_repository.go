package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/xavierca1/leadstream/internal/entity"
)

const DefaultEventLimit = 50

type EventRepository struct {
	DB *sql.DB
}

func NewEventRepository(db *sql.DB) *EventRepository {
	return &EventRepository{DB: db}
}

func (r *EventRepository) Create(ctx context.Context, event *entity.Event) error {
	data, err := marshalEventData(event.EventData)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO event_logs (event_type, event_data, status, error_message, team_id)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, updated_at
	`
	return r.DB.QueryRowContext(
		ctx,
		query,
		event.EventType,
		data,
		event.Status,
		nullString(event.ErrorMessage),
		nullString(event.TeamID),
	).Scan(&event.ID, &event.CreatedAt, &event.UpdatedAt)
}

// Update aplica o patch e devolve o registro completo resultante.
// event_data novo é mesclado chave a chave (||) no existente.
func (r *EventRepository) Update(ctx context.Context, id int64, patch entity.EventPatch) (*entity.Event, error) {
	data, err := marshalEventData(patch.EventData)
	if err != nil {
		return nil, err
	}

	query := `
		UPDATE event_logs
		SET status = COALESCE($2, status),
		    event_data = CASE
		        WHEN $3::jsonb IS NULL THEN event_data
		        ELSE COALESCE(event_data, '{}'::jsonb) || $3::jsonb
		    END,
		    error_message = COALESCE($4, error_message),
		    updated_at = NOW()
		WHERE id = $1
		RETURNING id, event_type, event_data, status, COALESCE(error_message, ''),
		          COALESCE(team_id, ''), created_at, updated_at
	`
	event, err := scanEvent(r.DB.QueryRowContext(ctx, query, id, patch.Status, data, patch.ErrorMessage))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, entity.ErrEventNotFound
	}
	return event, err
}

func (r *EventRepository) ListRecent(ctx context.Context, teamID string, limit int) ([]*entity.Event, error) {
	if limit <= 0 {
		limit = DefaultEventLimit
	}

	query := `
		SELECT id, event_type, event_data, status, COALESCE(error_message, ''),
		       COALESCE(team_id, ''), created_at, updated_at
		FROM event_logs
		WHERE ($1 = '' OR team_id = $1)
		ORDER BY created_at DESC, id DESC
		LIMIT $2
	`
	rows, err := r.DB.QueryContext(ctx, query, teamID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanEvents(rows)
}

func (r *EventRepository) FindStuckProcessing(ctx context.Context, cutoff time.Time) ([]*entity.Event, error) {
	query := `
		SELECT id, event_type, event_data, status, COALESCE(error_message, ''),
		       COALESCE(team_id, ''), created_at, updated_at
		FROM event_logs
		WHERE status = 'processing' AND created_at < $1
	`
	rows, err := r.DB.QueryContext(ctx, query, cutoff)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanEvents(rows)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEvent(row rowScanner) (*entity.Event, error) {
	event := &entity.Event{}
	var data []byte
	if err := row.Scan(
		&event.ID,
		&event.EventType,
		&data,
		&event.Status,
		&event.ErrorMessage,
		&event.TeamID,
		&event.CreatedAt,
		&event.UpdatedAt,
	); err != nil {
		return nil, err
	}
	if len(data) > 0 {
		if err := json.Unmarshal(data, &event.EventData); err != nil {
			return nil, err
		}
	}
	return event, nil
}

func scanEvents(rows *sql.Rows) ([]*entity.Event, error) {
	var events []*entity.Event
	for rows.Next() {
		event, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, event)
	}
	return events, rows.Err()
}

func marshalEventData(data map[string]any) ([]byte, error) {
	if data == nil {
		return nil, nil
	}
	return json.Marshal(data)
}
