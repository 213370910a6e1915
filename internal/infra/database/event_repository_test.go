package database_test

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"

	"github.com/xavierca1/leadstream/internal/entity"
	"github.com/xavierca1/leadstream/internal/infra/database"
)

func eventColumns() []string {
	return []string{"id", "event_type", "event_data", "status", "error_message", "team_id", "created_at", "updated_at"}
}

// TestEventRepositoryCreate - insert devolve id e timestamps gerados
// pelo banco
func TestEventRepositoryCreate(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	now := time.Now()
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO event_logs")).
		WithArgs("lead_received", []byte(`{"message":"hi"}`), "processing", nil, "T123").
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at", "updated_at"}).AddRow(int64(1), now, now))

	repo := database.NewEventRepository(db)
	event := &entity.Event{
		EventType: "lead_received",
		EventData: map[string]any{"message": "hi"},
		Status:    entity.StatusProcessing,
		TeamID:    "T123",
	}

	err = repo.Create(context.Background(), event)

	assert.NoError(t, err)
	assert.Equal(t, int64(1), event.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// TestEventRepositoryUpdateMergesData - o update devolve o registro
// completo com o payload já mesclado pelo banco
func TestEventRepositoryUpdateMergesData(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	now := time.Now()
	status := entity.StatusSuccess
	mock.ExpectQuery(regexp.QuoteMeta("UPDATE event_logs")).
		WithArgs(int64(7), "success", []byte(`{"crm_id":"z-1"}`), nil).
		WillReturnRows(sqlmock.NewRows(eventColumns()).
			AddRow(int64(7), "lead_received", []byte(`{"message":"hi","crm_id":"z-1"}`), "success", "", "T123", now, now))

	repo := database.NewEventRepository(db)
	event, err := repo.Update(context.Background(), 7, entity.EventPatch{
		Status:    &status,
		EventData: map[string]any{"crm_id": "z-1"},
	})

	assert.NoError(t, err)
	assert.Equal(t, "success", event.Status)
	assert.Equal(t, "hi", event.EventData["message"])
	assert.Equal(t, "z-1", event.EventData["crm_id"])
	assert.NoError(t, mock.ExpectationsWereMet())
}

// TestEventRepositoryUpdateNotFound
func TestEventRepositoryUpdateNotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(regexp.QuoteMeta("UPDATE event_logs")).
		WillReturnRows(sqlmock.NewRows(eventColumns()))

	repo := database.NewEventRepository(db)
	_, err = repo.Update(context.Background(), 999, entity.EventPatch{})

	assert.ErrorIs(t, err, entity.ErrEventNotFound)
}

// TestEventRepositoryListRecent - teto padrão aplicado quando o limite
// não vem
func TestEventRepositoryListRecent(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	now := time.Now()
	mock.ExpectQuery(regexp.QuoteMeta("FROM event_logs")).
		WithArgs("T123", database.DefaultEventLimit).
		WillReturnRows(sqlmock.NewRows(eventColumns()).
			AddRow(int64(2), "lead_received", []byte(`{}`), "success", "", "T123", now, now).
			AddRow(int64(1), "test_event", nil, "success", "", "T123", now.Add(-time.Minute), now))

	repo := database.NewEventRepository(db)
	events, err := repo.ListRecent(context.Background(), "T123", 0)

	assert.NoError(t, err)
	assert.Len(t, events, 2)
	assert.Equal(t, int64(2), events[0].ID)
	assert.Nil(t, events[1].EventData)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// TestEventRepositoryFindStuckProcessing
func TestEventRepositoryFindStuckProcessing(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	now := time.Now()
	cutoff := now.Add(-5 * time.Minute)
	mock.ExpectQuery(regexp.QuoteMeta("WHERE status = 'processing' AND created_at < $1")).
		WithArgs(cutoff).
		WillReturnRows(sqlmock.NewRows(eventColumns()).
			AddRow(int64(3), "lead_received", []byte(`{}`), "processing", "", "T123", now.Add(-10*time.Minute), now))

	repo := database.NewEventRepository(db)
	events, err := repo.FindStuckProcessing(context.Background(), cutoff)

	assert.NoError(t, err)
	assert.Len(t, events, 1)
	assert.Equal(t, entity.StatusProcessing, events[0].Status)
}
