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

func teamColumns() []string {
	return []string{"id", "team_id", "team_name", "domain", "is_active", "session_id", "created_at", "updated_at"}
}

// TestTeamRepositoryFindByTeamIDNotFound
func TestTeamRepositoryFindByTeamIDNotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(regexp.QuoteMeta("WHERE team_id = $1")).
		WithArgs("T_NOPE").
		WillReturnRows(sqlmock.NewRows(teamColumns()))

	repo := database.NewTeamRepository(db)
	team, err := repo.FindByTeamID(context.Background(), "T_NOPE")

	assert.ErrorIs(t, err, entity.ErrTeamNotFound)
	assert.Nil(t, team)
}

// TestTeamRepositoryFindVisibleToSession - a query traz os times da
// sessão e os legados (session_id NULL)
func TestTeamRepositoryFindVisibleToSession(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	now := time.Now()
	mock.ExpectQuery(regexp.QuoteMeta("session_id = $1 OR session_id IS NULL")).
		WithArgs("sess-a").
		WillReturnRows(sqlmock.NewRows(teamColumns()).
			AddRow("uuid-1", "T_MINE", "Acme", "", true, "sess-a", now, now).
			AddRow("uuid-2", "T_LEGACY", "", "", true, "", now.Add(-time.Hour), now))

	repo := database.NewTeamRepository(db)
	teams, err := repo.FindVisibleToSession(context.Background(), "sess-a")

	assert.NoError(t, err)
	assert.Len(t, teams, 2)
	assert.Equal(t, "T_MINE", teams[0].TeamID)
	assert.Equal(t, "", teams[1].SessionID)
}

// TestTeamRepositoryClaimSessionFirstWriterWins - o update só alcança
// linhas com session_id NULL; vínculo existente fica intocado
func TestTeamRepositoryClaimSessionFirstWriterWins(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	mock.ExpectExec(regexp.QuoteMeta("WHERE team_id = $1 AND session_id IS NULL")).
		WithArgs("T123", "sess-b").
		WillReturnResult(sqlmock.NewResult(0, 0))

	repo := database.NewTeamRepository(db)

	// Zero linhas afetadas não é erro: outro callback chegou primeiro
	assert.NoError(t, repo.ClaimSession(context.Background(), "T123", "sess-b"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

// TestTeamRepositoryUpdateNotFound
func TestTeamRepositoryUpdateNotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	mock.ExpectExec(regexp.QuoteMeta("UPDATE teams")).
		WillReturnResult(sqlmock.NewResult(0, 0))

	repo := database.NewTeamRepository(db)
	team := entity.NewTeam("T_NOPE", "Ghost", "")

	assert.ErrorIs(t, repo.Update(context.Background(), team), entity.ErrTeamNotFound)
}
