package usecase_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/xavierca1/leadstream/internal/entity"
	"github.com/xavierca1/leadstream/internal/usecase"
)

// TestEnsureTeamCreatesWhenMissing
func TestEnsureTeamCreatesWhenMissing(t *testing.T) {
	ctx := context.Background()

	mockTeams := new(MockTeamRepository)
	mockSessions := new(MockSessionRepository)

	mockTeams.On("FindByTeamID", ctx, "T123").Return(nil, entity.ErrTeamNotFound)
	mockTeams.On("Create", ctx, mock.Anything).Return(nil)

	registry := usecase.NewRegistry(mockSessions, mockTeams)

	result, err := registry.EnsureTeam(ctx, "T123", "Acme", "acme.slack.com")

	assert.NoError(t, err)
	assert.Equal(t, usecase.TeamCreated, result)
	mockTeams.AssertCalled(t, "Create", ctx, mock.MatchedBy(func(team *entity.Team) bool {
		return team.TeamID == "T123" && team.TeamName == "Acme" && team.IsActive
	}))
}

// TestEnsureTeamNeverBlanksFields - chamar de novo com campos vazios
// não rebaixa nome/domínio já preenchidos
func TestEnsureTeamNeverBlanksFields(t *testing.T) {
	ctx := context.Background()

	mockTeams := new(MockTeamRepository)
	mockSessions := new(MockSessionRepository)

	existing := entity.NewTeam("T123", "Acme", "acme.slack.com")
	mockTeams.On("FindByTeamID", ctx, "T123").Return(existing, nil)

	registry := usecase.NewRegistry(mockSessions, mockTeams)

	result, err := registry.EnsureTeam(ctx, "T123", "", "")

	assert.NoError(t, err)
	assert.Equal(t, usecase.TeamExists, result)
	assert.Equal(t, "Acme", existing.TeamName)
	assert.Equal(t, "acme.slack.com", existing.Domain)
	mockTeams.AssertNotCalled(t, "Update")
}

// TestEnsureTeamFillsMissingName - nome novo completa o registro
func TestEnsureTeamFillsMissingName(t *testing.T) {
	ctx := context.Background()

	mockTeams := new(MockTeamRepository)
	mockSessions := new(MockSessionRepository)

	existing := entity.NewTeam("T123", "", "")
	mockTeams.On("FindByTeamID", ctx, "T123").Return(existing, nil)
	mockTeams.On("Update", ctx, existing).Return(nil)

	registry := usecase.NewRegistry(mockSessions, mockTeams)

	result, err := registry.EnsureTeam(ctx, "T123", "Acme", "")

	assert.NoError(t, err)
	assert.Equal(t, usecase.TeamUpdated, result)
	assert.Equal(t, "Acme", existing.TeamName)
}

// TestVisibleToSessionFailOpen - time sem dono é visível para qualquer
// sessão; time vinculado só para a dona
func TestVisibleToSessionFailOpen(t *testing.T) {
	legacy := &entity.Team{TeamID: "T_LEGACY"}
	owned := &entity.Team{TeamID: "T_OWNED", SessionID: "sess-a"}

	assert.True(t, usecase.VisibleToSession(legacy, "sess-a"))
	assert.True(t, usecase.VisibleToSession(legacy, "sess-b"))
	assert.True(t, usecase.VisibleToSession(legacy, ""))

	assert.True(t, usecase.VisibleToSession(owned, "sess-a"))
	assert.False(t, usecase.VisibleToSession(owned, "sess-b"))
	assert.False(t, usecase.VisibleToSession(owned, ""))
}

// TestBindIgnoresEmptyArgs - sem sessão ou sem time não há o que fazer
func TestBindIgnoresEmptyArgs(t *testing.T) {
	ctx := context.Background()

	mockTeams := new(MockTeamRepository)
	mockSessions := new(MockSessionRepository)
	registry := usecase.NewRegistry(mockSessions, mockTeams)

	assert.NoError(t, registry.Bind(ctx, "", "T123"))
	assert.NoError(t, registry.Bind(ctx, "sess-a", ""))
	mockTeams.AssertNotCalled(t, "ClaimSession")
}

// TestBindClaimsTeam
func TestBindClaimsTeam(t *testing.T) {
	ctx := context.Background()

	mockTeams := new(MockTeamRepository)
	mockSessions := new(MockSessionRepository)
	mockTeams.On("ClaimSession", ctx, "T123", "sess-a").Return(nil)

	registry := usecase.NewRegistry(mockSessions, mockTeams)

	assert.NoError(t, registry.Bind(ctx, "sess-a", "T123"))
	mockTeams.AssertCalled(t, "ClaimSession", ctx, "T123", "sess-a")
}

// TestEnsureSessionRequiresID
func TestEnsureSessionRequiresID(t *testing.T) {
	ctx := context.Background()

	mockTeams := new(MockTeamRepository)
	mockSessions := new(MockSessionRepository)
	registry := usecase.NewRegistry(mockSessions, mockTeams)

	err := registry.EnsureSession(ctx, "")

	assert.Error(t, err)
	assert.True(t, usecase.IsDomainError(err))
	mockSessions.AssertNotCalled(t, "Ensure")
}
