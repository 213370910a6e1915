package usecase_test

import (
	"context"
	"sync"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/xavierca1/leadstream/internal/entity"
)

// MockEventRepository
type MockEventRepository struct {
	mock.Mock
}

func (m *MockEventRepository) Create(ctx context.Context, event *entity.Event) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

func (m *MockEventRepository) Update(ctx context.Context, id int64, patch entity.EventPatch) (*entity.Event, error) {
	args := m.Called(ctx, id, patch)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Event), args.Error(1)
}

func (m *MockEventRepository) ListRecent(ctx context.Context, teamID string, limit int) ([]*entity.Event, error) {
	args := m.Called(ctx, teamID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entity.Event), args.Error(1)
}

func (m *MockEventRepository) FindStuckProcessing(ctx context.Context, cutoff time.Time) ([]*entity.Event, error) {
	args := m.Called(ctx, cutoff)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entity.Event), args.Error(1)
}

// RecordingNotifier guarda tudo que foi publicado, na ordem.
type RecordingNotifier struct {
	mu        sync.Mutex
	Published []*entity.Event
}

func (n *RecordingNotifier) Publish(event *entity.Event) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.Published = append(n.Published, event)
}

func (n *RecordingNotifier) Count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.Published)
}

// MockTeamRepository
type MockTeamRepository struct {
	mock.Mock
}

func (m *MockTeamRepository) Create(ctx context.Context, team *entity.Team) error {
	args := m.Called(ctx, team)
	return args.Error(0)
}

func (m *MockTeamRepository) FindByTeamID(ctx context.Context, teamID string) (*entity.Team, error) {
	args := m.Called(ctx, teamID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Team), args.Error(1)
}

func (m *MockTeamRepository) Update(ctx context.Context, team *entity.Team) error {
	args := m.Called(ctx, team)
	return args.Error(0)
}

func (m *MockTeamRepository) FindVisibleToSession(ctx context.Context, sessionID string) ([]*entity.Team, error) {
	args := m.Called(ctx, sessionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entity.Team), args.Error(1)
}

func (m *MockTeamRepository) ClaimSession(ctx context.Context, teamID, sessionID string) error {
	args := m.Called(ctx, teamID, sessionID)
	return args.Error(0)
}

// MockSessionRepository
type MockSessionRepository struct {
	mock.Mock
}

func (m *MockSessionRepository) Ensure(ctx context.Context, sessionID string) error {
	args := m.Called(ctx, sessionID)
	return args.Error(0)
}

// MockCredentialRepository
type MockCredentialRepository struct {
	mock.Mock
}

func (m *MockCredentialRepository) Put(ctx context.Context, cred *entity.Credential) error {
	args := m.Called(ctx, cred)
	return args.Error(0)
}

func (m *MockCredentialRepository) Get(ctx context.Context, teamID, provider string) (*entity.Credential, error) {
	args := m.Called(ctx, teamID, provider)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Credential), args.Error(1)
}

func (m *MockCredentialRepository) GetAll(ctx context.Context, teamID string) (map[string]*entity.Credential, error) {
	args := m.Called(ctx, teamID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]*entity.Credential), args.Error(1)
}

// MockLeadExtractor
type MockLeadExtractor struct {
	mock.Mock
}

func (m *MockLeadExtractor) ExtractLead(ctx context.Context, message string) (*entity.Lead, error) {
	args := m.Called(ctx, message)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Lead), args.Error(1)
}

// MockProjectRepository
type MockProjectRepository struct {
	mock.Mock
}

func (m *MockProjectRepository) FindMatching(ctx context.Context, lead *entity.Lead) ([]*entity.Project, error) {
	args := m.Called(ctx, lead)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entity.Project), args.Error(1)
}

// MockLeadRepository
type MockLeadRepository struct {
	mock.Mock
}

func (m *MockLeadRepository) Create(ctx context.Context, lead *entity.Lead) error {
	args := m.Called(ctx, lead)
	return args.Error(0)
}

// MockCRMClient
type MockCRMClient struct {
	mock.Mock
}

func (m *MockCRMClient) InsertLead(ctx context.Context, teamID string, lead *entity.Lead) (string, error) {
	args := m.Called(ctx, teamID, lead)
	return args.String(0), args.Error(1)
}

// MockEmailNotifier
type MockEmailNotifier struct {
	mock.Mock
}

func (m *MockEmailNotifier) SendLeadNotification(ctx context.Context, teamID string, lead *entity.Lead, success bool, errorMessage string) error {
	args := m.Called(ctx, teamID, lead, success, errorMessage)
	return args.Error(0)
}

// MockChatClient
type MockChatClient struct {
	mock.Mock
}

func (m *MockChatClient) PostMessage(ctx context.Context, teamID, channel, threadTS, text string) error {
	args := m.Called(ctx, teamID, channel, threadTS, text)
	return args.Error(0)
}
