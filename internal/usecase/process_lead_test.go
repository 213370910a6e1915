package usecase_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/xavierca1/leadstream/internal/entity"
	"github.com/xavierca1/leadstream/internal/usecase"
)

func pipelineFixture() (*MockEventRepository, *RecordingNotifier, *MockLeadExtractor, *MockProjectRepository, *MockLeadRepository, *MockCRMClient, *MockEmailNotifier, *MockChatClient, *usecase.ProcessLeadUseCase) {
	mockRepo := new(MockEventRepository)
	recorder := &RecordingNotifier{}
	mockExtractor := new(MockLeadExtractor)
	mockProjects := new(MockProjectRepository)
	mockLeads := new(MockLeadRepository)
	mockCRM := new(MockCRMClient)
	mockEmail := new(MockEmailNotifier)
	mockChat := new(MockChatClient)

	logger := usecase.NewEventLogger(mockRepo, recorder)
	uc := usecase.NewProcessLeadUseCase(
		logger, mockExtractor, mockProjects, mockLeads, mockCRM, mockEmail, mockChat,
	)
	return mockRepo, recorder, mockExtractor, mockProjects, mockLeads, mockCRM, mockEmail, mockChat, uc
}

// TestProcessLeadHappyPath - fluxo completo: extração, matching, banco,
// CRM, email e resposta na thread
func TestProcessLeadHappyPath(t *testing.T) {
	ctx := context.Background()
	mockRepo, recorder, mockExtractor, mockProjects, mockLeads, mockCRM, mockEmail, mockChat, uc := pipelineFixture()

	mockRepo.On("Create", ctx, mock.Anything).Run(func(args mock.Arguments) {
		args.Get(1).(*entity.Event).ID = 1
	}).Return(nil)
	mockRepo.On("Update", ctx, int64(1), mock.Anything).Return(&entity.Event{ID: 1, TeamID: "T123"}, nil)

	lead := &entity.Lead{FirstName: "Ahmed", LastName: "Ali", Phone: "+9715550000", Location: "Dubai Marina", PropertyType: "apartment", Bedrooms: 2, Budget: 1_500_000}
	mockExtractor.On("ExtractLead", ctx, "looking for a 2br in marina").Return(lead, nil)
	mockProjects.On("FindMatching", ctx, lead).Return([]*entity.Project{
		{Name: "Marina Heights"},
		{Name: "Bay Towers"},
	}, nil)
	mockLeads.On("Create", ctx, lead).Return(nil)
	mockCRM.On("InsertLead", ctx, "T123", lead).Return("zoho-77", nil)
	mockEmail.On("SendLeadNotification", ctx, "T123", lead, true, "").Return(nil)
	mockChat.On("PostMessage", ctx, "T123", "C01", "171.001", mock.Anything).Return(nil)

	err := uc.Execute(ctx, usecase.InboundMessage{
		TeamID:   "T123",
		Text:     "looking for a 2br in marina",
		Channel:  "C01",
		ThreadTS: "171.001",
	})

	assert.NoError(t, err)
	assert.Equal(t, "T123", lead.TeamID)
	assert.Equal(t, []string{"Marina Heights", "Bay Towers"}, lead.MatchedProjects)

	mockLeads.AssertCalled(t, "Create", ctx, lead)
	mockCRM.AssertCalled(t, "InsertLead", ctx, "T123", lead)
	mockEmail.AssertCalled(t, "SendLeadNotification", ctx, "T123", lead, true, "")
	mockChat.AssertCalled(t, "PostMessage", ctx, "T123", "C01", "171.001", mock.MatchedBy(func(text string) bool {
		return text != ""
	}))

	// Create + 3 updates (lead anexado, crm_id, terminal), todos publicados
	assert.Equal(t, 4, recorder.Count())
}

// TestProcessLeadExtractionFailure - falha no LLM marca o evento como
// erro e responde na thread; CRM nunca é tocado
func TestProcessLeadExtractionFailure(t *testing.T) {
	ctx := context.Background()
	mockRepo, _, mockExtractor, _, _, mockCRM, mockEmail, mockChat, uc := pipelineFixture()

	mockRepo.On("Create", ctx, mock.Anything).Run(func(args mock.Arguments) {
		args.Get(1).(*entity.Event).ID = 2
	}).Return(nil)
	mockRepo.On("Update", ctx, int64(2), mock.MatchedBy(func(patch entity.EventPatch) bool {
		return patch.Status != nil && *patch.Status == entity.StatusError
	})).Return(&entity.Event{ID: 2, Status: entity.StatusError}, nil)

	mockExtractor.On("ExtractLead", ctx, mock.Anything).Return(nil, errors.New("llm timeout"))
	mockChat.On("PostMessage", ctx, "T123", "C01", "171.001", mock.Anything).Return(nil)

	err := uc.Execute(ctx, usecase.InboundMessage{
		TeamID:   "T123",
		Text:     "gibberish",
		Channel:  "C01",
		ThreadTS: "171.001",
	})

	assert.Error(t, err)
	mockCRM.AssertNotCalled(t, "InsertLead")
	// Sem lead extraído não há o que mandar por email
	mockEmail.AssertNotCalled(t, "SendLeadNotification")
	mockChat.AssertCalled(t, "PostMessage", ctx, "T123", "C01", "171.001", mock.Anything)
}

// TestProcessLeadCRMFailure - falha no CRM vira evento de erro e email
// de falha com o lead já extraído
func TestProcessLeadCRMFailure(t *testing.T) {
	ctx := context.Background()
	mockRepo, _, mockExtractor, mockProjects, mockLeads, mockCRM, mockEmail, mockChat, uc := pipelineFixture()

	mockRepo.On("Create", ctx, mock.Anything).Run(func(args mock.Arguments) {
		args.Get(1).(*entity.Event).ID = 3
	}).Return(nil)
	mockRepo.On("Update", ctx, int64(3), mock.Anything).Return(&entity.Event{ID: 3}, nil)

	lead := &entity.Lead{FirstName: "Sara", Budget: 800_000}
	mockExtractor.On("ExtractLead", ctx, mock.Anything).Return(lead, nil)
	mockProjects.On("FindMatching", ctx, lead).Return([]*entity.Project{}, nil)
	mockLeads.On("Create", ctx, lead).Return(nil)
	mockCRM.On("InsertLead", ctx, "T123", lead).Return("", errors.New("zoho 401"))
	mockEmail.On("SendLeadNotification", ctx, "T123", lead, false, mock.Anything).Return(nil)
	mockChat.On("PostMessage", ctx, "T123", "C01", "171.001", mock.Anything).Return(nil)

	err := uc.Execute(ctx, usecase.InboundMessage{
		TeamID:   "T123",
		Text:     "budget 800k",
		Channel:  "C01",
		ThreadTS: "171.001",
	})

	assert.Error(t, err)
	mockEmail.AssertCalled(t, "SendLeadNotification", ctx, "T123", lead, false, mock.Anything)
}

// TestProcessLeadEmailFailureIsNonFatal - o lead já está no CRM; email
// quebrado não derruba o pipeline
func TestProcessLeadEmailFailureIsNonFatal(t *testing.T) {
	ctx := context.Background()
	mockRepo, _, mockExtractor, mockProjects, mockLeads, mockCRM, mockEmail, mockChat, uc := pipelineFixture()

	mockRepo.On("Create", ctx, mock.Anything).Run(func(args mock.Arguments) {
		args.Get(1).(*entity.Event).ID = 4
	}).Return(nil)
	mockRepo.On("Update", ctx, int64(4), mock.Anything).Return(&entity.Event{ID: 4}, nil)

	lead := &entity.Lead{FirstName: "Omar"}
	mockExtractor.On("ExtractLead", ctx, mock.Anything).Return(lead, nil)
	mockProjects.On("FindMatching", ctx, lead).Return([]*entity.Project{}, nil)
	mockLeads.On("Create", ctx, lead).Return(nil)
	mockCRM.On("InsertLead", ctx, "T123", lead).Return("zoho-88", nil)
	mockEmail.On("SendLeadNotification", ctx, "T123", lead, true, "").Return(errors.New("smtp down"))
	mockChat.On("PostMessage", ctx, "T123", "C01", "171.001", mock.Anything).Return(nil)

	err := uc.Execute(ctx, usecase.InboundMessage{
		TeamID:   "T123",
		Text:     "any",
		Channel:  "C01",
		ThreadTS: "171.001",
	})

	assert.NoError(t, err)
	// O estado terminal carrega email_sent=false
	mockRepo.AssertCalled(t, "Update", ctx, int64(4), mock.MatchedBy(func(patch entity.EventPatch) bool {
		if patch.Status == nil || *patch.Status != entity.StatusSuccess {
			return false
		}
		sent, ok := patch.EventData["email_sent"].(bool)
		return ok && !sent
	}))
}
