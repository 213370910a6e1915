package usecase

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/xavierca1/leadstream/internal/entity"
)

// ProcessLeadUseCase é o pipeline inteiro: extração via LLM → matching
// no catálogo → persistência do lead → CRM → email → resposta no
// Slack. Cria exatamente um evento por mensagem e vai atualizando o
// mesmo registro até o estado terminal.
type ProcessLeadUseCase struct {
	EventLog  *EventLogger
	Extractor LeadExtractor
	Projects  entity.ProjectRepositoryInterface
	Leads     entity.LeadRepositoryInterface
	CRM       CRMClient
	Email     EmailNotifier
	Chat      ChatClient
}

func NewProcessLeadUseCase(
	eventLog *EventLogger,
	extractor LeadExtractor,
	projects entity.ProjectRepositoryInterface,
	leads entity.LeadRepositoryInterface,
	crm CRMClient,
	email EmailNotifier,
	chat ChatClient,
) *ProcessLeadUseCase {
	return &ProcessLeadUseCase{
		EventLog:  eventLog,
		Extractor: extractor,
		Projects:  projects,
		Leads:     leads,
		CRM:       crm,
		Email:     email,
		Chat:      chat,
	}
}

func (uc *ProcessLeadUseCase) Execute(ctx context.Context, msg InboundMessage) error {
	log.Printf("🔄 Processando mensagem do time %s", msg.TeamID)

	// 1. Um evento por lead, nasce em processing
	event, err := uc.EventLog.Log(ctx, msg.TeamID, "lead_received", map[string]any{
		"message": msg.Text,
	}, entity.StatusProcessing)
	if err != nil {
		return err
	}

	// 2. Extração estruturada via LLM
	lead, err := uc.Extractor.ExtractLead(ctx, msg.Text)
	if err != nil {
		return uc.fail(ctx, event.ID, msg, nil, fmt.Errorf("extração do lead falhou: %w", err))
	}
	lead.TeamID = msg.TeamID

	// 3. Matching contra o catálogo de projetos
	projects, err := uc.Projects.FindMatching(ctx, lead)
	if err != nil {
		return uc.fail(ctx, event.ID, msg, lead, fmt.Errorf("matching de projetos falhou: %w", err))
	}
	for _, p := range projects {
		lead.MatchedProjects = append(lead.MatchedProjects, p.Name)
	}

	if _, err := uc.EventLog.Update(ctx, event.ID, DataPatch(map[string]any{
		"lead":             lead,
		"matched_projects": lead.MatchedProjects,
	})); err != nil {
		log.Printf("⚠️ Falha ao anexar lead no evento #%d: %v", event.ID, err)
	}

	// 4. Persiste o lead
	if err := uc.Leads.Create(ctx, lead); err != nil {
		return uc.fail(ctx, event.ID, msg, lead, fmt.Errorf("falha ao salvar lead: %w", err))
	}

	// 5. CRM
	crmID, err := uc.CRM.InsertLead(ctx, msg.TeamID, lead)
	if err != nil {
		return uc.fail(ctx, event.ID, msg, lead, fmt.Errorf("insert no CRM falhou: %w", err))
	}
	if _, err := uc.EventLog.Update(ctx, event.ID, DataPatch(map[string]any{
		"crm_insert": true,
		"crm_id":     crmID,
	})); err != nil {
		log.Printf("⚠️ Falha ao anexar crm_id no evento #%d: %v", event.ID, err)
	}

	// 6. Email de notificação (Gmail do time ou fallback SMTP)
	emailSent := true
	if err := uc.Email.SendLeadNotification(ctx, msg.TeamID, lead, true, ""); err != nil {
		// Notificação não derruba o lead já inserido no CRM
		emailSent = false
		log.Printf("⚠️ Falha no email de notificação para %s: %v", msg.TeamID, err)
	}

	// 7. Estado terminal + resposta na thread
	status := entity.StatusSuccess
	if _, err := uc.EventLog.Update(ctx, event.ID, entity.EventPatch{
		Status:    &status,
		EventData: map[string]any{"email_sent": emailSent},
	}); err != nil {
		return err
	}

	uc.reply(ctx, msg, uc.summaryText(lead))
	log.Printf("🚀 Lead de %s processado com sucesso (CRM: %s)", lead.FullName(), crmID)
	return nil
}

// fail registra o estado terminal de erro, avisa por email e responde
// na thread. O erro original é devolvido para o worker decidir o ack.
func (uc *ProcessLeadUseCase) fail(ctx context.Context, eventID int64, msg InboundMessage, lead *entity.Lead, cause error) error {
	log.Printf("❌ Pipeline falhou para o time %s: %v", msg.TeamID, cause)

	if _, err := uc.EventLog.Update(ctx, eventID, ErrorPatch(cause.Error())); err != nil {
		log.Printf("⚠️ Falha ao marcar evento #%d como erro: %v", eventID, err)
	}

	if lead != nil {
		if err := uc.Email.SendLeadNotification(ctx, msg.TeamID, lead, false, cause.Error()); err != nil {
			log.Printf("⚠️ Falha no email de erro para %s: %v", msg.TeamID, err)
		}
	}

	uc.reply(ctx, msg, "❌ Desculpe, houve um erro ao processar sua mensagem.")
	return cause
}

func (uc *ProcessLeadUseCase) reply(ctx context.Context, msg InboundMessage, text string) {
	if msg.Channel == "" {
		return
	}
	if err := uc.Chat.PostMessage(ctx, msg.TeamID, msg.Channel, msg.ThreadTS, text); err != nil {
		log.Printf("⚠️ Falha ao responder no Slack (%s): %v", msg.Channel, err)
	}
}

func (uc *ProcessLeadUseCase) summaryText(lead *entity.Lead) string {
	if len(lead.MatchedProjects) == 0 {
		return fmt.Sprintf("✅ Lead de %s registrado no CRM. Nenhum projeto compatível no catálogo.", lead.FullName())
	}
	return fmt.Sprintf(
		"✅ Lead de %s registrado no CRM. Projetos compatíveis: %s",
		lead.FullName(),
		strings.Join(lead.MatchedProjects, ", "),
	)
}
