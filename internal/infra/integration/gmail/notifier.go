package gmail

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/xavierca1/leadstream/internal/entity"
)

type TokenStore interface {
	Get(ctx context.Context, teamID, provider string) (*entity.Credential, error)
	Put(ctx context.Context, cred *entity.Credential) error
}

// Fallback é acionado quando o time não conectou o Gmail (tipicamente
// o sender SMTP de infra/mail).
type Fallback interface {
	SendLeadNotification(ctx context.Context, teamID string, lead *entity.Lead, success bool, errorMessage string) error
}

// Notifier implementa usecase.EmailNotifier: manda o resumo do lead
// para a caixa conectada do time, renovando o token se preciso.
type Notifier struct {
	Tokens   TokenStore
	Client   *Client
	Fallback Fallback
}

func NewNotifier(tokens TokenStore, client *Client, fallback Fallback) *Notifier {
	return &Notifier{Tokens: tokens, Client: client, Fallback: fallback}
}

func (n *Notifier) SendLeadNotification(ctx context.Context, teamID string, lead *entity.Lead, success bool, errorMessage string) error {
	cred, err := n.Tokens.Get(ctx, teamID, entity.ProviderGmail)
	if err != nil {
		if n.Fallback != nil {
			log.Printf("📧 Gmail não conectado para %s, usando fallback SMTP", teamID)
			return n.Fallback.SendLeadNotification(ctx, teamID, lead, success, errorMessage)
		}
		return fmt.Errorf("sem credencial Gmail para o time %s: %w", teamID, err)
	}

	if cred.Expired(time.Now()) {
		cred, err = n.refresh(ctx, cred)
		if err != nil {
			return err
		}
	}

	subject, body := buildLeadEmail(lead, success, errorMessage)
	return n.Client.SendEmail(ctx, cred.AccessToken, cred.UserEmail, subject, body)
}

func (n *Notifier) refresh(ctx context.Context, cred *entity.Credential) (*entity.Credential, error) {
	if cred.RefreshToken == "" {
		return nil, fmt.Errorf("token Gmail expirado e sem refresh_token para o time %s", cred.TeamID)
	}

	log.Printf("🔄 Gmail: renovando token do time %s", cred.TeamID)
	tokens, err := n.Client.Refresh(ctx, cred.RefreshToken)
	if err != nil {
		return nil, fmt.Errorf("refresh do token Gmail falhou: %w", err)
	}

	expiresAt := time.Now().Add(time.Duration(tokens.ExpiresIn) * time.Second)
	cred.AccessToken = tokens.AccessToken
	cred.ExpiresAt = &expiresAt

	if err := n.Tokens.Put(ctx, cred); err != nil {
		return nil, fmt.Errorf("falha ao gravar token renovado: %w", err)
	}
	return cred, nil
}

func buildLeadEmail(lead *entity.Lead, success bool, errorMessage string) (subject, body string) {
	name := lead.FullName()
	if success {
		subject = fmt.Sprintf("✅ New Lead Processed Successfully - %s", name)
		body = fmt.Sprintf(
			`<h2>New lead processed</h2>
<p><b>Name:</b> %s<br>
<b>Phone:</b> %s<br>
<b>Location:</b> %s<br>
<b>Property:</b> %d bedroom %s<br>
<b>Budget:</b> %d</p>
<p><b>Matched projects:</b> %s</p>`,
			name, lead.Phone, lead.Location, lead.Bedrooms, lead.PropertyType, lead.Budget,
			matchedOrNone(lead.MatchedProjects),
		)
		return subject, body
	}

	subject = fmt.Sprintf("❌ Lead Processing Failed - %s", name)
	body = fmt.Sprintf(
		`<h2>Lead processing failed</h2>
<p><b>Name:</b> %s<br>
<b>Phone:</b> %s</p>
<p><b>Error:</b> %s</p>`,
		name, lead.Phone, errorMessage,
	)
	return subject, body
}

func matchedOrNone(projects []string) string {
	if len(projects) == 0 {
		return "none"
	}
	return strings.Join(projects, ", ")
}
