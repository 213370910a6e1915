package mail

import (
	"context"
	"fmt"
	"os"
	"strings"

	"gopkg.in/gomail.v2"

	"github.com/xavierca1/leadstream/internal/entity"
)

// EmailSender é o fallback SMTP usado quando o time não conectou o
// Gmail: manda o resumo do lead para a caixa configurada no deploy.
type EmailSender struct {
	Host     string
	Port     int
	User     string
	Password string
	From     string
	To       string
}

func NewEmailSender(host string, port int, user, password string) *EmailSender {
	return &EmailSender{
		Host:     host,
		Port:     port,
		User:     user,
		Password: password,
		From:     os.Getenv("MAIL_FROM"),
		To:       os.Getenv("MAIL_TO"),
	}
}

func (s *EmailSender) Configured() bool {
	return s.Host != "" && s.To != ""
}

func (s *EmailSender) SendLeadNotification(ctx context.Context, teamID string, lead *entity.Lead, success bool, errorMessage string) error {
	if !s.Configured() {
		return fmt.Errorf("fallback SMTP não configurado (MAIL_HOST/MAIL_TO)")
	}

	var subject, body string
	if success {
		subject = fmt.Sprintf("✅ New Lead Processed Successfully - %s", lead.FullName())
		body = fmt.Sprintf(
			"<h2>New lead processed (team %s)</h2><p>%s, %s, %d bedroom %s, budget %d.</p><p>Matched: %s</p>",
			teamID, lead.FullName(), lead.Location, lead.Bedrooms, lead.PropertyType, lead.Budget,
			strings.Join(lead.MatchedProjects, ", "),
		)
	} else {
		subject = fmt.Sprintf("❌ Lead Processing Failed - %s", lead.FullName())
		body = fmt.Sprintf("<h2>Lead processing failed (team %s)</h2><p>%s</p>", teamID, errorMessage)
	}

	m := gomail.NewMessage()
	m.SetHeader("From", s.From)
	m.SetHeader("To", s.To)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", body)

	d := gomail.NewDialer(s.Host, s.Port, s.User, s.Password)

	if err := d.DialAndSend(m); err != nil {
		return fmt.Errorf("erro ao enviar email SMTP: %w", err)
	}
	return nil
}
