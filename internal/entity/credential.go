package entity

import (
	"context"
	"errors"
	"time"
)

var ErrCredentialNotFound = errors.New("credential not found")

const (
	ProviderSlack = "slack"
	ProviderZoho  = "zoho"
	ProviderGmail = "gmail"
)

// Credential guarda os tokens OAuth de um par (team, provider).
// No máximo uma linha ativa por par: o Put sobrescreve, sem merge.
type Credential struct {
	TeamID       string     `json:"team_id"`
	Provider     string     `json:"provider"`
	AccessToken  string     `json:"-"`
	RefreshToken string     `json:"-"`
	ExpiresAt    *time.Time `json:"expires_at,omitempty"`
	UserEmail    string     `json:"user_email,omitempty"`
	BotUserID    string     `json:"bot_user_id,omitempty"`
	APIDomain    string     `json:"api_domain,omitempty"`
	Installed    bool       `json:"installed"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// Expired checa a validade de forma preguiçosa, contra o relógio do
// chamador. Sem expiry registrado, o token não expira.
func (c *Credential) Expired(now time.Time) bool {
	if c.ExpiresAt == nil {
		return false
	}
	return !now.Before(*c.ExpiresAt)
}

type CredentialRepositoryInterface interface {
	Put(ctx context.Context, cred *Credential) error
	Get(ctx context.Context, teamID, provider string) (*Credential, error)
	GetAll(ctx context.Context, teamID string) (map[string]*Credential, error)
}
