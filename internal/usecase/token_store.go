package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/xavierca1/leadstream/internal/entity"
)

// TokenStore é a visão de mais alto nível das credenciais OAuth:
// Put sobrescreve, Get devolve como está (quem usa checa o expiry),
// Status monta o trio slack/zoho/gmail para o dashboard.
type TokenStore struct {
	Repo entity.CredentialRepositoryInterface
}

func NewTokenStore(repo entity.CredentialRepositoryInterface) *TokenStore {
	return &TokenStore{Repo: repo}
}

func (s *TokenStore) Put(ctx context.Context, cred *entity.Credential) error {
	if cred.TeamID == "" || cred.Provider == "" {
		return &DomainError{Code: "INVALID_CREDENTIAL", Message: "team_id e provider são obrigatórios"}
	}
	if err := s.Repo.Put(ctx, cred); err != nil {
		return fmt.Errorf("falha ao gravar credencial %s/%s: %w", cred.TeamID, cred.Provider, err)
	}
	return nil
}

func (s *TokenStore) Get(ctx context.Context, teamID, provider string) (*entity.Credential, error) {
	return s.Repo.Get(ctx, teamID, provider)
}

type ProviderStatus struct {
	Connected  bool       `json:"connected"`
	Configured bool       `json:"configured"`
	UserEmail  string     `json:"user_email,omitempty"`
	ExpiresAt  *time.Time `json:"expires_at,omitempty"`
	IsExpired  bool       `json:"is_expired,omitempty"`
}

type IntegrationStatus struct {
	Slack ProviderStatus `json:"slack"`
	Zoho  ProviderStatus `json:"zoho"`
	Gmail ProviderStatus `json:"gmail"`
}

// Status nunca falha por credencial ausente: ausência vira
// connected=false, que o dashboard renderiza como "not configured".
func (s *TokenStore) Status(ctx context.Context, teamID string) (*IntegrationStatus, error) {
	creds, err := s.Repo.GetAll(ctx, teamID)
	if err != nil && !errors.Is(err, entity.ErrCredentialNotFound) {
		return nil, err
	}

	now := time.Now()
	status := &IntegrationStatus{
		Slack: providerStatus(creds[entity.ProviderSlack], now),
		Zoho:  providerStatus(creds[entity.ProviderZoho], now),
		Gmail: providerStatus(creds[entity.ProviderGmail], now),
	}
	return status, nil
}

func providerStatus(cred *entity.Credential, now time.Time) ProviderStatus {
	if cred == nil || cred.AccessToken == "" {
		return ProviderStatus{Connected: false, Configured: true}
	}
	expired := cred.Expired(now)
	return ProviderStatus{
		Connected:  !expired,
		Configured: true,
		UserEmail:  cred.UserEmail,
		ExpiresAt:  cred.ExpiresAt,
		IsExpired:  expired,
	}
}
