package zoho

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/xavierca1/leadstream/internal/entity"
)

// TokenStore é o recorte do token store que o CRM precisa: ler a
// credencial e regravar depois de um refresh.
type TokenStore interface {
	Get(ctx context.Context, teamID, provider string) (*entity.Credential, error)
	Put(ctx context.Context, cred *entity.Credential) error
}

// CRM implementa usecase.CRMClient com refresh preguiçoso: o expiry só
// é checado na hora do uso, nada de eviction em background.
type CRM struct {
	Tokens TokenStore
	Client *Client
}

func NewCRM(tokens TokenStore, client *Client) *CRM {
	return &CRM{Tokens: tokens, Client: client}
}

func (c *CRM) InsertLead(ctx context.Context, teamID string, lead *entity.Lead) (string, error) {
	cred, err := c.Tokens.Get(ctx, teamID, entity.ProviderZoho)
	if err != nil {
		return "", fmt.Errorf("sem credencial Zoho para o time %s: %w", teamID, err)
	}

	if cred.Expired(time.Now()) {
		cred, err = c.refresh(ctx, cred)
		if err != nil {
			return "", err
		}
	}

	return c.Client.InsertLead(ctx, cred, lead)
}

func (c *CRM) refresh(ctx context.Context, cred *entity.Credential) (*entity.Credential, error) {
	if cred.RefreshToken == "" {
		return nil, fmt.Errorf("token Zoho expirado e sem refresh_token para o time %s", cred.TeamID)
	}

	log.Printf("🔄 Zoho: renovando token do time %s", cred.TeamID)
	tokens, err := c.Client.Refresh(ctx, cred.RefreshToken)
	if err != nil {
		return nil, fmt.Errorf("refresh do token Zoho falhou: %w", err)
	}

	expiresAt := time.Now().Add(time.Duration(tokens.ExpiresIn) * time.Second)
	cred.AccessToken = tokens.AccessToken
	cred.APIDomain = tokens.APIDomain
	cred.ExpiresAt = &expiresAt

	if err := c.Tokens.Put(ctx, cred); err != nil {
		return nil, fmt.Errorf("falha ao gravar token renovado: %w", err)
	}
	return cred, nil
}
