package usecase_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/xavierca1/leadstream/internal/entity"
	"github.com/xavierca1/leadstream/internal/usecase"
)

// TestTokenStorePutValidation - credencial sem time ou provider não
// chega no banco
func TestTokenStorePutValidation(t *testing.T) {
	ctx := context.Background()

	mockRepo := new(MockCredentialRepository)
	store := usecase.NewTokenStore(mockRepo)

	err := store.Put(ctx, &entity.Credential{Provider: entity.ProviderSlack})
	assert.True(t, usecase.IsDomainError(err))

	err = store.Put(ctx, &entity.Credential{TeamID: "T123"})
	assert.True(t, usecase.IsDomainError(err))

	mockRepo.AssertNotCalled(t, "Put")
}

// TestTokenStoreStatusAbsenceIsNotError - time sem nenhuma credencial
// volta o trio desconectado, sem erro
func TestTokenStoreStatusAbsenceIsNotError(t *testing.T) {
	ctx := context.Background()

	mockRepo := new(MockCredentialRepository)
	mockRepo.On("GetAll", ctx, "T123").Return(map[string]*entity.Credential{}, nil)

	store := usecase.NewTokenStore(mockRepo)

	status, err := store.Status(ctx, "T123")

	assert.NoError(t, err)
	assert.False(t, status.Slack.Connected)
	assert.False(t, status.Zoho.Connected)
	assert.False(t, status.Gmail.Connected)
	assert.True(t, status.Slack.Configured)
}

// TestTokenStoreStatusExpiredToken - token vencido aparece como
// desconectado mas com is_expired marcado
func TestTokenStoreStatusExpiredToken(t *testing.T) {
	ctx := context.Background()

	past := time.Now().Add(-time.Hour)
	future := time.Now().Add(time.Hour)

	mockRepo := new(MockCredentialRepository)
	mockRepo.On("GetAll", ctx, "T123").Return(map[string]*entity.Credential{
		entity.ProviderZoho: {
			TeamID:      "T123",
			Provider:    entity.ProviderZoho,
			AccessToken: "tok-old",
			ExpiresAt:   &past,
		},
		entity.ProviderGmail: {
			TeamID:      "T123",
			Provider:    entity.ProviderGmail,
			AccessToken: "tok-ok",
			UserEmail:   "sales@acme.com",
			ExpiresAt:   &future,
		},
	}, nil)

	store := usecase.NewTokenStore(mockRepo)

	status, err := store.Status(ctx, "T123")

	assert.NoError(t, err)
	assert.False(t, status.Zoho.Connected)
	assert.True(t, status.Zoho.IsExpired)
	assert.True(t, status.Gmail.Connected)
	assert.False(t, status.Gmail.IsExpired)
	assert.Equal(t, "sales@acme.com", status.Gmail.UserEmail)
}

// TestCredentialExpiredLazyCheck - sem expiry registrado o token nunca
// expira; com expiry, compara contra o relógio do chamador
func TestCredentialExpiredLazyCheck(t *testing.T) {
	now := time.Now()
	past := now.Add(-time.Minute)
	future := now.Add(time.Minute)

	noExpiry := &entity.Credential{AccessToken: "tok"}
	assert.False(t, noExpiry.Expired(now))

	expired := &entity.Credential{AccessToken: "tok", ExpiresAt: &past}
	assert.True(t, expired.Expired(now))

	valid := &entity.Credential{AccessToken: "tok", ExpiresAt: &future}
	assert.False(t, valid.Expired(now))
}
