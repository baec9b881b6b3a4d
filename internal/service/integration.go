package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"factlog.app/api/common/crypto"
	"factlog.app/api/common/id"
	"factlog.app/api/internal/apperr"
	"factlog.app/api/internal/model"
	"factlog.app/api/internal/store"
)

type UpsertIntegrationParams struct {
	Provider     string
	AccountID    string
	AccountName  *string
	AccessToken  string
	RefreshToken *string
	ExpiresAt    *time.Time
	Scope        []string
}

// UpdateIntegrationParams carries a partial update; nil fields are left
// untouched.
type UpdateIntegrationParams struct {
	AccountName  *string
	AccessToken  *string
	RefreshToken *string
	ExpiresAt    *time.Time
	Scope        []string
	Status       *model.IntegrationStatus
}

// IntegrationService stores OAuth connections with tokens encrypted at
// rest and hands back integrations with tokens already decrypted.
type IntegrationService interface {
	Upsert(ctx context.Context, params UpsertIntegrationParams) (*model.Integration, error)
	List(ctx context.Context, provider *string) ([]model.Integration, error)
	Get(ctx context.Context, id int64) (*model.Integration, error)
	ActiveByProvider(ctx context.Context, provider string) (*model.Integration, error)
	Update(ctx context.Context, id int64, params UpdateIntegrationParams) (*model.Integration, error)
	Deactivate(ctx context.Context, id int64) (*model.Integration, error)
	Delete(ctx context.Context, id int64) error
	UpdateLastSync(ctx context.Context, id int64) error
}

type integrationService struct {
	integrations store.IntegrationStore
	crypto       *crypto.Service
}

func NewIntegrationService(integrations store.IntegrationStore, cryptoSvc *crypto.Service) IntegrationService {
	return &integrationService{
		integrations: integrations,
		crypto:       cryptoSvc,
	}
}

func (s *integrationService) Upsert(ctx context.Context, params UpsertIntegrationParams) (*model.Integration, error) {
	if params.Provider == "" || params.AccountID == "" || params.AccessToken == "" {
		return nil, apperr.Validation("provider, accountId, and accessToken are required")
	}

	encryptedAccess, err := s.crypto.Encrypt(params.AccessToken)
	if err != nil {
		return nil, fmt.Errorf("encrypting access token: %w", err)
	}
	var encryptedRefresh *string
	if params.RefreshToken != nil && *params.RefreshToken != "" {
		enc, err := s.crypto.Encrypt(*params.RefreshToken)
		if err != nil {
			return nil, fmt.Errorf("encrypting refresh token: %w", err)
		}
		encryptedRefresh = &enc
	}

	scope := params.Scope
	if scope == nil {
		scope = []string{}
	}

	integration, err := s.integrations.Upsert(ctx, id.New(), &model.Integration{
		Provider:     params.Provider,
		AccountID:    params.AccountID,
		AccountName:  params.AccountName,
		AccessToken:  encryptedAccess,
		RefreshToken: encryptedRefresh,
		ExpiresAt:    params.ExpiresAt,
		Scope:        scope,
		Status:       model.IntegrationActive,
	})
	if err != nil {
		return nil, fmt.Errorf("upserting integration: %w", err)
	}
	return s.decrypt(integration)
}

func (s *integrationService) List(ctx context.Context, provider *string) ([]model.Integration, error) {
	integrations, err := s.integrations.List(ctx, provider)
	if err != nil {
		return nil, fmt.Errorf("listing integrations: %w", err)
	}

	for i := range integrations {
		decrypted, err := s.decrypt(&integrations[i])
		if err != nil {
			return nil, err
		}
		integrations[i] = *decrypted
	}
	return integrations, nil
}

func (s *integrationService) Get(ctx context.Context, integrationID int64) (*model.Integration, error) {
	integration, err := s.integrations.GetByID(ctx, integrationID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, apperr.NotFound("integration")
		}
		return nil, fmt.Errorf("fetching integration: %w", err)
	}
	return s.decrypt(integration)
}

func (s *integrationService) ActiveByProvider(ctx context.Context, provider string) (*model.Integration, error) {
	integration, err := s.integrations.GetActiveByProvider(ctx, provider)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, apperr.NotFound("active " + provider + " integration")
		}
		return nil, fmt.Errorf("fetching active %s integration: %w", provider, err)
	}
	return s.decrypt(integration)
}

func (s *integrationService) Update(ctx context.Context, integrationID int64, params UpdateIntegrationParams) (*model.Integration, error) {
	existing, err := s.integrations.GetByID(ctx, integrationID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, apperr.NotFound("integration")
		}
		return nil, fmt.Errorf("fetching integration: %w", err)
	}

	if params.AccountName != nil {
		existing.AccountName = params.AccountName
	}
	if params.AccessToken != nil {
		enc, err := s.crypto.Encrypt(*params.AccessToken)
		if err != nil {
			return nil, fmt.Errorf("encrypting access token: %w", err)
		}
		existing.AccessToken = enc
	}
	if params.RefreshToken != nil {
		if *params.RefreshToken == "" {
			existing.RefreshToken = nil
		} else {
			enc, err := s.crypto.Encrypt(*params.RefreshToken)
			if err != nil {
				return nil, fmt.Errorf("encrypting refresh token: %w", err)
			}
			existing.RefreshToken = &enc
		}
	}
	if params.ExpiresAt != nil {
		existing.ExpiresAt = params.ExpiresAt
	}
	if params.Scope != nil {
		existing.Scope = params.Scope
	}
	if params.Status != nil {
		existing.Status = *params.Status
	}

	updated, err := s.integrations.Update(ctx, existing)
	if err != nil {
		return nil, fmt.Errorf("updating integration: %w", err)
	}
	return s.decrypt(updated)
}

func (s *integrationService) Deactivate(ctx context.Context, integrationID int64) (*model.Integration, error) {
	if err := s.integrations.UpdateStatus(ctx, integrationID, model.IntegrationInactive); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, apperr.NotFound("integration")
		}
		return nil, fmt.Errorf("deactivating integration: %w", err)
	}
	return s.Get(ctx, integrationID)
}

func (s *integrationService) Delete(ctx context.Context, integrationID int64) error {
	if err := s.integrations.Delete(ctx, integrationID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return apperr.NotFound("integration")
		}
		return fmt.Errorf("deleting integration: %w", err)
	}
	return nil
}

func (s *integrationService) UpdateLastSync(ctx context.Context, integrationID int64) error {
	if err := s.integrations.UpdateLastSync(ctx, integrationID, time.Now()); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return apperr.NotFound("integration")
		}
		return fmt.Errorf("updating last sync: %w", err)
	}
	return nil
}

func (s *integrationService) decrypt(integration *model.Integration) (*model.Integration, error) {
	accessToken, err := s.crypto.Decrypt(integration.AccessToken)
	if err != nil {
		return nil, fmt.Errorf("decrypting access token for integration %d: %w", integration.ID, err)
	}
	integration.AccessToken = accessToken

	if integration.RefreshToken != nil {
		refreshToken, err := s.crypto.Decrypt(*integration.RefreshToken)
		if err != nil {
			return nil, fmt.Errorf("decrypting refresh token for integration %d: %w", integration.ID, err)
		}
		integration.RefreshToken = &refreshToken
	}
	return integration, nil
}
