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

// SettingResponse is the redacted API view of a setting. The stored value
// is never returned; clients only learn whether one is present.
type SettingResponse struct {
	ID          int64     `json:"id,string"`
	Provider    string    `json:"provider"`
	SettingType string    `json:"settingType"`
	HasValue    bool      `json:"hasValue"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

type SettingService interface {
	Upsert(ctx context.Context, provider, settingType, value string) (*SettingResponse, error)
	List(ctx context.Context, provider *string) ([]SettingResponse, error)
	Get(ctx context.Context, provider, settingType string) (*SettingResponse, error)
	// DecryptedValue returns the plaintext value for internal consumers,
	// or the empty string when the setting does not exist.
	DecryptedValue(ctx context.Context, provider, settingType string) (string, error)
	Delete(ctx context.Context, provider, settingType string) error
}

type settingService struct {
	settings store.SettingStore
	crypto   *crypto.Service
}

func NewSettingService(settings store.SettingStore, cryptoSvc *crypto.Service) SettingService {
	return &settingService{
		settings: settings,
		crypto:   cryptoSvc,
	}
}

func (s *settingService) Upsert(ctx context.Context, provider, settingType, value string) (*SettingResponse, error) {
	if provider == "" || settingType == "" || value == "" {
		return nil, apperr.Validation("provider, settingType, and value are required")
	}

	encrypted, err := s.crypto.Encrypt(value)
	if err != nil {
		return nil, fmt.Errorf("encrypting setting value: %w", err)
	}

	setting, err := s.settings.Upsert(ctx, id.New(), &model.Setting{
		Provider:    provider,
		SettingType: settingType,
		Value:       encrypted,
	})
	if err != nil {
		return nil, fmt.Errorf("upserting setting: %w", err)
	}
	return toSettingResponse(setting), nil
}

func (s *settingService) List(ctx context.Context, provider *string) ([]SettingResponse, error) {
	settings, err := s.settings.List(ctx, provider)
	if err != nil {
		return nil, fmt.Errorf("listing settings: %w", err)
	}

	responses := make([]SettingResponse, 0, len(settings))
	for i := range settings {
		responses = append(responses, *toSettingResponse(&settings[i]))
	}
	return responses, nil
}

func (s *settingService) Get(ctx context.Context, provider, settingType string) (*SettingResponse, error) {
	setting, err := s.settings.GetByProviderAndType(ctx, provider, settingType)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, apperr.NotFound("setting")
		}
		return nil, fmt.Errorf("fetching setting: %w", err)
	}
	return toSettingResponse(setting), nil
}

func (s *settingService) DecryptedValue(ctx context.Context, provider, settingType string) (string, error) {
	setting, err := s.settings.GetByProviderAndType(ctx, provider, settingType)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return "", nil
		}
		return "", fmt.Errorf("fetching setting: %w", err)
	}

	value, err := s.crypto.Decrypt(setting.Value)
	if err != nil {
		return "", fmt.Errorf("decrypting setting %s/%s: %w", provider, settingType, err)
	}
	return value, nil
}

func (s *settingService) Delete(ctx context.Context, provider, settingType string) error {
	if err := s.settings.Delete(ctx, provider, settingType); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return apperr.NotFound("setting")
		}
		return fmt.Errorf("deleting setting: %w", err)
	}
	return nil
}

func toSettingResponse(setting *model.Setting) *SettingResponse {
	return &SettingResponse{
		ID:          setting.ID,
		Provider:    setting.Provider,
		SettingType: setting.SettingType,
		HasValue:    setting.Value != "",
		CreatedAt:   setting.CreatedAt,
		UpdatedAt:   setting.UpdatedAt,
	}
}
