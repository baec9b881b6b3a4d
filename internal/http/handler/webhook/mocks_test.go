package webhook_test

import (
	"context"

	"factlog.app/api/internal/service"
)

type mockIngestService struct {
	processFn func(ctx context.Context, eventType string, body []byte) (*service.IngestResult, error)
	calls     []string
}

func (m *mockIngestService) ProcessGitHub(ctx context.Context, eventType string, body []byte) (*service.IngestResult, error) {
	m.calls = append(m.calls, eventType)
	if m.processFn != nil {
		return m.processFn(ctx, eventType, body)
	}
	return &service.IngestResult{}, nil
}

type mockSettingService struct {
	decryptedValueFn func(ctx context.Context, provider, settingType string) (string, error)
}

func (m *mockSettingService) Upsert(context.Context, string, string, string) (*service.SettingResponse, error) {
	return nil, nil
}

func (m *mockSettingService) List(context.Context, *string) ([]service.SettingResponse, error) {
	return nil, nil
}

func (m *mockSettingService) Get(context.Context, string, string) (*service.SettingResponse, error) {
	return nil, nil
}

func (m *mockSettingService) DecryptedValue(ctx context.Context, provider, settingType string) (string, error) {
	if m.decryptedValueFn != nil {
		return m.decryptedValueFn(ctx, provider, settingType)
	}
	return "", nil
}

func (m *mockSettingService) Delete(context.Context, string, string) error {
	return nil
}
