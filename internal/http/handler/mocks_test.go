package handler_test

import (
	"context"

	"factlog.app/api/internal/model"
	"factlog.app/api/internal/service"
)

type mockFactService struct {
	listFn   func(ctx context.Context, params service.ListFactsParams) (*service.FactPage, error)
	getFn    func(ctx context.Context, id int64) (*model.Fact, error)
	createFn func(ctx context.Context, params service.CreateFactParams) (*model.Fact, error)

	listCalls []service.ListFactsParams
}

func (m *mockFactService) List(ctx context.Context, params service.ListFactsParams) (*service.FactPage, error) {
	m.listCalls = append(m.listCalls, params)
	if m.listFn != nil {
		return m.listFn(ctx, params)
	}
	return &service.FactPage{Data: []model.Fact{}}, nil
}

func (m *mockFactService) Get(ctx context.Context, id int64) (*model.Fact, error) {
	if m.getFn != nil {
		return m.getFn(ctx, id)
	}
	return nil, nil
}

func (m *mockFactService) Create(ctx context.Context, params service.CreateFactParams) (*model.Fact, error) {
	if m.createFn != nil {
		return m.createFn(ctx, params)
	}
	return nil, nil
}

type mockSettingService struct {
	upsertFn func(ctx context.Context, provider, settingType, value string) (*service.SettingResponse, error)
	getFn    func(ctx context.Context, provider, settingType string) (*service.SettingResponse, error)
	deleteFn func(ctx context.Context, provider, settingType string) error
}

func (m *mockSettingService) Upsert(ctx context.Context, provider, settingType, value string) (*service.SettingResponse, error) {
	if m.upsertFn != nil {
		return m.upsertFn(ctx, provider, settingType, value)
	}
	return &service.SettingResponse{Provider: provider, SettingType: settingType, HasValue: true}, nil
}

func (m *mockSettingService) List(context.Context, *string) ([]service.SettingResponse, error) {
	return nil, nil
}

func (m *mockSettingService) Get(ctx context.Context, provider, settingType string) (*service.SettingResponse, error) {
	if m.getFn != nil {
		return m.getFn(ctx, provider, settingType)
	}
	return nil, nil
}

func (m *mockSettingService) DecryptedValue(context.Context, string, string) (string, error) {
	return "", nil
}

func (m *mockSettingService) Delete(ctx context.Context, provider, settingType string) error {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, provider, settingType)
	}
	return nil
}
