package service_test

import (
	"context"
	"time"

	"factlog.app/api/internal/model"
	"factlog.app/api/internal/queue"
	"factlog.app/api/internal/service"
	"factlog.app/api/internal/store"
)

type mockFactStore struct {
	upsertFn         func(ctx context.Context, id int64, input model.FactInput) (*model.Fact, bool, error)
	createFn         func(ctx context.Context, id int64, input model.FactInput) (*model.Fact, error)
	getByIDFn        func(ctx context.Context, id int64) (*model.Fact, error)
	listFn           func(ctx context.Context, filter store.FactFilter) ([]model.Fact, error)
	markDispatchedFn func(ctx context.Context, id int64, slackMessageID string) error
	upsertCalls      int
}

func (m *mockFactStore) Upsert(ctx context.Context, id int64, input model.FactInput) (*model.Fact, bool, error) {
	m.upsertCalls++
	if m.upsertFn != nil {
		return m.upsertFn(ctx, id, input)
	}
	return &model.Fact{ID: id}, true, nil
}

func (m *mockFactStore) Create(ctx context.Context, id int64, input model.FactInput) (*model.Fact, error) {
	if m.createFn != nil {
		return m.createFn(ctx, id, input)
	}
	return &model.Fact{
		ID:         id,
		ExternalID: input.ExternalID,
		Source:     input.Source,
		Type:       input.Type,
		Title:      input.Title,
		OccurredAt: input.OccurredAt,
	}, nil
}

func (m *mockFactStore) GetByID(ctx context.Context, id int64) (*model.Fact, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, id)
	}
	return nil, store.ErrNotFound
}

func (m *mockFactStore) List(ctx context.Context, filter store.FactFilter) ([]model.Fact, error) {
	if m.listFn != nil {
		return m.listFn(ctx, filter)
	}
	return nil, nil
}

func (m *mockFactStore) MarkDispatched(ctx context.Context, id int64, slackMessageID string) error {
	if m.markDispatchedFn != nil {
		return m.markDispatchedFn(ctx, id, slackMessageID)
	}
	return nil
}

type mockIntegrationStore struct {
	getByIDFn              func(ctx context.Context, id int64) (*model.Integration, error)
	getActiveByProviderFn  func(ctx context.Context, provider string) (*model.Integration, error)
	listFn                 func(ctx context.Context, provider *string) ([]model.Integration, error)
	deleteFn               func(ctx context.Context, id int64) error
	upsertFn               func(ctx context.Context, id int64, integration *model.Integration) (*model.Integration, error)
	updateFn               func(ctx context.Context, integration *model.Integration) (*model.Integration, error)
	updateStatusFn         func(ctx context.Context, id int64, status model.IntegrationStatus) error
	updateLastSyncFn       func(ctx context.Context, id int64, at time.Time) error
	upsertCalls            int
}

func (m *mockIntegrationStore) GetByID(ctx context.Context, id int64) (*model.Integration, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, id)
	}
	return nil, store.ErrNotFound
}

func (m *mockIntegrationStore) GetByProviderAndAccount(ctx context.Context, provider, accountID string) (*model.Integration, error) {
	return nil, store.ErrNotFound
}

func (m *mockIntegrationStore) GetActiveByProvider(ctx context.Context, provider string) (*model.Integration, error) {
	if m.getActiveByProviderFn != nil {
		return m.getActiveByProviderFn(ctx, provider)
	}
	return nil, store.ErrNotFound
}

func (m *mockIntegrationStore) List(ctx context.Context, provider *string) ([]model.Integration, error) {
	if m.listFn != nil {
		return m.listFn(ctx, provider)
	}
	return nil, nil
}

func (m *mockIntegrationStore) Delete(ctx context.Context, id int64) error {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, id)
	}
	return nil
}

func (m *mockIntegrationStore) Upsert(ctx context.Context, id int64, integration *model.Integration) (*model.Integration, error) {
	m.upsertCalls++
	if m.upsertFn != nil {
		return m.upsertFn(ctx, id, integration)
	}
	out := *integration
	out.ID = id
	return &out, nil
}

func (m *mockIntegrationStore) Update(ctx context.Context, integration *model.Integration) (*model.Integration, error) {
	if m.updateFn != nil {
		return m.updateFn(ctx, integration)
	}
	out := *integration
	return &out, nil
}

func (m *mockIntegrationStore) UpdateStatus(ctx context.Context, id int64, status model.IntegrationStatus) error {
	if m.updateStatusFn != nil {
		return m.updateStatusFn(ctx, id, status)
	}
	return nil
}

func (m *mockIntegrationStore) UpdateLastSync(ctx context.Context, id int64, at time.Time) error {
	if m.updateLastSyncFn != nil {
		return m.updateLastSyncFn(ctx, id, at)
	}
	return nil
}

type mockSettingStore struct {
	getByProviderAndTypeFn func(ctx context.Context, provider, settingType string) (*model.Setting, error)
	listFn                 func(ctx context.Context, provider *string) ([]model.Setting, error)
	upsertFn               func(ctx context.Context, id int64, setting *model.Setting) (*model.Setting, error)
	deleteFn               func(ctx context.Context, provider, settingType string) error
}

func (m *mockSettingStore) GetByProviderAndType(ctx context.Context, provider, settingType string) (*model.Setting, error) {
	if m.getByProviderAndTypeFn != nil {
		return m.getByProviderAndTypeFn(ctx, provider, settingType)
	}
	return nil, store.ErrNotFound
}

func (m *mockSettingStore) List(ctx context.Context, provider *string) ([]model.Setting, error) {
	if m.listFn != nil {
		return m.listFn(ctx, provider)
	}
	return nil, nil
}

func (m *mockSettingStore) Upsert(ctx context.Context, id int64, setting *model.Setting) (*model.Setting, error) {
	if m.upsertFn != nil {
		return m.upsertFn(ctx, id, setting)
	}
	out := *setting
	out.ID = id
	return &out, nil
}

func (m *mockSettingStore) Delete(ctx context.Context, provider, settingType string) error {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, provider, settingType)
	}
	return nil
}

type mockProducer struct {
	enqueueFn func(ctx context.Context, job queue.DispatchJob) error
	enqueued  []queue.DispatchJob
}

func (m *mockProducer) Enqueue(ctx context.Context, job queue.DispatchJob) error {
	m.enqueued = append(m.enqueued, job)
	if m.enqueueFn != nil {
		return m.enqueueFn(ctx, job)
	}
	return nil
}

func (m *mockProducer) Close() error { return nil }

// mockStoreProvider satisfies service.StoreProvider with the mock stores.
type mockStoreProvider struct {
	facts        *mockFactStore
	integrations *mockIntegrationStore
	settings     *mockSettingStore
}

func (m *mockStoreProvider) Facts() store.FactStore               { return m.facts }
func (m *mockStoreProvider) Integrations() store.IntegrationStore { return m.integrations }
func (m *mockStoreProvider) Settings() store.SettingStore         { return m.settings }

// mockTxRunner runs the function inline against the mock stores; there is
// no real transaction in unit tests.
type mockTxRunner struct {
	provider *mockStoreProvider
	err      error
}

func (m *mockTxRunner) WithTx(ctx context.Context, fn func(stores service.StoreProvider) error) error {
	if m.err != nil {
		return m.err
	}
	return fn(m.provider)
}
