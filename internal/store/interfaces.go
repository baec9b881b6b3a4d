package store

import (
	"context"
	"errors"
	"time"

	"factlog.app/api/internal/model"
)

// ErrNotFound is returned when a requested entity does not exist
var ErrNotFound = errors.New("not found")

// FactFilter narrows and pages a fact listing. Listing is keyset-paginated
// on (occurred_at DESC, id DESC); AfterOccurredAt/AfterID identify the last
// row of the previous page and are excluded from the result.
type FactFilter struct {
	Source          *model.FactSource
	Type            *string
	From            *time.Time
	To              *time.Time
	AfterOccurredAt *time.Time
	AfterID         *int64
	Limit           int32
}

// FactStore defines the contract for fact data access
type FactStore interface {
	// Upsert inserts the fact or, when a row with the same (source,
	// external_id) exists, refreshes its mutable fields. created reports
	// whether a new row was inserted.
	Upsert(ctx context.Context, id int64, input model.FactInput) (fact *model.Fact, created bool, err error)
	Create(ctx context.Context, id int64, input model.FactInput) (*model.Fact, error)
	GetByID(ctx context.Context, id int64) (*model.Fact, error)
	List(ctx context.Context, filter FactFilter) ([]model.Fact, error)
	MarkDispatched(ctx context.Context, id int64, slackMessageID string) error
}

// IntegrationStore defines the contract for integration data access
type IntegrationStore interface {
	GetByID(ctx context.Context, id int64) (*model.Integration, error)
	GetByProviderAndAccount(ctx context.Context, provider, accountID string) (*model.Integration, error)
	GetActiveByProvider(ctx context.Context, provider string) (*model.Integration, error)
	List(ctx context.Context, provider *string) ([]model.Integration, error)
	Upsert(ctx context.Context, id int64, integration *model.Integration) (*model.Integration, error)
	// Update writes every mutable field from integration; callers do a
	// read-modify-write for partial updates.
	Update(ctx context.Context, integration *model.Integration) (*model.Integration, error)
	UpdateStatus(ctx context.Context, id int64, status model.IntegrationStatus) error
	UpdateLastSync(ctx context.Context, id int64, at time.Time) error
	Delete(ctx context.Context, id int64) error
}

// SettingStore defines the contract for setting data access
type SettingStore interface {
	GetByProviderAndType(ctx context.Context, provider, settingType string) (*model.Setting, error)
	List(ctx context.Context, provider *string) ([]model.Setting, error)
	Upsert(ctx context.Context, id int64, setting *model.Setting) (*model.Setting, error)
	Delete(ctx context.Context, provider, settingType string) error
}
