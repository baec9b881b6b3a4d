package model

import "time"

type IntegrationStatus string

const (
	IntegrationActive   IntegrationStatus = "active"
	IntegrationInactive IntegrationStatus = "inactive"
)

// Integration holds an OAuth connection to an external provider. Token
// fields are stored encrypted and never serialized to API responses.
type Integration struct {
	ID           int64             `json:"id,string"`
	Provider     string            `json:"provider"`
	AccountID    string            `json:"accountId"`
	AccountName  *string           `json:"accountName,omitempty"`
	AccessToken  string            `json:"-"`
	RefreshToken *string           `json:"-"`
	ExpiresAt    *time.Time        `json:"expiresAt,omitempty"`
	Scope        []string          `json:"scope,omitempty"`
	Status       IntegrationStatus `json:"status"`
	LastSyncAt   *time.Time        `json:"lastSyncAt,omitempty"`
	CreatedAt    time.Time         `json:"createdAt"`
	UpdatedAt    time.Time         `json:"updatedAt"`
}

// IsTokenExpired reports whether the access token expires within the next
// five minutes. Integrations without an expiry never expire.
func (i *Integration) IsTokenExpired(now time.Time) bool {
	if i.ExpiresAt == nil {
		return false
	}
	return !i.ExpiresAt.After(now.Add(5 * time.Minute))
}
