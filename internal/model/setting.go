package model

import "time"

// Setting is a single provider-scoped configuration value, e.g. the GitHub
// webhook secret or the Slack target channel. Values may be encrypted at
// rest; reads through the API only reveal whether a value is present.
type Setting struct {
	ID          int64     `json:"id,string"`
	Provider    string    `json:"provider"`
	SettingType string    `json:"settingType"`
	Value       string    `json:"-"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}
