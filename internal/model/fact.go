package model

import (
	"encoding/json"
	"time"
)

// FactSource identifies the upstream system a fact originated from.
type FactSource string

const (
	SourceGitHub FactSource = "github"
	SourceSlack  FactSource = "slack"
	SourceManual FactSource = "manual"
)

// Fact is a canonical record of something that happened in a connected
// system. Facts are deduplicated on (source, external_id). Type is a
// dot-namespaced event kind such as "issue.opened" or "push.commit".
type Fact struct {
	ID             int64           `json:"id,string"`
	ExternalID     string          `json:"externalId"`
	Source         FactSource      `json:"source"`
	SourceURL      *string         `json:"sourceUrl,omitempty"`
	Type           string          `json:"type"`
	Title          string          `json:"title"`
	Summary        *string         `json:"summary,omitempty"`
	Content        *string         `json:"content,omitempty"`
	Metadata       json.RawMessage `json:"metadata,omitempty"`
	Raw            json.RawMessage `json:"-"`
	OccurredAt     time.Time       `json:"occurredAt"`
	ProcessedAt    *time.Time      `json:"processedAt,omitempty"`
	SlackMessageID *string         `json:"slackMessageId,omitempty"`
	CreatedAt      time.Time       `json:"createdAt"`
	UpdatedAt      time.Time       `json:"updatedAt"`
}

// FactInput carries the normalized fields for an upsert. The store assigns
// the ID when the row does not already exist.
type FactInput struct {
	ExternalID string
	Source     FactSource
	SourceURL  *string
	Type       string
	Title      string
	Summary    *string
	Content    *string
	Metadata   json.RawMessage
	Raw        json.RawMessage
	OccurredAt time.Time
}
