package dto

import (
	"encoding/json"
	"strconv"
	"time"

	"factlog.app/api/internal/model"
)

type CreateFactRequest struct {
	ExternalID *string         `json:"externalId,omitempty"`
	Source     string          `json:"source" binding:"required"`
	SourceURL  *string         `json:"sourceUrl,omitempty"`
	Type       string          `json:"type" binding:"required"`
	Title      string          `json:"title" binding:"required"`
	Summary    *string         `json:"summary,omitempty"`
	Content    *string         `json:"content,omitempty"`
	Metadata   json.RawMessage `json:"metadata,omitempty"`
	OccurredAt *time.Time      `json:"occurredAt,omitempty"`
}

// ListFactsQuery binds the raw query string; time and cursor fields are
// parsed by the handler so that errors map to the validation envelope.
type ListFactsQuery struct {
	Source string `form:"source"`
	Type   string `form:"type"`
	From   string `form:"from"`
	To     string `form:"to"`
	Limit  int32  `form:"limit"`
	Cursor string `form:"cursor"`
}

type PageMeta struct {
	HasMore    bool    `json:"hasMore"`
	NextCursor *string `json:"nextCursor,omitempty"`
}

type FactListResponse struct {
	Data []model.Fact `json:"data"`
	Meta PageMeta     `json:"meta"`
}

type FactResponse struct {
	Data *model.Fact `json:"data"`
}

func ToFactListResponse(facts []model.Fact, hasMore bool, nextCursor *int64) FactListResponse {
	resp := FactListResponse{
		Data: facts,
		Meta: PageMeta{HasMore: hasMore},
	}
	if resp.Data == nil {
		resp.Data = []model.Fact{}
	}
	if nextCursor != nil {
		cursor := strconv.FormatInt(*nextCursor, 10)
		resp.Meta.NextCursor = &cursor
	}
	return resp
}
