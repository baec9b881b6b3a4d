package dto

import (
	"time"

	"factlog.app/api/internal/model"
)

type CreateIntegrationRequest struct {
	Provider     string     `json:"provider" binding:"required"`
	AccountID    string     `json:"accountId" binding:"required"`
	AccountName  *string    `json:"accountName,omitempty"`
	AccessToken  string     `json:"accessToken" binding:"required"`
	RefreshToken *string    `json:"refreshToken,omitempty"`
	ExpiresAt    *time.Time `json:"expiresAt,omitempty"`
	Scope        []string   `json:"scope,omitempty"`
}

type UpdateIntegrationRequest struct {
	AccountName  *string    `json:"accountName,omitempty"`
	AccessToken  *string    `json:"accessToken,omitempty"`
	RefreshToken *string    `json:"refreshToken,omitempty"`
	ExpiresAt    *time.Time `json:"expiresAt,omitempty"`
	Scope        []string   `json:"scope,omitempty"`
	Status       *string    `json:"status,omitempty"`
}

type SlackOAuthCallbackRequest struct {
	Code string `json:"code" binding:"required"`
}

// IntegrationResponse redacts credentials to presence flags.
type IntegrationResponse struct {
	ID              int64                   `json:"id,string"`
	Provider        string                  `json:"provider"`
	AccountID       string                  `json:"accountId"`
	AccountName     *string                 `json:"accountName,omitempty"`
	HasAccessToken  bool                    `json:"hasAccessToken"`
	HasRefreshToken bool                    `json:"hasRefreshToken"`
	ExpiresAt       *time.Time              `json:"expiresAt,omitempty"`
	Scope           []string                `json:"scope"`
	Status          model.IntegrationStatus `json:"status"`
	LastSyncAt      *time.Time              `json:"lastSyncAt,omitempty"`
	CreatedAt       time.Time               `json:"createdAt"`
	UpdatedAt       time.Time               `json:"updatedAt"`
}

func ToIntegrationResponse(integration *model.Integration) IntegrationResponse {
	scope := integration.Scope
	if scope == nil {
		scope = []string{}
	}
	return IntegrationResponse{
		ID:              integration.ID,
		Provider:        integration.Provider,
		AccountID:       integration.AccountID,
		AccountName:     integration.AccountName,
		HasAccessToken:  integration.AccessToken != "",
		HasRefreshToken: integration.RefreshToken != nil && *integration.RefreshToken != "",
		ExpiresAt:       integration.ExpiresAt,
		Scope:           scope,
		Status:          integration.Status,
		LastSyncAt:      integration.LastSyncAt,
		CreatedAt:       integration.CreatedAt,
		UpdatedAt:       integration.UpdatedAt,
	}
}

func ToIntegrationResponses(integrations []model.Integration) []IntegrationResponse {
	responses := make([]IntegrationResponse, 0, len(integrations))
	for i := range integrations {
		responses = append(responses, ToIntegrationResponse(&integrations[i]))
	}
	return responses
}
