package service

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/slack-go/slack"

	"factlog.app/api/internal/apperr"
	"factlog.app/api/internal/model"
)

// OAuthExchanger swaps a temporary OAuth code for an access token. The
// default implementation calls Slack's oauth.v2.access endpoint.
type OAuthExchanger func(ctx context.Context, clientID, clientSecret, code string) (*slack.OAuthV2Response, error)

func slackExchange(ctx context.Context, clientID, clientSecret, code string) (*slack.OAuthV2Response, error) {
	return slack.GetOAuthV2ResponseContext(ctx, http.DefaultClient, clientID, clientSecret, code, "")
}

// SlackOAuthService completes the Slack OAuth flow: it exchanges the
// callback code for a workspace token and persists it as an integration.
type SlackOAuthService interface {
	HandleCallback(ctx context.Context, code string) (*model.Integration, error)
}

type slackOAuthService struct {
	settings     SettingService
	integrations IntegrationService
	exchange     OAuthExchanger
	logger       *slog.Logger
}

func NewSlackOAuthService(settings SettingService, integrations IntegrationService, logger *slog.Logger) SlackOAuthService {
	return NewSlackOAuthServiceWithExchanger(settings, integrations, slackExchange, logger)
}

func NewSlackOAuthServiceWithExchanger(settings SettingService, integrations IntegrationService, exchange OAuthExchanger, logger *slog.Logger) SlackOAuthService {
	if logger == nil {
		logger = slog.Default()
	}
	return &slackOAuthService{
		settings:     settings,
		integrations: integrations,
		exchange:     exchange,
		logger:       logger,
	}
}

func (s *slackOAuthService) HandleCallback(ctx context.Context, code string) (*model.Integration, error) {
	if code == "" {
		return nil, apperr.Validation("code is required")
	}

	clientID, err := s.settings.DecryptedValue(ctx, "slack", "client_id")
	if err != nil {
		return nil, err
	}
	clientSecret, err := s.settings.DecryptedValue(ctx, "slack", "client_secret")
	if err != nil {
		return nil, err
	}
	if clientID == "" || clientSecret == "" {
		return nil, apperr.Validation("slack client_id and client_secret must be configured in settings")
	}

	resp, err := s.exchange(ctx, clientID, clientSecret, code)
	if err != nil {
		return nil, apperr.Validation(fmt.Sprintf("slack oauth exchange failed: %v", err))
	}
	if resp.AccessToken == "" {
		return nil, apperr.Validation("slack oauth exchange returned no access token")
	}

	teamID := resp.Team.ID
	if teamID == "" {
		teamID = "unknown"
	}
	teamName := resp.Team.Name
	if teamName == "" {
		teamName = "Unknown Team"
	}

	var scope []string
	if resp.Scope != "" {
		scope = strings.Split(resp.Scope, ",")
	}

	integration, err := s.integrations.Upsert(ctx, UpsertIntegrationParams{
		Provider:    "slack",
		AccountID:   teamID,
		AccountName: &teamName,
		AccessToken: resp.AccessToken,
		// Bot tokens from oauth.v2.access do not expire and carry no
		// refresh token unless rotation is enabled.
		Scope: scope,
	})
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "slack oauth completed", "team_id", teamID, "team_name", teamName)
	return integration, nil
}
