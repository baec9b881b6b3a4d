package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/slack-go/slack"

	"factlog.app/api/internal/model"
	"factlog.app/api/internal/service"
	"factlog.app/api/internal/store"
)

// SlackAPI is the slice of the Slack client the dispatcher needs;
// *slack.Client satisfies it.
type SlackAPI interface {
	PostMessageContext(ctx context.Context, channelID string, options ...slack.MsgOption) (string, string, error)
}

// NewSlackClient builds the real client for a workspace token.
func NewSlackClient(token string) SlackAPI {
	return slack.New(token)
}

// SlackDispatcher posts a fact to the configured Slack channel and records
// the returned message timestamp on the fact row. Delivery is idempotent:
// a fact that already carries a slack message id is skipped.
type SlackDispatcher struct {
	facts        store.FactStore
	integrations service.IntegrationService
	settings     service.SettingService
	newClient    func(token string) SlackAPI
	logger       *slog.Logger
}

func NewSlackDispatcher(facts store.FactStore, integrations service.IntegrationService, settings service.SettingService, newClient func(token string) SlackAPI, logger *slog.Logger) *SlackDispatcher {
	if newClient == nil {
		newClient = NewSlackClient
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &SlackDispatcher{
		facts:        facts,
		integrations: integrations,
		settings:     settings,
		newClient:    newClient,
		logger:       logger,
	}
}

func (d *SlackDispatcher) Dispatch(ctx context.Context, factID int64) (*DispatchResult, error) {
	fact, err := d.facts.GetByID(ctx, factID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, fmt.Errorf("fact %d not found", factID)
		}
		return nil, fmt.Errorf("fetching fact %d: %w", factID, err)
	}

	if fact.SlackMessageID != nil && *fact.SlackMessageID != "" {
		d.logger.WarnContext(ctx, "fact already posted to slack, skipping",
			"fact_id", factID, "slack_message_id", *fact.SlackMessageID)
		return &DispatchResult{Skipped: true, MessageID: *fact.SlackMessageID}, nil
	}

	// Both lookups are treated as retryable: an operator may finish the
	// Slack setup between attempts.
	integration, err := d.integrations.ActiveByProvider(ctx, "slack")
	if err != nil {
		return nil, fmt.Errorf("resolving slack integration: %w", err)
	}

	channelID, err := d.settings.DecryptedValue(ctx, "slack", "target_channel_id")
	if err != nil {
		return nil, fmt.Errorf("resolving slack target channel: %w", err)
	}
	if channelID == "" {
		return nil, fmt.Errorf("slack target_channel_id is not configured")
	}

	client := d.newClient(integration.AccessToken)

	d.logger.InfoContext(ctx, "posting fact to slack", "fact_id", factID, "channel", channelID)

	_, timestamp, err := client.PostMessageContext(ctx, channelID,
		slack.MsgOptionBlocks(buildMessageBlocks(fact)...),
		slack.MsgOptionText(fact.Title, false),
	)
	if err != nil {
		return nil, fmt.Errorf("posting to slack: %w", err)
	}

	if err := d.facts.MarkDispatched(ctx, factID, timestamp); err != nil {
		// The message is out; failing here would resend it on retry. The
		// skip guard above cannot help because the id was never stored,
		// so surface the error loudly instead of retrying.
		d.logger.ErrorContext(ctx, "delivered to slack but failed to record message id",
			"fact_id", factID, "slack_message_id", timestamp, "error", err)
		return nil, fmt.Errorf("recording slack message id: %w", err)
	}

	// The delivery is already recorded on the fact; a failed sync-time
	// update must not trigger a resend.
	if err := d.integrations.UpdateLastSync(ctx, integration.ID); err != nil {
		d.logger.WarnContext(ctx, "failed to update integration last sync time",
			"integration_id", integration.ID, "error", err)
	}

	d.logger.InfoContext(ctx, "posted fact to slack", "fact_id", factID, "slack_message_id", timestamp)
	return &DispatchResult{MessageID: timestamp}, nil
}

func buildMessageBlocks(fact *model.Fact) []slack.Block {
	emoji := emojiForSource(fact.Source)

	blocks := []slack.Block{
		slack.NewHeaderBlock(
			slack.NewTextBlockObject(slack.PlainTextType, emoji+" New fact", true, false),
		),
		slack.NewSectionBlock(nil, []*slack.TextBlockObject{
			slack.NewTextBlockObject(slack.MarkdownType, "*Title:*\n"+fact.Title, false, false),
			slack.NewTextBlockObject(slack.MarkdownType, "*Source:*\n"+string(fact.Source), false, false),
		}, nil),
	}

	if fact.Summary != nil && *fact.Summary != "" {
		blocks = append(blocks, slack.NewSectionBlock(
			slack.NewTextBlockObject(slack.MarkdownType, *fact.Summary, false, false), nil, nil,
		))
	}
	if fact.SourceURL != nil && *fact.SourceURL != "" {
		blocks = append(blocks, slack.NewSectionBlock(
			slack.NewTextBlockObject(slack.MarkdownType, fmt.Sprintf("<%s|View details>", *fact.SourceURL), false, false), nil, nil,
		))
	}

	blocks = append(blocks, slack.NewContextBlock("",
		slack.NewTextBlockObject(slack.MarkdownType,
			fmt.Sprintf("Occurred: %s | Type: %s", fact.OccurredAt.Format("2006-01-02 15:04:05 MST"), fact.Type),
			false, false),
	))

	return blocks
}

func emojiForSource(source model.FactSource) string {
	switch source {
	case model.SourceGitHub:
		return "🐙"
	case model.SourceSlack:
		return "💬"
	case model.SourceManual:
		return "✍️"
	default:
		return "📌"
	}
}
