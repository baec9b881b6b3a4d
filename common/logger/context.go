package logger

import "context"

type contextKey string

const logFieldsKey contextKey = "log_fields"

// LogFields contains structured fields automatically added to all logs within
// a context. Fields flow through context enrichment so business context
// (fact_id, provider, etc.) is included in every log statement downstream.
type LogFields struct {
	FactID     *int64  // Fact being ingested or dispatched
	ExternalID *string // Provider-scoped natural key of the fact
	MessageID  *string // Redis stream message ID
	Provider   *string // Integration provider ("github", "slack", ...)
	EventType  *string // Canonical event type (e.g. "issue.opened")
	Attempt    *int    // Dispatch attempt number
	Component  string  // Component name (e.g. "factlog.worker.dispatcher")
}

// WithLogFields enriches context with structured log fields.
// Multiple calls merge fields, with newer non-nil/non-empty values taking
// precedence. Context timeouts and cancellation are preserved.
func WithLogFields(ctx context.Context, fields LogFields) context.Context {
	existing := GetLogFields(ctx)
	merged := mergeFields(existing, fields)
	return context.WithValue(ctx, logFieldsKey, merged)
}

// GetLogFields retrieves log fields from context.
// Returns empty LogFields if none are set.
func GetLogFields(ctx context.Context) LogFields {
	if fields, ok := ctx.Value(logFieldsKey).(LogFields); ok {
		return fields
	}
	return LogFields{}
}

func mergeFields(existing, next LogFields) LogFields {
	result := existing

	if next.FactID != nil {
		result.FactID = next.FactID
	}
	if next.ExternalID != nil {
		result.ExternalID = next.ExternalID
	}
	if next.MessageID != nil {
		result.MessageID = next.MessageID
	}
	if next.Provider != nil {
		result.Provider = next.Provider
	}
	if next.EventType != nil {
		result.EventType = next.EventType
	}
	if next.Attempt != nil {
		result.Attempt = next.Attempt
	}
	if next.Component != "" {
		result.Component = next.Component
	}

	return result
}

// Ptr is a helper to create a pointer from a value.
// Useful for setting LogFields inline.
func Ptr[T any](v T) *T {
	return &v
}
