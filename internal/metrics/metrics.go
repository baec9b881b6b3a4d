// Package metrics exposes Prometheus collectors for the ingestion and
// dispatch pipelines. Collectors are registered on the default registry
// and served from /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	WebhookEventsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "factlog_webhook_events_total",
		Help: "Webhook events received, by provider, event type, and outcome.",
	}, []string{"provider", "event_type", "outcome"})

	FactUpsertsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "factlog_fact_upserts_total",
		Help: "Fact upserts, split by whether a new row was created.",
	}, []string{"source", "created"})

	DispatchAttemptsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "factlog_dispatch_attempts_total",
		Help: "Slack dispatch attempts by outcome (delivered, retried, dead_lettered, skipped).",
	}, []string{"outcome"})

	DispatchDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "factlog_dispatch_duration_seconds",
		Help:    "Wall time of a single dispatch attempt, including the Slack call.",
		Buckets: prometheus.DefBuckets,
	})

	QueueDepth = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "factlog_queue_pending_messages",
		Help: "Pending messages per stream as seen by the reclaimer.",
	}, []string{"stream"})
)
