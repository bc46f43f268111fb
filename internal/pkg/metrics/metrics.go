/*
Package metrics holds the Prometheus collectors shared by the client core and
the snapshot server.
*/
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Client core metrics
var (
	PolicyRejectionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "messenger_policy_rejections_total",
		Help: "Total number of messages rejected by the moderation policy, by reason",
	}, []string{"reason"})

	MessagesSentTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "messenger_messages_sent_total",
		Help: "Total number of messages accepted, by kind",
	}, []string{"kind"})

	SyncTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "messenger_sync_total",
		Help: "Total number of snapshot pulls, by outcome",
	}, []string{"outcome"})

	PushTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "messenger_push_total",
		Help: "Total number of snapshot pushes, by outcome",
	}, []string{"outcome"})

	SyncDurationSeconds = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "messenger_sync_duration_seconds",
		Help:    "Histogram of snapshot pull duration in seconds",
		Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2},
	})

	Online = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "messenger_online",
		Help: "1 when the last transport call succeeded, 0 when running from the local mirror",
	})
)

// Snapshot server metrics
var (
	DocumentReadsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "messenger_document_reads_total",
		Help: "Total number of document reads served, by backend and outcome",
	}, []string{"backend", "outcome"})

	DocumentWritesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "messenger_document_writes_total",
		Help: "Total number of document writes, by backend and outcome",
	}, []string{"backend", "outcome"})

	DocumentSizeBytes = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "messenger_document_size_bytes",
		Help: "Size of the last document written",
	})

	BackupsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "messenger_backups_total",
		Help: "Total number of scheduled document backups, by outcome",
	}, []string{"outcome"})

	ThrottledTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "messenger_throttled_requests_total",
		Help: "Total number of requests rejected by a per-IP rate limiter, by route",
	}, []string{"route"})
)
