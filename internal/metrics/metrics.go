// Package metrics defines the Prometheus metrics for the worker bridge,
// the gallery controller and the import worker.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Bridge metrics
var (
	BridgeMessagesSent = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vidhub_bridge_messages_sent_total",
			Help: "Total number of messages written to the bridge, by message name",
		},
		[]string{"name"},
	)

	BridgeMessagesReceived = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vidhub_bridge_messages_received_total",
			Help: "Total number of well-formed messages read from the bridge, by message name",
		},
		[]string{"name"},
	)

	BridgeMessagesDropped = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vidhub_bridge_messages_dropped_total",
			Help: "Messages the bridge could not deliver or decode, by reason",
		},
		[]string{"reason"}, // "malformed", "unknown", "queue_full", "write_failed"
	)
)

// Gallery controller metrics
var (
	GalleryEventsDiscarded = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vidhub_gallery_events_discarded_total",
			Help: "Inbound worker events ignored by the gallery, by reason",
		},
		[]string{"reason"}, // "stale", "invalid"
	)

	GalleryWorkerUnresponsive = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "vidhub_gallery_worker_unresponsive_total",
			Help: "Times the worker was marked unresponsive during an import",
		},
	)
)

// Import worker metrics
var (
	ImportRunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vidhub_import_runs_total",
			Help: "Total number of imports run by the worker",
		},
		[]string{"status"}, // "success", "error"
	)

	ImportDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "vidhub_import_duration_seconds",
			Help:    "Duration of a full import in seconds",
			Buckets: []float64{0.1, 0.5, 1, 5, 15, 30, 60, 120, 300, 600},
		},
	)

	ImportItemsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "vidhub_import_items_total",
			Help: "Total number of media items imported",
		},
	)

	ThumbnailFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "vidhub_import_thumbnail_failures_total",
			Help: "Thumbnails the worker failed to generate",
		},
	)
)

// Initialize pre-populates label combinations so every series is exported
// from the first scrape.
func Initialize() {
	for _, reason := range []string{"malformed", "unknown", "queue_full", "write_failed"} {
		BridgeMessagesDropped.WithLabelValues(reason)
	}
	for _, reason := range []string{"stale", "invalid"} {
		GalleryEventsDiscarded.WithLabelValues(reason)
	}
	for _, status := range []string{"success", "error"} {
		ImportRunsTotal.WithLabelValues(status)
	}
}

// Handler serves the default registry
func Handler() http.Handler {
	return promhttp.Handler()
}
