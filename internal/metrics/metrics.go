// Package metrics defines the prometheus instruments for the relay.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Relay metrics
var (
	// ConnectedViewers tracks the number of registered viewer connections
	ConnectedViewers = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "relay_connected_viewers",
			Help: "Number of registered viewer connections",
		},
	)

	// FramesPublishedTotal tracks successful publishes
	FramesPublishedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "relay_frames_published_total",
			Help: "Total frames accepted for broadcast",
		},
	)

	// DeliveriesTotal tracks per-viewer broadcast deliveries
	DeliveriesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "relay_deliveries_total",
			Help: "Total per-viewer frame deliveries during broadcasts",
		},
	)

	// JoinDeliveriesTotal tracks cached-frame deliveries to new viewers
	JoinDeliveriesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "relay_join_deliveries_total",
			Help: "Total cached-frame deliveries to freshly joined viewers",
		},
	)

	// ViewersEvictedTotal tracks evictions by reason
	ViewersEvictedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "relay_viewers_evicted_total",
			Help: "Total viewer connections evicted, by reason",
		},
		[]string{"reason"},
	)

	// PublishFanoutDuration tracks how long one publish fan-out takes
	PublishFanoutDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "relay_publish_fanout_duration_seconds",
			Help:    "Duration of one publish fan-out pass in seconds",
			Buckets: []float64{.0001, .0005, .001, .005, .01, .05, .1, .5, 1},
		},
	)

	// FrameBytes tracks published frame sizes
	FrameBytes = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "relay_frame_bytes",
			Help:    "Size of published frames in bytes",
			Buckets: prometheus.ExponentialBuckets(1024, 4, 8),
		},
	)

	// PingFailuresTotal tracks websocket keepalive ping failures
	PingFailuresTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "relay_ping_failures_total",
			Help: "Total websocket keepalive ping failures",
		},
	)
)

// HTTP surface metrics
var (
	// LimiterRejectionsTotal tracks viewer connections rejected by limits
	LimiterRejectionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "server_limiter_rejections_total",
			Help: "Viewer connections rejected by connection limits, by reason",
		},
		[]string{"reason"},
	)

	// PublishRejectionsTotal tracks rejected publish requests
	PublishRejectionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "server_publish_rejections_total",
			Help: "Publish requests rejected before broadcast, by reason",
		},
		[]string{"reason"},
	)
)
