// Package metrics holds the Prometheus collectors for the timeline engine.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Backlog fetch results.
const (
	ResultOK    = "ok"
	ResultEmpty = "empty"
	ResultError = "error"
)

// Block origins.
const (
	OriginLive    = "live"
	OriginBacklog = "backlog"
)

var (
	// Pagination metrics
	BacklogFetches = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "roomview_backlog_fetches_total",
			Help: "Total backlog page fetches by result",
		},
		[]string{"result"},
	)

	BacklogFetchDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "roomview_backlog_fetch_duration_seconds",
			Help:    "Backlog page fetch duration",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5},
		},
	)

	BacklogEvents = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "roomview_backlog_events_total",
			Help: "Total events loaded from backlog pages",
		},
	)

	// Layout metrics
	BlocksMaterialized = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "roomview_blocks_materialized_total",
			Help: "Total blocks built, by origin",
		},
		[]string{"origin"},
	)

	Reflows = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "roomview_reflows_total",
			Help: "Total full reflows after a width change",
		},
	)

	ContentHeight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "roomview_content_height",
			Help: "Current total content height in layout units",
		},
	)

	// Live edge metrics
	LiveEvents = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "roomview_live_events_total",
			Help: "Total events appended at the live edge",
		},
	)
)
