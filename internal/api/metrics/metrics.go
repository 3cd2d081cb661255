// Package metrics defines and registers all custom Prometheus metrics for the
// reviews API. It is the single source of truth for metric names, labels, and
// help strings; HTTP request metrics come from the echoprometheus middleware.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "reviews"

// MutationsTotal counts committed review mutations.
// Label:
//   - action: "create", "update" or "delete"
var MutationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "mutations_total",
		Help:      "Total number of committed review mutations, labelled by action.",
	},
	[]string{"action"},
)

// ImageUploadsTotal counts image uploads to the hosting service.
// Label:
//   - result: "ok" or "error"
var ImageUploadsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "image_uploads_total",
		Help:      "Total number of image upload attempts, labelled by result.",
	},
	[]string{"result"},
)

// EventsPublishedTotal counts events fanned out on the realtime channel.
var EventsPublishedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "events_published_total",
		Help:      "Total number of review events published to realtime subscribers.",
	},
)

// WSClients tracks the current number of connected realtime subscribers.
var WSClients = promauto.NewGauge(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "ws_clients",
		Help:      "Current number of connected websocket subscribers.",
	},
)
