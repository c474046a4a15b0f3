// Package metrics exposes Prometheus collectors for the client SDK.
// Consumers embedding the SDK in a service can register Registry with
// their scrape endpoint; standalone use can ignore it entirely.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	// Registry holds the SDK-specific Prometheus collectors.
	Registry = prometheus.NewRegistry()

	remoteRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "olympus_client",
			Subsystem: "remote",
			Name:      "requests_total",
			Help:      "Total number of remote API requests.",
		},
		[]string{"method", "outcome"},
	)

	remoteDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "olympus_client",
			Subsystem: "remote",
			Name:      "request_duration_seconds",
			Help:      "Duration of remote API requests.",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 10), // 5ms to ~5s
		},
		[]string{"method"},
	)

	stateTransitions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "olympus_client",
			Subsystem: "state",
			Name:      "transitions_total",
			Help:      "Total number of resource container state transitions.",
		},
		[]string{"container", "phase"},
	)
)

func init() {
	Registry.MustRegister(remoteRequests, remoteDuration, stateTransitions)
}

// ObserveRequest records one remote request with its outcome label
// ("ok" or the failure kind) and duration.
func ObserveRequest(method, outcome string, duration time.Duration) {
	remoteRequests.WithLabelValues(method, outcome).Inc()
	remoteDuration.WithLabelValues(method).Observe(duration.Seconds())
}

// ObserveTransition records one container state transition.
func ObserveTransition(container, phase string) {
	stateTransitions.WithLabelValues(container, phase).Inc()
}
