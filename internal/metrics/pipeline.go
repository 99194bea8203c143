// Package metrics holds the Prometheus collectors for recommendation builds,
// the Spotify adapter and the HTTP surface.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "encore"

var (
	buildsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "builds_total",
			Help:      "Recommendation playlist builds by outcome",
		},
		[]string{"outcome"},
	)

	stageDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "build_stage_duration_seconds",
			Help:      "Duration of each catalog stage of a build",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
		[]string{"stage", "status"},
	)

	skippedRecords = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "skipped_feature_records_total",
			Help:      "Audio feature records rejected during ingestion",
		},
	)

	unscoredTracks = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "unscored_tracks_total",
			Help:      "Tracks whose similarity could not be computed",
		},
	)

	spotifyRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "spotify",
			Name:      "requests_total",
			Help:      "Spotify API attempts by status code",
		},
		[]string{"method", "status"},
	)

	spotifyRetries = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "spotify",
			Name:      "retries_total",
			Help:      "Spotify API retries",
		},
	)

	breakerState = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "spotify",
			Name:      "circuit_breaker_state",
			Help:      "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)
)

func init() {
	prometheus.MustRegister(buildsTotal, stageDuration, skippedRecords, unscoredTracks)
	prometheus.MustRegister(spotifyRequests, spotifyRetries, breakerState)
}

// ObserveBuild counts a finished build.
func ObserveBuild(outcome string) {
	buildsTotal.WithLabelValues(outcome).Inc()
}

// ObserveStage records how long a build stage took.
func ObserveStage(stage string, start time.Time, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	stageDuration.WithLabelValues(stage, status).Observe(time.Since(start).Seconds())
}

func AddSkippedRecords(n int) { skippedRecords.Add(float64(n)) }

func AddUnscoredTracks(n int) { unscoredTracks.Add(float64(n)) }

// ObserveSpotifyRequest counts one Spotify attempt. status is the HTTP status
// code, or "error" when no response was received.
func ObserveSpotifyRequest(method, status string) {
	spotifyRequests.WithLabelValues(method, status).Inc()
}

func IncSpotifyRetries() { spotifyRetries.Inc() }

// SetBreakerState publishes the circuit breaker state.
func SetBreakerState(name string, state float64) {
	breakerState.WithLabelValues(name).Set(state)
}
