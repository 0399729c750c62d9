// Package metrics records squaring runs as Prometheus metrics.
package metrics

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/radioactivebrix/squarebot/pkg/linesquare"
)

const namespace = "squarebot"

// outcomeError labels runs that failed with an error other than a timeout.
const outcomeError = "error"

// Recorder holds the run metrics in its own registry.
type Recorder struct {
	registry   *prometheus.Registry
	runs       *prometheus.CounterVec
	attempts   prometheus.Histogram
	difference prometheus.Gauge
	duration   *prometheus.HistogramVec
}

// NewRecorder creates a recorder with a fresh registry.
func NewRecorder() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		runs: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "linesquare",
				Name:      "runs_total",
				Help:      "Squaring runs by outcome.",
			},
			[]string{"outcome"},
		),
		attempts: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "linesquare",
				Name:      "alignment_attempts",
				Help:      "Alignment iterations per run.",
				Buckets:   []float64{0, 1, 2, 3, 5, 8, 13, 20},
			},
		),
		difference: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: "linesquare",
				Name:      "final_difference_percent",
				Help:      "Left/right reflectance difference at the end of the last run.",
			},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "linesquare",
				Name:      "run_duration_seconds",
				Help:      "Squaring run duration in seconds.",
				Buckets:   []float64{0.25, 0.5, 1, 2, 4, 8, 16, 32},
			},
			[]string{"outcome"},
		),
	}
	r.registry.MustRegister(r.runs, r.attempts, r.difference, r.duration)
	return r
}

// ObserveRun records one SquareOnLine call.
func (r *Recorder) ObserveRun(res linesquare.Result, err error, d time.Duration) {
	outcome := res.Outcome.String()
	if err != nil && !errors.Is(err, linesquare.ErrApproachTimedOut) {
		outcome = outcomeError
	}
	r.runs.WithLabelValues(outcome).Inc()
	r.duration.WithLabelValues(outcome).Observe(d.Seconds())
	if outcome == outcomeError {
		return
	}
	r.attempts.Observe(float64(res.Attempts))
	r.difference.Set(res.Difference())
}

// WriteTextfile writes the registry for the node_exporter textfile collector.
func (r *Recorder) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, r.registry)
}
