// Package metrics exposes Prometheus metrics for link injection runs.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	// Namespace is the namespace for all interlinker metrics.
	Namespace = "interlinker"

	// Subsystem is the subsystem for injection metrics.
	Subsystem = "injector"
)

// Recorder holds the injection metrics.
type Recorder struct {
	RunsTotal        prometheus.Counter
	RunDuration      prometheus.Histogram
	InsertionsTotal  *prometheus.CounterVec
	SkipsTotal       *prometheus.CounterVec
	UnderTargetTotal prometheus.Counter
}

// NewRecorder creates and registers the injection metrics on reg. A nil reg
// uses the default registerer.
func NewRecorder(reg prometheus.Registerer) *Recorder {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	return &Recorder{
		RunsTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: Subsystem,
			Name:      "runs_total",
			Help:      "Total number of injection runs",
		}),
		RunDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: Namespace,
			Subsystem: Subsystem,
			Name:      "run_duration_seconds",
			Help:      "Duration of injection runs in seconds",
			Buckets:   prometheus.ExponentialBuckets(0.001, 2, 14), // 1ms to ~8s
		}),
		InsertionsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: Subsystem,
			Name:      "insertions_total",
			Help:      "Total number of links inserted",
		}, []string{"match_type"}),
		SkipsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: Subsystem,
			Name:      "skips_total",
			Help:      "Total number of rejected placement attempts by gate",
		}, []string{"gate"}),
		UnderTargetTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: Subsystem,
			Name:      "under_target_total",
			Help:      "Runs that placed fewer links than the minimum",
		}),
	}
}

// ObserveRun records one completed run.
func (r *Recorder) ObserveRun(d time.Duration, _ int) {
	r.RunsTotal.Inc()
	r.RunDuration.Observe(d.Seconds())
}

// IncInsertion counts one inserted link.
func (r *Recorder) IncInsertion(matchType string) {
	r.InsertionsTotal.WithLabelValues(matchType).Inc()
}

// IncSkip counts one rejected attempt.
func (r *Recorder) IncSkip(gate string) {
	r.SkipsTotal.WithLabelValues(gate).Inc()
}

// IncUnderTarget counts one under-target run.
func (r *Recorder) IncUnderTarget() {
	r.UnderTargetTotal.Inc()
}

// Handler serves the metrics gathered by g.
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}
