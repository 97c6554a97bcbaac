// Package metrics provides Prometheus instrumentation for the scoring
// pipeline.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/opensource-finance/kestrel/internal/domain"
)

// Recorder holds the pipeline's Prometheus collectors on a private
// registry so multiple instances can coexist in tests.
type Recorder struct {
	registry *prometheus.Registry

	scoringLatency     prometheus.Histogram
	riskScore          prometheus.Histogram
	transactionsScored *prometheus.CounterVec
	fraudAlerts        prometheus.Counter
	inferenceFallbacks prometheus.Counter
}

// NewRecorder creates a recorder with all pipeline collectors
// registered, alongside the standard Go runtime collectors.
func NewRecorder() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),

		scoringLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "kestrel",
			Name:      "scoring_latency_ms",
			Help:      "End-to-end scoring latency in milliseconds.",
			Buckets:   []float64{5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000},
		}),
		riskScore: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "kestrel",
			Name:      "risk_score",
			Help:      "Distribution of risk scores produced by the pipeline.",
			Buckets:   []float64{0.1, 0.2, 0.3, 0.4, 0.5, 0.6, 0.7, 0.8, 0.9, 1.0},
		}),
		transactionsScored: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "kestrel",
			Name:      "transactions_scored_total",
			Help:      "Total transactions scored by risk level.",
		}, []string{"risk_level"}),
		fraudAlerts: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "kestrel",
			Name:      "fraud_alerts_total",
			Help:      "Total fraud alerts emitted for high-risk outcomes.",
		}),
		inferenceFallbacks: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "kestrel",
			Name:      "inference_fallbacks_total",
			Help:      "Total scoring requests that fell back to the neutral score.",
		}),
	}

	r.registry.MustRegister(
		r.scoringLatency,
		r.riskScore,
		r.transactionsScored,
		r.fraudAlerts,
		r.inferenceFallbacks,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return r
}

// ObserveScoring records one scoring outcome.
func (r *Recorder) ObserveScoring(result *domain.ScoringResult) {
	r.scoringLatency.Observe(float64(result.Latency.Microseconds()) / 1000)
	r.riskScore.Observe(result.RiskScore)
	r.transactionsScored.WithLabelValues(string(result.RiskLevel)).Inc()

	if result.Flagged() {
		r.fraudAlerts.Inc()
	}
	if result.Fallback {
		r.inferenceFallbacks.Inc()
	}
}

// Handler returns the scrape endpoint handler for this recorder's
// registry.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}

// Registry exposes the underlying registry for additional collectors.
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}
