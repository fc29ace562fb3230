// Package metrics registers the prometheus counters and gauges,
// replacing translation-service's go-shared metrics wrapper with direct
// prometheus/client_golang registration (the wrapper package is
// private to the teacher's org and unavailable here). Only
// ItemsProcessed is updated, by the worker pool; the other collectors
// are registered but nothing updates them, and this module serves no
// HTTP endpoint that exposes them.
package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	ItemsProcessed = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "research_orchestrator_items_processed_total",
			Help: "Queue items processed, by terminal status.",
		},
		[]string{"status"},
	)

	ProviderCalls = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "research_orchestrator_provider_calls_total",
			Help: "Provider adapter calls, by provider and outcome status.",
		},
		[]string{"provider", "status"},
	)

	ProviderDegraded = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "research_orchestrator_provider_degraded",
			Help: "1 if the provider's circuit breaker is open, else 0.",
		},
		[]string{"provider"},
	)

	QueueDepth = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "research_orchestrator_queue_depth",
			Help: "Queue item count, by status.",
		},
		[]string{"status"},
	)

	ResultsDeduped = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "research_orchestrator_results_deduped_total",
			Help: "Hits discarded as duplicates during ingest.",
		},
	)

	TranslationFailures = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "research_orchestrator_translation_failures_total",
			Help: "Translation attempts rejected or exhausted across every model tier.",
		},
	)
)

// Register adds every collector to reg. Call once at startup with
// prometheus.DefaultRegisterer (or a test registry).
func Register(reg prometheus.Registerer) {
	reg.MustRegister(
		ItemsProcessed,
		ProviderCalls,
		ProviderDegraded,
		QueueDepth,
		ResultsDeduped,
		TranslationFailures,
	)
}
