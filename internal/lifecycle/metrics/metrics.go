// Package metrics exposes Prometheus counters for the result lifecycle.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the lifecycle counters.
type Metrics struct {
	PackagesCreated  prometheus.Counter
	PackageTimeouts  prometheus.Counter
	PackageFailures  prometheus.Counter
	EvaluationHits   prometheus.Counter
	EvaluationMisses prometheus.Counter
	Qualifications   *prometheus.CounterVec
}

// New creates and registers all lifecycle metrics on the default registry.
func New() *Metrics {
	return &Metrics{
		PackagesCreated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "corpcheck_packages_created_total",
			Help: "Total number of package records created.",
		}),
		PackageTimeouts: promauto.NewCounter(prometheus.CounterOpts{
			Name: "corpcheck_package_timeouts_total",
			Help: "Total number of pending records failed by the lazy timeout check.",
		}),
		PackageFailures: promauto.NewCounter(prometheus.CounterOpts{
			Name: "corpcheck_package_failures_total",
			Help: "Total number of package records transitioned to FAILED.",
		}),
		EvaluationHits: promauto.NewCounter(prometheus.CounterOpts{
			Name: "corpcheck_evaluation_cache_hits_total",
			Help: "Total number of evaluation lookups answered from an existing result.",
		}),
		EvaluationMisses: promauto.NewCounter(prometheus.CounterOpts{
			Name: "corpcheck_evaluation_cache_misses_total",
			Help: "Total number of evaluation lookups that required scoring.",
		}),
		Qualifications: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "corpcheck_qualifications_total",
			Help: "Total number of scored results by verdict.",
		}, []string{"qualification"}),
	}
}
