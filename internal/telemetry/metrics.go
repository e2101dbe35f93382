// Package telemetry provides the Prometheus metrics and OpenTelemetry
// tracing the RuleSystem facade instruments itself with.
package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus instruments a RuleSystem records against.
type Metrics struct {
	QueriesTotal        *prometheus.CounterVec
	QueryDuration       prometheus.Histogram
	RulesAddedTotal     prometheus.Counter
	RulesDeletedTotal   prometheus.Counter
	ConflictsTotal      prometheus.Counter
	AdmittedRulesGauge  prometheus.Gauge
}

// NewMetrics creates and registers the rule engine's metrics against reg.
// Pass a dedicated prometheus.NewRegistry() (the default when embedding
// via Option) to keep registration side-effect-free for library callers
// who don't want their own default registry polluted.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	return &Metrics{
		QueriesTotal: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "ruleengine",
				Name:      "queries_total",
				Help:      "Total GetRuleByInputs queries, labeled by hit/miss outcome.",
			},
			[]string{"outcome"},
		),
		QueryDuration: promauto.With(reg).NewHistogram(
			prometheus.HistogramOpts{
				Namespace: "ruleengine",
				Name:      "query_duration_seconds",
				Help:      "GetRuleByInputs latency in seconds.",
				Buckets:   prometheus.DefBuckets,
			},
		),
		RulesAddedTotal: promauto.With(reg).NewCounter(
			prometheus.CounterOpts{
				Namespace: "ruleengine",
				Name:      "rules_added_total",
				Help:      "Total rules successfully admitted.",
			},
		),
		RulesDeletedTotal: promauto.With(reg).NewCounter(
			prometheus.CounterOpts{
				Namespace: "ruleengine",
				Name:      "rules_deleted_total",
				Help:      "Total rules successfully deleted.",
			},
		),
		ConflictsTotal: promauto.With(reg).NewCounter(
			prometheus.CounterOpts{
				Namespace: "ruleengine",
				Name:      "conflicts_detected_total",
				Help:      "Total AddRule calls rejected due to a conflicting existing rule.",
			},
		),
		AdmittedRulesGauge: promauto.With(reg).NewGauge(
			prometheus.GaugeOpts{
				Namespace: "ruleengine",
				Name:      "admitted_rules",
				Help:      "Current number of admitted rules in the cache.",
			},
		),
	}
}
