package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Schedule lookup sources
const (
	SourceStatic  = "static"
	SourceDB      = "database"
	SourceCache   = "cache"
	SourceNetwork = "network"
	SourceNone    = "none"
)

// Metrics holds all prometheus metrics
type Metrics struct {
	TicketsParsed   prometheus.Counter
	TicketsSaved    prometheus.Counter
	EmailsProcessed *prometheus.CounterVec
	ParseFailures   *prometheus.CounterVec
	ScheduleLookups *prometheus.CounterVec
	ParseDuration   prometheus.Histogram
	ErrorsCount     *prometheus.CounterVec
}

// NewMetrics creates new prometheus metrics registered on reg.
// A nil reg uses the default registerer.
func NewMetrics(namespace string, reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	return &Metrics{
		TicketsParsed: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tickets_parsed_total",
			Help:      "The total number of ticket documents parsed",
		}),
		TicketsSaved: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tickets_saved_total",
			Help:      "The total number of tickets persisted",
		}),
		EmailsProcessed: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "emails_processed_total",
			Help:      "The total number of processed emails by outcome",
		}, []string{"status"}),
		ParseFailures: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "parse_failures_total",
			Help:      "The total number of rejected input files",
		}, []string{"reason"}),
		ScheduleLookups: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "schedule_lookups_total",
			Help:      "Schedule lookups by the source that answered",
		}, []string{"source"}),
		ParseDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "ticket_parse_duration_seconds",
			Help:      "Time taken to parse one ticket document",
			Buckets:   prometheus.DefBuckets,
		}),
		ErrorsCount: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "errors_total",
			Help:      "The total number of errors",
		}, []string{"operation"}),
	}
}

// NewTestMetrics returns metrics bound to a private registry.
func NewTestMetrics() *Metrics {
	return NewMetrics("test", prometheus.NewRegistry())
}
