package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics bundles the converter's counters. Cache-write failures get their
// own counter because the composite writer reports them nowhere else.
type Metrics struct {
	CacheHits          prometheus.Counter
	CacheMisses        prometheus.Counter
	CacheWriteFailures prometheus.Counter
	QuotesStored       *prometheus.CounterVec
	Conversions        *prometheus.CounterVec
}

// New registers the converter metrics on the given registerer.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		CacheHits: factory.NewCounter(prometheus.CounterOpts{
			Name: "converter_cache_hits_total",
			Help: "Number of quote lookups served from the cache.",
		}),
		CacheMisses: factory.NewCounter(prometheus.CounterOpts{
			Name: "converter_cache_misses_total",
			Help: "Number of quote lookups that missed the cache.",
		}),
		CacheWriteFailures: factory.NewCounter(prometheus.CounterOpts{
			Name: "converter_cache_write_failures_total",
			Help: "Number of failed best-effort cache writes.",
		}),
		QuotesStored: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "converter_quotes_stored_total",
			Help: "Number of quotes written, by storage backend.",
		}, []string{"storage"}),
		Conversions: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "converter_conversions_total",
			Help: "Number of conversion requests, by outcome.",
		}, []string{"status"}),
	}
}

// NewUnregistered builds metrics on a private registry, for tests and
// components that do not expose a scrape endpoint.
func NewUnregistered() *Metrics {
	return New(prometheus.NewRegistry())
}
