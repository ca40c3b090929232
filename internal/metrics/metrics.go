// Package metrics holds the prometheus collectors for the stores, the
// proximity watcher and product lookups. A nil *Collector is valid and
// records nothing.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Collector struct {
	registry        *prometheus.Registry
	storeMutations  *prometheus.CounterVec
	persistFailures *prometheus.CounterVec
	proximityChecks *prometheus.CounterVec
	lookupRequests  *prometheus.CounterVec
}

func New() *Collector {
	registry := prometheus.NewRegistry()

	storeMutations := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pantry_store_mutations_total",
			Help: "Mutations applied to an in-memory collection",
		},
		[]string{"store", "op"},
	)
	persistFailures := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pantry_store_persist_failures_total",
			Help: "Collection rewrites that failed to reach durable storage",
		},
		[]string{"store"},
	)
	proximityChecks := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pantry_proximity_checks_total",
			Help: "Ambient proximity checks by outcome",
		},
		[]string{"outcome"},
	)
	lookupRequests := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pantry_lookup_requests_total",
			Help: "Product lookups by provider and source tier",
		},
		[]string{"provider", "source"},
	)

	registry.MustRegister(storeMutations, persistFailures, proximityChecks, lookupRequests)

	return &Collector{
		registry:        registry,
		storeMutations:  storeMutations,
		persistFailures: persistFailures,
		proximityChecks: proximityChecks,
		lookupRequests:  lookupRequests,
	}
}

func (c *Collector) StoreMutation(store, op string) {
	if c == nil {
		return
	}
	c.storeMutations.WithLabelValues(store, op).Inc()
}

func (c *Collector) PersistFailure(store string) {
	if c == nil {
		return
	}
	c.persistFailures.WithLabelValues(store).Inc()
}

func (c *Collector) ProximityCheck(outcome string) {
	if c == nil {
		return
	}
	c.proximityChecks.WithLabelValues(outcome).Inc()
}

func (c *Collector) Lookup(provider, source string) {
	if c == nil {
		return
	}
	c.lookupRequests.WithLabelValues(provider, source).Inc()
}

func (c *Collector) Registry() *prometheus.Registry {
	if c == nil {
		return nil
	}
	return c.registry
}

// Handler serves the registry in the prometheus text format.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}
