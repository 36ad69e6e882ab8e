package service

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	globalMetrics *Metrics
	metricsOnce   sync.Once
)

// Metrics holds Prometheus counters for the ledger service.
type Metrics struct {
	// CommandsTotal counts executed commands by kind and outcome
	// ("ok" for accepted commands, "rejected" for business-rule and
	// argument rejections).
	CommandsTotal *prometheus.CounterVec

	// StorageFailuresTotal counts ledger reads/writes that failed at
	// the storage layer.
	StorageFailuresTotal prometheus.Counter
}

// NewMetrics creates and registers the service metrics.
//
// Registration happens once per process via sync.Once, so multiple
// services (or tests constructing several) share one set of collectors
// instead of panicking on duplicate registration.
func NewMetrics() *Metrics {
	metricsOnce.Do(func() {
		globalMetrics = &Metrics{
			CommandsTotal: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "gearbot_commands_total",
					Help: "Total number of recognized commands processed",
				},
				[]string{"command", "outcome"},
			),
			StorageFailuresTotal: promauto.NewCounter(
				prometheus.CounterOpts{
					Name: "gearbot_storage_failures_total",
					Help: "Total number of ledger storage failures",
				},
			),
		}
	})
	return globalMetrics
}
