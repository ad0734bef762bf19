// Package metrics defines the Prometheus collectors of the service.
package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// Namespace prefixes every metric name.
const Namespace = "searchstate"

// Search state metrics.
var (
	FieldListMalformedTokensTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "fieldlist_malformed_tokens_total",
			Help:      "Field list tokens whose boost could not be parsed and was dropped",
		},
		[]string{"list"}, // qf, pf, pf2, pf3
	)

	SubRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "subrequests_total",
			Help:      "Sub-requests derived from a search session",
		},
		[]string{"mode"}, // "persistent" / "full"
	)

	SessionOpsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "session_ops_total",
			Help:      "Session store operations by outcome",
		},
		[]string{"op", "result"},
	)
)

var registerOnce sync.Once

// Register registers all collectors with the default registry. Call it once from main.
func Register() {
	registerOnce.Do(func() {
		prometheus.MustRegister(
			httpRequestDuration,
			httpRequestsTotal,
			httpRequestsInFlight,
			FieldListMalformedTokensTotal,
			SubRequestsTotal,
			SessionOpsTotal,
		)
	})
}
