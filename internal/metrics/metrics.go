package metrics

import "github.com/prometheus/client_golang/prometheus"

// Search pipeline Prometheus metrics.
var (
	SearchesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "wikisearch",
			Name:      "searches_total",
			Help:      "Search pipeline outcomes by terminal card state",
		},
		[]string{"state"},
	)

	RoundTripFailuresTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "wikisearch",
			Name:      "round_trip_failures_total",
			Help:      "Failed remote round trips by pipeline stage",
		},
		[]string{"stage"},
	)

	QueryMessagesTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "wikisearch",
			Name:      "query_messages_total",
			Help:      "Chat messages that contained at least one query",
		},
	)
)

var registered bool

// Register registers the search metrics. Must be called once from main.
func Register() {
	if registered {
		return
	}
	prometheus.MustRegister(SearchesTotal)
	prometheus.MustRegister(RoundTripFailuresTotal)
	prometheus.MustRegister(QueryMessagesTotal)
	registered = true
}
