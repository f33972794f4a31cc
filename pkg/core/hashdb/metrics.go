package hashdb

import "github.com/prometheus/client_golang/prometheus"

// Metrics for monitoring node storage.
var (
	//nodesInserted prometheus metric.
	nodesInserted = prometheus.NewCounter(
		prometheus.CounterOpts{
			Help:      "Number of node references added",
			Name:      "mpt_nodes_inserted",
			Namespace: "patricia",
		},
	)
	//nodesReleased prometheus metric.
	nodesReleased = prometheus.NewCounter(
		prometheus.CounterOpts{
			Help:      "Number of node references released",
			Name:      "mpt_nodes_released",
			Namespace: "patricia",
		},
	)
	//nodesCommitted prometheus metric.
	nodesCommitted = prometheus.NewCounter(
		prometheus.CounterOpts{
			Help:      "Number of node entries flushed to the persistent store",
			Name:      "mpt_nodes_committed",
			Namespace: "patricia",
		},
	)
	//nodesSwept prometheus metric.
	nodesSwept = prometheus.NewCounter(
		prometheus.CounterOpts{
			Help:      "Number of unreferenced nodes removed from the persistent store",
			Name:      "mpt_nodes_swept",
			Namespace: "patricia",
		},
	)
	//cacheHits prometheus metric.
	cacheHits = prometheus.NewCounter(
		prometheus.CounterOpts{
			Help:      "Number of node reads served from the cache",
			Name:      "mpt_node_cache_hits",
			Namespace: "patricia",
		},
	)
)

func init() {
	prometheus.MustRegister(
		nodesInserted,
		nodesReleased,
		nodesCommitted,
		nodesSwept,
		cacheHits,
	)
}
