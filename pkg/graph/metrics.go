package graph

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// loadDuration measures a full load: fetch and build.
	// Labels: status (success, error)
	loadDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "pathways",
		Subsystem: "graph",
		Name:      "load_duration_seconds",
		Help:      "Graph load latency in seconds",
		Buckets:   []float64{0.1, 0.25, 0.5, 1, 2, 5, 10, 30, 60},
	}, []string{"status"})

	fetchRetries = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "pathways",
		Subsystem: "graph",
		Name:      "fetch_retries_total",
		Help:      "Table fetch attempts that were retried",
	}, []string{"table"})

	// droppedReferences counts linked ids dropped in lenient mode.
	// Labels: table (the table holding the reference)
	droppedReferences = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "pathways",
		Subsystem: "graph",
		Name:      "dropped_references_total",
		Help:      "Unresolvable references dropped while building",
	}, []string{"table"})

	slugCollisions = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "pathways",
		Subsystem: "graph",
		Name:      "slug_collisions_total",
		Help:      "Records whose derived slug was already taken",
	}, []string{"table"})

	schemaIssues = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "pathways",
		Subsystem: "graph",
		Name:      "schema_issues_total",
		Help:      "Record values that did not fit the schema",
	}, []string{"table"})
)
