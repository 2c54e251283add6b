package store

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	reloads = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "pathways",
		Subsystem: "store",
		Name:      "reloads_total",
		Help:      "Graph reloads by status",
	}, []string{"status"})

	// entities tracks the size of the served graph.
	// Labels: kind (organization, worldview, ...)
	entities = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "pathways",
		Subsystem: "store",
		Name:      "entities",
		Help:      "Entities in the served graph",
	}, []string{"kind"})

	lastLoad = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "pathways",
		Subsystem: "store",
		Name:      "last_load_timestamp_seconds",
		Help:      "Unix time of the served graph's load",
	})
)
