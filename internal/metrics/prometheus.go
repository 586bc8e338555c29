package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// PrometheusCollector implements Collector using Prometheus metrics
type PrometheusCollector struct {
	spawned          *prometheus.CounterVec
	killed           *prometheus.CounterVec
	probes           *prometheus.CounterVec
	proxyStartFailed prometheus.Counter
	trackedPollers   prometheus.Gauge

	registry *prometheus.Registry
}

// NewPrometheus creates a collector registered on its own registry.
func NewPrometheus(namespace string) *PrometheusCollector {
	if namespace == "" {
		namespace = "kubel"
	}

	pc := &PrometheusCollector{
		registry: prometheus.NewRegistry(),
	}

	pc.spawned = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "processes_spawned_total",
			Help:      "Total number of child processes spawned",
		},
		[]string{"kind"},
	)

	pc.killed = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "processes_killed_total",
			Help:      "Total number of child processes terminated by the ledger",
		},
		[]string{"kind"},
	)

	pc.probes = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "readiness_probes_total",
			Help:      "Total number of readiness probe attempts",
		},
		[]string{"path", "outcome"},
	)

	pc.proxyStartFailed = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "proxy_start_failures_total",
			Help:      "Total number of proxy spawns that never became ready",
		},
	)

	pc.trackedPollers = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "pollers_live",
			Help:      "Number of live poller processes tracked by the ledger",
		},
	)

	pc.registry.MustRegister(
		pc.spawned,
		pc.killed,
		pc.probes,
		pc.proxyStartFailed,
		pc.trackedPollers,
	)

	return pc
}

func (pc *PrometheusCollector) ProcessSpawned(kind string) {
	pc.spawned.WithLabelValues(kind).Inc()
}

func (pc *PrometheusCollector) ProcessKilled(kind string) {
	pc.killed.WithLabelValues(kind).Inc()
}

func (pc *PrometheusCollector) ProbeAttempt(path string, outcome string) {
	pc.probes.WithLabelValues(path, outcome).Inc()
}

func (pc *PrometheusCollector) ProxyStartFailed() {
	pc.proxyStartFailed.Inc()
}

func (pc *PrometheusCollector) TrackedPollers(n int) {
	pc.trackedPollers.Set(float64(n))
}

// Registry returns the underlying registry.
func (pc *PrometheusCollector) Registry() *prometheus.Registry {
	return pc.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (pc *PrometheusCollector) Handler() http.Handler {
	return promhttp.HandlerFor(pc.registry, promhttp.HandlerOpts{})
}
