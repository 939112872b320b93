package observability

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const metricsNamespace = "bagrules"

// Metrics implements QueryHooks and CacheHooks on top of a private
// Prometheus registry. A CLI run is short-lived, so the series are exported
// with WriteTextfile rather than scraped.
type Metrics struct {
	registry *prometheus.Registry

	// ParseDuration measures rule parsing latency.
	// Labels: status (success, error)
	ParseDuration *prometheus.HistogramVec

	// RulesParsed counts rules accepted by the parser.
	RulesParsed prometheus.Counter

	// GraphNodes and GraphEdges hold the size of the last built graph.
	// Labels: direction (forward, reverse)
	GraphNodes *prometheus.GaugeVec
	GraphEdges *prometheus.GaugeVec

	// BuildDuration measures graph construction latency.
	// Labels: direction
	BuildDuration *prometheus.HistogramVec

	// QueriesTotal counts queries.
	// Labels: kind (ancestors, contents), status (success, error)
	QueriesTotal *prometheus.CounterVec

	// QueryDuration measures query latency.
	// Labels: kind
	QueryDuration *prometheus.HistogramVec

	// QueryResult holds the last successful result per kind and target.
	// Labels: kind, target
	QueryResult *prometheus.GaugeVec

	// CacheEvents counts cache lookups and writes.
	// Labels: key_type, event (hit, miss, set)
	CacheEvents *prometheus.CounterVec
}

var latencyBuckets = []float64{.0001, .0005, .001, .005, .01, .05, .1, .5, 1}

// NewMetrics creates a Metrics instance backed by a fresh registry.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	f := promauto.With(reg)

	return &Metrics{
		registry: reg,
		ParseDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Subsystem: "parse",
			Name:      "duration_seconds",
			Help:      "Rule parsing latency in seconds",
			Buckets:   latencyBuckets,
		}, []string{"status"}),
		RulesParsed: f.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: "parse",
			Name:      "rules_total",
			Help:      "Total rules parsed",
		}),
		GraphNodes: f.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Subsystem: "graph",
			Name:      "nodes",
			Help:      "Node count of the last built graph",
		}, []string{"direction"}),
		GraphEdges: f.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Subsystem: "graph",
			Name:      "edges",
			Help:      "Edge count of the last built graph",
		}, []string{"direction"}),
		BuildDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Subsystem: "graph",
			Name:      "build_duration_seconds",
			Help:      "Graph construction latency in seconds",
			Buckets:   latencyBuckets,
		}, []string{"direction"}),
		QueriesTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: "query",
			Name:      "total",
			Help:      "Total queries by kind and status",
		}, []string{"kind", "status"}),
		QueryDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Subsystem: "query",
			Name:      "duration_seconds",
			Help:      "Query latency in seconds",
			Buckets:   latencyBuckets,
		}, []string{"kind"}),
		QueryResult: f.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Subsystem: "query",
			Name:      "result",
			Help:      "Last successful query result",
		}, []string{"kind", "target"}),
		CacheEvents: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: "cache",
			Name:      "events_total",
			Help:      "Cache events by key type",
		}, []string{"key_type", "event"}),
	}
}

// Registry exposes the underlying registry, mainly for tests.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// WriteTextfile writes all series in the text exposition format. The file is
// replaced atomically.
func (m *Metrics) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, m.registry)
}

func status(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}

func (m *Metrics) OnParseStart(context.Context) {}

func (m *Metrics) OnParseComplete(_ context.Context, _, rules int, d time.Duration, err error) {
	m.ParseDuration.WithLabelValues(status(err)).Observe(d.Seconds())
	if err == nil {
		m.RulesParsed.Add(float64(rules))
	}
}

func (m *Metrics) OnBuild(_ context.Context, direction string, nodes, edges int, d time.Duration) {
	m.GraphNodes.WithLabelValues(direction).Set(float64(nodes))
	m.GraphEdges.WithLabelValues(direction).Set(float64(edges))
	m.BuildDuration.WithLabelValues(direction).Observe(d.Seconds())
}

func (m *Metrics) OnQuery(_ context.Context, kind, target string, value uint64, d time.Duration, err error) {
	m.QueriesTotal.WithLabelValues(kind, status(err)).Inc()
	m.QueryDuration.WithLabelValues(kind).Observe(d.Seconds())
	if err == nil {
		m.QueryResult.WithLabelValues(kind, target).Set(float64(value))
	}
}

func (m *Metrics) OnCacheHit(_ context.Context, keyType string) {
	m.CacheEvents.WithLabelValues(keyType, "hit").Inc()
}

func (m *Metrics) OnCacheMiss(_ context.Context, keyType string) {
	m.CacheEvents.WithLabelValues(keyType, "miss").Inc()
}

func (m *Metrics) OnCacheSet(_ context.Context, keyType string, _ int) {
	m.CacheEvents.WithLabelValues(keyType, "set").Inc()
}

var (
	_ QueryHooks = (*Metrics)(nil)
	_ CacheHooks = (*Metrics)(nil)
)
