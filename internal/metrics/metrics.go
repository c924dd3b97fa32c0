package metrics

import (
	"discord-giveaways/internal/cache"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Outcome labels
const (
	OutcomeOK       = "ok"
	OutcomeRejected = "rejected"
	OutcomeError    = "error"
)

// Metrics owns the bot's Prometheus collectors. A nil *Metrics is valid and
// records nothing, which keeps tests free of registry setup.
type Metrics struct {
	registry *prometheus.Registry

	commands       *prometheus.CounterVec
	commandLatency *prometheus.HistogramVec
	edits          *prometheus.CounterVec
	restLatency    *prometheus.HistogramVec
	activeGiveaway prometheus.Gauge
	gateway        prometheus.Gauge
}

func New() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		registry: reg,
		commands: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "giveaways",
			Name:      "command_invocations_total",
			Help:      "Command invocations by command, source and outcome.",
		}, []string{"command", "source", "outcome"}),
		commandLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "giveaways",
			Name:      "command_duration_seconds",
			Help:      "Time spent handling a command invocation.",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 12),
		}, []string{"command", "source"}),
		edits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "giveaways",
			Name:      "edits_total",
			Help:      "Giveaway edits applied by the manager, by outcome.",
		}, []string{"outcome"}),
		restLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "giveaways",
			Name:      "discord_rest_duration_seconds",
			Help:      "Discord REST round trips by HTTP method.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method"}),
		activeGiveaway: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "giveaways",
			Name:      "active",
			Help:      "Giveaways currently tracked by the manager.",
		}),
		gateway: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "giveaways",
			Name:      "gateway_heartbeat_seconds",
			Help:      "Last observed gateway heartbeat latency.",
		}),
	}

	reg.MustRegister(
		m.commands,
		m.commandLatency,
		m.edits,
		m.restLatency,
		m.activeGiveaway,
		m.gateway,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

func (m *Metrics) ObserveCommand(command, source, outcome string, took time.Duration) {
	if m == nil {
		return
	}
	m.commands.WithLabelValues(command, source, outcome).Inc()
	m.commandLatency.WithLabelValues(command, source).Observe(took.Seconds())
}

func (m *Metrics) ObserveEdit(outcome string) {
	if m == nil {
		return
	}
	m.edits.WithLabelValues(outcome).Inc()
}

func (m *Metrics) ObserveREST(method string, took time.Duration) {
	if m == nil {
		return
	}
	m.restLatency.WithLabelValues(method).Observe(took.Seconds())
}

func (m *Metrics) SetActiveGiveaways(n int) {
	if m == nil {
		return
	}
	m.activeGiveaway.Set(float64(n))
}

func (m *Metrics) SetGatewayLatency(d time.Duration) {
	if m == nil {
		return
	}
	m.gateway.Set(d.Seconds())
}

// RegisterCache exports the hit and miss counters of c, labelled with name
// and the cache layer.
func (m *Metrics) RegisterCache(name string, c *cache.Cache) {
	if m == nil || c == nil {
		return
	}
	counters := []struct {
		layer, result string
		read          func(cache.Metrics) uint64
	}{
		{"l1", "hit", func(s cache.Metrics) uint64 { return s.L1Hits }},
		{"l1", "miss", func(s cache.Metrics) uint64 { return s.L1Misses }},
		{"l2", "hit", func(s cache.Metrics) uint64 { return s.L2Hits }},
		{"l2", "miss", func(s cache.Metrics) uint64 { return s.L2Misses }},
	}
	for _, ctr := range counters {
		m.registry.MustRegister(prometheus.NewCounterFunc(prometheus.CounterOpts{
			Namespace:   "giveaways",
			Name:        "cache_requests_total",
			Help:        "Cache lookups by cache, layer and result.",
			ConstLabels: prometheus.Labels{"cache": name, "layer": ctr.layer, "result": ctr.result},
		}, func() float64 { return float64(ctr.read(c.GetMetrics())) }))
	}
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}
