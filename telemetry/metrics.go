package telemetry

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics exposes simulation counters and gauges for Prometheus.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	events    *prometheus.CounterVec
	steps     *prometheus.CounterVec
	produced  *prometheus.CounterVec
	villagers *prometheus.GaugeVec
	stored    *prometheus.GaugeVec
	tick      prometheus.Gauge
	tickTime  prometheus.Histogram
}

// NewMetrics creates the metric set on its own registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		events: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "planets",
			Name:      "events_total",
			Help:      "Placement and depletion events by type and kind.",
		}, []string{"type", "kind"}),
		steps: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "planets",
			Name:      "walker_steps_total",
			Help:      "Walker step outcomes.",
		}, []string{"result"}),
		produced: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "planets",
			Name:      "resources_produced_total",
			Help:      "Resource units deposited by workers.",
		}, []string{"resource"}),
		villagers: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "planets",
			Name:      "villagers",
			Help:      "Villagers by activity.",
		}, []string{"state"}),
		stored: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "planets",
			Name:      "resources_stored",
			Help:      "Resource units held in storage across all planets.",
		}, []string{"resource"}),
		tick: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "planets",
			Name:      "tick",
			Help:      "Current simulation tick.",
		}),
		tickTime: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "planets",
			Name:      "tick_duration_seconds",
			Help:      "Wall time spent per simulation tick.",
			Buckets:   prometheus.ExponentialBuckets(1e-6, 4, 10),
		}),
	}

	m.registry.MustRegister(m.events, m.steps, m.produced, m.villagers, m.stored, m.tick, m.tickTime)
	return m
}

// Registry returns the registry the metrics are registered on.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// Handler serves the metrics in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Observe records a single event.
func (m *Metrics) Observe(ev Event) {
	if m == nil {
		return
	}
	m.events.WithLabelValues(ev.Type.String(), ev.Kind.String()).Inc()
}

// ObserveSteps records walker step outcomes for one tick.
func (m *Metrics) ObserveSteps(moved, blocked int) {
	if m == nil {
		return
	}
	m.steps.WithLabelValues("moved").Add(float64(moved))
	m.steps.WithLabelValues("blocked").Add(float64(blocked))
}

// ObserveTick records the tick number and how long it took.
func (m *Metrics) ObserveTick(tick int32, d time.Duration) {
	if m == nil {
		return
	}
	m.tick.Set(float64(tick))
	m.tickTime.Observe(d.Seconds())
}

// ObserveWindow updates gauges from a closed stats window.
func (m *Metrics) ObserveWindow(s WindowStats) {
	if m == nil {
		return
	}
	m.villagers.WithLabelValues("wandering").Set(float64(s.Wandering))
	m.villagers.WithLabelValues("working").Set(float64(s.Working))
	m.villagers.WithLabelValues("hidden").Set(float64(s.Hidden))
	m.stored.WithLabelValues("food").Set(float64(s.FoodStored))
	m.stored.WithLabelValues("wood").Set(float64(s.WoodStored))
	m.produced.WithLabelValues("food").Add(float64(s.FoodProduced))
	m.produced.WithLabelValues("wood").Add(float64(s.WoodProduced))
}
