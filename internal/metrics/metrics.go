package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the API's instruments on a private registry so tests can
// build isolated instances.
type Metrics struct {
	registry *prometheus.Registry

	Commands     *prometheus.CounterVec
	TickDuration prometheus.Histogram
	SavesLoaded  prometheus.Gauge
}

func New() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		registry: reg,
		Commands: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "encore_commands_total",
			Help: "Commands processed, by command name and outcome.",
		}, []string{"command", "outcome"}),
		TickDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "encore_tick_duration_seconds",
			Help:    "Wall time spent advancing one simulated week.",
			Buckets: prometheus.ExponentialBuckets(0.0001, 4, 8),
		}),
		SavesLoaded: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "encore_saves_loaded",
			Help: "Save sessions currently resident in memory.",
		}),
	}
	reg.MustRegister(m.Commands, m.TickDuration, m.SavesLoaded)
	return m
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// ObserveCommand records one command outcome.
func (m *Metrics) ObserveCommand(command string, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "rejected"
	}
	m.Commands.WithLabelValues(command, outcome).Inc()
}

// TimeTick returns a stop function that records the elapsed tick time.
func (m *Metrics) TimeTick() func() {
	start := time.Now()
	return func() { m.TickDuration.Observe(time.Since(start).Seconds()) }
}
