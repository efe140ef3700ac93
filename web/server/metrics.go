package server

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/df07/go-schwarzschild-raytracer/pkg/renderer"
)

// metrics are registered per server so several servers can coexist in one process
type metrics struct {
	rendersTotal     *prometheus.CounterVec
	raysTotal        *prometheus.CounterVec
	stepsTotal       prometheus.Counter
	renderDuration   prometheus.Histogram
	activeRenders    prometheus.Gauge
	progressDropped  prometheus.Counter
	progressSessions prometheus.Gauge
}

func newMetrics(reg prometheus.Registerer) *metrics {
	factory := promauto.With(reg)
	return &metrics{
		rendersTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "schwarzschild_renders_total",
			Help: "Renders handled, by final status",
		}, []string{"status"}),
		raysTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "schwarzschild_rays_total",
			Help: "Traced sub-sample rays, by outcome",
		}, []string{"outcome"}),
		stepsTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "schwarzschild_integration_steps_total",
			Help: "Geodesic integration steps across all rays",
		}),
		renderDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "schwarzschild_render_duration_seconds",
			Help:    "Wall time of the compute pass",
			Buckets: prometheus.ExponentialBuckets(0.05, 2, 12),
		}),
		activeRenders: factory.NewGauge(prometheus.GaugeOpts{
			Name: "schwarzschild_active_renders",
			Help: "Renders currently computing",
		}),
		progressDropped: factory.NewCounter(prometheus.CounterOpts{
			Name: "schwarzschild_progress_dropped_total",
			Help: "Progress messages dropped because a websocket client was too slow",
		}),
		progressSessions: factory.NewGauge(prometheus.GaugeOpts{
			Name: "schwarzschild_progress_clients",
			Help: "Connected progress websocket clients",
		}),
	}
}

// observeRender records a finished or interrupted render
func (m *metrics) observeRender(status string, stats renderer.RenderStats) {
	m.rendersTotal.WithLabelValues(status).Inc()
	m.raysTotal.WithLabelValues("collided").Add(float64(stats.Collided))
	m.raysTotal.WithLabelValues("escaped").Add(float64(stats.Escaped))
	m.raysTotal.WithLabelValues("diverged").Add(float64(stats.Diverged))
	m.stepsTotal.Add(float64(stats.TotalSteps))
	m.renderDuration.Observe(stats.Duration.Seconds())
}
