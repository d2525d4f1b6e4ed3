package orchestrator

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"strata/internal/dependency"
)

const (
	resultExisting = "existing"
	resultCreated  = "created"
	resultSkipped  = "skipped"
	resultFailed   = "failed"
)

// Metrics holds the Prometheus metrics for dependency loading and component
// startup.  A nil *Metrics records nothing.
type Metrics struct {
	dependencyLoads     *prometheus.CounterVec
	loadDuration        prometheus.Histogram
	componentsStarted   *prometheus.CounterVec
	componentsStopped   *prometheus.CounterVec
	registeredComponent prometheus.Gauge
}

// NewMetrics creates the metrics and registers them with reg.  A nil
// registerer disables metrics and returns nil.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	if reg == nil {
		return nil, nil
	}

	m := &Metrics{
		dependencyLoads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "strata",
			Subsystem: "loader",
			Name:      "dependencies_total",
			Help:      "Direct dependency resolutions by dependency kind and result.",
		}, []string{"kind", "result"}),

		loadDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "strata",
			Subsystem: "loader",
			Name:      "load_duration_seconds",
			Help:      "Time taken to load the direct dependencies of a component.",
			Buckets:   prometheus.DefBuckets,
		}),

		componentsStarted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "strata",
			Subsystem: "orchestrator",
			Name:      "component_starts_total",
			Help:      "Component start attempts by result.",
		}, []string{"result"}),

		componentsStopped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "strata",
			Subsystem: "orchestrator",
			Name:      "component_stops_total",
			Help:      "Component shutdowns by result.",
		}, []string{"result"}),

		registeredComponent: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "strata",
			Subsystem: "orchestrator",
			Name:      "registered_components",
			Help:      "Number of components with registered metadata.",
		}),
	}

	collectors := []prometheus.Collector{
		m.dependencyLoads,
		m.loadDuration,
		m.componentsStarted,
		m.componentsStopped,
		m.registeredComponent,
	}
	for _, c := range collectors {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (m *Metrics) recordDependency(kind dependency.Kind, result string) {
	if m == nil {
		return
	}
	m.dependencyLoads.WithLabelValues(kind.String(), result).Inc()
}

func (m *Metrics) observeLoad(start time.Time) {
	if m == nil {
		return
	}
	m.loadDuration.Observe(time.Since(start).Seconds())
}

func (m *Metrics) recordStart(err error) {
	if m == nil {
		return
	}
	m.componentsStarted.WithLabelValues(outcome(err)).Inc()
}

func (m *Metrics) recordStop(err error) {
	if m == nil {
		return
	}
	m.componentsStopped.WithLabelValues(outcome(err)).Inc()
}

func (m *Metrics) setRegistered(n int) {
	if m == nil {
		return
	}
	m.registeredComponent.Set(float64(n))
}

func outcome(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}
