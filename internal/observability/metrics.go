package observability

import (
	"fmt"
	"io"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
)

// DockingCollector bundles Prometheus metrics for docking sessions. It
// satisfies core.MetricsRecorder.
type DockingCollector struct {
	gatherer prometheus.Gatherer

	SessionsStarted    prometheus.Counter
	SessionsFinished   *prometheus.CounterVec
	SessionDuration    *prometheus.HistogramVec
	SessionsActive     prometheus.Gauge
	FrameDuration      prometheus.Histogram
	AdvisoryTransition *prometheus.CounterVec
}

// NewDockingCollector registers docking metrics against the provided
// registerer, defaulting to the global Prometheus registry when nil.
func NewDockingCollector(reg prometheus.Registerer) (*DockingCollector, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	gatherer := prometheus.DefaultGatherer
	if g, ok := reg.(prometheus.Gatherer); ok {
		gatherer = g
	}

	started, err := register(reg, prometheus.NewCounter(prometheus.CounterOpts{
		Name: "docking_sessions_started_total",
		Help: "Total number of docking sessions started.",
	}), "docking_sessions_started_total")
	if err != nil {
		return nil, err
	}

	finished, err := register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "docking_sessions_finished_total",
		Help: "Total number of docking sessions that ended, labeled by outcome.",
	}, []string{"outcome"}), "docking_sessions_finished_total")
	if err != nil {
		return nil, err
	}

	duration, err := register(reg, prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "docking_session_duration_seconds",
		Help:    "Simulated duration of docking sessions in seconds, labeled by outcome.",
		Buckets: []float64{1, 2, 5, 10, 20, 30, 60, 120, 300},
	}, []string{"outcome"}), "docking_session_duration_seconds")
	if err != nil {
		return nil, err
	}

	active, err := register(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "docking_sessions_active",
		Help: "Number of docking sessions currently running.",
	}), "docking_sessions_active")
	if err != nil {
		return nil, err
	}

	frames, err := register(reg, prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "docking_frame_processing_seconds",
		Help:    "Wall-clock time spent processing one simulation frame.",
		Buckets: []float64{0.00001, 0.00005, 0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05},
	}), "docking_frame_processing_seconds")
	if err != nil {
		return nil, err
	}

	advisories, err := register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "docking_advisory_transitions_total",
		Help: "Number of advisory changes, labeled by the advisory entered.",
	}, []string{"advisory"}), "docking_advisory_transitions_total")
	if err != nil {
		return nil, err
	}

	return &DockingCollector{
		gatherer:           gatherer,
		SessionsStarted:    started,
		SessionsFinished:   finished,
		SessionDuration:    duration,
		SessionsActive:     active,
		FrameDuration:      frames,
		AdvisoryTransition: advisories,
	}, nil
}

// Gatherer returns the Prometheus gatherer associated with the collector.
func (c *DockingCollector) Gatherer() prometheus.Gatherer {
	if c == nil || c.gatherer == nil {
		return prometheus.DefaultGatherer
	}
	return c.gatherer
}

// SessionStarted counts a new session.
func (c *DockingCollector) SessionStarted() {
	if c == nil {
		return
	}
	c.SessionsStarted.Inc()
	c.SessionsActive.Inc()
}

// SessionFinished records a session outcome and its simulated duration.
func (c *DockingCollector) SessionFinished(outcome string, elapsed time.Duration) {
	if c == nil {
		return
	}
	c.SessionsFinished.WithLabelValues(outcome).Inc()
	c.SessionDuration.WithLabelValues(outcome).Observe(elapsed.Seconds())
	c.SessionsActive.Dec()
}

// FrameProcessed records the processing time of one frame.
func (c *DockingCollector) FrameProcessed(d time.Duration) {
	if c == nil {
		return
	}
	c.FrameDuration.Observe(d.Seconds())
}

// AdvisoryChanged counts an advisory transition.
func (c *DockingCollector) AdvisoryChanged(advisory string) {
	if c == nil {
		return
	}
	c.AdvisoryTransition.WithLabelValues(advisory).Inc()
}

// WriteText writes every gathered metric family in the Prometheus text
// exposition format.
func WriteText(w io.Writer, g prometheus.Gatherer) error {
	if g == nil {
		g = prometheus.DefaultGatherer
	}
	families, err := g.Gather()
	if err != nil {
		return fmt.Errorf("gather metrics: %w", err)
	}
	for _, mf := range families {
		if _, err := expfmt.MetricFamilyToText(w, mf); err != nil {
			return fmt.Errorf("write metric family %s: %w", mf.GetName(), err)
		}
	}
	return nil
}

// register adds c to reg, reusing an already registered collector of the
// same type so collectors can be constructed more than once per registry.
func register[T prometheus.Collector](reg prometheus.Registerer, c T, name string) (T, error) {
	if err := reg.Register(c); err != nil {
		var zero T
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(T); ok {
				return existing, nil
			}
			return zero, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return zero, err
	}
	return c, nil
}
