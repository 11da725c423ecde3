// Package metrics provides Prometheus instrumentation for the difficulty
// adjustment engine: live parameters, policy decisions, retrains and
// persistence failures.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Policy labels for decision counters.
const (
	PolicyHeuristic = "heuristic"
	PolicyLearned   = "learned"
)

// Manager owns the DDA metrics. A nil *Manager is valid and records nothing,
// so components can be built without instrumentation.
type Manager struct {
	namespace string
	subsystem string
	enabled   bool
	registry  *prometheus.Registry

	speed             prometheus.Gauge
	obstacleFrequency prometheus.Gauge
	patternComplexity prometheus.Gauge
	coinValue         prometheus.Gauge

	adjustments     prometheus.Counter
	decisions       *prometheus.CounterVec
	fallbacks       *prometheus.CounterVec
	retrains        *prometheus.CounterVec
	retrainDuration prometheus.Histogram
	examples        prometheus.Gauge

	sessions          prometheus.Counter
	successRating     prometheus.Histogram
	persistenceErrors *prometheus.CounterVec
}

// Option applies a configuration option to the Manager.
type Option func(*Manager)

// WithNamespace sets the namespace for all metrics.
func WithNamespace(namespace string) Option {
	return func(m *Manager) {
		if namespace != "" {
			m.namespace = namespace
		}
	}
}

// WithSubsystem sets the subsystem for all metrics.
func WithSubsystem(subsystem string) Option {
	return func(m *Manager) {
		if subsystem != "" {
			m.subsystem = subsystem
		}
	}
}

// WithMetricsEnabled enables or disables metrics collection.
func WithMetricsEnabled(enabled bool) Option {
	return func(m *Manager) {
		m.enabled = enabled
	}
}

// WithRegistry registers the metrics on r instead of a private registry.
func WithRegistry(r *prometheus.Registry) Option {
	return func(m *Manager) {
		if r != nil {
			m.registry = r
		}
	}
}

// NewManager creates a metrics manager backed by its own registry.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace: "runner",
		subsystem: "dda",
		enabled:   true,
		registry:  prometheus.NewRegistry(),
	}
	for _, opt := range opts {
		opt(m)
	}
	m.initializeMetrics()
	return m
}

func (m *Manager) initializeMetrics() {
	auto := promauto.With(m.registry)

	gauge := func(name, help string) prometheus.Gauge {
		return auto.NewGauge(prometheus.GaugeOpts{
			Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help,
		})
	}
	counterVec := func(name, help string, labels ...string) *prometheus.CounterVec {
		return auto.NewCounterVec(prometheus.CounterOpts{
			Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help,
		}, labels)
	}

	m.speed = gauge("speed", "Live obstacle speed in pixels per tick")
	m.obstacleFrequency = gauge("obstacle_frequency_ticks", "Live spawn interval in ticks")
	m.patternComplexity = gauge("pattern_complexity", "Live pattern complexity (1-3)")
	m.coinValue = gauge("coin_value", "Live points per coin")
	m.examples = gauge("training_examples", "Examples held by the learned policy")

	m.adjustments = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "adjustments_total", Help: "Smoothing steps applied to live parameters",
	})
	m.sessions = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "sessions_total", Help: "Sessions handed to the recorder",
	})

	m.decisions = counterVec("policy_decisions_total", "Target predictions by serving policy", "policy")
	m.fallbacks = counterVec("policy_fallbacks_total", "Learned policy calls answered by the heuristic", "reason")
	m.retrains = counterVec("retrains_total", "Regressor retrains by outcome", "result")
	m.persistenceErrors = counterVec("persistence_errors_total", "Failed persistence operations", "op")

	m.retrainDuration = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "retrain_duration_seconds", Help: "Time spent fitting the regressor",
		Buckets: prometheus.ExponentialBuckets(0.0001, 4, 8),
	})
	m.successRating = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "success_rating", Help: "Per-session success rating used as training weight",
		Buckets: prometheus.LinearBuckets(0.1, 0.1, 10),
	})
}

func (m *Manager) active() bool {
	return m != nil && m.enabled
}

// ObserveParams publishes the live difficulty parameters.
func (m *Manager) ObserveParams(speed float64, obstacleFrequency int, patternComplexity float64, coinValue int) {
	if !m.active() {
		return
	}
	m.speed.Set(speed)
	m.obstacleFrequency.Set(float64(obstacleFrequency))
	m.patternComplexity.Set(patternComplexity)
	m.coinValue.Set(float64(coinValue))
}

// IncAdjustments counts one smoothing step.
func (m *Manager) IncAdjustments() {
	if !m.active() {
		return
	}
	m.adjustments.Inc()
}

// IncDecision counts a prediction served by policy.
func (m *Manager) IncDecision(policy string) {
	if !m.active() {
		return
	}
	m.decisions.WithLabelValues(policy).Inc()
}

// IncFallback counts a learned-policy call answered by the heuristic.
func (m *Manager) IncFallback(reason string) {
	if !m.active() {
		return
	}
	m.fallbacks.WithLabelValues(reason).Inc()
}

// ObserveRetrain records one regressor fit.
func (m *Manager) ObserveRetrain(d time.Duration, err error) {
	if !m.active() {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.retrains.WithLabelValues(result).Inc()
	m.retrainDuration.Observe(d.Seconds())
}

// SetExamples publishes the training set size.
func (m *Manager) SetExamples(n int) {
	if !m.active() {
		return
	}
	m.examples.Set(float64(n))
}

// ObserveSession records a finished session's success rating.
func (m *Manager) ObserveSession(successRating float64) {
	if !m.active() {
		return
	}
	m.sessions.Inc()
	m.successRating.Observe(successRating)
}

// IncPersistenceError counts a failed storage operation.
func (m *Manager) IncPersistenceError(op string) {
	if !m.active() {
		return
	}
	m.persistenceErrors.WithLabelValues(op).Inc()
}

// Registry returns the registry holding the metrics.
func (m *Manager) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// Handler serves the metrics in the Prometheus exposition format.
func (m *Manager) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
