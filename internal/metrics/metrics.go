// Package metrics exposes Prometheus counters for simulations, wizard
// activity and HTTP traffic.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "credit_wizard"

// Metrics owns a dedicated registry so tests and multiple servers do not clash.
type Metrics struct {
	registry          *prometheus.Registry
	simulations       *prometheus.CounterVec
	stepTransitions   *prometheus.CounterVec
	validationFailure *prometheus.CounterVec
	submissions       *prometheus.CounterVec
	draftSaves        prometheus.Counter
	httpRequests      *prometheus.CounterVec
	httpDuration      *prometheus.HistogramVec
}

// New registers every collector on a fresh registry.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		simulations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "simulations_total",
			Help:      "Simulations computed, by property and guarantee flags.",
		}, []string{"property", "guarantee"}),
		stepTransitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "wizard_step_transitions_total",
			Help:      "Wizard step changes.",
		}, []string{"from", "to"}),
		validationFailure: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "wizard_validation_failures_total",
			Help:      "Step validations that reported at least one field.",
		}, []string{"step"}),
		submissions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "wizard_submissions_total",
			Help:      "Application submissions by outcome.",
		}, []string{"outcome"}),
		draftSaves: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "wizard_draft_saves_total",
			Help:      "Draft writes to session storage.",
		}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by route, method and status.",
		}, []string{"route", "method", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route", "method"}),
	}
	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.simulations,
		m.stepTransitions,
		m.validationFailure,
		m.submissions,
		m.draftSaves,
		m.httpRequests,
		m.httpDuration,
	)
	return m
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Registry returns the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

func (m *Metrics) SimulationComputed(hasProperty, hasGuarantee bool) {
	m.simulations.WithLabelValues(strconv.FormatBool(hasProperty), strconv.FormatBool(hasGuarantee)).Inc()
}

func (m *Metrics) StepChanged(from, to int) {
	m.stepTransitions.WithLabelValues(strconv.Itoa(from), strconv.Itoa(to)).Inc()
}

func (m *Metrics) ValidationFailed(step, _ int) {
	m.validationFailure.WithLabelValues(strconv.Itoa(step)).Inc()
}

func (m *Metrics) SubmissionFinished(success bool) {
	outcome := "failure"
	if success {
		outcome = "success"
	}
	m.submissions.WithLabelValues(outcome).Inc()
}

func (m *Metrics) DraftSaved() {
	m.draftSaves.Inc()
}

// ObserveRequest records one HTTP exchange.
func (m *Metrics) ObserveRequest(route, method string, status int, elapsed time.Duration) {
	m.httpRequests.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
	m.httpDuration.WithLabelValues(route, method).Observe(elapsed.Seconds())
}
