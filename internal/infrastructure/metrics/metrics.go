// Package metrics holds the Prometheus collectors exported on /metrics.
// A nil *Metrics is valid and records nothing.
package metrics

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"loan-pipeline/internal/domain/loan"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "loan_pipeline"

type Metrics struct {
	Registry             *prometheus.Registry
	Transitions          *prometheus.CounterVec
	TransitionFailures   *prometheus.CounterVec
	GateUpdates          *prometheus.CounterVec
	PaymentConfirmations *prometheus.CounterVec
	HTTPDuration         *prometheus.HistogramVec
}

func New() *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),
		Transitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "transitions_total",
			Help:      "Successful loan status transitions.",
		}, []string{"from", "to"}),
		TransitionFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "transition_failures_total",
			Help:      "Rejected loan status transitions by error kind.",
		}, []string{"kind"}),
		GateUpdates: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "gate_updates_total",
			Help:      "Gate flags raised, by flag and source.",
		}, []string{"gate", "source"}),
		PaymentConfirmations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "payment_confirmations_total",
			Help:      "Payment confirmation events by fee kind and outcome.",
		}, []string{"fee_kind", "outcome"}),
		HTTPDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route", "code"}),
	}
	m.Registry.MustRegister(
		m.Transitions, m.TransitionFailures, m.GateUpdates, m.PaymentConfirmations, m.HTTPDuration,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{})
}

func (m *Metrics) ObserveTransition(from, to loan.Status) {
	if m == nil {
		return
	}
	m.Transitions.WithLabelValues(string(from), string(to)).Inc()
}

func (m *Metrics) ObserveTransitionFailure(err error) {
	if m == nil || err == nil {
		return
	}
	m.TransitionFailures.WithLabelValues(ErrorKind(err)).Inc()
}

func (m *Metrics) ObserveGateUpdate(g loan.GateFlag, source string) {
	if m == nil {
		return
	}
	m.GateUpdates.WithLabelValues(string(g), source).Inc()
}

func (m *Metrics) ObservePayment(kind loan.FeeKind, outcome string) {
	if m == nil {
		return
	}
	m.PaymentConfirmations.WithLabelValues(string(kind), outcome).Inc()
}

func (m *Metrics) ObserveHTTP(method, route string, code int, d time.Duration) {
	if m == nil {
		return
	}
	m.HTTPDuration.WithLabelValues(method, route, strconv.Itoa(code)).Observe(d.Seconds())
}

// ErrorKind maps an error to a low-cardinality label.
func ErrorKind(err error) string {
	switch {
	case errors.Is(err, loan.ErrNotFound):
		return "not_found"
	case errors.Is(err, loan.ErrExhausted):
		return "exhausted"
	case errors.Is(err, loan.ErrVersionConflict):
		return "version_conflict"
	case errors.Is(err, loan.ErrIllegalTransition):
		return "illegal_transition"
	case errors.Is(err, loan.ErrGateBlocked):
		return "gate_blocked"
	case errors.Is(err, loan.ErrInvalidInput):
		return "invalid_input"
	case errors.Is(err, loan.ErrAlreadyGranted):
		return "already_granted"
	case errors.Is(err, loan.ErrUnavailable):
		return "unavailable"
	default:
		return "internal"
	}
}
