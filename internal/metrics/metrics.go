// Package metrics exposes Prometheus instrumentation for the device service.
//
// Metrics implements reconcile.Observer and dispatch.Recorder, and records
// HTTP traffic for the API middleware. Server serves the registry on its
// own listener.
package metrics

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/nerrad567/deviceservice/internal/dispatch"
	"github.com/nerrad567/deviceservice/internal/reconcile"
)

const namespace = "deviceservice"

// unregisteredProtocol replaces the protocol label of decisions answered by
// the fallback, so arbitrary client input cannot grow label cardinality.
const unregisteredProtocol = "unregistered"

// Metrics holds every collector the service exports.
//
// Thread Safety: safe for concurrent use.
type Metrics struct {
	registry *prometheus.Registry

	decisions        *prometheus.CounterVec
	decisionDuration *prometheus.HistogramVec
	reconciles       *prometheus.CounterVec
	lookupFailures   *prometheus.CounterVec
	reconcileLatency *prometheus.HistogramVec
	httpRequests     *prometheus.CounterVec
	httpDuration     *prometheus.HistogramVec
}

var (
	_ reconcile.Observer = (*Metrics)(nil)
	_ dispatch.Recorder  = (*Metrics)(nil)
)

// New creates the collectors and registers them, together with the Go and
// process collectors, on a fresh registry.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		decisions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "decisions_total",
			Help:      "Device events answered, by surface, protocol and result.",
		}, []string{"surface", "protocol", "result"}),
		decisionDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "decision_duration_seconds",
			Help:      "Time to answer a device event, including any reconciliation.",
			Buckets:   prometheus.ExponentialBuckets(0.001, 2, 12),
		}, []string{"surface"}),
		reconciles: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reconciles_total",
			Help:      "Reconciliations, by resource kind and action taken.",
		}, []string{"kind", "action"}),
		lookupFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "lookup_failures_total",
			Help:      "Lookups that fell through to create, by resource kind and failure class.",
		}, []string{"kind", "class"}),
		reconcileLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "reconcile_duration_seconds",
			Help:      "Store round trips for one reconciliation.",
			Buckets:   prometheus.ExponentialBuckets(0.001, 2, 12),
		}, []string{"kind"}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests, by method, matched route and status code.",
		}, []string{"method", "route", "code"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency, by matched route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route"}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.decisions,
		m.decisionDuration,
		m.reconciles,
		m.lookupFailures,
		m.reconcileLatency,
		m.httpRequests,
		m.httpDuration,
	)
	return m
}

// Registry returns the registry the collectors are registered on.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// RecordDecision implements dispatch.Recorder.
func (m *Metrics) RecordDecision(d dispatch.Decision) {
	protocol := d.Protocol
	if !d.Registered {
		protocol = unregisteredProtocol
	}
	m.decisions.WithLabelValues(string(d.Surface), protocol, d.Result).Inc()
	m.decisionDuration.WithLabelValues(string(d.Surface)).Observe(d.Duration.Seconds())
}

// ObserveReconcile implements reconcile.Observer.
func (m *Metrics) ObserveReconcile(_ context.Context, o reconcile.Outcome) {
	m.reconciles.WithLabelValues(o.Kind.Kind, string(o.Action)).Inc()
	if o.LookupFailure != "" {
		m.lookupFailures.WithLabelValues(o.Kind.Kind, string(o.LookupFailure)).Inc()
	}
	m.reconcileLatency.WithLabelValues(o.Kind.Kind).Observe(o.Duration.Seconds())
}

// otherMethod replaces the method label of anything but GET and POST, the
// only methods the API routes.
const otherMethod = "other"

// ObserveHTTP records one served request. Route is the matched route
// pattern, or "unmatched" for requests answered with 404.
func (m *Metrics) ObserveHTTP(method, route string, status int, elapsed time.Duration) {
	m.httpRequests.WithLabelValues(methodLabel(method), route, strconv.Itoa(status)).Inc()
	m.httpDuration.WithLabelValues(route).Observe(elapsed.Seconds())
}

func methodLabel(method string) string {
	switch method {
	case http.MethodGet, http.MethodPost:
		return method
	default:
		return otherMethod
	}
}
