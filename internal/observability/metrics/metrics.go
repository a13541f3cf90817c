// Package metrics exposes Prometheus instrumentation for the portal.
// A nil *Recorder is valid and records nothing.
package metrics

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Result label values.
const (
	ResultSuccess = "success"
	ResultError   = "error"
)

// Login outcomes.
const (
	LoginSuccess  = "success"
	LoginInvalid  = "invalid_credentials"
	LoginNoAccess = "no_admin_access"
	LoginError    = "error"
)

// Fail-closed stages.
const (
	StageSession = "session"
	StageRole    = "role"
)

// Recorder owns the portal collectors.
type Recorder struct {
	authzDecisions *prometheus.CounterVec
	logins         *prometheus.CounterVec
	failClosed     *prometheus.CounterVec
	identityCalls  *prometheus.HistogramVec
	httpRequests   *prometheus.HistogramVec
}

// New creates a Recorder and registers its collectors on reg.
func New(reg prometheus.Registerer) *Recorder {
	r := &Recorder{
		authzDecisions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "portal",
			Name:      "authz_decisions_total",
			Help:      "Route authorization decisions by route class and outcome.",
		}, []string{"route_class", "outcome"}),
		logins: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "portal",
			Name:      "admin_logins_total",
			Help:      "Admin login attempts by outcome.",
		}, []string{"outcome"}),
		failClosed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "portal",
			Name:      "authz_fail_closed_total",
			Help:      "Identity or role lookups that failed and were treated as anonymous or no role.",
		}, []string{"stage"}),
		identityCalls: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "portal",
			Name:      "identity_call_duration_seconds",
			Help:      "Latency of calls to the identity service.",
			Buckets:   []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}, []string{"op", "result", "error_class"}),
		httpRequests: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "portal",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route pattern and status.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route", "status"}),
	}
	reg.MustRegister(r.authzDecisions, r.logins, r.failClosed, r.identityCalls, r.httpRequests)
	return r
}

// AuthzDecision counts one authorization decision.
func (r *Recorder) AuthzDecision(routeClass, outcome string) {
	if r == nil {
		return
	}
	r.authzDecisions.WithLabelValues(routeClass, outcome).Inc()
}

// Login counts one admin login attempt.
func (r *Recorder) Login(outcome string) {
	if r == nil {
		return
	}
	r.logins.WithLabelValues(outcome).Inc()
}

// FailClosed counts a lookup failure converted to the safe default.
func (r *Recorder) FailClosed(stage string) {
	if r == nil {
		return
	}
	r.failClosed.WithLabelValues(stage).Inc()
}

// IdentityCall observes one identity service call.
func (r *Recorder) IdentityCall(op string, elapsed time.Duration, err error) {
	if r == nil {
		return
	}
	result := ResultSuccess
	if err != nil {
		result = ResultError
	}
	r.identityCalls.WithLabelValues(op, result, Classify(err)).Observe(elapsed.Seconds())
}

// HTTPRequest observes one served request.
func (r *Recorder) HTTPRequest(method, route string, status int, elapsed time.Duration) {
	if r == nil {
		return
	}
	if route == "" {
		route = "unmatched"
	}
	r.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Observe(elapsed.Seconds())
}

// Handler serves the metrics registered on g.
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}

type classifier interface {
	error
	Timeout() bool
}

// Classify returns a short, bounded label for err.
func Classify(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	case errors.Is(err, context.Canceled):
		return "canceled"
	}
	var t classifier
	if errors.As(err, &t) && t.Timeout() {
		return "timeout"
	}
	var statusErr interface{ HTTPStatus() int }
	if errors.As(err, &statusErr) {
		if statusErr.HTTPStatus() >= http.StatusInternalServerError {
			return "upstream_5xx"
		}
		return "upstream_4xx"
	}
	return "other"
}
