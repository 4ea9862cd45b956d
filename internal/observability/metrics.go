package observability

import (
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Completion kinds.
const (
	KindInitial      = "initial"
	KindContinuation = "continuation"
	KindRepair       = "repair"
	KindClassify     = "classify"
)

// JSON coercion outcomes.
const (
	CoercionDirect    = "direct"
	CoercionExtracted = "extracted"
	CoercionRepaired  = "repaired"
	CoercionFallback  = "fallback"
)

// Metrics holds the service counters on a private registry so tests can
// build as many as they like. A nil *Metrics is valid and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	httpRequests  *prometheus.CounterVec
	completions   *prometheus.CounterVec
	truncations   prometheus.Counter
	jsonCoercions *prometheus.CounterVec
	publishes     *prometheus.CounterVec
}

func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		httpRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "studio_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"route", "status"},
		),
		completions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "studio_completions_total",
				Help: "Model calls by kind and outcome",
			},
			[]string{"kind", "outcome"},
		),
		truncations: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "studio_truncations_total",
				Help: "Completions detected as cut off",
			},
		),
		jsonCoercions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "studio_json_coercions_total",
				Help: "Structured-output coercions by outcome",
			},
			[]string{"outcome"},
		),
		publishes: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "studio_publish_total",
				Help: "Publish attempts by platform and outcome",
			},
			[]string{"platform", "outcome"},
		),
	}

	m.registry.MustRegister(m.httpRequests, m.completions, m.truncations, m.jsonCoercions, m.publishes)
	return m
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) HTTPRequest(route string, status int) {
	if m == nil {
		return
	}
	m.httpRequests.WithLabelValues(route, strconv.Itoa(status)).Inc()
}

func (m *Metrics) Completion(kind string, err error) {
	if m == nil {
		return
	}
	m.completions.WithLabelValues(kind, outcome(err)).Inc()
}

func (m *Metrics) Truncation() {
	if m == nil {
		return
	}
	m.truncations.Inc()
}

func (m *Metrics) JSONCoercion(result string) {
	if m == nil {
		return
	}
	m.jsonCoercions.WithLabelValues(result).Inc()
}

func (m *Metrics) Publish(platform string, err error) {
	if m == nil {
		return
	}
	m.publishes.WithLabelValues(platform, outcome(err)).Inc()
}

func outcome(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
