package monitoring

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics. Recording on a nil *Metrics is a no-op.
type Metrics struct {
	registry *prometheus.Registry

	// HTTP metrics
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec

	// Router metrics
	Dispatches       *prometheus.CounterVec
	DispatchDuration *prometheus.HistogramVec
	InFlight         prometheus.Gauge

	// Gateway metrics
	GatewayResponses *prometheus.CounterVec

	// Extraction metrics
	Extractions *prometheus.CounterVec

	// OAuth metrics
	SignIns *prometheus.CounterVec

	// Runtime channel metrics
	WSConnections prometheus.Gauge
	WSMessages    *prometheus.CounterVec

	snapshot Snapshot
	mu       sync.RWMutex
}

// Snapshot holds current counter values for the health endpoint
type Snapshot struct {
	Dispatched int64 `json:"dispatched"`
	Failed     int64 `json:"failed"`
	InFlight   int64 `json:"in_flight"`
}

// NewMetrics creates a metrics collector on its own registry
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())
	reg.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,

		RequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "chatrelay_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		RequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "chatrelay_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
			},
			[]string{"method", "path"},
		),

		Dispatches: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "chatrelay_router_dispatches_total",
				Help: "Control messages dispatched by the router",
			},
			[]string{"type", "outcome"},
		),
		DispatchDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "chatrelay_router_dispatch_duration_seconds",
				Help:    "Time from receipt to reply per control message",
				Buckets: []float64{.005, .01, .05, .1, .25, .5, 1, 2.5, 5, 10, 30, 120},
			},
			[]string{"type"},
		),
		InFlight: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "chatrelay_router_in_flight",
				Help: "Control messages awaiting a reply",
			},
		),

		GatewayResponses: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "chatrelay_gateway_responses_total",
				Help: "Backend responses by status code",
			},
			[]string{"status"},
		),

		Extractions: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "chatrelay_extractions_total",
				Help: "Page extractions by outcome",
			},
			[]string{"outcome"},
		),

		SignIns: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "chatrelay_signins_total",
				Help: "Interactive sign-in attempts by outcome",
			},
			[]string{"outcome"},
		),

		WSConnections: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "chatrelay_ws_connections",
				Help: "Number of connected isolated agents",
			},
		),
		WSMessages: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "chatrelay_ws_messages_total",
				Help: "Runtime channel frames",
			},
			[]string{"direction"},
		),
	}
}

// Handler exposes the registry in Prometheus format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry returns the underlying registry
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// RecordHTTPRequest records an HTTP request
func (m *Metrics) RecordHTTPRequest(method, path, status string, duration time.Duration) {
	if m == nil {
		return
	}
	m.RequestsTotal.WithLabelValues(method, path, status).Inc()
	m.RequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

// DispatchStarted marks a control message as in flight
func (m *Metrics) DispatchStarted() {
	if m == nil {
		return
	}
	m.InFlight.Inc()
	m.mu.Lock()
	m.snapshot.InFlight++
	m.mu.Unlock()
}

// DispatchFinished records the reply sent for a control message
func (m *Metrics) DispatchFinished(msgType, outcome string, duration time.Duration) {
	if m == nil {
		return
	}
	m.InFlight.Dec()
	m.Dispatches.WithLabelValues(msgType, outcome).Inc()
	m.DispatchDuration.WithLabelValues(msgType).Observe(duration.Seconds())

	m.mu.Lock()
	m.snapshot.InFlight--
	m.snapshot.Dispatched++
	if outcome != "success" {
		m.snapshot.Failed++
	}
	m.mu.Unlock()
}

// RecordGatewayStatus records a backend status code; 0 is a transport failure
func (m *Metrics) RecordGatewayStatus(status int) {
	if m == nil {
		return
	}
	m.GatewayResponses.WithLabelValues(strconv.Itoa(status)).Inc()
}

// RecordExtraction records an extraction outcome
func (m *Metrics) RecordExtraction(outcome string) {
	if m == nil {
		return
	}
	m.Extractions.WithLabelValues(outcome).Inc()
}

// RecordSignIn records a sign-in outcome
func (m *Metrics) RecordSignIn(outcome string) {
	if m == nil {
		return
	}
	m.SignIns.WithLabelValues(outcome).Inc()
}

// RecordWSMessage records a runtime channel frame
func (m *Metrics) RecordWSMessage(direction string) {
	if m == nil {
		return
	}
	m.WSMessages.WithLabelValues(direction).Inc()
}

// IncWSConnections increments connected agents
func (m *Metrics) IncWSConnections() {
	if m == nil {
		return
	}
	m.WSConnections.Inc()
}

// DecWSConnections decrements connected agents
func (m *Metrics) DecWSConnections() {
	if m == nil {
		return
	}
	m.WSConnections.Dec()
}

// Snapshot returns the current counter values
func (m *Metrics) Snapshot() Snapshot {
	if m == nil {
		return Snapshot{}
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.snapshot
}
