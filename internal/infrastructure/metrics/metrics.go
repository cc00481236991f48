// Package metrics contadores Prometheus del servicio.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/jhoicas/viaticos-api/internal/application/approval"
	"github.com/jhoicas/viaticos-api/internal/application/auth"
	"github.com/jhoicas/viaticos-api/internal/domain/entity"
	"github.com/jhoicas/viaticos-api/internal/domain/workflow"
)

const namespace = "viaticos"

var (
	_ approval.Recorder  = (*Metrics)(nil)
	_ auth.LoginObserver = (*Metrics)(nil)
)

// Metrics colectores registrados en un registry propio.
type Metrics struct {
	Registry *prometheus.Registry

	transitions *prometheus.CounterVec
	rejections  *prometheus.CounterVec
	logins      *prometheus.CounterVec
	httpReqs    *prometheus.CounterVec
	httpLatency *prometheus.HistogramVec
}

// New crea y registra los colectores. Con reg nil se usa un registry nuevo con los colectores de Go y proceso.
func New(reg *prometheus.Registry) *Metrics {
	if reg == nil {
		reg = prometheus.NewRegistry()
		reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	}
	f := promauto.With(reg)
	return &Metrics{
		Registry: reg,
		transitions: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "transiciones_total",
			Help:      "Transiciones de misión confirmadas.",
		}, []string{"accion", "estado_anterior", "estado_nuevo"}),
		rejections: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "transiciones_rechazadas_total",
			Help:      "Solicitudes de transición rechazadas, por tipo de error.",
		}, []string{"accion", "error"}),
		logins: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "logins_total",
			Help:      "Intentos de inicio de sesión por tipo de principal y resultado.",
		}, []string{"tipo", "resultado"}),
		httpReqs: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Peticiones HTTP atendidas.",
		}, []string{"method", "route", "status"}),
		httpLatency: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Latencia de las peticiones HTTP.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}
}

func (m *Metrics) TransitionApplied(action workflow.Action, from, to workflow.State) {
	m.transitions.WithLabelValues(string(action), string(from), string(to)).Inc()
}

func (m *Metrics) TransitionRejected(action workflow.Action, kind string) {
	m.rejections.WithLabelValues(string(action), kind).Inc()
}

// LoginAttempt outcome es "ok" o el código de error.
func (m *Metrics) LoginAttempt(kind entity.PrincipalKind, outcome string) {
	m.logins.WithLabelValues(string(kind), outcome).Inc()
}

// ObserveHTTP route es la ruta declarada (ej. /api/missions/:id), no la URL concreta.
func (m *Metrics) ObserveHTTP(method, route string, status int, elapsed time.Duration) {
	m.httpReqs.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.httpLatency.WithLabelValues(method, route).Observe(elapsed.Seconds())
}
