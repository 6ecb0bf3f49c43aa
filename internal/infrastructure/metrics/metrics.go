package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/jhoicas/inventario-movimientos/internal/application/inventory"
	"github.com/jhoicas/inventario-movimientos/internal/domain/entity"
	"github.com/jhoicas/inventario-movimientos/internal/infrastructure/messaging"
)

const namespace = "inventario"

var (
	_ inventory.Metrics      = (*Metrics)(nil)
	_ messaging.RelayMetrics = (*Metrics)(nil)
)

// Metrics colectores Prometheus del ledger, la conciliación, el outbox y la API HTTP.
type Metrics struct {
	registry *prometheus.Registry

	movementsApplied  *prometheus.CounterVec
	movementsRejected *prometheus.CounterVec
	reconcileOutcomes *prometheus.CounterVec
	reconcileDuration prometheus.Histogram
	reconcileFailed   prometheus.Gauge
	outboxPublished   *prometheus.CounterVec
	outboxFailed      *prometheus.CounterVec
	outboxPending     prometheus.Gauge
	httpRequests      *prometheus.CounterVec
	httpDuration      *prometheus.HistogramVec
}

// New registra los colectores en un registro propio (más los del proceso y el runtime de Go).
func New() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		registry: reg,
		movementsApplied: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "movements_applied_total",
			Help: "Movimientos de inventario confirmados por operación y tipo.",
		}, []string{"op", "movement_type"}),
		movementsRejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "movements_rejected_total",
			Help: "Movimientos rechazados por precondición.",
		}, []string{"op", "reason"}),
		reconcileOutcomes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "reconciliation_products_total",
			Help: "Productos conciliados por acción (none, bootstrap, corrected).",
		}, []string{"action"}),
		reconcileDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace, Name: "reconciliation_run_duration_seconds",
			Help:    "Duración de cada conciliación completa.",
			Buckets: []float64{0.1, 0.5, 1, 5, 15, 60, 300},
		}),
		reconcileFailed: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace, Name: "reconciliation_last_run_failed_products",
			Help: "Productos que fallaron en la última conciliación completa.",
		}),
		outboxPublished: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "outbox_published_total",
			Help: "Eventos del outbox publicados.",
		}, []string{"event_type"}),
		outboxFailed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "outbox_failed_total",
			Help: "Intentos fallidos de publicación del outbox.",
		}, []string{"event_type"}),
		outboxPending: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace, Name: "outbox_pending_events",
			Help: "Eventos pendientes leídos en el último sondeo.",
		}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "http_requests_total",
			Help: "Peticiones HTTP por método, ruta y estado.",
		}, []string{"method", "route", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace, Name: "http_request_duration_seconds",
			Help:    "Latencia de las peticiones HTTP.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}
	reg.MustRegister(
		m.movementsApplied, m.movementsRejected, m.reconcileOutcomes, m.reconcileDuration, m.reconcileFailed,
		m.outboxPublished, m.outboxFailed, m.outboxPending, m.httpRequests, m.httpDuration,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Registry registro subyacente (para tests o para exponerlo en otro servidor).
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// Handler handler de /metrics.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

func (m *Metrics) MovementApplied(op string, movementType entity.MovementType) {
	m.movementsApplied.WithLabelValues(op, string(movementType)).Inc()
}

func (m *Metrics) MovementRejected(op, reason string) {
	m.movementsRejected.WithLabelValues(op, reason).Inc()
}

func (m *Metrics) ReconciliationOutcome(action string) {
	m.reconcileOutcomes.WithLabelValues(action).Inc()
}

func (m *Metrics) ObserveReconciliationRun(d time.Duration, failed int) {
	m.reconcileDuration.Observe(d.Seconds())
	m.reconcileFailed.Set(float64(failed))
}

func (m *Metrics) OutboxPublished(eventType string) { m.outboxPublished.WithLabelValues(eventType).Inc() }
func (m *Metrics) OutboxFailed(eventType string)    { m.outboxFailed.WithLabelValues(eventType).Inc() }
func (m *Metrics) OutboxPending(n int)              { m.outboxPending.Set(float64(n)) }

// ObserveHTTPRequest registra una petición; route es el patrón de la ruta, no la URL.
func (m *Metrics) ObserveHTTPRequest(method, route string, status int, d time.Duration) {
	m.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.httpDuration.WithLabelValues(method, route).Observe(d.Seconds())
}
