package metrics_test

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/inventario-movimientos/internal/domain/entity"
	"github.com/jhoicas/inventario-movimientos/internal/infrastructure/metrics"
)

func TestMetrics_ContadoresDelLedger(t *testing.T) {
	m := metrics.New()

	m.MovementApplied("create", entity.MovementTypeEntrada)
	m.MovementApplied("create", entity.MovementTypeEntrada)
	m.MovementRejected("create", "insufficient_stock")
	m.ReconciliationOutcome("corrected")
	m.ObserveReconciliationRun(2*time.Second, 1)

	n, err := testutil.GatherAndCount(m.Registry(), "inventario_movements_applied_total", "inventario_movements_rejected_total")
	require.NoError(t, err)
	assert.Equal(t, 2, n, "una serie por combinación de labels")
}

func TestMetrics_HandlerExponeSeries(t *testing.T) {
	m := metrics.New()
	m.OutboxPublished(entity.EventMovementCreated)
	m.ObserveHTTPRequest("GET", "/api/inventory-movements", 200, 15*time.Millisecond)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body, _ := io.ReadAll(rec.Body)
	assert.Contains(t, string(body), `inventario_outbox_published_total{event_type="inventory.movement.created"} 1`)
	assert.Contains(t, string(body), `inventario_http_requests_total{method="GET",route="/api/inventory-movements",status="200"} 1`)
}
