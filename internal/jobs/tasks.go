package jobs

import (
	"encoding/json"
	"time"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault cola por defecto de las tareas en segundo plano.
	QueueDefault = "default"
	// TaskInventoryReconcile concilia el stock en caché contra el ledger de movimientos.
	TaskInventoryReconcile = "inventory:reconcile"
)

// ReconcilePayload sin ProductID concilia todos los productos.
type ReconcilePayload struct {
	ProductID    *int64    `json:"product_id,omitempty"`
	DryRun       bool      `json:"dry_run"`
	ScheduledFor time.Time `json:"scheduled_for"`
}

// NewReconcileTask construye la tarea de conciliación.
func NewReconcileTask(payload ReconcilePayload) (*asynq.Task, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskInventoryReconcile, body, asynq.Queue(QueueDefault)), nil
}
