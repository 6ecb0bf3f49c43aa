// reconcile concilia el stock en caché contra el ledger de movimientos.
//
// Uso:
//
//	go run ./cmd/reconcile -all [-dry-run]
//	go run ./cmd/reconcile -product 12 [-dry-run]
//	go run ./cmd/reconcile -all -enqueue    (encola la tarea para cmd/worker)
//
// Con -all también genera el movimiento de inventario inicial de los productos que tienen
// stock pero ningún movimiento.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jhoicas/inventario-movimientos/internal/application/inventory"
	"github.com/jhoicas/inventario-movimientos/internal/bootstrap"
	"github.com/jhoicas/inventario-movimientos/internal/jobs"
	"github.com/jhoicas/inventario-movimientos/pkg/config"
	"github.com/jhoicas/inventario-movimientos/pkg/logger"
)

func main() {
	productID := flag.Int64("product", 0, "ID del producto a conciliar")
	all := flag.Bool("all", false, "conciliar todos los productos")
	dryRun := flag.Bool("dry-run", false, "calcular sin escribir")
	enqueue := flag.Bool("enqueue", false, "encolar la tarea en Asynq en lugar de ejecutarla aquí")
	flag.Parse()

	if (*productID > 0) == *all {
		fmt.Fprintln(os.Stderr, "indique -product <id> o -all")
		flag.Usage()
		os.Exit(2)
	}

	os.Exit(run(*productID, *all, *dryRun, *enqueue))
}

func run(productID int64, all, dryRun, enqueue bool) int {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "cargar configuración: %v\n", err)
		return 1
	}
	log := logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.App.LogLevel, Service: cfg.App.Name})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if enqueue {
		return enqueueTask(ctx, cfg, log, productID, dryRun)
	}

	svc, err := bootstrap.New(ctx, cfg, log)
	if err != nil {
		log.Error().Err(err).Msg("inicializar dependencias")
		return 1
	}
	defer svc.Close()

	code := 0
	var out any
	if all {
		report, err := svc.Reconciliation.ReconcileAll(ctx, dryRun)
		if err != nil {
			log.Error().Err(err).Msg("conciliación fallida")
			return 1
		}
		if report.Failed > 0 {
			code = 1
		}
		out = inventory.ToReconciliationReportDTO(report)
	} else {
		res, err := svc.Reconciliation.ReconcileProduct(ctx, productID, dryRun)
		if err != nil {
			log.Error().Err(err).Int64("product_id", productID).Msg("conciliación fallida")
			return 1
		}
		out = inventory.ToReconciliationResultDTO(res)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		return 1
	}
	return code
}

func enqueueTask(ctx context.Context, cfg *config.Config, log *logger.Logger, productID int64, dryRun bool) int {
	client := jobs.NewClient(bootstrap.AsynqRedisOpt(cfg.Redis))
	defer client.Close()

	payload := jobs.ReconcilePayload{DryRun: dryRun, ScheduledFor: time.Now().UTC()}
	if productID > 0 {
		payload.ProductID = &productID
	}
	info, err := client.EnqueueReconcile(ctx, payload)
	if err != nil {
		log.Error().Err(err).Msg("encolar conciliación")
		return 1
	}
	log.Info().Str("task_id", info.ID).Str("queue", info.Queue).Msg("conciliación encolada")
	return 0
}
