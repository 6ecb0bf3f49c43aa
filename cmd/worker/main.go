package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/hibiken/asynq"
	"golang.org/x/sync/errgroup"

	"github.com/jhoicas/inventario-movimientos/internal/bootstrap"
	"github.com/jhoicas/inventario-movimientos/internal/infrastructure/messaging"
	"github.com/jhoicas/inventario-movimientos/internal/jobs"
	"github.com/jhoicas/inventario-movimientos/pkg/config"
	"github.com/jhoicas/inventario-movimientos/pkg/logger"
)

// Worker: tareas Asynq (conciliación programada) y relay del outbox hacia Kafka.
func main() {
	os.Exit(run())
}

// run devuelve el código de salida; los defer se ejecutan antes de os.Exit.
func run() int {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "cargar configuración: %v\n", err)
		return 1
	}

	log := logger.New(logger.Config{
		Env:     cfg.App.Env,
		Level:   cfg.App.LogLevel,
		Service: cfg.App.Name,
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	svc, err := bootstrap.New(ctx, cfg, log)
	if err != nil {
		log.Error().Err(err).Msg("inicializar dependencias")
		return 1
	}
	defer svc.Close()

	var cron []jobs.CronRegistration
	if cfg.Reconcile.Cron != "" {
		task, err := jobs.NewReconcileTask(jobs.ReconcilePayload{})
		if err != nil {
			log.Error().Err(err).Msg("tarea de conciliación")
			return 1
		}
		cron = append(cron, jobs.CronRegistration{
			Spec:    cfg.Reconcile.Cron,
			Task:    task,
			Options: []asynq.Option{asynq.MaxRetry(3)},
		})
	}

	reconcileJob := jobs.NewReconcileJob(svc.Reconciliation, log.Component("reconcile-job"))
	worker, err := jobs.NewWorker(jobs.WorkerConfig{
		RedisOpts:   bootstrap.AsynqRedisOpt(cfg.Redis),
		Concurrency: cfg.Worker.Concurrency,
		Logger:      log.Component("worker"),
		Handlers: []jobs.TaskHandler{
			{Type: jobs.TaskInventoryReconcile, Handler: reconcileJob.Handle},
		},
		Cron: cron,
	})
	if err != nil {
		log.Error().Err(err).Str("cron", cfg.Reconcile.Cron).Msg("configurar worker")
		return 1
	}

	log.Info().
		Str("env", cfg.App.Env).
		Str("cron", cfg.Reconcile.Cron).
		Bool("kafka", cfg.Kafka.Enabled).
		Msg("iniciando worker")

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return worker.Run(gctx)
	})

	if cfg.Kafka.Enabled {
		producer := messaging.NewProducer(
			messaging.NewKafkaWriter(cfg.Kafka.Brokers),
			messaging.DefaultBreakerConfig(),
			log.Component("kafka"),
		).RouteTo(cfg.Kafka.Topic)
		defer producer.Close()

		relay := messaging.NewRelay(svc.Outbox, producer, svc.Metrics, messaging.RelayConfig{
			PollInterval: cfg.Outbox.PollInterval,
			BatchSize:    cfg.Outbox.BatchSize,
		}, log.Component("outbox"))
		g.Go(func() error {
			return relay.Run(gctx)
		})
	} else {
		log.Warn().Msg("KAFKA_ENABLED desactivado: los eventos quedan pendientes en outbox_events")
	}

	if cfg.Worker.MetricsAddr != "" {
		metricsApp := fiber.New(fiber.Config{DisableStartupMessage: true})
		metricsApp.Get("/metrics", adaptor.HTTPHandler(svc.Metrics.Handler()))
		g.Go(func() error {
			return metricsApp.Listen(cfg.Worker.MetricsAddr)
		})
		g.Go(func() error {
			<-gctx.Done()
			return metricsApp.Shutdown()
		})
	}

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		log.Error().Err(err).Msg("worker finalizado con error")
		return 1
	}
	log.Info().Msg("worker detenido")
	return 0
}
