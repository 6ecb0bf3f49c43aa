package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"

	_ "github.com/jhoicas/inventario-movimientos/docs"
	"github.com/jhoicas/inventario-movimientos/internal/bootstrap"
	httpRouter "github.com/jhoicas/inventario-movimientos/internal/interfaces/http"
	"github.com/jhoicas/inventario-movimientos/pkg/config"
	"github.com/jhoicas/inventario-movimientos/pkg/logger"
)

// @title                       Inventario API - movimientos
// @version                     1.0
// @description                 Ledger de movimientos de inventario con stock en caché y conciliación.
// @BasePath                    /
// @securityDefinitions.apikey  Bearer
// @in                          header
// @name                        Authorization
func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:     cfg.App.Env,
		Level:   cfg.App.LogLevel,
		Service: cfg.App.Name,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Bool("auth_dev_mode", cfg.Auth.DevMode).
		Msg("iniciando aplicación")
	if cfg.Auth.DevMode {
		log.Warn().Msg("AUTH_DEV_MODE activo: las rutas de movimientos aceptan peticiones sin token")
	}

	ctx := context.Background()
	svc, err := bootstrap.New(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("inicializar dependencias")
	}
	defer svc.Close()

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(cors.New())
	app.Use(httpRouter.RequestLogger(log.Component("http"), svc.Metrics))

	// Swagger UI en local: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    "Inventario API",
	}))

	httpRouter.Router(app, httpRouter.RouterDeps{
		Movements:      svc.Movements,
		StockCards:     svc.StockCards,
		Reconciliation: svc.Reconciliation,
		Auth:           svc.Auth,
		Products:       svc.Products,
		Categories:     svc.Categories,
		Warehouses:     svc.Warehouses,
		Reports:        svc.Reports,
		MetricsHandler: svc.Metrics.Handler(),
		JWTSecret:      cfg.JWT.Secret,
		DevMode:        cfg.Auth.DevMode,
		ServiceName:    cfg.App.Name,
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
}
