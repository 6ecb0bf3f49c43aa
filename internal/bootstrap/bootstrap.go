// Package bootstrap arma las dependencias compartidas por cmd/api, cmd/worker y cmd/reconcile.
package bootstrap

import (
	"context"
	"fmt"
	"time"

	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/jhoicas/inventario-movimientos/internal/application/auth"
	"github.com/jhoicas/inventario-movimientos/internal/application/inventory"
	"github.com/jhoicas/inventario-movimientos/internal/application/usecase"
	"github.com/jhoicas/inventario-movimientos/internal/infrastructure/metrics"
	infrapdf "github.com/jhoicas/inventario-movimientos/internal/infrastructure/pdf"
	"github.com/jhoicas/inventario-movimientos/internal/infrastructure/postgres"
	"github.com/jhoicas/inventario-movimientos/internal/infrastructure/redislock"
	"github.com/jhoicas/inventario-movimientos/pkg/config"
	"github.com/jhoicas/inventario-movimientos/pkg/logger"
)

// Services casos de uso e infraestructura listos para usar.
type Services struct {
	Pool           *pgxpool.Pool
	Redis          *redis.Client
	Metrics        *metrics.Metrics
	Movements      *inventory.MovementUseCase
	Reconciliation *inventory.ReconciliationUseCase
	StockCards     *inventory.StockCardUseCase
	Auth           *auth.AuthUseCase
	Products       *usecase.ProductUseCase
	Categories     *usecase.CategoryUseCase
	Warehouses     *usecase.WarehouseUseCase
	Reports        *usecase.ReportUseCase
	Outbox         *postgres.OutboxBatchRunner
}

// New conecta PostgreSQL (aplicando migraciones si DB.AutoMigrate) y Redis, y construye los casos de uso.
// Redis caído no impide arrancar: el bloqueo de la conciliación fallará hasta que vuelva.
func New(ctx context.Context, cfg *config.Config, log *logger.Logger) (*Services, error) {
	pool, err := postgres.NewPool(ctx, cfg.DB, cfg.App.Name)
	if err != nil {
		return nil, fmt.Errorf("conexión a PostgreSQL: %w", err)
	}
	if cfg.DB.AutoMigrate {
		if err := postgres.Migrate(ctx, cfg.DB.ConnectionString(), log.Component("migrate")); err != nil {
			pool.Close()
			return nil, fmt.Errorf("migraciones: %w", err)
		}
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		log.Warn().Err(err).Str("addr", cfg.Redis.Addr).Msg("Redis no disponible")
	}

	m := metrics.New()
	productRepo := postgres.NewProductRepository(pool)
	movementRepo := postgres.NewInventoryMovementRepository(pool)
	warehouseRepo := postgres.NewWarehouseRepository(pool)
	categoryRepo := postgres.NewCategoryRepository(pool)
	txRunner := postgres.NewTxRunner(pool)
	validator := inventory.NewValidator(productRepo, movementRepo, warehouseRepo)

	ledger := inventory.NewMovementUseCase(txRunner, movementRepo, productRepo, validator, m, log.Component("ledger"))
	reconciliation := inventory.NewReconciliationUseCase(
		txRunner, productRepo, ledger, redislock.New(rdb), m,
		inventory.ReconciliationConfig{
			Concurrency: cfg.Reconcile.Concurrency,
			LockTTL:     cfg.Reconcile.LockTTL,
		},
		log.Component("reconciliation"),
	)

	return &Services{
		Pool:           pool,
		Redis:          rdb,
		Metrics:        m,
		Movements:      ledger,
		Reconciliation: reconciliation,
		StockCards:     inventory.NewStockCardUseCase(ledger, infrapdf.NewMarotoPDFGenerator()),
		Auth: auth.NewAuthUseCase(postgres.NewUserRepository(pool), auth.JWTConfig{
			Secret:     cfg.JWT.Secret,
			ExpMinutes: cfg.JWT.Expiration,
			Issuer:     cfg.JWT.Issuer,
		}),
		Products:   usecase.NewProductUseCase(productRepo, categoryRepo),
		Categories: usecase.NewCategoryUseCase(categoryRepo),
		Warehouses: usecase.NewWarehouseUseCase(warehouseRepo),
		Reports:    usecase.NewReportUseCase(postgres.NewReportRepository(pool)),
		Outbox:     postgres.NewOutboxBatchRunner(pool),
	}, nil
}

// AsynqRedisOpt opciones de conexión de Asynq a partir de la configuración de Redis.
func AsynqRedisOpt(cfg config.RedisConfig) asynq.RedisClientOpt {
	return asynq.RedisClientOpt{Addr: cfg.Addr, Password: cfg.Password, DB: cfg.DB}
}

// Close libera conexiones.
func (s *Services) Close() {
	if s.Redis != nil {
		_ = s.Redis.Close()
	}
	if s.Pool != nil {
		s.Pool.Close()
	}
}
