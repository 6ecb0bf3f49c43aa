package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/inventario-movimientos/pkg/config"
)

func TestLoad_ValoresPorDefecto(t *testing.T) {
	t.Setenv("JWT_SECRET", "secreto")

	cfg, err := config.Load()

	require.NoError(t, err)
	assert.Equal(t, "development", cfg.App.Env)
	assert.Equal(t, 8080, cfg.HTTP.Port)
	assert.Equal(t, 10*time.Second, cfg.HTTP.ReadTimeout)
	assert.Equal(t, 4, cfg.Reconcile.Concurrency)
	assert.Equal(t, 10*time.Minute, cfg.Reconcile.LockTTL)
	assert.False(t, cfg.Kafka.Enabled)
	assert.True(t, cfg.DB.AutoMigrate)
	assert.Equal(t, 5, cfg.Worker.Concurrency)
	assert.Equal(t, ":9091", cfg.Worker.MetricsAddr)
}

func TestLoad_VariablesDeEntorno(t *testing.T) {
	t.Setenv("JWT_SECRET", "secreto")
	t.Setenv("HTTP_PORT", "9090")
	t.Setenv("HTTP_READ_TIMEOUT", "30")
	t.Setenv("RECONCILE_LOCK_TTL", "2m")
	t.Setenv("KAFKA_ENABLED", "true")
	t.Setenv("KAFKA_BROKERS", "k1:9092, k2:9092")
	t.Setenv("AUTH_DEV_MODE", "true")

	cfg, err := config.Load()

	require.NoError(t, err)
	assert.Equal(t, 9090, cfg.HTTP.Port)
	assert.Equal(t, 30*time.Second, cfg.HTTP.ReadTimeout)
	assert.Equal(t, 2*time.Minute, cfg.Reconcile.LockTTL)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.Kafka.Brokers)
	assert.True(t, cfg.Auth.DevMode)
}

func TestLoad_SinSecretoJWTFalla(t *testing.T) {
	t.Setenv("JWT_SECRET", "")
	t.Setenv("AUTH_DEV_MODE", "false")

	_, err := config.Load()

	assert.Error(t, err)
}

func TestDBConfig_DSNEscapaContrasena(t *testing.T) {
	c := config.DBConfig{Host: "db", Port: 5432, User: "app", Password: "p@ss:word", DBName: "inv", SSLMode: "disable"}

	assert.Equal(t, "postgres://app:p%40ss%3Aword@db:5432/inv?sslmode=disable", c.DSN())
	assert.Equal(t, c.DSN(), c.ConnectionString())

	c.DatabaseURL = "postgres://otra"
	assert.Equal(t, "postgres://otra", c.ConnectionString())
}
