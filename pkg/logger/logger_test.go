package logger_test

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/inventario-movimientos/pkg/logger"
)

func TestParseLevel(t *testing.T) {
	tests := map[string]zerolog.Level{
		"debug":       zerolog.DebugLevel,
		" WARN ":      zerolog.WarnLevel,
		"error":       zerolog.ErrorLevel,
		"desconocido": zerolog.InfoLevel,
		"":            zerolog.InfoLevel,
	}
	for in, want := range tests {
		assert.Equal(t, want, logger.ParseLevel(in), in)
	}
}

func TestNew_JSONConServicioYComponente(t *testing.T) {
	var buf bytes.Buffer
	l := logger.New(logger.Config{Env: "production", Level: "info", Service: "inventario", Out: &buf})

	c := l.Component("outbox")
	c.Info().Int("batch", 3).Msg("eventos publicados")

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "inventario", line["service"])
	assert.Equal(t, "outbox", line["component"])
	assert.Equal(t, "eventos publicados", line["message"])
	assert.EqualValues(t, 3, line["batch"])
}

func TestNew_FiltraPorNivel(t *testing.T) {
	var buf bytes.Buffer
	l := logger.New(logger.Config{Env: "production", Level: "warn", Out: &buf})

	l.Info().Msg("no se escribe")
	assert.Zero(t, buf.Len())

	l.Warn().Msg("se escribe")
	assert.Contains(t, buf.String(), "se escribe")
	assert.Equal(t, zerolog.WarnLevel, l.Component("ledger").GetLevel())
}
