package logger_test

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/stock-outlets-api/pkg/logger"
)

func TestNew_JSONConServicioYNivel(t *testing.T) {
	var buf bytes.Buffer
	l := logger.New(logger.Config{Env: "production", Level: "warn", Service: "stock", Output: &buf})

	l.Info().Msg("descartado")
	assert.Zero(t, buf.Len(), "info queda bajo el nivel warn")

	l.Warn().Str("material_id", "M").Msg("rechazo")
	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "stock", entry["service"])
	assert.Equal(t, "M", entry["material_id"])
	assert.Equal(t, "warn", entry["level"])
}

func TestComponent_AgregaCampo(t *testing.T) {
	var buf bytes.Buffer
	l := logger.New(logger.Config{Env: "production", Level: "nivel-raro", Output: &buf})

	c := l.Component("dispatch")
	c.Info().Msg("ok")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "dispatch", entry["component"])
	assert.Equal(t, "info", entry["level"], "un nivel inválido cae en info")
}
