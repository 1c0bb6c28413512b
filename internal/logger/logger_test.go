package logger_test

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ragindex/mcp-server/internal/logger"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, log.DebugLevel, logger.ParseLevel("debug"))
	assert.Equal(t, log.WarnLevel, logger.ParseLevel(" WARN "))
	assert.Equal(t, log.WarnLevel, logger.ParseLevel("warning"))
	assert.Equal(t, log.ErrorLevel, logger.ParseLevel("error"))
	assert.Equal(t, log.InfoLevel, logger.ParseLevel("verbose"))
	assert.Equal(t, log.InfoLevel, logger.ParseLevel(""))
}

func TestNew_FiltersByLevel(t *testing.T) {
	var buf bytes.Buffer
	l := logger.New(&buf, "warn", false)

	l.Info("hidden")
	l.Warn("shown")

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "shown")
}

func TestNew_JSON(t *testing.T) {
	var buf bytes.Buffer
	l := logger.New(&buf, "info", true)

	l.Info("indexed", "chunks", 3)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "indexed", entry["msg"])
	assert.Equal(t, float64(3), entry["chunks"])
}
