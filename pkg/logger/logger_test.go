package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, ParseLevel("debug"))
	assert.Equal(t, slog.LevelWarn, ParseLevel("WARNING"))
	assert.Equal(t, slog.LevelError, ParseLevel("ERROR"))
	assert.Equal(t, slog.LevelInfo, ParseLevel("verbose"))
}

func TestContextFields(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter("INFO", &buf)

	log.WithChat("237670000000@s.whatsapp.net").WithExternalID("abc123").WithError(errors.New("boom")).Info("Deposit failed")
	log.Debug("hidden")

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "Deposit failed", line["msg"])
	assert.Equal(t, "237670000000@s.whatsapp.net", line["chat"])
	assert.Equal(t, "abc123", line["external_id"])
	assert.Equal(t, "boom", line["error"])
}
