package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeLine(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &out))
	return out
}

func TestLogger_ContextFields(t *testing.T) {
	var buf bytes.Buffer
	l := New(Options{ServiceName: "stockflow", Output: &buf})

	ctx := l.WithRequestID(context.Background(), "rid-1")
	ctx = l.WithUserID(ctx, "user-1")
	l.Info(ctx, "hello")

	line := decodeLine(t, &buf)
	assert.Equal(t, "hello", line["message"])
	assert.Equal(t, "rid-1", line["request_id"])
	assert.Equal(t, "user-1", line["user_id"])
	assert.Equal(t, "stockflow", line["service"])
	assert.Equal(t, "info", line["level"])
	assert.NotEmpty(t, line["ts"])
}

func TestLogger_Error(t *testing.T) {
	var buf bytes.Buffer
	l := New(Options{Output: &buf})

	l.Error(context.Background(), "boom", errors.New("db down"))

	line := decodeLine(t, &buf)
	assert.Equal(t, "error", line["level"])
	assert.Equal(t, "db down", line["error"])
}

func TestLogger_LevelFilters(t *testing.T) {
	var buf bytes.Buffer
	l := New(Options{Output: &buf, Level: zerolog.WarnLevel})

	l.Info(context.Background(), "dropped")
	assert.Zero(t, buf.Len())

	l.Warn(context.Background(), "kept")
	assert.NotZero(t, buf.Len())
}

func TestLogger_WithFields(t *testing.T) {
	var buf bytes.Buffer
	l := New(Options{Output: &buf})

	ctx := l.WithFields(context.Background(), map[string]any{"order_id": "o-1", "step": "insert_items"})
	l.Info(ctx, "step done")

	line := decodeLine(t, &buf)
	assert.Equal(t, "o-1", line["order_id"])
	assert.Equal(t, "insert_items", line["step"])
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zerolog.InfoLevel, ParseLevel(""))
	assert.Equal(t, zerolog.DebugLevel, ParseLevel(" DEBUG "))
	assert.Equal(t, zerolog.ErrorLevel, ParseLevel("error"))
	assert.Equal(t, zerolog.InfoLevel, ParseLevel("loud"))
}
