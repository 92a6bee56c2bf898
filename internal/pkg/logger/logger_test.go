package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_JSONFormat(t *testing.T) {
	var buf bytes.Buffer
	log := New(&Config{Level: "info", Format: "json", Output: &buf})

	log.Info("hello", "key", "value")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "hello", entry["msg"])
	assert.Equal(t, "value", entry["key"])
}

func TestNew_TextFormat(t *testing.T) {
	var buf bytes.Buffer
	log := New(&Config{Level: "info", Format: "text", Output: &buf})

	log.Info("hello")

	assert.Contains(t, buf.String(), "msg=hello")
}

func TestNew_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	log := New(&Config{Level: "error", Format: "json", Output: &buf})

	log.Debug("debug message")
	log.Info("info message")
	assert.Empty(t, buf.String())

	log.Error("error message")
	assert.Contains(t, buf.String(), "error message")
}

func TestNew_NilConfig(t *testing.T) {
	log := New(nil)

	assert.NotNil(t, log)
}

func TestContextHandler_AddsCorrelation(t *testing.T) {
	var buf bytes.Buffer
	log := New(&Config{Level: "info", Format: "json", Output: &buf})

	ctx := WithRequestID(context.Background(), "req-123")
	ctx = WithIdempotencyKey(ctx, "idem-456")

	log.InfoContext(ctx, "posting")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "req-123", entry["request_id"])
	assert.Equal(t, "idem-456", entry["idempotency_key"])
}

func TestContextHandler_NoCorrelation(t *testing.T) {
	var buf bytes.Buffer
	log := New(&Config{Level: "info", Format: "json", Output: &buf})

	log.InfoContext(context.Background(), "plain")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.NotContains(t, entry, "request_id")
	assert.NotContains(t, entry, "idempotency_key")
}

func TestContextHelpers(t *testing.T) {
	ctx := context.Background()

	assert.Empty(t, GetRequestID(ctx))
	assert.Empty(t, GetIdempotencyKey(ctx))

	ctx = WithRequestID(ctx, "req-1")
	ctx = WithIdempotencyKey(ctx, "key-1")

	assert.Equal(t, "req-1", GetRequestID(ctx))
	assert.Equal(t, "key-1", GetIdempotencyKey(ctx))
}
