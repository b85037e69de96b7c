package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMaskPassword(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"", ""},
		{"host=db user=app password=secret dbname=flows", "host=db user=app password=*** dbname=flows"},
		{"postgres://app:secret@db:5432/flows?sslmode=disable", "postgres://app:***@db:5432/flows?sslmode=disable"},
		{"postgres://app@db:5432/flows", "postgres://app@db:5432/flows"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, MaskPassword(tt.in))
	}
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, ParseLevel("DEBUG"))
	assert.Equal(t, slog.LevelWarn, ParseLevel("warn"))
	assert.Equal(t, slog.LevelInfo, ParseLevel("verbose"))
}

func TestLogErrorCarriesRequestID(t *testing.T) {
	var buf bytes.Buffer
	prev := slog.Default()
	slog.SetDefault(New(&buf, "info", "json"))
	t.Cleanup(func() { slog.SetDefault(prev) })

	ctx := ContextWithRequestID(context.Background(), "req-1")
	LogError(ctx, errors.New("boom"), "toggle")

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "req-1", line["request_id"])
	assert.Equal(t, "toggle", line["operation"])
	assert.Equal(t, "boom", line["error"])
	assert.Equal(t, "", RequestIDFromContext(context.Background()))
}
