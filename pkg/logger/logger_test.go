package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want Level
	}{
		{"debug", LevelDebug},
		{" INFO ", LevelInfo},
		{"warning", LevelWarn},
		{"warn", LevelWarn},
		{"error", LevelError},
		{"nonsense", LevelInfo},
		{"", LevelInfo},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ParseLevel(tt.in), tt.in)
	}
}

func TestLogger_WritesJSONWithFields(t *testing.T) {
	var buf bytes.Buffer
	log := New(Options{Output: &buf, Level: LevelInfo})

	log.With(Component("registry")).Info("record added", RecordID("202312345678"), Count(1))

	line := strings.TrimSpace(buf.String())
	require.NotEmpty(t, line)

	var entry map[string]any
	require.NoError(t, json.Unmarshal([]byte(line), &entry))
	assert.Equal(t, "INFO", entry["level"])
	assert.Equal(t, "record added", entry["message"])
	assert.Equal(t, "registry", entry["component"])
	assert.Equal(t, "202312345678", entry["record_id"])
	assert.EqualValues(t, 1, entry["count"])
	assert.NotEmpty(t, entry["timestamp"])
}

func TestLogger_RespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	log := New(Options{Output: &buf, Level: LevelWarn})

	log.Debug("hidden")
	log.Info("hidden")
	log.Warn("shown", Err(errors.New("disk full")))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 1)
	assert.Contains(t, lines[0], "disk full")
}

func TestFromContext(t *testing.T) {
	var buf bytes.Buffer
	log := New(Options{Output: &buf}).WithSessionID("abc")

	ctx := WithContext(context.Background(), log)
	FromContext(ctx).Info("hello")
	assert.Contains(t, buf.String(), `"session_id":"abc"`)

	assert.NotPanics(t, func() {
		FromContext(context.Background()).Info("dropped")
	})
}
