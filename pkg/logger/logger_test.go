package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogger_JSONOutput(t *testing.T) {
	var buf bytes.Buffer
	Initialize(Config{Level: "debug", Format: "json", Output: &buf})
	t.Cleanup(func() { globalLogger = nil })

	Info("recipe created", map[string]interface{}{"recipe_id": 7})

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "info", entry["level"])
	assert.Equal(t, "recipe created", entry["message"])
	assert.Equal(t, float64(7), entry["recipe_id"])
	assert.Contains(t, entry["caller"], "logger_test.go")
}

func TestLogger_LevelFilter(t *testing.T) {
	var buf bytes.Buffer
	Initialize(Config{Level: "warn", Format: "json", Output: &buf})
	t.Cleanup(func() { globalLogger = nil })

	Debug("hidden")
	Info("hidden too")
	assert.Empty(t, buf.String())

	Error("visible", errors.New("boom"))
	assert.Contains(t, buf.String(), "boom")
}

func TestLogger_WithContext(t *testing.T) {
	var buf bytes.Buffer
	Initialize(Config{Level: "info", Format: "json", Output: &buf})
	t.Cleanup(func() { globalLogger = nil })

	WithContext(map[string]interface{}{"request_id": "abc"}).Warn("slow request")

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "abc", entry["request_id"])
	assert.Equal(t, "warn", entry["level"])
}

func TestParseLogLevel_Default(t *testing.T) {
	assert.Equal(t, parseLogLevel("info"), parseLogLevel("nonsense"))
}
