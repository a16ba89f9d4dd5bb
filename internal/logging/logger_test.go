package logging

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSinkWritesOneEventPerLine(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Level: "info", Output: &buf})

	sink := NewSink(logger, "hierarchy")
	sink.LogLine("[Enemy] app.Collider (10ab0)")
	sink.LogLine("app.Mesh (10cd0)")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)

	var event map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &event))
	assert.Equal(t, "[Enemy] app.Collider (10ab0)", event["message"])
	assert.Equal(t, "hierarchy", event["component"])
	assert.Equal(t, "info", event["level"])
}

func TestSinkIgnoresConfiguredLevel(t *testing.T) {
	for _, level := range []string{"warn", "error"} {
		var buf bytes.Buffer
		logger := New(Config{Level: level, Output: &buf})

		NewSink(logger, "hierarchy").LogLine("[Enemy] app.Mesh (deadbeef)")
		logger.Info().Msg("filtered")

		assert.Contains(t, buf.String(), "[Enemy] app.Mesh (deadbeef)", "level %s", level)
		assert.NotContains(t, buf.String(), "filtered", "level %s", level)
	}
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Level: "warn", Output: &buf})

	logger.Info().Msg("hidden")
	logger.Warn().Msg("shown")

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "shown")
}

func TestOpenFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "explorer.log")

	logger, closer, err := OpenFile(Config{Level: "info"}, path)
	require.NoError(t, err)
	logger.Info().Msg("hello")
	require.NoError(t, closer.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "hello")

	_, _, err = OpenFile(Config{}, filepath.Join(t.TempDir(), "missing", "x.log"))
	assert.Error(t, err)
}
