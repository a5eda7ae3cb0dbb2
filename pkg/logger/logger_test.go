package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeLines(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()
	var out []map[string]any
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		var m map[string]any
		require.NoError(t, json.Unmarshal([]byte(line), &m))
		out = append(out, m)
	}
	return out
}

func TestLogger_JSONFieldsAndLevel(t *testing.T) {
	var buf bytes.Buffer
	log := New(Options{Output: &buf, Level: LevelInfo})

	log.Debug("hidden")
	log.With(Component("gradebook")).Info("registered",
		Email("a@x.com"), CourseName("Math"), Grade(3.5), Err(errors.New("boom")))

	lines := decodeLines(t, &buf)
	require.Len(t, lines, 1)
	entry := lines[0]
	assert.Equal(t, "INFO", entry["level"])
	assert.Equal(t, "registered", entry["message"])
	assert.Equal(t, "gradebook", entry["component"])
	assert.Equal(t, "a@x.com", entry["email"])
	assert.Equal(t, "Math", entry["course_name"])
	assert.Equal(t, 3.5, entry["grade"])
	assert.Equal(t, "boom", entry["error"])
	assert.Contains(t, entry, "timestamp")
}

func TestLogger_WithLevel(t *testing.T) {
	var buf bytes.Buffer
	log := New(Options{Output: &buf, Level: LevelError})

	log.Info("dropped")
	log.WithLevel(LevelDebug).Debug("kept")

	lines := decodeLines(t, &buf)
	require.Len(t, lines, 1)
	assert.Equal(t, "kept", lines[0]["message"])
	assert.Equal(t, LevelDebug, log.WithLevel(LevelDebug).Level())
}

func TestLogger_ConsoleFormat(t *testing.T) {
	var buf bytes.Buffer
	log := New(Options{Output: &buf, Level: LevelInfo, Format: FormatConsole})
	log.Info("hello", String("k", "v"))

	out := buf.String()
	assert.Contains(t, out, "INFO")
	assert.Contains(t, out, "hello")
	assert.Contains(t, out, `"k": "v"`)
}

func TestParseLevelAndFormat(t *testing.T) {
	assert.Equal(t, LevelDebug, ParseLevel("debug"))
	assert.Equal(t, LevelWarn, ParseLevel(" WARNING "))
	assert.Equal(t, LevelInfo, ParseLevel("nonsense"))
	assert.Equal(t, "ERROR", LevelError.String())

	assert.Equal(t, FormatConsole, ParseFormat("Console"))
	assert.Equal(t, FormatJSON, ParseFormat(""))
}
