package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitWithWriter_JSONAndLevel(t *testing.T) {
	var buf bytes.Buffer
	InitWithWriter("warn", "json", &buf)

	Logger.Info().Msg("hidden")
	Logger.Warn().Str("k", "v").Msg("shown")

	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	require.Len(t, lines, 1)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(lines[0], &entry))
	assert.Equal(t, "warn", entry["level"])
	assert.Equal(t, "shown", entry["message"])
	assert.Equal(t, "v", entry["k"])
}

func TestInitWithWriter_BadLevelFallsBackToInfo(t *testing.T) {
	var buf bytes.Buffer
	InitWithWriter("loud", "json", &buf)

	Logger.Debug().Msg("debug")
	Logger.Info().Msg("info")

	assert.NotContains(t, buf.String(), `"debug"`)
	assert.Contains(t, buf.String(), `"info"`)
}

func TestWithRequestID(t *testing.T) {
	var buf bytes.Buffer
	InitWithWriter("info", "json", &buf)

	l := WithRequestID("req-1")
	l.Info().Msg("hello")

	assert.Contains(t, buf.String(), `"request_id":"req-1"`)
}
