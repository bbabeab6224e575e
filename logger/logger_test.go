package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLevelFilter(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithWriter(&buf, "warn", false)

	l.Info().Msg("dropped")
	require.Zero(t, buf.Len())

	l.Warn().Str("component", "checkout").Msg("kept")
	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	require.Equal(t, "warn", line["level"])
	require.Equal(t, "checkout", line["component"])
	require.Contains(t, line, "time")
}

func TestUnknownLevelFallsBackToInfo(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithWriter(&buf, "chatty", false)
	l.Debug().Msg("dropped")
	l.Info().Msg("kept")
	require.Contains(t, buf.String(), "kept")
	require.NotContains(t, buf.String(), "dropped")
}
