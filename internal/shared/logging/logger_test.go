package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    slog.Level
		wantErr bool
	}{
		{name: "empty defaults to info", input: "", want: slog.LevelInfo},
		{name: "debug", input: "debug", want: slog.LevelDebug},
		{name: "upper case warn", input: "WARN", want: slog.LevelWarn},
		{name: "error", input: "error", want: slog.LevelError},
		{name: "unknown level", input: "verbose", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseLevel(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.want, got)
		})
	}
}

func TestNewLogger_RejectsUnknownFormat(t *testing.T) {
	_, err := NewLogger("info", "xml")
	require.Error(t, err)

	_, err = NewLogger("loud", "json")
	require.Error(t, err)

	logger, err := NewLogger("debug", "text")
	require.NoError(t, err)
	require.NotNil(t, logger)
}

func TestSlogLogger_JSONOutput(t *testing.T) {
	var buf bytes.Buffer
	logger := newSlogLogger(&buf, slog.LevelInfo, "json")

	logger.Debug("hidden")
	logger.Info("Stage started", "stage", "MAP", "total", 3)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 1)

	var record map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &record))
	require.Equal(t, "Stage started", record["msg"])
	require.Equal(t, "MAP", record["stage"])
	require.EqualValues(t, 3, record["total"])
	require.True(t, strings.HasSuffix(record["time"].(string), "Z"))
}

func TestSlogLogger_TextOutput(t *testing.T) {
	var buf bytes.Buffer
	logger := newSlogLogger(&buf, slog.LevelDebug, "text")

	logger.Debug("worker done", "worker_id", 2)

	out := buf.String()
	require.Contains(t, out, "level=DEBUG")
	require.Contains(t, out, "worker_id=2")
}

func TestNopLogger_DiscardsMessages(t *testing.T) {
	logger := NewNopLogger()
	logger.Debug("a")
	logger.Info("b")
	logger.Warn("c")
	logger.Error("d")
}
