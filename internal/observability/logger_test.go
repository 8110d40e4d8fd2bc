// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package observability

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want zerolog.Level
	}{
		{"trace", zerolog.TraceLevel},
		{"DEBUG", zerolog.DebugLevel},
		{"", zerolog.InfoLevel},
		{"warning", zerolog.WarnLevel},
		{"error", zerolog.ErrorLevel},
		{"off", zerolog.Disabled},
		{"bogus", zerolog.InfoLevel},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseLevel(tt.in))
		})
	}
}

func TestNewLoggerJSON(t *testing.T) {
	var buf bytes.Buffer
	log := newLogger(LoggingConfig{Level: "info", Format: "json"}, &buf)

	log.Debug().Msg("hidden")
	log.Info().Str("endpoint", "author").Msg("fetched")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "fetched", entry["message"])
	assert.Equal(t, "author", entry["endpoint"])
	assert.Equal(t, "info", entry["level"])
}

func TestNewLoggerConsole(t *testing.T) {
	var buf bytes.Buffer
	log := newLogger(LoggingConfig{Level: "debug", Format: "console"}, &buf)

	log.Debug().Msg("cache hit")
	assert.Contains(t, buf.String(), "cache hit")
}
