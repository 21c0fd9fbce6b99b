package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name   string
		config *Config
	}{
		{name: "default config", config: nil},
		{name: "json config", config: &Config{Level: "debug", Format: "json", Output: &bytes.Buffer{}}},
		{name: "console config", config: &Config{Level: "info", Format: "console", Output: &bytes.Buffer{}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			log := New(tt.config)
			assert.NotNil(t, log)
		})
	}
}

func TestLogger_JSONOutput(t *testing.T) {
	buf := &bytes.Buffer{}
	log := New(&Config{Level: "info", Format: "json", Output: buf})

	log.Error().
		Err(errors.New("put object failed")).
		Str("key", "alice/report.pdf").
		Msg("upload failed")

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))

	assert.Equal(t, "error", entry["level"])
	assert.Equal(t, "upload failed", entry["message"])
	assert.Equal(t, "put object failed", entry["error"])
	assert.Equal(t, "alice/report.pdf", entry["key"])
	assert.NotEmpty(t, entry["time"])
}

func TestLogger_Levels(t *testing.T) {
	tests := []struct {
		name     string
		level    string
		debug    bool
		expected bool
	}{
		{name: "debug level logs debug", level: "debug", debug: true, expected: true},
		{name: "info level skips debug", level: "info", debug: true, expected: false},
		{name: "unknown level falls back to info", level: "loud", debug: false, expected: true},
		{name: "error level skips info", level: "error", debug: false, expected: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := &bytes.Buffer{}
			log := New(&Config{Level: tt.level, Format: "json", Output: buf})

			if tt.debug {
				log.Debug().Msg("debug message")
			} else {
				log.Info().Msg("info message")
			}

			if tt.expected {
				assert.NotEmpty(t, buf.String())
			} else {
				assert.Empty(t, buf.String())
			}
		})
	}
}
