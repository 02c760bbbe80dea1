package logging

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, LevelInfo, cfg.Level)
	assert.False(t, cfg.Pretty)
	assert.NotNil(t, cfg.Output)
}

func TestSetup_Levels(t *testing.T) {
	defer zerolog.SetGlobalLevel(zerolog.InfoLevel)

	tests := []struct {
		level     LogLevel
		debugSeen bool
		warnSeen  bool
	}{
		{LevelDebug, true, true},
		{LevelInfo, false, true},
		{LevelWarn, false, true},
		{LevelError, false, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.level), func(t *testing.T) {
			buf := &bytes.Buffer{}
			logger, err := Setup(Config{Level: tt.level, Output: buf})
			require.NoError(t, err)

			logger.Debug().Msg("debug line")
			logger.Warn().Msg("warn line")

			assert.Equal(t, tt.debugSeen, bytes.Contains(buf.Bytes(), []byte("debug line")))
			assert.Equal(t, tt.warnSeen, bytes.Contains(buf.Bytes(), []byte("warn line")))
		})
	}
}

func TestSetup_RejectsUnknownLevel(t *testing.T) {
	_, err := Setup(Config{Level: "verbose", Output: &bytes.Buffer{}})
	assert.Error(t, err)
}

func TestSetup_EmptyLevelMeansInfo(t *testing.T) {
	defer zerolog.SetGlobalLevel(zerolog.InfoLevel)

	buf := &bytes.Buffer{}
	logger, err := Setup(Config{Output: buf})
	require.NoError(t, err)

	logger.Info().Msg("hello")
	assert.Contains(t, buf.String(), "hello")
}

func TestSetup_InstallsGlobalLogger(t *testing.T) {
	defer zerolog.SetGlobalLevel(zerolog.InfoLevel)

	buf := &bytes.Buffer{}
	_, err := Setup(Config{Level: LevelInfo, Output: buf})
	require.NoError(t, err)

	log.Info().Msg("via global")
	assert.Contains(t, buf.String(), "via global")
}

func TestNewLogger_Component(t *testing.T) {
	defer zerolog.SetGlobalLevel(zerolog.InfoLevel)

	buf := &bytes.Buffer{}
	_, err := Setup(Config{Level: LevelInfo, Output: buf})
	require.NoError(t, err)

	logger := NewLogger("pagination")
	logger.Info().Msg("component line")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "pagination", entry["component"])
	assert.Equal(t, "component line", entry["message"])
}

func TestSetup_Pretty(t *testing.T) {
	defer zerolog.SetGlobalLevel(zerolog.InfoLevel)

	buf := &bytes.Buffer{}
	logger, err := Setup(Config{Level: LevelInfo, Pretty: true, Output: buf})
	require.NoError(t, err)

	logger.Info().Msg("pretty line")
	assert.Contains(t, buf.String(), "pretty line")
	assert.NotContains(t, buf.String(), `"message"`)
}
