package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_Level(t *testing.T) {
	assert.Equal(t, zerolog.DebugLevel, New(false, "debug").GetLevel())
	assert.Equal(t, zerolog.InfoLevel, New(true, "verbose").GetLevel())
}

func TestBuild_Level(t *testing.T) {
	var buf bytes.Buffer
	log := build(&buf, "warn")

	log.Info().Msg("dropped")
	assert.Zero(t, buf.Len())

	log.Warn().Msg("kept")
	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "kept", entry["message"])
	assert.Equal(t, "adherence-api", entry["service"])
}

func TestBuild_UnknownLevelIsInfo(t *testing.T) {
	var buf bytes.Buffer
	log := build(&buf, "loud")
	log.Debug().Msg("dropped")
	log.Info().Msg("kept")
	assert.Contains(t, buf.String(), "kept")
	assert.NotContains(t, buf.String(), "dropped")
}
