package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitWithWriter_JSON(t *testing.T) {
	var buf bytes.Buffer
	InitWithWriter(Config{Level: "debug", Format: "json"}, &buf)
	t.Cleanup(func() { InitWithWriter(Config{}, &bytes.Buffer{}) })

	Debug().Str("key", "value").Msg("hello")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "debug", entry["level"])
	assert.Equal(t, "value", entry["key"])
	assert.Equal(t, "hello", entry["message"])
}

func TestInitWithWriter_LevelFilters(t *testing.T) {
	var buf bytes.Buffer
	InitWithWriter(Config{Level: "warn"}, &buf)
	t.Cleanup(func() { InitWithWriter(Config{}, &bytes.Buffer{}) })

	Info().Msg("dropped")
	assert.Empty(t, buf.String())

	Warn().Msg("kept")
	assert.Contains(t, buf.String(), "kept")
}

func TestInitWithWriter_InvalidLevelDefaultsToInfo(t *testing.T) {
	InitWithWriter(Config{Level: "loud"}, &bytes.Buffer{})
	t.Cleanup(func() { InitWithWriter(Config{}, &bytes.Buffer{}) })

	assert.Equal(t, zerolog.InfoLevel, zerolog.GlobalLevel())
}

func TestCtx_FallsBackToGlobal(t *testing.T) {
	assert.NotNil(t, Ctx(context.Background()))

	var buf bytes.Buffer
	l := zerolog.New(&buf).With().Str("request_id", "abc").Logger()
	ctx := l.WithContext(context.Background())

	Ctx(ctx).Info().Msg("scoped")
	assert.Contains(t, buf.String(), `"request_id":"abc"`)
}
