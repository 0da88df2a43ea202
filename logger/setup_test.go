/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package logger

import (
	"bytes"
	"context"
	"testing"

	"github.com/google/uuid"
	jsoniter "github.com/json-iterator/go"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/suparena/entityquery/config"
)

func TestConfigureWriter(t *testing.T) {
	t.Run("default level info", func(t *testing.T) {
		l := ConfigureWriter(config.LoggingConf{Enabled: true}, &bytes.Buffer{})
		assert.Equal(t, zerolog.InfoLevel, l.GetLevel())
	})

	t.Run("custom level", func(t *testing.T) {
		l := ConfigureWriter(config.LoggingConf{Enabled: true, Level: "DEBUG"}, &bytes.Buffer{})
		assert.Equal(t, zerolog.DebugLevel, l.GetLevel())
	})

	t.Run("disabled writes nothing", func(t *testing.T) {
		var buf bytes.Buffer
		l := ConfigureWriter(config.LoggingConf{Enabled: false}, &buf)
		l.Info().Msg("hidden")
		assert.Zero(t, buf.Len())
	})

	t.Run("json output", func(t *testing.T) {
		var buf bytes.Buffer
		l := ConfigureWriter(config.LoggingConf{Enabled: true, Format: "json"}, &buf)
		l.Info().Str("table", "users").Msg("scan")

		var line map[string]any
		require.NoError(t, jsoniter.Unmarshal(buf.Bytes(), &line))
		assert.Equal(t, "scan", line["message"])
		assert.Equal(t, "users", line["table"])
	})
}

func TestCorrelationID(t *testing.T) {
	ctx := WithCorrelationID(context.Background(), "req-42")
	assert.Equal(t, "req-42", CorrelationID(ctx))

	generated := CorrelationID(context.Background())
	_, err := uuid.Parse(generated)
	assert.NoError(t, err)
}

func TestForCall(t *testing.T) {
	var buf bytes.Buffer
	base := ConfigureWriter(config.LoggingConf{Enabled: true}, &buf)

	l := ForCall(WithCorrelationID(context.Background(), "abc"), base, "ReadAll")
	l.Info().Msg("done")

	var line map[string]any
	require.NoError(t, jsoniter.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "abc", line["correlation_id"])
	assert.Equal(t, "ReadAll", line["op"])
}
