package logger

import (
	"bytes"
	"testing"

	"github.com/raywall/cpaas-toolkit/pkg/config"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func TestConfigure(t *testing.T) {
	t.Run("Default Level Info", func(t *testing.T) {
		cfg := config.LoggingConf{Enabled: true}
		_ = Configure(cfg, "test")

		assert.Equal(t, zerolog.InfoLevel, zerolog.GlobalLevel())
	})

	t.Run("Custom Level Debug", func(t *testing.T) {
		cfg := config.LoggingConf{Enabled: true, Level: "DEBUG"}
		_ = Configure(cfg, "test")

		assert.Equal(t, zerolog.DebugLevel, zerolog.GlobalLevel())
	})

	t.Run("Invalid Level Falls Back To Info", func(t *testing.T) {
		cfg := config.LoggingConf{Enabled: true, Level: "loud"}
		_ = Configure(cfg, "test")

		assert.Equal(t, zerolog.InfoLevel, zerolog.GlobalLevel())
	})

	t.Run("JSON Output With Component", func(t *testing.T) {
		var buf bytes.Buffer
		logger := ConfigureWriter(config.LoggingConf{Enabled: true, Level: "info"}, "cpaas-cli", &buf)

		logger.Info().Msg("hello")
		assert.Contains(t, buf.String(), `"component":"cpaas-cli"`)
		assert.Contains(t, buf.String(), `"message":"hello"`)
	})

	t.Run("Disabled Logger", func(t *testing.T) {
		var buf bytes.Buffer
		logger := ConfigureWriter(config.LoggingConf{Enabled: false}, "", &buf)

		logger.Info().Msg("teste")
		assert.Empty(t, buf.String())
	})
}
