package logger

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/raywall/cpaas-toolkit/pkg/config"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Configure inicializa o logger a partir da configuração e o registra como
// logger global (log.Logger), usado pelos pacotes que não recebem um logger.
func Configure(cfg config.LoggingConf, component string) zerolog.Logger {
	return ConfigureWriter(cfg, component, os.Stdout)
}

// ConfigureWriter é o Configure com destino explícito (ex: os.Stderr na CLI).
func ConfigureWriter(cfg config.LoggingConf, component string, out io.Writer) zerolog.Logger {
	// Define o nível de log (default: info)
	level, err := zerolog.ParseLevel(strings.ToLower(cfg.Level))
	if err != nil || cfg.Level == "" {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	// JSON por padrão, console "bonito" para uso local/CLI
	output := out
	if !cfg.Enabled {
		output = io.Discard
	} else if cfg.Format == "console" {
		output = zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339}
	}

	ctx := zerolog.New(output).With().Timestamp()
	if component != "" {
		ctx = ctx.Str("component", component)
	}
	logger := ctx.Logger()

	log.Logger = logger
	return logger
}
