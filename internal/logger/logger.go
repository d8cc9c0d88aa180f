// Package logger configures the process-wide zerolog logger.
package logger

import (
	"context"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

var (
	// Logger is the process-wide logger
	Logger = zerolog.New(os.Stderr).With().Timestamp().Logger()
)

// Config controls level, format and caller reporting of the logger
type Config struct {
	Level        string `json:"level" yaml:"level" validate:"omitempty,oneof=trace debug info warn error fatal panic disabled"`
	Format       string `json:"format" yaml:"format" validate:"omitempty,oneof=json pretty"`
	TimeFormat   string `json:"time_format" yaml:"time_format"`
	ReportCaller bool   `json:"report_caller" yaml:"report_caller"`
}

// Init replaces the global logger according to config. Logs go to stderr so
// command output on stdout stays machine-readable.
func Init(config Config) {
	InitWithWriter(config, os.Stderr)
}

// InitWithWriter is Init with an explicit destination
func InitWithWriter(config Config, out io.Writer) {
	level, err := zerolog.ParseLevel(config.Level)
	if err != nil || config.Level == "" {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	if config.TimeFormat == "" {
		zerolog.TimeFieldFormat = time.RFC3339
	} else {
		zerolog.TimeFieldFormat = config.TimeFormat
	}

	output := out
	if config.Format == "pretty" {
		output = zerolog.ConsoleWriter{
			Out:        out,
			TimeFormat: config.TimeFormat,
		}
	}

	contextLogger := zerolog.New(output).
		Level(level).
		With().
		Timestamp()

	if config.ReportCaller {
		contextLogger = contextLogger.Caller()
	}

	Logger = contextLogger.Logger()
	log.Logger = Logger
}

// Debug starts a debug level event
func Debug() *zerolog.Event {
	return Logger.Debug()
}

// Info starts an info level event
func Info() *zerolog.Event {
	return Logger.Info()
}

// Warn starts a warn level event
func Warn() *zerolog.Event {
	return Logger.Warn()
}

// Error starts an error level event
func Error() *zerolog.Event {
	return Logger.Error()
}

// Ctx returns the logger attached to ctx, or the global logger if none is
func Ctx(ctx context.Context) *zerolog.Logger {
	if l := zerolog.Ctx(ctx); l != nil && l.GetLevel() != zerolog.Disabled {
		return l
	}
	return &Logger
}

// WithContext attaches the global logger to ctx
func WithContext(ctx context.Context) context.Context {
	return Logger.WithContext(ctx)
}
