// Package plog is a thin structured-logging wrapper around zerolog,
// replacing the teacher's bare *log.Logger field-injection pattern
// (internal/processor.GenAIProcessor.logger) with leveled, structured
// fields while keeping the same "logger lives on the struct, passed in at
// construction" idiom.
package plog

import (
	"io"
	"os"

	"github.com/rs/zerolog"
)

// Logger wraps zerolog.Logger with the handful of fields this runtime
// attaches to nearly every line: component, session id, attempt number.
type Logger struct {
	zl zerolog.Logger
}

// New builds a Logger writing to w (os.Stdout in production, a bytes.Buffer
// in tests) at the given level ("debug", "info", "warn", "error").
func New(w io.Writer, level string) Logger {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		lvl = zerolog.InfoLevel
	}
	zl := zerolog.New(w).Level(lvl).With().Timestamp().Logger()
	return Logger{zl: zl}
}

// Default builds a human-readable console logger for CLI use, the way the
// teacher's cmd/server wires a plain *log.Logger to os.Stdout.
func Default() Logger {
	console := zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: "15:04:05"}
	return Logger{zl: zerolog.New(console).Level(zerolog.InfoLevel).With().Timestamp().Logger()}
}

// With returns a Logger with an additional structured field attached to
// every subsequent line, the way the orchestrator tags logs with
// component/session_id/attempt.
func (l Logger) With(key string, value interface{}) Logger {
	return Logger{zl: l.zl.With().Interface(key, value).Logger()}
}

func (l Logger) Debug(msg string) { l.zl.Debug().Msg(msg) }
func (l Logger) Info(msg string)  { l.zl.Info().Msg(msg) }
func (l Logger) Warn(msg string)  { l.zl.Warn().Msg(msg) }
func (l Logger) Error(err error, msg string) {
	l.zl.Error().Err(err).Msg(msg)
}
