// Package logging contains the structured logger used by the solver, the rigs and the ccdsim CLI.
package logging

import (
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

// GlobalLogLevel overrides every logger's own level when set to debug. Loggers converted with
// AsZap use it as their level.
var GlobalLogLevel = zap.NewAtomicLevelAt(zap.InfoLevel)

// zapConfig is the console config for loggers converted with AsZap: short callers, ISO8601 times,
// colored levels and no stacktraces.
func zapConfig() zap.Config {
	enc := zap.NewProductionEncoderConfig()
	enc.FunctionKey = zapcore.OmitKey
	enc.EncodeLevel = zapcore.CapitalColorLevelEncoder
	enc.EncodeTime = zapcore.ISO8601TimeEncoder
	enc.EncodeDuration = zapcore.StringDurationEncoder
	return zap.Config{
		Level:             GlobalLogLevel,
		Encoding:          "console",
		EncoderConfig:     enc,
		DisableStacktrace: true,
		OutputPaths:       []string{"stdout"},
		ErrorOutputPaths:  []string{"stderr"},
	}
}

func newImpl(name string, level Level, inUTC bool, appenders ...Appender) *impl {
	return &impl{name: name, level: NewAtomicLevelAt(level), inUTC: inUTC, appenders: appenders}
}

// NewBlankLogger returns a Debug logger in UTC with no appenders; callers attach their own.
func NewBlankLogger(name string) Logger {
	return newImpl(name, DEBUG, true)
}

// NewTestLogger returns a Debug logger that writes to tb in local time.
func NewTestLogger(tb testing.TB) Logger {
	logger, _ := NewObservedTestLogger(tb)
	return logger
}

// NewObservedTestLogger is NewTestLogger that also records every entry for assertions.
func NewObservedTestLogger(tb testing.TB) (Logger, *observer.ObservedLogs) {
	core, logs := observer.New(zapcore.DebugLevel)
	return newImpl("", DEBUG, false, NewTestAppender(tb), core), logs
}
