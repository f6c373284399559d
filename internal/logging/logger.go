// Package logging owns the process-wide zap logger.
package logging

import (
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	// Logger is the global logger. It is a no-op until Initialize runs so that
	// packages and tests can log unconditionally.
	Logger *zap.SugaredLogger
	// JSONOutput reports whether Initialize selected the JSON encoder.
	JSONOutput bool
)

func init() {
	Logger = zap.NewNop().Sugar()
}

// Initialize replaces the global logger. JSON output uses zap's production
// config; otherwise a console encoder writes to stderr so that stdout stays
// free for progress lines.
func Initialize(jsonOutput bool, level string) error {
	lvl, err := ParseLevel(level)
	if err != nil {
		return err
	}
	JSONOutput = jsonOutput

	var zapLogger *zap.Logger
	if jsonOutput {
		config := zap.NewProductionConfig()
		config.Level = zap.NewAtomicLevelAt(lvl)
		zapLogger, err = config.Build()
		if err != nil {
			return err
		}
	} else {
		encoderConfig := zap.NewDevelopmentEncoderConfig()
		encoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		encoderConfig.TimeKey = ""
		zapLogger = zap.New(zapcore.NewCore(
			zapcore.NewConsoleEncoder(encoderConfig),
			zapcore.AddSync(os.Stderr),
			lvl,
		))
	}

	Logger = zapLogger.Sugar()
	return nil
}

// ParseLevel maps debug/info/warn/error (case-insensitive, empty = info) to a
// zap level.
func ParseLevel(level string) (zapcore.Level, error) {
	if strings.TrimSpace(level) == "" {
		return zapcore.InfoLevel, nil
	}
	return zapcore.ParseLevel(strings.ToLower(level))
}

// Sync flushes buffered entries. Errors from syncing a terminal are ignored.
func Sync() {
	_ = Logger.Sync()
}

// Or returns l, or the global logger when l is nil.
func Or(l *zap.SugaredLogger) *zap.SugaredLogger {
	if l != nil {
		return l
	}
	return Logger
}
