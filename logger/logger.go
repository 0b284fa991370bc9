// logger/logger.go
// Ref: https://betterstack.com/community/guides/logging/go/zap/#logging-errors-with-zap
package logger

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// BuildLogger creates and returns a configured *zap.SugaredLogger. It configures
// the encoder so timestamps are RFC3339, levels are uppercase, and the caller is
// reported in the short `file:line` form. Supported encodings are "json" and
// "console"; the console separator only applies to console encoding.
func BuildLogger(logLevel string, encoding string, logConsoleSeparator string) *zap.SugaredLogger {
	encoderCfg := zap.NewProductionEncoderConfig()

	encoderCfg.TimeKey = "timestamp"
	encoderCfg.EncodeTime = zapcore.RFC3339TimeEncoder
	encoderCfg.EncodeLevel = zapcore.CapitalLevelEncoder
	encoderCfg.EncodeCaller = zapcore.ShortCallerEncoder
	encoderCfg.MessageKey = "msg"
	encoderCfg.LevelKey = "level"
	encoderCfg.NameKey = "logger"
	encoderCfg.CallerKey = "caller"
	encoderCfg.StacktraceKey = "stacktrace"
	encoderCfg.LineEnding = zapcore.DefaultLineEnding
	encoderCfg.EncodeDuration = zapcore.StringDurationEncoder
	encoderCfg.EncodeName = zapcore.FullNameEncoder

	if encoding == "console" {
		encoderCfg.ConsoleSeparator = logConsoleSeparator
	}

	config := zap.Config{
		Level:             zap.NewAtomicLevelAt(ParseLogLevelFromString(logLevel)),
		Development:       false,
		Encoding:          encoding,
		DisableCaller:     false,
		DisableStacktrace: true,
		Sampling:          nil,
		EncoderConfig:     encoderCfg,
		OutputPaths:       []string{"stdout"},
		ErrorOutputPaths:  []string{"stderr"},
	}

	return zap.Must(config.Build()).Sugar()
}

// ParseLogLevelFromString converts a configuration string to a zapcore.Level.
// Unknown strings fall back to InfoLevel.
func ParseLogLevelFromString(levelStr string) zapcore.Level {
	switch levelStr {
	case "LogLevelDebug", "debug":
		return zap.DebugLevel
	case "LogLevelInfo", "info":
		return zap.InfoLevel
	case "LogLevelWarn", "warn":
		return zap.WarnLevel
	case "LogLevelError", "error":
		return zap.ErrorLevel
	case "LogLevelDPanic":
		return zap.DPanicLevel
	case "LogLevelPanic":
		return zap.PanicLevel
	case "LogLevelFatal":
		return zap.FatalLevel
	default:
		return zap.InfoLevel
	}
}
