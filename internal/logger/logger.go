package logger

import (
	"regexp"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New builds a zap logger. format "json" selects the production encoder,
// anything else the human readable development one.
func New(levelStr, format string) *zap.Logger {
	level := zapcore.InfoLevel
	switch levelStr {
	case "debug":
		level = zapcore.DebugLevel
	case "warn":
		level = zapcore.WarnLevel
	case "error":
		level = zapcore.ErrorLevel
	}

	var cfg zap.Config
	if format == "json" {
		cfg = zap.NewProductionConfig()
	} else {
		cfg = zap.NewDevelopmentConfig()
	}
	cfg.Level = zap.NewAtomicLevelAt(level)
	logger, err := cfg.Build()
	if err != nil {
		return zap.NewNop()
	}
	return logger
}

// secretFields matches a secret key (any case) and its value: a JSON string with escapes,
// or a bare scalar such as a number or boolean.
var secretFields = regexp.MustCompile(`(?i)("(?:password|token|apiKey|secret|jwt)")\s*:\s*(?:"(?:[^"\\]|\\.)*"|[^\s,}\]]+)`)

// Sanitize masks the values of secret-bearing JSON fields in s.
func Sanitize(s string) string {
	return secretFields.ReplaceAllString(s, `$1:"*****"`)
}
