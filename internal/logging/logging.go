package logging

import (
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New builds a zap logger. Dev environments get the console encoder,
// everything else the JSON production encoder.
func New(level, appEnv string) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	if isDev(appEnv) {
		cfg = zap.NewDevelopmentConfig()
	}
	cfg.Level = zap.NewAtomicLevelAt(levelFromString(level))
	return cfg.Build()
}

func levelFromString(value string) zapcore.Level {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "error":
		return zapcore.ErrorLevel
	case "warn", "warning":
		return zapcore.WarnLevel
	case "debug":
		return zapcore.DebugLevel
	default:
		return zapcore.InfoLevel
	}
}

func isDev(env string) bool {
	env = strings.ToLower(strings.TrimSpace(env))
	return env == "" || env == "dev" || env == "local"
}
