package logger

import (
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	mu            sync.Mutex
	defaultLogger *zap.Logger
)

// Init builds the global logger. An empty path logs to stderr.
func Init(level, path string) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(parseLevel(level))
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.Sampling = nil
	if path != "" {
		cfg.OutputPaths = []string{path}
		cfg.ErrorOutputPaths = []string{path}
	}

	l, err := cfg.Build()
	if err != nil {
		return nil, err
	}

	mu.Lock()
	defaultLogger = l
	mu.Unlock()
	zap.ReplaceGlobals(l)
	return l, nil
}

func parseLevel(level string) zapcore.Level {
	switch level {
	case "debug":
		return zapcore.DebugLevel
	case "warn":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

// Get returns the global logger, or a no-op logger before Init.
func Get() *zap.Logger {
	mu.Lock()
	defer mu.Unlock()
	if defaultLogger == nil {
		return zap.NewNop()
	}
	return defaultLogger
}

func Named(name string) *zap.Logger {
	return Get().Named(name)
}

// OrNop returns l, or a no-op logger when l is nil.
func OrNop(l *zap.Logger) *zap.Logger {
	if l == nil {
		return zap.NewNop()
	}
	return l
}

func Sync() {
	_ = Get().Sync()
}
