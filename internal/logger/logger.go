// Package logger wraps Uber's zap to give services one shared, leveled
// structured logger.
package logger

import (
	"go.uber.org/zap"
)

// New builds a production zap logger at the given level. An unparseable
// level falls back to info.
func New(level string) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()

	lvl, err := zap.ParseAtomicLevel(level)
	if err == nil {
		cfg.Level = lvl
	}

	return cfg.Build()
}

// Nop returns a no-op logger for tests.
func Nop() *zap.Logger {
	return zap.NewNop()
}
