// Package logging builds the process logger.
package logging

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/ppiankov/gcpwatch/internal/errs"
)

// New returns a logger writing to stderr at level in format ("json" or
// "console"). The returned AtomicLevel can be changed at runtime.
func New(level, format string) (*zap.Logger, zap.AtomicLevel, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, zap.AtomicLevel{}, errs.Configuration("unknown log level").WithCause(err)
	}
	atom := zap.NewAtomicLevelAt(lvl)

	var cfg zap.Config
	switch format {
	case "", "json":
		cfg = zap.NewProductionConfig()
	case "console":
		cfg = zap.NewDevelopmentConfig()
		cfg.Development = false
	default:
		return nil, zap.AtomicLevel{}, errs.Configuration("unknown log format")
	}
	cfg.Level = atom
	cfg.OutputPaths = []string{"stderr"}
	cfg.ErrorOutputPaths = []string{"stderr"}
	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	logger, err := cfg.Build(zap.Fields(zap.String("service", "gcpwatch")))
	if err != nil {
		return nil, zap.AtomicLevel{}, errs.Configuration("failed to build logger").WithCause(err)
	}
	return logger, atom, nil
}
