// Package logging builds the zap loggers used across abtest.
package logging

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New returns a production JSON logger at level, writing to stderr.
func New(level zapcore.Level) (*zap.SugaredLogger, error) {
	return NewWith(func(cfg *zap.Config) {
		cfg.Level.SetLevel(level)
	})
}

// NewWith returns a logger from a modified production config.
func NewWith(fn func(*zap.Config)) (*zap.SugaredLogger, error) {
	cfg := zap.NewProductionConfig()
	cfg.OutputPaths = []string{"stderr"}
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	fn(&cfg)

	l, err := cfg.Build()
	if err != nil {
		return nil, err
	}
	return l.Sugar(), nil
}
