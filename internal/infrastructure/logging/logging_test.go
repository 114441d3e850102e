package logging

import (
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestNew_Level(t *testing.T) {
	l, err := New(zapcore.WarnLevel)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	defer func() { _ = l.Sync() }()

	if l.Desugar().Core().Enabled(zapcore.InfoLevel) {
		t.Error("info should be disabled at warn level")
	}
	if !l.Desugar().Core().Enabled(zapcore.ErrorLevel) {
		t.Error("error should be enabled at warn level")
	}
}

func TestNewWith_AppliesOverrides(t *testing.T) {
	l, err := NewWith(func(cfg *zap.Config) {
		cfg.Level.SetLevel(zapcore.DebugLevel)
		cfg.Encoding = "console"
	})
	if err != nil {
		t.Fatalf("NewWith failed: %v", err)
	}
	if !l.Desugar().Core().Enabled(zapcore.DebugLevel) {
		t.Error("debug should be enabled")
	}
}
