package logger

import (
	"context"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestNewLogger(t *testing.T) {
	tests := []struct {
		name      string
		env       string
		level     string
		wantErr   bool
		wantLevel zapcore.Level
	}{
		{name: "prod defaults to info", env: "prod", wantLevel: zapcore.InfoLevel},
		{name: "dev defaults to debug", env: "dev", wantLevel: zapcore.DebugLevel},
		{name: "override level", env: "prod", level: "warn", wantLevel: zapcore.WarnLevel},
		{name: "unknown env", env: "staging", wantErr: true},
		{name: "bad level", env: "dev", level: "loud", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l, err := NewLogger(tt.env, tt.level)
			if (err != nil) != tt.wantErr {
				t.Fatalf("expected error: %v, got: %v", tt.wantErr, err)
			}
			if tt.wantErr {
				return
			}
			if !l.Core().Enabled(tt.wantLevel) {
				t.Fatalf("level %s should be enabled", tt.wantLevel)
			}
			if tt.wantLevel > zapcore.DebugLevel && l.Core().Enabled(tt.wantLevel-1) {
				t.Fatalf("level %s should be disabled", tt.wantLevel-1)
			}
		})
	}
}

func TestFromContext(t *testing.T) {
	if FromContext(context.Background()) == nil {
		t.Fatal("expected a no-op logger for an empty context")
	}

	l := zap.NewExample()
	ctx := ContextWithLogger(context.Background(), l)
	if FromContext(ctx) != l {
		t.Fatal("expected the stored logger back")
	}
}
