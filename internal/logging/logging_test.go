package logging

import (
	"testing"

	"go.uber.org/zap/zapcore"
)

func TestNew(t *testing.T) {
	tests := []struct {
		level   string
		dev     bool
		enabled zapcore.Level
		wantErr bool
	}{
		{"info", false, zapcore.InfoLevel, false},
		{"debug", true, zapcore.DebugLevel, false},
		{"WARN", false, zapcore.WarnLevel, false},
		{"verbose", false, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			logger, err := New(tt.level, tt.dev)
			if (err != nil) != tt.wantErr {
				t.Fatalf("New(%q) error = %v, wantErr %v", tt.level, err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if !logger.Core().Enabled(tt.enabled) {
				t.Errorf("level %v should be enabled", tt.enabled)
			}
			if logger.Core().Enabled(tt.enabled - 1) {
				t.Errorf("level %v should be disabled", tt.enabled-1)
			}
		})
	}
}
