package config

import (
	"testing"

	"github.com/spf13/viper"
	"go.uber.org/zap/zapcore"
)

func TestNewLogger(t *testing.T) {
	tests := []struct {
		name      string
		level     string
		format    string
		wantLevel zapcore.Level
		wantErr   bool
	}{
		{name: "defaults", level: "info", format: "json", wantLevel: zapcore.InfoLevel},
		{name: "empty values", level: "", format: "", wantLevel: zapcore.InfoLevel},
		{name: "debug json", level: "debug", format: "json", wantLevel: zapcore.DebugLevel},
		{name: "warn console", level: "warn", format: "console", wantLevel: zapcore.WarnLevel},
		{name: "mixed case", level: "ERROR", format: " JSON ", wantLevel: zapcore.ErrorLevel},
		{name: "invalid level", level: "banana", format: "json", wantErr: true},
		{name: "invalid format", level: "info", format: "xml", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := viper.New()
			v.Set("logging.level", tt.level)
			v.Set("logging.format", tt.format)

			logger, err := NewLogger(v)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("NewLogger: %v", err)
			}
			if logger == nil {
				t.Fatal("expected non-nil logger")
			}
			if !logger.Core().Enabled(tt.wantLevel) {
				t.Errorf("level %v not enabled", tt.wantLevel)
			}
			if tt.wantLevel > zapcore.DebugLevel && logger.Core().Enabled(tt.wantLevel-1) {
				t.Errorf("level %v should be disabled", tt.wantLevel-1)
			}
		})
	}
}
