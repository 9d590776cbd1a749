package config

import (
	"fmt"
	"strings"

	"github.com/HerbHall/paperstream/internal/version"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// NewLogger creates a configured Zap logger from Viper settings.
// Reads "logging.level" (debug, info, warn, error; default "info")
// and "logging.format" (json, console; default "json"). Every entry carries
// the service name and build version.
func NewLogger(v *viper.Viper) (*zap.Logger, error) {
	level := strings.ToLower(strings.TrimSpace(v.GetString("logging.level")))
	format := strings.ToLower(strings.TrimSpace(v.GetString("logging.format")))

	if level == "" {
		level = "info"
	}
	var zapLevel zapcore.Level
	if err := zapLevel.UnmarshalText([]byte(level)); err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}

	var cfg zap.Config
	switch format {
	case "console":
		cfg = zap.NewDevelopmentConfig()
	case "json", "":
		cfg = zap.NewProductionConfig()
		// Per-fragment debug entries repeat quickly and would be sampled away.
		cfg.Sampling = nil
		cfg.EncoderConfig.TimeKey = "ts"
		cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	default:
		return nil, fmt.Errorf("invalid log format %q: must be \"json\" or \"console\"", format)
	}

	cfg.Level = zap.NewAtomicLevelAt(zapLevel)
	cfg.InitialFields = map[string]any{
		"service": "paperstream",
		"version": version.Short(),
	}

	return cfg.Build()
}
