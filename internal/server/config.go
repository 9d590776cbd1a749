package server

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Config holds the server configuration.
type Config struct {
	Host           string   `mapstructure:"host"`
	Port           int      `mapstructure:"port"`
	DevMode        bool     `mapstructure:"dev_mode"`
	CORSOrigins    []string `mapstructure:"cors_origins"`
	ReadyHeartbeat bool     `mapstructure:"ready_heartbeat"`
}

// Addr returns the listen address as host:port.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// DefaultCORSOrigins are the local frontend dev servers allowed by default.
var DefaultCORSOrigins = []string{"http://localhost:3000", "http://localhost:5173"}

// LoadConfig reads configuration from file and environment variables.
func LoadConfig(configPath string) (*viper.Viper, error) {
	v := viper.New()

	// Defaults
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8000)
	v.SetDefault("server.dev_mode", false)
	v.SetDefault("server.cors_origins", DefaultCORSOrigins)
	v.SetDefault("server.ready_heartbeat", false)
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
	v.SetDefault("gemini.model", "gemini-2.0-pro-exp-02-05")
	v.SetDefault("gemini.base_url", "")
	v.SetDefault("gemini.timeout", "0s")
	v.SetDefault("gemini.api_key", "")

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("paperstream")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")
		v.AddConfigPath("/etc/paperstream")
	}

	// Environment variable support: PS_SERVER_PORT=9090
	v.SetEnvPrefix("PS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading config: %w", err)
		}
		// Config file not found is fine -- use defaults
	}

	return v, nil
}
