// Package config turns a loaded Viper instance into the typed settings each
// paperstream component consumes.
package config

import (
	"fmt"
	"os"

	"github.com/HerbHall/paperstream/internal/llm/gemini"
	"github.com/HerbHall/paperstream/internal/server"
	"github.com/spf13/viper"
)

// App is the fully resolved application configuration.
type App struct {
	Server server.Config
	Gemini gemini.Config
}

// Credential sources, in lookup order after the gemini.api_key setting.
var apiKeyEnvVars = []string{"GOOGLE_API_KEY", "GEMINI_API_KEY"}

// Load unmarshals the server and gemini sections of v.
func Load(v *viper.Viper) (*App, error) {
	if v == nil {
		v = viper.New()
	}

	app := &App{Gemini: gemini.DefaultConfig()}
	if err := v.UnmarshalKey("server", &app.Server); err != nil {
		return nil, fmt.Errorf("decode server config: %w", err)
	}
	if err := v.UnmarshalKey("gemini", &app.Gemini); err != nil {
		return nil, fmt.Errorf("decode gemini config: %w", err)
	}
	if app.Server.Port < 0 || app.Server.Port > 65535 {
		return nil, fmt.Errorf("invalid server.port %d", app.Server.Port)
	}
	if app.Gemini.Timeout < 0 {
		return nil, fmt.Errorf("invalid gemini.timeout %s", app.Gemini.Timeout)
	}
	return app, nil
}

// APIKey returns the Gemini credential. The gemini.api_key setting (and so
// PS_GEMINI_API_KEY) wins; GOOGLE_API_KEY and GEMINI_API_KEY are consulted
// next. An empty result is not an error.
func APIKey(v *viper.Viper) string {
	if v != nil {
		if key := v.GetString("gemini.api_key"); key != "" {
			return key
		}
	}
	for _, name := range apiKeyEnvVars {
		if key := os.Getenv(name); key != "" {
			return key
		}
	}
	return ""
}
