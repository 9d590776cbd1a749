package gemini

import "time"

// Config holds the Gemini provider configuration.
type Config struct {
	Model   string        `mapstructure:"model"`
	BaseURL string        `mapstructure:"base_url"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// DefaultConfig returns the defaults used by the research relay. A zero
// Timeout leaves the upstream stream unbounded.
func DefaultConfig() Config {
	return Config{
		Model: "gemini-2.0-pro-exp-02-05",
	}
}
