package config

import (
	"time"
)

// Config holds runtime settings for the roomchat CLI.
type Config struct {
	ServerEndpointAddr string
	Nickname           string
	Room               string
	Passkey            string
	PromptPasskey      bool
	DataDir            string
	LogLevel           string

	OnlineCheckInterval time.Duration

	// ScrollThreshold is the distance from the bottom, in lines, that still
	// counts as "at the bottom".
	ScrollThreshold   int
	HighlightDuration time.Duration

	// ViewportHeight is how many message lines one screen shows.
	ViewportHeight int
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.ServerEndpointAddr = "127.0.0.1:50051"
	c.DataDir = ".roomchat"
	c.LogLevel = "info"
	c.OnlineCheckInterval = 3 * time.Second
	c.ScrollThreshold = 3
	c.HighlightDuration = 2 * time.Second
	c.ViewportHeight = 20
}

// LoadConfig constructs a Config, applies defaults, then overlays values from
// JSON (if present) and command-line flags (if present).
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}
