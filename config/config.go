package config

import (
	"encoding/json"
	"os"
)

// Config represents the application configuration
type Config struct {
	Server   ServerConfig   `json:"server"`
	Database DatabaseConfig `json:"database"`
	Search   SearchConfig   `json:"search"`
	WhatsApp WhatsAppConfig `json:"whatsapp"`
}

// ServerConfig holds HTTP admin server configuration
type ServerConfig struct {
	Port int `json:"port"`
}

// DatabaseConfig holds the endpoint store location
type DatabaseConfig struct {
	Path string `json:"path"`
}

// SearchConfig holds the remote search API constants. The parameter values
// are fixed per deployment, not negotiated at runtime.
type SearchConfig struct {
	// GlobalDefaultEndpoint is the last-resort endpoint used when a tenant
	// has no records at all.
	GlobalDefaultEndpoint string `json:"global_default_endpoint"`

	// ResultLimit is the number of candidates requested from the full-text
	// search. Only the first is ever rendered.
	ResultLimit int `json:"result_limit"`

	// ExcerptChars caps the plain-text excerpt length.
	ExcerptChars int `json:"excerpt_chars"`

	// TimeoutSeconds bounds each remote round trip.
	TimeoutSeconds int `json:"timeout_seconds"`
}

// WhatsAppConfig holds configuration for the WhatsApp integration
type WhatsAppConfig struct {
	Enabled       bool     `json:"enabled"`
	StoreDir      string   `json:"store_dir"`
	AllowedGroups []string `json:"allowed_groups"`
	CommandPrefix string   `json:"command_prefix"`
}

// LoadConfig loads configuration from a JSON file, filling unset fields
// from the defaults
func LoadConfig(path string) (*Config, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	config := DefaultConfig()

	decoder := json.NewDecoder(file)
	if err := decoder.Decode(config); err != nil {
		return nil, err
	}

	return config, nil
}

// DefaultConfig returns a default configuration
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port: 8080,
		},
		Database: DatabaseConfig{
			Path: "./data/config.db",
		},
		Search: SearchConfig{
			GlobalDefaultEndpoint: "https://en.wikipedia.org/w/api.php",
			ResultLimit:           1,
			ExcerptChars:          500,
			TimeoutSeconds:        15,
		},
		WhatsApp: WhatsAppConfig{
			Enabled:       false,
			StoreDir:      "./data/whatsapp",
			AllowedGroups: []string{},
			CommandPrefix: "!endpoint",
		},
	}
}
