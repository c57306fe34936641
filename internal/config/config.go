// Package config loads process configuration from the environment.
// A local .env.local (or .env) file is exported into the environment
// first, then typed config structs are filled with envconfig.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/kelseyhightower/envconfig"
	"github.com/spf13/viper"
)

// Config is the full configuration for the agent process.
type Config struct {
	// Server
	Port     int    `envconfig:"PORT" default:"8080"`
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`

	// Backend booking/weather service
	BackendAPIURL string `envconfig:"BACKEND_API_URL" default:"http://localhost:3001"`

	// Hosted model and speech credentials
	GroqAPIKey     string `envconfig:"GROQ_API_KEY"`
	DeepgramAPIKey string `envconfig:"DEEPGRAM_API_KEY"`

	// Room access tokens (optional; connections are unauthenticated if unset)
	RoomAPIKey    string `envconfig:"ROOM_API_KEY"`
	RoomAPISecret string `envconfig:"ROOM_API_SECRET"`
}

// Load reads .env.local (falling back to .env) if present, then fills
// Config from the environment.
func Load() (*Config, error) {
	for _, path := range []string{".env.local", ".env"} {
		if err := exportEnvFile(path); err != nil {
			return nil, fmt.Errorf("config: load %s: %w", path, err)
		}
	}

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return &cfg, nil
}

// MissingCredentials returns the names of required credential variables
// that are not set. Missing credentials are reported, not fatal: the
// session will fail on first use instead.
func (c *Config) MissingCredentials() []string {
	var missing []string
	if c.GroqAPIKey == "" {
		missing = append(missing, "GROQ_API_KEY")
	}
	if c.DeepgramAPIKey == "" {
		missing = append(missing, "DEEPGRAM_API_KEY")
	}
	return missing
}

// exportEnvFile reads a dotenv-style file with viper and exports its
// settings into the process environment. Existing variables win.
func exportEnvFile(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}
	if info.IsDir() {
		return nil
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("env")
	if err := v.ReadInConfig(); err != nil {
		return err
	}

	for key, val := range v.AllSettings() {
		name := strings.ToUpper(key)
		if _, exists := os.LookupEnv(name); exists {
			continue
		}
		if err := os.Setenv(name, fmt.Sprint(val)); err != nil {
			return err
		}
	}
	return nil
}
