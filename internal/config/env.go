package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// CLIConfig controls the local hot-seat binary.
type CLIConfig struct {
	Players    []string `env:"DUTCH_PLAYERS"   envSeparator:"," envDefault:"Joueur 1,Joueur 2"`
	Seed       int64    `env:"DUTCH_SEED"`
	ConfigPath string   `env:"DUTCH_CONFIG"`
	LogLevel   string   `env:"DUTCH_LOG_LEVEL" envDefault:"info"`
}

// LoadEnv parses the CLI configuration from environment variables.
func LoadEnv() (CLIConfig, error) {
	var c CLIConfig
	if err := env.Parse(&c); err != nil {
		return CLIConfig{}, fmt.Errorf("parse env: %w", err)
	}
	return c, nil
}
