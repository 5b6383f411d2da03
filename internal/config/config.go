package config

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"dutch/internal/domain"
)

// GameConfig holds the tunable rules and table settings.
type GameConfig struct {
	HandSize      int  `json:"hand_size"`
	DutchPenalty  *int `json:"dutch_penalty"` // nil keeps the default, 0 disables
	GameOverScore int  `json:"game_over_score"`
	MaxSeats      int  `json:"max_seats"`
	// TickRate is the number of match loop ticks per second in Nakama (1..60).
	TickRate int `json:"tick_rate"`
}

const (
	DefaultMaxSeats = 4
	DefaultTickRate = 5
)

var (
	cfg      *GameConfig
	loadOnce sync.Once
	loadErr  error
)

// LoadGameConfig loads the game configuration from the given path.
func LoadGameConfig(path string) error {
	loadOnce.Do(func() {
		c, err := ReadGameConfig(path)
		if err != nil {
			loadErr = err
			return
		}
		cfg = c
	})
	return loadErr
}

// ReadGameConfig parses a config file without touching the global one.
func ReadGameConfig(path string) (*GameConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read game config: %w", err)
	}

	var c GameConfig
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("failed to unmarshal game config: %w", err)
	}
	return &c, nil
}

// GetGameConfig returns the global game configuration, nil if never loaded.
func GetGameConfig() *GameConfig {
	return cfg
}

// Rules converts the config into domain rules. Zero fields, a missing
// dutch_penalty, or a nil config fall back to the standard rules.
func (c *GameConfig) Rules() domain.Rules {
	rules := domain.DefaultRules()
	if c == nil {
		return rules
	}
	if c.HandSize > 0 {
		rules.HandSize = c.HandSize
	}
	if c.DutchPenalty != nil && *c.DutchPenalty >= 0 {
		rules.DutchPenalty = *c.DutchPenalty
	}
	if c.GameOverScore > 0 {
		rules.GameOverScore = c.GameOverScore
	}
	return rules
}

// Seats returns the configured table size, or the default.
func (c *GameConfig) Seats() int {
	if c == nil || c.MaxSeats <= 0 {
		return DefaultMaxSeats
	}
	return c.MaxSeats
}

// Ticks returns the configured match tick rate clamped to Nakama's 1..60 range.
func (c *GameConfig) Ticks() int {
	if c == nil || c.TickRate <= 0 {
		return DefaultTickRate
	}
	if c.TickRate > 60 {
		return 60
	}
	return c.TickRate
}
