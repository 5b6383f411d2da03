package config

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"dutch/internal/domain"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "game_config.json")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestReadGameConfig(t *testing.T) {
	path := writeConfig(t, `{"hand_size": 6, "dutch_penalty": 15, "max_seats": 6, "tick_rate": 90}`)

	c, err := ReadGameConfig(path)
	if err != nil {
		t.Fatalf("ReadGameConfig error: %v", err)
	}
	want := domain.Rules{HandSize: 6, DutchPenalty: 15, GameOverScore: 100}
	if got := c.Rules(); got != want {
		t.Fatalf("Rules() = %+v, want %+v", got, want)
	}
	if c.Seats() != 6 {
		t.Fatalf("Seats() = %d, want 6", c.Seats())
	}
	if c.Ticks() != 60 {
		t.Fatalf("Ticks() = %d, want clamp to 60", c.Ticks())
	}
}

func TestReadGameConfigZeroPenalty(t *testing.T) {
	c, err := ReadGameConfig(writeConfig(t, `{"dutch_penalty": 0}`))
	if err != nil {
		t.Fatalf("ReadGameConfig error: %v", err)
	}
	if got := c.Rules().DutchPenalty; got != 0 {
		t.Fatalf("DutchPenalty = %d, want 0", got)
	}

	c, err = ReadGameConfig(writeConfig(t, `{"hand_size": 5}`))
	if err != nil {
		t.Fatalf("ReadGameConfig error: %v", err)
	}
	if got := c.Rules().DutchPenalty; got != 10 {
		t.Fatalf("DutchPenalty = %d, want default 10", got)
	}
}

func TestReadGameConfigErrors(t *testing.T) {
	if _, err := ReadGameConfig(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Fatalf("expected error for missing file")
	}
	if _, err := ReadGameConfig(writeConfig(t, `{not json`)); err == nil {
		t.Fatalf("expected error for malformed file")
	}
}

func TestNilConfigDefaults(t *testing.T) {
	var c *GameConfig
	if got := c.Rules(); got != domain.DefaultRules() {
		t.Fatalf("Rules() = %+v, want defaults", got)
	}
	if c.Seats() != DefaultMaxSeats || c.Ticks() != DefaultTickRate {
		t.Fatalf("Seats/Ticks = %d/%d", c.Seats(), c.Ticks())
	}
}

func TestLoadEnv(t *testing.T) {
	t.Setenv("DUTCH_PLAYERS", "Ana,Bo,Cy")
	t.Setenv("DUTCH_SEED", "17")

	c, err := LoadEnv()
	if err != nil {
		t.Fatalf("LoadEnv error: %v", err)
	}
	if !reflect.DeepEqual(c.Players, []string{"Ana", "Bo", "Cy"}) {
		t.Fatalf("players = %v", c.Players)
	}
	if c.Seed != 17 || c.LogLevel != "info" {
		t.Fatalf("seed/log = %d/%q", c.Seed, c.LogLevel)
	}
}

func TestLoadEnvDefaults(t *testing.T) {
	t.Setenv("DUTCH_PLAYERS", "")
	os.Unsetenv("DUTCH_PLAYERS")

	c, err := LoadEnv()
	if err != nil {
		t.Fatalf("LoadEnv error: %v", err)
	}
	if !reflect.DeepEqual(c.Players, []string{"Joueur 1", "Joueur 2"}) {
		t.Fatalf("players = %v", c.Players)
	}
}

func TestLoadEnvBadSeed(t *testing.T) {
	t.Setenv("DUTCH_SEED", "abc")
	if _, err := LoadEnv(); err == nil {
		t.Fatalf("expected parse error")
	}
}
