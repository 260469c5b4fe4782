package config

import (
	"testing"
	"time"

	"cardbattle/internal/game"
)

func TestLoadFromDefaults(t *testing.T) {
	cfg, err := LoadFrom(map[string]string{})
	if err != nil {
		t.Fatalf("LoadFrom: %v", err)
	}
	if cfg.Port != "8080" || cfg.Addr() != ":8080" {
		t.Errorf("port %q addr %q, want 8080", cfg.Port, cfg.Addr())
	}
	if cfg.LogLevel != "info" {
		t.Errorf("log level %q, want info", cfg.LogLevel)
	}
	if cfg.WriteTimeout != 10*time.Second {
		t.Errorf("write timeout %v, want 10s", cfg.WriteTimeout)
	}
	if cfg.FinishedTTL != 10*time.Minute {
		t.Errorf("finished ttl %v, want 10m", cfg.FinishedTTL)
	}
	if got, want := cfg.GameRules(), game.DefaultRules(); got != want {
		t.Errorf("rules %+v, want %+v", got, want)
	}
}

func TestLoadFromOverrides(t *testing.T) {
	cfg, err := LoadFrom(map[string]string{
		"CARDBATTLE_PORT":                "9000",
		"CARDBATTLE_NATS_URL":            "nats://localhost:4222",
		"CARDBATTLE_SUPPLY_SEED":         "42",
		"CARDBATTLE_FINISHED_TTL":        "90s",
		"CARDBATTLE_RULES_ZONES":         "3",
		"CARDBATTLE_RULES_ROUND_SECONDS": "45",
		"CARDBATTLE_RULES_SETTLE_DELAY":  "250ms",
		"PORT":                           "7000",
	})
	if err != nil {
		t.Fatalf("LoadFrom: %v", err)
	}
	if cfg.Port != "9000" {
		t.Errorf("port %q, want the prefixed value 9000", cfg.Port)
	}
	if cfg.NATSURL != "nats://localhost:4222" || cfg.SupplySeed != 42 {
		t.Errorf("nats %q seed %d", cfg.NATSURL, cfg.SupplySeed)
	}
	if cfg.FinishedTTL != 90*time.Second {
		t.Errorf("finished ttl %v, want 90s", cfg.FinishedTTL)
	}
	rules := cfg.GameRules()
	if rules.Zones != 3 || rules.RoundSeconds != 45 || rules.SettleDelay != 250*time.Millisecond {
		t.Errorf("rules %+v", rules)
	}
}

func TestLoadFromBarePort(t *testing.T) {
	cfg, err := LoadFrom(map[string]string{"PORT": "3000"})
	if err != nil {
		t.Fatalf("LoadFrom: %v", err)
	}
	if cfg.Addr() != ":3000" {
		t.Errorf("addr %q, want :3000", cfg.Addr())
	}
}

func TestLoadFromInvalid(t *testing.T) {
	if _, err := LoadFrom(map[string]string{"CARDBATTLE_RULES_ZONES": "zero"}); err == nil {
		t.Error("expected parse error")
	}
	_, err := LoadFrom(map[string]string{
		"CARDBATTLE_RULES_HAND_SIZE":     "6",
		"CARDBATTLE_RULES_DECK_CAPACITY": "4",
	})
	if err == nil {
		t.Error("expected validation error for hand larger than deck")
	}
}
