// Package config loads server settings from the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"

	"cardbattle/internal/game"
)

// Config is the process configuration. Every variable is prefixed CARDBATTLE_.
type Config struct {
	Port           string `env:"PORT" envDefault:"8080"`
	BaseURL        string `env:"BASE_URL"`
	LogLevel       string `env:"LOG_LEVEL" envDefault:"info"`
	LogDevelopment bool   `env:"LOG_DEVELOPMENT" envDefault:"false"`
	HistoryPath    string `env:"HISTORY_PATH"`
	NATSURL        string `env:"NATS_URL"`
	OTLPEndpoint   string `env:"OTLP_ENDPOINT"`
	// SupplySeed fixes the card catalog shuffle; zero means random.
	SupplySeed   uint64        `env:"SUPPLY_SEED" envDefault:"0"`
	WriteTimeout time.Duration `env:"WRITE_TIMEOUT" envDefault:"10s"`
	// FinishedTTL is how long a finished, unwatched match stays in memory.
	FinishedTTL time.Duration `env:"FINISHED_TTL" envDefault:"10m"`

	Rules RulesConfig `envPrefix:"RULES_"`
}

// RulesConfig mirrors game.Rules.
type RulesConfig struct {
	Zones               int           `env:"ZONES" envDefault:"2"`
	DeckCapacity        int           `env:"DECK_CAPACITY" envDefault:"4"`
	HandSize            int           `env:"HAND_SIZE" envDefault:"4"`
	RoundSeconds        int           `env:"ROUND_SECONDS" envDefault:"30"`
	TickInterval        time.Duration `env:"TICK_INTERVAL" envDefault:"1s"`
	SettleDelay         time.Duration `env:"SETTLE_DELAY" envDefault:"500ms"`
	DeathRemovalDelay   time.Duration `env:"DEATH_REMOVAL_DELAY" envDefault:"1s"`
	OpponentFillDelay   time.Duration `env:"OPPONENT_FILL_DELAY" envDefault:"2s"`
	DamageExchangeDelay time.Duration `env:"DAMAGE_EXCHANGE_DELAY" envDefault:"700ms"`
}

// Load parses the process environment. A bare PORT is honoured when
// CARDBATTLE_PORT is unset.
func Load() (Config, error) {
	return parse(env.Options{Prefix: "CARDBATTLE_"}, os.Getenv("PORT"))
}

// LoadFrom parses vars instead of the process environment.
func LoadFrom(vars map[string]string) (Config, error) {
	return parse(env.Options{Prefix: "CARDBATTLE_", Environment: vars}, vars["PORT"])
}

func parse(opts env.Options, port string) (Config, error) {
	var cfg Config
	if err := env.ParseWithOptions(&cfg, opts); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if _, set := lookup(opts, "CARDBATTLE_PORT"); !set {
		if port = strings.TrimSpace(port); port != "" {
			cfg.Port = port
		}
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func lookup(opts env.Options, key string) (string, bool) {
	if opts.Environment != nil {
		v, ok := opts.Environment[key]
		return v, ok
	}
	return os.LookupEnv(key)
}

// Validate reports settings the engine cannot run with.
func (c Config) Validate() error {
	var errs []error
	if strings.TrimSpace(c.Port) == "" {
		errs = append(errs, errors.New("port is required"))
	}
	if c.FinishedTTL <= 0 {
		errs = append(errs, fmt.Errorf("finished ttl must be positive, got %s", c.FinishedTTL))
	}
	r := c.Rules
	if r.Zones < 1 {
		errs = append(errs, fmt.Errorf("rules: zones must be positive, got %d", r.Zones))
	}
	if r.DeckCapacity < 1 {
		errs = append(errs, fmt.Errorf("rules: deck capacity must be positive, got %d", r.DeckCapacity))
	}
	if r.HandSize < 1 || r.HandSize > r.DeckCapacity {
		errs = append(errs, fmt.Errorf("rules: hand size %d must be within 1..%d", r.HandSize, r.DeckCapacity))
	}
	if r.RoundSeconds < 1 {
		errs = append(errs, fmt.Errorf("rules: round seconds must be positive, got %d", r.RoundSeconds))
	}
	if r.TickInterval <= 0 {
		errs = append(errs, fmt.Errorf("rules: tick interval must be positive, got %s", r.TickInterval))
	}
	return errors.Join(errs...)
}

// Addr returns the listen address.
func (c Config) Addr() string {
	return ":" + strings.TrimPrefix(strings.TrimSpace(c.Port), ":")
}

// GameRules converts the rules section for the engine.
func (c Config) GameRules() game.Rules {
	return game.Rules{
		Zones:               c.Rules.Zones,
		DeckCapacity:        c.Rules.DeckCapacity,
		HandSize:            c.Rules.HandSize,
		RoundSeconds:        c.Rules.RoundSeconds,
		TickInterval:        c.Rules.TickInterval,
		SettleDelay:         c.Rules.SettleDelay,
		DeathRemovalDelay:   c.Rules.DeathRemovalDelay,
		OpponentFillDelay:   c.Rules.OpponentFillDelay,
		DamageExchangeDelay: c.Rules.DamageExchangeDelay,
	}
}
