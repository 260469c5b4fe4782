package game

import (
	"context"
	"time"
)

// Rules are the tunable constants of a match.
type Rules struct {
	Zones        int
	DeckCapacity int
	HandSize     int
	RoundSeconds int

	TickInterval        time.Duration
	SettleDelay         time.Duration
	DeathRemovalDelay   time.Duration
	OpponentFillDelay   time.Duration
	DamageExchangeDelay time.Duration
}

// DefaultRules returns the standard two-zone, four-card, thirty-second match.
func DefaultRules() Rules {
	return Rules{
		Zones:               2,
		DeckCapacity:        DefaultDeckCapacity,
		HandSize:            4,
		RoundSeconds:        30,
		TickInterval:        time.Second,
		SettleDelay:         500 * time.Millisecond,
		DeathRemovalDelay:   time.Second,
		OpponentFillDelay:   2 * time.Second,
		DamageExchangeDelay: 700 * time.Millisecond,
	}
}

// withDefaults fills zero or negative fields from DefaultRules.
func (r Rules) withDefaults() Rules {
	d := DefaultRules()
	if r.Zones <= 0 {
		r.Zones = d.Zones
	}
	if r.DeckCapacity <= 0 {
		r.DeckCapacity = d.DeckCapacity
	}
	if r.HandSize <= 0 {
		r.HandSize = d.HandSize
	}
	if r.HandSize > r.DeckCapacity {
		r.HandSize = r.DeckCapacity
	}
	if r.RoundSeconds <= 0 {
		r.RoundSeconds = d.RoundSeconds
	}
	if r.TickInterval <= 0 {
		r.TickInterval = d.TickInterval
	}
	if r.SettleDelay <= 0 {
		r.SettleDelay = d.SettleDelay
	}
	if r.DeathRemovalDelay <= 0 {
		r.DeathRemovalDelay = d.DeathRemovalDelay
	}
	if r.OpponentFillDelay <= 0 {
		r.OpponentFillDelay = d.OpponentFillDelay
	}
	if r.DamageExchangeDelay <= 0 {
		r.DamageExchangeDelay = d.DamageExchangeDelay
	}
	return r
}

// DeckSupplier serves fresh cards for the player's deck.
type DeckSupplier interface {
	// ServeHand returns count new cards; count <= 0 yields none.
	ServeHand(count int) []*Card
}

// Scorer computes the coins earned at the end of a round.
type Scorer interface {
	Score(surviving []Card, roundTimes []int) int
}

// ScorerFunc adapts a function to Scorer.
type ScorerFunc func(surviving []Card, roundTimes []int) int

func (f ScorerFunc) Score(surviving []Card, roundTimes []int) int { return f(surviving, roundTimes) }

// MatchResult summarises a finished match.
type MatchResult struct {
	GameID     string
	Won        bool
	Lost       bool
	TimedOut   bool
	Rounds     int
	Coins      int
	RoundTimes []int
	FinishedAt time.Time
}

// Recorder stores finished matches.
type Recorder interface {
	Record(ctx context.Context, result MatchResult) error
}
