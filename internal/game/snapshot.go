package game

import (
	"context"
	"time"
)

// Snapshot is a deep copy of an engine's state for rendering and tests.
type Snapshot struct {
	ID               string
	Phase            Phase
	Step             Step
	Round            int
	SecondsRemaining int
	RoundSeconds     int
	TimerRunning     bool
	RoundTimes       []int
	Won              bool
	Lost             bool
	TimedOut         bool
	Coins            int
	Deck             []Card
	DeckCapacity     int
	Zones            []*Card
	OpponentZones    []*Card
	RosterCount      int
	PendingJobs      int
}

// Snapshot returns a consistent copy of the current state after applying any
// work due at now.
func (e *Engine) Snapshot(now time.Time) Snapshot {
	e.mu.Lock()
	e.advanceLocked(now)
	snap := e.snapshotLocked()
	e.unlockAndDispatch(context.Background())
	return snap
}

func (e *Engine) snapshotLocked() Snapshot {
	times := make([]int, len(e.roundTimes))
	copy(times, e.roundTimes)
	return Snapshot{
		ID:               e.id,
		Phase:            e.phase,
		Step:             e.step,
		Round:            e.round,
		SecondsRemaining: e.timer.Remaining,
		RoundSeconds:     e.rules.RoundSeconds,
		TimerRunning:     e.timer.Running(),
		RoundTimes:       times,
		Won:              e.won,
		Lost:             e.lost,
		TimedOut:         e.timedOut,
		Coins:            e.coins,
		Deck:             e.deck.snapshot(),
		DeckCapacity:     e.deck.Capacity(),
		Zones:            e.zones.snapshot(),
		OpponentZones:    e.opponentZones.snapshot(),
		RosterCount:      e.roster.Len(),
		PendingJobs:      e.agenda.Len(),
	}
}

// Finished reports whether the match reached a terminal outcome.
func (s Snapshot) Finished() bool {
	return s.Phase == PhaseRoundEnd
}

// FilledZones counts the player's slots holding an active card.
func (s Snapshot) FilledZones() int {
	n := 0
	for _, c := range s.Zones {
		if c.Active() {
			n++
		}
	}
	return n
}
