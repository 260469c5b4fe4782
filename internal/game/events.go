package game

import "time"

// EventKind names an engine event.
type EventKind string

const (
	EventPhaseChanged     EventKind = "phase_changed"
	EventValidationFailed EventKind = "validation_failed"
	EventCardDied         EventKind = "card_died"
	EventRoundAdvanced    EventKind = "round_advanced"
	EventGameWon          EventKind = "game_won"
	EventGameLost         EventKind = "game_lost"
	// Rendering hints; no rule depends on them.
	EventCardsDealt    EventKind = "cards_dealt"
	EventCardCommitted EventKind = "card_committed"
	EventCardRemoved   EventKind = "card_removed"
	EventTimerTick     EventKind = "timer_tick"
	EventBoardChanged  EventKind = "board_changed"
)

// Side identifies whose zones an event refers to.
type Side string

const (
	SidePlayer   Side = "player"
	SideOpponent Side = "opponent"
)

// Event is published to the presenter after every state change.
type Event struct {
	Kind    EventKind `json:"kind"`
	GameID  string    `json:"game_id"`
	At      time.Time `json:"at"`
	Phase   Phase     `json:"phase,omitempty"`
	Step    Step      `json:"step,omitempty"`
	Message string    `json:"message,omitempty"`
	Side    Side      `json:"side,omitempty"`
	Slot    int       `json:"slot"`
	Round   int       `json:"round,omitempty"`
	Coins   int       `json:"coins,omitempty"`
	Seconds int       `json:"seconds,omitempty"`
	Count   int       `json:"count,omitempty"`
}

// EventSink consumes engine events.
type EventSink interface {
	Publish(Event)
}

// EventSinkFunc adapts a function to EventSink.
type EventSinkFunc func(Event)

func (f EventSinkFunc) Publish(ev Event) { f(ev) }

// MultiSink fans events out to several sinks in order.
type MultiSink []EventSink

func (m MultiSink) Publish(ev Event) {
	for _, s := range m {
		if s != nil {
			s.Publish(ev)
		}
	}
}

type discardSink struct{}

func (discardSink) Publish(Event) {}
