package game

import (
	"context"
	"fmt"
	"time"
)

// Intent names a presenter command.
type Intent string

const (
	IntentContinue Intent = "continue"
	IntentReset    Intent = "reset"
	IntentPlace    Intent = "place"
	IntentRecall   Intent = "recall"
	IntentReorder  Intent = "reorder"
)

// Command is a presenter intent in transport-neutral form.
type Command struct {
	Intent    Intent `json:"intent"`
	CardID    string `json:"card_id,omitempty"`
	Slot      int    `json:"slot"`
	DeckIndex int    `json:"deck_index"`
	From      int    `json:"from"`
	To        int    `json:"to"`
}

// Apply executes cmd against the engine.
func (e *Engine) Apply(ctx context.Context, cmd Command, now time.Time) error {
	switch cmd.Intent {
	case IntentContinue:
		return e.Continue(ctx, now)
	case IntentReset:
		e.Reset(ctx, now)
		return nil
	case IntentPlace:
		return e.PlaceCard(cmd.CardID, cmd.Slot, now)
	case IntentRecall:
		return e.RecallCard(cmd.Slot, cmd.DeckIndex, now)
	case IntentReorder:
		return e.ReorderDeck(cmd.From, cmd.To, now)
	}
	return &ValidationError{Message: fmt.Sprintf("unknown intent %q", cmd.Intent)}
}

// PlaceCard moves the card with cardID from the deck, or from another zone
// slot, into slot.
func (e *Engine) PlaceCard(cardID string, slot int, now time.Time) error {
	e.mu.Lock()
	e.advanceLocked(now)
	err := e.placeLocked(cardID, slot, now)
	e.unlockAndDispatch(context.Background())
	return err
}

func (e *Engine) placeLocked(cardID string, slot int, now time.Time) error {
	if err := e.requirePlaying("place"); err != nil {
		return err
	}
	if err := e.zones.check("place", slot); err != nil {
		return err
	}
	if src, ok := e.zones.Find(cardID); ok {
		c, _ := e.zones.Occupant(src)
		if !c.Alive() {
			return fmt.Errorf("place %s: %w", cardID, ErrCardNotFound)
		}
		if src == slot {
			return nil
		}
		if _, busy := e.zones.Live(slot); busy {
			return &CapacityError{Op: "place", Index: slot, Err: ErrSlotOccupied}
		}
		if _, err := e.zones.Remove(src); err != nil {
			return err
		}
		if err := e.zones.Place(c, slot); err != nil {
			return err
		}
		e.emit(now, Event{Kind: EventBoardChanged, Side: SidePlayer, Slot: slot})
		return nil
	}

	if _, busy := e.zones.Live(slot); busy {
		return &CapacityError{Op: "place", Index: slot, Err: ErrSlotOccupied}
	}
	c, ok := e.deck.TakeByID(cardID)
	if !ok {
		return fmt.Errorf("place %s: %w", cardID, ErrCardNotFound)
	}
	if err := e.zones.Place(c, slot); err != nil {
		return err
	}
	e.emit(now, Event{Kind: EventBoardChanged, Side: SidePlayer, Slot: slot})
	return nil
}

// RecallCard returns the occupant of slot to the deck at deckIndex.
func (e *Engine) RecallCard(slot, deckIndex int, now time.Time) error {
	e.mu.Lock()
	e.advanceLocked(now)
	err := e.recallLocked(slot, deckIndex, now)
	e.unlockAndDispatch(context.Background())
	return err
}

func (e *Engine) recallLocked(slot, deckIndex int, now time.Time) error {
	if err := e.requirePlaying("recall"); err != nil {
		return err
	}
	if err := e.zones.check("recall", slot); err != nil {
		return err
	}
	c, ok := e.zones.Live(slot)
	if !ok {
		return fmt.Errorf("recall slot %d: %w", slot, ErrCardNotFound)
	}
	if err := e.deck.Insert(c, deckIndex); err != nil {
		return err
	}
	if _, err := e.zones.Remove(slot); err != nil {
		return err
	}
	e.emit(now, Event{Kind: EventBoardChanged, Side: SidePlayer, Slot: slot})
	return nil
}

// ReorderDeck moves the deck card at from to position to.
func (e *Engine) ReorderDeck(from, to int, now time.Time) error {
	e.mu.Lock()
	e.advanceLocked(now)
	err := e.requirePlaying("reorder")
	if err == nil {
		err = e.deck.Move(from, to)
	}
	if err == nil && from != to {
		e.emit(now, Event{Kind: EventBoardChanged, Side: SidePlayer})
	}
	e.unlockAndDispatch(context.Background())
	return err
}
