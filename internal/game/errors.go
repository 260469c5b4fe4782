package game

import (
	"errors"
	"fmt"
)

var (
	ErrSlotOccupied    = errors.New("slot occupied")
	ErrDeckFull        = errors.New("deck full")
	ErrIndexOutOfRange = errors.New("index out of range")
	ErrCardNotFound    = errors.New("card not found")
	ErrResolving       = errors.New("round is resolving")
	ErrMatchOver       = errors.New("match is over")
)

// Validation messages reported when continue is attempted with an illegal board.
const (
	MsgEmptyZonesWithDeck = "There are empty fighting zones and you have cards left on your deck!"
	MsgNoCardsInZones     = "No cards in fighting zone!"
	MsgNextRound          = "Next round started"
)

// ValidationError is returned when continue is attempted with an illegal
// zone/deck configuration. The engine is left untouched.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// StateError is returned when an operation is attempted in the wrong phase.
type StateError struct {
	Op    string
	Phase Phase
	Err   error
}

func (e *StateError) Error() string {
	return fmt.Sprintf("%s rejected in phase %s: %v", e.Op, e.Phase, e.Err)
}

func (e *StateError) Unwrap() error {
	return e.Err
}

// CapacityError is returned when a slot is occupied or the deck is full.
type CapacityError struct {
	Op    string
	Index int
	Err   error
}

func (e *CapacityError) Error() string {
	return fmt.Sprintf("%s at %d: %v", e.Op, e.Index, e.Err)
}

func (e *CapacityError) Unwrap() error {
	return e.Err
}

// IndexError is returned for a slot or deck position outside the container.
type IndexError struct {
	Op    string
	Index int
	Len   int
}

func (e *IndexError) Error() string {
	return fmt.Sprintf("%s: index %d out of range [0,%d)", e.Op, e.Index, e.Len)
}

func (e *IndexError) Is(target error) bool {
	return target == ErrIndexOutOfRange
}
