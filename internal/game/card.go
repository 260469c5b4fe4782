package game

import (
	"fmt"

	"github.com/google/uuid"
)

// CardMeta is the static description a card is minted from.
type CardMeta struct {
	Name      string
	ImageRef  string
	Damage    int
	MaxHealth int
}

// Card is a combat unit. A card is owned by exactly one container at a time:
// the deck, a single zone slot, or the opponent roster.
type Card struct {
	ID        string
	Name      string
	ImageRef  string
	Damage    int
	MaxHealth int
	Health    int
	// Committed is set once the card has settled into its container and may
	// take part in a round.
	Committed bool
}

// NewCard mints a card at full health from meta.
func NewCard(meta CardMeta) (*Card, error) {
	if meta.MaxHealth <= 0 {
		return nil, fmt.Errorf("card %q: max health must be positive, got %d", meta.Name, meta.MaxHealth)
	}
	if meta.Damage < 0 {
		return nil, fmt.Errorf("card %q: damage must not be negative, got %d", meta.Name, meta.Damage)
	}
	return &Card{
		ID:        uuid.NewString(),
		Name:      meta.Name,
		ImageRef:  meta.ImageRef,
		Damage:    meta.Damage,
		MaxHealth: meta.MaxHealth,
		Health:    meta.MaxHealth,
	}, nil
}

// MustCard is NewCard for static rosters; it panics on invalid meta.
func MustCard(meta CardMeta) *Card {
	c, err := NewCard(meta)
	if err != nil {
		panic(err)
	}
	return c
}

// Alive reports whether the card still has health left.
func (c *Card) Alive() bool {
	return c.Health > 0
}

// TakeDamage lowers health by amount, clamped at zero, and reports whether the
// card survived. Negative amounts are ignored.
func (c *Card) TakeDamage(amount int) bool {
	if amount > 0 {
		c.Health -= amount
		if c.Health < 0 {
			c.Health = 0
		}
	}
	return c.Alive()
}

// Active reports whether the card counts towards a filled zone.
func (c *Card) Active() bool {
	return c != nil && c.Committed && c.Alive()
}

func (c *Card) String() string {
	return fmt.Sprintf("%s(%d/%d dmg %d)", c.Name, c.Health, c.MaxHealth, c.Damage)
}

// clone returns a copy that shares nothing with c.
func (c *Card) clone() Card {
	return *c
}
