package game

// Roster is the opponent's queue of cards waiting to enter a zone.
type Roster struct {
	cards []*Card
}

// NewRoster queues cards in order.
func NewRoster(cards []*Card) *Roster {
	r := &Roster{cards: make([]*Card, 0, len(cards))}
	for _, c := range cards {
		if c != nil {
			r.cards = append(r.cards, c)
		}
	}
	return r
}

// Len returns the number of queued cards.
func (r *Roster) Len() int {
	return len(r.cards)
}

// TryTake removes and returns the front card, if any.
func (r *Roster) TryTake() (*Card, bool) {
	if len(r.cards) == 0 {
		return nil, false
	}
	c := r.cards[0]
	r.cards[0] = nil
	r.cards = r.cards[1:]
	return c, true
}

// DemoRoster returns the practice opponent: eight identical cards, each
// progressively weakened so the match can be won.
func DemoRoster() []*Card {
	meta := CardMeta{
		Name:      "Sentinel",
		ImageRef:  "/static/images/card-example.svg",
		Damage:    100,
		MaxHealth: 500,
	}
	cards := make([]*Card, 8)
	for i := range cards {
		cards[i] = MustCard(meta)
		cards[i].TakeDamage((i + 1) * 60)
	}
	return cards
}
