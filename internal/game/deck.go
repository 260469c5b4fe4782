package game

// DefaultDeckCapacity is the number of cards a player may hold.
const DefaultDeckCapacity = 4

// Deck is the ordered holding area for cards not yet placed in a zone.
type Deck struct {
	capacity int
	cards    []*Card
}

// NewDeck returns an empty deck with the given capacity.
func NewDeck(capacity int) *Deck {
	if capacity < 1 {
		capacity = DefaultDeckCapacity
	}
	return &Deck{capacity: capacity}
}

// Len returns the number of cards in the deck.
func (d *Deck) Len() int {
	return len(d.cards)
}

// Capacity returns the deck's capacity.
func (d *Deck) Capacity() int {
	return d.capacity
}

// AvailableSpace returns how many more cards fit.
func (d *Deck) AvailableSpace() int {
	return d.capacity - len(d.cards)
}

// Add appends cards, marking each uncommitted. Nothing is added if the cards
// would not all fit.
func (d *Deck) Add(cards ...*Card) error {
	if len(cards) > d.AvailableSpace() {
		return &CapacityError{Op: "deck add", Index: len(d.cards), Err: ErrDeckFull}
	}
	for _, c := range cards {
		c.Committed = false
		d.cards = append(d.cards, c)
	}
	return nil
}

// Insert puts card at index, shifting later cards back. The card keeps its
// committed state.
func (d *Deck) Insert(card *Card, index int) error {
	if d.AvailableSpace() < 1 {
		return &CapacityError{Op: "deck insert", Index: index, Err: ErrDeckFull}
	}
	if index < 0 || index > len(d.cards) {
		return &IndexError{Op: "deck insert", Index: index, Len: len(d.cards) + 1}
	}
	d.cards = append(d.cards, nil)
	copy(d.cards[index+1:], d.cards[index:])
	d.cards[index] = card
	return nil
}

// Take removes up to count cards from the front. It returns fewer when the
// deck runs short.
func (d *Deck) Take(count int) []*Card {
	if count <= 0 {
		return nil
	}
	if count > len(d.cards) {
		count = len(d.cards)
	}
	out := make([]*Card, count)
	copy(out, d.cards[:count])
	d.cards = append(d.cards[:0], d.cards[count:]...)
	return out
}

// TakeByID removes the card with id.
func (d *Deck) TakeByID(id string) (*Card, bool) {
	i, ok := d.Find(id)
	if !ok {
		return nil, false
	}
	c := d.cards[i]
	d.cards = append(d.cards[:i], d.cards[i+1:]...)
	return c, true
}

// Find returns the position of the card with id.
func (d *Deck) Find(id string) (int, bool) {
	for i, c := range d.cards {
		if c.ID == id {
			return i, true
		}
	}
	return -1, false
}

// Move reorders the deck, moving the card at from to position to.
func (d *Deck) Move(from, to int) error {
	if from < 0 || from >= len(d.cards) {
		return &IndexError{Op: "deck move", Index: from, Len: len(d.cards)}
	}
	if to < 0 || to >= len(d.cards) {
		return &IndexError{Op: "deck move", Index: to, Len: len(d.cards)}
	}
	if from == to {
		return nil
	}
	c := d.cards[from]
	if from < to {
		copy(d.cards[from:to], d.cards[from+1:to+1])
	} else {
		copy(d.cards[to+1:from+1], d.cards[to:from])
	}
	d.cards[to] = c
	return nil
}

func (d *Deck) snapshot() []Card {
	out := make([]Card, 0, len(d.cards))
	for _, c := range d.cards {
		out = append(out, c.clone())
	}
	return out
}
