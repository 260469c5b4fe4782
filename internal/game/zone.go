package game

// ZoneSet is one side's fixed row of fighting slots. Each slot holds at most
// one card.
type ZoneSet struct {
	slots []*Card
}

// NewZoneSet returns n empty slots.
func NewZoneSet(n int) *ZoneSet {
	if n < 1 {
		n = 1
	}
	return &ZoneSet{slots: make([]*Card, n)}
}

// Len returns the number of slots.
func (z *ZoneSet) Len() int {
	return len(z.slots)
}

func (z *ZoneSet) check(op string, slot int) error {
	if slot < 0 || slot >= len(z.slots) {
		return &IndexError{Op: op, Index: slot, Len: len(z.slots)}
	}
	return nil
}

// Occupant returns the card in slot, dead or alive.
func (z *ZoneSet) Occupant(slot int) (*Card, bool) {
	if slot < 0 || slot >= len(z.slots) || z.slots[slot] == nil {
		return nil, false
	}
	return z.slots[slot], true
}

// Live returns the slot's occupant if it is still alive. A dead card waiting
// for removal leaves the slot logically free.
func (z *ZoneSet) Live(slot int) (*Card, bool) {
	c, ok := z.Occupant(slot)
	if !ok || !c.Alive() {
		return nil, false
	}
	return c, true
}

// Place puts card into slot. A dead occupant awaiting removal is discarded.
func (z *ZoneSet) Place(card *Card, slot int) error {
	if err := z.check("place", slot); err != nil {
		return err
	}
	if _, ok := z.Live(slot); ok {
		return &CapacityError{Op: "place", Index: slot, Err: ErrSlotOccupied}
	}
	z.slots[slot] = card
	return nil
}

// FilledSlots counts slots whose occupant is alive and committed.
func (z *ZoneSet) FilledSlots() int {
	n := 0
	for _, c := range z.slots {
		if c.Active() {
			n++
		}
	}
	return n
}

// LiveSlots counts slots holding a live card, committed or not.
func (z *ZoneSet) LiveSlots() int {
	n := 0
	for _, c := range z.slots {
		if c != nil && c.Alive() {
			n++
		}
	}
	return n
}

// IsFull reports whether every slot holds an active card.
func (z *ZoneSet) IsFull() bool {
	return z.FilledSlots() == len(z.slots)
}

// HasEmpty reports whether at least one slot lacks an active card.
func (z *ZoneSet) HasEmpty() bool {
	return !z.IsFull()
}

// Damage applies amount to the occupant of slot and reports whether it is
// still alive. An empty slot reports false.
func (z *ZoneSet) Damage(slot int, amount int) (bool, error) {
	if err := z.check("damage", slot); err != nil {
		return false, err
	}
	c := z.slots[slot]
	if c == nil {
		return false, nil
	}
	return c.TakeDamage(amount), nil
}

// Remove evicts and returns the occupant of slot, or nil when it is empty.
func (z *ZoneSet) Remove(slot int) (*Card, error) {
	if err := z.check("remove", slot); err != nil {
		return nil, err
	}
	c := z.slots[slot]
	z.slots[slot] = nil
	return c, nil
}

// RemoveIf evicts the occupant of slot only if it is the card with id.
func (z *ZoneSet) RemoveIf(slot int, id string) bool {
	c, ok := z.Occupant(slot)
	if !ok || c.ID != id {
		return false
	}
	z.slots[slot] = nil
	return true
}

// Find returns the slot holding the card with id.
func (z *ZoneSet) Find(id string) (int, bool) {
	for i, c := range z.slots {
		if c != nil && c.ID == id {
			return i, true
		}
	}
	return -1, false
}

// Clear empties every slot.
func (z *ZoneSet) Clear() {
	for i := range z.slots {
		z.slots[i] = nil
	}
}

func (z *ZoneSet) snapshot() []*Card {
	out := make([]*Card, len(z.slots))
	for i, c := range z.slots {
		if c != nil {
			cp := c.clone()
			out[i] = &cp
		}
	}
	return out
}
