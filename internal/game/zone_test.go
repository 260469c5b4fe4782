package game

import (
	"errors"
	"testing"
)

func committedCard(name string, damage, health int) *Card {
	c := MustCard(CardMeta{Name: name, Damage: damage, MaxHealth: health})
	c.Committed = true
	return c
}

func TestZoneSet_Place(t *testing.T) {
	z := NewZoneSet(2)
	a := committedCard("a", 1, 10)
	b := committedCard("b", 1, 10)

	if err := z.Place(a, 0); err != nil {
		t.Fatalf("Place: %v", err)
	}
	err := z.Place(b, 0)
	if !errors.Is(err, ErrSlotOccupied) {
		t.Errorf("Place into occupied slot err %v, want ErrSlotOccupied", err)
	}
	var capErr *CapacityError
	if !errors.As(err, &capErr) {
		t.Errorf("err %T, want *CapacityError", err)
	}
	if got, _ := z.Occupant(0); got != a {
		t.Error("rejected placement replaced the occupant")
	}

	err = z.Place(b, 2)
	if !errors.Is(err, ErrIndexOutOfRange) {
		t.Errorf("Place out of range err %v, want ErrIndexOutOfRange", err)
	}
	if err := z.Place(b, -1); !errors.Is(err, ErrIndexOutOfRange) {
		t.Errorf("Place negative err %v, want ErrIndexOutOfRange", err)
	}
}

func TestZoneSet_DeadOccupantDoesNotBlock(t *testing.T) {
	z := NewZoneSet(1)
	dead := committedCard("dead", 1, 5)
	_ = z.Place(dead, 0)
	dead.TakeDamage(5)

	if _, ok := z.Live(0); ok {
		t.Error("dead occupant should not be live")
	}
	if _, ok := z.Occupant(0); !ok {
		t.Error("dead occupant should still be present until removed")
	}
	fresh := committedCard("fresh", 1, 5)
	if err := z.Place(fresh, 0); err != nil {
		t.Fatalf("Place over dead occupant: %v", err)
	}
	if z.RemoveIf(0, dead.ID) {
		t.Error("RemoveIf must not evict a different card")
	}
	if got, _ := z.Occupant(0); got != fresh {
		t.Error("fresh card should occupy the slot")
	}
}

func TestZoneSet_FilledSlots(t *testing.T) {
	z := NewZoneSet(2)
	if z.FilledSlots() != 0 || z.IsFull() || !z.HasEmpty() {
		t.Error("empty zone set should have no filled slots")
	}
	a := committedCard("a", 1, 10)
	b := MustCard(CardMeta{Name: "b", Damage: 1, MaxHealth: 10})
	_ = z.Place(a, 0)
	_ = z.Place(b, 1)

	if z.FilledSlots() != 1 {
		t.Errorf("FilledSlots %d, want 1 (uncommitted card does not count)", z.FilledSlots())
	}
	if z.LiveSlots() != 2 {
		t.Errorf("LiveSlots %d, want 2", z.LiveSlots())
	}
	b.Committed = true
	if !z.IsFull() {
		t.Error("IsFull should be true once both cards are committed")
	}
}

func TestZoneSet_DamageAndRemove(t *testing.T) {
	z := NewZoneSet(2)
	a := committedCard("a", 1, 10)
	_ = z.Place(a, 0)

	alive, err := z.Damage(0, 4)
	if err != nil || !alive {
		t.Fatalf("Damage = %v, %v, want true, nil", alive, err)
	}
	if a.Health != 6 {
		t.Errorf("Health %d, want 6", a.Health)
	}
	alive, _ = z.Damage(0, 40)
	if alive || a.Health != 0 {
		t.Errorf("alive=%v health=%d, want false 0", alive, a.Health)
	}
	if alive, err := z.Damage(1, 5); alive || err != nil {
		t.Errorf("Damage on empty slot = %v, %v, want false, nil", alive, err)
	}
	if _, err := z.Damage(5, 1); !errors.Is(err, ErrIndexOutOfRange) {
		t.Errorf("Damage out of range err %v", err)
	}

	got, err := z.Remove(0)
	if err != nil || got != a {
		t.Errorf("Remove = %v, %v, want the occupant", got, err)
	}
	if got, err := z.Remove(0); got != nil || err != nil {
		t.Errorf("Remove on empty slot = %v, %v, want nil, nil", got, err)
	}
	if _, err := z.Remove(7); !errors.Is(err, ErrIndexOutOfRange) {
		t.Errorf("Remove out of range err %v, want ErrIndexOutOfRange", err)
	}
	if _, err := z.Remove(-1); !errors.Is(err, ErrIndexOutOfRange) {
		t.Errorf("Remove(-1) err %v, want ErrIndexOutOfRange", err)
	}
}
