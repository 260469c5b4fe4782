package realtime

import (
	"testing"
)

func TestNewBroadcaster(t *testing.T) {
	b := NewBroadcaster[string]()
	if b == nil {
		t.Fatal("NewBroadcaster returned nil")
	}
	if b.Subscribers() != 0 {
		t.Errorf("Subscribers %d, want 0", b.Subscribers())
	}
}

func TestBroadcaster_Subscribe(t *testing.T) {
	b := NewBroadcaster[string]()
	ch := b.Subscribe()
	if ch == nil {
		t.Fatal("Subscribe returned nil channel")
	}
	if b.Subscribers() != 1 {
		t.Errorf("Subscribers %d, want 1", b.Subscribers())
	}
	b.Unsubscribe(ch)
}

func TestBroadcaster_PublishDeliversToSubscriber(t *testing.T) {
	b := NewBroadcaster[string]()
	ch := b.Subscribe()
	defer b.Unsubscribe(ch)

	b.Publish("board")
	got := <-ch
	if got != "board" {
		t.Errorf("got event %q, want %q", got, "board")
	}
}

func TestBroadcaster_PublishDeliversToMultipleSubscribers(t *testing.T) {
	b := NewBroadcaster[int]()
	ch1 := b.Subscribe()
	ch2 := b.Subscribe()
	defer b.Unsubscribe(ch1)
	defer b.Unsubscribe(ch2)

	b.Publish(7)
	if got := <-ch1; got != 7 {
		t.Errorf("ch1 got %d, want 7", got)
	}
	if got := <-ch2; got != 7 {
		t.Errorf("ch2 got %d, want 7", got)
	}
}

func TestBroadcaster_UnsubscribeClosesChannel(t *testing.T) {
	b := NewBroadcaster[string]()
	ch := b.Subscribe()
	b.Unsubscribe(ch)
	_, open := <-ch
	if open {
		t.Error("channel should be closed after Unsubscribe")
	}
	// second unsubscribe is a no-op
	b.Unsubscribe(ch)
}

func TestBroadcaster_PublishDropsWhenLagging(t *testing.T) {
	b := NewBroadcaster[int]()
	ch := b.Subscribe()
	defer b.Unsubscribe(ch)
	for i := 0; i < cap(ch)+5; i++ {
		b.Publish(i)
	}
	if len(ch) != cap(ch) {
		t.Errorf("buffered %d, want %d", len(ch), cap(ch))
	}
}
