package eventbus

import (
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"cardbattle/internal/game"
)

type recordingPublisher struct {
	subjects []string
	payloads [][]byte
	err      error
}

func (p *recordingPublisher) Publish(subject string, data []byte) error {
	if p.err != nil {
		return p.err
	}
	p.subjects = append(p.subjects, subject)
	p.payloads = append(p.payloads, data)
	return nil
}

func TestSubject(t *testing.T) {
	cases := map[string]string{
		"abc123": "cardbattle.abc123.events",
		"a.b":    "cardbattle.a_b.events",
		"x*>":    "cardbattle.x__.events",
		"":       "cardbattle._.events",
	}
	for id, want := range cases {
		if got := Subject(id); got != want {
			t.Errorf("Subject(%q) = %q, want %q", id, got, want)
		}
	}
}

func TestBridgePublish(t *testing.T) {
	pub := &recordingPublisher{}
	b := newBridge(pub, nil)
	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	b.Publish(game.Event{Kind: game.EventCardDied, GameID: "g1", At: at, Side: game.SideOpponent, Slot: 1, Round: 3})

	if len(pub.subjects) != 1 || pub.subjects[0] != "cardbattle.g1.events" {
		t.Fatalf("subjects %v", pub.subjects)
	}
	ev, err := Decode(pub.payloads[0])
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if ev.Kind != game.EventCardDied || ev.Side != game.SideOpponent || ev.Slot != 1 || ev.Round != 3 {
		t.Errorf("decoded %+v", ev)
	}
	if !ev.At.Equal(at) {
		t.Errorf("At %v, want %v", ev.At, at)
	}
}

func TestBridgePublishFailureIsLogged(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	b := newBridge(&recordingPublisher{err: errors.New("broker down")}, zap.New(core))

	b.Publish(game.Event{Kind: game.EventTimerTick, GameID: "g1"})

	if logs.Len() != 1 {
		t.Fatalf("logged %d entries, want 1", logs.Len())
	}
	if msg := logs.All()[0].Message; msg != "publish event" {
		t.Errorf("message %q", msg)
	}
}

func TestDecodeInvalid(t *testing.T) {
	if _, err := Decode([]byte("{")); err == nil {
		t.Fatal("expected error")
	}
}

func TestCloseWithoutConnection(t *testing.T) {
	var b *Bridge
	if err := b.Close(); err != nil {
		t.Errorf("nil bridge Close: %v", err)
	}
	if err := newBridge(&recordingPublisher{}, nil).Close(); err != nil {
		t.Errorf("Close: %v", err)
	}
}
