package game

import (
	"context"
	"crypto/rand"
	"encoding/base32"
	"strings"
	"time"

	"go.uber.org/zap"

	"cardbattle/pkg/realtime"
)

// StoreOptions are shared by every engine the store creates.
type StoreOptions struct {
	Rules    Rules
	Supplier DeckSupplier
	Scorer   Scorer
	Recorder Recorder
	Logger   *zap.Logger
	// Sinks receive every event of every game in addition to the room broadcaster.
	Sinks    []EventSink
	Opponent func() []*Card
	// FinishedTTL is how long a finished match with no subscribers is kept
	// before it is evicted. Zero means DefaultFinishedTTL.
	FinishedTTL time.Duration
}

// DefaultFinishedTTL keeps a finished match around long enough to show the result.
const DefaultFinishedTTL = 10 * time.Minute

// Store holds games and delegates to realtime.RoomStore for broadcast and timing loops.
type Store struct {
	r    *realtime.RoomStore[*Engine, Event]
	opts StoreOptions
}

// NewStore creates an in-memory game store.
func NewStore(opts StoreOptions) *Store {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.FinishedTTL <= 0 {
		opts.FinishedTTL = DefaultFinishedTTL
	}
	return &Store{r: realtime.NewRoomStore[*Engine, Event](), opts: opts}
}

// CreateGame registers a new match, deals its first hand and starts its loop.
func (s *Store) CreateGame(ctx context.Context, now time.Time) *Engine {
	id := newID()
	sinks := MultiSink{EventSinkFunc(func(ev Event) { s.r.Publish(id, ev) })}
	sinks = append(sinks, s.opts.Sinks...)
	eng := NewEngine(Options{
		ID:       id,
		Rules:    s.opts.Rules,
		Supplier: s.opts.Supplier,
		Scorer:   s.opts.Scorer,
		Sink:     sinks,
		Recorder: s.opts.Recorder,
		Logger:   s.opts.Logger,
		Opponent: s.opts.Opponent,
	})
	s.r.Create(id, eng)
	eng.Reset(ctx, now)
	s.EnsureRoundLoop(id)
	s.opts.Logger.Info("game created", zap.String("game_id", id))
	return eng
}

// GetGame returns a game by ID if it exists.
func (s *Store) GetGame(id string) (*Engine, bool) {
	room, ok := s.r.Get(id)
	if !ok || room.State == nil {
		return nil, false
	}
	return room.State, true
}

// DeleteGame drops a game and stops its loop.
func (s *Store) DeleteGame(id string) {
	s.r.Delete(id)
}

// Len returns the number of games held.
func (s *Store) Len() int {
	return s.r.Len()
}

// Broadcaster returns the event broadcaster for a game, creating it if missing.
func (s *Store) Broadcaster(id string) *realtime.Broadcaster[Event] {
	return s.r.Broadcaster(id)
}

// EnsureRoundLoop starts the timing loop for a game, or wakes it if it is
// already running so it picks up a changed schedule. Once the match is over
// the loop waits out FinishedTTL and then evicts the game, unless someone is
// still subscribed to it.
func (s *Store) EnsureRoundLoop(id string) {
	getState := func() *Engine {
		eng, _ := s.GetGame(id)
		return eng
	}
	tick := func(state *Engine, now time.Time) (time.Time, bool) {
		if state == nil {
			return time.Time{}, true
		}
		state.Advance(context.Background(), now)
		if next, ok := state.NextWake(); ok {
			return next, false
		}
		ended, ok := state.FinishedAt()
		if !ok {
			return time.Time{}, true
		}
		if evictAt := ended.Add(s.opts.FinishedTTL); now.Before(evictAt) {
			return evictAt, false
		}
		if s.r.Subscribers(id) > 0 {
			return now.Add(s.opts.FinishedTTL), false
		}
		s.evict(id, state)
		return time.Time{}, true
	}
	s.r.RunLoop(id, getState, tick)
}

// evict drops a finished game unless it was reset in the meantime.
func (s *Store) evict(id string, eng *Engine) {
	if _, ok := eng.FinishedAt(); !ok {
		return
	}
	if cur, ok := s.GetGame(id); !ok || cur != eng {
		return
	}
	s.r.Delete(id)
	s.opts.Logger.Info("game evicted", zap.String("game_id", id))
}

// WakeRoundLoop unblocks the round loop so it recomputes.
func (s *Store) WakeRoundLoop(id string) {
	s.r.Wake(id)
}

// LoopRunning reports whether the game's timing loop is active.
func (s *Store) LoopRunning(id string) bool {
	return s.r.Running(id)
}

func newID() string {
	// 10 bytes -> 16 chars of base32, short and url-safe.
	buf := make([]byte, 10)
	_, _ = rand.Read(buf)
	encoder := base32.StdEncoding.WithPadding(base32.NoPadding)
	return strings.ToLower(encoder.EncodeToString(buf))
}
