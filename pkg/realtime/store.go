package realtime

import (
	"context"
	"sync"
	"time"
)

// Room holds state and a broadcaster for one room.
type Room[T any, E any] struct {
	ID    string
	State T
	hub   *Broadcaster[E]
}

// RoomStore manages rooms, their broadcasters and their timing loops.
type RoomStore[T any, E any] struct {
	mu    sync.RWMutex
	rooms map[string]*Room[T, E]
	loops map[string]context.CancelFunc
	wakes map[string]chan struct{}
}

// NewRoomStore creates an empty room store.
func NewRoomStore[T any, E any]() *RoomStore[T, E] {
	return &RoomStore[T, E]{
		rooms: make(map[string]*Room[T, E]),
		loops: make(map[string]context.CancelFunc),
		wakes: make(map[string]chan struct{}),
	}
}

// Create adds a room with the given id and state, and a new Broadcaster.
func (s *RoomStore[T, E]) Create(id string, state T) *Room[T, E] {
	s.mu.Lock()
	defer s.mu.Unlock()
	r := &Room[T, E]{ID: id, State: state, hub: NewBroadcaster[E]()}
	s.rooms[id] = r
	return r
}

// Get returns the room by ID if it exists.
func (s *RoomStore[T, E]) Get(id string) (*Room[T, E], bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.rooms[id]
	return r, ok
}

// Len returns the number of rooms.
func (s *RoomStore[T, E]) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.rooms)
}

// Delete removes the room and stops its loop.
func (s *RoomStore[T, E]) Delete(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if cancel, ok := s.loops[id]; ok {
		cancel()
		delete(s.loops, id)
		delete(s.wakes, id)
	}
	delete(s.rooms, id)
}

// Publish notifies subscribers of the room's broadcaster.
func (s *RoomStore[T, E]) Publish(id string, event E) {
	hub := s.Broadcaster(id)
	hub.Publish(event)
}

// Subscribers returns the number of subscribers of the room's broadcaster. It
// never creates a room.
func (s *RoomStore[T, E]) Subscribers(id string) int {
	s.mu.RLock()
	var hub *Broadcaster[E]
	if r, ok := s.rooms[id]; ok {
		hub = r.hub
	}
	s.mu.RUnlock()
	if hub == nil {
		return 0
	}
	return hub.Subscribers()
}

// Broadcaster returns the broadcaster for the room, creating it if the room exists but had none.
func (s *RoomStore[T, E]) Broadcaster(id string) *Broadcaster[E] {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.rooms[id]
	if !ok {
		hub := NewBroadcaster[E]()
		s.rooms[id] = &Room[T, E]{ID: id, hub: hub}
		return hub
	}
	if r.hub == nil {
		r.hub = NewBroadcaster[E]()
	}
	return r.hub
}

// TickFunc is called by RunLoop to advance state and determine the next wake time.
// stop true means exit the loop.
type TickFunc[T any] func(state T, now time.Time) (next time.Time, stop bool)

// RunLoop starts a timing loop for the room. If a loop already exists for id it
// is woken instead, so the caller never races a loop that is about to exit.
func (s *RoomStore[T, E]) RunLoop(id string, getState func() T, tick TickFunc[T]) {
	s.mu.Lock()
	if wake, ok := s.wakes[id]; ok {
		signal(wake)
		s.mu.Unlock()
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	wake := make(chan struct{}, 1)
	s.loops[id] = cancel
	s.wakes[id] = wake
	s.mu.Unlock()

	go func() {
		for {
			state := getState()
			now := time.Now().UTC()
			next, stop := tick(state, now)
			if stop {
				if s.exitLoop(id, wake) {
					return
				}
				continue
			}
			wait := time.Until(next)
			if wait < 0 {
				wait = 0
			}
			timer := time.NewTimer(wait)
			select {
			case <-ctx.Done():
				timer.Stop()
				return
			case <-timer.C:
				// Timer fired; loop re-runs tick.
			case <-wake:
				if !timer.Stop() {
					select {
					case <-timer.C:
					default:
					}
				}
			}
		}
	}()
}

// exitLoop unregisters the loop unless a wake arrived after the last tick.
func (s *RoomStore[T, E]) exitLoop(id string, wake chan struct{}) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	select {
	case <-wake:
		return false
	default:
	}
	if s.wakes[id] == wake {
		delete(s.loops, id)
		delete(s.wakes, id)
	}
	return true
}

// Running reports whether a loop is registered for the room.
func (s *RoomStore[T, E]) Running(id string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.loops[id]
	return ok
}

// Wake unblocks the room's loop so it recomputes immediately.
func (s *RoomStore[T, E]) Wake(id string) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if wake, ok := s.wakes[id]; ok {
		signal(wake)
	}
}

func signal(wake chan struct{}) {
	select {
	case wake <- struct{}{}:
	default:
	}
}
