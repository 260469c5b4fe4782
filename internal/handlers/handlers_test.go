package handlers

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"go.uber.org/zap/zaptest"

	"cardbattle/internal/game"
	"cardbattle/internal/history"
	"cardbattle/internal/viewmodel"
)

type fixedSupplier struct{}

func (fixedSupplier) ServeHand(count int) []*game.Card {
	out := make([]*game.Card, 0, count)
	for i := 0; i < count; i++ {
		out = append(out, game.MustCard(game.CardMeta{Name: fmt.Sprintf("Card %d", i), Damage: 10, MaxHealth: 100}))
	}
	return out
}

type fakeHistory struct {
	matches []history.Match
	err     error
}

func (f fakeHistory) Recent(_ context.Context, limit int) ([]history.Match, error) {
	if f.err != nil {
		return nil, f.err
	}
	if limit < len(f.matches) {
		return f.matches[:limit], nil
	}
	return f.matches, nil
}

type testServer struct {
	store  *game.Store
	router chi.Router
}

func newTestServer(t *testing.T, hist HistoryReader) *testServer {
	t.Helper()
	logger := zaptest.NewLogger(t)
	store := game.NewStore(game.StoreOptions{
		Rules: game.Rules{
			SettleDelay:       time.Millisecond,
			OpponentFillDelay: time.Hour,
		},
		Supplier: fixedSupplier{},
		Logger:   logger,
	})
	r := chi.NewRouter()
	NewHomeHandler(store, hist, logger).RegisterRoutes(r)
	gh := NewGameHandler(store, logger, "https://cards.example")
	gh.RegisterRoutes(r)
	gh.RegisterStreamRoutes(r)
	return &testServer{store: store, router: r}
}

func (s *testServer) do(req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func (s *testServer) createGame(t *testing.T) *game.Engine {
	t.Helper()
	rec := s.do(httptest.NewRequest(http.MethodPost, "/games", nil))
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("create status %d, want 303", rec.Code)
	}
	loc := rec.Header().Get("Location")
	id := strings.TrimSuffix(strings.TrimPrefix(loc, "/game/"), "/")
	eng, ok := s.store.GetGame(id)
	if !ok {
		t.Fatalf("game %q from %q not in store", id, loc)
	}
	t.Cleanup(func() { s.store.DeleteGame(id) })
	return eng
}

func postForm(path string, values url.Values) *http.Request {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(values.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}

func postJSON(path string, body any) *http.Request {
	b, _ := json.Marshal(body)
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(string(b)))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func TestHome(t *testing.T) {
	s := newTestServer(t, fakeHistory{matches: []history.Match{{GameID: "old", Won: true, Rounds: 4, Coins: 90}}})
	rec := s.do(httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, "New match") || !strings.Contains(body, "old") {
		t.Errorf("home body missing form or history: %s", body)
	}
}

func TestCreateGameJSON(t *testing.T) {
	s := newTestServer(t, nil)
	req := httptest.NewRequest(http.MethodPost, "/games", nil)
	req.Header.Set("Accept", "application/json")
	rec := s.do(req)
	if rec.Code != http.StatusCreated {
		t.Fatalf("status %d, want 201", rec.Code)
	}
	var out map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if _, ok := s.store.GetGame(out["id"]); !ok {
		t.Errorf("game %q not stored", out["id"])
	}
	s.store.DeleteGame(out["id"])
}

func TestGamePage(t *testing.T) {
	s := newTestServer(t, nil)
	eng := s.createGame(t)

	rec := s.do(httptest.NewRequest(http.MethodGet, "/game/"+eng.ID()+"/", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, `id="board"`) {
		t.Error("board missing from page")
	}
	if !strings.Contains(body, "https://cards.example/game/"+eng.ID()+"/") {
		t.Error("share link should use the configured base URL")
	}

	rec = s.do(httptest.NewRequest(http.MethodGet, "/game/nope/", nil))
	if rec.Code != http.StatusNotFound {
		t.Errorf("unknown game status %d, want 404", rec.Code)
	}
	rec = s.do(httptest.NewRequest(http.MethodGet, "/game/"+eng.ID()+"/board", nil))
	if rec.Code != http.StatusOK || !strings.HasPrefix(rec.Body.String(), `<div id="board"`) {
		t.Errorf("board fragment status %d body %.60s", rec.Code, rec.Body.String())
	}
}

func TestContinueValidation(t *testing.T) {
	s := newTestServer(t, nil)
	eng := s.createGame(t)

	rec := s.do(postForm("/game/"+eng.ID()+"/continue", nil))
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status %d, want 422", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), game.MsgNoCardsInZones) {
		t.Errorf("body %q", rec.Body.String())
	}
}

func TestPlaceAndContinue(t *testing.T) {
	s := newTestServer(t, nil)
	eng := s.createGame(t)
	snap := eng.Snapshot(time.Now().UTC())
	base := "/game/" + eng.ID()

	rec := s.do(postJSON(base+"/place", game.Command{CardID: snap.Deck[0].ID, Slot: 0}))
	if rec.Code != http.StatusNoContent {
		t.Fatalf("place status %d body %s", rec.Code, rec.Body.String())
	}
	rec = s.do(postForm(base+"/place", url.Values{"card_id": {snap.Deck[1].ID}, "slot": {"0"}}))
	if rec.Code != http.StatusUnprocessableEntity {
		t.Errorf("occupied place status %d, want 422", rec.Code)
	}
	rec = s.do(postForm(base+"/place", url.Values{"card_id": {snap.Deck[1].ID}, "slot": {"7"}}))
	if rec.Code != http.StatusUnprocessableEntity {
		t.Errorf("out of range place status %d, want 422", rec.Code)
	}
	rec = s.do(postForm(base+"/place", url.Values{"card_id": {snap.Deck[1].ID}, "slot": {"one"}}))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("malformed slot status %d, want 400", rec.Code)
	}
	rec = s.do(postForm(base+"/place", url.Values{"card_id": {snap.Deck[1].ID}, "slot": {"1"}}))
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("form place status %d, want 303", rec.Code)
	}

	time.Sleep(10 * time.Millisecond)
	req := postJSON(base+"/continue", nil)
	if rec := s.do(req); rec.Code != http.StatusNoContent {
		t.Fatalf("continue status %d body %s", rec.Code, rec.Body.String())
	}
	rec = s.do(postJSON(base+"/continue", nil))
	if rec.Code != http.StatusConflict {
		t.Errorf("second continue status %d, want 409", rec.Code)
	}

	rec = s.do(httptest.NewRequest(http.MethodGet, base+"/state", nil))
	var board viewmodel.Board
	if err := json.Unmarshal(rec.Body.Bytes(), &board); err != nil {
		t.Fatalf("decode state: %v", err)
	}
	if board.Phase != string(game.PhaseResolving) || !board.Locked {
		t.Errorf("phase %q locked %v, want resolving and locked", board.Phase, board.Locked)
	}
	if len(board.RoundTimes) != 1 {
		t.Errorf("round times %v", board.RoundTimes)
	}
}

func TestRecallAndReorder(t *testing.T) {
	s := newTestServer(t, nil)
	eng := s.createGame(t)
	snap := eng.Snapshot(time.Now().UTC())
	base := "/game/" + eng.ID()

	if rec := s.do(postJSON(base+"/place", game.Command{CardID: snap.Deck[2].ID, Slot: 1})); rec.Code != http.StatusNoContent {
		t.Fatalf("place status %d", rec.Code)
	}
	if rec := s.do(postJSON(base+"/recall", game.Command{Slot: 1, DeckIndex: 0})); rec.Code != http.StatusNoContent {
		t.Fatalf("recall status %d", rec.Code)
	}
	if rec := s.do(postJSON(base+"/reorder", game.Command{From: 0, To: 3})); rec.Code != http.StatusNoContent {
		t.Fatalf("reorder status %d", rec.Code)
	}
	after := eng.Snapshot(time.Now().UTC())
	if after.Deck[3].ID != snap.Deck[2].ID {
		t.Error("recalled card should end up last after reorder")
	}
	if rec := s.do(postJSON(base+"/recall", game.Command{Slot: 1})); rec.Code != http.StatusUnprocessableEntity {
		t.Errorf("recall from empty slot status %d, want 422", rec.Code)
	}
	if rec := s.do(postJSON(base+"/reset", nil)); rec.Code != http.StatusNoContent {
		t.Errorf("reset status %d", rec.Code)
	}
}

func TestHistoryJSON(t *testing.T) {
	s := newTestServer(t, nil)
	if rec := s.do(httptest.NewRequest(http.MethodGet, "/history", nil)); rec.Code != http.StatusNotFound {
		t.Errorf("disabled history status %d, want 404", rec.Code)
	}

	s = newTestServer(t, fakeHistory{matches: []history.Match{{GameID: "a"}, {GameID: "b"}}})
	rec := s.do(httptest.NewRequest(http.MethodGet, "/history?limit=1", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d", rec.Code)
	}
	var matches []history.Match
	if err := json.Unmarshal(rec.Body.Bytes(), &matches); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(matches) != 1 || matches[0].GameID != "a" {
		t.Errorf("matches %+v", matches)
	}

	s = newTestServer(t, fakeHistory{err: errors.New("db gone")})
	if rec := s.do(httptest.NewRequest(http.MethodGet, "/history", nil)); rec.Code != http.StatusInternalServerError {
		t.Errorf("failing history status %d, want 500", rec.Code)
	}
}

func TestStatusFor(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{nil, http.StatusOK},
		{&game.ValidationError{Message: "x"}, http.StatusUnprocessableEntity},
		{&game.StateError{Op: "continue", Err: game.ErrResolving}, http.StatusConflict},
		{&game.CapacityError{Op: "place", Err: game.ErrSlotOccupied}, http.StatusUnprocessableEntity},
		{&game.IndexError{Op: "place", Index: 9, Len: 2}, http.StatusUnprocessableEntity},
		{fmt.Errorf("place: %w", game.ErrCardNotFound), http.StatusUnprocessableEntity},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		if got := statusFor(tc.err); got != tc.want {
			t.Errorf("statusFor(%v) = %d, want %d", tc.err, got, tc.want)
		}
	}
}

func TestStreamSendsBoard(t *testing.T) {
	s := newTestServer(t, nil)
	eng := s.createGame(t)
	srv := httptest.NewServer(s.router)
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	req, _ := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+"/game/"+eng.ID()+"/stream", nil)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("stream: %v", err)
	}
	defer resp.Body.Close()
	if ct := resp.Header.Get("Content-Type"); ct != "text/event-stream" {
		t.Errorf("content type %q", ct)
	}
	reader := bufio.NewReader(resp.Body)
	line, err := reader.ReadString('\n')
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if line != "event: board\n" {
		t.Errorf("first line %q, want board event", line)
	}
}

func TestWebSocketCommands(t *testing.T) {
	s := newTestServer(t, nil)
	eng := s.createGame(t)
	srv := httptest.NewServer(s.router)
	defer srv.Close()

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/game/" + eng.ID() + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	if err := conn.WriteJSON(game.Command{Intent: game.IntentContinue}); err != nil {
		t.Fatalf("write: %v", err)
	}
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	sawEvent := false
	for {
		var reply wsReply
		if err := conn.ReadJSON(&reply); err != nil {
			t.Fatalf("read: %v", err)
		}
		if reply.Type == "event" && reply.Event != nil && reply.Event.Kind == game.EventValidationFailed {
			sawEvent = true
		}
		if reply.Type == "error" {
			if reply.Status != http.StatusUnprocessableEntity || reply.Error != game.MsgNoCardsInZones {
				t.Errorf("reply %+v", reply)
			}
			break
		}
	}
	// the writer may pick the reply before the queued event
	for !sawEvent {
		var reply wsReply
		if err := conn.ReadJSON(&reply); err != nil {
			t.Fatalf("read while waiting for validation event: %v", err)
		}
		sawEvent = reply.Event != nil && reply.Event.Kind == game.EventValidationFailed
	}

	if _, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http")+"/game/missing/ws", nil); err == nil {
		t.Error("dial to unknown game should fail")
	}
}
