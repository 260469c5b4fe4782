package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"cardbattle/internal/game"
	"cardbattle/internal/viewmodel"
	"cardbattle/internal/views/components"
	"cardbattle/internal/views/pages"
)

type GameHandler struct {
	store   *game.Store
	log     *zap.Logger
	baseURL string
	now     func() time.Time
}

// NewGameHandler builds the board handler. baseURL, when set, is used for
// share links instead of the request host.
func NewGameHandler(store *game.Store, logger *zap.Logger, baseURL string) *GameHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &GameHandler{store: store, log: logger, baseURL: strings.TrimRight(strings.TrimSpace(baseURL), "/"), now: utcNow}
}

// RegisterRoutes mounts the page and intent routes.
func (h *GameHandler) RegisterRoutes(r chi.Router) {
	r.Route("/game/{id}", func(r chi.Router) {
		r.Get("/", h.gamePage)
		r.Get("/board", h.boardFragment)
		r.Get("/state", h.stateJSON)
		r.Post("/continue", h.intent(game.IntentContinue))
		r.Post("/reset", h.intent(game.IntentReset))
		r.Post("/place", h.intent(game.IntentPlace))
		r.Post("/recall", h.intent(game.IntentRecall))
		r.Post("/reorder", h.intent(game.IntentReorder))
	})
}

// RegisterStreamRoutes mounts the long-lived SSE and WebSocket routes. They
// must sit outside any request timeout middleware.
func (h *GameHandler) RegisterStreamRoutes(r chi.Router) {
	r.Get("/game/{id}/stream", h.stream)
	r.Get("/game/{id}/ws", h.websocket)
}

func (h *GameHandler) lookup(w http.ResponseWriter, r *http.Request) (*game.Engine, bool) {
	eng, ok := h.store.GetGame(chi.URLParam(r, "id"))
	if !ok {
		http.NotFound(w, r)
		return nil, false
	}
	return eng, true
}

func (h *GameHandler) gamePage(w http.ResponseWriter, r *http.Request) {
	eng, ok := h.lookup(w, r)
	if !ok {
		return
	}
	snap := eng.Snapshot(h.now())
	render(w, r, pages.GamePage(viewmodel.GamePage{
		Title:     "Card Battle",
		GameID:    eng.ID(),
		InviteURL: h.inviteURL(r, eng.ID()),
		Board:     buildBoard(snap),
	}))
}

func (h *GameHandler) boardFragment(w http.ResponseWriter, r *http.Request) {
	eng, ok := h.lookup(w, r)
	if !ok {
		return
	}
	render(w, r, components.Board(buildBoard(eng.Snapshot(h.now()))))
}

func (h *GameHandler) stateJSON(w http.ResponseWriter, r *http.Request) {
	eng, ok := h.lookup(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, buildBoard(eng.Snapshot(h.now())))
}

func (h *GameHandler) intent(kind game.Intent) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		eng, ok := h.lookup(w, r)
		if !ok {
			return
		}
		cmd, err := decodeCommand(r, kind)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		err = eng.Apply(r.Context(), cmd, h.now())
		h.store.EnsureRoundLoop(eng.ID())
		if err != nil {
			status := statusFor(err)
			if status >= http.StatusInternalServerError {
				h.log.Error("intent failed", zap.String("game_id", eng.ID()), zap.String("intent", string(kind)), zap.Error(err))
			} else {
				h.log.Debug("intent rejected", zap.String("game_id", eng.ID()), zap.String("intent", string(kind)), zap.Error(err))
			}
			if wantsFragment(r) {
				writeJSON(w, status, map[string]string{"error": err.Error()})
				return
			}
			http.Error(w, err.Error(), status)
			return
		}
		if wantsFragment(r) {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		http.Redirect(w, r, "/game/"+eng.ID()+"/", http.StatusSeeOther)
	}
}

// decodeCommand reads intent arguments from a JSON body or form values.
func decodeCommand(r *http.Request, kind game.Intent) (game.Command, error) {
	cmd := game.Command{Intent: kind}
	if strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
		if r.ContentLength != 0 {
			if err := json.NewDecoder(r.Body).Decode(&cmd); err != nil {
				return cmd, err
			}
		}
		cmd.Intent = kind
		return cmd, nil
	}
	if err := r.ParseForm(); err != nil {
		return cmd, err
	}
	cmd.CardID = strings.TrimSpace(r.FormValue("card_id"))
	var err error
	if cmd.Slot, err = formInt(r, "slot"); err != nil {
		return cmd, err
	}
	if cmd.DeckIndex, err = formInt(r, "deck_index"); err != nil {
		return cmd, err
	}
	if cmd.From, err = formInt(r, "from"); err != nil {
		return cmd, err
	}
	if cmd.To, err = formInt(r, "to"); err != nil {
		return cmd, err
	}
	return cmd, nil
}

func formInt(r *http.Request, key string) (int, error) {
	v := strings.TrimSpace(r.FormValue(key))
	if v == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %q", key, v)
	}
	return n, nil
}

func (h *GameHandler) inviteURL(r *http.Request, gameID string) string {
	if h.baseURL != "" {
		return h.baseURL + "/game/" + gameID + "/"
	}
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	return scheme + "://" + r.Host + "/game/" + gameID + "/"
}

func buildBoard(snap game.Snapshot) viewmodel.Board {
	board := viewmodel.Board{
		GameID:           snap.ID,
		Phase:            string(snap.Phase),
		Step:             string(snap.Step),
		Round:            snap.Round,
		SecondsRemaining: snap.SecondsRemaining,
		RoundSeconds:     snap.RoundSeconds,
		Coins:            snap.Coins,
		Won:              snap.Won,
		Lost:             snap.Lost,
		TimedOut:         snap.TimedOut,
		Locked:           snap.Phase != game.PhasePlaying,
		DeckCapacity:     snap.DeckCapacity,
		RosterCount:      snap.RosterCount,
		RoundTimes:       snap.RoundTimes,
		Deck:             make([]viewmodel.CardView, 0, len(snap.Deck)),
		Zones:            toSlots(snap.Zones),
		OpponentZones:    toSlots(snap.OpponentZones),
	}
	for _, c := range snap.Deck {
		board.Deck = append(board.Deck, toCardView(c))
	}
	board.BoardKey = strings.Join([]string{
		board.Phase,
		board.Step,
		strconv.Itoa(board.Round),
		strconv.Itoa(board.SecondsRemaining),
	}, "|")
	return board
}

func toSlots(cards []*game.Card) []viewmodel.SlotView {
	out := make([]viewmodel.SlotView, len(cards))
	for i, c := range cards {
		out[i] = viewmodel.SlotView{Index: i}
		if c != nil {
			cv := toCardView(*c)
			out[i].Card = &cv
		}
	}
	return out
}

func toCardView(c game.Card) viewmodel.CardView {
	pct := 0
	if c.MaxHealth > 0 {
		pct = c.Health * 100 / c.MaxHealth
	}
	return viewmodel.CardView{
		ID:        c.ID,
		Name:      c.Name,
		ImageRef:  c.ImageRef,
		Damage:    c.Damage,
		Health:    c.Health,
		MaxHealth: c.MaxHealth,
		HealthPct: pct,
		Committed: c.Committed,
		Dead:      c.Health <= 0,
	}
}
