package handlers

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"cardbattle/internal/game"
	"cardbattle/internal/history"
	"cardbattle/internal/viewmodel"
	"cardbattle/internal/views/pages"
)

const defaultHistoryLimit = 20

// HistoryReader lists finished matches.
type HistoryReader interface {
	Recent(ctx context.Context, limit int) ([]history.Match, error)
}

type HomeHandler struct {
	store   *game.Store
	history HistoryReader
	log     *zap.Logger
	now     func() time.Time
}

// NewHomeHandler builds the landing page handler. history may be nil.
func NewHomeHandler(store *game.Store, hist HistoryReader, logger *zap.Logger) *HomeHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &HomeHandler{store: store, history: hist, log: logger, now: utcNow}
}

func (h *HomeHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.home)
	r.Post("/games", h.createGame)
	r.Get("/history", h.historyJSON)
}

func (h *HomeHandler) home(w http.ResponseWriter, r *http.Request) {
	data := viewmodel.HomePage{Title: "Card Battle"}
	if h.history != nil {
		matches, err := h.history.Recent(r.Context(), 10)
		if err != nil {
			h.log.Warn("load history", zap.Error(err))
		}
		data.History = toMatchRows(matches)
	}
	render(w, r, pages.HomePage(data))
}

func (h *HomeHandler) createGame(w http.ResponseWriter, r *http.Request) {
	eng := h.store.CreateGame(r.Context(), h.now())
	if wantsFragment(r) {
		writeJSON(w, http.StatusCreated, map[string]string{"id": eng.ID(), "url": "/game/" + eng.ID() + "/"})
		return
	}
	http.Redirect(w, r, "/game/"+eng.ID()+"/", http.StatusSeeOther)
}

func (h *HomeHandler) historyJSON(w http.ResponseWriter, r *http.Request) {
	if h.history == nil {
		http.Error(w, "history disabled", http.StatusNotFound)
		return
	}
	limit := parseInt(r.URL.Query().Get("limit"), defaultHistoryLimit)
	if limit < 1 || limit > 100 {
		limit = defaultHistoryLimit
	}
	matches, err := h.history.Recent(r.Context(), limit)
	if err != nil {
		h.log.Error("list history", zap.Error(err))
		http.Error(w, "failed to load history", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, matches)
}

func toMatchRows(matches []history.Match) []viewmodel.MatchRow {
	out := make([]viewmodel.MatchRow, 0, len(matches))
	for _, m := range matches {
		outcome := "lost"
		switch {
		case m.Won:
			outcome = "won"
		case m.TimedOut:
			outcome = "timed out"
		}
		out = append(out, viewmodel.MatchRow{
			GameID:     m.GameID,
			Outcome:    outcome,
			Rounds:     m.Rounds,
			Coins:      m.Coins,
			FinishedAt: m.FinishedAt.Format(time.RFC3339),
		})
	}
	return out
}

func parseInt(value string, fallback int) int {
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func utcNow() time.Time {
	return time.Now().UTC()
}
