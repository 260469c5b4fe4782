package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/a-h/templ"

	"cardbattle/internal/game"
)

func render(w http.ResponseWriter, r *http.Request, component templ.Component) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := component.Render(r.Context(), w); err != nil {
		http.Error(w, "failed to render", http.StatusInternalServerError)
	}
}

func renderToString(r *http.Request, component templ.Component) string {
	var buf bytes.Buffer
	_ = component.Render(r.Context(), &buf)
	return buf.String()
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeSSE(w http.ResponseWriter, event string, data string) {
	_, _ = w.Write([]byte("event: " + event + "\n"))
	for _, line := range strings.Split(data, "\n") {
		_, _ = w.Write([]byte("data: " + line + "\n"))
	}
	_, _ = w.Write([]byte("\n"))
}

// statusFor maps engine errors onto HTTP status codes.
func statusFor(err error) int {
	var verr *game.ValidationError
	var serr *game.StateError
	switch {
	case err == nil:
		return http.StatusOK
	case errors.As(err, &verr):
		return http.StatusUnprocessableEntity
	case errors.As(err, &serr):
		return http.StatusConflict
	case errors.Is(err, game.ErrSlotOccupied),
		errors.Is(err, game.ErrDeckFull),
		errors.Is(err, game.ErrIndexOutOfRange),
		errors.Is(err, game.ErrCardNotFound):
		return http.StatusUnprocessableEntity
	}
	return http.StatusInternalServerError
}

// wantsFragment reports whether the request came from script rather than a
// plain form post, in which case intents answer without redirecting.
func wantsFragment(r *http.Request) bool {
	if r.Header.Get("Hx-Request") == "true" || r.Header.Get("X-Requested-With") != "" {
		return true
	}
	return strings.Contains(r.Header.Get("Accept"), "application/json") ||
		strings.HasPrefix(r.Header.Get("Content-Type"), "application/json")
}
