package handlers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"cardbattle/internal/game"
	"cardbattle/internal/views/components"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

// stream pushes the board over SSE: a "board" event with fresh HTML after
// every engine event, and a "message" event for validation failures.
func (h *GameHandler) stream(w http.ResponseWriter, r *http.Request) {
	gameID := chi.URLParam(r, "id")
	eng, ok := h.store.GetGame(gameID)
	if !ok {
		http.NotFound(w, r)
		return
	}
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}
	// lift the server-wide write timeout for this connection
	_ = http.NewResponseController(w).SetWriteDeadline(time.Time{})

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	hub := h.store.Broadcaster(gameID)
	sub := hub.Subscribe()
	defer hub.Unsubscribe(sub)

	sendBoard := func() {
		snap := eng.Snapshot(h.now())
		writeSSE(w, "board", renderToString(r, components.Board(buildBoard(snap))))
	}

	sendBoard()
	flusher.Flush()

	keepAlive := time.NewTicker(25 * time.Second)
	defer keepAlive.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case ev, ok := <-sub:
			if !ok {
				return
			}
			switch ev.Kind {
			case game.EventValidationFailed:
				writeSSE(w, "message", renderToString(r, components.Message(ev.Message, "is-warning")))
			case game.EventPhaseChanged:
				if ev.Message != "" {
					writeSSE(w, "message", renderToString(r, components.Message(ev.Message, "is-info")))
				}
				sendBoard()
			case game.EventCardCommitted:
				// settles are frequent and only toggle a style; the next tick catches them
			default:
				sendBoard()
			}
			flusher.Flush()
		case <-keepAlive.C:
			_, _ = w.Write([]byte(": keepalive\n\n"))
			flusher.Flush()
		}
	}
}

// wsReply answers one command received over the socket.
type wsReply struct {
	Type   string      `json:"type"`
	Intent game.Intent `json:"intent,omitempty"`
	Status int         `json:"status,omitempty"`
	Error  string      `json:"error,omitempty"`
	Event  *game.Event `json:"event,omitempty"`
}

// websocket streams engine events as JSON and accepts game.Command messages.
func (h *GameHandler) websocket(w http.ResponseWriter, r *http.Request) {
	gameID := chi.URLParam(r, "id")
	eng, ok := h.store.GetGame(gameID)
	if !ok {
		http.NotFound(w, r)
		return
	}
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn("websocket upgrade", zap.Error(err), zap.String("game_id", gameID))
		return
	}

	hub := h.store.Broadcaster(gameID)
	sub := hub.Subscribe()
	replies := make(chan wsReply, 16)
	done := make(chan struct{})

	go h.wsWriteLoop(conn, sub, replies, done)

	defer func() {
		close(done)
		hub.Unsubscribe(sub)
	}()

	conn.SetReadLimit(4096)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		var cmd game.Command
		if err := conn.ReadJSON(&cmd); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.log.Debug("websocket read", zap.Error(err), zap.String("game_id", gameID))
			}
			return
		}
		err := eng.Apply(r.Context(), cmd, h.now())
		h.store.EnsureRoundLoop(gameID)
		reply := wsReply{Type: "ack", Intent: cmd.Intent, Status: http.StatusOK}
		if err != nil {
			reply = wsReply{Type: "error", Intent: cmd.Intent, Status: statusFor(err), Error: err.Error()}
		}
		select {
		case replies <- reply:
		default:
			h.log.Warn("websocket reply dropped", zap.String("game_id", gameID))
		}
	}
}

func (h *GameHandler) wsWriteLoop(conn *websocket.Conn, events <-chan game.Event, replies <-chan wsReply, done <-chan struct{}) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = conn.Close()
	}()

	write := func(v any) bool {
		_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
		return conn.WriteJSON(v) == nil
	}

	for {
		select {
		case <-done:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			_ = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			if !write(wsReply{Type: "event", Event: &ev}) {
				return
			}
		case reply := <-replies:
			if !write(reply) {
				return
			}
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
