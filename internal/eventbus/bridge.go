// Package eventbus forwards engine events to NATS so other processes can
// follow matches without holding an HTTP stream open.
package eventbus

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/nats-io/nats.go"
	"go.uber.org/zap"

	"cardbattle/internal/game"
)

// SubjectPrefix is the root of every subject the bridge publishes on.
const SubjectPrefix = "cardbattle"

type publisher interface {
	Publish(subject string, data []byte) error
}

// Bridge is a game.EventSink that publishes each event as JSON on
// cardbattle.<game id>.events.
type Bridge struct {
	pub  publisher
	conn *nats.Conn
	log  *zap.Logger
}

// Connect dials the NATS server at url.
func Connect(url string, logger *zap.Logger) (*Bridge, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	log := logger.Named("eventbus")
	conn, err := nats.Connect(url,
		nats.Name("cardbattle"),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				log.Warn("nats disconnected", zap.Error(err))
			}
		}),
		nats.ReconnectHandler(func(c *nats.Conn) {
			log.Info("nats reconnected", zap.String("url", c.ConnectedUrl()))
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("connect nats %s: %w", url, err)
	}
	return &Bridge{pub: conn, conn: conn, log: log}, nil
}

func newBridge(pub publisher, logger *zap.Logger) *Bridge {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Bridge{pub: pub, log: logger}
}

// Subject returns the subject events of gameID are published on.
func Subject(gameID string) string {
	return SubjectPrefix + "." + sanitizeToken(gameID) + ".events"
}

// Publish implements game.EventSink. Failures are logged, never returned,
// so a broker outage cannot stall a match.
func (b *Bridge) Publish(ev game.Event) {
	data, err := Encode(ev)
	if err != nil {
		b.log.Error("encode event", zap.Error(err), zap.String("kind", string(ev.Kind)))
		return
	}
	if err := b.pub.Publish(Subject(ev.GameID), data); err != nil {
		b.log.Warn("publish event", zap.Error(err), zap.String("game_id", ev.GameID))
	}
}

// Encode returns the wire form of ev.
func Encode(ev game.Event) ([]byte, error) {
	return json.Marshal(ev)
}

// Decode parses the wire form produced by Encode.
func Decode(data []byte) (game.Event, error) {
	var ev game.Event
	if err := json.Unmarshal(data, &ev); err != nil {
		return game.Event{}, fmt.Errorf("decode event: %w", err)
	}
	return ev, nil
}

// Close drains pending messages and closes the connection.
func (b *Bridge) Close() error {
	if b == nil || b.conn == nil {
		return nil
	}
	return b.conn.Drain()
}

// sanitizeToken keeps a game id from introducing extra subject tokens or wildcards.
func sanitizeToken(s string) string {
	if s == "" {
		return "_"
	}
	return strings.Map(func(r rune) rune {
		switch r {
		case '.', '*', '>', ' ', '\t', '\n', '\r':
			return '_'
		}
		return r
	}, s)
}

var _ game.EventSink = (*Bridge)(nil)
