// Package components renders the board fragments pushed over SSE.
package components

import (
	"bytes"
	"context"
	"html"
	"io"
	"strconv"

	"github.com/a-h/templ"

	"cardbattle/internal/viewmodel"
)

// Board renders the whole play area: status bar, opponent row, player row and deck.
func Board(data viewmodel.Board) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		var b bytes.Buffer
		id := html.EscapeString(data.GameID)
		b.WriteString(`<div id="board" data-game="` + id + `" data-phase="` + html.EscapeString(data.Phase) + `" data-key="` + html.EscapeString(data.BoardKey) + `">`)
		writeStatus(&b, data)

		b.WriteString(`<h3 class="subtitle is-6">Opponent (` + strconv.Itoa(data.RosterCount) + ` in reserve)</h3>`)
		b.WriteString(`<div class="columns is-mobile zones opponent">`)
		for _, slot := range data.OpponentZones {
			writeSlot(&b, slot, false)
		}
		b.WriteString(`</div>`)

		b.WriteString(`<h3 class="subtitle is-6">Your fighting zones</h3>`)
		b.WriteString(`<div class="columns is-mobile zones player">`)
		for _, slot := range data.Zones {
			writeSlot(&b, slot, !data.Locked)
		}
		b.WriteString(`</div>`)

		b.WriteString(`<h3 class="subtitle is-6">Deck ` + strconv.Itoa(len(data.Deck)) + `/` + strconv.Itoa(data.DeckCapacity) + `</h3>`)
		b.WriteString(`<div class="columns is-mobile deck">`)
		for i, c := range data.Deck {
			b.WriteString(`<div class="column is-3" data-deck-index="` + strconv.Itoa(i) + `">`)
			writeCard(&b, c, !data.Locked)
			b.WriteString(`</div>`)
		}
		b.WriteString(`</div>`)

		writeActions(&b, data)
		b.WriteString(`</div>`)
		_, err := w.Write(b.Bytes())
		return err
	})
}

// Message renders a transient notification such as a validation failure.
func Message(text string, kind string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if text == "" {
			_, err := io.WriteString(w, `<div id="message"></div>`)
			return err
		}
		if kind == "" {
			kind = "is-warning"
		}
		_, err := io.WriteString(w, `<div id="message" class="notification `+html.EscapeString(kind)+`">`+html.EscapeString(text)+`</div>`)
		return err
	})
}

func writeStatus(b *bytes.Buffer, data viewmodel.Board) {
	b.WriteString(`<div class="level box">`)
	b.WriteString(`<div class="level-item"><p>Round <strong>` + strconv.Itoa(data.Round) + `</strong></p></div>`)
	b.WriteString(`<div class="level-item"><p>Time <strong id="timer" data-seconds="` + strconv.Itoa(data.SecondsRemaining) + `">` + strconv.Itoa(data.SecondsRemaining) + `s</strong> / ` + strconv.Itoa(data.RoundSeconds) + `s</p></div>`)
	b.WriteString(`<div class="level-item"><p>Coins <strong>` + strconv.Itoa(data.Coins) + `</strong></p></div>`)
	b.WriteString(`<div class="level-item"><span class="tag is-light">` + html.EscapeString(phaseLabel(data)) + `</span></div>`)
	b.WriteString(`</div>`)
	switch {
	case data.Won:
		b.WriteString(`<div class="notification is-success">You won! Every opponent card has fallen.</div>`)
	case data.Lost && data.TimedOut:
		b.WriteString(`<div class="notification is-danger">Time ran out. You lost.</div>`)
	case data.Lost:
		b.WriteString(`<div class="notification is-danger">No cards left. You lost.</div>`)
	}
}

func phaseLabel(data viewmodel.Board) string {
	switch data.Step {
	case "awaiting_opponent_fill":
		return "Opponent deploying"
	case "awaiting_damage_exchange":
		return "Fighting"
	}
	switch data.Phase {
	case "playing":
		return "Arrange your cards"
	case "round_end":
		return "Match over"
	}
	return data.Phase
}

func writeSlot(b *bytes.Buffer, slot viewmodel.SlotView, droppable bool) {
	attrs := `class="column is-6 zone" data-slot="` + strconv.Itoa(slot.Index) + `"`
	if droppable {
		attrs += ` data-drop="zone"`
	}
	b.WriteString(`<div ` + attrs + `>`)
	if slot.Card == nil {
		b.WriteString(`<div class="box has-text-grey-light has-text-centered zone-empty">Empty</div>`)
	} else {
		writeCard(b, *slot.Card, droppable && !slot.Card.Dead)
	}
	b.WriteString(`</div>`)
}

func writeCard(b *bytes.Buffer, c viewmodel.CardView, draggable bool) {
	class := "box card-tile"
	if c.Dead {
		class += " is-dead"
	}
	if !c.Committed && !c.Dead {
		class += " is-settling"
	}
	b.WriteString(`<div class="` + class + `" data-card="` + html.EscapeString(c.ID) + `"`)
	if draggable {
		b.WriteString(` draggable="true"`)
	}
	b.WriteString(`>`)
	if c.ImageRef != "" {
		b.WriteString(`<figure class="image is-64x64"><img src="` + html.EscapeString(c.ImageRef) + `" alt=""></figure>`)
	}
	b.WriteString(`<p class="has-text-weight-semibold">` + html.EscapeString(c.Name) + `</p>`)
	b.WriteString(`<p class="is-size-7">DMG ` + strconv.Itoa(c.Damage) + ` · HP ` + strconv.Itoa(c.Health) + `/` + strconv.Itoa(c.MaxHealth) + `</p>`)
	b.WriteString(`<progress class="progress is-small is-danger" value="` + strconv.Itoa(c.HealthPct) + `" max="100"></progress>`)
	b.WriteString(`</div>`)
}

func writeActions(b *bytes.Buffer, data viewmodel.Board) {
	id := html.EscapeString(data.GameID)
	b.WriteString(`<div class="buttons mt-4">`)
	disabled := ""
	if data.Locked {
		disabled = " disabled"
	}
	b.WriteString(`<button class="button is-primary" data-intent="continue" data-action="/game/` + id + `/continue"` + disabled + `>Continue</button>`)
	b.WriteString(`<button class="button is-light" data-intent="reset" data-action="/game/` + id + `/reset">Reset</button>`)
	b.WriteString(`</div>`)
}
