// Package pages renders full HTML documents.
package pages

import (
	"bytes"
	"context"
	"html"
	"io"
	"strconv"

	"github.com/a-h/templ"

	"cardbattle/internal/viewmodel"
	"cardbattle/internal/views/components"
)

func head(b *bytes.Buffer, title string) {
	b.WriteString(`<!DOCTYPE html><html><head><meta charset="utf-8"><meta name="viewport" content="width=device-width, initial-scale=1">`)
	b.WriteString(`<title>` + html.EscapeString(title) + `</title>`)
	b.WriteString(`<link rel="stylesheet" href="https://cdn.jsdelivr.net/npm/bulma@0.9.4/css/bulma.min.css">`)
	b.WriteString(`<link rel="stylesheet" href="/static/board.css">`)
	b.WriteString(`</head><body class="section"><div class="container">`)
}

func foot(b *bytes.Buffer) {
	b.WriteString(`</div></body></html>`)
}

// HomePage renders the landing page with a new-game form and recent matches.
func HomePage(data viewmodel.HomePage) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		var b bytes.Buffer
		head(&b, data.Title)
		b.WriteString(`<h1 class="title">` + html.EscapeString(data.Title) + `</h1>`)
		b.WriteString(`<form method="POST" action="/games" class="box">`)
		b.WriteString(`<p class="mb-3">Fill your fighting zones, press continue and outlast the opponent's roster.</p>`)
		b.WriteString(`<button type="submit" class="button is-primary">New match</button></form>`)
		if len(data.History) > 0 {
			b.WriteString(`<h2 class="subtitle">Recent matches</h2><table class="table is-fullwidth"><thead><tr><th>Game</th><th>Outcome</th><th>Rounds</th><th>Coins</th><th>Finished</th></tr></thead><tbody>`)
			for _, m := range data.History {
				b.WriteString(`<tr><td>` + html.EscapeString(m.GameID) + `</td><td>` + html.EscapeString(m.Outcome) + `</td><td>` + strconv.Itoa(m.Rounds) + `</td><td>` + strconv.Itoa(m.Coins) + `</td><td>` + html.EscapeString(m.FinishedAt) + `</td></tr>`)
			}
			b.WriteString(`</tbody></table>`)
		}
		foot(&b)
		_, err := w.Write(b.Bytes())
		return err
	})
}

// GamePage renders the board page. The initial board comes from the
// snapshot; the SSE stream replaces #board and #message afterwards.
func GamePage(data viewmodel.GamePage) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		var b bytes.Buffer
		head(&b, data.Title)
		b.WriteString(`<h1 class="title">` + html.EscapeString(data.Title) + `</h1>`)
		b.WriteString(`<p class="help mb-4">Share: ` + html.EscapeString(data.InviteURL) + `</p>`)
		if _, err := w.Write(b.Bytes()); err != nil {
			return err
		}
		b.Reset()

		if err := components.Message("", "").Render(ctx, w); err != nil {
			return err
		}
		if err := components.Board(data.Board).Render(ctx, w); err != nil {
			return err
		}

		b.WriteString(`<script src="/static/board.js" data-stream="/game/` + html.EscapeString(data.GameID) + `/stream"></script>`)
		foot(&b)
		_, err := w.Write(b.Bytes())
		return err
	})
}
