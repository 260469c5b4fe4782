// Package bot plays matches without a browser, for simulation and load tests.
package bot

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"cardbattle/internal/game"
)

// maxSteps bounds Play so a misbehaving engine cannot spin forever.
const maxSteps = 100000

// Plan returns the commands a greedy player issues for snap: fill every free
// zone with the healthiest deck cards, then continue. It returns nothing
// outside the playing phase or while any held card is still settling.
func Plan(snap game.Snapshot) []game.Command {
	if snap.Phase != game.PhasePlaying || !settled(snap) {
		return nil
	}
	deck := make([]game.Card, len(snap.Deck))
	copy(deck, snap.Deck)
	sort.SliceStable(deck, func(i, j int) bool {
		if deck[i].Health != deck[j].Health {
			return deck[i].Health > deck[j].Health
		}
		return deck[i].Damage > deck[j].Damage
	})

	var cmds []game.Command
	next := 0
	for slot, c := range snap.Zones {
		if c != nil && c.Health > 0 {
			continue
		}
		if next >= len(deck) {
			break
		}
		cmds = append(cmds, game.Command{Intent: game.IntentPlace, CardID: deck[next].ID, Slot: slot})
		next++
	}
	return append(cmds, game.Command{Intent: game.IntentContinue})
}

func settled(snap game.Snapshot) bool {
	for _, c := range snap.Deck {
		if !c.Committed {
			return false
		}
	}
	for _, c := range snap.Zones {
		if c != nil && c.Health > 0 && !c.Committed {
			return false
		}
	}
	return true
}

// Play drives eng from now until the match ends, jumping the virtual clock
// straight to each pending deadline. It returns the final snapshot and the
// virtual time the match ended at.
func Play(ctx context.Context, eng *game.Engine, now time.Time) (game.Snapshot, time.Time, error) {
	for step := 0; step < maxSteps; step++ {
		if err := ctx.Err(); err != nil {
			return game.Snapshot{}, now, err
		}
		snap := eng.Snapshot(now)
		if snap.Finished() {
			return snap, now, nil
		}
		for _, cmd := range Plan(snap) {
			err := eng.Apply(ctx, cmd, now)
			var verr *game.ValidationError
			switch {
			case err == nil:
			case errors.As(err, &verr):
				// a card placed this instant has not settled yet; retry at the next wake
			default:
				return snap, now, fmt.Errorf("apply %s: %w", cmd.Intent, err)
			}
		}
		next, ok := eng.NextWake()
		if !ok {
			return eng.Snapshot(now), now, nil
		}
		if next.After(now) {
			now = next
		}
	}
	return game.Snapshot{}, now, fmt.Errorf("match %s did not finish in %d steps", eng.ID(), maxSteps)
}
