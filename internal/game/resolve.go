package game

import (
	"time"

	"go.uber.org/zap"
)

// opponentFillLocked moves roster cards into every opponent slot without a
// live occupant, front of the roster first.
func (e *Engine) opponentFillLocked(at time.Time) {
	if e.phase != PhaseResolving || e.step != StepAwaitingOpponentFill {
		return
	}
	e.resolved = append(e.resolved, StepAwaitingOpponentFill)
	placed := 0
	for slot := 0; slot < e.opponentZones.Len(); slot++ {
		if _, ok := e.opponentZones.Live(slot); ok {
			continue
		}
		c, ok := e.roster.TryTake()
		if !ok {
			break
		}
		c.Committed = false
		if err := e.opponentZones.Place(c, slot); err != nil {
			e.log.Error("opponent fill", zap.Error(err), zap.Int("slot", slot))
			continue
		}
		placed++
		e.agenda.Schedule(at.Add(e.rules.SettleDelay), job{kind: jobCommit, side: SideOpponent, slot: slot, cardID: c.ID})
	}

	e.step = StepAwaitingDamageExchange
	e.agenda.Schedule(at.Add(e.rules.DamageExchangeDelay), job{kind: jobDamageExchange})
	e.emit(at, Event{Kind: EventPhaseChanged, Side: SideOpponent, Count: placed})
	e.log.Debug("opponent filled", zap.Int("placed", placed), zap.Int("roster", e.roster.Len()))
}

// exchangeDamage computes the hits each side's slots receive from the other
// side's slot at the same index. It only reads, so the outcome does not depend
// on slot order or on which side is applied first.
func exchangeDamage(player, opponent *ZoneSet) (toPlayer, toOpponent []int) {
	n := player.Len()
	if opponent.Len() > n {
		n = opponent.Len()
	}
	toPlayer = make([]int, n)
	toOpponent = make([]int, n)
	for i := 0; i < n; i++ {
		if c, ok := opponent.Live(i); ok {
			toPlayer[i] = c.Damage
		}
		if c, ok := player.Live(i); ok {
			toOpponent[i] = c.Damage
		}
	}
	return toPlayer, toOpponent
}

func (e *Engine) damageExchangeLocked(at time.Time) {
	if e.phase != PhaseResolving || e.step != StepAwaitingDamageExchange {
		return
	}
	e.resolved = append(e.resolved, StepAwaitingDamageExchange)

	toPlayer, toOpponent := exchangeDamage(e.zones, e.opponentZones)
	e.applyHitsLocked(SidePlayer, e.zones, toPlayer, at)
	e.applyHitsLocked(SideOpponent, e.opponentZones, toOpponent, at)

	e.completeRoundLocked(at)
}

func (e *Engine) applyHitsLocked(side Side, zones *ZoneSet, hits []int, at time.Time) {
	for slot, amount := range hits {
		if amount <= 0 || slot >= zones.Len() {
			continue
		}
		c, ok := zones.Live(slot)
		if !ok {
			continue
		}
		alive, err := zones.Damage(slot, amount)
		if err != nil {
			e.log.Error("apply hit", zap.Error(err), zap.Int("slot", slot))
			continue
		}
		if alive {
			continue
		}
		c.Committed = false
		e.emit(at, Event{Kind: EventCardDied, Side: side, Slot: slot})
		e.agenda.Schedule(at.Add(e.rules.DeathRemovalDelay), job{kind: jobRemoveDead, side: side, slot: slot, cardID: c.ID})
		e.log.Debug("card died", zap.String("side", string(side)), zap.Int("slot", slot), zap.String("card", c.Name))
	}
}

// survivorsLocked returns copies of the deck plus every live zone occupant.
func (e *Engine) survivorsLocked() []Card {
	out := e.deck.snapshot()
	for slot := 0; slot < e.zones.Len(); slot++ {
		if c, ok := e.zones.Live(slot); ok {
			out = append(out, c.clone())
		}
	}
	return out
}

func (e *Engine) completeRoundLocked(at time.Time) {
	times := make([]int, len(e.roundTimes))
	copy(times, e.roundTimes)
	e.coins = e.scorer.Score(e.survivorsLocked(), times)

	if e.roster.Len() == 0 && e.opponentZones.LiveSlots() == 0 {
		e.won = true
	}

	need := e.deck.AvailableSpace() - e.zones.FilledSlots()
	if need < 0 {
		need = 0
	}
	e.dealLocked(need, at)

	e.round++
	e.emit(at, Event{Kind: EventRoundAdvanced, Coins: e.coins})

	if e.deck.Len() == 0 && e.zones.FilledSlots() == 0 {
		e.lost = true
	}

	e.step = StepNone
	if e.won || e.lost {
		e.phase = PhaseRoundEnd
		if e.won {
			e.emit(at, Event{Kind: EventGameWon, Coins: e.coins})
		}
		if e.lost {
			e.emit(at, Event{Kind: EventGameLost, Message: "no cards left"})
		}
		e.emit(at, Event{Kind: EventPhaseChanged})
		e.finishLocked(at)
		e.log.Info("match finished",
			zap.Bool("won", e.won),
			zap.Bool("lost", e.lost),
			zap.Int("round", e.round),
			zap.Int("coins", e.coins))
		return
	}

	e.phase = PhasePlaying
	e.timer.Start(e.rules.RoundSeconds, at)
	e.emit(at, Event{Kind: EventPhaseChanged})
	e.log.Info("round advanced",
		zap.Int("round", e.round),
		zap.Int("coins", e.coins),
		zap.Int("dealt", need),
		zap.Int("roster", e.roster.Len()))
}
