package game

import (
	"context"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"cardbattle/pkg/realtime"
)

// Phase is the coarse state of a match.
type Phase string

const (
	PhasePlaying   Phase = "playing"
	PhaseResolving Phase = "resolving"
	PhaseRoundEnd  Phase = "round_end"
)

// Step is the sub-state of PhaseResolving.
type Step string

const (
	StepNone                   Step = ""
	StepAwaitingOpponentFill   Step = "awaiting_opponent_fill"
	StepAwaitingDamageExchange Step = "awaiting_damage_exchange"
)

var tracer = otel.Tracer("cardbattle/internal/game")

type jobKind int

const (
	jobCommit jobKind = iota
	jobRemoveDead
	jobOpponentFill
	jobDamageExchange
)

type job struct {
	kind   jobKind
	side   Side
	slot   int
	cardID string
}

// Options configures an Engine. Supplier is required for a playable match;
// everything else has a usable default.
type Options struct {
	ID       string
	Rules    Rules
	Supplier DeckSupplier
	Scorer   Scorer
	Sink     EventSink
	Recorder Recorder
	Logger   *zap.Logger
	// Opponent seeds the opponent roster on every reset. Defaults to DemoRoster.
	Opponent func() []*Card
}

// Engine is the round-resolution state machine for one match. It owns every
// card in play; callers only ever see copies through Snapshot.
type Engine struct {
	mu sync.Mutex
	// held from drain until the sinks have the batch
	dispatchMu sync.Mutex

	id       string
	rules    Rules
	supplier DeckSupplier
	scorer   Scorer
	sink     EventSink
	recorder Recorder
	log      *zap.Logger
	opponent func() []*Card

	deck          *Deck
	zones         *ZoneSet
	opponentZones *ZoneSet
	roster        *Roster
	timer         realtime.Countdown
	agenda        realtime.Agenda[job]

	round      int
	roundTimes []int
	phase      Phase
	step       Step
	won        bool
	lost       bool
	timedOut   bool
	coins      int
	endedAt    time.Time

	// collected under mu, dispatched after unlocking
	pending  []Event
	finished *MatchResult
	resolved []Step
}

// NewEngine builds an engine. Call Reset to deal the first hand and start the clock.
func NewEngine(opts Options) *Engine {
	rules := opts.Rules.withDefaults()
	e := &Engine{
		id:            opts.ID,
		rules:         rules,
		supplier:      opts.Supplier,
		scorer:        opts.Scorer,
		sink:          opts.Sink,
		recorder:      opts.Recorder,
		log:           opts.Logger,
		opponent:      opts.Opponent,
		deck:          NewDeck(rules.DeckCapacity),
		zones:         NewZoneSet(rules.Zones),
		opponentZones: NewZoneSet(rules.Zones),
		roster:        NewRoster(nil),
		timer:         realtime.Countdown{Interval: rules.TickInterval},
		round:         1,
		phase:         PhasePlaying,
	}
	if e.id == "" {
		e.id = newID()
	}
	if e.supplier == nil {
		e.supplier = emptySupplier{}
	}
	if e.scorer == nil {
		e.scorer = ScorerFunc(func([]Card, []int) int { return 0 })
	}
	if e.sink == nil {
		e.sink = discardSink{}
	}
	if e.log == nil {
		e.log = zap.NewNop()
	}
	if e.opponent == nil {
		e.opponent = DemoRoster
	}
	e.log = e.log.With(zap.String("game_id", e.id))
	return e
}

// ID returns the match identifier.
func (e *Engine) ID() string {
	return e.id
}

// Rules returns the engine's effective rules.
func (e *Engine) Rules() Rules {
	return e.rules
}

// Reset cancels any in-flight resolution and the running timer, then starts a
// fresh match: round one, a full timer, empty zones, a new opponent roster and
// a freshly dealt hand.
func (e *Engine) Reset(ctx context.Context, now time.Time) {
	ctx, span := tracer.Start(ctx, "game.Reset", trace.WithAttributes(attribute.String("game.id", e.id)))
	defer span.End()

	e.mu.Lock()
	e.resetLocked(now)
	e.unlockAndDispatch(ctx)
}

func (e *Engine) resetLocked(now time.Time) {
	e.agenda.Clear()
	e.timer.Stop()
	discarded := e.deck.Take(e.deck.Len())
	e.zones.Clear()
	e.opponentZones.Clear()
	e.roster = NewRoster(e.opponent())
	e.round = 1
	e.roundTimes = nil
	e.won, e.lost, e.timedOut = false, false, false
	e.coins = 0
	e.phase = PhasePlaying
	e.step = StepNone
	e.finished = nil
	e.resolved = nil
	e.endedAt = time.Time{}

	e.dealLocked(e.rules.HandSize, now)
	e.timer.Start(e.rules.RoundSeconds, now)
	e.emit(now, Event{Kind: EventPhaseChanged})
	e.log.Info("match reset",
		zap.Int("discarded", len(discarded)),
		zap.Int("deck", e.deck.Len()),
		zap.Int("roster", e.roster.Len()))
}

// Continue ends the player's arrangement for this round. Illegal boards are
// reported as a *ValidationError and leave the engine untouched; calls while a
// round is resolving or after the match ended return a *StateError.
func (e *Engine) Continue(ctx context.Context, now time.Time) error {
	ctx, span := tracer.Start(ctx, "game.Continue", trace.WithAttributes(attribute.String("game.id", e.id)))
	defer span.End()

	e.mu.Lock()
	e.advanceLocked(now)
	err := e.continueLocked(now)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
	}
	e.unlockAndDispatch(ctx)
	return err
}

func (e *Engine) continueLocked(now time.Time) error {
	if err := e.requirePlaying("continue"); err != nil {
		return err
	}
	msg := ""
	if e.zones.HasEmpty() && e.deck.Len() > 0 {
		msg = MsgEmptyZonesWithDeck
	}
	if e.zones.FilledSlots() == 0 {
		msg = MsgNoCardsInZones
	}
	if msg != "" {
		e.emit(now, Event{Kind: EventValidationFailed, Message: msg})
		return &ValidationError{Message: msg}
	}

	e.timer.Stop()
	e.roundTimes = append(e.roundTimes, e.timer.Remaining)
	e.phase = PhaseResolving
	e.step = StepAwaitingOpponentFill
	e.agenda.Schedule(now.Add(e.rules.OpponentFillDelay), job{kind: jobOpponentFill})
	e.emit(now, Event{Kind: EventPhaseChanged, Message: MsgNextRound})
	e.log.Info("round committed",
		zap.Int("round", e.round),
		zap.Int("seconds_remaining", e.timer.Remaining),
		zap.Int("filled_zones", e.zones.FilledSlots()))
	return nil
}

func (e *Engine) requirePlaying(op string) error {
	switch e.phase {
	case PhaseResolving:
		return &StateError{Op: op, Phase: e.phase, Err: ErrResolving}
	case PhaseRoundEnd:
		return &StateError{Op: op, Phase: e.phase, Err: ErrMatchOver}
	}
	return nil
}

// Advance applies every timer tick and pending sub-phase due at or before now,
// in time order.
func (e *Engine) Advance(ctx context.Context, now time.Time) {
	e.mu.Lock()
	e.advanceLocked(now)
	e.unlockAndDispatch(ctx)
}

func (e *Engine) advanceLocked(now time.Time) {
	for {
		tNext, tok := e.timer.NextWake()
		tDue := tok && !tNext.After(now)
		jNext, jok := e.agenda.Next()
		jDue := jok && !jNext.After(now)

		switch {
		case tDue && (!jDue || !jNext.Before(tNext)):
			_, timedOut := e.timer.Advance(tNext)
			e.emit(tNext, Event{Kind: EventTimerTick, Seconds: e.timer.Remaining})
			if timedOut {
				e.timeoutLocked(tNext)
			}
		case jDue:
			j, due, _ := e.agenda.PopDue(now)
			e.runLocked(j, due)
		default:
			return
		}
	}
}

// FinishedAt reports when the match reached RoundEnd. It is false while the
// match is still being played.
func (e *Engine) FinishedAt() (time.Time, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.endedAt, e.phase == PhaseRoundEnd
}

// NextWake returns the earliest instant at which Advance has work to do.
func (e *Engine) NextWake() (time.Time, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	tNext, tok := e.timer.NextWake()
	jNext, jok := e.agenda.Next()
	switch {
	case tok && jok:
		if jNext.Before(tNext) {
			return jNext, true
		}
		return tNext, true
	case tok:
		return tNext, true
	case jok:
		return jNext, true
	}
	return time.Time{}, false
}

func (e *Engine) timeoutLocked(at time.Time) {
	if e.phase != PhasePlaying {
		return
	}
	e.lost = true
	e.timedOut = true
	e.phase = PhaseRoundEnd
	e.step = StepNone
	e.emit(at, Event{Kind: EventGameLost, Message: "time ran out"})
	e.emit(at, Event{Kind: EventPhaseChanged})
	e.finishLocked(at)
	e.log.Info("match lost on time", zap.Int("round", e.round))
}

func (e *Engine) runLocked(j job, at time.Time) {
	switch j.kind {
	case jobCommit:
		e.commitLocked(j, at)
	case jobRemoveDead:
		zones := e.zonesFor(j.side)
		if zones.RemoveIf(j.slot, j.cardID) {
			e.emit(at, Event{Kind: EventCardRemoved, Side: j.side, Slot: j.slot})
		}
	case jobOpponentFill:
		e.opponentFillLocked(at)
	case jobDamageExchange:
		e.damageExchangeLocked(at)
	}
}

func (e *Engine) commitLocked(j job, at time.Time) {
	var c *Card
	if j.side == SidePlayer {
		if i, ok := e.deck.Find(j.cardID); ok {
			c = e.deck.cards[i]
		}
	}
	if c == nil {
		if slot, ok := e.zonesFor(j.side).Find(j.cardID); ok {
			c, _ = e.zonesFor(j.side).Occupant(slot)
		}
	}
	if c == nil || c.Committed || !c.Alive() {
		return
	}
	c.Committed = true
	e.emit(at, Event{Kind: EventCardCommitted, Side: j.side})
}

func (e *Engine) zonesFor(side Side) *ZoneSet {
	if side == SideOpponent {
		return e.opponentZones
	}
	return e.zones
}

// dealLocked asks the supplier for count cards and schedules them to settle.
func (e *Engine) dealLocked(count int, now time.Time) {
	if count <= 0 {
		return
	}
	if space := e.deck.AvailableSpace(); count > space {
		count = space
	}
	served := e.supplier.ServeHand(count)
	cards := make([]*Card, 0, len(served))
	for _, c := range served {
		if c != nil && len(cards) < count {
			cards = append(cards, c)
		}
	}
	if len(cards) == 0 {
		return
	}
	if err := e.deck.Add(cards...); err != nil {
		e.log.Error("deal rejected", zap.Error(err), zap.Int("count", len(cards)))
		return
	}
	for _, c := range cards {
		e.agenda.Schedule(now.Add(e.rules.SettleDelay), job{kind: jobCommit, side: SidePlayer, cardID: c.ID})
	}
	e.emit(now, Event{Kind: EventCardsDealt, Side: SidePlayer, Count: len(cards)})
}

func (e *Engine) emit(at time.Time, ev Event) {
	ev.GameID = e.id
	ev.At = at
	if ev.Phase == "" {
		ev.Phase = e.phase
	}
	if ev.Step == "" {
		ev.Step = e.step
	}
	if ev.Round == 0 {
		ev.Round = e.round
	}
	e.pending = append(e.pending, ev)
}

func (e *Engine) finishLocked(at time.Time) {
	e.timer.Stop()
	e.endedAt = at
	times := make([]int, len(e.roundTimes))
	copy(times, e.roundTimes)
	e.finished = &MatchResult{
		GameID:     e.id,
		Won:        e.won,
		Lost:       e.lost,
		TimedOut:   e.timedOut,
		Rounds:     e.round,
		Coins:      e.coins,
		RoundTimes: times,
		FinishedAt: at,
	}
}

type dispatchBatch struct {
	events   []Event
	finished *MatchResult
	resolved []Step
}

func (e *Engine) drainLocked() dispatchBatch {
	b := dispatchBatch{events: e.pending, finished: e.finished, resolved: e.resolved}
	e.pending = nil
	e.finished = nil
	e.resolved = nil
	return b
}

// unlockAndDispatch releases mu and publishes what was collected under it.
// dispatchMu is taken before mu is released, so concurrent callers hand their
// batches to the sinks in the order the events were produced.
func (e *Engine) unlockAndDispatch(ctx context.Context) {
	e.dispatchMu.Lock()
	b := e.drainLocked()
	e.mu.Unlock()
	e.publish(ctx, b)
	e.dispatchMu.Unlock()

	if b.finished != nil && e.recorder != nil {
		// The match is over whether or not the caller is still waiting.
		if err := e.recorder.Record(context.WithoutCancel(ctx), *b.finished); err != nil {
			e.log.Error("record match result", zap.Error(err))
		}
	}
}

func (e *Engine) publish(ctx context.Context, b dispatchBatch) {
	if len(b.resolved) > 0 {
		_, span := tracer.Start(ctx, "game.Resolve", trace.WithAttributes(
			attribute.String("game.id", e.id),
			attribute.Int("game.steps", len(b.resolved)),
		))
		for _, s := range b.resolved {
			span.AddEvent(string(s))
		}
		span.End()
	}
	for _, ev := range b.events {
		e.sink.Publish(ev)
	}
}

type emptySupplier struct{}

func (emptySupplier) ServeHand(int) []*Card { return nil }
