// Package fight runs turn-based duels between two fighters.
package fight

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/cory-johannsen/arena/internal/game/action"
	"github.com/cory-johannsen/arena/internal/game/alteration"
	"github.com/cory-johannsen/arena/internal/game/dice"
)

// State is the lifecycle stage of a Controller.
type State int32

const (
	StateNotStarted State = iota
	StateInProgress
	StateFinished
)

func (s State) String() string {
	switch s {
	case StateNotStarted:
		return "not_started"
	case StateInProgress:
		return "in_progress"
	case StateFinished:
		return "finished"
	}
	return "unknown"
}

type interruptKind int

const (
	interruptAbort interruptKind = iota
	interruptSurrender
	interruptDisconnect
)

type interrupt struct {
	kind  interruptKind
	index int
}

// Setup is everything a Controller needs to run one fight.
type Setup struct {
	// ID identifies the fight; a random UUID is used when empty.
	ID          string
	Fighters    [2]Fighter
	Providers   [2]ActionProvider
	Friendly    bool
	Rules       Rules
	Alterations *alteration.Registry
	Source      dice.Source
	Logger      *zap.Logger
	Observer    Observer
}

// Controller is the state machine of a single fight:
// NotStarted -> InProgress -> Finished.
//
// PlayTurn and Run must be called from one goroutine. Surrender, Cancel,
// Abort and State are safe to call from any goroutine.
type Controller struct {
	id         string
	fighters   [2]Fighter
	providers  [2]ActionProvider
	friendly   bool
	rules      Rules
	alts       *alteration.Registry
	src        dice.Source
	logger     *zap.Logger
	observer   Observer
	state      atomic.Int32
	turn       int
	lastFirst  int
	interrupts chan interrupt
	// abortOnce closes aborted; an abort never waits for buffer space.
	abortOnce  sync.Once
	aborted    chan struct{}
	summary    *Summary
}

// NewController validates setup and returns a controller in StateNotStarted.
//
// Postcondition: Returns a *ConfigurationError when an action owned by a
// fighter inflicts an unregistered alteration.
func NewController(setup Setup) (*Controller, error) {
	for i, f := range setup.Fighters {
		if f == nil {
			return nil, fmt.Errorf("fight: fighter %d must not be nil", i)
		}
		if !f.IsAlive() {
			return nil, fmt.Errorf("fight: fighter %q must start alive", f.ID())
		}
		if setup.Providers[i] == nil {
			return nil, fmt.Errorf("fight: provider for fighter %q must not be nil", f.ID())
		}
	}
	if setup.Fighters[0].ID() == setup.Fighters[1].ID() {
		return nil, fmt.Errorf("fight: fighters must be distinct, both are %q", setup.Fighters[0].ID())
	}
	if setup.Alterations == nil {
		return nil, fmt.Errorf("fight: alteration registry must not be nil")
	}
	if setup.Source == nil {
		return nil, fmt.Errorf("fight: random source must not be nil")
	}
	if err := setup.Rules.Validate(); err != nil {
		return nil, err
	}
	for _, f := range setup.Fighters {
		for _, a := range f.Actions() {
			if a.Alteration == "" {
				continue
			}
			if _, ok := setup.Alterations.Get(a.Alteration); !ok {
				return nil, &ConfigurationError{Kind: "alteration", Ref: a.Alteration, Owner: a.ID}
			}
		}
	}
	id := setup.ID
	if id == "" {
		id = uuid.NewString()
	}
	logger := setup.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Controller{
		id:         id,
		fighters:   setup.Fighters,
		providers:  setup.Providers,
		friendly:   setup.Friendly,
		rules:      setup.Rules,
		alts:       setup.Alterations,
		src:        setup.Source,
		logger:     logger.With(zap.String("fight_id", id)),
		observer:   setup.Observer,
		lastFirst:  NoMover,
		interrupts: make(chan interrupt, 4),
		aborted:    make(chan struct{}),
	}, nil
}

func (c *Controller) ID() string            { return c.id }
func (c *Controller) Friendly() bool        { return c.friendly }
func (c *Controller) Rules() Rules          { return c.rules }
func (c *Controller) Fighters() [2]Fighter  { return c.fighters }
func (c *Controller) Fighter(i int) Fighter { return c.fighters[i] }

// Turn returns the number of the current or last played turn.
func (c *Controller) Turn() int { return c.turn }

// State returns the lifecycle stage. Safe for concurrent use.
func (c *Controller) State() State { return State(c.state.Load()) }

// Summary returns the outcome of a finished fight.
//
// Postcondition: Returns an *IllegalStateError unless the fight is finished.
func (c *Controller) Summary() (*Summary, error) {
	if c.State() != StateFinished {
		return nil, &IllegalStateError{Op: "Summary", State: c.State()}
	}
	return c.summary, nil
}

// Surrender ends the fight at the next decision point with fighter index as loser.
func (c *Controller) Surrender(index int) error {
	return c.signal("Surrender", interrupt{kind: interruptSurrender, index: index})
}

// Cancel ends the fight on behalf of fighter index, e.g. after a disconnect.
// It is scored as that fighter's surrender.
func (c *Controller) Cancel(index int) error {
	return c.signal("Cancel", interrupt{kind: interruptDisconnect, index: index})
}

// Abort ends the fight as a timeout draw at the next decision point.
func (c *Controller) Abort() error {
	return c.signal("Abort", interrupt{kind: interruptAbort, index: NoWinner})
}

func (c *Controller) signal(op string, it interrupt) error {
	if it.kind != interruptAbort && (it.index < 0 || it.index > 1) {
		return fmt.Errorf("fight: fighter index %d out of range", it.index)
	}
	if s := c.State(); s == StateFinished {
		return &IllegalStateError{Op: op, State: s}
	}
	if it.kind == interruptAbort {
		c.abortOnce.Do(func() { close(c.aborted) })
		return nil
	}
	select {
	case c.interrupts <- it:
	default:
		// a full buffer already holds an earlier surrender, which wins.
	}
	return nil
}

func (c *Controller) abortPending() bool {
	select {
	case <-c.aborted:
		return true
	default:
		return false
	}
}

// Run plays turns until the fight finishes and returns its summary. When
// Rules.MaxDuration is set, a watchdog aborts the fight after that long.
// Cancelling ctx aborts the fight as a timeout draw.
//
// Postcondition: Returns an *IllegalStateError if the fight already finished.
func (c *Controller) Run(ctx context.Context) (*Summary, error) {
	if s := c.State(); s == StateFinished {
		return nil, &IllegalStateError{Op: "Run", State: s}
	}
	if c.rules.MaxDuration > 0 {
		w := NewWatchdog(c.rules.MaxDuration, func() {
			c.logger.Warn("fight exceeded max duration", zap.Duration("max_duration", c.rules.MaxDuration))
			_ = c.Abort()
		})
		defer w.Stop()
	}
	for c.State() != StateFinished {
		if _, err := c.PlayTurn(ctx); err != nil {
			return nil, err
		}
	}
	return c.summary, nil
}

// PlayTurn advances the fight by one turn: each living fighter acts once in
// initiative order, alterations tick, energy regenerates, and the terminal
// conditions are checked exactly once. The first call starts the fight.
//
// Postcondition: Returns an *IllegalStateError if the fight already finished;
// otherwise returns the events of this turn in order.
func (c *Controller) PlayTurn(ctx context.Context) ([]Event, error) {
	switch s := c.State(); s {
	case StateFinished:
		return nil, &IllegalStateError{Op: "PlayTurn", State: s}
	case StateNotStarted:
		c.state.Store(int32(StateInProgress))
		c.logger.Info("fight started",
			zap.String("fighter0", c.fighters[0].ID()),
			zap.String("fighter1", c.fighters[1].ID()),
			zap.Bool("friendly", c.friendly),
		)
	}

	var events []Event
	emit := func(e Event) {
		events = append(events, e)
		if c.observer != nil {
			c.observer.OnEvent(e)
		}
	}

	if ctx.Err() != nil {
		c.finishInterrupted(interrupt{kind: interruptAbort, index: NoWinner}, emit)
		return events, nil
	}
	if it, ok := c.pendingInterrupt(); ok {
		c.finishInterrupted(it, emit)
		return events, nil
	}

	c.turn++
	first := FirstMover(c.fighters[0].EffectiveStats().Speed, c.fighters[1].EffectiveStats().Speed, c.lastFirst)
	c.lastFirst = first
	emit(Event{Kind: EventTurnStarted, Turn: c.turn, Actor: first})

	for _, idx := range TurnOrder(first) {
		if !c.fighters[0].IsAlive() || !c.fighters[1].IsAlive() {
			break
		}
		if it, interrupted := c.takeTurn(ctx, idx, emit); interrupted {
			c.finishInterrupted(it, emit)
			return events, nil
		}
	}

	for i, f := range c.fighters {
		if !f.IsAlive() {
			continue
		}
		rep := f.TickAlterations()
		if len(rep.Ticks) > 0 {
			emit(Event{Kind: EventTick, Turn: c.turn, Actor: i, Damage: rep.Damage, Expired: rep.Expired()})
		}
	}
	for _, f := range c.fighters {
		if f.IsAlive() {
			f.GainEnergy(c.rules.EnergyRegen)
		}
	}

	c.checkTerminal(emit)
	return events, nil
}

// takeTurn collects and applies fighter idx's action. It reports an interrupt
// that arrived while waiting on the provider.
func (c *Controller) takeTurn(ctx context.Context, idx int, emit func(Event)) (interrupt, bool) {
	actor, target := c.fighters[idx], c.fighters[1-idx]

	var (
		act    *action.Action
		recErr error
	)
	if actor.CanAct() {
		d := c.collect(ctx, idx)
		if d.interrupted {
			return d.it, true
		}
		if d.choice.Surrender {
			return interrupt{kind: interruptSurrender, index: idx}, true
		}
		act, recErr = d.choice.Action, d.err
	}

	eff, err := Resolve(actor, act, target, c.src, c.rules)
	if err != nil {
		var iae *InvalidActionError
		if errors.As(err, &iae) {
			iae.Turn = c.turn
		}
		c.logger.Warn("invalid action replaced by pass", zap.Int("turn", c.turn), zap.Error(err))
		recErr = err
		eff, _ = Resolve(actor, action.Pass, target, c.src, c.rules)
	}
	c.apply(idx, eff)
	emit(Event{Kind: EventAction, Turn: c.turn, Actor: idx, Effect: &eff, Err: recErr})
	return interrupt{}, false
}

// decision is the outcome of waiting on a provider.
type decision struct {
	choice      Choice
	err         error
	it          interrupt
	interrupted bool
}

// collect asks fighter idx's provider for a choice, bounded by
// Rules.ProviderTimeout. Provider failures become a pass plus the recovered
// error; external interrupts end the wait immediately.
func (c *Controller) collect(ctx context.Context, idx int) decision {
	actor := c.fighters[idx]
	view := View{
		FightID:  c.id,
		Turn:     c.turn,
		Friendly: c.friendly,
		Self:     snapshot(actor),
		Opponent: snapshot(c.fighters[1-idx]),
	}

	pctx, cancel := context.WithTimeout(ctx, c.rules.ProviderTimeout)
	defer cancel()

	type result struct {
		choice Choice
		err    error
	}
	results := make(chan result, 1)
	provider := c.providers[idx]
	go func() {
		ch, err := provider.ChooseAction(pctx, view)
		results <- result{ch, err}
	}()

	pass := Use(action.Pass)
	select {
	case <-c.aborted:
		return decision{it: interrupt{kind: interruptAbort, index: NoWinner}, interrupted: true}
	case it := <-c.interrupts:
		return decision{it: it, interrupted: true}
	case <-pctx.Done():
		if ctx.Err() != nil {
			return decision{it: interrupt{kind: interruptAbort, index: NoWinner}, interrupted: true}
		}
		c.logger.Warn("action provider timed out", zap.Int("turn", c.turn), zap.String("fighter", actor.ID()))
		return decision{choice: pass, err: &ProviderTimeoutError{Turn: c.turn, FighterID: actor.ID(), Err: pctx.Err()}}
	case r := <-results:
		if r.err != nil {
			c.logger.Warn("action provider failed", zap.Int("turn", c.turn), zap.String("fighter", actor.ID()), zap.Error(r.err))
			return decision{choice: pass, err: &ProviderTimeoutError{Turn: c.turn, FighterID: actor.ID(), Err: r.err}}
		}
		if r.choice.Surrender {
			return decision{choice: r.choice}
		}
		a := r.choice.Action
		if a.IsPass() {
			return decision{choice: pass}
		}
		owned, ok := actor.Action(a.ID)
		if !ok {
			return c.rejected(actor, a.ID, "not in the fighter's action set")
		}
		// only the fighter's registered definition is ever resolved.
		if *a != *owned {
			return c.rejected(actor, a.ID, "definition differs from the registered action")
		}
		return decision{choice: Use(owned)}
	}
}

// rejected turns an unusable provider choice into a pass plus the recorded error.
func (c *Controller) rejected(actor Fighter, id, reason string) decision {
	err := &InvalidActionError{Turn: c.turn, FighterID: actor.ID(), ActionID: id, Reason: reason}
	c.logger.Warn("invalid action replaced by pass", zap.Int("turn", c.turn), zap.Error(err))
	return decision{choice: Use(action.Pass), err: err}
}

// apply mutates the fighters according to eff.
func (c *Controller) apply(idx int, eff ResolvedEffect) {
	actor, target := c.fighters[idx], c.fighters[1-idx]
	if eff.Outcome == OutcomeBlocked {
		return
	}
	actor.RecordAction(eff.ActionID)
	if eff.Outcome == OutcomePass {
		return
	}
	actor.SpendEnergy(eff.EnergySpent)
	if eff.DamageDealt > 0 {
		target.ApplyDamage(eff.DamageDealt)
	}
	if eff.Healed > 0 {
		actor.ApplyHeal(eff.Healed)
	}
	if eff.AlterationInflicted == "" {
		return
	}
	recipient := target
	if eff.TargetID == actor.ID() {
		recipient = actor
	}
	if !recipient.IsAlive() {
		return
	}
	def, _ := c.alts.Get(eff.AlterationInflicted)
	if err := recipient.AddAlteration(def, eff.AlterationDuration); err != nil {
		c.logger.Error("applying alteration", zap.String("kind", eff.AlterationInflicted), zap.Error(err))
	}
}

// checkTerminal ends the fight when a terminal condition holds. Precedence:
// double KO, single death, turn limit, then pending interrupts.
func (c *Controller) checkTerminal(emit func(Event)) {
	alive0, alive1 := c.fighters[0].IsAlive(), c.fighters[1].IsAlive()
	switch {
	case !alive0 && !alive1:
		c.finish(NoWinner, EndDoubleKO, emit)
	case !alive0:
		c.finish(1, EndDeath, emit)
	case !alive1:
		c.finish(0, EndDeath, emit)
	case c.turn >= c.rules.MaxTurns:
		c.finish(NoWinner, EndTurnLimit, emit)
	default:
		if it, ok := c.pendingInterrupt(); ok {
			c.finishInterrupted(it, emit)
		}
	}
}

// pendingInterrupt returns the interrupt that ends the fight, if any. An
// abort outranks a surrender; otherwise the first queued surrender wins.
func (c *Controller) pendingInterrupt() (interrupt, bool) {
	if c.abortPending() {
		return interrupt{kind: interruptAbort, index: NoWinner}, true
	}
	select {
	case it := <-c.interrupts:
		return it, true
	default:
		return interrupt{}, false
	}
}

func (c *Controller) finishInterrupted(it interrupt, emit func(Event)) {
	if c.abortPending() {
		it = interrupt{kind: interruptAbort, index: NoWinner}
	}
	switch it.kind {
	case interruptAbort:
		c.finish(NoWinner, EndTimeout, emit)
	case interruptSurrender:
		c.finish(1-it.index, EndSurrender, emit)
	case interruptDisconnect:
		c.finish(1-it.index, EndDisconnect, emit)
	}
}

func (c *Controller) finish(winner int, reason EndReason, emit func(Event)) {
	c.summary = newSummary(c, winner, reason)
	c.state.Store(int32(StateFinished))
	c.logger.Info("fight finished",
		zap.Int("winner", winner),
		zap.Stringer("reason", reason),
		zap.Int("turns", c.turn),
		zap.Ints("score_deltas", c.summary.deltas[:]),
	)
	emit(Event{Kind: EventFinished, Turn: c.turn, Actor: winner, Summary: c.summary})
}
