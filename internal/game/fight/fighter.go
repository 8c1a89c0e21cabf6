package fight

import (
	"math"

	"github.com/cory-johannsen/arena/internal/game/action"
	"github.com/cory-johannsen/arena/internal/game/alteration"
)

// Stats are a fighter's combat statistics.
type Stats struct {
	MaxHealth int
	Attack    int
	Defense   int
	Speed     int
	MaxEnergy int
}

// HasStats exposes identity and statistics.
type HasStats interface {
	ID() string
	Name() string
	BaseStats() Stats
	// EffectiveStats applies the multipliers of active alterations.
	EffectiveStats() Stats
	// Score is the pre-fight score used for score deltas.
	Score() int
}

// CanReceiveDamage exposes health bookkeeping.
type CanReceiveDamage interface {
	Health() int
	// ApplyDamage reports whether this call killed the fighter.
	ApplyDamage(amount int) bool
	ApplyHeal(amount int)
	IsAlive() bool
}

// CanAct exposes energy, the action set and the action history.
type CanAct interface {
	CanAct() bool
	Energy() int
	GainEnergy(amount int)
	SpendEnergy(amount int)
	Actions() []*action.Action
	HasAction(id string) bool
	// Action returns the fighter's own definition of id.
	Action(id string) (*action.Action, bool)
	RecordAction(id string)
	ActionHistory() []string
}

// CanBeAltered exposes status alterations.
type CanBeAltered interface {
	AddAlteration(def *alteration.Def, duration int) error
	TickAlterations() TickReport
	HasAlteration(kind string) bool
	AlterationTurns(kind string) int
	Alterations() []alteration.Active
	Evasion() float64
}

// Fighter is one combatant for the duration of a single fight.
// Implementations: *PlayerFighter and *MonsterFighter.
type Fighter interface {
	HasStats
	CanReceiveDamage
	CanAct
	CanBeAltered
	IsPlayer() bool
}

// TickReport describes one end-of-turn alteration tick for a fighter.
type TickReport struct {
	Ticks  []alteration.Tick
	Damage int
	Killed bool
}

// Expired returns the kinds that ran out during the tick.
func (r TickReport) Expired() []string {
	var out []string
	for _, t := range r.Ticks {
		if t.Expired {
			out = append(out, t.Kind)
		}
	}
	return out
}

// state is the combat-scoped mutable state shared by both fighter variants.
//
// Invariant: 0 <= health <= stats.MaxHealth; 0 <= energy <= stats.MaxEnergy.
type state struct {
	id          string
	name        string
	stats       Stats
	health      int
	energy      int
	alterations *alteration.Set
	actions     []*action.Action
	history     []string
}

func newState(id, name string, stats Stats, health, energy int, actions []*action.Action) state {
	s := state{
		id:          id,
		name:        name,
		stats:       stats,
		health:      clamp(health, 0, stats.MaxHealth),
		energy:      clamp(energy, 0, stats.MaxEnergy),
		alterations: alteration.NewSet(),
		actions:     actions,
	}
	return s
}

func (s *state) ID() string       { return s.id }
func (s *state) Name() string     { return s.name }
func (s *state) BaseStats() Stats { return s.stats }
func (s *state) Health() int      { return s.health }
func (s *state) Energy() int      { return s.energy }
func (s *state) IsAlive() bool    { return s.health > 0 }

// EffectiveStats returns base stats scaled by active alterations. Attack
// never drops below 1 so the damage formula stays defined.
func (s *state) EffectiveStats() Stats {
	eff := s.stats
	eff.Attack = scale(s.stats.Attack, alteration.AttackMultiplier(s.alterations))
	if eff.Attack < 1 {
		eff.Attack = 1
	}
	eff.Defense = scale(s.stats.Defense, alteration.DefenseMultiplier(s.alterations))
	eff.Speed = scale(s.stats.Speed, alteration.SpeedMultiplier(s.alterations))
	return eff
}

// ApplyDamage reduces health by max(amount, 0), flooring at zero.
//
// Postcondition: 0 <= Health() <= MaxHealth; returns true iff the fighter was
// alive before the call and is dead after it.
func (s *state) ApplyDamage(amount int) bool {
	if amount <= 0 || s.health == 0 {
		return false
	}
	s.health -= amount
	if s.health < 0 {
		s.health = 0
	}
	return s.health == 0
}

// ApplyHeal increases health, clamped to MaxHealth. The dead are not healed.
func (s *state) ApplyHeal(amount int) {
	if amount <= 0 || s.health == 0 {
		return
	}
	s.health = clamp(s.health+amount, 0, s.stats.MaxHealth)
}

// GainEnergy adds energy, clamped to MaxEnergy.
func (s *state) GainEnergy(amount int) {
	if amount <= 0 {
		return
	}
	s.energy = clamp(s.energy+amount, 0, s.stats.MaxEnergy)
}

// SpendEnergy removes energy, flooring at zero. Spending more than available
// is not an error: cost limits how often an action is used, it does not gate it.
func (s *state) SpendEnergy(amount int) {
	if amount <= 0 {
		return
	}
	s.energy = clamp(s.energy-amount, 0, s.stats.MaxEnergy)
}

// CanAct reports whether the fighter is alive and not blocked by an alteration.
func (s *state) CanAct() bool {
	return s.IsAlive() && !alteration.BlocksAction(s.alterations)
}

// Actions returns the fighter's action set.
func (s *state) Actions() []*action.Action {
	out := make([]*action.Action, len(s.actions))
	copy(out, s.actions)
	return out
}

// HasAction reports whether id is in the action set. Pass is always allowed.
func (s *state) HasAction(id string) bool {
	_, ok := s.Action(id)
	return ok
}

// Action returns the registered definition of id from the action set, or
// action.Pass for the pass ID.
func (s *state) Action(id string) (*action.Action, bool) {
	if id == action.PassID {
		return action.Pass, true
	}
	for _, a := range s.actions {
		if a.ID == id {
			return a, true
		}
	}
	return nil, false
}

func (s *state) RecordAction(id string) {
	s.history = append(s.history, id)
}

// ActionHistory returns a copy of the ordered action history.
func (s *state) ActionHistory() []string {
	out := make([]string, len(s.history))
	copy(out, s.history)
	return out
}

// AddAlteration applies def, replacing an alteration of the same kind.
func (s *state) AddAlteration(def *alteration.Def, duration int) error {
	return s.alterations.Apply(def, duration)
}

// TickAlterations advances every alteration by one turn and applies periodic damage.
func (s *state) TickAlterations() TickReport {
	ticks := s.alterations.Tick(s.stats.MaxHealth)
	rep := TickReport{Ticks: ticks}
	for _, t := range ticks {
		rep.Damage += t.Damage
	}
	if rep.Damage > 0 {
		rep.Killed = s.ApplyDamage(rep.Damage)
	}
	return rep
}

func (s *state) HasAlteration(kind string) bool  { return s.alterations.Has(kind) }
func (s *state) AlterationTurns(kind string) int { return s.alterations.Remaining(kind) }
func (s *state) Alterations() []alteration.Active {
	return s.alterations.All()
}
func (s *state) Evasion() float64 { return alteration.Evasion(s.alterations) }

func scale(v int, m float64) int {
	return int(math.Round(float64(v) * m))
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
