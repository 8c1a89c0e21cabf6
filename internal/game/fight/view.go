package fight

import (
	"github.com/cory-johannsen/arena/internal/game/action"
)

// AlterationView is a read-only description of an active alteration.
type AlterationView struct {
	Kind           string
	Tag            string
	RemainingTurns int
}

// FighterView is an immutable snapshot of one fighter.
type FighterView struct {
	ID          string
	Name        string
	IsPlayer    bool
	Health      int
	Energy      int
	Stats       Stats
	Effective   Stats
	CanAct      bool
	Actions     []*action.Action
	Alterations []AlterationView
}

// HealthRatio returns Health / MaxHealth in [0, 1].
func (v FighterView) HealthRatio() float64 {
	if v.Stats.MaxHealth == 0 {
		return 0
	}
	return float64(v.Health) / float64(v.Stats.MaxHealth)
}

// HasAlteration reports whether kind is active in the snapshot.
func (v FighterView) HasAlteration(kind string) bool {
	for _, a := range v.Alterations {
		if a.Kind == kind {
			return true
		}
	}
	return false
}

// Affordable returns the actions whose cost fits the current energy, in action-set order.
func (v FighterView) Affordable() []*action.Action {
	var out []*action.Action
	for _, a := range v.Actions {
		if a.Cost <= v.Energy {
			out = append(out, a)
		}
	}
	return out
}

// View is what an ActionProvider sees when asked for a decision. It shares no
// mutable state with the fight.
type View struct {
	FightID  string
	Turn     int
	Friendly bool
	Self     FighterView
	Opponent FighterView
}

func snapshot(f Fighter) FighterView {
	v := FighterView{
		ID:        f.ID(),
		Name:      f.Name(),
		IsPlayer:  f.IsPlayer(),
		Health:    f.Health(),
		Energy:    f.Energy(),
		Stats:     f.BaseStats(),
		Effective: f.EffectiveStats(),
		CanAct:    f.CanAct(),
		Actions:   f.Actions(),
	}
	for _, a := range f.Alterations() {
		v.Alterations = append(v.Alterations, AlterationView{Kind: a.Kind(), Tag: a.Def.Tag, RemainingTurns: a.RemainingTurns})
	}
	return v
}
