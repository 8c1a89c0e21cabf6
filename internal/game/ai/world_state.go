package ai

import (
	"github.com/cory-johannsen/arena/internal/game/action"
	"github.com/cory-johannsen/arena/internal/scripting"
)

// FighterState captures one fighter's fight-relevant state at planning time.
type FighterState struct {
	ID          string
	Name        string
	IsPlayer    bool
	Health      int
	MaxHealth   int
	Energy      int
	MaxEnergy   int
	Attack      int
	Defense     int
	Speed       int
	CanAct      bool
	Alterations []string
	Actions     []*action.Action
}

// HealthPercent returns current health as a percentage of MaxHealth; 0 if MaxHealth == 0.
func (f *FighterState) HealthPercent() float64 {
	if f.MaxHealth <= 0 {
		return 0
	}
	return float64(f.Health) / float64(f.MaxHealth) * 100
}

// HasAlteration reports whether kind is active on the fighter.
func (f *FighterState) HasAlteration(kind string) bool {
	for _, a := range f.Alterations {
		if a == kind {
			return true
		}
	}
	return false
}

// Info converts the state to the snapshot passed to Lua preconditions.
func (f *FighterState) Info() *scripting.FighterInfo {
	info := &scripting.FighterInfo{
		ID:          f.ID,
		Name:        f.Name,
		IsPlayer:    f.IsPlayer,
		Health:      f.Health,
		MaxHealth:   f.MaxHealth,
		Energy:      f.Energy,
		MaxEnergy:   f.MaxEnergy,
		Attack:      f.Attack,
		Defense:     f.Defense,
		Speed:       f.Speed,
		CanAct:      f.CanAct,
		Alterations: append([]string(nil), f.Alterations...),
	}
	for _, a := range f.Actions {
		info.Actions = append(info.Actions, a.ID)
	}
	return info
}

// WorldState is the snapshot passed to the HTN planner for one monster.
//
// Invariant: Self and Opponent must not be nil.
type WorldState struct {
	Turn     int
	Self     *FighterState
	Opponent *FighterState
}

// affordable returns Self's actions of category whose cost fits Self's energy, in action-set order.
func (ws *WorldState) affordable(cat action.Category) []*action.Action {
	var out []*action.Action
	for _, a := range ws.Self.Actions {
		if a.Category == cat && a.Cost <= ws.Self.Energy {
			out = append(out, a)
		}
	}
	return out
}

// ResolveAction maps an operator action token to an action ID of Self.
//
// Postcondition: selectors resolve to an affordable action of Self or ""
// when none qualifies; literal IDs are returned as-is.
func (ws *WorldState) ResolveAction(token string) string {
	switch token {
	case SelectBestAttack:
		var best *action.Action
		for _, a := range ws.affordable(action.CategoryAttack) {
			if best == nil || a.BasePower > best.BasePower {
				best = a
			}
		}
		return idOf(best)
	case SelectCheapAttack:
		var cheap *action.Action
		for _, a := range ws.affordable(action.CategoryAttack) {
			if cheap == nil || a.Cost < cheap.Cost {
				cheap = a
			}
		}
		return idOf(cheap)
	case SelectHeal:
		return idOf(first(ws.affordable(action.CategoryHeal)))
	case SelectDebuff:
		return idOf(first(ws.affordable(action.CategoryDebuff)))
	case SelectBuff:
		return idOf(first(ws.affordable(action.CategoryBuff)))
	default:
		return token
	}
}

func first(acts []*action.Action) *action.Action {
	if len(acts) == 0 {
		return nil
	}
	return acts[0]
}

func idOf(a *action.Action) string {
	if a == nil {
		return ""
	}
	return a.ID
}
