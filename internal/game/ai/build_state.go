package ai

import (
	"github.com/cory-johannsen/arena/internal/game/fight"
)

// BuildWorldState constructs a WorldState from the view a fight hands to a
// provider. Stats are the effective ones.
//
// Postcondition: ws.Self.ID == view.Self.ID; ws.Turn == view.Turn.
func BuildWorldState(view fight.View) *WorldState {
	return &WorldState{
		Turn:     view.Turn,
		Self:     fighterState(view.Self),
		Opponent: fighterState(view.Opponent),
	}
}

func fighterState(v fight.FighterView) *FighterState {
	fs := &FighterState{
		ID:        v.ID,
		Name:      v.Name,
		IsPlayer:  v.IsPlayer,
		Health:    v.Health,
		MaxHealth: v.Stats.MaxHealth,
		Energy:    v.Energy,
		MaxEnergy: v.Stats.MaxEnergy,
		Attack:    v.Effective.Attack,
		Defense:   v.Effective.Defense,
		Speed:     v.Effective.Speed,
		CanAct:    v.CanAct,
		Actions:   v.Actions,
	}
	for _, a := range v.Alterations {
		fs.Alterations = append(fs.Alterations, a.Kind)
	}
	return fs
}
