package fight

import (
	"fmt"

	"github.com/cory-johannsen/arena/internal/game/action"
	"github.com/cory-johannsen/arena/internal/game/alteration"
)

// AlterationState is a persisted alteration carried into a fight.
type AlterationState struct {
	Kind           string
	RemainingTurns int
}

// PlayerSnapshot is the read-only view of a player profile a fight starts from.
type PlayerSnapshot struct {
	ID    string
	Name  string
	Class string
	Score int
	Stats Stats
	// Health is the current health; zero means full health.
	Health int
	// Energy is the current energy, clamped to Stats.MaxEnergy.
	Energy      int
	ActionIDs   []string
	Alterations []AlterationState
}

// PlayerFighter is a fighter backed by a player profile.
type PlayerFighter struct {
	state
	class string
	score int
}

// NewPlayerFighter builds a fighter from snap, resolving its action IDs and
// carried alterations against the registries.
//
// Precondition: snap.Stats.MaxHealth >= 1 and snap.Stats.Attack >= 1.
// Postcondition: Returns a *ConfigurationError when an action ID or alteration
// kind is not registered.
func NewPlayerFighter(snap PlayerSnapshot, actions *action.Registry, alts *alteration.Registry) (*PlayerFighter, error) {
	if snap.ID == "" {
		return nil, fmt.Errorf("fight: player id must not be empty")
	}
	if err := validateStats(snap.Stats); err != nil {
		return nil, fmt.Errorf("fight: player %q: %w", snap.ID, err)
	}
	if snap.Energy < 0 {
		return nil, fmt.Errorf("fight: player %q: energy must be >= 0", snap.ID)
	}
	acts := make([]*action.Action, 0, len(snap.ActionIDs))
	for _, id := range snap.ActionIDs {
		a, ok := actions.Get(id)
		if !ok {
			return nil, &ConfigurationError{Kind: "action", Ref: id, Owner: snap.ID}
		}
		acts = append(acts, a)
	}
	health := snap.Health
	if health <= 0 {
		health = snap.Stats.MaxHealth
	}
	p := &PlayerFighter{
		state: newState(snap.ID, snap.Name, snap.Stats, health, snap.Energy, acts),
		class: snap.Class,
		score: snap.Score,
	}
	for _, carried := range snap.Alterations {
		def, ok := alts.Get(carried.Kind)
		if !ok {
			return nil, &ConfigurationError{Kind: "alteration", Ref: carried.Kind, Owner: snap.ID}
		}
		if err := p.alterations.Restore(def, carried.RemainingTurns); err != nil {
			return nil, fmt.Errorf("fight: player %q: %w", snap.ID, err)
		}
	}
	return p, nil
}

func (p *PlayerFighter) IsPlayer() bool { return true }
func (p *PlayerFighter) Score() int     { return p.score }
func (p *PlayerFighter) Class() string  { return p.class }

// Snapshot returns the post-fight state of the player, suitable for committing
// back to the profile store. Score is the pre-fight score; callers add the delta.
func (p *PlayerFighter) Snapshot() PlayerSnapshot {
	snap := PlayerSnapshot{
		ID:     p.id,
		Name:   p.name,
		Class:  p.class,
		Score:  p.score,
		Stats:  p.stats,
		Health: p.health,
		Energy: p.energy,
	}
	for _, a := range p.actions {
		snap.ActionIDs = append(snap.ActionIDs, a.ID)
	}
	for _, a := range p.alterations.All() {
		snap.Alterations = append(snap.Alterations, AlterationState{Kind: a.Kind(), RemainingTurns: a.RemainingTurns})
	}
	return snap
}

func validateStats(s Stats) error {
	if s.MaxHealth < 1 || s.Attack < 1 {
		return fmt.Errorf("max health and attack must be >= 1")
	}
	if s.Defense < 0 || s.Speed < 0 || s.MaxEnergy < 0 {
		return fmt.Errorf("defense, speed and max energy must be >= 0")
	}
	return nil
}
