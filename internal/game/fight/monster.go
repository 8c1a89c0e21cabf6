package fight

import (
	"fmt"

	"github.com/cory-johannsen/arena/internal/game/action"
	"github.com/cory-johannsen/arena/internal/game/monster"
)

// MonsterFighter is a fighter spawned from a monster template. It always
// starts at full health and energy.
type MonsterFighter struct {
	state
	tmpl  *monster.Template
	level int
}

// NewMonsterFighter spawns tmpl at level under the given fighter id.
//
// Precondition: tmpl must be valid; level >= 1.
// Postcondition: Returns a *ConfigurationError when one of the template's
// actions is not registered.
func NewMonsterFighter(id string, tmpl *monster.Template, level int, actions *action.Registry) (*MonsterFighter, error) {
	if tmpl == nil {
		return nil, fmt.Errorf("fight: monster template must not be nil")
	}
	if id == "" {
		return nil, fmt.Errorf("fight: monster id must not be empty")
	}
	block, err := tmpl.StatsAt(level)
	if err != nil {
		return nil, err
	}
	acts := make([]*action.Action, 0, len(tmpl.Actions))
	for _, ref := range tmpl.Actions {
		a, ok := actions.Get(ref)
		if !ok {
			return nil, &ConfigurationError{Kind: "action", Ref: ref, Owner: tmpl.ID}
		}
		acts = append(acts, a)
	}
	stats := Stats{
		MaxHealth: block.MaxHealth,
		Attack:    block.Attack,
		Defense:   block.Defense,
		Speed:     block.Speed,
		MaxEnergy: block.MaxEnergy,
	}
	return &MonsterFighter{
		state: newState(id, tmpl.Name, stats, stats.MaxHealth, stats.MaxEnergy, acts),
		tmpl:  tmpl,
		level: level,
	}, nil
}

func (m *MonsterFighter) IsPlayer() bool              { return false }
func (m *MonsterFighter) Score() int                  { return m.tmpl.Rating }
func (m *MonsterFighter) Template() *monster.Template { return m.tmpl }
func (m *MonsterFighter) Level() int                  { return m.level }
