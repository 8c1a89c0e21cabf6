// Package action defines the immutable catalog of moves a fighter may choose.
package action

import (
	"fmt"
)

// Category groups actions by effect.
type Category string

const (
	CategoryAttack Category = "attack"
	CategoryBuff   Category = "buff"
	CategoryDebuff Category = "debuff"
	CategoryHeal   Category = "heal"
	CategoryPass   Category = "pass"
)

// Target selects who receives the action.
type Target string

const (
	TargetSelf     Target = "self"
	TargetOpponent Target = "opponent"
)

// PassID is the ID of the built-in no-op action.
const PassID = "pass"

// Action is the static definition of a move. Actions are data and never mutated.
type Action struct {
	ID        string   `yaml:"id"`
	Name      string   `yaml:"name"`
	Cost      int      `yaml:"cost"`       // energy spent when used
	BasePower int      `yaml:"base_power"` // damage or heal power
	Target    Target   `yaml:"target"`
	Category  Category `yaml:"category"`
	// MissChance is the probability in [0, 1] that an opponent-targeted action misses.
	MissChance float64 `yaml:"miss_chance"`
	// Alteration is the kind inflicted on success; empty for none.
	Alteration       string  `yaml:"alteration"`
	AlterationChance float64 `yaml:"alteration_chance"`
	// AlterationDuration overrides the alteration's default duration when > 0.
	AlterationDuration int `yaml:"alteration_duration"`
}

// Pass is the built-in action consuming a turn with no effect.
var Pass = &Action{ID: PassID, Name: "Pass", Target: TargetSelf, Category: CategoryPass}

// IsPass reports whether a is the no-op action (nil counts as pass).
func (a *Action) IsPass() bool {
	return a == nil || a.Category == CategoryPass
}

// ExpectedTarget returns the only target consistent with the category.
func (c Category) ExpectedTarget() Target {
	switch c {
	case CategoryAttack, CategoryDebuff:
		return TargetOpponent
	default:
		return TargetSelf
	}
}

// Validate checks the action's own invariants. Cross references to alteration
// kinds are checked by Registry.Validate.
//
// Postcondition: Returns nil iff ID is non-empty, the category is known and
// consistent with Target, Cost and BasePower are non-negative, and chances are in [0, 1].
func (a *Action) Validate() error {
	if a.ID == "" {
		return fmt.Errorf("action: id must not be empty")
	}
	switch a.Category {
	case CategoryAttack, CategoryBuff, CategoryDebuff, CategoryHeal, CategoryPass:
	default:
		return fmt.Errorf("action %q: unknown category %q", a.ID, a.Category)
	}
	if a.Target != a.Category.ExpectedTarget() {
		return fmt.Errorf("action %q: category %q must target %q, got %q", a.ID, a.Category, a.Category.ExpectedTarget(), a.Target)
	}
	if a.Cost < 0 {
		return fmt.Errorf("action %q: cost must be >= 0, got %d", a.ID, a.Cost)
	}
	if a.BasePower < 0 {
		return fmt.Errorf("action %q: base_power must be >= 0, got %d", a.ID, a.BasePower)
	}
	if a.Category == CategoryAttack && a.BasePower < 1 {
		return fmt.Errorf("action %q: attack base_power must be >= 1", a.ID)
	}
	if a.MissChance < 0 || a.MissChance > 1 {
		return fmt.Errorf("action %q: miss_chance must be in [0, 1], got %v", a.ID, a.MissChance)
	}
	if a.AlterationChance < 0 || a.AlterationChance > 1 {
		return fmt.Errorf("action %q: alteration_chance must be in [0, 1], got %v", a.ID, a.AlterationChance)
	}
	if a.Alteration == "" && a.AlterationChance > 0 {
		return fmt.Errorf("action %q: alteration_chance set without an alteration", a.ID)
	}
	if (a.Category == CategoryBuff || a.Category == CategoryDebuff) && a.Alteration == "" {
		return fmt.Errorf("action %q: %s actions must name an alteration", a.ID, a.Category)
	}
	if (a.Category == CategoryBuff || a.Category == CategoryDebuff) && a.AlterationChance == 0 {
		return fmt.Errorf("action %q: %s actions need alteration_chance > 0", a.ID, a.Category)
	}
	if a.AlterationDuration < 0 {
		return fmt.Errorf("action %q: alteration_duration must be >= 0", a.ID)
	}
	return nil
}
