package fight

import (
	"math"

	"github.com/cory-johannsen/arena/internal/game/action"
	"github.com/cory-johannsen/arena/internal/game/dice"
)

// Outcome classifies a resolved action.
type Outcome int

const (
	// OutcomePass is a deliberate or substituted pass.
	OutcomePass Outcome = iota
	// OutcomeBlocked means an alteration prevented the attacker from acting.
	OutcomeBlocked
	// OutcomeMiss is a glancing blow: floor damage and no alteration.
	OutcomeMiss
	OutcomeHit
	OutcomeCritical
)

func (o Outcome) String() string {
	switch o {
	case OutcomePass:
		return "pass"
	case OutcomeBlocked:
		return "blocked"
	case OutcomeMiss:
		return "miss"
	case OutcomeHit:
		return "hit"
	case OutcomeCritical:
		return "critical"
	}
	return "unknown"
}

// ResolvedEffect is the computed result of one action. It is a value: the
// controller applies it to the fighters.
type ResolvedEffect struct {
	ActionID   string
	AttackerID string
	// TargetID is the fighter receiving damage or the alteration.
	TargetID    string
	Outcome     Outcome
	DamageDealt int
	Healed      int
	// Killed reports that DamageDealt is at least the target's remaining health.
	Killed bool
	// AlterationInflicted is the kind to apply to TargetID, or empty.
	AlterationInflicted string
	// AlterationDuration is the requested duration; zero selects the default.
	AlterationDuration int
	EnergySpent        int
}

// Resolve computes the effect of attacker using act against defender. It
// does not mutate either fighter.
//
// Non-blocked, non-pass actions consume exactly two draws from src: the first
// decides miss and critical, the second decides alteration infliction. Passes
// and blocked actions consume none.
//
// Precondition: attacker and defender are non-nil; src is non-nil.
// Postcondition: Returns an *InvalidActionError (Turn unset) when act fails
// validation; otherwise DamageDealt >= 1 for every attack that is not blocked.
func Resolve(attacker Fighter, act *action.Action, defender Fighter, src dice.Source, rules Rules) (ResolvedEffect, error) {
	eff := ResolvedEffect{ActionID: action.PassID, AttackerID: attacker.ID(), TargetID: attacker.ID()}
	if !attacker.CanAct() {
		if act != nil {
			eff.ActionID = act.ID
		}
		eff.Outcome = OutcomeBlocked
		return eff, nil
	}
	if act.IsPass() {
		eff.Outcome = OutcomePass
		return eff, nil
	}
	if err := act.Validate(); err != nil {
		return eff, &InvalidActionError{FighterID: attacker.ID(), ActionID: act.ID, Reason: err.Error()}
	}

	eff.ActionID = act.ID
	eff.EnergySpent = act.Cost
	if act.Target == action.TargetOpponent {
		eff.TargetID = defender.ID()
	}

	hitRoll := src.Float64()
	altRoll := src.Float64()

	missChance := 0.0
	if act.Target == action.TargetOpponent {
		missChance = math.Min(1, act.MissChance+defender.Evasion())
	}
	switch {
	case hitRoll < missChance:
		eff.Outcome = OutcomeMiss
	case hitRoll >= 1-rules.CritChance && rules.CritChance > 0:
		eff.Outcome = OutcomeCritical
	default:
		eff.Outcome = OutcomeHit
	}

	switch act.Category {
	case action.CategoryAttack:
		eff.DamageDealt = attackDamage(act.BasePower, attacker.EffectiveStats().Attack, defender.EffectiveStats().Defense, eff.Outcome, rules)
		eff.Killed = eff.DamageDealt >= defender.Health()
	case action.CategoryHeal:
		amount := act.BasePower
		if eff.Outcome == OutcomeCritical {
			amount = int(math.Round(float64(amount) * rules.CritMultiplier))
		}
		missing := attacker.BaseStats().MaxHealth - attacker.Health()
		eff.Healed = min(amount, missing)
	}

	if act.Alteration != "" && eff.Outcome != OutcomeMiss && !eff.Killed && altRoll < act.AlterationChance {
		eff.AlterationInflicted = act.Alteration
		eff.AlterationDuration = act.AlterationDuration
	}
	return eff, nil
}

// attackDamage is max(1, round(power * atk / (atk + def))), scaled on a
// critical and floored to 1 on a miss.
func attackDamage(power, atk, def int, outcome Outcome, rules Rules) int {
	if outcome == OutcomeMiss {
		return 1
	}
	dmg := float64(power)
	if atk+def > 0 {
		dmg = float64(power) * float64(atk) / float64(atk+def)
	}
	if outcome == OutcomeCritical {
		dmg *= rules.CritMultiplier
	}
	return max(1, int(math.Round(dmg)))
}
