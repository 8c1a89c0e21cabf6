package fight

import (
	"fmt"
	"time"
)

// Rules are the tunable parameters of a fight.
type Rules struct {
	// MaxTurns ends the fight in a draw after this many completed turns.
	MaxTurns int
	// ProviderTimeout bounds each wait for an action provider.
	ProviderTimeout time.Duration
	// MaxDuration is a wall-clock watchdog for Run; zero disables it.
	MaxDuration time.Duration
	// CritChance is the probability in [0, 1] that a hit is critical.
	CritChance float64
	// CritMultiplier scales critical damage and healing; must be >= 1.
	CritMultiplier float64
	// EnergyRegen is granted to each living fighter at the end of every turn.
	EnergyRegen int
	// ScoreK is the maximum score exchanged by a ranked fight.
	ScoreK int
}

// DefaultRules returns the rules used when configuration leaves them unset.
func DefaultRules() Rules {
	return Rules{
		MaxTurns:        25,
		ProviderTimeout: 30 * time.Second,
		CritChance:      0.1,
		CritMultiplier:  1.5,
		EnergyRegen:     5,
		ScoreK:          32,
	}
}

// Validate checks the rules' bounds.
func (r Rules) Validate() error {
	if r.MaxTurns < 1 {
		return fmt.Errorf("fight rules: max_turns must be >= 1, got %d", r.MaxTurns)
	}
	if r.ProviderTimeout <= 0 {
		return fmt.Errorf("fight rules: provider_timeout must be > 0, got %s", r.ProviderTimeout)
	}
	if r.MaxDuration < 0 {
		return fmt.Errorf("fight rules: max_duration must be >= 0, got %s", r.MaxDuration)
	}
	if r.CritChance < 0 || r.CritChance > 1 {
		return fmt.Errorf("fight rules: crit_chance must be in [0, 1], got %v", r.CritChance)
	}
	if r.CritMultiplier < 1 {
		return fmt.Errorf("fight rules: crit_multiplier must be >= 1, got %v", r.CritMultiplier)
	}
	if r.EnergyRegen < 0 {
		return fmt.Errorf("fight rules: energy_regen must be >= 0, got %d", r.EnergyRegen)
	}
	if r.ScoreK < 0 {
		return fmt.Errorf("fight rules: score_k must be >= 0, got %d", r.ScoreK)
	}
	return nil
}
