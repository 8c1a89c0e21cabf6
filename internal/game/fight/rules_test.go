package fight_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/cory-johannsen/arena/internal/game/fight"
)

func TestRules_DefaultsValid(t *testing.T) {
	assert.NoError(t, fight.DefaultRules().Validate())
}

func TestRules_Validate(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*fight.Rules)
		want   string
	}{
		{"zero max turns", func(r *fight.Rules) { r.MaxTurns = 0 }, "max_turns"},
		{"zero provider timeout", func(r *fight.Rules) { r.ProviderTimeout = 0 }, "provider_timeout"},
		{"negative max duration", func(r *fight.Rules) { r.MaxDuration = -time.Second }, "max_duration"},
		{"crit chance above one", func(r *fight.Rules) { r.CritChance = 1.5 }, "crit_chance"},
		{"crit chance negative", func(r *fight.Rules) { r.CritChance = -0.1 }, "crit_chance"},
		{"crit multiplier below one", func(r *fight.Rules) { r.CritMultiplier = 0.5 }, "crit_multiplier"},
		{"negative regen", func(r *fight.Rules) { r.EnergyRegen = -1 }, "energy_regen"},
		{"negative k", func(r *fight.Rules) { r.ScoreK = -1 }, "score_k"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := fight.DefaultRules()
			tc.mutate(&r)
			err := r.Validate()
			if assert.Error(t, err) {
				assert.Contains(t, err.Error(), tc.want)
			}
		})
	}
}

func TestRules_ZeroDurationDisablesWatchdog(t *testing.T) {
	r := fight.DefaultRules()
	r.MaxDuration = 0
	assert.NoError(t, r.Validate())
}
