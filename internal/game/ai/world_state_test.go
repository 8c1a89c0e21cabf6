package ai_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cory-johannsen/arena/internal/game/action"
	"github.com/cory-johannsen/arena/internal/game/ai"
	"github.com/cory-johannsen/arena/internal/game/fight"
)

func TestWorldState_ResolveAction_Selectors(t *testing.T) {
	ws := wolfState(20)
	assert.Equal(t, "maul", ws.ResolveAction(ai.SelectBestAttack))
	assert.Equal(t, "bite", ws.ResolveAction(ai.SelectCheapAttack))
	assert.Equal(t, "lick", ws.ResolveAction(ai.SelectHeal))
	assert.Equal(t, "howl", ws.ResolveAction(ai.SelectDebuff))
	assert.Equal(t, "snarl", ws.ResolveAction(ai.SelectBuff))
	assert.Equal(t, "claw", ws.ResolveAction("claw"), "literal IDs pass through")
}

func TestWorldState_ResolveAction_NothingAffordable(t *testing.T) {
	ws := wolfState(0)
	ws.Self.Actions = []*action.Action{maul, lick}
	assert.Empty(t, ws.ResolveAction(ai.SelectBestAttack))
	assert.Empty(t, ws.ResolveAction(ai.SelectHeal))
}

func TestFighterState_HealthPercentAndInfo(t *testing.T) {
	fs := &ai.FighterState{ID: "wolf-1", Health: 10, MaxHealth: 40, Alterations: []string{"weak"}, Actions: []*action.Action{bite}}
	assert.InDelta(t, 25.0, fs.HealthPercent(), 1e-9)
	assert.True(t, fs.HasAlteration("weak"))
	info := fs.Info()
	assert.Equal(t, []string{"bite"}, info.Actions)
	assert.Equal(t, []string{"weak"}, info.Alterations)
	assert.Zero(t, (&ai.FighterState{}).HealthPercent())
}

func TestBuildWorldState_UsesEffectiveStats(t *testing.T) {
	view := fight.View{
		Turn: 3,
		Self: fight.FighterView{
			ID:          "wolf-1",
			Health:      12,
			Energy:      7,
			Stats:       fight.Stats{MaxHealth: 40, Attack: 10, Defense: 4, Speed: 8, MaxEnergy: 20},
			Effective:   fight.Stats{MaxHealth: 40, Attack: 5, Defense: 4, Speed: 8, MaxEnergy: 20},
			CanAct:      true,
			Actions:     []*action.Action{bite},
			Alterations: []fight.AlterationView{{Kind: "weak", RemainingTurns: 1}},
		},
		Opponent: fight.FighterView{ID: "alice", IsPlayer: true, Health: 30, Stats: fight.Stats{MaxHealth: 60}},
	}
	ws := ai.BuildWorldState(view)
	require.NotNil(t, ws.Self)
	assert.Equal(t, 3, ws.Turn)
	assert.Equal(t, 5, ws.Self.Attack)
	assert.Equal(t, 40, ws.Self.MaxHealth)
	assert.Equal(t, []string{"weak"}, ws.Self.Alterations)
	assert.True(t, ws.Opponent.IsPlayer)
	assert.Equal(t, 60, ws.Opponent.MaxHealth)
}
