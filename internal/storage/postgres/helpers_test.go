package postgres_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/cory-johannsen/arena/internal/game/action"
	"github.com/cory-johannsen/arena/internal/game/alteration"
	"github.com/cory-johannsen/arena/internal/game/dice"
	"github.com/cory-johannsen/arena/internal/game/fight"
	"github.com/cory-johannsen/arena/internal/game/monster"
)

var (
	slash = &action.Action{ID: "slash", Name: "Slash", Cost: 0, BasePower: 30, Target: action.TargetOpponent, Category: action.CategoryAttack}
	poke  = &action.Action{ID: "poke", Name: "Poke", Cost: 0, BasePower: 5, Target: action.TargetOpponent, Category: action.CategoryAttack}

	testActions     = action.MustRegistry(slash, poke)
	testAlterations = alteration.MustRegistry(&alteration.Def{Kind: "poisoned", Duration: 3, PeriodicDamage: 2})
)

func uniqueID(prefix string) string {
	return fmt.Sprintf("%s_%d", prefix, time.Now().UnixNano())
}

func makeSnapshot(id string, score int) fight.PlayerSnapshot {
	return fight.PlayerSnapshot{
		ID:        id,
		Name:      "Hero " + id,
		Class:     "knight",
		Score:     score,
		Stats:     fight.Stats{MaxHealth: 60, Attack: 20, Defense: 10, Speed: 10, MaxEnergy: 20},
		Health:    60,
		Energy:    20,
		ActionIDs: []string{"slash", "poke"},
	}
}

// runPvP plays a fight where fighter 0 slashes and fighter 1 pokes; fighter 0 wins.
func runPvP(t *testing.T, a, b fight.PlayerSnapshot, friendly bool) (*fight.Summary, [2]*fight.PlayerFighter) {
	t.Helper()
	pa, err := fight.NewPlayerFighter(a, testActions, testAlterations)
	require.NoError(t, err)
	pb, err := fight.NewPlayerFighter(b, testActions, testAlterations)
	require.NoError(t, err)
	sum := runFight(t, pa, pb, friendly)
	return sum, [2]*fight.PlayerFighter{pa, pb}
}

func runFight(t *testing.T, f0, f1 fight.Fighter, friendly bool) *fight.Summary {
	t.Helper()
	rules := fight.DefaultRules()
	rules.CritChance = 0
	c, err := fight.NewController(fight.Setup{
		Fighters:    [2]fight.Fighter{f0, f1},
		Providers:   [2]fight.ActionProvider{fight.NewSequenceProvider(slash), fight.NewSequenceProvider(poke)},
		Friendly:    friendly,
		Rules:       rules,
		Alterations: testAlterations,
		Source:      dice.Fixed(0.5),
	})
	require.NoError(t, err)
	sum, err := c.Run(context.Background())
	require.NoError(t, err)
	return sum
}

func goblin(t *testing.T) *fight.MonsterFighter {
	t.Helper()
	tmpl := &monster.Template{
		ID: "goblin", Name: "Goblin", Rating: 900,
		Base:     monster.StatBlock{MaxHealth: 30, Attack: 8, Defense: 4, Speed: 6, MaxEnergy: 10},
		PerLevel: monster.StatBlock{MaxHealth: 5, Attack: 1},
		Actions:  []string{"slash", "poke"},
	}
	m, err := fight.NewMonsterFighter(uniqueID("goblin"), tmpl, 3, testActions)
	require.NoError(t, err)
	return m
}
