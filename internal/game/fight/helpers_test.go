package fight_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/cory-johannsen/arena/internal/game/action"
	"github.com/cory-johannsen/arena/internal/game/alteration"
	"github.com/cory-johannsen/arena/internal/game/dice"
	"github.com/cory-johannsen/arena/internal/game/fight"
)

var (
	strike = &action.Action{ID: "strike", Name: "Strike", Cost: 5, BasePower: 20, Target: action.TargetOpponent, Category: action.CategoryAttack}
	stunBolt = &action.Action{ID: "stun_bolt", Name: "Stun Bolt", Cost: 10, BasePower: 5, Target: action.TargetOpponent, Category: action.CategoryAttack,
		Alteration: "stunned", AlterationChance: 1, AlterationDuration: 2}
	venom = &action.Action{ID: "venom", Name: "Venom", Cost: 5, Target: action.TargetOpponent, Category: action.CategoryDebuff,
		Alteration: "poisoned", AlterationChance: 1}
	guard = &action.Action{ID: "guard", Name: "Guard", Cost: 5, Target: action.TargetSelf, Category: action.CategoryBuff,
		Alteration: "protected", AlterationChance: 1}
	mend = &action.Action{ID: "mend", Name: "Mend", Cost: 10, BasePower: 15, Target: action.TargetSelf, Category: action.CategoryHeal}
	jab  = &action.Action{ID: "jab", Name: "Jab", Cost: 0, BasePower: 30, Target: action.TargetOpponent, Category: action.CategoryAttack, MissChance: 0.2}
)

func testActions() *action.Registry {
	return action.MustRegistry(strike, stunBolt, venom, guard, mend, jab)
}

func testAlterations() *alteration.Registry {
	return alteration.MustRegistry(
		&alteration.Def{Kind: "stunned", Name: "Stunned", Duration: 1, BlocksAction: true},
		&alteration.Def{Kind: "poisoned", Name: "Poisoned", Duration: 3, PeriodicDamage: 4},
		&alteration.Def{Kind: "protected", Name: "Protected", Duration: 2, DefenseMultiplier: 2},
		&alteration.Def{Kind: "slowed", Name: "Slowed", Duration: 2, SpeedMultiplier: 0.5},
		&alteration.Def{Kind: "invisible", Name: "Invisible", Duration: 1, Evasion: 1},
	)
}

// newPlayer builds a full-health player owning every test action.
func newPlayer(t *testing.T, id string, health, attack, defense, speed int) *fight.PlayerFighter {
	t.Helper()
	p, err := fight.NewPlayerFighter(fight.PlayerSnapshot{
		ID:        id,
		Name:      id,
		Score:     1000,
		Stats:     fight.Stats{MaxHealth: health, Attack: attack, Defense: defense, Speed: speed, MaxEnergy: 100},
		Energy:    100,
		ActionIDs: []string{"strike", "stun_bolt", "venom", "guard", "mend", "jab"},
	}, testActions(), testAlterations())
	require.NoError(t, err)
	return p
}

// noCrit disables critical hits so fixed sources give predictable damage.
func noCrit() fight.Rules {
	r := fight.DefaultRules()
	r.CritChance = 0
	r.ProviderTimeout = time.Second
	return r
}

func newController(t *testing.T, a, b fight.Fighter, pa, pb fight.ActionProvider, src dice.Source, rules fight.Rules) *fight.Controller {
	t.Helper()
	c, err := fight.NewController(fight.Setup{
		Fighters:    [2]fight.Fighter{a, b},
		Providers:   [2]fight.ActionProvider{pa, pb},
		Rules:       rules,
		Alterations: testAlterations(),
		Source:      src,
	})
	require.NoError(t, err)
	return c
}

// always returns a provider that picks a every turn.
func always(a *action.Action) fight.ActionProvider {
	return fight.NewSequenceProvider(a)
}

func run(t *testing.T, c *fight.Controller) *fight.Summary {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	sum, err := c.Run(ctx)
	require.NoError(t, err)
	return sum
}

func fixedHalf() dice.Source { return dice.Fixed(0.5) }
