package fight_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/arena/internal/game/action"
	"github.com/cory-johannsen/arena/internal/game/fight"
	"github.com/cory-johannsen/arena/internal/game/monster"
)

func TestApplyDamage_ReportsKillOnce(t *testing.T) {
	p := newPlayer(t, "alice", 20, 5, 5, 5)
	assert.False(t, p.ApplyDamage(15))
	assert.Equal(t, 5, p.Health())
	assert.True(t, p.ApplyDamage(50))
	assert.Equal(t, 0, p.Health())
	assert.False(t, p.ApplyDamage(1), "already dead")
	assert.False(t, p.IsAlive())
}

func TestApplyDamage_IgnoresNegative(t *testing.T) {
	p := newPlayer(t, "alice", 20, 5, 5, 5)
	assert.False(t, p.ApplyDamage(-7))
	assert.Equal(t, 20, p.Health())
}

func TestApplyHeal_ClampsAndSkipsDead(t *testing.T) {
	p := newPlayer(t, "alice", 20, 5, 5, 5)
	p.ApplyDamage(10)
	p.ApplyHeal(100)
	assert.Equal(t, 20, p.Health())

	p.ApplyDamage(20)
	p.ApplyHeal(5)
	assert.Equal(t, 0, p.Health())
}

func TestPropertyHealthStaysInBounds(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		maxHealth := rapid.IntRange(1, 500).Draw(rt, "maxHealth")
		p, err := fight.NewPlayerFighter(fight.PlayerSnapshot{
			ID:    "p",
			Stats: fight.Stats{MaxHealth: maxHealth, Attack: 1},
		}, testActions(), testAlterations())
		if err != nil {
			rt.Fatal(err)
		}
		ops := rapid.SliceOf(rapid.IntRange(-300, 300)).Draw(rt, "ops")
		for _, op := range ops {
			if op < 0 {
				p.ApplyDamage(-op)
			} else {
				p.ApplyHeal(op)
			}
			if p.Health() < 0 || p.Health() > maxHealth {
				rt.Fatalf("health %d outside [0, %d]", p.Health(), maxHealth)
			}
		}
	})
}

func TestSpendEnergy_FloorsAtZero(t *testing.T) {
	p := newPlayer(t, "alice", 20, 5, 5, 5)
	p.SpendEnergy(95)
	assert.Equal(t, 5, p.Energy())
	p.SpendEnergy(10)
	assert.Equal(t, 0, p.Energy())
	p.GainEnergy(500)
	assert.Equal(t, 100, p.Energy())
}

func TestAddAlteration_ReplacesSameKind(t *testing.T) {
	p := newPlayer(t, "alice", 20, 5, 5, 5)
	poison, _ := testAlterations().Get("poisoned")
	require.NoError(t, p.AddAlteration(poison, 5))
	require.NoError(t, p.AddAlteration(poison, 2))
	assert.Len(t, p.Alterations(), 1)
	assert.Equal(t, 2, p.AlterationTurns("poisoned"))
}

func TestTickAlterations_AppliesPeriodicDamage(t *testing.T) {
	p := newPlayer(t, "alice", 20, 5, 5, 5)
	poison, _ := testAlterations().Get("poisoned")
	require.NoError(t, p.AddAlteration(poison, 2))

	rep := p.TickAlterations()
	assert.Empty(t, rep.Ticks, "fresh alteration skipped")
	assert.Equal(t, 20, p.Health())

	rep = p.TickAlterations()
	assert.Equal(t, 4, rep.Damage)
	assert.Equal(t, 16, p.Health())

	rep = p.TickAlterations()
	assert.Equal(t, []string{"poisoned"}, rep.Expired())
	assert.Equal(t, 12, p.Health())
	assert.False(t, p.HasAlteration("poisoned"))
}

func TestTickAlterations_CanKill(t *testing.T) {
	p := newPlayer(t, "alice", 20, 5, 5, 5)
	p.ApplyDamage(17)
	poison, _ := testAlterations().Get("poisoned")
	require.NoError(t, p.AddAlteration(poison, 3))
	p.TickAlterations()
	rep := p.TickAlterations()
	assert.True(t, rep.Killed)
	assert.False(t, p.IsAlive())
}

func TestCanAct_BlockedByStun(t *testing.T) {
	p := newPlayer(t, "alice", 20, 5, 5, 5)
	assert.True(t, p.CanAct())
	stun, _ := testAlterations().Get("stunned")
	require.NoError(t, p.AddAlteration(stun, 1))
	assert.False(t, p.CanAct())
}

func TestEffectiveStats_AppliesMultipliers(t *testing.T) {
	p := newPlayer(t, "alice", 20, 5, 7, 9)
	prot, _ := testAlterations().Get("protected")
	slow, _ := testAlterations().Get("slowed")
	require.NoError(t, p.AddAlteration(prot, 0))
	require.NoError(t, p.AddAlteration(slow, 0))

	eff := p.EffectiveStats()
	assert.Equal(t, 14, eff.Defense)
	assert.Equal(t, 5, eff.Speed) // 4.5 rounds away from zero
	assert.Equal(t, 5, eff.Attack)
	assert.Equal(t, 7, p.BaseStats().Defense)
}

func TestActionHistory_ReturnsCopy(t *testing.T) {
	p := newPlayer(t, "alice", 20, 5, 5, 5)
	p.RecordAction("strike")
	h := p.ActionHistory()
	h[0] = "mutated"
	assert.Equal(t, []string{"strike"}, p.ActionHistory())
}

func TestHasAction_PassAlwaysAllowed(t *testing.T) {
	p := newPlayer(t, "alice", 20, 5, 5, 5)
	assert.True(t, p.HasAction("pass"))
	assert.True(t, p.HasAction("strike"))
	assert.False(t, p.HasAction("fireball"))
}

func TestAction_ReturnsRegisteredDefinition(t *testing.T) {
	p := newPlayer(t, "alice", 20, 5, 5, 5)
	a, ok := p.Action("strike")
	require.True(t, ok)
	assert.Same(t, strike, a)

	a, ok = p.Action("pass")
	require.True(t, ok)
	assert.Same(t, action.Pass, a)

	_, ok = p.Action("fireball")
	assert.False(t, ok)
}

func TestNewPlayerFighter_UnknownAction(t *testing.T) {
	_, err := fight.NewPlayerFighter(fight.PlayerSnapshot{
		ID:        "alice",
		Stats:     fight.Stats{MaxHealth: 10, Attack: 1},
		ActionIDs: []string{"fireball"},
	}, testActions(), testAlterations())
	var cfg *fight.ConfigurationError
	require.ErrorAs(t, err, &cfg)
	assert.Equal(t, "action", cfg.Kind)
	assert.Equal(t, "fireball", cfg.Ref)
}

func TestNewPlayerFighter_UnknownAlteration(t *testing.T) {
	_, err := fight.NewPlayerFighter(fight.PlayerSnapshot{
		ID:          "alice",
		Stats:       fight.Stats{MaxHealth: 10, Attack: 1},
		Alterations: []fight.AlterationState{{Kind: "cursed", RemainingTurns: 2}},
	}, testActions(), testAlterations())
	var cfg *fight.ConfigurationError
	require.ErrorAs(t, err, &cfg)
	assert.Equal(t, "alteration", cfg.Kind)
}

func TestNewPlayerFighter_ResumesState(t *testing.T) {
	p, err := fight.NewPlayerFighter(fight.PlayerSnapshot{
		ID:          "alice",
		Class:       "knight",
		Stats:       fight.Stats{MaxHealth: 50, Attack: 3, MaxEnergy: 20},
		Health:      12,
		Energy:      30,
		ActionIDs:   []string{"strike"},
		Alterations: []fight.AlterationState{{Kind: "poisoned", RemainingTurns: 1}},
	}, testActions(), testAlterations())
	require.NoError(t, err)
	assert.Equal(t, 12, p.Health())
	assert.Equal(t, 20, p.Energy())

	rep := p.TickAlterations()
	assert.Equal(t, 4, rep.Damage, "restored alterations tick at the first end of turn")

	snap := p.Snapshot()
	assert.Equal(t, 8, snap.Health)
	assert.Empty(t, snap.Alterations)
	assert.Equal(t, []string{"strike"}, snap.ActionIDs)
	assert.Equal(t, "knight", snap.Class)
}

func TestNewPlayerFighter_RejectsBadStats(t *testing.T) {
	_, err := fight.NewPlayerFighter(fight.PlayerSnapshot{ID: "alice", Stats: fight.Stats{MaxHealth: 0, Attack: 1}}, testActions(), testAlterations())
	assert.Error(t, err)
}

func TestNewMonsterFighter(t *testing.T) {
	tmpl := &monster.Template{
		ID:       "goblin",
		Name:     "Goblin",
		Rating:   900,
		Base:     monster.StatBlock{MaxHealth: 30, Attack: 8, Defense: 4, Speed: 6, MaxEnergy: 20},
		PerLevel: monster.StatBlock{MaxHealth: 5, Attack: 1},
		Actions:  []string{"strike", "jab"},
	}
	m, err := fight.NewMonsterFighter("goblin-1", tmpl, 3, testActions())
	require.NoError(t, err)
	assert.False(t, m.IsPlayer())
	assert.Equal(t, 900, m.Score())
	assert.Equal(t, 40, m.Health())
	assert.Equal(t, 20, m.Energy())
	assert.Equal(t, 10, m.BaseStats().Attack)
	assert.Equal(t, 3, m.Level())
	assert.Same(t, tmpl, m.Template())
	assert.Len(t, m.Actions(), 2)

	tmpl.Actions = []string{"fireball"}
	_, err = fight.NewMonsterFighter("goblin-2", tmpl, 1, testActions())
	var cfg *fight.ConfigurationError
	require.ErrorAs(t, err, &cfg)
	assert.Equal(t, "goblin", cfg.Owner)
}
