package fight_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cory-johannsen/arena/internal/game/action"
	"github.com/cory-johannsen/arena/internal/game/fight"
)

func TestSequenceProvider_RepeatsLast(t *testing.T) {
	p := fight.NewSequenceProvider(venom, strike)
	var got []string
	for range 4 {
		c, err := p.ChooseAction(context.Background(), fight.View{})
		require.NoError(t, err)
		got = append(got, c.Action.ID)
	}
	assert.Equal(t, []string{"venom", "strike", "strike", "strike"}, got)
}

func TestSequenceProvider_EmptyPasses(t *testing.T) {
	c, err := fight.NewSequenceProvider().ChooseAction(context.Background(), fight.View{})
	require.NoError(t, err)
	assert.True(t, c.Action.IsPass())
}

func TestChannelProvider_DeliversSubmission(t *testing.T) {
	p := fight.NewChannelProvider()
	require.NoError(t, p.Submit(context.Background(), fight.Use(strike)))
	c, err := p.ChooseAction(context.Background(), fight.View{})
	require.NoError(t, err)
	assert.Same(t, strike, c.Action)
}

func TestChannelProvider_TimesOut(t *testing.T) {
	p := fight.NewChannelProvider()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Millisecond)
	defer cancel()
	_, err := p.ChooseAction(ctx, fight.View{})
	assert.ErrorIs(t, err, fight.ErrProviderTimeout)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestChannelProvider_DrivesFight(t *testing.T) {
	a := newPlayer(t, "a", 100, 50, 10, 10)
	b := newPlayer(t, "b", 100, 10, 10, 5)
	human := fight.NewChannelProvider()
	c := newController(t, a, b, human, always(action.Pass), fixedHalf(), noCrit())

	require.NoError(t, human.Submit(context.Background(), fight.Use(strike)))
	events, err := c.PlayTurn(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "strike", events[1].Effect.ActionID)
	assert.Equal(t, 83, b.Health())
}

func TestFighterView_Helpers(t *testing.T) {
	v := fight.FighterView{
		Health:      25,
		Energy:      5,
		Stats:       fight.Stats{MaxHealth: 100},
		Actions:     []*action.Action{strike, mend, jab},
		Alterations: []fight.AlterationView{{Kind: "poisoned", RemainingTurns: 2}},
	}
	assert.InDelta(t, 0.25, v.HealthRatio(), 1e-9)
	assert.True(t, v.HasAlteration("poisoned"))
	assert.False(t, v.HasAlteration("stunned"))
	assert.Equal(t, []*action.Action{strike, jab}, v.Affordable())
}
