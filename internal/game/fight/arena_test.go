package fight_test

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cory-johannsen/arena/internal/game/fight"
)

func TestArena_RunsFightsConcurrently(t *testing.T) {
	arena := fight.NewArena(nil)
	ctx := context.Background()

	var ids []string
	for i := range 8 {
		a := newPlayer(t, fmt.Sprintf("a%d", i), 100, 50, 10, 10)
		b := newPlayer(t, fmt.Sprintf("b%d", i), 100, 10, 10, 5)
		c := newController(t, a, b, always(strike), always(strike), fixedHalf(), noCrit())
		id, err := arena.Launch(ctx, c)
		require.NoError(t, err)
		ids = append(ids, id)
	}

	var wg sync.WaitGroup
	for _, id := range ids {
		wg.Add(1)
		go func() {
			defer wg.Done()
			sum, err := arena.Wait(ctx, id)
			assert.NoError(t, err)
			assert.Equal(t, 0, sum.Winner())
			assert.Equal(t, id, sum.FightID())
		}()
	}
	wg.Wait()
	assert.Zero(t, arena.Running())
}

func TestArena_FighterBusy(t *testing.T) {
	arena := fight.NewArena(nil)
	ctx := context.Background()
	rules := noCrit()
	rules.ProviderTimeout = time.Minute

	a := newPlayer(t, "a", 100, 50, 10, 10)
	b := newPlayer(t, "b", 100, 10, 10, 5)
	first := newController(t, a, b, fight.NewChannelProvider(), always(strike), fixedHalf(), rules)
	id, err := arena.Launch(ctx, first)
	require.NoError(t, err)

	c := newPlayer(t, "c", 100, 10, 10, 5)
	second := newController(t, a, c, always(strike), always(strike), fixedHalf(), rules)
	_, err = arena.Launch(ctx, second)
	assert.ErrorIs(t, err, fight.ErrFighterBusy)

	fid, ok := arena.FightOf("a")
	assert.True(t, ok)
	assert.Equal(t, id, fid)

	require.NoError(t, arena.Disconnect("a"))
	sum, err := arena.Wait(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, 1, sum.Winner())
	assert.Equal(t, fight.EndDisconnect, sum.Reason())

	_, ok = arena.FightOf("a")
	assert.False(t, ok, "fighter released after the fight")
}

func TestArena_Surrender(t *testing.T) {
	arena := fight.NewArena(nil)
	ctx := context.Background()
	rules := noCrit()
	rules.ProviderTimeout = time.Minute

	a := newPlayer(t, "a", 100, 50, 10, 10)
	b := newPlayer(t, "b", 100, 10, 10, 5)
	id, err := arena.Launch(ctx, newController(t, a, b, fight.NewChannelProvider(), always(strike), fixedHalf(), rules))
	require.NoError(t, err)

	require.NoError(t, arena.Surrender(id, 0))
	sum, err := arena.Wait(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, 1, sum.Winner())
	assert.Equal(t, fight.EndSurrender, sum.Reason())
}

func TestArena_AbortAll(t *testing.T) {
	arena := fight.NewArena(nil)
	ctx := context.Background()
	rules := noCrit()
	rules.ProviderTimeout = time.Minute

	a := newPlayer(t, "a", 100, 50, 10, 10)
	b := newPlayer(t, "b", 100, 10, 10, 5)
	id, err := arena.Launch(ctx, newController(t, a, b, fight.NewChannelProvider(), fight.NewChannelProvider(), fixedHalf(), rules))
	require.NoError(t, err)

	arena.AbortAll()
	sum, err := arena.Wait(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, fight.EndTimeout, sum.Reason())
}

func TestArena_UnknownFight(t *testing.T) {
	arena := fight.NewArena(nil)
	_, err := arena.Wait(context.Background(), "nope")
	assert.ErrorIs(t, err, fight.ErrUnknownFight)
	assert.ErrorIs(t, arena.Surrender("nope", 0), fight.ErrUnknownFight)
	assert.ErrorIs(t, arena.Disconnect("ghost"), fight.ErrUnknownFight)
}

func TestArena_RejectsStartedController(t *testing.T) {
	arena := fight.NewArena(nil)
	a := newPlayer(t, "a", 100, 50, 10, 10)
	b := newPlayer(t, "b", 100, 10, 10, 5)
	c := newController(t, a, b, always(strike), always(strike), fixedHalf(), noCrit())
	run(t, c)

	_, err := arena.Launch(context.Background(), c)
	var ise *fight.IllegalStateError
	assert.ErrorAs(t, err, &ise)
}
