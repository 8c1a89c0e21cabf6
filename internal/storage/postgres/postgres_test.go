package postgres_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/cory-johannsen/arena/internal/storage/postgres"
	"github.com/cory-johannsen/arena/internal/testutil"
)

func TestStore_OpenPingClose(t *testing.T) {
	db := testutil.NewDatabase(t)
	ctx := context.Background()
	require.NoError(t, db.Store().Ping(ctx, 5*time.Second))

	st, err := postgres.Open(ctx, db.Config, zaptest.NewLogger(t))
	require.NoError(t, err)
	assert.NotNil(t, st.Profiles())
	assert.NotNil(t, st.FightLogs())
	st.Close()
	assert.Error(t, st.Ping(ctx, time.Second))
}

func TestDatabase_Truncate(t *testing.T) {
	db := testutil.NewDatabase(t)
	ctx := context.Background()
	snap := makeSnapshot(uniqueID("t"), 1000)
	require.NoError(t, db.Store().Profiles().Create(ctx, snap))

	require.NoError(t, db.Truncate(ctx))
	_, _, err := db.Store().Profiles().Load(ctx, snap.ID)
	assert.ErrorIs(t, err, postgres.ErrProfileNotFound)
}

func TestOpen_Unreachable(t *testing.T) {
	cfg := testutil.NewDatabase(t).Config
	cfg.Port = 1
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	_, err := postgres.Open(ctx, cfg, nil)
	assert.Error(t, err)
}
