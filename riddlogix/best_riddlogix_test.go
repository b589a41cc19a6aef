package riddlogix

import (
	"context"
	"testing"

	"github.com/heroiclabs/nakama-common/runtime"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNakamaBestScoreSystem_Creation(t *testing.T) {
	config := &BestScoreConfig{CacheSize: 16}
	system := NewNakamaBestScoreSystem(config)
	assert.NotNil(t, system)
	assert.Equal(t, SystemTypeBestScore, system.GetType())
	assert.Equal(t, config, system.GetConfig())
}

// Test that the first submission creates the record
func TestNakamaBestScoreSystem_UpdateBest_FirstSubmission(t *testing.T) {
	system := NewNakamaBestScoreSystem(nil)
	logger := &mockTestLogger{}
	nk := NewMockNakama(t)
	ctx := context.Background()

	scope := BestScope{Date: "2026-08-25", Locale: "en"}
	updated, record, err := system.UpdateBest(ctx, logger, nk, scope, &BestRecord{
		Score:     30,
		PlayerID:  "user_a",
		Word:      "QUARTZ",
		Coord:     "H8",
		Timestamp: "2026-08-25T10:00:00Z",
	})
	require.NoError(t, err)
	assert.True(t, updated)
	require.NotNil(t, record)
	assert.Equal(t, int64(30), record.Score)
	assert.Equal(t, "user_a", record.PlayerID)

	_, ok := nk.StoredValue(bestStorageCollection, "2026-08-25:en", "")
	assert.True(t, ok)
}

// Test that only a strictly greater score replaces the record
func TestNakamaBestScoreSystem_UpdateBest_Monotonic(t *testing.T) {
	system := NewNakamaBestScoreSystem(nil)
	logger := &mockTestLogger{}
	nk := NewMockNakama(t)
	ctx := context.Background()
	scope := BestScope{Date: "2026-08-25", Locale: "en"}

	_, _, err := system.UpdateBest(ctx, logger, nk, scope, &BestRecord{Score: 30, PlayerID: "user_a", Timestamp: "t1"})
	require.NoError(t, err)

	// Equal score keeps the incumbent.
	updated, record, err := system.UpdateBest(ctx, logger, nk, scope, &BestRecord{Score: 30, PlayerID: "user_b", Timestamp: "t2"})
	require.NoError(t, err)
	assert.False(t, updated)
	assert.Equal(t, "user_a", record.PlayerID)

	// Lower score is a no-op.
	updated, record, err = system.UpdateBest(ctx, logger, nk, scope, &BestRecord{Score: 12, PlayerID: "user_c", Timestamp: "t3"})
	require.NoError(t, err)
	assert.False(t, updated)
	assert.Equal(t, "user_a", record.PlayerID)

	// A strictly greater score replaces it.
	updated, record, err = system.UpdateBest(ctx, logger, nk, scope, &BestRecord{Score: 42, PlayerID: "user_b", Timestamp: "t4"})
	require.NoError(t, err)
	assert.True(t, updated)
	assert.Equal(t, "user_b", record.PlayerID)
	assert.Equal(t, int64(42), record.Score)
}

// Test that group-scoped records live apart from the global record
func TestNakamaBestScoreSystem_UpdateBest_GroupScope(t *testing.T) {
	system := NewNakamaBestScoreSystem(nil)
	logger := &mockTestLogger{}
	nk := NewMockNakama(t)
	ctx := context.Background()

	global := BestScope{Date: "2026-08-25", Locale: "en"}
	group := BestScope{Date: "2026-08-25", Locale: "en", GroupID: "guild_1"}

	_, _, err := system.UpdateBest(ctx, logger, nk, global, &BestRecord{Score: 42, PlayerID: "user_a"})
	require.NoError(t, err)

	updated, _, err := system.UpdateBest(ctx, logger, nk, group, &BestRecord{Score: 18, PlayerID: "user_b"})
	require.NoError(t, err)
	assert.True(t, updated)

	best, err := system.GetBest(ctx, logger, nk, group)
	require.NoError(t, err)
	assert.Equal(t, int64(18), best.Score)

	best, err = system.GetBest(ctx, logger, nk, global)
	require.NoError(t, err)
	assert.Equal(t, int64(42), best.Score)
}

// Test that the advisory cache short-circuits candidates that cannot win
func TestNakamaBestScoreSystem_UpdateBest_CacheShortCircuit(t *testing.T) {
	system := NewNakamaBestScoreSystem(nil)
	logger := &mockTestLogger{}
	nk := NewMockNakama(t)
	ctx := context.Background()
	scope := BestScope{Date: "2026-08-25", Locale: "en"}

	_, _, err := system.UpdateBest(ctx, logger, nk, scope, &BestRecord{Score: 42, PlayerID: "user_a"})
	require.NoError(t, err)

	// With the store unreachable a losing candidate must still resolve from cache.
	nk.ReadErr = runtime.NewError("db down", 14)
	updated, record, err := system.UpdateBest(ctx, logger, nk, scope, &BestRecord{Score: 30, PlayerID: "user_b"})
	require.NoError(t, err)
	assert.False(t, updated)
	assert.Equal(t, "user_a", record.PlayerID)

	// A winning candidate has to go to the store and sees the outage.
	_, _, err = system.UpdateBest(ctx, logger, nk, scope, &BestRecord{Score: 50, PlayerID: "user_b"})
	assert.ErrorIs(t, err, ErrStoreUnavailable)
}

func TestNakamaBestScoreSystem_GetBest_Absent(t *testing.T) {
	system := NewNakamaBestScoreSystem(nil)
	logger := &mockTestLogger{}
	nk := NewMockNakama(t)

	best, err := system.GetBest(context.Background(), logger, nk, BestScope{Date: "2026-08-25", Locale: "en"})
	require.NoError(t, err)
	assert.Nil(t, best)
}

func TestNakamaBestScoreSystem_UpdateBest_BadInput(t *testing.T) {
	system := NewNakamaBestScoreSystem(nil)
	logger := &mockTestLogger{}
	nk := NewMockNakama(t)
	ctx := context.Background()

	_, _, err := system.UpdateBest(ctx, logger, nk, BestScope{Locale: "en"}, &BestRecord{Score: 1, PlayerID: "user_a"})
	assert.ErrorIs(t, err, ErrBadInput)

	_, _, err = system.UpdateBest(ctx, logger, nk, BestScope{Date: "2026-08-25", Locale: "en"}, nil)
	assert.ErrorIs(t, err, ErrBadInput)
}
