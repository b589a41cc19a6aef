package riddlogix

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Test that each user increments the count exactly once
func TestNakamaTopScoreSystem_MarkTopScoreReached(t *testing.T) {
	system := NewNakamaTopScoreSystem(nil)
	logger := &mockTestLogger{}
	nk := NewMockNakama(t)
	ctx := context.Background()

	counted, err := system.MarkTopScoreReached(ctx, logger, nk, "2026-08-25", "en", "user_a")
	require.NoError(t, err)
	assert.True(t, counted)

	count, err := system.GetCount(ctx, logger, nk, "2026-08-25", "en")
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	// Marking the same user again leaves the count alone.
	counted, err = system.MarkTopScoreReached(ctx, logger, nk, "2026-08-25", "en", "user_a")
	require.NoError(t, err)
	assert.False(t, counted)

	count, err = system.GetCount(ctx, logger, nk, "2026-08-25", "en")
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	counted, err = system.MarkTopScoreReached(ctx, logger, nk, "2026-08-25", "en", "user_b")
	require.NoError(t, err)
	assert.True(t, counted)

	count, err = system.GetCount(ctx, logger, nk, "2026-08-25", "en")
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)
}

// Test that counts are isolated per riddle
func TestNakamaTopScoreSystem_CountPerRiddle(t *testing.T) {
	system := NewNakamaTopScoreSystem(nil)
	logger := &mockTestLogger{}
	nk := NewMockNakama(t)
	ctx := context.Background()

	_, err := system.MarkTopScoreReached(ctx, logger, nk, "2026-08-25", "en", "user_a")
	require.NoError(t, err)
	_, err = system.MarkTopScoreReached(ctx, logger, nk, "2026-08-25", "de", "user_a")
	require.NoError(t, err)

	count, err := system.GetCount(ctx, logger, nk, "2026-08-25", "en")
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	count, err = system.GetCount(ctx, logger, nk, "2026-08-26", "en")
	require.NoError(t, err)
	assert.Equal(t, int64(0), count)
}

func TestNakamaTopScoreSystem_BadInput(t *testing.T) {
	system := NewNakamaTopScoreSystem(nil)
	logger := &mockTestLogger{}
	nk := NewMockNakama(t)
	ctx := context.Background()

	_, err := system.MarkTopScoreReached(ctx, logger, nk, "", "en", "user_a")
	assert.ErrorIs(t, err, ErrBadInput)

	_, err = system.GetCount(ctx, logger, nk, "2026-08-25", "")
	assert.ErrorIs(t, err, ErrBadInput)
}
