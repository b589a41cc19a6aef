package riddlogix

import (
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/heroiclabs/nakama-common/runtime"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testRiddleDefinition(date, locale string, maxScore int64) *RiddleDefinition {
	board := make([]string, boardSize)
	for i := range board {
		board[i] = strings.Repeat(".", boardSize)
	}
	return &RiddleDefinition{
		Date:     date,
		Locale:   locale,
		Board:    board,
		Rack:     []*RiddleTile{{Letter: "Q", Value: 10}, {Letter: "U", Value: 1}},
		MaxScore: maxScore,
	}
}

func seedRiddle(t *testing.T, nk *MockNakamaModule, def *RiddleDefinition) {
	t.Helper()
	data, err := json.Marshal(def)
	require.NoError(t, err)
	nk.SeedObject(riddleStorageCollection, def.Date+":"+def.Locale, "", string(data))
}

func TestRiddleDefinition_Valid(t *testing.T) {
	assert.True(t, testRiddleDefinition("2026-08-25", "en", 42).Valid())

	def := testRiddleDefinition("2026-08-25", "en", 42)
	def.Board = def.Board[:14]
	assert.False(t, def.Valid())

	def = testRiddleDefinition("2026-08-25", "en", 42)
	def.Board[3] = "short"
	assert.False(t, def.Valid())

	def = testRiddleDefinition("2026-08-25", "en", -1)
	assert.False(t, def.Valid())

	var nilDef *RiddleDefinition
	assert.False(t, nilDef.Valid())
}

func TestNakamaRiddleSystem_GetDefinition(t *testing.T) {
	system := NewNakamaRiddleSystem(nil)
	logger := &mockTestLogger{}
	nk := NewMockNakama(t)
	ctx := context.Background()
	seedRiddle(t, nk, testRiddleDefinition("2026-08-25", "en", 42))

	def, err := system.GetDefinition(ctx, logger, nk, "2026-08-25", "en")
	require.NoError(t, err)
	require.NotNil(t, def)
	assert.Equal(t, int64(42), def.MaxScore)
	assert.Len(t, def.Board, boardSize)

	// A second read is served from cache even when the store is unreachable.
	nk.ReadErr = runtime.NewError("db down", 14)
	def, err = system.GetDefinition(ctx, logger, nk, "2026-08-25", "en")
	require.NoError(t, err)
	assert.Equal(t, int64(42), def.MaxScore)
}

func TestNakamaRiddleSystem_GetDefinition_NotFound(t *testing.T) {
	system := NewNakamaRiddleSystem(nil)
	logger := &mockTestLogger{}
	nk := NewMockNakama(t)

	_, err := system.GetDefinition(context.Background(), logger, nk, "2026-08-25", "en")
	assert.ErrorIs(t, err, ErrRiddleNotFound)
}

func TestNakamaRiddleSystem_GetDefinition_InvalidShape(t *testing.T) {
	system := NewNakamaRiddleSystem(nil)
	logger := &mockTestLogger{}
	nk := NewMockNakama(t)

	def := testRiddleDefinition("2026-08-25", "en", 42)
	def.Board = def.Board[:7]
	data, err := json.Marshal(def)
	require.NoError(t, err)
	nk.SeedObject(riddleStorageCollection, "2026-08-25:en", "", string(data))

	_, err = system.GetDefinition(context.Background(), logger, nk, "2026-08-25", "en")
	assert.ErrorIs(t, err, ErrRiddleInvalid)
}

func TestNakamaRiddleSystem_CurrentDate(t *testing.T) {
	system := NewNakamaRiddleSystem(nil)

	now := time.Date(2026, 8, 25, 23, 30, 0, 0, time.FixedZone("CEST", 2*3600))
	// 23:30 CEST is still 21:30 UTC, same riddle day.
	assert.Equal(t, "2026-08-25", system.CurrentDate(now))

	now = time.Date(2026, 8, 26, 1, 30, 0, 0, time.FixedZone("CEST", 2*3600))
	// 01:30 CEST is 23:30 UTC the previous day.
	assert.Equal(t, "2026-08-25", system.CurrentDate(now))
}

func TestNakamaRiddleSystem_NextRollover(t *testing.T) {
	system := NewNakamaRiddleSystem(nil)

	now := time.Date(2026, 8, 25, 10, 0, 0, 0, time.UTC)
	next, err := system.NextRollover(now)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 8, 26, 0, 0, 0, 0, time.UTC), next)

	// A custom schedule moves the day boundary.
	system = NewNakamaRiddleSystem(&RiddleConfig{RolloverCronexpr: "0 6 * * *"})
	next, err = system.NextRollover(now)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 8, 26, 6, 0, 0, 0, time.UTC), next)
}
