package riddlogix

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Test the first attempt on a riddle
func TestNakamaAchievementSystem_RecordAttempt_First(t *testing.T) {
	system := NewNakamaAchievementSystem(nil)
	logger := &mockTestLogger{}
	nk := NewMockNakama(t)
	ctx := context.Background()

	improved, firstTopScore, achievement, err := system.RecordAttempt(ctx, logger, nk, "2026-08-25", "en", "user_a", &AchievementAttempt{
		Score:     30,
		Word:      "QUARTZ",
		Coord:     "H8",
		Timestamp: "t1",
	}, 42)
	require.NoError(t, err)
	assert.True(t, improved)
	assert.False(t, firstTopScore)
	require.NotNil(t, achievement)
	assert.Equal(t, int64(30), achievement.Score)
	assert.False(t, achievement.IsTopScore)

	// The record is owned by the user.
	_, ok := nk.StoredValue(achievementStorageCollection, "2026-08-25:en", "user_a")
	assert.True(t, ok)
}

// Test that resubmitting the same or a lower score is a no-op
func TestNakamaAchievementSystem_RecordAttempt_ImproveOnly(t *testing.T) {
	system := NewNakamaAchievementSystem(nil)
	logger := &mockTestLogger{}
	nk := NewMockNakama(t)
	ctx := context.Background()

	_, _, _, err := system.RecordAttempt(ctx, logger, nk, "2026-08-25", "en", "user_a", &AchievementAttempt{Score: 30, Word: "QUARTZ", Timestamp: "t1"}, 42)
	require.NoError(t, err)

	improved, firstTopScore, achievement, err := system.RecordAttempt(ctx, logger, nk, "2026-08-25", "en", "user_a", &AchievementAttempt{Score: 30, Word: "OTHER", Timestamp: "t2"}, 42)
	require.NoError(t, err)
	assert.False(t, improved)
	assert.False(t, firstTopScore)
	assert.Equal(t, "QUARTZ", achievement.Word)

	improved, _, achievement, err = system.RecordAttempt(ctx, logger, nk, "2026-08-25", "en", "user_a", &AchievementAttempt{Score: 12, Timestamp: "t3"}, 42)
	require.NoError(t, err)
	assert.False(t, improved)
	assert.Equal(t, int64(30), achievement.Score)
}

// Test reaching the riddle's maximum score exactly once
func TestNakamaAchievementSystem_RecordAttempt_FirstTopScore(t *testing.T) {
	system := NewNakamaAchievementSystem(nil)
	logger := &mockTestLogger{}
	nk := NewMockNakama(t)
	ctx := context.Background()

	_, _, _, err := system.RecordAttempt(ctx, logger, nk, "2026-08-25", "en", "user_a", &AchievementAttempt{Score: 30, Timestamp: "t1"}, 42)
	require.NoError(t, err)

	improved, firstTopScore, achievement, err := system.RecordAttempt(ctx, logger, nk, "2026-08-25", "en", "user_a", &AchievementAttempt{Score: 42, Word: "QUIZZED", Timestamp: "t2"}, 42)
	require.NoError(t, err)
	assert.True(t, improved)
	assert.True(t, firstTopScore)
	assert.True(t, achievement.IsTopScore)

	// Replaying the maximum score never reports first-top-score again.
	improved, firstTopScore, achievement, err = system.RecordAttempt(ctx, logger, nk, "2026-08-25", "en", "user_a", &AchievementAttempt{Score: 42, Timestamp: "t3"}, 42)
	require.NoError(t, err)
	assert.False(t, improved)
	assert.False(t, firstTopScore)
	assert.True(t, achievement.IsTopScore)
}

// Test that IsTopScore never transitions back to false
func TestNakamaAchievementSystem_RecordAttempt_TopScoreSticky(t *testing.T) {
	system := NewNakamaAchievementSystem(nil)
	logger := &mockTestLogger{}
	nk := NewMockNakama(t)
	ctx := context.Background()

	_, firstTopScore, _, err := system.RecordAttempt(ctx, logger, nk, "2026-08-25", "en", "user_a", &AchievementAttempt{Score: 42, Timestamp: "t1"}, 42)
	require.NoError(t, err)
	assert.True(t, firstTopScore)

	// A later improvement with the max score unknown keeps the flag set.
	improved, firstTopScore, achievement, err := system.RecordAttempt(ctx, logger, nk, "2026-08-25", "en", "user_a", &AchievementAttempt{Score: 50, Timestamp: "t2"}, 0)
	require.NoError(t, err)
	assert.True(t, improved)
	assert.False(t, firstTopScore)
	assert.True(t, achievement.IsTopScore)
}

// Test that different users never share an achievement record
func TestNakamaAchievementSystem_RecordAttempt_PerUser(t *testing.T) {
	system := NewNakamaAchievementSystem(nil)
	logger := &mockTestLogger{}
	nk := NewMockNakama(t)
	ctx := context.Background()

	_, _, _, err := system.RecordAttempt(ctx, logger, nk, "2026-08-25", "en", "user_a", &AchievementAttempt{Score: 30, Timestamp: "t1"}, 42)
	require.NoError(t, err)

	improved, _, achievement, err := system.RecordAttempt(ctx, logger, nk, "2026-08-25", "en", "user_b", &AchievementAttempt{Score: 12, Timestamp: "t2"}, 42)
	require.NoError(t, err)
	assert.True(t, improved)
	assert.Equal(t, int64(12), achievement.Score)

	a, err := system.GetAchievement(ctx, logger, nk, "2026-08-25", "en", "user_a")
	require.NoError(t, err)
	assert.Equal(t, int64(30), a.Score)
}

func TestNakamaAchievementSystem_GetAchievement_Absent(t *testing.T) {
	system := NewNakamaAchievementSystem(nil)
	logger := &mockTestLogger{}
	nk := NewMockNakama(t)

	achievement, err := system.GetAchievement(context.Background(), logger, nk, "2026-08-25", "en", "user_a")
	require.NoError(t, err)
	assert.Nil(t, achievement)
}
