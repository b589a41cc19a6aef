package riddlogix

import (
	"context"

	"github.com/heroiclabs/nakama-common/runtime"
)

// AchievementConfig is the data definition for an AchievementSystem type.
type AchievementConfig struct{}

// Achievement is one user's best attempt on one day's riddle. Score is
// monotonically non-decreasing for a given key, and IsTopScore only ever
// transitions false to true.
type Achievement struct {
	Score      int64  `json:"score"`
	Word       string `json:"word"`
	Coord      string `json:"coord"`
	Timestamp  string `json:"timestamp"`
	IsTopScore bool   `json:"is_top_score"`
}

// AchievementAttempt is a validated submission considered for the achievement record.
type AchievementAttempt struct {
	Score     int64
	Word      string
	Coord     string
	Timestamp string
}

// shouldReplaceAttempt reports whether the attempt improves on the stored
// achievement. Strictly greater only: replaying the same or a lower score is a
// no-op, which is what makes resubmissions safe to retry.
func shouldReplaceAttempt(current *Achievement, attempt *AchievementAttempt) bool {
	if attempt == nil {
		return false
	}
	return current == nil || attempt.Score > current.Score
}

// AchievementSystem maintains each user's best attempt per riddle. Its improved
// signal is the single gate for the streak and top-score count systems, so an
// unimproved resubmission never double-counts downstream.
type AchievementSystem interface {
	System

	// RecordAttempt applies an improve-only write of the attempt. It returns
	// whether the stored achievement improved, whether this attempt was the
	// user's first to reach the riddle's maximum score, and the record now
	// stored.
	RecordAttempt(ctx context.Context, logger runtime.Logger, nk runtime.NakamaModule, date, locale, userID string, attempt *AchievementAttempt, maxScore int64) (improved bool, firstTopScore bool, achievement *Achievement, err error)

	// GetAchievement reads the user's achievement for one riddle, or nil when
	// the user has not played it.
	GetAchievement(ctx context.Context, logger runtime.Logger, nk runtime.NakamaModule, date, locale, userID string) (*Achievement, error)
}
