package riddlogix

import (
	"context"

	"github.com/heroiclabs/nakama-common/runtime"
)

// SubmissionConfig is the data definition for a SubmissionSystem type.
type SubmissionConfig struct {
	// DisableEvents stops the coordinator from emitting publisher events.
	DisableEvents bool `json:"disable_events,omitempty"`
}

// Step names reported on partial failure, in coordinator order.
const (
	StepGlobalBest    = "global_best"
	StepGroupBest     = "group_best"
	StepLeaderboard   = "leaderboard"
	StepAchievement   = "achievement"
	StepStreak        = "streak"
	StepTopScoreCount = "top_score_count"
)

// Submission is one externally-validated solution for a day's riddle. Word,
// Coord and Score have already been checked against the riddle definition by
// the validation collaborator and are trusted here.
type Submission struct {
	Date        string `json:"date"`
	Locale      string `json:"locale"`
	UserID      string `json:"user_id"`
	DisplayName string `json:"display_name"`
	Word        string `json:"word"`
	Coord       string `json:"coord"`
	Score       int64  `json:"score"`
	MaxScore    int64  `json:"max_score"`
	GroupID     string `json:"group_id,omitempty"`
}

// SubmissionResult reports which aggregates one submission changed. It is
// ephemeral and never persisted.
type SubmissionResult struct {
	GlobalBestUpdated        bool        `json:"global_best_updated"`
	GroupBestUpdated         bool        `json:"group_best_updated"`
	LeaderboardUpdated       bool        `json:"leaderboard_updated"`
	AchievementImproved      bool        `json:"achievement_improved"`
	ReachedTopScoreFirstTime bool        `json:"reached_top_score_first_time"`
	Streak                   *UserStreak `json:"streak,omitempty"`
	Message                  string      `json:"message"`

	// FailedStep names the first coordinator step that did not commit, so the
	// caller can decide whether to retry the whole submission. Earlier steps
	// have committed and are idempotent, a retry cannot double-count them.
	FailedStep string `json:"failed_step,omitempty"`
}

// SubmissionSystem coordinates all aggregate updates for one validated
// submission. The five tracker updates run as independent atomic transactions
// in a fixed order; there is no cross-record rollback. Resubmitting an
// already-recorded score is a safe no-op across every tracker.
type SubmissionSystem interface {
	System

	// Submit applies one validated submission to every aggregate. On partial
	// failure the returned result names the failing step alongside the error.
	Submit(ctx context.Context, logger runtime.Logger, nk runtime.NakamaModule, sub *Submission) (*SubmissionResult, error)
}
