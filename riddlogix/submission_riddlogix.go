package riddlogix

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/heroiclabs/nakama-common/runtime"
)

// NakamaSubmissionSystem implements the SubmissionSystem interface. It owns no
// storage of its own; it sequences the tracker systems registered alongside it.
type NakamaSubmissionSystem struct {
	config    *SubmissionConfig
	riddlogix Riddlogix
}

// NewNakamaSubmissionSystem creates a new instance of the submission coordinator with the given configuration.
func NewNakamaSubmissionSystem(config *SubmissionConfig) *NakamaSubmissionSystem {
	return &NakamaSubmissionSystem{
		config: config,
	}
}

// SetRiddlogix sets the Riddlogix instance for this submission system.
func (s *NakamaSubmissionSystem) SetRiddlogix(rl Riddlogix) {
	s.riddlogix = rl
}

// GetType returns the system type for the submission system.
func (s *NakamaSubmissionSystem) GetType() SystemType {
	return SystemTypeSubmission
}

// GetConfig returns the configuration for the submission system.
func (s *NakamaSubmissionSystem) GetConfig() any {
	return s.config
}

// Submit applies one validated submission to every aggregate in the fixed
// order: global best, group best, leaderboard, achievement, then streak and
// top-score count gated on the achievement's improvement signal.
func (s *NakamaSubmissionSystem) Submit(ctx context.Context, logger runtime.Logger, nk runtime.NakamaModule, sub *Submission) (*SubmissionResult, error) {
	if s.riddlogix == nil {
		logger.Error("Riddlogix instance not set in SubmissionSystem")
		return nil, ErrSystemNotAvailable
	}
	if sub == nil || sub.Date == "" || sub.Locale == "" || sub.UserID == "" || sub.Word == "" || sub.Score < 0 {
		return nil, ErrBadInput
	}
	if sub.MaxScore > 0 && sub.Score > sub.MaxScore {
		return nil, ErrBadInput
	}

	bestSystem := s.riddlogix.GetBestScoreSystem()
	leaderboardSystem := s.riddlogix.GetLeaderboardSystem()
	achievementSystem := s.riddlogix.GetAchievementSystem()
	streakSystem := s.riddlogix.GetStreakSystem()
	topScoreSystem := s.riddlogix.GetTopScoreSystem()
	if bestSystem == nil || leaderboardSystem == nil || achievementSystem == nil || streakSystem == nil || topScoreSystem == nil {
		logger.Error("Submission coordinator requires all tracker systems to be registered")
		return nil, ErrSystemNotAvailable
	}

	// The riddle definition is the authority on the maximum score when the
	// caller did not carry it through from validation.
	if sub.MaxScore <= 0 {
		if riddleSystem := s.riddlogix.GetRiddleSystem(); riddleSystem != nil {
			def, err := riddleSystem.GetDefinition(ctx, logger, nk, sub.Date, sub.Locale)
			if err == nil && def != nil {
				sub.MaxScore = def.MaxScore
			}
		}
	}

	// One timestamp for the whole submission: it is both display metadata and
	// the deterministic tie-break key on the leaderboard.
	timestamp := time.Now().UTC().Format(time.RFC3339)
	result := &SubmissionResult{}

	candidate := &BestRecord{
		Score:     sub.Score,
		PlayerID:  sub.UserID,
		Word:      sub.Word,
		Coord:     sub.Coord,
		Timestamp: timestamp,
	}

	globalUpdated, _, err := bestSystem.UpdateBest(ctx, logger, nk, BestScope{Date: sub.Date, Locale: sub.Locale}, candidate)
	if err != nil {
		return s.failed(result, StepGlobalBest, err)
	}
	result.GlobalBestUpdated = globalUpdated

	if sub.GroupID != "" {
		groupUpdated, _, err := bestSystem.UpdateBest(ctx, logger, nk, BestScope{Date: sub.Date, Locale: sub.Locale, GroupID: sub.GroupID}, candidate)
		if err != nil {
			return s.failed(result, StepGroupBest, err)
		}
		result.GroupBestUpdated = groupUpdated
	}

	leaderboardUpdated, err := leaderboardSystem.Upsert(ctx, logger, nk, sub.Date, sub.Locale, &LeaderboardEntry{
		UserID:      sub.UserID,
		DisplayName: sub.DisplayName,
		Score:       sub.Score,
		Timestamp:   timestamp,
	})
	if err != nil {
		return s.failed(result, StepLeaderboard, err)
	}
	result.LeaderboardUpdated = leaderboardUpdated

	improved, firstTopScore, achievement, err := achievementSystem.RecordAttempt(ctx, logger, nk, sub.Date, sub.Locale, sub.UserID, &AchievementAttempt{
		Score:     sub.Score,
		Word:      sub.Word,
		Coord:     sub.Coord,
		Timestamp: timestamp,
	}, sub.MaxScore)
	if err != nil {
		return s.failed(result, StepAchievement, err)
	}
	result.AchievementImproved = improved
	result.ReachedTopScoreFirstTime = firstTopScore

	if improved {
		streak, err := streakSystem.RecordPlay(ctx, logger, nk, sub.Locale, sub.UserID, sub.Date, achievement != nil && achievement.IsTopScore)
		if err != nil {
			return s.failed(result, StepStreak, err)
		}
		result.Streak = streak
	} else {
		// An unimproved resubmission must report the same result as the original
		// submission, streak included.
		streak, err := streakSystem.GetStreak(ctx, logger, nk, sub.Locale, sub.UserID)
		if err != nil {
			return s.failed(result, StepStreak, err)
		}
		result.Streak = streak
	}

	if improved && firstTopScore {
		if _, err := topScoreSystem.MarkTopScoreReached(ctx, logger, nk, sub.Date, sub.Locale, sub.UserID); err != nil {
			return s.failed(result, StepTopScoreCount, err)
		}
	}

	result.Message = buildSubmissionMessage(result)
	s.publishEvents(ctx, logger, nk, sub, result)
	return result, nil
}

// failed annotates the result with the failing step and passes the error through.
func (s *NakamaSubmissionSystem) failed(result *SubmissionResult, step string, err error) (*SubmissionResult, error) {
	result.FailedStep = step
	result.Message = "submission incomplete at step " + step
	return result, err
}

// publishEvents fans analytics events out to any registered publishers.
func (s *NakamaSubmissionSystem) publishEvents(ctx context.Context, logger runtime.Logger, nk runtime.NakamaModule, sub *Submission, result *SubmissionResult) {
	if s.config != nil && s.config.DisableEvents {
		return
	}
	sender, ok := s.riddlogix.(eventSender)
	if !ok {
		return
	}

	now := time.Now().Unix()
	metadata := map[string]string{
		"date":   sub.Date,
		"locale": sub.Locale,
		"score":  strconv.FormatInt(sub.Score, 10),
	}

	events := make([]*PublisherEvent, 0, 3)
	if result.GlobalBestUpdated {
		events = append(events, &PublisherEvent{Name: EventBestScoreBeaten, Id: uuid.NewString(), Timestamp: now, Metadata: metadata, System: s})
	}
	if result.GroupBestUpdated {
		groupMetadata := map[string]string{
			"date":     sub.Date,
			"locale":   sub.Locale,
			"score":    strconv.FormatInt(sub.Score, 10),
			"group_id": sub.GroupID,
		}
		events = append(events, &PublisherEvent{Name: EventGroupBestBeaten, Id: uuid.NewString(), Timestamp: now, Metadata: groupMetadata, System: s})
	}
	if result.ReachedTopScoreFirstTime {
		events = append(events, &PublisherEvent{Name: EventTopScoreReached, Id: uuid.NewString(), Timestamp: now, Metadata: metadata, System: s})
	}

	sender.sendPublisherEvents(ctx, logger, nk, sub.UserID, events)
}

func buildSubmissionMessage(result *SubmissionResult) string {
	parts := make([]string, 0, 4)
	if result.GlobalBestUpdated {
		parts = append(parts, "new best score")
	}
	if result.GroupBestUpdated {
		parts = append(parts, "new group best")
	}
	if result.AchievementImproved {
		parts = append(parts, "personal best improved")
	}
	if result.ReachedTopScoreFirstTime {
		parts = append(parts, "maximum score reached")
	}
	if len(parts) == 0 {
		return "no improvement"
	}
	return strings.Join(parts, ", ")
}
