package riddlogix

import (
	"context"
	"time"

	"github.com/heroiclabs/nakama-common/runtime"
)

// StreakConfig is the data definition for a StreakSystem type.
type StreakConfig struct{}

// UserStreak tracks one user's cross-day play history for one locale,
// independent of any single day's riddle. LongestStreak is always at least
// CurrentStreak.
type UserStreak struct {
	CurrentStreak   int64  `json:"current_streak"`
	LongestStreak   int64  `json:"longest_streak"`
	TopScoreStreak  int64  `json:"top_score_streak"`
	LastPlayedDate  string `json:"last_played_date"`
	TotalDaysPlayed int64  `json:"total_days_played"`
	TotalTopScores  int64  `json:"total_top_scores"`

	// LastTopScoreDate marks the day the top-score counters last advanced, so a
	// later same-day improvement to the maximum score counts exactly once.
	LastTopScoreDate string `json:"last_top_score_date,omitempty"`
}

// dayRelation classifies the distance between the last played date and a new play date.
type dayRelation int

const (
	daySame dayRelation = iota
	dayConsecutive
	dayGap
)

// relateDays classifies playDate against lastDate. An empty lastDate (first
// ever play) and any out-of-order date both classify as a gap.
func relateDays(lastDate, playDate string) (dayRelation, error) {
	if playDate == "" {
		return dayGap, ErrBadInput
	}
	newDay, err := time.Parse(dateLayout, playDate)
	if err != nil {
		return dayGap, ErrBadInput
	}
	if lastDate == "" {
		return dayGap, nil
	}
	lastDay, err := time.Parse(dateLayout, lastDate)
	if err != nil {
		// A corrupt stored date must not wedge the record forever.
		return dayGap, nil
	}
	switch days := int(newDay.Sub(lastDay).Hours() / 24); {
	case days == 0:
		return daySame, nil
	case days == 1:
		return dayConsecutive, nil
	default:
		return dayGap, nil
	}
}

// advanceStreak applies one play to the streak record in place. Pure date
// arithmetic, no store access.
//
// Same-day repeat plays leave the day counters untouched; only the top-score
// counters may advance, and only once per day. A consecutive day extends the
// current streak, any larger gap restarts it at 1.
func advanceStreak(streak *UserStreak, playDate string, reachedTopScore bool) error {
	relation, err := relateDays(streak.LastPlayedDate, playDate)
	if err != nil {
		return err
	}

	switch relation {
	case daySame:
		if reachedTopScore && streak.LastTopScoreDate != playDate {
			streak.TopScoreStreak++
			streak.TotalTopScores++
			streak.LastTopScoreDate = playDate
		}
		return nil

	case dayConsecutive:
		streak.CurrentStreak++
		if reachedTopScore {
			streak.TopScoreStreak++
			streak.TotalTopScores++
			streak.LastTopScoreDate = playDate
		} else {
			streak.TopScoreStreak = 0
		}

	default:
		streak.CurrentStreak = 1
		if reachedTopScore {
			streak.TopScoreStreak = 1
			streak.TotalTopScores++
			streak.LastTopScoreDate = playDate
		} else {
			streak.TopScoreStreak = 0
		}
	}

	streak.TotalDaysPlayed++
	streak.LastPlayedDate = playDate
	if streak.CurrentStreak > streak.LongestStreak {
		streak.LongestStreak = streak.CurrentStreak
	}
	return nil
}

// StreakSystem maintains per-user cross-day play streaks and top-score streaks.
type StreakSystem interface {
	System

	// RecordPlay applies one day's play to the user's streak record. Callers
	// must only invoke it when the user's achievement for the day improved;
	// repeat same-day calls leave the day counters unchanged but may still turn
	// the top-score streak on once.
	RecordPlay(ctx context.Context, logger runtime.Logger, nk runtime.NakamaModule, locale, userID, playDate string, reachedTopScore bool) (*UserStreak, error)

	// GetStreak reads the user's streak record, or a zero record when the user
	// has never played.
	GetStreak(ctx context.Context, logger runtime.Logger, nk runtime.NakamaModule, locale, userID string) (*UserStreak, error)
}
