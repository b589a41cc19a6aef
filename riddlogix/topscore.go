package riddlogix

import (
	"context"

	"github.com/heroiclabs/nakama-common/runtime"
)

// TopScoreConfig is the data definition for a TopScoreSystem type.
type TopScoreConfig struct{}

// topScoreRecord is the stored shape: the aggregate counter plus the per-user
// markers that guard it, kept in one storage object so increment-and-mark is a
// single atomic transaction.
type topScoreRecord struct {
	Count int64           `json:"count"`
	Users map[string]bool `json:"users,omitempty"`
}

// TopScoreSystem counts, per riddle, the distinct users who have reached the
// maximum achievable score.
type TopScoreSystem interface {
	System

	// MarkTopScoreReached records that the user reached the riddle's maximum
	// score, incrementing the counter at most once per user. It returns whether
	// the counter was incremented.
	MarkTopScoreReached(ctx context.Context, logger runtime.Logger, nk runtime.NakamaModule, date, locale, userID string) (bool, error)

	// GetCount reads the number of users who have reached the maximum score.
	GetCount(ctx context.Context, logger runtime.Logger, nk runtime.NakamaModule, date, locale string) (int64, error)
}
