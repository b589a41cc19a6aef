package riddlogix

import (
	"context"
	"sort"

	"github.com/heroiclabs/nakama-common/runtime"
)

// defaultLeaderboardMaxEntries is the bounded leaderboard size.
const defaultLeaderboardMaxEntries = 50

// LeaderboardConfig is the data definition for a LeaderboardSystem type.
type LeaderboardConfig struct {
	// MaxEntries bounds the stored leaderboard. Defaults to 50.
	MaxEntries int `json:"max_entries,omitempty"`
}

// LeaderboardEntry is one user's best score on one day's riddle.
type LeaderboardEntry struct {
	UserID      string `json:"user_id"`
	DisplayName string `json:"display_name"`
	Score       int64  `json:"score"`
	Timestamp   string `json:"timestamp"`
}

// leaderboardRecord is the stored shape: at most one entry per user.
type leaderboardRecord struct {
	Entries map[string]*LeaderboardEntry `json:"entries"`
}

// rankEntries orders entries by score descending, ties broken by timestamp
// ascending so the earlier submission ranks higher.
func rankEntries(entries map[string]*LeaderboardEntry) []*LeaderboardEntry {
	ranked := make([]*LeaderboardEntry, 0, len(entries))
	for _, entry := range entries {
		ranked = append(ranked, entry)
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Score != ranked[j].Score {
			return ranked[i].Score > ranked[j].Score
		}
		if ranked[i].Timestamp != ranked[j].Timestamp {
			return ranked[i].Timestamp < ranked[j].Timestamp
		}
		return ranked[i].UserID < ranked[j].UserID
	})
	return ranked
}

// LeaderboardSystem maintains the bounded, ranked set of per-user best scores
// for each (date, locale) riddle.
type LeaderboardSystem interface {
	System

	// Upsert inserts the entry, or replaces the user's existing entry when the
	// new score is strictly greater. The stored set is re-ranked and truncated to
	// the configured bound on every write. It returns whether the stored list
	// actually changed.
	Upsert(ctx context.Context, logger runtime.Logger, nk runtime.NakamaModule, date, locale string, entry *LeaderboardEntry) (bool, error)

	// List returns the ranked leaderboard, up to limit entries (0 means all).
	List(ctx context.Context, logger runtime.Logger, nk runtime.NakamaModule, date, locale string, limit int) ([]*LeaderboardEntry, error)
}
