package riddlogix

import (
	"context"

	"github.com/heroiclabs/nakama-common/runtime"
)

// BestScoreConfig is the data definition for a BestScoreSystem type.
type BestScoreConfig struct {
	// CacheSize bounds the advisory read-through cache. Defaults to 128.
	CacheSize int `json:"cache_size,omitempty"`
}

// BestRecord is the single highest-scoring submission seen so far for one scope.
// Score is monotonically non-decreasing across updates to the same record.
type BestRecord struct {
	Score     int64  `json:"score"`
	PlayerID  string `json:"player_id"`
	Word      string `json:"word"`
	Coord     string `json:"coord"`
	Timestamp string `json:"timestamp"`
}

// BestScope identifies one best-score record: global for a (date, locale) pair,
// or scoped to a social group when GroupID is set.
type BestScope struct {
	Date    string
	Locale  string
	GroupID string
}

func (s BestScope) storageKey() string {
	if s.GroupID != "" {
		return s.Date + ":" + s.Locale + ":" + s.GroupID
	}
	return s.Date + ":" + s.Locale
}

func (s BestScope) valid() bool {
	return s.Date != "" && s.Locale != ""
}

// shouldReplaceBest reports whether candidate must replace current. Strictly
// greater only: equal scores keep the incumbent, so the earliest submission to
// reach a score stays on top.
func shouldReplaceBest(current, candidate *BestRecord) bool {
	if candidate == nil {
		return false
	}
	return current == nil || candidate.Score > current.Score
}

// BestScoreSystem maintains the single best score record per scope.
type BestScoreSystem interface {
	System

	// UpdateBest replaces the stored best record for the scope when the candidate
	// strictly improves on it. It returns whether a replacement happened and the
	// record now stored.
	UpdateBest(ctx context.Context, logger runtime.Logger, nk runtime.NakamaModule, scope BestScope, candidate *BestRecord) (bool, *BestRecord, error)

	// GetBest reads the stored best record for the scope, or nil when no
	// submission has been recorded yet.
	GetBest(ctx context.Context, logger runtime.Logger, nk runtime.NakamaModule, scope BestScope) (*BestRecord, error)
}
