package riddlogix

import (
	"context"
	"encoding/json"

	"github.com/heroiclabs/nakama-common/runtime"
)

// NakamaLeaderboardSystem implements the LeaderboardSystem interface using
// Nakama storage as the backend. The whole leaderboard for one riddle lives in
// a single storage object, so upserts are one optimistic transaction and reads
// are a single fetch. Re-ranking on every write is O(n log n) with n bounded by
// the configured maximum.
type NakamaLeaderboardSystem struct {
	config    *LeaderboardConfig
	riddlogix Riddlogix
}

// NewNakamaLeaderboardSystem creates a new instance of the leaderboard system with the given configuration.
func NewNakamaLeaderboardSystem(config *LeaderboardConfig) *NakamaLeaderboardSystem {
	return &NakamaLeaderboardSystem{
		config: config,
	}
}

// SetRiddlogix sets the Riddlogix instance for this leaderboard system.
func (s *NakamaLeaderboardSystem) SetRiddlogix(rl Riddlogix) {
	s.riddlogix = rl
}

// GetType returns the system type for the leaderboard system.
func (s *NakamaLeaderboardSystem) GetType() SystemType {
	return SystemTypeLeaderboard
}

// GetConfig returns the configuration for the leaderboard system.
func (s *NakamaLeaderboardSystem) GetConfig() any {
	return s.config
}

func (s *NakamaLeaderboardSystem) maxEntries() int {
	if s.config != nil && s.config.MaxEntries > 0 {
		return s.config.MaxEntries
	}
	return defaultLeaderboardMaxEntries
}

// Upsert inserts or improves the user's entry and re-ranks the stored set.
func (s *NakamaLeaderboardSystem) Upsert(ctx context.Context, logger runtime.Logger, nk runtime.NakamaModule, date, locale string, entry *LeaderboardEntry) (bool, error) {
	if date == "" || locale == "" || entry == nil || entry.UserID == "" {
		return false, ErrBadInput
	}

	key := date + ":" + locale
	write := &runtime.StorageWrite{
		Collection:      resolveCollection(ctx, s.riddlogix, SystemTypeLeaderboard, leaderboardStorageCollection),
		Key:             key,
		UserID:          "",
		PermissionRead:  runtime.STORAGE_PERMISSION_PUBLIC_READ,
		PermissionWrite: runtime.STORAGE_PERMISSION_NO_WRITE,
	}

	max := s.maxEntries()
	_, written, err := storageUpdate(ctx, logger, nk, write, func(current string) (string, bool, error) {
		record := &leaderboardRecord{Entries: make(map[string]*LeaderboardEntry)}
		if current != "" {
			if err := json.Unmarshal([]byte(current), record); err != nil {
				logger.Error("Failed to unmarshal leaderboard %s: %v", key, err)
				return "", false, ErrPayloadDecode
			}
			if record.Entries == nil {
				record.Entries = make(map[string]*LeaderboardEntry)
			}
		}

		existing, present := record.Entries[entry.UserID]
		if present && entry.Score <= existing.Score {
			// Ties keep the earlier entry: it already has the earlier timestamp
			// and therefore the higher rank.
			return "", false, nil
		}

		record.Entries[entry.UserID] = entry
		if len(record.Entries) > max {
			ranked := rankEntries(record.Entries)
			evicted := ranked[max:]
			for _, loser := range evicted {
				delete(record.Entries, loser.UserID)
			}
			if !present {
				if _, kept := record.Entries[entry.UserID]; !kept {
					// The new entry itself fell below the cut: the stored set is
					// unchanged, skip the write entirely.
					return "", false, nil
				}
			}
		}

		data, err := json.Marshal(record)
		if err != nil {
			logger.Error("Failed to marshal leaderboard %s: %v", key, err)
			return "", false, ErrPayloadEncode
		}
		return string(data), true, nil
	})
	if err != nil {
		return false, err
	}
	return written, nil
}

// List returns the ranked leaderboard for one riddle.
func (s *NakamaLeaderboardSystem) List(ctx context.Context, logger runtime.Logger, nk runtime.NakamaModule, date, locale string, limit int) ([]*LeaderboardEntry, error) {
	if date == "" || locale == "" {
		return nil, ErrBadInput
	}

	key := date + ":" + locale
	collection := resolveCollection(ctx, s.riddlogix, SystemTypeLeaderboard, leaderboardStorageCollection)
	value, err := storageGet(ctx, logger, nk, collection, key, "")
	if err != nil {
		return nil, err
	}
	if value == "" {
		return []*LeaderboardEntry{}, nil
	}

	record := &leaderboardRecord{}
	if err := json.Unmarshal([]byte(value), record); err != nil {
		logger.Error("Failed to unmarshal leaderboard %s: %v", key, err)
		return nil, ErrPayloadDecode
	}

	ranked := rankEntries(record.Entries)
	if limit > 0 && len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked, nil
}
