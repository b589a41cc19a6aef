package riddlogix

import (
	"context"
	"encoding/json"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/heroiclabs/nakama-common/runtime"
)

const defaultBestCacheSize = 128

// NakamaBestScoreSystem implements the BestScoreSystem interface using Nakama
// storage as the backend.
//
// The LRU cache is purely advisory: a cached record's score is a lower bound on
// the stored score (the record is monotonic), so a candidate that does not beat
// the cached score cannot beat the stored one either and the transactional read
// is skipped. The store stays the only source of truth.
type NakamaBestScoreSystem struct {
	config    *BestScoreConfig
	riddlogix Riddlogix

	cache *lru.Cache[string, *BestRecord]
}

// NewNakamaBestScoreSystem creates a new instance of the best score system with the given configuration.
func NewNakamaBestScoreSystem(config *BestScoreConfig) *NakamaBestScoreSystem {
	size := defaultBestCacheSize
	if config != nil && config.CacheSize > 0 {
		size = config.CacheSize
	}
	cache, _ := lru.New[string, *BestRecord](size)
	return &NakamaBestScoreSystem{
		config: config,
		cache:  cache,
	}
}

// SetRiddlogix sets the Riddlogix instance for this best score system.
func (s *NakamaBestScoreSystem) SetRiddlogix(rl Riddlogix) {
	s.riddlogix = rl
}

// GetType returns the system type for the best score system.
func (s *NakamaBestScoreSystem) GetType() SystemType {
	return SystemTypeBestScore
}

// GetConfig returns the configuration for the best score system.
func (s *NakamaBestScoreSystem) GetConfig() any {
	return s.config
}

// UpdateBest replaces the stored best record for the scope when the candidate
// strictly improves on it.
func (s *NakamaBestScoreSystem) UpdateBest(ctx context.Context, logger runtime.Logger, nk runtime.NakamaModule, scope BestScope, candidate *BestRecord) (bool, *BestRecord, error) {
	if !scope.valid() || candidate == nil || candidate.PlayerID == "" {
		return false, nil, ErrBadInput
	}

	key := scope.storageKey()
	if cached, ok := s.cache.Get(key); ok && !shouldReplaceBest(cached, candidate) {
		return false, cached, nil
	}

	write := &runtime.StorageWrite{
		Collection:      resolveCollection(ctx, s.riddlogix, SystemTypeBestScore, bestStorageCollection),
		Key:             key,
		UserID:          "",
		PermissionRead:  runtime.STORAGE_PERMISSION_PUBLIC_READ,
		PermissionWrite: runtime.STORAGE_PERMISSION_NO_WRITE,
	}

	committed, written, err := storageUpdate(ctx, logger, nk, write, func(current string) (string, bool, error) {
		var stored *BestRecord
		if current != "" {
			stored = &BestRecord{}
			if err := json.Unmarshal([]byte(current), stored); err != nil {
				logger.Error("Failed to unmarshal best record %s: %v", key, err)
				return "", false, ErrPayloadDecode
			}
		}
		if !shouldReplaceBest(stored, candidate) {
			return "", false, nil
		}
		data, err := json.Marshal(candidate)
		if err != nil {
			logger.Error("Failed to marshal best record %s: %v", key, err)
			return "", false, ErrPayloadEncode
		}
		return string(data), true, nil
	})
	if err != nil {
		return false, nil, err
	}

	record := &BestRecord{}
	if committed == "" {
		// First transaction raced to a no-op on an absent record.
		record = nil
	} else if err := json.Unmarshal([]byte(committed), record); err != nil {
		logger.Error("Failed to unmarshal committed best record %s: %v", key, err)
		return written, nil, ErrPayloadDecode
	}
	if record != nil {
		s.cache.Add(key, record)
	}
	return written, record, nil
}

// GetBest reads the stored best record for the scope.
func (s *NakamaBestScoreSystem) GetBest(ctx context.Context, logger runtime.Logger, nk runtime.NakamaModule, scope BestScope) (*BestRecord, error) {
	if !scope.valid() {
		return nil, ErrBadInput
	}

	collection := resolveCollection(ctx, s.riddlogix, SystemTypeBestScore, bestStorageCollection)
	value, err := storageGet(ctx, logger, nk, collection, scope.storageKey(), "")
	if err != nil {
		return nil, err
	}
	if value == "" {
		return nil, nil
	}

	record := &BestRecord{}
	if err := json.Unmarshal([]byte(value), record); err != nil {
		logger.Error("Failed to unmarshal best record %s: %v", scope.storageKey(), err)
		return nil, ErrPayloadDecode
	}
	s.cache.Add(scope.storageKey(), record)
	return record, nil
}
