package riddlogix

import (
	"context"
	"encoding/json"

	"github.com/heroiclabs/nakama-common/runtime"
)

// NakamaTopScoreSystem implements the TopScoreSystem interface using Nakama
// storage as the backend.
type NakamaTopScoreSystem struct {
	config    *TopScoreConfig
	riddlogix Riddlogix
}

// NewNakamaTopScoreSystem creates a new instance of the top score system with the given configuration.
func NewNakamaTopScoreSystem(config *TopScoreConfig) *NakamaTopScoreSystem {
	return &NakamaTopScoreSystem{
		config: config,
	}
}

// SetRiddlogix sets the Riddlogix instance for this top score system.
func (s *NakamaTopScoreSystem) SetRiddlogix(rl Riddlogix) {
	s.riddlogix = rl
}

// GetType returns the system type for the top score system.
func (s *NakamaTopScoreSystem) GetType() SystemType {
	return SystemTypeTopScore
}

// GetConfig returns the configuration for the top score system.
func (s *NakamaTopScoreSystem) GetConfig() any {
	return s.config
}

// MarkTopScoreReached increments the counter unless the user's marker already exists.
func (s *NakamaTopScoreSystem) MarkTopScoreReached(ctx context.Context, logger runtime.Logger, nk runtime.NakamaModule, date, locale, userID string) (bool, error) {
	if date == "" || locale == "" || userID == "" {
		return false, ErrBadInput
	}

	key := date + ":" + locale
	write := &runtime.StorageWrite{
		Collection:      resolveCollection(ctx, s.riddlogix, SystemTypeTopScore, topScoreStorageCollection),
		Key:             key,
		UserID:          "",
		PermissionRead:  runtime.STORAGE_PERMISSION_PUBLIC_READ,
		PermissionWrite: runtime.STORAGE_PERMISSION_NO_WRITE,
	}

	_, written, err := storageUpdate(ctx, logger, nk, write, func(current string) (string, bool, error) {
		record := &topScoreRecord{Users: make(map[string]bool)}
		if current != "" {
			if err := json.Unmarshal([]byte(current), record); err != nil {
				logger.Error("Failed to unmarshal top score count %s: %v", key, err)
				return "", false, ErrPayloadDecode
			}
			if record.Users == nil {
				record.Users = make(map[string]bool)
			}
		}

		if record.Users[userID] {
			return "", false, nil
		}
		record.Users[userID] = true
		record.Count++

		data, err := json.Marshal(record)
		if err != nil {
			logger.Error("Failed to marshal top score count %s: %v", key, err)
			return "", false, ErrPayloadEncode
		}
		return string(data), true, nil
	})
	if err != nil {
		return false, err
	}
	return written, nil
}

// GetCount reads the number of users who have reached the maximum score.
func (s *NakamaTopScoreSystem) GetCount(ctx context.Context, logger runtime.Logger, nk runtime.NakamaModule, date, locale string) (int64, error) {
	if date == "" || locale == "" {
		return 0, ErrBadInput
	}

	collection := resolveCollection(ctx, s.riddlogix, SystemTypeTopScore, topScoreStorageCollection)
	value, err := storageGet(ctx, logger, nk, collection, date+":"+locale, "")
	if err != nil {
		return 0, err
	}
	if value == "" {
		return 0, nil
	}

	record := &topScoreRecord{}
	if err := json.Unmarshal([]byte(value), record); err != nil {
		logger.Error("Failed to unmarshal top score count %s: %v", date+":"+locale, err)
		return 0, ErrPayloadDecode
	}
	return record.Count, nil
}
