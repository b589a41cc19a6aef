package riddlogix

import (
	"context"
	"encoding/json"

	"github.com/heroiclabs/nakama-common/runtime"
)

// NakamaStreakSystem implements the StreakSystem interface using Nakama storage
// as the backend. One storage object per (locale, user), owned by the user.
type NakamaStreakSystem struct {
	config    *StreakConfig
	riddlogix Riddlogix
}

// NewNakamaStreakSystem creates a new instance of the streak system with the given configuration.
func NewNakamaStreakSystem(config *StreakConfig) *NakamaStreakSystem {
	return &NakamaStreakSystem{
		config: config,
	}
}

// SetRiddlogix sets the Riddlogix instance for this streak system.
func (s *NakamaStreakSystem) SetRiddlogix(rl Riddlogix) {
	s.riddlogix = rl
}

// GetType returns the system type for the streak system.
func (s *NakamaStreakSystem) GetType() SystemType {
	return SystemTypeStreaks
}

// GetConfig returns the configuration for the streak system.
func (s *NakamaStreakSystem) GetConfig() any {
	return s.config
}

// RecordPlay applies one day's play to the user's streak record.
func (s *NakamaStreakSystem) RecordPlay(ctx context.Context, logger runtime.Logger, nk runtime.NakamaModule, locale, userID, playDate string, reachedTopScore bool) (*UserStreak, error) {
	if locale == "" || userID == "" || playDate == "" {
		return nil, ErrBadInput
	}

	write := &runtime.StorageWrite{
		Collection:      resolveCollection(ctx, s.riddlogix, SystemTypeStreaks, streaksStorageCollection),
		Key:             locale,
		UserID:          userID,
		PermissionRead:  runtime.STORAGE_PERMISSION_OWNER_READ,
		PermissionWrite: runtime.STORAGE_PERMISSION_NO_WRITE,
	}

	var result *UserStreak
	committed, written, err := storageUpdate(ctx, logger, nk, write, func(current string) (string, bool, error) {
		streak := &UserStreak{}
		if current != "" {
			if err := json.Unmarshal([]byte(current), streak); err != nil {
				logger.Error("Failed to unmarshal streak %s for user %s: %v", locale, userID, err)
				return "", false, ErrPayloadDecode
			}
		}

		before := *streak
		if err := advanceStreak(streak, playDate, reachedTopScore); err != nil {
			return "", false, err
		}
		result = streak
		if *streak == before {
			// Same-day repeat with nothing new to record.
			return "", false, nil
		}

		data, err := json.Marshal(streak)
		if err != nil {
			logger.Error("Failed to marshal streak %s for user %s: %v", locale, userID, err)
			return "", false, ErrPayloadEncode
		}
		return string(data), true, nil
	})
	if err != nil {
		return nil, err
	}

	if !written && committed != "" {
		// Return the stored state rather than the locally advanced copy.
		stored := &UserStreak{}
		if err := json.Unmarshal([]byte(committed), stored); err == nil {
			result = stored
		}
	}
	return result, nil
}

// GetStreak reads the user's streak record.
func (s *NakamaStreakSystem) GetStreak(ctx context.Context, logger runtime.Logger, nk runtime.NakamaModule, locale, userID string) (*UserStreak, error) {
	if locale == "" || userID == "" {
		return nil, ErrBadInput
	}

	collection := resolveCollection(ctx, s.riddlogix, SystemTypeStreaks, streaksStorageCollection)
	value, err := storageGet(ctx, logger, nk, collection, locale, userID)
	if err != nil {
		return nil, err
	}

	streak := &UserStreak{}
	if value == "" {
		return streak, nil
	}
	if err := json.Unmarshal([]byte(value), streak); err != nil {
		logger.Error("Failed to unmarshal streak %s for user %s: %v", locale, userID, err)
		return nil, ErrPayloadDecode
	}
	return streak, nil
}
