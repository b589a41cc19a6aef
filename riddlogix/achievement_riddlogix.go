package riddlogix

import (
	"context"
	"encoding/json"

	"github.com/heroiclabs/nakama-common/runtime"
)

// NakamaAchievementSystem implements the AchievementSystem interface using
// Nakama storage as the backend. Each (date, locale, user) key is its own
// storage object owned by the user, so two users' attempts never contend.
type NakamaAchievementSystem struct {
	config    *AchievementConfig
	riddlogix Riddlogix
}

// NewNakamaAchievementSystem creates a new instance of the achievement system with the given configuration.
func NewNakamaAchievementSystem(config *AchievementConfig) *NakamaAchievementSystem {
	return &NakamaAchievementSystem{
		config: config,
	}
}

// SetRiddlogix sets the Riddlogix instance for this achievement system.
func (s *NakamaAchievementSystem) SetRiddlogix(rl Riddlogix) {
	s.riddlogix = rl
}

// GetType returns the system type for the achievement system.
func (s *NakamaAchievementSystem) GetType() SystemType {
	return SystemTypeAchievements
}

// GetConfig returns the configuration for the achievement system.
func (s *NakamaAchievementSystem) GetConfig() any {
	return s.config
}

// RecordAttempt applies an improve-only write of the attempt.
func (s *NakamaAchievementSystem) RecordAttempt(ctx context.Context, logger runtime.Logger, nk runtime.NakamaModule, date, locale, userID string, attempt *AchievementAttempt, maxScore int64) (bool, bool, *Achievement, error) {
	if date == "" || locale == "" || userID == "" || attempt == nil {
		return false, false, nil, ErrBadInput
	}

	key := date + ":" + locale
	write := &runtime.StorageWrite{
		Collection:      resolveCollection(ctx, s.riddlogix, SystemTypeAchievements, achievementStorageCollection),
		Key:             key,
		UserID:          userID,
		PermissionRead:  runtime.STORAGE_PERMISSION_OWNER_READ,
		PermissionWrite: runtime.STORAGE_PERMISSION_NO_WRITE,
	}

	firstTopScore := false
	committed, written, err := storageUpdate(ctx, logger, nk, write, func(current string) (string, bool, error) {
		firstTopScore = false

		var stored *Achievement
		if current != "" {
			stored = &Achievement{}
			if err := json.Unmarshal([]byte(current), stored); err != nil {
				logger.Error("Failed to unmarshal achievement %s for user %s: %v", key, userID, err)
				return "", false, ErrPayloadDecode
			}
		}
		if !shouldReplaceAttempt(stored, attempt) {
			return "", false, nil
		}

		next := &Achievement{
			Score:      attempt.Score,
			Word:       attempt.Word,
			Coord:      attempt.Coord,
			Timestamp:  attempt.Timestamp,
			IsTopScore: maxScore > 0 && attempt.Score == maxScore,
		}
		if stored != nil && stored.IsTopScore {
			// IsTopScore never transitions back to false. A score above an
			// already-reached maximum cannot happen for an immutable riddle, but
			// the invariant holds regardless of upstream validation.
			next.IsTopScore = true
		}
		firstTopScore = next.IsTopScore && (stored == nil || !stored.IsTopScore)

		data, err := json.Marshal(next)
		if err != nil {
			logger.Error("Failed to marshal achievement %s for user %s: %v", key, userID, err)
			return "", false, ErrPayloadEncode
		}
		return string(data), true, nil
	})
	if err != nil {
		return false, false, nil, err
	}

	achievement := &Achievement{}
	if committed == "" {
		achievement = nil
	} else if err := json.Unmarshal([]byte(committed), achievement); err != nil {
		logger.Error("Failed to unmarshal committed achievement %s for user %s: %v", key, userID, err)
		return written, false, nil, ErrPayloadDecode
	}
	if !written {
		firstTopScore = false
	}
	return written, firstTopScore, achievement, nil
}

// GetAchievement reads the user's achievement for one riddle.
func (s *NakamaAchievementSystem) GetAchievement(ctx context.Context, logger runtime.Logger, nk runtime.NakamaModule, date, locale, userID string) (*Achievement, error) {
	if date == "" || locale == "" || userID == "" {
		return nil, ErrBadInput
	}

	collection := resolveCollection(ctx, s.riddlogix, SystemTypeAchievements, achievementStorageCollection)
	value, err := storageGet(ctx, logger, nk, collection, date+":"+locale, userID)
	if err != nil {
		return nil, err
	}
	if value == "" {
		return nil, nil
	}

	achievement := &Achievement{}
	if err := json.Unmarshal([]byte(value), achievement); err != nil {
		logger.Error("Failed to unmarshal achievement %s for user %s: %v", date+":"+locale, userID, err)
		return nil, ErrPayloadDecode
	}
	return achievement, nil
}
