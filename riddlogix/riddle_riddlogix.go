package riddlogix

import (
	"context"
	"encoding/json"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/heroiclabs/nakama-common/runtime"
	"github.com/robfig/cron/v3"
)

const defaultRiddleCacheSize = 64

// NakamaRiddleSystem implements the RiddleSystem interface using Nakama storage
// as the backend. Definitions are cached in a bounded LRU; they are immutable
// once published, so cached entries never go stale.
type NakamaRiddleSystem struct {
	config     *RiddleConfig
	riddlogix  Riddlogix
	cronParser cron.Parser

	cache *lru.Cache[string, *RiddleDefinition]
}

// NewNakamaRiddleSystem creates a new instance of the riddle system with the given configuration.
func NewNakamaRiddleSystem(config *RiddleConfig) *NakamaRiddleSystem {
	size := defaultRiddleCacheSize
	if config != nil && config.CacheSize > 0 {
		size = config.CacheSize
	}
	cache, _ := lru.New[string, *RiddleDefinition](size)
	return &NakamaRiddleSystem{
		config:     config,
		cronParser: cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow),
		cache:      cache,
	}
}

// SetRiddlogix sets the Riddlogix instance for this riddle system.
func (s *NakamaRiddleSystem) SetRiddlogix(rl Riddlogix) {
	s.riddlogix = rl
}

// GetType returns the system type for the riddle system.
func (s *NakamaRiddleSystem) GetType() SystemType {
	return SystemTypeRiddle
}

// GetConfig returns the configuration for the riddle system.
func (s *NakamaRiddleSystem) GetConfig() any {
	return s.config
}

// GetDefinition loads the immutable riddle definition for a date and locale.
func (s *NakamaRiddleSystem) GetDefinition(ctx context.Context, logger runtime.Logger, nk runtime.NakamaModule, date, locale string) (*RiddleDefinition, error) {
	if date == "" || locale == "" {
		return nil, ErrBadInput
	}

	cacheKey := date + ":" + locale
	if def, ok := s.cache.Get(cacheKey); ok {
		return def, nil
	}

	collection := resolveCollection(ctx, s.riddlogix, SystemTypeRiddle, riddleStorageCollection)
	value, err := storageGet(ctx, logger, nk, collection, cacheKey, "")
	if err != nil {
		return nil, err
	}
	if value == "" {
		return nil, ErrRiddleNotFound
	}

	def := &RiddleDefinition{}
	if err := json.Unmarshal([]byte(value), def); err != nil {
		logger.Error("Failed to unmarshal riddle definition %s: %v", cacheKey, err)
		return nil, ErrPayloadDecode
	}
	if !def.Valid() {
		logger.Error("Riddle definition %s has invalid shape", cacheKey)
		return nil, ErrRiddleInvalid
	}

	s.cache.Add(cacheKey, def)
	return def, nil
}

// CurrentDate returns the riddle date in effect at the given instant, in UTC.
func (s *NakamaRiddleSystem) CurrentDate(now time.Time) string {
	return now.UTC().Format(dateLayout)
}

// NextRollover returns the instant at which the next riddle day begins,
// according to the configured rollover schedule.
func (s *NakamaRiddleSystem) NextRollover(now time.Time) (time.Time, error) {
	expr := "0 0 * * *"
	if s.config != nil && s.config.RolloverCronexpr != "" {
		expr = s.config.RolloverCronexpr
	}
	sched, err := s.cronParser.Parse(expr)
	if err != nil {
		return time.Time{}, err
	}
	return sched.Next(now.UTC()), nil
}
