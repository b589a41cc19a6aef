package riddlogix

import (
	"context"
	"encoding/json"
	"io"

	"github.com/heroiclabs/nakama-common/runtime"
)

var (
	ErrInternal           = runtime.NewError("internal error occurred", INTERNAL_ERROR_CODE)        // INTERNAL
	ErrBadInput           = runtime.NewError("bad input", INVALID_ARGUMENT_ERROR_CODE)             // INVALID_ARGUMENT
	ErrNoSessionUser      = runtime.NewError("no user ID in session", INVALID_ARGUMENT_ERROR_CODE) // INVALID_ARGUMENT
	ErrPayloadDecode      = runtime.NewError("cannot decode json", INTERNAL_ERROR_CODE)            // INTERNAL
	ErrPayloadEncode      = runtime.NewError("cannot encode json", INTERNAL_ERROR_CODE)            // INTERNAL
	ErrSystemNotAvailable = runtime.NewError("system not available", INTERNAL_ERROR_CODE)          // INTERNAL
	ErrRiddleNotFound     = runtime.NewError("riddle not found", NOT_FOUND_ERROR_CODE)             // NOT_FOUND
)

// The SystemType identifies each of the engine systems.
type SystemType uint

const (
	SystemTypeUnknown SystemType = iota
	SystemTypeRiddle
	SystemTypeBestScore
	SystemTypeLeaderboard
	SystemTypeAchievements
	SystemTypeTopScore
	SystemTypeStreaks
	SystemTypeSubmission
)

// A System is a base type for an engine system.
type System interface {
	// GetType provides the runtime type of the engine system.
	GetType() SystemType

	// GetConfig returns the configuration type of the engine system.
	GetConfig() any
}

// The SystemConfig describes the configuration that each engine system must use to configure itself.
type SystemConfig interface {
	// GetType returns the runtime type of the engine system.
	GetType() SystemType

	// GetConfigFile returns the configuration file used for the data definitions in the engine system.
	GetConfigFile() string

	// GetRegister returns true if the engine system's RPCs should be registered with the game server.
	GetRegister() bool
}

var _ SystemConfig = &systemConfig{}

type systemConfig struct {
	systemType SystemType
	configFile string
	register   bool
}

func (sc *systemConfig) GetType() SystemType {
	return sc.systemType
}
func (sc *systemConfig) GetConfigFile() string {
	return sc.configFile
}
func (sc *systemConfig) GetRegister() bool {
	return sc.register
}

// WithRiddleSystem configures a RiddleSystem type and optionally registers its RPCs with the game server.
func WithRiddleSystem(configFile string, register bool) SystemConfig {
	return &systemConfig{systemType: SystemTypeRiddle, configFile: configFile, register: register}
}

// WithBestScoreSystem configures a BestScoreSystem type.
func WithBestScoreSystem(configFile string, register bool) SystemConfig {
	return &systemConfig{systemType: SystemTypeBestScore, configFile: configFile, register: register}
}

// WithLeaderboardSystem configures a LeaderboardSystem type.
func WithLeaderboardSystem(configFile string, register bool) SystemConfig {
	return &systemConfig{systemType: SystemTypeLeaderboard, configFile: configFile, register: register}
}

// WithAchievementSystem configures an AchievementSystem type.
func WithAchievementSystem(configFile string, register bool) SystemConfig {
	return &systemConfig{systemType: SystemTypeAchievements, configFile: configFile, register: register}
}

// WithTopScoreSystem configures a TopScoreSystem type.
func WithTopScoreSystem(configFile string, register bool) SystemConfig {
	return &systemConfig{systemType: SystemTypeTopScore, configFile: configFile, register: register}
}

// WithStreakSystem configures a StreakSystem type.
func WithStreakSystem(configFile string, register bool) SystemConfig {
	return &systemConfig{systemType: SystemTypeStreaks, configFile: configFile, register: register}
}

// WithSubmissionSystem configures a SubmissionSystem type and optionally registers its RPCs with the game server.
func WithSubmissionSystem(configFile string, register bool) SystemConfig {
	return &systemConfig{systemType: SystemTypeSubmission, configFile: configFile, register: register}
}

// CollectionResolverFn may change the storage collection target for Riddlogix systems. Not typically used.
type CollectionResolverFn func(ctx context.Context, systemType SystemType, collection string) (string, error)

// Riddlogix provides a type which combines all systems of the daily riddle engine.
type Riddlogix interface {
	AddPublisher(publisher Publisher)

	// SetCollectionResolver sets a function that may change the storage collection target for Riddlogix systems.
	SetCollectionResolver(fn CollectionResolverFn)

	GetRiddleSystem() RiddleSystem
	GetBestScoreSystem() BestScoreSystem
	GetLeaderboardSystem() LeaderboardSystem
	GetAchievementSystem() AchievementSystem
	GetTopScoreSystem() TopScoreSystem
	GetStreakSystem() StreakSystem
	GetSubmissionSystem() SubmissionSystem
}

// riddlogixImpl implements the Riddlogix interface.
type riddlogixImpl struct {
	publishers         []Publisher
	collectionResolver CollectionResolverFn

	systems map[SystemType]System
}

// Init initializes a Riddlogix type with the configurations provided.
func Init(ctx context.Context, logger runtime.Logger, nk runtime.NakamaModule, initializer runtime.Initializer, configs ...SystemConfig) (Riddlogix, error) {
	rl := &riddlogixImpl{
		publishers: make([]Publisher, 0),
		systems:    make(map[SystemType]System),
	}

	for _, config := range configs {
		if err := rl.initSystem(ctx, logger, nk, initializer, config); err != nil {
			return nil, err
		}
	}

	return rl, nil
}

// initSystem initializes a specific system based on its type.
func (r *riddlogixImpl) initSystem(ctx context.Context, logger runtime.Logger, nk runtime.NakamaModule, initializer runtime.Initializer, config SystemConfig) error {
	logger.Info("Initializing system type: %v, config file: %s", config.GetType(), config.GetConfigFile())

	configBytes := []byte("{}")
	if config.GetConfigFile() != "" {
		configData, err := nk.ReadFile(config.GetConfigFile())
		if err != nil {
			logger.Error("Failed to read config file %s: %v", config.GetConfigFile(), err)
			return err
		}
		configBytes, err = io.ReadAll(configData)
		if err != nil {
			configData.Close()
			logger.Error("Failed to read config file contents: %v", err)
			return err
		}
		configData.Close()
	}

	var system System

	switch config.GetType() {
	case SystemTypeRiddle:
		riddleConfig := &RiddleConfig{}
		if err := json.Unmarshal(configBytes, riddleConfig); err != nil {
			logger.Error("Failed to parse Riddle system config: %v", err)
			return err
		}
		system = NewNakamaRiddleSystem(riddleConfig)

	case SystemTypeBestScore:
		bestConfig := &BestScoreConfig{}
		if err := json.Unmarshal(configBytes, bestConfig); err != nil {
			logger.Error("Failed to parse BestScore system config: %v", err)
			return err
		}
		system = NewNakamaBestScoreSystem(bestConfig)

	case SystemTypeLeaderboard:
		leaderboardConfig := &LeaderboardConfig{}
		if err := json.Unmarshal(configBytes, leaderboardConfig); err != nil {
			logger.Error("Failed to parse Leaderboard system config: %v", err)
			return err
		}
		system = NewNakamaLeaderboardSystem(leaderboardConfig)

	case SystemTypeAchievements:
		achievementConfig := &AchievementConfig{}
		if err := json.Unmarshal(configBytes, achievementConfig); err != nil {
			logger.Error("Failed to parse Achievement system config: %v", err)
			return err
		}
		system = NewNakamaAchievementSystem(achievementConfig)

	case SystemTypeTopScore:
		topScoreConfig := &TopScoreConfig{}
		if err := json.Unmarshal(configBytes, topScoreConfig); err != nil {
			logger.Error("Failed to parse TopScore system config: %v", err)
			return err
		}
		system = NewNakamaTopScoreSystem(topScoreConfig)

	case SystemTypeStreaks:
		streakConfig := &StreakConfig{}
		if err := json.Unmarshal(configBytes, streakConfig); err != nil {
			logger.Error("Failed to parse Streak system config: %v", err)
			return err
		}
		system = NewNakamaStreakSystem(streakConfig)

	case SystemTypeSubmission:
		submissionConfig := &SubmissionConfig{}
		if err := json.Unmarshal(configBytes, submissionConfig); err != nil {
			logger.Error("Failed to parse Submission system config: %v", err)
			return err
		}
		system = NewNakamaSubmissionSystem(submissionConfig)

	default:
		logger.Error("Unknown system type: %v", config.GetType())
		return ErrSystemNotAvailable
	}

	r.systems[config.GetType()] = system

	// Give systems that orchestrate other systems a back-reference to the registry.
	if aware, ok := system.(interface{ SetRiddlogix(Riddlogix) }); ok {
		aware.SetRiddlogix(r)
	}

	if config.GetRegister() && initializer != nil {
		if err := r.registerSystemRpcs(initializer, config.GetType()); err != nil {
			return err
		}
	}

	return nil
}

// registerSystemRpcs registers the RPCs exposed by one system with the game server.
func (r *riddlogixImpl) registerSystemRpcs(initializer runtime.Initializer, systemType SystemType) error {
	switch systemType {
	case SystemTypeRiddle:
		if err := initializer.RegisterRpc(rpcIdRiddleGet, rpcRiddleGet(r)); err != nil {
			return err
		}

	case SystemTypeBestScore:
		if err := initializer.RegisterRpc(rpcIdBestGet, rpcBestGet(r)); err != nil {
			return err
		}

	case SystemTypeLeaderboard:
		if err := initializer.RegisterRpc(rpcIdLeaderboardGet, rpcLeaderboardGet(r)); err != nil {
			return err
		}

	case SystemTypeTopScore:
		if err := initializer.RegisterRpc(rpcIdTopScoreCountGet, rpcTopScoreCountGet(r)); err != nil {
			return err
		}

	case SystemTypeStreaks:
		if err := initializer.RegisterRpc(rpcIdStreakGet, rpcStreakGet(r)); err != nil {
			return err
		}

	case SystemTypeSubmission:
		if err := initializer.RegisterRpc(rpcIdSubmissionSubmit, rpcSubmissionSubmit(r)); err != nil {
			return err
		}
	}

	return nil
}

func (r *riddlogixImpl) AddPublisher(publisher Publisher) {
	r.publishers = append(r.publishers, publisher)
}

func (r *riddlogixImpl) SetCollectionResolver(fn CollectionResolverFn) {
	r.collectionResolver = fn
}

// resolveCollection maps a default storage collection through the optional resolver.
func (r *riddlogixImpl) resolveCollection(ctx context.Context, systemType SystemType, collection string) (string, error) {
	if r.collectionResolver == nil {
		return collection, nil
	}
	return r.collectionResolver(ctx, systemType, collection)
}

func (r *riddlogixImpl) GetRiddleSystem() RiddleSystem {
	if sys, ok := r.systems[SystemTypeRiddle].(RiddleSystem); ok {
		return sys
	}
	return nil
}

func (r *riddlogixImpl) GetBestScoreSystem() BestScoreSystem {
	if sys, ok := r.systems[SystemTypeBestScore].(BestScoreSystem); ok {
		return sys
	}
	return nil
}

func (r *riddlogixImpl) GetLeaderboardSystem() LeaderboardSystem {
	if sys, ok := r.systems[SystemTypeLeaderboard].(LeaderboardSystem); ok {
		return sys
	}
	return nil
}

func (r *riddlogixImpl) GetAchievementSystem() AchievementSystem {
	if sys, ok := r.systems[SystemTypeAchievements].(AchievementSystem); ok {
		return sys
	}
	return nil
}

func (r *riddlogixImpl) GetTopScoreSystem() TopScoreSystem {
	if sys, ok := r.systems[SystemTypeTopScore].(TopScoreSystem); ok {
		return sys
	}
	return nil
}

func (r *riddlogixImpl) GetStreakSystem() StreakSystem {
	if sys, ok := r.systems[SystemTypeStreaks].(StreakSystem); ok {
		return sys
	}
	return nil
}

func (r *riddlogixImpl) GetSubmissionSystem() SubmissionSystem {
	if sys, ok := r.systems[SystemTypeSubmission].(SubmissionSystem); ok {
		return sys
	}
	return nil
}
