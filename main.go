package main

import (
	"context"
	"database/sql"
	"time"

	"riddleforge/riddlogix"

	"github.com/heroiclabs/nakama-common/runtime"
)

// noinspection GoUnusedExportedFunction
func InitModule(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, initializer runtime.Initializer) error {
	initStart := time.Now()

	logger.Info("Loading Riddleforge Nakama plugin...")

	_, err := riddlogix.Init(ctx, logger, nk, initializer,
		riddlogix.WithRiddleSystem("", true),
		riddlogix.WithBestScoreSystem("", true),
		riddlogix.WithLeaderboardSystem("", true),
		riddlogix.WithAchievementSystem("", false),
		riddlogix.WithTopScoreSystem("", true),
		riddlogix.WithStreakSystem("", true),
		riddlogix.WithSubmissionSystem("", true),
	)
	if err != nil {
		logger.Error("Failed to initialize riddle engine: %v", err)
		return err
	}

	logger.Info("Riddleforge Nakama plugin loaded in '%d' msec.", time.Now().Sub(initStart).Milliseconds())
	return nil
}

// main is never called; Nakama loads this module as a plugin via InitModule.
func main() {}
