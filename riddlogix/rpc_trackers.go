package riddlogix

import (
	"context"
	"database/sql"
	"encoding/json"

	"github.com/heroiclabs/nakama-common/runtime"
)

const (
	rpcIdBestGet          = "riddle_best_get"
	rpcIdLeaderboardGet   = "riddle_leaderboard_get"
	rpcIdTopScoreCountGet = "riddle_top_score_count_get"
	rpcIdStreakGet        = "riddle_streak_get"
)

type BestGetRequest struct {
	Date    string `json:"date"`
	Locale  string `json:"locale"`
	GroupID string `json:"group_id,omitempty"`
}

type BestGetResponse struct {
	Best *BestRecord `json:"best,omitempty"`
}

func rpcBestGet(r *riddlogixImpl) func(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, payload string) (string, error) {
	return func(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, payload string) (string, error) {
		bestSystem := r.GetBestScoreSystem()
		if bestSystem == nil {
			return "", runtime.NewError("best score system not available", UNIMPLEMENTED_ERROR_CODE) // UNIMPLEMENTED
		}

		var request BestGetRequest
		if err := json.Unmarshal([]byte(payload), &request); err != nil {
			logger.Error("Failed to unmarshal BestGetRequest: %v", err)
			return "", ErrPayloadDecode
		}

		best, err := bestSystem.GetBest(ctx, logger, nk, BestScope{Date: request.Date, Locale: request.Locale, GroupID: request.GroupID})
		if err != nil {
			return "", err
		}

		data, err := json.Marshal(&BestGetResponse{Best: best})
		if err != nil {
			logger.Error("Failed to marshal best record response: %v", err)
			return "", ErrPayloadEncode
		}
		return string(data), nil
	}
}

type LeaderboardGetRequest struct {
	Date   string `json:"date"`
	Locale string `json:"locale"`
	Limit  int    `json:"limit,omitempty"`
}

type LeaderboardGetResponse struct {
	Entries []*LeaderboardEntry `json:"entries"`
}

func rpcLeaderboardGet(r *riddlogixImpl) func(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, payload string) (string, error) {
	return func(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, payload string) (string, error) {
		leaderboardSystem := r.GetLeaderboardSystem()
		if leaderboardSystem == nil {
			return "", runtime.NewError("leaderboard system not available", UNIMPLEMENTED_ERROR_CODE) // UNIMPLEMENTED
		}

		var request LeaderboardGetRequest
		if err := json.Unmarshal([]byte(payload), &request); err != nil {
			logger.Error("Failed to unmarshal LeaderboardGetRequest: %v", err)
			return "", ErrPayloadDecode
		}

		entries, err := leaderboardSystem.List(ctx, logger, nk, request.Date, request.Locale, request.Limit)
		if err != nil {
			return "", err
		}

		data, err := json.Marshal(&LeaderboardGetResponse{Entries: entries})
		if err != nil {
			logger.Error("Failed to marshal leaderboard response: %v", err)
			return "", ErrPayloadEncode
		}
		return string(data), nil
	}
}

type TopScoreCountGetRequest struct {
	Date   string `json:"date"`
	Locale string `json:"locale"`
}

type TopScoreCountGetResponse struct {
	Count int64 `json:"count"`
}

func rpcTopScoreCountGet(r *riddlogixImpl) func(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, payload string) (string, error) {
	return func(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, payload string) (string, error) {
		topScoreSystem := r.GetTopScoreSystem()
		if topScoreSystem == nil {
			return "", runtime.NewError("top score system not available", UNIMPLEMENTED_ERROR_CODE) // UNIMPLEMENTED
		}

		var request TopScoreCountGetRequest
		if err := json.Unmarshal([]byte(payload), &request); err != nil {
			logger.Error("Failed to unmarshal TopScoreCountGetRequest: %v", err)
			return "", ErrPayloadDecode
		}

		count, err := topScoreSystem.GetCount(ctx, logger, nk, request.Date, request.Locale)
		if err != nil {
			return "", err
		}

		data, err := json.Marshal(&TopScoreCountGetResponse{Count: count})
		if err != nil {
			logger.Error("Failed to marshal top score count response: %v", err)
			return "", ErrPayloadEncode
		}
		return string(data), nil
	}
}

type StreakGetRequest struct {
	Locale string `json:"locale"`
}

type StreakGetResponse struct {
	Streak *UserStreak `json:"streak"`
}

func rpcStreakGet(r *riddlogixImpl) func(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, payload string) (string, error) {
	return func(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, payload string) (string, error) {
		streakSystem := r.GetStreakSystem()
		if streakSystem == nil {
			return "", runtime.NewError("streak system not available", UNIMPLEMENTED_ERROR_CODE) // UNIMPLEMENTED
		}

		userID, ok := ctx.Value(runtime.RUNTIME_CTX_USER_ID).(string)
		if !ok || userID == "" {
			return "", ErrNoSessionUser
		}

		var request StreakGetRequest
		if err := json.Unmarshal([]byte(payload), &request); err != nil {
			logger.Error("Failed to unmarshal StreakGetRequest: %v", err)
			return "", ErrPayloadDecode
		}
		if request.Locale == "" {
			return "", runtime.NewError("locale is required", INVALID_ARGUMENT_ERROR_CODE) // INVALID_ARGUMENT
		}

		streak, err := streakSystem.GetStreak(ctx, logger, nk, request.Locale, userID)
		if err != nil {
			return "", err
		}

		data, err := json.Marshal(&StreakGetResponse{Streak: streak})
		if err != nil {
			logger.Error("Failed to marshal streak response: %v", err)
			return "", ErrPayloadEncode
		}
		return string(data), nil
	}
}
