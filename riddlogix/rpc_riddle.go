package riddlogix

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/heroiclabs/nakama-common/runtime"
)

const rpcIdRiddleGet = "riddle_get"

type RiddleGetRequest struct {
	Date   string `json:"date,omitempty"`
	Locale string `json:"locale"`
}

type RiddleGetResponse struct {
	Riddle          *RiddleDefinition `json:"riddle"`
	NextRolloverSec int64             `json:"next_rollover_sec,omitempty"`
}

func rpcRiddleGet(r *riddlogixImpl) func(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, payload string) (string, error) {
	return func(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, payload string) (string, error) {
		riddleSystem := r.GetRiddleSystem()
		if riddleSystem == nil {
			return "", runtime.NewError("riddle system not available", UNIMPLEMENTED_ERROR_CODE) // UNIMPLEMENTED
		}

		var request RiddleGetRequest
		if err := json.Unmarshal([]byte(payload), &request); err != nil {
			logger.Error("Failed to unmarshal RiddleGetRequest: %v", err)
			return "", ErrPayloadDecode
		}
		if request.Locale == "" {
			return "", runtime.NewError("locale is required", INVALID_ARGUMENT_ERROR_CODE) // INVALID_ARGUMENT
		}

		now := time.Now()
		if request.Date == "" {
			request.Date = riddleSystem.CurrentDate(now)
		}

		def, err := riddleSystem.GetDefinition(ctx, logger, nk, request.Date, request.Locale)
		if err != nil {
			return "", err
		}

		response := &RiddleGetResponse{Riddle: def}
		if rollover, err := riddleSystem.NextRollover(now); err == nil {
			response.NextRolloverSec = rollover.Unix()
		}

		data, err := json.Marshal(response)
		if err != nil {
			logger.Error("Failed to marshal riddle response: %v", err)
			return "", ErrPayloadEncode
		}
		return string(data), nil
	}
}
