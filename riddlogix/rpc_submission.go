package riddlogix

import (
	"context"
	"database/sql"
	"encoding/json"

	"github.com/heroiclabs/nakama-common/runtime"
)

const rpcIdSubmissionSubmit = "riddle_submit"

// SubmissionRequest is the RPC payload for one validated submission. The user
// id always comes from the session, never the payload.
type SubmissionRequest struct {
	Date        string `json:"date"`
	Locale      string `json:"locale"`
	DisplayName string `json:"display_name,omitempty"`
	Word        string `json:"word"`
	Coord       string `json:"coord"`
	Score       int64  `json:"score"`
	MaxScore    int64  `json:"max_score,omitempty"`
	GroupID     string `json:"group_id,omitempty"`
}

func rpcSubmissionSubmit(r *riddlogixImpl) func(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, payload string) (string, error) {
	return func(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, payload string) (string, error) {
		submissionSystem := r.GetSubmissionSystem()
		if submissionSystem == nil {
			return "", runtime.NewError("submission system not available", UNIMPLEMENTED_ERROR_CODE) // UNIMPLEMENTED
		}

		userID, ok := ctx.Value(runtime.RUNTIME_CTX_USER_ID).(string)
		if !ok || userID == "" {
			return "", ErrNoSessionUser
		}

		var request SubmissionRequest
		if err := json.Unmarshal([]byte(payload), &request); err != nil {
			logger.Error("Failed to unmarshal SubmissionRequest: %v", err)
			return "", ErrPayloadDecode
		}
		if request.DisplayName == "" {
			if username, ok := ctx.Value(runtime.RUNTIME_CTX_USERNAME).(string); ok {
				request.DisplayName = username
			}
		}

		result, err := submissionSystem.Submit(ctx, logger, nk, &Submission{
			Date:        request.Date,
			Locale:      request.Locale,
			UserID:      userID,
			DisplayName: request.DisplayName,
			Word:        request.Word,
			Coord:       request.Coord,
			Score:       request.Score,
			MaxScore:    request.MaxScore,
			GroupID:     request.GroupID,
		})
		if err != nil {
			return "", err
		}

		data, err := json.Marshal(result)
		if err != nil {
			logger.Error("Failed to marshal submission result: %v", err)
			return "", ErrPayloadEncode
		}
		return string(data), nil
	}
}
