package riddlogix

import (
	"context"
	"time"

	"github.com/heroiclabs/nakama-common/runtime"
)

// dateLayout is the ISO calendar date format used for riddle dates and streak arithmetic.
const dateLayout = "2006-01-02"

// boardSize is the fixed edge length of a riddle board.
const boardSize = 15

var ErrRiddleInvalid = runtime.NewError("riddle definition invalid", FAILED_PRECONDITION_ERROR_CODE) // FAILED_PRECONDITION

// RiddleConfig is the data definition for a RiddleSystem type.
type RiddleConfig struct {
	// CacheSize bounds the in-process definition cache. Defaults to 64.
	CacheSize int `json:"cache_size,omitempty"`
	// RolloverCronexpr is the schedule on which a new riddle day begins, in UTC. Defaults to midnight.
	RolloverCronexpr string `json:"rollover_cronexpr,omitempty"`
}

// RiddleTile is one rack tile and its face value.
type RiddleTile struct {
	Letter string `json:"letter"`
	Value  int64  `json:"value"`
}

// RiddleDefinition is the day's fixed puzzle for a given locale: a 15x15 board,
// an ordered tile rack and the maximum achievable score. Definitions are written
// by the riddle generator and are immutable once published; this engine only
// ever reads them.
type RiddleDefinition struct {
	Date     string        `json:"date"`
	Locale   string        `json:"locale"`
	Board    []string      `json:"board"`
	Rack     []*RiddleTile `json:"rack"`
	MaxScore int64         `json:"max_score"`
}

// Valid reports whether the definition has the expected board shape and a usable max score.
func (d *RiddleDefinition) Valid() bool {
	if d == nil || d.MaxScore < 0 || len(d.Board) != boardSize {
		return false
	}
	for _, row := range d.Board {
		if len([]rune(row)) != boardSize {
			return false
		}
	}
	return true
}

// RiddleSystem is the read-only surface over riddle definitions produced by the
// out-of-scope generation component.
type RiddleSystem interface {
	System

	// GetDefinition loads the immutable riddle definition for a date and locale.
	GetDefinition(ctx context.Context, logger runtime.Logger, nk runtime.NakamaModule, date, locale string) (*RiddleDefinition, error)

	// CurrentDate returns the riddle date in effect at the given instant.
	CurrentDate(now time.Time) string

	// NextRollover returns the instant at which the next riddle day begins.
	NextRollover(now time.Time) (time.Time, error)
}
