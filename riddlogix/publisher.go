package riddlogix

import (
	"context"

	"github.com/heroiclabs/nakama-common/runtime"
)

// Event names generated by the submission coordinator.
const (
	EventBestScoreBeaten = "best_score_beaten"
	EventGroupBestBeaten = "group_best_beaten"
	EventTopScoreReached = "top_score_reached"
)

type PublisherEvent struct {
	Name      string            `json:"name,omitempty"`
	Id        string            `json:"id,omitempty"`
	Timestamp int64             `json:"timestamp,omitempty"`
	Metadata  map[string]string `json:"metadata,omitempty"`
	Value     string            `json:"value,omitempty"`

	// The system that generated this event.
	System System `json:"-"`
}

// The Publisher describes a service or similar target implementation that wishes to receive and process
// analytics-style events generated server-side by the riddle engine.
//
// Each Publisher may choose to process or ignore each event as it sees fit. It may also choose to buffer
// events for batch processing at its discretion.
//
// Publisher implementations must safely handle concurrent calls.
//
// Implementations must handle any errors or retries internally, callers will not repeat calls in case
// of errors. Delivery is at-most-once per coordinator run.
type Publisher interface {
	// Send is called when there are one or more events generated.
	Send(ctx context.Context, logger runtime.Logger, nk runtime.NakamaModule, userID string, events []*PublisherEvent)
}

// eventSender is satisfied by the registry implementation and used by systems to fan events out.
type eventSender interface {
	sendPublisherEvents(ctx context.Context, logger runtime.Logger, nk runtime.NakamaModule, userID string, events []*PublisherEvent)
}

func (r *riddlogixImpl) sendPublisherEvents(ctx context.Context, logger runtime.Logger, nk runtime.NakamaModule, userID string, events []*PublisherEvent) {
	if len(events) == 0 {
		return
	}
	for _, publisher := range r.publishers {
		publisher.Send(ctx, logger, nk, userID, events)
	}
}
