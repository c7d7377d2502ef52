package service

import (
	"context"

	"github.com/roh2cool/project4/pkg/log"
	"github.com/roh2cool/project4/pkg/pubsub"
)

// ActivityLogger consumes the activity channel and writes one structured log
// line per event. It is the in-process stand-in for downstream consumers like
// notification workers.
type ActivityLogger struct {
	bus pubsub.PubSub
}

// NewActivityLogger creates a new activity consumer.
func NewActivityLogger(bus pubsub.PubSub) *ActivityLogger {
	return &ActivityLogger{bus: bus}
}

// Run subscribes to the activity channel and logs every event until the
// context is cancelled or the subscription closes.
func (a *ActivityLogger) Run(ctx context.Context) error {
	events, err := a.bus.Subscribe(ctx, pubsub.ChannelActivity)
	if err != nil {
		return err
	}

	l := log.Ctx(ctx)
	for {
		select {
		case <-ctx.Done():
			// The subscription outlives the cancelled context just long
			// enough to be torn down.
			return a.bus.Unsubscribe(context.Background(), pubsub.ChannelActivity)
		case event, ok := <-events:
			if !ok {
				return nil
			}
			l.Info().
				Str("event_type", event.Type).
				Time("event_time", event.Timestamp).
				RawJSON("payload", event.Payload).
				Msg("activity event")
		}
	}
}
