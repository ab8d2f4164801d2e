package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/custodia-labs/user-manager/internal/core/domain"
	"github.com/custodia-labs/user-manager/internal/core/ports/driven"
)

const (
	// DefaultEventStream is the stream user events are appended to
	DefaultEventStream = "user-manager:events"

	// defaultStreamMaxLen caps the stream; trimming is approximate
	defaultStreamMaxLen = 10000
)

// Verify interface compliance
var _ driven.EventNotifier = (*EventNotifier)(nil)

// EventNotifier publishes user events to a Redis Stream.
// Consumers read it with their own consumer groups; nothing is acknowledged here.
type EventNotifier struct {
	client *redis.Client
	stream string
	maxLen int64
}

// NewEventNotifier creates a notifier writing to the given stream.
// An empty stream name selects DefaultEventStream.
func NewEventNotifier(client *redis.Client, stream string) (*EventNotifier, error) {
	if client == nil {
		return nil, errors.New("redis client is required")
	}
	if stream == "" {
		stream = DefaultEventStream
	}
	return &EventNotifier{
		client: client,
		stream: stream,
		maxLen: defaultStreamMaxLen,
	}, nil
}

// Stream returns the stream name events are written to
func (n *EventNotifier) Stream() string {
	return n.stream
}

// Notify appends the event to the stream
func (n *EventNotifier) Notify(ctx context.Context, event domain.UserEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	err = n.client.XAdd(ctx, &redis.XAddArgs{
		Stream: n.stream,
		MaxLen: n.maxLen,
		Approx: true,
		Values: map[string]interface{}{
			"topic":       string(event.Type),
			"username":    event.Username,
			"occurred_at": event.OccurredAt.UTC().Format(time.RFC3339Nano),
			"payload":     payload,
		},
	}).Err()
	if err != nil {
		return fmt.Errorf("failed to publish %s event: %w", event.Type, err)
	}
	return nil
}
