package events

import (
	"context"
	"log/slog"

	"github.com/custodia-labs/user-manager/internal/core/domain"
	"github.com/custodia-labs/user-manager/internal/core/ports/driven"
)

// Verify interface compliance
var _ driven.EventNotifier = (*LogNotifier)(nil)

// LogNotifier writes events to the log instead of a broker.
// Used when no event stream is configured.
type LogNotifier struct {
	logger *slog.Logger
}

// NewLogNotifier creates a LogNotifier; a nil logger means slog.Default()
func NewLogNotifier(logger *slog.Logger) *LogNotifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogNotifier{logger: logger}
}

func (n *LogNotifier) Notify(ctx context.Context, event domain.UserEvent) error {
	n.logger.InfoContext(ctx, "user event",
		"type", event.Type,
		"username", event.Username,
		"occurred_at", event.OccurredAt)
	return nil
}
