package driven

import (
	"context"

	"github.com/custodia-labs/user-manager/internal/core/domain"
)

// EventNotifier announces side effects to other services.
// Delivery is fire-and-forget: callers log failures and move on.
type EventNotifier interface {
	Notify(ctx context.Context, event domain.UserEvent) error
}
