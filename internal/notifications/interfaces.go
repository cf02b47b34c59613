package notifications

import (
	"context"

	"github.com/pauljones0/agriconnect/internal/live"
	"github.com/pauljones0/agriconnect/internal/models"
)

// NotificationStore abstracts the storage layer for a user's notifications.
type NotificationStore interface {
	WatchNotifications(ctx context.Context, userID string, fn func([]models.Notification)) live.Subscription
	MarkNotificationRead(ctx context.Context, id string) error
}
