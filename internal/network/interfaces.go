package network

import (
	"context"

	"github.com/pauljones0/agriconnect/internal/live"
	"github.com/pauljones0/agriconnect/internal/models"
)

// ConnectionStore abstracts the storage layer for the connection graph.
type ConnectionStore interface {
	WatchConnections(ctx context.Context, role models.ConnectionRole, userID string, fn func([]models.Connection)) live.Subscription
	WatchUsers(ctx context.Context, fn func([]models.User)) live.Subscription
	GetConnection(ctx context.Context, id string) (*models.Connection, error)
	CreateConnection(ctx context.Context, conn models.Connection, notices ...models.Notification) error
	TransitionConnection(ctx context.Context, id string, to models.ConnectionStatus, notices ...models.Notification) (*models.Connection, error)
	FindNotifications(ctx context.Context, recipientID, actorID string, kind models.NotificationKind) ([]models.Notification, error)
	MarkNotificationRead(ctx context.Context, id string) error
}
