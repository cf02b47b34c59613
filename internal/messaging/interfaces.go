package messaging

import (
	"context"

	"github.com/pauljones0/agriconnect/internal/live"
	"github.com/pauljones0/agriconnect/internal/models"
)

// MessageStore abstracts the storage layer for direct messages.
type MessageStore interface {
	WatchConnections(ctx context.Context, role models.ConnectionRole, userID string, fn func([]models.Connection)) live.Subscription
	GetConnection(ctx context.Context, id string) (*models.Connection, error)
	GetUsersByIDs(ctx context.Context, ids []string) ([]models.User, error)
	WatchMessages(ctx context.Context, senderID, receiverID string, fn func([]models.Message)) live.Subscription
	CreateMessage(ctx context.Context, msg models.Message, notices ...models.Notification) error
}
