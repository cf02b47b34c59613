package storage

import (
	"context"
	"fmt"

	"cloud.google.com/go/firestore"

	"github.com/pauljones0/agriconnect/internal/live"
	"github.com/pauljones0/agriconnect/internal/models"
)

// CreateMessage writes msg and notices atomically.
func (c *Client) CreateMessage(ctx context.Context, msg models.Message, notices ...models.Notification) error {
	err := c.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		if err := tx.Create(c.col(messagesCollection).Doc(msg.ID), msg); err != nil {
			return err
		}
		return c.createNotices(tx, notices)
	})
	if err != nil {
		return fmt.Errorf("failed to create message %s: %w", msg.ID, translate(err))
	}
	return nil
}

// WatchMessages streams one direction of a conversation, oldest first.
func (c *Client) WatchMessages(ctx context.Context, senderID, receiverID string, fn func([]models.Message)) live.Subscription {
	q := c.col(messagesCollection).
		Where("senderId", "==", senderID).
		Where("receiverId", "==", receiverID).
		OrderBy("timestamp", firestore.Asc)
	return watchQuery(ctx, q, "messages:"+senderID+"->"+receiverID, fn)
}
