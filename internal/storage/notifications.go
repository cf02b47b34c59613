package storage

import (
	"context"
	"fmt"

	"cloud.google.com/go/firestore"

	"github.com/pauljones0/agriconnect/internal/live"
	"github.com/pauljones0/agriconnect/internal/models"
)

func (c *Client) CreateNotification(ctx context.Context, n models.Notification) error {
	if _, err := c.col(notificationsCollection).Doc(n.ID).Create(ctx, n); err != nil {
		return fmt.Errorf("failed to create notification %s: %w", n.ID, translate(err))
	}
	return nil
}

// createNotices adds notification writes to a transaction.
func (c *Client) createNotices(tx *firestore.Transaction, notices []models.Notification) error {
	for _, n := range notices {
		if err := tx.Create(c.col(notificationsCollection).Doc(n.ID), n); err != nil {
			return err
		}
	}
	return nil
}

// WatchNotifications streams every notification addressed to userID. The
// result is unordered; sorting happens client-side so no composite index is needed.
func (c *Client) WatchNotifications(ctx context.Context, userID string, fn func([]models.Notification)) live.Subscription {
	q := c.col(notificationsCollection).Where("userId", "==", userID)
	return watchQuery(ctx, q, "notifications:"+userID, fn)
}

// FindNotifications returns the notifications from actorID to recipientID of one kind.
func (c *Client) FindNotifications(ctx context.Context, recipientID, actorID string, kind models.NotificationKind) ([]models.Notification, error) {
	q := c.col(notificationsCollection).
		Where("userId", "==", recipientID).
		Where("actorId", "==", actorID).
		Where("type", "==", string(kind))
	items, err := getAll[models.Notification](ctx, q)
	if err != nil {
		return nil, fmt.Errorf("failed to find notifications: %w", err)
	}
	return items, nil
}

// MarkNotificationRead flips the read flag, the only field that ever changes.
func (c *Client) MarkNotificationRead(ctx context.Context, id string) error {
	_, err := c.col(notificationsCollection).Doc(id).Update(ctx, []firestore.Update{{Path: "isRead", Value: true}})
	if err != nil {
		return fmt.Errorf("failed to mark notification %s read: %w", id, translate(err))
	}
	return nil
}
