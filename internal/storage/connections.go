package storage

import (
	"context"
	"fmt"

	"cloud.google.com/go/firestore"

	"github.com/pauljones0/agriconnect/internal/live"
	"github.com/pauljones0/agriconnect/internal/models"
)

// CreateConnection writes conn under its pair key together with notices. It
// fails with models.ErrAlreadyExists if the pair already has a connection in
// any status.
func (c *Client) CreateConnection(ctx context.Context, conn models.Connection, notices ...models.Notification) error {
	ref := c.col(connectionsCollection).Doc(conn.ID)
	err := c.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		if _, found, err := exists(tx, ref); err != nil {
			return err
		} else if found {
			return models.ErrAlreadyExists
		}
		if err := tx.Create(ref, conn); err != nil {
			return err
		}
		return c.createNotices(tx, notices)
	})
	if err != nil {
		return fmt.Errorf("failed to create connection %s: %w", conn.ID, translate(err))
	}
	return nil
}

func (c *Client) GetConnection(ctx context.Context, id string) (*models.Connection, error) {
	return getDoc[models.Connection](ctx, c.col(connectionsCollection).Doc(id))
}

// TransitionConnection moves a connection to status to and writes notices,
// inside a transaction so that a terminal status is never overwritten.
func (c *Client) TransitionConnection(ctx context.Context, id string, to models.ConnectionStatus, notices ...models.Notification) (*models.Connection, error) {
	ref := c.col(connectionsCollection).Doc(id)

	var result models.Connection
	err := c.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		snap, found, err := exists(tx, ref)
		if err != nil {
			return err
		}
		if !found {
			return models.ErrNotFound
		}
		var conn models.Connection
		if err := snap.DataTo(&conn); err != nil {
			return err
		}
		if !models.CanTransition(conn.Status, to) {
			return fmt.Errorf("%w: %s -> %s", models.ErrInvalidTransition, conn.Status, to)
		}
		conn.Status = to
		result = conn
		if err := tx.Update(ref, []firestore.Update{{Path: "status", Value: string(to)}}); err != nil {
			return err
		}
		return c.createNotices(tx, notices)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to set connection %s to %s: %w", id, to, translate(err))
	}
	return &result, nil
}

// WatchConnections streams the connections where userID holds role.
func (c *Client) WatchConnections(ctx context.Context, role models.ConnectionRole, userID string, fn func([]models.Connection)) live.Subscription {
	q := c.col(connectionsCollection).Where(string(role), "==", userID)
	return watchQuery(ctx, q, "connections:"+string(role)+":"+userID, fn)
}
