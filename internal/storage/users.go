package storage

import (
	"context"
	"fmt"

	"cloud.google.com/go/firestore"

	"github.com/pauljones0/agriconnect/internal/live"
	"github.com/pauljones0/agriconnect/internal/models"
)

// GetUser returns the profile document, or nil if it does not exist.
func (c *Client) GetUser(ctx context.Context, id string) (*models.User, error) {
	return getDoc[models.User](ctx, c.col(usersCollection).Doc(id))
}

// CreateUser writes a new profile. It fails with models.ErrAlreadyExists if the uid is taken.
func (c *Client) CreateUser(ctx context.Context, user models.User) error {
	_, err := c.col(usersCollection).Doc(user.ID).Create(ctx, user)
	if err != nil {
		return fmt.Errorf("failed to create user %s: %w", user.ID, translate(err))
	}
	return nil
}

// UpdateUser writes only the fields set in patch.
func (c *Client) UpdateUser(ctx context.Context, id string, patch models.ProfilePatch) error {
	fields := patch.Fields()
	if len(fields) == 0 {
		return nil
	}
	updates := make([]firestore.Update, 0, len(fields))
	for path, value := range fields {
		updates = append(updates, firestore.Update{Path: path, Value: value})
	}
	if _, err := c.col(usersCollection).Doc(id).Update(ctx, updates); err != nil {
		return fmt.Errorf("failed to update user %s: %w", id, translate(err))
	}
	return nil
}

// ListUsers reads the whole users collection once.
func (c *Client) ListUsers(ctx context.Context) ([]models.User, error) {
	users, err := getAll[models.User](ctx, c.col(usersCollection).Query)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return users, nil
}

// GetUsersByIDs runs a single membership query. Callers batch ids into
// groups of at most MaxInValues.
func (c *Client) GetUsersByIDs(ctx context.Context, ids []string) ([]models.User, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	if len(ids) > MaxInValues {
		return nil, fmt.Errorf("membership query with %d values exceeds limit of %d", len(ids), MaxInValues)
	}
	users, err := getAll[models.User](ctx, c.col(usersCollection).Where("id", "in", ids))
	if err != nil {
		return nil, fmt.Errorf("failed to get users by ids: %w", err)
	}
	return users, nil
}

func (c *Client) WatchUser(ctx context.Context, id string, fn func(*models.User)) live.Subscription {
	return watchDoc(ctx, c.col(usersCollection).Doc(id), fn)
}

func (c *Client) WatchUsers(ctx context.Context, fn func([]models.User)) live.Subscription {
	return watchQuery(ctx, c.col(usersCollection).Query, "users", fn)
}
