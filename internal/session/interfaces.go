package session

import (
	"context"

	"github.com/pauljones0/agriconnect/internal/live"
	"github.com/pauljones0/agriconnect/internal/models"
)

// ProfileStore abstracts the storage layer for the signed-in user's profile.
type ProfileStore interface {
	GetUser(ctx context.Context, id string) (*models.User, error)
	CreateUser(ctx context.Context, user models.User) error
	UpdateUser(ctx context.Context, id string, patch models.ProfilePatch) error
	WatchUser(ctx context.Context, id string, fn func(*models.User)) live.Subscription
}
