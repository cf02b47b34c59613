package jobs

import (
	"context"

	"github.com/pauljones0/agriconnect/internal/live"
	"github.com/pauljones0/agriconnect/internal/models"
)

// JobStore abstracts the storage layer for job listings and bookmarks.
type JobStore interface {
	WatchJobs(ctx context.Context, fn func([]models.Job)) live.Subscription
	WatchSavedJobs(ctx context.Context, userID string, fn func([]models.SavedJob)) live.Subscription
	CreateJob(ctx context.Context, job models.Job) error
	CreateSavedJob(ctx context.Context, saved models.SavedJob) error
	DeleteSavedJob(ctx context.Context, id string) error
	ListUsers(ctx context.Context) ([]models.User, error)
	CreateNotification(ctx context.Context, n models.Notification) error
}
