package storage

import (
	"context"
	"fmt"

	"cloud.google.com/go/firestore"

	"github.com/pauljones0/agriconnect/internal/live"
	"github.com/pauljones0/agriconnect/internal/models"
)

func (c *Client) CreateJob(ctx context.Context, job models.Job) error {
	if _, err := c.col(jobsCollection).Doc(job.ID).Create(ctx, job); err != nil {
		return fmt.Errorf("failed to create job %s: %w", job.ID, translate(err))
	}
	return nil
}

// WatchJobs streams all listings, newest first.
func (c *Client) WatchJobs(ctx context.Context, fn func([]models.Job)) live.Subscription {
	q := c.col(jobsCollection).OrderBy("postedAt", firestore.Desc)
	return watchQuery(ctx, q, "jobs", fn)
}

func (c *Client) WatchSavedJobs(ctx context.Context, userID string, fn func([]models.SavedJob)) live.Subscription {
	q := c.col(savedJobsCollection).Where("userId", "==", userID)
	return watchQuery(ctx, q, "savedJobs:"+userID, fn)
}

// CreateSavedJob writes the bookmark. Saving an already-saved job is a no-op.
func (c *Client) CreateSavedJob(ctx context.Context, saved models.SavedJob) error {
	if _, err := c.col(savedJobsCollection).Doc(saved.ID).Set(ctx, saved); err != nil {
		return fmt.Errorf("failed to save job %s: %w", saved.JobID, translate(err))
	}
	return nil
}

func (c *Client) DeleteSavedJob(ctx context.Context, id string) error {
	if _, err := c.col(savedJobsCollection).Doc(id).Delete(ctx); err != nil {
		return fmt.Errorf("failed to delete saved job %s: %w", id, translate(err))
	}
	return nil
}
