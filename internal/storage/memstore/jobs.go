package memstore

import (
	"context"
	"fmt"
	"slices"

	"github.com/pauljones0/agriconnect/internal/live"
	"github.com/pauljones0/agriconnect/internal/models"
)

func (s *Store) CreateJob(ctx context.Context, job models.Job) error {
	s.mu.Lock()
	if err := s.enter("CreateJob"); err != nil {
		s.mu.Unlock()
		return err
	}
	if _, ok := s.jobs[job.ID]; ok {
		s.mu.Unlock()
		return fmt.Errorf("failed to create job %s: %w", job.ID, models.ErrAlreadyExists)
	}
	s.jobs[job.ID] = job
	p := s.changed()
	s.mu.Unlock()
	p.flush()
	return nil
}

func (s *Store) WatchJobs(ctx context.Context, fn func([]models.Job)) live.Subscription {
	return s.watch(ctx, "WatchJobs", func() func() {
		jobs := collect(s.jobs, nil)
		slices.SortStableFunc(jobs, func(a, b models.Job) int { return byTime(b.PostedAt, a.PostedAt) })
		return func() { fn(jobs) }
	})
}

func (s *Store) WatchSavedJobs(ctx context.Context, userID string, fn func([]models.SavedJob)) live.Subscription {
	return s.watch(ctx, "WatchSavedJobs", func() func() {
		saved := collect(s.savedJobs, func(sj models.SavedJob) bool { return sj.UserID == userID })
		return func() { fn(saved) }
	})
}

func (s *Store) CreateSavedJob(ctx context.Context, saved models.SavedJob) error {
	s.mu.Lock()
	if err := s.enter("CreateSavedJob"); err != nil {
		s.mu.Unlock()
		return err
	}
	s.savedJobs[saved.ID] = saved
	p := s.changed()
	s.mu.Unlock()
	p.flush()
	return nil
}

func (s *Store) DeleteSavedJob(ctx context.Context, id string) error {
	s.mu.Lock()
	if err := s.enter("DeleteSavedJob"); err != nil {
		s.mu.Unlock()
		return err
	}
	delete(s.savedJobs, id)
	p := s.changed()
	s.mu.Unlock()
	p.flush()
	return nil
}
