package jobs

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/pauljones0/agriconnect/internal/models"
	"github.com/pauljones0/agriconnect/internal/notifier"
	"github.com/pauljones0/agriconnect/internal/validator"
)

// Service performs job writes.
type Service struct {
	store    JobStore
	validate *validator.Validator
	alerts   *notifier.Emitter
	newID    func() string
	now      func() time.Time
}

// NewService returns a Service whose job alerts are written at most
// alertRate per second.
func NewService(store JobStore, v *validator.Validator, alertRate float64) *Service {
	return &Service{
		store:    store,
		validate: v,
		alerts:   notifier.NewEmitter(store, alertRate),
		newID:    uuid.NewString,
		now:      time.Now,
	}
}

// PostJob publishes job on behalf of authorID. When the job has a crop
// focus, every other user growing that crop gets a job alert. The listing is
// durable once CreateJob succeeds, so alert failures are logged rather than
// returned.
func (s *Service) PostJob(ctx context.Context, authorID string, job models.Job) (models.Job, error) {
	job.ID = s.newID()
	job.AuthorID = authorID
	job.PostedAt = s.now()
	job.CropFocus = strings.TrimSpace(job.CropFocus)
	if job.Type == "" {
		job.Type = models.JobFullTime
	}
	if err := s.validate.ValidateStruct(job); err != nil {
		return models.Job{}, err
	}
	if err := s.store.CreateJob(ctx, job); err != nil {
		return models.Job{}, fmt.Errorf("post job: %w", err)
	}
	slog.Info("Posted job", "job", job.ID, "author", authorID, "cropFocus", job.CropFocus)

	if job.CropFocus == "" {
		return job, nil
	}
	sent, err := s.fanOut(ctx, job)
	if err != nil {
		slog.Warn("Job alert fan-out incomplete", "job", job.ID, "sent", sent, "error", err)
	} else {
		slog.Info("Sent job alerts", "job", job.ID, "count", sent)
	}
	return job, nil
}

func (s *Service) fanOut(ctx context.Context, job models.Job) (int, error) {
	users, err := s.store.ListUsers(ctx)
	if err != nil {
		return 0, fmt.Errorf("list users: %w", err)
	}
	var notices []models.Notification
	for _, u := range users {
		if u.ID != job.AuthorID && GrowsCrop(u, job.CropFocus) {
			notices = append(notices, s.alerts.JobAlert(job.AuthorID, u.ID, job)...)
		}
	}
	return s.alerts.Send(ctx, notices...)
}

// ToggleSaved flips the bookmark on jobID for userID, given whether it is
// currently saved, and reports the new state.
func (s *Service) ToggleSaved(ctx context.Context, userID, jobID string, saved bool) (bool, error) {
	id := models.SavedJobID(userID, jobID)
	if saved {
		if err := s.store.DeleteSavedJob(ctx, id); err != nil {
			return true, fmt.Errorf("unsave job: %w", err)
		}
		return false, nil
	}
	err := s.store.CreateSavedJob(ctx, models.SavedJob{ID: id, UserID: userID, JobID: jobID})
	if err != nil {
		return false, fmt.Errorf("save job: %w", err)
	}
	return true, nil
}
