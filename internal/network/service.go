package network

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/pauljones0/agriconnect/internal/models"
	"github.com/pauljones0/agriconnect/internal/notifier"
	"github.com/pauljones0/agriconnect/internal/util"
)

// Service performs connection writes.
type Service struct {
	store   ConnectionStore
	notices notifier.Builder
	now     func() time.Time

	retries int
	backoff time.Duration
}

func NewService(store ConnectionStore) *Service {
	return &Service{
		store:   store,
		notices: notifier.NewBuilder(),
		now:     time.Now,
		retries: 3,
		backoff: 500 * time.Millisecond,
	}
}

// Connect sends a connection request from requesterID to receiverID. It is
// a no-op, reporting false, when the pair already has a connection in any
// status or in either direction, including when a concurrent request wins.
func (s *Service) Connect(ctx context.Context, requesterID, receiverID string) (bool, error) {
	if requesterID == receiverID {
		return false, fmt.Errorf("connect to self: %w", models.ErrNotPermitted)
	}
	id := models.ConnectionID(requesterID, receiverID)
	existing, err := s.store.GetConnection(ctx, id)
	if err != nil {
		return false, fmt.Errorf("connect: %w", err)
	}
	if existing != nil {
		return false, nil
	}

	conn := models.Connection{
		ID:          id,
		RequesterID: requesterID,
		ReceiverID:  receiverID,
		Status:      models.StatusPending,
		Timestamp:   s.now(),
	}
	err = s.store.CreateConnection(ctx, conn, s.notices.ConnectionRequest(requesterID, receiverID)...)
	if errors.Is(err, models.ErrAlreadyExists) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("connect: %w", err)
	}
	slog.Info("Sent connection request", "from", requesterID, "to", receiverID)
	return true, nil
}

// load returns the connection after checking that actorID is its receiver.
func (s *Service) load(ctx context.Context, actorID, connectionID string) (models.Connection, error) {
	conn, err := s.store.GetConnection(ctx, connectionID)
	if err != nil {
		return models.Connection{}, err
	}
	if conn == nil {
		return models.Connection{}, fmt.Errorf("connection %s: %w", connectionID, models.ErrNotFound)
	}
	if conn.ReceiverID != actorID {
		return models.Connection{}, fmt.Errorf("only the receiver can answer a request: %w", models.ErrNotPermitted)
	}
	return *conn, nil
}

// Accept accepts a pending request addressed to actorID. The status change
// and the acceptance notice to the requester are one write; clearing the
// receiver's request notifications follows. Each step is retried and the
// whole operation fails if any step does. Accepting an already accepted
// connection re-runs only the clean-up, so a failed Accept can be repeated.
func (s *Service) Accept(ctx context.Context, actorID, connectionID string) error {
	conn, err := s.load(ctx, actorID, connectionID)
	if err != nil {
		return fmt.Errorf("accept: %w", err)
	}

	if conn.Status != models.StatusAccepted {
		notices := s.notices.ConnectionAccepted(actorID, conn.RequesterID)
		err = util.RetryWithBackoff(ctx, s.retries, s.backoff, func(attempt int) error {
			_, err := s.store.TransitionConnection(ctx, connectionID, models.StatusAccepted, notices...)
			switch {
			case err == nil:
				return nil
			case errors.Is(err, models.ErrInvalidTransition):
				// An earlier attempt may have committed without us hearing back.
				if current, getErr := s.store.GetConnection(ctx, connectionID); getErr == nil && current != nil && current.Status == models.StatusAccepted {
					return nil
				}
				return util.Permanent(err)
			case errors.Is(err, models.ErrNotFound):
				return util.Permanent(err)
			}
			slog.Warn("Accept attempt failed", "connection", connectionID, "attempt", attempt, "error", err)
			return err
		})
		if err != nil {
			return fmt.Errorf("accept: %w", err)
		}
	}

	err = util.RetryWithBackoff(ctx, s.retries, s.backoff, func(attempt int) error {
		return s.clearRequestNotices(ctx, actorID, conn.RequesterID)
	})
	if err != nil {
		return fmt.Errorf("accept: clear request notifications: %w", err)
	}
	slog.Info("Accepted connection", "connection", connectionID)
	return nil
}

// clearRequestNotices marks every unread request notification from
// requesterID to receiverID read, one write per notification.
func (s *Service) clearRequestNotices(ctx context.Context, receiverID, requesterID string) error {
	found, err := s.store.FindNotifications(ctx, receiverID, requesterID, models.KindConnectionRequest)
	if err != nil {
		return err
	}
	var errs []error
	for _, n := range found {
		if n.IsRead {
			continue
		}
		if err := s.store.MarkNotificationRead(ctx, n.ID); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Ignore declines a pending request addressed to actorID. Nobody is notified.
func (s *Service) Ignore(ctx context.Context, actorID, connectionID string) error {
	if _, err := s.load(ctx, actorID, connectionID); err != nil {
		return fmt.Errorf("ignore: %w", err)
	}
	if _, err := s.store.TransitionConnection(ctx, connectionID, models.StatusIgnored); err != nil {
		return fmt.Errorf("ignore: %w", err)
	}
	return nil
}
