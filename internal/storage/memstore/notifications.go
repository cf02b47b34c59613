package memstore

import (
	"context"
	"fmt"

	"github.com/pauljones0/agriconnect/internal/live"
	"github.com/pauljones0/agriconnect/internal/models"
)

func (s *Store) CreateNotification(ctx context.Context, n models.Notification) error {
	s.mu.Lock()
	if err := s.enter("CreateNotification"); err != nil {
		s.mu.Unlock()
		return err
	}
	s.notifications[n.ID] = n
	p := s.changed()
	s.mu.Unlock()
	p.flush()
	return nil
}

// addNotices stores notices as part of the caller's write. Callers hold s.mu.
func (s *Store) addNotices(notices []models.Notification) {
	for _, n := range notices {
		s.notifications[n.ID] = n
	}
}

func (s *Store) WatchNotifications(ctx context.Context, userID string, fn func([]models.Notification)) live.Subscription {
	return s.watch(ctx, "WatchNotifications", func() func() {
		items := collect(s.notifications, func(n models.Notification) bool { return n.UserID == userID })
		return func() { fn(items) }
	})
}

func (s *Store) FindNotifications(ctx context.Context, recipientID, actorID string, kind models.NotificationKind) ([]models.Notification, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter("FindNotifications"); err != nil {
		return nil, err
	}
	return collect(s.notifications, func(n models.Notification) bool {
		return n.UserID == recipientID && n.ActorID == actorID && n.Type == kind
	}), nil
}

func (s *Store) MarkNotificationRead(ctx context.Context, id string) error {
	s.mu.Lock()
	if err := s.enter("MarkNotificationRead"); err != nil {
		s.mu.Unlock()
		return err
	}
	n, ok := s.notifications[id]
	if !ok {
		s.mu.Unlock()
		return fmt.Errorf("failed to mark notification %s read: %w", id, models.ErrNotFound)
	}
	n.IsRead = true
	s.notifications[id] = n
	p := s.changed()
	s.mu.Unlock()
	p.flush()
	return nil
}
