package memstore

import (
	"context"
	"fmt"

	"github.com/pauljones0/agriconnect/internal/live"
	"github.com/pauljones0/agriconnect/internal/models"
	"github.com/pauljones0/agriconnect/internal/storage"
)

func (s *Store) GetUser(ctx context.Context, id string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter("GetUser"); err != nil {
		return nil, err
	}
	u, ok := s.users[id]
	if !ok {
		return nil, nil
	}
	return &u, nil
}

func (s *Store) CreateUser(ctx context.Context, user models.User) error {
	s.mu.Lock()
	if err := s.enter("CreateUser"); err != nil {
		s.mu.Unlock()
		return err
	}
	if _, ok := s.users[user.ID]; ok {
		s.mu.Unlock()
		return fmt.Errorf("failed to create user %s: %w", user.ID, models.ErrAlreadyExists)
	}
	s.users[user.ID] = user
	p := s.changed()
	s.mu.Unlock()
	p.flush()
	return nil
}

func (s *Store) UpdateUser(ctx context.Context, id string, patch models.ProfilePatch) error {
	s.mu.Lock()
	if err := s.enter("UpdateUser"); err != nil {
		s.mu.Unlock()
		return err
	}
	if patch.IsEmpty() {
		s.mu.Unlock()
		return nil
	}
	u, ok := s.users[id]
	if !ok {
		s.mu.Unlock()
		return fmt.Errorf("failed to update user %s: %w", id, models.ErrNotFound)
	}
	s.users[id] = patch.Apply(u)
	p := s.changed()
	s.mu.Unlock()
	p.flush()
	return nil
}

func (s *Store) ListUsers(ctx context.Context) ([]models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter("ListUsers"); err != nil {
		return nil, err
	}
	return collect(s.users, nil), nil
}

func (s *Store) GetUsersByIDs(ctx context.Context, ids []string) ([]models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter("GetUsersByIDs"); err != nil {
		return nil, err
	}
	if len(ids) > storage.MaxInValues {
		return nil, fmt.Errorf("%w: %d values", errTooManyValues, len(ids))
	}
	want := make(map[string]bool, len(ids))
	for _, id := range ids {
		want[id] = true
	}
	return collect(s.users, func(u models.User) bool { return want[u.ID] }), nil
}

func (s *Store) WatchUser(ctx context.Context, id string, fn func(*models.User)) live.Subscription {
	return s.watch(ctx, "WatchUser", func() func() {
		u, ok := s.users[id]
		if !ok {
			return func() { fn(nil) }
		}
		return func() { fn(&u) }
	})
}

func (s *Store) WatchUsers(ctx context.Context, fn func([]models.User)) live.Subscription {
	return s.watch(ctx, "WatchUsers", func() func() {
		users := collect(s.users, nil)
		return func() { fn(users) }
	})
}
