package memstore

import (
	"context"
	"fmt"

	"github.com/pauljones0/agriconnect/internal/live"
	"github.com/pauljones0/agriconnect/internal/models"
)

func (s *Store) CreateConnection(ctx context.Context, conn models.Connection, notices ...models.Notification) error {
	s.mu.Lock()
	if err := s.enter("CreateConnection"); err != nil {
		s.mu.Unlock()
		return err
	}
	if _, ok := s.connections[conn.ID]; ok {
		s.mu.Unlock()
		return fmt.Errorf("failed to create connection %s: %w", conn.ID, models.ErrAlreadyExists)
	}
	s.connections[conn.ID] = conn
	s.addNotices(notices)
	p := s.changed()
	s.mu.Unlock()
	p.flush()
	return nil
}

func (s *Store) GetConnection(ctx context.Context, id string) (*models.Connection, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter("GetConnection"); err != nil {
		return nil, err
	}
	conn, ok := s.connections[id]
	if !ok {
		return nil, nil
	}
	return &conn, nil
}

func (s *Store) TransitionConnection(ctx context.Context, id string, to models.ConnectionStatus, notices ...models.Notification) (*models.Connection, error) {
	s.mu.Lock()
	if err := s.enter("TransitionConnection"); err != nil {
		s.mu.Unlock()
		return nil, err
	}
	conn, ok := s.connections[id]
	if !ok {
		s.mu.Unlock()
		return nil, fmt.Errorf("failed to set connection %s to %s: %w", id, to, models.ErrNotFound)
	}
	if !models.CanTransition(conn.Status, to) {
		s.mu.Unlock()
		return nil, fmt.Errorf("failed to set connection %s to %s: %w: from %s", id, to, models.ErrInvalidTransition, conn.Status)
	}
	conn.Status = to
	s.connections[id] = conn
	s.addNotices(notices)
	p := s.changed()
	s.mu.Unlock()
	p.flush()
	return &conn, nil
}

func (s *Store) WatchConnections(ctx context.Context, role models.ConnectionRole, userID string, fn func([]models.Connection)) live.Subscription {
	return s.watch(ctx, "WatchConnections", func() func() {
		conns := collect(s.connections, func(c models.Connection) bool {
			if role == models.RoleRequester {
				return c.RequesterID == userID
			}
			return c.ReceiverID == userID
		})
		return func() { fn(conns) }
	})
}
