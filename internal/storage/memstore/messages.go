package memstore

import (
	"context"
	"slices"

	"github.com/pauljones0/agriconnect/internal/live"
	"github.com/pauljones0/agriconnect/internal/models"
)

func (s *Store) CreateMessage(ctx context.Context, msg models.Message, notices ...models.Notification) error {
	s.mu.Lock()
	if err := s.enter("CreateMessage"); err != nil {
		s.mu.Unlock()
		return err
	}
	s.messages[msg.ID] = msg
	s.addNotices(notices)
	p := s.changed()
	s.mu.Unlock()
	p.flush()
	return nil
}

func (s *Store) WatchMessages(ctx context.Context, senderID, receiverID string, fn func([]models.Message)) live.Subscription {
	return s.watch(ctx, "WatchMessages", func() func() {
		msgs := collect(s.messages, func(m models.Message) bool {
			return m.SenderID == senderID && m.ReceiverID == receiverID
		})
		slices.SortStableFunc(msgs, func(a, b models.Message) int { return byTime(a.Timestamp, b.Timestamp) })
		return func() { fn(msgs) }
	})
}
