package messaging

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/pauljones0/agriconnect/internal/models"
	"github.com/pauljones0/agriconnect/internal/notifier"
)

// Service sends direct messages.
type Service struct {
	store MessageStore
	// RequireAcceptedConnection rejects messages between users who do not
	// share an accepted connection at the time of sending.
	RequireAcceptedConnection bool

	notices notifier.Builder
	newID   func() string
	now     func() time.Time
}

func NewService(store MessageStore, requireAccepted bool) *Service {
	return &Service{
		store:                     store,
		RequireAcceptedConnection: requireAccepted,
		notices:                   notifier.NewBuilder(),
		newID:                     uuid.NewString,
		now:                       time.Now,
	}
}

// Send writes a message and the receiver's notification together. Text or
// media is required.
func (s *Service) Send(ctx context.Context, senderID, receiverID, text, mediaURL string) (models.Message, error) {
	if strings.TrimSpace(text) == "" && mediaURL == "" {
		return models.Message{}, models.ErrEmptyContent
	}
	if senderID == receiverID {
		return models.Message{}, fmt.Errorf("message to self: %w", models.ErrNotPermitted)
	}
	if s.RequireAcceptedConnection {
		conn, err := s.store.GetConnection(ctx, models.ConnectionID(senderID, receiverID))
		if err != nil {
			return models.Message{}, fmt.Errorf("send message: %w", err)
		}
		if conn == nil || conn.Status != models.StatusAccepted {
			return models.Message{}, models.ErrNotConnected
		}
	}

	msg := models.Message{
		ID:         s.newID(),
		SenderID:   senderID,
		ReceiverID: receiverID,
		Content:    text,
		MediaURL:   mediaURL,
		Timestamp:  s.now(),
	}
	if err := s.store.CreateMessage(ctx, msg, s.notices.Message(senderID, receiverID)...); err != nil {
		return models.Message{}, fmt.Errorf("send message: %w", err)
	}
	return msg, nil
}
