// Package notifier builds and delivers in-app notifications for the side
// effects of user actions.
package notifier

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/pauljones0/agriconnect/internal/models"
	"github.com/pauljones0/agriconnect/internal/util"
)

const commentPreviewLength = 30

// Store is where standalone notifications are written.
type Store interface {
	CreateNotification(ctx context.Context, n models.Notification) error
}

// Builder creates notification documents. Methods return a slice so the
// result can be handed straight to a store write as its trailing notices;
// it is empty when the actor would be notifying themselves.
type Builder struct {
	NewID func() string
	Now   func() time.Time
}

// NewBuilder returns a Builder using random UUIDs and the wall clock.
func NewBuilder() Builder {
	return Builder{NewID: uuid.NewString, Now: time.Now}
}

func (b Builder) build(recipientID, actorID string, kind models.NotificationKind, content, linkID string) []models.Notification {
	if recipientID == "" || recipientID == actorID {
		return nil
	}
	return []models.Notification{{
		ID:        b.NewID(),
		UserID:    recipientID,
		ActorID:   actorID,
		Type:      kind,
		Content:   content,
		IsRead:    false,
		Timestamp: b.Now(),
		LinkID:    linkID,
	}}
}

func (b Builder) Like(actorID string, post models.Post) []models.Notification {
	return b.build(post.AuthorID, actorID, models.KindLike, "liked your post.", post.ID)
}

func (b Builder) Comment(actorID string, post models.Post, text string) []models.Notification {
	content := `commented on your post: "` + util.Truncate(text, commentPreviewLength, "...") + `"`
	return b.build(post.AuthorID, actorID, models.KindComment, content, post.ID)
}

func (b Builder) Repost(actorID string, original models.Post) []models.Notification {
	return b.build(original.AuthorID, actorID, models.KindRepost, "reposted your post.", original.ID)
}

func (b Builder) ConnectionRequest(requesterID, receiverID string) []models.Notification {
	return b.build(receiverID, requesterID, models.KindConnectionRequest, "sent you a connection request.", requesterID)
}

// ConnectionAccepted tells the requester their request went through. It
// reuses the connection_request kind so it routes to the network view.
func (b Builder) ConnectionAccepted(receiverID, requesterID string) []models.Notification {
	return b.build(requesterID, receiverID, models.KindConnectionRequest, "accepted your connection request.", receiverID)
}

func (b Builder) Message(senderID, receiverID string) []models.Notification {
	return b.build(receiverID, senderID, models.KindMessage, "sent you a new message.", senderID)
}

func (b Builder) JobAlert(posterID, recipientID string, job models.Job) []models.Notification {
	content := fmt.Sprintf("posted a new %s opportunity: %s", job.CropFocus, job.Title)
	return b.build(recipientID, posterID, models.KindJobAlert, content, job.ID)
}

// Emitter writes notifications that are not part of another write, pacing
// large fan-outs so they do not exhaust the store's write quota.
type Emitter struct {
	Builder
	store       Store
	rateLimiter *rate.Limiter
}

// NewEmitter returns an Emitter writing at most perSecond notifications per second.
func NewEmitter(store Store, perSecond float64) *Emitter {
	burst := int(perSecond)
	if burst < 1 {
		burst = 1
	}
	return &Emitter{
		Builder:     NewBuilder(),
		store:       store,
		rateLimiter: rate.NewLimiter(rate.Limit(perSecond), burst),
	}
}

// Send writes each notice, waiting on the rate limiter between writes. A
// failed write does not stop the rest; all failures are returned joined.
func (e *Emitter) Send(ctx context.Context, notices ...models.Notification) (int, error) {
	var errs []error
	sent := 0
	for _, n := range notices {
		if err := e.rateLimiter.Wait(ctx); err != nil {
			errs = append(errs, fmt.Errorf("rate limiter wait: %w", err))
			break
		}
		if err := e.store.CreateNotification(ctx, n); err != nil {
			slog.Warn("Failed to deliver notification", "recipient", n.UserID, "type", n.Type, "error", err)
			errs = append(errs, fmt.Errorf("notify %s: %w", n.UserID, err))
			continue
		}
		sent++
	}
	return sent, errors.Join(errs...)
}
