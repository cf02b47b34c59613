// Package notifications keeps a user's live notification list and handles
// reading and opening notifications.
package notifications

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"

	"github.com/pauljones0/agriconnect/internal/live"
	"github.com/pauljones0/agriconnect/internal/models"
)

// Feed is the recipient's notifications, newest first. The store query is
// unordered so it needs no composite index; sorting happens here.
type Feed struct {
	store    NotificationStore
	userID   string
	onChange func([]models.Notification, int)
	sub      live.Subscription

	mu    sync.Mutex
	items []models.Notification
}

// Watch opens the notification feed for userID. onChange receives the
// sorted list and the unread count.
func Watch(ctx context.Context, store NotificationStore, userID string, onChange func([]models.Notification, int)) *Feed {
	f := &Feed{store: store, userID: userID, onChange: onChange}
	f.sub = store.WatchNotifications(ctx, userID, f.update)
	return f
}

// SortNewestFirst orders notifications by timestamp descending, then ID.
func SortNewestFirst(items []models.Notification) []models.Notification {
	out := slices.Clone(items)
	slices.SortStableFunc(out, func(a, b models.Notification) int {
		return cmp.Or(b.Timestamp.Compare(a.Timestamp), cmp.Compare(a.ID, b.ID))
	})
	return out
}

// Unread counts the notifications not yet read.
func Unread(items []models.Notification) int {
	n := 0
	for _, it := range items {
		if !it.IsRead {
			n++
		}
	}
	return n
}

func (f *Feed) update(items []models.Notification) {
	sorted := SortNewestFirst(items)
	f.mu.Lock()
	f.items = sorted
	f.mu.Unlock()
	if f.onChange != nil {
		f.onChange(slices.Clone(sorted), Unread(sorted))
	}
}

// Items returns the current list.
func (f *Feed) Items() []models.Notification {
	f.mu.Lock()
	defer f.mu.Unlock()
	return slices.Clone(f.items)
}

// UnreadCount returns the number of unread notifications.
func (f *Feed) UnreadCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return Unread(f.items)
}

// MarkAllRead flips every unread notification with its own write. A failed
// write does not stop the others; failures are returned joined.
func (f *Feed) MarkAllRead(ctx context.Context) (int, error) {
	var errs []error
	marked := 0
	for _, n := range f.Items() {
		if n.IsRead {
			continue
		}
		if err := f.store.MarkNotificationRead(ctx, n.ID); err != nil {
			errs = append(errs, fmt.Errorf("mark %s read: %w", n.ID, err))
			continue
		}
		marked++
	}
	if len(errs) > 0 {
		slog.Warn("Some notifications were not marked read", "user", f.userID, "marked", marked, "failed", len(errs))
	}
	return marked, errors.Join(errs...)
}

// Open marks n read if needed and returns where it leads. The route is
// returned even when the read flag could not be written.
func (f *Feed) Open(ctx context.Context, n models.Notification) (Route, error) {
	route := RouteFor(n)
	if n.IsRead {
		return route, nil
	}
	if err := f.store.MarkNotificationRead(ctx, n.ID); err != nil {
		return route, fmt.Errorf("open notification: %w", err)
	}
	return route, nil
}

// Find returns the notification with id from the current list.
func (f *Feed) Find(id string) (models.Notification, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	i := slices.IndexFunc(f.items, func(n models.Notification) bool { return n.ID == id })
	if i < 0 {
		return models.Notification{}, false
	}
	return f.items[i], true
}

func (f *Feed) Stop() {
	f.sub.Stop()
}
