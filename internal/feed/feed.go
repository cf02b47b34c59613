// Package feed keeps the live post feed and performs post engagement.
package feed

import (
	"cmp"
	"context"
	"slices"
	"sync"

	"github.com/pauljones0/agriconnect/internal/live"
	"github.com/pauljones0/agriconnect/internal/models"
)

// Feed is the live list of all posts, newest first. Every delivery is a full
// replacement of the previous list.
type Feed struct {
	mu       sync.Mutex
	posts    []models.Post
	loaded   bool
	onChange func([]models.Post)
	sub      live.Subscription
}

// Watch opens the feed. onChange, if set, receives each re-sorted list.
func Watch(ctx context.Context, store PostStore, onChange func([]models.Post)) *Feed {
	f := &Feed{onChange: onChange}
	f.sub = store.WatchPosts(ctx, f.update)
	return f
}

func (f *Feed) update(posts []models.Post) {
	sorted := SortNewestFirst(posts)
	f.mu.Lock()
	f.posts = sorted
	f.loaded = true
	f.mu.Unlock()
	if f.onChange != nil {
		f.onChange(slices.Clone(sorted))
	}
}

// Posts returns the current list.
func (f *Feed) Posts() []models.Post {
	f.mu.Lock()
	defer f.mu.Unlock()
	return slices.Clone(f.posts)
}

// Loaded reports whether the first snapshot has arrived.
func (f *Feed) Loaded() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.loaded
}

func (f *Feed) Stop() {
	f.sub.Stop()
}

// SortNewestFirst returns a copy of posts ordered by timestamp descending.
// Ties are broken by ID so repeated deliveries render identically.
func SortNewestFirst(posts []models.Post) []models.Post {
	out := slices.Clone(posts)
	slices.SortStableFunc(out, func(a, b models.Post) int {
		if c := b.Timestamp.Compare(a.Timestamp); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
	return out
}
