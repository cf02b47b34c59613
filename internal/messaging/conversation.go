package messaging

import (
	"cmp"
	"context"
	"slices"
	"sync"

	"github.com/pauljones0/agriconnect/internal/live"
	"github.com/pauljones0/agriconnect/internal/models"
)

// Conversation is the live message thread between the viewer and one
// partner, oldest first. It merges the two directional queries and
// recomputes whenever either delivers.
type Conversation struct {
	viewerID  string
	partnerID string
	onChange  func([]models.Message)
	merger    *live.Merger[models.Message]
	subs      live.Group

	mu       sync.Mutex
	messages []models.Message
}

// WatchConversation opens the thread between viewerID and partnerID.
func WatchConversation(ctx context.Context, store MessageStore, viewerID, partnerID string, onChange func([]models.Message)) *Conversation {
	c := &Conversation{viewerID: viewerID, partnerID: partnerID, onChange: onChange, messages: []models.Message{}}
	c.merger = live.NewMerger(2, MergeMessages, c.update)
	c.subs.Add(live.Func(c.merger.Stop))
	c.subs.Add(store.WatchMessages(ctx, viewerID, partnerID, c.merger.Source(0)))
	c.subs.Add(store.WatchMessages(ctx, partnerID, viewerID, c.merger.Source(1)))
	return c
}

// MergeMessages unions both directions sorted by timestamp ascending.
func MergeMessages(parts [][]models.Message) []models.Message {
	var out []models.Message
	for _, p := range parts {
		out = append(out, p...)
	}
	slices.SortStableFunc(out, func(a, b models.Message) int {
		return cmp.Or(a.Timestamp.Compare(b.Timestamp), cmp.Compare(a.ID, b.ID))
	})
	return out
}

// update runs under the merger's lock, so deliveries are already serialized.
func (c *Conversation) update(msgs []models.Message) {
	c.mu.Lock()
	c.messages = msgs
	c.mu.Unlock()
	if c.onChange != nil {
		c.onChange(slices.Clone(msgs))
	}
}

func (c *Conversation) PartnerID() string { return c.partnerID }

// Messages returns the current thread.
func (c *Conversation) Messages() []models.Message {
	c.mu.Lock()
	defer c.mu.Unlock()
	return slices.Clone(c.messages)
}

func (c *Conversation) Stop() {
	c.subs.Stop()
}
