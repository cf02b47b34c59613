// Package messaging keeps conversation partners and conversations live and
// sends direct messages.
package messaging

import (
	"cmp"
	"context"
	"fmt"
	"log/slog"
	"slices"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/pauljones0/agriconnect/internal/live"
	"github.com/pauljones0/agriconnect/internal/models"
	"github.com/pauljones0/agriconnect/internal/util"
)

// Inbox lists the viewer's conversation partners: everyone they share an
// accepted connection with. Profiles are fetched in batches that respect the
// store's membership-query limit, and a lookup started for an older
// connection set never replaces the result of a newer one.
type Inbox struct {
	store     MessageStore
	viewerID  string
	batchSize int
	onChange  func([]models.User)

	ctx    context.Context
	cancel context.CancelFunc
	merger *live.Merger[models.Connection]
	subs   live.Group
	wg     sync.WaitGroup

	emitMu   sync.Mutex
	mu       sync.Mutex
	seq      uint64
	lastIDs  []string
	partners []models.User
	stopped  bool
}

// WatchInbox opens the inbox for viewerID.
func WatchInbox(ctx context.Context, store MessageStore, viewerID string, batchSize int, onChange func([]models.User)) *Inbox {
	if batchSize <= 0 {
		batchSize = 10
	}
	ctx, cancel := context.WithCancel(ctx)
	in := &Inbox{
		store:     store,
		viewerID:  viewerID,
		batchSize: batchSize,
		onChange:  onChange,
		ctx:       ctx,
		cancel:    cancel,
		partners:  []models.User{},
	}
	in.merger = live.NewMerger(2, mergeByID, in.connectionsChanged)
	in.subs.Add(live.Func(in.merger.Stop))
	in.subs.Add(store.WatchConnections(ctx, models.RoleRequester, viewerID, in.merger.Source(0)))
	in.subs.Add(store.WatchConnections(ctx, models.RoleReceiver, viewerID, in.merger.Source(1)))
	return in
}

func mergeByID(parts [][]models.Connection) []models.Connection {
	seen := make(map[string]bool)
	var out []models.Connection
	for _, part := range parts {
		for _, c := range part {
			if !seen[c.ID] {
				seen[c.ID] = true
				out = append(out, c)
			}
		}
	}
	return out
}

// PartnerIDs returns the sorted, de-duplicated IDs of viewerID's accepted connections.
func PartnerIDs(viewerID string, conns []models.Connection) []string {
	var ids []string
	for _, c := range conns {
		if c.Status == models.StatusAccepted && c.Involves(viewerID) {
			ids = append(ids, c.Other(viewerID))
		}
	}
	slices.Sort(ids)
	return slices.Compact(ids)
}

func (in *Inbox) connectionsChanged(conns []models.Connection) {
	ids := PartnerIDs(in.viewerID, conns)

	in.mu.Lock()
	if in.stopped || (in.seq > 0 && slices.Equal(ids, in.lastIDs)) {
		in.mu.Unlock()
		return
	}
	in.seq++
	seq := in.seq
	in.lastIDs = ids
	in.wg.Add(1)
	in.mu.Unlock()

	go func() {
		defer in.wg.Done()
		users, err := in.lookup(in.ctx, ids)
		if err != nil {
			if in.ctx.Err() == nil {
				slog.Error("Failed to load conversation partners", "user", in.viewerID, "error", err)
			}
			return
		}
		in.deliver(seq, users)
	}()
}

func (in *Inbox) lookup(ctx context.Context, ids []string) ([]models.User, error) {
	batches := util.Chunk(ids, in.batchSize)
	results := make([][]models.User, len(batches))

	g, ctx := errgroup.WithContext(ctx)
	for i, batch := range batches {
		g.Go(func() error {
			users, err := in.store.GetUsersByIDs(ctx, batch)
			if err != nil {
				return fmt.Errorf("batch %d: %w", i, err)
			}
			results[i] = users
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	users := make([]models.User, 0, len(ids))
	for _, r := range results {
		users = append(users, r...)
	}
	slices.SortFunc(users, func(a, b models.User) int {
		return cmp.Or(cmp.Compare(a.Name, b.Name), cmp.Compare(a.ID, b.ID))
	})
	return users, nil
}

func (in *Inbox) deliver(seq uint64, users []models.User) {
	in.emitMu.Lock()
	defer in.emitMu.Unlock()

	in.mu.Lock()
	if in.stopped || seq != in.seq {
		in.mu.Unlock()
		return
	}
	in.partners = users
	in.mu.Unlock()

	if in.onChange != nil {
		in.onChange(slices.Clone(users))
	}
}

// Partners returns the latest partner list.
func (in *Inbox) Partners() []models.User {
	in.mu.Lock()
	defer in.mu.Unlock()
	return slices.Clone(in.partners)
}

// Stop closes the subscriptions, cancels outstanding lookups and waits for them.
func (in *Inbox) Stop() {
	in.mu.Lock()
	in.stopped = true
	in.mu.Unlock()
	in.subs.Stop()
	in.cancel()
	in.wg.Wait()
}
