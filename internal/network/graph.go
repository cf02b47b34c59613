// Package network maintains a user's connection graph and performs
// connection requests, acceptances and ignores.
package network

import (
	"context"
	"slices"
	"sync"

	"github.com/pauljones0/agriconnect/internal/live"
	"github.com/pauljones0/agriconnect/internal/models"
)

// Entry is a connection together with the profile of the other participant.
type Entry struct {
	Connection models.Connection `json:"connection"`
	User       *models.User      `json:"user,omitempty"`
}

// View partitions the viewer's connections.
type View struct {
	Pending   []Entry       `json:"pending"`   // requests waiting on the viewer
	Sent      []Entry       `json:"sent"`      // requests waiting on someone else
	Accepted  []Entry       `json:"accepted"`  // established connections
	Suggested []models.User `json:"suggested"` // users with no connection to the viewer
}

// Relation describes how the viewer stands with one other user.
type Relation struct {
	ConnectionID string                  `json:"connectionId"`
	Status       models.ConnectionStatus `json:"status"`
	IsRequester  bool                    `json:"isRequester"`
}

const (
	sourceAsRequester = iota
	sourceAsReceiver
)

// Graph merges the viewer's outgoing and incoming connections with the user
// directory. It recomputes from the latest snapshot of every source, so it
// does not matter which subscription delivers first, and it publishes
// nothing until both roles and the directory have delivered.
type Graph struct {
	viewerID string
	onChange func(View)
	merger   *live.Merger[models.Connection]
	subs     live.Group

	emitMu      sync.Mutex
	mu          sync.Mutex
	conns       []models.Connection
	users       []models.User
	connsLoaded bool
	usersLoaded bool
	view        View
}

// Watch opens the graph for viewerID.
func Watch(ctx context.Context, store ConnectionStore, viewerID string, onChange func(View)) *Graph {
	g := &Graph{viewerID: viewerID, onChange: onChange, view: View{}}
	g.merger = live.NewMerger(2, MergeConnections, func(conns []models.Connection) {
		g.refresh(func() { g.conns, g.connsLoaded = conns, true })
	})
	g.subs.Add(live.Func(g.merger.Stop))
	g.subs.Add(store.WatchConnections(ctx, models.RoleRequester, viewerID, g.merger.Source(sourceAsRequester)))
	g.subs.Add(store.WatchConnections(ctx, models.RoleReceiver, viewerID, g.merger.Source(sourceAsReceiver)))
	g.subs.Add(store.WatchUsers(ctx, func(users []models.User) {
		users = slices.Clone(users)
		g.refresh(func() { g.users, g.usersLoaded = users, true })
	}))
	return g
}

func (g *Graph) refresh(mutate func()) {
	g.emitMu.Lock()
	defer g.emitMu.Unlock()

	g.mu.Lock()
	mutate()
	if !g.connsLoaded || !g.usersLoaded {
		g.mu.Unlock()
		return
	}
	view := Partition(g.viewerID, g.conns, g.users)
	g.view = view
	g.mu.Unlock()

	if g.onChange != nil {
		g.onChange(view)
	}
}

// View returns the current partitions.
func (g *Graph) View() View {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.view
}

// Connections returns the merged connection list.
func (g *Graph) Connections() []models.Connection {
	g.mu.Lock()
	defer g.mu.Unlock()
	return slices.Clone(g.conns)
}

// Relation reports the viewer's connection with userID, if any.
func (g *Graph) Relation(userID string) (Relation, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	for _, c := range g.conns {
		if c.Involves(userID) {
			return Relation{
				ConnectionID: c.ID,
				Status:       c.Status,
				IsRequester:  c.RequesterID == g.viewerID,
			}, true
		}
	}
	return Relation{}, false
}

func (g *Graph) Stop() {
	g.subs.Stop()
}

// MergeConnections unions the per-role snapshots, keyed by connection ID,
// newest first.
func MergeConnections(parts [][]models.Connection) []models.Connection {
	seen := make(map[string]bool)
	var out []models.Connection
	for _, part := range parts {
		for _, c := range part {
			if seen[c.ID] {
				continue
			}
			seen[c.ID] = true
			out = append(out, c)
		}
	}
	slices.SortStableFunc(out, func(a, b models.Connection) int {
		return b.Timestamp.Compare(a.Timestamp)
	})
	return out
}

// Partition derives the view for viewerID from its connections and the user directory.
func Partition(viewerID string, conns []models.Connection, users []models.User) View {
	byID := make(map[string]*models.User, len(users))
	for i := range users {
		byID[users[i].ID] = &users[i]
	}
	connected := make(map[string]bool, len(conns))

	v := View{
		Pending:   []Entry{},
		Sent:      []Entry{},
		Accepted:  []Entry{},
		Suggested: []models.User{},
	}
	for _, c := range conns {
		other := c.Other(viewerID)
		connected[other] = true
		entry := Entry{Connection: c, User: byID[other]}
		switch c.Status {
		case models.StatusPending:
			if c.ReceiverID == viewerID {
				v.Pending = append(v.Pending, entry)
			} else {
				v.Sent = append(v.Sent, entry)
			}
		case models.StatusAccepted:
			v.Accepted = append(v.Accepted, entry)
		}
	}
	for _, u := range users {
		if u.ID != viewerID && !connected[u.ID] {
			v.Suggested = append(v.Suggested, u)
		}
	}
	return v
}
