// Package live holds the primitives shared by every live query: a
// stoppable subscription handle, a group that closes many handles on one
// exit path, and a fan-in that recomputes a view from the latest snapshot
// of each source.
package live

import "sync"

// Subscription is a standing query. Stop ends it; after Stop returns the
// handler receives no further snapshots. Stop must not be called from inside
// the subscription's own handler.
type Subscription interface {
	Stop()
}

// Func adapts a plain function to Subscription.
type Func func()

func (f Func) Stop() {
	if f != nil {
		f()
	}
}

type once struct {
	once sync.Once
	stop func()
}

func (o *once) Stop() {
	o.once.Do(o.stop)
}

// Once returns a Subscription whose Stop runs stop at most once.
func Once(stop func()) Subscription {
	return &once{stop: stop}
}

// Nop is a subscription with nothing to stop.
var Nop Subscription = Func(nil)

// Group owns a set of subscriptions that are torn down together.
type Group struct {
	mu      sync.Mutex
	subs    []Subscription
	stopped bool
}

// Add registers sub with the group. If the group is already stopped, sub is
// stopped immediately.
func (g *Group) Add(sub Subscription) {
	if sub == nil {
		return
	}
	g.mu.Lock()
	if g.stopped {
		g.mu.Unlock()
		sub.Stop()
		return
	}
	g.subs = append(g.subs, sub)
	g.mu.Unlock()
}

// Stop stops every subscription in reverse order of registration.
func (g *Group) Stop() {
	g.mu.Lock()
	subs := g.subs
	g.subs = nil
	g.stopped = true
	g.mu.Unlock()

	for i := len(subs) - 1; i >= 0; i-- {
		subs[i].Stop()
	}
}

// Stopped reports whether Stop has been called.
func (g *Group) Stopped() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.stopped
}
