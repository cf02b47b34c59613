// Package jobs keeps the live job board and performs job writes.
package jobs

import (
	"context"
	"sync"

	"github.com/pauljones0/agriconnect/internal/live"
	"github.com/pauljones0/agriconnect/internal/models"
)

// View is the board partitioned for one viewer. Every list keeps the feed
// order (newest first) and has the text filter applied.
type View struct {
	All         []models.Job `json:"all"`
	Recommended []models.Job `json:"recommended"`
	Mine        []models.Job `json:"mine"`
	Saved       []models.Job `json:"saved"`
}

// Board joins the live job list with the viewer's bookmarks.
type Board struct {
	onChange func(View)
	subs     live.Group

	emitMu sync.Mutex
	mu     sync.Mutex
	viewer models.User
	query  string
	jobs   []models.Job
	saved  map[string]string // job ID to bookmark ID
}

// WatchBoard opens the board for viewer.
func WatchBoard(ctx context.Context, store JobStore, viewer models.User, onChange func(View)) *Board {
	b := &Board{onChange: onChange, viewer: viewer, saved: map[string]string{}}
	b.subs.Add(store.WatchJobs(ctx, b.setJobs))
	b.subs.Add(store.WatchSavedJobs(ctx, viewer.ID, b.setSaved))
	return b
}

func (b *Board) setJobs(jobs []models.Job) {
	b.refresh(func() { b.jobs = jobs })
}

func (b *Board) setSaved(saved []models.SavedJob) {
	b.refresh(func() {
		b.saved = make(map[string]string, len(saved))
		for _, s := range saved {
			b.saved[s.JobID] = s.ID
		}
	})
}

// SetViewer replaces the profile recommendations are computed from.
func (b *Board) SetViewer(u models.User) {
	b.refresh(func() { b.viewer = u })
}

// Filter sets the text filter. A blank query shows everything.
func (b *Board) Filter(query string) {
	b.refresh(func() { b.query = query })
}

func (b *Board) refresh(mutate func()) {
	b.emitMu.Lock()
	defer b.emitMu.Unlock()

	b.mu.Lock()
	mutate()
	v := b.compute()
	b.mu.Unlock()

	if b.onChange != nil && !b.subs.Stopped() {
		b.onChange(v)
	}
}

func (b *Board) compute() View {
	v := View{
		All:         []models.Job{},
		Recommended: []models.Job{},
		Mine:        []models.Job{},
		Saved:       []models.Job{},
	}
	for _, job := range b.jobs {
		if !MatchesQuery(job, b.query) {
			continue
		}
		v.All = append(v.All, job)
		if Matches(job, b.viewer) {
			v.Recommended = append(v.Recommended, job)
		}
		if job.AuthorID == b.viewer.ID {
			v.Mine = append(v.Mine, job)
		}
		if _, ok := b.saved[job.ID]; ok {
			v.Saved = append(v.Saved, job)
		}
	}
	return v
}

// View returns the current partitions.
func (b *Board) View() View {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.compute()
}

// IsSaved reports whether the viewer has bookmarked jobID.
func (b *Board) IsSaved(jobID string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	_, ok := b.saved[jobID]
	return ok
}

func (b *Board) Stop() {
	b.subs.Stop()
}
