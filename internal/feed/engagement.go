package feed

import (
	"context"
	"slices"
	"sync"

	"github.com/pauljones0/agriconnect/internal/live"
	"github.com/pauljones0/agriconnect/internal/models"
)

// EngagementView is what a viewer sees under one post.
type EngagementView struct {
	PostID   string           `json:"postId"`
	Author   *models.User     `json:"author,omitempty"`
	Comments []models.Comment `json:"comments"`
	Liked    bool             `json:"liked"`
}

// Engagement tracks the comments, the viewer's like and the author profile
// of one post, and acts on the post on the viewer's behalf.
type Engagement struct {
	svc      *Service
	viewerID string
	postID   string
	subs     live.Group
	onChange func(EngagementView)

	emitMu     sync.Mutex // serializes apply so views are emitted in order
	mu         sync.Mutex
	view       EngagementView
	likeLoaded bool
}

// Track opens the live queries behind one post card.
func (s *Service) Track(ctx context.Context, viewerID string, post models.Post, onChange func(EngagementView)) *Engagement {
	e := &Engagement{
		svc:      s,
		viewerID: viewerID,
		postID:   post.ID,
		onChange: onChange,
		view:     EngagementView{PostID: post.ID, Comments: []models.Comment{}},
	}
	e.subs.Add(s.store.WatchUser(ctx, post.AuthorID, func(u *models.User) {
		e.apply(func(v *EngagementView) { v.Author = u })
	}))
	e.subs.Add(s.store.WatchComments(ctx, post.ID, func(cs []models.Comment) {
		cs = slices.Clone(cs)
		slices.SortStableFunc(cs, func(a, b models.Comment) int { return a.Timestamp.Compare(b.Timestamp) })
		e.apply(func(v *EngagementView) { v.Comments = cs })
	}))
	e.subs.Add(s.store.WatchLike(ctx, viewerID, post.ID, func(liked bool) {
		e.apply(func(v *EngagementView) {
			v.Liked = liked
			e.likeLoaded = true
		})
	}))
	return e
}

func (e *Engagement) apply(change func(v *EngagementView)) {
	e.emitMu.Lock()
	defer e.emitMu.Unlock()
	e.mu.Lock()
	change(&e.view)
	view := e.snapshot()
	e.mu.Unlock()
	if e.onChange != nil {
		e.onChange(view)
	}
}

func (e *Engagement) snapshot() EngagementView {
	v := e.view
	v.Comments = slices.Clone(e.view.Comments)
	return v
}

// View returns the current state.
func (e *Engagement) View() EngagementView {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.snapshot()
}

// ToggleLike likes the post if the viewer has not, otherwise unlikes it. The
// decision uses the live like state, and both directions are idempotent, so
// a double click cannot double count. Before the like state has arrived the
// like document decides: a like that finds one already there unlikes.
func (e *Engagement) ToggleLike(ctx context.Context) error {
	e.mu.Lock()
	liked, loaded := e.view.Liked, e.likeLoaded
	e.mu.Unlock()

	if loaded && liked {
		_, err := e.svc.Unlike(ctx, e.viewerID, e.postID)
		return err
	}
	created, err := e.svc.Like(ctx, e.viewerID, e.postID)
	if err != nil || created || loaded {
		return err
	}
	_, err = e.svc.Unlike(ctx, e.viewerID, e.postID)
	return err
}

func (e *Engagement) Comment(ctx context.Context, text string) error {
	_, err := e.svc.Comment(ctx, e.viewerID, e.postID, text)
	return err
}

func (e *Engagement) Repost(ctx context.Context) error {
	_, err := e.svc.Repost(ctx, e.viewerID, e.postID)
	return err
}

func (e *Engagement) Stop() {
	e.subs.Stop()
}
