package app

import (
	"context"
	"fmt"

	"github.com/pauljones0/agriconnect/internal/feed"
	"github.com/pauljones0/agriconnect/internal/messaging"
	"github.com/pauljones0/agriconnect/internal/models"
	"github.com/pauljones0/agriconnect/internal/search"
)

// CreatePost publishes a post for the signed-in user.
func (a *App) CreatePost(ctx context.Context, content, mediaURL string) error {
	u, err := a.user()
	if err != nil {
		return a.fail("create_post", err)
	}
	_, err = a.posts.CreatePost(ctx, u.ID, content, mediaURL)
	return a.fail("create_post", err)
}

// TrackPost opens the comment, like and author queries behind one post.
// Tracking an already-tracked post is a no-op.
func (a *App) TrackPost(ctx context.Context, postID string) error {
	_, err := a.tracker(ctx, postID)
	return a.fail("track_post", err)
}

func (a *App) tracker(ctx context.Context, postID string) (*feed.Engagement, error) {
	u, err := a.user()
	if err != nil {
		return nil, err
	}
	a.selectMu.Lock()
	defer a.selectMu.Unlock()

	a.mu.Lock()
	e, ok := a.engagements[postID]
	a.mu.Unlock()
	if ok {
		return e, nil
	}
	post, err := a.deps.Store.GetPost(ctx, postID)
	if err != nil {
		return nil, fmt.Errorf("load post: %w", err)
	}
	if post == nil {
		return nil, fmt.Errorf("post %s: %w", postID, models.ErrNotFound)
	}
	e = a.posts.Track(a.ctx, u.ID, *post, func(v feed.EngagementView) {
		a.emit(EventEngagement, v)
	})
	a.mu.Lock()
	a.engagements[postID] = e
	a.mu.Unlock()
	return e, nil
}

// UntrackPost closes the queries opened by TrackPost.
func (a *App) UntrackPost(postID string) {
	a.selectMu.Lock()
	defer a.selectMu.Unlock()
	a.mu.Lock()
	e, ok := a.engagements[postID]
	delete(a.engagements, postID)
	a.mu.Unlock()
	if ok {
		e.Stop()
	}
}

// ToggleLike likes or unlikes postID based on the live like state.
func (a *App) ToggleLike(ctx context.Context, postID string) error {
	e, err := a.tracker(ctx, postID)
	if err != nil {
		return a.fail("toggle_like", err)
	}
	return a.fail("toggle_like", e.ToggleLike(ctx))
}

// Comment adds a comment to postID.
func (a *App) Comment(ctx context.Context, postID, text string) error {
	e, err := a.tracker(ctx, postID)
	if err != nil {
		return a.fail("comment", err)
	}
	return a.fail("comment", e.Comment(ctx, text))
}

// Repost shares postID on the signed-in user's behalf.
func (a *App) Repost(ctx context.Context, postID string) error {
	e, err := a.tracker(ctx, postID)
	if err != nil {
		return a.fail("repost", err)
	}
	return a.fail("repost", e.Repost(ctx))
}

// Connect sends a connection request to userID.
func (a *App) Connect(ctx context.Context, userID string) error {
	u, err := a.user()
	if err != nil {
		return a.fail("connect", err)
	}
	_, err = a.network.Connect(ctx, u.ID, userID)
	return a.fail("connect", err)
}

// AcceptConnection accepts a pending request addressed to the signed-in user.
func (a *App) AcceptConnection(ctx context.Context, connectionID string) error {
	u, err := a.user()
	if err != nil {
		return a.fail("accept_connection", err)
	}
	return a.fail("accept_connection", a.network.Accept(ctx, u.ID, connectionID))
}

// IgnoreConnection ignores a pending request addressed to the signed-in user.
func (a *App) IgnoreConnection(ctx context.Context, connectionID string) error {
	u, err := a.user()
	if err != nil {
		return a.fail("ignore_connection", err)
	}
	return a.fail("ignore_connection", a.network.Ignore(ctx, u.ID, connectionID))
}

// OpenConversation selects partnerID's thread, closing the previous one
// before the new subscriptions open.
func (a *App) OpenConversation(partnerID string) error {
	u, err := a.user()
	if err != nil {
		return a.fail("open_conversation", err)
	}
	a.selectMu.Lock()
	defer a.selectMu.Unlock()

	a.mu.Lock()
	old := a.conversation
	a.conversation = nil
	a.mu.Unlock()
	if old != nil {
		old.Stop()
	}

	conv := messaging.WatchConversation(a.ctx, a.deps.Store, u.ID, partnerID, func(msgs []models.Message) {
		a.emit(EventConversation, ConversationData{PartnerID: partnerID, Messages: msgs})
	})
	a.mu.Lock()
	a.conversation = conv
	a.mu.Unlock()
	return nil
}

// CloseConversation deselects the current thread.
func (a *App) CloseConversation() {
	a.selectMu.Lock()
	defer a.selectMu.Unlock()
	a.mu.Lock()
	old := a.conversation
	a.conversation = nil
	a.mu.Unlock()
	if old != nil {
		old.Stop()
	}
}

// SendMessage sends to the selected conversation partner.
func (a *App) SendMessage(ctx context.Context, text, mediaURL string) error {
	u, err := a.user()
	if err != nil {
		return a.fail("send_message", err)
	}
	a.mu.Lock()
	conv := a.conversation
	a.mu.Unlock()
	if conv == nil {
		return a.fail("send_message", fmt.Errorf("no conversation selected: %w", models.ErrNotPermitted))
	}
	_, err = a.messages.Send(ctx, u.ID, conv.PartnerID(), text, mediaURL)
	return a.fail("send_message", err)
}

// Search replaces the current search. A blank query shows the empty state
// without subscribing to anything.
func (a *App) Search(query string) error {
	u, err := a.user()
	if err != nil {
		return a.fail("search", err)
	}
	a.selectMu.Lock()
	defer a.selectMu.Unlock()

	a.mu.Lock()
	old := a.search
	a.search = nil
	a.mu.Unlock()
	if old != nil {
		old.Stop()
	}

	ix := search.Watch(a.ctx, a.deps.Store, u.ID, query, func(r search.Results) {
		a.emit(EventSearch, r)
	})
	a.mu.Lock()
	a.search = ix
	a.mu.Unlock()
	return nil
}

// PostJob publishes a listing and alerts matching growers.
func (a *App) PostJob(ctx context.Context, job models.Job) error {
	u, err := a.user()
	if err != nil {
		return a.fail("post_job", err)
	}
	_, err = a.jobs.PostJob(ctx, u.ID, job)
	return a.fail("post_job", err)
}

// ToggleSavedJob bookmarks or un-bookmarks jobID.
func (a *App) ToggleSavedJob(ctx context.Context, jobID string) error {
	u, err := a.user()
	if err != nil {
		return a.fail("toggle_saved_job", err)
	}
	v := a.currentViews()
	if v == nil {
		return a.fail("toggle_saved_job", ErrSignedOut)
	}
	_, err = a.jobs.ToggleSaved(ctx, u.ID, jobID, v.board.IsSaved(jobID))
	return a.fail("toggle_saved_job", err)
}

// FilterJobs sets the job board's text filter.
func (a *App) FilterJobs(query string) error {
	v := a.currentViews()
	if v == nil {
		return a.fail("filter_jobs", ErrSignedOut)
	}
	v.board.Filter(query)
	return nil
}
