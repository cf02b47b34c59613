package memstore

import (
	"context"
	"fmt"
	"slices"

	"github.com/pauljones0/agriconnect/internal/live"
	"github.com/pauljones0/agriconnect/internal/models"
)

func (s *Store) CreatePost(ctx context.Context, post models.Post) error {
	s.mu.Lock()
	if err := s.enter("CreatePost"); err != nil {
		s.mu.Unlock()
		return err
	}
	if _, ok := s.posts[post.ID]; ok {
		s.mu.Unlock()
		return fmt.Errorf("failed to create post %s: %w", post.ID, models.ErrAlreadyExists)
	}
	s.posts[post.ID] = post
	p := s.changed()
	s.mu.Unlock()
	p.flush()
	return nil
}

func (s *Store) GetPost(ctx context.Context, id string) (*models.Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter("GetPost"); err != nil {
		return nil, err
	}
	post, ok := s.posts[id]
	if !ok {
		return nil, nil
	}
	return &post, nil
}

func (s *Store) WatchPosts(ctx context.Context, fn func([]models.Post)) live.Subscription {
	return s.watch(ctx, "WatchPosts", func() func() {
		posts := collect(s.posts, nil)
		return func() { fn(posts) }
	})
}

func (s *Store) LikePost(ctx context.Context, like models.Like, notices ...models.Notification) (bool, error) {
	s.mu.Lock()
	if err := s.enter("LikePost"); err != nil {
		s.mu.Unlock()
		return false, err
	}
	id := models.LikeID(like.UserID, like.PostID)
	if _, ok := s.likes[id]; ok {
		s.mu.Unlock()
		return false, nil
	}
	post, ok := s.posts[like.PostID]
	if !ok {
		s.mu.Unlock()
		return false, fmt.Errorf("failed to like post %s: %w", like.PostID, models.ErrNotFound)
	}
	like.ID = id
	s.likes[id] = like
	post.LikesCount++
	s.posts[post.ID] = post
	s.addNotices(notices)
	p := s.changed()
	s.mu.Unlock()
	p.flush()
	return true, nil
}

func (s *Store) UnlikePost(ctx context.Context, userID, postID string) (bool, error) {
	s.mu.Lock()
	if err := s.enter("UnlikePost"); err != nil {
		s.mu.Unlock()
		return false, err
	}
	id := models.LikeID(userID, postID)
	if _, ok := s.likes[id]; !ok {
		s.mu.Unlock()
		return false, nil
	}
	delete(s.likes, id)
	if post, ok := s.posts[postID]; ok && post.LikesCount > 0 {
		post.LikesCount--
		s.posts[postID] = post
	}
	p := s.changed()
	s.mu.Unlock()
	p.flush()
	return true, nil
}

func (s *Store) AddComment(ctx context.Context, comment models.Comment, notices ...models.Notification) error {
	s.mu.Lock()
	if err := s.enter("AddComment"); err != nil {
		s.mu.Unlock()
		return err
	}
	post, ok := s.posts[comment.PostID]
	if !ok {
		s.mu.Unlock()
		return fmt.Errorf("failed to add comment to post %s: %w", comment.PostID, models.ErrNotFound)
	}
	s.comments[comment.ID] = comment
	post.CommentsCount++
	s.posts[post.ID] = post
	s.addNotices(notices)
	p := s.changed()
	s.mu.Unlock()
	p.flush()
	return nil
}

func (s *Store) Repost(ctx context.Context, repost models.Post, notices ...models.Notification) error {
	s.mu.Lock()
	if err := s.enter("Repost"); err != nil {
		s.mu.Unlock()
		return err
	}
	original, ok := s.posts[repost.OriginalPostID]
	if !ok {
		s.mu.Unlock()
		return fmt.Errorf("failed to repost %s: %w", repost.OriginalPostID, models.ErrNotFound)
	}
	s.posts[repost.ID] = repost
	original.RepostsCount++
	s.posts[original.ID] = original
	s.addNotices(notices)
	p := s.changed()
	s.mu.Unlock()
	p.flush()
	return nil
}

func (s *Store) WatchComments(ctx context.Context, postID string, fn func([]models.Comment)) live.Subscription {
	return s.watch(ctx, "WatchComments", func() func() {
		comments := collect(s.comments, func(c models.Comment) bool { return c.PostID == postID })
		slices.SortStableFunc(comments, func(a, b models.Comment) int { return byTime(a.Timestamp, b.Timestamp) })
		return func() { fn(comments) }
	})
}

func (s *Store) WatchLike(ctx context.Context, userID, postID string, fn func(bool)) live.Subscription {
	id := models.LikeID(userID, postID)
	return s.watch(ctx, "WatchLike", func() func() {
		_, liked := s.likes[id]
		return func() { fn(liked) }
	})
}
