package feed

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/pauljones0/agriconnect/internal/models"
	"github.com/pauljones0/agriconnect/internal/notifier"
	"github.com/pauljones0/agriconnect/internal/validator"
)

// Service performs post writes. Counter updates and author notifications are
// written in the same transaction as the row they belong to.
type Service struct {
	store    PostStore
	validate *validator.Validator
	notices  notifier.Builder
	newID    func() string
	now      func() time.Time
}

func NewService(store PostStore, v *validator.Validator) *Service {
	return &Service{
		store:    store,
		validate: v,
		notices:  notifier.NewBuilder(),
		newID:    uuid.NewString,
		now:      time.Now,
	}
}

// CreatePost publishes a post with zeroed counters. Content or media is required.
func (s *Service) CreatePost(ctx context.Context, authorID, content, mediaURL string) (models.Post, error) {
	if strings.TrimSpace(content) == "" && mediaURL == "" {
		return models.Post{}, models.ErrEmptyContent
	}
	post := models.Post{
		ID:        s.newID(),
		AuthorID:  authorID,
		Content:   content,
		MediaURL:  mediaURL,
		Timestamp: s.now(),
	}
	if err := s.validate.ValidateStruct(post); err != nil {
		return models.Post{}, err
	}
	if err := s.store.CreatePost(ctx, post); err != nil {
		return models.Post{}, fmt.Errorf("create post: %w", err)
	}
	slog.Info("Created post", "post", post.ID, "author", authorID)
	return post, nil
}

func (s *Service) getPost(ctx context.Context, postID string) (models.Post, error) {
	post, err := s.store.GetPost(ctx, postID)
	if err != nil {
		return models.Post{}, err
	}
	if post == nil {
		return models.Post{}, fmt.Errorf("post %s: %w", postID, models.ErrNotFound)
	}
	return *post, nil
}

// Like records userID's like on postID. Liking an already-liked post is a
// no-op and reports false.
func (s *Service) Like(ctx context.Context, userID, postID string) (bool, error) {
	post, err := s.getPost(ctx, postID)
	if err != nil {
		return false, fmt.Errorf("like: %w", err)
	}
	like := models.Like{
		ID:        models.LikeID(userID, postID),
		UserID:    userID,
		PostID:    postID,
		Timestamp: s.now(),
	}
	created, err := s.store.LikePost(ctx, like, s.notices.Like(userID, post)...)
	if err != nil {
		return false, fmt.Errorf("like: %w", err)
	}
	return created, nil
}

// Unlike removes userID's like. It reports false if there was none.
func (s *Service) Unlike(ctx context.Context, userID, postID string) (bool, error) {
	removed, err := s.store.UnlikePost(ctx, userID, postID)
	if err != nil {
		return false, fmt.Errorf("unlike: %w", err)
	}
	return removed, nil
}

// Comment appends a comment and bumps the post's comment count.
func (s *Service) Comment(ctx context.Context, userID, postID, text string) (models.Comment, error) {
	if strings.TrimSpace(text) == "" {
		return models.Comment{}, models.ErrEmptyContent
	}
	post, err := s.getPost(ctx, postID)
	if err != nil {
		return models.Comment{}, fmt.Errorf("comment: %w", err)
	}
	comment := models.Comment{
		ID:        s.newID(),
		PostID:    postID,
		AuthorID:  userID,
		Content:   text,
		Timestamp: s.now(),
	}
	if err := s.validate.ValidateStruct(comment); err != nil {
		return models.Comment{}, err
	}
	if err := s.store.AddComment(ctx, comment, s.notices.Comment(userID, post, text)...); err != nil {
		return models.Comment{}, fmt.Errorf("comment: %w", err)
	}
	return comment, nil
}

// Repost shares postID into userID's name. Reposting a repost points at,
// counts against and notifies the author of the root post.
func (s *Service) Repost(ctx context.Context, userID, postID string) (models.Post, error) {
	original, err := s.getPost(ctx, postID)
	if err != nil {
		return models.Post{}, fmt.Errorf("repost: %w", err)
	}
	if original.IsRepost() {
		if original, err = s.getPost(ctx, original.OriginalPostID); err != nil {
			return models.Post{}, fmt.Errorf("repost: %w", err)
		}
	}
	repost := models.Post{
		ID:             s.newID(),
		AuthorID:       original.AuthorID,
		Content:        original.Content,
		MediaURL:       original.MediaURL,
		Timestamp:      s.now(),
		OriginalPostID: original.ID,
		RepostedBy:     userID,
	}
	if err := s.store.Repost(ctx, repost, s.notices.Repost(userID, original)...); err != nil {
		return models.Post{}, fmt.Errorf("repost: %w", err)
	}
	slog.Info("Reposted", "original", original.ID, "repost", repost.ID, "by", userID)
	return repost, nil
}
