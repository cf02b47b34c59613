package feed

import (
	"context"

	"github.com/pauljones0/agriconnect/internal/live"
	"github.com/pauljones0/agriconnect/internal/models"
)

// PostStore abstracts the storage layer for posts and their engagement.
type PostStore interface {
	WatchPosts(ctx context.Context, fn func([]models.Post)) live.Subscription
	CreatePost(ctx context.Context, post models.Post) error
	GetPost(ctx context.Context, id string) (*models.Post, error)
	LikePost(ctx context.Context, like models.Like, notices ...models.Notification) (bool, error)
	UnlikePost(ctx context.Context, userID, postID string) (bool, error)
	AddComment(ctx context.Context, comment models.Comment, notices ...models.Notification) error
	Repost(ctx context.Context, repost models.Post, notices ...models.Notification) error
	WatchComments(ctx context.Context, postID string, fn func([]models.Comment)) live.Subscription
	WatchLike(ctx context.Context, userID, postID string, fn func(bool)) live.Subscription
	WatchUser(ctx context.Context, id string, fn func(*models.User)) live.Subscription
}
