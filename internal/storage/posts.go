package storage

import (
	"context"
	"fmt"

	"cloud.google.com/go/firestore"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/pauljones0/agriconnect/internal/live"
	"github.com/pauljones0/agriconnect/internal/models"
)

func (c *Client) CreatePost(ctx context.Context, post models.Post) error {
	if _, err := c.col(postsCollection).Doc(post.ID).Create(ctx, post); err != nil {
		return fmt.Errorf("failed to create post %s: %w", post.ID, translate(err))
	}
	return nil
}

func (c *Client) GetPost(ctx context.Context, id string) (*models.Post, error) {
	return getDoc[models.Post](ctx, c.col(postsCollection).Doc(id))
}

// WatchPosts streams every post. Order is left to the consumer.
func (c *Client) WatchPosts(ctx context.Context, fn func([]models.Post)) live.Subscription {
	return watchQuery(ctx, c.col(postsCollection).Query, "posts", fn)
}

// exists reads ref inside tx and reports whether the document is present.
func exists(tx *firestore.Transaction, ref *firestore.DocumentRef) (*firestore.DocumentSnapshot, bool, error) {
	snap, err := tx.Get(ref)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, false, nil
		}
		return nil, false, err
	}
	return snap, snap.Exists(), nil
}

// LikePost creates the like record under LikeID(like.UserID, like.PostID),
// increments the post's likesCount and writes notices in one transaction. It
// reports false when the like already existed, in which case nothing is written.
func (c *Client) LikePost(ctx context.Context, like models.Like, notices ...models.Notification) (bool, error) {
	postID := like.PostID
	likeRef := c.col(likesCollection).Doc(models.LikeID(like.UserID, postID))
	postRef := c.col(postsCollection).Doc(postID)

	var created bool
	err := c.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		created = false
		_, liked, err := exists(tx, likeRef)
		if err != nil {
			return err
		}
		if liked {
			return nil
		}
		if _, found, err := exists(tx, postRef); err != nil {
			return err
		} else if !found {
			return models.ErrNotFound
		}
		if err := tx.Create(likeRef, like); err != nil {
			return err
		}
		if err := tx.Update(postRef, []firestore.Update{{Path: "likesCount", Value: firestore.Increment(1)}}); err != nil {
			return err
		}
		created = true
		return c.createNotices(tx, notices)
	})
	if err != nil {
		return false, fmt.Errorf("failed to like post %s: %w", postID, translate(err))
	}
	return created, nil
}

// UnlikePost deletes the like record and decrements likesCount, never below
// zero. It reports false when there was no like to remove.
func (c *Client) UnlikePost(ctx context.Context, userID, postID string) (bool, error) {
	likeRef := c.col(likesCollection).Doc(models.LikeID(userID, postID))
	postRef := c.col(postsCollection).Doc(postID)

	var removed bool
	err := c.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		removed = false
		_, liked, err := exists(tx, likeRef)
		if err != nil {
			return err
		}
		if !liked {
			return nil
		}
		postSnap, found, err := exists(tx, postRef)
		if err != nil {
			return err
		}
		if err := tx.Delete(likeRef); err != nil {
			return err
		}
		removed = true
		if !found {
			return nil
		}
		var post models.Post
		if err := postSnap.DataTo(&post); err != nil {
			return err
		}
		if post.LikesCount <= 0 {
			return nil
		}
		return tx.Update(postRef, []firestore.Update{{Path: "likesCount", Value: firestore.Increment(-1)}})
	})
	if err != nil {
		return false, fmt.Errorf("failed to unlike post %s: %w", postID, translate(err))
	}
	return removed, nil
}

// AddComment writes the comment, increments commentsCount and writes notices together.
func (c *Client) AddComment(ctx context.Context, comment models.Comment, notices ...models.Notification) error {
	commentRef := c.col(commentsCollection).Doc(comment.ID)
	postRef := c.col(postsCollection).Doc(comment.PostID)

	err := c.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		if _, found, err := exists(tx, postRef); err != nil {
			return err
		} else if !found {
			return models.ErrNotFound
		}
		if err := tx.Create(commentRef, comment); err != nil {
			return err
		}
		if err := tx.Update(postRef, []firestore.Update{{Path: "commentsCount", Value: firestore.Increment(1)}}); err != nil {
			return err
		}
		return c.createNotices(tx, notices)
	})
	if err != nil {
		return fmt.Errorf("failed to add comment to post %s: %w", comment.PostID, translate(err))
	}
	return nil
}

// Repost writes the repost row, increments the original's repostsCount and
// writes notices together.
func (c *Client) Repost(ctx context.Context, repost models.Post, notices ...models.Notification) error {
	repostRef := c.col(postsCollection).Doc(repost.ID)
	originalRef := c.col(postsCollection).Doc(repost.OriginalPostID)

	err := c.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		if _, found, err := exists(tx, originalRef); err != nil {
			return err
		} else if !found {
			return models.ErrNotFound
		}
		if err := tx.Create(repostRef, repost); err != nil {
			return err
		}
		if err := tx.Update(originalRef, []firestore.Update{{Path: "repostsCount", Value: firestore.Increment(1)}}); err != nil {
			return err
		}
		return c.createNotices(tx, notices)
	})
	if err != nil {
		return fmt.Errorf("failed to repost %s: %w", repost.OriginalPostID, translate(err))
	}
	return nil
}

// WatchComments streams the comments of one post, oldest first.
func (c *Client) WatchComments(ctx context.Context, postID string, fn func([]models.Comment)) live.Subscription {
	q := c.col(commentsCollection).Where("postId", "==", postID).OrderBy("timestamp", firestore.Asc)
	return watchQuery(ctx, q, "comments:"+postID, fn)
}

// WatchLike reports whether userID currently likes postID.
func (c *Client) WatchLike(ctx context.Context, userID, postID string, fn func(bool)) live.Subscription {
	ref := c.col(likesCollection).Doc(models.LikeID(userID, postID))
	return watchDoc(ctx, ref, func(like *models.Like) {
		fn(like != nil)
	})
}
