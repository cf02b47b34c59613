package models

import "time"

// Post is a feed entry. A repost is a new Post carrying lineage pointers.
type Post struct {
	ID             string    `firestore:"id" json:"id" validate:"required"`
	AuthorID       string    `firestore:"authorId" json:"authorId" validate:"required"`
	Content        string    `firestore:"content" json:"content" validate:"required_without=MediaURL"`
	MediaURL       string    `firestore:"mediaUrl,omitempty" json:"mediaUrl,omitempty"`
	Timestamp      time.Time `firestore:"timestamp" json:"timestamp" validate:"required"`
	LikesCount     int       `firestore:"likesCount" json:"likesCount" validate:"gte=0"`
	CommentsCount  int       `firestore:"commentsCount" json:"commentsCount" validate:"gte=0"`
	RepostsCount   int       `firestore:"repostsCount" json:"repostsCount" validate:"gte=0"`
	OriginalPostID string    `firestore:"originalPostId,omitempty" json:"originalPostId,omitempty"`
	RepostedBy     string    `firestore:"repostedBy,omitempty" json:"repostedBy,omitempty"`
}

// IsRepost reports whether the post carries repost lineage.
func (p Post) IsRepost() bool {
	return p.OriginalPostID != ""
}

// Comment is an append-only reply to a post.
type Comment struct {
	ID        string    `firestore:"id" json:"id" validate:"required"`
	PostID    string    `firestore:"postId" json:"postId" validate:"required"`
	AuthorID  string    `firestore:"authorId" json:"authorId" validate:"required"`
	Content   string    `firestore:"content" json:"content" validate:"required,notblank"`
	Timestamp time.Time `firestore:"timestamp" json:"timestamp"`
}

// Like records that a user likes a post. Its document ID is LikeID(UserID, PostID).
type Like struct {
	ID        string    `firestore:"id" json:"id"`
	UserID    string    `firestore:"userId" json:"userId"`
	PostID    string    `firestore:"postId" json:"postId"`
	Timestamp time.Time `firestore:"timestamp" json:"timestamp"`
}

// LikeID is the composite document key that makes a like unique per (user, post).
func LikeID(userID, postID string) string {
	return userID + "_" + postID
}
