package storage

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/pauljones0/agriconnect/internal/live"
	"github.com/pauljones0/agriconnect/internal/models"
)

// Collection names.
const (
	usersCollection         = "users"
	postsCollection         = "posts"
	commentsCollection      = "comments"
	likesCollection         = "likes"
	connectionsCollection   = "connections"
	messagesCollection      = "messages"
	jobsCollection          = "jobs"
	savedJobsCollection     = "savedJobs"
	notificationsCollection = "notifications"
)

// MaxInValues is the most values a single membership ("in") query may carry.
const MaxInValues = 10

// Client is the Firestore-backed document store.
type Client struct {
	client *firestore.Client
}

func New(ctx context.Context, projectID string) (*Client, error) {
	client, err := firestore.NewClient(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("firestore.NewClient: %w", err)
	}
	return &Client{client: client}, nil
}

// NewFromClient wraps an existing Firestore client.
func NewFromClient(client *firestore.Client) *Client {
	return &Client{client: client}
}

func (c *Client) Close() error {
	return c.client.Close()
}

func (c *Client) col(name string) *firestore.CollectionRef {
	return c.client.Collection(name)
}

// translate maps Firestore status codes onto the model sentinels.
func translate(err error) error {
	if err == nil {
		return nil
	}
	switch status.Code(err) {
	case codes.NotFound:
		return fmt.Errorf("%w: %v", models.ErrNotFound, err)
	case codes.AlreadyExists:
		return fmt.Errorf("%w: %v", models.ErrAlreadyExists, err)
	}
	return err
}

// getDoc reads one document into a T. A missing document yields nil, nil.
func getDoc[T any](ctx context.Context, ref *firestore.DocumentRef) (*T, error) {
	doc, err := ref.Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get %s: %w", ref.Path, err)
	}
	if !doc.Exists() {
		return nil, nil
	}
	var v T
	if err := doc.DataTo(&v); err != nil {
		return nil, fmt.Errorf("failed to unmarshal %s: %w", ref.Path, err)
	}
	return &v, nil
}

// getAll runs a one-shot query.
func getAll[T any](ctx context.Context, q firestore.Query) ([]T, error) {
	iter := q.Documents(ctx)
	defer iter.Stop()

	var items []T
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, err
		}
		var v T
		if err := doc.DataTo(&v); err != nil {
			slog.Warn("Skipping undecodable document", "path", doc.Ref.Path, "error", err)
			continue
		}
		items = append(items, v)
	}
	return items, nil
}

func streamEnded(err error) bool {
	return err == iterator.Done ||
		errors.Is(err, context.Canceled) ||
		status.Code(err) == codes.Canceled
}

// watchQuery delivers the full result set of q to fn every time it changes.
// Stop cancels the listener and waits for the delivery goroutine to exit.
func watchQuery[T any](ctx context.Context, q firestore.Query, name string, fn func([]T)) live.Subscription {
	ctx, cancel := context.WithCancel(ctx)
	iter := q.Snapshots(ctx)
	done := make(chan struct{})

	go func() {
		defer close(done)
		defer iter.Stop()
		for {
			snap, err := iter.Next()
			if err != nil {
				if !streamEnded(err) {
					slog.Error("Live query failed", "query", name, "error", err)
					live.ReportError(ctx, fmt.Errorf("live query %s: %w", name, translate(err)))
				}
				return
			}
			docs, err := snap.Documents.GetAll()
			if err != nil {
				slog.Error("Failed to read live query snapshot", "query", name, "error", err)
				continue
			}
			items := make([]T, 0, len(docs))
			for _, doc := range docs {
				var v T
				if err := doc.DataTo(&v); err != nil {
					slog.Warn("Skipping undecodable document", "path", doc.Ref.Path, "error", err)
					continue
				}
				items = append(items, v)
			}
			if ctx.Err() != nil {
				return
			}
			fn(items)
		}
	}()

	return live.Once(func() {
		cancel()
		<-done
	})
}

// watchDoc delivers a single document (nil when missing) every time it changes.
func watchDoc[T any](ctx context.Context, ref *firestore.DocumentRef, fn func(*T)) live.Subscription {
	ctx, cancel := context.WithCancel(ctx)
	iter := ref.Snapshots(ctx)
	done := make(chan struct{})

	go func() {
		defer close(done)
		defer iter.Stop()
		for {
			snap, err := iter.Next()
			if err != nil {
				if !streamEnded(err) {
					slog.Error("Live document failed", "path", ref.Path, "error", err)
					live.ReportError(ctx, fmt.Errorf("live document %s: %w", ref.Path, translate(err)))
				}
				return
			}
			if ctx.Err() != nil {
				return
			}
			if !snap.Exists() {
				fn(nil)
				continue
			}
			var v T
			if err := snap.DataTo(&v); err != nil {
				slog.Warn("Skipping undecodable document", "path", ref.Path, "error", err)
				continue
			}
			fn(&v)
		}
	}()

	return live.Once(func() {
		cancel()
		<-done
	})
}
