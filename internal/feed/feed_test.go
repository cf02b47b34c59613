package feed

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/pauljones0/agriconnect/internal/live"
	"github.com/pauljones0/agriconnect/internal/models"
	"github.com/pauljones0/agriconnect/internal/storage/memstore"
	"github.com/pauljones0/agriconnect/internal/validator"
)

var t0 = time.Date(2025, 4, 1, 8, 0, 0, 0, time.UTC)

func newTestService(store PostStore) *Service {
	s := NewService(store, validator.New())
	n := 0
	s.newID = func() string { n++; return fmt.Sprintf("id%d", n) }
	clock := t0
	s.now = func() time.Time { clock = clock.Add(time.Minute); return clock }
	s.notices.Now = s.now
	return s
}

func TestFeed_SortedNewestFirstOnEveryUpdate(t *testing.T) {
	store := memstore.New()
	ctx := context.Background()
	_ = store.CreatePost(ctx, models.Post{ID: "old", AuthorID: "a", Content: "old", Timestamp: t0})
	_ = store.CreatePost(ctx, models.Post{ID: "mid", AuthorID: "a", Content: "mid", Timestamp: t0.Add(time.Hour)})

	var deliveries [][]models.Post
	f := Watch(ctx, store, func(ps []models.Post) { deliveries = append(deliveries, ps) })
	defer f.Stop()

	if !f.Loaded() || len(deliveries) != 1 {
		t.Fatalf("expected one initial delivery, got %d", len(deliveries))
	}
	if got := ids(f.Posts()); got != "mid,old" {
		t.Errorf("initial order = %s", got)
	}

	_ = store.CreatePost(ctx, models.Post{ID: "new", AuthorID: "a", Content: "new", Timestamp: t0.Add(2 * time.Hour)})
	if got := ids(f.Posts()); got != "new,mid,old" {
		t.Errorf("order after insert = %s", got)
	}
	if got := ids(deliveries[len(deliveries)-1]); got != "new,mid,old" {
		t.Errorf("delivered order = %s", got)
	}
}

func ids(posts []models.Post) string {
	out := ""
	for i, p := range posts {
		if i > 0 {
			out += ","
		}
		out += p.ID
	}
	return out
}

func TestService_CreatePost(t *testing.T) {
	store := memstore.New()
	svc := newTestService(store)
	ctx := context.Background()

	tests := []struct {
		name    string
		content string
		media   string
		wantErr error
	}{
		{"text", "First rains of the season", "", nil},
		{"media only", "", "data:image/png;base64,AA==", nil},
		{"empty", "", "", models.ErrEmptyContent},
		{"blank", "   ", "", models.ErrEmptyContent},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			post, err := svc.CreatePost(ctx, "author", tt.content, tt.media)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("CreatePost() error = %v, want %v", err, tt.wantErr)
			}
			if err != nil {
				return
			}
			stored, _ := store.GetPost(ctx, post.ID)
			if stored == nil || stored.LikesCount != 0 || stored.CommentsCount != 0 || stored.RepostsCount != 0 {
				t.Errorf("stored post = %+v", stored)
			}
		})
	}
}

func TestService_LikeIsIdempotentAndNotifies(t *testing.T) {
	store := memstore.New()
	svc := newTestService(store)
	ctx := context.Background()
	post, _ := svc.CreatePost(ctx, "author", "Drone spraying demo", "")

	for i := 0; i < 2; i++ {
		if _, err := svc.Like(ctx, "fan", post.ID); err != nil {
			t.Fatalf("Like: %v", err)
		}
	}
	got, _ := store.GetPost(ctx, post.ID)
	if got.LikesCount != 1 {
		t.Errorf("likesCount = %d, want 1", got.LikesCount)
	}
	notices, _ := store.FindNotifications(ctx, "author", "fan", models.KindLike)
	if len(notices) != 1 || notices[0].Content != "liked your post." {
		t.Errorf("notices = %+v", notices)
	}

	// Self-like counts but does not notify.
	if _, err := svc.Like(ctx, "author", post.ID); err != nil {
		t.Fatalf("self Like: %v", err)
	}
	self, _ := store.FindNotifications(ctx, "author", "author", models.KindLike)
	if len(self) != 0 {
		t.Errorf("self-like notified: %+v", self)
	}

	for i := 0; i < 3; i++ {
		_, _ = svc.Unlike(ctx, "fan", post.ID)
	}
	got, _ = store.GetPost(ctx, post.ID)
	if got.LikesCount != 1 {
		t.Errorf("likesCount after unlike = %d, want 1 (the author's like)", got.LikesCount)
	}
}

func TestService_LikeMissingPost(t *testing.T) {
	svc := newTestService(memstore.New())
	if _, err := svc.Like(context.Background(), "fan", "nope"); !errors.Is(err, models.ErrNotFound) {
		t.Errorf("Like(missing) = %v, want ErrNotFound", err)
	}
}

func TestService_Comment(t *testing.T) {
	store := memstore.New()
	svc := newTestService(store)
	ctx := context.Background()
	post, _ := svc.CreatePost(ctx, "author", "New irrigation line", "")

	if _, err := svc.Comment(ctx, "fan", post.ID, "  "); !errors.Is(err, models.ErrEmptyContent) {
		t.Errorf("blank comment = %v", err)
	}
	if _, err := svc.Comment(ctx, "fan", post.ID, "How much water does it save per acre each season?"); err != nil {
		t.Fatalf("Comment: %v", err)
	}
	got, _ := store.GetPost(ctx, post.ID)
	if got.CommentsCount != 1 {
		t.Errorf("commentsCount = %d, want 1", got.CommentsCount)
	}
	notices, _ := store.FindNotifications(ctx, "author", "fan", models.KindComment)
	want := `commented on your post: "How much water does it save pe..."`
	if len(notices) != 1 || notices[0].Content != want {
		t.Errorf("notices = %+v, want content %q", notices, want)
	}
}

func TestService_CommentWriteFailureLeavesNothing(t *testing.T) {
	store := memstore.New()
	svc := newTestService(store)
	ctx := context.Background()
	post, _ := svc.CreatePost(ctx, "author", "Soil pH results", "")

	store.InjectError("AddComment", errors.New("unavailable"))
	if _, err := svc.Comment(ctx, "fan", post.ID, "Nice"); err == nil {
		t.Fatal("expected error")
	}
	got, _ := store.GetPost(ctx, post.ID)
	notices, _ := store.FindNotifications(ctx, "author", "fan", models.KindComment)
	if got.CommentsCount != 0 || len(notices) != 0 {
		t.Errorf("partial write: count=%d notices=%d", got.CommentsCount, len(notices))
	}
}

func TestService_RepostPointsAtRoot(t *testing.T) {
	store := memstore.New()
	svc := newTestService(store)
	ctx := context.Background()
	original, _ := svc.CreatePost(ctx, "author", "Seed bank open day", "")

	first, err := svc.Repost(ctx, "u1", original.ID)
	if err != nil {
		t.Fatalf("Repost: %v", err)
	}
	second, err := svc.Repost(ctx, "u2", first.ID)
	if err != nil {
		t.Fatalf("Repost of repost: %v", err)
	}

	if first.OriginalPostID != original.ID || second.OriginalPostID != original.ID {
		t.Errorf("lineage = %s, %s; want %s", first.OriginalPostID, second.OriginalPostID, original.ID)
	}
	if second.RepostedBy != "u2" || second.Content != original.Content {
		t.Errorf("second repost = %+v", second)
	}
	got, _ := store.GetPost(ctx, original.ID)
	if got.RepostsCount != 2 {
		t.Errorf("repostsCount = %d, want 2", got.RepostsCount)
	}
	notices, _ := store.FindNotifications(ctx, "author", "u2", models.KindRepost)
	if len(notices) != 1 {
		t.Errorf("root author not notified: %+v", notices)
	}
}

func TestEngagement_ToggleAndStop(t *testing.T) {
	store := memstore.New()
	svc := newTestService(store)
	ctx := context.Background()
	_ = store.CreateUser(ctx, models.User{ID: "author", Name: "Amina"})
	post, _ := svc.CreatePost(ctx, "author", "Greenhouse tour", "")

	var views []EngagementView
	e := svc.Track(ctx, "fan", post, func(v EngagementView) { views = append(views, v) })

	v := e.View()
	if v.Liked || v.Author == nil || v.Author.Name != "Amina" {
		t.Fatalf("initial view = %+v", v)
	}

	if err := e.ToggleLike(ctx); err != nil {
		t.Fatalf("ToggleLike: %v", err)
	}
	if !e.View().Liked {
		t.Error("expected liked after toggle")
	}
	if err := e.ToggleLike(ctx); err != nil {
		t.Fatalf("ToggleLike: %v", err)
	}
	if e.View().Liked {
		t.Error("expected unliked after second toggle")
	}

	_ = e.Comment(ctx, "second")
	_ = e.Comment(ctx, "third")
	cs := e.View().Comments
	if len(cs) != 2 || cs[0].Content != "second" {
		t.Errorf("comments = %+v", cs)
	}

	e.Stop()
	n := len(views)
	_, _ = svc.Comment(ctx, "other", post.ID, "after stop")
	if len(views) != n {
		t.Error("engagement delivered after Stop")
	}
}

// pendingLikeStore never delivers the viewer's like state, as when the first
// snapshot has not arrived yet.
type pendingLikeStore struct {
	*memstore.Store
}

func (pendingLikeStore) WatchLike(ctx context.Context, userID, postID string, fn func(bool)) live.Subscription {
	return live.Nop
}

func TestEngagement_ToggleBeforeLikeStateLoads(t *testing.T) {
	mem := memstore.New()
	svc := newTestService(pendingLikeStore{mem})
	ctx := context.Background()
	post, _ := svc.CreatePost(ctx, "author", "Maize harvest", "")

	tests := []struct {
		name      string
		likeFirst bool
		wantCount int
	}{
		{"already liked post is unliked", true, 0},
		{"unliked post is liked", false, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _ = svc.Unlike(ctx, "fan", post.ID)
			if tt.likeFirst {
				if _, err := svc.Like(ctx, "fan", post.ID); err != nil {
					t.Fatal(err)
				}
			}
			e := svc.Track(ctx, "fan", post, nil)
			defer e.Stop()

			if err := e.ToggleLike(ctx); err != nil {
				t.Fatalf("ToggleLike: %v", err)
			}
			got, _ := mem.GetPost(ctx, post.ID)
			if got.LikesCount != tt.wantCount {
				t.Errorf("likesCount = %d, want %d", got.LikesCount, tt.wantCount)
			}
		})
	}
}
