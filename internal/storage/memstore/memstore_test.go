package memstore

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/pauljones0/agriconnect/internal/models"
)

var t0 = time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)

func seedPost(t *testing.T, s *Store, id string) {
	t.Helper()
	if err := s.CreatePost(context.Background(), models.Post{ID: id, AuthorID: "author", Content: "Harvest day", Timestamp: t0}); err != nil {
		t.Fatalf("CreatePost: %v", err)
	}
}

func TestLikePost_UniqueAndCounted(t *testing.T) {
	s := New()
	ctx := context.Background()
	seedPost(t, s, "p1")

	like := models.Like{UserID: "u1", PostID: "p1", Timestamp: t0}
	created, err := s.LikePost(ctx, like)
	if err != nil || !created {
		t.Fatalf("first LikePost = %v, %v", created, err)
	}
	created, err = s.LikePost(ctx, like)
	if err != nil || created {
		t.Fatalf("second LikePost = %v, %v; want false, nil", created, err)
	}

	post, _ := s.GetPost(ctx, "p1")
	if post.LikesCount != 1 {
		t.Errorf("likesCount = %d, want 1", post.LikesCount)
	}

	for i := 0; i < 2; i++ {
		if _, err := s.UnlikePost(ctx, "u1", "p1"); err != nil {
			t.Fatalf("UnlikePost: %v", err)
		}
	}
	post, _ = s.GetPost(ctx, "p1")
	if post.LikesCount != 0 {
		t.Errorf("likesCount = %d after double unlike, want 0", post.LikesCount)
	}
}

func TestLikePost_MissingPost(t *testing.T) {
	s := New()
	_, err := s.LikePost(context.Background(), models.Like{UserID: "u1", PostID: "gone"})
	if !errors.Is(err, models.ErrNotFound) {
		t.Errorf("LikePost on missing post = %v, want ErrNotFound", err)
	}
}

func TestCreateConnection_PairUnique(t *testing.T) {
	s := New()
	ctx := context.Background()
	id := models.ConnectionID("a", "b")

	if err := s.CreateConnection(ctx, models.Connection{ID: id, RequesterID: "a", ReceiverID: "b", Status: models.StatusPending}); err != nil {
		t.Fatalf("CreateConnection: %v", err)
	}
	err := s.CreateConnection(ctx, models.Connection{ID: id, RequesterID: "b", ReceiverID: "a", Status: models.StatusPending})
	if !errors.Is(err, models.ErrAlreadyExists) {
		t.Fatalf("reverse CreateConnection = %v, want ErrAlreadyExists", err)
	}
}

func TestTransitionConnection(t *testing.T) {
	s := New()
	ctx := context.Background()
	id := models.ConnectionID("a", "b")
	_ = s.CreateConnection(ctx, models.Connection{ID: id, RequesterID: "a", ReceiverID: "b", Status: models.StatusPending})

	conn, err := s.TransitionConnection(ctx, id, models.StatusAccepted)
	if err != nil || conn.Status != models.StatusAccepted {
		t.Fatalf("accept = %+v, %v", conn, err)
	}
	if _, err := s.TransitionConnection(ctx, id, models.StatusIgnored); !errors.Is(err, models.ErrInvalidTransition) {
		t.Errorf("ignore after accept = %v, want ErrInvalidTransition", err)
	}
	if _, err := s.TransitionConnection(ctx, "missing", models.StatusAccepted); !errors.Is(err, models.ErrNotFound) {
		t.Errorf("missing connection = %v, want ErrNotFound", err)
	}
}

func TestWatch_InitialAndUpdates(t *testing.T) {
	s := New()
	ctx := context.Background()
	seedPost(t, s, "p1")

	var got [][]models.Comment
	sub := s.WatchComments(ctx, "p1", func(cs []models.Comment) { got = append(got, cs) })

	if len(got) != 1 || len(got[0]) != 0 {
		t.Fatalf("initial delivery = %v", got)
	}

	_ = s.AddComment(ctx, models.Comment{ID: "c2", PostID: "p1", AuthorID: "u", Content: "second", Timestamp: t0.Add(2 * time.Minute)})
	_ = s.AddComment(ctx, models.Comment{ID: "c1", PostID: "p1", AuthorID: "u", Content: "first", Timestamp: t0.Add(time.Minute)})

	last := got[len(got)-1]
	if len(last) != 2 || last[0].ID != "c1" || last[1].ID != "c2" {
		t.Fatalf("comments not ordered ascending: %+v", last)
	}

	sub.Stop()
	n := len(got)
	_ = s.AddComment(ctx, models.Comment{ID: "c3", PostID: "p1", AuthorID: "u", Content: "late", Timestamp: t0})
	if len(got) != n {
		t.Errorf("delivery after Stop")
	}
}

func TestWatch_StopsWhenContextDone(t *testing.T) {
	s := New()
	ctx, cancel := context.WithCancel(context.Background())

	calls := make(chan int, 10)
	n := 0
	s.WatchPosts(ctx, func([]models.Post) {
		n++
		calls <- n
	})
	<-calls
	cancel()

	deadline := time.After(time.Second)
	for {
		s.mu.Lock()
		remaining := len(s.watchers)
		s.mu.Unlock()
		if remaining == 0 {
			break
		}
		select {
		case <-deadline:
			t.Fatal("watcher not removed after context cancel")
		case <-time.After(5 * time.Millisecond):
		}
	}
	seedPost(t, s, "p1")
	select {
	case <-calls:
		t.Error("delivery after context cancel")
	default:
	}
}

func TestWatchJobs_NewestFirst(t *testing.T) {
	s := New()
	ctx := context.Background()
	for i := 0; i < 3; i++ {
		_ = s.CreateJob(ctx, models.Job{ID: fmt.Sprintf("j%d", i), PostedAt: t0.Add(time.Duration(i) * time.Hour)})
	}
	var jobs []models.Job
	sub := s.WatchJobs(ctx, func(js []models.Job) { jobs = js })
	defer sub.Stop()

	if len(jobs) != 3 || jobs[0].ID != "j2" || jobs[2].ID != "j0" {
		t.Errorf("jobs not newest first: %+v", jobs)
	}
}

func TestGetUsersByIDs_Limit(t *testing.T) {
	s := New()
	ctx := context.Background()
	ids := make([]string, 11)
	for i := range ids {
		ids[i] = fmt.Sprintf("u%d", i)
		_ = s.CreateUser(ctx, models.User{ID: ids[i], Name: ids[i]})
	}
	if _, err := s.GetUsersByIDs(ctx, ids); !errors.Is(err, errTooManyValues) {
		t.Errorf("11 ids = %v, want errTooManyValues", err)
	}
	users, err := s.GetUsersByIDs(ctx, ids[:3])
	if err != nil || len(users) != 3 {
		t.Errorf("3 ids = %d users, %v", len(users), err)
	}
}

func TestInjectErrorN(t *testing.T) {
	s := New()
	ctx := context.Background()
	boom := errors.New("boom")
	s.InjectErrorN("CreateNotification", boom, 1)

	if err := s.CreateNotification(ctx, models.Notification{ID: "n1", UserID: "u"}); !errors.Is(err, boom) {
		t.Fatalf("first call = %v, want boom", err)
	}
	if err := s.CreateNotification(ctx, models.Notification{ID: "n1", UserID: "u"}); err != nil {
		t.Fatalf("second call = %v, want nil", err)
	}
	if s.Calls("CreateNotification") != 2 {
		t.Errorf("Calls = %d, want 2", s.Calls("CreateNotification"))
	}
}

func TestFindNotificationsAndMarkRead(t *testing.T) {
	s := New()
	ctx := context.Background()
	_ = s.CreateNotification(ctx, models.Notification{ID: "n1", UserID: "b", ActorID: "a", Type: models.KindConnectionRequest})
	_ = s.CreateNotification(ctx, models.Notification{ID: "n2", UserID: "b", ActorID: "a", Type: models.KindLike})

	found, err := s.FindNotifications(ctx, "b", "a", models.KindConnectionRequest)
	if err != nil || len(found) != 1 || found[0].ID != "n1" {
		t.Fatalf("FindNotifications = %+v, %v", found, err)
	}
	if err := s.MarkNotificationRead(ctx, "n1"); err != nil {
		t.Fatalf("MarkNotificationRead: %v", err)
	}
	if err := s.MarkNotificationRead(ctx, "missing"); !errors.Is(err, models.ErrNotFound) {
		t.Errorf("missing = %v, want ErrNotFound", err)
	}
}

func TestAddComment_WritesNoticeWithContent(t *testing.T) {
	s := New()
	ctx := context.Background()
	seedPost(t, s, "p1")

	notice := models.Notification{ID: "n1", UserID: "author", ActorID: "u1", Type: models.KindComment}
	if err := s.AddComment(ctx, models.Comment{ID: "c1", PostID: "p1", AuthorID: "u1", Content: "hi"}, notice); err != nil {
		t.Fatalf("AddComment: %v", err)
	}
	post, _ := s.GetPost(ctx, "p1")
	found, _ := s.FindNotifications(ctx, "author", "u1", models.KindComment)
	if post.CommentsCount != 1 || len(found) != 1 {
		t.Errorf("commentsCount = %d, notices = %d; want 1, 1", post.CommentsCount, len(found))
	}

	err := s.AddComment(ctx, models.Comment{ID: "c2", PostID: "missing", AuthorID: "u1", Content: "hi"},
		models.Notification{ID: "n2", UserID: "author", ActorID: "u1", Type: models.KindComment})
	if !errors.Is(err, models.ErrNotFound) {
		t.Fatalf("comment on missing post = %v", err)
	}
	found, _ = s.FindNotifications(ctx, "author", "u1", models.KindComment)
	if len(found) != 1 {
		t.Errorf("failed comment still wrote its notice")
	}
}
