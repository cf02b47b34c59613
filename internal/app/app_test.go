package app

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/pauljones0/agriconnect/internal/config"
	"github.com/pauljones0/agriconnect/internal/identity"
	"github.com/pauljones0/agriconnect/internal/models"
	"github.com/pauljones0/agriconnect/internal/network"
	"github.com/pauljones0/agriconnect/internal/notifications"
	"github.com/pauljones0/agriconnect/internal/search"
	"github.com/pauljones0/agriconnect/internal/session"
	"github.com/pauljones0/agriconnect/internal/storage/memstore"
)

type events struct {
	mu  sync.Mutex
	all []Event
}

func (e *events) add(ev Event) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.all = append(e.all, ev)
}

func (e *events) last(typ string) (any, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	for i := len(e.all) - 1; i >= 0; i-- {
		if e.all[i].Type == typ {
			return e.all[i].Data, true
		}
	}
	return nil, false
}

func (e *events) count(typ string) int {
	e.mu.Lock()
	defer e.mu.Unlock()
	n := 0
	for _, ev := range e.all {
		if ev.Type == typ {
			n++
		}
	}
	return n
}

func eventually(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for %s", what)
		}
		time.Sleep(5 * time.Millisecond)
	}
}

type harness struct {
	store    *memstore.Store
	provider *identity.Local
}

func newHarness() *harness {
	return &harness{store: memstore.New(), provider: identity.NewLocal(4)}
}

func (h *harness) client(t *testing.T, name, email string) (*App, *events) {
	t.Helper()
	ev := &events{}
	a := New(context.Background(), Deps{
		Store:    h.store,
		Identity: h.provider,
		Config:   &config.Config{RequireAcceptedConnection: true, InQueryBatchSize: 10, JobAlertRate: 100},
	}, ev.add)
	t.Cleanup(a.Close)
	if err := a.SignUp(context.Background(), session.Registration{Name: name, Email: email, Password: "secret1", FarmName: name}); err != nil {
		t.Fatalf("SignUp %s: %v", name, err)
	}
	return a, ev
}

func TestConnectAcceptMessageFlow(t *testing.T) {
	h := newHarness()
	ctx := context.Background()
	alice, aliceEv := h.client(t, "Alice", "alice@example.com")
	bob, bobEv := h.client(t, "Bob", "bob@example.com")
	bobID := bob.session.UID()

	// Messaging is gated on an accepted connection.
	if err := alice.OpenConversation(bobID); err != nil {
		t.Fatal(err)
	}
	if err := alice.SendMessage(ctx, "hello", ""); !errors.Is(err, models.ErrNotConnected) {
		t.Fatalf("send before connecting err = %v", err)
	}
	notice, _ := aliceEv.last(EventNotice)
	if n, ok := notice.(Notice); !ok || n.Message != "You can only message users with an accepted connection." {
		t.Errorf("notice = %+v", notice)
	}

	if err := alice.Connect(ctx, bobID); err != nil {
		t.Fatal(err)
	}
	data, _ := bobEv.last(EventNetwork)
	view := data.(network.View)
	if len(view.Pending) != 1 {
		t.Fatalf("bob pending = %+v", view.Pending)
	}
	if err := bob.AcceptConnection(ctx, view.Pending[0].Connection.ID); err != nil {
		t.Fatal(err)
	}

	eventually(t, "alice inbox", func() bool {
		d, ok := aliceEv.last(EventInbox)
		partners, _ := d.([]models.User)
		return ok && len(partners) == 1 && partners[0].ID == bobID
	})

	if err := alice.SendMessage(ctx, "hello", ""); err != nil {
		t.Fatalf("SendMessage: %v", err)
	}
	d, _ := aliceEv.last(EventConversation)
	if conv := d.(ConversationData); len(conv.Messages) != 1 || conv.PartnerID != bobID {
		t.Errorf("conversation = %+v", conv)
	}

	d, _ = bobEv.last(EventNotifications)
	if n := d.(NotificationsData); n.Unread != 1 || n.Items[0].Type != models.KindMessage {
		t.Fatalf("bob notifications = %+v", n)
	}
	if err := bob.SelectTab(ctx, TabNotifications); err != nil {
		t.Fatal(err)
	}
	d, _ = bobEv.last(EventNotifications)
	if n := d.(NotificationsData); n.Unread != 0 {
		t.Errorf("unread after opening tab = %d", n.Unread)
	}
}

func TestOpenNotificationRoutesToConversation(t *testing.T) {
	h := newHarness()
	ctx := context.Background()
	_, _ = h.client(t, "Alice", "alice@example.com")
	bob, bobEv := h.client(t, "Bob", "bob@example.com")

	alice, err := h.store.ListUsers(ctx)
	if err != nil {
		t.Fatal(err)
	}
	var aliceID string
	for _, u := range alice {
		if u.Name == "Alice" {
			aliceID = u.ID
		}
	}
	n := models.Notification{ID: "n1", UserID: bob.session.UID(), ActorID: aliceID, Type: models.KindMessage, Content: "sent you a new message.", Timestamp: time.Now()}
	if err := h.store.CreateNotification(ctx, n); err != nil {
		t.Fatal(err)
	}

	if err := bob.OpenNotification(ctx, "n1"); err != nil {
		t.Fatal(err)
	}
	d, _ := bobEv.last(EventRoute)
	if r := d.(notifications.Route); r.Destination != notifications.DestConversation || r.PartnerID != aliceID {
		t.Errorf("route = %+v", r)
	}
	if bob.Tab() != TabMessaging {
		t.Errorf("tab = %s", bob.Tab())
	}
	d, _ = bobEv.last(EventConversation)
	if conv := d.(ConversationData); conv.PartnerID != aliceID {
		t.Errorf("conversation partner = %s", conv.PartnerID)
	}
}

func TestSignOutStopsViews(t *testing.T) {
	h := newHarness()
	ctx := context.Background()
	alice, aliceEv := h.client(t, "Alice", "alice@example.com")
	bob, _ := h.client(t, "Bob", "bob@example.com")

	if err := bob.CreatePost(ctx, "first harvest", ""); err != nil {
		t.Fatal(err)
	}
	d, _ := aliceEv.last(EventFeed)
	if posts := d.([]models.Post); len(posts) != 1 {
		t.Fatalf("alice feed = %+v", posts)
	}

	alice.SignOut()
	if d, _ := aliceEv.last(EventSession); d.(*models.User) != nil {
		t.Errorf("session after sign-out = %+v", d)
	}
	before := aliceEv.count(EventFeed)
	if err := bob.CreatePost(ctx, "second harvest", ""); err != nil {
		t.Fatal(err)
	}
	if after := aliceEv.count(EventFeed); after != before {
		t.Errorf("feed delivered after sign-out: %d -> %d", before, after)
	}
	if err := alice.CreatePost(ctx, "ghost", ""); !errors.Is(err, ErrSignedOut) {
		t.Errorf("post while signed out err = %v", err)
	}
}

func TestSearchReplacesPrevious(t *testing.T) {
	h := newHarness()
	alice, aliceEv := h.client(t, "Alice", "alice@example.com")
	h.client(t, "Bob Maize", "bob@example.com")

	if err := alice.Search("maize"); err != nil {
		t.Fatal(err)
	}
	d, _ := aliceEv.last(EventSearch)
	if r := d.(search.Results); len(r.Users) != 1 {
		t.Fatalf("results = %+v", r)
	}
	if err := alice.Search("  "); err != nil {
		t.Fatal(err)
	}
	d, _ = aliceEv.last(EventSearch)
	if r := d.(search.Results); !r.Empty() {
		t.Errorf("blank search results = %+v", r)
	}
}

func TestSearchWithoutMatchesIsNotAnError(t *testing.T) {
	h := newHarness()
	alice, aliceEv := h.client(t, "Alice", "alice@example.com")
	h.client(t, "Bob Maize", "bob@example.com")
	notices := aliceEv.count(EventNotice)

	if err := alice.Search("zzz"); err != nil {
		t.Fatalf("Search: %v", err)
	}
	d, ok := aliceEv.last(EventSearch)
	if !ok {
		t.Fatal("no search event")
	}
	if r := d.(search.Results); !r.Empty() || r.Users == nil || r.Posts == nil {
		t.Errorf("results = %#v, want an empty state", r)
	}
	if got := aliceEv.count(EventNotice); got != notices {
		t.Errorf("notices = %d, want %d", got, notices)
	}
}

func TestLiveQueryFailureBecomesNotice(t *testing.T) {
	h := newHarness()
	h.store.InjectError("WatchJobs", errors.New("the query requires an index"))
	_, ev := h.client(t, "Alice", "alice@example.com")

	d, ok := ev.last(EventNotice)
	if !ok {
		t.Fatal("no notice for the failed live query")
	}
	if n := d.(Notice); n.Op != "live_update" || n.Message != "Live updates stopped. Please reload to try again." {
		t.Errorf("notice = %+v", n)
	}
}

func TestLikeThroughTracker(t *testing.T) {
	h := newHarness()
	ctx := context.Background()
	alice, aliceEv := h.client(t, "Alice", "alice@example.com")
	bob, _ := h.client(t, "Bob", "bob@example.com")

	if err := bob.CreatePost(ctx, "look at this maize", ""); err != nil {
		t.Fatal(err)
	}
	d, _ := aliceEv.last(EventFeed)
	postID := d.([]models.Post)[0].ID

	if err := alice.ToggleLike(ctx, postID); err != nil {
		t.Fatal(err)
	}
	post, _ := h.store.GetPost(ctx, postID)
	if post.LikesCount != 1 {
		t.Errorf("likes = %d", post.LikesCount)
	}
	if err := alice.ToggleLike(ctx, postID); err != nil {
		t.Fatal(err)
	}
	post, _ = h.store.GetPost(ctx, postID)
	if post.LikesCount != 0 {
		t.Errorf("likes after unlike = %d", post.LikesCount)
	}
}
