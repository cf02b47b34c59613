// Package app is the per-client state container. It owns the session and
// every live view for the signed-in user, tears them down on sign-out or
// identity change, and reports each failed operation as a notice event.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/pauljones0/agriconnect/internal/ai"
	"github.com/pauljones0/agriconnect/internal/apperr"
	"github.com/pauljones0/agriconnect/internal/config"
	"github.com/pauljones0/agriconnect/internal/feed"
	"github.com/pauljones0/agriconnect/internal/identity"
	"github.com/pauljones0/agriconnect/internal/jobs"
	"github.com/pauljones0/agriconnect/internal/live"
	"github.com/pauljones0/agriconnect/internal/messaging"
	"github.com/pauljones0/agriconnect/internal/models"
	"github.com/pauljones0/agriconnect/internal/network"
	"github.com/pauljones0/agriconnect/internal/notifications"
	"github.com/pauljones0/agriconnect/internal/quiz"
	"github.com/pauljones0/agriconnect/internal/search"
	"github.com/pauljones0/agriconnect/internal/session"
	"github.com/pauljones0/agriconnect/internal/validator"
)

// ErrSignedOut is returned by operations that need a signed-in user.
var ErrSignedOut = apperr.WithNotice(models.ErrNotPermitted, "Please sign in first.")

// Tab is the section the client is showing.
type Tab string

const (
	TabFeed          Tab = "feed"
	TabNetwork       Tab = "network"
	TabMessaging     Tab = "messaging"
	TabJobs          Tab = "jobs"
	TabNotifications Tab = "notifications"
	TabQuiz          Tab = "quiz"
	TabSearch        Tab = "search"
	TabProfile       Tab = "profile"
)

// Deps are the shared collaborators every App is built from.
type Deps struct {
	Store     Store
	Identity  identity.Provider
	Validator *validator.Validator
	Quiz      quiz.Generator
	Assistant ai.Asker
	Config    *config.Config
}

// userViews are the live views that exist only while someone is signed in.
type userViews struct {
	uid           string
	cancel        context.CancelFunc
	notifications *notifications.Feed
	feed          *feed.Feed
	graph         *network.Graph
	inbox         *messaging.Inbox
	board         *jobs.Board
}

func (v *userViews) stop() {
	v.board.Stop()
	v.inbox.Stop()
	v.graph.Stop()
	v.feed.Stop()
	v.notifications.Stop()
	v.cancel()
}

// App is one client's application state.
type App struct {
	deps   Deps
	ctx    context.Context
	cancel context.CancelFunc
	emitFn func(Event)

	session  *session.Manager
	editor   *session.Editor
	posts    *feed.Service
	network  *network.Service
	messages *messaging.Service
	jobs     *jobs.Service
	game     *quiz.Game
	chat     *ai.Conversation

	// selectMu serializes swaps of the selected conversation, the search
	// and the tracked posts so an old subscription is always stopped before
	// its replacement opens.
	selectMu sync.Mutex

	mu           sync.Mutex
	closed       bool
	views        *userViews
	tab          Tab
	conversation *messaging.Conversation
	search       *search.Index
	engagements  map[string]*feed.Engagement
}

// New builds an App that reports state through emit. emit may be called
// from any goroutine but never concurrently for the same App.
func New(ctx context.Context, deps Deps, emit func(Event)) *App {
	ctx, cancel := context.WithCancel(ctx)
	cfg := deps.Config
	if cfg == nil {
		cfg = &config.Config{RequireAcceptedConnection: true, InQueryBatchSize: 10, JobAlertRate: 20}
	}
	if deps.Validator == nil {
		deps.Validator = validator.New()
	}
	if deps.Quiz == nil {
		deps.Quiz = unavailableQuiz{}
	}
	if deps.Assistant == nil {
		deps.Assistant = ai.NewAssistant("")
	}
	deps.Config = cfg

	a := &App{
		deps:        deps,
		cancel:      cancel,
		tab:         TabFeed,
		engagements: make(map[string]*feed.Engagement),
	}
	ctx = live.WithErrorHandler(ctx, a.liveQueryFailed)
	a.ctx = ctx
	var emitMu sync.Mutex
	a.emitFn = func(e Event) {
		emitMu.Lock()
		defer emitMu.Unlock()
		if ctx.Err() == nil {
			emit(e)
		}
	}

	a.session = session.NewManager(ctx, deps.Identity, deps.Store, deps.Validator)
	a.session.OnChange(a.profileChanged)
	a.editor = session.NewEditor(a.session, cfg.MaxImageBytes)
	a.posts = feed.NewService(deps.Store, deps.Validator)
	a.network = network.NewService(deps.Store)
	a.messages = messaging.NewService(deps.Store, cfg.RequireAcceptedConnection)
	a.jobs = jobs.NewService(deps.Store, deps.Validator, cfg.JobAlertRate)
	a.game = quiz.NewGame(deps.Quiz, quiz.NarratorFunc(func(text string) {
		a.emit(EventNarration, text)
	}), quiz.Options{QuestionTime: cfg.QuizQuestionTime, QuestionCount: cfg.QuizQuestionCount}, func(s quiz.Snapshot) {
		a.emit(EventQuiz, s)
	})
	a.chat = ai.NewConversation(deps.Assistant, func(turns []ai.Turn, typing bool) {
		a.emit(EventAssistant, AssistantData{Turns: turns, Typing: typing})
	})
	return a
}

type unavailableQuiz struct{}

func (unavailableQuiz) Generate(context.Context, quiz.Difficulty, int) ([]quiz.Question, error) {
	return nil, errors.New("quiz generation is not configured")
}

func (a *App) emit(typ string, data any) {
	a.emitFn(Event{Type: typ, Data: data})
}

// fail logs err and reports it to the client. It returns err unchanged.
func (a *App) fail(op string, err error) error {
	if err == nil {
		return nil
	}
	class := apperr.Classify(err)
	if class == apperr.ClassInput || class == apperr.ClassIdentity {
		slog.Info("Operation rejected", "op", op, "error", err)
	} else {
		slog.Error("Operation failed", "op", op, "class", class, "error", err)
	}
	a.emit(EventNotice, Notice{Op: op, Message: apperr.Message(err, ""), Class: class.String()})
	return err
}

// liveQueryFailed reports a live query that ended on its own. The view it
// fed keeps its last state but no longer updates.
func (a *App) liveQueryFailed(err error) {
	if apperr.Classify(err) == apperr.ClassUnknown {
		err = apperr.WithNotice(err, "Live updates stopped. Please reload to try again.")
	}
	a.fail("live_update", err)
}

// Reject reports a request the client could not have meant, such as an
// unknown command or a missing payload.
func (a *App) Reject(op, message string) error {
	return a.fail(op, apperr.WithNotice(nil, message))
}

func (a *App) user() (*models.User, error) {
	u := a.session.Current()
	if u == nil {
		return nil, ErrSignedOut
	}
	return u, nil
}

func (a *App) currentViews() *userViews {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.views
}

// profileChanged runs for every session change.
func (a *App) profileChanged(u *models.User) {
	a.emit(EventSession, u)
	if u == nil {
		return
	}
	if v := a.currentViews(); v != nil && v.uid == u.ID {
		v.board.SetViewer(*u)
	}
}

// SignIn switches to the account behind email.
func (a *App) SignIn(ctx context.Context, email, password string) error {
	a.teardown()
	u, err := a.session.SignIn(ctx, email, password)
	if err != nil {
		return a.fail("sign_in", err)
	}
	a.build(u)
	return nil
}

// SignUp registers a new account and signs it in.
func (a *App) SignUp(ctx context.Context, r session.Registration) error {
	a.teardown()
	u, err := a.session.SignUp(ctx, r)
	if err != nil {
		return a.fail("sign_up", err)
	}
	a.build(u)
	return nil
}

// SignOut closes every user view, then the session.
func (a *App) SignOut() {
	a.teardown()
	a.session.SignOut()
}

func (a *App) build(u models.User) {
	ctx, cancel := context.WithCancel(a.ctx)
	cfg := a.deps.Config
	store := a.deps.Store

	v := &userViews{uid: u.ID, cancel: cancel}
	v.notifications = notifications.Watch(ctx, store, u.ID, func(items []models.Notification, unread int) {
		a.emit(EventNotifications, NotificationsData{Items: items, Unread: unread})
	})
	v.feed = feed.Watch(ctx, store, func(posts []models.Post) {
		a.emit(EventFeed, posts)
	})
	v.graph = network.Watch(ctx, store, u.ID, func(view network.View) {
		a.emit(EventNetwork, view)
	})
	v.inbox = messaging.WatchInbox(ctx, store, u.ID, cfg.InQueryBatchSize, func(partners []models.User) {
		a.emit(EventInbox, partners)
	})
	v.board = jobs.WatchBoard(ctx, store, u, func(view jobs.View) {
		a.emit(EventJobs, view)
	})

	a.mu.Lock()
	old := a.views
	a.views = v
	closed := a.closed
	a.mu.Unlock()
	if old != nil {
		old.stop()
	}
	if closed {
		a.teardown()
	}
}

// teardown stops the user views and every selection that depends on them.
func (a *App) teardown() {
	a.selectMu.Lock()
	defer a.selectMu.Unlock()

	a.mu.Lock()
	v := a.views
	conv, ix := a.conversation, a.search
	tracked := a.engagements
	a.views, a.conversation, a.search = nil, nil, nil
	a.engagements = make(map[string]*feed.Engagement)
	a.mu.Unlock()

	for _, e := range tracked {
		e.Stop()
	}
	if ix != nil {
		ix.Stop()
	}
	if conv != nil {
		conv.Stop()
	}
	if v != nil {
		v.stop()
	}
	a.editor.Cancel()
}

// Close releases everything the App holds.
func (a *App) Close() {
	a.mu.Lock()
	a.closed = true
	a.mu.Unlock()
	a.teardown()
	a.session.SignOut()
	a.game.Stop()
	a.cancel()
}

// SelectTab switches sections. Opening notifications marks them all read.
func (a *App) SelectTab(ctx context.Context, tab Tab) error {
	a.mu.Lock()
	a.tab = tab
	a.mu.Unlock()
	a.emit(EventTab, tab)

	if tab != TabNotifications {
		return nil
	}
	v := a.currentViews()
	if v == nil {
		return a.fail("select_tab", ErrSignedOut)
	}
	if _, err := v.notifications.MarkAllRead(ctx); err != nil {
		return a.fail("mark_all_read", err)
	}
	return nil
}

// Tab returns the current section.
func (a *App) Tab() Tab {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.tab
}

// OpenNotification marks the notification read and navigates to where it
// leads. A message notification opens the conversation with its sender.
func (a *App) OpenNotification(ctx context.Context, id string) error {
	v := a.currentViews()
	if v == nil {
		return a.fail("open_notification", ErrSignedOut)
	}
	n, ok := v.notifications.Find(id)
	if !ok {
		return a.fail("open_notification", fmt.Errorf("notification %s: %w", id, models.ErrNotFound))
	}
	route, err := v.notifications.Open(ctx, n)
	a.emit(EventRoute, route)
	if route.Destination == notifications.DestConversation && route.PartnerID != "" {
		if openErr := a.OpenConversation(route.PartnerID); openErr != nil {
			return openErr
		}
	}
	if selErr := a.SelectTab(ctx, Tab(route.Destination)); selErr != nil {
		return selErr
	}
	return a.fail("open_notification", err)
}
