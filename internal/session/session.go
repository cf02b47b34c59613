// Package session tracks who is signed in and keeps their profile live.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/pauljones0/agriconnect/internal/apperr"
	"github.com/pauljones0/agriconnect/internal/identity"
	"github.com/pauljones0/agriconnect/internal/live"
	"github.com/pauljones0/agriconnect/internal/models"
	"github.com/pauljones0/agriconnect/internal/validator"
)

// ErrProfileNotFound is returned when an account has no profile document.
var ErrProfileNotFound = apperr.WithNotice(models.ErrNotFound, "User profile not found. Please contact support.")

// DefaultLocation is stored until the user sets a location.
const DefaultLocation = "Not specified"

// Registration is what the sign-up form collects.
type Registration struct {
	Name     string `validate:"required,notblank"`
	Email    string `validate:"required,email"`
	Password string `validate:"required"`
	FarmName string
}

// NewProfile builds the profile document created at sign-up.
func NewProfile(uid string, r Registration) models.User {
	return models.User{
		ID:             uid,
		Name:           strings.TrimSpace(r.Name),
		Email:          r.Email,
		FarmName:       r.FarmName,
		Location:       DefaultLocation,
		CropsGrown:     []string{},
		Certifications: []string{},
		Headline:       r.FarmName + " Farmer",
		ProfilePhoto:   "https://picsum.photos/seed/" + r.Email + "/200/200",
	}
}

// Manager owns the identity of one client. Each sign-in starts a new
// generation; the previous profile subscription is stopped before the new
// one opens, and any delivery from an older generation is dropped.
type Manager struct {
	base     context.Context
	provider identity.Provider
	store    ProfileStore
	validate *validator.Validator

	emitMu    sync.Mutex
	mu        sync.Mutex
	gen       uint64
	sub       live.Subscription
	cancel    context.CancelFunc
	current   *models.User
	listeners map[int]func(*models.User)
	nextID    int
}

// NewManager returns a signed-out manager. Profile subscriptions live until
// sign-out or until ctx is done.
func NewManager(ctx context.Context, provider identity.Provider, store ProfileStore, v *validator.Validator) *Manager {
	return &Manager{
		base:      ctx,
		provider:  provider,
		store:     store,
		validate:  v,
		listeners: make(map[int]func(*models.User)),
	}
}

// OnChange registers fn for every identity or profile change. fn receives
// nil on sign-out.
func (m *Manager) OnChange(fn func(*models.User)) live.Subscription {
	m.mu.Lock()
	id := m.nextID
	m.nextID++
	m.listeners[id] = fn
	m.mu.Unlock()
	return live.Once(func() {
		m.mu.Lock()
		delete(m.listeners, id)
		m.mu.Unlock()
	})
}

// Current returns the signed-in user's latest profile, or nil.
func (m *Manager) Current() *models.User {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.current == nil {
		return nil
	}
	u := *m.current
	return &u
}

// SignIn authenticates and opens the profile subscription.
func (m *Manager) SignIn(ctx context.Context, email, password string) (models.User, error) {
	acct, err := m.provider.SignIn(ctx, email, password)
	if err != nil {
		return models.User{}, fmt.Errorf("sign in: %w", err)
	}
	u, err := m.store.GetUser(ctx, acct.UID)
	if err != nil {
		return models.User{}, fmt.Errorf("load profile: %w", err)
	}
	if u == nil {
		slog.Warn("Signed-in account has no profile", "uid", acct.UID)
		return models.User{}, ErrProfileNotFound
	}
	m.establish(*u)
	slog.Info("User signed in", "uid", acct.UID)
	return *u, nil
}

// SignUp creates the account and its profile document, then signs in.
func (m *Manager) SignUp(ctx context.Context, r Registration) (models.User, error) {
	if err := m.validate.ValidateStruct(r); err != nil {
		return models.User{}, err
	}
	acct, err := m.provider.SignUp(ctx, r.Email, r.Password)
	if err != nil {
		return models.User{}, fmt.Errorf("sign up: %w", err)
	}
	if acct.Email != "" {
		r.Email = acct.Email
	}
	u := NewProfile(acct.UID, r)
	if err := m.store.CreateUser(ctx, u); err != nil {
		if errors.Is(err, models.ErrAlreadyExists) {
			return models.User{}, &identity.Error{Code: identity.CodeEmailInUse, Err: err}
		}
		return models.User{}, fmt.Errorf("create profile: %w", err)
	}
	m.establish(u)
	slog.Info("User registered", "uid", acct.UID)
	return u, nil
}

// SignOut stops the profile subscription and clears the identity.
func (m *Manager) SignOut() {
	m.mu.Lock()
	m.gen++
	sub, cancel := m.sub, m.cancel
	m.sub, m.cancel, m.current = nil, nil, nil
	m.mu.Unlock()

	if sub != nil {
		sub.Stop()
		cancel()
	}

	m.emitMu.Lock()
	defer m.emitMu.Unlock()
	m.mu.Lock()
	listeners := m.snapshotListeners()
	m.mu.Unlock()
	for _, fn := range listeners {
		fn(nil)
	}
}

func (m *Manager) establish(u models.User) {
	m.mu.Lock()
	m.gen++
	gen := m.gen
	old, oldCancel := m.sub, m.cancel
	m.sub, m.cancel = nil, nil
	m.current = &u
	m.mu.Unlock()

	if old != nil {
		old.Stop()
		oldCancel()
	}

	ctx, cancel := context.WithCancel(m.base)
	sub := m.store.WatchUser(ctx, u.ID, func(p *models.User) { m.deliver(gen, p) })

	m.mu.Lock()
	if m.gen != gen {
		m.mu.Unlock()
		sub.Stop()
		cancel()
		return
	}
	m.sub, m.cancel = sub, cancel
	m.mu.Unlock()

	m.publish(gen)
}

// deliver applies a profile snapshot from generation gen. A deleted profile
// keeps the last known copy.
func (m *Manager) deliver(gen uint64, p *models.User) {
	if p == nil {
		return
	}
	m.mu.Lock()
	if m.gen != gen {
		m.mu.Unlock()
		return
	}
	u := *p
	m.current = &u
	m.mu.Unlock()
	m.publish(gen)
}

func (m *Manager) publish(gen uint64) {
	m.emitMu.Lock()
	defer m.emitMu.Unlock()

	m.mu.Lock()
	if m.gen != gen || m.current == nil {
		m.mu.Unlock()
		return
	}
	u := *m.current
	listeners := m.snapshotListeners()
	m.mu.Unlock()

	for _, fn := range listeners {
		fn(&u)
	}
}

func (m *Manager) snapshotListeners() []func(*models.User) {
	fns := make([]func(*models.User), 0, len(m.listeners))
	for _, fn := range m.listeners {
		fns = append(fns, fn)
	}
	return fns
}

// UID returns the signed-in user's ID, or "".
func (m *Manager) UID() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.current == nil {
		return ""
	}
	return m.current.ID
}
