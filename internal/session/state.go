// Package session owns the authenticated identity and profile for one client
// session, from initialization through sign-out.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/pageza/mealtrack/backend/internal/gateway"
	"github.com/pageza/mealtrack/backend/internal/models"
)

// Status is the lifecycle stage of a State.
type Status string

const (
	StatusUninitialized Status = "uninitialized"
	StatusInitializing  Status = "initializing"
	StatusReady         Status = "ready"
)

// Snapshot is an immutable view of a State.
type Snapshot struct {
	Status      Status            `json:"status"`
	Initialized bool              `json:"initialized"`
	Loading     bool              `json:"loading"`
	Identity    *gateway.Identity `json:"user"`
	Profile     *models.Profile   `json:"profile"`
}

// Authenticated reports whether the snapshot holds an identity.
func (s Snapshot) Authenticated() bool {
	return s.Status == StatusReady && s.Identity != nil
}

// Listener is called after every state change.
type Listener func(Snapshot)

// State holds the identity for a session. Methods never panic on gateway
// failures; they return an *AuthError.
type State struct {
	auth gateway.AuthGateway
	data gateway.DataGateway
	log  logrus.FieldLogger

	initOnce sync.Once
	initDone chan struct{}
	initErr  error

	mu        sync.RWMutex
	token     string
	status    Status
	loading   bool
	identity  *gateway.Identity
	profile   *models.Profile
	listeners map[int]Listener
	nextID    int
}

// New returns an uninitialized State bound to token, which may be empty.
func New(auth gateway.AuthGateway, data gateway.DataGateway, token string, log logrus.FieldLogger) *State {
	return &State{
		auth:      auth,
		data:      data,
		log:       log,
		token:     token,
		status:    StatusUninitialized,
		initDone:  make(chan struct{}),
		listeners: make(map[int]Listener),
	}
}

// Initialize resolves the bound session once. Later calls wait for the first
// to finish and return its result.
func (s *State) Initialize(ctx context.Context) error {
	s.initOnce.Do(func() {
		go func() {
			defer close(s.initDone)
			s.initErr = s.initialize(context.WithoutCancel(ctx))
		}()
	})

	select {
	case <-s.initDone:
		return s.initErr
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *State) initialize(ctx context.Context) error {
	// A sign-in on a fresh State already settled the session.
	if s.Initialized() {
		return nil
	}
	s.update(func() {
		s.status = StatusInitializing
		s.loading = true
	})

	identity, err := s.auth.GetSession(ctx, s.Token())
	if err != nil {
		s.log.WithError(err).Warn("session lookup failed")
		s.update(func() {
			s.status = StatusReady
			s.loading = false
		})
		return toAuthError(err)
	}
	if identity == nil {
		s.update(func() {
			s.status = StatusReady
			s.loading = false
		})
		return nil
	}

	return s.applySession(ctx, identity)
}

// applySession handles a session change: the identity is recorded, its
// profile ensured and loaded, and the state becomes ready.
func (s *State) applySession(ctx context.Context, identity *gateway.Identity) error {
	profile, err := s.ensureProfile(ctx, identity)
	s.update(func() {
		s.token = identity.Token
		s.identity = identity
		s.profile = profile
		s.status = StatusReady
		s.loading = false
	})
	if err != nil {
		s.log.WithError(err).WithField("user_id", identity.ID).Error("failed to load profile")
		return &AuthError{Code: CodeProfile, Message: "Could not load your profile.", Err: err}
	}
	return nil
}

// ensureProfile loads the identity's profile, creating it if absent.
func (s *State) ensureProfile(ctx context.Context, identity *gateway.Identity) (*models.Profile, error) {
	profile, err := s.data.GetProfile(ctx, identity.ID)
	if err == nil {
		return profile, nil
	}
	if !errors.Is(err, gateway.ErrNotFound) {
		return nil, fmt.Errorf("get profile: %w", err)
	}

	var name *string
	if identity.Name != "" {
		n := identity.Name
		name = &n
	}
	profile, err = s.data.CreateProfile(ctx, identity.ID, identity.Email, name)
	if err != nil {
		return nil, err
	}
	s.log.WithField("user_id", identity.ID).Info("created profile")
	return profile, nil
}

// SignInWithPassword signs in with email credentials.
func (s *State) SignInWithPassword(ctx context.Context, email, password string) error {
	return s.signIn(ctx, func() (*gateway.Identity, error) {
		return s.auth.SignInWithPassword(ctx, email, password)
	})
}

// SignUp registers a new email account and signs it in.
func (s *State) SignUp(ctx context.Context, email, password, name string) error {
	return s.signIn(ctx, func() (*gateway.Identity, error) {
		return s.auth.SignUp(ctx, email, password, name)
	})
}

// SignInWithGoogle signs in with a Google ID token.
func (s *State) SignInWithGoogle(ctx context.Context, idToken string) error {
	return s.signIn(ctx, func() (*gateway.Identity, error) {
		return s.auth.SignInWithIDToken(ctx, models.ProviderGoogle, idToken)
	})
}

func (s *State) signIn(ctx context.Context, call func() (*gateway.Identity, error)) error {
	s.update(func() { s.loading = true })

	identity, err := call()
	if err != nil {
		s.update(func() { s.loading = false })
		return toAuthError(err)
	}
	return s.applySession(ctx, identity)
}

// SignOut ends the session. Local identity and profile are cleared even when
// the gateway call fails.
func (s *State) SignOut(ctx context.Context) error {
	token := s.Token()
	s.update(func() { s.loading = true })

	err := s.auth.SignOut(ctx, token)
	if err != nil {
		s.log.WithError(err).Warn("remote sign out failed")
	}

	s.update(func() {
		s.token = ""
		s.identity = nil
		s.profile = nil
		s.status = StatusReady
		s.loading = false
	})
	if err != nil {
		return toAuthError(err)
	}
	return nil
}

// UpdateProfile writes update through to the gateway. On failure the local
// profile is unchanged.
func (s *State) UpdateProfile(ctx context.Context, update gateway.ProfileUpdate) error {
	identity := s.Identity()
	if identity == nil {
		return &AuthError{Code: CodeNotAuthenticated, Message: "You are not signed in."}
	}
	if err := update.Validate(); err != nil {
		return toAuthError(err)
	}

	s.update(func() { s.loading = true })
	profile, err := s.data.UpdateProfile(ctx, identity.ID, update)
	if err != nil {
		s.update(func() { s.loading = false })
		s.log.WithError(err).WithField("user_id", identity.ID).Error("failed to update profile")
		return toAuthError(err)
	}

	s.update(func() {
		s.profile = profile
		s.loading = false
	})
	return nil
}

// Subscribe registers l and returns a function that removes it.
func (s *State) Subscribe(l Listener) func() {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = l
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.listeners, id)
		s.mu.Unlock()
	}
}

// Snapshot returns the current state.
func (s *State) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshotLocked()
}

func (s *State) snapshotLocked() Snapshot {
	return Snapshot{
		Status:      s.status,
		Initialized: s.status == StatusReady,
		Loading:     s.loading,
		Identity:    s.identity,
		Profile:     s.profile,
	}
}

// Initialized reports whether identity may be read.
func (s *State) Initialized() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.status == StatusReady
}

// Loading reports whether a sign-in, sign-out or profile update is in flight.
func (s *State) Loading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loading
}

// Identity returns the signed-in identity, or nil.
func (s *State) Identity() *gateway.Identity {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.identity
}

// Profile returns the loaded profile, or nil.
func (s *State) Profile() *models.Profile {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.profile
}

// Token returns the bearer token the state is bound to.
func (s *State) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// update applies fn under the lock, then notifies listeners outside it.
func (s *State) update(fn func()) {
	s.mu.Lock()
	fn()
	snap := s.snapshotLocked()
	listeners := make([]Listener, 0, len(s.listeners))
	for _, l := range s.listeners {
		listeners = append(listeners, l)
	}
	s.mu.Unlock()

	for _, l := range listeners {
		l(snap)
	}
}
