// Package workspace keeps one Session State and Meal Store per session token
// and wires their changes to the realtime hub and the stats cache.
package workspace

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/pageza/mealtrack/backend/internal/gateway"
	"github.com/pageza/mealtrack/backend/internal/realtime"
	"github.com/pageza/mealtrack/backend/internal/session"
	"github.com/pageza/mealtrack/backend/internal/store"
)

// ErrNotAuthenticated is returned by Open when the token has no session.
var ErrNotAuthenticated = errors.New("no active session for token")

const defaultIdleTimeout = 30 * time.Minute

// Invalidator drops cached derived data for a user.
type Invalidator interface {
	Invalidate(ctx context.Context, userID uuid.UUID) error
}

// Workspace is the per-session pair of state objects. ID scopes realtime
// snapshots to the connections opened with this session.
type Workspace struct {
	ID      uuid.UUID
	Session *session.State
	Store   *store.MealStore
	UserID  uuid.UUID

	lastUsed atomic.Int64
	detach   []func()
}

func (w *Workspace) touch(now time.Time) {
	w.lastUsed.Store(now.UnixNano())
}

// LastUsed returns when the workspace was last opened.
func (w *Workspace) LastUsed() time.Time {
	return time.Unix(0, w.lastUsed.Load())
}

func (w *Workspace) close() {
	for _, fn := range w.detach {
		fn()
	}
	w.detach = nil
}

// Registry maps session tokens to workspaces.
type Registry struct {
	auth  gateway.AuthGateway
	data  gateway.DataGateway
	hub   *realtime.Hub
	stats Invalidator
	log   logrus.FieldLogger
	idle  time.Duration
	now   func() time.Time

	mu      sync.Mutex
	byToken map[string]*Workspace
}

// Option configures a Registry.
type Option func(*Registry)

func WithHub(h *realtime.Hub) Option {
	return func(r *Registry) { r.hub = h }
}

func WithStats(inv Invalidator) Option {
	return func(r *Registry) { r.stats = inv }
}

func WithLogger(log logrus.FieldLogger) Option {
	return func(r *Registry) { r.log = log }
}

// WithIdleTimeout sets how long an unused workspace is kept.
func WithIdleTimeout(d time.Duration) Option {
	return func(r *Registry) {
		if d > 0 {
			r.idle = d
		}
	}
}

func NewRegistry(auth gateway.AuthGateway, data gateway.DataGateway, opts ...Option) *Registry {
	r := &Registry{
		auth:    auth,
		data:    data,
		log:     logrus.StandardLogger(),
		idle:    defaultIdleTimeout,
		now:     time.Now,
		byToken: make(map[string]*Workspace),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Open returns the workspace for token, creating and initializing it on
// first use. Concurrent callers for the same token share one workspace.
func (r *Registry) Open(ctx context.Context, token string) (*Workspace, error) {
	if token == "" {
		return nil, ErrNotAuthenticated
	}

	r.mu.Lock()
	ws, ok := r.byToken[token]
	if !ok {
		ws = &Workspace{ID: uuid.New(), Session: session.New(r.auth, r.data, token, r.log)}
		r.byToken[token] = ws
	}
	ws.touch(r.now())
	r.mu.Unlock()

	if err := ws.Session.Initialize(ctx); err != nil {
		r.drop(token, ws)
		return nil, err
	}

	identity := ws.Session.Identity()
	if identity == nil {
		r.drop(token, ws)
		return nil, ErrNotAuthenticated
	}

	r.mu.Lock()
	if ws.Store == nil {
		r.attach(ws, identity.ID)
	}
	r.mu.Unlock()
	return ws, nil
}

// NewAnonymous returns an unregistered workspace for a sign-in or sign-up
// attempt. Register it with Adopt once the session has an identity.
func (r *Registry) NewAnonymous() *Workspace {
	return &Workspace{ID: uuid.New(), Session: session.New(r.auth, r.data, "", r.log)}
}

// Adopt registers a signed-in workspace under its session token.
func (r *Registry) Adopt(ws *Workspace) error {
	identity := ws.Session.Identity()
	token := ws.Session.Token()
	if identity == nil || token == "" {
		return ErrNotAuthenticated
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if ws.Store == nil {
		r.attach(ws, identity.ID)
	}
	ws.touch(r.now())
	if old, ok := r.byToken[token]; ok && old != ws {
		old.close()
	}
	r.byToken[token] = ws
	return nil
}

// Close signs token out and forgets its workspace. A token without a
// workspace is still revoked.
func (r *Registry) Close(ctx context.Context, token string) error {
	r.mu.Lock()
	ws, ok := r.byToken[token]
	delete(r.byToken, token)
	r.mu.Unlock()

	if !ok {
		return r.auth.SignOut(ctx, token)
	}
	defer ws.close()
	return ws.Session.SignOut(ctx)
}

// Sweep forgets workspaces that have not been opened within the idle timeout
// and returns how many were removed. The tokens stay valid.
func (r *Registry) Sweep(now time.Time) int {
	r.mu.Lock()
	var stale []*Workspace
	for token, ws := range r.byToken {
		if now.Sub(ws.LastUsed()) > r.idle {
			stale = append(stale, ws)
			delete(r.byToken, token)
		}
	}
	r.mu.Unlock()

	for _, ws := range stale {
		ws.close()
	}
	if len(stale) > 0 {
		r.log.WithField("count", len(stale)).Debug("evicted idle workspaces")
	}
	return len(stale)
}

// Len returns the number of registered workspaces.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.byToken)
}

func (r *Registry) drop(token string, ws *Workspace) {
	r.mu.Lock()
	if r.byToken[token] == ws {
		delete(r.byToken, token)
	}
	r.mu.Unlock()
	ws.close()
}

// attach builds the store for userID and subscribes the hub. Caller holds r.mu.
func (r *Registry) attach(ws *Workspace, userID uuid.UUID) {
	log := r.log.WithField("user_id", userID)

	notifiers := store.MultiNotifier{store.LogNotifier{Log: log}}
	if r.hub != nil {
		notifiers = append(notifiers, r.hub)
	}
	if r.stats != nil {
		notifiers = append(notifiers, store.NotifierFunc(func(n store.Notification) {
			if n.Level != store.LevelSuccess {
				return
			}
			if err := r.stats.Invalidate(context.Background(), n.UserID); err != nil {
				log.WithError(err).Warn("failed to invalidate stats cache")
			}
		}))
	}

	ws.UserID = userID
	ws.Store = store.New(r.data, notifiers, log)

	if r.hub == nil {
		return
	}
	hub, id := r.hub, ws.ID
	ws.detach = append(ws.detach,
		ws.Store.Subscribe(func(snap store.Snapshot) {
			if snap.Busy {
				return
			}
			hub.Publish(userID, id, realtime.Event{Type: realtime.EventSnapshot, Data: snap})
		}),
		ws.Session.Subscribe(func(snap session.Snapshot) {
			hub.Publish(userID, id, realtime.Event{Type: realtime.EventSession, Data: snap})
		}),
	)
}
