package registry

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/specialistvlad/soqlgrid/internal/config"
	"github.com/specialistvlad/soqlgrid/internal/connector"
	"github.com/specialistvlad/soqlgrid/internal/ctxlog"
)

// ErrNotLoggedIn is returned for a connection without a live session.
var ErrNotLoggedIn = errors.New("connection is not logged in")

// Dialer opens an authenticated session for a connection.
type Dialer interface {
	Dial(ctx context.Context, conn *config.Connection) (connector.Session, error)
}

// DialerFunc adapts a function to the Dialer interface.
type DialerFunc func(ctx context.Context, conn *config.Connection) (connector.Session, error)

// Dial calls f.
func (f DialerFunc) Dial(ctx context.Context, conn *config.Connection) (connector.Session, error) {
	return f(ctx, conn)
}

// Registry maps connection UUIDs to live sessions.
type Registry struct {
	dialer Dialer

	mu       sync.Mutex
	sessions map[string]connector.Session
}

// New creates an empty registry that opens sessions with dialer.
func New(dialer Dialer) *Registry {
	return &Registry{
		dialer:   dialer,
		sessions: make(map[string]connector.Session),
	}
}

// Login opens a session for conn. A session already registered for the same
// UUID is logged out first. With isTest set the session only proves that
// the credentials work: it is logged out right away and not registered.
func (r *Registry) Login(ctx context.Context, conn *config.Connection, isTest bool) (connector.Session, error) {
	logger := ctxlog.FromContext(ctx).With("connection", conn.DisplayName)

	if err := r.Logout(ctx, conn.UUID); err != nil && !errors.Is(err, ErrNotLoggedIn) {
		logger.Warn("Failed to close previous session.", "error", err)
	}

	logger.Debug("Logging in.", "login_url", conn.LoginURL, "username", conn.Username, "test", isTest)
	sess, err := r.dialer.Dial(ctx, conn)
	if err != nil {
		return nil, fmt.Errorf("login to %q failed: %w", conn.DisplayName, err)
	}

	if isTest {
		if err := sess.Logout(ctx); err != nil {
			logger.Warn("Failed to close test session.", "error", err)
		}
		logger.Info("✅ Connection test succeeded")
		return sess, nil
	}

	r.mu.Lock()
	r.sessions[conn.UUID] = sess
	r.mu.Unlock()
	logger.Info("✅ Logged in")
	return sess, nil
}

// Get returns the session registered for uuid.
func (r *Registry) Get(uuid string) (connector.Session, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	sess, ok := r.sessions[uuid]
	return sess, ok
}

// Session returns the registered session for conn, logging in when there
// is none yet.
func (r *Registry) Session(ctx context.Context, conn *config.Connection) (connector.Session, error) {
	if sess, ok := r.Get(conn.UUID); ok {
		return sess, nil
	}
	return r.Login(ctx, conn, false)
}

// Logout closes and forgets the session for uuid.
func (r *Registry) Logout(ctx context.Context, uuid string) error {
	r.mu.Lock()
	sess, ok := r.sessions[uuid]
	delete(r.sessions, uuid)
	r.mu.Unlock()

	if !ok {
		return ErrNotLoggedIn
	}
	return sess.Logout(ctx)
}

// Close logs out every registered session and returns the joined errors.
func (r *Registry) Close(ctx context.Context) error {
	r.mu.Lock()
	ids := make([]string, 0, len(r.sessions))
	for id := range r.sessions {
		ids = append(ids, id)
	}
	r.mu.Unlock()
	sort.Strings(ids)

	var errs []error
	for _, id := range ids {
		if err := r.Logout(ctx, id); err != nil && !errors.Is(err, ErrNotLoggedIn) {
			errs = append(errs, fmt.Errorf("logout %s: %w", id, err))
		}
	}
	return errors.Join(errs...)
}
