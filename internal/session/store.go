// Package session holds the client-side login state.
//
// A Store is restored once from durable storage when it is constructed. An
// expired or unreadable session is purged right there, so no consumer ever
// observes a session that should already have ended.
package session

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/existflow/animeshelf/internal/event"
	"github.com/existflow/animeshelf/internal/logger"
	"github.com/existflow/animeshelf/internal/storage"
)

// TTL is how long a login stays valid
const TTL = 7 * 24 * time.Hour

// maxClockSkew is how far in the future a stored login time may lie before
// it is treated as corrupt
const maxClockSkew = time.Minute

// ErrEmptyUserID is returned by Login for a blank id
var ErrEmptyUserID = errors.New("user id is required")

// Session is a snapshot of the login state
type Session struct {
	LoggedIn  bool
	UserID    string
	LoginTime time.Time
}

// ExpiresAt returns when the session ends, zero when logged out
func (s Session) ExpiresAt() time.Time {
	if !s.LoggedIn {
		return time.Time{}
	}
	return s.LoginTime.Add(TTL)
}

// Option customizes a Store
type Option func(*Store)

// WithClock replaces time.Now
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithLogger sets the logger used for restore warnings
func WithLogger(l *logger.Logger) Option {
	return func(s *Store) { s.log = l }
}

// Store owns the session for the lifetime of the process
type Store struct {
	kv  storage.Store
	now func() time.Time
	log *logger.Logger

	mu      sync.RWMutex
	current Session
	changes event.Emitter[Session]
}

// Restore builds a Store from kv. It never fails: unreadable, corrupt or
// expired state yields an anonymous session.
func Restore(ctx context.Context, kv storage.Store, opts ...Option) *Store {
	s := &Store{kv: kv, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	if s.log == nil {
		s.log = logger.Default()
	}
	s.log = s.log.WithFields(logger.F("component", "session"))

	s.current = s.restore(ctx)
	return s
}

func (s *Store) restore(ctx context.Context) Session {
	flag, ok, err := s.kv.Get(ctx, storage.KeyIsLoggedIn)
	if err != nil {
		s.log.Warn("Failed to read session, starting anonymous", logger.F("error", err))
		return Session{}
	}
	if !ok || flag != "true" {
		return Session{}
	}

	userID, okID, err := s.kv.Get(ctx, storage.KeyUserID)
	if err != nil {
		s.log.Warn("Failed to read session, starting anonymous", logger.F("error", err))
		return Session{}
	}
	rawTime, okTime, err := s.kv.Get(ctx, storage.KeyLoginTime)
	if err != nil {
		s.log.Warn("Failed to read session, starting anonymous", logger.F("error", err))
		return Session{}
	}

	now := s.now()
	ms, parseErr := strconv.ParseInt(strings.TrimSpace(rawTime), 10, 64)
	if !okID || strings.TrimSpace(userID) == "" || !okTime || parseErr != nil {
		s.log.Warn("Discarding corrupt session")
		s.purge(ctx)
		return Session{}
	}

	loginTime := time.UnixMilli(ms)
	if loginTime.After(now.Add(maxClockSkew)) {
		s.log.Warn("Discarding session from the future", logger.F("login_time", loginTime.UTC()))
		s.purge(ctx)
		return Session{}
	}
	if now.Sub(loginTime) >= TTL {
		s.log.Info("Session expired", logger.F("user_id", userID), logger.F("login_time", loginTime.UTC()))
		s.purge(ctx)
		return Session{}
	}

	s.log.Debug("Session restored", logger.F("user_id", userID))
	return Session{LoggedIn: true, UserID: userID, LoginTime: loginTime}
}

func (s *Store) purge(ctx context.Context) {
	if err := s.kv.Delete(ctx, sessionKeys...); err != nil {
		s.log.Warn("Failed to purge session", logger.F("error", err))
	}
}

var sessionKeys = []string{storage.KeyIsLoggedIn, storage.KeyUserID, storage.KeyLoginTime}

// Current returns the session snapshot
func (s *Store) Current() Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// LoggedIn reports whether a user is logged in
func (s *Store) LoggedIn() bool {
	return s.Current().LoggedIn
}

// UserID returns the logged in user, empty when anonymous
func (s *Store) UserID() string {
	return s.Current().UserID
}

// OnChange registers fn to run after every Login and Logout
func (s *Store) OnChange(fn func(Session)) (off func()) {
	return s.changes.On(fn)
}

// Login persists a new session for userID. Memory changes only after the
// write succeeds.
func (s *Store) Login(ctx context.Context, userID string) error {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return ErrEmptyUserID
	}

	now := s.now()
	err := s.kv.SetMany(ctx, map[string]string{
		storage.KeyIsLoggedIn: "true",
		storage.KeyUserID:     userID,
		storage.KeyLoginTime:  strconv.FormatInt(now.UnixMilli(), 10),
	})
	if err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}

	next := Session{LoggedIn: true, UserID: userID, LoginTime: time.UnixMilli(now.UnixMilli())}
	s.set(next)
	s.log.Info("Logged in", logger.F("user_id", userID))
	return nil
}

// Logout ends the session. The in-memory session is cleared even when the
// storage delete fails; the error is still returned.
func (s *Store) Logout(ctx context.Context) error {
	prev := s.Current()
	err := s.kv.Delete(ctx, sessionKeys...)
	s.set(Session{})

	if prev.LoggedIn {
		s.log.Info("Logged out", logger.F("user_id", prev.UserID))
	}
	if err != nil {
		return fmt.Errorf("failed to clear session: %w", err)
	}
	return nil
}

func (s *Store) set(next Session) {
	s.mu.Lock()
	s.current = next
	s.mu.Unlock()
	s.changes.Emit(next)
}
