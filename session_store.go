package memberhub

import (
	"context"
	"sync"

	goerrors "github.com/goliatone/go-errors"
)

// DefaultStorageKey is the durable entry the serialized session lives under.
const DefaultStorageKey = "memberhub_user"

// AuthAPI is the slice of the backend the session store depends on.
type AuthAPI interface {
	Login(ctx context.Context, payload LoginRequest) (*Session, error)
}

// Store is the single source of truth for the authenticated identity.
// At most one session is current at any time; login and logout replace
// or clear it wholesale and every change is pushed to subscribers with
// replay-1 semantics.
type Store struct {
	mu          sync.RWMutex
	current     *Session
	nextSubID   int
	subscribers map[int]chan *Session

	api        AuthAPI
	storage    Storage
	storageKey string
	navigator  Navigator
	inspector  *TokenInspector
	logger     Logger
}

// StoreOption configures the Store.
type StoreOption func(*Store)

// WithStorage sets the durable storage backend.
func WithStorage(storage Storage) StoreOption {
	return func(s *Store) {
		if storage != nil {
			s.storage = storage
		}
	}
}

// WithStorageKey overrides the durable entry key.
func WithStorageKey(key string) StoreOption {
	return func(s *Store) {
		if key != "" {
			s.storageKey = key
		}
	}
}

// WithNavigator sets the navigation sink used after logout.
func WithNavigator(nav Navigator) StoreOption {
	return func(s *Store) {
		if nav != nil {
			s.navigator = nav
		}
	}
}

// WithTokenInspector overrides the token expiry checker.
func WithTokenInspector(ti *TokenInspector) StoreOption {
	return func(s *Store) {
		if ti != nil {
			s.inspector = ti
		}
	}
}

// WithStoreLogger overrides the logger.
func WithStoreLogger(logger Logger) StoreOption {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewStore builds a session store and rehydrates it synchronously from
// durable storage, so the first value any subscriber observes is the
// persisted session when one exists and decodes cleanly.
func NewStore(api AuthAPI, opts ...StoreOption) *Store {
	s := &Store{
		api:         api,
		subscribers: map[int]chan *Session{},
		storage:     NewMemoryStorage(),
		storageKey:  DefaultStorageKey,
		inspector:   NewTokenInspector(),
		logger:      defLogger{},
	}

	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}

	s.rehydrate()

	return s
}

func (s *Store) rehydrate() {
	raw, found, err := s.storage.Read(s.storageKey)
	if err != nil {
		s.logger.Warn("session rehydrate read failed", "error", err)
		return
	}
	if !found {
		return
	}

	sess, err := decodeSession(raw)
	if err != nil {
		s.logger.Warn("discarding malformed persisted session", "error", err)
		if err := s.storage.Delete(s.storageKey); err != nil {
			s.logger.Warn("failed to remove malformed persisted session", "error", err)
		}
		return
	}

	s.current = sess
}

// Login authenticates against the backend, persists the returned session
// and publishes it. Credential rejections propagate as CategoryAuth
// errors; they are never swallowed.
func (s *Store) Login(ctx context.Context, username, password string) (*Session, error) {
	payload := LoginRequest{Username: username, Password: password}
	if err := payload.Validate(); err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryValidation, "invalid login payload")
	}

	sess, err := s.api.Login(ctx, payload)
	if err != nil {
		var richErr *goerrors.Error
		if goerrors.As(err, &richErr) {
			return nil, richErr
		}
		return nil, goerrors.Wrap(err, goerrors.CategoryAuth, ErrInvalidCredentials.Message).
			WithTextCode(TextCodeInvalidCredentials)
	}

	raw, err := encodeSession(sess)
	if err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to serialize session")
	}

	if err := s.storage.Write(s.storageKey, raw); err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to persist session")
	}

	s.publish(sess)

	return sess, nil
}

// Logout clears durable storage, publishes a nil session and navigates
// to the login surface. Safe to call when already logged out.
func (s *Store) Logout() {
	if err := s.storage.Delete(s.storageKey); err != nil {
		s.logger.Warn("logout storage delete failed", "error", err)
	}

	s.publish(nil)

	if s.navigator != nil {
		s.navigator.NavigateTo(RouteLogin)
	}
}

// Current returns the latest published session, nil when logged out.
func (s *Store) Current() *Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// Observe returns a subscription to session changes. The current value
// is replayed immediately; the cancel function ends the subscription.
func (s *Store) Observe() (<-chan *Session, func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextSubID
	s.nextSubID++

	ch := make(chan *Session, 8)
	ch <- s.current
	s.subscribers[id] = ch

	cancel := func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if sub, ok := s.subscribers[id]; ok {
			delete(s.subscribers, id)
			close(sub)
		}
	}

	return ch, cancel
}

// RawToken exposes the current raw token for the bearer middleware.
// Empty when logged out.
func (s *Store) RawToken() string {
	if sess := s.Current(); sess != nil {
		return sess.Token
	}
	return ""
}

// Role returns the current role, defaulting to USER without a session.
func (s *Store) Role() UserRole {
	if sess := s.Current(); sess != nil && sess.Role.IsValid() {
		return sess.Role
	}
	return RoleUser
}

// IsAdmin reports whether the current session carries the admin role.
func (s *Store) IsAdmin() bool {
	return s.Current().IsAdmin()
}

// CanModify reports whether the current identity may modify the target.
func (s *Store) CanModify(target Member) bool {
	return CanModify(s.Current(), target)
}

// IsLoggedIn reports whether a live session exists. A session whose
// token turns out expired is purged on the spot through the same cleanup
// path as an explicit logout, so stale state heals on first check.
func (s *Store) IsLoggedIn() bool {
	sess := s.Current()
	if sess == nil || sess.Token == "" {
		return false
	}

	if s.inspector.IsExpired(sess.Token) {
		s.logger.Info("session token expired, purging session")
		s.Logout()
		return false
	}

	return true
}

func (s *Store) publish(sess *Session) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.current = sess

	for id, ch := range s.subscribers {
		select {
		case ch <- sess:
		default:
			s.logger.Warn("session subscriber %d is not draining, dropping update", id)
		}
	}
}
