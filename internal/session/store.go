package session

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"sync"

	"github.com/jonboulle/clockwork"

	"github.com/hospital-is/hisctl/internal/errors"
	"github.com/hospital-is/hisctl/internal/log"
	"github.com/hospital-is/hisctl/internal/metrics"
)

// Authenticator exchanges credentials for a session. The request gateway
// implements it against /auth/login and /auth/signup.
type Authenticator interface {
	Authenticate(ctx context.Context, email, password string) (*AuthResult, error)
	Register(ctx context.Context, req SignupRequest) (*AuthResult, error)
}

// Event names the transition that produced a snapshot.
type Event string

const (
	EventInitialized Event = "initialized"
	EventLogin       Event = "login"
	EventSignup      Event = "signup"
	EventLogout      Event = "logout"
	EventExpired     Event = "expired"
)

// Snapshot is an immutable view of the store.
type Snapshot struct {
	Loading bool
	Token   string
	User    *User

	// Expired is set when the backend invalidated the session, and cleared
	// by the next login or signup.
	Expired bool
}

// Authenticated reports whether a session is present.
func (s Snapshot) Authenticated() bool {
	return s.Token != "" && s.User != nil
}

// Role returns the user's role, or "" without a session.
func (s Snapshot) Role() Role {
	if s.User == nil {
		return ""
	}
	return s.User.Role
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the store's logger.
func WithLogger(l *log.Logger) Option {
	return func(s *Store) { s.logger = l.WithComponent("session") }
}

// WithMetrics records session events.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Store) { s.metrics = m }
}

// WithTokenExpiryCheck makes Initialize discard a persisted JWT whose exp
// claim is already past according to clock.
func WithTokenExpiryCheck(clock clockwork.Clock) Option {
	return func(s *Store) {
		s.checkExpiry = true
		s.clock = clock
	}
}

// Store is the single owner of the session. Token and user are persisted
// together and are either both present or both absent.
type Store struct {
	storage     Storage
	auth        Authenticator
	logger      *log.Logger
	metrics     *metrics.Metrics
	clock       clockwork.Clock
	checkExpiry bool

	initOnce sync.Once
	initErr  error

	// writeMu orders persistence and the in-memory update as one step.
	writeMu sync.Mutex

	mu      sync.RWMutex
	loading bool
	token   string
	user    *User
	expired bool

	lmu       sync.Mutex
	listeners map[int]func(Snapshot, Event)
	nextID    int
}

// NewStore creates a store in the loading state. auth may be nil for
// read-only use; Login and Signup then fail with ErrNoAuthenticator.
func NewStore(storage Storage, auth Authenticator, opts ...Option) *Store {
	s := &Store{
		storage:   storage,
		auth:      auth,
		logger:    log.Discard(),
		clock:     clockwork.NewRealClock(),
		loading:   true,
		listeners: make(map[int]func(Snapshot, Event)),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Initialize restores the persisted session. Only the first call does any
// work; it always ends the loading state, even when storage fails.
func (s *Store) Initialize(ctx context.Context) error {
	s.initOnce.Do(func() {
		token, user, err := s.restore(ctx)
		s.initErr = err

		s.writeMu.Lock()
		s.mu.Lock()
		s.loading = false
		if token != "" && user != nil {
			s.token = token
			s.user = user
		}
		snap := s.snapshotLocked()
		s.mu.Unlock()
		s.writeMu.Unlock()

		s.logger.Info("session initialized",
			"backend", s.storage.Name(),
			"authenticated", snap.Authenticated(),
		)
		s.metrics.RecordSessionEvent(string(EventInitialized))
		s.publish(snap, EventInitialized)
	})
	return s.initErr
}

// restore reads both keys. Anything other than a complete, valid pair
// clears storage and yields no session.
func (s *Store) restore(ctx context.Context) (string, *User, error) {
	token, hasToken, err := s.storage.Get(ctx, TokenKey)
	if err != nil {
		return "", nil, s.unreadable(ctx, TokenKey, err)
	}
	raw, hasUser, err := s.storage.Get(ctx, UserKey)
	if err != nil {
		return "", nil, s.unreadable(ctx, UserKey, err)
	}

	if !hasToken && !hasUser {
		return "", nil, nil
	}
	if !hasToken || !hasUser || token == "" {
		s.logger.Warn("discarding partial session", "has_token", hasToken, "has_user", hasUser)
		return "", nil, s.discard(ctx, nil)
	}

	var user User
	if err := json.Unmarshal([]byte(raw), &user); err != nil {
		s.logger.Warn("discarding unreadable user record", "error", err.Error())
		return "", nil, s.discard(ctx, nil)
	}
	if err := user.Validate(); err != nil {
		s.logger.Warn("discarding invalid user record", "error", err.Error())
		return "", nil, s.discard(ctx, nil)
	}

	if s.checkExpiry {
		if exp, ok := TokenExpiry(token); ok && !s.clock.Now().Before(exp) {
			s.logger.Info("discarding expired token", "expired_at", exp)
			return "", nil, s.discard(ctx, nil)
		}
	}

	return token, &user, nil
}

// unreadable clears storage after a failed read. A corrupt document is a
// malformed session and yields no error; other failures are returned.
func (s *Store) unreadable(ctx context.Context, key string, err error) error {
	if errors.Is(err, ErrCorruptStorage) {
		s.logger.WithError(errors.NewCorruptSessionError(s.storage.Name(), err)).
			Warn("discarding corrupt session storage", "key", key)
		return s.discard(ctx, nil)
	}
	return s.discard(ctx, fmt.Errorf("read %s: %w", key, err))
}

// discard deletes both keys and returns cause joined with any delete error.
func (s *Store) discard(ctx context.Context, cause error) error {
	if err := s.storage.Delete(ctx, TokenKey, UserKey); err != nil {
		if cause == nil {
			return fmt.Errorf("clear session: %w", err)
		}
		return fmt.Errorf("%w (clear session: %v)", cause, err)
	}
	return cause
}

// Login authenticates and establishes a session. On failure the error from
// the authenticator is returned as is and the current state is kept.
func (s *Store) Login(ctx context.Context, email, password string) (*User, error) {
	if s.auth == nil {
		return nil, ErrNoAuthenticator
	}
	result, err := s.auth.Authenticate(ctx, email, password)
	if err != nil {
		s.logger.Debug("login rejected", "email", email)
		return nil, err
	}
	return s.establish(ctx, result, EventLogin)
}

// Signup registers a patient account and signs it in.
func (s *Store) Signup(ctx context.Context, req SignupRequest) (*User, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if s.auth == nil {
		return nil, ErrNoAuthenticator
	}
	result, err := s.auth.Register(ctx, req)
	if err != nil {
		return nil, err
	}
	return s.establish(ctx, result, EventSignup)
}

func (s *Store) establish(ctx context.Context, result *AuthResult, event Event) (*User, error) {
	if result == nil || result.Token == "" || result.User == nil {
		return nil, ErrIncompleteSession
	}
	if err := result.User.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrIncompleteSession, err)
	}
	user := *result.User

	data, err := json.Marshal(user)
	if err != nil {
		return nil, fmt.Errorf("encode user: %w", err)
	}

	s.writeMu.Lock()
	if err := s.storage.SetAll(ctx, map[string]string{
		TokenKey: result.Token,
		UserKey:  string(data),
	}); err != nil {
		s.writeMu.Unlock()
		return nil, fmt.Errorf("persist session to %s: %w", s.storage.Name(), err)
	}

	s.mu.Lock()
	s.loading = false
	s.token = result.Token
	s.user = &user
	s.expired = false
	snap := s.snapshotLocked()
	s.mu.Unlock()
	s.writeMu.Unlock()

	s.logger.Info("signed in", "event", string(event), "user_id", user.ID, "role", string(user.Role))
	s.metrics.RecordSessionEvent(string(event))
	s.publish(snap, event)

	out := user
	return &out, nil
}

// Logout removes the session locally. It never calls the backend and is
// safe to repeat.
func (s *Store) Logout(ctx context.Context) error {
	had, err := s.clear(ctx, false)
	if err != nil {
		return err
	}
	if had {
		s.logger.Info("signed out")
		s.metrics.RecordSessionEvent(string(EventLogout))
	}
	return nil
}

// Expire drops a session the backend no longer accepts. The resulting
// snapshot carries Expired so navigation can tell the user why.
func (s *Store) Expire(ctx context.Context) error {
	had, err := s.clear(ctx, true)
	if err != nil {
		return err
	}
	if had {
		s.logger.Warn("session expired by backend")
		s.metrics.RecordSessionEvent(string(EventExpired))
	}
	return nil
}

func (s *Store) clear(ctx context.Context, expired bool) (bool, error) {
	s.writeMu.Lock()
	if err := s.storage.Delete(ctx, TokenKey, UserKey); err != nil {
		s.writeMu.Unlock()
		return false, fmt.Errorf("clear session in %s: %w", s.storage.Name(), err)
	}

	s.mu.Lock()
	had := s.token != "" || s.user != nil
	s.token = ""
	s.user = nil
	if had && expired {
		s.expired = true
	}
	snap := s.snapshotLocked()
	s.mu.Unlock()
	s.writeMu.Unlock()

	if had {
		event := EventLogout
		if expired {
			event = EventExpired
		}
		s.publish(snap, event)
	}
	return had, nil
}

// Snapshot returns the current state.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshotLocked()
}

func (s *Store) snapshotLocked() Snapshot {
	snap := Snapshot{
		Loading: s.loading,
		Token:   s.token,
		Expired: s.expired,
	}
	if s.user != nil {
		u := *s.user
		snap.User = &u
	}
	return snap
}

// Token returns the bearer token, or "" without a session.
func (s *Store) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// User returns a copy of the signed-in user, or nil.
func (s *Store) User() *User {
	return s.Snapshot().User
}

// Subscribe registers fn for every state change. The returned function
// removes it. fn runs on the goroutine that caused the change, with no
// store locks held.
func (s *Store) Subscribe(fn func(Snapshot, Event)) func() {
	s.lmu.Lock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = fn
	s.lmu.Unlock()

	return func() {
		s.lmu.Lock()
		delete(s.listeners, id)
		s.lmu.Unlock()
	}
}

func (s *Store) publish(snap Snapshot, event Event) {
	s.lmu.Lock()
	ids := make([]int, 0, len(s.listeners))
	for id := range s.listeners {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	fns := make([]func(Snapshot, Event), 0, len(ids))
	for _, id := range ids {
		fns = append(fns, s.listeners[id])
	}
	s.lmu.Unlock()

	for _, fn := range fns {
		fn(snap, event)
	}
}
