// Package session owns the client's authentication state.
package session

import (
	"context"
	"errors"
	"io"
	"log"
	"strings"
	"sync"
	"time"

	"storefront-orders/internal/domain"
	"storefront-orders/internal/repository/credential"
)

// DefaultTTL is the retention window of a persisted token.
const DefaultTTL = 7 * 24 * time.Hour

// IdentityResolver derives a user id from a credential without a network call.
type IdentityResolver interface {
	ResolveUserID(token string) (string, error)
}

// Store is the single writer of the session. Readers take snapshots through
// Current or subscribe to changes.
type Store struct {
	creds    credential.Repository
	resolver IdentityResolver
	logger   *log.Logger
	ttl      time.Duration
	now      func() time.Time

	// writeMu serializes mutations together with their notifications so
	// listeners observe changes in the order they were made.
	writeMu sync.Mutex

	mu        sync.RWMutex
	current   domain.Session
	listeners []listener
	nextID    uint64
}

type listener struct {
	id uint64
	fn func(domain.Session)
}

// Option configures a Store.
type Option func(*Store)

// WithResolver enables identity resolution during Hydrate.
func WithResolver(r IdentityResolver) Option {
	return func(s *Store) { s.resolver = r }
}

// WithLogger sets the logger used for swallowed persistence errors.
func WithLogger(l *log.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithTTL overrides the token retention window.
func WithTTL(d time.Duration) Option {
	return func(s *Store) {
		if d > 0 {
			s.ttl = d
		}
	}
}

// WithClock overrides the clock used to compute token expiry.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

// New returns a Store holding the empty session.
func New(creds credential.Repository, opts ...Option) *Store {
	s := &Store{
		creds:  creds,
		logger: log.New(io.Discard, "", 0),
		ttl:    DefaultTTL,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Current returns a snapshot of the session.
func (s *Store) Current() domain.Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// Hydrate restores the session from the persisted token, if any. The token
// is not validated remotely. Storage errors leave the session untouched.
func (s *Store) Hydrate(ctx context.Context) domain.Session {
	c, err := s.creds.Get(ctx, credential.TokenSlot)
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			s.logger.Printf("session: hydrate read error=%v", err)
		}
		return s.Current()
	}

	next := domain.Session{AuthToken: c.Token, IsAuthenticated: true}
	if s.resolver != nil {
		userID, err := s.resolver.ResolveUserID(c.Token)
		if err != nil {
			s.logger.Printf("session: hydrate identity unresolved error=%v", err)
		} else {
			next.UserID = domain.NormalizeID(userID)
		}
	}
	s.set(next)
	return next
}

// Login persists the token and replaces the session in one step.
func (s *Store) Login(ctx context.Context, user domain.User, token string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return domain.ErrEmptyToken
	}
	err := s.creds.Put(ctx, credential.Credential{
		Name:      credential.TokenSlot,
		Token:     token,
		ExpiresAt: s.now().Add(s.ttl),
	})
	if err != nil {
		s.logger.Printf("session: persist token error=%v", err)
	}
	s.set(domain.Session{
		UserID:          domain.NormalizeID(user.ID),
		AuthToken:       token,
		IsAuthenticated: true,
	})
	return nil
}

// Logout purges the persisted token and resets to the empty session.
func (s *Store) Logout(ctx context.Context) {
	if err := s.creds.Delete(ctx, credential.TokenSlot); err != nil {
		s.logger.Printf("session: purge token error=%v", err)
	}
	s.set(domain.Session{})
}

// Subscribe registers fn to run after every session change. fn runs on the
// mutating goroutine and must not call Login, Logout or Hydrate.
func (s *Store) Subscribe(fn func(domain.Session)) (unsubscribe func()) {
	s.mu.Lock()
	s.nextID++
	id := s.nextID
	s.listeners = append(s.listeners, listener{id: id, fn: fn})
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		for i, l := range s.listeners {
			if l.id == id {
				s.listeners = append(s.listeners[:i:i], s.listeners[i+1:]...)
				return
			}
		}
	}
}

func (s *Store) set(next domain.Session) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	s.mu.Lock()
	changed := s.current != next
	s.current = next
	listeners := make([]listener, len(s.listeners))
	copy(listeners, s.listeners)
	s.mu.Unlock()

	if !changed {
		return
	}
	for _, l := range listeners {
		l.fn(next)
	}
}
