// Package session issues opaque session tokens. A session stands in for one
// browser: it scopes the cart, the wishlist, the logged-in user and the
// language preference.
package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"storefront/internal/domain"
	"storefront/internal/i18n"
	"storefront/internal/repository/snapshot"
)

const storeName = "session"

var ErrInvalidToken = errors.New("invalid session token")

// ExpiryHook releases state scoped to a session that has expired.
type ExpiryHook func(ctx context.Context, sessionID string)

type Option func(*Service)

// WithExpiryHooks registers hooks run after a session expires.
func WithExpiryHooks(hooks ...ExpiryHook) Option {
	return func(s *Service) { s.hooks = append(s.hooks, hooks...) }
}

type Service struct {
	mu       sync.RWMutex
	store    *snapshot.Adapter
	logger   *zap.Logger
	sessions map[string]domain.Session
	ttl      time.Duration
	now      func() time.Time
	hooks    []ExpiryHook
}

func New(store *snapshot.Adapter, ttl time.Duration, logger *zap.Logger, opts ...Option) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	if ttl <= 0 {
		ttl = 30 * 24 * time.Hour
	}
	s := &Service{
		store:    store,
		logger:   logger,
		sessions: make(map[string]domain.Session),
		ttl:      ttl,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Issue starts an anonymous session in the given language.
func (s *Service) Issue(ctx context.Context, language string) (domain.Session, error) {
	token, err := randomToken()
	if err != nil {
		return domain.Session{}, err
	}
	now := s.now()
	sess := domain.Session{
		ID:        token,
		Language:  i18n.Normalize(language),
		CreatedAt: now,
		ExpiresAt: now.Add(s.ttl),
	}
	s.mu.Lock()
	s.sessions[token] = sess
	s.mu.Unlock()
	s.persist(ctx, sess)
	return sess, nil
}

// Lookup resolves a token, restoring it from the backend after a restart.
// Expired sessions are dropped.
func (s *Service) Lookup(ctx context.Context, token string) (domain.Session, error) {
	if token == "" {
		return domain.Session{}, ErrInvalidToken
	}
	s.mu.RLock()
	sess, ok := s.sessions[token]
	s.mu.RUnlock()
	if !ok {
		sess = snapshot.Load(ctx, s.store, snapshot.SessionKey(storeName, token), domain.Session{})
		if sess.ID != token {
			return domain.Session{}, ErrInvalidToken
		}
		s.mu.Lock()
		s.sessions[token] = sess
		s.mu.Unlock()
	}
	if s.now().After(sess.ExpiresAt) {
		s.mu.Lock()
		delete(s.sessions, token)
		s.mu.Unlock()
		s.expire(ctx, token)
		return domain.Session{}, ErrInvalidToken
	}
	return sess, nil
}

// Sweep evicts every expired session held in memory and returns how many
// were dropped.
func (s *Service) Sweep(ctx context.Context) int {
	now := s.now()
	var expired []string
	s.mu.Lock()
	for token, sess := range s.sessions {
		if now.After(sess.ExpiresAt) {
			expired = append(expired, token)
			delete(s.sessions, token)
		}
	}
	s.mu.Unlock()
	for _, token := range expired {
		s.expire(ctx, token)
	}
	return len(expired)
}

// Run sweeps every interval until ctx is done.
func (s *Service) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := s.Sweep(ctx); n > 0 {
				s.logger.Info("expired sessions evicted", zap.Int("count", n))
			}
		}
	}
}

// SetUser records a successful login or registration on the session.
func (s *Service) SetUser(ctx context.Context, token, userID string) (domain.Session, error) {
	return s.update(ctx, token, func(sess *domain.Session) { sess.UserID = userID })
}

// ClearUser logs the session out. Cart and wishlist stay with the session.
func (s *Service) ClearUser(ctx context.Context, token string) (domain.Session, error) {
	return s.update(ctx, token, func(sess *domain.Session) { sess.UserID = "" })
}

func (s *Service) SetLanguage(ctx context.Context, token, language string) (domain.Session, error) {
	return s.update(ctx, token, func(sess *domain.Session) { sess.Language = i18n.Normalize(language) })
}

// TTLSeconds exposes the session lifetime in seconds.
func (s *Service) TTLSeconds() int {
	return int(s.ttl.Seconds())
}

func (s *Service) update(ctx context.Context, token string, fn func(*domain.Session)) (domain.Session, error) {
	sess, err := s.Lookup(ctx, token)
	if err != nil {
		return domain.Session{}, err
	}
	s.mu.Lock()
	fn(&sess)
	s.sessions[token] = sess
	s.mu.Unlock()
	s.persist(ctx, sess)
	return sess, nil
}

func (s *Service) expire(ctx context.Context, token string) {
	s.store.Delete(ctx, snapshot.SessionKey(storeName, token))
	for _, hook := range s.hooks {
		hook(ctx, token)
	}
}

func (s *Service) persist(ctx context.Context, sess domain.Session) {
	s.store.Save(ctx, snapshot.SessionKey(storeName, sess.ID), sess)
}
