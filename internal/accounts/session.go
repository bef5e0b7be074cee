package accounts

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/tavolaclub/tavola/internal/reservations"
)

var (
	ErrSessionNotFound = errors.New("session not found")
	ErrSessionExpired  = errors.New("session expired")
)

// Session represents an authenticated browser session.
type Session struct {
	Token     string
	UserID    uuid.UUID
	Name      string
	Email     string
	Admin     bool
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// SessionStore manages bearer-token sessions in memory.
type SessionStore struct {
	sessions map[string]*Session
	mu       sync.RWMutex
	ttl      time.Duration
}

// NewSessionStore creates a new in-memory session store.
func NewSessionStore(ttl time.Duration) *SessionStore {
	if ttl == 0 {
		ttl = 12 * time.Hour
	}
	return &SessionStore{
		sessions: make(map[string]*Session),
		ttl:      ttl,
	}
}

// Create issues a new session token for a user.
func (s *SessionStore) Create(user *User) (string, error) {
	if user == nil {
		return "", errors.New("user is nil")
	}

	token, err := generateToken()
	if err != nil {
		return "", err
	}

	now := time.Now()
	session := &Session{
		Token:     token,
		UserID:    user.ID,
		Name:      user.Name,
		Email:     user.Email,
		Admin:     user.Admin,
		IssuedAt:  now,
		ExpiresAt: now.Add(s.ttl),
	}

	s.mu.Lock()
	s.sessions[token] = session
	s.mu.Unlock()

	return token, nil
}

// Get returns the session for a token, refreshing its expiry on use. The
// check and the extension happen under one write lock, and callers get a
// copy so concurrent lookups never share a mutating struct.
func (s *SessionStore) Get(token string) (*Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, ok := s.sessions[token]
	if !ok {
		return nil, ErrSessionNotFound
	}

	now := time.Now()
	if now.After(session.ExpiresAt) {
		delete(s.sessions, token)
		return nil, ErrSessionExpired
	}

	session.ExpiresAt = now.Add(s.ttl)

	copied := *session
	return &copied, nil
}

// Invalidate removes a session from the store.
func (s *SessionStore) Invalidate(token string) {
	s.mu.Lock()
	delete(s.sessions, token)
	s.mu.Unlock()
}

// CleanupExpired removes all expired sessions from the store.
func (s *SessionStore) CleanupExpired() int {
	now := time.Now()
	count := 0

	s.mu.Lock()
	for token, session := range s.sessions {
		if now.After(session.ExpiresAt) {
			delete(s.sessions, token)
			count++
		}
	}
	s.mu.Unlock()

	return count
}

// Count returns the number of active sessions.
func (s *SessionStore) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// StartCleanup starts a background goroutine that periodically removes
// expired sessions until the context is cancelled.
func (s *SessionStore) StartCleanup(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.CleanupExpired()
			}
		}
	}()
}

// FromRequest resolves the booking session carried in the Authorization
// header. It satisfies the session source used by the reservation handler.
func (s *SessionStore) FromRequest(r *http.Request) (reservations.Session, bool) {
	token := bearerToken(r)
	if token == "" {
		return reservations.Session{}, false
	}

	session, err := s.Get(token)
	if err != nil {
		return reservations.Session{}, false
	}

	return reservations.Session{
		UserID: session.UserID,
		Name:   session.Name,
		Email:  session.Email,
	}, true
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if header == "" {
		return ""
	}

	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}

	return strings.TrimSpace(parts[1])
}

func generateToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.URLEncoding.EncodeToString(b), nil
}
