// Package session keeps per-browser OAuth state and tokens in memory.
package session

import (
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/oauth2"
)

// CookieName is the cookie carrying the session id.
const CookieName = "encore_session"

// Session is the server-side state for one browser.
type Session struct {
	ID        string
	State     string
	Token     *oauth2.Token
	ExpiresAt time.Time
}

// SignedIn reports whether the session holds a token.
func (s Session) SignedIn() bool {
	return s.Token != nil
}

// Store is a mutex-guarded session map. Expired entries are dropped on
// access and on Sweep.
type Store struct {
	mu       sync.Mutex
	sessions map[string]Session
	ttl      time.Duration
	now      func() time.Time
}

// NewStore creates a store whose sessions live for ttl after their last save.
func NewStore(ttl time.Duration) *Store {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &Store{
		sessions: make(map[string]Session),
		ttl:      ttl,
		now:      time.Now,
	}
}

// Create starts a session with a fresh OAuth state.
func (s *Store) Create() Session {
	sess := Session{
		ID:    uuid.NewString(),
		State: uuid.NewString(),
	}
	return s.Save(sess)
}

// Save stores sess and extends its expiry.
func (s *Store) Save(sess Session) Session {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess.ExpiresAt = s.now().Add(s.ttl)
	s.sessions[sess.ID] = sess
	return sess
}

// Get returns the live session with the given id.
func (s *Store) Get(id string) (Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[id]
	if !ok {
		return Session{}, false
	}
	if !s.now().Before(sess.ExpiresAt) {
		delete(s.sessions, id)
		return Session{}, false
	}
	return sess, true
}

// Delete removes a session.
func (s *Store) Delete(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, id)
}

// Sweep drops every expired session and returns how many were removed.
func (s *Store) Sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	removed := 0
	for id, sess := range s.sessions {
		if !now.Before(sess.ExpiresAt) {
			delete(s.sessions, id)
			removed++
		}
	}
	return removed
}

// Len returns the number of stored sessions, expired or not.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// FromRequest resolves the session named by the request cookie.
func (s *Store) FromRequest(r *http.Request) (Session, bool) {
	c, err := r.Cookie(CookieName)
	if err != nil || c.Value == "" {
		return Session{}, false
	}
	return s.Get(c.Value)
}

// SetCookie writes the session cookie.
func (s *Store) SetCookie(w http.ResponseWriter, sess Session, secure bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    sess.ID,
		Path:     "/",
		Expires:  sess.ExpiresAt,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	})
}
