package auth

import (
	"net/http"
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/securecookie"
)

const sessionCookieName = "session_id"

// SessionManager tracks logged-in users for the lifetime of the process.
// A session has no expiry: it exists from login until explicit logout.
type SessionManager struct {
	sessions map[string]string // session ID -> username
	mu       sync.RWMutex
	codec    *securecookie.SecureCookie
}

func NewSessionManager(secret string) *SessionManager {
	return &SessionManager{
		sessions: make(map[string]string),
		codec:    securecookie.New([]byte(secret), nil),
	}
}

func (sm *SessionManager) CreateSession(username string) string {
	sessionID := uuid.NewString()

	sm.mu.Lock()
	sm.sessions[sessionID] = username
	sm.mu.Unlock()

	return sessionID
}

func (sm *SessionManager) GetUsername(sessionID string) (string, bool) {
	sm.mu.RLock()
	username, exists := sm.sessions[sessionID]
	sm.mu.RUnlock()
	return username, exists
}

func (sm *SessionManager) DeleteSession(sessionID string) {
	sm.mu.Lock()
	delete(sm.sessions, sessionID)
	sm.mu.Unlock()
}

func (sm *SessionManager) SetSessionCookie(w http.ResponseWriter, sessionID string) error {
	encoded, err := sm.codec.Encode(sessionCookieName, sessionID)
	if err != nil {
		return err
	}
	cookie := &http.Cookie{
		Name:     sessionCookieName,
		Value:    encoded,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		// Secure: true, // Enable in production with HTTPS
	}
	http.SetCookie(w, cookie)
	return nil
}

func (sm *SessionManager) ClearSessionCookie(w http.ResponseWriter) {
	cookie := &http.Cookie{
		Name:     sessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
	}
	http.SetCookie(w, cookie)
}

// SessionFromRequest decodes the signed cookie back into a session ID.
// A missing or tampered cookie yields the empty string.
func (sm *SessionManager) SessionFromRequest(r *http.Request) string {
	cookie, err := r.Cookie(sessionCookieName)
	if err != nil {
		return ""
	}

	var sessionID string
	if err := sm.codec.Decode(sessionCookieName, cookie.Value, &sessionID); err != nil {
		return ""
	}
	return sessionID
}
