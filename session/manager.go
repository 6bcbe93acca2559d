package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
)

// CookieName is the name of the session cookie.
const CookieName = "yelpcamp_session"

// Manager moves sessions between the Store and the browser cookie.
type Manager struct {
	store  Store
	codec  *Codec
	ttl    time.Duration
	secure bool
	logger *slog.Logger
}

// NewManager builds a Manager. secure marks the cookie Secure (HTTPS only).
func NewManager(store Store, codec *Codec, ttl time.Duration, secure bool, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{store: store, codec: codec, ttl: ttl, secure: secure, logger: logger}
}

// Load returns the session named by the request cookie. A missing, tampered,
// expired or unknown token yields a fresh session instead of an error; only
// store failures are reported.
func (m *Manager) Load(ctx context.Context, r *http.Request) (*Session, error) {
	cookie, err := r.Cookie(CookieName)
	if err != nil {
		return New(m.ttl), nil
	}
	id, err := m.codec.Decode(cookie.Value)
	if err != nil {
		m.logger.DebugContext(ctx, "ignoring session cookie", "error", err)
		return New(m.ttl), nil
	}
	s, err := m.store.Get(ctx, id)
	if errors.Is(err, ErrNotFound) {
		return New(m.ttl), nil
	}
	if err != nil {
		return nil, err
	}
	if s.Expired(time.Now()) {
		return New(m.ttl), nil
	}
	return s, nil
}

// Commit persists s if it changed and refreshes the cookie. Untouched sessions
// are not stored, so anonymous browsing creates no records.
func (m *Manager) Commit(ctx context.Context, w http.ResponseWriter, s *Session) error {
	if !s.dirty {
		return nil
	}
	if err := m.dropPrevious(ctx, s); err != nil {
		return err
	}

	s.ExpiresAt = time.Now().UTC().Add(m.ttl)
	if err := m.store.Save(ctx, s); err != nil {
		return err
	}
	token, err := m.codec.Encode(s.ID, s.ExpiresAt)
	if err != nil {
		return err
	}
	http.SetCookie(w, m.cookie(token, s.ExpiresAt, int(m.ttl.Seconds())))
	s.dirty = false
	return nil
}

func (m *Manager) dropPrevious(ctx context.Context, s *Session) error {
	if s.previousID == uuid.Nil {
		return nil
	}
	if err := m.store.Delete(ctx, s.previousID); err != nil {
		return fmt.Errorf("removing regenerated session: %w", err)
	}
	s.previousID = uuid.Nil
	return nil
}

func (m *Manager) cookie(value string, expires time.Time, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     CookieName,
		Value:    value,
		Path:     "/",
		Expires:  expires,
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	}
}

// Sweep removes expired sessions and reports how many were dropped.
func (m *Manager) Sweep(ctx context.Context) (int64, error) {
	return m.store.DeleteExpired(ctx, time.Now())
}
