// Package session keeps per-visitor state between requests.
//
// A Session is a typed record (authenticated user, pending return path, flash
// messages) stored server-side in a Store. The browser only holds a signed
// token naming the record; see Codec and Manager.
package session

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// ErrNotFound is returned by stores when no session has the requested id.
var ErrNotFound = errors.New("session not found")

// FlashKind selects how a flash message is shown.
type FlashKind string

const (
	FlashSuccess FlashKind = "success"
	FlashError   FlashKind = "error"
)

// FlashMessage is shown once and then dropped.
type FlashMessage struct {
	Kind FlashKind `json:"kind"`
	Text string    `json:"text"`
}

// Session is the server-side state for one visitor.
type Session struct {
	ID        uuid.UUID
	UserID    *uuid.UUID // nil until the visitor logs in
	ReturnTo  string     // where to send the visitor after login
	Flash     []FlashMessage
	CreatedAt time.Time
	ExpiresAt time.Time

	dirty      bool
	previousID uuid.UUID // set by Regenerate; the old record is removed on commit
}

// New returns an empty session that lives for ttl.
func New(ttl time.Duration) *Session {
	now := time.Now().UTC()
	return &Session{
		ID:        uuid.New(),
		CreatedAt: now,
		ExpiresAt: now.Add(ttl),
	}
}

// Authenticated reports whether a user is logged in on this session.
func (s *Session) Authenticated() bool {
	return s.UserID != nil
}

// Login records userID as the authenticated principal. It also regenerates
// the session id so a token issued before login cannot be replayed after it.
func (s *Session) Login(userID uuid.UUID) {
	id := userID
	s.UserID = &id
	s.Regenerate()
}

// Logout forgets the principal and moves the visitor to a fresh id.
// Pending flash messages survive so a goodbye message can still be shown.
func (s *Session) Logout() {
	s.UserID = nil
	s.ReturnTo = ""
	s.Regenerate()
}

// Regenerate assigns a new id. The record under the old id is removed when
// the session is committed.
func (s *Session) Regenerate() {
	if s.previousID == uuid.Nil {
		s.previousID = s.ID
	}
	s.ID = uuid.New()
	s.dirty = true
}

// AddFlash queues a message for the next rendered view.
func (s *Session) AddFlash(kind FlashKind, text string) {
	s.Flash = append(s.Flash, FlashMessage{Kind: kind, Text: text})
	s.dirty = true
}

// PopFlash returns the queued messages and clears them.
func (s *Session) PopFlash() []FlashMessage {
	if len(s.Flash) == 0 {
		return nil
	}
	out := s.Flash
	s.Flash = nil
	s.dirty = true
	return out
}

// SetReturnTo remembers where an unauthenticated visitor was headed.
func (s *Session) SetReturnTo(path string) {
	s.ReturnTo = path
	s.dirty = true
}

// TakeReturnTo returns the remembered path, or fallback when none is set,
// and clears it.
func (s *Session) TakeReturnTo(fallback string) string {
	if s.ReturnTo == "" {
		return fallback
	}
	to := s.ReturnTo
	s.ReturnTo = ""
	s.dirty = true
	return to
}

// Expired reports whether the session is past its expiry at now.
func (s *Session) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}

// Dirty reports whether the session changed since it was loaded.
func (s *Session) Dirty() bool { return s.dirty }


func (s *Session) clone() *Session {
	c := *s
	if s.UserID != nil {
		id := *s.UserID
		c.UserID = &id
	}
	c.Flash = append([]FlashMessage(nil), s.Flash...)
	c.dirty, c.previousID = false, uuid.Nil
	return &c
}
