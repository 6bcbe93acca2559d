package auth

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/user/yelpcamp-go/apperror"
	"github.com/user/yelpcamp-go/pipeline"
	"github.com/user/yelpcamp-go/session"
)

// harness wires sessions, principal loading and the auth routes the way the
// server does, with everything in memory.
type harness struct {
	t        *testing.T
	svc      *AuthService
	sessions *session.MemoryStore
	manager  *session.Manager
	pipe     *pipeline.Pipeline
	router   chi.Router
	cookies  []*http.Cookie
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	svc, _ := newTestService(t)
	store := session.NewMemoryStore()
	manager := session.NewManager(store, session.NewCodec("test-secret"), time.Hour, false, nil)

	p := pipeline.New(pipeline.NewErrorHandler(false, nil), nil)
	p.Use(pipeline.Sessions(manager), LoadPrincipal(svc))

	h := NewHandlers(svc)
	r := chi.NewRouter()
	r.Method(http.MethodPost, "/register", p.Handle(h.Register))
	r.Method(http.MethodPost, "/login", p.Handle(h.Login))
	r.Method(http.MethodGet, "/logout", p.Handle(h.Logout))
	return &harness{t: t, svc: svc, sessions: store, manager: manager, pipe: p, router: r}
}

// do sends a request carrying the cookies collected so far.
func (h *harness) do(method, target string, form url.Values) *httptest.ResponseRecorder {
	h.t.Helper()
	var body *strings.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	} else {
		body = strings.NewReader("")
	}
	req := httptest.NewRequest(method, target, body)
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	for _, c := range h.cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	h.router.ServeHTTP(rec, req)
	for _, c := range rec.Result().Cookies() {
		h.cookies = []*http.Cookie{c}
	}
	return rec
}

// current loads the session the harness cookie points at.
func (h *harness) current() *session.Session {
	h.t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	for _, c := range h.cookies {
		req.AddCookie(c)
	}
	s, err := h.manager.Load(context.Background(), req)
	require.NoError(h.t, err)
	return s
}

func TestRequireAuthenticated_RedirectsAndRemembersPath(t *testing.T) {
	h := newHarness(t)
	reached := false
	h.router.Method(http.MethodGet, "/campgrounds/new", h.pipe.Handle(RequireAuthenticated, func(c *pipeline.Context) pipeline.Outcome {
		reached = true
		return pipeline.Respond(&pipeline.Text{Body: "form"})
	}))

	rec := h.do(http.MethodGet, "/campgrounds/new", nil)
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, LoginPath, rec.Header().Get("Location"))
	assert.False(t, reached)

	s := h.current()
	assert.Equal(t, "/campgrounds/new", s.ReturnTo)
	assert.Equal(t, []session.FlashMessage{{Kind: session.FlashError, Text: MsgLoginFirst}}, s.Flash)
}

func TestLogin_ReturnsToRememberedPath(t *testing.T) {
	h := newHarness(t)
	_, err := h.svc.Register(context.Background(), "colt", "", "monkey")
	require.NoError(t, err)
	h.router.Method(http.MethodGet, "/campgrounds/new", h.pipe.Handle(RequireAuthenticated, func(c *pipeline.Context) pipeline.Outcome {
		return pipeline.Respond(&pipeline.Text{Body: "form"})
	}))

	h.do(http.MethodGet, "/campgrounds/new", nil)
	rec := h.do(http.MethodPost, "/login", url.Values{"username": {"colt"}, "password": {"monkey"}})
	require.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/campgrounds/new", rec.Header().Get("Location"))

	rec = h.do(http.MethodGet, "/campgrounds/new", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "form", rec.Body.String())
}

func TestLogin_BadPasswordFlashesAndRedirects(t *testing.T) {
	h := newHarness(t)
	_, err := h.svc.Register(context.Background(), "colt", "", "monkey")
	require.NoError(t, err)

	rec := h.do(http.MethodPost, "/login", url.Values{"username": {"colt"}, "password": {"nope"}})
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, LoginPath, rec.Header().Get("Location"))

	s := h.current()
	assert.False(t, s.Authenticated())
	assert.Equal(t, []session.FlashMessage{{Kind: session.FlashError, Text: MsgBadCredential}}, s.Flash)
}

func TestRegister_LogsInAndRejectsDuplicates(t *testing.T) {
	h := newHarness(t)
	form := url.Values{"username": {"colt"}, "email": {"colt@example.com"}, "password": {"monkey"}}

	rec := h.do(http.MethodPost, "/register", form)
	require.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, DefaultAfterAuth, rec.Header().Get("Location"))
	assert.True(t, h.current().Authenticated())

	h.do(http.MethodGet, "/logout", nil)
	s := h.current()
	assert.False(t, s.Authenticated())
	assert.Contains(t, s.Flash, session.FlashMessage{Kind: session.FlashSuccess, Text: MsgLoggedOut})

	rec = h.do(http.MethodPost, "/register", form)
	assert.Equal(t, RegisterPath, rec.Header().Get("Location"))
}

func TestRegister_EmptyPasswordIsBadRequest(t *testing.T) {
	h := newHarness(t)
	rec := h.do(http.MethodPost, "/register", url.Values{"username": {"colt"}, "password": {""}})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "password")
}

type note struct {
	ID     uuid.UUID
	Author uuid.UUID
	Text   string
}

func (n *note) OwnerID() uuid.UUID { return n.Author }

func TestRequireOwnership(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	owner, err := h.svc.Register(ctx, "owner", "", "pw")
	require.NoError(t, err)
	_, err = h.svc.Register(ctx, "intruder", "", "pw")
	require.NoError(t, err)

	n := &note{ID: uuid.New(), Author: owner.ID, Text: "original"}
	guard := RequireOwnership(OwnershipRule[*note]{
		Key: "note",
		Load: func(c *pipeline.Context) (*note, error) {
			id, err := c.ParamID("id")
			if err != nil {
				return nil, err
			}
			if id != n.ID {
				return nil, apperror.NewNotFoundError("note not found", nil)
			}
			return n, nil
		},
		Fallback: func(_ *pipeline.Context, n *note) string { return "/notes/" + n.ID.String() },
	})
	h.router.Method(http.MethodPut, "/notes/{id}", h.pipe.Handle(RequireAuthenticated, guard,
		pipeline.HandlerFunc(func(c *pipeline.Context) (pipeline.Response, error) {
			loaded, ok := pipeline.Value[*note](c, "note")
			if !ok {
				return nil, errors.New("guard did not store the note")
			}
			loaded.Text = "edited"
			return pipeline.RedirectTo("/notes/" + loaded.ID.String()), nil
		})))

	h.do(http.MethodPost, "/login", url.Values{"username": {"intruder"}, "password": {"pw"}})
	rec := h.do(http.MethodPut, "/notes/"+n.ID.String(), nil)
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/notes/"+n.ID.String(), rec.Header().Get("Location"))
	assert.Equal(t, "original", n.Text)
	assert.Contains(t, h.current().Flash, session.FlashMessage{Kind: session.FlashError, Text: MsgNoPermission})

	rec = h.do(http.MethodPut, "/notes/"+uuid.NewString(), nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	h.do(http.MethodGet, "/logout", nil)
	h.do(http.MethodPost, "/login", url.Values{"username": {"owner"}, "password": {"pw"}})
	rec = h.do(http.MethodPut, "/notes/"+n.ID.String(), nil)
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "edited", n.Text)
}
