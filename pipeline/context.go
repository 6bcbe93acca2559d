package pipeline

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/user/yelpcamp-go/apperror"
	"github.com/user/yelpcamp-go/session"
)

// Principal is the authenticated user as seen by the pipeline.
type Principal interface {
	PrincipalID() uuid.UUID
}

// Context is the mutable per-request state shared by the stages of one
// pipeline run. It is never shared between requests.
type Context struct {
	Request *http.Request
	// Session is nil unless a session stage ran.
	Session *session.Session
	// Principal is nil for anonymous visitors.
	Principal Principal

	values  map[string]any
	commits []func(w http.ResponseWriter) error
}

func newContext(r *http.Request) *Context {
	return &Context{Request: r}
}

// Ctx is the request's context.Context, cancelled when the client goes away.
func (c *Context) Ctx() context.Context { return c.Request.Context() }

// Param returns a route parameter such as {id}.
func (c *Context) Param(name string) string {
	return chi.URLParam(c.Request, name)
}

// ParamID parses a route parameter as an id. A malformed id cannot name any
// document, so it is reported as not found.
func (c *Context) ParamID(name string) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		return uuid.Nil, apperror.NewNotFoundError("resource not found", err)
	}
	return id, nil
}

// Query returns a query string value.
func (c *Context) Query(name string) string {
	return c.Request.URL.Query().Get(name)
}

// PrincipalID returns the logged-in user's id, if any.
func (c *Context) PrincipalID() (uuid.UUID, bool) {
	if c.Principal == nil {
		return uuid.Nil, false
	}
	return c.Principal.PrincipalID(), true
}

// Flash queues a message on the session. It is a no-op without a session.
func (c *Context) Flash(kind session.FlashKind, text string) {
	if c.Session != nil {
		c.Session.AddFlash(kind, text)
	}
}

// View builds a 200 view, moving pending flash messages into it.
func (c *Context) View(name string, data any) *View {
	v := &View{Name: name, Data: data, CurrentUser: c.Principal}
	if c.Session != nil {
		v.Flash = c.Session.PopFlash()
	}
	return v
}

// Set stores a value for later stages, e.g. a resource a guard already loaded.
func (c *Context) Set(key string, v any) {
	if c.values == nil {
		c.values = make(map[string]any)
	}
	c.values[key] = v
}

// Get returns a value stored with Set.
func (c *Context) Get(key string) (any, bool) {
	v, ok := c.values[key]
	return v, ok
}

// Value returns the value stored under key if it has type T.
func Value[T any](c *Context, key string) (T, bool) {
	v, ok := c.values[key]
	if !ok {
		var zero T
		return zero, false
	}
	t, ok := v.(T)
	return t, ok
}

// OnCommit registers fn to run before the response is written, whatever the
// outcome. Hooks run in registration order.
func (c *Context) OnCommit(fn func(w http.ResponseWriter) error) {
	c.commits = append(c.commits, fn)
}
