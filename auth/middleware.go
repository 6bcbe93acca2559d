package auth

import (
	"github.com/google/uuid"

	"github.com/user/yelpcamp-go/apperror"
	"github.com/user/yelpcamp-go/pipeline"
	"github.com/user/yelpcamp-go/session"
)

// RequireAuthenticated lets logged-in visitors through. Anyone else is sent to
// the login page; the requested URL is remembered on the session so login can
// bring them back.
func RequireAuthenticated(c *pipeline.Context) pipeline.Outcome {
	if c.Principal != nil {
		return pipeline.Continue()
	}
	if c.Session != nil {
		c.Session.SetReturnTo(c.Request.URL.RequestURI())
	}
	c.Flash(session.FlashError, MsgLoginFirst)
	return pipeline.Respond(pipeline.RedirectTo(LoginPath))
}

// Owned is a resource with an author.
type Owned interface {
	OwnerID() uuid.UUID
}

// OwnershipRule describes how RequireOwnership finds a resource and where it
// sends visitors who do not own it.
type OwnershipRule[T Owned] struct {
	// Key is the context key the loaded resource is stored under for the handler.
	Key string
	// Load fetches the resource named by the route. It must fail with a
	// NotFound error when the resource does not exist.
	Load func(c *pipeline.Context) (T, error)
	// Fallback is where a non-owner is redirected, usually the resource's page.
	Fallback func(c *pipeline.Context, resource T) string
}

// RequireOwnership is the one load-then-authorize sequence used by every
// owned resource: load by route id (404 when missing), compare the owner with
// the principal, and hand the loaded value to the handler through the context
// so it is not fetched twice. Place it after RequireAuthenticated.
func RequireOwnership[T Owned](rule OwnershipRule[T]) pipeline.Stage {
	return func(c *pipeline.Context) pipeline.Outcome {
		resource, err := rule.Load(c)
		if err != nil {
			return pipeline.Fail(err)
		}
		principal, ok := c.PrincipalID()
		if !ok {
			return pipeline.Fail(apperror.NewAuthError(MsgLoginFirst, nil))
		}
		if resource.OwnerID() != principal {
			c.Flash(session.FlashError, MsgNoPermission)
			return pipeline.Respond(pipeline.RedirectTo(rule.Fallback(c, resource)))
		}
		c.Set(rule.Key, resource)
		return pipeline.Continue()
	}
}
