// Package demo holds the small routers that show off nested routing and
// path-scoped stages: dogs, shelters, a home page and an admin area guarded
// by a shared pass.
package demo

import (
	"crypto/subtle"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/user/yelpcamp-go/apperror"
	"github.com/user/yelpcamp-go/pipeline"
)

// MsgNotAdmin is the whole response for a request without the admin pass.
const MsgNotAdmin = "Sorry! you are not a admin!!!!"

// AdminPrefix is the path the admin guard is scoped to.
const AdminPrefix = "/admin"

func text(body string) pipeline.Stage {
	return func(*pipeline.Context) pipeline.Outcome {
		return pipeline.Respond(&pipeline.Text{Body: body})
	}
}

func textf(format, param string) pipeline.Stage {
	return func(c *pipeline.Context) pipeline.Outcome {
		return pipeline.Respond(&pipeline.Text{Body: fmt.Sprintf(format, c.Param(param))})
	}
}

// Home renders the landing page.
func Home(c *pipeline.Context) pipeline.Outcome {
	return pipeline.Respond(c.View("home", nil))
}

// RegisterRoutes mounts the home page and the dogs and shelters routers.
func RegisterRoutes(r chi.Router, p *pipeline.Pipeline) {
	r.Method(http.MethodGet, "/", p.Handle(Home))
	mountAnimals(r, p, "/dogs", "dog")
	mountAnimals(r, p, "/shelters", "shelter")
}

func mountAnimals(r chi.Router, p *pipeline.Pipeline, prefix, noun string) {
	r.Route(prefix, func(r chi.Router) {
		r.Method(http.MethodGet, "/", p.Handle(text("showing all "+noun+"s!!")))
		r.Method(http.MethodPost, "/", p.Handle(text("creating a new "+noun+"!!")))
		r.Method(http.MethodGet, "/{id}", p.Handle(textf("showing "+noun+" with id: %s", "id")))
		r.Method(http.MethodGet, "/{id}/edit", p.Handle(textf("editing a "+noun+" with id: %s", "id")))
	})
}

// RequireAdmin lets a request through only when ?adminPass= equals pass.
// Anything else gets a single 403 and the route never runs.
func RequireAdmin(pass string) pipeline.Stage {
	return func(c *pipeline.Context) pipeline.Outcome {
		given := c.Query("adminPass")
		if pass != "" && subtle.ConstantTimeCompare([]byte(given), []byte(pass)) == 1 {
			return pipeline.Continue()
		}
		return pipeline.Respond(&pipeline.Text{Status: http.StatusForbidden, Body: MsgNotAdmin})
	}
}

func adminNotFound(*pipeline.Context) pipeline.Outcome {
	return pipeline.Fail(apperror.NewNotFoundError("no such admin page", nil))
}

func adminMethodNotAllowed(*pipeline.Context) pipeline.Outcome {
	return pipeline.Respond(&pipeline.Text{Status: http.StatusMethodNotAllowed, Body: http.StatusText(http.StatusMethodNotAllowed)})
}

// RegisterAdminRoutes scopes RequireAdmin to /admin and mounts the admin pages.
func RegisterAdminRoutes(r chi.Router, p *pipeline.Pipeline, pass string) {
	p.UseScoped(pipeline.Scope{Prefix: AdminPrefix}, RequireAdmin(pass))
	r.Route(AdminPrefix, func(r chi.Router) {
		r.Method(http.MethodGet, "/", p.Handle(text("welcome to admin portal!!")))
		r.Method(http.MethodGet, "/topsecret", p.Handle(text("showing all topsecrets!!")))
		r.Method(http.MethodGet, "/delete_everything", p.Handle(text("deleting all stuff!!")))
		// Unknown paths and methods under /admin still pass the guard first.
		r.NotFound(p.Handle(adminNotFound).ServeHTTP)
		r.MethodNotAllowed(p.Handle(adminMethodNotAllowed).ServeHTTP)
	})
}
