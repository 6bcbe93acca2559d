package campgrounds

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/user/yelpcamp-go/apperror"
	"github.com/user/yelpcamp-go/auth"
	"github.com/user/yelpcamp-go/pipeline"
	"github.com/user/yelpcamp-go/session"
)

// Context keys for resources loaded by the ownership guards.
const (
	campgroundKey = "campground"
	reviewKey     = "review"
)

// Handlers serves the campground and review routes.
type Handlers struct {
	service *Service
}

// NewHandlers creates new Handlers.
func NewHandlers(service *Service) *Handlers {
	return &Handlers{service: service}
}

// RegisterRoutes mounts the campground routes on r, each running through p.
func (h *Handlers) RegisterRoutes(r chi.Router, p *pipeline.Pipeline) {
	ownCampground := auth.RequireOwnership(auth.OwnershipRule[*Campground]{
		Key:      campgroundKey,
		Load:     h.loadCampground,
		Fallback: func(_ *pipeline.Context, c *Campground) string { return showPath(c) },
	})
	ownReview := auth.RequireOwnership(auth.OwnershipRule[*Review]{
		Key:  reviewKey,
		Load: h.loadReview,
		Fallback: func(c *pipeline.Context, _ *Review) string {
			return "/campgrounds/" + c.Param("id")
		},
	})

	r.Route("/campgrounds", func(r chi.Router) {
		r.Method(http.MethodGet, "/", p.Handle(pipeline.HandlerFunc(h.Index)))
		r.Method(http.MethodPost, "/", p.Handle(auth.RequireAuthenticated, pipeline.HandlerFunc(h.Create)))
		r.Method(http.MethodGet, "/new", p.Handle(auth.RequireAuthenticated, pipeline.HandlerFunc(h.New)))
		r.Method(http.MethodGet, "/{id}", p.Handle(pipeline.HandlerFunc(h.Show)))
		r.Method(http.MethodGet, "/{id}/edit", p.Handle(auth.RequireAuthenticated, ownCampground, pipeline.HandlerFunc(h.Edit)))
		r.Method(http.MethodPut, "/{id}", p.Handle(auth.RequireAuthenticated, ownCampground, pipeline.HandlerFunc(h.Update)))
		r.Method(http.MethodDelete, "/{id}", p.Handle(auth.RequireAuthenticated, ownCampground, pipeline.HandlerFunc(h.Delete)))

		r.Method(http.MethodPost, "/{id}/reviews", p.Handle(auth.RequireAuthenticated, pipeline.HandlerFunc(h.CreateReview)))
		r.Method(http.MethodDelete, "/{id}/reviews/{reviewId}", p.Handle(auth.RequireAuthenticated, ownReview, pipeline.HandlerFunc(h.DeleteReview)))
	})
}

func showPath(c *Campground) string {
	return "/campgrounds/" + c.ID.String()
}

func (h *Handlers) loadCampground(c *pipeline.Context) (*Campground, error) {
	id, err := c.ParamID("id")
	if err != nil {
		return nil, apperror.NewNotFoundError(MsgCampgroundNotFound, err)
	}
	return h.service.Get(c.Ctx(), id)
}

func (h *Handlers) loadReview(c *pipeline.Context) (*Review, error) {
	campgroundID, err := c.ParamID("id")
	if err != nil {
		return nil, apperror.NewNotFoundError(MsgCampgroundNotFound, err)
	}
	reviewID, err := c.ParamID("reviewId")
	if err != nil {
		return nil, apperror.NewNotFoundError("Cannot find that Review", err)
	}
	return h.service.GetReview(c.Ctx(), campgroundID, reviewID)
}

// Index lists all campgrounds.
func (h *Handlers) Index(c *pipeline.Context) (pipeline.Response, error) {
	camps, err := h.service.List(c.Ctx())
	if err != nil {
		return nil, err
	}
	return c.View("campgrounds/index", map[string]any{"campgrounds": camps}), nil
}

// New renders the empty campground form.
func (h *Handlers) New(c *pipeline.Context) (pipeline.Response, error) {
	return c.View("campgrounds/new", map[string]any{"campground": CampgroundInput{}}), nil
}

// Create stores a campground authored by the current user.
func (h *Handlers) Create(c *pipeline.Context) (pipeline.Response, error) {
	author, _ := c.PrincipalID()
	var in CampgroundInput
	if err := c.Bind(&in); err != nil {
		return nil, err
	}
	camp, err := h.service.Create(c.Ctx(), author, &in)
	if err != nil {
		return nil, err
	}
	c.Flash(session.FlashSuccess, "Successfully created a new campground!")
	return pipeline.RedirectTo(showPath(camp)), nil
}

// Show renders one campground with reviews. An unknown id sends the visitor
// back to the list with a flash instead of an error page.
func (h *Handlers) Show(c *pipeline.Context) (pipeline.Response, error) {
	id, err := c.ParamID("id")
	if err != nil {
		return h.missing(c), nil
	}
	detail, err := h.service.GetDetail(c.Ctx(), id)
	if apperror.IsNotFound(err) {
		return h.missing(c), nil
	}
	if err != nil {
		return nil, err
	}
	return c.View("campgrounds/show", map[string]any{"campground": detail}), nil
}

func (h *Handlers) missing(c *pipeline.Context) pipeline.Response {
	c.Flash(session.FlashError, MsgCampgroundNotFound)
	return pipeline.RedirectTo("/campgrounds")
}

// Edit renders the edit form for the campground the guard loaded.
func (h *Handlers) Edit(c *pipeline.Context) (pipeline.Response, error) {
	camp, ok := pipeline.Value[*Campground](c, campgroundKey)
	if !ok {
		return nil, apperror.NewInternalError("campground was not loaded", nil)
	}
	return c.View("campgrounds/edit", map[string]any{"campground": camp}), nil
}

// Update saves the edit form.
func (h *Handlers) Update(c *pipeline.Context) (pipeline.Response, error) {
	camp, ok := pipeline.Value[*Campground](c, campgroundKey)
	if !ok {
		return nil, apperror.NewInternalError("campground was not loaded", nil)
	}
	var in CampgroundInput
	if err := c.Bind(&in); err != nil {
		return nil, err
	}
	updated, err := h.service.Update(c.Ctx(), camp.ID, &in)
	if err != nil {
		return nil, err
	}
	c.Flash(session.FlashSuccess, "Successfully edited the campground!")
	return pipeline.RedirectTo(showPath(updated)), nil
}

// Delete removes the campground and its reviews.
func (h *Handlers) Delete(c *pipeline.Context) (pipeline.Response, error) {
	camp, ok := pipeline.Value[*Campground](c, campgroundKey)
	if !ok {
		return nil, apperror.NewInternalError("campground was not loaded", nil)
	}
	if err := h.service.Delete(c.Ctx(), camp.ID); err != nil {
		return nil, err
	}
	c.Flash(session.FlashSuccess, "Successfully deleted the campground!")
	return pipeline.RedirectTo("/campgrounds"), nil
}

// CreateReview posts a review by the current user.
func (h *Handlers) CreateReview(c *pipeline.Context) (pipeline.Response, error) {
	campgroundID, err := c.ParamID("id")
	if err != nil {
		return nil, apperror.NewNotFoundError(MsgCampgroundNotFound, err)
	}
	author, _ := c.PrincipalID()
	var in ReviewInput
	if err := c.Bind(&in); err != nil {
		return nil, err
	}
	if _, err := h.service.AddReview(c.Ctx(), campgroundID, author, &in); err != nil {
		return nil, err
	}
	c.Flash(session.FlashSuccess, "Successfully created the review!")
	return pipeline.RedirectTo("/campgrounds/" + campgroundID.String()), nil
}

// DeleteReview removes the review the guard loaded.
func (h *Handlers) DeleteReview(c *pipeline.Context) (pipeline.Response, error) {
	review, ok := pipeline.Value[*Review](c, reviewKey)
	if !ok {
		return nil, apperror.NewInternalError("review was not loaded", nil)
	}
	if err := h.service.DeleteReview(c.Ctx(), review.ID); err != nil {
		return nil, err
	}
	c.Flash(session.FlashSuccess, "Successfully deleted the review!")
	return pipeline.RedirectTo("/campgrounds/" + review.CampgroundID.String()), nil
}
