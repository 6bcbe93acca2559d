package users

import (
	"github.com/user/yelpcamp-go/apperror"
	"github.com/user/yelpcamp-go/auth"
	"github.com/user/yelpcamp-go/pipeline"
	"github.com/user/yelpcamp-go/session"
)

// UserHandlers provides the /users/me pages. Both expect
// auth.RequireAuthenticated to have run.
type UserHandlers struct {
	service *UserService
}

// NewUserHandlers creates new UserHandlers.
func NewUserHandlers(service *UserService) *UserHandlers {
	return &UserHandlers{service: service}
}

// GetProfile renders the current user's profile.
func (h *UserHandlers) GetProfile(c *pipeline.Context) (pipeline.Response, error) {
	user, ok := auth.CurrentUser(c)
	if !ok {
		return nil, apperror.NewAuthError(auth.MsgLoginFirst, nil)
	}
	profile, err := h.service.GetUserProfile(c.Ctx(), user.ID)
	if err != nil {
		return nil, err
	}
	return c.View("users/profile", profile), nil
}

// UpdateProfile saves the submitted email and shows the profile again.
func (h *UserHandlers) UpdateProfile(c *pipeline.Context) (pipeline.Response, error) {
	user, ok := auth.CurrentUser(c)
	if !ok {
		return nil, apperror.NewAuthError(auth.MsgLoginFirst, nil)
	}
	var req UpdateUserProfileRequest
	if err := c.Bind(&req); err != nil {
		return nil, err
	}
	if _, err := h.service.UpdateUserProfile(c.Ctx(), user.ID, &req); err != nil {
		return nil, err
	}
	c.Flash(session.FlashSuccess, "Profile updated!")
	return pipeline.RedirectTo("/users/me"), nil
}
