package auth

import (
	"errors"

	"github.com/user/yelpcamp-go/apperror"
	"github.com/user/yelpcamp-go/pipeline"
	"github.com/user/yelpcamp-go/session"
)

// Handlers serves the register, login and logout pages.
type Handlers struct {
	service *AuthService
}

// NewHandlers creates new Handlers.
func NewHandlers(service *AuthService) *Handlers {
	return &Handlers{service: service}
}

// RegisterForm renders the registration page.
func (h *Handlers) RegisterForm(c *pipeline.Context) pipeline.Outcome {
	return pipeline.Respond(c.View("users/register", nil))
}

// Register creates the account and logs the new user in. A taken username
// is reported on the registration page rather than as an error page.
func (h *Handlers) Register(c *pipeline.Context) pipeline.Outcome {
	var req RegisterRequest
	if err := c.Bind(&req); err != nil {
		return pipeline.Fail(err)
	}
	user, err := h.service.Register(c.Ctx(), req.Username, req.Email, req.Password)
	if appErr, ok := apperror.FromError(err); ok && appErr.Type == apperror.ConflictError {
		c.Flash(session.FlashError, appErr.Message)
		return pipeline.Respond(pipeline.RedirectTo(RegisterPath))
	}
	if err != nil {
		return pipeline.Fail(err)
	}
	if c.Session != nil {
		c.Session.Login(user.ID)
	}
	c.Flash(session.FlashSuccess, MsgWelcome)
	return pipeline.Respond(pipeline.RedirectTo(DefaultAfterAuth))
}

// LoginForm renders the login page.
func (h *Handlers) LoginForm(c *pipeline.Context) pipeline.Outcome {
	return pipeline.Respond(c.View("users/login", nil))
}

// Login checks the credentials and sends the user back to where they were
// headed before they were asked to log in.
func (h *Handlers) Login(c *pipeline.Context) pipeline.Outcome {
	var req LoginRequest
	if err := c.Bind(&req); err != nil {
		return pipeline.Fail(err)
	}
	user, err := h.service.Authenticate(c.Ctx(), req.Username, req.Password)
	if errors.Is(err, ErrInvalidCredentials) {
		c.Flash(session.FlashError, MsgBadCredential)
		return pipeline.Respond(pipeline.RedirectTo(LoginPath))
	}
	if err != nil {
		return pipeline.Fail(err)
	}

	redirect := DefaultAfterAuth
	if c.Session != nil {
		redirect = c.Session.TakeReturnTo(DefaultAfterAuth)
		c.Session.Login(user.ID)
	}
	c.Flash(session.FlashSuccess, MsgWelcomeBack)
	return pipeline.Respond(pipeline.RedirectTo(redirect))
}

// Logout forgets the user and moves the visitor onto a fresh session.
func (h *Handlers) Logout(c *pipeline.Context) pipeline.Outcome {
	if c.Session != nil {
		c.Session.Logout()
	}
	c.Principal = nil
	c.Flash(session.FlashSuccess, MsgLoggedOut)
	return pipeline.Respond(pipeline.RedirectTo(DefaultAfterAuth))
}
