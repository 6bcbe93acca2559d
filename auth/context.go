package auth

import (
	"errors"

	"github.com/user/yelpcamp-go/apperror"
	"github.com/user/yelpcamp-go/pipeline"
)

// LoadPrincipal resolves the session's user id into c.Principal. It must run
// after pipeline.Sessions. A session pointing at a deleted user is logged out.
func LoadPrincipal(s *AuthService) pipeline.Stage {
	return func(c *pipeline.Context) pipeline.Outcome {
		if c.Session == nil || c.Session.UserID == nil {
			return pipeline.Continue()
		}
		user, err := s.GetUser(c.Ctx(), *c.Session.UserID)
		if errors.Is(err, ErrUserNotFound) {
			c.Session.Logout()
			return pipeline.Continue()
		}
		if err != nil {
			return pipeline.Fail(apperror.NewInternalError("could not load current user", err))
		}
		c.Principal = user
		return pipeline.Continue()
	}
}

// CurrentUser returns the logged-in user, if any.
func CurrentUser(c *pipeline.Context) (*User, bool) {
	user, ok := c.Principal.(*User)
	return user, ok && user != nil
}
