package pipeline

import (
	"context"
	"net/http"

	"github.com/user/yelpcamp-go/apperror"
	"github.com/user/yelpcamp-go/session"
)

// SessionManager loads and persists sessions. *session.Manager implements it.
type SessionManager interface {
	Load(ctx context.Context, r *http.Request) (*session.Session, error)
	Commit(ctx context.Context, w http.ResponseWriter, s *session.Session) error
}

// Sessions loads the visitor's session into the context and saves it again
// (setting the cookie) right before the response is written.
func Sessions(m SessionManager) Stage {
	return func(c *Context) Outcome {
		s, err := m.Load(c.Ctx(), c.Request)
		if err != nil {
			return Fail(apperror.NewInternalError("could not load session", err))
		}
		c.Session = s
		c.OnCommit(func(w http.ResponseWriter) error {
			return m.Commit(c.Ctx(), w, c.Session)
		})
		return Continue()
	}
}
