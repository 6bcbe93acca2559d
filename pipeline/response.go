package pipeline

import (
	"encoding/json"
	"net/http"

	"github.com/user/yelpcamp-go/session"
)

// Response is written to the client once the pipeline has settled.
type Response interface {
	Write(w http.ResponseWriter, r *http.Request) error
}

// Redirect sends the client elsewhere. Status defaults to 302 Found.
type Redirect struct {
	To     string
	Status int
}

func (rd *Redirect) Write(w http.ResponseWriter, r *http.Request) error {
	status := rd.Status
	if status == 0 {
		status = http.StatusFound
	}
	http.Redirect(w, r, rd.To, status)
	return nil
}

// RedirectTo is shorthand for a 302 redirect.
func RedirectTo(to string) *Redirect {
	return &Redirect{To: to}
}

// View is a rendered page. Pages are served as JSON view models: the view
// name, the logged-in user, pending flash messages and the page data.
type View struct {
	Status      int                    `json:"-"`
	Name        string                 `json:"view"`
	CurrentUser Principal              `json:"current_user,omitempty"`
	Flash       []session.FlashMessage `json:"flash"`
	Data        any                    `json:"data,omitempty"`
}

func (v *View) Write(w http.ResponseWriter, _ *http.Request) error {
	status := v.Status
	if status == 0 {
		status = http.StatusOK
	}
	if v.Flash == nil {
		v.Flash = []session.FlashMessage{}
	}
	return writeJSON(w, status, v)
}

// JSON writes Body as a JSON document.
type JSON struct {
	Status int
	Body   any
}

func (j *JSON) Write(w http.ResponseWriter, _ *http.Request) error {
	return writeJSON(w, j.Status, j.Body)
}

// Text writes a plain text body.
type Text struct {
	Status int
	Body   string
}

func (t *Text) Write(w http.ResponseWriter, _ *http.Request) error {
	status := t.Status
	if status == 0 {
		status = http.StatusOK
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(status)
	_, err := w.Write([]byte(t.Body))
	return err
}

func writeJSON(w http.ResponseWriter, status int, data any) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data == nil {
		return nil
	}
	return json.NewEncoder(w).Encode(data)
}
