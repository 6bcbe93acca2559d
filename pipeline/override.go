package pipeline

import (
	"mime"
	"net/http"
	"strings"
)

const (
	methodField          = "_method"
	methodOverrideHeader = "X-HTTP-Method-Override"
)

// MethodOverride lets HTML forms, which can only POST, reach PUT, PATCH and
// DELETE routes. The method is read from the X-HTTP-Method-Override header,
// the _method query parameter, or the _method form field, in that order.
// It must run before routing.
func MethodOverride(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			if m := overrideMethod(r); m != "" {
				r.Method = m
			}
		}
		next.ServeHTTP(w, r)
	})
}

func overrideMethod(r *http.Request) string {
	m := r.Header.Get(methodOverrideHeader)
	if m == "" {
		m = r.URL.Query().Get(methodField)
	}
	if m == "" && isURLEncodedForm(r) {
		if err := r.ParseForm(); err == nil {
			m = r.PostForm.Get(methodField)
		}
	}
	switch m = strings.ToUpper(m); m {
	case http.MethodPut, http.MethodPatch, http.MethodDelete:
		return m
	}
	return ""
}

func isURLEncodedForm(r *http.Request) bool {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	return mediaType == "application/x-www-form-urlencoded"
}
