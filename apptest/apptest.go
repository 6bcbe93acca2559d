// Package apptest drives an http.Handler like a browser would in tests:
// cookies are kept between requests and redirects are not followed.
package apptest

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

// Client is a cookie-keeping test client bound to one server.
type Client struct {
	t      *testing.T
	server *httptest.Server
	http   *http.Client
}

// Response is a fully read response.
type Response struct {
	Status   int
	Location string
	Body     string
	Header   http.Header
}

// JSON decodes the body into a generic map.
func (r *Response) JSON(t *testing.T) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal([]byte(r.Body), &out), r.Body)
	return out
}

// NewClient starts h on a test server that is closed with the test.
func NewClient(t *testing.T, h http.Handler) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	return &Client{
		t:      t,
		server: srv,
		http: &http.Client{
			Jar: jar,
			CheckRedirect: func(*http.Request, []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
	}
}

// Get issues a GET.
func (c *Client) Get(path string) *Response {
	c.t.Helper()
	return c.Do(http.MethodGet, path, nil)
}

// Do sends form (if non-nil) URL-encoded with the given method.
func (c *Client) Do(method, path string, form url.Values) *Response {
	c.t.Helper()
	var body io.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	}
	req, err := http.NewRequest(method, c.server.URL+path, body)
	require.NoError(c.t, err)
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}

	resp, err := c.http.Do(req)
	require.NoError(c.t, err)
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	require.NoError(c.t, err)

	return &Response{
		Status:   resp.StatusCode,
		Location: resp.Header.Get("Location"),
		Body:     string(raw),
		Header:   resp.Header,
	}
}

// Login posts credentials to /login and requires a redirect back.
func (c *Client) Login(username, password string) {
	c.t.Helper()
	resp := c.Do(http.MethodPost, "/login", url.Values{"username": {username}, "password": {password}})
	require.Equal(c.t, http.StatusFound, resp.Status, resp.Body)
	require.NotEqual(c.t, "/login", resp.Location, "login rejected")
}

// Flash returns the flash messages of a rendered view.
func Flash(t *testing.T, r *Response) []string {
	t.Helper()
	var out []string
	items, _ := r.JSON(t)["flash"].([]any)
	for _, it := range items {
		if m, ok := it.(map[string]any); ok {
			text, _ := m["text"].(string)
			out = append(out, text)
		}
	}
	return out
}
