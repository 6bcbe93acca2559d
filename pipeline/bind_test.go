package pipeline

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/user/yelpcamp-go/apperror"
)

type campgroundForm struct {
	Title    string   `json:"title" validate:"required"`
	Price    *float64 `json:"price" validate:"required,min=0"`
	Location string   `json:"location" validate:"required"`
}

func bindRequest(t *testing.T, r *http.Request) (*campgroundForm, error) {
	t.Helper()
	var dst campgroundForm
	err := newContext(r).Bind(&dst)
	return &dst, err
}

func TestBind_GroupedForm(t *testing.T) {
	form := url.Values{
		"campground[title]":    {"Misty Bayou"},
		"campground[price]":    {"12.5"},
		"campground[location]": {"Tampa, Florida"},
		"_method":              {"PUT"},
	}
	r := httptest.NewRequest(http.MethodPost, "/campgrounds", strings.NewReader(form.Encode()))
	r.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	got, err := bindRequest(t, r)
	require.NoError(t, err)
	assert.Equal(t, "Misty Bayou", got.Title)
	require.NotNil(t, got.Price)
	assert.Equal(t, 12.5, *got.Price)
	assert.Equal(t, "Tampa, Florida", got.Location)
}

func TestBind_JSON(t *testing.T) {
	body := `{"title":"Misty Bayou","price":0,"location":"Tampa, Florida"}`
	r := httptest.NewRequest(http.MethodPost, "/campgrounds", strings.NewReader(body))
	r.Header.Set("Content-Type", "application/json; charset=utf-8")

	got, err := bindRequest(t, r)
	require.NoError(t, err)
	require.NotNil(t, got.Price)
	assert.Zero(t, *got.Price)
}

func TestBind_MissingTitleIsValidationError(t *testing.T) {
	form := url.Values{"price": {"10"}, "location": {"Tampa"}}
	r := httptest.NewRequest(http.MethodPost, "/campgrounds", strings.NewReader(form.Encode()))
	r.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	_, err := bindRequest(t, r)
	require.Error(t, err)
	assert.True(t, apperror.IsValidationError(err))
	assert.Contains(t, err.Error(), "title")
}

func TestBind_MalformedJSON(t *testing.T) {
	r := httptest.NewRequest(http.MethodPost, "/campgrounds", strings.NewReader(`{"title":`))
	r.Header.Set("Content-Type", "application/json")

	_, err := bindRequest(t, r)
	appErr, ok := apperror.FromError(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusBadRequest, appErr.StatusCode())
}

func TestMethodOverride(t *testing.T) {
	var seen string
	h := MethodOverride(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		seen = r.Method
	}))

	form := url.Values{"_method": {"delete"}}
	r := httptest.NewRequest(http.MethodPost, "/campgrounds/1", strings.NewReader(form.Encode()))
	r.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	h.ServeHTTP(httptest.NewRecorder(), r)
	assert.Equal(t, http.MethodDelete, seen)

	r = httptest.NewRequest(http.MethodPost, "/campgrounds/1?_method=PUT", nil)
	h.ServeHTTP(httptest.NewRecorder(), r)
	assert.Equal(t, http.MethodPut, seen)

	r = httptest.NewRequest(http.MethodPost, "/campgrounds/1", nil)
	r.Header.Set("X-HTTP-Method-Override", "PATCH")
	h.ServeHTTP(httptest.NewRecorder(), r)
	assert.Equal(t, http.MethodPatch, seen)

	r = httptest.NewRequest(http.MethodPost, "/campgrounds?_method=TRACE", nil)
	h.ServeHTTP(httptest.NewRecorder(), r)
	assert.Equal(t, http.MethodPost, seen)

	r = httptest.NewRequest(http.MethodGet, "/campgrounds?_method=DELETE", nil)
	h.ServeHTTP(httptest.NewRecorder(), r)
	assert.Equal(t, http.MethodGet, seen)
}
