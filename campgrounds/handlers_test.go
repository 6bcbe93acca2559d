package campgrounds

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/user/yelpcamp-go/apptest"
	"github.com/user/yelpcamp-go/auth"
	"github.com/user/yelpcamp-go/docstore"
	"github.com/user/yelpcamp-go/pipeline"
	"github.com/user/yelpcamp-go/session"
)

type app struct {
	handler http.Handler
	service *Service
	reviews docstore.Collection[Review]
	auth    *auth.AuthService
}

func newApp(t *testing.T) *app {
	t.Helper()
	users := auth.NewMemoryUserRepository()
	authSvc, err := auth.NewAuthService(users, bcrypt.MinCost, nil)
	require.NoError(t, err)
	manager := session.NewManager(session.NewMemoryStore(), session.NewCodec("test-secret"), time.Hour, false, nil)

	p := pipeline.New(pipeline.NewErrorHandler(false, nil), nil)
	p.Use(pipeline.Sessions(manager), auth.LoadPrincipal(authSvc))

	reviews := docstore.NewMemory[Review]("reviews", time.Second)
	svc := NewService(docstore.NewMemory[Campground]("campgrounds", time.Second), reviews, users)

	r := chi.NewRouter()
	r.Use(pipeline.MethodOverride)
	r.Method(http.MethodPost, "/login", p.Handle(auth.NewHandlers(authSvc).Login))
	NewHandlers(svc).RegisterRoutes(r, p)

	for _, name := range []string{"colt", "tim"} {
		_, err := authSvc.Register(context.Background(), name, "", "pw")
		require.NoError(t, err)
	}
	return &app{handler: r, service: svc, reviews: reviews, auth: authSvc}
}

func campgroundForm(title string) url.Values {
	return url.Values{
		"campground[title]":       {title},
		"campground[price]":       {"25"},
		"campground[image]":       {"https://example.com/camp.jpg"},
		"campground[description]": {"Quiet spot by the river"},
		"campground[location]":    {"Boulder, Colorado"},
	}
}

// create posts a campground as the logged-in client and returns its id.
func create(t *testing.T, c *apptest.Client, title string) uuid.UUID {
	t.Helper()
	resp := c.Do(http.MethodPost, "/campgrounds", campgroundForm(title))
	require.Equal(t, http.StatusFound, resp.Status, resp.Body)
	id, err := uuid.Parse(strings.TrimPrefix(resp.Location, "/campgrounds/"))
	require.NoError(t, err)
	return id
}

func TestUnauthenticatedRedirectsToLogin(t *testing.T) {
	a := newApp(t)
	c := apptest.NewClient(t, a.handler)

	resp := c.Get("/campgrounds/new")
	assert.Equal(t, http.StatusFound, resp.Status)
	assert.Equal(t, "/login", resp.Location)

	resp = c.Do(http.MethodPost, "/login", url.Values{"username": {"colt"}, "password": {"pw"}})
	assert.Equal(t, "/campgrounds/new", resp.Location)
	assert.Equal(t, http.StatusOK, c.Get("/campgrounds/new").Status)
}

func TestCreateThenShowRoundTrip(t *testing.T) {
	a := newApp(t)
	c := apptest.NewClient(t, a.handler)
	c.Login("colt", "pw")

	id := create(t, c, "Misty Bayou")
	resp := c.Get("/campgrounds/" + id.String())
	require.Equal(t, http.StatusOK, resp.Status)

	body := resp.JSON(t)
	assert.Equal(t, "campgrounds/show", body["view"])
	camp := body["data"].(map[string]any)["campground"].(map[string]any)
	assert.Equal(t, "Misty Bayou", camp["title"])
	assert.Equal(t, 25.0, camp["price"])
	assert.Equal(t, "https://example.com/camp.jpg", camp["image"])
	assert.Equal(t, "Quiet spot by the river", camp["description"])
	assert.Equal(t, "Boulder, Colorado", camp["location"])
	assert.Equal(t, "colt", camp["author"].(map[string]any)["username"])
	assert.Contains(t, apptest.Flash(t, resp), "Successfully created a new campground!")
}

func TestCreateWithoutTitleIsBadRequest(t *testing.T) {
	a := newApp(t)
	c := apptest.NewClient(t, a.handler)
	c.Login("colt", "pw")

	resp := c.Do(http.MethodPost, "/campgrounds", campgroundForm(""))
	assert.Equal(t, http.StatusBadRequest, resp.Status)
	assert.Contains(t, resp.Body, `\"title\" is required`)

	all, err := a.service.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestNonOwnerCannotModify(t *testing.T) {
	a := newApp(t)
	owner := apptest.NewClient(t, a.handler)
	owner.Login("colt", "pw")
	id := create(t, owner, "Misty Bayou")
	show := "/campgrounds/" + id.String()

	other := apptest.NewClient(t, a.handler)
	other.Login("tim", "pw")

	resp := other.Do(http.MethodPut, show, campgroundForm("Hijacked"))
	assert.Equal(t, http.StatusFound, resp.Status)
	assert.Equal(t, show, resp.Location)

	resp = other.Do(http.MethodPost, show+"?_method=DELETE", nil)
	assert.Equal(t, show, resp.Location)

	resp = other.Get(show + "/edit")
	assert.Equal(t, show, resp.Location)

	page := other.Get(show)
	assert.Contains(t, apptest.Flash(t, page), auth.MsgNoPermission)

	camp, err := a.service.Get(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, "Misty Bayou", camp.Title)
}

func TestOwnerCanEdit(t *testing.T) {
	a := newApp(t)
	c := apptest.NewClient(t, a.handler)
	c.Login("colt", "pw")
	id := create(t, c, "Misty Bayou")

	resp := c.Do(http.MethodPost, "/campgrounds/"+id.String()+"?_method=PUT", campgroundForm("Sunny Bayou"))
	assert.Equal(t, http.StatusFound, resp.Status)

	camp, err := a.service.Get(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, "Sunny Bayou", camp.Title)
}

func TestDeleteCascadesToReviews(t *testing.T) {
	a := newApp(t)
	ctx := context.Background()
	owner := apptest.NewClient(t, a.handler)
	owner.Login("colt", "pw")
	id := create(t, owner, "Misty Bayou")
	other := apptest.NewClient(t, a.handler)
	other.Login("tim", "pw")

	for _, body := range []string{"Great", "Buggy"} {
		resp := other.Do(http.MethodPost, "/campgrounds/"+id.String()+"/reviews",
			url.Values{"review[body]": {body}, "review[rating]": {"4"}})
		require.Equal(t, http.StatusFound, resp.Status, resp.Body)
	}
	reviews, err := a.reviews.Find(ctx, docstore.Where("campground_id", id))
	require.NoError(t, err)
	require.Len(t, reviews, 2)

	resp := owner.Do(http.MethodDelete, "/campgrounds/"+id.String(), nil)
	assert.Equal(t, "/campgrounds", resp.Location)

	reviews, err = a.reviews.Find(ctx, docstore.Where("campground_id", id))
	require.NoError(t, err)
	assert.Empty(t, reviews)
}

func TestShowPopulatesReviews(t *testing.T) {
	a := newApp(t)
	owner := apptest.NewClient(t, a.handler)
	owner.Login("colt", "pw")
	id := create(t, owner, "Misty Bayou")

	other := apptest.NewClient(t, a.handler)
	other.Login("tim", "pw")
	other.Do(http.MethodPost, "/campgrounds/"+id.String()+"/reviews",
		url.Values{"review[body]": {"Lovely"}, "review[rating]": {"5"}})

	detail, err := a.service.GetDetail(context.Background(), id)
	require.NoError(t, err)
	require.Len(t, detail.Reviews, 1)
	assert.Equal(t, "Lovely", detail.Reviews[0].Body)
	assert.Equal(t, "tim", detail.Reviews[0].Author.Username)
	assert.Equal(t, "colt", detail.Author.Username)
}

func TestReviewValidationAndOwnership(t *testing.T) {
	a := newApp(t)
	ctx := context.Background()
	owner := apptest.NewClient(t, a.handler)
	owner.Login("colt", "pw")
	id := create(t, owner, "Misty Bayou")
	base := "/campgrounds/" + id.String()

	resp := owner.Do(http.MethodPost, base+"/reviews", url.Values{"review[body]": {"x"}, "review[rating]": {"9"}})
	assert.Equal(t, http.StatusBadRequest, resp.Status)
	assert.Contains(t, resp.Body, "rating")

	resp = owner.Do(http.MethodPost, base+"/reviews", url.Values{"review[body]": {"Mine"}, "review[rating]": {"3"}})
	require.Equal(t, http.StatusFound, resp.Status)
	reviews, err := a.reviews.Find(ctx, docstore.Where("campground_id", id))
	require.NoError(t, err)
	require.Len(t, reviews, 1)
	reviewPath := base + "/reviews/" + reviews[0].ID.String()

	other := apptest.NewClient(t, a.handler)
	other.Login("tim", "pw")
	resp = other.Do(http.MethodDelete, reviewPath, nil)
	assert.Equal(t, base, resp.Location)
	_, err = a.reviews.FindByID(ctx, reviews[0].ID)
	assert.NoError(t, err)

	resp = owner.Do(http.MethodDelete, reviewPath, nil)
	assert.Equal(t, base, resp.Location)
	_, err = a.reviews.FindByID(ctx, reviews[0].ID)
	assert.ErrorIs(t, err, docstore.ErrNotFound)

	resp = owner.Do(http.MethodPost, "/campgrounds/"+uuid.NewString()+"/reviews", url.Values{"review[body]": {"x"}, "review[rating]": {"3"}})
	assert.Equal(t, http.StatusNotFound, resp.Status)
}

func TestMissingCampground(t *testing.T) {
	a := newApp(t)
	c := apptest.NewClient(t, a.handler)
	c.Login("colt", "pw")

	resp := c.Get("/campgrounds/" + uuid.NewString())
	assert.Equal(t, http.StatusFound, resp.Status)
	assert.Equal(t, "/campgrounds", resp.Location)
	assert.Contains(t, apptest.Flash(t, c.Get("/campgrounds")), MsgCampgroundNotFound)

	resp = c.Get("/campgrounds/" + uuid.NewString() + "/edit")
	assert.Equal(t, http.StatusNotFound, resp.Status)

	resp = c.Do(http.MethodDelete, "/campgrounds/not-an-id", nil)
	assert.Equal(t, http.StatusNotFound, resp.Status)
}
