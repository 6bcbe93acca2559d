package session

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSession_FlashIsReadOnce(t *testing.T) {
	s := New(time.Hour)
	s.AddFlash(FlashSuccess, "Successfully made a new campground!")

	got := s.PopFlash()
	require.Len(t, got, 1)
	assert.Equal(t, FlashMessage{Kind: FlashSuccess, Text: "Successfully made a new campground!"}, got[0])
	assert.Nil(t, s.PopFlash())
	assert.True(t, s.Dirty())
}

func TestSession_TakeReturnTo(t *testing.T) {
	s := New(time.Hour)
	assert.Equal(t, "/campgrounds", s.TakeReturnTo("/campgrounds"))

	s.SetReturnTo("/campgrounds/new")
	assert.Equal(t, "/campgrounds/new", s.TakeReturnTo("/campgrounds"))
	assert.Empty(t, s.ReturnTo)
}

func TestSession_LoginRegenerates(t *testing.T) {
	s := New(time.Hour)
	before := s.ID
	user := uuid.New()

	s.Login(user)
	require.True(t, s.Authenticated())
	assert.Equal(t, user, *s.UserID)
	assert.NotEqual(t, before, s.ID)
	assert.Equal(t, before, s.previousID)
}

func TestCodec_RoundTrip(t *testing.T) {
	c := NewCodec("secret")
	id := uuid.New()

	token, err := c.Encode(id, time.Now().Add(time.Hour))
	require.NoError(t, err)

	got, err := c.Decode(token)
	require.NoError(t, err)
	assert.Equal(t, id, got)
}

func TestCodec_RejectsBadTokens(t *testing.T) {
	c := NewCodec("secret")
	id := uuid.New()

	expired, err := c.Encode(id, time.Now().Add(-time.Minute))
	require.NoError(t, err)
	_, err = c.Decode(expired)
	assert.ErrorIs(t, err, ErrInvalidToken)

	foreign, err := NewCodec("other").Encode(id, time.Now().Add(time.Hour))
	require.NoError(t, err)
	_, err = c.Decode(foreign)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = c.Decode("not-a-token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func newTestManager(store Store) *Manager {
	return NewManager(store, NewCodec("secret"), 7*24*time.Hour, false, nil)
}

// roundTrip commits s and returns a request carrying the resulting cookie.
func roundTrip(t *testing.T, m *Manager, s *Session) *http.Request {
	t.Helper()
	rec := httptest.NewRecorder()
	require.NoError(t, m.Commit(context.Background(), rec, s))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	for _, c := range rec.Result().Cookies() {
		req.AddCookie(c)
	}
	return req
}

func TestManager_LoadWithoutCookie(t *testing.T) {
	m := newTestManager(NewMemoryStore())
	s, err := m.Load(context.Background(), httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)
	assert.False(t, s.Authenticated())
	assert.NotEqual(t, uuid.Nil, s.ID)
}

func TestManager_CommitAndReload(t *testing.T) {
	store := NewMemoryStore()
	m := newTestManager(store)
	ctx := context.Background()

	s := New(time.Hour)
	s.SetReturnTo("/campgrounds/new")
	s.AddFlash(FlashError, "You need to login first!")

	rec := httptest.NewRecorder()
	require.NoError(t, m.Commit(ctx, rec, s))
	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, CookieName, cookies[0].Name)
	assert.True(t, cookies[0].HttpOnly)
	assert.Equal(t, http.SameSiteLaxMode, cookies[0].SameSite)
	assert.Equal(t, 7*24*60*60, cookies[0].MaxAge)

	req := httptest.NewRequest(http.MethodGet, "/login", nil)
	req.AddCookie(cookies[0])
	loaded, err := m.Load(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, s.ID, loaded.ID)
	assert.Equal(t, "/campgrounds/new", loaded.ReturnTo)
	assert.Len(t, loaded.Flash, 1)
}

func TestManager_UntouchedSessionIsNotStored(t *testing.T) {
	store := NewMemoryStore()
	m := newTestManager(store)

	rec := httptest.NewRecorder()
	s := New(time.Hour)
	require.NoError(t, m.Commit(context.Background(), rec, s))
	assert.Empty(t, rec.Result().Cookies())

	_, err := store.Get(context.Background(), s.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestManager_TamperedCookieGivesFreshSession(t *testing.T) {
	m := newTestManager(NewMemoryStore())
	s := New(time.Hour)
	s.AddFlash(FlashSuccess, "hi")
	req := roundTrip(t, m, s)

	c, err := req.Cookie(CookieName)
	require.NoError(t, err)
	tampered := httptest.NewRequest(http.MethodGet, "/", nil)
	tampered.AddCookie(&http.Cookie{Name: CookieName, Value: c.Value + "x"})

	loaded, err := m.Load(context.Background(), tampered)
	require.NoError(t, err)
	assert.NotEqual(t, s.ID, loaded.ID)
	assert.Empty(t, loaded.Flash)
}

func TestManager_LoginRemovesOldRecord(t *testing.T) {
	store := NewMemoryStore()
	m := newTestManager(store)
	ctx := context.Background()

	s := New(time.Hour)
	s.SetReturnTo("/campgrounds/new")
	req := roundTrip(t, m, s)
	oldID := s.ID

	loaded, err := m.Load(ctx, req)
	require.NoError(t, err)
	loaded.Login(uuid.New())
	req = roundTrip(t, m, loaded)

	_, err = store.Get(ctx, oldID)
	assert.ErrorIs(t, err, ErrNotFound)

	after, err := m.Load(ctx, req)
	require.NoError(t, err)
	assert.True(t, after.Authenticated())
	assert.Equal(t, "/campgrounds/new", after.ReturnTo)
}

func TestManager_LogoutMovesToFreshRecord(t *testing.T) {
	store := NewMemoryStore()
	m := newTestManager(store)
	ctx := context.Background()

	s := New(time.Hour)
	s.Login(uuid.New())
	roundTrip(t, m, s)
	loggedIn := s.ID

	s.Logout()
	s.AddFlash(FlashSuccess, "bye")
	rec := httptest.NewRecorder()
	require.NoError(t, m.Commit(ctx, rec, s))

	_, err := store.Get(ctx, loggedIn)
	assert.ErrorIs(t, err, ErrNotFound, "the authenticated record is gone")

	fresh, err := store.Get(ctx, s.ID)
	require.NoError(t, err)
	assert.False(t, fresh.Authenticated())
	assert.Equal(t, []FlashMessage{{Kind: FlashSuccess, Text: "bye"}}, fresh.Flash)
	require.Len(t, rec.Result().Cookies(), 1)
}

func TestMemoryStore_DeleteExpired(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	live := New(time.Hour)
	dead := New(time.Hour)
	dead.ExpiresAt = time.Now().Add(-time.Minute)
	require.NoError(t, store.Save(ctx, live))
	require.NoError(t, store.Save(ctx, dead))

	n, err := store.DeleteExpired(ctx, time.Now())
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	_, err = store.Get(ctx, live.ID)
	assert.NoError(t, err)
}
