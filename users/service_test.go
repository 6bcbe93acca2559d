package users

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/user/yelpcamp-go/apperror"
	"github.com/user/yelpcamp-go/auth"
)

func TestUserService_Profile(t *testing.T) {
	repo := auth.NewMemoryUserRepository()
	ctx := context.Background()
	colt := &auth.User{Username: "colt", HashedPassword: "x"}
	other := &auth.User{Username: "other", Email: "taken@example.com", HashedPassword: "x"}
	require.NoError(t, repo.Create(ctx, colt))
	require.NoError(t, repo.Create(ctx, other))

	svc := NewUserService(repo)

	profile, err := svc.GetUserProfile(ctx, colt.ID)
	require.NoError(t, err)
	assert.Equal(t, "colt", profile.Username)
	assert.Empty(t, profile.Email)

	updated, err := svc.UpdateUserProfile(ctx, colt.ID, &UpdateUserProfileRequest{Email: " Colt@Example.com "})
	require.NoError(t, err)
	assert.Equal(t, "colt@example.com", updated.Email)

	_, err = svc.UpdateUserProfile(ctx, colt.ID, &UpdateUserProfileRequest{Email: "taken@example.com"})
	assert.True(t, apperror.IsConflictError(err))

	_, err = svc.GetUserProfile(ctx, uuid.New())
	assert.True(t, apperror.IsNotFound(err))
}
