package seed

import (
	"context"
	"math/rand/v2"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/user/yelpcamp-go/campgrounds"
	"github.com/user/yelpcamp-go/docstore"
)

func TestCampgroundsReplacesExisting(t *testing.T) {
	ctx := context.Background()
	store := docstore.NewMemory[campgrounds.Campground]("campgrounds", time.Second)
	require.NoError(t, store.Save(ctx, &campgrounds.Campground{Title: "purple field"}))

	author := uuid.New()
	require.NoError(t, Campgrounds(ctx, store, author, DefaultCount, rand.New(rand.NewPCG(1, 2)), nil))

	all, err := store.Find(ctx, docstore.All())
	require.NoError(t, err)
	require.Len(t, all, DefaultCount)
	for _, c := range all {
		assert.NotEqual(t, "purple field", c.Title)
		assert.Contains(t, descriptors, strings.Fields(c.Title)[0], c.Title)
		assert.Contains(t, c.Location, ", ")
		assert.GreaterOrEqual(t, c.Price, 10.0)
		assert.Less(t, c.Price, 30.0)
		assert.Equal(t, author, c.AuthorID)
	}
}
