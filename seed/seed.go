// Package seed fills an empty database with sample campgrounds.
package seed

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"

	"github.com/google/uuid"

	"github.com/user/yelpcamp-go/campgrounds"
	"github.com/user/yelpcamp-go/docstore"
)

// DefaultCount is how many campgrounds Campgrounds inserts.
const DefaultCount = 50

const (
	sampleImage       = "https://images.unsplash.com/photo-1504280390367-361c6d9f38f4"
	sampleDescription = "Lorem ipsum dolor sit amet consectetur adipisicing elit. Quibusdam dolores vero perferendis laudantium."
)

func pick[T any](r *rand.Rand, items []T) T {
	return items[r.IntN(len(items))]
}

// Campgrounds deletes every campground and inserts count random ones owned by
// author. Reviews of the deleted campgrounds are left to the caller.
func Campgrounds(ctx context.Context, store docstore.Collection[campgrounds.Campground], author uuid.UUID, count int, r *rand.Rand, logger *slog.Logger) error {
	if logger == nil {
		logger = slog.Default()
	}
	removed, err := store.DeleteMany(ctx, docstore.All())
	if err != nil {
		return fmt.Errorf("clearing campgrounds: %w", err)
	}
	logger.Info("cleared campgrounds", "count", removed)

	for i := 0; i < count; i++ {
		c := pick(r, cities)
		camp := &campgrounds.Campground{
			Title:       fmt.Sprintf("%s %s", pick(r, descriptors), pick(r, places)),
			Location:    fmt.Sprintf("%s, %s", c.City, c.State),
			Price:       float64(r.IntN(20) + 10),
			Image:       sampleImage,
			Description: sampleDescription,
			AuthorID:    author,
		}
		if err := store.Save(ctx, camp); err != nil {
			return fmt.Errorf("saving campground %d: %w", i, err)
		}
	}
	logger.Info("seeded campgrounds", "count", count)
	return nil
}
