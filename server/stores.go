package server

import (
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/user/yelpcamp-go/auth"
	"github.com/user/yelpcamp-go/campgrounds"
	"github.com/user/yelpcamp-go/docstore"
	"github.com/user/yelpcamp-go/farms"
	"github.com/user/yelpcamp-go/session"
)

// Stores bundles every persistence dependency of the application.
type Stores struct {
	Users       auth.UserRepository
	Sessions    session.Store
	Campgrounds docstore.Collection[campgrounds.Campground]
	Reviews     docstore.Collection[campgrounds.Review]
	Farms       docstore.Collection[farms.Farm]
	Products    docstore.Collection[farms.Product]
}

// NewMemoryStores keeps everything in process memory.
func NewMemoryStores(timeout time.Duration) *Stores {
	return &Stores{
		Users:       auth.NewMemoryUserRepository(),
		Sessions:    session.NewMemoryStore(),
		Campgrounds: docstore.NewMemory[campgrounds.Campground]("campgrounds", timeout),
		Reviews:     docstore.NewMemory[campgrounds.Review]("reviews", timeout),
		Farms:       docstore.NewMemory[farms.Farm]("farms", timeout),
		Products:    docstore.NewMemory[farms.Product]("products", timeout),
	}
}

// NewPostgresStores keeps everything in PostgreSQL. The schema comes from
// the migrations directory.
func NewPostgresStores(pool *pgxpool.Pool, timeout time.Duration) *Stores {
	return &Stores{
		Users:       auth.NewPostgresUserRepository(pool, timeout),
		Sessions:    session.NewPostgresStore(pool, timeout),
		Campgrounds: docstore.NewPostgres[campgrounds.Campground](pool, "campgrounds", timeout),
		Reviews:     docstore.NewPostgres[campgrounds.Review](pool, "reviews", timeout),
		Farms:       docstore.NewPostgres[farms.Farm](pool, "farms", timeout),
		Products:    docstore.NewPostgres[farms.Product](pool, "products", timeout),
	}
}
