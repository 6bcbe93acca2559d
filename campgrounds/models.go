// Package campgrounds serves campgrounds and their reviews.
//
// A review belongs to exactly one campground through CampgroundID; the
// campground does not keep a list of its reviews. The show page resolves the
// reviews (and every author) at read time, and deleting a campground removes
// its reviews through a delete hook on the campgrounds collection.
package campgrounds

import (
	"github.com/google/uuid"

	"github.com/user/yelpcamp-go/auth"
	"github.com/user/yelpcamp-go/docstore"
)

// Campground is a place to camp, owned by the user who listed it.
type Campground struct {
	docstore.Base
	Title       string    `json:"title"`
	Price       float64   `json:"price"`
	Image       string    `json:"image"`
	Description string    `json:"description"`
	Location    string    `json:"location"`
	AuthorID    uuid.UUID `json:"author_id"`
}

// OwnerID returns the author, for auth.RequireOwnership.
func (c *Campground) OwnerID() uuid.UUID { return c.AuthorID }

// Review is a rating left on a campground.
type Review struct {
	docstore.Base
	Body         string    `json:"body"`
	Rating       int       `json:"rating"`
	AuthorID     uuid.UUID `json:"author_id"`
	CampgroundID uuid.UUID `json:"campground_id"`
}

// OwnerID returns the author, for auth.RequireOwnership.
func (r *Review) OwnerID() uuid.UUID { return r.AuthorID }

// Author is the public part of a user shown next to their content.
type Author struct {
	ID       uuid.UUID `json:"id"`
	Username string    `json:"username"`
}

func authorOf(u *auth.User) *Author {
	if u == nil {
		return nil
	}
	return &Author{ID: u.ID, Username: u.Username}
}

// ReviewDetail is a review with its author resolved.
type ReviewDetail struct {
	*Review
	Author *Author `json:"author,omitempty"`
}

// CampgroundDetail is a campground with its author and reviews resolved.
type CampgroundDetail struct {
	*Campground
	Author  *Author        `json:"author,omitempty"`
	Reviews []ReviewDetail `json:"reviews"`
}
