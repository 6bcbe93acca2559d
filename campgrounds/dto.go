package campgrounds

import (
	"strings"

	"github.com/user/yelpcamp-go/docstore"
)

// CampgroundInput is the new/edit campground form.
type CampgroundInput struct {
	Title       string   `json:"title" validate:"required"`
	Price       *float64 `json:"price" validate:"required,min=0"`
	Image       string   `json:"image" validate:"required"`
	Description string   `json:"description" validate:"required"`
	Location    string   `json:"location" validate:"required"`
}

// Normalize trims the text fields so blank input fails "required".
func (in *CampgroundInput) Normalize() {
	in.Title = strings.TrimSpace(in.Title)
	in.Image = strings.TrimSpace(in.Image)
	in.Description = strings.TrimSpace(in.Description)
	in.Location = strings.TrimSpace(in.Location)
}

func (in *CampgroundInput) patch() docstore.Patch {
	return docstore.Patch{
		"title":       in.Title,
		"price":       *in.Price,
		"image":       in.Image,
		"description": in.Description,
		"location":    in.Location,
	}
}

// ReviewInput is the review form on the campground page.
type ReviewInput struct {
	Body   string `json:"body" validate:"required"`
	Rating *int   `json:"rating" validate:"required,min=1,max=5"`
}

// Normalize trims the body.
func (in *ReviewInput) Normalize() {
	in.Body = strings.TrimSpace(in.Body)
}
