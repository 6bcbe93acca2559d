package farms

import (
	"strings"

	"github.com/user/yelpcamp-go/docstore"
)

// FarmInput is the new farm form.
type FarmInput struct {
	Name  string `json:"name" validate:"required"`
	City  string `json:"city"`
	Email string `json:"email" validate:"required,email"`
}

// Normalize trims every field.
func (in *FarmInput) Normalize() {
	in.Name = strings.TrimSpace(in.Name)
	in.City = strings.TrimSpace(in.City)
	in.Email = strings.TrimSpace(in.Email)
}

// ProductInput is the new/edit product form.
type ProductInput struct {
	Name     string   `json:"name" validate:"required"`
	Price    *float64 `json:"price" validate:"required,min=0"`
	Category string   `json:"category" validate:"omitempty,oneof=fruit vegetable dairy"`
}

// Normalize trims the name and lowercases the category, so "Fruit" is filed as "fruit".
func (in *ProductInput) Normalize() {
	in.Name = strings.TrimSpace(in.Name)
	in.Category = strings.ToLower(strings.TrimSpace(in.Category))
}

func (in *ProductInput) patch() docstore.Patch {
	return docstore.Patch{
		"name":     in.Name,
		"price":    *in.Price,
		"category": in.Category,
	}
}
