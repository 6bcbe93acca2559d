// Package farms serves the farm stand directory: farms and the products they
// sell. Products point at their farm through FarmID; deleting a farm deletes
// its products.
package farms

import (
	"github.com/google/uuid"

	"github.com/user/yelpcamp-go/docstore"
)

// Categories a product may be filed under.
var Categories = []string{"fruit", "vegetable", "dairy"}

// Farm is a farm stand. Farms have no owner.
type Farm struct {
	docstore.Base
	Name  string `json:"name"`
	City  string `json:"city,omitempty"`
	Email string `json:"email"`
}

// Product is something a farm sells.
type Product struct {
	docstore.Base
	Name     string    `json:"name"`
	Price    float64   `json:"price"`
	Category string    `json:"category,omitempty"`
	FarmID   uuid.UUID `json:"farm_id"`
}

// FarmDetail is a farm with its products populated.
type FarmDetail struct {
	*Farm
	Products []*Product `json:"products"`
}

// ProductDetail is a product with its farm populated. Farm is nil for
// products that were never attached to one.
type ProductDetail struct {
	*Product
	Farm *Farm `json:"farm,omitempty"`
}
