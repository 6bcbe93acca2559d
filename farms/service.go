package farms

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"

	"github.com/user/yelpcamp-go/apperror"
	"github.com/user/yelpcamp-go/docstore"
)

// Messages shown when a farm or product id does not resolve.
const (
	// MsgFarmNotFound is the not-found message for farms.
	MsgFarmNotFound = "Cannot find that Farm"
	// MsgProductNotFound is the not-found message for products.
	MsgProductNotFound = "Cannot find that Product"
)

// Service holds the farm and product collections.
type Service struct {
	farms    docstore.Collection[Farm]
	products docstore.Collection[Product]
}

// NewService wires the collections together and registers the farm cascade.
func NewService(farms docstore.Collection[Farm], products docstore.Collection[Product]) *Service {
	farms.OnDelete(func(ctx context.Context, deleted *Farm) error {
		_, err := products.DeleteMany(ctx, docstore.Where("farm_id", deleted.ID))
		return err
	})
	return &Service{farms: farms, products: products}
}

// ListFarms returns every farm.
func (s *Service) ListFarms(ctx context.Context) ([]*Farm, error) {
	farms, err := s.farms.Find(ctx, docstore.All())
	if err != nil {
		return nil, apperror.NewDatabaseError("failed to list farms", err)
	}
	return farms, nil
}

// GetFarm returns a farm with its products.
func (s *Service) GetFarm(ctx context.Context, id uuid.UUID) (*FarmDetail, error) {
	farm, err := s.farms.FindByID(ctx, id)
	if err != nil {
		return nil, notFound(err, MsgFarmNotFound, "failed to load farm")
	}
	products, err := s.products.Find(ctx, docstore.Where("farm_id", farm.ID))
	if err != nil {
		return nil, apperror.NewDatabaseError("failed to load products", err)
	}
	return &FarmDetail{Farm: farm, Products: products}, nil
}

// CreateFarm stores a new farm.
func (s *Service) CreateFarm(ctx context.Context, in *FarmInput) (*Farm, error) {
	farm := &Farm{Name: in.Name, City: in.City, Email: in.Email}
	if err := s.farms.Save(ctx, farm); err != nil {
		return nil, apperror.NewDatabaseError("failed to save farm", err)
	}
	return farm, nil
}

// DeleteFarm removes a farm and all of its products.
func (s *Service) DeleteFarm(ctx context.Context, id uuid.UUID) error {
	if _, err := s.farms.FindByIDAndDelete(ctx, id); err != nil {
		return notFound(err, MsgFarmNotFound, "failed to delete farm")
	}
	return nil
}

// ListProducts returns all products, or only those in category when it is set.
func (s *Service) ListProducts(ctx context.Context, category string) ([]*Product, error) {
	filter := docstore.All()
	if category = strings.ToLower(strings.TrimSpace(category)); category != "" {
		filter = docstore.Where("category", category)
	}
	products, err := s.products.Find(ctx, filter)
	if err != nil {
		return nil, apperror.NewDatabaseError("failed to list products", err)
	}
	return products, nil
}

// GetProduct returns a product with its farm.
func (s *Service) GetProduct(ctx context.Context, id uuid.UUID) (*ProductDetail, error) {
	product, err := s.products.FindByID(ctx, id)
	if err != nil {
		return nil, notFound(err, MsgProductNotFound, "failed to load product")
	}
	detail := &ProductDetail{Product: product}
	if product.FarmID == uuid.Nil {
		return detail, nil
	}
	farm, err := s.farms.FindByID(ctx, product.FarmID)
	switch {
	case errors.Is(err, docstore.ErrNotFound):
	case err != nil:
		return nil, apperror.NewDatabaseError("failed to load farm", err)
	default:
		detail.Farm = farm
	}
	return detail, nil
}

// AddProduct stores a product sold by the farm.
func (s *Service) AddProduct(ctx context.Context, farmID uuid.UUID, in *ProductInput) (*Product, error) {
	if _, err := s.farms.FindByID(ctx, farmID); err != nil {
		return nil, notFound(err, MsgFarmNotFound, "failed to load farm")
	}
	product := &Product{Name: in.Name, Price: *in.Price, Category: in.Category, FarmID: farmID}
	if err := s.products.Save(ctx, product); err != nil {
		return nil, apperror.NewDatabaseError("failed to save product", err)
	}
	return product, nil
}

// UpdateProduct replaces the editable fields. The farm link is kept.
func (s *Service) UpdateProduct(ctx context.Context, id uuid.UUID, in *ProductInput) (*Product, error) {
	product, err := s.products.FindByIDAndUpdate(ctx, id, in.patch())
	if err != nil {
		return nil, notFound(err, MsgProductNotFound, "failed to update product")
	}
	return product, nil
}

// DeleteProduct removes one product.
func (s *Service) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	if _, err := s.products.FindByIDAndDelete(ctx, id); err != nil {
		return notFound(err, MsgProductNotFound, "failed to delete product")
	}
	return nil
}

func notFound(err error, notFoundMsg, failMsg string) error {
	if errors.Is(err, docstore.ErrNotFound) {
		return apperror.NewNotFoundError(notFoundMsg, err)
	}
	return apperror.NewDatabaseError(failMsg, err)
}
