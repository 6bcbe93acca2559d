package farms

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/user/yelpcamp-go/pipeline"
	"github.com/user/yelpcamp-go/session"
)

// Handlers serves /farms and /products.
type Handlers struct {
	service *Service
}

// NewHandlers creates new Handlers.
func NewHandlers(service *Service) *Handlers {
	return &Handlers{service: service}
}

// RegisterRoutes mounts the farm and product routes on r.
func (h *Handlers) RegisterRoutes(r chi.Router, p *pipeline.Pipeline) {
	r.Route("/farms", func(r chi.Router) {
		r.Method(http.MethodGet, "/", p.Handle(pipeline.HandlerFunc(h.IndexFarms)))
		r.Method(http.MethodGet, "/new", p.Handle(pipeline.HandlerFunc(h.NewFarm)))
		r.Method(http.MethodPost, "/", p.Handle(pipeline.HandlerFunc(h.CreateFarm)))
		r.Method(http.MethodGet, "/{id}", p.Handle(pipeline.HandlerFunc(h.ShowFarm)))
		r.Method(http.MethodDelete, "/{id}", p.Handle(pipeline.HandlerFunc(h.DeleteFarm)))
		r.Method(http.MethodGet, "/{id}/products/new", p.Handle(pipeline.HandlerFunc(h.NewProduct)))
		r.Method(http.MethodPost, "/{id}/products", p.Handle(pipeline.HandlerFunc(h.CreateProduct)))
	})
	r.Route("/products", func(r chi.Router) {
		r.Method(http.MethodGet, "/", p.Handle(pipeline.HandlerFunc(h.IndexProducts)))
		r.Method(http.MethodGet, "/{id}", p.Handle(pipeline.HandlerFunc(h.ShowProduct)))
		r.Method(http.MethodGet, "/{id}/edit", p.Handle(pipeline.HandlerFunc(h.EditProduct)))
		r.Method(http.MethodPut, "/{id}", p.Handle(pipeline.HandlerFunc(h.UpdateProduct)))
		r.Method(http.MethodDelete, "/{id}", p.Handle(pipeline.HandlerFunc(h.DeleteProduct)))
	})
}

func farmPath(f *Farm) string       { return "/farms/" + f.ID.String() }
func productPath(p *Product) string { return "/products/" + p.ID.String() }

// IndexFarms renders every farm.
func (h *Handlers) IndexFarms(c *pipeline.Context) (pipeline.Response, error) {
	farms, err := h.service.ListFarms(c.Ctx())
	if err != nil {
		return nil, err
	}
	return c.View("farms/index", map[string]any{"farms": farms}), nil
}

// NewFarm renders the empty farm form.
func (h *Handlers) NewFarm(c *pipeline.Context) (pipeline.Response, error) {
	return c.View("farms/new", map[string]any{"farm": FarmInput{}}), nil
}

// CreateFarm validates the form, stores the farm and redirects to it.
func (h *Handlers) CreateFarm(c *pipeline.Context) (pipeline.Response, error) {
	var in FarmInput
	if err := c.Bind(&in); err != nil {
		return nil, err
	}
	farm, err := h.service.CreateFarm(c.Ctx(), &in)
	if err != nil {
		return nil, err
	}
	c.Flash(session.FlashSuccess, "Successfully made a new farm!")
	return pipeline.RedirectTo(farmPath(farm)), nil
}

// ShowFarm renders a farm together with its products.
func (h *Handlers) ShowFarm(c *pipeline.Context) (pipeline.Response, error) {
	id, err := c.ParamID("id")
	if err != nil {
		return nil, err
	}
	farm, err := h.service.GetFarm(c.Ctx(), id)
	if err != nil {
		return nil, err
	}
	return c.View("farms/show", map[string]any{"farm": farm}), nil
}

// DeleteFarm removes the farm; its products go with it.
func (h *Handlers) DeleteFarm(c *pipeline.Context) (pipeline.Response, error) {
	id, err := c.ParamID("id")
	if err != nil {
		return nil, err
	}
	if err := h.service.DeleteFarm(c.Ctx(), id); err != nil {
		return nil, err
	}
	c.Flash(session.FlashSuccess, "Successfully deleted the farm!")
	return pipeline.RedirectTo("/farms"), nil
}

// NewProduct renders the product form for an existing farm.
func (h *Handlers) NewProduct(c *pipeline.Context) (pipeline.Response, error) {
	id, err := c.ParamID("id")
	if err != nil {
		return nil, err
	}
	farm, err := h.service.GetFarm(c.Ctx(), id)
	if err != nil {
		return nil, err
	}
	return c.View("products/new", map[string]any{
		"farm":       farm.Farm,
		"categories": Categories,
	}), nil
}

// CreateProduct adds a product to the farm named in the path.
func (h *Handlers) CreateProduct(c *pipeline.Context) (pipeline.Response, error) {
	farmID, err := c.ParamID("id")
	if err != nil {
		return nil, err
	}
	var in ProductInput
	if err := c.Bind(&in); err != nil {
		return nil, err
	}
	if _, err := h.service.AddProduct(c.Ctx(), farmID, &in); err != nil {
		return nil, err
	}
	c.Flash(session.FlashSuccess, "Successfully added the product!")
	return pipeline.RedirectTo("/farms/" + farmID.String()), nil
}

// IndexProducts lists products, filtered by ?category= when present.
func (h *Handlers) IndexProducts(c *pipeline.Context) (pipeline.Response, error) {
	category := c.Query("category")
	products, err := h.service.ListProducts(c.Ctx(), category)
	if err != nil {
		return nil, err
	}
	return c.View("products/index", map[string]any{
		"products": products,
		"category": category,
	}), nil
}

// ShowProduct renders one product and the farm it belongs to.
func (h *Handlers) ShowProduct(c *pipeline.Context) (pipeline.Response, error) {
	id, err := c.ParamID("id")
	if err != nil {
		return nil, err
	}
	product, err := h.service.GetProduct(c.Ctx(), id)
	if err != nil {
		return nil, err
	}
	return c.View("products/show", map[string]any{"product": product}), nil
}

// EditProduct renders the edit form prefilled with the product.
func (h *Handlers) EditProduct(c *pipeline.Context) (pipeline.Response, error) {
	id, err := c.ParamID("id")
	if err != nil {
		return nil, err
	}
	product, err := h.service.GetProduct(c.Ctx(), id)
	if err != nil {
		return nil, err
	}
	return c.View("products/edit", map[string]any{
		"product":    product.Product,
		"categories": Categories,
	}), nil
}

// UpdateProduct applies the submitted fields and redirects to the product.
func (h *Handlers) UpdateProduct(c *pipeline.Context) (pipeline.Response, error) {
	id, err := c.ParamID("id")
	if err != nil {
		return nil, err
	}
	var in ProductInput
	if err := c.Bind(&in); err != nil {
		return nil, err
	}
	product, err := h.service.UpdateProduct(c.Ctx(), id, &in)
	if err != nil {
		return nil, err
	}
	c.Flash(session.FlashSuccess, "Successfully updated the product!")
	return pipeline.RedirectTo(productPath(product)), nil
}

// DeleteProduct removes the product and redirects to the product list.
func (h *Handlers) DeleteProduct(c *pipeline.Context) (pipeline.Response, error) {
	id, err := c.ParamID("id")
	if err != nil {
		return nil, err
	}
	if err := h.service.DeleteProduct(c.Ctx(), id); err != nil {
		return nil, err
	}
	c.Flash(session.FlashSuccess, "Successfully deleted the product!")
	return pipeline.RedirectTo("/products"), nil
}
