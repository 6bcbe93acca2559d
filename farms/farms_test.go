package farms

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/user/yelpcamp-go/apperror"
	"github.com/user/yelpcamp-go/apptest"
	"github.com/user/yelpcamp-go/docstore"
	"github.com/user/yelpcamp-go/pipeline"
	"github.com/user/yelpcamp-go/session"
)

func newService() (*Service, *docstore.Memory[Product]) {
	products := docstore.NewMemory[Product]("products", time.Second)
	return NewService(docstore.NewMemory[Farm]("farms", time.Second), products), products
}

func price(v float64) *float64 { return &v }

func TestDeleteFarmCascadesToProducts(t *testing.T) {
	ctx := context.Background()
	svc, products := newService()

	farm, err := svc.CreateFarm(ctx, &FarmInput{Name: "Full Belly Farms", City: "Guinda, CA", Email: "fbf@example.com"})
	require.NoError(t, err)
	other, err := svc.CreateFarm(ctx, &FarmInput{Name: "Other", Email: "o@example.com"})
	require.NoError(t, err)

	for _, name := range []string{"Melon", "Watermelon"} {
		_, err := svc.AddProduct(ctx, farm.ID, &ProductInput{Name: name, Price: price(4.99), Category: "fruit"})
		require.NoError(t, err)
	}
	_, err = svc.AddProduct(ctx, other.ID, &ProductInput{Name: "Milk", Price: price(2), Category: "dairy"})
	require.NoError(t, err)

	detail, err := svc.GetFarm(ctx, farm.ID)
	require.NoError(t, err)
	assert.Len(t, detail.Products, 2)

	require.NoError(t, svc.DeleteFarm(ctx, farm.ID))

	orphans, err := products.Find(ctx, docstore.Where("farm_id", farm.ID))
	require.NoError(t, err)
	assert.Empty(t, orphans)

	rest, err := svc.ListProducts(ctx, "")
	require.NoError(t, err)
	require.Len(t, rest, 1)
	assert.Equal(t, "Milk", rest[0].Name)

	_, err = svc.GetFarm(ctx, farm.ID)
	assert.True(t, apperror.IsNotFound(err))
}

func TestAddProductToMissingFarm(t *testing.T) {
	svc, _ := newService()
	_, err := svc.AddProduct(context.Background(), uuid.New(), &ProductInput{Name: "x", Price: price(1)})
	assert.True(t, apperror.IsNotFound(err))
}

func TestMissingIDsUseNotFoundMessages(t *testing.T) {
	ctx := context.Background()
	svc, _ := newService()

	var appErr *apperror.AppError
	_, err := svc.GetFarm(ctx, uuid.New())
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, MsgFarmNotFound, appErr.Message)

	_, err = svc.GetProduct(ctx, uuid.New())
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, MsgProductNotFound, appErr.Message)
}

func TestGetProductPopulatesFarm(t *testing.T) {
	ctx := context.Background()
	svc, _ := newService()
	farm, err := svc.CreateFarm(ctx, &FarmInput{Name: "Full Belly Farms", Email: "fbf@example.com"})
	require.NoError(t, err)
	p, err := svc.AddProduct(ctx, farm.ID, &ProductInput{Name: "Melon", Price: price(4.99), Category: "fruit"})
	require.NoError(t, err)

	detail, err := svc.GetProduct(ctx, p.ID)
	require.NoError(t, err)
	require.NotNil(t, detail.Farm)
	assert.Equal(t, "Full Belly Farms", detail.Farm.Name)

	updated, err := svc.UpdateProduct(ctx, p.ID, &ProductInput{Name: "Honeydew", Price: price(3), Category: "fruit"})
	require.NoError(t, err)
	assert.Equal(t, "Honeydew", updated.Name)
	assert.Equal(t, farm.ID, updated.FarmID, "update keeps the farm link")
}

func newHandler(t *testing.T) (http.Handler, *Service) {
	t.Helper()
	svc, _ := newService()
	manager := session.NewManager(session.NewMemoryStore(), session.NewCodec("test-secret"), time.Hour, false, nil)
	p := pipeline.New(pipeline.NewErrorHandler(false, nil), nil)
	p.Use(pipeline.Sessions(manager))

	r := chi.NewRouter()
	r.Use(pipeline.MethodOverride)
	NewHandlers(svc).RegisterRoutes(r, p)
	return r, svc
}

func TestFarmAndProductRoutes(t *testing.T) {
	h, svc := newHandler(t)
	c := apptest.NewClient(t, h)

	resp := c.Do(http.MethodPost, "/farms", url.Values{"name": {"Full Belly Farms"}, "email": {"not-an-email"}})
	assert.Equal(t, http.StatusBadRequest, resp.Status)
	assert.Contains(t, resp.Body, "email")

	resp = c.Do(http.MethodPost, "/farms", url.Values{"name": {"Full Belly Farms"}, "city": {"Guinda"}, "email": {"fbf@example.com"}})
	require.Equal(t, http.StatusFound, resp.Status, resp.Body)
	farmPath := resp.Location
	assert.True(t, strings.HasPrefix(farmPath, "/farms/"))

	resp = c.Do(http.MethodPost, farmPath+"/products", url.Values{
		"product[name]": {"Melon"}, "product[price]": {"4.99"}, "product[category]": {"Fruit"},
	})
	require.Equal(t, http.StatusFound, resp.Status, resp.Body)
	assert.Equal(t, farmPath, resp.Location)

	resp = c.Do(http.MethodPost, farmPath+"/products", url.Values{
		"name": {"Cheese"}, "price": {"7"}, "category": {"meat"},
	})
	assert.Equal(t, http.StatusBadRequest, resp.Status)
	assert.Contains(t, resp.Body, "category")

	resp = c.Get("/products?category=fruit")
	require.Equal(t, http.StatusOK, resp.Status)
	items := resp.JSON(t)["data"].(map[string]any)["products"].([]any)
	require.Len(t, items, 1)
	melon := items[0].(map[string]any)
	assert.Equal(t, "fruit", melon["category"])

	assert.Empty(t, c.Get("/products?category=dairy").JSON(t)["data"].(map[string]any)["products"])

	productPath := "/products/" + melon["id"].(string)
	resp = c.Do(http.MethodPut, productPath, url.Values{"name": {"Melon"}, "price": {"2.50"}, "category": {"fruit"}})
	assert.Equal(t, productPath, resp.Location)
	show := c.Get(productPath).JSON(t)["data"].(map[string]any)["product"].(map[string]any)
	assert.Equal(t, 2.5, show["price"])
	assert.Equal(t, "Full Belly Farms", show["farm"].(map[string]any)["name"])

	resp = c.Do(http.MethodPost, farmPath+"?_method=DELETE", nil)
	assert.Equal(t, "/farms", resp.Location)
	assert.Contains(t, apptest.Flash(t, c.Get("/farms")), "Successfully deleted the farm!")

	rest, err := svc.ListProducts(context.Background(), "")
	require.NoError(t, err)
	assert.Empty(t, rest)

	assert.Equal(t, http.StatusNotFound, c.Get(farmPath).Status)
	assert.Equal(t, http.StatusNotFound, c.Get(productPath).Status)
}
