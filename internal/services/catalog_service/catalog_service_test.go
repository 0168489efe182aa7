package services

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"handmade_shop/internal/lib/apiclient"
	"handmade_shop/internal/repository"
	"handmade_shop/internal/transport/http/dto"
)

type fakeCatalog struct {
	mu      sync.Mutex
	hits    map[string]int
	queries map[string]string
	bodies  map[string]map[string]any
	fail    bool
}

func newFakeCatalog() *fakeCatalog {
	return &fakeCatalog{
		hits:    map[string]int{},
		queries: map[string]string{},
		bodies:  map[string]map[string]any{},
	}
}

func (f *fakeCatalog) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	key := r.Method + " " + r.URL.Path

	var body map[string]any
	_ = json.NewDecoder(r.Body).Decode(&body)

	f.mu.Lock()
	f.hits[key]++
	f.queries[key] = r.URL.RawQuery
	f.bodies[key] = body
	fail := f.fail
	f.mu.Unlock()

	if fail {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = io.WriteString(w, `{"message":"catalog unavailable"}`)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	switch {
	case r.URL.Path == "/product-catalog/product-by-name":
		_, _ = io.WriteString(w, `{"count":1,"limit":100,"page":1,"data":[{"id":"p1","name":"Bear","slug":"bear","price":150000}]}`)
	case r.URL.Path == "/product-catalog/product/slug/bear":
		_, _ = io.WriteString(w, `{"success":true,"data":{"id":"p1","name":"Bear","slug":"bear"}}`)
	case r.URL.Path == "/product-catalog/category":
		_, _ = io.WriteString(w, `{"count":2,"limit":25,"page":1,"data":[{"id":"c1","name":"Animals"},{"id":"c2","name":"Dolls"}]}`)
	case r.URL.Path == "/product-catalog/material":
		_, _ = io.WriteString(w, `{"count":1,"limit":25,"page":1,"data":[{"id":"m1","name":"Cotton","unit":"kg","price":null}]}`)
	case r.Method == http.MethodPost:
		_, _ = io.WriteString(w, `{"id":"new","name":"created"}`)
	default:
		_, _ = io.WriteString(w, `{}`)
	}
}

func (f *fakeCatalog) count(key string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.hits[key]
}

func (f *fakeCatalog) query(key string) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.queries[key]
}

func (f *fakeCatalog) body(key string) map[string]any {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.bodies[key]
}

func newCatalog(t *testing.T, backend http.Handler) *CatalogService {
	t.Helper()

	srv := httptest.NewServer(backend)
	t.Cleanup(srv.Close)

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	repo := repository.NewMemoryCredentialRepo(time.Hour, 24*time.Hour)
	registry := apiclient.NewRegistry(time.Hour, func(sessionID string) (*apiclient.Client, error) {
		return apiclient.New(log, srv.URL, repository.NewSessionCredentials(repo, sessionID))
	})

	return NewCatalogService(log, registry, time.Minute)
}

func TestCatalogService_ProductsCached(t *testing.T) {
	ctx := context.Background()
	backend := newFakeCatalog()
	service := newCatalog(t, backend)

	page, err := service.Products(ctx, "sid-1", "Bear", dto.Pagination{})
	require.NoError(t, err)
	require.Len(t, page.Data, 1)
	assert.Equal(t, "bear", page.Data[0].Slug)
	assert.Equal(t, 150000.0, page.Data[0].Price)

	_, err = service.Products(ctx, "sid-2", "Bear", dto.Pagination{})
	require.NoError(t, err)

	assert.Equal(t, 1, backend.count("GET /product-catalog/product-by-name"))
	assert.Equal(t, "limit=100&name=Bear&offset=0", backend.query("GET /product-catalog/product-by-name"))

	_, err = service.Products(ctx, "sid-1", "Bear", dto.Pagination{Offset: 100, Limit: 50})
	require.NoError(t, err)
	assert.Equal(t, 2, backend.count("GET /product-catalog/product-by-name"))
}

func TestCatalogService_WriteFlushesCache(t *testing.T) {
	ctx := context.Background()
	backend := newFakeCatalog()
	service := newCatalog(t, backend)

	product, err := service.ProductBySlug(ctx, "sid", "bear")
	require.NoError(t, err)
	assert.Equal(t, "p1", product.ID)

	_, err = service.ProductBySlug(ctx, "sid", "bear")
	require.NoError(t, err)
	assert.Equal(t, 1, backend.count("GET /product-catalog/product/slug/bear"))

	created, err := service.CreateProduct(ctx, "sid", dto.ProductInput{
		Name:        "Duck",
		Price:       120000,
		Description: "Yellow duck",
		CategoryID:  "c1",
		MaterialID:  "m1",
		Images:      []dto.ImageInput{{URL: "https://cdn.example.com/duck.jpg", IsThumbnail: true}},
	})
	require.NoError(t, err)
	assert.Equal(t, "new", created.ID)

	_, err = service.ProductBySlug(ctx, "sid", "bear")
	require.NoError(t, err)
	assert.Equal(t, 2, backend.count("GET /product-catalog/product/slug/bear"))

	body := backend.body("POST /product-catalog/product")
	assert.Equal(t, "Duck", body["name"])
	assert.Equal(t, "c1", body["categoryId"])
}

func TestCatalogService_SetActiveAndDelete(t *testing.T) {
	ctx := context.Background()
	backend := newFakeCatalog()
	service := newCatalog(t, backend)

	require.NoError(t, service.SetCategoryActive(ctx, "sid", "c1", false))
	assert.Equal(t, map[string]any{"isActive": false}, backend.body("PUT /product-catalog/category/c1"))

	require.NoError(t, service.SetProductActive(ctx, "sid", "p1", true))
	assert.Equal(t, map[string]any{"isActive": true}, backend.body("PUT /product-catalog/product/p1"))

	require.NoError(t, service.SetMaterialActive(ctx, "sid", "m1", true))
	require.NoError(t, service.DeleteMaterial(ctx, "sid", "m1"))
	require.NoError(t, service.DeleteProduct(ctx, "sid", "p1"))
	require.NoError(t, service.DeleteCategory(ctx, "sid", "c1"))

	assert.Equal(t, 1, backend.count("DELETE /product-catalog/material/m1"))
	assert.Equal(t, 1, backend.count("DELETE /product-catalog/product/p1"))
	assert.Equal(t, 1, backend.count("DELETE /product-catalog/category/c1"))
}

func TestCatalogService_CategoriesAndMaterials(t *testing.T) {
	ctx := context.Background()
	backend := newFakeCatalog()
	service := newCatalog(t, backend)

	categories, err := service.Categories(ctx, "sid", dto.Pagination{})
	require.NoError(t, err)
	assert.Equal(t, 2, categories.Count)
	assert.Equal(t, "limit=25&offset=0", backend.query("GET /product-catalog/category"))

	materials, err := service.Materials(ctx, "sid", dto.Pagination{Limit: 10})
	require.NoError(t, err)
	require.Len(t, materials.Data, 1)
	assert.Nil(t, materials.Data[0].Price)
	assert.Equal(t, "limit=10&offset=0", backend.query("GET /product-catalog/material"))

	material, err := service.CreateMaterial(ctx, "sid", dto.MaterialInput{Name: "Felt", Unit: "m", Price: "35000"})
	require.NoError(t, err)
	assert.Equal(t, "new", material.ID)

	category, err := service.UpdateCategory(ctx, "sid", "c1", dto.CategoryInput{Name: "Animals", Desc: "Soft animals"})
	require.NoError(t, err)
	assert.NotNil(t, category)
	assert.Equal(t, "Soft animals", backend.body("PUT /product-catalog/category/c1")["desc"])
}

func TestCatalogService_ErrorsAreNotCached(t *testing.T) {
	ctx := context.Background()
	backend := newFakeCatalog()
	backend.fail = true
	service := newCatalog(t, backend)

	_, err := service.Categories(ctx, "sid", dto.Pagination{})
	require.Error(t, err)
	assert.Equal(t, "catalog unavailable", apiclient.MessageOf(err))

	backend.mu.Lock()
	backend.fail = false
	backend.mu.Unlock()

	categories, err := service.Categories(ctx, "sid", dto.Pagination{})
	require.NoError(t, err)
	assert.Len(t, categories.Data, 2)
	assert.Equal(t, 2, backend.count("GET /product-catalog/category"))
}
