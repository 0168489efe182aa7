package services

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/patrickmn/go-cache"

	"handmade_shop/internal/domain/models"
	"handmade_shop/internal/lib/apiclient"
	"handmade_shop/internal/lib/logger/sl"
	"handmade_shop/internal/transport/http/dto"
)

const (
	DefaultProductLimit = 100
	DefaultCatalogLimit = 25

	productPath       = "/product-catalog/product"
	productByNamePath = "/product-catalog/product-by-name"
	productBySlugPath = "/product-catalog/product/slug"
	categoryPath      = "/product-catalog/category"
	materialPath      = "/product-catalog/material"
)

type ClientProvider interface {
	Client(sessionID string) (*apiclient.Client, error)
}

// CatalogService проксирует каталог и кэширует публичные чтения.
// Любая запись администратора сбрасывает кэш целиком.
type CatalogService struct {
	log     *slog.Logger
	clients ClientProvider
	cache   *cache.Cache
}

func NewCatalogService(log *slog.Logger, clients ClientProvider, ttl time.Duration) *CatalogService {
	return &CatalogService{
		log:     log,
		clients: clients,
		cache:   cache.New(ttl, 2*ttl),
	}
}

func (s *CatalogService) Products(ctx context.Context, sessionID, name string, page dto.Pagination) (*models.Page[models.Product], error) {
	const op = "services.CatalogService.Products"

	page = page.WithDefaults(DefaultProductLimit)
	query := page.Query()
	query.Set("name", name)

	var result models.Page[models.Product]
	if err := s.cachedGet(ctx, op, sessionID, productByNamePath, query, false, &result); err != nil {
		return nil, err
	}

	return &result, nil
}

func (s *CatalogService) ProductBySlug(ctx context.Context, sessionID, slug string) (*models.Product, error) {
	const op = "services.CatalogService.ProductBySlug"

	var product models.Product
	if err := s.cachedGet(ctx, op, sessionID, productBySlugPath+"/"+url.PathEscape(slug), nil, true, &product); err != nil {
		return nil, err
	}

	return &product, nil
}

func (s *CatalogService) Product(ctx context.Context, sessionID, id string) (*models.Product, error) {
	const op = "services.CatalogService.Product"

	var product models.Product
	if err := s.cachedGet(ctx, op, sessionID, productPath+"/"+url.PathEscape(id), nil, true, &product); err != nil {
		return nil, err
	}

	return &product, nil
}

func (s *CatalogService) CreateProduct(ctx context.Context, sessionID string, input dto.ProductInput) (*models.Product, error) {
	const op = "services.CatalogService.CreateProduct"

	var product models.Product
	if err := s.write(ctx, op, sessionID, http.MethodPost, productPath, input, &product); err != nil {
		return nil, err
	}

	return &product, nil
}

func (s *CatalogService) UpdateProduct(ctx context.Context, sessionID, id string, input dto.ProductInput) (*models.Product, error) {
	const op = "services.CatalogService.UpdateProduct"

	var product models.Product
	if err := s.write(ctx, op, sessionID, http.MethodPut, productPath+"/"+url.PathEscape(id), input, &product); err != nil {
		return nil, err
	}

	return &product, nil
}

func (s *CatalogService) SetProductActive(ctx context.Context, sessionID, id string, active bool) error {
	const op = "services.CatalogService.SetProductActive"

	return s.write(ctx, op, sessionID, http.MethodPut, productPath+"/"+url.PathEscape(id), map[string]bool{"isActive": active}, nil)
}

func (s *CatalogService) DeleteProduct(ctx context.Context, sessionID, id string) error {
	const op = "services.CatalogService.DeleteProduct"

	return s.write(ctx, op, sessionID, http.MethodDelete, productPath+"/"+url.PathEscape(id), nil, nil)
}

func (s *CatalogService) Categories(ctx context.Context, sessionID string, page dto.Pagination) (*models.Page[models.Category], error) {
	const op = "services.CatalogService.Categories"

	var result models.Page[models.Category]
	if err := s.cachedGet(ctx, op, sessionID, categoryPath, page.WithDefaults(DefaultCatalogLimit).Query(), false, &result); err != nil {
		return nil, err
	}

	return &result, nil
}

func (s *CatalogService) Category(ctx context.Context, sessionID, id string) (*models.Category, error) {
	const op = "services.CatalogService.Category"

	var category models.Category
	if err := s.cachedGet(ctx, op, sessionID, categoryPath+"/"+url.PathEscape(id), nil, true, &category); err != nil {
		return nil, err
	}

	return &category, nil
}

func (s *CatalogService) CreateCategory(ctx context.Context, sessionID string, input dto.CategoryInput) (*models.Category, error) {
	const op = "services.CatalogService.CreateCategory"

	var category models.Category
	if err := s.write(ctx, op, sessionID, http.MethodPost, categoryPath, input, &category); err != nil {
		return nil, err
	}

	return &category, nil
}

func (s *CatalogService) UpdateCategory(ctx context.Context, sessionID, id string, input dto.CategoryInput) (*models.Category, error) {
	const op = "services.CatalogService.UpdateCategory"

	var category models.Category
	if err := s.write(ctx, op, sessionID, http.MethodPut, categoryPath+"/"+url.PathEscape(id), input, &category); err != nil {
		return nil, err
	}

	return &category, nil
}

func (s *CatalogService) SetCategoryActive(ctx context.Context, sessionID, id string, active bool) error {
	const op = "services.CatalogService.SetCategoryActive"

	return s.write(ctx, op, sessionID, http.MethodPut, categoryPath+"/"+url.PathEscape(id), map[string]bool{"isActive": active}, nil)
}

func (s *CatalogService) DeleteCategory(ctx context.Context, sessionID, id string) error {
	const op = "services.CatalogService.DeleteCategory"

	return s.write(ctx, op, sessionID, http.MethodDelete, categoryPath+"/"+url.PathEscape(id), nil, nil)
}

func (s *CatalogService) Materials(ctx context.Context, sessionID string, page dto.Pagination) (*models.Page[models.Material], error) {
	const op = "services.CatalogService.Materials"

	var result models.Page[models.Material]
	if err := s.cachedGet(ctx, op, sessionID, materialPath, page.WithDefaults(DefaultCatalogLimit).Query(), false, &result); err != nil {
		return nil, err
	}

	return &result, nil
}

func (s *CatalogService) Material(ctx context.Context, sessionID, id string) (*models.Material, error) {
	const op = "services.CatalogService.Material"

	var material models.Material
	if err := s.cachedGet(ctx, op, sessionID, materialPath+"/"+url.PathEscape(id), nil, true, &material); err != nil {
		return nil, err
	}

	return &material, nil
}

func (s *CatalogService) CreateMaterial(ctx context.Context, sessionID string, input dto.MaterialInput) (*models.Material, error) {
	const op = "services.CatalogService.CreateMaterial"

	var material models.Material
	if err := s.write(ctx, op, sessionID, http.MethodPost, materialPath, input, &material); err != nil {
		return nil, err
	}

	return &material, nil
}

func (s *CatalogService) UpdateMaterial(ctx context.Context, sessionID, id string, input dto.MaterialInput) (*models.Material, error) {
	const op = "services.CatalogService.UpdateMaterial"

	var material models.Material
	if err := s.write(ctx, op, sessionID, http.MethodPut, materialPath+"/"+url.PathEscape(id), input, &material); err != nil {
		return nil, err
	}

	return &material, nil
}

func (s *CatalogService) SetMaterialActive(ctx context.Context, sessionID, id string, active bool) error {
	const op = "services.CatalogService.SetMaterialActive"

	return s.write(ctx, op, sessionID, http.MethodPut, materialPath+"/"+url.PathEscape(id), map[string]bool{"isActive": active}, nil)
}

func (s *CatalogService) DeleteMaterial(ctx context.Context, sessionID, id string) error {
	const op = "services.CatalogService.DeleteMaterial"

	return s.write(ctx, op, sessionID, http.MethodDelete, materialPath+"/"+url.PathEscape(id), nil, nil)
}

// cachedGet отдаёт сырое тело из кэша или с бэкенда; unwrap снимает обёртку data.
func (s *CatalogService) cachedGet(ctx context.Context, op, sessionID, path string, query url.Values, unwrap bool, dst any) error {
	key := path
	if len(query) > 0 {
		key += "?" + query.Encode()
	}

	resp, found := s.cached(key)
	if !found {
		client, err := s.clients.Client(sessionID)
		if err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}

		resp, err = client.Get(ctx, path, apiclient.WithQueryValues(query))
		if err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
		s.cache.SetDefault(key, resp)
	}

	decode := resp.Decode
	if unwrap {
		decode = resp.DecodeData
	}
	if err := decode(dst); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func (s *CatalogService) cached(key string) (*apiclient.Response, bool) {
	v, found := s.cache.Get(key)
	if !found {
		return nil, false
	}

	resp, ok := v.(*apiclient.Response)
	return resp, ok
}

func (s *CatalogService) write(ctx context.Context, op, sessionID, method, path string, body, dst any) error {
	log := s.log.With(
		slog.String("op", op),
		slog.String("path", path),
	)

	client, err := s.clients.Client(sessionID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	resp, err := client.Do(ctx, method, path, body)
	if err != nil {
		log.Warn("catalog write failed", sl.Err(err))
		return fmt.Errorf("%s: %w", op, err)
	}

	s.cache.Flush()
	log.Info("catalog changed, cache flushed")

	if dst == nil {
		return nil
	}
	if err := resp.DecodeData(dst); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}
