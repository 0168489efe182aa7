package http

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	catalog "handmade_shop/internal/services/catalog_service"
	"handmade_shop/internal/transport/http/dto"
	"handmade_shop/internal/transport/http/dto/response"
)

// ListProducts godoc
// @Summary Список товаров
// @Description Поиск товаров по названию с пагинацией offset/limit.
// @Tags catalog
// @Produce json
// @Param name query string false "Часть названия"
// @Param offset query int false "Смещение" default(0)
// @Param limit query int false "Размер страницы" default(100)
// @Success 200 {object} response.Response{data=models.Page[models.Product]}
// @Failure 502 {object} response.ErrorResponse
// @Router /api/v1/products [get]
func (r *Routers) ListProducts(c echo.Context) error {
	const op = "http.routers.ListProducts"

	log := r.log.With(
		slog.String("op", op),
	)

	page, err := r.CatalogService.Products(c.Request().Context(), SessionID(c), strings.TrimSpace(c.QueryParam("name")), pagination(c, catalog.DefaultProductLimit))
	if err != nil {
		return r.backendError(c, log, err)
	}

	return c.JSON(http.StatusOK, response.SuccessResponse(page))
}

// GetProductBySlug godoc
// @Summary Товар по slug
// @Tags catalog
// @Produce json
// @Param slug path string true "Slug товара"
// @Success 200 {object} response.Response{data=models.Product}
// @Failure 404 {object} response.ErrorResponse
// @Router /api/v1/products/slug/{slug} [get]
func (r *Routers) GetProductBySlug(c echo.Context) error {
	const op = "http.routers.GetProductBySlug"

	log := r.log.With(
		slog.String("op", op),
		slog.String("slug", c.Param("slug")),
	)

	product, err := r.CatalogService.ProductBySlug(c.Request().Context(), SessionID(c), c.Param("slug"))
	if err != nil {
		return r.backendError(c, log, err)
	}

	return c.JSON(http.StatusOK, response.SuccessResponse(product))
}

// @Router /api/v1/products/{id} [get]
func (r *Routers) GetProduct(c echo.Context) error {
	const op = "http.routers.GetProduct"

	log := r.log.With(
		slog.String("op", op),
		slog.String("product_id", c.Param("id")),
	)

	product, err := r.CatalogService.Product(c.Request().Context(), SessionID(c), c.Param("id"))
	if err != nil {
		return r.backendError(c, log, err)
	}

	return c.JSON(http.StatusOK, response.SuccessResponse(product))
}

// CreateProduct godoc
// @Summary Создание товара
// @Tags admin
// @Accept json
// @Produce json
// @Param request body dto.ProductInput true "Товар"
// @Success 201 {object} response.Response{data=models.Product}
// @Failure 400 {object} response.ErrorResponse
// @Failure 403 {object} response.ErrorResponse
// @Router /api/v1/admin/products [post]
func (r *Routers) CreateProduct(c echo.Context) error {
	const op = "http.routers.CreateProduct"

	log := r.log.With(
		slog.String("op", op),
	)

	var req dto.ProductInput
	if ok, err := r.bind(c, log, &req); !ok {
		return err
	}

	product, err := r.CatalogService.CreateProduct(c.Request().Context(), SessionID(c), req)
	if err != nil {
		return r.backendError(c, log, err)
	}

	log.Info("product created", slog.String("product_id", product.ID))

	return c.JSON(http.StatusCreated, response.SuccessResponse(product))
}

// @Router /api/v1/admin/products/{id} [put]
func (r *Routers) UpdateProduct(c echo.Context) error {
	const op = "http.routers.UpdateProduct"

	log := r.log.With(
		slog.String("op", op),
		slog.String("product_id", c.Param("id")),
	)

	var req dto.ProductInput
	if ok, err := r.bind(c, log, &req); !ok {
		return err
	}

	product, err := r.CatalogService.UpdateProduct(c.Request().Context(), SessionID(c), c.Param("id"), req)
	if err != nil {
		return r.backendError(c, log, err)
	}

	return c.JSON(http.StatusOK, response.SuccessResponse(product))
}

// @Router /api/v1/admin/products/{id}/active [patch]
func (r *Routers) SetProductActive(c echo.Context) error {
	const op = "http.routers.SetProductActive"

	log := r.log.With(
		slog.String("op", op),
		slog.String("product_id", c.Param("id")),
	)

	var req dto.ActiveInput
	if ok, err := r.bind(c, log, &req); !ok {
		return err
	}

	if err := r.CatalogService.SetProductActive(c.Request().Context(), SessionID(c), c.Param("id"), *req.IsActive); err != nil {
		return r.backendError(c, log, err)
	}

	return c.JSON(http.StatusOK, response.MessageResponse("Product updated"))
}

// @Router /api/v1/admin/products/{id} [delete]
func (r *Routers) DeleteProduct(c echo.Context) error {
	const op = "http.routers.DeleteProduct"

	log := r.log.With(
		slog.String("op", op),
		slog.String("product_id", c.Param("id")),
	)

	if err := r.CatalogService.DeleteProduct(c.Request().Context(), SessionID(c), c.Param("id")); err != nil {
		return r.backendError(c, log, err)
	}

	log.Info("product deleted")

	return c.JSON(http.StatusOK, response.MessageResponse("Product deleted"))
}

// @Router /api/v1/categories [get]
func (r *Routers) ListCategories(c echo.Context) error {
	const op = "http.routers.ListCategories"

	log := r.log.With(
		slog.String("op", op),
	)

	page, err := r.CatalogService.Categories(c.Request().Context(), SessionID(c), pagination(c, catalog.DefaultCatalogLimit))
	if err != nil {
		return r.backendError(c, log, err)
	}

	return c.JSON(http.StatusOK, response.SuccessResponse(page))
}

// @Router /api/v1/categories/{id} [get]
func (r *Routers) GetCategory(c echo.Context) error {
	const op = "http.routers.GetCategory"

	log := r.log.With(
		slog.String("op", op),
		slog.String("category_id", c.Param("id")),
	)

	category, err := r.CatalogService.Category(c.Request().Context(), SessionID(c), c.Param("id"))
	if err != nil {
		return r.backendError(c, log, err)
	}

	return c.JSON(http.StatusOK, response.SuccessResponse(category))
}

// @Router /api/v1/admin/categories [post]
func (r *Routers) CreateCategory(c echo.Context) error {
	const op = "http.routers.CreateCategory"

	log := r.log.With(
		slog.String("op", op),
	)

	var req dto.CategoryInput
	if ok, err := r.bind(c, log, &req); !ok {
		return err
	}

	category, err := r.CatalogService.CreateCategory(c.Request().Context(), SessionID(c), req)
	if err != nil {
		return r.backendError(c, log, err)
	}

	return c.JSON(http.StatusCreated, response.SuccessResponse(category))
}

// @Router /api/v1/admin/categories/{id} [put]
func (r *Routers) UpdateCategory(c echo.Context) error {
	const op = "http.routers.UpdateCategory"

	log := r.log.With(
		slog.String("op", op),
		slog.String("category_id", c.Param("id")),
	)

	var req dto.CategoryInput
	if ok, err := r.bind(c, log, &req); !ok {
		return err
	}

	category, err := r.CatalogService.UpdateCategory(c.Request().Context(), SessionID(c), c.Param("id"), req)
	if err != nil {
		return r.backendError(c, log, err)
	}

	return c.JSON(http.StatusOK, response.SuccessResponse(category))
}

// @Router /api/v1/admin/categories/{id}/active [patch]
func (r *Routers) SetCategoryActive(c echo.Context) error {
	const op = "http.routers.SetCategoryActive"

	log := r.log.With(
		slog.String("op", op),
		slog.String("category_id", c.Param("id")),
	)

	var req dto.ActiveInput
	if ok, err := r.bind(c, log, &req); !ok {
		return err
	}

	if err := r.CatalogService.SetCategoryActive(c.Request().Context(), SessionID(c), c.Param("id"), *req.IsActive); err != nil {
		return r.backendError(c, log, err)
	}

	return c.JSON(http.StatusOK, response.MessageResponse("Category updated"))
}

// @Router /api/v1/admin/categories/{id} [delete]
func (r *Routers) DeleteCategory(c echo.Context) error {
	const op = "http.routers.DeleteCategory"

	log := r.log.With(
		slog.String("op", op),
		slog.String("category_id", c.Param("id")),
	)

	if err := r.CatalogService.DeleteCategory(c.Request().Context(), SessionID(c), c.Param("id")); err != nil {
		return r.backendError(c, log, err)
	}

	return c.JSON(http.StatusOK, response.MessageResponse("Category deleted"))
}

// @Router /api/v1/materials [get]
func (r *Routers) ListMaterials(c echo.Context) error {
	const op = "http.routers.ListMaterials"

	log := r.log.With(
		slog.String("op", op),
	)

	page, err := r.CatalogService.Materials(c.Request().Context(), SessionID(c), pagination(c, catalog.DefaultCatalogLimit))
	if err != nil {
		return r.backendError(c, log, err)
	}

	return c.JSON(http.StatusOK, response.SuccessResponse(page))
}

// @Router /api/v1/materials/{id} [get]
func (r *Routers) GetMaterial(c echo.Context) error {
	const op = "http.routers.GetMaterial"

	log := r.log.With(
		slog.String("op", op),
		slog.String("material_id", c.Param("id")),
	)

	material, err := r.CatalogService.Material(c.Request().Context(), SessionID(c), c.Param("id"))
	if err != nil {
		return r.backendError(c, log, err)
	}

	return c.JSON(http.StatusOK, response.SuccessResponse(material))
}

// @Router /api/v1/admin/materials [post]
func (r *Routers) CreateMaterial(c echo.Context) error {
	const op = "http.routers.CreateMaterial"

	log := r.log.With(
		slog.String("op", op),
	)

	var req dto.MaterialInput
	if ok, err := r.bind(c, log, &req); !ok {
		return err
	}

	material, err := r.CatalogService.CreateMaterial(c.Request().Context(), SessionID(c), req)
	if err != nil {
		return r.backendError(c, log, err)
	}

	return c.JSON(http.StatusCreated, response.SuccessResponse(material))
}

// @Router /api/v1/admin/materials/{id} [put]
func (r *Routers) UpdateMaterial(c echo.Context) error {
	const op = "http.routers.UpdateMaterial"

	log := r.log.With(
		slog.String("op", op),
		slog.String("material_id", c.Param("id")),
	)

	var req dto.MaterialInput
	if ok, err := r.bind(c, log, &req); !ok {
		return err
	}

	material, err := r.CatalogService.UpdateMaterial(c.Request().Context(), SessionID(c), c.Param("id"), req)
	if err != nil {
		return r.backendError(c, log, err)
	}

	return c.JSON(http.StatusOK, response.SuccessResponse(material))
}

// @Router /api/v1/admin/materials/{id}/active [patch]
func (r *Routers) SetMaterialActive(c echo.Context) error {
	const op = "http.routers.SetMaterialActive"

	log := r.log.With(
		slog.String("op", op),
		slog.String("material_id", c.Param("id")),
	)

	var req dto.ActiveInput
	if ok, err := r.bind(c, log, &req); !ok {
		return err
	}

	if err := r.CatalogService.SetMaterialActive(c.Request().Context(), SessionID(c), c.Param("id"), *req.IsActive); err != nil {
		return r.backendError(c, log, err)
	}

	return c.JSON(http.StatusOK, response.MessageResponse("Material updated"))
}

// @Router /api/v1/admin/materials/{id} [delete]
func (r *Routers) DeleteMaterial(c echo.Context) error {
	const op = "http.routers.DeleteMaterial"

	log := r.log.With(
		slog.String("op", op),
		slog.String("material_id", c.Param("id")),
	)

	if err := r.CatalogService.DeleteMaterial(c.Request().Context(), SessionID(c), c.Param("id")); err != nil {
		return r.backendError(c, log, err)
	}

	return c.JSON(http.StatusOK, response.MessageResponse("Material deleted"))
}
