package httpserver

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/markethub/internal/logging"
	"github.com/Skotchmaster/markethub/internal/service"
	"github.com/Skotchmaster/markethub/internal/transport"
)

type CatalogHTTP struct {
	Svc *service.CatalogService
}

func (h *CatalogHTTP) ListCategories(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "categories.list")

	cats, err := h.Svc.ListCategories(ctx)
	if err != nil {
		return fromService(l, "list_categories_error", err)
	}
	return c.JSON(http.StatusOK, cats)
}

func (h *CatalogHTTP) GetCategory(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "categories.get")

	id, err := pathID(c, l, "get_category_error", "id")
	if err != nil {
		return err
	}
	cat, err := h.Svc.GetCategory(ctx, id)
	if err != nil {
		return fromService(l, "get_category_error", err)
	}
	return c.JSON(http.StatusOK, cat)
}

func (h *CatalogHTTP) CreateCategory(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "categories.create")

	var req transport.CreateCategoryRequest
	if err := bindValid(c, l, "create_category_error", &req); err != nil {
		return err
	}
	cat, err := h.Svc.CreateCategory(ctx, req)
	if err != nil {
		return fromService(l, "create_category_error", err)
	}

	l.Info("category_created", "category_id", cat.ID)
	return c.JSON(http.StatusCreated, cat)
}

func (h *CatalogHTTP) UpdateCategory(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "categories.update")

	id, err := pathID(c, l, "update_category_error", "id")
	if err != nil {
		return err
	}
	var req transport.UpdateCategoryRequest
	if err := bindValid(c, l, "update_category_error", &req); err != nil {
		return err
	}
	cat, err := h.Svc.UpdateCategory(ctx, id, req)
	if err != nil {
		return fromService(l, "update_category_error", err)
	}
	return c.JSON(http.StatusOK, cat)
}

func (h *CatalogHTTP) DeleteCategory(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "categories.delete")

	id, err := pathID(c, l, "delete_category_error", "id")
	if err != nil {
		return err
	}
	if err := h.Svc.DeleteCategory(ctx, id); err != nil {
		return fromService(l, "delete_category_error", err)
	}

	l.Info("category_deleted", "category_id", id)
	return message(c, "Category deleted successfully")
}

// ListProducts honours one of ?category, ?search, ?featured=true or
// ?onSale=true, in that order.
func (h *CatalogHTTP) ListProducts(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "products.list")

	q := service.ProductQuery{
		Search:   c.QueryParam("search"),
		Featured: c.QueryParam("featured") == "true",
		OnSale:   c.QueryParam("onSale") == "true",
	}
	if raw := c.QueryParam("category"); raw != "" {
		n, err := strconv.ParseUint(raw, 10, 0)
		if err != nil {
			l.Warn("list_products_error", "status", 400, "reason", "invalid category", "category", raw)
			return echo.NewHTTPError(http.StatusBadRequest, "Invalid category ID")
		}
		id := uint(n)
		q.CategoryID = &id
	}

	products, err := h.Svc.ListProducts(ctx, q)
	if err != nil {
		return fromService(l, "list_products_error", err)
	}
	return c.JSON(http.StatusOK, products)
}

func (h *CatalogHTTP) GetProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "products.get")

	id, err := pathID(c, l, "get_product_error", "id")
	if err != nil {
		return err
	}
	p, err := h.Svc.GetProduct(ctx, id)
	if err != nil {
		return fromService(l, "get_product_error", err)
	}
	return c.JSON(http.StatusOK, p)
}

func (h *CatalogHTTP) CreateProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "products.create")

	var req transport.CreateProductRequest
	if err := bindValid(c, l, "create_product_error", &req); err != nil {
		return err
	}
	p, err := h.Svc.CreateProduct(ctx, req)
	if err != nil {
		return fromService(l, "create_product_error", err)
	}

	l.Info("product_created", "product_id", p.ID)
	return c.JSON(http.StatusCreated, p)
}

// UpdateProduct applies only the fields present in the body.
func (h *CatalogHTTP) UpdateProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "products.update")

	id, err := pathID(c, l, "update_product_error", "id")
	if err != nil {
		return err
	}
	var req transport.PatchProductRequest
	if err := bindValid(c, l, "update_product_error", &req); err != nil {
		return err
	}
	p, err := h.Svc.PatchProduct(ctx, id, req)
	if err != nil {
		return fromService(l, "update_product_error", err)
	}

	l.Info("product_updated", "product_id", p.ID)
	return c.JSON(http.StatusOK, p)
}

func (h *CatalogHTTP) DeleteProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "products.delete")

	id, err := pathID(c, l, "delete_product_error", "id")
	if err != nil {
		return err
	}
	if err := h.Svc.DeleteProduct(ctx, id); err != nil {
		return fromService(l, "delete_product_error", err)
	}

	l.Info("product_deleted", "product_id", id)
	return message(c, "Product deleted successfully")
}
