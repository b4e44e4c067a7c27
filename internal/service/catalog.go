package service

import (
	"context"
	"errors"
	"strings"

	"github.com/Skotchmaster/markethub/internal/logging"
	"github.com/Skotchmaster/markethub/internal/models"
	"github.com/Skotchmaster/markethub/internal/repo"
	"github.com/Skotchmaster/markethub/internal/transport"
	"github.com/Skotchmaster/markethub/internal/util"
)

// ProductIndex is a full-text mirror of the catalog. The database stays the
// source of truth.
type ProductIndex interface {
	IndexProduct(ctx context.Context, p models.Product) error
	DeleteProduct(ctx context.Context, id uint) error
	Search(ctx context.Context, query string, from, size int) ([]uint, error)
}

type CatalogService struct {
	Store repo.Store
	Index ProductIndex
}

func NewCatalogService(store repo.Store, index ProductIndex) *CatalogService {
	return &CatalogService{Store: store, Index: index}
}

func (s *CatalogService) ListCategories(ctx context.Context) ([]models.Category, error) {
	return s.Store.ListCategories(ctx)
}

func (s *CatalogService) GetCategory(ctx context.Context, id uint) (*models.Category, error) {
	c, err := s.Store.GetCategory(ctx, id)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, fail(ErrNotFound, "Category not found")
		}
		return nil, err
	}
	return c, nil
}

func (s *CatalogService) CreateCategory(ctx context.Context, req transport.CreateCategoryRequest) (*models.Category, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, fail(ErrValidation, "Invalid data")
	}
	if err := s.categoryNameFree(ctx, 0, name, "Category already exists"); err != nil {
		return nil, err
	}

	c := &models.Category{Name: name, Description: req.Description, Image: req.Image}
	if err := s.Store.CreateCategory(ctx, c); err != nil {
		if errors.Is(err, repo.ErrDuplicate) {
			return nil, fail(ErrConflict, "Category already exists")
		}
		return nil, err
	}
	return c, nil
}

func (s *CatalogService) UpdateCategory(ctx context.Context, id uint, req transport.UpdateCategoryRequest) (*models.Category, error) {
	var name string
	if req.Name != nil {
		name = strings.TrimSpace(*req.Name)
		if err := s.categoryNameFree(ctx, id, name, "Category name already exists"); err != nil {
			return nil, err
		}
	}

	c, err := s.GetCategory(ctx, id)
	if err != nil {
		return nil, err
	}
	if name != "" {
		c.Name = name
	}
	if req.Description != nil {
		c.Description = req.Description
	}
	if req.Image != nil {
		c.Image = req.Image
	}
	if err := s.Store.SaveCategory(ctx, c); err != nil {
		if errors.Is(err, repo.ErrDuplicate) {
			return nil, fail(ErrConflict, "Category name already exists")
		}
		return nil, err
	}
	return c, nil
}

// DeleteCategory refuses while any product still points at the category.
func (s *CatalogService) DeleteCategory(ctx context.Context, id uint) error {
	n, err := s.Store.CountProductsInCategory(ctx, id)
	if err != nil {
		return err
	}
	if n > 0 {
		return fail(ErrCategoryInUse, "Cannot delete category with products")
	}
	if err := s.Store.DeleteCategory(ctx, id); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return fail(ErrNotFound, "Category not found")
		}
		return err
	}
	return nil
}

func (s *CatalogService) categoryNameFree(ctx context.Context, selfID uint, name, msg string) error {
	if name == "" {
		return nil
	}
	existing, err := s.Store.GetCategoryByName(ctx, name)
	if err == nil && existing.ID != selfID {
		return fail(ErrConflict, "%s", msg)
	}
	if err != nil && !errors.Is(err, repo.ErrNotFound) {
		return err
	}
	return nil
}

type ProductQuery struct {
	CategoryID *uint
	Search     string
	Featured   bool
	OnSale     bool
}

// ListProducts applies one filter: category, then search, then featured,
// then on sale. Search goes through the index when one is configured and
// falls back to a database match if the index fails.
func (s *CatalogService) ListProducts(ctx context.Context, q ProductQuery) ([]models.Product, error) {
	f := repo.ProductFilter{
		CategoryID: q.CategoryID,
		Search:     strings.TrimSpace(q.Search),
		Featured:   q.Featured,
		OnSale:     q.OnSale,
	}
	if f.CategoryID != nil || f.Search == "" || s.Index == nil {
		return s.Store.ListProducts(ctx, f)
	}

	offset, limit := util.Calculate(1, util.MaxPageSize)
	ids, err := s.Index.Search(ctx, f.Search, offset, limit)
	if err != nil {
		logging.FromContext(ctx).Warn("product_search_fallback", "reason", "index search failed", "error", err)
		return s.Store.ListProducts(ctx, f)
	}

	found, err := s.Store.ListProducts(ctx, repo.ProductFilter{IDs: ids})
	if err != nil {
		return nil, err
	}
	return orderByIDs(found, ids), nil
}

// orderByIDs restores the relevance order of ids.
func orderByIDs(products []models.Product, ids []uint) []models.Product {
	byID := make(map[uint]models.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}
	out := make([]models.Product, 0, len(products))
	for _, id := range ids {
		if p, ok := byID[id]; ok {
			out = append(out, p)
			delete(byID, id)
		}
	}
	return out
}

func (s *CatalogService) GetProduct(ctx context.Context, id uint) (*models.Product, error) {
	p, err := s.Store.GetProduct(ctx, id)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, fail(ErrNotFound, "Product not found")
		}
		return nil, err
	}
	return p, nil
}

func (s *CatalogService) CreateProduct(ctx context.Context, req transport.CreateProductRequest) (*models.Product, error) {
	if strings.TrimSpace(req.Name) == "" || req.Price == nil || req.Stock == nil || *req.Price < 0 || *req.Stock < 0 {
		return nil, fail(ErrValidation, "Invalid data")
	}
	if err := s.ensureCategory(ctx, req.CategoryID); err != nil {
		return nil, err
	}

	p := &models.Product{
		Name:            strings.TrimSpace(req.Name),
		Description:     req.Description,
		Price:           *req.Price,
		OriginalPrice:   req.OriginalPrice,
		CategoryID:      req.CategoryID,
		Stock:           *req.Stock,
		Images:          nonNil(req.Images),
		IsFeatured:      req.IsFeatured,
		IsOnSale:        req.IsOnSale,
		SKU:             strings.TrimSpace(req.SKU),
		Tags:            nonNil(req.Tags),
		IsVisible:       req.IsVisible == nil || *req.IsVisible,
		ScheduledLaunch: req.ScheduledLaunch,
	}
	if p.CategoryID != nil && *p.CategoryID == 0 {
		p.CategoryID = nil
	}
	if err := s.Store.CreateProduct(ctx, p); err != nil {
		return nil, err
	}
	s.mirror(ctx, p)
	return p, nil
}

func (s *CatalogService) PatchProduct(ctx context.Context, id uint, req transport.PatchProductRequest) (*models.Product, error) {
	if req.CategoryID != nil && *req.CategoryID != 0 {
		if err := s.ensureCategory(ctx, req.CategoryID); err != nil {
			return nil, err
		}
	}

	p, err := s.GetProduct(ctx, id)
	if err != nil {
		return nil, err
	}

	var cols []string
	if req.Name != nil && strings.TrimSpace(*req.Name) != "" {
		p.Name = strings.TrimSpace(*req.Name)
		cols = append(cols, "name")
	}
	if req.Description != nil {
		p.Description = req.Description
		cols = append(cols, "description")
	}
	if req.Price != nil {
		if *req.Price < 0 {
			return nil, fail(ErrValidation, "Invalid data")
		}
		p.Price = *req.Price
		cols = append(cols, "price")
	}
	if req.OriginalPrice != nil {
		p.OriginalPrice = req.OriginalPrice
		cols = append(cols, "original_price")
	}
	if req.CategoryID != nil {
		if *req.CategoryID == 0 {
			p.CategoryID = nil
		} else {
			p.CategoryID = req.CategoryID
		}
		cols = append(cols, "category_id")
	}
	if req.Stock != nil {
		if *req.Stock < 0 {
			return nil, fail(ErrValidation, "Invalid data")
		}
		p.Stock = *req.Stock
		cols = append(cols, "stock")
	}
	if req.Images != nil {
		p.Images = nonNil(*req.Images)
		cols = append(cols, "images")
	}
	if req.IsFeatured != nil {
		p.IsFeatured = *req.IsFeatured
		cols = append(cols, "is_featured")
	}
	if req.IsOnSale != nil {
		p.IsOnSale = *req.IsOnSale
		cols = append(cols, "is_on_sale")
	}
	if req.SKU != nil && strings.TrimSpace(*req.SKU) != "" {
		p.SKU = strings.TrimSpace(*req.SKU)
		cols = append(cols, "sku")
	}
	if req.Tags != nil {
		p.Tags = nonNil(*req.Tags)
		cols = append(cols, "tags")
	}
	if req.IsVisible != nil {
		p.IsVisible = *req.IsVisible
		cols = append(cols, "is_visible")
	}
	if req.ScheduledLaunch != nil {
		p.ScheduledLaunch = req.ScheduledLaunch
		cols = append(cols, "scheduled_launch")
	}

	if len(cols) == 0 {
		return p, nil
	}
	if err := s.Store.SaveProduct(ctx, p, cols...); err != nil {
		return nil, err
	}
	// Reload so columns left untouched, such as stock, reflect concurrent writes.
	if p, err = s.GetProduct(ctx, id); err != nil {
		return nil, err
	}
	s.mirror(ctx, p)
	return p, nil
}

func (s *CatalogService) DeleteProduct(ctx context.Context, id uint) error {
	if err := s.Store.DeleteProduct(ctx, id); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return fail(ErrNotFound, "Product not found")
		}
		return err
	}
	if s.Index != nil {
		if err := s.Index.DeleteProduct(ctx, id); err != nil {
			logging.FromContext(ctx).Warn("product_index_error", "op", "delete", "product_id", id, "error", err)
		}
	}
	return nil
}

func (s *CatalogService) ensureCategory(ctx context.Context, id *uint) error {
	if id == nil || *id == 0 {
		return nil
	}
	if _, err := s.Store.GetCategory(ctx, *id); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return fail(ErrValidation, "Category not found")
		}
		return err
	}
	return nil
}

// mirror pushes p to the index; failures are logged only.
func (s *CatalogService) mirror(ctx context.Context, p *models.Product) {
	if s.Index == nil {
		return
	}
	if err := s.Index.IndexProduct(ctx, *p); err != nil {
		logging.FromContext(ctx).Warn("product_index_error", "op", "index", "product_id", p.ID, "error", err)
	}
}

func nonNil(v []string) []string {
	if v == nil {
		return []string{}
	}
	return v
}
