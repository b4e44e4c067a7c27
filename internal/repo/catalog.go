package repo

import (
	"context"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/Skotchmaster/markethub/internal/models"
)

func (r *GormRepo) GetCategory(ctx context.Context, id uint) (*models.Category, error) {
	var c models.Category
	if err := r.DB.WithContext(ctx).First(&c, id).Error; err != nil {
		return nil, notFound(err, "category")
	}
	return &c, nil
}

func (r *GormRepo) GetCategoryByName(ctx context.Context, name string) (*models.Category, error) {
	var c models.Category
	if err := r.DB.WithContext(ctx).Where("LOWER(name) = LOWER(?)", name).First(&c).Error; err != nil {
		return nil, notFound(err, "category")
	}
	return &c, nil
}

func (r *GormRepo) CreateCategory(ctx context.Context, c *models.Category) error {
	return duplicate(r.DB.WithContext(ctx).Create(c).Error, "category")
}

func (r *GormRepo) SaveCategory(ctx context.Context, c *models.Category) error {
	return duplicate(r.DB.WithContext(ctx).Save(c).Error, "category")
}

func (r *GormRepo) DeleteCategory(ctx context.Context, id uint) error {
	res := r.DB.WithContext(ctx).Delete(&models.Category{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("category %d: %w", id, ErrNotFound)
	}
	return nil
}

func (r *GormRepo) ListCategories(ctx context.Context) ([]models.Category, error) {
	items := []models.Category{}
	if err := r.DB.WithContext(ctx).Order("id ASC").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (r *GormRepo) CountProductsInCategory(ctx context.Context, id uint) (int64, error) {
	var n int64
	if err := r.DB.WithContext(ctx).Model(&models.Product{}).Where("category_id = ?", id).Count(&n).Error; err != nil {
		return 0, err
	}
	return n, nil
}

func (r *GormRepo) GetProduct(ctx context.Context, id uint) (*models.Product, error) {
	var p models.Product
	if err := r.DB.WithContext(ctx).First(&p, id).Error; err != nil {
		return nil, notFound(err, "product")
	}
	return &p, nil
}

// ListProducts applies at most one filter, in the order category, ids,
// search, featured, on sale.
func (r *GormRepo) ListProducts(ctx context.Context, f ProductFilter) ([]models.Product, error) {
	q := r.DB.WithContext(ctx).Model(&models.Product{})

	switch {
	case f.CategoryID != nil:
		q = q.Where("category_id = ?", *f.CategoryID)
	case f.IDs != nil:
		if len(f.IDs) == 0 {
			return []models.Product{}, nil
		}
		q = q.Where("id IN ?", f.IDs)
	case f.Search != "":
		like := "%" + strings.ToLower(f.Search) + "%"
		q = q.Where("LOWER(name) LIKE ? OR LOWER(COALESCE(description, '')) LIKE ?", like, like)
	case f.Featured:
		q = q.Where("is_featured = ?", true)
	case f.OnSale:
		q = q.Where("is_on_sale = ?", true)
	}

	items := []models.Product{}
	if err := q.Order("id ASC").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// CreateProduct inserts p and assigns the default SKU-<id> when none is set.
func (r *GormRepo) CreateProduct(ctx context.Context, p *models.Product) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(p).Error; err != nil {
			return err
		}
		if p.SKU != "" {
			return nil
		}
		p.SKU = fmt.Sprintf("SKU-%d", p.ID)
		return tx.Model(p).UpdateColumn("sku", p.SKU).Error
	})
}

// SaveProduct writes only the named columns of p.
func (r *GormRepo) SaveProduct(ctx context.Context, p *models.Product, columns ...string) error {
	if len(columns) == 0 {
		return nil
	}
	res := r.DB.WithContext(ctx).Model(p).Select(columns).Updates(p)
	if res.Error != nil {
		return duplicate(res.Error, "product")
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("product %d: %w", p.ID, ErrNotFound)
	}
	return nil
}

func (r *GormRepo) DeleteProduct(ctx context.Context, id uint) error {
	res := r.DB.WithContext(ctx).Delete(&models.Product{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("product %d: %w", id, ErrNotFound)
	}
	return nil
}

// DecrementStock lowers stock by qty only while enough stock remains.
func (r *GormRepo) DecrementStock(ctx context.Context, id uint, qty int) error {
	res := r.DB.WithContext(ctx).Model(&models.Product{}).
		Where("id = ? AND stock >= ?", id, qty).
		UpdateColumn("stock", gorm.Expr("stock - ?", qty))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("product %d: %w", id, ErrStockConflict)
	}
	return nil
}

func (r *GormRepo) UpdateProductRating(ctx context.Context, id uint, rating float64, numReviews int) error {
	return r.DB.WithContext(ctx).Model(&models.Product{}).Where("id = ?", id).
		UpdateColumns(map[string]any{"rating": rating, "num_reviews": numReviews}).Error
}
