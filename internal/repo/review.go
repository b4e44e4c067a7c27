package repo

import (
	"context"

	"github.com/Skotchmaster/markethub/internal/models"
)

func (r *GormRepo) ListProductReviews(ctx context.Context, productID uint) ([]models.Review, error) {
	items := []models.Review{}
	if err := r.DB.WithContext(ctx).Where("product_id = ?", productID).Order("id ASC").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (r *GormRepo) HasReviewed(ctx context.Context, userID, productID uint) (bool, error) {
	var n int64
	if err := r.DB.WithContext(ctx).Model(&models.Review{}).
		Where("user_id = ? AND product_id = ?", userID, productID).Count(&n).Error; err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *GormRepo) CreateReview(ctx context.Context, rv *models.Review) error {
	return duplicate(r.DB.WithContext(ctx).Create(rv).Error, "review")
}

func (r *GormRepo) ReviewStats(ctx context.Context, productID uint) (float64, int64, error) {
	var row struct {
		Avg   float64
		Count int64
	}
	if err := r.DB.WithContext(ctx).Model(&models.Review{}).
		Select("COALESCE(AVG(rating), 0) AS avg, COUNT(*) AS count").
		Where("product_id = ?", productID).
		Scan(&row).Error; err != nil {
		return 0, 0, err
	}
	return row.Avg, row.Count, nil
}
