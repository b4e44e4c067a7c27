package repo

import (
	"context"

	"github.com/Skotchmaster/markethub/internal/models"
)

func (r *GormRepo) ListCartItems(ctx context.Context, userID uint) ([]models.CartItem, error) {
	items := []models.CartItem{}
	if err := r.DB.WithContext(ctx).Preload("Product").Where("user_id = ?", userID).Order("id ASC").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (r *GormRepo) GetCartItem(ctx context.Context, userID, id uint) (*models.CartItem, error) {
	var it models.CartItem
	if err := r.DB.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).First(&it).Error; err != nil {
		return nil, notFound(err, "cart item")
	}
	return &it, nil
}

func (r *GormRepo) GetCartItemByProduct(ctx context.Context, userID, productID uint) (*models.CartItem, error) {
	var it models.CartItem
	if err := r.DB.WithContext(ctx).Where("user_id = ? AND product_id = ?", userID, productID).First(&it).Error; err != nil {
		return nil, notFound(err, "cart item")
	}
	return &it, nil
}

func (r *GormRepo) CreateCartItem(ctx context.Context, it *models.CartItem) error {
	return duplicate(r.DB.WithContext(ctx).Omit("Product").Create(it).Error, "cart item")
}

func (r *GormRepo) UpdateCartItemQuantity(ctx context.Context, id uint, qty int) error {
	return r.DB.WithContext(ctx).Model(&models.CartItem{}).Where("id = ?", id).UpdateColumn("quantity", qty).Error
}

func (r *GormRepo) DeleteCartItem(ctx context.Context, userID, id uint) error {
	res := r.DB.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).Delete(&models.CartItem{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *GormRepo) ClearCart(ctx context.Context, userID uint) error {
	return r.DB.WithContext(ctx).Where("user_id = ?", userID).Delete(&models.CartItem{}).Error
}
