package repo

import (
	"context"

	"gorm.io/gorm"

	"github.com/Skotchmaster/markethub/internal/models"
)

func withItems(db *gorm.DB) *gorm.DB {
	return db.Preload("Items", func(tx *gorm.DB) *gorm.DB {
		return tx.Order("id ASC")
	}).Preload("Items.Product")
}

func (r *GormRepo) GetOrder(ctx context.Context, id uint) (*models.Order, error) {
	var o models.Order
	if err := withItems(r.DB.WithContext(ctx)).First(&o, id).Error; err != nil {
		return nil, notFound(err, "order")
	}
	return &o, nil
}

func (r *GormRepo) ListOrders(ctx context.Context) ([]models.Order, error) {
	orders := []models.Order{}
	if err := withItems(r.DB.WithContext(ctx)).Order("id ASC").Find(&orders).Error; err != nil {
		return nil, err
	}
	return orders, nil
}

func (r *GormRepo) ListOrdersForUser(ctx context.Context, userID uint) ([]models.Order, error) {
	orders := []models.Order{}
	if err := withItems(r.DB.WithContext(ctx)).Where("user_id = ?", userID).Order("id ASC").Find(&orders).Error; err != nil {
		return nil, err
	}
	return orders, nil
}

func (r *GormRepo) CreateOrder(ctx context.Context, o *models.Order) error {
	return r.DB.WithContext(ctx).Omit("Items").Create(o).Error
}

func (r *GormRepo) CreateOrderItem(ctx context.Context, it *models.OrderItem) error {
	return r.DB.WithContext(ctx).Omit("Product").Create(it).Error
}

func (r *GormRepo) UpdateOrderStatus(ctx context.Context, id uint, status string) (*models.Order, error) {
	res := r.DB.WithContext(ctx).Model(&models.Order{}).Where("id = ?", id).UpdateColumn("status", status)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, notFound(gorm.ErrRecordNotFound, "order")
	}
	return r.GetOrder(ctx, id)
}
