package repo

import (
	"context"
	"fmt"
	"time"

	"github.com/Skotchmaster/markethub/internal/models"
)

func (r *GormRepo) ListVouchersForUser(ctx context.Context, userID uint) ([]models.Voucher, error) {
	items := []models.Voucher{}
	if err := r.DB.WithContext(ctx).Where("user_id = ?", userID).Order("id ASC").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// FindValidVoucher returns the voucher with code only if it is unused and
// not expired.
func (r *GormRepo) FindValidVoucher(ctx context.Context, code string) (*models.Voucher, error) {
	var v models.Voucher
	if err := r.DB.WithContext(ctx).Where("code = ? AND is_used = ?", code, false).First(&v).Error; err != nil {
		return nil, notFound(err, "voucher")
	}
	if !v.Valid(time.Now()) {
		return nil, fmt.Errorf("voucher %s expired: %w", code, ErrNotFound)
	}
	return &v, nil
}

func (r *GormRepo) CreateVoucher(ctx context.Context, v *models.Voucher) error {
	return r.DB.WithContext(ctx).Create(v).Error
}

// MarkVoucherUsed flips is_used once; false means someone else got there
// first.
func (r *GormRepo) MarkVoucherUsed(ctx context.Context, id uint) (bool, error) {
	res := r.DB.WithContext(ctx).Model(&models.Voucher{}).
		Where("id = ? AND is_used = ?", id, false).
		UpdateColumn("is_used", true)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}
