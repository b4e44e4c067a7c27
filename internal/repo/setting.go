package repo

import (
	"context"

	"gorm.io/gorm"

	"github.com/Skotchmaster/markethub/internal/models"
)

func (r *GormRepo) GetSetting(ctx context.Context, key string) (*models.Setting, error) {
	if key == "" {
		return nil, notFound(gorm.ErrRecordNotFound, "setting")
	}
	var s models.Setting
	if err := r.DB.WithContext(ctx).Where(&models.Setting{Key: key}).First(&s).Error; err != nil {
		return nil, notFound(err, "setting")
	}
	return &s, nil
}

func (r *GormRepo) ListSettings(ctx context.Context) ([]models.Setting, error) {
	items := []models.Setting{}
	if err := r.DB.WithContext(ctx).Order("id ASC").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (r *GormRepo) UpdateSettingValue(ctx context.Context, key, value string) (*models.Setting, error) {
	if key == "" {
		return nil, notFound(gorm.ErrRecordNotFound, "setting")
	}
	res := r.DB.WithContext(ctx).Model(&models.Setting{}).Where(&models.Setting{Key: key}).UpdateColumn("value", value)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, notFound(gorm.ErrRecordNotFound, "setting")
	}
	return r.GetSetting(ctx, key)
}
