package repo

import (
	"context"

	"github.com/Skotchmaster/markethub/internal/models"
)

func (r *GormRepo) GetUser(ctx context.Context, id uint) (*models.User, error) {
	var u models.User
	if err := r.DB.WithContext(ctx).First(&u, id).Error; err != nil {
		return nil, notFound(err, "user")
	}
	return &u, nil
}

func (r *GormRepo) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	var u models.User
	if err := r.DB.WithContext(ctx).Where("LOWER(username) = LOWER(?)", username).First(&u).Error; err != nil {
		return nil, notFound(err, "user")
	}
	return &u, nil
}

func (r *GormRepo) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var u models.User
	if err := r.DB.WithContext(ctx).Where("LOWER(email) = LOWER(?)", email).First(&u).Error; err != nil {
		return nil, notFound(err, "user")
	}
	return &u, nil
}

func (r *GormRepo) GetUserByReferralCode(ctx context.Context, code string) (*models.User, error) {
	var u models.User
	if err := r.DB.WithContext(ctx).Where("referral_code = ?", code).First(&u).Error; err != nil {
		return nil, notFound(err, "user")
	}
	return &u, nil
}

func (r *GormRepo) CreateUser(ctx context.Context, u *models.User) error {
	return duplicate(r.DB.WithContext(ctx).Create(u).Error, "user")
}

// SaveUser writes every mutable column. referral_code is never part of the
// update.
func (r *GormRepo) SaveUser(ctx context.Context, u *models.User) error {
	err := r.DB.WithContext(ctx).Model(u).
		Select("username", "email", "password_hash", "first_name", "last_name", "is_admin", "profile_picture").
		Updates(u).Error
	return duplicate(err, "user")
}

func (r *GormRepo) ListUsers(ctx context.Context) ([]models.User, error) {
	users := []models.User{}
	if err := r.DB.WithContext(ctx).Order("id ASC").Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

func (r *GormRepo) CountReferrals(ctx context.Context, referrerID uint) (int64, error) {
	var n int64
	if err := r.DB.WithContext(ctx).Model(&models.User{}).Where("referred_by = ?", referrerID).Count(&n).Error; err != nil {
		return 0, err
	}
	return n, nil
}
