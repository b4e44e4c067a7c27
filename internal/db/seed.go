package db

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/Skotchmaster/markethub/internal/hash"
	"github.com/Skotchmaster/markethub/internal/models"
	"github.com/Skotchmaster/markethub/internal/util"
)

type SeedOptions struct {
	Demo          bool
	AdminUsername string
	AdminPassword string
	AdminEmail    string
}

var DefaultSettings = []models.Setting{
	{Key: "REFERRAL_COUNT", Value: "3", Type: "number"},
	{Key: "VOUCHER_AMOUNT", Value: "500", Type: "number"},
	{Key: "VOUCHER_EXPIRY_DAYS", Value: "30", Type: "number"},
	{Key: "PAYMENT_MPESA", Value: "true", Type: "boolean"},
	{Key: "PAYMENT_BANK", Value: "true", Type: "boolean"},
	{Key: "PAYMENT_CARD", Value: "true", Type: "boolean"},
}

// Seed inserts the default settings and, with Demo set, the demo catalog and
// the admin account. Existing rows are left untouched.
func Seed(ctx context.Context, db *gorm.DB, opts SeedOptions) error {
	tx := db.WithContext(ctx)

	for _, s := range DefaultSettings {
		s := s
		if err := tx.Where(models.Setting{Key: s.Key}).FirstOrCreate(&s).Error; err != nil {
			return fmt.Errorf("seed setting %s: %w", s.Key, err)
		}
	}

	if !opts.Demo {
		return nil
	}

	if err := seedCatalog(tx); err != nil {
		return err
	}
	return seedAdmin(tx, opts)
}

func seedCatalog(tx *gorm.DB) error {
	var n int64
	if err := tx.Model(&models.Category{}).Count(&n).Error; err != nil {
		return fmt.Errorf("count categories: %w", err)
	}
	if n > 0 {
		return nil
	}

	categories := []models.Category{
		{Name: "Textbooks", Description: strPtr("Academic textbooks for all courses"), Image: strPtr("https://images.unsplash.com/photo-1519682337058-a94d519337bc")},
		{Name: "Stationery", Description: strPtr("Notebooks, pens, and other supplies"), Image: strPtr("https://images.unsplash.com/photo-1586075010923-2dd4570fb338")},
		{Name: "Gadgets", Description: strPtr("Electronics and tech accessories"), Image: strPtr("https://images.unsplash.com/photo-1601784551446-20c9e07cdbdb")},
		{Name: "Dorm Essentials", Description: strPtr("Everything you need for your dorm"), Image: strPtr("https://images.unsplash.com/photo-1628157588553-5eeea00af15c")},
	}
	if err := tx.Create(&categories).Error; err != nil {
		return fmt.Errorf("seed categories: %w", err)
	}

	products := []models.Product{
		{
			Name:          "Wireless Bluetooth Study Headphones",
			Description:   strPtr("Noise-cancelling headphones perfect for studying in noisy environments."),
			Price:         2800,
			OriginalPrice: floatPtr(3500),
			CategoryID:    &categories[2].ID,
			Stock:         25,
			Images:        []string{"https://images.unsplash.com/photo-1568205631410-e304ca733666"},
			IsFeatured:    true,
			IsOnSale:      true,
			Tags:          []string{"Electronics", "New"},
		},
		{
			Name:          "Engineering Mathematics Textbook",
			Description:   strPtr("Comprehensive textbook covering all aspects of engineering mathematics."),
			Price:         1200,
			OriginalPrice: floatPtr(1800),
			CategoryID:    &categories[0].ID,
			Stock:         15,
			Images:        []string{"https://images.unsplash.com/photo-1544947950-fa07a98d237f"},
			IsFeatured:    true,
			Tags:          []string{"Featured"},
		},
		{
			Name:          "Premium Notebook Set (3 Pack)",
			Description:   strPtr("High-quality notebooks with premium paper for all your note-taking needs."),
			Price:         850,
			OriginalPrice: floatPtr(1050),
			CategoryID:    &categories[1].ID,
			Stock:         50,
			Images:        []string{"https://images.unsplash.com/photo-1618842676088-c4d48a6a7c9d"},
			IsFeatured:    true,
			IsOnSale:      true,
			Tags:          []string{"Featured"},
		},
		{
			Name:          "Dorm Room LED String Lights",
			Description:   strPtr("Decorate your dorm room with these energy-efficient LED string lights."),
			Price:         950,
			OriginalPrice: floatPtr(1200),
			CategoryID:    &categories[3].ID,
			Stock:         30,
			Images:        []string{"https://images.unsplash.com/photo-1587916297999-777c7410de08"},
			IsFeatured:    true,
			Tags:          []string{"Limited Edition", "Home"},
		},
	}
	for i := range products {
		products[i].IsVisible = true
		if err := tx.Create(&products[i]).Error; err != nil {
			return fmt.Errorf("seed product %q: %w", products[i].Name, err)
		}
		sku := fmt.Sprintf("SKU-%d", products[i].ID)
		if err := tx.Model(&products[i]).UpdateColumn("sku", sku).Error; err != nil {
			return fmt.Errorf("seed product sku: %w", err)
		}
	}
	return nil
}

func seedAdmin(tx *gorm.DB, opts SeedOptions) error {
	var existing models.User
	err := tx.Where("LOWER(username) = LOWER(?)", opts.AdminUsername).First(&existing).Error
	if err == nil {
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("lookup admin: %w", err)
	}

	pw, err := hash.HashPassword(opts.AdminPassword)
	if err != nil {
		return fmt.Errorf("hash admin password: %w", err)
	}
	code, err := util.ReferralCode()
	if err != nil {
		return fmt.Errorf("admin referral code: %w", err)
	}

	admin := models.User{
		Username:     opts.AdminUsername,
		Email:        opts.AdminEmail,
		PasswordHash: pw,
		FirstName:    "Admin",
		LastName:     "User",
		IsAdmin:      true,
		ReferralCode: code,
	}
	if err := tx.Create(&admin).Error; err != nil {
		return fmt.Errorf("seed admin: %w", err)
	}
	return nil
}

func strPtr(s string) *string { return &s }

func floatPtr(f float64) *float64 { return &f }
