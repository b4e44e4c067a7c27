package repo

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/Skotchmaster/markethub/internal/models"
)

var (
	ErrNotFound      = errors.New("record not found")
	ErrStockConflict = errors.New("stock changed concurrently")
	ErrDuplicate     = errors.New("duplicate key")
)

type UserRepo interface {
	GetUser(ctx context.Context, id uint) (*models.User, error)
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByReferralCode(ctx context.Context, code string) (*models.User, error)
	CreateUser(ctx context.Context, u *models.User) error
	SaveUser(ctx context.Context, u *models.User) error
	ListUsers(ctx context.Context) ([]models.User, error)
	CountReferrals(ctx context.Context, referrerID uint) (int64, error)
}

type CategoryRepo interface {
	GetCategory(ctx context.Context, id uint) (*models.Category, error)
	GetCategoryByName(ctx context.Context, name string) (*models.Category, error)
	CreateCategory(ctx context.Context, c *models.Category) error
	SaveCategory(ctx context.Context, c *models.Category) error
	DeleteCategory(ctx context.Context, id uint) error
	ListCategories(ctx context.Context) ([]models.Category, error)
	CountProductsInCategory(ctx context.Context, id uint) (int64, error)
}

type ProductFilter struct {
	CategoryID *uint
	Search     string
	Featured   bool
	OnSale     bool
	IDs        []uint
}

type ProductRepo interface {
	GetProduct(ctx context.Context, id uint) (*models.Product, error)
	ListProducts(ctx context.Context, f ProductFilter) ([]models.Product, error)
	CreateProduct(ctx context.Context, p *models.Product) error
	SaveProduct(ctx context.Context, p *models.Product, columns ...string) error
	DeleteProduct(ctx context.Context, id uint) error
	DecrementStock(ctx context.Context, id uint, qty int) error
	UpdateProductRating(ctx context.Context, id uint, rating float64, numReviews int) error
}

type OrderRepo interface {
	GetOrder(ctx context.Context, id uint) (*models.Order, error)
	ListOrders(ctx context.Context) ([]models.Order, error)
	ListOrdersForUser(ctx context.Context, userID uint) ([]models.Order, error)
	CreateOrder(ctx context.Context, o *models.Order) error
	CreateOrderItem(ctx context.Context, it *models.OrderItem) error
	UpdateOrderStatus(ctx context.Context, id uint, status string) (*models.Order, error)
}

type CartRepo interface {
	ListCartItems(ctx context.Context, userID uint) ([]models.CartItem, error)
	GetCartItem(ctx context.Context, userID, id uint) (*models.CartItem, error)
	GetCartItemByProduct(ctx context.Context, userID, productID uint) (*models.CartItem, error)
	CreateCartItem(ctx context.Context, it *models.CartItem) error
	UpdateCartItemQuantity(ctx context.Context, id uint, qty int) error
	DeleteCartItem(ctx context.Context, userID, id uint) error
	ClearCart(ctx context.Context, userID uint) error
}

type ReviewRepo interface {
	ListProductReviews(ctx context.Context, productID uint) ([]models.Review, error)
	HasReviewed(ctx context.Context, userID, productID uint) (bool, error)
	CreateReview(ctx context.Context, r *models.Review) error
	ReviewStats(ctx context.Context, productID uint) (avg float64, count int64, err error)
}

type VoucherRepo interface {
	ListVouchersForUser(ctx context.Context, userID uint) ([]models.Voucher, error)
	FindValidVoucher(ctx context.Context, code string) (*models.Voucher, error)
	CreateVoucher(ctx context.Context, v *models.Voucher) error
	MarkVoucherUsed(ctx context.Context, id uint) (bool, error)
}

type SettingRepo interface {
	GetSetting(ctx context.Context, key string) (*models.Setting, error)
	ListSettings(ctx context.Context) ([]models.Setting, error)
	UpdateSettingValue(ctx context.Context, key, value string) (*models.Setting, error)
}

// Store is the full data store. Transaction runs fn against a Store bound to
// a single database transaction; every call inside fn must go through tx.
type Store interface {
	UserRepo
	CategoryRepo
	ProductRepo
	OrderRepo
	CartRepo
	ReviewRepo
	VoucherRepo
	SettingRepo

	Transaction(ctx context.Context, fn func(tx Store) error) error
	Ping(ctx context.Context) error
}

type GormRepo struct{ DB *gorm.DB }

var _ Store = (*GormRepo)(nil)

func New(db *gorm.DB) *GormRepo { return &GormRepo{DB: db} }

func (r *GormRepo) Transaction(ctx context.Context, fn func(tx Store) error) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&GormRepo{DB: tx})
	})
}

func (r *GormRepo) Ping(ctx context.Context) error {
	sqlDB, err := r.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func duplicate(err error, what string) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return fmt.Errorf("%s: %w", what, ErrDuplicate)
	}
	return err
}

func notFound(err error, what string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%s: %w", what, ErrNotFound)
	}
	return err
}
