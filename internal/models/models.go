package models

import (
	"time"
)

const (
	OrderStatusPending    = "pending"
	OrderStatusProcessing = "processing"
	OrderStatusShipped    = "shipped"
	OrderStatusCompleted  = "completed"
	OrderStatusCancelled  = "cancelled"

	PaymentStatusPending = "pending"
)

var OrderStatuses = []string{
	OrderStatusPending,
	OrderStatusProcessing,
	OrderStatusShipped,
	OrderStatusCompleted,
	OrderStatusCancelled,
}

func ValidOrderStatus(s string) bool {
	for _, st := range OrderStatuses {
		if st == s {
			return true
		}
	}
	return false
}

type User struct {
	ID             uint      `gorm:"primaryKey;autoIncrement"  json:"id"`
	Username       string    `gorm:"uniqueIndex;not null"      json:"username"`
	Email          string    `gorm:"uniqueIndex;not null"      json:"email"`
	PasswordHash   string    `gorm:"not null"                  json:"-"`
	FirstName      string    `gorm:"not null"                  json:"firstName"`
	LastName       string    `gorm:"not null"                  json:"lastName"`
	IsAdmin        bool      `gorm:"default:false"             json:"isAdmin"`
	ReferralCode   string    `gorm:"uniqueIndex;not null"      json:"referralCode"`
	ReferredBy     *uint     `gorm:"index"                     json:"referredBy"`
	ProfilePicture *string   `                                 json:"profilePicture"`
	CreatedAt      time.Time `                                 json:"createdAt"`
}

type Category struct {
	ID          uint    `gorm:"primaryKey;autoIncrement" json:"id"`
	Name        string  `gorm:"uniqueIndex;not null"     json:"name"`
	Description *string `                                json:"description"`
	Image       *string `                                json:"image"`
}

type Product struct {
	ID              uint       `gorm:"primaryKey;autoIncrement"      json:"id"`
	Name            string     `gorm:"not null"                      json:"name"`
	Description     *string    `                                     json:"description"`
	Price           float64    `gorm:"not null"                      json:"price"`
	OriginalPrice   *float64   `                                     json:"originalPrice"`
	CategoryID      *uint      `gorm:"index"                         json:"categoryId"`
	Stock           int        `gorm:"not null;check:stock >= 0"     json:"stock"`
	Images          []string   `gorm:"serializer:json"               json:"images"`
	Rating          float64    `gorm:"default:0"                     json:"rating"`
	NumReviews      int        `gorm:"default:0"                     json:"numReviews"`
	IsFeatured      bool       `gorm:"default:false"                 json:"isFeatured"`
	IsOnSale        bool       `gorm:"default:false"                 json:"isOnSale"`
	SKU             string     `gorm:"column:sku"                    json:"sku"`
	Tags            []string   `gorm:"serializer:json"               json:"tags"`
	IsVisible       bool       `gorm:"not null"                      json:"isVisible"`
	ScheduledLaunch *time.Time `                                     json:"scheduledLaunch"`
	CreatedAt       time.Time  `                                     json:"createdAt"`
}

type ShippingAddress struct {
	FirstName  string `json:"firstName"`
	LastName   string `json:"lastName"`
	Address    string `json:"address"`
	City       string `json:"city"`
	PostalCode string `json:"postalCode"`
	Country    string `json:"country"`
	Phone      string `json:"phone"`
	Email      string `json:"email"`
}

type Order struct {
	ID              uint            `gorm:"primaryKey;autoIncrement"  json:"id"`
	UserID          uint            `gorm:"index;not null"            json:"userId"`
	Status          string          `gorm:"not null;default:pending"  json:"status"`
	Total           float64         `gorm:"not null"                  json:"total"`
	ShippingAddress ShippingAddress `gorm:"serializer:json;not null"  json:"shippingAddress"`
	PaymentMethod   string          `gorm:"not null"                  json:"paymentMethod"`
	PaymentStatus   string          `gorm:"default:pending"           json:"paymentStatus"`
	CreatedAt       time.Time       `                                 json:"createdAt"`
	Items           []OrderItem     `gorm:"foreignKey:OrderID"        json:"items,omitempty"`
}

type OrderItem struct {
	ID        uint     `gorm:"primaryKey;autoIncrement"  json:"id"`
	OrderID   uint     `gorm:"index;not null"            json:"orderId"`
	ProductID uint     `gorm:"index;not null"            json:"productId"`
	Quantity  int      `gorm:"not null;check:quantity>0" json:"quantity"`
	Price     float64  `gorm:"not null"                  json:"price"`
	Product   *Product `gorm:"foreignKey:ProductID"      json:"product,omitempty"`
}

type CartItem struct {
	ID        uint     `gorm:"primaryKey;autoIncrement"                          json:"id"`
	UserID    uint     `gorm:"not null;uniqueIndex:idx_cart_user_product"        json:"userId"`
	ProductID uint     `gorm:"not null;uniqueIndex:idx_cart_user_product"        json:"productId"`
	Quantity  int      `gorm:"default:1;check:quantity>0"                        json:"quantity"`
	Product   *Product `gorm:"foreignKey:ProductID"                              json:"product,omitempty"`
}

type ReviewAuthor struct {
	ID        uint   `json:"id"`
	Username  string `json:"username"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

type Review struct {
	ID        uint          `gorm:"primaryKey;autoIncrement"                     json:"id"`
	UserID    uint          `gorm:"not null;uniqueIndex:idx_review_user_product" json:"userId"`
	ProductID uint          `gorm:"not null;uniqueIndex:idx_review_user_product" json:"productId"`
	Rating    int           `gorm:"not null;check:rating BETWEEN 1 AND 5"        json:"rating"`
	Comment   *string       `                                                    json:"comment"`
	CreatedAt time.Time     `                                                    json:"createdAt"`
	User      *ReviewAuthor `gorm:"-"                                            json:"user"`
}

type Voucher struct {
	ID        uint       `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID    uint       `gorm:"index;not null"           json:"userId"`
	Code      string     `gorm:"uniqueIndex;not null"     json:"code"`
	Discount  float64    `gorm:"not null"                 json:"discount"`
	IsUsed    bool       `gorm:"default:false"            json:"isUsed"`
	ExpiresAt *time.Time `                                json:"expiresAt"`
	CreatedAt time.Time  `                                json:"createdAt"`
}

// Valid reports whether the voucher can still be redeemed at now.
func (v Voucher) Valid(now time.Time) bool {
	return !v.IsUsed && (v.ExpiresAt == nil || v.ExpiresAt.After(now))
}

type Setting struct {
	ID    uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	Key   string `gorm:"uniqueIndex;not null"     json:"key"`
	Value string `gorm:"not null"                 json:"value"`
	Type  string `gorm:"not null"                 json:"type"`
}

type Session struct {
	ID        string    `gorm:"primaryKey"          json:"id"`
	UserID    uint      `gorm:"index;not null"      json:"userId"`
	ExpiresAt time.Time `gorm:"index;not null"      json:"expiresAt"`
	CreatedAt time.Time `                           json:"createdAt"`
}

func All() []any {
	return []any{
		&User{},
		&Category{},
		&Product{},
		&Order{},
		&OrderItem{},
		&CartItem{},
		&Review{},
		&Voucher{},
		&Setting{},
		&Session{},
	}
}
