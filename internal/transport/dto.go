package transport

import (
	"time"

	"github.com/Skotchmaster/markethub/internal/models"
)

type RegisterRequest struct {
	Username       string  `json:"username"       validate:"required,max=64"`
	Password       string  `json:"password"       validate:"required"`
	Email          string  `json:"email"          validate:"required,email"`
	FirstName      string  `json:"firstName"      validate:"required"`
	LastName       string  `json:"lastName"       validate:"required"`
	ProfilePicture *string `json:"profilePicture"`
	ReferralCode   string  `json:"referralCode"`
}

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type UpdateUserRequest struct {
	Username       *string `json:"username"       validate:"omitempty,min=1,max=64"`
	Email          *string `json:"email"          validate:"omitempty,email"`
	Password       *string `json:"password"       validate:"omitempty,min=1"`
	FirstName      *string `json:"firstName"      validate:"omitempty,min=1"`
	LastName       *string `json:"lastName"       validate:"omitempty,min=1"`
	ProfilePicture *string `json:"profilePicture"`
	IsAdmin        *bool   `json:"isAdmin"`
}

type CreateCategoryRequest struct {
	Name        string  `json:"name"        validate:"required"`
	Description *string `json:"description"`
	Image       *string `json:"image"`
}

type UpdateCategoryRequest struct {
	Name        *string `json:"name"        validate:"omitempty,min=1"`
	Description *string `json:"description"`
	Image       *string `json:"image"`
}

type CreateProductRequest struct {
	Name            string     `json:"name"            validate:"required"`
	Description     *string    `json:"description"`
	Price           *float64   `json:"price"           validate:"required,gte=0"`
	OriginalPrice   *float64   `json:"originalPrice"   validate:"omitempty,gte=0"`
	CategoryID      *uint      `json:"categoryId"`
	Stock           *int       `json:"stock"           validate:"required,gte=0"`
	Images          []string   `json:"images"`
	IsFeatured      bool       `json:"isFeatured"`
	IsOnSale        bool       `json:"isOnSale"`
	SKU             string     `json:"sku"`
	Tags            []string   `json:"tags"`
	IsVisible       *bool      `json:"isVisible"`
	ScheduledLaunch *time.Time `json:"scheduledLaunch"`
}

type PatchProductRequest struct {
	Name            *string    `json:"name"            validate:"omitempty,min=1"`
	Description     *string    `json:"description"`
	Price           *float64   `json:"price"           validate:"omitempty,gte=0"`
	OriginalPrice   *float64   `json:"originalPrice"   validate:"omitempty,gte=0"`
	CategoryID      *uint      `json:"categoryId"`
	Stock           *int       `json:"stock"           validate:"omitempty,gte=0"`
	Images          *[]string  `json:"images"`
	IsFeatured      *bool      `json:"isFeatured"`
	IsOnSale        *bool      `json:"isOnSale"`
	SKU             *string    `json:"sku"`
	Tags            *[]string  `json:"tags"`
	IsVisible       *bool      `json:"isVisible"`
	ScheduledLaunch *time.Time `json:"scheduledLaunch"`
}

type AddCartItemRequest struct {
	ProductID uint `json:"productId" validate:"required"`
	Quantity  int  `json:"quantity"  validate:"omitempty,gte=1"`
}

type UpdateCartItemRequest struct {
	Quantity int `json:"quantity" validate:"required,gte=1"`
}

type OrderItemRequest struct {
	ProductID uint `json:"productId" validate:"required"`
	Quantity  int  `json:"quantity"  validate:"required,gte=1"`
}

type CreateOrderRequest struct {
	Items           []OrderItemRequest      `json:"items"           validate:"dive"`
	ShippingAddress *models.ShippingAddress `json:"shippingAddress" validate:"required"`
	PaymentMethod   string                  `json:"paymentMethod"   validate:"required"`
	VoucherCode     string                  `json:"voucherCode"`
}

type UpdateOrderStatusRequest struct {
	Status string `json:"status"`
}

type CreateReviewRequest struct {
	Rating  int     `json:"rating"  validate:"required,min=1,max=5"`
	Comment *string `json:"comment"`
}

type ValidateVoucherRequest struct {
	Code string `json:"code"`
}

type UpdateSettingRequest struct {
	Value string `json:"value"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

// PlacedOrderResponse is the order as stored plus whether the submitted
// voucher code took effect.
type PlacedOrderResponse struct {
	*models.Order
	VoucherApplied bool `json:"voucherApplied"`
}

type StatusResponse struct {
	Status      string `json:"status"`
	Timestamp   string `json:"timestamp"`
	Environment string `json:"environment"`
}
