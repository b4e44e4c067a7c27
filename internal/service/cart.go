package service

import (
	"context"
	"errors"

	"github.com/Skotchmaster/markethub/internal/models"
	"github.com/Skotchmaster/markethub/internal/repo"
	"github.com/Skotchmaster/markethub/internal/transport"
)

type CartService struct {
	Store repo.Store
}

func NewCartService(store repo.Store) *CartService {
	return &CartService{Store: store}
}

func (s *CartService) List(ctx context.Context, userID uint) ([]models.CartItem, error) {
	return s.Store.ListCartItems(ctx, userID)
}

// Add puts a product in the cart, merging into the existing row for the same
// product. The merged quantity may not exceed current stock.
func (s *CartService) Add(ctx context.Context, userID uint, req transport.AddCartItemRequest) (*models.CartItem, error) {
	qty := req.Quantity
	if qty == 0 {
		qty = 1
	}
	if req.ProductID == 0 || qty < 0 {
		return nil, fail(ErrValidation, "Invalid data")
	}

	var out *models.CartItem
	err := s.Store.Transaction(ctx, func(tx repo.Store) error {
		p, err := tx.GetProduct(ctx, req.ProductID)
		if err != nil {
			if errors.Is(err, repo.ErrNotFound) {
				return fail(ErrProductNotFound, "Product not found")
			}
			return err
		}

		existing, err := tx.GetCartItemByProduct(ctx, userID, p.ID)
		switch {
		case err == nil:
			merged := existing.Quantity + qty
			if p.Stock < merged {
				return fail(ErrInsufficientStock, "Not enough stock")
			}
			if err := tx.UpdateCartItemQuantity(ctx, existing.ID, merged); err != nil {
				return err
			}
			existing.Quantity = merged
			out = existing
		case errors.Is(err, repo.ErrNotFound):
			if p.Stock < qty {
				return fail(ErrInsufficientStock, "Not enough stock")
			}
			item := &models.CartItem{UserID: userID, ProductID: p.ID, Quantity: qty}
			if err := tx.CreateCartItem(ctx, item); err != nil {
				if errors.Is(err, repo.ErrDuplicate) {
					return fail(ErrConflict, "Product is already in the cart")
				}
				return err
			}
			out = item
		default:
			return err
		}
		out.Product = p
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *CartService) Update(ctx context.Context, userID, id uint, qty int) (*models.CartItem, error) {
	if qty < 1 {
		return nil, fail(ErrValidation, "Invalid data")
	}

	var out *models.CartItem
	err := s.Store.Transaction(ctx, func(tx repo.Store) error {
		item, err := tx.GetCartItem(ctx, userID, id)
		if err != nil {
			if errors.Is(err, repo.ErrNotFound) {
				return fail(ErrNotFound, "Cart item not found")
			}
			return err
		}
		p, err := tx.GetProduct(ctx, item.ProductID)
		if err != nil {
			if errors.Is(err, repo.ErrNotFound) {
				return fail(ErrProductNotFound, "Product not found")
			}
			return err
		}
		if p.Stock < qty {
			return fail(ErrInsufficientStock, "Not enough stock")
		}
		if err := tx.UpdateCartItemQuantity(ctx, item.ID, qty); err != nil {
			return err
		}
		item.Quantity = qty
		item.Product = p
		out = item
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *CartService) Remove(ctx context.Context, userID, id uint) error {
	if err := s.Store.DeleteCartItem(ctx, userID, id); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return fail(ErrNotFound, "Cart item not found")
		}
		return err
	}
	return nil
}

func (s *CartService) Clear(ctx context.Context, userID uint) error {
	return s.Store.ClearCart(ctx, userID)
}
