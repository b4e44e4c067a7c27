package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/Skotchmaster/markethub/internal/logging"
	"github.com/Skotchmaster/markethub/internal/metrics"
	"github.com/Skotchmaster/markethub/internal/models"
	"github.com/Skotchmaster/markethub/internal/mykafka"
	"github.com/Skotchmaster/markethub/internal/notify"
	"github.com/Skotchmaster/markethub/internal/repo"
	"github.com/Skotchmaster/markethub/internal/settings"
	"github.com/Skotchmaster/markethub/internal/transport"
)

type OrderService struct {
	Store    repo.Store
	Settings *settings.Registry
	Notifier notify.Notifier
	Events   *mykafka.Emitter
}

func NewOrderService(store repo.Store, reg *settings.Registry, n notify.Notifier, ev *mykafka.Emitter) *OrderService {
	if n == nil {
		n = notify.Nop{}
	}
	return &OrderService{Store: store, Settings: reg, Notifier: n, Events: ev}
}

type PlacedOrder struct {
	Order          *models.Order
	VoucherApplied bool
}

// PlaceOrder validates the items against live stock, applies an optional
// voucher, writes the order with its items, decrements stock and clears the
// user's cart, all in one transaction. An unknown, used or expired voucher
// code is ignored and reported through VoucherApplied.
func (s *OrderService) PlaceOrder(ctx context.Context, userID uint, req transport.CreateOrderRequest) (*PlacedOrder, error) {
	l := logging.FromContext(ctx).With("svc", "order.place", "user_id", userID)

	if len(req.Items) == 0 {
		return nil, fail(ErrValidation, "Order must contain items")
	}
	for _, it := range req.Items {
		if it.ProductID == 0 || it.Quantity <= 0 {
			return nil, fail(ErrValidation, "Invalid data")
		}
	}
	if req.ShippingAddress == nil {
		return nil, fail(ErrValidation, "Invalid data")
	}

	enabled, err := s.Settings.PaymentEnabled(ctx, req.PaymentMethod)
	if err != nil {
		return nil, fmt.Errorf("payment setting: %w", err)
	}
	if !enabled {
		return nil, fail(ErrInvalidPaymentMethod, "Payment method not available")
	}

	placed := &PlacedOrder{}
	err = s.Store.Transaction(ctx, func(tx repo.Store) error {
		var total float64
		for _, it := range req.Items {
			p, err := tx.GetProduct(ctx, it.ProductID)
			if err != nil {
				if errors.Is(err, repo.ErrNotFound) {
					return fail(ErrProductNotFound, "Product with ID %d not found", it.ProductID)
				}
				return err
			}
			if p.Stock < it.Quantity {
				return fail(ErrInsufficientStock, "Not enough stock for product %s", p.Name)
			}
			total += p.Price * float64(it.Quantity)
		}

		if code := strings.TrimSpace(req.VoucherCode); code != "" {
			applied, discounted, err := applyVoucher(ctx, tx, code, total)
			if err != nil {
				return err
			}
			if !applied {
				l.Info("voucher_ignored", "voucher_code", code)
			}
			placed.VoucherApplied = applied
			total = discounted
		}

		order := &models.Order{
			UserID:          userID,
			Status:          models.OrderStatusPending,
			Total:           total,
			ShippingAddress: *req.ShippingAddress,
			PaymentMethod:   req.PaymentMethod,
			PaymentStatus:   models.PaymentStatusPending,
		}
		if err := tx.CreateOrder(ctx, order); err != nil {
			return fmt.Errorf("create order: %w", err)
		}

		for _, it := range req.Items {
			p, err := tx.GetProduct(ctx, it.ProductID)
			if err != nil {
				return err
			}
			item := &models.OrderItem{
				OrderID:   order.ID,
				ProductID: it.ProductID,
				Quantity:  it.Quantity,
				Price:     p.Price,
			}
			if err := tx.CreateOrderItem(ctx, item); err != nil {
				return fmt.Errorf("create order item: %w", err)
			}
			if err := tx.DecrementStock(ctx, it.ProductID, it.Quantity); err != nil {
				if errors.Is(err, repo.ErrStockConflict) {
					return fail(ErrInsufficientStock, "Not enough stock for product %s", p.Name)
				}
				return err
			}
		}

		if err := tx.ClearCart(ctx, userID); err != nil {
			return fmt.Errorf("clear cart: %w", err)
		}

		got, err := tx.GetOrder(ctx, order.ID)
		if err != nil {
			return err
		}
		placed.Order = got
		return nil
	})
	if err != nil {
		return nil, err
	}

	order := placed.Order
	l.Info("order_placed", "order_id", order.ID, "total", order.Total, "voucher_applied", placed.VoucherApplied)
	metrics.OrdersPlaced.Inc()
	s.Notifier.Notify(ctx, userID, notify.OrderMessage(order.ID, "Order placed successfully"))
	s.Events.Emit(ctx, mykafka.TopicOrderEvents, userID, map[string]any{
		"type":           "order_placed",
		"orderID":        order.ID,
		"userID":         userID,
		"total":          order.Total,
		"items":          len(order.Items),
		"paymentMethod":  order.PaymentMethod,
		"voucherApplied": placed.VoucherApplied,
	})
	return placed, nil
}

// applyVoucher consumes the voucher with code if it is still valid and
// returns the discounted total, floored at zero.
func applyVoucher(ctx context.Context, tx repo.Store, code string, total float64) (bool, float64, error) {
	v, err := tx.FindValidVoucher(ctx, code)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return false, total, nil
		}
		return false, total, err
	}
	used, err := tx.MarkVoucherUsed(ctx, v.ID)
	if err != nil {
		return false, total, fmt.Errorf("use voucher: %w", err)
	}
	if !used {
		return false, total, nil
	}
	return true, math.Max(0, total-v.Discount), nil
}

// List returns every order for an admin and the user's own orders
// otherwise.
func (s *OrderService) List(ctx context.Context, userID uint) ([]models.Order, error) {
	user, err := s.user(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user.IsAdmin {
		return s.Store.ListOrders(ctx)
	}
	return s.Store.ListOrdersForUser(ctx, userID)
}

func (s *OrderService) Get(ctx context.Context, userID, id uint) (*models.Order, error) {
	order, err := s.Store.GetOrder(ctx, id)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, fail(ErrNotFound, "Order not found")
		}
		return nil, err
	}
	user, err := s.user(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !user.IsAdmin && order.UserID != user.ID {
		return nil, fail(ErrForbidden, "Forbidden")
	}
	return order, nil
}

func (s *OrderService) UpdateStatus(ctx context.Context, id uint, status string) (*models.Order, error) {
	status = strings.ToLower(strings.TrimSpace(status))
	if status == "" {
		return nil, fail(ErrValidation, "Status is required")
	}
	if !models.ValidOrderStatus(status) {
		return nil, fail(ErrValidation, "Invalid status %q", status)
	}

	order, err := s.Store.UpdateOrderStatus(ctx, id, status)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, fail(ErrNotFound, "Order not found")
		}
		return nil, err
	}

	s.Notifier.Notify(ctx, order.UserID, notify.OrderMessage(order.ID, "Order status updated to "+status))
	s.Events.Emit(ctx, mykafka.TopicOrderEvents, order.UserID, map[string]any{
		"type":    "order_status_updated",
		"orderID": order.ID,
		"userID":  order.UserID,
		"status":  status,
	})
	return order, nil
}

func (s *OrderService) user(ctx context.Context, id uint) (*models.User, error) {
	u, err := s.Store.GetUser(ctx, id)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, fail(ErrNotFound, "User not found")
		}
		return nil, err
	}
	return u, nil
}
