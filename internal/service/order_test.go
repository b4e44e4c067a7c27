package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/markethub/internal/models"
	"github.com/Skotchmaster/markethub/internal/mykafka"
	"github.com/Skotchmaster/markethub/internal/notify"
	"github.com/Skotchmaster/markethub/internal/transport"
)

func TestPlaceOrder_HappyPath(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user := env.register(t, "amina", "")
	a := env.product(t, "Scientific Calculator", 1000, 5)

	_, err := env.cart.Add(ctx, user.ID, transport.AddCartItemRequest{ProductID: a.ID, Quantity: 2})
	require.NoError(t, err)

	placed, err := env.orders.PlaceOrder(ctx, user.ID, orderFor("mpesa", "", transport.OrderItemRequest{ProductID: a.ID, Quantity: 2}))
	require.NoError(t, err)

	order := placed.Order
	assert.Equal(t, 2000.0, order.Total)
	assert.Equal(t, models.OrderStatusPending, order.Status)
	assert.Equal(t, models.PaymentStatusPending, order.PaymentStatus)
	assert.Equal(t, "Njoro", order.ShippingAddress.City)
	assert.False(t, placed.VoucherApplied)

	require.Len(t, order.Items, 1)
	assert.Equal(t, 1000.0, order.Items[0].Price)
	assert.Equal(t, 2, order.Items[0].Quantity)
	require.NotNil(t, order.Items[0].Product)
	assert.Equal(t, "Scientific Calculator", order.Items[0].Product.Name)

	assert.Equal(t, 3, env.stockOf(t, a.ID))

	cart, err := env.cart.List(ctx, user.ID)
	require.NoError(t, err)
	assert.Empty(t, cart)

	sent := env.notes.Sent()
	require.Len(t, sent, 1)
	assert.Equal(t, user.ID, sent[0].UserID)
	assert.Equal(t, notify.OrderMessage(order.ID, "Order placed successfully"), sent[0].Message)
	assert.Equal(t, []string{"order_placed"}, env.pub.types(mykafka.TopicOrderEvents))
}

func TestPlaceOrder_InsufficientStockLeavesNoTrace(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user := env.register(t, "brian", "")
	a := env.product(t, "Lab Coat", 1000, 1)

	_, err := env.orders.PlaceOrder(ctx, user.ID, orderFor("mpesa", "", transport.OrderItemRequest{ProductID: a.ID, Quantity: 2}))
	require.ErrorIs(t, err, ErrInsufficientStock)
	assert.Equal(t, "Not enough stock for product Lab Coat", Message(err))

	orders, err := env.store.ListOrders(ctx)
	require.NoError(t, err)
	assert.Empty(t, orders)
	assert.Equal(t, 1, env.stockOf(t, a.ID))
	assert.Empty(t, env.notes.Sent())
}

func TestPlaceOrder_LaterItemFailureRollsBackEarlierOnes(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user := env.register(t, "chege", "")
	a := env.product(t, "Notebook", 50, 10)
	b := env.product(t, "Stapler", 300, 1)

	// The same product twice passes the per-item check but not the decrement.
	_, err := env.orders.PlaceOrder(ctx, user.ID, orderFor("mpesa", "",
		transport.OrderItemRequest{ProductID: a.ID, Quantity: 3},
		transport.OrderItemRequest{ProductID: b.ID, Quantity: 1},
		transport.OrderItemRequest{ProductID: b.ID, Quantity: 1},
	))
	require.ErrorIs(t, err, ErrInsufficientStock)

	assert.Equal(t, 10, env.stockOf(t, a.ID))
	assert.Equal(t, 1, env.stockOf(t, b.ID))
	orders, err := env.store.ListOrders(ctx)
	require.NoError(t, err)
	assert.Empty(t, orders)
}

func TestPlaceOrder_DisabledPaymentMethod(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user := env.register(t, "dina", "")
	a := env.product(t, "Backpack", 1500, 4)

	_, err := env.settings.Update(ctx, "PAYMENT_BANK", "false")
	require.NoError(t, err)
	_, err = env.cart.Add(ctx, user.ID, transport.AddCartItemRequest{ProductID: a.ID, Quantity: 1})
	require.NoError(t, err)

	_, err = env.orders.PlaceOrder(ctx, user.ID, orderFor("bank", "", transport.OrderItemRequest{ProductID: a.ID, Quantity: 1}))
	require.ErrorIs(t, err, ErrInvalidPaymentMethod)

	assert.Equal(t, 4, env.stockOf(t, a.ID))
	cart, err := env.cart.List(ctx, user.ID)
	require.NoError(t, err)
	assert.Len(t, cart, 1)

	_, err = env.orders.PlaceOrder(ctx, user.ID, orderFor("paypal", "", transport.OrderItemRequest{ProductID: a.ID, Quantity: 1}))
	assert.ErrorIs(t, err, ErrInvalidPaymentMethod)
}

func TestPlaceOrder_Validation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user := env.register(t, "esther", "")

	_, err := env.orders.PlaceOrder(ctx, user.ID, orderFor("mpesa", ""))
	require.ErrorIs(t, err, ErrValidation)
	assert.Equal(t, "Order must contain items", Message(err))

	_, err = env.orders.PlaceOrder(ctx, user.ID, orderFor("mpesa", "", transport.OrderItemRequest{ProductID: 999, Quantity: 1}))
	require.ErrorIs(t, err, ErrProductNotFound)
	assert.Equal(t, "Product with ID 999 not found", Message(err))
}

func TestPlaceOrder_VoucherSingleUse(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user := env.register(t, "faith", "")
	a := env.product(t, "Desk Lamp", 1000, 10)

	exp := time.Now().Add(24 * time.Hour)
	v := &models.Voucher{UserID: user.ID, Code: "REF-ABC123", Discount: 300, ExpiresAt: &exp}
	require.NoError(t, env.store.CreateVoucher(ctx, v))

	item := transport.OrderItemRequest{ProductID: a.ID, Quantity: 1}

	first, err := env.orders.PlaceOrder(ctx, user.ID, orderFor("card", "REF-ABC123", item))
	require.NoError(t, err)
	assert.True(t, first.VoucherApplied)
	assert.Equal(t, 700.0, first.Order.Total)

	second, err := env.orders.PlaceOrder(ctx, user.ID, orderFor("card", "REF-ABC123", item))
	require.NoError(t, err)
	assert.False(t, second.VoucherApplied)
	assert.Equal(t, 1000.0, second.Order.Total)

	_, err = env.vouchers.Validate(ctx, "REF-ABC123")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestPlaceOrder_VoucherFloorsAtZero(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user := env.register(t, "gabriel", "")
	a := env.product(t, "Pencil", 20, 10)
	require.NoError(t, env.store.CreateVoucher(ctx, &models.Voucher{UserID: user.ID, Code: "REF-FFFFFF", Discount: 500}))

	placed, err := env.orders.PlaceOrder(ctx, user.ID, orderFor("mpesa", "REF-FFFFFF", transport.OrderItemRequest{ProductID: a.ID, Quantity: 2}))
	require.NoError(t, err)
	assert.True(t, placed.VoucherApplied)
	assert.Equal(t, 0.0, placed.Order.Total)
}

func TestPlaceOrder_ExpiredVoucherIgnored(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user := env.register(t, "hassan", "")
	a := env.product(t, "Ruler", 100, 10)
	past := time.Now().Add(-time.Hour)
	require.NoError(t, env.store.CreateVoucher(ctx, &models.Voucher{UserID: user.ID, Code: "REF-000001", Discount: 50, ExpiresAt: &past}))

	placed, err := env.orders.PlaceOrder(ctx, user.ID, orderFor("mpesa", "REF-000001", transport.OrderItemRequest{ProductID: a.ID, Quantity: 1}))
	require.NoError(t, err)
	assert.False(t, placed.VoucherApplied)
	assert.Equal(t, 100.0, placed.Order.Total)
}

func TestPlaceOrder_PriceIsSnapshot(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user := env.register(t, "irene", "")
	a := env.product(t, "Textbook", 2500, 3)

	placed, err := env.orders.PlaceOrder(ctx, user.ID, orderFor("mpesa", "", transport.OrderItemRequest{ProductID: a.ID, Quantity: 1}))
	require.NoError(t, err)

	newPrice := 3000.0
	_, err = env.catalog.PatchProduct(ctx, a.ID, transport.PatchProductRequest{Price: &newPrice})
	require.NoError(t, err)

	order, err := env.orders.Get(ctx, user.ID, placed.Order.ID)
	require.NoError(t, err)
	assert.Equal(t, 2500.0, order.Items[0].Price)
	assert.Equal(t, 2500.0, order.Total)
}

func TestPlaceOrder_ConcurrentOrdersDoNotOversell(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user := env.register(t, "james", "")
	a := env.product(t, "Graduation Gown", 4000, 3)

	const buyers = 6
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		succeeded int
	)
	for i := 0; i < buyers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := env.orders.PlaceOrder(ctx, user.ID, orderFor("mpesa", "", transport.OrderItemRequest{ProductID: a.ID, Quantity: 1}))
			if err == nil {
				mu.Lock()
				succeeded++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 3, succeeded)
	assert.Equal(t, 0, env.stockOf(t, a.ID))
}

func TestOrders_ListGetAndStatus(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	owner := env.register(t, "kevin", "")
	other := env.register(t, "lucy", "")
	admin := env.register(t, "mentor", "")
	admin.IsAdmin = true
	require.NoError(t, env.store.SaveUser(ctx, admin))
	a := env.product(t, "Flash Drive", 800, 5)

	placed, err := env.orders.PlaceOrder(ctx, owner.ID, orderFor("mpesa", "", transport.OrderItemRequest{ProductID: a.ID, Quantity: 1}))
	require.NoError(t, err)
	id := placed.Order.ID

	_, err = env.orders.Get(ctx, other.ID, id)
	assert.ErrorIs(t, err, ErrForbidden)
	_, err = env.orders.Get(ctx, admin.ID, id)
	assert.NoError(t, err)
	_, err = env.orders.Get(ctx, owner.ID, id+10)
	assert.ErrorIs(t, err, ErrNotFound)

	mine, err := env.orders.List(ctx, other.ID)
	require.NoError(t, err)
	assert.Empty(t, mine)
	all, err := env.orders.List(ctx, admin.ID)
	require.NoError(t, err)
	assert.Len(t, all, 1)

	_, err = env.orders.UpdateStatus(ctx, id, "teleported")
	assert.ErrorIs(t, err, ErrValidation)
	_, err = env.orders.UpdateStatus(ctx, id+10, models.OrderStatusShipped)
	assert.ErrorIs(t, err, ErrNotFound)

	updated, err := env.orders.UpdateStatus(ctx, id, models.OrderStatusShipped)
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusShipped, updated.Status)

	sent := env.notes.Sent()
	require.Len(t, sent, 2)
	assert.Equal(t, owner.ID, sent[1].UserID)
	assert.Equal(t, "Order status updated to shipped", sent[1].Message.Message)
	assert.Equal(t, []string{"order_placed", "order_status_updated"}, env.pub.types(mykafka.TopicOrderEvents))
}
