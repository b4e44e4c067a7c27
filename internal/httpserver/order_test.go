package httpserver

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/markethub/internal/models"
)

func orderBody(productID uint, qty int) map[string]any {
	return map[string]any{
		"items": []map[string]any{{"productId": productID, "quantity": qty}},
		"shippingAddress": map[string]any{
			"firstName": "Amina", "lastName": "Otieno", "address": "Hostel B",
			"city": "Njoro", "postalCode": "20115", "country": "Kenya",
			"phone": "+254700000000", "email": "amina@example.ac.ke",
		},
		"paymentMethod": "mpesa",
	}
}

func TestCartToOrder(t *testing.T) {
	env := newTestEnv(t)
	_, ck := env.user(t, "amina", false)
	p := env.product(t, "Desk fan", 100, 5, nil)

	rec := env.doJSONRequest(http.MethodPost, "/api/cart", map[string]any{"productId": p.ID, "quantity": 2}, ck)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = env.doJSONRequest(http.MethodPost, "/api/cart", map[string]any{"productId": p.ID, "quantity": 9}, ck)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Not enough stock", messageOf(t, rec))

	rec = env.doJSONRequest(http.MethodPost, "/api/orders", orderBody(p.ID, 2), ck)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	placed := decode[struct {
		models.Order
		VoucherApplied bool `json:"voucherApplied"`
	}](t, rec)
	assert.Equal(t, 200.0, placed.Total)
	assert.Equal(t, models.OrderStatusPending, placed.Status)
	assert.False(t, placed.VoucherApplied)
	require.Len(t, placed.Items, 1)

	got, err := env.Store.GetProduct(context.Background(), p.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, got.Stock)

	rec = env.doJSONRequest(http.MethodGet, "/api/cart", nil, ck)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, decode[[]models.CartItem](t, rec))

	rec = env.doJSONRequest(http.MethodPost, "/api/orders", orderBody(p.ID, 10), ck)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Not enough stock for product Desk fan", messageOf(t, rec))
}

func TestOrders_StatusAndVisibility(t *testing.T) {
	env := newTestEnv(t)
	_, ownerCk := env.user(t, "amina", false)
	_, otherCk := env.user(t, "brian", false)
	_, adminCk := env.user(t, "root", true)
	p := env.product(t, "Kettle", 1800, 2, nil)

	rec := env.doJSONRequest(http.MethodPost, "/api/orders", orderBody(p.ID, 1), ownerCk)
	require.Equal(t, http.StatusCreated, rec.Code)
	orderPath := "/api/orders/" + itoa(decode[models.Order](t, rec).ID)

	rec = env.doJSONRequest(http.MethodGet, orderPath, nil, otherCk)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = env.doJSONRequest(http.MethodGet, "/api/orders", nil, otherCk)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, decode[[]models.Order](t, rec))

	rec = env.doJSONRequest(http.MethodPut, orderPath+"/status", map[string]string{"status": "shipped"}, ownerCk)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = env.doJSONRequest(http.MethodPut, orderPath+"/status", map[string]string{"status": "lost"}, adminCk)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.doJSONRequest(http.MethodPut, orderPath+"/status", map[string]string{"status": "shipped"}, adminCk)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, models.OrderStatusShipped, decode[models.Order](t, rec).Status)

	rec = env.doJSONRequest(http.MethodGet, orderPath, nil, ownerCk)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, models.OrderStatusShipped, decode[models.Order](t, rec).Status)
}

func TestOrders_DisabledPaymentMethod(t *testing.T) {
	env := newTestEnv(t)
	_, ck := env.user(t, "amina", false)
	_, adminCk := env.user(t, "root", true)
	p := env.product(t, "Kettle", 1800, 2, nil)

	rec := env.doJSONRequest(http.MethodPut, "/api/settings/PAYMENT_MPESA", map[string]string{"value": "false"}, adminCk)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = env.doJSONRequest(http.MethodPost, "/api/orders", orderBody(p.ID, 1), ck)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Payment method not available", messageOf(t, rec))
}

func TestVouchers_Validate(t *testing.T) {
	env := newTestEnv(t)
	u, ck := env.user(t, "amina", false)
	require.NoError(t, env.Store.CreateVoucher(context.Background(), &models.Voucher{UserID: u.ID, Code: "REF-ABC123", Discount: 500}))

	rec := env.doJSONRequest(http.MethodPost, "/api/vouchers/validate", map[string]string{"code": "REF-ABC123"}, ck)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 500.0, decode[models.Voucher](t, rec).Discount)

	rec = env.doJSONRequest(http.MethodPost, "/api/vouchers/validate", map[string]string{"code": "NOPE"}, ck)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Invalid or expired voucher", messageOf(t, rec))

	rec = env.doJSONRequest(http.MethodGet, "/api/vouchers", nil, ck)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]models.Voucher](t, rec), 1)
}
