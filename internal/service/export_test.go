package service

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tealeg/xlsx"

	"github.com/Skotchmaster/markethub/internal/transport"
)

func TestExport_SnapshotAndWorkbook(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	u := env.register(t, "olivia", "")
	p := env.product(t, "Hoodie", 2200, 4)
	_, err := env.orders.PlaceOrder(ctx, u.ID, orderFor("mpesa", "", transport.OrderItemRequest{ProductID: p.ID, Quantity: 1}))
	require.NoError(t, err)

	svc := NewExportService(env.store)
	svc.Now = func() time.Time { return time.Date(2026, 3, 9, 8, 0, 0, 0, time.UTC) }

	exp, err := svc.Snapshot(ctx)
	require.NoError(t, err)
	assert.Equal(t, ExportVersion, exp.Version)
	assert.Len(t, exp.Products, 1)
	assert.Len(t, exp.Orders, 1)
	assert.Len(t, exp.Users, 1)
	assert.Len(t, exp.Settings, 6)
	assert.Equal(t, "markethub-data-2026-03-09.json", exp.Filename("json"))

	var buf bytes.Buffer
	require.NoError(t, WriteXLSX(&buf, exp))

	book, err := xlsx.OpenBinary(buf.Bytes())
	require.NoError(t, err)
	require.Len(t, book.Sheets, 5)

	products := book.Sheet["Products"]
	require.NotNil(t, products)
	require.Len(t, products.Rows, 2)
	assert.Equal(t, "Hoodie", products.Rows[1].Cells[1].String())

	users := book.Sheet["Users"]
	require.NotNil(t, users)
	assert.Equal(t, "olivia", users.Rows[1].Cells[1].String())
}

func TestSettingsService(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	svc := NewSettingsService(env.settings)

	public, err := svc.List(ctx, false)
	require.NoError(t, err)
	keys := map[string]bool{}
	for _, s := range public {
		keys[s.Key] = true
	}
	assert.False(t, keys["VOUCHER_EXPIRY_DAYS"])
	assert.True(t, keys["PAYMENT_MPESA"])
	assert.True(t, keys["REFERRAL_COUNT"])

	all, err := svc.List(ctx, true)
	require.NoError(t, err)
	assert.Len(t, all, 6)

	_, err = svc.Update(ctx, "VOUCHER_AMOUNT", "")
	assert.ErrorIs(t, err, ErrValidation)
	_, err = svc.Update(ctx, "NOPE", "1")
	assert.ErrorIs(t, err, ErrNotFound)

	st, err := svc.Update(ctx, "VOUCHER_AMOUNT", "750")
	require.NoError(t, err)
	assert.Equal(t, "750", st.Value)
}
