package service

import (
	"context"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/markethub/internal/db"
	"github.com/Skotchmaster/markethub/internal/models"
	"github.com/Skotchmaster/markethub/internal/mykafka"
	"github.com/Skotchmaster/markethub/internal/notify"
	"github.com/Skotchmaster/markethub/internal/repo"
	"github.com/Skotchmaster/markethub/internal/settings"
	"github.com/Skotchmaster/markethub/internal/transport"
)

type published struct {
	Topic string
	Key   string
	Event map[string]any
}

type fakePublisher struct {
	mu     sync.Mutex
	events []published
}

func (f *fakePublisher) PublishEvent(_ context.Context, topic, key string, event any) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	m, _ := event.(map[string]any)
	f.events = append(f.events, published{Topic: topic, Key: key, Event: m})
	return nil
}

func (f *fakePublisher) types(topic string) []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []string
	for _, e := range f.events {
		if e.Topic == topic {
			out = append(out, e.Event["type"].(string))
		}
	}
	return out
}

type testEnv struct {
	store     *repo.GormRepo
	settings  *settings.Registry
	notes     *notify.Recorder
	pub       *fakePublisher
	referrals *ReferralService
	auth      *AuthService
	users     *UserService
	orders    *OrderService
	cart      *CartService
	reviews   *ReviewService
	vouchers  *VoucherService
	catalog   *CatalogService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	ctx := context.Background()

	gdb, err := db.OpenMemory(ctx, strings.NewReplacer("/", "_", " ", "_").Replace(t.Name()))
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := gdb.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	require.NoError(t, db.Seed(ctx, gdb, db.SeedOptions{}))

	store := repo.New(gdb)
	reg := settings.New(store)
	notes := &notify.Recorder{}
	pub := &fakePublisher{}
	events := mykafka.NewEmitter(pub)
	referrals := NewReferralService(store, reg, notes, events)

	return &testEnv{
		store:     store,
		settings:  reg,
		notes:     notes,
		pub:       pub,
		referrals: referrals,
		auth:      NewAuthService(store, referrals, events),
		users:     NewUserService(store),
		orders:    NewOrderService(store, reg, notes, events),
		cart:      NewCartService(store),
		reviews:   NewReviewService(store),
		vouchers:  NewVoucherService(store),
		catalog:   NewCatalogService(store, nil),
	}
}

func (env *testEnv) register(t *testing.T, username, referralCode string) *models.User {
	t.Helper()
	u, err := env.auth.Register(context.Background(), transport.RegisterRequest{
		Username:     username,
		Password:     "secret-" + username,
		Email:        username + "@students.example.ac.ke",
		FirstName:    strings.ToUpper(username[:1]) + username[1:],
		LastName:     "Tester",
		ReferralCode: referralCode,
	})
	require.NoError(t, err)
	return u
}

func (env *testEnv) product(t *testing.T, name string, price float64, stock int) *models.Product {
	t.Helper()
	p := &models.Product{Name: name, Price: price, Stock: stock, IsVisible: true}
	require.NoError(t, env.store.CreateProduct(context.Background(), p))
	return p
}

func (env *testEnv) stockOf(t *testing.T, id uint) int {
	t.Helper()
	p, err := env.store.GetProduct(context.Background(), id)
	require.NoError(t, err)
	return p.Stock
}

func shipping() *models.ShippingAddress {
	return &models.ShippingAddress{
		FirstName:  "Amina",
		LastName:   "Otieno",
		Address:    "Hostel B, Room 12",
		City:       "Njoro",
		PostalCode: "20115",
		Country:    "Kenya",
		Phone:      "+254700000000",
		Email:      "amina@students.example.ac.ke",
	}
}

func orderFor(method, voucher string, items ...transport.OrderItemRequest) transport.CreateOrderRequest {
	return transport.CreateOrderRequest{
		Items:           items,
		ShippingAddress: shipping(),
		PaymentMethod:   method,
		VoucherCode:     voucher,
	}
}
