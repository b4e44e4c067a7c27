package httpserver

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/markethub/internal/db"
	"github.com/Skotchmaster/markethub/internal/hash"
	"github.com/Skotchmaster/markethub/internal/middleware/auth"
	"github.com/Skotchmaster/markethub/internal/models"
	"github.com/Skotchmaster/markethub/internal/mykafka"
	"github.com/Skotchmaster/markethub/internal/notify"
	"github.com/Skotchmaster/markethub/internal/repo"
	"github.com/Skotchmaster/markethub/internal/service"
	"github.com/Skotchmaster/markethub/internal/session"
	"github.com/Skotchmaster/markethub/internal/settings"
)

type testEnv struct {
	E     *echo.Echo
	Store *repo.GormRepo
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
	events := mykafka.NewEmitter(nil)
	referrals := service.NewReferralService(store, reg, notify.Nop{}, events)
	sessions := session.NewManager(&session.GormStore{DB: gdb}, []byte("test-secret"), time.Hour, false)

	gate := auth.New(sessions, store)
	e := echo.New()
	Register(e, &Deps{
		Gate:     gate,
		Store:    store,
		Auth:     &AuthHTTP{Svc: service.NewAuthService(store, referrals, events), Users: service.NewUserService(store), Sessions: sessions},
		Users:    &UserHTTP{Svc: service.NewUserService(store)},
		Catalog:  &CatalogHTTP{Svc: service.NewCatalogService(store, nil)},
		Reviews:  &ReviewHTTP{Svc: service.NewReviewService(store)},
		Cart:     &CartHTTP{Svc: service.NewCartService(store)},
		Orders:   &OrderHTTP{Svc: service.NewOrderService(store, reg, notify.Nop{}, events)},
		Vouchers: &VoucherHTTP{Svc: service.NewVoucherService(store)},
		Settings: &SettingsHTTP{Svc: service.NewSettingsService(reg), Gate: gate},
		Admin:    &AdminHTTP{Export: service.NewExportService(store), Environment: "test"},
	})

	return &testEnv{E: e, Store: store}
}

func (env *testEnv) doJSONRequest(method, path string, body any, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	for _, ck := range cookies {
		if ck != nil {
			req.AddCookie(ck)
		}
	}
	rec := httptest.NewRecorder()
	env.E.ServeHTTP(rec, req)
	return rec
}

func sessionCookie(t *testing.T, rec *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, ck := range rec.Result().Cookies() {
		if ck.Name == session.CookieName {
			return ck
		}
	}
	t.Fatalf("no %s cookie in response", session.CookieName)
	return nil
}

// user creates an account directly in the store and logs it in.
func (env *testEnv) user(t *testing.T, name string, admin bool) (*models.User, *http.Cookie) {
	t.Helper()
	pw, err := hash.HashPassword("pw-" + name)
	require.NoError(t, err)
	u := &models.User{
		Username:     name,
		Email:        name + "@egerton.example.ac.ke",
		PasswordHash: pw,
		FirstName:    "F",
		LastName:     "L",
		IsAdmin:      admin,
		ReferralCode: strings.ToUpper(name) + "-CODE",
	}
	require.NoError(t, env.Store.CreateUser(context.Background(), u))

	rec := env.doJSONRequest(http.MethodPost, "/api/auth/login", map[string]string{"username": name, "password": "pw-" + name})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	return u, sessionCookie(t, rec)
}

func (env *testEnv) product(t *testing.T, name string, price float64, stock int, categoryID *uint) *models.Product {
	t.Helper()
	p := &models.Product{Name: name, Price: price, Stock: stock, IsVisible: true, CategoryID: categoryID}
	require.NoError(t, env.Store.CreateProduct(context.Background(), p))
	return p
}

func messageOf(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Message string `json:"message"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body), rec.Body.String())
	return body.Message
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}
