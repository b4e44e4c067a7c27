package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/Skotchmaster/markethub/internal/config"
	"github.com/Skotchmaster/markethub/internal/db"
	"github.com/Skotchmaster/markethub/internal/es"
	"github.com/Skotchmaster/markethub/internal/httpserver"
	"github.com/Skotchmaster/markethub/internal/logging"
	"github.com/Skotchmaster/markethub/internal/metrics"
	"github.com/Skotchmaster/markethub/internal/middleware/auth"
	"github.com/Skotchmaster/markethub/internal/middleware/csrf"
	loggingmw "github.com/Skotchmaster/markethub/internal/middleware/logging"
	"github.com/Skotchmaster/markethub/internal/mykafka"
	"github.com/Skotchmaster/markethub/internal/notify"
	"github.com/Skotchmaster/markethub/internal/repo"
	"github.com/Skotchmaster/markethub/internal/service"
	"github.com/Skotchmaster/markethub/internal/session"
	"github.com/Skotchmaster/markethub/internal/settings"
	"github.com/Skotchmaster/markethub/internal/websocket"
)

const sessionPurgeInterval = time.Hour

func main() {
	cfg := config.Load()
	logger := logging.New(cfg.LogLevel).With("service", "markethub", "env", cfg.AppEnv)
	slog.SetDefault(logger)

	if err := run(cfg, logger); err != nil {
		logger.Error("fatal", "error", err)
		os.Exit(1)
	}
}

func run(cfg config.Config, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	initCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	gdb, err := db.Open(initCtx, cfg.DatabaseURL)
	if err == nil {
		err = db.Seed(initCtx, gdb, db.SeedOptions{
			Demo:          cfg.SeedDemo,
			AdminUsername: cfg.AdminUsername,
			AdminPassword: cfg.AdminPassword,
			AdminEmail:    cfg.AdminEmail,
		})
	}
	cancel()
	if err != nil {
		return fmt.Errorf("db init: %w", err)
	}
	defer func() {
		if sqlDB, err := gdb.DB(); err == nil {
			if err := sqlDB.Close(); err != nil {
				logger.Error("db close error", "error", err)
			}
		}
	}()

	store := repo.New(gdb)
	reg := settings.New(store)

	sessions, closeSessions, err := sessionStore(ctx, cfg, logger, &session.GormStore{DB: gdb})
	if err != nil {
		return err
	}
	defer closeSessions()
	mgr := session.NewManager(sessions, cfg.SessionSecret, cfg.SessionTTL, cfg.IsProduction())

	hub := websocket.NewHub(logger)
	go func() {
		if err := hub.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			logger.Error("ws hub stopped", "error", err)
		}
	}()
	if err := metrics.RegisterConnectionGauge(prometheus.DefaultRegisterer, hub.TotalClients); err != nil {
		return fmt.Errorf("register ws gauge: %w", err)
	}

	var pub mykafka.Publisher
	if len(cfg.KafkaBrokers) > 0 {
		prod := mykafka.NewProducer(cfg.KafkaBrokers)
		defer func() {
			if err := prod.Close(); err != nil {
				logger.Error("kafka close error", "error", err)
			}
		}()
		pub = prod
		logger.Info("kafka producer ready", "brokers", cfg.KafkaBrokers)
	}
	events := mykafka.NewEmitter(pub)
	notifier := notify.Fanout{hub, events}

	catalog := service.NewCatalogService(store, nil)
	if cfg.ESURL != "" {
		client, err := es.NewClient(es.Config{URL: cfg.ESURL, Username: cfg.ESUser, Password: cfg.ESPassword})
		if err != nil {
			return err
		}
		index := es.NewProductIndex(client, cfg.ESIndex)
		if err := index.EnsureIndex(ctx); err != nil {
			return err
		}
		catalog.Index = index
	}

	referrals := service.NewReferralService(store, reg, notifier, events)
	users := service.NewUserService(store)

	e := echo.New()
	e.HideBanner = true
	e.Pre(middleware.RemoveTrailingSlash())
	e.Use(middleware.Recover(), middleware.RequestID())
	e.Use(metrics.Middleware)
	e.Use(loggingmw.RequestLogger(logger, "/health/live", "/health/ready", "/metrics"))
	e.Use(httpserver.CORS(cfg.CORSOrigins))
	if cfg.CSRFProtect {
		e.Use(csrf.Middleware(csrf.Config{
			Secure:    cfg.IsProduction(),
			SkipPaths: []string{"/ws", "/health/live", "/health/ready", "/metrics"},
		}))
	}

	gate := auth.New(mgr, store)
	httpserver.Register(e, &httpserver.Deps{
		Gate:     gate,
		Store:    store,
		WS:       hub.Handler,
		Auth:     &httpserver.AuthHTTP{Svc: service.NewAuthService(store, referrals, events), Users: users, Sessions: mgr},
		Users:    &httpserver.UserHTTP{Svc: users},
		Catalog:  &httpserver.CatalogHTTP{Svc: catalog},
		Reviews:  &httpserver.ReviewHTTP{Svc: service.NewReviewService(store)},
		Cart:     &httpserver.CartHTTP{Svc: service.NewCartService(store)},
		Orders:   &httpserver.OrderHTTP{Svc: service.NewOrderService(store, reg, notifier, events)},
		Vouchers: &httpserver.VoucherHTTP{Svc: service.NewVoucherService(store)},
		Settings: &httpserver.SettingsHTTP{Svc: service.NewSettingsService(reg), Gate: gate},
		Admin:    &httpserver.AdminHTTP{Export: service.NewExportService(store), Environment: cfg.AppEnv},
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:           e,
		ReadHeaderTimeout: 3 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("http server starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	}

	logger.Info("shutting down")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", "error", err)
	}
	logger.Info("shutdown complete")
	return nil
}

// sessionStore picks Redis when REDIS_URL is set and the database otherwise.
// Database sessions get a periodic purge of expired rows.
func sessionStore(ctx context.Context, cfg config.Config, logger *slog.Logger, fallback *session.GormStore) (session.Store, func(), error) {
	if cfg.RedisURL != "" {
		rdb, err := session.ConnectRedis(ctx, cfg.RedisURL, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			return nil, nil, err
		}
		logger.Info("session store", "backend", "redis")
		return session.NewRedisStore(rdb), func() { _ = rdb.Close() }, nil
	}

	go func() {
		t := time.NewTicker(sessionPurgeInterval)
		defer t.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case now := <-t.C:
				n, err := fallback.PurgeExpired(ctx, now)
				if err != nil {
					logger.Warn("session purge error", "error", err)
					continue
				}
				if n > 0 {
					logger.Info("sessions purged", "count", n)
				}
			}
		}
	}()
	logger.Info("session store", "backend", "database")
	return fallback, func() {}, nil
}
