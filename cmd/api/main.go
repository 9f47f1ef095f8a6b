package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"storefront/internal/config"
	"storefront/internal/httpserver"
	"storefront/internal/i18n"
	"storefront/internal/logging"
	"storefront/internal/repository/snapshot"
	"storefront/internal/seed"
	"storefront/internal/service/assistant"
	cartsvc "storefront/internal/service/cart"
	catalogsvc "storefront/internal/service/catalog"
	checkoutsvc "storefront/internal/service/checkout"
	couponsvc "storefront/internal/service/coupon"
	customersvc "storefront/internal/service/customer"
	ordersvc "storefront/internal/service/order"
	sessionsvc "storefront/internal/service/session"
	settingssvc "storefront/internal/service/settings"
	wishlistsvc "storefront/internal/service/wishlist"
	"storefront/internal/storage"
)

func main() {
	// A missing .env is fine; the environment may already be set.
	_ = godotenv.Load()
	cfg := config.FromEnv()

	logger, err := logging.New(cfg.LogLevel, cfg.LogEncoding)
	if err != nil {
		panic(err)
	}
	defer func() { _ = logger.Sync() }()

	if err := run(cfg, logger); err != nil {
		logger.Fatal("api stopped", zap.Error(err))
	}
}

func run(cfg config.Config, logger *zap.Logger) error {
	ctx := context.Background()

	repo, closeStorage, err := storage.Open(ctx, cfg, logging.Named(logger, "storage"))
	if err != nil {
		return err
	}
	defer closeStorage()

	defaults, err := seed.Defaults()
	if err != nil {
		return err
	}
	store := snapshot.NewAdapter(repo, logging.Named(logger, "snapshot"))
	bundle, err := i18n.Load()
	if err != nil {
		return err
	}

	catalog := catalogsvc.New(ctx, store, catalogsvc.Defaults{Products: defaults.Products, Categories: defaults.Categories}, logging.Named(logger, "catalog"))
	coupons := couponsvc.New(ctx, store, defaults.Coupons, logging.Named(logger, "coupon"))
	orders := ordersvc.New(ctx, store, logging.Named(logger, "order"), ordersvc.WithStatusGuard(cfg.OrderStatusGuard))
	customers, err := customersvc.New(ctx, store, defaults.AdminSeed(), logging.Named(logger, "customer"))
	if err != nil {
		return err
	}
	settings := settingssvc.New(ctx, store, defaults.Store, logging.Named(logger, "settings"))
	carts := cartsvc.New(store, logging.Named(logger, "cart"))
	checkout := checkoutsvc.New(carts, coupons, orders, catalog, customers, checkoutsvc.Config{
		Delay:       cfg.CheckoutDelay,
		StockPolicy: cfg.StockPolicy,
		AllowGuest:  cfg.AllowGuestOrders,
	}, logging.Named(logger, "checkout"))

	var backend assistant.Backend
	if cfg.GeminiAPIKey != "" {
		gemini, err := assistant.NewGemini(ctx, cfg.GeminiAPIKey, cfg.GeminiModel, func() string {
			return assistant.Instruction(settings.Get().Name, assistant.Catalogue(catalog.Products()))
		})
		if err != nil {
			logger.Warn("assistant disabled", zap.Error(err))
		} else {
			backend = gemini
		}
	} else {
		logger.Info("GEMINI_API_KEY not set; assistant answers with the fallback message")
	}

	wishlists := wishlistsvc.New(store, logging.Named(logger, "wishlist"))
	chat := assistant.New(backend, bundle, cfg.AssistantTimeout, logging.Named(logger, "assistant"))
	sessions := sessionsvc.New(store, cfg.SessionTTL, logging.Named(logger, "session"), sessionsvc.WithExpiryHooks(
		carts.Forget,
		wishlists.Forget,
		func(_ context.Context, id string) { chat.Close(id) },
	))
	sweepCtx, stopSweep := context.WithCancel(ctx)
	defer stopSweep()
	go sessions.Run(sweepCtx, cfg.SessionSweep)

	deps := httpserver.Deps{
		Sessions:    sessions,
		Catalog:     catalog,
		Cart:        carts,
		Wishlist:    wishlists,
		Checkout:    checkout,
		Customers:   customers,
		Orders:      orders,
		Coupons:     coupons,
		Settings:    settings,
		Assistant:   chat,
		Messages:    bundle,
		CORSOrigins: cfg.CORSOrigins,
	}
	if p, ok := repo.(httpserver.Pinger); ok {
		deps.Ready = p
	}

	srv, err := httpserver.New(cfg.HTTPAddr, logging.Named(logger, "http"), deps)
	if err != nil {
		return err
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Info("starting http server", zap.String("storage", cfg.StorageBackend))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	stopCh := make(chan os.Signal, 1)
	signal.Notify(stopCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-stopCh:
		logger.Info("shutting down", zap.String("signal", sig.String()))
	case err := <-serverErr:
		return err
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	logger.Info("server stopped")
	return nil
}
