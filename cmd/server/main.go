// Command server runs the storefront API: the order write path, the
// catalog and settings surfaces, the websocket event push, and the
// Postgres-backed repositories behind them.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/maisonluxe/storefront/internal/cart"
	"github.com/maisonluxe/storefront/internal/config"
	deliveryhttp "github.com/maisonluxe/storefront/internal/delivery/http"
	"github.com/maisonluxe/storefront/internal/eventbus"
	"github.com/maisonluxe/storefront/internal/logging"
	"github.com/maisonluxe/storefront/internal/messaging"
	"github.com/maisonluxe/storefront/internal/messaging/kafka"
	"github.com/maisonluxe/storefront/internal/repository/postgres"
	"github.com/maisonluxe/storefront/internal/service"
	"github.com/maisonluxe/storefront/internal/websocket"
)

func main() {
	if err := run(); err != nil && !errors.Is(err, context.Canceled) {
		logging.Error().Err(err).Msg("server exited with error")
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logging.Init(cfg.Logging)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := postgres.Open(cfg.Database.DSN)
	if err != nil {
		return err
	}
	defer db.Close()

	products := postgres.NewProductRepo(db)
	orders := postgres.NewOrderRepo(db)
	customers := postgres.NewCustomerRepo(db)
	settings := postgres.NewSettingsRepo(db)

	if cfg.Database.SeedProducts {
		if err := products.Seed(ctx, service.SeedCatalog()); err != nil {
			return err
		}
	}

	bus := eventbus.New()
	defer bus.Close()

	publisher := messaging.Fanout{bus}
	if cfg.Kafka.Enabled {
		kp, err := kafka.NewPublisher(cfg.Kafka.Brokers, cfg.Kafka.Topic)
		if err != nil {
			return err
		}
		defer kp.Close()
		publisher = append(publisher, kp)
		logging.Info().Strs("brokers", cfg.Kafka.Brokers).Str("topic", cfg.Kafka.Topic).
			Msg("kafka publishing enabled")
	}

	orderSvc := service.NewOrderService(orders, publisher)
	storeSvc := service.NewStoreService(products, customers, settings, publisher)

	hub := websocket.NewHub()
	go func() {
		if err := hub.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("websocket hub stopped with error")
		}
	}()
	go func() {
		if err := websocket.Bridge(ctx, bus, hub); err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("event bridge stopped with error")
		}
	}()

	cartDB, err := cart.OpenBadger(cfg.Cart.Path)
	if err != nil {
		return err
	}
	defer cartDB.Close()

	sessions := deliveryhttp.NewSessions()
	handler := deliveryhttp.NewHandler(orderSvc, storeSvc, hub)
	carts := deliveryhttp.NewCartHandler(cart.NewBadgerStorage(cartDB), orderSvc, sessions)
	sessionHandler := deliveryhttp.NewSessionHandler(customers, sessions)
	router := deliveryhttp.NewRouter(cfg.Server, handler, carts, sessionHandler)
	server := deliveryhttp.NewServer(cfg.Server, router)

	errCh := make(chan error, 1)
	go func() {
		logging.Info().Str("addr", server.Addr).Msg("storefront server listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return err
	}

	logging.Info().Msg("storefront server stopped")
	return nil
}
