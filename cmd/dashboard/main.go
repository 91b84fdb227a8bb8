// Command dashboard runs the admin console as a standalone process. It
// pulls authoritative snapshots over the REST API, patches them live from
// the websocket event stream, and logs the reconciled view state.
package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/maisonluxe/storefront/internal/config"
	"github.com/maisonluxe/storefront/internal/liveview"
	"github.com/maisonluxe/storefront/internal/logging"
)

func main() {
	if err := run(); err != nil && !errors.Is(err, context.Canceled) {
		logging.Error().Err(err).Msg("dashboard exited with error")
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

	source := liveview.NewHTTPSource(cfg.Dashboard.ServerURL)
	stream := liveview.NewWSStream(wsURL(cfg.Dashboard.ServerURL))

	opts := liveview.Options{
		ReconcileInterval: cfg.LiveView.ReconcileInterval,
		FetchTimeout:      cfg.LiveView.FetchTimeout,
	}

	kpis := liveview.NewKPIView()
	feed := liveview.NewFeedView(cfg.LiveView.RecentOrders)
	analytics := liveview.NewAnalyticsView(cfg.LiveView.WindowDays, cfg.Location())
	rollups := liveview.NewRollupView()

	aggregators := []*liveview.Aggregator{
		liveview.NewAggregator(kpis, source, opts),
		liveview.NewAggregator(feed, source, opts),
		liveview.NewAggregator(analytics, source, opts),
		liveview.NewAggregator(rollups, source, opts),
	}

	manager := liveview.NewConnectionManager(stream)
	for _, a := range aggregators {
		manager.Attach(a)
		go func() {
			if err := a.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				logging.Error().Err(err).Str("view", a.View().Name()).Msg("aggregator stopped with error")
			}
		}()
	}

	go func() {
		if err := manager.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("connection manager stopped with error")
		}
	}()

	report(ctx, kpis, feed, analytics, rollups)
	return ctx.Err()
}

// report logs the current view state every few seconds until ctx ends.
func report(ctx context.Context, kpis *liveview.KPIView, feed *liveview.FeedView,
	analytics *liveview.AnalyticsView, rollups *liveview.RollupView) {
	ticker := time.NewTicker(5 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s := kpis.Snapshot()
			logging.Info().
				Float64("revenue", s.Revenue).
				Int("orders", s.Orders).
				Int("customers", s.Customers).
				Float64("avg_order_value", s.AvgOrderValue).
				Msg("dashboard kpis")

			for _, o := range feed.Orders() {
				logging.Info().Str("order_id", o.ID).Float64("total", o.TotalPrice).
					Time("created_at", o.CreatedAt).Msg("recent order")
			}
			for _, b := range analytics.Buckets() {
				logging.Info().Str("day", b.Day.Format("2006-01-02")).
					Float64("revenue", b.Revenue).Int("orders", b.Orders).Msg("analytics bucket")
			}
			for _, r := range rollups.Rollups() {
				logging.Info().Str("customer", r.Name).Float64("spend", r.Spend).
					Int("orders", r.Orders).Str("tier", r.Tier).Msg("customer rollup")
			}
		}
	}
}

// wsURL converts the configured http(s) base URL into the websocket
// endpoint address.
func wsURL(base string) string {
	u := strings.TrimRight(base, "/")
	switch {
	case strings.HasPrefix(u, "https://"):
		u = "wss://" + strings.TrimPrefix(u, "https://")
	case strings.HasPrefix(u, "http://"):
		u = "ws://" + strings.TrimPrefix(u, "http://")
	}
	return u + "/ws"
}
