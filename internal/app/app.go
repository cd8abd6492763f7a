// Package app provides the top-level application lifecycle: wiring the
// detection pipeline, the execution path, and the API server, then running
// them until shutdown.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/nicodiferd/polymarket-kalshi-btc-arbitrage-bot/internal/config"
	"github.com/nicodiferd/polymarket-kalshi-btc-arbitrage-bot/internal/poller"
	"github.com/nicodiferd/polymarket-kalshi-btc-arbitrage-bot/internal/server"
	"github.com/nicodiferd/polymarket-kalshi-btc-arbitrage-bot/internal/server/handler"
	"github.com/nicodiferd/polymarket-kalshi-btc-arbitrage-bot/internal/server/ws"
)

// App is the root application object. It owns the configuration, logger,
// and the cleanup functions run on shutdown.
type App struct {
	cfg     *config.Config
	logger  *slog.Logger
	closers []func()
}

func New(cfg *config.Config, logger *slog.Logger) *App {
	return &App{
		cfg:    cfg,
		logger: logger.With(slog.String("component", "app")),
	}
}

// Run wires all dependencies, starts the poller and the API server, and
// blocks until the context is cancelled or a component fails.
func (a *App) Run(ctx context.Context) error {
	a.logger.InfoContext(ctx, "starting application",
		slog.Bool("paper_trading", a.cfg.Trading.PaperTrading),
		slog.Bool("auto_trade", a.cfg.Trading.AutoTrade),
		slog.String("log_level", a.cfg.LogLevel),
	)

	deps, cleanup, err := Wire(ctx, a.cfg, a.logger)
	if err != nil {
		return fmt.Errorf("app: wire dependencies: %w", err)
	}
	a.closers = append(a.closers, cleanup)

	hub := ws.NewHub(a.logger)
	deps.Poller.OnCycle(func(cycle *poller.CycleResult) {
		hub.Broadcast("cycle", cycle)
	})

	srv := server.NewServer(
		server.Config{
			Port:        a.cfg.Server.Port,
			CORSOrigins: a.cfg.Server.CORSOrigins,
		},
		server.Handlers{
			Health: handler.NewHealthHandler(deps.Trading, deps.Poller),
			Arbitrage: handler.NewArbitrageHandler(deps.Poller, deps.Evaluator, deps.Trading,
				a.cfg.Engine.DefaultQuantity, a.logger),
			Trading: handler.NewTradingHandler(deps.Trading, deps.Guard, deps.Poller,
				deps.Dispatcher, deps.Evaluator, a.cfg.Engine.DefaultQuantity, a.logger),
		},
		hub,
		a.logger,
	)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return deps.Poller.Run(gctx)
	})

	g.Go(func() error {
		return srv.Start()
	})

	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

// Close tears down all resources in reverse registration order. Safe to
// call multiple times.
func (a *App) Close() {
	a.logger.Info("shutting down application")
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}
