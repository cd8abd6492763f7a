package app

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/nicodiferd/polymarket-kalshi-btc-arbitrage-bot/internal/aggregator"
	"github.com/nicodiferd/polymarket-kalshi-btc-arbitrage-bot/internal/config"
	"github.com/nicodiferd/polymarket-kalshi-btc-arbitrage-bot/internal/crypto"
	"github.com/nicodiferd/polymarket-kalshi-btc-arbitrage-bot/internal/domain"
	"github.com/nicodiferd/polymarket-kalshi-btc-arbitrage-bot/internal/engine"
	"github.com/nicodiferd/polymarket-kalshi-btc-arbitrage-bot/internal/executor"
	"github.com/nicodiferd/polymarket-kalshi-btc-arbitrage-bot/internal/fees"
	"github.com/nicodiferd/polymarket-kalshi-btc-arbitrage-bot/internal/guard"
	"github.com/nicodiferd/polymarket-kalshi-btc-arbitrage-bot/internal/notify"
	"github.com/nicodiferd/polymarket-kalshi-btc-arbitrage-bot/internal/platform/binance"
	"github.com/nicodiferd/polymarket-kalshi-btc-arbitrage-bot/internal/platform/kalshi"
	"github.com/nicodiferd/polymarket-kalshi-btc-arbitrage-bot/internal/platform/polymarket"
	"github.com/nicodiferd/polymarket-kalshi-btc-arbitrage-bot/internal/poller"
	"github.com/nicodiferd/polymarket-kalshi-btc-arbitrage-bot/internal/trading"
)

// Dependencies bundles every component the application needs to run. It is
// constructed by Wire and torn down by the returned cleanup function.
type Dependencies struct {
	Aggregator *aggregator.Aggregator
	Evaluator  *engine.Evaluator
	Guard      *guard.Guard
	Trading    *trading.Controller
	Dispatcher *executor.Dispatcher
	Poller     *poller.Poller
	Notifier   *notify.Notifier
}

// Wire constructs all concrete dependencies from the configuration. Missing
// live-trading credentials are not fatal: the venue is marked not ready and
// detection keeps running on public market data.
func Wire(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Dependencies, func(), error) {
	var closers []func()
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	// --- Redis snapshot cache (optional) ---
	var cache *aggregator.SnapshotCache
	if cfg.Redis.Addr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
			PoolSize: cfg.Redis.PoolSize,
		})
		pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
		err := rdb.Ping(pingCtx).Err()
		cancel()
		if err != nil {
			logger.Warn("redis unreachable, snapshot cache disabled", "addr", cfg.Redis.Addr, "error", err)
			rdb.Close()
		} else {
			closers = append(closers, func() { rdb.Close() })
			cache = aggregator.NewSnapshotCache(rdb, cfg.Poller.CacheTTL.Duration)
		}
	}

	// --- Kalshi client ---
	kalshiClient := kalshi.NewClient(cfg.Kalshi.BaseURL, cfg.Kalshi.ApiKey)
	if cfg.Kalshi.RsaPrivateKeyPath != "" {
		pem, err := os.ReadFile(cfg.Kalshi.RsaPrivateKeyPath)
		if err != nil {
			logger.Warn("kalshi rsa key unreadable, live orders disabled", "path", cfg.Kalshi.RsaPrivateKeyPath, "error", err)
		} else if err := kalshiClient.SetRSAPrivateKey(pem); err != nil {
			logger.Warn("kalshi rsa key invalid, live orders disabled", "error", err)
		}
	}

	// --- Polymarket clients ---
	gamma := polymarket.NewGammaClient(cfg.Polymarket.GammaHost)

	var signer *crypto.Signer
	if cfg.Wallet.PrivateKey != "" || cfg.Wallet.EncryptedKeyPath != "" {
		key, err := crypto.LoadKey(crypto.KeyConfig{
			RawPrivateKey:    cfg.Wallet.PrivateKey,
			EncryptedKeyPath: cfg.Wallet.EncryptedKeyPath,
			KeyPassword:      cfg.Wallet.KeyPassword,
		})
		if err != nil {
			logger.Warn("wallet key unavailable, live polymarket orders disabled", "error", err)
		} else if signer, err = crypto.NewSigner(key, cfg.Polymarket.ChainID); err != nil {
			logger.Warn("wallet signer init failed, live polymarket orders disabled", "error", err)
			signer = nil
		}
	}
	hmacAuth := &crypto.HMACAuth{
		Key:        cfg.Polymarket.ApiKey,
		Secret:     cfg.Polymarket.ApiSecret,
		Passphrase: cfg.Polymarket.ApiPassphrase,
	}
	clob := polymarket.NewClobClient(cfg.Polymarket.ClobHost, signer, hmacAuth)

	// --- Reference price ---
	spot := binance.NewClient(cfg.Binance.BaseURL)

	// --- Core components ---
	calc := fees.New(cfg.Engine.Regulated, cfg.Engine.GasFeeUSD)
	evaluator := engine.NewEvaluator(calc,
		fees.OrderType(cfg.Engine.KalshiOrderType),
		fees.MarketClass(cfg.Engine.KalshiMarketClass),
		cfg.Engine.MinNetMargin,
	)
	g := guard.New(cfg.Trading.BoundaryWindowMinutes)

	controller := trading.NewController(domain.TradingState{
		AutoTradeEnabled: cfg.Trading.AutoTrade,
		PaperTrading:     cfg.Trading.PaperTrading,
		KalshiReady:      kalshiClient.Ready(),
		PolymarketReady:  clob.Ready(),
	})

	agg := aggregator.New(gamma, clob, kalshiClient, spot, cache,
		cfg.Binance.Symbol, cfg.Poller.FetchTimeout.Duration, logger)

	dispatcher := executor.NewDispatcher(g, controller,
		executor.PaperPlacer{},
		&executor.LivePlacer{Kalshi: kalshiClient, Polymarket: clob},
		cfg.Engine.MinNetMargin, logger)

	// --- Notifications ---
	var senders []notify.Sender
	if cfg.Notify.TelegramToken != "" && cfg.Notify.TelegramChatID != "" {
		senders = append(senders, notify.NewTelegramSender(cfg.Notify.TelegramToken, cfg.Notify.TelegramChatID))
	}
	if cfg.Notify.DiscordWebhookURL != "" {
		senders = append(senders, notify.NewDiscordSender(cfg.Notify.DiscordWebhookURL))
	}
	events := make([]notify.Event, 0, len(cfg.Notify.Events))
	for _, e := range cfg.Notify.Events {
		events = append(events, notify.Event(e))
	}
	var notifier *notify.Notifier
	if len(senders) > 0 {
		notifier = notify.New(senders, events, logger)
	}

	p := poller.New(agg, evaluator, g, controller, dispatcher, notifier,
		cfg.Poller.Interval.Duration, cfg.Engine.DefaultQuantity, logger)

	if !kalshiClient.Ready() || !clob.Ready() {
		logger.Info("running in detection-only readiness",
			"kalshi_ready", kalshiClient.Ready(),
			"polymarket_ready", clob.Ready(),
		)
	}

	return &Dependencies{
		Aggregator: agg,
		Evaluator:  evaluator,
		Guard:      g,
		Trading:    controller,
		Dispatcher: dispatcher,
		Poller:     p,
		Notifier:   notifier,
	}, cleanup, nil
}
