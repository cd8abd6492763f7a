// Package config defines the top-level configuration for the arbitrage bot
// and provides validation helpers.
package config

import (
	"fmt"
	"strings"
	"time"
)

// Config is the root configuration structure. Fields are populated from a
// TOML file and then optionally overridden by ARB_* environment variables.
type Config struct {
	Wallet     WalletConfig     `toml:"wallet"`
	Polymarket PolymarketConfig `toml:"polymarket"`
	Kalshi     KalshiConfig     `toml:"kalshi"`
	Binance    BinanceConfig    `toml:"binance"`
	Redis      RedisConfig      `toml:"redis"`
	Engine     EngineConfig     `toml:"engine"`
	Trading    TradingConfig    `toml:"trading"`
	Poller     PollerConfig     `toml:"poller"`
	Server     ServerConfig     `toml:"server"`
	Notify     NotifyConfig     `toml:"notify"`
	LogLevel   string           `toml:"log_level"`
}

// WalletConfig holds the Polygon wallet used to sign Polymarket orders.
type WalletConfig struct {
	PrivateKey       string `toml:"private_key"`
	EncryptedKeyPath string `toml:"encrypted_key_path"`
	KeyPassword      string `toml:"key_password"`
}

// PolymarketConfig holds Polymarket API endpoints and L2 credentials.
type PolymarketConfig struct {
	ClobHost      string `toml:"clob_host"`
	GammaHost     string `toml:"gamma_host"`
	ChainID       int    `toml:"chain_id"`
	ApiKey        string `toml:"api_key"`
	ApiSecret     string `toml:"api_secret"`
	ApiPassphrase string `toml:"api_passphrase"`
}

// KalshiConfig holds Kalshi exchange API credentials.
type KalshiConfig struct {
	ApiKey            string `toml:"api_key"`
	RsaPrivateKeyPath string `toml:"rsa_private_key_path"`
	BaseURL           string `toml:"base_url"`
}

// BinanceConfig holds the reference price source parameters.
type BinanceConfig struct {
	BaseURL string `toml:"base_url"`
	Symbol  string `toml:"symbol"`
}

// RedisConfig holds Redis connection parameters. An empty Addr disables the
// snapshot cache entirely.
type RedisConfig struct {
	Addr     string `toml:"addr"`
	Password string `toml:"password"`
	DB       int    `toml:"db"`
	PoolSize int    `toml:"pool_size"`
}

// EngineConfig holds the fee model and profitability parameters.
type EngineConfig struct {
	// Regulated selects the Polymarket fee regime: true applies the
	// US-regulated taker fee, false charges nothing.
	Regulated bool `toml:"regulated"`
	// GasFeeUSD is the fixed per-transaction gas estimate added to every
	// Polymarket leg.
	GasFeeUSD float64 `toml:"gas_fee_usd"`
	// KalshiOrderType is "taker" or "maker".
	KalshiOrderType string `toml:"kalshi_order_type"`
	// KalshiMarketClass is "general", "maker_fee" or "index".
	KalshiMarketClass string `toml:"kalshi_market_class"`
	// MinNetMargin is the per-contract net margin floor for execution.
	MinNetMargin float64 `toml:"min_net_margin"`
	// DefaultQuantity is the contract count used for fee projections and
	// auto-trades.
	DefaultQuantity int `toml:"default_quantity"`
}

// TradingConfig holds the initial trading switches.
type TradingConfig struct {
	PaperTrading bool `toml:"paper_trading"`
	AutoTrade    bool `toml:"auto_trade"`
	// BoundaryWindowMinutes is the no-trade window either side of the top
	// of the hour.
	BoundaryWindowMinutes int `toml:"boundary_window_minutes"`
}

// PollerConfig holds the detection loop parameters.
type PollerConfig struct {
	Interval     duration `toml:"interval"`
	FetchTimeout duration `toml:"fetch_timeout"`
	CacheTTL     duration `toml:"cache_ttl"`
}

// ServerConfig holds HTTP server parameters.
type ServerConfig struct {
	Port        int      `toml:"port"`
	CORSOrigins []string `toml:"cors_origins"`
}

// NotifyConfig holds notification channel credentials.
type NotifyConfig struct {
	TelegramToken     string   `toml:"telegram_token"`
	TelegramChatID    string   `toml:"telegram_chat_id"`
	DiscordWebhookURL string   `toml:"discord_webhook_url"`
	Events            []string `toml:"events"`
}

// duration is a wrapper around time.Duration that supports TOML string
// decoding (e.g. "1s", "750ms").
type duration struct {
	time.Duration
}

func (d *duration) UnmarshalText(text []byte) error {
	var err error
	d.Duration, err = time.ParseDuration(string(text))
	return err
}

func (d duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

var validLogLevels = map[string]bool{
	"debug": true, "info": true, "warn": true, "error": true,
}

var validOrderTypes = map[string]bool{"taker": true, "maker": true}

var validMarketClasses = map[string]bool{
	"general": true, "maker_fee": true, "index": true,
}

// Defaults returns a Config populated with reasonable default values.
// These match the values in config.example.toml.
func Defaults() Config {
	return Config{
		Polymarket: PolymarketConfig{
			ClobHost:  "https://clob.polymarket.com",
			GammaHost: "https://gamma-api.polymarket.com",
			ChainID:   137,
		},
		Kalshi: KalshiConfig{
			BaseURL: "https://api.elections.kalshi.com/trade-api/v2",
		},
		Binance: BinanceConfig{
			BaseURL: "https://api.binance.us",
			Symbol:  "BTCUSDT",
		},
		Redis: RedisConfig{
			Addr:     "localhost:6379",
			PoolSize: 10,
		},
		Engine: EngineConfig{
			Regulated:         true,
			GasFeeUSD:         0.02,
			KalshiOrderType:   "taker",
			KalshiMarketClass: "general",
			MinNetMargin:      0.01,
			DefaultQuantity:   100,
		},
		Trading: TradingConfig{
			PaperTrading:          true,
			AutoTrade:             false,
			BoundaryWindowMinutes: 3,
		},
		Poller: PollerConfig{
			Interval:     duration{time.Second},
			FetchTimeout: duration{800 * time.Millisecond},
			CacheTTL:     duration{500 * time.Millisecond},
		},
		Server: ServerConfig{
			Port:        8080,
			CORSOrigins: []string{"*"},
		},
		LogLevel: "info",
	}
}

// Validate checks the configuration for inconsistencies. It collects every
// problem it finds rather than stopping at the first.
func (c *Config) Validate() error {
	var errs []string

	if !validLogLevels[strings.ToLower(c.LogLevel)] {
		errs = append(errs, fmt.Sprintf("unknown log_level %q (valid: debug, info, warn, error)", c.LogLevel))
	}

	if c.Polymarket.ClobHost == "" {
		errs = append(errs, "polymarket: clob_host must not be empty")
	}
	if c.Polymarket.GammaHost == "" {
		errs = append(errs, "polymarket: gamma_host must not be empty")
	}
	if c.Polymarket.ChainID <= 0 {
		errs = append(errs, "polymarket: chain_id must be positive")
	}

	// L2 credentials must be set together or not at all.
	pk := c.Polymarket.ApiKey != ""
	ps := c.Polymarket.ApiSecret != ""
	pp := c.Polymarket.ApiPassphrase != ""
	if (pk || ps || pp) && !(pk && ps && pp) {
		errs = append(errs, "polymarket: api_key, api_secret and api_passphrase must be set together")
	}

	if c.Wallet.EncryptedKeyPath != "" && c.Wallet.KeyPassword == "" {
		errs = append(errs, "wallet: key_password is required when encrypted_key_path is set")
	}

	if c.Kalshi.BaseURL == "" {
		errs = append(errs, "kalshi: base_url must not be empty")
	}
	if c.Binance.Symbol == "" {
		errs = append(errs, "binance: symbol must not be empty")
	}

	if !validOrderTypes[c.Engine.KalshiOrderType] {
		errs = append(errs, fmt.Sprintf("engine: unknown kalshi_order_type %q (valid: taker, maker)", c.Engine.KalshiOrderType))
	}
	if !validMarketClasses[c.Engine.KalshiMarketClass] {
		errs = append(errs, fmt.Sprintf("engine: unknown kalshi_market_class %q (valid: general, maker_fee, index)", c.Engine.KalshiMarketClass))
	}
	if c.Engine.MinNetMargin < 0 {
		errs = append(errs, "engine: min_net_margin must not be negative")
	}
	if c.Engine.GasFeeUSD < 0 {
		errs = append(errs, "engine: gas_fee_usd must not be negative")
	}
	if c.Engine.DefaultQuantity <= 0 {
		errs = append(errs, "engine: default_quantity must be positive")
	}

	if c.Trading.BoundaryWindowMinutes < 0 || c.Trading.BoundaryWindowMinutes > 29 {
		errs = append(errs, "trading: boundary_window_minutes must be in [0, 29]")
	}
	if c.Trading.AutoTrade && !c.Trading.PaperTrading && c.Wallet.PrivateKey == "" && c.Wallet.EncryptedKeyPath == "" {
		errs = append(errs, "trading: live auto_trade requires wallet credentials")
	}

	if c.Poller.Interval.Duration <= 0 {
		errs = append(errs, "poller: interval must be positive")
	}
	if c.Poller.FetchTimeout.Duration <= 0 {
		errs = append(errs, "poller: fetch_timeout must be positive")
	}

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Sprintf("server: invalid port %d", c.Server.Port))
	}

	if len(errs) > 0 {
		return fmt.Errorf("config: %s", strings.Join(errs, "; "))
	}
	return nil
}
