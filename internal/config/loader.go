package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// Load reads a TOML configuration file at path, merges it on top of the
// built-in defaults, applies ARB_* environment variable overrides, and
// returns the final Config. The returned Config has NOT been validated; the
// caller should invoke Config.Validate() after Load.
func Load(path string) (*Config, error) {
	cfg := Defaults()

	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return nil, err
	}

	// Load .env file if present (silently ignore if missing).
	_ = godotenv.Load()

	applyEnvOverrides(&cfg)

	return &cfg, nil
}

// applyEnvOverrides reads well-known ARB_* environment variables and
// overwrites the corresponding Config fields when a variable is set. This
// lets operators inject secrets at deploy time without touching the TOML
// file.
func applyEnvOverrides(cfg *Config) {
	setStr(&cfg.Wallet.PrivateKey, "ARB_WALLET_PRIVATE_KEY")
	setStr(&cfg.Wallet.EncryptedKeyPath, "ARB_WALLET_ENCRYPTED_KEY_PATH")
	setStr(&cfg.Wallet.KeyPassword, "ARB_WALLET_KEY_PASSWORD")

	setStr(&cfg.Polymarket.ClobHost, "ARB_POLYMARKET_CLOB_HOST")
	setStr(&cfg.Polymarket.GammaHost, "ARB_POLYMARKET_GAMMA_HOST")
	setInt(&cfg.Polymarket.ChainID, "ARB_POLYMARKET_CHAIN_ID")
	setStr(&cfg.Polymarket.ApiKey, "ARB_POLYMARKET_API_KEY")
	setStr(&cfg.Polymarket.ApiSecret, "ARB_POLYMARKET_API_SECRET")
	setStr(&cfg.Polymarket.ApiPassphrase, "ARB_POLYMARKET_API_PASSPHRASE")

	setStr(&cfg.Kalshi.ApiKey, "ARB_KALSHI_API_KEY")
	setStr(&cfg.Kalshi.RsaPrivateKeyPath, "ARB_KALSHI_RSA_PRIVATE_KEY_PATH")
	setStr(&cfg.Kalshi.BaseURL, "ARB_KALSHI_BASE_URL")

	setStr(&cfg.Binance.BaseURL, "ARB_BINANCE_BASE_URL")
	setStr(&cfg.Binance.Symbol, "ARB_BINANCE_SYMBOL")

	setStr(&cfg.Redis.Addr, "ARB_REDIS_ADDR")
	setStr(&cfg.Redis.Password, "ARB_REDIS_PASSWORD")
	setInt(&cfg.Redis.DB, "ARB_REDIS_DB")
	setInt(&cfg.Redis.PoolSize, "ARB_REDIS_POOL_SIZE")

	setBool(&cfg.Engine.Regulated, "ARB_ENGINE_REGULATED")
	setFloat64(&cfg.Engine.GasFeeUSD, "ARB_ENGINE_GAS_FEE_USD")
	setStr(&cfg.Engine.KalshiOrderType, "ARB_ENGINE_KALSHI_ORDER_TYPE")
	setStr(&cfg.Engine.KalshiMarketClass, "ARB_ENGINE_KALSHI_MARKET_CLASS")
	setFloat64(&cfg.Engine.MinNetMargin, "ARB_ENGINE_MIN_NET_MARGIN")
	setInt(&cfg.Engine.DefaultQuantity, "ARB_ENGINE_DEFAULT_QUANTITY")

	setBool(&cfg.Trading.PaperTrading, "ARB_TRADING_PAPER_TRADING")
	setBool(&cfg.Trading.AutoTrade, "ARB_TRADING_AUTO_TRADE")
	setInt(&cfg.Trading.BoundaryWindowMinutes, "ARB_TRADING_BOUNDARY_WINDOW_MINUTES")

	setDuration(&cfg.Poller.Interval, "ARB_POLLER_INTERVAL")
	setDuration(&cfg.Poller.FetchTimeout, "ARB_POLLER_FETCH_TIMEOUT")
	setDuration(&cfg.Poller.CacheTTL, "ARB_POLLER_CACHE_TTL")

	setInt(&cfg.Server.Port, "ARB_SERVER_PORT")
	setStringSlice(&cfg.Server.CORSOrigins, "ARB_SERVER_CORS_ORIGINS")

	setStr(&cfg.Notify.TelegramToken, "ARB_NOTIFY_TELEGRAM_TOKEN")
	setStr(&cfg.Notify.TelegramChatID, "ARB_NOTIFY_TELEGRAM_CHAT_ID")
	setStr(&cfg.Notify.DiscordWebhookURL, "ARB_NOTIFY_DISCORD_WEBHOOK_URL")
	setStringSlice(&cfg.Notify.Events, "ARB_NOTIFY_EVENTS")

	setStr(&cfg.LogLevel, "ARB_LOG_LEVEL")
}

func setStr(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func setFloat64(dst *float64, key string) {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			*dst = f
		}
	}
}

func setBool(dst *bool, key string) {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			*dst = b
		}
	}
}

func setDuration(dst *duration, key string) {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			dst.Duration = d
		}
	}
}

func setStringSlice(dst *[]string, key string) {
	if v := os.Getenv(key); v != "" {
		parts := strings.Split(v, ",")
		cleaned := make([]string, 0, len(parts))
		for _, p := range parts {
			p = strings.TrimSpace(p)
			if p != "" {
				cleaned = append(cleaned, p)
			}
		}
		if len(cleaned) > 0 {
			*dst = cleaned
		}
	}
}
