// Package kalshi is the REST client for the Kalshi exchange. Market data is
// fetched unauthenticated; order placement and portfolio endpoints are
// signed with RSA-PSS-SHA256 over timestamp + method + path. All prices
// leave this package as decimal dollars — the cents-to-dollars conversion
// happens here and nowhere else.
package kalshi

import (
	"bytes"
	"context"
	"crypto"
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha256"
	"crypto/x509"
	"encoding/base64"
	"encoding/json"
	"encoding/pem"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/nicodiferd/polymarket-kalshi-btc-arbitrage-bot/internal/domain"
)

// Client talks to the Kalshi trade API.
type Client struct {
	baseURL    string
	apiKeyID   string
	privateKey *rsa.PrivateKey
	httpClient *http.Client
}

// NewClient creates a Kalshi REST client. baseURL is the API root, e.g.
// "https://api.elections.kalshi.com/trade-api/v2". apiKeyID may be empty for
// market-data-only use.
func NewClient(baseURL, apiKeyID string) *Client {
	return &Client{
		baseURL:  baseURL,
		apiKeyID: apiKeyID,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// SetRSAPrivateKey loads an RSA private key from PEM bytes and enables the
// signed endpoints.
func (c *Client) SetRSAPrivateKey(pemBytes []byte) error {
	block, _ := pem.Decode(pemBytes)
	if block == nil {
		return fmt.Errorf("kalshi: no PEM block found in private key")
	}

	key, err := x509.ParsePKCS8PrivateKey(block.Bytes)
	if err != nil {
		pkcs1Key, pkcs1Err := x509.ParsePKCS1PrivateKey(block.Bytes)
		if pkcs1Err != nil {
			return fmt.Errorf("kalshi: parse private key: %w (pkcs1: %v)", err, pkcs1Err)
		}
		c.privateKey = pkcs1Key
		return nil
	}

	rsaKey, ok := key.(*rsa.PrivateKey)
	if !ok {
		return fmt.Errorf("kalshi: expected RSA private key, got %T", key)
	}
	c.privateKey = rsaKey
	return nil
}

// Ready reports whether the client can sign orders.
func (c *Client) Ready() bool {
	return c.apiKeyID != "" && c.privateKey != nil
}

// EventLadder fetches every market of the given hourly event and returns
// them as a normalized strike ladder, sorted by strike ascending. Markets
// whose strike cannot be determined are skipped.
func (c *Client) EventLadder(ctx context.Context, eventTicker string) (domain.KalshiLadder, error) {
	params := url.Values{}
	params.Set("limit", "100")
	params.Set("event_ticker", eventTicker)

	body, err := c.doRequest(ctx, http.MethodGet, "/markets?"+params.Encode(), nil, false)
	if err != nil {
		return domain.KalshiLadder{}, fmt.Errorf("kalshi: get event markets %s: %w", eventTicker, err)
	}

	var resp struct {
		Markets []Market `json:"markets"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return domain.KalshiLadder{}, fmt.Errorf("kalshi: decode markets: %w", err)
	}

	strikes := make([]domain.KalshiStrike, 0, len(resp.Markets))
	for _, m := range resp.Markets {
		strike, ok := m.StrikeValue()
		if !ok {
			continue
		}
		strikes = append(strikes, domain.KalshiStrike{
			Ticker:   m.Ticker,
			Strike:   strike,
			YesBid:   centsToDollars(m.YesBid),
			YesAsk:   centsToDollars(m.YesAsk),
			NoBid:    centsToDollars(m.NoBid),
			NoAsk:    centsToDollars(m.NoAsk),
			Subtitle: m.Subtitle,
		})
	}
	sort.Slice(strikes, func(i, j int) bool { return strikes[i].Strike < strikes[j].Strike })

	return domain.KalshiLadder{
		EventTicker: eventTicker,
		Strikes:     strikes,
		FetchedAt:   time.Now().UTC(),
		Fresh:       true,
	}, nil
}

// GetBalance returns the account balance in dollars.
func (c *Client) GetBalance(ctx context.Context) (float64, error) {
	body, err := c.doRequest(ctx, http.MethodGet, "/portfolio/balance", nil, true)
	if err != nil {
		return 0, fmt.Errorf("kalshi: get balance: %w", err)
	}

	var resp struct {
		Balance int64 `json:"balance"` // cents
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return 0, fmt.Errorf("kalshi: decode balance: %w", err)
	}
	return float64(resp.Balance) / 100.0, nil
}

// PlaceOrder submits a limit order and returns the exchange order ID and
// status.
func (c *Client) PlaceOrder(ctx context.Context, order Order) (OrderResult, error) {
	body, err := c.doRequest(ctx, http.MethodPost, "/portfolio/orders", order, true)
	if err != nil {
		return OrderResult{}, fmt.Errorf("kalshi: place order: %w", err)
	}

	var resp OrderResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return OrderResult{}, fmt.Errorf("kalshi: decode order response: %w", err)
	}

	res := OrderResult{OrderID: resp.Order.OrderID, Status: resp.Order.Status}
	if resp.Order.Status == "canceled" {
		return res, fmt.Errorf("kalshi: order was immediately cancelled")
	}
	return res, nil
}

// centsToDollars converts a native Kalshi price (integer cents, 0-100) to
// decimal dollars in [0,1].
func centsToDollars(cents float64) float64 {
	return cents / 100.0
}

// doRequest builds, optionally signs, sends, and reads an HTTP request. Only
// portfolio endpoints need signing; market data works unauthenticated, which
// keeps detection alive when no credentials are configured.
func (c *Client) doRequest(ctx context.Context, method, path string, reqBody any, signed bool) ([]byte, error) {
	var bodyReader io.Reader
	if reqBody != nil {
		jsonBody, err := json.Marshal(reqBody)
		if err != nil {
			return nil, fmt.Errorf("marshal request body: %w", err)
		}
		bodyReader = bytes.NewReader(jsonBody)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	if reqBody != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	if signed {
		if err := c.signRequest(req, method, path); err != nil {
			return nil, fmt.Errorf("sign request: %w", err)
		}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if err := c.checkStatus(resp.StatusCode, respBody); err != nil {
		return nil, err
	}

	return respBody, nil
}

// signRequest adds the Kalshi RSA authentication headers. The signed message
// is timestamp + method + path (path without query string is what Kalshi
// verifies, so the query is stripped here).
func (c *Client) signRequest(req *http.Request, method, path string) error {
	if !c.Ready() {
		return fmt.Errorf("%w: kalshi credentials not configured", domain.ErrSigningFailed)
	}

	if i := strings.IndexByte(path, '?'); i >= 0 {
		path = path[:i]
	}

	ts := strconv.FormatInt(time.Now().UnixMilli(), 10)
	message := ts + method + path

	hash := sha256.Sum256([]byte(message))
	signature, err := rsa.SignPSS(rand.Reader, c.privateKey, crypto.SHA256, hash[:], &rsa.PSSOptions{
		SaltLength: rsa.PSSSaltLengthEqualsHash,
	})
	if err != nil {
		return fmt.Errorf("RSA sign: %w", err)
	}

	req.Header.Set("KALSHI-ACCESS-KEY", c.apiKeyID)
	req.Header.Set("KALSHI-ACCESS-SIGNATURE", base64.StdEncoding.EncodeToString(signature))
	req.Header.Set("KALSHI-ACCESS-TIMESTAMP", ts)
	return nil
}

// checkStatus maps non-2xx HTTP status codes to errors.
func (c *Client) checkStatus(statusCode int, body []byte) error {
	if statusCode >= 200 && statusCode < 300 {
		return nil
	}

	var apiErr ErrorResponse
	_ = json.Unmarshal(body, &apiErr)

	switch statusCode {
	case http.StatusNotFound:
		return fmt.Errorf("kalshi: not found: %s (%s)", apiErr.Message, apiErr.Code)
	case http.StatusUnauthorized, http.StatusForbidden:
		return fmt.Errorf("kalshi: unauthorized: %s (%s)", apiErr.Message, apiErr.Code)
	case http.StatusTooManyRequests:
		return fmt.Errorf("kalshi: rate limited: %s (%s)", apiErr.Message, apiErr.Code)
	default:
		return fmt.Errorf("kalshi: HTTP %d: %s (%s)", statusCode, apiErr.Message, apiErr.Code)
	}
}
