// Package binance fetches the reference spot price used to pick the
// nearest Kalshi strike. Only two public market-data endpoints are used;
// nothing here is authenticated.
package binance

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

type Client struct {
	baseURL    string
	httpClient *http.Client
}

func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// SpotPrice returns the latest trade price for the symbol.
func (c *Client) SpotPrice(ctx context.Context, symbol string) (float64, error) {
	params := url.Values{}
	params.Set("symbol", symbol)

	body, err := c.get(ctx, "/api/v3/ticker/price", params)
	if err != nil {
		return 0, err
	}

	var ticker struct {
		Symbol string `json:"symbol"`
		Price  string `json:"price"`
	}
	if err := json.Unmarshal(body, &ticker); err != nil {
		return 0, fmt.Errorf("binance: decode ticker: %w", err)
	}

	price, err := strconv.ParseFloat(ticker.Price, 64)
	if err != nil {
		return 0, fmt.Errorf("binance: parse price %q: %w", ticker.Price, err)
	}
	return price, nil
}

// HourOpen returns the open of the current 1h candle, which is the price
// the hourly up/down markets settle against.
func (c *Client) HourOpen(ctx context.Context, symbol string) (float64, error) {
	params := url.Values{}
	params.Set("symbol", symbol)
	params.Set("interval", "1h")
	params.Set("limit", "1")

	body, err := c.get(ctx, "/api/v3/klines", params)
	if err != nil {
		return 0, err
	}

	// Each kline is a heterogeneous array; index 1 is the open price.
	var klines [][]json.RawMessage
	if err := json.Unmarshal(body, &klines); err != nil {
		return 0, fmt.Errorf("binance: decode klines: %w", err)
	}
	if len(klines) == 0 || len(klines[0]) < 2 {
		return 0, fmt.Errorf("binance: empty kline response")
	}

	var openStr string
	if err := json.Unmarshal(klines[0][1], &openStr); err != nil {
		return 0, fmt.Errorf("binance: decode kline open: %w", err)
	}
	open, err := strconv.ParseFloat(openStr, 64)
	if err != nil {
		return 0, fmt.Errorf("binance: parse kline open %q: %w", openStr, err)
	}
	return open, nil
}

func (c *Client) get(ctx context.Context, path string, params url.Values) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("binance: create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("binance: GET %s: %w", path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("binance: read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("binance: %s HTTP %d", path, resp.StatusCode)
	}
	return body, nil
}
