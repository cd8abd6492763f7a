package polymarket

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"math/big"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/nicodiferd/polymarket-kalshi-btc-arbitrage-bot/internal/crypto"
)

// ClobClient talks to the Polymarket CLOB API: order books for quoting and
// signed order placement for the live path.
type ClobClient struct {
	baseURL    string
	httpClient *http.Client
	signer     *crypto.Signer
	hmacAuth   *crypto.HMACAuth
}

// NewClobClient creates a CLOB client. signer and hmac may be nil for
// quote-only use; they are required for PostOrder.
func NewClobClient(baseURL string, signer *crypto.Signer, hmacAuth *crypto.HMACAuth) *ClobClient {
	return &ClobClient{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		signer:   signer,
		hmacAuth: hmacAuth,
	}
}

// Ready reports whether the client can sign and authenticate live orders.
func (c *ClobClient) Ready() bool {
	return c.signer != nil && c.hmacAuth.Configured()
}

// BookBestAsk returns the lowest ask of the given token's order book — the
// price at which one contract can be bought right now. A book with no asks
// returns ok=false; zero is never used as a stand-in price.
func (c *ClobClient) BookBestAsk(ctx context.Context, tokenID string) (float64, bool, error) {
	params := url.Values{}
	params.Set("token_id", tokenID)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/book?"+params.Encode(), nil)
	if err != nil {
		return 0, false, fmt.Errorf("polymarket/clob: create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, false, fmt.Errorf("polymarket/clob: get book: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, false, fmt.Errorf("polymarket/clob: read book: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return 0, false, fmt.Errorf("polymarket/clob: book HTTP %d", resp.StatusCode)
	}

	var book Book
	if err := json.Unmarshal(body, &book); err != nil {
		return 0, false, fmt.Errorf("polymarket/clob: decode book: %w", err)
	}

	best := 0.0
	found := false
	for _, lvl := range book.Asks {
		p, err := strconv.ParseFloat(lvl.Price, 64)
		if err != nil || p <= 0 {
			continue
		}
		if !found || p < best {
			best = p
			found = true
		}
	}
	return best, found, nil
}

// PostOrder signs and submits a buy limit order for size contracts of
// tokenID at price (decimal dollars). It is only called on the live path.
func (c *ClobClient) PostOrder(ctx context.Context, tokenID string, price float64, size int) (OrderResult, error) {
	if !c.Ready() {
		return OrderResult{}, fmt.Errorf("polymarket/clob: live credentials not configured")
	}

	// CLOB amounts are fixed-point 1e6. For a BUY: maker amount is the USDC
	// spent, taker amount the contracts received. Rounded, not truncated:
	// 0.58*100*1e6 is 57999999.99... in binary.
	makerAmount := new(big.Int).SetInt64(int64(math.Round(price * float64(size) * 1e6)))
	takerAmount := new(big.Int).SetInt64(int64(size) * 1e6)

	payload := crypto.OrderPayload{
		Salt:          strconv.FormatInt(time.Now().UnixNano(), 10),
		Maker:         c.signer.Address().Hex(),
		Signer:        c.signer.Address().Hex(),
		Taker:         "0x0000000000000000000000000000000000000000",
		TokenID:       tokenID,
		MakerAmount:   makerAmount.String(),
		TakerAmount:   takerAmount.String(),
		Expiration:    "0",
		Nonce:         "0",
		FeeRateBps:    "0",
		Side:          0, // BUY
		SignatureType: 0, // EOA
	}

	signature, err := c.signer.SignOrder(payload)
	if err != nil {
		return OrderResult{}, fmt.Errorf("polymarket/clob: sign order: %w", err)
	}

	reqBody := map[string]any{
		"order": map[string]any{
			"salt":          payload.Salt,
			"maker":         payload.Maker,
			"signer":        payload.Signer,
			"taker":         payload.Taker,
			"tokenID":       payload.TokenID,
			"makerAmount":   payload.MakerAmount,
			"takerAmount":   payload.TakerAmount,
			"expiration":    payload.Expiration,
			"nonce":         payload.Nonce,
			"feeRateBps":    payload.FeeRateBps,
			"side":          "BUY",
			"signatureType": payload.SignatureType,
			"signature":     signature,
		},
		"owner":     c.hmacAuth.Key,
		"orderType": "FOK",
	}

	body, err := c.doAuthenticatedPost(ctx, "/order", reqBody)
	if err != nil {
		return OrderResult{}, err
	}

	var resp struct {
		Success bool   `json:"success"`
		OrderID string `json:"orderID"`
		Status  string `json:"status"`
		Error   string `json:"errorMsg"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return OrderResult{}, fmt.Errorf("polymarket/clob: decode order response: %w", err)
	}
	if !resp.Success {
		return OrderResult{OrderID: resp.OrderID, Status: resp.Status},
			fmt.Errorf("polymarket/clob: order rejected: %s", resp.Error)
	}

	return OrderResult{OrderID: resp.OrderID, Status: resp.Status, Success: true}, nil
}

func (c *ClobClient) doAuthenticatedPost(ctx context.Context, path string, reqBody any) ([]byte, error) {
	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("polymarket/clob: marshal body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(jsonBody))
	if err != nil {
		return nil, fmt.Errorf("polymarket/clob: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	for k, v := range c.hmacAuth.L2Headers(c.signer.Address().Hex(), http.MethodPost, path, string(jsonBody)) {
		req.Header.Set(k, v)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("polymarket/clob: post %s: %w", path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("polymarket/clob: read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("polymarket/clob: %s HTTP %d: %s", path, resp.StatusCode, truncate(body, 160))
	}
	return body, nil
}
