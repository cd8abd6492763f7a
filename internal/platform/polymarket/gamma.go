// Package polymarket contains the REST clients for the Polymarket Gamma API
// (market discovery/metadata) and the CLOB API (order books and order
// placement). Prices are normalized to float64 decimal dollars on ingestion.
package polymarket

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// GammaClient is the REST client for the Polymarket Gamma API.
type GammaClient struct {
	baseURL    string
	httpClient *http.Client
}

// NewGammaClient creates a Gamma API client. baseURL is the API root, e.g.
// "https://gamma-api.polymarket.com".
func NewGammaClient(baseURL string) *GammaClient {
	return &GammaClient{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// EventMetadata is the per-hour instrument metadata of an hourly up/down
// event: the CLOB token ID behind each outcome. Token IDs do not change
// within the hour, so callers cache this per hour key.
type EventMetadata struct {
	Slug        string
	ConditionID string
	Outcomes    []string          // e.g. ["Up", "Down"]
	TokenIDs    map[string]string // outcome -> CLOB token ID
}

// EventBySlug fetches the event with the given slug and extracts the
// outcome-to-token mapping of its (single) market. The clobTokenIds and
// outcomes fields arrive as JSON-encoded strings inside the JSON document
// and are decoded a second time here.
func (g *GammaClient) EventBySlug(ctx context.Context, slug string) (EventMetadata, error) {
	params := url.Values{}
	params.Set("slug", slug)

	body, err := g.doGet(ctx, "/events?"+params.Encode())
	if err != nil {
		return EventMetadata{}, fmt.Errorf("polymarket/gamma: get event %s: %w", slug, err)
	}

	var events []APIEvent
	if err := json.Unmarshal(body, &events); err != nil {
		return EventMetadata{}, fmt.Errorf("polymarket/gamma: decode events: %w", err)
	}
	if len(events) == 0 {
		return EventMetadata{}, fmt.Errorf("polymarket/gamma: event %s not found", slug)
	}
	if len(events[0].Markets) == 0 {
		return EventMetadata{}, fmt.Errorf("polymarket/gamma: event %s has no markets", slug)
	}

	market := events[0].Markets[0]
	tokenIDs, err := market.ParseTokenIDs()
	if err != nil {
		return EventMetadata{}, fmt.Errorf("polymarket/gamma: event %s: %w", slug, err)
	}
	outcomes, err := market.ParseOutcomes()
	if err != nil {
		return EventMetadata{}, fmt.Errorf("polymarket/gamma: event %s: %w", slug, err)
	}
	if len(tokenIDs) != len(outcomes) || len(tokenIDs) != 2 {
		return EventMetadata{}, fmt.Errorf("polymarket/gamma: event %s: expected 2 outcome tokens, got %d", slug, len(tokenIDs))
	}

	meta := EventMetadata{
		Slug:        slug,
		ConditionID: market.ConditionID,
		Outcomes:    outcomes,
		TokenIDs:    make(map[string]string, len(outcomes)),
	}
	for i, outcome := range outcomes {
		meta.TokenIDs[outcome] = tokenIDs[i]
	}
	return meta, nil
}

func (g *GammaClient) doGet(ctx context.Context, path string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.baseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("HTTP %d: %s", resp.StatusCode, truncate(body, 160))
	}
	return body, nil
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
