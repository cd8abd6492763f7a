package polymarket

import (
	"encoding/json"
	"fmt"
)

// APIEvent is the Gamma events DTO (only the fields this bot reads).
type APIEvent struct {
	ID      string      `json:"id"`
	Slug    string      `json:"slug"`
	Title   string      `json:"title"`
	Markets []APIMarket `json:"markets"`
}

// APIMarket is the Gamma market DTO. ClobTokenIDs and Outcomes are
// JSON-encoded string arrays embedded as strings.
type APIMarket struct {
	ID           string `json:"id"`
	ConditionID  string `json:"conditionId"`
	Question     string `json:"question"`
	ClobTokenIDs string `json:"clobTokenIds"`
	Outcomes     string `json:"outcomes"`
	Closed       bool   `json:"closed"`
}

// ParseTokenIDs decodes the doubly-encoded clobTokenIds field.
func (m APIMarket) ParseTokenIDs() ([]string, error) {
	var ids []string
	if err := json.Unmarshal([]byte(m.ClobTokenIDs), &ids); err != nil {
		return nil, fmt.Errorf("parse clobTokenIds: %w", err)
	}
	return ids, nil
}

// ParseOutcomes decodes the doubly-encoded outcomes field.
func (m APIMarket) ParseOutcomes() ([]string, error) {
	var outcomes []string
	if err := json.Unmarshal([]byte(m.Outcomes), &outcomes); err != nil {
		return nil, fmt.Errorf("parse outcomes: %w", err)
	}
	return outcomes, nil
}

// BookLevel is one price level of a CLOB order book. The API returns prices
// and sizes as strings.
type BookLevel struct {
	Price string `json:"price"`
	Size  string `json:"size"`
}

// Book is a CLOB order book snapshot for one token.
type Book struct {
	AssetID string      `json:"asset_id"`
	Bids    []BookLevel `json:"bids"`
	Asks    []BookLevel `json:"asks"`
}

// OrderResult is the condensed outcome of a CLOB order post.
type OrderResult struct {
	OrderID string
	Status  string
	Success bool
}
