package tickers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// NameClient looks up company names for ticker symbols
type NameClient interface {
	Search(ctx context.Context, query string) ([]Match, error)
}

// AlphaVantageClient queries the Alpha Vantage SYMBOL_SEARCH endpoint
type AlphaVantageClient struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
	log        zerolog.Logger
}

// NewAlphaVantageClient creates a new Alpha Vantage client
func NewAlphaVantageClient(apiKey string, log zerolog.Logger) *AlphaVantageClient {
	return &AlphaVantageClient{
		apiKey:  apiKey,
		baseURL: "https://www.alphavantage.co",
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		log: log.With().Str("client", "alphavantage").Logger(),
	}
}

type searchResponse struct {
	BestMatches []struct {
		Symbol string `json:"1. symbol"`
		Name   string `json:"2. name"`
	} `json:"bestMatches"`
	ErrorMessage string `json:"Error Message"`
	Note         string `json:"Note"`
}

// Search returns symbol matches for a query. An unset API key yields an
// error so callers fall back to cached names.
func (c *AlphaVantageClient) Search(ctx context.Context, query string) ([]Match, error) {
	if c.apiKey == "" {
		return nil, fmt.Errorf("alpha vantage api key not configured")
	}

	u := fmt.Sprintf("%s/query?function=SYMBOL_SEARCH&keywords=%s&apikey=%s",
		c.baseURL, url.QueryEscape(query), c.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("symbol search request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("symbol search returned status %d", resp.StatusCode)
	}

	var body searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("failed to decode symbol search response: %w", err)
	}

	if body.ErrorMessage != "" {
		return nil, fmt.Errorf("symbol search error: %s", body.ErrorMessage)
	}
	if body.Note != "" {
		return nil, fmt.Errorf("symbol search rate limited")
	}

	matches := make([]Match, 0, len(body.BestMatches))
	for _, m := range body.BestMatches {
		matches = append(matches, Match{
			Symbol: strings.ToUpper(m.Symbol),
			Name:   m.Name,
		})
	}
	return matches, nil
}
