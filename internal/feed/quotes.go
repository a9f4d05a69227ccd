package feed

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"market-alerts/internal/models"
	"market-alerts/internal/platform/httpclient"
)

// LiveSource fetches live quotes for a set of instruments.
type LiveSource interface {
	Name() string
	Fetch(ctx context.Context, instruments []Instrument) (map[string]models.Quote, error)
}

// QuoteClient queries a Yahoo-style quote endpoint.
type QuoteClient struct {
	baseURL    string
	httpClient *httpclient.Client
	logger     zerolog.Logger
}

// QuoteClientOptions holds options for creating a QuoteClient.
type QuoteClientOptions struct {
	BaseURL        string
	Timeout        time.Duration
	RequestsPerSec int
	MaxRetries     int
}

// NewQuoteClient creates a new quote endpoint client.
func NewQuoteClient(opts QuoteClientOptions, logger zerolog.Logger) *QuoteClient {
	return &QuoteClient{
		baseURL: opts.BaseURL,
		httpClient: httpclient.NewClient(httpclient.ClientOptions{
			Timeout:         opts.Timeout,
			RequestsPerSec:  opts.RequestsPerSec,
			MaxRetries:      opts.MaxRetries,
			MaxRetryTimeout: opts.Timeout,
		}),
		logger: logger.With().Str("component", "quote_client").Logger(),
	}
}

// Name returns the source name.
func (c *QuoteClient) Name() string {
	return "quote_api"
}

type quoteResponse struct {
	QuoteResponse struct {
		Result []struct {
			Symbol                     string  `json:"symbol"`
			RegularMarketPrice         float64 `json:"regularMarketPrice"`
			RegularMarketPreviousClose float64 `json:"regularMarketPreviousClose"`
		} `json:"result"`
		Error json.RawMessage `json:"error"`
	} `json:"quoteResponse"`
}

// Fetch retrieves last price and previous close for each instrument.
func (c *QuoteClient) Fetch(ctx context.Context, instruments []Instrument) (map[string]models.Quote, error) {
	if len(instruments) == 0 {
		return nil, fmt.Errorf("no instruments requested")
	}

	bySymbol := make(map[string]string, len(instruments))
	feedSymbols := make([]string, 0, len(instruments))
	for _, inst := range instruments {
		fs := inst.FeedSymbol
		if fs == "" {
			fs = inst.Symbol
		}
		bySymbol[fs] = inst.Symbol
		feedSymbols = append(feedSymbols, fs)
	}

	u := c.baseURL + "?symbols=" + url.QueryEscape(strings.Join(feedSymbols, ","))
	c.logger.Debug().Str("url", u).Msg("Fetching quotes")

	body, err := c.httpClient.Get(ctx, u)
	if err != nil {
		return nil, fmt.Errorf("HTTP request failed: %w", err)
	}

	var data quoteResponse
	if err := json.Unmarshal(body, &data); err != nil {
		return nil, fmt.Errorf("parsing JSON: %w", err)
	}
	if len(data.QuoteResponse.Error) > 0 && string(data.QuoteResponse.Error) != "null" {
		return nil, fmt.Errorf("quote API error: %s", string(data.QuoteResponse.Error))
	}

	quotes := make(map[string]models.Quote, len(data.QuoteResponse.Result))
	for _, r := range data.QuoteResponse.Result {
		symbol, ok := bySymbol[r.Symbol]
		if !ok || r.RegularMarketPrice <= 0 {
			continue
		}
		pct := 0.0
		if r.RegularMarketPreviousClose > 0 {
			pct = round((r.RegularMarketPrice-r.RegularMarketPreviousClose)/r.RegularMarketPreviousClose*100, 2)
		}
		quotes[symbol] = models.Quote{
			Price:         r.RegularMarketPrice,
			PercentChange: pct,
		}
	}

	if len(quotes) == 0 {
		return nil, fmt.Errorf("empty data returned")
	}
	return quotes, nil
}
