// Package oanda is the market data collaborator: candle history and
// live bid/ask pricing from the OANDA v3 REST API.
package oanda

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strconv"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	httpclient "forex-trader/internal/platform/http"
	"forex-trader/models"
)

const (
	practiceURL = "https://api-fxpractice.oanda.com/v3"
	tradeURL    = "https://api-fxtrade.oanda.com/v3"
)

// Client is the OANDA API client.
type Client struct {
	apiKey     string
	accountID  string
	baseURL    string
	httpClient *httpclient.Client
	logger     zerolog.Logger
}

// ClientOptions holds options for creating a new OANDA client.
type ClientOptions struct {
	APIKey          string
	AccountID       string
	Environment     string // "practice" or "trade"
	RequestTimeout  time.Duration
	RequestsPerSec  int
	MaxRetryTimeout time.Duration
}

// NewClient creates a new OANDA API client.
func NewClient(options ClientOptions) *Client {
	baseURL := tradeURL
	if options.Environment == "" || options.Environment == "practice" {
		baseURL = practiceURL
	}

	return &Client{
		apiKey:    options.APIKey,
		accountID: options.AccountID,
		baseURL:   baseURL,
		httpClient: httpclient.NewClient(httpclient.ClientOptions{
			Timeout:         options.RequestTimeout,
			RequestsPerSec:  options.RequestsPerSec,
			MaxRetryTimeout: options.MaxRetryTimeout,
		}),
		logger: log.With().Str("component", "oanda_client").Logger(),
	}
}

// candlesResponse mirrors the instrument candles payload. Mid prices
// come back as strings.
type candlesResponse struct {
	Instrument string `json:"instrument"`
	Candles    []struct {
		Time string `json:"time"`
		Mid  struct {
			O string `json:"o"`
			H string `json:"h"`
			L string `json:"l"`
			C string `json:"c"`
		} `json:"mid"`
		Volume   int64 `json:"volume"`
		Complete bool  `json:"complete"`
	} `json:"candles"`
}

// pricingResponse mirrors the account pricing payload.
type pricingResponse struct {
	Prices []struct {
		Instrument string `json:"instrument"`
		Bids       []struct {
			Price     string  `json:"price"`
			Liquidity float64 `json:"liquidity"`
		} `json:"bids"`
		Asks []struct {
			Price     string  `json:"price"`
			Liquidity float64 `json:"liquidity"`
		} `json:"asks"`
	} `json:"prices"`
}

// Candles fetches mid-price candles for a symbol at the given
// granularity code (H4, H1, M15, ...), ascending by timestamp.
func (c *Client) Candles(ctx context.Context, symbol, granularity string, count int) ([]models.Candle, error) {
	url := fmt.Sprintf(
		"%s/instruments/%s/candles?count=%d&granularity=%s&price=M",
		c.baseURL, symbol, count, granularity,
	)

	c.logger.Debug().Str("symbol", symbol).Str("granularity", granularity).Msg("Fetching candles")

	body, err := c.get(ctx, url)
	if err != nil {
		return nil, err
	}

	var data candlesResponse
	if err := json.Unmarshal(body, &data); err != nil {
		c.logger.Error().Err(err).Str("response", string(body)).Msg("Error parsing candles JSON")
		return nil, fmt.Errorf("parsing JSON: %w", err)
	}

	candles := make([]models.Candle, 0, len(data.Candles))
	for _, raw := range data.Candles {
		candle, err := parseCandle(raw.Time, raw.Mid.O, raw.Mid.H, raw.Mid.L, raw.Mid.C, raw.Volume)
		if err != nil {
			return nil, fmt.Errorf("parsing candle: %w", err)
		}
		candles = append(candles, candle)
	}

	// Detectors require ascending order; never trust the provider.
	sort.Slice(candles, func(i, j int) bool {
		return candles[i].Timestamp < candles[j].Timestamp
	})

	c.logger.Debug().Int("count", len(candles)).Msg("Fetched candles")
	return candles, nil
}

// Pricing fetches the current order book depth for a symbol.
func (c *Client) Pricing(ctx context.Context, symbol string) (models.OrderBook, error) {
	url := fmt.Sprintf("%s/accounts/%s/pricing?instruments=%s", c.baseURL, c.accountID, symbol)

	body, err := c.get(ctx, url)
	if err != nil {
		return models.OrderBook{}, err
	}

	var data pricingResponse
	if err := json.Unmarshal(body, &data); err != nil {
		c.logger.Error().Err(err).Str("response", string(body)).Msg("Error parsing pricing JSON")
		return models.OrderBook{}, fmt.Errorf("parsing JSON: %w", err)
	}
	if len(data.Prices) == 0 {
		return models.OrderBook{}, fmt.Errorf("no pricing data for %s", symbol)
	}

	var book models.OrderBook
	for _, b := range data.Prices[0].Bids {
		price, err := strconv.ParseFloat(b.Price, 64)
		if err != nil {
			return models.OrderBook{}, fmt.Errorf("parsing bid price: %w", err)
		}
		book.Bids = append(book.Bids, models.PriceLevel{Price: price, Liquidity: b.Liquidity})
	}
	for _, a := range data.Prices[0].Asks {
		price, err := strconv.ParseFloat(a.Price, 64)
		if err != nil {
			return models.OrderBook{}, fmt.Errorf("parsing ask price: %w", err)
		}
		book.Asks = append(book.Asks, models.PriceLevel{Price: price, Liquidity: a.Liquidity})
	}

	return book, nil
}

// MidPrice fetches the current mid between best bid and best ask.
func (c *Client) MidPrice(ctx context.Context, symbol string) (float64, error) {
	book, err := c.Pricing(ctx, symbol)
	if err != nil {
		return 0, err
	}

	bid, okBid := book.BestBid()
	ask, okAsk := book.BestAsk()
	if !okBid || !okAsk {
		return 0, fmt.Errorf("order book for %s has no depth", symbol)
	}

	return (bid + ask) / 2, nil
}

func (c *Client) get(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.DoRequest(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response body: %w", err)
	}

	return body, nil
}

// parseCandle converts one raw OANDA candle. Timestamps arrive as
// RFC3339 with nanoseconds; only second precision is kept.
func parseCandle(ts, o, h, l, c string, volume int64) (models.Candle, error) {
	if len(ts) > 19 {
		ts = ts[:19]
	}
	t, err := time.Parse("2006-01-02T15:04:05", ts)
	if err != nil {
		return models.Candle{}, fmt.Errorf("parsing timestamp %q: %w", ts, err)
	}

	var candle models.Candle
	candle.Timestamp = t.UTC().UnixMilli()
	candle.Volume = volume

	for _, f := range []struct {
		raw string
		dst *float64
	}{
		{o, &candle.Open},
		{h, &candle.High},
		{l, &candle.Low},
		{c, &candle.Close},
	} {
		v, err := strconv.ParseFloat(f.raw, 64)
		if err != nil {
			return models.Candle{}, fmt.Errorf("parsing price %q: %w", f.raw, err)
		}
		*f.dst = v
	}

	return candle, nil
}
