package models

import "context"

// CandleSource fetches candles from a market data provider.
type CandleSource interface {
	Candles(ctx context.Context, symbol, granularity string, count int) ([]Candle, error)
}

// SessionCandleStore returns stored candles for a symbol at or after a
// given instant, ascending by timestamp.
type SessionCandleStore interface {
	SessionCandles(ctx context.Context, symbol, timeframe string, since int64) ([]Candle, error)
}
