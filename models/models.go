package models

import (
	"time"
)

// Candle represents a single OHLCV price candle. Timestamp is in
// milliseconds since the Unix epoch, UTC. Candle slices handed to the
// detectors are ascending by Timestamp with no duplicates.
type Candle struct {
	Timestamp int64   `json:"timestamp"`
	Open      float64 `json:"open"`
	High      float64 `json:"high"`
	Low       float64 `json:"low"`
	Close     float64 `json:"close"`
	Volume    int64   `json:"volume,omitempty"`
}

// Time returns the candle timestamp as a UTC time.Time.
func (c Candle) Time() time.Time {
	return time.UnixMilli(c.Timestamp).UTC()
}

// TimeOfDay is a wall-clock time of day in UTC.
type TimeOfDay struct {
	Hour   int
	Minute int
}

// Session is a named daily UTC trading window. Windows may wrap past
// midnight: an End hour numerically before Start still means a positive span.
type Session struct {
	Name  string
	Start TimeOfDay
	End   TimeOfDay
	Major bool
}

// SessionStatus is the result of classifying an instant against the
// session calendar. When no major session is active, Name is empty and
// OpenedAt is the zero time.
type SessionStatus struct {
	Name             string
	OpenedAt         time.Time
	Message          string
	Major            bool
	MinutesSinceOpen int
}

// Active reports whether the instant fell inside a session window.
func (s SessionStatus) Active() bool {
	return !s.OpenedAt.IsZero()
}

// SwingPoint is a strict local maximum of the high series. Index is the
// position within the candle window the detector was given.
type SwingPoint struct {
	Price float64 `json:"price"`
	Index int     `json:"index"`
}

// GapKind is the direction of a fair value gap.
type GapKind string

const (
	GapBullish GapKind = "bullish"
	GapBearish GapKind = "bearish"
)

// FairValueGap is a three-candle price imbalance. Top > Bottom always.
type FairValueGap struct {
	Kind   GapKind `json:"type"`
	Top    float64 `json:"top"`
	Bottom float64 `json:"bottom"`
}

// LiquidityZoneReport summarises support/resistance structure for one
// timeframe. SwingHigh is nil when the window holds no qualifying swing.
type LiquidityZoneReport struct {
	LocalHigh float64        `json:"local_high"`
	LocalLow  float64        `json:"local_low"`
	SwingHigh *float64       `json:"swing_high"`
	LastClose float64        `json:"last_close"`
	Gaps      []FairValueGap `json:"fvgs"`
}

// PriceLevel is one order book level.
type PriceLevel struct {
	Price     float64 `json:"price"`
	Liquidity float64 `json:"liquidity"`
}

// OrderBook holds bid/ask depth for a symbol.
type OrderBook struct {
	Bids []PriceLevel `json:"bids"`
	Asks []PriceLevel `json:"asks"`
}

// BestBid returns the top-of-book bid, if any.
func (o OrderBook) BestBid() (float64, bool) {
	if len(o.Bids) == 0 {
		return 0, false
	}
	return o.Bids[0].Price, true
}

// BestAsk returns the top-of-book ask, if any.
func (o OrderBook) BestAsk() (float64, bool) {
	if len(o.Asks) == 0 {
		return 0, false
	}
	return o.Asks[0].Price, true
}

// Paper trade status values.
const (
	TradeStatusOpen   = "OPEN"
	TradeStatusClosed = "CLOSED"
)

// PaperTrade is one simulated trade taken on an AI decision.
type PaperTrade struct {
	ID         int64     `json:"id"`
	Model      string    `json:"model"`
	Symbol     string    `json:"symbol"`
	Direction  string    `json:"direction"`
	EntryPrice float64   `json:"entry_price"`
	ExitPrice  float64   `json:"exit_price,omitempty"`
	ProfitLoss float64   `json:"profit_loss,omitempty"`
	EntryTime  time.Time `json:"entry_time"`
	ExitTime   time.Time `json:"exit_time,omitempty"`
	Status     string    `json:"status"`
	AIReason   string    `json:"ai_reason,omitempty"`
}

// NewsItem is one financial news headline with sentiment.
type NewsItem struct {
	Title     string  `json:"title"`
	Date      string  `json:"date"`
	Sentiment string  `json:"sentiment"`
	HoursAgo  float64 `json:"hours_ago"`
}

// TradeDecision is the JSON object the LLM answers with.
type TradeDecision struct {
	Action     string  `json:"action"` // BUY, SELL, HOLD
	Direction  string  `json:"direction,omitempty"`
	EntryPrice float64 `json:"entry_price,omitempty"`
	StopLoss   float64 `json:"stop_loss,omitempty"`
	TakeProfit float64 `json:"take_profit,omitempty"`
	Confidence string  `json:"confidence,omitempty"`
	Reason     string  `json:"reason,omitempty"`
}
