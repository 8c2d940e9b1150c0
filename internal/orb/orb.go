// Package orb reports the opening range of the active trading session
// and the first breakout from it. The output is the ordered plain-text
// status lines that go verbatim into the AI prompt, so wording and
// order are part of the contract.
package orb

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"forex-trader/internal/session"
	"forex-trader/models"
)

// chopWindowMinutes is how long after a session open the market is
// considered prone to fakeouts.
const chopWindowMinutes = 30

// Analyzer combines the session clock with stored session candles.
type Analyzer struct {
	clock  *session.Clock
	store  models.SessionCandleStore
	logger zerolog.Logger
}

// NewAnalyzer creates an ORB analyzer over the given clock and candle store.
func NewAnalyzer(clock *session.Clock, store models.SessionCandleStore) *Analyzer {
	return &Analyzer{
		clock:  clock,
		store:  store,
		logger: log.With().Str("component", "orb").Logger(),
	}
}

// Run classifies now against the session calendar, loads the candles
// recorded since the session opened and analyzes the opening range.
// Store failures degrade to the "no candles" line.
func (a *Analyzer) Run(ctx context.Context, symbol, timeframe string, orbMinutes int, now time.Time) []string {
	status := a.clock.Status(now)

	var candles []models.Candle
	if status.Active() && status.Major {
		var err error
		candles, err = a.store.SessionCandles(ctx, symbol, timeframe, status.OpenedAt.UnixMilli())
		if err != nil {
			a.logger.Warn().Err(err).Str("timeframe", timeframe).Msg("Session candle query failed")
			candles = nil
		}
	}

	return Analyze(status, candles, timeframe, orbMinutes)
}

// Analyze produces the ORB status lines for an already-fetched candle
// series. The series starts at or after the session open, ascending by
// timestamp. When no major session is active only the session line is
// returned.
func Analyze(status models.SessionStatus, candles []models.Candle, timeframe string, orbMinutes int) []string {
	name := status.Name
	if name == "" {
		name = "N/A"
	}
	messages := []string{fmt.Sprintf("[%s] %s", name, status.Message)}

	if !status.Active() || !status.Major {
		return messages
	}

	if status.MinutesSinceOpen < chopWindowMinutes {
		messages = append(messages, fmt.Sprintf(
			"Caution: First %dm of %s. High risk of chop/fakeout.",
			status.MinutesSinceOpen, status.Name))
	}

	if len(candles) == 0 {
		return append(messages, fmt.Sprintf("No %s candles found since session open.", timeframe))
	}

	orbEnd := status.OpenedAt.Add(time.Duration(orbMinutes) * time.Minute).UnixMilli()

	var orbCandles, afterORB []models.Candle
	for _, c := range candles {
		if c.Timestamp < orbEnd {
			orbCandles = append(orbCandles, c)
		} else {
			afterORB = append(afterORB, c)
		}
	}

	if len(orbCandles) == 0 {
		return append(messages, fmt.Sprintf("No candles found within the %d-min ORB window.", orbMinutes))
	}

	orbHigh := orbCandles[0].High
	orbLow := orbCandles[0].Low
	for _, c := range orbCandles[1:] {
		if c.High > orbHigh {
			orbHigh = c.High
		}
		if c.Low < orbLow {
			orbLow = c.Low
		}
	}
	messages = append(messages, fmt.Sprintf("ORB High=%v, Low=%v", orbHigh, orbLow))

	// Only the first candle after the window can signal the breakout.
	// When one bar crosses both bounds, up wins.
	if len(afterORB) > 0 {
		first := afterORB[0]
		ts := first.Time().Format("2006-01-02 15:04:05")
		if first.High > orbHigh {
			messages = append(messages, fmt.Sprintf("Breakout UP occurred at %s.", ts))
		} else if first.Low < orbLow {
			messages = append(messages, fmt.Sprintf("Breakout DOWN occurred at %s.", ts))
		}
	}

	return messages
}
