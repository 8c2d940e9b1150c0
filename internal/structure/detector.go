// Package structure holds the market structure detectors: swing points,
// fair value gaps and the per-timeframe liquidity zone report built from
// them. All detection is pure and operates on in-memory candle slices
// sorted ascending by timestamp.
package structure

import (
	"fmt"

	"forex-trader/models"
)

// Detector finds market structure in a candle window. Parameters are
// validated once at construction; the detection methods never fail,
// they return empty results when nothing qualifies.
type Detector struct {
	window   int // symmetric swing radius in bars
	lookback int // depth of the recent-history scan
}

// NewDetector creates a detector with the given swing window radius and
// lookback depth.
func NewDetector(window, lookback int) (*Detector, error) {
	if window < 1 {
		return nil, fmt.Errorf("swing window must be >= 1, got %d", window)
	}
	if lookback < 1 {
		return nil, fmt.Errorf("lookback must be >= 1, got %d", lookback)
	}
	return &Detector{window: window, lookback: lookback}, nil
}

// SwingHigh returns the most recent strict local maximum of the high
// series, or nil when no bar in the window has a full set of strictly
// lower neighbors on both sides. A tie with any neighbor disqualifies
// the candidate.
func (d *Detector) SwingHigh(candles []models.Candle) *models.SwingPoint {
	n := len(candles)
	for i := n - d.window - 1; i >= d.window; i-- {
		if d.isStrictHigh(candles, i) {
			return &models.SwingPoint{Price: candles[i].High, Index: i}
		}
	}
	return nil
}

func (d *Detector) isStrictHigh(candles []models.Candle, i int) bool {
	for j := i - d.window; j <= i+d.window; j++ {
		if j == i {
			continue
		}
		if candles[i].High <= candles[j].High {
			return false
		}
	}
	return true
}

// FairValueGaps scans the most recent lookback candle triples for
// three-bar imbalances, most recent first. For a center bar i the gap
// is between bar i-1 and bar i+1; the center bar's own range never
// matters. Bullish and bearish checks are independent per center but
// mutually exclusive for any one triple.
func (d *Detector) FairValueGaps(candles []models.Candle) []models.FairValueGap {
	var gaps []models.FairValueGap

	n := len(candles)
	stop := n - d.lookback - 1
	if stop < 0 {
		stop = 0
	}
	for i := n - 2; i > stop; i-- {
		prev, next := candles[i-1], candles[i+1]
		if prev.High < next.Low {
			gaps = append(gaps, models.FairValueGap{
				Kind:   models.GapBullish,
				Top:    next.Low,
				Bottom: prev.High,
			})
		}
		if prev.Low > next.High {
			gaps = append(gaps, models.FairValueGap{
				Kind:   models.GapBearish,
				Top:    prev.Low,
				Bottom: next.High,
			})
		}
	}
	return gaps
}

// Zones builds the liquidity zone report for one timeframe over the
// most recent lookback candles: the local high/low of the slice, the
// last swing high, all fair value gaps and the final close. Returns nil
// when there are no candles; an empty fetch upstream is an expected
// outcome, not an error.
func (d *Detector) Zones(candles []models.Candle) *models.LiquidityZoneReport {
	if len(candles) == 0 {
		return nil
	}

	recent := candles
	if len(recent) > d.lookback {
		recent = recent[len(recent)-d.lookback:]
	}

	report := models.LiquidityZoneReport{
		LocalHigh: recent[0].High,
		LocalLow:  recent[0].Low,
		LastClose: recent[len(recent)-1].Close,
		Gaps:      d.FairValueGaps(recent),
	}
	for _, c := range recent[1:] {
		if c.High > report.LocalHigh {
			report.LocalHigh = c.High
		}
		if c.Low < report.LocalLow {
			report.LocalLow = c.Low
		}
	}

	if swing := d.SwingHigh(recent); swing != nil {
		price := swing.Price
		report.SwingHigh = &price
	}

	return &report
}
