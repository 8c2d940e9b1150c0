package structure

import (
	"context"
	"sync"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"forex-trader/config"
	"forex-trader/models"
)

// MultiTimeframe runs the zone detector across the configured timeframe
// set and merges the per-timeframe reports. Timeframes whose fetch
// failed or returned nothing are omitted from the result; partial
// coverage is expected when the provider is flaky.
type MultiTimeframe struct {
	source      models.CandleSource
	timeframes  []config.Timeframe
	detector    *Detector
	candleCount int
	logger      zerolog.Logger
}

// NewMultiTimeframe wires a candle source and detector to the fixed
// timeframe set. The order of timeframes is the rendering order of the
// merged report.
func NewMultiTimeframe(source models.CandleSource, timeframes []config.Timeframe, detector *Detector, candleCount int) *MultiTimeframe {
	return &MultiTimeframe{
		source:      source,
		timeframes:  timeframes,
		detector:    detector,
		candleCount: candleCount,
		logger:      log.With().Str("component", "multi_timeframe").Logger(),
	}
}

// Timeframes returns the configured timeframe set in rendering order.
func (m *MultiTimeframe) Timeframes() []config.Timeframe {
	return m.timeframes
}

// Report fetches candles for every timeframe and computes each zone
// report. Fetches run in parallel; a failure on one timeframe never
// aborts the others, its key is simply absent from the result.
func (m *MultiTimeframe) Report(ctx context.Context, symbol string) map[string]models.LiquidityZoneReport {
	result := make(map[string]models.LiquidityZoneReport, len(m.timeframes))

	var wg sync.WaitGroup
	var mu sync.Mutex

	for _, tf := range m.timeframes {
		wg.Add(1)

		go func(tf config.Timeframe) {
			defer wg.Done()

			candles, err := m.source.Candles(ctx, symbol, tf.Granularity, m.candleCount)
			if err != nil {
				m.logger.Warn().Err(err).Str("timeframe", tf.Label).Msg("Candle fetch failed, skipping timeframe")
				return
			}

			report := m.detector.Zones(candles)
			if report == nil {
				m.logger.Warn().Str("timeframe", tf.Label).Msg("No candles returned, skipping timeframe")
				return
			}

			mu.Lock()
			result[tf.Label] = *report
			mu.Unlock()
		}(tf)
	}

	wg.Wait()
	return result
}
