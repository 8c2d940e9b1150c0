package structure

import (
	"context"
	"errors"
	"sync"
	"testing"

	"forex-trader/config"
	"forex-trader/models"
)

// fakeSource serves canned candles per granularity code. Fetches happen
// concurrently, so call tracking is guarded.
type fakeSource struct {
	mu    sync.Mutex
	data  map[string][]models.Candle
	fail  map[string]bool
	calls []string
}

func (f *fakeSource) Candles(_ context.Context, _ string, granularity string, _ int) ([]models.Candle, error) {
	f.mu.Lock()
	f.calls = append(f.calls, granularity)
	f.mu.Unlock()
	if f.fail[granularity] {
		return nil, errors.New("upstream unavailable")
	}
	return f.data[granularity], nil
}

func TestMultiTimeframeReport(t *testing.T) {
	series := bars(
		[]float64{10, 12, 10, 11, 14, 15},
		[]float64{9, 10.5, 9.5, 9.2, 12, 13},
	)

	source := &fakeSource{
		data: map[string][]models.Candle{
			"H4":  series,
			"H1":  series,
			"M15": series,
		},
	}

	d := mustDetector(t, 1, 50)
	mtf := NewMultiTimeframe(source, config.DefaultTimeframes(), d, 100)

	report := mtf.Report(context.Background(), "GBP_JPY")
	for _, label := range []string{"4h", "1h", "15m"} {
		r, ok := report[label]
		if !ok {
			t.Fatalf("missing timeframe %q in report", label)
		}
		if r.LocalHigh != 15 || r.LocalLow != 9 || r.LastClose != 14 {
			t.Errorf("%s report = %+v", label, r)
		}
	}
}

func TestMultiTimeframeOmitsFailedFetches(t *testing.T) {
	series := bars([]float64{10, 12, 10}, []float64{9, 10, 9})

	source := &fakeSource{
		data: map[string][]models.Candle{
			"H4":  series,
			"M15": nil, // provider returned nothing
		},
		fail: map[string]bool{"H1": true},
	}

	d := mustDetector(t, 1, 50)
	mtf := NewMultiTimeframe(source, config.DefaultTimeframes(), d, 100)

	report := mtf.Report(context.Background(), "GBP_JPY")
	if len(report) != 1 {
		t.Fatalf("got %d timeframes, want 1: %+v", len(report), report)
	}
	if _, ok := report["4h"]; !ok {
		t.Error("expected the healthy 4h timeframe to survive")
	}
	if len(source.calls) != 3 {
		t.Errorf("got %d fetches, want 3 (one per timeframe)", len(source.calls))
	}
}
