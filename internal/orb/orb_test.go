package orb

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"testing"
	"time"

	"forex-trader/config"
	"forex-trader/internal/session"
	"forex-trader/models"
)

var sessionOpen = time.Date(2025, 6, 10, 7, 0, 0, 0, time.UTC)

// activeStatus fakes a London session that opened minutesAgo minutes ago.
func activeStatus(minutesAgo int) models.SessionStatus {
	return models.SessionStatus{
		Name:             "London",
		OpenedAt:         sessionOpen,
		Message:          fmt.Sprintf("London session opened %dm ago", minutesAgo),
		Major:            true,
		MinutesSinceOpen: minutesAgo,
	}
}

// candleAt places a candle at an offset from the session open.
func candleAt(offset time.Duration, o, h, l, c float64) models.Candle {
	return models.Candle{
		Timestamp: sessionOpen.Add(offset).UnixMilli(),
		Open:      o,
		High:      h,
		Low:       l,
		Close:     c,
		Volume:    100,
	}
}

func TestAnalyzeNoSession(t *testing.T) {
	status := models.SessionStatus{Message: "No major session active"}
	got := Analyze(status, nil, "15m", 15)
	want := []string{"[N/A] No major session active"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Analyze() = %v, want %v", got, want)
	}
}

func TestAnalyzeMinorSessionStopsEarly(t *testing.T) {
	status := models.SessionStatus{
		Name:     "Sydney",
		OpenedAt: sessionOpen,
		Message:  "Sydney session opened 5m ago",
		Major:    false,
	}
	got := Analyze(status, []models.Candle{candleAt(0, 1, 2, 0.5, 1.5)}, "15m", 15)
	want := []string{"[Sydney] Sydney session opened 5m ago"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Analyze() = %v, want %v", got, want)
	}
}

func TestAnalyzeCautionDuringChopWindow(t *testing.T) {
	status := activeStatus(10)
	got := Analyze(status, nil, "15m", 15)
	if len(got) < 2 || got[1] != "Caution: First 10m of London. High risk of chop/fakeout." {
		t.Errorf("missing caution line, got %v", got)
	}

	status = activeStatus(45)
	for _, line := range Analyze(status, nil, "15m", 15) {
		if line == "Caution: First 45m of London. High risk of chop/fakeout." {
			t.Error("caution line should not appear past 30 minutes")
		}
	}
}

func TestAnalyzeNoCandlesSinceOpen(t *testing.T) {
	got := Analyze(activeStatus(45), nil, "15m", 15)
	want := []string{
		"[London] " + activeStatus(45).Message,
		"No 15m candles found since session open.",
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Analyze() = %v, want %v", got, want)
	}
}

func TestAnalyzeNoCandlesInWindow(t *testing.T) {
	// All candles sit at or after the ORB end.
	candles := []models.Candle{
		candleAt(15*time.Minute, 150.1, 150.3, 150.0, 150.2),
		candleAt(30*time.Minute, 150.2, 150.4, 150.1, 150.3),
	}
	got := Analyze(activeStatus(45), candles, "15m", 15)
	if got[len(got)-1] != "No candles found within the 15-min ORB window." {
		t.Errorf("Analyze() = %v, want trailing no-window message", got)
	}
}

func TestAnalyzeBreakout(t *testing.T) {
	rangeCandles := []models.Candle{
		candleAt(0, 150.0, 150.2, 149.9, 150.1),
		candleAt(5*time.Minute, 150.1, 150.15, 150.0, 150.1),
	}

	tests := []struct {
		name      string
		breakout  models.Candle
		wantLine  string
		wantLines int
	}{
		{
			name:      "upward breakout",
			breakout:  candleAt(15*time.Minute, 150.1, 150.3, 150.0, 150.25),
			wantLine:  "Breakout UP occurred at 2025-06-10 07:15:00.",
			wantLines: 3,
		},
		{
			name:      "downward breakout",
			breakout:  candleAt(15*time.Minute, 150.0, 150.1, 149.8, 149.85),
			wantLine:  "Breakout DOWN occurred at 2025-06-10 07:15:00.",
			wantLines: 3,
		},
		{
			name:      "bar crossing both bounds reports up only",
			breakout:  candleAt(15*time.Minute, 150.0, 150.5, 149.5, 150.0),
			wantLine:  "Breakout UP occurred at 2025-06-10 07:15:00.",
			wantLines: 3,
		},
		{
			name:      "candle inside the range is no breakout",
			breakout:  candleAt(15*time.Minute, 150.0, 150.15, 150.0, 150.1),
			wantLines: 2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			candles := append(append([]models.Candle{}, rangeCandles...), tt.breakout)
			got := Analyze(activeStatus(45), candles, "15m", 15)

			if len(got) != tt.wantLines {
				t.Fatalf("got %d lines %v, want %d", len(got), got, tt.wantLines)
			}
			if got[1] != "ORB High=150.2, Low=149.9" {
				t.Errorf("range line = %q, want %q", got[1], "ORB High=150.2, Low=149.9")
			}
			if tt.wantLine != "" && got[2] != tt.wantLine {
				t.Errorf("breakout line = %q, want %q", got[2], tt.wantLine)
			}
		})
	}
}

func TestAnalyzeOnlyFirstCandleAfterWindowCounts(t *testing.T) {
	candles := []models.Candle{
		candleAt(0, 150.0, 150.2, 149.9, 150.1),
		// First post-window candle stays inside the range.
		candleAt(15*time.Minute, 150.0, 150.15, 150.0, 150.1),
		// A later candle breaks out, but it is never examined.
		candleAt(30*time.Minute, 150.1, 151.0, 150.0, 150.9),
	}
	got := Analyze(activeStatus(45), candles, "15m", 15)
	for _, line := range got {
		if line == "Breakout UP occurred at 2025-06-10 07:30:00." {
			t.Errorf("breakout on a later candle must be ignored: %v", got)
		}
	}
	if len(got) != 2 {
		t.Errorf("Analyze() = %v, want session line and range line only", got)
	}
}

type fakeStore struct {
	candles []models.Candle
	err     error
	since   int64
}

func (f *fakeStore) SessionCandles(_ context.Context, _, _ string, since int64) ([]models.Candle, error) {
	f.since = since
	return f.candles, f.err
}

func TestRunQueriesSinceSessionOpen(t *testing.T) {
	clock := session.NewClock(config.DefaultSessions())
	store := &fakeStore{candles: []models.Candle{
		candleAt(0, 150.0, 150.2, 149.9, 150.1),
	}}
	analyzer := NewAnalyzer(clock, store)

	// 09:45 UTC: Tokyo has closed, London (open since 07:00) is active.
	now := sessionOpen.Add(2*time.Hour + 45*time.Minute)
	got := analyzer.Run(context.Background(), "GBP_JPY", "15m", 15, now)

	if store.since != sessionOpen.UnixMilli() {
		t.Errorf("store queried since %d, want session open %d", store.since, sessionOpen.UnixMilli())
	}
	if len(got) != 2 || got[1] != "ORB High=150.2, Low=149.9" {
		t.Errorf("Run() = %v", got)
	}
}

func TestRunStoreFailureDegradesToNoCandles(t *testing.T) {
	clock := session.NewClock(config.DefaultSessions())
	store := &fakeStore{err: errors.New("connection refused")}
	analyzer := NewAnalyzer(clock, store)

	now := sessionOpen.Add(2*time.Hour + 45*time.Minute)
	got := analyzer.Run(context.Background(), "GBP_JPY", "15m", 15, now)
	if got[len(got)-1] != "No 15m candles found since session open." {
		t.Errorf("Run() = %v, want trailing no-candles message", got)
	}
}
