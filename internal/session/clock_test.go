package session

import (
	"testing"
	"time"

	"forex-trader/config"
	"forex-trader/models"
)

func utc(hour, min int) time.Time {
	return time.Date(2025, 6, 10, hour, min, 0, 0, time.UTC)
}

func TestClockStatus(t *testing.T) {
	clock := NewClock(config.DefaultSessions())

	tests := []struct {
		name        string
		now         time.Time
		wantSession string
		wantMinutes int
		wantActive  bool
	}{
		{
			name:        "exactly at Tokyo open",
			now:         utc(0, 0),
			wantSession: "Tokyo",
			wantMinutes: 0,
			wantActive:  true,
		},
		{
			name:        "middle of Tokyo",
			now:         utc(2, 35),
			wantSession: "Tokyo",
			wantMinutes: 155,
			wantActive:  true,
		},
		{
			name:        "Tokyo/London overlap goes to Tokyo",
			now:         utc(7, 30),
			wantSession: "Tokyo",
			wantMinutes: 450,
			wantActive:  true,
		},
		{
			name:        "London after Tokyo close",
			now:         utc(9, 0),
			wantSession: "London",
			wantMinutes: 120,
			wantActive:  true,
		},
		{
			name:        "London/New York overlap goes to London",
			now:         utc(13, 0),
			wantSession: "London",
			wantMinutes: 360,
			wantActive:  true,
		},
		{
			name:        "New York after London close",
			now:         utc(16, 15),
			wantSession: "New York",
			wantMinutes: 255,
			wantActive:  true,
		},
		{
			name:       "dead zone after New York close",
			now:        utc(22, 30),
			wantActive: false,
		},
		{
			name:       "one minute before Tokyo open",
			now:        utc(23, 59),
			wantActive: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st := clock.Status(tt.now)
			if st.Active() != tt.wantActive {
				t.Fatalf("Active() = %v, want %v", st.Active(), tt.wantActive)
			}
			if !tt.wantActive {
				if st.Message != "No major session active" {
					t.Errorf("Message = %q, want %q", st.Message, "No major session active")
				}
				if st.Name != "" || st.Major {
					t.Errorf("inactive status carries session fields: %+v", st)
				}
				return
			}
			if st.Name != tt.wantSession {
				t.Errorf("Name = %q, want %q", st.Name, tt.wantSession)
			}
			if st.MinutesSinceOpen != tt.wantMinutes {
				t.Errorf("MinutesSinceOpen = %d, want %d", st.MinutesSinceOpen, tt.wantMinutes)
			}
			if !st.Major {
				t.Errorf("Major = false, want true")
			}
		})
	}
}

func TestClockStatusMessage(t *testing.T) {
	clock := NewClock(config.DefaultSessions())

	st := clock.Status(utc(0, 0))
	if st.Message != "Tokyo session opened 0s ago" {
		t.Errorf("Message = %q, want %q", st.Message, "Tokyo session opened 0s ago")
	}

	st = clock.Status(utc(2, 35))
	if st.Message != "Tokyo session opened 2h 35m ago" {
		t.Errorf("Message = %q, want %q", st.Message, "Tokyo session opened 2h 35m ago")
	}
}

func TestClockStatusMidnightWrap(t *testing.T) {
	// Sydney-style window crossing midnight: 22:00-06:00 UTC.
	clock := NewClock([]models.Session{
		{Name: "Sydney", Start: models.TimeOfDay{Hour: 22}, End: models.TimeOfDay{Hour: 6}, Major: true},
	})

	st := clock.Status(utc(1, 0))
	if !st.Active() {
		t.Fatal("expected Sydney to be active at 01:00")
	}
	if want := time.Date(2025, 6, 9, 22, 0, 0, 0, time.UTC); !st.OpenedAt.Equal(want) {
		t.Errorf("OpenedAt = %v, want %v (previous day)", st.OpenedAt, want)
	}
	if st.MinutesSinceOpen != 180 {
		t.Errorf("MinutesSinceOpen = %d, want 180", st.MinutesSinceOpen)
	}

	if st := clock.Status(utc(12, 0)); st.Active() {
		t.Errorf("expected no session at 12:00, got %q", st.Name)
	}
}

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		d    time.Duration
		want string
	}{
		{0, "0s"},
		{45 * time.Second, "45s"},
		{59 * time.Second, "59s"},
		{60 * time.Second, "1m"},
		{12 * time.Minute, "12m"},
		{59*time.Minute + 59*time.Second, "59m"},
		{time.Hour, "1h 0m"},
		{2*time.Hour + 5*time.Minute, "2h 5m"},
	}

	for _, tt := range tests {
		if got := formatDuration(tt.d); got != tt.want {
			t.Errorf("formatDuration(%v) = %q, want %q", tt.d, got, tt.want)
		}
	}
}
