// Package session classifies a UTC instant against the daily trading
// session calendar.
package session

import (
	"fmt"
	"time"

	"forex-trader/models"
)

// Clock maps an instant to the active major trading session, if any.
// The calendar is fixed at construction; classification is pure.
type Clock struct {
	sessions []models.Session
}

// NewClock creates a session clock for the given calendar. Sessions are
// checked in declaration order, so on overlap the earlier one wins.
func NewClock(sessions []models.Session) *Clock {
	return &Clock{sessions: sessions}
}

// Status classifies now against the calendar. For each session, today's
// start instant is computed from the session's start time of day; if
// now's time of day is earlier than the session start, the start rolls
// back one calendar day. The session span is (end hour - start hour)
// mod 24, which keeps sessions that cross midnight positive.
func (c *Clock) Status(now time.Time) models.SessionStatus {
	now = now.UTC()

	for _, sess := range c.sessions {
		start := time.Date(now.Year(), now.Month(), now.Day(),
			sess.Start.Hour, sess.Start.Minute, 0, 0, time.UTC)
		if secondsOfDay(now) < sess.Start.Hour*3600+sess.Start.Minute*60 {
			start = start.AddDate(0, 0, -1)
		}

		spanHours := ((sess.End.Hour-sess.Start.Hour)%24 + 24) % 24
		end := start.Add(time.Duration(spanHours) * time.Hour)

		if !now.Before(start) && now.Before(end) {
			elapsed := now.Sub(start)
			return models.SessionStatus{
				Name:             sess.Name,
				OpenedAt:         start,
				Message:          fmt.Sprintf("%s session opened %s ago", sess.Name, formatDuration(elapsed)),
				Major:            sess.Major,
				MinutesSinceOpen: int(elapsed.Seconds()) / 60,
			}
		}
	}

	return models.SessionStatus{Message: "No major session active"}
}

func secondsOfDay(t time.Time) int {
	return t.Hour()*3600 + t.Minute()*60 + t.Second()
}

// formatDuration renders an elapsed span the way the status messages
// expect: "45s", "12m", "2h 5m".
func formatDuration(d time.Duration) string {
	seconds := int(d.Seconds())
	if seconds < 60 {
		return fmt.Sprintf("%ds", seconds)
	}
	minutes := seconds / 60
	if minutes < 60 {
		return fmt.Sprintf("%dm", minutes)
	}
	return fmt.Sprintf("%dh %dm", minutes/60, minutes%60)
}
