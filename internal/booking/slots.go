package booking

import (
	"fmt"
	"slices"
	"time"
)

// DateLayout is the wire format for appointment dates.
const DateLayout = "2006-01-02"

// Hours is the daily business window and slot width. Slots start at Open and
// the last one ends at or before Close.
type Hours struct {
	Open  time.Duration
	Close time.Duration
	Width time.Duration
}

// DefaultHours is 09:00 to 18:00 in 30-minute slots.
var DefaultHours = Hours{Open: 9 * time.Hour, Close: 18 * time.Hour, Width: 30 * time.Minute}

// Slots lists slot start times as HH:MM.
func (h Hours) Slots() []string {
	if h.Width <= 0 || h.Close <= h.Open {
		return nil
	}
	var out []string
	for t := h.Open; t+h.Width <= h.Close; t += h.Width {
		out = append(out, fmt.Sprintf("%02d:%02d", int(t.Hours()), int(t.Minutes())%60))
	}
	return out
}

// Contains reports whether slot is one of the generated slot times.
func (h Hours) Contains(slot string) bool {
	return slices.Contains(h.Slots(), slot)
}

// Window bounds selectable dates to today through today+Days.
type Window struct {
	Days int
}

// DefaultWindow is the 30-day booking horizon.
var DefaultWindow = Window{Days: 30}

// Bounds returns the first and last selectable dates relative to now.
func (w Window) Bounds(now time.Time) (time.Time, time.Time) {
	y, m, d := now.Date()
	first := time.Date(y, m, d, 0, 0, 0, 0, now.Location())
	return first, first.AddDate(0, 0, w.Days)
}

// Check parses date and verifies it is inside the window.
func (w Window) Check(date string, now time.Time) (time.Time, error) {
	parsed, err := time.ParseInLocation(DateLayout, date, now.Location())
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, date)
	}
	first, last := w.Bounds(now)
	if parsed.Before(first) || parsed.After(last) {
		return time.Time{}, fmt.Errorf("%w: %s", ErrDateOutOfWindow, date)
	}
	return parsed, nil
}
