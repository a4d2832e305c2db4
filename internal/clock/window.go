package clock

import (
	"fmt"
	"strings"
	"time"

	"github.com/julianstephens/grove/internal/constants"
)

// MinutesPerDay is the exclusive upper bound of a window.
const MinutesPerDay = 24 * 60

// WindowStatus is where an instant falls relative to a posting window.
type WindowStatus string

const (
	StatusBefore WindowStatus = "before"
	StatusOpen   WindowStatus = "open"
	StatusAfter  WindowStatus = "after"
)

// Window is a half-open [Open, Close) range of minutes since local midnight.
type Window struct {
	Open  int
	Close int
}

// Status classifies a minute of the day against the window.
func (w Window) Status(minute int) WindowStatus {
	switch {
	case minute < w.Open:
		return StatusBefore
	case minute < w.Close:
		return StatusOpen
	default:
		return StatusAfter
	}
}

// OpensAt formats the opening boundary as HH:MM.
func (w Window) OpensAt() string { return FormatMinutes(w.Open) }

// ClosesAt formats the closing boundary as HH:MM (24:00 for end of day).
func (w Window) ClosesAt() string { return FormatMinutes(w.Close) }

func (w Window) String() string {
	return w.OpensAt() + "-" + w.ClosesAt()
}

// Validate checks 0 <= Open < Close <= 24:00.
func (w Window) Validate() error {
	if w.Open < 0 || w.Close > MinutesPerDay {
		return fmt.Errorf("window %s is outside the day", w)
	}
	if w.Open >= w.Close {
		return fmt.Errorf("window %s must open before it closes", w)
	}
	return nil
}

// ParseMinutes parses HH:MM into minutes since midnight. "24:00" is accepted as end of day.
func ParseMinutes(s string) (int, error) {
	s = strings.TrimSpace(s)
	if s == "24:00" {
		return MinutesPerDay, nil
	}
	t, err := time.Parse(constants.TimeFormat, s)
	if err != nil {
		return 0, fmt.Errorf("invalid time %q (expected HH:MM): %w", s, err)
	}
	return t.Hour()*60 + t.Minute(), nil
}

// FormatMinutes renders minutes since midnight as HH:MM.
func FormatMinutes(m int) string {
	return fmt.Sprintf("%02d:%02d", m/60, m%60)
}

// ParseWindow builds a validated window from two HH:MM strings.
func ParseWindow(open, close string) (Window, error) {
	o, err := ParseMinutes(open)
	if err != nil {
		return Window{}, err
	}
	c, err := ParseMinutes(close)
	if err != nil {
		return Window{}, err
	}
	w := Window{Open: o, Close: c}
	if err := w.Validate(); err != nil {
		return Window{}, err
	}
	return w, nil
}
