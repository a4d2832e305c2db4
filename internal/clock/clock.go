package clock

import (
	"fmt"
	"time"

	"github.com/julianstephens/grove/internal/constants"
)

// Clock supplies "now". Production code uses System; tests use Fixed.
type Clock interface {
	Now() time.Time
}

// System is the wall clock, always reported in UTC.
type System struct{}

func (System) Now() time.Time { return time.Now().UTC() }

// Fixed always reports the same instant.
type Fixed struct {
	T time.Time
}

func (f Fixed) Now() time.Time { return f.T.UTC() }

// FixedOffset returns a fixed-offset location for a whole-hour UTC offset.
func FixedOffset(hours int) *time.Location {
	return time.FixedZone(fmt.Sprintf("UTC%+d", hours), hours*60*60)
}

// WholeDaysSince returns floor((now - then) / 24h). An instant in the future counts as 0 days.
func WholeDaysSince(then, now time.Time) int {
	d := now.Sub(then)
	if d < 0 {
		return 0
	}
	return int(d / (24 * time.Hour))
}

// Policy converts UTC instants into reference-timezone day keys, period keys and
// posting-window states. The zero value uses UTC+9 with no open windows.
type Policy struct {
	Location *time.Location
	Morning  Window
	Evening  Window
}

// DefaultPolicy returns the observed deployment: UTC+9, morning 06:00-09:00, evening 18:00-24:00.
func DefaultPolicy() Policy {
	morning, _ := ParseWindow(constants.DefaultMorningOpen, constants.DefaultMorningClose)
	evening, _ := ParseWindow(constants.DefaultEveningOpen, constants.DefaultEveningClose)
	return Policy{
		Location: FixedOffset(constants.DefaultUTCOffsetHours),
		Morning:  morning,
		Evening:  evening,
	}
}

func (p Policy) location() *time.Location {
	if p.Location == nil {
		return FixedOffset(constants.DefaultUTCOffsetHours)
	}
	return p.Location
}

// Local converts t into the reference timezone.
func (p Policy) Local(t time.Time) time.Time {
	return t.In(p.location())
}

// DayKey formats t as YYYY-MM-DD in the reference timezone.
func (p Policy) DayKey(t time.Time) string {
	return p.Local(t).Format(constants.DateFormat)
}

// MinuteOfDay returns minutes since local midnight in the reference timezone.
func (p Policy) MinuteOfDay(t time.Time) int {
	local := p.Local(t)
	return local.Hour()*60 + local.Minute()
}

// Window returns the configured window for kind. Unknown kinds get an empty
// window, which reports every instant as after.
func (p Policy) Window(kind constants.EntryKind) Window {
	switch kind {
	case constants.EntryMorning:
		return p.Morning
	case constants.EntryEvening:
		return p.Evening
	default:
		return Window{}
	}
}

// WindowStatus classifies t against the window for kind.
func (p Policy) WindowStatus(kind constants.EntryKind, t time.Time) WindowStatus {
	return p.Window(kind).Status(p.MinuteOfDay(t))
}

// MonthlyPeriodKey formats t as YYYY-MM in the reference timezone.
func (p Policy) MonthlyPeriodKey(t time.Time) string {
	return p.Local(t).Format(constants.MonthFormat)
}

// WeeklyPeriodKey formats t as YYYY-Www using ISO-8601 weeks (Monday first).
// The year is the ISO week-numbering year, so the Monday of 2025-12-29 reports 2026-W01.
func (p Policy) WeeklyPeriodKey(t time.Time) string {
	year, week := p.Local(t).ISOWeek()
	return fmt.Sprintf("%04d-W%02d", year, week)
}

// StartOfDay returns local midnight of t's reference day, as an instant.
func (p Policy) StartOfDay(t time.Time) time.Time {
	local := p.Local(t)
	return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, p.location())
}

// StartOfMonth returns local midnight on the first day of t's reference month.
func (p Policy) StartOfMonth(t time.Time) time.Time {
	local := p.Local(t)
	return time.Date(local.Year(), local.Month(), 1, 0, 0, 0, 0, p.location())
}

// DaysInMonth returns the calendar length of t's reference month.
func (p Policy) DaysInMonth(t time.Time) int {
	first := p.StartOfMonth(t)
	return first.AddDate(0, 1, -1).Day()
}

// DayOfMonth returns t's day of month in the reference timezone.
func (p Policy) DayOfMonth(t time.Time) int {
	return p.Local(t).Day()
}

// AddDays moves t by n calendar days in the reference timezone.
func (p Policy) AddDays(t time.Time, n int) time.Time {
	return p.Local(t).AddDate(0, 0, n)
}

// ParseDayKey parses YYYY-MM-DD as local midnight in the reference timezone.
func (p Policy) ParseDayKey(day string) (time.Time, error) {
	t, err := time.ParseInLocation(constants.DateFormat, day, p.location())
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid day key %q (expected YYYY-MM-DD): %w", day, err)
	}
	return t, nil
}

// DayBounds returns the [start, end) instants covering a day key.
func (p Policy) DayBounds(day string) (time.Time, time.Time, error) {
	start, err := p.ParseDayKey(day)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	return start, start.AddDate(0, 0, 1), nil
}
