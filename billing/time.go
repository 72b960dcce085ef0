package billing

import (
	"time"
)

// =============================================================================
// DATE - Day-granularity time abstraction
// =============================================================================

// Date is a calendar day in UTC. All billing arithmetic happens at day
// granularity; any time-of-day component is discarded on construction so that
// overlap counts never pick up partial-day off-by-ones.
type Date struct {
	Time time.Time
}

// NewDate constructs a Date at UTC midnight.
func NewDate(year int, month time.Month, day int) Date {
	return Date{Time: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// ParseDate parses a YYYY-MM-DD string.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		return Date{}, err
	}
	return Date{Time: t}, nil
}

// FromTime truncates an arbitrary timestamp to its UTC calendar day.
func FromTime(t time.Time) Date {
	u := t.UTC()
	return NewDate(u.Year(), u.Month(), u.Day())
}

// Comparison
func (d Date) Before(other Date) bool        { return d.normalize().Before(other.normalize()) }
func (d Date) Equal(other Date) bool         { return d.normalize().Equal(other.normalize()) }
func (d Date) After(other Date) bool         { return d.normalize().After(other.normalize()) }
func (d Date) BeforeOrEqual(other Date) bool { return d.Before(other) || d.Equal(other) }
func (d Date) AfterOrEqual(other Date) bool  { return d.After(other) || d.Equal(other) }

func (d Date) normalize() time.Time {
	return time.Date(d.Time.Year(), d.Time.Month(), d.Time.Day(), 0, 0, 0, 0, time.UTC)
}

// Arithmetic
func (d Date) AddDays(n int) Date   { return Date{Time: d.Time.AddDate(0, 0, n)} }
func (d Date) AddMonths(n int) Date { return Date{Time: d.Time.AddDate(0, n, 0)} }

// Properties
func (d Date) Year() int         { return d.Time.Year() }
func (d Date) Month() time.Month { return d.Time.Month() }
func (d Date) Day() int          { return d.Time.Day() }
func (d Date) IsZero() bool      { return d.Time.IsZero() }

func (d Date) String() string { return d.Time.Format(time.DateOnly) }

// Min returns the earlier of two dates.
func (d Date) Min(other Date) Date {
	if d.Before(other) {
		return d
	}
	return other
}

// Max returns the later of two dates.
func (d Date) Max(other Date) Date {
	if d.After(other) {
		return d
	}
	return other
}

// DaysBetween returns the signed whole-day distance from one date to another.
func DaysBetween(from, to Date) int {
	return int(to.normalize().Sub(from.normalize()).Hours() / 24)
}

// InclusiveDays returns the day count of [from, to], both endpoints counted.
// Returns 0 when to precedes from.
func InclusiveDays(from, to Date) int {
	if to.Before(from) {
		return 0
	}
	return DaysBetween(from, to) + 1
}
