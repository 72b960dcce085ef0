/*
calendar.go - Fixed billing-quarter calendar

PURPOSE:
  The billing cycle runs on twelve fixed three-month quarters anchored at a
  base year: Q1 opens on June 1 of the base year, and each quarter starts
  where the previous one ended. The calendar is built once at process start
  and never mutated.

INVARIANTS:
  - Quarters are contiguous and non-overlapping: end of Qn is exactly one
    day before the start of Qn+1.
  - Ranges are inclusive on both ends.
  - Unknown identifiers fail with ErrUnknownQuarter. There is deliberately
    no fallback to Q1; callers must surface bad quarter keys.

SEE ALSO:
  - engine.go: Sums per-quarter overlap into expected consumption
  - time.go: Day-granularity date arithmetic
*/
package billing

import (
	"fmt"
	"time"
)

// QuarterCount is the length of the fixed billing sequence.
const QuarterCount = 12

// DefaultBaseYear anchors Q1 at June 1 of this year.
const DefaultBaseYear = 2024

// Quarter is one entry in the fixed billing sequence.
type Quarter struct {
	ID      string // "Q1".."Q12"
	Ordinal int    // 1..QuarterCount
	Start   Date
	End     Date // inclusive
}

// Days returns the inclusive day count of the quarter range.
func (q Quarter) Days() int { return InclusiveDays(q.Start, q.End) }

// Calendar maps quarter identifiers to date ranges and ordinals.
// Immutable after construction; safe for concurrent use.
type Calendar struct {
	baseYear int
	quarters []Quarter
}

// NewCalendar builds the fixed twelve-quarter sequence starting June 1 of
// the base year.
func NewCalendar(baseYear int) *Calendar {
	quarters := make([]Quarter, 0, QuarterCount)
	start := NewDate(baseYear, time.June, 1)
	for i := 1; i <= QuarterCount; i++ {
		next := start.AddMonths(3)
		quarters = append(quarters, Quarter{
			ID:      quarterID(i),
			Ordinal: i,
			Start:   start,
			End:     next.AddDays(-1),
		})
		start = next
	}
	return &Calendar{baseYear: baseYear, quarters: quarters}
}

// BaseYear returns the year Q1 opens in.
func (c *Calendar) BaseYear() int { return c.baseYear }

// Quarters returns the full sequence in ordinal order.
func (c *Calendar) Quarters() []Quarter {
	out := make([]Quarter, len(c.quarters))
	copy(out, c.quarters)
	return out
}

// RangeOf resolves a quarter identifier to its date range.
// Fails with ErrUnknownQuarter for identifiers outside the fixed sequence.
func (c *Calendar) RangeOf(id string) (Quarter, error) {
	n, err := c.OrdinalOf(id)
	if err != nil {
		return Quarter{}, err
	}
	return c.quarters[n-1], nil
}

// ByOrdinal resolves a 1-based ordinal to its quarter.
func (c *Calendar) ByOrdinal(n int) (Quarter, error) {
	if n < 1 || n > len(c.quarters) {
		return Quarter{}, &UnknownQuarterError{ID: quarterID(n)}
	}
	return c.quarters[n-1], nil
}

// OrdinalOf parses a strict "Q<n>" identifier ("Q5" -> 5). Anything else,
// including lowercase or prefixed forms, is unknown.
func (c *Calendar) OrdinalOf(id string) (int, error) {
	if len(id) < 2 || len(id) > 3 || id[0] != 'Q' {
		return 0, &UnknownQuarterError{ID: id}
	}
	n := 0
	for i := 1; i < len(id); i++ {
		if id[i] < '0' || id[i] > '9' {
			return 0, &UnknownQuarterError{ID: id}
		}
		n = n*10 + int(id[i]-'0')
	}
	if n < 1 || n > len(c.quarters) {
		return 0, &UnknownQuarterError{ID: id}
	}
	return n, nil
}

func quarterID(n int) string {
	return fmt.Sprintf("Q%d", n)
}

// OverlapDays returns the inclusive day count of the intersection between a
// contract validity interval and a quarter range, or 0 when they do not
// intersect. Both intervals are inclusive on both ends.
func OverlapDays(validFrom, validTo, quarterStart, quarterEnd Date) int {
	if validTo.Before(quarterStart) || validFrom.After(quarterEnd) {
		return 0
	}
	return InclusiveDays(validFrom.Max(quarterStart), validTo.Min(quarterEnd))
}
