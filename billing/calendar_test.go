package billing_test

import (
	"errors"
	"testing"
	"time"

	"github.com/meridian/amc-billing/billing"
)

// =============================================================================
// TEST HELPERS
// =============================================================================

func date(y, m, d int) billing.Date {
	return billing.NewDate(y, time.Month(m), d)
}

// =============================================================================
// QUARTER RANGE TESTS
// =============================================================================

func TestCalendar_FirstQuarterRange(t *testing.T) {
	// GIVEN: The fixed calendar based on 2024
	// WHEN: Resolving Q1
	// THEN: Jun 1 2024 through Aug 31 2024, 92 days

	cal := billing.NewCalendar(2024)
	q, err := cal.RangeOf("Q1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !q.Start.Equal(date(2024, 6, 1)) || !q.End.Equal(date(2024, 8, 31)) {
		t.Errorf("Q1 range = %s..%s", q.Start, q.End)
	}
	if q.Days() != 92 {
		t.Errorf("Q1 days = %d, want 92", q.Days())
	}
}

func TestCalendar_ThirdQuarterCrossesYearBoundary(t *testing.T) {
	cal := billing.NewCalendar(2024)
	q, err := cal.RangeOf("Q3")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !q.Start.Equal(date(2024, 12, 1)) || !q.End.Equal(date(2025, 2, 28)) {
		t.Errorf("Q3 range = %s..%s", q.Start, q.End)
	}
	if q.Days() != 90 {
		t.Errorf("Q3 days = %d, want 90", q.Days())
	}
}

func TestCalendar_LastQuarterRange(t *testing.T) {
	cal := billing.NewCalendar(2024)
	q, err := cal.RangeOf("Q12")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !q.Start.Equal(date(2027, 3, 1)) || !q.End.Equal(date(2027, 5, 31)) {
		t.Errorf("Q12 range = %s..%s", q.Start, q.End)
	}
}

func TestCalendar_QuartersAreContiguous(t *testing.T) {
	// Each quarter must start the day after the previous one ends.
	cal := billing.NewCalendar(2024)
	quarters := cal.Quarters()
	if len(quarters) != billing.QuarterCount {
		t.Fatalf("got %d quarters, want %d", len(quarters), billing.QuarterCount)
	}
	for i := 1; i < len(quarters); i++ {
		want := quarters[i-1].End.AddDays(1)
		if !quarters[i].Start.Equal(want) {
			t.Errorf("%s starts %s, want %s", quarters[i].ID, quarters[i].Start, want)
		}
	}
}

func TestCalendar_UnknownQuarterFails(t *testing.T) {
	// GIVEN: The fixed calendar
	// WHEN: Resolving identifiers outside Q1..Q12
	// THEN: UnknownQuarter, never a silent default

	cal := billing.NewCalendar(2024)
	for _, id := range []string{"Q0", "Q13", "q1", "2024-Q1", "", "quarterly"} {
		if _, err := cal.RangeOf(id); !errors.Is(err, billing.ErrUnknownQuarter) {
			t.Errorf("RangeOf(%q) err = %v, want UnknownQuarter", id, err)
		}
	}
}

// =============================================================================
// OVERLAP TESTS
// =============================================================================

func TestOverlapDays_ContractInsideQuarter(t *testing.T) {
	days := billing.OverlapDays(
		date(2024, 6, 10), date(2024, 6, 19),
		date(2024, 6, 1), date(2024, 8, 31))
	if days != 10 {
		t.Errorf("overlap = %d, want 10", days)
	}
}

func TestOverlapDays_NoOverlap(t *testing.T) {
	days := billing.OverlapDays(
		date(2023, 1, 1), date(2024, 5, 31),
		date(2024, 6, 1), date(2024, 8, 31))
	if days != 0 {
		t.Errorf("overlap = %d, want 0", days)
	}
}

func TestOverlapDays_SingleDayTouch(t *testing.T) {
	// Contract ends on the quarter's first day: one billable day.
	days := billing.OverlapDays(
		date(2024, 1, 1), date(2024, 6, 1),
		date(2024, 6, 1), date(2024, 8, 31))
	if days != 1 {
		t.Errorf("overlap = %d, want 1", days)
	}
}

func TestOverlapDays_FullCalendarRoundTrip(t *testing.T) {
	// GIVEN: A contract spanning the entire 12-quarter calendar
	// WHEN: Summing its overlap with every quarter
	// THEN: Exactly the contract's inclusive day count, no gaps or
	//       double counting

	cal := billing.NewCalendar(2024)
	from, to := date(2024, 6, 1), date(2027, 5, 31)

	total := 0
	for _, q := range cal.Quarters() {
		total += billing.OverlapDays(from, to, q.Start, q.End)
	}
	want := billing.InclusiveDays(from, to)
	if want != 1095 {
		t.Fatalf("inclusive days = %d, want 1095", want)
	}
	if total != want {
		t.Errorf("summed overlap = %d, want %d", total, want)
	}
}
