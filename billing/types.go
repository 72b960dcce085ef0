/*
Package billing implements quarter-aware reconciliation of AMC (annual
maintenance contract) service-line items.

PURPOSE:
  A location uploads one sheet of service-line rows per billing quarter.
  Each row is matched against the contract catalog, and the billable amount
  for the quarter is computed from the contract's item count, unit price and
  the days the contract is live inside the quarter - corrected for any
  difference between the consumption the upload reports for prior quarters
  and what the calendar says should have been consumed.

KEY CONCEPTS IN THIS FILE (types.go):
  - ContractLine: the matched catalog record a row is billed against
  - InputRow / OutputRow: what the batch processor reads and emits
  - TrackingKey / ConsumptionRecord / QuarterSnapshot: cross-quarter state
  - ReconciliationResult: one engine evaluation
  - BatchResult: the outcome of one (location, line, quarter) upload

DESIGN PRINCIPLES:
  1. Precision: decimal.Decimal for every quantity and amount
  2. Purity: the engine is a pure function of its inputs plus the calendar
  3. Replaceability: tracker and result state sit behind store interfaces

SEE ALSO:
  - engine.go: The reconciliation arithmetic
  - tracker.go: Cross-quarter consumption state
  - batch.go: Row-by-row orchestration
*/
package billing

import (
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// CONTRACT LINE - Matched catalog record (read-only)
// =============================================================================

// ContractLine is a contract catalog record as returned by the lookup
// collaborator. Sourced externally per upload row; never mutated here.
type ContractLine struct {
	PlantCode   string
	Description string
	ItemCount   decimal.Decimal // items serviced per day
	UnitPrice   decimal.Decimal
	ValidFrom   Date
	ValidTo     Date // inclusive
}

// Active reports whether the contract validity interval reaches the given
// quarter at all.
func (c ContractLine) Active(q Quarter) bool {
	return OverlapDays(c.ValidFrom, c.ValidTo, q.Start, q.End) > 0
}

// =============================================================================
// ROWS - Batch processor input and output
// =============================================================================

// InputRow is one uploaded sheet row. ConsumedQty is the cumulative quantity
// the uploader reports as consumed through the quarter before the target
// quarter; zero when the column is absent.
type InputRow struct {
	Number      int
	Description string
	Quantity    decimal.Decimal
	GrossPrice  decimal.Decimal
	ConsumedQty decimal.Decimal
}

// OutputRow carries the computed values the sink merges back into the
// output representation of a processed row.
type OutputRow struct {
	Number      int
	ItemCount   decimal.Decimal
	ServiceDays int
	Amount      decimal.Decimal
	Remark      string
}

// =============================================================================
// CONSUMPTION STATE - One record per (location, description)
// =============================================================================

// TrackingKey identifies a contract line across uploads.
type TrackingKey struct {
	LocationCode int
	Description  string // normalized, see NormalizeDescription
}

// QuarterSnapshot captures one reconciliation of a tracking key for one
// quarter. Reprocessing the quarter overwrites the snapshot wholesale.
type QuarterSnapshot struct {
	ReportedConsumedQty      decimal.Decimal
	ExpectedPriorConsumption decimal.Decimal
	CurrentQuarterExpected   decimal.Decimal
	Discrepancy              decimal.Decimal
	ItemCount                decimal.Decimal
	ServiceDays              int
	UnitPrice                decimal.Decimal
}

// ConsumptionRecord accumulates quarter snapshots for one tracking key.
// Owned exclusively by the Tracker.
type ConsumptionRecord struct {
	Key         TrackingKey
	Quarters    map[string]QuarterSnapshot
	LastQuarter string
}

// Clone returns a deep copy so store implementations can hand out records
// without aliasing internal state.
func (r *ConsumptionRecord) Clone() *ConsumptionRecord {
	if r == nil {
		return nil
	}
	out := &ConsumptionRecord{Key: r.Key, LastQuarter: r.LastQuarter}
	out.Quarters = make(map[string]QuarterSnapshot, len(r.Quarters))
	for q, s := range r.Quarters {
		out.Quarters[q] = s
	}
	return out
}

// =============================================================================
// RECONCILIATION RESULT - One engine evaluation
// =============================================================================

// ReconciliationResult is the full output of one engine evaluation.
// Valid is false when the reported prior consumption deviates from the
// calendar-derived expectation by more than the tolerance.
type ReconciliationResult struct {
	Valid                    bool
	Discrepancy              decimal.Decimal
	ExpectedPriorConsumption decimal.Decimal
	CurrentQuarterExpected   decimal.Decimal
	BaseAmount               decimal.Decimal
	AdjustmentAmount         decimal.Decimal
	FinalAmount              decimal.Decimal
	ServiceDays              int
	Remark                   string
}

// =============================================================================
// BATCH RESULT - One per (location, line, quarter) upload
// =============================================================================

// SkipReason classifies why a row was not billed.
type SkipReason string

const (
	SkipMissingFields SkipReason = "missing-fields"
	SkipNoMatch       SkipReason = "no-match"
)

// SkippedRow records one skipped row for the audit trail.
type SkippedRow struct {
	RowNumber   int
	Reason      SkipReason
	Description string
	Quantity    decimal.Decimal
	GrossPrice  decimal.Decimal
}

// BatchKey identifies one upload. Reprocessing the same key fully replaces
// the prior result.
type BatchKey struct {
	LocationCode int
	LineID       int
	Quarter      string
}

// BatchResult is the aggregate outcome of one processed upload.
type BatchResult struct {
	ID                 string
	Key                BatchKey
	ActualLocationCode int
	LocationName       string
	Region             string
	TotalAmount        decimal.Decimal
	BaseAmount         decimal.Decimal
	AdjustmentAmount   decimal.Decimal
	TotalRows          int
	ProcessedRows      int
	AdjustedRows       int
	Skipped            []SkippedRow
	ProcessedAt        time.Time
}
