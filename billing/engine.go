/*
Reconciliation engine.

Evaluates one contract line for one target quarter. All arithmetic runs in
decimal; the only fallible step is resolving the target quarter against the
calendar.

AMOUNT MODEL:
  E = sum over prior quarters of (overlap days x item count)   expected prior
  C = overlap days in target quarter x item count              current expected
  D = reported prior consumption - E                           discrepancy
  B = C x unit price                                           base amount
  A = D x unit price when |D| exceeds the tolerance, else 0    adjustment
  F = max(B - A, 0)                                            final amount

Over-consumption (D > 0) reduces the quarter's bill, under-consumption
raises it. An expired contract bills nothing regardless of discrepancy.
*/
package billing

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// DefaultTolerance is the discrepancy magnitude below which reported and
// expected prior consumption are treated as equal.
var DefaultTolerance = decimal.NewFromFloat(0.01)

// Engine performs quarter-aware reconciliation against a fixed calendar.
type Engine struct {
	calendar  *Calendar
	tolerance decimal.Decimal
}

// NewEngine returns an engine over the given calendar with the default
// discrepancy tolerance.
func NewEngine(cal *Calendar) *Engine {
	return &Engine{calendar: cal, tolerance: DefaultTolerance}
}

// Calendar exposes the engine's quarter calendar.
func (e *Engine) Calendar() *Calendar {
	return e.calendar
}

// ExpectedPriorConsumption sums the expected consumption of every quarter
// strictly before the target quarter: for each, the contract's overlap days
// with the quarter times the per-day item count.
func (e *Engine) ExpectedPriorConsumption(contract ContractLine, target Quarter) decimal.Decimal {
	total := decimal.Zero
	for _, q := range e.calendar.Quarters() {
		if q.Ordinal >= target.Ordinal {
			break
		}
		days := OverlapDays(contract.ValidFrom, contract.ValidTo, q.Start, q.End)
		if days > 0 {
			total = total.Add(contract.ItemCount.Mul(decimal.NewFromInt(int64(days))))
		}
	}
	return total
}

// Reconcile evaluates a contract line for the quarter named by quarterID,
// given the consumption the upload reports for all prior quarters combined.
// The only error is an unknown quarter identifier.
func (e *Engine) Reconcile(contract ContractLine, quarterID string, reportedConsumed decimal.Decimal) (ReconciliationResult, error) {
	target, err := e.calendar.RangeOf(quarterID)
	if err != nil {
		return ReconciliationResult{}, err
	}

	// Expired before the quarter even starts: nothing to bill.
	if contract.ValidTo.Before(target.Start) {
		return ReconciliationResult{
			Valid:  true,
			Remark: fmt.Sprintf("AMC expired on %s. No billing for %s.", contract.ValidTo, target.ID),
		}, nil
	}

	serviceDays := OverlapDays(contract.ValidFrom, contract.ValidTo, target.Start, target.End)
	expected := e.ExpectedPriorConsumption(contract, target)
	currentExpected := contract.ItemCount.Mul(decimal.NewFromInt(int64(serviceDays)))
	discrepancy := reportedConsumed.Sub(expected)

	base := currentExpected.Mul(contract.UnitPrice)
	adjustment := decimal.Zero
	valid := true
	remark := ""

	if discrepancy.Abs().GreaterThan(e.tolerance) {
		valid = false
		adjustment = discrepancy.Mul(contract.UnitPrice)
		kind := "Excess"
		if discrepancy.IsNegative() {
			kind = "Deficit"
		}
		remark = fmt.Sprintf(
			"%s consumption detected. Previous quarters expected: %s, actual: %s, Variance: %s, Amount adjustment: %s",
			kind, expected, reportedConsumed, discrepancy, adjustment)
	}

	final := base.Sub(adjustment)
	if final.IsNegative() {
		final = decimal.Zero
		if remark != "" {
			remark += ". "
		}
		remark += "Adjustment exceeds base amount; billed amount floored at zero"
	}

	return ReconciliationResult{
		Valid:                    valid,
		Discrepancy:              discrepancy,
		ExpectedPriorConsumption: expected,
		CurrentQuarterExpected:   currentExpected,
		BaseAmount:               base,
		AdjustmentAmount:         adjustment,
		FinalAmount:              final,
		ServiceDays:              serviceDays,
		Remark:                   remark,
	}, nil
}
