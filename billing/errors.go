/*
errors.go - Centralized error types for the billing core

PURPOSE:
  All error types in one place. The batch processor maps these onto row
  outcomes: some errors skip the row, some fail the row, none abort the
  batch (see batch.go).

ERROR CATEGORIES:
  1. Calendar errors  - unknown quarter identifiers (data/config errors)
  2. Matching errors  - contract lookup misses and collaborator failures
  3. Input errors     - rows missing required fields

USAGE:
  if errors.Is(err, billing.ErrUnknownQuarter) { ... }
*/
package billing

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrUnknownQuarter is returned for quarter identifiers outside the
	// fixed twelve-quarter sequence. Fatal to the row or lookup, never to
	// the batch.
	ErrUnknownQuarter = errors.New("unknown quarter identifier")

	// ErrNoContractMatch means both the primary and the fallback contract
	// lookup came back empty. Expected; recorded as a skipped row.
	ErrNoContractMatch = errors.New("no contract match")

	// ErrMissingFields means a row carries neither a description nor a
	// usable quantity/price pair. Expected; recorded as a skipped row.
	ErrMissingFields = errors.New("missing required fields")

	// ErrLookupFailure is a transient contract-lookup collaborator error.
	// The batch processor logs it and treats the row as unmatched.
	ErrLookupFailure = errors.New("contract lookup failure")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// UnknownQuarterError reports the identifier that failed to resolve.
type UnknownQuarterError struct {
	ID string
}

func (e *UnknownQuarterError) Error() string {
	return fmt.Sprintf("unknown quarter identifier %q (expected Q1..Q%d)", e.ID, QuarterCount)
}

func (e *UnknownQuarterError) Unwrap() error { return ErrUnknownQuarter }

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsRowSkip reports whether the error is an expected per-row condition that
// the batch processor records as a skip instead of a failure.
func IsRowSkip(err error) bool {
	return errors.Is(err, ErrNoContractMatch) || errors.Is(err, ErrMissingFields)
}

// ReasonFor maps an expected per-row error onto its recorded skip reason.
func ReasonFor(err error) SkipReason {
	if errors.Is(err, ErrMissingFields) {
		return SkipMissingFields
	}
	return SkipNoMatch
}

// IsTransient reports whether the error might succeed on retry.
func IsTransient(err error) bool {
	return errors.Is(err, ErrLookupFailure)
}
