/*
Batch processor.

Drives the tracker over every row of one uploaded sheet for a fixed
(location, line, quarter). Rows fail individually, never the batch: a row
that cannot be matched or is missing its required fields is recorded as
skipped and processing continues. The batch always completes with a result
covering however many rows succeeded.
*/
package billing

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

// LookupQuery carries the fields a contract lookup matches on.
// Description is already normalized.
type LookupQuery struct {
	Description string
	PlantCode   string
	Quantity    decimal.Decimal
	GrossPrice  decimal.Decimal
}

// ContractLookup is the read-only collaborator resolving upload rows to
// catalog records. A (nil, nil) return means no match. Errors are treated
// as transient; the processor degrades the row to a no-match skip.
type ContractLookup interface {
	// Lookup matches on description plus plant code, quantity and price.
	Lookup(ctx context.Context, q LookupQuery) (*ContractLine, error)

	// LookupFallback matches on plant code, quantity and price only.
	LookupFallback(ctx context.Context, q LookupQuery) (*ContractLine, error)
}

// RowSink receives computed values for merging back into the caller's
// output representation.
type RowSink interface {
	WriteRow(row OutputRow) error
	WriteTotal(total decimal.Decimal) error
}

// DiscardSink ignores everything written to it.
type DiscardSink struct{}

func (DiscardSink) WriteRow(OutputRow) error         { return nil }
func (DiscardSink) WriteTotal(decimal.Decimal) error { return nil }

// LocationResolver maps uploaded location codes to directory entries.
// Satisfied by registry.Directory.
type LocationResolver interface {
	ResolveLocation(code, lineID int) (actualCode int, name, region string)
}

// BatchSpec fixes the identity of one upload.
type BatchSpec struct {
	LocationCode int
	LineID       int
	Quarter      string
	PlantCode    string
}

// Processor orchestrates one upload at a time.
type Processor struct {
	lookup   ContractLookup
	tracker  *Tracker
	results  ResultStore
	resolver LocationResolver
	log      *logrus.Logger
}

func NewProcessor(lookup ContractLookup, tracker *Tracker, results ResultStore, resolver LocationResolver, log *logrus.Logger) *Processor {
	return &Processor{
		lookup:   lookup,
		tracker:  tracker,
		results:  results,
		resolver: resolver,
		log:      log,
	}
}

// Process runs every row of one upload and stores the resulting batch
// result, replacing any prior result for the same (location, line, quarter).
// The quarter is validated up front: an unknown quarter fails the whole
// call, since every row of the upload targets the same quarter.
func (p *Processor) Process(ctx context.Context, spec BatchSpec, rows []InputRow, sink RowSink) (*BatchResult, error) {
	if _, err := p.tracker.engine.Calendar().RangeOf(spec.Quarter); err != nil {
		return nil, err
	}
	if sink == nil {
		sink = DiscardSink{}
	}

	res := &BatchResult{
		ID:               uuid.NewString(),
		Key:              BatchKey{LocationCode: spec.LocationCode, LineID: spec.LineID, Quarter: spec.Quarter},
		TotalRows:        len(rows),
		TotalAmount:      decimal.Zero,
		BaseAmount:       decimal.Zero,
		AdjustmentAmount: decimal.Zero,
		ProcessedAt:      time.Now().UTC(),
	}
	res.ActualLocationCode, res.LocationName, res.Region = p.resolver.ResolveLocation(spec.LocationCode, spec.LineID)

	for _, row := range rows {
		if row.Description == "" && (row.Quantity.IsZero() || row.GrossPrice.IsZero()) {
			res.Skipped = append(res.Skipped, skipRow(row, ReasonFor(ErrMissingFields)))
			continue
		}

		contract, err := p.matchContract(ctx, spec, row)
		if err != nil {
			return nil, err
		}
		if contract == nil {
			res.Skipped = append(res.Skipped, skipRow(row, ReasonFor(ErrNoContractMatch)))
			continue
		}

		key := TrackingKey{
			LocationCode: spec.LocationCode,
			Description:  NormalizeDescription(row.Description),
		}
		outcome, err := p.tracker.RecordAndReconcile(ctx, key, spec.Quarter, row.ConsumedQty, *contract)
		if err != nil {
			// Quarter was validated up front, so this is a store failure.
			return nil, fmt.Errorf("reconcile row %d: %w", row.Number, err)
		}

		res.TotalAmount = res.TotalAmount.Add(outcome.FinalAmount)
		res.BaseAmount = res.BaseAmount.Add(outcome.BaseAmount)
		res.AdjustmentAmount = res.AdjustmentAmount.Add(outcome.AdjustmentAmount)
		res.ProcessedRows++
		if !outcome.Valid {
			res.AdjustedRows++
		}

		if err := sink.WriteRow(OutputRow{
			Number:      row.Number,
			ItemCount:   contract.ItemCount,
			ServiceDays: outcome.ServiceDays,
			Amount:      outcome.FinalAmount,
			Remark:      outcome.Remark,
		}); err != nil {
			return nil, fmt.Errorf("write row %d: %w", row.Number, err)
		}
	}

	if res.TotalAmount.IsPositive() {
		if err := sink.WriteTotal(res.TotalAmount); err != nil {
			return nil, fmt.Errorf("write total: %w", err)
		}
	}

	if err := p.results.Save(ctx, res); err != nil {
		return nil, fmt.Errorf("save batch result: %w", err)
	}

	p.log.WithFields(logrus.Fields{
		"location":  spec.LocationCode,
		"line":      spec.LineID,
		"quarter":   spec.Quarter,
		"processed": res.ProcessedRows,
		"skipped":   len(res.Skipped),
		"adjusted":  res.AdjustedRows,
		"total":     res.TotalAmount.String(),
	}).Info("batch processed")

	return res, nil
}

// matchContract resolves a row against the catalog, degrading transient
// lookup failures to a no-match so one flaky call cannot abort the batch.
func (p *Processor) matchContract(ctx context.Context, spec BatchSpec, row InputRow) (*ContractLine, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	q := LookupQuery{
		Description: NormalizeDescription(row.Description),
		PlantCode:   spec.PlantCode,
		Quantity:    row.Quantity,
		GrossPrice:  row.GrossPrice,
	}

	contract, err := p.lookup.Lookup(ctx, q)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, err
		}
		p.log.WithError(err).WithField("row", row.Number).Warn("contract lookup failed, treating as no match")
		return nil, nil
	}
	if contract != nil {
		return contract, nil
	}

	contract, err = p.lookup.LookupFallback(ctx, q)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, err
		}
		p.log.WithError(err).WithField("row", row.Number).Warn("fallback lookup failed, treating as no match")
		return nil, nil
	}
	return contract, nil
}

func skipRow(row InputRow, reason SkipReason) SkippedRow {
	return SkippedRow{
		RowNumber:   row.Number,
		Reason:      reason,
		Description: row.Description,
		Quantity:    row.Quantity,
		GrossPrice:  row.GrossPrice,
	}
}
