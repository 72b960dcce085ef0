/*
Consumption tracker.

Bridges the pure reconciliation engine and the snapshot store: every
reconciliation of a (location, description) key is recorded per quarter, so
reprocessing a quarter is idempotent and later quarters can be validated
against the same history the earlier uploads produced.

CONCURRENCY:
  A single mutex serializes the read-modify-write of records. Batches for
  different locations still contend on it; batch volume is a handful of
  uploads per quarter, so a striped lock is not worth the complexity.
*/
package billing

import (
	"context"
	"sync"

	"github.com/shopspring/decimal"
)

type Tracker struct {
	mu     sync.Mutex
	engine *Engine
	store  SnapshotStore
}

func NewTracker(engine *Engine, store SnapshotStore) *Tracker {
	return &Tracker{engine: engine, store: store}
}

// RecordAndReconcile runs the engine for one contract line and records the
// outcome under (key, quarterID). Only that quarter's snapshot is replaced;
// snapshots for other quarters are untouched, so replaying the same upload
// converges to the same state.
func (t *Tracker) RecordAndReconcile(ctx context.Context, key TrackingKey, quarterID string, reportedConsumed decimal.Decimal, contract ContractLine) (ReconciliationResult, error) {
	res, err := t.engine.Reconcile(contract, quarterID, reportedConsumed)
	if err != nil {
		return ReconciliationResult{}, err
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	rec, err := t.store.Get(ctx, key)
	if err != nil {
		return ReconciliationResult{}, err
	}
	if rec == nil {
		rec = &ConsumptionRecord{Key: key, Quarters: make(map[string]QuarterSnapshot)}
	}
	rec.Quarters[quarterID] = QuarterSnapshot{
		ReportedConsumedQty:      reportedConsumed,
		ExpectedPriorConsumption: res.ExpectedPriorConsumption,
		CurrentQuarterExpected:   res.CurrentQuarterExpected,
		Discrepancy:              res.Discrepancy,
		ItemCount:                contract.ItemCount,
		ServiceDays:              res.ServiceDays,
		UnitPrice:                contract.UnitPrice,
	}
	rec.LastQuarter = quarterID
	if err := t.store.Put(ctx, rec); err != nil {
		return ReconciliationResult{}, err
	}
	return res, nil
}

// History returns the stored record for a tracking key, or nil when the key
// has never been reconciled.
func (t *Tracker) History(ctx context.Context, key TrackingKey) (*ConsumptionRecord, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.store.Get(ctx, key)
}

// Records returns every stored consumption record.
func (t *Tracker) Records(ctx context.Context) ([]*ConsumptionRecord, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.store.List(ctx)
}
