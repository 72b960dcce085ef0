// Package store provides in-memory SnapshotStore and ResultStore
// implementations.
package store

import (
	"context"
	"sort"
	"sync"

	"github.com/meridian/amc-billing/billing"
)

// =============================================================================
// SNAPSHOT STORE - In-memory consumption records
// =============================================================================

type Memory struct {
	mu      sync.RWMutex
	records map[billing.TrackingKey]*billing.ConsumptionRecord
}

func NewMemory() *Memory {
	return &Memory{records: make(map[billing.TrackingKey]*billing.ConsumptionRecord)}
}

func (m *Memory) Get(_ context.Context, key billing.TrackingKey) (*billing.ConsumptionRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.records[key].Clone(), nil
}

func (m *Memory) Put(_ context.Context, rec *billing.ConsumptionRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records[rec.Key] = rec.Clone()
	return nil
}

func (m *Memory) List(_ context.Context) ([]*billing.ConsumptionRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*billing.ConsumptionRecord, 0, len(m.records))
	for _, rec := range m.records {
		out = append(out, rec.Clone())
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Key.LocationCode != out[j].Key.LocationCode {
			return out[i].Key.LocationCode < out[j].Key.LocationCode
		}
		return out[i].Key.Description < out[j].Key.Description
	})
	return out, nil
}

// =============================================================================
// RESULT STORE - In-memory batch results
// =============================================================================

type Results struct {
	mu      sync.RWMutex
	results map[billing.BatchKey]*billing.BatchResult
}

func NewResults() *Results {
	return &Results{results: make(map[billing.BatchKey]*billing.BatchResult)}
}

// Save replaces any prior result for the same (location, line, quarter).
func (r *Results) Save(_ context.Context, res *billing.BatchResult) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *res
	cp.Skipped = append([]billing.SkippedRow(nil), res.Skipped...)
	r.results[res.Key] = &cp
	return nil
}

func (r *Results) Get(_ context.Context, key billing.BatchKey) (*billing.BatchResult, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	res, ok := r.results[key]
	if !ok {
		return nil, nil
	}
	cp := *res
	cp.Skipped = append([]billing.SkippedRow(nil), res.Skipped...)
	return &cp, nil
}

func (r *Results) ForQuarter(ctx context.Context, quarterID string) ([]*billing.BatchResult, error) {
	all, err := r.List(ctx)
	if err != nil {
		return nil, err
	}
	out := all[:0]
	for _, res := range all {
		if res.Key.Quarter == quarterID {
			out = append(out, res)
		}
	}
	return out, nil
}

func (r *Results) List(_ context.Context) ([]*billing.BatchResult, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*billing.BatchResult, 0, len(r.results))
	for _, res := range r.results {
		cp := *res
		cp.Skipped = append([]billing.SkippedRow(nil), res.Skipped...)
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i].Key, out[j].Key
		if a.Quarter != b.Quarter {
			return a.Quarter < b.Quarter
		}
		if a.LocationCode != b.LocationCode {
			return a.LocationCode < b.LocationCode
		}
		return a.LineID < b.LineID
	})
	return out, nil
}
