package billing

import "context"

// =============================================================================
// STORE INTERFACES - Persistence boundaries for consumption and batch state
// =============================================================================

// SnapshotStore persists consumption records keyed by tracking key.
// Implementations must not alias returned records with internal state.
type SnapshotStore interface {
	// Get returns the record for key, or nil when none exists.
	Get(ctx context.Context, key TrackingKey) (*ConsumptionRecord, error)

	// Put stores the record wholesale, replacing any prior version.
	Put(ctx context.Context, rec *ConsumptionRecord) error

	// List returns all records, ordered by location code then description.
	List(ctx context.Context) ([]*ConsumptionRecord, error)
}

// ResultStore persists batch results keyed by (location, line, quarter).
type ResultStore interface {
	// Save replaces any prior result for the same key.
	Save(ctx context.Context, res *BatchResult) error

	// Get returns the result for key, or nil when none exists.
	Get(ctx context.Context, key BatchKey) (*BatchResult, error)

	// ForQuarter returns all results for a quarter, ordered by location
	// code then line ID.
	ForQuarter(ctx context.Context, quarterID string) ([]*BatchResult, error)

	// List returns all results, ordered by quarter, location code, line ID.
	List(ctx context.Context) ([]*BatchResult, error)
}
