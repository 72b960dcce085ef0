package billing_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meridian/amc-billing/billing"
	"github.com/meridian/amc-billing/billing/store"
)

func newTestTracker() *billing.Tracker {
	return billing.NewTracker(newTestEngine(), store.NewMemory())
}

func TestTracker_RecordsQuarterSnapshot(t *testing.T) {
	// GIVEN: An empty tracker
	// WHEN: Reconciling one key for Q1
	// THEN: A snapshot for Q1 exists with the engine's numbers

	ctx := context.Background()
	tracker := newTestTracker()
	key := billing.TrackingKey{LocationCode: 4150, Description: "amc:fire extinguisher maintenance"}

	res, err := tracker.RecordAndReconcile(ctx, key, "Q1", dec(0), yearContract())
	require.NoError(t, err)
	require.True(t, res.Valid)

	rec, err := tracker.History(ctx, key)
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.Equal(t, "Q1", rec.LastQuarter)

	snap, ok := rec.Quarters["Q1"]
	require.True(t, ok)
	assert.Equal(t, 92, snap.ServiceDays)
	assert.True(t, snap.ExpectedPriorConsumption.IsZero())
	assert.True(t, snap.CurrentQuarterExpected.Equal(dec(184)))
}

func TestTracker_ReprocessingQuarterIsIdempotent(t *testing.T) {
	// GIVEN: A key already reconciled for Q3
	// WHEN: Reconciling Q3 again with identical inputs
	// THEN: Identical result and a single unchanged snapshot

	ctx := context.Background()
	tracker := newTestTracker()
	key := billing.TrackingKey{LocationCode: 4150, Description: "amc:fire extinguisher maintenance"}

	first, err := tracker.RecordAndReconcile(ctx, key, "Q3", dec(400), yearContract())
	require.NoError(t, err)
	second, err := tracker.RecordAndReconcile(ctx, key, "Q3", dec(400), yearContract())
	require.NoError(t, err)

	assert.True(t, first.FinalAmount.Equal(second.FinalAmount))
	assert.Equal(t, first.Remark, second.Remark)

	rec, err := tracker.History(ctx, key)
	require.NoError(t, err)
	assert.Len(t, rec.Quarters, 1)
}

func TestTracker_ReprocessingOverwritesOnlyThatQuarter(t *testing.T) {
	// GIVEN: Snapshots for Q1 and Q2
	// WHEN: Q2 is reprocessed with a corrected reported quantity
	// THEN: Q2's snapshot is replaced, Q1's is untouched

	ctx := context.Background()
	tracker := newTestTracker()
	key := billing.TrackingKey{LocationCode: 4150, Description: "amc:fire extinguisher maintenance"}

	_, err := tracker.RecordAndReconcile(ctx, key, "Q1", dec(0), yearContract())
	require.NoError(t, err)
	_, err = tracker.RecordAndReconcile(ctx, key, "Q2", dec(184), yearContract())
	require.NoError(t, err)
	_, err = tracker.RecordAndReconcile(ctx, key, "Q2", dec(190), yearContract())
	require.NoError(t, err)

	rec, err := tracker.History(ctx, key)
	require.NoError(t, err)
	require.Len(t, rec.Quarters, 2)
	assert.True(t, rec.Quarters["Q1"].ReportedConsumedQty.IsZero())
	assert.True(t, rec.Quarters["Q2"].ReportedConsumedQty.Equal(dec(190)))
	assert.Equal(t, "Q2", rec.LastQuarter)
}

func TestTracker_KeysAreIndependent(t *testing.T) {
	ctx := context.Background()
	tracker := newTestTracker()
	a := billing.TrackingKey{LocationCode: 4150, Description: "amc:fire extinguisher maintenance"}
	b := billing.TrackingKey{LocationCode: 4174, Description: "amc:fire extinguisher maintenance"}

	_, err := tracker.RecordAndReconcile(ctx, a, "Q1", dec(0), yearContract())
	require.NoError(t, err)

	rec, err := tracker.History(ctx, b)
	require.NoError(t, err)
	assert.Nil(t, rec)

	records, err := tracker.Records(ctx)
	require.NoError(t, err)
	assert.Len(t, records, 1)
}
