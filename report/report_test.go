package report_test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meridian/amc-billing/billing"
	"github.com/meridian/amc-billing/billing/store"
	"github.com/meridian/amc-billing/registry"
	"github.com/meridian/amc-billing/report"
)

// =============================================================================
// TEST SETUP
// =============================================================================

func dec(f float64) decimal.Decimal {
	return decimal.NewFromFloat(f)
}

func newTestAggregator(t *testing.T, results ...*billing.BatchResult) (*report.Aggregator, *billing.Tracker) {
	t.Helper()
	resultStore := store.NewResults()
	for _, res := range results {
		require.NoError(t, resultStore.Save(context.Background(), res))
	}
	tracker := billing.NewTracker(
		billing.NewEngine(billing.NewCalendar(2024)),
		store.NewMemory())
	return report.NewAggregator(resultStore, tracker, registry.NewDirectory()), tracker
}

func batchResult(code, lineID int, quarter string, total float64) *billing.BatchResult {
	d := registry.NewDirectory()
	res := &billing.BatchResult{
		ID:          "test-" + quarter,
		Key:         billing.BatchKey{LocationCode: code, LineID: lineID, Quarter: quarter},
		TotalAmount: dec(total),
		BaseAmount:  dec(total),
	}
	res.ActualLocationCode, res.LocationName, res.Region = d.ResolveLocation(code, lineID)
	return res
}

// =============================================================================
// LOCATION-WISE REPORT TESTS
// =============================================================================

func TestLocationWise_RowsAndGST(t *testing.T) {
	// GIVEN: Two positive batch results for Q1
	// WHEN: Building the location-wise report
	// THEN: One serialized row each, values with and without 18% GST

	agg, _ := newTestAggregator(t,
		batchResult(4150, 164, "Q1", 18400),
		batchResult(4174, 10, "Q1", 1000))

	rep, err := agg.LocationWise(context.Background(), "Q1")
	require.NoError(t, err)
	require.Len(t, rep.Rows, 2)

	assert.Equal(t, 1, rep.Rows[0].Serial)
	assert.Equal(t, 2, rep.Rows[1].Serial)
	assert.Equal(t, 4150, rep.Rows[0].LocationCode)
	assert.Equal(t, "Salem Terminal", rep.Rows[0].LocationName)
	assert.True(t, rep.Rows[0].Value.Equal(dec(18400)))
	assert.True(t, rep.Rows[0].ValueWithGST.Equal(dec(21712)), "with GST = %s", rep.Rows[0].ValueWithGST)
	assert.Equal(t, "GP", rep.Rows[0].TaxCode)

	assert.True(t, rep.TotalValue.Equal(dec(19400)))
	assert.True(t, rep.TotalWithGST.Equal(dec(22892)))
}

func TestLocationWise_ZeroTotalsExcluded(t *testing.T) {
	agg, _ := newTestAggregator(t,
		batchResult(4150, 164, "Q1", 18400),
		batchResult(4174, 10, "Q1", 0))

	rep, err := agg.LocationWise(context.Background(), "Q1")
	require.NoError(t, err)
	assert.Len(t, rep.Rows, 1)
}

func TestLocationWise_OtherQuartersExcluded(t *testing.T) {
	agg, _ := newTestAggregator(t,
		batchResult(4150, 164, "Q1", 18400),
		batchResult(4150, 164, "Q2", 18200))

	rep, err := agg.LocationWise(context.Background(), "Q2")
	require.NoError(t, err)
	require.Len(t, rep.Rows, 1)
	assert.True(t, rep.Rows[0].Value.Equal(dec(18200)))
}

func TestLocationWise_TaxCodeFollowsActualCode(t *testing.T) {
	// Variant 41501 resolves to base 4150 but a state office bills GQ.
	agg, _ := newTestAggregator(t,
		batchResult(4104, 114, "Q1", 500),
		batchResult(4076, 100, "Q1", 500))

	rep, err := agg.LocationWise(context.Background(), "Q1")
	require.NoError(t, err)
	require.Len(t, rep.Rows, 2)

	byCode := map[int]string{}
	for _, row := range rep.Rows {
		byCode[row.LocationCode] = row.TaxCode
	}
	assert.Equal(t, "GR", byCode[4076])
	assert.Equal(t, "GQ", byCode[4104])
}

// =============================================================================
// REGION-WISE REPORT TESTS
// =============================================================================

func TestRegionWise_GroupsByRegion(t *testing.T) {
	// GIVEN: Results from two Tamil Nadu locations and one Pondichery
	// WHEN: Building the region-wise report
	// THEN: Two rows, each under the regional office code with its PO number

	agg, _ := newTestAggregator(t,
		batchResult(4150, 164, "Q1", 18400),
		batchResult(4133, 125, "Q1", 1600),
		batchResult(4174, 10, "Q1", 1000))

	rep, err := agg.RegionWise(context.Background(), "Q1")
	require.NoError(t, err)
	require.Len(t, rep.Rows, 2)

	byRegion := map[string]int{}
	for _, row := range rep.Rows {
		byRegion[row.Region]++
		assert.Equal(t, registry.RegionOfficeCode, row.LocationCode)
	}
	assert.Equal(t, 1, byRegion["Tamil Nadu State"])
	assert.Equal(t, 1, byRegion["Pondichery"])

	for _, row := range rep.Rows {
		switch row.Region {
		case "Tamil Nadu State":
			assert.True(t, row.Value.Equal(dec(20000)), "value = %s", row.Value)
			assert.Equal(t, "70157639", row.PONumber)
		case "Pondichery":
			assert.True(t, row.Value.Equal(dec(1000)))
			assert.Equal(t, "70134127", row.PONumber)
		}
	}

	assert.True(t, rep.GrandTotal.Equal(dec(21000)))
	assert.True(t, rep.GrandTotalWithGST.Equal(dec(24780)))
}

func TestRegionWise_ZeroTotalsExcluded(t *testing.T) {
	agg, _ := newTestAggregator(t, batchResult(4174, 10, "Q1", 0))

	rep, err := agg.RegionWise(context.Background(), "Q1")
	require.NoError(t, err)
	assert.Empty(t, rep.Rows)
	assert.True(t, rep.GrandTotal.IsZero())
}

// =============================================================================
// VALIDATION REPORT TESTS
// =============================================================================

func TestValidation_ListsSnapshotsWithStatus(t *testing.T) {
	// GIVEN: One clean and one excess reconciliation in the tracker
	// WHEN: Building the validation report
	// THEN: Both snapshots are listed with their computed status

	agg, tracker := newTestAggregator(t)
	ctx := context.Background()

	contract := billing.ContractLine{
		PlantCode:   "1100",
		Description: "amc:fire extinguisher maintenance",
		ItemCount:   dec(2),
		UnitPrice:   dec(100),
		ValidFrom:   billing.NewDate(2024, 6, 1),
		ValidTo:     billing.NewDate(2025, 5, 31),
	}
	key := billing.TrackingKey{LocationCode: 4150, Description: contract.Description}

	_, err := tracker.RecordAndReconcile(ctx, key, "Q1", dec(0), contract)
	require.NoError(t, err)
	_, err = tracker.RecordAndReconcile(ctx, key, "Q3", dec(400), contract)
	require.NoError(t, err)

	rep, err := agg.Validation(ctx)
	require.NoError(t, err)
	require.Len(t, rep.Rows, 2)

	assert.Equal(t, "Q1", rep.Rows[0].Quarter)
	assert.Equal(t, "ok", rep.Rows[0].Status)
	assert.Equal(t, "Q3", rep.Rows[1].Quarter)
	assert.Equal(t, "excess", rep.Rows[1].Status)
	assert.True(t, rep.Rows[1].Discrepancy.Equal(dec(34)))
}
