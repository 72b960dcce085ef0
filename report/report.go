/*
Package report rolls completed batch results up into the invoice summaries
finance consumes: a location-wise listing, a region-wise rollup and a
consumption validation report. No reconciliation logic lives here; the
aggregator only reads what the batch processor stored.
*/
package report

import (
	"context"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/meridian/amc-billing/billing"
	"github.com/meridian/amc-billing/registry"
)

var gstFactor = decimal.NewFromFloat(1.18)

// =============================================================================
// REPORT SHAPES
// =============================================================================

// LocationRow is one invoice line of the location-wise report. SES fields
// are filled in downstream by finance and stay empty here.
type LocationRow struct {
	Serial       int             `json:"serial"`
	LineItem     int             `json:"lineItem"`
	LocationCode int             `json:"locationCode"`
	LocationName string          `json:"locationName"`
	Value        decimal.Decimal `json:"invoiceValue"`
	ValueWithGST decimal.Decimal `json:"invoiceValueWithGST"`
	SESNumber    string          `json:"sesNumber"`
	SESValue     string          `json:"sesValue"`
	TaxCode      string          `json:"taxCode"`
}

type LocationReport struct {
	Quarter      string          `json:"quarter"`
	Rows         []LocationRow   `json:"rows"`
	TotalValue   decimal.Decimal `json:"totalValue"`
	TotalWithGST decimal.Decimal `json:"totalValueWithGST"`
}

// RegionRow is one region rollup line. All regions invoice under the
// regional office code.
type RegionRow struct {
	LocationCode int             `json:"locationCode"`
	Region       string          `json:"region"`
	PONumber     string          `json:"poNumber"`
	Value        decimal.Decimal `json:"invoiceValue"`
	ValueWithGST decimal.Decimal `json:"invoiceValueWithGST"`
}

type RegionReport struct {
	Quarter           string          `json:"quarter"`
	Rows              []RegionRow     `json:"rows"`
	GrandTotal        decimal.Decimal `json:"grandTotal"`
	GrandTotalWithGST decimal.Decimal `json:"grandTotalWithGST"`
}

// ValidationRow is one (location, description, quarter) consumption check.
type ValidationRow struct {
	LocationCode int             `json:"locationCode"`
	Description  string          `json:"description"`
	Quarter      string          `json:"quarter"`
	Reported     decimal.Decimal `json:"reportedConsumedQty"`
	Expected     decimal.Decimal `json:"expectedPriorConsumption"`
	Discrepancy  decimal.Decimal `json:"discrepancy"`
	ServiceDays  int             `json:"serviceDays"`
	Status       string          `json:"status"`
}

type ValidationReport struct {
	Rows []ValidationRow `json:"rows"`
}

// =============================================================================
// AGGREGATOR
// =============================================================================

// Aggregator builds reports from stored batch results and tracker state.
type Aggregator struct {
	results   billing.ResultStore
	tracker   *billing.Tracker
	directory *registry.Directory
	tolerance decimal.Decimal
}

func NewAggregator(results billing.ResultStore, tracker *billing.Tracker, directory *registry.Directory) *Aggregator {
	return &Aggregator{
		results:   results,
		tracker:   tracker,
		directory: directory,
		tolerance: billing.DefaultTolerance,
	}
}

// LocationWise lists every positive batch result for the quarter, one
// invoice line per (location, line) upload, GST-inclusive value alongside.
// Zero-total batches are left off the invoice.
func (a *Aggregator) LocationWise(ctx context.Context, quarterID string) (*LocationReport, error) {
	results, err := a.results.ForQuarter(ctx, quarterID)
	if err != nil {
		return nil, err
	}

	rep := &LocationReport{
		Quarter:      quarterID,
		TotalValue:   decimal.Zero,
		TotalWithGST: decimal.Zero,
	}
	serial := 1
	for _, res := range results {
		if !res.TotalAmount.IsPositive() {
			continue
		}
		value := res.TotalAmount.Round(2)
		withGST := res.TotalAmount.Mul(gstFactor).Round(2)

		lineItem := res.Key.LineID
		if lineItem == 0 {
			if o, ok := a.directory.Find(res.ActualLocationCode, res.Key.LineID); ok {
				lineItem = o.LineID
			}
		}

		rep.Rows = append(rep.Rows, LocationRow{
			Serial:       serial,
			LineItem:     lineItem,
			LocationCode: res.Key.LocationCode,
			LocationName: res.LocationName,
			Value:        value,
			ValueWithGST: withGST,
			TaxCode:      registry.TaxCode(res.ActualLocationCode),
		})
		rep.TotalValue = rep.TotalValue.Add(value)
		rep.TotalWithGST = rep.TotalWithGST.Add(withGST)
		serial++
	}
	return rep, nil
}

// RegionWise groups the quarter's positive batch results by region and
// attaches each region's purchase-order number.
func (a *Aggregator) RegionWise(ctx context.Context, quarterID string) (*RegionReport, error) {
	results, err := a.results.ForQuarter(ctx, quarterID)
	if err != nil {
		return nil, err
	}

	totals := make(map[string]decimal.Decimal)
	for _, res := range results {
		if !res.TotalAmount.IsPositive() || res.Region == "" {
			continue
		}
		totals[res.Region] = totals[res.Region].Add(res.TotalAmount)
	}

	regions := make([]string, 0, len(totals))
	for region := range totals {
		regions = append(regions, region)
	}
	sort.Strings(regions)

	rep := &RegionReport{
		Quarter:           quarterID,
		GrandTotal:        decimal.Zero,
		GrandTotalWithGST: decimal.Zero,
	}
	for _, region := range regions {
		value := totals[region].Round(2)
		withGST := totals[region].Mul(gstFactor).Round(2)
		rep.Rows = append(rep.Rows, RegionRow{
			LocationCode: registry.RegionOfficeCode,
			Region:       region,
			PONumber:     registry.PONumber(region),
			Value:        value,
			ValueWithGST: withGST,
		})
		rep.GrandTotal = rep.GrandTotal.Add(value)
		rep.GrandTotalWithGST = rep.GrandTotalWithGST.Add(withGST)
	}
	return rep, nil
}

// Validation lists every recorded quarter snapshot with its discrepancy
// against the calendar-derived expectation.
func (a *Aggregator) Validation(ctx context.Context) (*ValidationReport, error) {
	records, err := a.tracker.Records(ctx)
	if err != nil {
		return nil, err
	}

	rep := &ValidationReport{}
	for _, rec := range records {
		quarters := make([]string, 0, len(rec.Quarters))
		for q := range rec.Quarters {
			quarters = append(quarters, q)
		}
		// Length-first ordering keeps Q2 ahead of Q10.
		sort.Slice(quarters, func(i, j int) bool {
			if len(quarters[i]) != len(quarters[j]) {
				return len(quarters[i]) < len(quarters[j])
			}
			return quarters[i] < quarters[j]
		})

		for _, q := range quarters {
			snap := rec.Quarters[q]
			status := "ok"
			if snap.Discrepancy.Abs().GreaterThan(a.tolerance) {
				if snap.Discrepancy.IsPositive() {
					status = "excess"
				} else {
					status = "deficit"
				}
			}
			rep.Rows = append(rep.Rows, ValidationRow{
				LocationCode: rec.Key.LocationCode,
				Description:  rec.Key.Description,
				Quarter:      q,
				Reported:     snap.ReportedConsumedQty,
				Expected:     snap.ExpectedPriorConsumption,
				Discrepancy:  snap.Discrepancy,
				ServiceDays:  snap.ServiceDays,
				Status:       status,
			})
		}
	}
	return rep, nil
}
