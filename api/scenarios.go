/*
scenarios.go - Demo scenario loaders for testing and demonstrations

PURPOSE:

	Provides pre-built scenarios that populate the contract catalog and run
	sample uploads, so reports have realistic data for demos. Each scenario
	seeds contracts and processes one or more batches through the real
	pipeline.

AVAILABLE SCENARIOS:

	clean-quarter:   One location, first quarter, consumption exactly on plan
	excess-quarter:  Three quarters with over-reported prior consumption
	multi-region:    Uploads from both regions for region-wise rollups

HOW SCENARIOS WORK:
 1. Reset the contract catalog
 2. Seed catalog entries
 3. Process sample uploads through the batch processor

RELOADING:

	Loading a scenario twice converges: batch results are replaced per
	(location, line, quarter) key and tracker snapshots are overwritten per
	quarter, so no demo data accumulates.

USAGE VIA API:

	POST /api/scenarios/load
	{"scenario_id": "excess-quarter"}

NOTE:

	Scenarios reset the contract catalog. Only use in development/demo
	environments.

SEE ALSO:
  - handlers.go: The processing pipeline scenarios drive
  - store/sqlite/sqlite.go: The catalog being seeded
*/
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/meridian/amc-billing/billing"
	"github.com/meridian/amc-billing/store/sqlite"
)

// ScenarioDTO describes one loadable scenario.
type ScenarioDTO struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// LoadScenarioRequest selects a scenario to load.
type LoadScenarioRequest struct {
	ScenarioID string `json:"scenario_id"`
}

var scenarios = []ScenarioDTO{
	{
		ID:          "clean-quarter",
		Name:        "Clean first quarter",
		Description: "Salem Terminal bills Q1 with consumption exactly on plan",
	},
	{
		ID:          "excess-quarter",
		Name:        "Excess consumption",
		Description: "Three quarters for one location, with Q3 over-reported and adjusted",
	},
	{
		ID:          "multi-region",
		Name:        "Multi-region quarter",
		Description: "Uploads from Tamil Nadu and Pondichery for region-wise reports",
	},
}

// ListScenarios returns the available demo scenarios.
func (h *Handler) ListScenarios(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, scenarios)
}

// LoadScenario resets the catalog and loads the selected scenario.
func (h *Handler) LoadScenario(w http.ResponseWriter, r *http.Request) {
	var req LoadScenarioRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}

	ctx := r.Context()
	if err := h.Contracts.Reset(ctx); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to reset catalog", err)
		return
	}

	var err error
	switch req.ScenarioID {
	case "clean-quarter":
		err = h.loadCleanQuarter(ctx)
	case "excess-quarter":
		err = h.loadExcessQuarter(ctx)
	case "multi-region":
		err = h.loadMultiRegion(ctx)
	default:
		writeError(w, http.StatusBadRequest, fmt.Sprintf("unknown scenario: %s", req.ScenarioID), nil)
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load scenario", err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "loaded", "scenario": req.ScenarioID})
}

// =============================================================================
// SCENARIO LOADERS
// =============================================================================

func (h *Handler) seedScenarioContract(ctx context.Context, plantCode, description string, itemCount, unitPrice float64) error {
	_, err := h.Contracts.SaveContract(ctx, sqlite.ContractRecord{
		PlantCode:   plantCode,
		Description: description,
		ItemCount:   decimal.NewFromFloat(itemCount),
		UnitPrice:   decimal.NewFromFloat(unitPrice),
		Quantity:    decimal.NewFromFloat(itemCount),
		GrossPrice:  decimal.NewFromFloat(unitPrice),
		ValidFrom:   billing.NewDate(h.Calendar.BaseYear(), 6, 1),
		ValidTo:     billing.NewDate(h.Calendar.BaseYear()+1, 5, 31),
	})
	return err
}

func (h *Handler) runScenarioBatch(ctx context.Context, locationCode, lineID int, quarter, plantCode, description string, quantity, grossPrice, consumed float64) error {
	_, err := h.Processor.Process(ctx, billing.BatchSpec{
		LocationCode: locationCode,
		LineID:       lineID,
		Quarter:      quarter,
		PlantCode:    plantCode,
	}, []billing.InputRow{{
		Number:      1,
		Description: description,
		Quantity:    decimal.NewFromFloat(quantity),
		GrossPrice:  decimal.NewFromFloat(grossPrice),
		ConsumedQty: decimal.NewFromFloat(consumed),
	}}, nil)
	return err
}

func (h *Handler) loadCleanQuarter(ctx context.Context) error {
	const desc = "AMC : Fire Extinguisher Maintenance"
	if err := h.seedScenarioContract(ctx, "1100", desc, 2, 100); err != nil {
		return err
	}
	return h.runScenarioBatch(ctx, 4150, 164, "Q1", "1100", desc, 2, 100, 0)
}

func (h *Handler) loadExcessQuarter(ctx context.Context) error {
	const desc = "AMC : Fire Extinguisher Maintenance"
	if err := h.seedScenarioContract(ctx, "1100", desc, 2, 100); err != nil {
		return err
	}
	// Q1 and Q2 on plan, Q3 over-reported by 34 units.
	if err := h.runScenarioBatch(ctx, 4150, 164, "Q1", "1100", desc, 2, 100, 0); err != nil {
		return err
	}
	if err := h.runScenarioBatch(ctx, 4150, 164, "Q2", "1100", desc, 2, 100, 184); err != nil {
		return err
	}
	return h.runScenarioBatch(ctx, 4150, 164, "Q3", "1100", desc, 2, 100, 400)
}

func (h *Handler) loadMultiRegion(ctx context.Context) error {
	const fire = "AMC : Fire Extinguisher Maintenance"
	const sprinkler = "AMC : Sprinkler System Service"
	if err := h.seedScenarioContract(ctx, "1100", fire, 2, 100); err != nil {
		return err
	}
	if err := h.seedScenarioContract(ctx, "1200", sprinkler, 3, 250); err != nil {
		return err
	}
	if err := h.runScenarioBatch(ctx, 4150, 164, "Q1", "1100", fire, 2, 100, 0); err != nil {
		return err
	}
	if err := h.runScenarioBatch(ctx, 4133, 125, "Q1", "1100", fire, 2, 100, 0); err != nil {
		return err
	}
	return h.runScenarioBatch(ctx, 4174, 10, "Q1", "1200", sprinkler, 3, 250, 0)
}
