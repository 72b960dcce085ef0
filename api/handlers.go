/*
handlers.go - HTTP API handlers for the billing reconciliation service

PURPOSE:
  Exposes batch processing, the contract catalog and the report rollups via
  REST API. Handles HTTP request/response, JSON serialization, validation,
  and delegates to domain logic.

ENDPOINTS:
  Processing:
    POST   /api/process                Process one upload batch
    GET    /api/processed              List stored batch results
    GET    /api/processed/{quarter}    Batch results for one quarter

  Reports:
    GET    /api/reports/location/{quarter}  Location-wise invoice rollup
    GET    /api/reports/region/{quarter}    Region-wise rollup
    GET    /api/reports/validation          Consumption validation listing

  Catalog:
    GET    /api/contracts              List catalog entries
    POST   /api/contracts              Add a catalog entry

  Calendar:
    GET    /api/quarters               The fixed quarter calendar

ERROR HANDLING:
  Errors are returned as JSON with appropriate HTTP status:
  - 400: Validation errors, unknown quarter, invalid input
  - 404: Resource not found
  - 500: Internal errors

SEE ALSO:
  - dto.go: Request/response data structures
  - server.go: Router setup and middleware
*/
package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/meridian/amc-billing/billing"
	"github.com/meridian/amc-billing/report"
	"github.com/meridian/amc-billing/store/sqlite"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Processor  *billing.Processor
	Aggregator *report.Aggregator
	Contracts  *sqlite.Store
	Results    billing.ResultStore
	Calendar   *billing.Calendar
	Log        *logrus.Logger

	validate *validator.Validate
}

// NewHandler creates a handler over the given collaborators.
func NewHandler(proc *billing.Processor, agg *report.Aggregator, contracts *sqlite.Store, results billing.ResultStore, cal *billing.Calendar, log *logrus.Logger) *Handler {
	return &Handler{
		Processor:  proc,
		Aggregator: agg,
		Contracts:  contracts,
		Results:    results,
		Calendar:   cal,
		Log:        log,
		validate:   validator.New(),
	}
}

// =============================================================================
// PROCESSING
// =============================================================================

// collectingSink gathers row outcomes for the HTTP response.
type collectingSink struct {
	rows  []RowOutcomeDTO
	total string
}

func (s *collectingSink) WriteRow(row billing.OutputRow) error {
	s.rows = append(s.rows, RowOutcomeDTO{
		Number:      row.Number,
		ItemCount:   row.ItemCount.String(),
		ServiceDays: row.ServiceDays,
		Amount:      row.Amount.StringFixed(2),
		Remark:      row.Remark,
	})
	return nil
}

func (s *collectingSink) WriteTotal(total decimal.Decimal) error {
	s.total = total.StringFixed(2)
	return nil
}

// ProcessBatch runs one upload through the batch processor.
func (h *Handler) ProcessBatch(w http.ResponseWriter, r *http.Request) {
	var req ProcessRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, "validation failed", err)
		return
	}

	sink := &collectingSink{}
	res, err := h.Processor.Process(r.Context(), billing.BatchSpec{
		LocationCode: req.LocationCode,
		LineID:       req.LineID,
		Quarter:      req.Quarter,
		PlantCode:    req.PlantCode,
	}, toInputRows(req.Rows), sink)
	if err != nil {
		if errors.Is(err, billing.ErrUnknownQuarter) {
			writeError(w, http.StatusBadRequest, "unknown quarter", err)
			return
		}
		h.Log.WithError(err).Error("batch processing failed")
		writeError(w, http.StatusInternalServerError, "batch processing failed", err)
		return
	}

	writeJSON(w, http.StatusOK, ProcessResponse{
		Result: toBatchResultDTO(res),
		Rows:   sink.rows,
		Total:  sink.total,
	})
}

// ListProcessed returns every stored batch result.
func (h *Handler) ListProcessed(w http.ResponseWriter, r *http.Request) {
	results, err := h.Results.List(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list results", err)
		return
	}
	out := make([]BatchResultDTO, 0, len(results))
	for _, res := range results {
		out = append(out, toBatchResultDTO(res))
	}
	writeJSON(w, http.StatusOK, out)
}

// ProcessedForQuarter returns the stored batch results for one quarter.
func (h *Handler) ProcessedForQuarter(w http.ResponseWriter, r *http.Request) {
	quarter := chi.URLParam(r, "quarter")
	if _, err := h.Calendar.RangeOf(quarter); err != nil {
		writeError(w, http.StatusBadRequest, "unknown quarter", err)
		return
	}
	results, err := h.Results.ForQuarter(r.Context(), quarter)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list results", err)
		return
	}
	out := make([]BatchResultDTO, 0, len(results))
	for _, res := range results {
		out = append(out, toBatchResultDTO(res))
	}
	writeJSON(w, http.StatusOK, out)
}

// =============================================================================
// REPORTS
// =============================================================================

// LocationReport returns the location-wise invoice rollup for a quarter.
func (h *Handler) LocationReport(w http.ResponseWriter, r *http.Request) {
	quarter := chi.URLParam(r, "quarter")
	if _, err := h.Calendar.RangeOf(quarter); err != nil {
		writeError(w, http.StatusBadRequest, "unknown quarter", err)
		return
	}
	rep, err := h.Aggregator.LocationWise(r.Context(), quarter)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to build report", err)
		return
	}
	writeJSON(w, http.StatusOK, rep)
}

// RegionReport returns the region-wise rollup for a quarter.
func (h *Handler) RegionReport(w http.ResponseWriter, r *http.Request) {
	quarter := chi.URLParam(r, "quarter")
	if _, err := h.Calendar.RangeOf(quarter); err != nil {
		writeError(w, http.StatusBadRequest, "unknown quarter", err)
		return
	}
	rep, err := h.Aggregator.RegionWise(r.Context(), quarter)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to build report", err)
		return
	}
	writeJSON(w, http.StatusOK, rep)
}

// ValidationReport returns the consumption validation listing.
func (h *Handler) ValidationReport(w http.ResponseWriter, r *http.Request) {
	rep, err := h.Aggregator.Validation(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to build report", err)
		return
	}
	writeJSON(w, http.StatusOK, rep)
}

// =============================================================================
// CONTRACT CATALOG
// =============================================================================

// ListContracts returns every catalog entry.
func (h *Handler) ListContracts(w http.ResponseWriter, r *http.Request) {
	records, err := h.Contracts.ListContracts(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list contracts", err)
		return
	}
	out := make([]ContractDTO, 0, len(records))
	for _, rec := range records {
		out = append(out, toContractDTO(rec))
	}
	writeJSON(w, http.StatusOK, out)
}

// CreateContract adds one catalog entry.
func (h *Handler) CreateContract(w http.ResponseWriter, r *http.Request) {
	var req CreateContractRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, "validation failed", err)
		return
	}

	validFrom, err := billing.ParseDate(req.ValidFrom)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid validFrom", err)
		return
	}
	validTo, err := billing.ParseDate(req.ValidTo)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid validTo", err)
		return
	}
	if validTo.Before(validFrom) {
		writeError(w, http.StatusBadRequest, "validTo precedes validFrom", nil)
		return
	}

	rec, err := h.Contracts.SaveContract(r.Context(), sqlite.ContractRecord{
		PlantCode:   req.PlantCode,
		Description: req.Description,
		ItemCount:   decimal.NewFromFloat(req.ItemCount),
		UnitPrice:   decimal.NewFromFloat(req.UnitPrice),
		Quantity:    decimal.NewFromFloat(req.Quantity),
		GrossPrice:  decimal.NewFromFloat(req.GrossPrice),
		ValidFrom:   validFrom,
		ValidTo:     validTo,
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to save contract", err)
		return
	}
	writeJSON(w, http.StatusCreated, toContractDTO(rec))
}

// =============================================================================
// CALENDAR
// =============================================================================

// ListQuarters returns the fixed quarter calendar.
func (h *Handler) ListQuarters(w http.ResponseWriter, _ *http.Request) {
	quarters := h.Calendar.Quarters()
	out := make([]QuarterDTO, 0, len(quarters))
	for _, q := range quarters {
		out = append(out, QuarterDTO{
			ID:    q.ID,
			Start: q.Start.String(),
			End:   q.End.String(),
			Days:  q.Days(),
		})
	}
	writeJSON(w, http.StatusOK, out)
}

// =============================================================================
// RESPONSE HELPERS
// =============================================================================

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}
