/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. These types decouple
  the internal domain model from the external API contract, allowing:
  - Field renaming without breaking clients
  - API-specific validation
  - Version evolution

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients

VALIDATION:
  Request types carry go-playground/validator struct tags; handlers run
  them through the shared validator before touching domain logic.

SEE ALSO:
  - handlers.go: Uses these types
  - billing/types.go: The domain model these map onto
*/
package api

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/meridian/amc-billing/billing"
	"github.com/meridian/amc-billing/store/sqlite"
)

// =============================================================================
// REQUEST TYPES
// =============================================================================

// RowDTO is one uploaded sheet row. Numeric fields arrive as JSON numbers
// and are converted to decimals at the boundary.
type RowDTO struct {
	Number      int     `json:"number"`
	Description string  `json:"description"`
	Quantity    float64 `json:"quantity"`
	GrossPrice  float64 `json:"grossPrice"`
	ConsumedQty float64 `json:"consumedQty"`
}

// ProcessRequest is one upload submission.
type ProcessRequest struct {
	LocationCode int      `json:"locationCode" validate:"required,gt=0"`
	LineID       int      `json:"lineId" validate:"gte=0"`
	Quarter      string   `json:"quarter" validate:"required"`
	PlantCode    string   `json:"plantCode" validate:"required"`
	Rows         []RowDTO `json:"rows" validate:"required,min=1,dive"`
}

// CreateContractRequest adds one catalog entry.
type CreateContractRequest struct {
	PlantCode   string  `json:"plantCode" validate:"required"`
	Description string  `json:"description" validate:"required"`
	ItemCount   float64 `json:"itemCount" validate:"required,gt=0"`
	UnitPrice   float64 `json:"unitPrice" validate:"required,gt=0"`
	Quantity    float64 `json:"quantity" validate:"gte=0"`
	GrossPrice  float64 `json:"grossPrice" validate:"gte=0"`
	ValidFrom   string  `json:"validFrom" validate:"required"`
	ValidTo     string  `json:"validTo" validate:"required"`
}

// =============================================================================
// RESPONSE TYPES
// =============================================================================

// RowOutcomeDTO carries the computed values for one processed row.
type RowOutcomeDTO struct {
	Number      int    `json:"number"`
	ItemCount   string `json:"itemCount"`
	ServiceDays int    `json:"serviceDays"`
	Amount      string `json:"amount"`
	Remark      string `json:"remark,omitempty"`
}

// SkippedRowDTO is one skipped row with its reason.
type SkippedRowDTO struct {
	RowNumber   int    `json:"rowNumber"`
	Reason      string `json:"reason"`
	Description string `json:"description"`
}

// BatchResultDTO is the outcome of one processed upload.
type BatchResultDTO struct {
	ID               string          `json:"id"`
	LocationCode     int             `json:"locationCode"`
	LineID           int             `json:"lineId"`
	Quarter          string          `json:"quarter"`
	LocationName     string          `json:"locationName"`
	Region           string          `json:"region"`
	TotalAmount      string          `json:"totalAmount"`
	BaseAmount       string          `json:"baseAmount"`
	AdjustmentAmount string          `json:"adjustmentAmount"`
	TotalRows        int             `json:"totalRows"`
	ProcessedRows    int             `json:"processedRows"`
	AdjustedRows     int             `json:"adjustedRows"`
	SkippedRows      []SkippedRowDTO `json:"skippedRows"`
	ProcessedAt      string          `json:"processedAt"`
}

// ProcessResponse pairs the stored batch result with its row outcomes.
type ProcessResponse struct {
	Result BatchResultDTO  `json:"result"`
	Rows   []RowOutcomeDTO `json:"rows"`
	Total  string          `json:"total,omitempty"`
}

// ContractDTO is one catalog entry in API responses.
type ContractDTO struct {
	ID          string `json:"id"`
	PlantCode   string `json:"plantCode"`
	Description string `json:"description"`
	ItemCount   string `json:"itemCount"`
	UnitPrice   string `json:"unitPrice"`
	Quantity    string `json:"quantity"`
	GrossPrice  string `json:"grossPrice"`
	ValidFrom   string `json:"validFrom"`
	ValidTo     string `json:"validTo"`
}

// QuarterDTO describes one calendar quarter.
type QuarterDTO struct {
	ID    string `json:"id"`
	Start string `json:"start"`
	End   string `json:"end"`
	Days  int    `json:"days"`
}

// ErrorResponse is the uniform error body.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// =============================================================================
// CONVERSIONS
// =============================================================================

func toBatchResultDTO(res *billing.BatchResult) BatchResultDTO {
	skipped := make([]SkippedRowDTO, 0, len(res.Skipped))
	for _, s := range res.Skipped {
		skipped = append(skipped, SkippedRowDTO{
			RowNumber:   s.RowNumber,
			Reason:      string(s.Reason),
			Description: s.Description,
		})
	}
	return BatchResultDTO{
		ID:               res.ID,
		LocationCode:     res.Key.LocationCode,
		LineID:           res.Key.LineID,
		Quarter:          res.Key.Quarter,
		LocationName:     res.LocationName,
		Region:           res.Region,
		TotalAmount:      res.TotalAmount.StringFixed(2),
		BaseAmount:       res.BaseAmount.StringFixed(2),
		AdjustmentAmount: res.AdjustmentAmount.StringFixed(2),
		TotalRows:        res.TotalRows,
		ProcessedRows:    res.ProcessedRows,
		AdjustedRows:     res.AdjustedRows,
		SkippedRows:      skipped,
		ProcessedAt:      res.ProcessedAt.Format(time.RFC3339),
	}
}

func toContractDTO(rec sqlite.ContractRecord) ContractDTO {
	return ContractDTO{
		ID:          rec.ID,
		PlantCode:   rec.PlantCode,
		Description: rec.Description,
		ItemCount:   rec.ItemCount.String(),
		UnitPrice:   rec.UnitPrice.String(),
		Quantity:    rec.Quantity.String(),
		GrossPrice:  rec.GrossPrice.String(),
		ValidFrom:   rec.ValidFrom.String(),
		ValidTo:     rec.ValidTo.String(),
	}
}

func toInputRows(rows []RowDTO) []billing.InputRow {
	out := make([]billing.InputRow, 0, len(rows))
	for _, r := range rows {
		out = append(out, billing.InputRow{
			Number:      r.Number,
			Description: r.Description,
			Quantity:    decimal.NewFromFloat(r.Quantity),
			GrossPrice:  decimal.NewFromFloat(r.GrossPrice),
			ConsumedQty: decimal.NewFromFloat(r.ConsumedQty),
		})
	}
	return out
}
