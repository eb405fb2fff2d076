package model

import (
	"time"

	"github.com/exportin-lab/exportin/pkg/domain/types"
)

// Response is the final answer to one query. ExtractedData is always present,
// even on partial failure; Calculation is nil unless all required facts were
// available and the reference data lookups succeeded; MissingFields is empty
// when the calculation succeeded.
type Response struct {
	QueryID       string                 `json:"query_id"`
	Answer        string                 `json:"answer"`
	Similarity    float64                `json:"similarity"`
	TemplateID    *types.TemplateID      `json:"template_id"`
	ExtractedData *ExtractedFacts        `json:"extracted_data"`
	Calculation   *DutyCalculationResult `json:"calculation"`
	MissingFields []types.FactField      `json:"missing_fields"`
	GeneratedAt   time.Time              `json:"generated_at"`
}
