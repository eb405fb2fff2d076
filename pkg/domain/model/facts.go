package model

import (
	"strings"

	"github.com/exportin-lab/exportin/pkg/domain/types"
)

// ExtractedFacts is the structured record pulled out of a free-text query.
// Each field is either a validated value or nil; an empty string never stands
// in for "unknown". The record is produced fresh per query and never persisted.
type ExtractedFacts struct {
	Product     *string  `json:"product"`
	WeightKg    *float64 `json:"weight_kg"`
	Destination *string  `json:"destination"`
}

// SetProduct sets the product name, treating blank values as unknown
func (f *ExtractedFacts) SetProduct(name string) {
	name = strings.TrimSpace(name)
	if name == "" {
		return
	}
	f.Product = &name
}

// SetWeightKg sets the net weight in kilograms; non-positive values are
// treated as unknown
func (f *ExtractedFacts) SetWeightKg(kg float64) {
	if kg <= 0 {
		return
	}
	f.WeightKg = &kg
}

// SetDestination sets the destination country, treating blank values as unknown
func (f *ExtractedFacts) SetDestination(country string) {
	country = strings.TrimSpace(country)
	if country == "" {
		return
	}
	f.Destination = &country
}

// Missing returns the required fact fields that are still unknown, in
// canonical order.
func (f *ExtractedFacts) Missing() []types.FactField {
	var missing []types.FactField
	if f.Product == nil {
		missing = append(missing, types.FieldProduct)
	}
	if f.WeightKg == nil {
		missing = append(missing, types.FieldWeight)
	}
	if f.Destination == nil {
		missing = append(missing, types.FieldDestination)
	}
	return missing
}

// Complete reports whether all required facts are present
func (f *ExtractedFacts) Complete() bool {
	return len(f.Missing()) == 0
}
