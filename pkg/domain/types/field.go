package types

// FactField names one of the facts required for a duty calculation
type FactField string

const (
	FieldProduct     FactField = "product"
	FieldWeight      FactField = "weight"
	FieldDestination FactField = "destination"
)

// AllFactFields returns all fact fields in their canonical order
func AllFactFields() []FactField {
	return []FactField{FieldProduct, FieldWeight, FieldDestination}
}

// IsValid checks if the fact field is valid
func (f FactField) IsValid() bool {
	switch f {
	case FieldProduct, FieldWeight, FieldDestination:
		return true
	default:
		return false
	}
}

// String returns the string representation of the fact field
func (f FactField) String() string {
	return string(f)
}
