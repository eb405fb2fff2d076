package types

import (
	"strings"

	"github.com/m-mizutani/goerr/v2"
)

// WeightUnit is a reference unit for commodity weights
type WeightUnit string

const (
	UnitKilogram WeightUnit = "kg"
	UnitTon      WeightUnit = "ton"
)

// AllWeightUnits returns all valid weight units
func AllWeightUnits() []WeightUnit {
	return []WeightUnit{UnitKilogram, UnitTon}
}

// IsValid checks if the weight unit is valid
func (u WeightUnit) IsValid() bool {
	switch u {
	case UnitKilogram, UnitTon:
		return true
	default:
		return false
	}
}

// Kilograms returns how many kilograms one reference unit holds
func (u WeightUnit) Kilograms() float64 {
	if u == UnitTon {
		return 1000
	}
	return 1
}

// String returns the string representation of the weight unit
func (u WeightUnit) String() string {
	return string(u)
}

// ParseWeightUnit normalizes a free-text unit token into a WeightUnit.
// Accepts common spellings: kg/kilogram/kilograms/kilo, ton/tons/tonne/tonnes/mt.
func ParseWeightUnit(s string) (WeightUnit, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "kg", "kilogram", "kilograms", "kilo", "kilos":
		return UnitKilogram, nil
	case "ton", "tons", "tonne", "tonnes", "mt":
		return UnitTon, nil
	default:
		return "", goerr.New("unknown weight unit", goerr.V("unit", s))
	}
}
