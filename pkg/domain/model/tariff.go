package model

import (
	"strings"

	"github.com/exportin-lab/exportin/pkg/domain/types"
	"github.com/shopspring/decimal"
)

// TariffRate maps a commodity, and optionally a destination country, to an
// export duty percentage. A rate with an empty Destination is the commodity's
// default rate, applied when no destination-specific rate exists.
type TariffRate struct {
	CommodityID types.CommodityID
	Destination string // empty = commodity default
	Percent     decimal.Decimal
}

// IsDefault reports whether this is the commodity's default rate
func (t *TariffRate) IsDefault() bool {
	return t.Destination == ""
}

// MatchesDestination reports whether the rate applies to the given
// destination country, case-insensitively.
func (t *TariffRate) MatchesDestination(destination string) bool {
	return strings.EqualFold(strings.TrimSpace(t.Destination), strings.TrimSpace(destination))
}
