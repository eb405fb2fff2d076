package model

import (
	"strings"
	"time"

	"github.com/exportin-lab/exportin/pkg/domain/types"
	"github.com/shopspring/decimal"
)

// Commodity is static reference data for one exportable commodity: its unit
// price in the source currency, the reference unit the price is quoted in,
// and the aliases it can be matched under. Read-only to this core.
type Commodity struct {
	ID        types.CommodityID
	Code      string // HS code
	Name      string
	Aliases   []string
	UnitPrice decimal.Decimal
	Unit      types.WeightUnit
	Currency  types.CurrencyCode
	PriceDate time.Time
	CreatedAt time.Time
}

// Matches reports whether the given free-text name refers to this commodity,
// comparing case-insensitively against the canonical name and all aliases.
func (c *Commodity) Matches(name string) bool {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return false
	}
	if strings.ToLower(c.Name) == name {
		return true
	}
	for _, alias := range c.Aliases {
		if strings.ToLower(strings.TrimSpace(alias)) == name {
			return true
		}
	}
	return false
}

// Clone returns a deep copy of the commodity
func (c *Commodity) Clone() *Commodity {
	copied := *c
	if c.Aliases != nil {
		copied.Aliases = append([]string(nil), c.Aliases...)
	}
	return &copied
}
