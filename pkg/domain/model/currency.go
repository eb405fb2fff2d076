package model

import (
	"time"

	"github.com/exportin-lab/exportin/pkg/domain/types"
	"github.com/shopspring/decimal"
)

// CurrencyRate is one observation of a currency pair rate with its effective
// date. The "latest" rate for a pair is the one with the most recent
// EffectiveDate, ties broken by the most recent CreatedAt.
type CurrencyRate struct {
	ID            int64
	Base          types.CurrencyCode
	Target        types.CurrencyCode
	Rate          decimal.Decimal
	EffectiveDate time.Time
	CreatedAt     time.Time
}

// Newer reports whether r should be preferred over other as the latest rate
// observation for the same currency pair.
func (r *CurrencyRate) Newer(other *CurrencyRate) bool {
	if other == nil {
		return true
	}
	if !r.EffectiveDate.Equal(other.EffectiveDate) {
		return r.EffectiveDate.After(other.EffectiveDate)
	}
	return r.CreatedAt.After(other.CreatedAt)
}
