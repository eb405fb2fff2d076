package model

import (
	"time"

	"github.com/exportin-lab/exportin/pkg/domain/types"
	"github.com/shopspring/decimal"
)

// FormulaAdValorem identifies the ad-valorem duty formula:
// duty = tariff% x (unit price x weight in reference unit x currency rate).
const FormulaAdValorem = "ad-valorem-v1"

// DutyCalculationResult is the fully itemized outcome of a duty calculation,
// so that callers can show every intermediate figure. All currency figures
// are rounded to two decimal places exactly once, when the result is built.
// The result is immutable once constructed.
type DutyCalculationResult struct {
	Commodity        string             `json:"commodity"`
	CommodityID      types.CommodityID  `json:"commodity_id"`
	WeightKg         decimal.Decimal    `json:"weight_kg"`
	WeightRefUnit    decimal.Decimal    `json:"weight_ref_unit"`
	ReferenceUnit    types.WeightUnit   `json:"reference_unit"`
	Destination      string             `json:"destination"`
	UnitPrice        decimal.Decimal    `json:"unit_price"`
	SourceCurrency   types.CurrencyCode `json:"source_currency"`
	TargetCurrency   types.CurrencyCode `json:"target_currency"`
	TotalPriceSource decimal.Decimal    `json:"total_price_source"`
	CurrencyRate     decimal.Decimal    `json:"currency_rate"`
	RateEffectiveAt  time.Time          `json:"rate_effective_at"`
	TotalPriceTarget decimal.Decimal    `json:"total_price_target"`
	TariffPercent    decimal.Decimal    `json:"tariff_percent"`
	DutyAmount       decimal.Decimal    `json:"duty_amount"`
	Formula          string             `json:"formula"`
}
