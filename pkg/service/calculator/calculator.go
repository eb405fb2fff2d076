package calculator

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/shopspring/decimal"

	"github.com/exportin-lab/exportin/pkg/domain/interfaces"
	"github.com/exportin-lab/exportin/pkg/domain/model"
	"github.com/exportin-lab/exportin/pkg/domain/types"
	"github.com/exportin-lab/exportin/pkg/utils/logging"
)

var (
	// ErrUnknownCommodity indicates the product is not in the reference data
	ErrUnknownCommodity = errors.New("unknown commodity")

	// ErrUnknownCurrencyRate indicates no rate observation exists for the pair
	ErrUnknownCurrencyRate = errors.New("unknown currency rate")
)

// DefaultTargetCurrency is the currency duty is assessed in
const DefaultTargetCurrency = types.CurrencyCode("IDR")

// hundred divides tariff percentages into fractions
var hundred = decimal.NewFromInt(100)

// DefaultTariffPercent applies when no tariff rate is registered for a
// commodity. Unlisted commodities are duty-free until a rate is recorded.
var DefaultTariffPercent = decimal.Zero

// MissingFieldsError reports which required facts were absent from the query.
// It is a normal outcome, not a system failure: callers turn it into a
// clarification request.
type MissingFieldsError struct {
	Fields []types.FactField
}

func (e *MissingFieldsError) Error() string {
	names := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		names[i] = f.String()
	}
	return fmt.Sprintf("missing required facts: %s", strings.Join(names, ", "))
}

// AsMissingFields extracts a MissingFieldsError from an error chain
func AsMissingFields(err error) (*MissingFieldsError, bool) {
	var mfe *MissingFieldsError
	if errors.As(err, &mfe) {
		return mfe, true
	}
	return nil, false
}

// Service computes export duty from extracted facts and reference data
type Service interface {
	// Calculate resolves the commodity, converts the weight to the
	// commodity's reference unit, applies the latest currency rate and the
	// most specific tariff, and returns the itemized result. Incomplete
	// facts produce a MissingFieldsError.
	Calculate(ctx context.Context, facts *model.ExtractedFacts) (*model.DutyCalculationResult, error)
}

type service struct {
	repo           interfaces.Repository
	targetCurrency types.CurrencyCode
}

// Option is a functional option for service configuration
type Option func(*service)

// WithTargetCurrency overrides the currency duty is assessed in
func WithTargetCurrency(code types.CurrencyCode) Option {
	return func(s *service) {
		s.targetCurrency = code
	}
}

// New creates a duty calculator backed by the given reference data
func New(repo interfaces.Repository, opts ...Option) (Service, error) {
	if repo == nil {
		return nil, goerr.New("repository is required")
	}

	s := &service{
		repo:           repo,
		targetCurrency: DefaultTargetCurrency,
	}

	for _, opt := range opts {
		opt(s)
	}

	if err := s.targetCurrency.Validate(); err != nil {
		return nil, goerr.Wrap(err, "invalid target currency")
	}

	return s, nil
}

func (s *service) Calculate(ctx context.Context, facts *model.ExtractedFacts) (*model.DutyCalculationResult, error) {
	if facts == nil {
		return nil, &MissingFieldsError{Fields: types.AllFactFields()}
	}
	if missing := facts.Missing(); len(missing) > 0 {
		return nil, &MissingFieldsError{Fields: missing}
	}

	commodity, err := s.repo.Commodity().GetByName(ctx, *facts.Product)
	if err != nil {
		return nil, goerr.Wrap(ErrUnknownCommodity, "commodity not in reference data",
			goerr.V("product", *facts.Product),
		)
	}

	weightKg := decimal.NewFromFloat(*facts.WeightKg)
	weightRef := weightKg.Div(decimal.NewFromFloat(commodity.Unit.Kilograms()))
	totalSource := commodity.UnitPrice.Mul(weightRef)

	rate, effectiveAt, err := s.resolveRate(ctx, commodity.Currency)
	if err != nil {
		return nil, err
	}
	totalTarget := totalSource.Mul(rate)

	percent := s.resolveTariffPercent(ctx, commodity.ID, *facts.Destination)
	duty := totalTarget.Mul(percent).Div(hundred)

	// Round currency figures exactly once, here
	return &model.DutyCalculationResult{
		Commodity:        commodity.Name,
		CommodityID:      commodity.ID,
		WeightKg:         weightKg,
		WeightRefUnit:    weightRef,
		ReferenceUnit:    commodity.Unit,
		Destination:      *facts.Destination,
		UnitPrice:        commodity.UnitPrice,
		SourceCurrency:   commodity.Currency,
		TargetCurrency:   s.targetCurrency,
		TotalPriceSource: totalSource.Round(2),
		CurrencyRate:     rate,
		RateEffectiveAt:  effectiveAt,
		TotalPriceTarget: totalTarget.Round(2),
		TariffPercent:    percent,
		DutyAmount:       duty.Round(2),
		Formula:          model.FormulaAdValorem,
	}, nil
}

// resolveRate returns the conversion rate from the commodity's pricing
// currency to the target currency. Same-currency pricing needs no lookup.
func (s *service) resolveRate(ctx context.Context, source types.CurrencyCode) (decimal.Decimal, time.Time, error) {
	if source == s.targetCurrency {
		return decimal.NewFromInt(1), time.Time{}, nil
	}

	rate, err := s.repo.Currency().GetLatestRate(ctx, source, s.targetCurrency)
	if err != nil {
		return decimal.Decimal{}, time.Time{}, goerr.Wrap(ErrUnknownCurrencyRate, "no rate observation",
			goerr.V("base", source),
			goerr.V("target", s.targetCurrency),
		)
	}

	return rate.Rate, rate.EffectiveDate, nil
}

// resolveTariffPercent returns the most specific tariff for the commodity and
// destination, falling back to DefaultTariffPercent rather than failing the
// calculation.
func (s *service) resolveTariffPercent(ctx context.Context, commodityID types.CommodityID, destination string) decimal.Decimal {
	rate, err := s.repo.Tariff().GetRate(ctx, commodityID, destination)
	if err != nil {
		logging.From(ctx).Warn("no tariff rate found, applying default",
			"commodityID", commodityID,
			"destination", destination,
			"default", DefaultTariffPercent,
		)
		return DefaultTariffPercent
	}
	return rate.Percent
}
