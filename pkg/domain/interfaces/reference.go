package interfaces

import (
	"context"

	"github.com/exportin-lab/exportin/pkg/domain/model"
	"github.com/exportin-lab/exportin/pkg/domain/types"
)

// CommodityRepository defines read access to commodity reference data
type CommodityRepository interface {
	// GetByName resolves a free-text commodity name (canonical name or alias,
	// case-insensitive) to its reference record
	GetByName(ctx context.Context, name string) (*model.Commodity, error)

	// List retrieves all commodities
	List(ctx context.Context) ([]*model.Commodity, error)

	// Put creates or replaces a commodity record
	Put(ctx context.Context, commodity *model.Commodity) error
}

// CurrencyRepository defines read access to currency rate reference data
type CurrencyRepository interface {
	// GetLatestRate returns the rate observation for the pair with the most
	// recent effective date (ties broken by most recent creation time)
	GetLatestRate(ctx context.Context, base, target types.CurrencyCode) (*model.CurrencyRate, error)

	// Put records a rate observation
	Put(ctx context.Context, rate *model.CurrencyRate) error
}

// TariffRepository defines read access to tariff reference data
type TariffRepository interface {
	// GetRate returns the most specific rate for the commodity: the
	// destination-specific rate when one exists, otherwise the commodity's
	// default rate. Returns a not-found error when neither exists.
	GetRate(ctx context.Context, commodityID types.CommodityID, destination string) (*model.TariffRate, error)

	// Put creates or replaces a tariff rate
	Put(ctx context.Context, rate *model.TariffRate) error
}
