package memory

import (
	"context"
	"strings"
	"sync"

	"github.com/exportin-lab/exportin/pkg/domain/model"
	"github.com/exportin-lab/exportin/pkg/domain/types"
	"github.com/m-mizutani/goerr/v2"
)

type tariffKey struct {
	commodityID types.CommodityID
	destination string // lowercase, empty = default
}

type tariffRepository struct {
	mu    sync.RWMutex
	rates map[tariffKey]*model.TariffRate
}

func newTariffRepository() *tariffRepository {
	return &tariffRepository{
		rates: make(map[tariffKey]*model.TariffRate),
	}
}

func (r *tariffRepository) GetRate(ctx context.Context, commodityID types.CommodityID, destination string) (*model.TariffRate, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	dest := strings.ToLower(strings.TrimSpace(destination))
	if dest != "" {
		if rate, ok := r.rates[tariffKey{commodityID: commodityID, destination: dest}]; ok {
			copied := *rate
			return &copied, nil
		}
	}

	if rate, ok := r.rates[tariffKey{commodityID: commodityID}]; ok {
		copied := *rate
		return &copied, nil
	}

	return nil, goerr.Wrap(ErrNotFound, "tariff rate not found",
		goerr.V("commodityID", commodityID),
		goerr.V("destination", destination),
	)
}

func (r *tariffRepository) Put(ctx context.Context, rate *model.TariffRate) error {
	if err := rate.CommodityID.Validate(); err != nil {
		return goerr.Wrap(err, "invalid tariff rate")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	stored := *rate
	key := tariffKey{
		commodityID: stored.CommodityID,
		destination: strings.ToLower(strings.TrimSpace(stored.Destination)),
	}
	r.rates[key] = &stored
	return nil
}
