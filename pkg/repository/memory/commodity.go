package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/exportin-lab/exportin/pkg/domain/model"
	"github.com/exportin-lab/exportin/pkg/domain/types"
	"github.com/m-mizutani/goerr/v2"
)

type commodityRepository struct {
	mu          sync.RWMutex
	commodities map[types.CommodityID]*model.Commodity
}

func newCommodityRepository() *commodityRepository {
	return &commodityRepository{
		commodities: make(map[types.CommodityID]*model.Commodity),
	}
}

func (r *commodityRepository) GetByName(ctx context.Context, name string) (*model.Commodity, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	// Deterministic: scan in ID order so alias collisions resolve stably
	ids := make([]types.CommodityID, 0, len(r.commodities))
	for id := range r.commodities {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	for _, id := range ids {
		if r.commodities[id].Matches(name) {
			return r.commodities[id].Clone(), nil
		}
	}

	return nil, goerr.Wrap(ErrNotFound, "commodity not found", goerr.V("name", name))
}

func (r *commodityRepository) List(ctx context.Context) ([]*model.Commodity, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]*model.Commodity, 0, len(r.commodities))
	for _, c := range r.commodities {
		result = append(result, c.Clone())
	}

	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })

	return result, nil
}

func (r *commodityRepository) Put(ctx context.Context, commodity *model.Commodity) error {
	if err := commodity.ID.Validate(); err != nil {
		return goerr.Wrap(err, "invalid commodity")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	stored := commodity.Clone()
	if stored.CreatedAt.IsZero() {
		stored.CreatedAt = time.Now().UTC()
	}

	r.commodities[stored.ID] = stored
	return nil
}
