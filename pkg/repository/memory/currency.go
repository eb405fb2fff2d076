package memory

import (
	"context"
	"sync"
	"time"

	"github.com/exportin-lab/exportin/pkg/domain/model"
	"github.com/exportin-lab/exportin/pkg/domain/types"
	"github.com/m-mizutani/goerr/v2"
)

type currencyRepository struct {
	mu     sync.RWMutex
	rates  []*model.CurrencyRate
	nextID int64
}

func newCurrencyRepository() *currencyRepository {
	return &currencyRepository{nextID: 1}
}

func (r *currencyRepository) GetLatestRate(ctx context.Context, base, target types.CurrencyCode) (*model.CurrencyRate, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var latest *model.CurrencyRate
	for _, rate := range r.rates {
		if rate.Base != base || rate.Target != target {
			continue
		}
		if rate.Newer(latest) {
			latest = rate
		}
	}

	if latest == nil {
		return nil, goerr.Wrap(ErrNotFound, "currency rate not found",
			goerr.V("base", base),
			goerr.V("target", target),
		)
	}

	copied := *latest
	return &copied, nil
}

func (r *currencyRepository) Put(ctx context.Context, rate *model.CurrencyRate) error {
	if err := rate.Base.Validate(); err != nil {
		return goerr.Wrap(err, "invalid base currency")
	}
	if err := rate.Target.Validate(); err != nil {
		return goerr.Wrap(err, "invalid target currency")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	stored := *rate
	if stored.ID == 0 {
		stored.ID = r.nextID
		r.nextID++
	}
	if stored.CreatedAt.IsZero() {
		stored.CreatedAt = time.Now().UTC()
	}

	r.rates = append(r.rates, &stored)
	return nil
}
