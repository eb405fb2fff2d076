package firestore

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"
	"github.com/shopspring/decimal"
	"google.golang.org/api/iterator"

	"github.com/exportin-lab/exportin/pkg/domain/model"
	"github.com/exportin-lab/exportin/pkg/domain/types"
)

type currencyRateDoc struct {
	ID            int64     `firestore:"ID"`
	Base          string    `firestore:"Base"`
	Target        string    `firestore:"Target"`
	Rate          string    `firestore:"Rate"`
	EffectiveDate time.Time `firestore:"EffectiveDate"`
	CreatedAt     time.Time `firestore:"CreatedAt"`
}

func toCurrencyRateDoc(r *model.CurrencyRate) *currencyRateDoc {
	return &currencyRateDoc{
		ID:            r.ID,
		Base:          string(r.Base),
		Target:        string(r.Target),
		Rate:          r.Rate.String(),
		EffectiveDate: r.EffectiveDate,
		CreatedAt:     r.CreatedAt,
	}
}

func fromCurrencyRateDoc(d *currencyRateDoc) (*model.CurrencyRate, error) {
	rate, err := decimal.NewFromString(d.Rate)
	if err != nil {
		return nil, goerr.Wrap(err, "invalid currency rate", goerr.V("id", d.ID), goerr.V("rate", d.Rate))
	}

	return &model.CurrencyRate{
		ID:            d.ID,
		Base:          types.CurrencyCode(d.Base),
		Target:        types.CurrencyCode(d.Target),
		Rate:          rate,
		EffectiveDate: d.EffectiveDate,
		CreatedAt:     d.CreatedAt,
	}, nil
}

type currencyRepository struct {
	client           *firestore.Client
	collectionPrefix string
}

func newCurrencyRepository(client *firestore.Client) *currencyRepository {
	return &currencyRepository{client: client}
}

func (r *currencyRepository) collection() *firestore.CollectionRef {
	return r.client.Collection(r.collectionPrefix + "currency_rates")
}

func (r *currencyRepository) GetLatestRate(ctx context.Context, base, target types.CurrencyCode) (*model.CurrencyRate, error) {
	iter := r.collection().
		Where("Base", "==", string(base)).
		Where("Target", "==", string(target)).
		OrderBy("EffectiveDate", firestore.Desc).
		OrderBy("CreatedAt", firestore.Desc).
		Limit(1).
		Documents(ctx)
	defer iter.Stop()

	doc, err := iter.Next()
	if err == iterator.Done {
		return nil, goerr.Wrap(ErrNotFound, "currency rate not found",
			goerr.V("base", base),
			goerr.V("target", target),
		)
	}
	if err != nil {
		return nil, goerr.Wrap(err, "failed to query currency rates",
			goerr.V("base", base),
			goerr.V("target", target),
		)
	}

	var d currencyRateDoc
	if err := doc.DataTo(&d); err != nil {
		return nil, goerr.Wrap(err, "failed to unmarshal currency rate")
	}

	return fromCurrencyRateDoc(&d)
}

func (r *currencyRepository) Put(ctx context.Context, rate *model.CurrencyRate) error {
	if err := rate.Base.Validate(); err != nil {
		return goerr.Wrap(err, "invalid base currency")
	}
	if err := rate.Target.Validate(); err != nil {
		return goerr.Wrap(err, "invalid target currency")
	}

	stored := *rate
	if stored.CreatedAt.IsZero() {
		stored.CreatedAt = time.Now().UTC()
	}
	if stored.ID == 0 {
		stored.ID = stored.CreatedAt.UnixNano()
	}

	docRef := r.collection().Doc(fmt.Sprintf("%s-%s-%d", stored.Base, stored.Target, stored.ID))
	if _, err := docRef.Set(ctx, toCurrencyRateDoc(&stored)); err != nil {
		return goerr.Wrap(err, "failed to put currency rate",
			goerr.V("base", stored.Base),
			goerr.V("target", stored.Target),
		)
	}

	return nil
}
