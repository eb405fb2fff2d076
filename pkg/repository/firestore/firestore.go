package firestore

import (
	"context"
	"errors"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"

	"github.com/exportin-lab/exportin/pkg/domain/interfaces"
)

// ErrNotFound is returned when a requested document does not exist
var ErrNotFound = errors.New("not found")

type Firestore struct {
	client    *firestore.Client
	template  *templateRepository
	commodity *commodityRepository
	currency  *currencyRepository
	tariff    *tariffRepository
}

var _ interfaces.Repository = &Firestore{}

type Option func(*Firestore)

// WithCollectionPrefix prepends a prefix to every collection name, isolating
// test data from production collections in a shared database.
func WithCollectionPrefix(prefix string) Option {
	return func(f *Firestore) {
		f.template.collectionPrefix = prefix
		f.commodity.collectionPrefix = prefix
		f.currency.collectionPrefix = prefix
		f.tariff.collectionPrefix = prefix
	}
}

func New(ctx context.Context, projectID, databaseID string, opts ...Option) (*Firestore, error) {
	client, err := firestore.NewClientWithDatabase(ctx, projectID, databaseID)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create firestore client",
			goerr.V("projectID", projectID),
			goerr.V("databaseID", databaseID),
		)
	}

	f := &Firestore{
		client:    client,
		template:  newTemplateRepository(client),
		commodity: newCommodityRepository(client),
		currency:  newCurrencyRepository(client),
		tariff:    newTariffRepository(client),
	}

	for _, opt := range opts {
		opt(f)
	}

	return f, nil
}

func (f *Firestore) Template() interfaces.TemplateRepository {
	return f.template
}

func (f *Firestore) Commodity() interfaces.CommodityRepository {
	return f.commodity
}

func (f *Firestore) Currency() interfaces.CurrencyRepository {
	return f.currency
}

func (f *Firestore) Tariff() interfaces.TariffRepository {
	return f.tariff
}

func (f *Firestore) Close() error {
	if f.client != nil {
		return f.client.Close()
	}
	return nil
}
