package firestore

import (
	"context"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"
	"github.com/shopspring/decimal"
	"google.golang.org/api/iterator"

	"github.com/exportin-lab/exportin/pkg/domain/model"
	"github.com/exportin-lab/exportin/pkg/domain/types"
)

// commodityDoc is the Firestore document representation of model.Commodity.
// Monetary amounts are stored as decimal strings to avoid float drift.
type commodityDoc struct {
	ID        string    `firestore:"ID"`
	Code      string    `firestore:"Code"`
	Name      string    `firestore:"Name"`
	Aliases   []string  `firestore:"Aliases"`
	UnitPrice string    `firestore:"UnitPrice"`
	Unit      string    `firestore:"Unit"`
	Currency  string    `firestore:"Currency"`
	PriceDate time.Time `firestore:"PriceDate"`
	CreatedAt time.Time `firestore:"CreatedAt"`
}

func toCommodityDoc(c *model.Commodity) *commodityDoc {
	return &commodityDoc{
		ID:        string(c.ID),
		Code:      c.Code,
		Name:      c.Name,
		Aliases:   c.Aliases,
		UnitPrice: c.UnitPrice.String(),
		Unit:      string(c.Unit),
		Currency:  string(c.Currency),
		PriceDate: c.PriceDate,
		CreatedAt: c.CreatedAt,
	}
}

func fromCommodityDoc(d *commodityDoc) (*model.Commodity, error) {
	price, err := decimal.NewFromString(d.UnitPrice)
	if err != nil {
		return nil, goerr.Wrap(err, "invalid unit price", goerr.V("id", d.ID), goerr.V("unitPrice", d.UnitPrice))
	}

	return &model.Commodity{
		ID:        types.CommodityID(d.ID),
		Code:      d.Code,
		Name:      d.Name,
		Aliases:   d.Aliases,
		UnitPrice: price,
		Unit:      types.WeightUnit(d.Unit),
		Currency:  types.CurrencyCode(d.Currency),
		PriceDate: d.PriceDate,
		CreatedAt: d.CreatedAt,
	}, nil
}

type commodityRepository struct {
	client           *firestore.Client
	collectionPrefix string
}

func newCommodityRepository(client *firestore.Client) *commodityRepository {
	return &commodityRepository{client: client}
}

func (r *commodityRepository) collection() *firestore.CollectionRef {
	return r.client.Collection(r.collectionPrefix + "commodities")
}

// GetByName scans the full commodity set client-side. Alias matching is
// case-insensitive, which Firestore queries cannot express; the reference set
// is small enough that a scan is acceptable.
func (r *commodityRepository) GetByName(ctx context.Context, name string) (*model.Commodity, error) {
	commodities, err := r.List(ctx)
	if err != nil {
		return nil, err
	}

	for _, c := range commodities {
		if c.Matches(name) {
			return c, nil
		}
	}

	return nil, goerr.Wrap(ErrNotFound, "commodity not found", goerr.V("name", name))
}

func (r *commodityRepository) List(ctx context.Context) ([]*model.Commodity, error) {
	iter := r.collection().OrderBy("ID", firestore.Asc).Documents(ctx)
	defer iter.Stop()

	commodities := make([]*model.Commodity, 0)
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to iterate commodities")
		}

		var d commodityDoc
		if err := doc.DataTo(&d); err != nil {
			return nil, goerr.Wrap(err, "failed to unmarshal commodity")
		}

		c, err := fromCommodityDoc(&d)
		if err != nil {
			return nil, err
		}
		commodities = append(commodities, c)
	}

	return commodities, nil
}

func (r *commodityRepository) Put(ctx context.Context, commodity *model.Commodity) error {
	if err := commodity.ID.Validate(); err != nil {
		return goerr.Wrap(err, "invalid commodity")
	}

	stored := commodity.Clone()
	if stored.CreatedAt.IsZero() {
		stored.CreatedAt = time.Now().UTC()
	}

	docRef := r.collection().Doc(string(stored.ID))
	if _, err := docRef.Set(ctx, toCommodityDoc(stored)); err != nil {
		return goerr.Wrap(err, "failed to put commodity", goerr.V("id", stored.ID))
	}

	return nil
}
