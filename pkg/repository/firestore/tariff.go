package firestore

import (
	"context"
	"errors"
	"strings"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"
	"github.com/shopspring/decimal"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/exportin-lab/exportin/pkg/domain/model"
	"github.com/exportin-lab/exportin/pkg/domain/types"
)

type tariffRateDoc struct {
	CommodityID string `firestore:"CommodityID"`
	Destination string `firestore:"Destination"`
	Percent     string `firestore:"Percent"`
}

func fromTariffRateDoc(d *tariffRateDoc) (*model.TariffRate, error) {
	percent, err := decimal.NewFromString(d.Percent)
	if err != nil {
		return nil, goerr.Wrap(err, "invalid tariff percent",
			goerr.V("commodityID", d.CommodityID),
			goerr.V("percent", d.Percent),
		)
	}

	return &model.TariffRate{
		CommodityID: types.CommodityID(d.CommodityID),
		Destination: d.Destination,
		Percent:     percent,
	}, nil
}

type tariffRepository struct {
	client           *firestore.Client
	collectionPrefix string
}

func newTariffRepository(client *firestore.Client) *tariffRepository {
	return &tariffRepository{client: client}
}

func (r *tariffRepository) collection() *firestore.CollectionRef {
	return r.client.Collection(r.collectionPrefix + "tariff_rates")
}

// Document IDs encode commodity and destination so lookup is a direct Get.
// The destination part is lowercased; "@default" marks the commodity default.
func tariffDocID(commodityID types.CommodityID, destination string) string {
	dest := strings.ToLower(strings.TrimSpace(destination))
	if dest == "" {
		dest = "@default"
	}
	return string(commodityID) + ":" + dest
}

func (r *tariffRepository) getByDocID(ctx context.Context, docID string) (*model.TariffRate, error) {
	doc, err := r.collection().Doc(docID).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, goerr.Wrap(ErrNotFound, "tariff rate not found", goerr.V("docID", docID))
		}
		return nil, goerr.Wrap(err, "failed to get tariff rate", goerr.V("docID", docID))
	}

	var d tariffRateDoc
	if err := doc.DataTo(&d); err != nil {
		return nil, goerr.Wrap(err, "failed to unmarshal tariff rate", goerr.V("docID", docID))
	}

	return fromTariffRateDoc(&d)
}

func (r *tariffRepository) GetRate(ctx context.Context, commodityID types.CommodityID, destination string) (*model.TariffRate, error) {
	if strings.TrimSpace(destination) != "" {
		rate, err := r.getByDocID(ctx, tariffDocID(commodityID, destination))
		if err == nil {
			return rate, nil
		}
		if !errors.Is(err, ErrNotFound) {
			return nil, err
		}
	}

	rate, err := r.getByDocID(ctx, tariffDocID(commodityID, ""))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, goerr.Wrap(ErrNotFound, "tariff rate not found",
				goerr.V("commodityID", commodityID),
				goerr.V("destination", destination),
			)
		}
		return nil, err
	}

	return rate, nil
}

func (r *tariffRepository) Put(ctx context.Context, rate *model.TariffRate) error {
	if err := rate.CommodityID.Validate(); err != nil {
		return goerr.Wrap(err, "invalid tariff rate")
	}

	doc := &tariffRateDoc{
		CommodityID: string(rate.CommodityID),
		Destination: strings.ToLower(strings.TrimSpace(rate.Destination)),
		Percent:     rate.Percent.String(),
	}

	docRef := r.collection().Doc(tariffDocID(rate.CommodityID, rate.Destination))
	if _, err := docRef.Set(ctx, doc); err != nil {
		return goerr.Wrap(err, "failed to put tariff rate",
			goerr.V("commodityID", rate.CommodityID),
			goerr.V("destination", rate.Destination),
		)
	}

	return nil
}
