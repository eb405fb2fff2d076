package config

import (
	"context"
	_ "embed"
	"os"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/pelletier/go-toml/v2"
	"github.com/shopspring/decimal"
	"github.com/urfave/cli/v3"

	"github.com/exportin-lab/exportin/pkg/domain/interfaces"
	"github.com/exportin-lab/exportin/pkg/domain/model"
	"github.com/exportin-lab/exportin/pkg/domain/types"
	"github.com/exportin-lab/exportin/pkg/service/extractor"
	"github.com/exportin-lab/exportin/pkg/utils/logging"
)

//go:embed seed.toml
var defaultSeedTOML []byte

// Reference holds CLI flags for gazetteer and reference data seeding
type Reference struct {
	gazetteerPath string
	seedPath      string
	seed          bool
}

// Flags returns CLI flags for reference data configuration
func (r *Reference) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "gazetteer",
			Usage:       "Path to a TOML gazetteer replacing the built-in bilingual set",
			Sources:     cli.EnvVars("EXPORTIN_GAZETTEER"),
			Destination: &r.gazetteerPath,
		},
		&cli.StringFlag{
			Name:        "seed-file",
			Usage:       "Path to a TOML reference data set replacing the built-in one",
			Sources:     cli.EnvVars("EXPORTIN_SEED_FILE"),
			Destination: &r.seedPath,
		},
		&cli.BoolFlag{
			Name:        "seed",
			Usage:       "Load the reference data set into the repository at startup",
			Sources:     cli.EnvVars("EXPORTIN_SEED"),
			Destination: &r.seed,
		},
	}
}

// Gazetteer loads the configured, or the built-in, gazetteer
func (r *Reference) Gazetteer() (*extractor.Gazetteer, error) {
	if r.gazetteerPath != "" {
		return extractor.LoadGazetteer(r.gazetteerPath)
	}
	return extractor.DefaultGazetteer()
}

// ShouldSeed reports whether reference data seeding was requested
func (r *Reference) ShouldSeed() bool {
	return r.seed
}

// seedCommodity mirrors one [[commodities]] entry in the seed file
type seedCommodity struct {
	ID        string   `toml:"id"`
	Code      string   `toml:"code"`
	Name      string   `toml:"name"`
	Aliases   []string `toml:"aliases"`
	UnitPrice string   `toml:"unit_price"`
	Unit      string   `toml:"unit"`
	Currency  string   `toml:"currency"`
}

type seedRate struct {
	Base          string    `toml:"base"`
	Target        string    `toml:"target"`
	Rate          string    `toml:"rate"`
	EffectiveDate time.Time `toml:"effective_date"`
}

type seedTariff struct {
	Commodity   string `toml:"commodity"`
	Destination string `toml:"destination"`
	Percent     string `toml:"percent"`
}

type seedFile struct {
	Commodities []seedCommodity `toml:"commodities"`
	Rates       []seedRate      `toml:"rates"`
	Tariffs     []seedTariff    `toml:"tariffs"`
}

// Seed loads the configured (or built-in) reference data set into the
// repository. Existing records with the same identity are replaced.
func (r *Reference) Seed(ctx context.Context, repo interfaces.Repository) error {
	data := defaultSeedTOML
	if r.seedPath != "" {
		loaded, err := os.ReadFile(r.seedPath)
		if err != nil {
			return goerr.Wrap(err, "failed to read seed file", goerr.V("path", r.seedPath))
		}
		data = loaded
	}

	var seed seedFile
	if err := toml.Unmarshal(data, &seed); err != nil {
		return goerr.Wrap(err, "failed to parse seed file")
	}

	for _, c := range seed.Commodities {
		price, err := decimal.NewFromString(c.UnitPrice)
		if err != nil {
			return goerr.Wrap(err, "invalid unit price in seed file", goerr.V("id", c.ID))
		}
		unit, err := types.ParseWeightUnit(c.Unit)
		if err != nil {
			return goerr.Wrap(err, "invalid unit in seed file", goerr.V("id", c.ID))
		}
		if err := repo.Commodity().Put(ctx, &model.Commodity{
			ID:        types.CommodityID(c.ID),
			Code:      c.Code,
			Name:      c.Name,
			Aliases:   c.Aliases,
			UnitPrice: price,
			Unit:      unit,
			Currency:  types.CurrencyCode(c.Currency),
		}); err != nil {
			return goerr.Wrap(err, "failed to seed commodity", goerr.V("id", c.ID))
		}
	}

	for _, o := range seed.Rates {
		rate, err := decimal.NewFromString(o.Rate)
		if err != nil {
			return goerr.Wrap(err, "invalid rate in seed file", goerr.V("base", o.Base), goerr.V("target", o.Target))
		}
		if err := repo.Currency().Put(ctx, &model.CurrencyRate{
			Base:          types.CurrencyCode(o.Base),
			Target:        types.CurrencyCode(o.Target),
			Rate:          rate,
			EffectiveDate: o.EffectiveDate,
		}); err != nil {
			return goerr.Wrap(err, "failed to seed currency rate", goerr.V("base", o.Base), goerr.V("target", o.Target))
		}
	}

	for _, t := range seed.Tariffs {
		percent, err := decimal.NewFromString(t.Percent)
		if err != nil {
			return goerr.Wrap(err, "invalid percent in seed file", goerr.V("commodity", t.Commodity))
		}
		if err := repo.Tariff().Put(ctx, &model.TariffRate{
			CommodityID: types.CommodityID(t.Commodity),
			Destination: t.Destination,
			Percent:     percent,
		}); err != nil {
			return goerr.Wrap(err, "failed to seed tariff rate", goerr.V("commodity", t.Commodity))
		}
	}

	logging.Default().Info("Seeded reference data",
		"commodities", len(seed.Commodities),
		"rates", len(seed.Rates),
		"tariffs", len(seed.Tariffs),
	)

	return nil
}
