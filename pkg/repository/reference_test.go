package repository_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"github.com/shopspring/decimal"

	"github.com/exportin-lab/exportin/pkg/domain/interfaces"
	"github.com/exportin-lab/exportin/pkg/domain/model"
	"github.com/exportin-lab/exportin/pkg/domain/types"
	"github.com/exportin-lab/exportin/pkg/repository/memory"
)

func newCommodityID() types.CommodityID {
	return types.CommodityID(fmt.Sprintf("test-%d", time.Now().UnixNano()))
}

func runCommodityRepositoryTest(t *testing.T, newRepo func(t *testing.T) interfaces.Repository) {
	t.Helper()

	t.Run("GetByName matches canonical name and aliases case-insensitively", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		id := newCommodityID()
		gt.NoError(t, repo.Commodity().Put(ctx, &model.Commodity{
			ID:        id,
			Code:      "2606.00",
			Name:      "Bauxite",
			Aliases:   []string{"bauksit", "aluminium ore"},
			UnitPrice: decimal.RequireFromString("2000"),
			Unit:      types.UnitTon,
			Currency:  "USD",
		}))

		for _, name := range []string{"Bauxite", "bauxite", "BAUKSIT", "  aluminium ore "} {
			got, err := repo.Commodity().GetByName(ctx, name)
			gt.NoError(t, err)
			gt.Value(t, got.ID).Equal(id)
			gt.Bool(t, got.UnitPrice.Equal(decimal.RequireFromString("2000"))).True()
		}
	})

	t.Run("GetByName unknown commodity returns not found", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		_, err := repo.Commodity().GetByName(ctx, fmt.Sprintf("no-such-%d", time.Now().UnixNano()))
		gt.Error(t, err)
		gt.Bool(t, isNotFound(err)).True()
	})

	t.Run("Put rejects invalid commodity IDs", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		err := repo.Commodity().Put(ctx, &model.Commodity{
			ID:   "Not A Slug",
			Name: "Broken",
		})
		gt.Error(t, err)
	})

	t.Run("List returns stored commodities", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		id := newCommodityID()
		gt.NoError(t, repo.Commodity().Put(ctx, &model.Commodity{
			ID:        id,
			Name:      "Copper concentrate",
			UnitPrice: decimal.RequireFromString("8500.50"),
			Unit:      types.UnitTon,
			Currency:  "USD",
		}))

		commodities, err := repo.Commodity().List(ctx)
		gt.NoError(t, err)

		found := false
		for _, c := range commodities {
			if c.ID == id {
				found = true
				gt.Bool(t, c.UnitPrice.Equal(decimal.RequireFromString("8500.50"))).True()
			}
		}
		gt.Bool(t, found).True()
	})
}

func runCurrencyRepositoryTest(t *testing.T, newRepo func(t *testing.T) interfaces.Repository) {
	t.Helper()

	t.Run("GetLatestRate prefers the most recent effective date", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		base := types.CurrencyCode("USD")
		target := types.CurrencyCode("IDR")
		day := func(offset int) time.Time {
			return time.Date(2025, 6, 1+offset, 0, 0, 0, 0, time.UTC)
		}

		gt.NoError(t, repo.Currency().Put(ctx, &model.CurrencyRate{
			Base: base, Target: target,
			Rate:          decimal.RequireFromString("15900"),
			EffectiveDate: day(0),
			CreatedAt:     day(0),
		}))
		gt.NoError(t, repo.Currency().Put(ctx, &model.CurrencyRate{
			Base: base, Target: target,
			Rate:          decimal.RequireFromString("16000"),
			EffectiveDate: day(2),
			CreatedAt:     day(2),
		}))
		gt.NoError(t, repo.Currency().Put(ctx, &model.CurrencyRate{
			Base: base, Target: target,
			Rate:          decimal.RequireFromString("15950"),
			EffectiveDate: day(1),
			CreatedAt:     day(3),
		}))

		got, err := repo.Currency().GetLatestRate(ctx, base, target)
		gt.NoError(t, err)
		gt.Bool(t, got.Rate.Equal(decimal.RequireFromString("16000"))).True()
	})

	t.Run("GetLatestRate breaks effective date ties by creation time", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		base := types.CurrencyCode("EUR")
		target := types.CurrencyCode("IDR")
		effective := time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC)

		gt.NoError(t, repo.Currency().Put(ctx, &model.CurrencyRate{
			Base: base, Target: target,
			Rate:          decimal.RequireFromString("17100"),
			EffectiveDate: effective,
			CreatedAt:     effective.Add(1 * time.Hour),
		}))
		gt.NoError(t, repo.Currency().Put(ctx, &model.CurrencyRate{
			Base: base, Target: target,
			Rate:          decimal.RequireFromString("17200"),
			EffectiveDate: effective,
			CreatedAt:     effective.Add(2 * time.Hour),
		}))

		got, err := repo.Currency().GetLatestRate(ctx, base, target)
		gt.NoError(t, err)
		gt.Bool(t, got.Rate.Equal(decimal.RequireFromString("17200"))).True()
	})

	t.Run("GetLatestRate unknown pair returns not found", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		_, err := repo.Currency().GetLatestRate(ctx, "XTS", "XXX")
		gt.Error(t, err)
		gt.Bool(t, isNotFound(err)).True()
	})

	t.Run("Put rejects malformed currency codes", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		err := repo.Currency().Put(ctx, &model.CurrencyRate{
			Base:   "usd",
			Target: "IDR",
			Rate:   decimal.RequireFromString("1"),
		})
		gt.Error(t, err)
	})
}

func runTariffRepositoryTest(t *testing.T, newRepo func(t *testing.T) interfaces.Repository) {
	t.Helper()

	t.Run("GetRate prefers the destination-specific rate", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		id := newCommodityID()
		gt.NoError(t, repo.Tariff().Put(ctx, &model.TariffRate{
			CommodityID: id,
			Percent:     decimal.RequireFromString("5"),
		}))
		gt.NoError(t, repo.Tariff().Put(ctx, &model.TariffRate{
			CommodityID: id,
			Destination: "Japan",
			Percent:     decimal.RequireFromString("7.5"),
		}))

		got, err := repo.Tariff().GetRate(ctx, id, "japan")
		gt.NoError(t, err)
		gt.Bool(t, got.Percent.Equal(decimal.RequireFromString("7.5"))).True()
		gt.Bool(t, got.IsDefault()).False()
	})

	t.Run("GetRate falls back to the commodity default", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		id := newCommodityID()
		gt.NoError(t, repo.Tariff().Put(ctx, &model.TariffRate{
			CommodityID: id,
			Percent:     decimal.RequireFromString("5"),
		}))

		got, err := repo.Tariff().GetRate(ctx, id, "Germany")
		gt.NoError(t, err)
		gt.Bool(t, got.Percent.Equal(decimal.RequireFromString("5"))).True()
		gt.Bool(t, got.IsDefault()).True()
	})

	t.Run("GetRate without any rate returns not found", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		_, err := repo.Tariff().GetRate(ctx, newCommodityID(), "Japan")
		gt.Error(t, err)
		gt.Bool(t, isNotFound(err)).True()
	})
}

func TestMemoryCommodityRepository(t *testing.T) {
	runCommodityRepositoryTest(t, func(t *testing.T) interfaces.Repository {
		return memory.New()
	})
}

func TestFirestoreCommodityRepository(t *testing.T) {
	runCommodityRepositoryTest(t, newFirestoreRepository)
}

func TestMemoryCurrencyRepository(t *testing.T) {
	runCurrencyRepositoryTest(t, func(t *testing.T) interfaces.Repository {
		return memory.New()
	})
}

func TestFirestoreCurrencyRepository(t *testing.T) {
	runCurrencyRepositoryTest(t, newFirestoreRepository)
}

func TestMemoryTariffRepository(t *testing.T) {
	runTariffRepositoryTest(t, func(t *testing.T) interfaces.Repository {
		return memory.New()
	})
}

func TestFirestoreTariffRepository(t *testing.T) {
	runTariffRepositoryTest(t, newFirestoreRepository)
}
