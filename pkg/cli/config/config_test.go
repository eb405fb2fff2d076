package config_test

import (
	"context"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/shopspring/decimal"

	"github.com/exportin-lab/exportin/pkg/cli/config"
	"github.com/exportin-lab/exportin/pkg/repository/memory"
	"github.com/urfave/cli/v3"
)

// runFlags parses args against the given flags so Destination fields and
// defaults are populated the same way the real CLI does it
func runFlags(t *testing.T, flags []cli.Flag, args ...string) {
	t.Helper()
	cmd := &cli.Command{
		Name:  "test",
		Flags: flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			return nil
		},
	}
	gt.NoError(t, cmd.Run(context.Background(), append([]string{"test"}, args...)))
}

func TestCoreConfig(t *testing.T) {
	t.Run("defaults are valid", func(t *testing.T) {
		var cfg config.Core
		runFlags(t, cfg.Flags())
		gt.NoError(t, cfg.Validate())
		gt.Value(t, cfg.Threshold()).Equal(0.70)
		gt.Value(t, cfg.TargetCurrency().String()).Equal("IDR")
	})

	t.Run("rejects out-of-range thresholds", func(t *testing.T) {
		var cfg config.Core
		runFlags(t, cfg.Flags(), "--similarity-threshold", "1.5")
		gt.Error(t, cfg.Validate())
	})

	t.Run("rejects malformed currencies", func(t *testing.T) {
		var cfg config.Core
		runFlags(t, cfg.Flags(), "--target-currency", "rupiah")
		gt.Error(t, cfg.Validate())
	})
}

func TestCacheConfig(t *testing.T) {
	var cfg config.Cache
	runFlags(t, cfg.Flags(), "--embedding-cache-entries", "2")

	c := cfg.EmbeddingCache()
	c.Set("a", []float32{1})
	c.Set("b", []float32{2})
	c.Set("c", []float32{3})

	// Oldest entry is evicted at the configured capacity
	_, ok := c.Get("a")
	gt.Bool(t, ok).False()
	_, ok = c.Get("c")
	gt.Bool(t, ok).True()
}

func TestReferenceSeed(t *testing.T) {
	t.Run("built-in seed loads and calculates", func(t *testing.T) {
		var cfg config.Reference
		runFlags(t, cfg.Flags(), "--seed")
		gt.Bool(t, cfg.ShouldSeed()).True()

		repo := memory.New()
		ctx := context.Background()
		gt.NoError(t, cfg.Seed(ctx, repo))

		coal, err := repo.Commodity().GetByName(ctx, "batu bara")
		gt.NoError(t, err)
		gt.Bool(t, coal.UnitPrice.Equal(decimal.RequireFromString("2000"))).True()

		rate, err := repo.Currency().GetLatestRate(ctx, "USD", "IDR")
		gt.NoError(t, err)
		gt.Bool(t, rate.Rate.Equal(decimal.RequireFromString("16000"))).True()

		tariff, err := repo.Tariff().GetRate(ctx, "coal", "Japan")
		gt.NoError(t, err)
		gt.Bool(t, tariff.Percent.Equal(decimal.RequireFromString("5"))).True()
	})

	t.Run("built-in gazetteer loads", func(t *testing.T) {
		var cfg config.Reference
		runFlags(t, cfg.Flags())

		gazetteer, err := cfg.Gazetteer()
		gt.NoError(t, err)
		gt.Number(t, len(gazetteer.Countries)).Greater(0)
		gt.Number(t, len(gazetteer.Commodities)).Greater(0)
	})
}
