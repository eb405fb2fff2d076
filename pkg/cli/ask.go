package cli

import (
	"context"
	"strings"

	"github.com/fatih/color"
	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"

	"github.com/exportin-lab/exportin/pkg/cli/config"
	"github.com/exportin-lab/exportin/pkg/utils/logging"
)

func cmdAsk() *cli.Command {
	var geminiCfg config.Gemini
	var repoCfg config.Repository
	var coreCfg config.Core
	var cacheCfg config.Cache
	var refCfg config.Reference

	flags := []cli.Flag{}
	flags = append(flags, geminiCfg.Flags()...)
	flags = append(flags, repoCfg.Flags()...)
	flags = append(flags, coreCfg.Flags()...)
	flags = append(flags, cacheCfg.Flags()...)
	flags = append(flags, refCfg.Flags()...)

	return &cli.Command{
		Name:      "ask",
		Usage:     "Answer a single question from the command line",
		ArgsUsage: "<question>",
		Flags:     flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			query := strings.Join(c.Args().Slice(), " ")
			if strings.TrimSpace(query) == "" {
				return goerr.New("a question is required, e.g. exportin ask \"duty for 10 tons of coal to Japan\"")
			}

			if err := coreCfg.Validate(); err != nil {
				return err
			}

			repo, err := repoCfg.Configure(ctx)
			if err != nil {
				return goerr.Wrap(err, "failed to initialize repository")
			}
			defer func() {
				if err := repo.Close(); err != nil {
					logging.Default().Error("failed to close repository", "error", err.Error())
				}
			}()

			if refCfg.ShouldSeed() || repoCfg.Backend() == "memory" {
				if err := refCfg.Seed(ctx, repo); err != nil {
					return goerr.Wrap(err, "failed to seed reference data")
				}
			}

			llmClient, err := geminiCfg.Configure(ctx)
			if err != nil {
				return goerr.Wrap(err, "failed to configure Gemini client")
			}

			uc, err := buildUseCases(ctx, repo, llmClient, &coreCfg, &cacheCfg, &refCfg)
			if err != nil {
				return goerr.Wrap(err, "failed to build use cases")
			}

			resp := uc.Query.Handle(ctx, query)

			bold := color.New(color.Bold)
			faint := color.New(color.Faint)
			warn := color.New(color.FgYellow)

			bold.Println(resp.Answer)

			if calc := resp.Calculation; calc != nil {
				faint.Println()
				faint.Printf("  commodity       %s (%s)\n", calc.Commodity, calc.CommodityID)
				faint.Printf("  weight          %s kg (%s %s)\n", calc.WeightKg, calc.WeightRefUnit, calc.ReferenceUnit)
				faint.Printf("  destination     %s\n", calc.Destination)
				faint.Printf("  unit price      %s %s per %s\n", calc.UnitPrice, calc.SourceCurrency, calc.ReferenceUnit)
				faint.Printf("  total (%s)     %s\n", calc.SourceCurrency, calc.TotalPriceSource)
				faint.Printf("  rate            %s\n", calc.CurrencyRate)
				faint.Printf("  total (%s)     %s\n", calc.TargetCurrency, calc.TotalPriceTarget)
				faint.Printf("  tariff          %s%%\n", calc.TariffPercent)
				bold.Printf("  estimated duty  %s %s\n", calc.DutyAmount, calc.TargetCurrency)
			}

			if len(resp.MissingFields) > 0 {
				names := make([]string, len(resp.MissingFields))
				for i, f := range resp.MissingFields {
					names[i] = f.String()
				}
				warn.Printf("\nmissing: %s\n", strings.Join(names, ", "))
			}

			return nil
		},
	}
}
