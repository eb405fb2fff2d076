package config

import (
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"

	"github.com/exportin-lab/exportin/pkg/domain/model"
	"github.com/exportin-lab/exportin/pkg/domain/types"
)

// Core holds CLI flags for query pipeline tuning
type Core struct {
	threshold      float64
	targetCurrency string
	llmTimeout     time.Duration
}

// Flags returns CLI flags for core configuration
func (c *Core) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.FloatFlag{
			Name:        "similarity-threshold",
			Usage:       "Minimum cosine similarity for a template match",
			Value:       model.DefaultSimilarityThreshold,
			Sources:     cli.EnvVars("EXPORTIN_SIMILARITY_THRESHOLD"),
			Destination: &c.threshold,
		},
		&cli.StringFlag{
			Name:        "target-currency",
			Usage:       "Currency export duty is assessed in",
			Value:       "IDR",
			Sources:     cli.EnvVars("EXPORTIN_TARGET_CURRENCY"),
			Destination: &c.targetCurrency,
		},
		&cli.DurationFlag{
			Name:        "llm-timeout",
			Usage:       "Timeout for a single LLM or embedding call",
			Value:       15 * time.Second,
			Sources:     cli.EnvVars("EXPORTIN_LLM_TIMEOUT"),
			Destination: &c.llmTimeout,
		},
	}
}

// Validate checks the core configuration
func (c *Core) Validate() error {
	if c.threshold < 0 || c.threshold > 1 {
		return goerr.New("similarity threshold must be between 0 and 1", goerr.V("threshold", c.threshold))
	}
	if err := types.CurrencyCode(c.targetCurrency).Validate(); err != nil {
		return goerr.Wrap(err, "invalid target currency")
	}
	return nil
}

// Threshold returns the configured similarity threshold
func (c *Core) Threshold() float64 {
	return c.threshold
}

// TargetCurrency returns the configured duty currency
func (c *Core) TargetCurrency() types.CurrencyCode {
	return types.CurrencyCode(c.targetCurrency)
}

// LLMTimeout returns the configured provider call timeout
func (c *Core) LLMTimeout() time.Duration {
	return c.llmTimeout
}
