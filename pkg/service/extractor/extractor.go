package extractor

import (
	"context"

	"github.com/m-mizutani/goerr/v2"

	"github.com/exportin-lab/exportin/pkg/domain/model"
	"github.com/exportin-lab/exportin/pkg/utils/logging"
)

// Strategy is one way of pulling structured facts out of a free-text query
type Strategy interface {
	Name() string
	Extract(ctx context.Context, query string) (*model.ExtractedFacts, error)
}

// Service extracts structured shipment facts from user queries
type Service interface {
	// Extract runs the configured strategies in order and returns the facts
	// from the first one that succeeds. It never fails: when every strategy
	// errors, it returns empty facts so the caller can ask for clarification.
	Extract(ctx context.Context, query string) *model.ExtractedFacts
}

type chain struct {
	strategies []Strategy
}

// New creates an extraction service from an ordered strategy chain
func New(strategies ...Strategy) (Service, error) {
	if len(strategies) == 0 {
		return nil, goerr.New("at least one extraction strategy is required")
	}
	return &chain{strategies: strategies}, nil
}

func (c *chain) Extract(ctx context.Context, query string) *model.ExtractedFacts {
	logger := logging.From(ctx)

	for _, strategy := range c.strategies {
		facts, err := strategy.Extract(ctx, query)
		if err != nil {
			logger.Warn("extraction strategy failed, trying next",
				"strategy", strategy.Name(),
				"error", err,
			)
			continue
		}
		if facts == nil {
			facts = &model.ExtractedFacts{}
		}
		return facts
	}

	logger.Warn("all extraction strategies failed, returning empty facts")
	return &model.ExtractedFacts{}
}
