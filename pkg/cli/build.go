package cli

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gollem"

	"github.com/exportin-lab/exportin/pkg/cli/config"
	"github.com/exportin-lab/exportin/pkg/domain/interfaces"
	"github.com/exportin-lab/exportin/pkg/service/calculator"
	"github.com/exportin-lab/exportin/pkg/service/extractor"
	"github.com/exportin-lab/exportin/pkg/service/retriever"
	"github.com/exportin-lab/exportin/pkg/usecase"
	"github.com/exportin-lab/exportin/pkg/utils/logging"

	embeddingsvc "github.com/exportin-lab/exportin/pkg/service/embedding"
)

// buildUseCases wires the full query pipeline from configuration. With no LLM
// client every semantic component degrades to its deterministic fallback.
func buildUseCases(ctx context.Context, repo interfaces.Repository, llmClient gollem.LLMClient, coreCfg *config.Core, cacheCfg *config.Cache, refCfg *config.Reference) (*usecase.UseCases, error) {
	gazetteer, err := refCfg.Gazetteer()
	if err != nil {
		return nil, goerr.Wrap(err, "failed to load gazetteer")
	}

	patternStrategy, err := extractor.NewPattern(gazetteer)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to build pattern strategy")
	}

	strategies := []extractor.Strategy{}
	if llmClient != nil {
		llmStrategy, err := extractor.NewLLM(llmClient, extractor.WithLLMTimeout(coreCfg.LLMTimeout()))
		if err != nil {
			return nil, goerr.Wrap(err, "failed to build LLM strategy")
		}
		strategies = append(strategies, llmStrategy)
	} else {
		logging.Default().Info("LLM client not configured, extraction uses the pattern strategy only")
	}
	strategies = append(strategies, patternStrategy)

	extractorSvc, err := extractor.New(strategies...)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to build extractor")
	}

	calculatorSvc, err := calculator.New(repo, calculator.WithTargetCurrency(coreCfg.TargetCurrency()))
	if err != nil {
		return nil, goerr.Wrap(err, "failed to build calculator")
	}

	var retrieverSvc retriever.Service
	if llmClient != nil {
		embedder, err := embeddingsvc.New(llmClient,
			embeddingsvc.WithCache(cacheCfg.EmbeddingCache()),
			embeddingsvc.WithTimeout(coreCfg.LLMTimeout()),
		)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to build embedding service")
		}

		retrieverSvc, err = retriever.New(repo.Template(), embedder,
			retriever.WithThreshold(coreCfg.Threshold()),
			retriever.WithListCacheTTL(cacheCfg.TemplateTTL()),
		)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to build retriever")
		}
	} else {
		logging.Default().Info("LLM client not configured, template retrieval is disabled")
		retrieverSvc = noRetriever{}
	}

	ucOpts := []usecase.Option{}
	if llmClient != nil {
		ucOpts = append(ucOpts, usecase.WithLLMClient(llmClient))
	}

	return usecase.New(repo, retrieverSvc, extractorSvc, calculatorSvc, ucOpts...), nil
}

// noRetriever always reports no match, which routes every query through the
// default template.
type noRetriever struct{}

func (noRetriever) FindBestTemplate(ctx context.Context, queryText string) (*retriever.Match, error) {
	return nil, nil
}
