package usecase

import (
	"github.com/m-mizutani/gollem"

	"github.com/exportin-lab/exportin/pkg/domain/interfaces"
	"github.com/exportin-lab/exportin/pkg/service/calculator"
	"github.com/exportin-lab/exportin/pkg/service/extractor"
	"github.com/exportin-lab/exportin/pkg/service/retriever"
)

type UseCases struct {
	repo      interfaces.Repository
	llmClient gollem.LLMClient

	Query *QueryUseCase
}

type Option func(*UseCases)

func WithLLMClient(llmClient gollem.LLMClient) Option {
	return func(uc *UseCases) {
		uc.llmClient = llmClient
	}
}

// New wires the use case layer. The LLM client is optional: without it answer
// generation always uses the deterministic fallback.
func New(repo interfaces.Repository, retrieverSvc retriever.Service, extractorSvc extractor.Service, calculatorSvc calculator.Service, opts ...Option) *UseCases {
	uc := &UseCases{
		repo: repo,
	}

	for _, opt := range opts {
		opt(uc)
	}

	uc.Query = NewQueryUseCase(repo, retrieverSvc, extractorSvc, calculatorSvc, uc.llmClient)

	return uc
}
