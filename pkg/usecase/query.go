package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gollem"
	"golang.org/x/sync/errgroup"

	"github.com/exportin-lab/exportin/pkg/domain/interfaces"
	"github.com/exportin-lab/exportin/pkg/domain/model"
	"github.com/exportin-lab/exportin/pkg/domain/types"
	"github.com/exportin-lab/exportin/pkg/service/calculator"
	"github.com/exportin-lab/exportin/pkg/service/extractor"
	"github.com/exportin-lab/exportin/pkg/service/retriever"
	"github.com/exportin-lab/exportin/pkg/utils/errutil"
	"github.com/exportin-lab/exportin/pkg/utils/logging"
)

// QueryUseCase answers export regulation questions end to end: retrieve the
// best instruction template, extract shipment facts, compute duty, and
// generate the answer text.
type QueryUseCase struct {
	repo       interfaces.Repository
	retriever  retriever.Service
	extractor  extractor.Service
	calculator calculator.Service
	llmClient  gollem.LLMClient
}

// NewQueryUseCase creates a new QueryUseCase
func NewQueryUseCase(repo interfaces.Repository, retrieverSvc retriever.Service, extractorSvc extractor.Service, calculatorSvc calculator.Service, llmClient gollem.LLMClient) *QueryUseCase {
	return &QueryUseCase{
		repo:       repo,
		retriever:  retrieverSvc,
		extractor:  extractorSvc,
		calculator: calculatorSvc,
		llmClient:  llmClient,
	}
}

// Handle answers one query. It never fails: every degradation path (provider
// outages, unknown reference data, malformed input) still produces a Response
// the caller can show to the user.
func (uc *QueryUseCase) Handle(ctx context.Context, queryText string) (resp *model.Response) {
	logger := logging.From(ctx)

	resp = &model.Response{
		QueryID:       uuid.Must(uuid.NewV7()).String(),
		ExtractedData: &model.ExtractedFacts{},
		GeneratedAt:   time.Now().UTC(),
	}

	defer func() {
		if r := recover(); r != nil {
			_ = errutil.Handle(ctx, goerr.New("panic while handling query",
				goerr.V("panic", r),
				goerr.V("queryID", resp.QueryID),
			), "panic while handling query")
			resp.Answer = "Something went wrong while answering your question. Please try again."
			resp.MissingFields = nil
		}
	}()

	queryText = strings.TrimSpace(queryText)
	if queryText == "" {
		resp.MissingFields = types.AllFactFields()
		resp.Answer = "Please ask a question about export regulations or export duty, " +
			"including the commodity, the shipment weight, and the destination country."
		return resp
	}

	// Retrieval and extraction are independent; run them concurrently.
	// Retrieval failure degrades to the default template instead of failing.
	var match *retriever.Match
	var facts *model.ExtractedFacts

	eg, egCtx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		m, err := uc.retriever.FindBestTemplate(egCtx, queryText)
		if err != nil {
			logger.Warn("template retrieval failed, using default template",
				"error", err, "queryID", resp.QueryID)
			return nil
		}
		match = m
		return nil
	})
	eg.Go(func() error {
		facts = uc.extractor.Extract(egCtx, queryText)
		return nil
	})
	_ = eg.Wait()

	if facts == nil {
		facts = &model.ExtractedFacts{}
	}
	resp.ExtractedData = facts

	template := model.DefaultTemplate()
	if match != nil {
		template = match.Template
		resp.Similarity = match.Similarity
		id := match.Template.ID
		resp.TemplateID = &id
	}

	var calcIssue error
	calculation, err := uc.calculator.Calculate(ctx, facts)
	switch {
	case err == nil:
		resp.Calculation = calculation
	default:
		if mfe, ok := calculator.AsMissingFields(err); ok {
			resp.MissingFields = mfe.Fields
		} else {
			logger.Warn("duty calculation failed", "error", err, "queryID", resp.QueryID)
			calcIssue = err
		}
	}

	resp.Answer = uc.generateAnswer(ctx, &answerInput{
		Query:       queryText,
		Template:    template,
		Facts:       facts,
		Calculation: resp.Calculation,
		Missing:     resp.MissingFields,
		CalcIssue:   calcIssue,
	})

	return resp
}
