package usecase

import (
	"bytes"
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"text/template"

	"github.com/m-mizutani/gollem"

	"github.com/exportin-lab/exportin/pkg/domain/model"
	"github.com/exportin-lab/exportin/pkg/domain/types"
	"github.com/exportin-lab/exportin/pkg/service/calculator"
	"github.com/exportin-lab/exportin/pkg/utils/logging"
)

//go:embed prompt/answer.md
var answerPromptTmpl string

var answerPrompt = template.Must(template.New("answer").Parse(answerPromptTmpl))

type answerInput struct {
	Query       string
	Template    *model.Template
	Facts       *model.ExtractedFacts
	Calculation *model.DutyCalculationResult
	Missing     []types.FactField
	CalcIssue   error
}

// generateAnswer produces the answer text. The selected template drives the
// LLM; when the LLM is unavailable or misbehaves, a deterministic summary is
// returned instead so the caller always gets an answer.
func (uc *QueryUseCase) generateAnswer(ctx context.Context, input *answerInput) string {
	if uc.llmClient == nil {
		return fallbackAnswer(input)
	}

	answer, err := uc.generateLLMAnswer(ctx, input)
	if err != nil {
		logging.From(ctx).Warn("answer generation failed, using deterministic fallback", "error", err)
		return fallbackAnswer(input)
	}

	return answer
}

func (uc *QueryUseCase) generateLLMAnswer(ctx context.Context, input *answerInput) (string, error) {
	userPrompt, err := renderAnswerPrompt(input)
	if err != nil {
		return "", err
	}

	session, err := uc.llmClient.NewSession(ctx,
		gollem.WithSessionSystemPrompt(input.Template.PromptText),
	)
	if err != nil {
		return "", err
	}

	resp, err := session.GenerateContent(ctx, gollem.Text(userPrompt))
	if err != nil {
		return "", err
	}
	if resp == nil || len(resp.Texts) == 0 {
		return "", errors.New("empty answer from LLM")
	}

	answer := sanitizeAnswer(strings.Join(resp.Texts, "\n"))
	if answer == "" {
		return "", errors.New("blank answer from LLM")
	}

	return answer, nil
}

func renderAnswerPrompt(input *answerInput) (string, error) {
	factsJSON, err := json.MarshalIndent(input.Facts, "", "  ")
	if err != nil {
		return "", err
	}

	data := map[string]string{
		"Query":     input.Query,
		"FactsJSON": string(factsJSON),
	}

	if input.Calculation != nil {
		calcJSON, err := json.MarshalIndent(input.Calculation, "", "  ")
		if err != nil {
			return "", err
		}
		data["CalculationJSON"] = string(calcJSON)
	}

	if len(input.Missing) > 0 {
		data["Missing"] = "yes"
		data["MissingList"] = joinFields(input.Missing)
	}

	if input.CalcIssue != nil {
		data["Issue"] = describeCalcIssue(input.CalcIssue)
	}

	var buf bytes.Buffer
	if err := answerPrompt.Execute(&buf, data); err != nil {
		return "", err
	}

	return buf.String(), nil
}

// sanitizeAnswer strips code fences and surrounding whitespace from model
// output. Some models wrap plain-text answers in fences despite instructions.
func sanitizeAnswer(text string) string {
	text = strings.TrimSpace(text)

	if strings.HasPrefix(text, "```") {
		if idx := strings.Index(text, "\n"); idx >= 0 {
			text = text[idx+1:]
		} else {
			text = strings.TrimPrefix(text, "```")
		}
		text = strings.TrimSuffix(strings.TrimSpace(text), "```")
	}

	return strings.TrimSpace(text)
}

// fallbackAnswer builds an answer without the LLM. It covers the same cases
// the prompt does: a finished calculation, missing facts, or a lookup problem.
func fallbackAnswer(input *answerInput) string {
	if len(input.Missing) > 0 {
		return fmt.Sprintf(
			"I need a bit more information to calculate the export duty. Please tell me: %s.",
			joinFields(input.Missing),
		)
	}

	if input.CalcIssue != nil {
		return describeCalcIssue(input.CalcIssue)
	}

	if calc := input.Calculation; calc != nil {
		return fmt.Sprintf(
			"Exporting %s kg of %s to %s: %s %s x %s %s = %s %s total. "+
				"Converted at %s, that is %s %s. "+
				"With an export duty rate of %s%%, the estimated duty is %s %s.",
			calc.WeightKg, calc.Commodity, calc.Destination,
			calc.UnitPrice, calc.SourceCurrency.String()+"/"+calc.ReferenceUnit.String(),
			calc.WeightRefUnit, calc.ReferenceUnit,
			calc.TotalPriceSource, calc.SourceCurrency,
			calc.CurrencyRate, calc.TotalPriceTarget, calc.TargetCurrency,
			calc.TariffPercent, calc.DutyAmount, calc.TargetCurrency,
		)
	}

	return "I could not work out a duty estimate for this question. " +
		"Please include the commodity, the shipment weight, and the destination country."
}

func describeCalcIssue(err error) string {
	switch {
	case errors.Is(err, calculator.ErrUnknownCommodity):
		return "I could not find this commodity in the reference data, so no duty estimate is possible. " +
			"Please check the commodity name or try a common alias."
	case errors.Is(err, calculator.ErrUnknownCurrencyRate):
		return "No exchange rate is available for this commodity's pricing currency, so the duty " +
			"cannot be converted. Please try again later."
	default:
		return "The duty calculation could not be completed due to a reference data problem."
	}
}

func joinFields(fields []types.FactField) string {
	names := make([]string, len(fields))
	for i, f := range fields {
		names[i] = f.String()
	}
	return strings.Join(names, ", ")
}
