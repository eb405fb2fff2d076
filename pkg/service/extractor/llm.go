package extractor

import (
	"context"
	"encoding/json"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gollem"

	"github.com/exportin-lab/exportin/pkg/domain/model"
)

const extractionSystemPrompt = `You extract shipment facts from questions about export regulations and export duty.
Identify the commodity being exported, the shipment weight, and the destination country.
Normalize the weight to kilograms (1 ton = 1000 kg). Keep the commodity and destination
names as the user wrote them. Omit any field the question does not state; never guess.`

type llmStrategy struct {
	llmClient gollem.LLMClient
	timeout   time.Duration
}

// LLMOption is a functional option for the LLM extraction strategy
type LLMOption func(*llmStrategy)

// WithLLMTimeout bounds a single extraction call
func WithLLMTimeout(d time.Duration) LLMOption {
	return func(s *llmStrategy) {
		s.timeout = d
	}
}

// NewLLM creates the primary, language-model-backed extraction strategy
func NewLLM(llmClient gollem.LLMClient, opts ...LLMOption) (Strategy, error) {
	if llmClient == nil {
		return nil, goerr.New("LLM client is required")
	}

	s := &llmStrategy{
		llmClient: llmClient,
		timeout:   15 * time.Second,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s, nil
}

func (s *llmStrategy) Name() string {
	return "llm"
}

// llmFacts is the JSON shape requested from the model
type llmFacts struct {
	Product     *string  `json:"product,omitempty"`
	WeightKg    *float64 `json:"weight_kg,omitempty"`
	Destination *string  `json:"destination,omitempty"`
}

func (s *llmStrategy) Extract(ctx context.Context, query string) (*model.ExtractedFacts, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	session, err := s.llmClient.NewSession(ctx,
		gollem.WithSessionContentType(gollem.ContentTypeJSON),
		gollem.WithSessionResponseSchema(s.buildResponseSchema()),
		gollem.WithSessionSystemPrompt(extractionSystemPrompt),
	)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create LLM session")
	}

	resp, err := session.GenerateContent(ctx, gollem.Text(query))
	if err != nil {
		return nil, goerr.Wrap(err, "failed to generate extraction")
	}
	if resp == nil || len(resp.Texts) == 0 {
		return nil, goerr.New("empty extraction response")
	}

	raw, ok := firstJSONObject(resp.Texts[0])
	if !ok {
		return nil, goerr.New("no JSON object in extraction response", goerr.V("response", resp.Texts[0]))
	}

	var parsed llmFacts
	if err := json.Unmarshal([]byte(raw), &parsed); err != nil {
		return nil, goerr.Wrap(err, "failed to parse extraction response", goerr.V("response", raw))
	}

	facts := &model.ExtractedFacts{}
	if parsed.Product != nil {
		facts.SetProduct(*parsed.Product)
	}
	if parsed.WeightKg != nil {
		facts.SetWeightKg(*parsed.WeightKg)
	}
	if parsed.Destination != nil {
		facts.SetDestination(*parsed.Destination)
	}

	return facts, nil
}

func (s *llmStrategy) buildResponseSchema() *gollem.Parameter {
	return &gollem.Parameter{
		Type: gollem.TypeObject,
		Properties: map[string]*gollem.Parameter{
			"product": {
				Type:        gollem.TypeString,
				Description: "The commodity being exported, as written in the question",
			},
			"weight_kg": {
				Type:        gollem.TypeNumber,
				Description: "The shipment weight in kilograms",
			},
			"destination": {
				Type:        gollem.TypeString,
				Description: "The destination country, as written in the question",
			},
		},
	}
}

// firstJSONObject returns the first balanced top-level JSON object in text.
// Models occasionally wrap their JSON answer in prose or code fences.
func firstJSONObject(text string) (string, bool) {
	depth := 0
	start := -1
	inString := false
	escaped := false

	for i, r := range text {
		if inString {
			switch {
			case escaped:
				escaped = false
			case r == '\\':
				escaped = true
			case r == '"':
				inString = false
			}
			continue
		}

		switch r {
		case '"':
			if depth > 0 {
				inString = true
			}
		case '{':
			if depth == 0 {
				start = i
			}
			depth++
		case '}':
			if depth > 0 {
				depth--
				if depth == 0 {
					return text[start : i+1], true
				}
			}
		}
	}

	return "", false
}
