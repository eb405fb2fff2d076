package model

import (
	"strings"
	"time"

	"github.com/exportin-lab/exportin/pkg/domain/types"
	"github.com/m-mizutani/goerr/v2"
)

// EmbeddingDimension is the dimension of the embedding vector. It must match
// the embedding provider's output dimension; all stored template embeddings
// share it.
const EmbeddingDimension = 768

// DefaultSimilarityThreshold is the minimum cosine similarity required to
// accept a retrieved template as a match.
const DefaultSimilarityThreshold = 0.70

// Template is a reusable instruction text used to prompt the language model,
// annotated with a precomputed embedding for retrieval. Templates are created
// by an administrative process; this core only reads them and counts usage.
type Template struct {
	ID         types.TemplateID
	PromptText string
	Keywords   []string
	Embedding  []float32
	IsActive   bool
	UsageCount int64
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Validate checks template invariants. An empty embedding is allowed (the
// template is then invisible to similarity retrieval); a non-empty one must
// have exactly EmbeddingDimension elements.
func (t *Template) Validate() error {
	if strings.TrimSpace(t.PromptText) == "" {
		return goerr.New("template prompt text is required", goerr.V("id", t.ID))
	}
	if len(t.Embedding) != 0 && len(t.Embedding) != EmbeddingDimension {
		return goerr.New("template embedding has wrong dimension",
			goerr.V("id", t.ID),
			goerr.V("dimension", len(t.Embedding)),
		)
	}
	return nil
}

// KeywordMatches counts how many of the template's keywords occur in the
// given text, case-insensitively.
func (t *Template) KeywordMatches(text string) int {
	lower := strings.ToLower(text)
	count := 0
	for _, kw := range t.Keywords {
		kw = strings.ToLower(strings.TrimSpace(kw))
		if kw != "" && strings.Contains(lower, kw) {
			count++
		}
	}
	return count
}

// Clone returns a deep copy of the template
func (t *Template) Clone() *Template {
	copied := *t
	if t.Keywords != nil {
		copied.Keywords = append([]string(nil), t.Keywords...)
	}
	if t.Embedding != nil {
		copied.Embedding = append([]float32(nil), t.Embedding...)
	}
	return &copied
}

// defaultTemplatePrompt is used when no stored template clears the
// similarity threshold.
const defaultTemplatePrompt = "You are an export assistant. Answer the user's question about export " +
	"regulations and export duty clearly and concisely. When a calculation result is provided, walk " +
	"through every intermediate figure. When required facts are missing, ask for exactly the missing ones."

// DefaultTemplate returns the fixed fallback template. Its ID is 0, which is
// never assigned to stored templates, and its similarity is reported as zero.
func DefaultTemplate() *Template {
	return &Template{
		ID:         0,
		PromptText: defaultTemplatePrompt,
		IsActive:   true,
	}
}
