package retriever

import (
	"context"
	"math"
	"sort"
	"time"

	"github.com/m-mizutani/goerr/v2"

	"github.com/exportin-lab/exportin/pkg/domain/interfaces"
	"github.com/exportin-lab/exportin/pkg/domain/model"
	"github.com/exportin-lab/exportin/pkg/service/embedding"
	"github.com/exportin-lab/exportin/pkg/utils/async"
	"github.com/exportin-lab/exportin/pkg/utils/cache"
	"github.com/exportin-lab/exportin/pkg/utils/logging"
)

// activeTemplatesKey caches the full active template list under one entry
const activeTemplatesKey = "active_templates"

// Match is a retrieved template with its similarity to the query
type Match struct {
	Template   *model.Template
	Similarity float64
}

// Service retrieves the stored template most similar to a query
type Service interface {
	// FindBestTemplate embeds the query and returns the active template with
	// the highest cosine similarity at or above the threshold. Templates with
	// exactly equal similarity rank by keyword-match count against the query,
	// then by the lower template ID. It returns (nil, nil) when no template
	// clears the threshold, and records usage on the selected template
	// asynchronously.
	FindBestTemplate(ctx context.Context, queryText string) (*Match, error)
}

type service struct {
	templates interfaces.TemplateRepository
	embedder  embedding.Service
	threshold float64
	listCache *cache.Cache[[]*model.Template]
}

// Option is a functional option for service configuration
type Option func(*service)

// WithThreshold overrides the minimum similarity required for a match
func WithThreshold(threshold float64) Option {
	return func(s *service) {
		s.threshold = threshold
	}
}

// WithListCacheTTL sets how long the active template list is reused before
// re-reading the repository. Zero disables the list cache.
func WithListCacheTTL(ttl time.Duration) Option {
	return func(s *service) {
		if ttl <= 0 {
			s.listCache = cache.New[[]*model.Template](0, 0)
			return
		}
		s.listCache = cache.New[[]*model.Template](1, ttl)
	}
}

// New creates a template retriever
func New(templates interfaces.TemplateRepository, embedder embedding.Service, opts ...Option) (Service, error) {
	if templates == nil {
		return nil, goerr.New("template repository is required")
	}
	if embedder == nil {
		return nil, goerr.New("embedding service is required")
	}

	s := &service{
		templates: templates,
		embedder:  embedder,
		threshold: model.DefaultSimilarityThreshold,
		listCache: cache.New[[]*model.Template](1, time.Minute),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s, nil
}

func (s *service) FindBestTemplate(ctx context.Context, queryText string) (*Match, error) {
	queryVec, err := s.embedder.Embed(ctx, queryText)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to embed query")
	}

	templates, err := s.listActive(ctx)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list active templates")
	}

	type candidate struct {
		template   *model.Template
		similarity float64
		keywords   int
	}

	candidates := make([]candidate, 0, len(templates))
	for _, tpl := range templates {
		if len(tpl.Embedding) == 0 {
			continue
		}
		candidates = append(candidates, candidate{
			template:   tpl,
			similarity: cosineSimilarity(queryVec, tpl.Embedding),
			keywords:   tpl.KeywordMatches(queryText),
		})
	}

	if len(candidates) == 0 {
		return nil, nil
	}

	// Rank by similarity, then keyword overlap, then the older template
	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].similarity != candidates[j].similarity {
			return candidates[i].similarity > candidates[j].similarity
		}
		if candidates[i].keywords != candidates[j].keywords {
			return candidates[i].keywords > candidates[j].keywords
		}
		return candidates[i].template.ID < candidates[j].template.ID
	})

	best := candidates[0]
	if best.similarity < s.threshold {
		logging.From(ctx).Debug("no template cleared the similarity threshold",
			"bestSimilarity", best.similarity,
			"threshold", s.threshold,
		)
		return nil, nil
	}

	id := best.template.ID
	async.Dispatch(ctx, func(ctx context.Context) error {
		// Best-effort telemetry: a failed increment never fails the query
		return s.templates.IncrementUsage(ctx, id)
	})

	return &Match{
		Template:   best.template,
		Similarity: best.similarity,
	}, nil
}

func (s *service) listActive(ctx context.Context) ([]*model.Template, error) {
	if templates, ok := s.listCache.Get(activeTemplatesKey); ok {
		return templates, nil
	}

	templates, err := s.templates.ListActive(ctx)
	if err != nil {
		return nil, err
	}

	s.listCache.Set(activeTemplatesKey, templates)
	return templates, nil
}

func cosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}

	denom := math.Sqrt(normA) * math.Sqrt(normB)
	if denom == 0 {
		return 0
	}

	return dot / denom
}
