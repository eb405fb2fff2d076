package retriever_test

import (
	"context"
	"testing"
	"time"

	"github.com/m-mizutani/gollem"
	"github.com/m-mizutani/gt"

	"github.com/exportin-lab/exportin/pkg/domain/model"
	"github.com/exportin-lab/exportin/pkg/domain/types"
	"github.com/exportin-lab/exportin/pkg/repository/memory"
	"github.com/exportin-lab/exportin/pkg/service/embedding"
	"github.com/exportin-lab/exportin/pkg/service/retriever"
)

// mockLLMClient returns a fixed embedding per input text
type mockLLMClient struct {
	vectors map[string][]float64
}

func (c *mockLLMClient) NewSession(ctx context.Context, options ...gollem.SessionOption) (gollem.Session, error) {
	return nil, nil
}

func (c *mockLLMClient) GenerateEmbedding(ctx context.Context, dimension int, input []string) ([][]float64, error) {
	vec, ok := c.vectors[input[0]]
	if !ok {
		vec = make([]float64, dimension)
		vec[0] = 1
	}
	full := make([]float64, dimension)
	copy(full, vec)
	return [][]float64{full}, nil
}

// axisEmbedding builds a full-dimension vector with the given leading values
func axisEmbedding(leading ...float32) []float32 {
	emb := make([]float32, model.EmbeddingDimension)
	copy(emb, leading)
	return emb
}

func putTemplate(t *testing.T, repo *memory.Memory, id int64, embedding []float32, keywords ...string) {
	t.Helper()
	gt.NoError(t, repo.Template().Put(context.Background(), &model.Template{
		ID:         types.TemplateID(id),
		PromptText: "Answer export regulation questions about {product}.",
		Keywords:   keywords,
		Embedding:  embedding,
		IsActive:   true,
	}))
}

func newRetriever(t *testing.T, repo *memory.Memory, llm gollem.LLMClient, opts ...retriever.Option) retriever.Service {
	t.Helper()
	embedder, err := embedding.New(llm)
	gt.NoError(t, err)

	svc, err := retriever.New(repo.Template(), embedder, opts...)
	gt.NoError(t, err)
	return svc
}

func waitForUsage(t *testing.T, repo *memory.Memory, id types.TemplateID, want int64) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		tpl, err := repo.Template().Get(context.Background(), id)
		gt.NoError(t, err)
		if tpl.UsageCount == want {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("usage count did not reach %d", want)
}

func TestFindBestTemplate(t *testing.T) {
	t.Run("selects the most similar template", func(t *testing.T) {
		repo := memory.New()
		putTemplate(t, repo, 1, axisEmbedding(1, 0))
		putTemplate(t, repo, 2, axisEmbedding(0, 1))

		llm := &mockLLMClient{vectors: map[string][]float64{
			"how much duty on coal?": {0.1, 0.99},
		}}
		svc := newRetriever(t, repo, llm)

		match, err := svc.FindBestTemplate(context.Background(), "how much duty on coal?")
		gt.NoError(t, err)
		gt.Value(t, match).NotNil()
		gt.Value(t, match.Template.ID).Equal(types.TemplateID(2))
		gt.Number(t, match.Similarity).Greater(model.DefaultSimilarityThreshold)
	})

	t.Run("returns no match below the threshold", func(t *testing.T) {
		repo := memory.New()
		putTemplate(t, repo, 1, axisEmbedding(1, 0))

		// Orthogonal query: similarity 0
		llm := &mockLLMClient{vectors: map[string][]float64{
			"unrelated question": {0, 1},
		}}
		svc := newRetriever(t, repo, llm)

		match, err := svc.FindBestTemplate(context.Background(), "unrelated question")
		gt.NoError(t, err)
		gt.Value(t, match).Nil()
	})

	t.Run("threshold is configurable", func(t *testing.T) {
		repo := memory.New()
		putTemplate(t, repo, 1, axisEmbedding(1, 1))

		// cos(45°) ≈ 0.707: above default threshold, below 0.9
		llm := &mockLLMClient{vectors: map[string][]float64{
			"borderline query": {1, 0},
		}}

		strict := newRetriever(t, repo, llm, retriever.WithThreshold(0.9))
		match, err := strict.FindBestTemplate(context.Background(), "borderline query")
		gt.NoError(t, err)
		gt.Value(t, match).Nil()

		lenient := newRetriever(t, repo, llm, retriever.WithThreshold(0.5))
		match, err = lenient.FindBestTemplate(context.Background(), "borderline query")
		gt.NoError(t, err)
		gt.Value(t, match).NotNil()
	})

	t.Run("ties break by keyword overlap then lower ID", func(t *testing.T) {
		repo := memory.New()
		putTemplate(t, repo, 10, axisEmbedding(1, 0), "permit")
		putTemplate(t, repo, 20, axisEmbedding(1, 0), "duty")
		putTemplate(t, repo, 30, axisEmbedding(1, 0))

		llm := &mockLLMClient{vectors: map[string][]float64{
			"what is the export duty rate?": {1, 0},
		}}
		svc := newRetriever(t, repo, llm)

		match, err := svc.FindBestTemplate(context.Background(), "what is the export duty rate?")
		gt.NoError(t, err)
		gt.Value(t, match).NotNil()
		gt.Value(t, match.Template.ID).Equal(types.TemplateID(20))

		// Without keyword overlap the older template wins
		llm.vectors["something else entirely"] = []float64{1, 0}
		match, err = svc.FindBestTemplate(context.Background(), "something else entirely")
		gt.NoError(t, err)
		gt.Value(t, match).NotNil()
		gt.Value(t, match.Template.ID).Equal(types.TemplateID(10))
	})

	t.Run("templates without embeddings are invisible", func(t *testing.T) {
		repo := memory.New()
		putTemplate(t, repo, 1, nil)

		llm := &mockLLMClient{}
		svc := newRetriever(t, repo, llm)

		match, err := svc.FindBestTemplate(context.Background(), "any question")
		gt.NoError(t, err)
		gt.Value(t, match).Nil()
	})

	t.Run("records usage on the selected template", func(t *testing.T) {
		repo := memory.New()
		putTemplate(t, repo, 1, axisEmbedding(1, 0))

		llm := &mockLLMClient{vectors: map[string][]float64{
			"how do I export tin?": {1, 0},
		}}
		svc := newRetriever(t, repo, llm)

		match, err := svc.FindBestTemplate(context.Background(), "how do I export tin?")
		gt.NoError(t, err)
		gt.Value(t, match).NotNil()

		waitForUsage(t, repo, types.TemplateID(1), 1)
	})

	t.Run("reuses the cached template list", func(t *testing.T) {
		repo := memory.New()
		putTemplate(t, repo, 1, axisEmbedding(1, 0))

		llm := &mockLLMClient{vectors: map[string][]float64{
			"first": {1, 0},
			"later": {1, 0},
		}}
		svc := newRetriever(t, repo, llm, retriever.WithListCacheTTL(time.Minute))

		match, err := svc.FindBestTemplate(context.Background(), "first")
		gt.NoError(t, err)
		gt.Value(t, match).NotNil()

		// A template added after the first call is not yet visible
		putTemplate(t, repo, 2, axisEmbedding(1, 0))

		match, err = svc.FindBestTemplate(context.Background(), "later")
		gt.NoError(t, err)
		gt.Value(t, match).NotNil()
		gt.Value(t, match.Template.ID).Equal(types.TemplateID(1))
	})
}
