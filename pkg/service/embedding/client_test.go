package embedding_test

import (
	"context"
	"errors"
	"testing"

	"github.com/m-mizutani/gollem"
	"github.com/m-mizutani/gt"

	"github.com/exportin-lab/exportin/pkg/domain/model"
	"github.com/exportin-lab/exportin/pkg/service/embedding"
	"github.com/exportin-lab/exportin/pkg/utils/cache"
)

// mockLLMClient is a mock gollem LLMClient for testing
type mockLLMClient struct {
	generateEmbeddingFn func(ctx context.Context, dimension int, input []string) ([][]float64, error)
	embeddingCalls      int
}

func (c *mockLLMClient) NewSession(ctx context.Context, options ...gollem.SessionOption) (gollem.Session, error) {
	return nil, errors.New("not implemented")
}

func (c *mockLLMClient) GenerateEmbedding(ctx context.Context, dimension int, input []string) ([][]float64, error) {
	c.embeddingCalls++
	if c.generateEmbeddingFn != nil {
		return c.generateEmbeddingFn(ctx, dimension, input)
	}
	vec := make([]float64, dimension)
	vec[0] = 1.0
	return [][]float64{vec}, nil
}

func TestEmbed(t *testing.T) {
	t.Run("returns provider vector with expected dimension", func(t *testing.T) {
		llm := &mockLLMClient{}
		svc, err := embedding.New(llm)
		gt.NoError(t, err)

		vec, err := svc.Embed(context.Background(), "export duty for coal")
		gt.NoError(t, err)
		gt.Array(t, vec).Length(model.EmbeddingDimension)
		gt.Value(t, vec[0]).Equal(float32(1.0))
	})

	t.Run("identical text is served from cache", func(t *testing.T) {
		llm := &mockLLMClient{}
		svc, err := embedding.New(llm, embedding.WithCache(cache.New[[]float32](16, 0)))
		gt.NoError(t, err)

		ctx := context.Background()
		_, err = svc.Embed(ctx, "what documents do I need to export nickel?")
		gt.NoError(t, err)
		_, err = svc.Embed(ctx, "what documents do I need to export nickel?")
		gt.NoError(t, err)

		gt.Value(t, llm.embeddingCalls).Equal(1)
	})

	t.Run("different texts are embedded separately", func(t *testing.T) {
		llm := &mockLLMClient{}
		svc, err := embedding.New(llm, embedding.WithCache(cache.New[[]float32](16, 0)))
		gt.NoError(t, err)

		ctx := context.Background()
		_, err = svc.Embed(ctx, "tariff for bauxite")
		gt.NoError(t, err)
		_, err = svc.Embed(ctx, "tariff for copper")
		gt.NoError(t, err)

		gt.Value(t, llm.embeddingCalls).Equal(2)
	})

	t.Run("retries once then reports provider unavailable", func(t *testing.T) {
		llm := &mockLLMClient{
			generateEmbeddingFn: func(ctx context.Context, dimension int, input []string) ([][]float64, error) {
				return nil, errors.New("deadline exceeded")
			},
		}
		svc, err := embedding.New(llm)
		gt.NoError(t, err)

		_, err = svc.Embed(context.Background(), "export duty for coal")
		gt.Error(t, err)
		gt.Bool(t, errors.Is(err, embedding.ErrProviderUnavailable)).True()
		gt.Value(t, llm.embeddingCalls).Equal(2)
	})

	t.Run("recovers when the retry succeeds", func(t *testing.T) {
		failures := 1
		llm := &mockLLMClient{}
		llm.generateEmbeddingFn = func(ctx context.Context, dimension int, input []string) ([][]float64, error) {
			if failures > 0 {
				failures--
				return nil, errors.New("transient")
			}
			vec := make([]float64, dimension)
			return [][]float64{vec}, nil
		}

		svc, err := embedding.New(llm)
		gt.NoError(t, err)

		_, err = svc.Embed(context.Background(), "export duty for coal")
		gt.NoError(t, err)
	})

	t.Run("rejects empty input", func(t *testing.T) {
		svc, err := embedding.New(&mockLLMClient{})
		gt.NoError(t, err)

		_, err = svc.Embed(context.Background(), "   ")
		gt.Error(t, err)
	})

	t.Run("rejects wrong provider dimension", func(t *testing.T) {
		llm := &mockLLMClient{
			generateEmbeddingFn: func(ctx context.Context, dimension int, input []string) ([][]float64, error) {
				return [][]float64{{0.1, 0.2, 0.3}}, nil
			},
		}
		svc, err := embedding.New(llm)
		gt.NoError(t, err)

		_, err = svc.Embed(context.Background(), "export duty for coal")
		gt.Error(t, err)
	})
}
