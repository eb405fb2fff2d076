package embedding

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gollem"

	"github.com/exportin-lab/exportin/pkg/domain/model"
	"github.com/exportin-lab/exportin/pkg/utils/cache"
	"github.com/exportin-lab/exportin/pkg/utils/logging"
)

// ErrProviderUnavailable indicates the embedding provider could not serve the
// request even after a retry. Callers degrade to non-semantic behavior.
var ErrProviderUnavailable = errors.New("embedding provider unavailable")

// Service converts text into embedding vectors for similarity retrieval
type Service interface {
	// Embed returns the embedding vector for the given text. Identical texts
	// are served from cache without a provider call.
	Embed(ctx context.Context, text string) ([]float32, error)
}

type client struct {
	llmClient gollem.LLMClient
	cache     *cache.Cache[[]float32]
	timeout   time.Duration
}

// Option is a functional option for client configuration
type Option func(*client)

// WithCache sets the embedding cache. Without it every call hits the provider.
func WithCache(c *cache.Cache[[]float32]) Option {
	return func(cl *client) {
		cl.cache = c
	}
}

// WithTimeout bounds a single provider call
func WithTimeout(d time.Duration) Option {
	return func(cl *client) {
		cl.timeout = d
	}
}

// New creates an embedding service backed by the provided LLM client
func New(llmClient gollem.LLMClient, opts ...Option) (Service, error) {
	if llmClient == nil {
		return nil, goerr.New("LLM client is required")
	}

	c := &client{
		llmClient: llmClient,
		timeout:   15 * time.Second,
	}

	for _, opt := range opts {
		opt(c)
	}

	if c.cache == nil {
		c.cache = cache.New[[]float32](0, 0) // disabled
	}

	return c, nil
}

func (c *client) Embed(ctx context.Context, text string) ([]float32, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, goerr.New("embedding input is empty")
	}

	key := cache.Key(text)
	if vec, ok := c.cache.Get(key); ok {
		return vec, nil
	}

	vec, err := c.generate(ctx, text)
	if err != nil {
		// One retry before degrading: transient provider hiccups are common
		logging.From(ctx).Warn("embedding call failed, retrying once", "error", err)
		vec, err = c.generate(ctx, text)
	}
	if err != nil {
		return nil, goerr.Wrap(ErrProviderUnavailable, "failed to generate embedding", goerr.V("cause", err.Error()))
	}

	c.cache.Set(key, vec)
	return vec, nil
}

func (c *client) generate(ctx context.Context, text string) ([]float32, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	embeddings, err := c.llmClient.GenerateEmbedding(ctx, model.EmbeddingDimension, []string{text})
	if err != nil {
		return nil, goerr.Wrap(err, "failed to generate embedding")
	}

	if len(embeddings) == 0 || len(embeddings[0]) == 0 {
		return nil, goerr.New("no embedding returned")
	}
	if len(embeddings[0]) != model.EmbeddingDimension {
		return nil, goerr.New("embedding has wrong dimension", goerr.V("dimension", len(embeddings[0])))
	}

	result := make([]float32, len(embeddings[0]))
	for i, v := range embeddings[0] {
		result[i] = float32(v)
	}

	return result, nil
}
