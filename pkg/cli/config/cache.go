package config

import (
	"time"

	"github.com/urfave/cli/v3"

	"github.com/exportin-lab/exportin/pkg/utils/cache"
)

// Cache holds CLI flags for the in-process caches
type Cache struct {
	embeddingEntries int
	embeddingTTL     time.Duration
	templateTTL      time.Duration
}

// Flags returns CLI flags for cache configuration
func (c *Cache) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.IntFlag{
			Name:        "embedding-cache-entries",
			Usage:       "Maximum number of cached query embeddings (0 disables the cache)",
			Value:       1024,
			Sources:     cli.EnvVars("EXPORTIN_EMBEDDING_CACHE_ENTRIES"),
			Destination: &c.embeddingEntries,
		},
		&cli.DurationFlag{
			Name:        "embedding-cache-ttl",
			Usage:       "How long a cached embedding stays valid (0 means no expiry)",
			Value:       24 * time.Hour,
			Sources:     cli.EnvVars("EXPORTIN_EMBEDDING_CACHE_TTL"),
			Destination: &c.embeddingTTL,
		},
		&cli.DurationFlag{
			Name:        "template-cache-ttl",
			Usage:       "How long the active template list is reused before re-reading",
			Value:       time.Minute,
			Sources:     cli.EnvVars("EXPORTIN_TEMPLATE_CACHE_TTL"),
			Destination: &c.templateTTL,
		},
	}
}

// EmbeddingCache builds the embedding cache from the configured flags
func (c *Cache) EmbeddingCache() *cache.Cache[[]float32] {
	return cache.New[[]float32](int(c.embeddingEntries), c.embeddingTTL)
}

// TemplateTTL returns how long the active template list may be reused
func (c *Cache) TemplateTTL() time.Duration {
	return c.templateTTL
}
