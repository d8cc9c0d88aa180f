package embedding

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"sync"

	"github.com/jonathan/employee-cv/internal/logger"
)

// Cache stores vectors by key
type Cache interface {
	Get(ctx context.Context, key string) ([]float32, bool, error)
	Set(ctx context.Context, key string, vec []float32) error
}

// CachedEmbedder serves repeated texts from a cache. Cache failures are
// logged and fall through to the wrapped embedder.
type CachedEmbedder struct {
	next  Embedder
	cache Cache
	model string
}

// NewCachedEmbedder wraps next with cache. model namespaces the keys so that
// vectors from different models never mix.
func NewCachedEmbedder(next Embedder, cache Cache, model string) *CachedEmbedder {
	return &CachedEmbedder{next: next, cache: cache, model: model}
}

// Embed returns the cached vector for text, embedding and storing it on a miss
func (c *CachedEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	key := CacheKey(c.model, text)

	vec, ok, err := c.cache.Get(ctx, key)
	if err != nil {
		logger.Ctx(ctx).Warn().Err(err).Str("key", key).Msg("embedding cache read failed")
	}
	if ok {
		return vec, nil
	}

	vec, err = c.next.Embed(ctx, text)
	if err != nil {
		return nil, err
	}

	if err := c.cache.Set(ctx, key, vec); err != nil {
		logger.Ctx(ctx).Warn().Err(err).Str("key", key).Msg("embedding cache write failed")
	}
	return vec, nil
}

// CacheKey derives the cache key for text embedded by model
func CacheKey(model, text string) string {
	sum := sha256.Sum256([]byte(text))
	return "emb:" + model + ":" + hex.EncodeToString(sum[:])
}

// MemoryCache is an in-process Cache
type MemoryCache struct {
	mu      sync.RWMutex
	vectors map[string][]float32
}

// NewMemoryCache creates an empty in-process cache
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{vectors: make(map[string][]float32)}
}

// Get returns a copy of the vector stored under key
func (m *MemoryCache) Get(_ context.Context, key string) ([]float32, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	vec, ok := m.vectors[key]
	if !ok {
		return nil, false, nil
	}
	return append([]float32(nil), vec...), true, nil
}

// Set stores a copy of vec under key
func (m *MemoryCache) Set(_ context.Context, key string, vec []float32) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.vectors[key] = append([]float32(nil), vec...)
	return nil
}

// Len returns the number of cached vectors
func (m *MemoryCache) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.vectors)
}
