package embedding

import (
	"context"
	"errors"
	"math"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/employee-cv/internal/collab"
)

// MockEmbedder is a mock implementation of Embedder for testing
type MockEmbedder struct {
	mu        sync.Mutex
	calls     int
	EmbedFunc func(ctx context.Context, text string) ([]float32, error)
}

func (m *MockEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	m.mu.Lock()
	m.calls++
	m.mu.Unlock()
	if m.EmbedFunc != nil {
		return m.EmbedFunc(ctx, text)
	}
	return []float32{1, 0}, nil
}

func (m *MockEmbedder) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

func l2(v []float32) float64 {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	return math.Sqrt(sum)
}

func TestNormalize(t *testing.T) {
	out := Normalize([]float32{3, 4})
	assert.InDelta(t, 0.6, out[0], 1e-6)
	assert.InDelta(t, 0.8, out[1], 1e-6)
	assert.InDelta(t, 1.0, l2(out), 1e-6)
}

func TestNormalize_ZeroVectorStaysZero(t *testing.T) {
	out := Normalize([]float32{0, 0, 0})
	assert.Equal(t, []float32{0, 0, 0}, out)
}

func TestNormalize_DoesNotMutateInput(t *testing.T) {
	in := []float32{2, 0}
	_ = Normalize(in)
	assert.Equal(t, []float32{2, 0}, in)
}

func TestHashEmbedder_Deterministic(t *testing.T) {
	h := NewHashEmbedder(64)
	a, err := h.Embed(context.Background(), "Senior Go engineer, payments")
	require.NoError(t, err)
	b, err := h.Embed(context.Background(), "senior go engineer payments")
	require.NoError(t, err)

	assert.Len(t, a, 64)
	assert.Equal(t, a, b)
}

func TestHashEmbedder_SharedVocabularyIsCloser(t *testing.T) {
	h := NewHashEmbedder(DefaultHashDimensions)
	ctx := context.Background()
	dot := func(x, y []float32) float64 {
		var s float64
		for i := range x {
			s += float64(x[i]) * float64(y[i])
		}
		return s
	}

	base, _ := h.Embed(ctx, "backend engineer golang kubernetes")
	near, _ := h.Embed(ctx, "golang backend engineer")
	far, _ := h.Embed(ctx, "watercolour painting hobby")

	assert.Greater(t, dot(Normalize(base), Normalize(near)), dot(Normalize(base), Normalize(far)))
}

func TestHashEmbedder_EmptyText(t *testing.T) {
	vec, err := NewHashEmbedder(0).Embed(context.Background(), "")
	require.NoError(t, err)
	assert.Len(t, vec, DefaultHashDimensions)
	assert.Zero(t, l2(vec))
}

func TestWithTimeout_Success(t *testing.T) {
	e := WithTimeout(&MockEmbedder{}, time.Second)
	vec, err := e.Embed(context.Background(), "text")
	require.NoError(t, err)
	assert.Equal(t, []float32{1, 0}, vec)
}

func TestWithTimeout_DeadlineSurfacesAsCallError(t *testing.T) {
	slow := &MockEmbedder{EmbedFunc: func(ctx context.Context, _ string) ([]float32, error) {
		<-ctx.Done()
		return nil, ctx.Err()
	}}

	_, err := WithTimeout(slow, 10*time.Millisecond).Embed(context.Background(), "text")

	var callErr *collab.CallError
	require.ErrorAs(t, err, &callErr)
	assert.True(t, callErr.Timeout)
	assert.True(t, callErr.Retryable())
	assert.Equal(t, "embedding", callErr.Service)
}

func TestWithTimeout_TransportError(t *testing.T) {
	failing := &MockEmbedder{EmbedFunc: func(context.Context, string) ([]float32, error) {
		return nil, errors.New("connection refused")
	}}

	_, err := WithTimeout(failing, time.Second).Embed(context.Background(), "text")

	var callErr *collab.CallError
	require.ErrorAs(t, err, &callErr)
	assert.False(t, callErr.Timeout)
}

func TestCachedEmbedder_HitsCache(t *testing.T) {
	mock := &MockEmbedder{}
	cache := NewMemoryCache()
	e := NewCachedEmbedder(mock, cache, "test-model")
	ctx := context.Background()

	first, err := e.Embed(ctx, "hello")
	require.NoError(t, err)
	second, err := e.Embed(ctx, "hello")
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, mock.Calls())
	assert.Equal(t, 1, cache.Len())
}

func TestCachedEmbedder_ErrorNotCached(t *testing.T) {
	mock := &MockEmbedder{EmbedFunc: func(context.Context, string) ([]float32, error) {
		return nil, errors.New("boom")
	}}
	cache := NewMemoryCache()

	_, err := NewCachedEmbedder(mock, cache, "m").Embed(context.Background(), "hello")
	assert.Error(t, err)
	assert.Equal(t, 0, cache.Len())
}

type failingCache struct{}

func (failingCache) Get(context.Context, string) ([]float32, bool, error) {
	return nil, false, errors.New("cache down")
}

func (failingCache) Set(context.Context, string, []float32) error {
	return errors.New("cache down")
}

func TestCachedEmbedder_CacheFailureFallsThrough(t *testing.T) {
	mock := &MockEmbedder{}
	vec, err := NewCachedEmbedder(mock, failingCache{}, "m").Embed(context.Background(), "hello")
	require.NoError(t, err)
	assert.Equal(t, []float32{1, 0}, vec)
}

func TestCacheKey(t *testing.T) {
	a := CacheKey("model-a", "text")
	assert.Equal(t, a, CacheKey("model-a", "text"))
	assert.NotEqual(t, a, CacheKey("model-b", "text"))
	assert.NotEqual(t, a, CacheKey("model-a", "other"))
	assert.Contains(t, a, "emb:model-a:")
}

func TestVectorEncoding(t *testing.T) {
	vec := []float32{0.25, -1.5, 3.0e-7}
	decoded, err := decodeVector(encodeVector(vec))
	require.NoError(t, err)
	assert.Equal(t, vec, decoded)

	_, err = decodeVector([]byte{1, 2, 3})
	assert.Error(t, err)
}
