package embeddings

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCaller struct {
	calls int
	fail  bool
}

func (f *fakeCaller) Embed(ctx context.Context, text, model string) ([]float64, error) {
	f.calls++
	if f.fail {
		return nil, errors.New("boom")
	}
	return []float64{1, 2, 3}, nil
}

func TestEmbedReturnsZeroVectorForEmptyInput(t *testing.T) {
	s := NewService(&fakeCaller{}, "model", 3, 100, 5)
	vec := s.Embed(context.Background(), "   ")
	assert.Equal(t, []float64{0, 0, 0}, vec)
}

func TestEmbedCachesResult(t *testing.T) {
	caller := &fakeCaller{}
	s := NewService(caller, "model", 3, 100, 5)

	first := s.Embed(context.Background(), "hello world")
	second := s.Embed(context.Background(), "hello world")

	assert.Equal(t, first, second)
	assert.Equal(t, 1, caller.calls, "second call should hit the cache, not the caller")
}

func TestEmbedFallsBackToZeroVectorOnError(t *testing.T) {
	s := NewService(&fakeCaller{fail: true}, "model", 3, 100, 5)
	vec := s.Embed(context.Background(), "some text")
	assert.Equal(t, []float64{0, 0, 0}, vec)
}

func TestEmbedBatchProcessesAllTexts(t *testing.T) {
	s := NewService(&fakeCaller{}, "model", 3, 100, 2)
	texts := []string{"a", "b", "c", "d", "e"}
	results := s.EmbedBatch(context.Background(), texts)

	require.Len(t, results, len(texts))
	for _, r := range results {
		assert.Len(t, r, 3)
	}
}

func TestClearCacheForcesRecall(t *testing.T) {
	caller := &fakeCaller{}
	s := NewService(caller, "model", 3, 100, 5)

	s.Embed(context.Background(), "text")
	s.ClearCache()
	s.Embed(context.Background(), "text")

	assert.Equal(t, 2, caller.calls)
	assert.Equal(t, 0, s.CacheStats())
}
