// Package embeddings implements the Embedding Service (C3): text to
// fixed-dimension vector, with a process-local cache and batched calls
// with bounded in-group parallelism. Grounded on
// app/vector/embeddings.py's EmbeddingClient, the module-level
// singleton there replaced by an explicit struct per the services
// container design note in spec §9.
package embeddings

import (
	"context"
	"strings"
	"sync"

	"github.com/pkoukk/tiktoken-go"
	"golang.org/x/sync/errgroup"
)

// Caller abstracts the external embedding API so tests can substitute a
// fake without network access.
type Caller interface {
	Embed(ctx context.Context, text, model string) ([]float64, error)
}

type Service struct {
	caller    Caller
	model     string
	dimension int
	tokenCap  int
	batchSize int

	mu    sync.RWMutex
	cache map[string][]float64

	encoder *tiktoken.Tiktoken
}

func NewService(caller Caller, model string, dimension, tokenCap, batchSize int) *Service {
	enc, _ := tiktoken.GetEncoding("cl100k_base")
	return &Service{
		caller:    caller,
		model:     model,
		dimension: dimension,
		tokenCap:  tokenCap,
		batchSize: batchSize,
		cache:     make(map[string][]float64),
		encoder:   enc,
	}
}

func (s *Service) zeroVector() []float64 {
	return make([]float64, s.dimension)
}

// truncate caps text at the service's token budget, falling back to a
// rune-length cap when the tokenizer is unavailable.
func (s *Service) truncate(text string) string {
	if s.encoder == nil {
		r := []rune(text)
		if len(r) > s.tokenCap {
			return string(r[:s.tokenCap])
		}
		return text
	}
	tokens := s.encoder.Encode(text, nil, nil)
	if len(tokens) <= s.tokenCap {
		return text
	}
	return s.encoder.Decode(tokens[:s.tokenCap])
}

// Embed returns the embedding for one text, using the cache when
// available and a zero vector when the input is empty or the API call
// fails - callers treat the zero vector as "no useful embedding".
func (s *Service) Embed(ctx context.Context, text string) []float64 {
	if strings.TrimSpace(text) == "" {
		return s.zeroVector()
	}

	s.mu.RLock()
	if v, ok := s.cache[text]; ok {
		s.mu.RUnlock()
		return v
	}
	s.mu.RUnlock()

	truncated := s.truncate(text)
	vec, err := s.caller.Embed(ctx, truncated, s.model)
	if err != nil || len(vec) == 0 {
		return s.zeroVector()
	}

	s.mu.Lock()
	s.cache[text] = vec
	s.mu.Unlock()

	return vec
}

// EmbedBatch processes texts in groups of batchSize with bounded
// in-group parallelism, mirroring embed_batch's asyncio.gather-per-batch
// shape with golang.org/x/sync/errgroup instead.
func (s *Service) EmbedBatch(ctx context.Context, texts []string) [][]float64 {
	results := make([][]float64, len(texts))

	for start := 0; start < len(texts); start += s.batchSize {
		end := start + s.batchSize
		if end > len(texts) {
			end = len(texts)
		}

		g, gctx := errgroup.WithContext(ctx)
		for i := start; i < end; i++ {
			i := i
			g.Go(func() error {
				results[i] = s.Embed(gctx, texts[i])
				return nil
			})
		}
		_ = g.Wait()
	}

	return results
}

func (s *Service) ClearCache() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cache = make(map[string][]float64)
}

func (s *Service) CacheStats() (cachedTexts int) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.cache)
}
