package scorer

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func baseCandidate() Candidate {
	return Candidate{
		Title:       "Tax reform policy in Brazil",
		Description: "An overview of how the reform affects government revenue",
		URL:         "https://example.com.br/report",
		Language:    "en",
		Provider:    "serper",
		Query:       "tax reform policy",
		Occurrences: 1,
	}
}

func TestScoreIsBoundedAndCached(t *testing.T) {
	s := NewScorer(nil, nil)
	ctx := context.Background()

	score := s.Score(ctx, baseCandidate())
	require.GreaterOrEqual(t, score, 0.0)
	require.LessOrEqual(t, score, 1.0)

	again := s.Score(ctx, baseCandidate())
	assert.Equal(t, score, again)
}

func TestScoreMonotoneInOccurrences(t *testing.T) {
	s := NewScorer(nil, nil)
	ctx := context.Background()

	low := baseCandidate()
	low.Occurrences = 1
	low.URL = "https://one.example.com"

	high := baseCandidate()
	high.Occurrences = 9
	high.URL = "https://two.example.com"

	scoreLow := s.Score(ctx, low)
	scoreHigh := s.Score(ctx, high)

	assert.GreaterOrEqual(t, scoreHigh, scoreLow)
}

func TestScoreAppliesBrazilMultiplier(t *testing.T) {
	s := NewScorer(nil, nil)
	ctx := context.Background()

	plain := baseCandidate()
	plain.URL = "https://example.com/report"
	plain.Title = "Tax reform policy overview"

	brazil := plain
	brazil.URL = "https://example.com.br/report"

	scorePlain := s.Score(ctx, plain)
	scoreBrazil := s.Score(ctx, brazil)

	assert.GreaterOrEqual(t, scoreBrazil, scorePlain)
}

func TestScorePenalizesMetaAnswer(t *testing.T) {
	s := NewScorer(nil, nil)
	ctx := context.Background()

	normal := baseCandidate()
	normal.URL = "https://normal.example.com"

	meta := baseCandidate()
	meta.URL = "https://meta.example.com"
	meta.Title = "Here are the results you requested"
	meta.Description = "Here are the results about tax reform policy"

	assert.Less(t, s.Score(ctx, meta), s.Score(ctx, normal))
}

func TestProviderTrustFallsBackToUnknown(t *testing.T) {
	s := NewScorer(nil, map[string]float64{"unknown": 0.4, "serper": 0.9})
	assert.Equal(t, 0.9, s.providerTrust("serper"))
	assert.Equal(t, 0.4, s.providerTrust("some-new-provider"))
}

func TestAppraiseQualityRecommendations(t *testing.T) {
	t.Run("no hits continues", func(t *testing.T) {
		a := AppraiseQuality(nil, nil, 0.7)
		assert.Equal(t, RecommendContinue, a.Recommendation)
	})

	t.Run("high quality diverse set stops", func(t *testing.T) {
		scores := []float64{0.9, 0.85, 0.92, 0.88, 0.91}
		providers := []string{"serper", "tavily", "exa", "jina", "perplexity"}
		a := AppraiseQuality(scores, providers, 0.7)
		assert.Equal(t, RecommendStop, a.Recommendation)
	})

	t.Run("low quality set continues", func(t *testing.T) {
		scores := []float64{0.1, 0.2, 0.15}
		providers := []string{"serper", "serper", "serper"}
		a := AppraiseQuality(scores, providers, 0.7)
		assert.NotEqual(t, RecommendStop, a.Recommendation)
	})
}
