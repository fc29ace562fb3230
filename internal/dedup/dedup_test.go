package dedup

import (
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestContentHashDeterministic(t *testing.T) {
	a := ContentHash("Title One", "Some description")
	b := ContentHash("Title One", "Some description")
	assert.Equal(t, a, b)

	c := ContentHash("Title One", "A different description")
	assert.NotEqual(t, a, c)
}

func TestContentHashNormalizesCaseAndPunctuation(t *testing.T) {
	a := ContentHash("Economic Policy!", "Brazil's new rules.")
	b := ContentHash("economic policy", "brazils new rules")
	assert.Equal(t, a, b)
}

func TestJaccardEdgeCases(t *testing.T) {
	assert.Equal(t, 1.0, Jaccard("", ""))
	assert.Equal(t, 0.0, Jaccard("something", ""))
	assert.Equal(t, 1.0, Jaccard("same text here", "same text here"))
}

func TestJaccardSymmetry(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	properties := gopter.NewProperties(parameters)

	properties.Property("Jaccard is symmetric", prop.ForAll(
		func(a, b string) bool {
			return Jaccard(a, b) == Jaccard(b, a)
		},
		gen.AlphaString(),
		gen.AlphaString(),
	))

	properties.TestingRun(t)
}

func TestDeduplicatorProcessDetectsExactDuplicate(t *testing.T) {
	d := NewDeduplicator(0.80, 0.85, nil)

	first := d.Process("Tax reform", "A description of the reform", "https://a.example.com", 0.7)
	require.False(t, first.IsDuplicate)

	second := d.Process("Tax reform", "A description of the reform", "https://b.example.com", 0.6)
	require.True(t, second.IsDuplicate)
	assert.Equal(t, first.MatchedHash, second.MatchedHash)
	assert.Greater(t, second.ScoreBoost, 0.0)
}

func TestDeduplicatorProcessDetectsNearDuplicateViaJaccard(t *testing.T) {
	d := NewDeduplicator(0.5, 0.85, nil)

	first := d.Process("Brazilian tax reform overview", "full text about reform", "https://a.example.com", 0.7)
	require.False(t, first.IsDuplicate)

	second := d.Process("Brazilian tax reform overview today", "full text about reform", "https://c.example.com", 0.7)
	assert.True(t, second.IsDuplicate)
	assert.Equal(t, first.MatchedHash, second.MatchedHash)
}

func TestOccurrenceBoostCapped(t *testing.T) {
	d := NewDeduplicator(0.80, 0.85, nil)
	d.Process("Same", "content", "https://a.example.com", 0.5)
	var last Outcome
	for i := 0; i < 20; i++ {
		last = d.Process("Same", "content", "https://a.example.com", 0.5)
	}
	assert.LessOrEqual(t, last.ScoreBoost, occurrenceBoostCap)
}

func TestStatsCountsDuplicates(t *testing.T) {
	d := NewDeduplicator(0.80, 0.85, nil)
	d.Process("One", "desc one", "https://a.example.com", 0.5)
	d.Process("One", "desc one", "https://b.example.com", 0.5)
	d.Process("Two", "desc two", "https://c.example.com", 0.5)

	stats := d.Stats()
	assert.Equal(t, 2, stats.DistinctHashes)
	assert.Equal(t, 1, stats.DuplicatesDetected)
	assert.Equal(t, 3, stats.TotalOccurrences)
}
