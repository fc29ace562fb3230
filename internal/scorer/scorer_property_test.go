package scorer

import (
	"context"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

// TestScoreMonotoneInOccurrencesProperty checks spec §8's occurrence
// monotonicity invariant across a generated range of occurrence counts,
// holding every other candidate field fixed.
func TestScoreMonotoneInOccurrencesProperty(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	properties := gopter.NewProperties(parameters)

	properties.Property("score never decreases as occurrences increase", prop.ForAll(
		func(lowOcc, delta int) bool {
			s := NewScorer(nil, nil)
			ctx := context.Background()

			highOcc := lowOcc + delta

			low := Candidate{
				Title: "Tax reform policy", Description: "overview of the reform",
				URL: "https://one.example.com", Language: "en", Provider: "serper",
				Query: "tax reform", Occurrences: lowOcc,
			}
			high := low
			high.URL = "https://two.example.com"
			high.Occurrences = highOcc

			return s.Score(ctx, high) >= s.Score(ctx, low)
		},
		gen.IntRange(1, 10),
		gen.IntRange(0, 10),
	))

	properties.TestingRun(t)
}
