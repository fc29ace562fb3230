package vectorstore

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddAndQueryReturnsClosestFirst(t *testing.T) {
	s := NewStore()

	s.AddOne(CollectionResults, "a", []float64{1, 0, 0}, map[string]string{"failure_id": "1"}, "a")
	s.AddOne(CollectionResults, "b", []float64{0, 1, 0}, map[string]string{"failure_id": "1"}, "b")
	s.AddOne(CollectionResults, "c", []float64{0.9, 0.1, 0}, map[string]string{"failure_id": "2"}, "c")

	matches := s.Query(CollectionResults, []float64{1, 0, 0}, 2, nil)
	require.Len(t, matches, 2)
	assert.Equal(t, "a", matches[0].Entry.ID)
	assert.Equal(t, 1.0, matches[0].Similarity)
}

func TestQueryAppliesMetadataFilter(t *testing.T) {
	s := NewStore()
	s.AddOne(CollectionFailures, "x", []float64{1, 1}, map[string]string{"failure_id": "1"}, "x")
	s.AddOne(CollectionFailures, "y", []float64{1, 1}, map[string]string{"failure_id": "2"}, "y")

	matches := s.Query(CollectionFailures, []float64{1, 1}, 10, map[string]string{"failure_id": "2"})
	require.Len(t, matches, 1)
	assert.Equal(t, "y", matches[0].Entry.ID)
}

func TestGetByFailureIDAndCount(t *testing.T) {
	s := NewStore()
	s.AddOne(CollectionQueries, "q1", []float64{0.1}, map[string]string{"failure_id": "7"}, "q1")
	s.AddOne(CollectionQueries, "q2", []float64{0.2}, map[string]string{"failure_id": "7"}, "q2")
	s.AddOne(CollectionQueries, "q3", []float64{0.3}, map[string]string{"failure_id": "8"}, "q3")

	entries := s.GetByFailureID(CollectionQueries, "7")
	assert.Len(t, entries, 2)
	assert.Equal(t, 3, s.Count(CollectionQueries))
}

func TestStatsReportsPerCollectionCounts(t *testing.T) {
	s := NewStore()
	s.AddOne(CollectionDocuments, "d1", []float64{1}, nil, "d1")

	stats := s.Stats()
	assert.Equal(t, 1, stats[CollectionDocuments])
	assert.Equal(t, 0, stats[CollectionResults])
}
