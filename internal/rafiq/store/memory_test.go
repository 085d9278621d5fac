package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kart-io/rafiq/internal/rafiq/tagger"
)

func newTestStore(t *testing.T) *MemoryStore {
	t.Helper()
	s := NewMemoryStore()
	err := s.EnsureCollection(context.Background(), &CollectionConfig{
		Name:      "docs",
		Dimension: 3,
	})
	require.NoError(t, err)
	return s
}

func TestMemoryStoreInsertAndCount(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	count, err := s.Count(ctx, "docs")
	require.NoError(t, err)
	assert.Equal(t, int64(0), count)

	err = s.Insert(ctx, "docs", []*Chunk{
		{ID: "c1", Embedding: []float32{1, 0, 0}},
		{ID: "c2", Embedding: []float32{0, 1, 0}},
	})
	require.NoError(t, err)

	// Inserts are additive.
	err = s.Insert(ctx, "docs", []*Chunk{
		{ID: "c3", Embedding: []float32{0, 0, 1}},
	})
	require.NoError(t, err)

	count, err = s.Count(ctx, "docs")
	require.NoError(t, err)
	assert.Equal(t, int64(3), count)
}

func TestMemoryStoreDimensionCheck(t *testing.T) {
	s := newTestStore(t)
	err := s.Insert(context.Background(), "docs", []*Chunk{
		{ID: "bad", Embedding: []float32{1, 0}},
	})
	assert.Error(t, err)
}

func TestMemoryStoreUnknownCollection(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	assert.Error(t, s.Insert(ctx, "nope", nil))
	_, err := s.Search(ctx, "nope", []float32{1}, 5, nil)
	assert.Error(t, err)
	_, err = s.Count(ctx, "nope")
	assert.Error(t, err)
}

func TestMemoryStoreSearchRanking(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Insert(ctx, "docs", []*Chunk{
		{ID: "far", Content: "far", Embedding: []float32{0, 1, 0}},
		{ID: "near", Content: "near", Embedding: []float32{1, 0.1, 0}},
		{ID: "exact", Content: "exact", Embedding: []float32{1, 0, 0}},
	}))

	results, err := s.Search(ctx, "docs", []float32{1, 0, 0}, 2, nil)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "exact", results[0].ID)
	assert.Equal(t, "near", results[1].ID)
	assert.True(t, results[0].Score >= results[1].Score)
}

func TestMemoryStoreDepartmentFilter(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Insert(ctx, "docs", []*Chunk{
		{ID: "fin", Departments: []string{tagger.Finance}, Embedding: []float32{1, 0, 0}},
		{ID: "cur", Departments: []string{tagger.Currency}, Embedding: []float32{1, 0, 0}},
		{ID: "gen", Departments: []string{tagger.GeneralDepartment}, Embedding: []float32{1, 0, 0}},
	}))

	results, err := s.Search(ctx, "docs", []float32{1, 0, 0}, 10, []string{tagger.Finance})
	require.NoError(t, err)

	ids := make([]string, 0, len(results))
	for _, r := range results {
		ids = append(ids, r.ID)
	}
	// Only the intersecting tag set matches: Currency and General-only
	// chunks stay out unless the filter names them.
	assert.ElementsMatch(t, []string{"fin"}, ids)

	results, err = s.Search(ctx, "docs", []float32{1, 0, 0}, 10, []string{tagger.Finance, tagger.GeneralDepartment})
	require.NoError(t, err)
	assert.Len(t, results, 2)

	// No filter returns everything.
	results, err = s.Search(ctx, "docs", []float32{1, 0, 0}, 10, nil)
	require.NoError(t, err)
	assert.Len(t, results, 3)
}

func TestMemoryStoreCarriesSummaries(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Insert(ctx, "docs", []*Chunk{{
		ID:        "c1",
		SummaryEN: "Circular on reserve requirements.",
		SummaryAR: "تعميم حول متطلبات الاحتياطي.",
		Embedding: []float32{1, 0, 0},
	}}))

	results, err := s.Search(ctx, "docs", []float32{1, 0, 0}, 1, nil)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "Circular on reserve requirements.", results[0].SummaryEN)
	assert.Equal(t, "تعميم حول متطلبات الاحتياطي.", results[0].SummaryAR)
}
