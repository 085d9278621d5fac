package store

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/kart-io/rafiq/internal/pkg/rafiq/textutil"
)

// MemoryStore is an in-memory VectorStore using brute-force cosine search.
// It backs tests and single-node deployments without a Milvus instance.
type MemoryStore struct {
	mu          sync.RWMutex
	collections map[string][]*Chunk
	dims        map[string]int
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		collections: make(map[string][]*Chunk),
		dims:        make(map[string]int),
	}
}

// EnsureCollection registers the collection if it does not exist.
func (s *MemoryStore) EnsureCollection(_ context.Context, config *CollectionConfig) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.collections[config.Name]; !ok {
		s.collections[config.Name] = nil
		s.dims[config.Name] = config.Dimension
	}
	return nil
}

// Insert appends chunks to the collection.
func (s *MemoryStore) Insert(_ context.Context, collection string, chunks []*Chunk) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.collections[collection]; !ok {
		return fmt.Errorf("collection %q does not exist", collection)
	}
	if dim := s.dims[collection]; dim > 0 {
		for _, c := range chunks {
			if len(c.Embedding) != dim {
				return fmt.Errorf("chunk %s: embedding dimension %d, want %d", c.ID, len(c.Embedding), dim)
			}
		}
	}
	s.collections[collection] = append(s.collections[collection], chunks...)
	return nil
}

// Search scans the collection and returns the topK chunks by cosine
// similarity, honoring the department filter.
func (s *MemoryStore) Search(_ context.Context, collection string, embedding []float32, topK int, departments []string) ([]*SearchResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	chunks, ok := s.collections[collection]
	if !ok {
		return nil, fmt.Errorf("collection %q does not exist", collection)
	}

	results := make([]*SearchResult, 0, len(chunks))
	for _, c := range chunks {
		if !departmentsMatch(c.Departments, departments) {
			continue
		}
		score := textutil.CosineSimilarity(embedding, c.Embedding)
		results = append(results, &SearchResult{
			ID:           c.ID,
			DocumentID:   c.DocumentID,
			DocumentName: c.DocumentName,
			Departments:  c.Departments,
			Language:     c.Language,
			Content:      c.Content,
			SummaryEN:    c.SummaryEN,
			SummaryAR:    c.SummaryAR,
			Score:        float32(score),
		})
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})
	if topK > 0 && len(results) > topK {
		results = results[:topK]
	}
	return results, nil
}

// Count returns the number of chunks in the collection.
func (s *MemoryStore) Count(_ context.Context, collection string) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	chunks, ok := s.collections[collection]
	if !ok {
		return 0, fmt.Errorf("collection %q does not exist", collection)
	}
	return int64(len(chunks)), nil
}

// Close is a no-op for the in-memory store.
func (s *MemoryStore) Close(_ context.Context) error {
	return nil
}

// departmentsMatch applies the department filter: no filter matches all,
// otherwise the tag set must intersect the requested set. Widening the
// filter, such as including the General department, is the caller's call.
func departmentsMatch(tagged, requested []string) bool {
	if len(requested) == 0 {
		return true
	}
	for _, t := range tagged {
		for _, r := range requested {
			if t == r {
				return true
			}
		}
	}
	return false
}

var _ VectorStore = (*MemoryStore)(nil)
