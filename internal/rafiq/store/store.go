package store

import (
	"context"
	"strings"
)

// Chunk is one indexable piece of a document. Content always holds the
// English text used for embedding; Arabic documents are translated before
// chunking and keep their source language in Language.
type Chunk struct {
	// ID is the chunk identifier.
	ID string
	// DocumentID is the owning document identifier.
	DocumentID string
	// DocumentName is the original file name.
	DocumentName string
	// Departments are the department tags assigned to the document.
	Departments []string
	// Language is the source language of the document ("en" or "ar").
	Language string
	// Content is the English chunk text.
	Content string
	// SummaryEN and SummaryAR are the bilingual summaries of the owning
	// document, inherited by every chunk.
	SummaryEN string
	SummaryAR string
	// Embedding is the chunk embedding vector.
	Embedding []float32
}

// SearchResult is one retrieval hit.
type SearchResult struct {
	ID           string
	DocumentID   string
	DocumentName string
	Departments  []string
	Language     string
	Content      string
	SummaryEN    string
	SummaryAR    string
	Score        float32
}

// CollectionConfig describes the vector collection.
type CollectionConfig struct {
	// Name is the collection name.
	Name string
	// Description is the collection description.
	Description string
	// Dimension is the embedding dimension.
	Dimension int
}

// VectorStore is the vector index. Inserts are additive: merging new
// documents never rewrites existing entries.
type VectorStore interface {
	// EnsureCollection creates the collection if it does not exist.
	EnsureCollection(ctx context.Context, config *CollectionConfig) error

	// Insert adds chunks to the collection.
	Insert(ctx context.Context, collection string, chunks []*Chunk) error

	// Search returns the topK nearest chunks. A non-empty departments list
	// restricts results to chunks whose tag set intersects it; a chunk
	// tagged outside the filter is never returned.
	Search(ctx context.Context, collection string, embedding []float32, topK int, departments []string) ([]*SearchResult, error)

	// Count returns the number of indexed chunks.
	Count(ctx context.Context, collection string) (int64, error)

	// Close releases the underlying connection.
	Close(ctx context.Context) error
}

// joinDepartments flattens department tags for storage in a varchar field.
// The value is wrapped in commas so a filter can match one tag exactly with
// a delimiter-bounded pattern instead of a bare substring.
func joinDepartments(depts []string) string {
	if len(depts) == 0 {
		return ""
	}
	return "," + strings.Join(depts, ",") + ","
}

// splitDepartments is the inverse of joinDepartments.
func splitDepartments(s string) []string {
	s = strings.Trim(s, ",")
	if s == "" {
		return nil
	}
	return strings.Split(s, ",")
}
