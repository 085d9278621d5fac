package biz

import (
	"context"
	"fmt"

	"github.com/kart-io/logger"
	"github.com/kart-io/rafiq/internal/rafiq/store"
	"github.com/kart-io/rafiq/internal/rafiq/tagger"
	"github.com/kart-io/rafiq/pkg/llm"
)

// RetrieverConfig configures retrieval.
type RetrieverConfig struct {
	// TopK is the number of chunks to retrieve.
	TopK int
	// Collection is the vector collection name.
	Collection string
}

// RetrievalResult carries the English query used for embedding and its hits.
type RetrievalResult struct {
	// Query is the (possibly translated) query that was embedded.
	Query string
	// Results are the retrieved chunks, best first.
	Results []*store.SearchResult
}

// Retriever embeds questions and searches the vector index.
type Retriever struct {
	store         store.VectorStore
	embedProvider llm.EmbeddingProvider
	config        *RetrieverConfig
}

// NewRetriever creates a Retriever.
func NewRetriever(vectorStore store.VectorStore, embedProvider llm.EmbeddingProvider, config *RetrieverConfig) *Retriever {
	return &Retriever{
		store:         vectorStore,
		embedProvider: embedProvider,
		config:        config,
	}
}

// Retrieve embeds question and returns its topK neighbors, restricted to
// departments when given. The filter is widened with General so broadly
// applicable documents stay visible to every department.
func (r *Retriever) Retrieve(ctx context.Context, question string, departments []string) (*RetrievalResult, error) {
	embedding, err := r.embedProvider.EmbedSingle(ctx, question)
	if err != nil {
		return nil, fmt.Errorf("failed to embed question: %w", err)
	}

	results, err := r.store.Search(ctx, r.config.Collection, embedding, r.config.TopK, retrievalFilter(departments))
	if err != nil {
		return nil, fmt.Errorf("vector search failed: %w", err)
	}

	logger.Infow("retrieval completed",
		"hits", len(results),
		"top_k", r.config.TopK,
		"departments", len(departments),
	)

	return &RetrievalResult{
		Query:   question,
		Results: results,
	}, nil
}

// retrievalFilter appends General to a non-empty department filter. The
// stores apply strict set intersection, so visibility of General documents
// has to be requested explicitly.
func retrievalFilter(departments []string) []string {
	if len(departments) == 0 {
		return nil
	}
	for _, d := range departments {
		if d == tagger.GeneralDepartment {
			return departments
		}
	}
	out := make([]string, 0, len(departments)+1)
	out = append(out, departments...)
	return append(out, tagger.GeneralDepartment)
}
