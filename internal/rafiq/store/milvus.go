package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/kart-io/rafiq/pkg/component/milvus"
	"github.com/milvus-io/milvus/client/v2/column"
	"github.com/milvus-io/milvus/client/v2/entity"
	"github.com/milvus-io/milvus/client/v2/milvusclient"
)

// metadata fields kept alongside each embedding.
var milvusOutputFields = []string{
	"chunk_id", "document_id", "document_name", "departments", "language", "content",
	"summary_en", "summary_ar",
}

// MilvusStore implements VectorStore on Milvus.
type MilvusStore struct {
	client *milvus.Client
}

// NewMilvusStore creates a Milvus-backed store.
func NewMilvusStore(client *milvus.Client) *MilvusStore {
	return &MilvusStore{client: client}
}

// EnsureCollection creates the collection schema if missing.
func (s *MilvusStore) EnsureCollection(ctx context.Context, config *CollectionConfig) error {
	schema := &milvus.CollectionSchema{
		Name:        config.Name,
		Description: config.Description,
		Dimension:   config.Dimension,
		MetaFields: []milvus.MetaField{
			{Name: "chunk_id", DataType: entity.FieldTypeVarChar, MaxLen: 64},
			{Name: "document_id", DataType: entity.FieldTypeVarChar, MaxLen: 64},
			{Name: "document_name", DataType: entity.FieldTypeVarChar, MaxLen: 255},
			{Name: "departments", DataType: entity.FieldTypeVarChar, MaxLen: 255},
			{Name: "language", DataType: entity.FieldTypeVarChar, MaxLen: 8},
			{Name: "content", DataType: entity.FieldTypeVarChar, MaxLen: 65535},
			{Name: "summary_en", DataType: entity.FieldTypeVarChar, MaxLen: 2048},
			{Name: "summary_ar", DataType: entity.FieldTypeVarChar, MaxLen: 2048},
		},
	}
	return s.client.CreateCollection(ctx, schema)
}

// Insert adds chunks to the collection. Existing entries are left alone.
func (s *MilvusStore) Insert(ctx context.Context, collection string, chunks []*Chunk) error {
	if len(chunks) == 0 {
		return nil
	}

	embeddings := make([][]float32, len(chunks))
	metadata := map[string][]any{
		"chunk_id":      make([]any, len(chunks)),
		"document_id":   make([]any, len(chunks)),
		"document_name": make([]any, len(chunks)),
		"departments":   make([]any, len(chunks)),
		"language":      make([]any, len(chunks)),
		"content":       make([]any, len(chunks)),
		"summary_en":    make([]any, len(chunks)),
		"summary_ar":    make([]any, len(chunks)),
	}

	for i, chunk := range chunks {
		embeddings[i] = chunk.Embedding
		metadata["chunk_id"][i] = chunk.ID
		metadata["document_id"][i] = chunk.DocumentID
		metadata["document_name"][i] = chunk.DocumentName
		metadata["departments"][i] = joinDepartments(chunk.Departments)
		metadata["language"][i] = chunk.Language
		metadata["content"][i] = chunk.Content
		metadata["summary_en"][i] = chunk.SummaryEN
		metadata["summary_ar"][i] = chunk.SummaryAR
	}

	data := &milvus.InsertData{
		Embeddings: embeddings,
		Metadata:   metadata,
	}

	if _, err := s.client.Insert(ctx, collection, data); err != nil {
		return fmt.Errorf("failed to insert into milvus: %w", err)
	}
	return nil
}

// Search runs a vector similarity search, optionally restricted to
// departments via a filter expression on the departments field.
func (s *MilvusStore) Search(ctx context.Context, collection string, embedding []float32, topK int, departments []string) ([]*SearchResult, error) {
	expr := departmentFilterExpr(departments)
	if expr == "" {
		results, err := s.client.Search(ctx, collection, embedding, topK, milvusOutputFields)
		if err != nil {
			return nil, fmt.Errorf("failed to search milvus: %w", err)
		}
		out := make([]*SearchResult, len(results))
		for i, r := range results {
			out[i] = resultFromMetadata(r.Metadata, r.Score)
		}
		return out, nil
	}
	return s.searchWithFilter(ctx, collection, embedding, expr, topK)
}

// searchWithFilter uses the raw client so a filter expression can be applied.
func (s *MilvusStore) searchWithFilter(ctx context.Context, collection string, embedding []float32, expr string, topK int) ([]*SearchResult, error) {
	rawClient := s.client.RawClient()
	if rawClient == nil {
		return nil, fmt.Errorf("milvus client not initialized")
	}

	loadTask, err := rawClient.LoadCollection(ctx, milvusclient.NewLoadCollectionOption(collection))
	if err != nil {
		return nil, fmt.Errorf("failed to load collection: %w", err)
	}
	if err := loadTask.Await(ctx); err != nil {
		return nil, fmt.Errorf("failed to wait for collection loading: %w", err)
	}

	searchVectors := []entity.Vector{entity.FloatVector(embedding)}

	results, err := rawClient.Search(ctx, milvusclient.NewSearchOption(
		collection,
		topK,
		searchVectors,
	).WithANNSField("embedding").
		WithSearchParam("nprobe", "16").
		WithFilter(expr).
		WithOutputFields(milvusOutputFields...))
	if err != nil {
		return nil, fmt.Errorf("failed to search with filter: %w", err)
	}

	if len(results) == 0 {
		return []*SearchResult{}, nil
	}

	out := make([]*SearchResult, 0, results[0].ResultCount)
	for i := 0; i < results[0].ResultCount; i++ {
		result := &SearchResult{Score: results[0].Scores[i]}

		for _, field := range results[0].Fields {
			col, ok := field.(*column.ColumnVarChar)
			if !ok {
				continue
			}
			switch col.Name() {
			case "chunk_id":
				result.ID = col.Data()[i]
			case "document_id":
				result.DocumentID = col.Data()[i]
			case "document_name":
				result.DocumentName = col.Data()[i]
			case "departments":
				result.Departments = splitDepartments(col.Data()[i])
			case "language":
				result.Language = col.Data()[i]
			case "content":
				result.Content = col.Data()[i]
			case "summary_en":
				result.SummaryEN = col.Data()[i]
			case "summary_ar":
				result.SummaryAR = col.Data()[i]
			}
		}

		out = append(out, result)
	}

	return out, nil
}

// Count returns the number of entities in the collection.
func (s *MilvusStore) Count(ctx context.Context, collection string) (int64, error) {
	return s.client.GetCollectionStats(ctx, collection)
}

// Close closes the Milvus connection.
func (s *MilvusStore) Close(ctx context.Context) error {
	return s.client.Close(ctx)
}

// departmentFilterExpr builds a Milvus filter over the comma-wrapped
// departments varchar. Each clause matches one tag between its delimiters,
// so "Finance" never matches a chunk tagged only "IT / Finance". Empty
// input means no filtering.
func departmentFilterExpr(departments []string) string {
	if len(departments) == 0 {
		return ""
	}

	clauses := make([]string, 0, len(departments))
	for _, d := range departments {
		d = strings.NewReplacer(`"`, "", ",", "", "%", "").Replace(d)
		clauses = append(clauses, fmt.Sprintf(`departments like "%%,%s,%%"`, d))
	}
	return strings.Join(clauses, " or ")
}

func resultFromMetadata(meta map[string]any, score float32) *SearchResult {
	r := &SearchResult{Score: score}
	if v, ok := meta["chunk_id"].(string); ok {
		r.ID = v
	}
	if v, ok := meta["document_id"].(string); ok {
		r.DocumentID = v
	}
	if v, ok := meta["document_name"].(string); ok {
		r.DocumentName = v
	}
	if v, ok := meta["departments"].(string); ok {
		r.Departments = splitDepartments(v)
	}
	if v, ok := meta["language"].(string); ok {
		r.Language = v
	}
	if v, ok := meta["content"].(string); ok {
		r.Content = v
	}
	if v, ok := meta["summary_en"].(string); ok {
		r.SummaryEN = v
	}
	if v, ok := meta["summary_ar"].(string); ok {
		r.SummaryAR = v
	}
	return r
}

var _ VectorStore = (*MilvusStore)(nil)
