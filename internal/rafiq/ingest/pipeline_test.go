package ingest

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kart-io/rafiq/internal/rafiq/store"
	"github.com/kart-io/rafiq/internal/rafiq/tagger"
	"github.com/kart-io/rafiq/internal/rafiq/translate"
)

// mockEmbedder returns fixed-size unit vectors.
type mockEmbedder struct {
	dim   int
	err   error
	calls int
}

func (m *mockEmbedder) Embed(_ context.Context, texts []string) ([][]float32, error) {
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	out := make([][]float32, len(texts))
	for i := range texts {
		v := make([]float32, m.dim)
		v[i%m.dim] = 1
		out[i] = v
	}
	return out, nil
}

func (m *mockEmbedder) EmbedSingle(ctx context.Context, text string) ([]float32, error) {
	vecs, err := m.Embed(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vecs[0], nil
}

func (m *mockEmbedder) Name() string { return "mock-embed" }

// echoTranslator marks text as translated without an LLM.
type echoTranslator struct{}

func (echoTranslator) Translate(_ context.Context, text, _, _ string) (string, error) {
	return "monetary policy translation of: " + text, nil
}

func newTestPipeline(t *testing.T, st store.VectorStore) *Pipeline {
	t.Helper()
	p := NewPipeline(
		NewExtractor(&fakeRunner{}, t.TempDir()),
		echoTranslator{},
		NewSummarizer(nil, echoTranslator{}),
		&mockEmbedder{dim: 4},
		st,
		&PipelineConfig{
			Collection:   "docs",
			EmbeddingDim: 4,
			ChunkSize:    100,
			ChunkOverlap: 20,
		},
	)
	require.NoError(t, p.EnsureCollection(context.Background()))
	return p
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestPipelineProcessEnglishDocument(t *testing.T) {
	st := store.NewMemoryStore()
	p := newTestPipeline(t, st)

	text := strings.Repeat("The central bank sets the policy interest rates every quarter. ", 10)
	path := writeFile(t, "rates.txt", text)

	doc, err := p.Process(context.Background(), "doc-1", path)
	require.NoError(t, err)

	assert.Equal(t, "doc-1", doc.ID)
	assert.Equal(t, "rates.txt", doc.Name)
	assert.Equal(t, translate.LangEnglish, doc.Language)
	assert.Contains(t, doc.Departments, tagger.MonetaryPolicy)
	assert.True(t, doc.Chunks > 1)

	count, err := st.Count(context.Background(), "docs")
	require.NoError(t, err)
	assert.Equal(t, int64(doc.Chunks), count)
}

func TestPipelineMintsIDWhenAbsent(t *testing.T) {
	st := store.NewMemoryStore()
	p := newTestPipeline(t, st)

	path := writeFile(t, "rates.txt", strings.Repeat("The central bank sets the policy interest rates. ", 5))
	doc, err := p.Process(context.Background(), "", path)
	require.NoError(t, err)
	assert.NotEmpty(t, doc.ID)
}

func TestPipelineGeneratesSummaries(t *testing.T) {
	st := store.NewMemoryStore()
	p := newTestPipeline(t, st)

	text := strings.Repeat("The central bank publishes the exchange rate of the rial daily. ", 10)
	path := writeFile(t, "fx.txt", text)

	doc, err := p.Process(context.Background(), "doc-fx", path)
	require.NoError(t, err)
	assert.NotEmpty(t, doc.SummaryEN)
	assert.Contains(t, doc.SummaryAR, "monetary policy translation of:")

	// Every indexed chunk carries the document summaries.
	results, err := st.Search(context.Background(), "docs", []float32{1, 0, 0, 0}, 1, nil)
	require.NoError(t, err)
	require.NotEmpty(t, results)
	assert.Equal(t, doc.SummaryEN, results[0].SummaryEN)
	assert.Equal(t, doc.SummaryAR, results[0].SummaryAR)
}

func TestPipelineProcessArabicDocumentTranslates(t *testing.T) {
	st := store.NewMemoryStore()
	p := newTestPipeline(t, st)

	path := writeFile(t, "siyasa.txt", strings.Repeat("السياسة النقدية للبنك المركزي العماني. ", 5))

	doc, err := p.Process(context.Background(), "doc-ar", path)
	require.NoError(t, err)
	assert.Equal(t, translate.LangArabic, doc.Language)

	// Indexed content must be the translated English text.
	results, err := st.Search(context.Background(), "docs", []float32{1, 0, 0, 0}, 1, nil)
	require.NoError(t, err)
	require.NotEmpty(t, results)
	assert.Contains(t, results[0].Content, "monetary policy translation of:")
	assert.Equal(t, translate.LangArabic, results[0].Language)
}

func TestPipelineIsAdditive(t *testing.T) {
	st := store.NewMemoryStore()
	p := newTestPipeline(t, st)
	ctx := context.Background()

	first := writeFile(t, "one.txt", strings.Repeat("Banknotes and coins of the rial. ", 10))
	second := writeFile(t, "two.txt", strings.Repeat("Regulatory compliance framework. ", 10))

	docA, err := p.Process(ctx, "", first)
	require.NoError(t, err)
	docB, err := p.Process(ctx, "", second)
	require.NoError(t, err)

	count, err := st.Count(ctx, "docs")
	require.NoError(t, err)
	assert.Equal(t, int64(docA.Chunks+docB.Chunks), count)
	assert.NotEqual(t, docA.ID, docB.ID)
}

func TestPipelineEmptyDocument(t *testing.T) {
	st := store.NewMemoryStore()
	p := newTestPipeline(t, st)

	path := writeFile(t, "empty.txt", "   \n  ")
	doc, err := p.Process(context.Background(), "doc-empty", path)
	require.NoError(t, err)
	assert.Zero(t, doc.Chunks)
	assert.Equal(t, "doc-empty", doc.ID)
	// An unreadable document is still registered, filed under General.
	assert.Equal(t, []string{tagger.GeneralDepartment}, doc.Departments)

	// Nothing reaches the index.
	count, err := st.Count(context.Background(), "docs")
	require.NoError(t, err)
	assert.Equal(t, int64(0), count)
}

func TestPipelineEmbedFailure(t *testing.T) {
	st := store.NewMemoryStore()
	p := NewPipeline(
		NewExtractor(&fakeRunner{}, t.TempDir()),
		echoTranslator{},
		nil,
		&mockEmbedder{dim: 4, err: errors.New("embedding service down")},
		st,
		&PipelineConfig{Collection: "docs", EmbeddingDim: 4, ChunkSize: 100, ChunkOverlap: 20},
	)
	ctx := context.Background()
	require.NoError(t, p.EnsureCollection(ctx))

	path := writeFile(t, "doc.txt", strings.Repeat("Some policy text here. ", 10))
	_, err := p.Process(ctx, "", path)
	assert.Error(t, err)

	// Nothing is inserted when embedding fails.
	count, err := st.Count(ctx, "docs")
	require.NoError(t, err)
	assert.Equal(t, int64(0), count)
}
