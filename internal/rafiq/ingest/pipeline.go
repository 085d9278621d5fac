package ingest

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/kart-io/logger"

	"github.com/kart-io/rafiq/internal/pkg/rafiq/textutil"
	"github.com/kart-io/rafiq/internal/rafiq/chunker"
	"github.com/kart-io/rafiq/internal/rafiq/store"
	"github.com/kart-io/rafiq/internal/rafiq/tagger"
	"github.com/kart-io/rafiq/internal/rafiq/translate"
	"github.com/kart-io/rafiq/pkg/id"
	"github.com/kart-io/rafiq/pkg/llm"
)

// minChunkChars drops fragments too small to be useful context.
const minChunkChars = 20

// Document describes one processed file.
type Document struct {
	// ID is the document identifier.
	ID string
	// Name is the base file name.
	Name string
	// Language is the detected source language.
	Language string
	// Departments are the assigned department tags.
	Departments []string
	// SummaryEN and SummaryAR are the generated bilingual summaries.
	SummaryEN string
	SummaryAR string
	// Chunks is the number of chunks indexed.
	Chunks int
}

// PipelineConfig configures the ingestion pipeline.
type PipelineConfig struct {
	// Collection is the vector collection name.
	Collection string
	// EmbeddingDim is the embedding dimension.
	EmbeddingDim int
	// ChunkSize and ChunkOverlap are passed to the chunker.
	ChunkSize    int
	ChunkOverlap int
}

// TextSink receives the full extracted text of every indexed document.
// Used to feed secondary indexes alongside the vector store.
type TextSink interface {
	AddDocument(documentID, name string, departments []string, text string)
}

// Pipeline runs a file through extract, translate, tag, chunk, embed and
// insert. The vector index grows additively: processing a new document
// never touches already indexed entries.
type Pipeline struct {
	extractor  *Extractor
	translator translate.Translator
	summarizer *Summarizer
	tagger     *tagger.Tagger
	chunker    *chunker.Chunker
	embedder   llm.EmbeddingProvider
	store      store.VectorStore
	sinks      []TextSink
	config     *PipelineConfig
}

// AddSink registers a TextSink. Not safe to call after Process has started.
func (p *Pipeline) AddSink(sink TextSink) {
	p.sinks = append(p.sinks, sink)
}

// NewPipeline assembles the ingestion pipeline. A nil summarizer skips
// summary generation.
func NewPipeline(
	extractor *Extractor,
	translator translate.Translator,
	summarizer *Summarizer,
	embedder llm.EmbeddingProvider,
	vectorStore store.VectorStore,
	config *PipelineConfig,
) *Pipeline {
	return &Pipeline{
		extractor:  extractor,
		translator: translator,
		summarizer: summarizer,
		tagger:     tagger.New(),
		chunker:    chunker.New(config.ChunkSize, config.ChunkOverlap),
		embedder:   embedder,
		store:      vectorStore,
		config:     config,
	}
}

// EnsureCollection prepares the vector collection.
func (p *Pipeline) EnsureCollection(ctx context.Context) error {
	return p.store.EnsureCollection(ctx, &store.CollectionConfig{
		Name:        p.config.Collection,
		Description: "bilingual document knowledge base",
		Dimension:   p.config.EmbeddingDim,
	})
}

// Process ingests the file at path and returns its document record. The
// caller supplies the document identifier minted at accept time; an empty
// docID gets a fresh one.
func (p *Pipeline) Process(ctx context.Context, docID, path string) (*Document, error) {
	name := filepath.Base(path)
	if docID == "" {
		docID = id.NewUUID()
	}

	text, err := p.extractor.Extract(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("extraction failed for %s: %w", name, err)
	}
	// A file that yields no text is still recorded as an ingested document
	// with zero chunks. It simply never surfaces in retrieval.
	if strings.TrimSpace(text) == "" {
		logger.Warnw("no text extracted, indexing nothing", "file", name)
		return &Document{
			ID:          docID,
			Name:        name,
			Language:    translate.LangEnglish,
			Departments: []string{tagger.GeneralDepartment},
		}, nil
	}

	language := translate.DetectLanguage(text)

	// The index holds English text only; Arabic documents are translated
	// first. Translation degrades to the original text on provider failure,
	// so ingestion itself never stalls on the translator.
	english := text
	if language == translate.LangArabic {
		english, err = p.translator.Translate(ctx, text, translate.LangArabic, translate.LangEnglish)
		if err != nil {
			return nil, fmt.Errorf("translation failed for %s: %w", name, err)
		}
	}

	// Tag on original and translated text so both keyword sets can fire.
	departments := p.tagger.Tag(text + "\n" + english)

	var summaryEN, summaryAR string
	if p.summarizer != nil {
		summaryEN, summaryAR = p.summarizer.Summarize(ctx, english)
	}

	pieces := p.chunker.Split(english)
	doc := &Document{
		ID:          docID,
		Name:        name,
		Language:    language,
		Departments: departments,
		SummaryEN:   summaryEN,
		SummaryAR:   summaryAR,
	}

	chunks := make([]*store.Chunk, 0, len(pieces))
	texts := make([]string, 0, len(pieces))
	for _, piece := range pieces {
		if len(strings.TrimSpace(piece)) < minChunkChars {
			continue
		}
		chunks = append(chunks, &store.Chunk{
			ID:           id.NewULID(),
			DocumentID:   doc.ID,
			DocumentName: name,
			Departments:  departments,
			Language:     language,
			Content:      textutil.TruncateString(piece, 65000),
			SummaryEN:    summaryEN,
			SummaryAR:    summaryAR,
		})
		texts = append(texts, piece)
	}
	if len(chunks) == 0 {
		logger.Warnw("document produced no usable chunks", "file", name)
		return doc, nil
	}

	embeddings, err := p.embedder.Embed(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("failed to embed chunks of %s: %w", name, err)
	}
	if len(embeddings) != len(chunks) {
		return nil, fmt.Errorf("embedding count mismatch for %s: %d chunks, %d vectors", name, len(chunks), len(embeddings))
	}
	for i := range chunks {
		chunks[i].Embedding = embeddings[i]
	}

	if err := p.store.Insert(ctx, p.config.Collection, chunks); err != nil {
		return nil, fmt.Errorf("failed to index %s: %w", name, err)
	}

	doc.Chunks = len(chunks)
	for _, sink := range p.sinks {
		sink.AddDocument(doc.ID, name, departments, english)
	}
	logger.Infow("document indexed",
		"document", name,
		"language", language,
		"departments", strings.Join(departments, ","),
		"chunks", len(chunks),
	)
	return doc, nil
}
