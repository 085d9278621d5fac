package biz

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/kart-io/logger"
	"github.com/kart-io/rafiq/internal/rafiq/ingest"
	"github.com/kart-io/rafiq/internal/rafiq/metrics"
	"github.com/kart-io/rafiq/internal/rafiq/store"
	"github.com/kart-io/rafiq/internal/rafiq/translate"
	"github.com/kart-io/rafiq/pkg/infra/pool"
)

// Engine lifecycle states. The engine starts uninitialized, moves to
// initializing while Start prepares the collection, and is ready once the
// collection exists, documents or not. Queries against an empty but ready
// index return the no-information sentinel. It never moves backwards.
type EngineState int32

const (
	StateUninitialized EngineState = iota
	StateInitializing
	StateReady
)

// String returns the state name.
func (s EngineState) String() string {
	switch s {
	case StateInitializing:
		return "initializing"
	case StateReady:
		return "ready"
	default:
		return "uninitialized"
	}
}

// Document ingestion statuses tracked by the registry.
const (
	DocStatusPending = "pending"
	DocStatusIndexed = "indexed"
	DocStatusFailed  = "failed"
)

// DocumentRecord is the registry entry for one accepted upload. The
// identifier is minted when the upload is accepted; derived fields fill in
// once the pipeline finishes.
type DocumentRecord struct {
	ID          string   `json:"document_id"`
	Name        string   `json:"name"`
	Status      string   `json:"status"`
	Language    string   `json:"language,omitempty"`
	Departments []string `json:"department_tags,omitempty"`
	SummaryEN   string   `json:"summary_en,omitempty"`
	SummaryAR   string   `json:"summary_ar,omitempty"`
	Chunks      int      `json:"chunks"`
	Error       string   `json:"error,omitempty"`
}

// EngineConfig configures the retrieval engine.
type EngineConfig struct {
	// Collection is the vector collection name.
	Collection string
	// IngestTimeout bounds a single document ingestion.
	IngestTimeout time.Duration
}

// Engine owns the document index: it ingests files through the pipeline
// and answers questions through retrieve-then-generate.
type Engine struct {
	pipeline   *ingest.Pipeline
	retriever  *Retriever
	generator  *Generator
	translator translate.Translator
	store      store.VectorStore
	pool       *pool.Pool
	config     *EngineConfig

	state     atomic.Int32
	documents atomic.Int64

	recordMu sync.RWMutex
	records  map[string]*DocumentRecord
}

// NewEngine creates an Engine.
func NewEngine(
	pipeline *ingest.Pipeline,
	retriever *Retriever,
	generator *Generator,
	translator translate.Translator,
	vectorStore store.VectorStore,
	workers *pool.Pool,
	config *EngineConfig,
) *Engine {
	if config.IngestTimeout <= 0 {
		config.IngestTimeout = 10 * time.Minute
	}
	return &Engine{
		pipeline:   pipeline,
		retriever:  retriever,
		generator:  generator,
		translator: translator,
		store:      vectorStore,
		pool:       workers,
		config:     config,
		records:    make(map[string]*DocumentRecord),
	}
}

// State returns the current lifecycle state.
func (e *Engine) State() EngineState {
	return EngineState(e.state.Load())
}

// Documents returns the number of documents ingested since startup.
func (e *Engine) Documents() int64 {
	return e.documents.Load()
}

// ChunkCount reports the number of chunks in the index.
func (e *Engine) ChunkCount(ctx context.Context) (int64, error) {
	return e.store.Count(ctx, e.config.Collection)
}

// Start prepares the collection and brings the engine to ready. An empty
// index is a valid ready state: queries simply get the sentinel until a
// document arrives.
func (e *Engine) Start(ctx context.Context) error {
	e.state.CompareAndSwap(int32(StateUninitialized), int32(StateInitializing))

	if err := e.pipeline.EnsureCollection(ctx); err != nil {
		return fmt.Errorf("failed to prepare collection: %w", err)
	}

	count, err := e.store.Count(ctx, e.config.Collection)
	if err != nil {
		logger.Warnw("failed to count existing chunks", "error", err.Error())
		count = 0
	}

	e.state.Store(int32(StateReady))
	logger.Infow("engine ready", "chunks", count)
	return nil
}

// Track registers a pending document record under docID before ingestion
// starts, so the identifier resolves immediately after accept.
func (e *Engine) Track(docID, path string) {
	e.recordMu.Lock()
	defer e.recordMu.Unlock()
	e.records[docID] = &DocumentRecord{
		ID:     docID,
		Name:   filepath.Base(path),
		Status: DocStatusPending,
	}
}

// Document returns the registry record for docID.
func (e *Engine) Document(docID string) (*DocumentRecord, bool) {
	e.recordMu.RLock()
	defer e.recordMu.RUnlock()
	rec, ok := e.records[docID]
	if !ok {
		return nil, false
	}
	cp := *rec
	return &cp, true
}

func (e *Engine) recordResult(docID string, doc *ingest.Document, err error) {
	e.recordMu.Lock()
	defer e.recordMu.Unlock()
	rec, ok := e.records[docID]
	if !ok {
		rec = &DocumentRecord{ID: docID}
		e.records[docID] = rec
	}
	if err != nil {
		rec.Status = DocStatusFailed
		rec.Error = err.Error()
		return
	}
	rec.Status = DocStatusIndexed
	rec.Name = doc.Name
	rec.Language = doc.Language
	rec.Departments = doc.Departments
	rec.SummaryEN = doc.SummaryEN
	rec.SummaryAR = doc.SummaryAR
	rec.Chunks = doc.Chunks
}

// IngestFile processes the file at path synchronously under the identifier
// docID.
func (e *Engine) IngestFile(ctx context.Context, docID, path string) (*ingest.Document, error) {
	doc, err := e.pipeline.Process(ctx, docID, path)
	if err != nil {
		metrics.Get().RecordIngestion(0, err)
		e.recordResult(docID, nil, err)
		return nil, err
	}
	metrics.Get().RecordIngestion(doc.Chunks, nil)
	e.recordResult(docID, doc, nil)

	e.documents.Add(1)
	return doc, nil
}

// SubmitIngest queues the file for background ingestion on the worker pool
// under the identifier docID.
func (e *Engine) SubmitIngest(docID, path string) error {
	return e.pool.Submit(func() {
		ctx, cancel := context.WithTimeout(context.Background(), e.config.IngestTimeout)
		defer cancel()

		if _, err := e.IngestFile(ctx, docID, path); err != nil {
			logger.Errorw("background ingestion failed", "path", path, "error", err.Error())
		}
	})
}

// Query answers question against the index. Arabic questions are translated
// to English for retrieval and the answer is translated back; the English
// form is kept on the answer either way. lang overrides detection when set.
// An engine that is not ready, or a retrieval with no hits, yields the
// no-information sentinel.
func (e *Engine) Query(ctx context.Context, question, lang string, departments []string) (*Answer, error) {
	if lang == "" {
		lang = translate.DetectLanguage(question)
	}

	if e.State() != StateReady {
		return e.noInformation(ctx, lang, departments), nil
	}

	english := question
	if lang == translate.LangArabic {
		translated, err := e.translator.Translate(ctx, question, translate.LangArabic, translate.LangEnglish)
		if err != nil {
			logger.Warnw("question translation failed, querying with original text",
				"error", err.Error())
		} else {
			english = translated
		}
	}

	retrieval, err := e.retriever.Retrieve(ctx, english, departments)
	if err != nil {
		return nil, fmt.Errorf("retrieval failed: %w", err)
	}
	if len(retrieval.Results) == 0 {
		return e.noInformation(ctx, lang, departments), nil
	}

	textEN, err := e.generator.GenerateAnswer(ctx, english, retrieval.Results)
	if err != nil {
		return nil, fmt.Errorf("answer generation failed: %w", err)
	}

	text := textEN
	if lang == translate.LangArabic {
		translated, err := e.translator.Translate(ctx, textEN, translate.LangEnglish, translate.LangArabic)
		if err != nil {
			logger.Warnw("answer translation failed, returning English answer",
				"error", err.Error())
		} else {
			text = translated
		}
	}

	return &Answer{
		Text:            text,
		TextEN:          textEN,
		Source:          SourceRAG,
		Language:        lang,
		Departments:     departments,
		References:      references(retrieval.Results),
		RetrievedChunks: len(retrieval.Results),
	}, nil
}

// noInformation builds the sentinel answer, translated for Arabic askers.
func (e *Engine) noInformation(ctx context.Context, lang string, departments []string) *Answer {
	text := NoInformationAnswer
	if lang == translate.LangArabic {
		if translated, err := e.translator.Translate(ctx, text, translate.LangEnglish, translate.LangArabic); err == nil {
			text = translated
		}
	}
	return &Answer{
		Text:        text,
		TextEN:      NoInformationAnswer,
		Source:      SourceRAG,
		Language:    lang,
		Departments: departments,
	}
}

func references(results []*store.SearchResult) []Reference {
	refs := make([]Reference, 0, len(results))
	for _, r := range results {
		dept := ""
		if len(r.Departments) > 0 {
			dept = r.Departments[0]
		}
		refs = append(refs, Reference{
			DocumentID:   r.DocumentID,
			DocumentName: r.DocumentName,
			Department:   dept,
			Score:        r.Score,
		})
	}
	return refs
}
