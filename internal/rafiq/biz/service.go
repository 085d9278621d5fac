package biz

import (
	"context"
	"strings"
	"time"

	"github.com/kart-io/logger"
	"github.com/kart-io/rafiq/internal/rafiq/metrics"
	"github.com/kart-io/rafiq/internal/rafiq/translate"
	"github.com/kart-io/rafiq/pkg/id"
	"github.com/kart-io/rafiq/pkg/infra/pool"
)

// Service is the assistant's public surface.
type Service interface {
	// Ingest queues a document file for background indexing and returns
	// the document identifier minted for it.
	Ingest(path string) (string, error)
	// Query answers a question through the response chain. lang selects the
	// response language explicitly; empty means detect from the question.
	Query(ctx context.Context, question, lang string, departments []string) (*Answer, error)
	// Document returns the ingestion record for a document identifier.
	Document(docID string) (*DocumentRecord, bool)
	// Status reports engine state and counters.
	Status(ctx context.Context) map[string]interface{}
}

// Assistant resolves questions through the answer cache and the response
// chain, and routes document uploads into the retrieval engine.
type Assistant struct {
	engine  *Engine
	chain   *Chain
	cache   *AnswerCache
	pool    *pool.Pool
	faq     *FAQTier
	lexical *LexicalTier
	metrics *metrics.Metrics
}

// NewAssistant creates an Assistant. faq and lexical are also reachable
// through chain; they are kept for status reporting.
func NewAssistant(engine *Engine, chain *Chain, cache *AnswerCache, workers *pool.Pool, faq *FAQTier, lexical *LexicalTier) *Assistant {
	return &Assistant{
		engine:  engine,
		chain:   chain,
		cache:   cache,
		pool:    workers,
		faq:     faq,
		lexical: lexical,
		metrics: metrics.Get(),
	}
}

// Ingest implements Service. The document identifier is minted here, at
// accept time, so the caller gets one even when indexing later degrades.
func (a *Assistant) Ingest(path string) (string, error) {
	docID := id.NewUUID()
	a.engine.Track(docID, path)
	if err := a.engine.SubmitIngest(docID, path); err != nil {
		return "", err
	}
	return docID, nil
}

// Document implements Service.
func (a *Assistant) Document(docID string) (*DocumentRecord, bool) {
	return a.engine.Document(docID)
}

// Query implements Service.
func (a *Assistant) Query(ctx context.Context, question, lang string, departments []string) (*Answer, error) {
	question = strings.TrimSpace(question)
	if lang == "" {
		lang = translate.DetectLanguage(question)
	}
	start := time.Now()

	if cached, err := a.cache.Get(ctx, question, lang, departments); err == nil && cached != nil {
		a.metrics.RecordQuery(time.Since(start), true, nil)
		return cached, nil
	}

	answer := a.chain.Respond(ctx, question, lang, departments)
	if answer == nil {
		// Only possible with an empty chain.
		a.metrics.RecordQuery(time.Since(start), false, ErrNoResponder)
		return nil, ErrNoResponder
	}
	if answer.TextEN == "" && answer.Language != translate.LangArabic {
		answer.TextEN = answer.Text
	}

	if err := a.cache.Set(ctx, question, lang, departments, answer); err != nil {
		logger.Debugw("failed to cache answer", "error", err.Error())
	}

	a.metrics.RecordQuery(time.Since(start), false, nil)
	a.metrics.RecordAnswer(answer.Source)
	return answer, nil
}

// Status implements Service.
func (a *Assistant) Status(ctx context.Context) map[string]interface{} {
	status := map[string]interface{}{
		"state":     a.engine.State().String(),
		"documents": a.engine.Documents(),
		"metrics":   a.metrics.Stats(),
	}

	if chunks, err := a.engine.ChunkCount(ctx); err == nil {
		status["chunks"] = chunks
	}
	if a.faq != nil {
		status["faq_entries"] = a.faq.Entries()
	}
	if a.lexical != nil {
		status["lexical_documents"] = a.lexical.Documents()
	}
	if a.pool != nil {
		stats := a.pool.Stats()
		status["workers"] = map[string]interface{}{
			"running":   a.pool.Running(),
			"submitted": stats.Submitted,
			"completed": stats.Completed,
			"failed":    stats.Failed,
		}
	}
	if cacheStats, err := a.cache.Stats(ctx); err == nil {
		status["cache"] = cacheStats
	}
	return status
}
