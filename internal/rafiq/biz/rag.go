package biz

import (
	"context"

	"github.com/kart-io/logger"
)

// RAGTier exposes the retrieval engine as a chain tier. A refusal or a
// no-information answer is treated as a miss so the fallback tiers run.
type RAGTier struct {
	engine *Engine
}

// NewRAGTier creates a RAGTier.
func NewRAGTier(engine *Engine) *RAGTier {
	return &RAGTier{engine: engine}
}

// Name implements Responder.
func (t *RAGTier) Name() string { return SourceRAG }

// TryAnswer implements Responder.
func (t *RAGTier) TryAnswer(ctx context.Context, question, lang string, departments []string) (*Answer, bool, error) {
	if t.engine.State() != StateReady {
		logger.Debugw("index not ready, skipping retrieval", "state", t.engine.State().String())
		return nil, false, nil
	}

	answer, err := t.engine.Query(ctx, question, lang, departments)
	if err != nil {
		return nil, false, err
	}

	// Sentinel answers carry no references; refusals mean the model found
	// nothing usable in the retrieved context. The English form is checked
	// so a back-translated refusal still counts as one.
	if len(answer.References) == 0 || IsRefusal(answer.TextEN) {
		return nil, false, nil
	}
	return answer, true, nil
}
