package ingest

import (
	"context"
	"fmt"
	"strings"

	"github.com/kart-io/logger"

	"github.com/kart-io/rafiq/internal/pkg/rafiq/textutil"
	"github.com/kart-io/rafiq/internal/rafiq/translate"
	"github.com/kart-io/rafiq/pkg/llm"
)

// Summary length bounds. Generations outside them are discarded in favor of
// the truncation fallback.
const (
	summaryMinChars = 20
	summaryMaxChars = 500
)

// summaryInputChars caps how much document text goes into the prompt.
const summaryInputChars = 4000

const summaryPromptTemplate = `Provide a concise summary of this document in at most three sentences. State the document's subject and its key facts. Do not add introductions or commentary.

Document:
%s

Summary:`

// Summarizer produces the bilingual document summaries stored with every
// chunk. The English summary comes from the chat model, degrading to a
// truncated excerpt when the model fails or returns something unusable; the
// Arabic one is the translation of the English summary, degrading to empty.
type Summarizer struct {
	chat       llm.ChatProvider
	translator translate.Translator
}

// NewSummarizer creates a Summarizer. A nil chat provider always uses the
// truncation fallback.
func NewSummarizer(chat llm.ChatProvider, translator translate.Translator) *Summarizer {
	return &Summarizer{chat: chat, translator: translator}
}

// Summarize returns the English and Arabic summaries of english. It never
// fails: every degradation path still yields a usable English summary.
func (s *Summarizer) Summarize(ctx context.Context, english string) (summaryEN, summaryAR string) {
	english = strings.TrimSpace(english)
	if english == "" {
		return "", ""
	}

	summaryEN = s.summarizeEnglish(ctx, english)
	summaryAR = s.translateSummary(ctx, summaryEN)
	return summaryEN, summaryAR
}

func (s *Summarizer) summarizeEnglish(ctx context.Context, english string) string {
	if s.chat == nil {
		return fallbackSummary(english)
	}

	prompt := fmt.Sprintf(summaryPromptTemplate, textutil.TruncateString(english, summaryInputChars))
	summary, err := s.chat.Generate(ctx, prompt, "")
	if err != nil {
		logger.Warnw("summary generation failed, using excerpt", "error", err.Error())
		return fallbackSummary(english)
	}

	summary = strings.TrimSpace(summary)
	if !usableSummary(summary) {
		logger.Warnw("generated summary rejected, using excerpt", "length", len(summary))
		return fallbackSummary(english)
	}
	return summary
}

func (s *Summarizer) translateSummary(ctx context.Context, summaryEN string) string {
	if s.translator == nil || summaryEN == "" {
		return ""
	}
	summaryAR, err := s.translator.Translate(ctx, summaryEN, translate.LangEnglish, translate.LangArabic)
	if err != nil {
		logger.Warnw("summary translation failed", "error", err.Error())
		return ""
	}
	return strings.TrimSpace(summaryAR)
}

// usableSummary rejects generations that are too short to carry meaning or
// long enough to be an answer dump rather than a summary.
func usableSummary(summary string) bool {
	n := len(strings.TrimSpace(summary))
	return n >= summaryMinChars && n <= summaryMaxChars
}

// fallbackSummary excerpts the opening of the document.
func fallbackSummary(english string) string {
	summary := strings.TrimSpace(textutil.TruncateString(english, 200))
	if !strings.HasSuffix(summary, ".") {
		summary += "..."
	}
	return summary
}
