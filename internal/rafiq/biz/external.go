package biz

import (
	"context"
	"fmt"
	"strings"

	"github.com/kart-io/logger"
	"github.com/kart-io/rafiq/internal/rafiq/tagger"
	"github.com/kart-io/rafiq/internal/rafiq/translate"
	"github.com/kart-io/rafiq/pkg/llm"
)

// genericReplyMarkers flag boilerplate model output that carries no actual
// answer. A reply containing one is treated as a miss so later tiers run.
var genericReplyMarkers = []string{
	"hello! i'm your ai assistant",
	"how can i assist you today",
}

// ExternalTier asks an external chat model directly, without retrieval.
// It runs after RAG and lexical search have both missed.
type ExternalTier struct {
	chat llm.ChatProvider
}

// NewExternalTier creates an ExternalTier. A nil provider yields a tier
// that never answers.
func NewExternalTier(chat llm.ChatProvider) *ExternalTier {
	return &ExternalTier{chat: chat}
}

// Name implements Responder.
func (t *ExternalTier) Name() string { return SourceExternal }

// TryAnswer implements Responder.
func (t *ExternalTier) TryAnswer(ctx context.Context, question, lang string, departments []string) (*Answer, bool, error) {
	if t.chat == nil {
		return nil, false, nil
	}

	if lang == "" {
		lang = translate.DetectLanguage(question)
	}
	system := externalSystemPrompt(departments, lang)

	reply, err := t.chat.Generate(ctx, question, system)
	if err != nil {
		return nil, false, fmt.Errorf("external model call failed: %w", err)
	}

	reply = strings.TrimSpace(reply)
	if reply == "" || isGenericReply(reply) {
		logger.Debugw("external model returned generic reply, falling through")
		return nil, false, nil
	}

	answer := &Answer{
		Text:        reply,
		Source:      SourceExternal,
		Language:    lang,
		Departments: departments,
	}
	// Arabic replies come straight from the model; there is no English form
	// to report for them.
	if lang != translate.LangArabic {
		answer.TextEN = reply
	}
	return answer, true, nil
}

func externalSystemPrompt(departments []string, lang string) string {
	dept := tagger.GeneralDepartment
	if len(departments) > 0 {
		dept = departments[0]
	}
	prompt := fmt.Sprintf(
		"You are a specialized AI assistant in the %s department at Oman Central Bank. "+
			"Focus on providing specific, factual answers. "+
			"Be specific and factual. Do not include any generic introductions or pleasantries.",
		dept,
	)
	if lang == translate.LangArabic {
		prompt += "\n\nPlease respond in Arabic."
	}
	return prompt
}

func isGenericReply(reply string) bool {
	lower := strings.ToLower(reply)
	for _, marker := range genericReplyMarkers {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	return false
}
