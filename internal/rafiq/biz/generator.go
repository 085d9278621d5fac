package biz

import (
	"context"
	"fmt"
	"strings"

	"github.com/kart-io/logger"
	"github.com/kart-io/rafiq/internal/rafiq/store"
	"github.com/kart-io/rafiq/pkg/llm"
)

// NoInformationAnswer is returned when retrieval finds nothing to ground an
// answer on. It is an answer, not an error.
const NoInformationAnswer = "I couldn't find any relevant information in the knowledge base."

// RefusalPhrase is what the model must say when the context does not
// contain the answer. Generations carrying it count as misses so later
// response tiers get a chance.
const RefusalPhrase = "I don't have that specific information available"

// DefaultPromptTemplate constrains the model to the retrieved context.
// {{context}} and {{question}} are substituted at generation time.
const DefaultPromptTemplate = `You are an assistant for the Oman Central Bank. You must follow these rules strictly:

RULES:
1. Use ONLY the information provided in the Context section below
2. If the exact answer is not found in the Context, respond with "` + RefusalPhrase + `"
3. Do NOT add any information from your general knowledge
4. Do NOT make assumptions or inferences beyond what is explicitly stated
5. Quote directly from the context when possible

Context: {{context}}

Question: {{question}}

Instructions: Read the context carefully and provide an answer using ONLY the information above. If you cannot find the answer in the context, say "` + RefusalPhrase + `."

Answer:`

// GeneratorConfig configures answer generation.
type GeneratorConfig struct {
	// PromptTemplate is the constrained prompt with {{context}} and
	// {{question}} placeholders.
	PromptTemplate string
}

// Generator produces grounded answers from retrieved chunks.
type Generator struct {
	chatProvider llm.ChatProvider
	config       *GeneratorConfig
}

// NewGenerator creates a Generator. An empty template falls back to
// DefaultPromptTemplate.
func NewGenerator(chatProvider llm.ChatProvider, config *GeneratorConfig) *Generator {
	if config == nil {
		config = &GeneratorConfig{}
	}
	if config.PromptTemplate == "" {
		config.PromptTemplate = DefaultPromptTemplate
	}
	return &Generator{
		chatProvider: chatProvider,
		config:       config,
	}
}

// GenerateAnswer builds the constrained prompt from results and asks the
// chat provider. Empty retrieval yields NoInformationAnswer without an LLM
// call.
func (g *Generator) GenerateAnswer(ctx context.Context, question string, results []*store.SearchResult) (string, error) {
	if len(results) == 0 {
		return NoInformationAnswer, nil
	}

	if ctx.Err() != nil {
		return "", fmt.Errorf("context cancelled before generation: %w", ctx.Err())
	}

	var contextBuilder strings.Builder
	for i, result := range results {
		contextBuilder.WriteString(fmt.Sprintf("[%d] From %s - %s:\n%s\n\n",
			i+1, result.DocumentName, strings.Join(result.Departments, ", "), result.Content))
	}

	prompt := strings.ReplaceAll(g.config.PromptTemplate, "{{context}}", contextBuilder.String())
	prompt = strings.ReplaceAll(prompt, "{{question}}", question)

	answer, err := g.chatProvider.Generate(ctx, prompt, "")
	if err != nil {
		logger.Errorw("answer generation failed", "error", err.Error())
		return "", fmt.Errorf("failed to generate answer: %w", err)
	}

	answer = strings.TrimSpace(answer)
	logger.Infow("answer generated", "length", len(answer), "sources", len(results))
	return answer, nil
}

// IsRefusal reports whether answer declines to answer: the refusal phrase,
// the empty-index sentinel, or a blank generation.
func IsRefusal(answer string) bool {
	trimmed := strings.TrimSpace(answer)
	if trimmed == "" || trimmed == NoInformationAnswer {
		return true
	}
	return strings.Contains(strings.ToLower(trimmed), strings.ToLower(RefusalPhrase))
}
