// Package translate provides bilingual translation for documents and
// queries over a chat LLM provider.
package translate

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/kart-io/logger"
	"golang.org/x/time/rate"

	"github.com/kart-io/rafiq/internal/pkg/rafiq/textutil"
	"github.com/kart-io/rafiq/internal/rafiq/metrics"
	"github.com/kart-io/rafiq/pkg/llm"
)

// MaxChunkChars is the largest piece of text sent in one translation call.
const MaxChunkChars = 4000

// Language codes used across the service.
const (
	LangEnglish = "en"
	LangArabic  = "ar"
)

// Translator converts text between English and Arabic.
type Translator interface {
	// Translate renders text from source into target language.
	Translate(ctx context.Context, text, source, target string) (string, error)
}

// Config controls the LLM translator.
type Config struct {
	// MaxRetries is the number of attempts per chunk.
	MaxRetries int
	// RetryDelay is the base delay between attempts.
	RetryDelay time.Duration
	// RequestsPerSecond throttles calls to the provider. Zero disables
	// throttling.
	RequestsPerSecond float64
}

// DefaultConfig returns the default translator configuration.
func DefaultConfig() *Config {
	return &Config{
		MaxRetries:        3,
		RetryDelay:        time.Second,
		RequestsPerSecond: 2,
	}
}

// LLMTranslator implements Translator over a chat provider. Long inputs are
// split into chunks of at most MaxChunkChars; a chunk whose translation
// keeps failing falls back to its original text so ingestion can proceed.
type LLMTranslator struct {
	chatProvider llm.ChatProvider
	config       *Config
	limiter      *rate.Limiter
}

// NewLLMTranslator creates a translator backed by the given chat provider.
func NewLLMTranslator(chatProvider llm.ChatProvider, config *Config) *LLMTranslator {
	if config == nil {
		config = DefaultConfig()
	}
	var limiter *rate.Limiter
	if config.RequestsPerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(config.RequestsPerSecond), 1)
	}
	return &LLMTranslator{
		chatProvider: chatProvider,
		config:       config,
		limiter:      limiter,
	}
}

// Translate translates text chunk by chunk. Identical source and target, or
// empty input, return the text unchanged.
func (t *LLMTranslator) Translate(ctx context.Context, text, source, target string) (string, error) {
	if source == target || strings.TrimSpace(text) == "" {
		return text, nil
	}

	chunks := splitForTranslation(text, MaxChunkChars)
	translated := make([]string, 0, len(chunks))

	for i, chunk := range chunks {
		out, err := t.translateChunk(ctx, chunk, source, target)
		if err != nil {
			if ctx.Err() != nil {
				return "", ctx.Err()
			}
			logger.Warnw("chunk translation failed, keeping original text",
				"chunk", i,
				"chunks", len(chunks),
				"error", err.Error(),
			)
			out = chunk
			metrics.Get().RecordTranslation(true)
		} else {
			metrics.Get().RecordTranslation(false)
		}
		translated = append(translated, out)
	}

	return strings.Join(translated, "\n"), nil
}

// translateChunk calls the provider with retries and backoff.
func (t *LLMTranslator) translateChunk(ctx context.Context, chunk, source, target string) (string, error) {
	prompt := buildPrompt(chunk, source, target)
	messages := []llm.Message{
		{Role: llm.RoleSystem, Content: "You are a precise translator. Reply with the translation only, no commentary."},
		{Role: llm.RoleUser, Content: prompt},
	}

	var lastErr error
	for attempt := 1; attempt <= t.config.MaxRetries; attempt++ {
		if t.limiter != nil {
			if err := t.limiter.Wait(ctx); err != nil {
				return "", err
			}
		}

		resp, err := t.chatProvider.Chat(ctx, messages)
		if err == nil {
			resp = strings.TrimSpace(resp)
			if resp != "" {
				return resp, nil
			}
			err = fmt.Errorf("provider returned empty translation")
		}
		lastErr = err

		if attempt < t.config.MaxRetries {
			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case <-time.After(t.config.RetryDelay * time.Duration(attempt)):
			}
		}
	}

	return "", fmt.Errorf("translation failed after %d attempts: %w", t.config.MaxRetries, lastErr)
}

func buildPrompt(chunk, source, target string) string {
	return fmt.Sprintf("Translate the following text from %s to %s. Preserve paragraph breaks and numbers exactly.\n\nText:\n%s",
		languageName(source), languageName(target), chunk)
}

func languageName(code string) string {
	switch code {
	case LangArabic:
		return "Arabic"
	case LangEnglish:
		return "English"
	default:
		return code
	}
}

// DetectLanguage classifies text as Arabic or English by script ratio.
func DetectLanguage(text string) string {
	if textutil.IsArabic(text) {
		return LangArabic
	}
	return LangEnglish
}

// splitForTranslation cuts text into pieces of at most maxChars runes,
// preferring newline and then space boundaries so sentences stay intact.
func splitForTranslation(text string, maxChars int) []string {
	runes := []rune(text)
	if len(runes) <= maxChars {
		return []string{text}
	}

	var chunks []string
	start := 0
	for start < len(runes) {
		end := start + maxChars
		if end >= len(runes) {
			chunks = append(chunks, string(runes[start:]))
			break
		}

		cut := end
		for i := end - 1; i > start; i-- {
			if runes[i] == '\n' {
				cut = i + 1
				break
			}
			if cut == end && runes[i] == ' ' {
				cut = i + 1
			}
		}
		// A single token longer than maxChars gets a hard cut.
		if cut <= start {
			cut = end
		}

		chunks = append(chunks, string(runes[start:cut]))
		start = cut
	}

	return chunks
}
