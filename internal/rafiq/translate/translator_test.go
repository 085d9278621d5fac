package translate

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/kart-io/rafiq/pkg/llm"
)

// mockChatProvider simulates a ChatProvider for tests.
type mockChatProvider struct {
	response string
	err      error
	failures int
	calls    int
}

func (m *mockChatProvider) Chat(ctx context.Context, messages []llm.Message) (string, error) {
	m.calls++
	if m.failures > 0 {
		m.failures--
		return "", errors.New("transient provider error")
	}
	if m.err != nil {
		return "", m.err
	}
	return m.response, nil
}

func (m *mockChatProvider) Generate(ctx context.Context, prompt string, systemPrompt string) (string, error) {
	return m.Chat(ctx, []llm.Message{{Role: llm.RoleUser, Content: prompt}})
}

func (m *mockChatProvider) Name() string {
	return "mock"
}

func fastConfig() *Config {
	return &Config{
		MaxRetries:        3,
		RetryDelay:        time.Millisecond,
		RequestsPerSecond: 0,
	}
}

func TestTranslateSameLanguage(t *testing.T) {
	tr := NewLLMTranslator(&mockChatProvider{response: "should not be used"}, fastConfig())

	out, err := tr.Translate(context.Background(), "hello", LangEnglish, LangEnglish)
	if err != nil {
		t.Fatalf("Translate() returned error: %v", err)
	}
	if out != "hello" {
		t.Errorf("expected passthrough, got %q", out)
	}
}

func TestTranslateSuccess(t *testing.T) {
	mock := &mockChatProvider{response: "البنك المركزي"}
	tr := NewLLMTranslator(mock, fastConfig())

	out, err := tr.Translate(context.Background(), "the central bank", LangEnglish, LangArabic)
	if err != nil {
		t.Fatalf("Translate() returned error: %v", err)
	}
	if out != "البنك المركزي" {
		t.Errorf("expected translation, got %q", out)
	}
	if mock.calls != 1 {
		t.Errorf("expected 1 call, got %d", mock.calls)
	}
}

func TestTranslateRetriesTransientFailure(t *testing.T) {
	mock := &mockChatProvider{response: "translated", failures: 2}
	tr := NewLLMTranslator(mock, fastConfig())

	out, err := tr.Translate(context.Background(), "some text", LangArabic, LangEnglish)
	if err != nil {
		t.Fatalf("Translate() returned error: %v", err)
	}
	if out != "translated" {
		t.Errorf("expected translation after retries, got %q", out)
	}
	if mock.calls != 3 {
		t.Errorf("expected 3 calls, got %d", mock.calls)
	}
}

func TestTranslateFallsBackToOriginal(t *testing.T) {
	mock := &mockChatProvider{err: errors.New("provider down")}
	tr := NewLLMTranslator(mock, fastConfig())

	out, err := tr.Translate(context.Background(), "untranslatable text", LangEnglish, LangArabic)
	if err != nil {
		t.Fatalf("degraded translation must not error, got: %v", err)
	}
	if out != "untranslatable text" {
		t.Errorf("expected original text fallback, got %q", out)
	}
}

func TestSplitForTranslation(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		maxChars int
		want     int
	}{
		{"short", "hello world", 4000, 1},
		{"exact", strings.Repeat("a", 10), 10, 1},
		{"two chunks on space", strings.Repeat("word ", 50), 100, 3},
		{"hard cut without spaces", strings.Repeat("x", 250), 100, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			chunks := splitForTranslation(tt.text, tt.maxChars)
			if len(chunks) != tt.want {
				t.Errorf("expected %d chunks, got %d", tt.want, len(chunks))
			}
			if strings.Join(chunks, "") != tt.text && !strings.Contains(tt.text, " ") {
				t.Errorf("chunks must reassemble the input")
			}
		})
	}
}

func TestSplitPrefersNewline(t *testing.T) {
	text := strings.Repeat("a", 50) + "\n" + strings.Repeat("b", 80)
	chunks := splitForTranslation(text, 100)
	if len(chunks) != 2 {
		t.Fatalf("expected 2 chunks, got %d", len(chunks))
	}
	if !strings.HasSuffix(chunks[0], "\n") {
		t.Errorf("first chunk should end at the newline boundary, got %q", chunks[0])
	}
}

func TestDetectLanguage(t *testing.T) {
	if got := DetectLanguage("ما هو سعر الصرف؟"); got != LangArabic {
		t.Errorf("expected ar, got %s", got)
	}
	if got := DetectLanguage("what is the exchange rate?"); got != LangEnglish {
		t.Errorf("expected en, got %s", got)
	}
}
