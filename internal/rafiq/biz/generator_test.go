package biz

import (
	"context"
	"testing"

	"github.com/kart-io/rafiq/internal/rafiq/store"
	"github.com/kart-io/rafiq/internal/rafiq/tagger"
	"github.com/kart-io/rafiq/pkg/llm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingChat struct {
	prompt string
	reply  string
}

func (c *recordingChat) Chat(_ context.Context, _ []llm.Message) (string, error) {
	return c.reply, nil
}

func (c *recordingChat) Generate(_ context.Context, prompt, _ string) (string, error) {
	c.prompt = prompt
	return c.reply, nil
}

func (c *recordingChat) Name() string { return "recording" }

func TestGenerateAnswerEmptyResults(t *testing.T) {
	gen := NewGenerator(&recordingChat{}, nil)

	answer, err := gen.GenerateAnswer(context.Background(), "question", nil)
	require.NoError(t, err)
	assert.Equal(t, NoInformationAnswer, answer)
}

func TestGenerateAnswerPromptConstruction(t *testing.T) {
	chat := &recordingChat{reply: "The requirement is five percent."}
	gen := NewGenerator(chat, nil)

	results := []*store.SearchResult{
		{
			DocumentName: "circular-12.pdf",
			Departments:  []string{tagger.Finance},
			Content:      "Reserve requirement is set at five percent.",
		},
	}
	answer, err := gen.GenerateAnswer(context.Background(), "what is the reserve requirement", results)
	require.NoError(t, err)
	assert.Equal(t, "The requirement is five percent.", answer)

	assert.Contains(t, chat.prompt, "[1] From circular-12.pdf - Finance:")
	assert.Contains(t, chat.prompt, "Reserve requirement is set at five percent.")
	assert.Contains(t, chat.prompt, "what is the reserve requirement")
	assert.Contains(t, chat.prompt, RefusalPhrase)
	assert.NotContains(t, chat.prompt, "{{context}}")
	assert.NotContains(t, chat.prompt, "{{question}}")
}

func TestIsRefusal(t *testing.T) {
	assert.True(t, IsRefusal(""))
	assert.True(t, IsRefusal("   "))
	assert.True(t, IsRefusal(NoInformationAnswer))
	assert.True(t, IsRefusal("I'm sorry, "+RefusalPhrase+" right now."))
	assert.True(t, IsRefusal("i don't have that specific information available"))
	assert.False(t, IsRefusal("The reserve requirement is five percent."))
}
