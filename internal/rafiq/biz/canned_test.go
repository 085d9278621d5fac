package biz

import (
	"context"
	"testing"

	"github.com/kart-io/rafiq/internal/rafiq/tagger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTemplateTierAlwaysAnswers(t *testing.T) {
	tier := NewTemplateTier()

	answer, ok, err := tier.TryAnswer(context.Background(), "anything at all", "", nil)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, SourceTemplate, answer.Source)
	assert.Contains(t, answer.Text, tagger.GeneralDepartment)
}

func TestTemplateTierBankQuestion(t *testing.T) {
	tier := NewTemplateTier()

	answer, ok, err := tier.TryAnswer(context.Background(), "tell me about the Oman Central Bank", "", []string{tagger.Currency})
	require.NoError(t, err)
	require.True(t, ok)
	assert.Contains(t, answer.Text, "established in 1974")
	assert.Contains(t, answer.Text, tagger.Currency)
	assert.Contains(t, answer.Text, tagger.Focus(tagger.Currency))
}

func TestTemplateTierArabic(t *testing.T) {
	tier := NewTemplateTier()

	answer, ok, err := tier.TryAnswer(context.Background(), "أخبرني عن البنك المركزي العماني", "", []string{tagger.Finance})
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "ar", answer.Language)
	assert.Contains(t, answer.Text, "1974")
	assert.Contains(t, answer.Text, tagger.FocusArabic(tagger.Finance))
}
