package chunker

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitEmpty(t *testing.T) {
	c := New(800, 100)
	assert.Nil(t, c.Split(""))
	assert.Nil(t, c.Split("   \n\t  "))
}

func TestSplitShortText(t *testing.T) {
	c := New(800, 100)
	chunks := c.Split("Central bank licensing requirements.")
	require.Len(t, chunks, 1)
	assert.Equal(t, "Central bank licensing requirements.", chunks[0])
}

func TestSplitPrefersSentenceBoundary(t *testing.T) {
	c := New(100, 20)
	first := strings.Repeat("a", 60) + ". "
	second := strings.Repeat("b", 200)
	chunks := c.Split(first + second)

	require.True(t, len(chunks) >= 2)
	// The boundary search should cut the first chunk at the period, not at
	// the 100-rune hard limit.
	assert.Equal(t, strings.Repeat("a", 60)+".", chunks[0])
}

func TestSplitOverlap(t *testing.T) {
	c := New(100, 30)
	text := strings.Repeat("x", 500)
	chunks := c.Split(text)
	require.True(t, len(chunks) >= 2)

	// No sentence boundaries anywhere, so every chunk except possibly the
	// last is exactly the chunk size and consecutive chunks share overlap.
	for i := 0; i < len(chunks)-1; i++ {
		assert.Len(t, []rune(chunks[i]), 100)
	}
}

func TestSplitCoversWholeText(t *testing.T) {
	c := New(120, 40)
	sentences := make([]string, 0, 30)
	for i := 0; i < 30; i++ {
		sentences = append(sentences, "The reserve ratio applies to all licensed banks.")
	}
	text := strings.Join(sentences, " ")

	chunks := c.Split(text)
	require.NotEmpty(t, chunks)

	// Last chunk must end where the text ends.
	assert.True(t, strings.HasSuffix(text, chunks[len(chunks)-1]))
}

func TestSplitArabicSentenceEnder(t *testing.T) {
	c := New(60, 10)
	first := "ما هي متطلبات الترخيص؟"
	text := first + " " + strings.Repeat("نص", 80)
	chunks := c.Split(text)
	require.True(t, len(chunks) >= 2)
	assert.Equal(t, first, chunks[0])
}

func TestNewClampsOverlap(t *testing.T) {
	c := New(100, 150)
	assert.Equal(t, 25, c.Overlap())

	c = New(0, -1)
	assert.Equal(t, DefaultChunkSize, c.Size())
	assert.Equal(t, DefaultOverlap, c.Overlap())
}
