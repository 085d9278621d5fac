package textutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCosineSimilarity(t *testing.T) {
	assert.InDelta(t, 1.0, CosineSimilarity([]float32{1, 0, 1}, []float32{1, 0, 1}), 1e-9)
	assert.InDelta(t, 0.0, CosineSimilarity([]float32{1, 0}, []float32{0, 1}), 1e-9)
	assert.InDelta(t, -1.0, CosineSimilarity([]float32{1, 1}, []float32{-1, -1}), 1e-9)

	// Mismatched and zero vectors.
	assert.Equal(t, 0.0, CosineSimilarity([]float32{1}, []float32{1, 2}))
	assert.Equal(t, 0.0, CosineSimilarity([]float32{0, 0}, []float32{1, 1}))
	assert.Equal(t, 0.0, CosineSimilarity(nil, nil))
}

func TestHashString(t *testing.T) {
	a := HashString("hello")
	b := HashString("hello")
	c := HashString("world")
	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
	assert.Len(t, a, 64)
}

func TestTruncateString(t *testing.T) {
	assert.Equal(t, "hello", TruncateString("hello", 10))
	assert.Equal(t, "hel", TruncateString("hello", 3))
	assert.Equal(t, "مرح", TruncateString("مرحبا", 3))
}

func TestCleanText(t *testing.T) {
	in := "Annual  report\t\t2024\x00\x07\n\n\n\nSection one"
	assert.Equal(t, "Annual report 2024\n\nSection one", CleanText(in))

	assert.Equal(t, "مرحبا بكم", CleanText("  مرحبا   بكم  "))
	assert.Equal(t, "", CleanText("  \n\n "))
}

func TestArabicDetection(t *testing.T) {
	assert.True(t, IsArabic("ما هي متطلبات الترخيص المصرفي؟"))
	assert.False(t, IsArabic("What are the licensing requirements?"))
	assert.False(t, IsArabic("12345"))

	// Mixed text with a dominant Arabic share.
	assert.True(t, IsArabic("مرحبا hello مرحبا مرحبا"))
}
