// Package textutil provides text processing helpers shared by the
// ingestion pipeline and the response tiers.
package textutil

import (
	"crypto/sha256"
	"encoding/hex"
	"math"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// CosineSimilarity computes the cosine similarity of two vectors.
// The result is in [-1, 1]; mismatched or empty vectors yield 0.
func CosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}

	if normA == 0 || normB == 0 {
		return 0
	}

	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

// HashString returns the hex SHA-256 digest of s.
func HashString(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])
}

// TruncateString truncates s to at most maxLen Unicode characters.
func TruncateString(s string, maxLen int) string {
	if utf8.RuneCountInString(s) <= maxLen {
		return s
	}
	runes := []rune(s)
	return string(runes[:maxLen])
}

var (
	multiSpace   = regexp.MustCompile(`[ \t]+`)
	multiNewline = regexp.MustCompile(`\n{3,}`)
)

// CleanText normalizes extracted document text: control characters are
// dropped, space runs collapsed, and blank-line runs reduced to one.
// Arabic text passes through untouched.
func CleanText(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r == '\n' || r == '\t' || !unicode.IsControl(r) {
			b.WriteRune(r)
		}
	}
	out := multiSpace.ReplaceAllString(b.String(), " ")
	out = multiNewline.ReplaceAllString(out, "\n\n")
	return strings.TrimSpace(out)
}

// ArabicRatio returns the fraction of letters in s that are Arabic.
func ArabicRatio(s string) float64 {
	var letters, arabic int
	for _, r := range s {
		if !unicode.IsLetter(r) {
			continue
		}
		letters++
		if unicode.Is(unicode.Arabic, r) {
			arabic++
		}
	}
	if letters == 0 {
		return 0
	}
	return float64(arabic) / float64(letters)
}

// IsArabic reports whether s is predominantly Arabic text.
func IsArabic(s string) bool {
	return ArabicRatio(s) > 0.3
}
