// Package chunker splits document text into overlapping chunks for indexing.
package chunker

import (
	"strings"
)

// DefaultChunkSize is the default chunk size in runes.
const DefaultChunkSize = 800

// DefaultOverlap is the default overlap between consecutive chunks in runes.
const DefaultOverlap = 100

// boundaryWindow is how far back from the chunk end we look for a
// sentence boundary before falling back to a hard cut.
const boundaryWindow = 200

// sentence-ending runes for English and Arabic text.
var sentenceEnders = map[rune]struct{}{
	'.': {}, '!': {}, '?': {}, '؟': {}, '۔': {}, '\n': {},
}

// Chunker splits text into overlapping, sentence-aware chunks.
type Chunker struct {
	size    int
	overlap int
}

// New creates a Chunker. Non-positive size or negative overlap fall back to
// the defaults; overlap is clamped below size.
func New(size, overlap int) *Chunker {
	if size <= 0 {
		size = DefaultChunkSize
	}
	if overlap < 0 {
		overlap = DefaultOverlap
	}
	if overlap >= size {
		overlap = size / 4
	}
	return &Chunker{size: size, overlap: overlap}
}

// Split chunks text into pieces of at most the configured size, overlapping
// by the configured amount. Cuts prefer sentence boundaries within the last
// boundaryWindow runes of each chunk. Whitespace-only input yields nil.
func (c *Chunker) Split(text string) []string {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}

	runes := []rune(text)
	if len(runes) <= c.size {
		return []string{text}
	}

	var chunks []string
	start := 0
	for start < len(runes) {
		end := start + c.size
		if end >= len(runes) {
			end = len(runes)
		} else {
			end = c.cutAt(runes, start, end)
		}

		chunk := strings.TrimSpace(string(runes[start:end]))
		if chunk != "" {
			chunks = append(chunks, chunk)
		}
		if end == len(runes) {
			break
		}

		next := end - c.overlap
		if next <= start {
			next = start + 1
		}
		start = next
	}

	return chunks
}

// cutAt returns the cut position for a chunk starting at start with a hard
// limit at end. It scans backwards from end looking for a sentence ender,
// then for any whitespace, and keeps the hard cut if neither is close.
func (c *Chunker) cutAt(runes []rune, start, end int) int {
	low := end - boundaryWindow
	if low < start+1 {
		low = start + 1
	}

	for i := end - 1; i >= low; i-- {
		if _, ok := sentenceEnders[runes[i]]; ok {
			return i + 1
		}
	}
	for i := end - 1; i >= low; i-- {
		if runes[i] == ' ' || runes[i] == '\t' {
			return i + 1
		}
	}
	return end
}

// Size returns the configured chunk size.
func (c *Chunker) Size() int { return c.size }

// Overlap returns the configured overlap.
func (c *Chunker) Overlap() int { return c.overlap }
