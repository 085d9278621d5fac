package biz

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"
	"sync"
	"unicode"

	"github.com/kart-io/logger"
	"github.com/kart-io/rafiq/internal/rafiq/tagger"
	"github.com/kart-io/rafiq/internal/rafiq/translate"
)

const (
	lexicalExcerptRunes = 200
	lexicalTopResults   = 3
)

// LexicalConfig configures the TF-IDF tier.
type LexicalConfig struct {
	// Threshold is the minimum cosine score for a hit.
	Threshold float64
}

type lexicalDoc struct {
	documentID  string
	name        string
	departments []string
	content     string
	tf          map[string]float64
	terms       map[string]struct{}
}

// LexicalTier is a keyword fallback over the document corpus. It keeps an
// in-memory TF-IDF index fed by the ingestion pipeline and answers with
// excerpts from the best scoring documents when vector retrieval comes up
// empty. Implements ingest.TextSink.
type LexicalTier struct {
	mu        sync.RWMutex
	docs      []*lexicalDoc
	threshold float64
}

// NewLexicalTier creates a LexicalTier.
func NewLexicalTier(config *LexicalConfig) *LexicalTier {
	threshold := config.Threshold
	if threshold <= 0 {
		threshold = 0.3
	}
	return &LexicalTier{threshold: threshold}
}

// Name implements Responder.
func (t *LexicalTier) Name() string { return SourceLexical }

// AddDocument indexes the document text. Called by the ingestion pipeline.
func (t *LexicalTier) AddDocument(documentID, name string, departments []string, text string) {
	tokens := lexicalTokens(text)
	if len(tokens) == 0 {
		return
	}

	tf := make(map[string]float64)
	for _, tok := range tokens {
		tf[tok]++
	}
	terms := make(map[string]struct{}, len(tf))
	for term := range tf {
		tf[term] /= float64(len(tokens))
		terms[term] = struct{}{}
	}

	t.mu.Lock()
	t.docs = append(t.docs, &lexicalDoc{
		documentID:  documentID,
		name:        name,
		departments: departments,
		content:     text,
		tf:          tf,
		terms:       terms,
	})
	t.mu.Unlock()
}

// Documents returns the indexed document count.
func (t *LexicalTier) Documents() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.docs)
}

// TryAnswer implements Responder.
func (t *LexicalTier) TryAnswer(ctx context.Context, question, lang string, departments []string) (*Answer, bool, error) {
	if lang == "" {
		lang = translate.DetectLanguage(question)
	}
	queryTokens := lexicalTokens(question)
	if len(queryTokens) == 0 {
		return nil, false, nil
	}

	t.mu.RLock()
	candidates := t.filter(departments)
	hits := rankByTFIDF(candidates, queryTokens)
	t.mu.RUnlock()

	if len(hits) == 0 || hits[0].score < t.threshold {
		return nil, false, nil
	}

	var b strings.Builder
	b.WriteString("Based on department documents:\n\n")
	for i, hit := range hits {
		if i >= lexicalTopResults {
			break
		}
		excerpt := bestExcerpt(hit.doc.content, queryTokens, lexicalExcerptRunes)
		fmt.Fprintf(&b, "%d. %s (relevance %.2f)\n   %s\n\n", i+1, hit.doc.name, hit.score, excerpt)
	}

	logger.Infow("lexical fallback hit",
		"documents", len(hits),
		"top_score", fmt.Sprintf("%.2f", hits[0].score),
	)
	text := strings.TrimSpace(b.String())
	return &Answer{
		Text:        text,
		TextEN:      text,
		Source:      SourceLexical,
		Language:    lang,
		Departments: departments,
	}, true, nil
}

// filter returns the documents visible to the department filter. General
// tagged documents are always visible. Caller holds the read lock.
func (t *LexicalTier) filter(departments []string) []*lexicalDoc {
	if len(departments) == 0 {
		return t.docs
	}
	var out []*lexicalDoc
	for _, doc := range t.docs {
		for _, d := range doc.departments {
			if d == tagger.GeneralDepartment || containsFold(departments, d) {
				out = append(out, doc)
				break
			}
		}
	}
	return out
}

type lexicalHit struct {
	doc   *lexicalDoc
	score float64
}

// rankByTFIDF scores candidates against the query with cosine similarity
// over TF-IDF weights. IDF is smoothed so terms present in every document
// still contribute.
func rankByTFIDF(candidates []*lexicalDoc, queryTokens []string) []lexicalHit {
	if len(candidates) == 0 {
		return nil
	}

	df := make(map[string]int)
	for _, doc := range candidates {
		for term := range doc.terms {
			df[term]++
		}
	}
	total := float64(len(candidates))
	idf := func(term string) float64 {
		return math.Log((1+total)/(1+float64(df[term]))) + 1
	}

	queryTF := make(map[string]float64)
	for _, tok := range queryTokens {
		queryTF[tok]++
	}
	queryVec := make(map[string]float64, len(queryTF))
	var queryNorm float64
	for term, count := range queryTF {
		w := (count / float64(len(queryTokens))) * idf(term)
		queryVec[term] = w
		queryNorm += w * w
	}
	if queryNorm == 0 {
		return nil
	}
	queryNorm = math.Sqrt(queryNorm)

	var hits []lexicalHit
	for _, doc := range candidates {
		var dot, docNorm float64
		for term, tf := range doc.tf {
			w := tf * idf(term)
			docNorm += w * w
			if qw, ok := queryVec[term]; ok {
				dot += w * qw
			}
		}
		if dot == 0 || docNorm == 0 {
			continue
		}
		hits = append(hits, lexicalHit{doc: doc, score: dot / (math.Sqrt(docNorm) * queryNorm)})
	}

	sort.Slice(hits, func(i, j int) bool { return hits[i].score > hits[j].score })
	return hits
}

// lexicalTokens lowercases and splits on non-letter runes, dropping tokens
// of two runes or fewer.
func lexicalTokens(text string) []string {
	fields := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	out := fields[:0]
	for _, f := range fields {
		if len([]rune(f)) > 2 {
			out = append(out, f)
		}
	}
	return out
}

// bestExcerpt returns the window of content with the most query-token
// occurrences, with ellipses when trimmed.
func bestExcerpt(content string, queryTokens []string, window int) string {
	runes := []rune(content)
	if len(runes) <= window {
		return content
	}

	lower := strings.ToLower(content)
	lowerRunes := []rune(lower)

	const step = 25
	bestStart, bestMatches := 0, -1
	for start := 0; start+window <= len(lowerRunes); start += step {
		segment := string(lowerRunes[start : start+window])
		matches := 0
		for _, tok := range queryTokens {
			if strings.Contains(segment, tok) {
				matches++
			}
		}
		if matches > bestMatches {
			bestMatches = matches
			bestStart = start
		}
	}

	excerpt := string(runes[bestStart:min(bestStart+window, len(runes))])
	if bestStart > 0 {
		excerpt = "..." + excerpt
	}
	if bestStart+window < len(runes) {
		excerpt += "..."
	}
	return excerpt
}

func containsFold(list []string, s string) bool {
	for _, item := range list {
		if strings.EqualFold(item, s) {
			return true
		}
	}
	return false
}
