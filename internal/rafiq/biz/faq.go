package biz

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/kart-io/logger"
	"github.com/kart-io/rafiq/internal/rafiq/translate"
	"github.com/pmezard/go-difflib/difflib"
)

// FAQEntry is one parsed question/answer pair.
type FAQEntry struct {
	Question string
	Answer   string
	Category string
}

// FAQConfig configures the FAQ tier.
type FAQConfig struct {
	// Path is the markdown knowledge base file.
	Path string
	// Threshold is the minimum similarity for a match.
	Threshold float64
}

// importantKeywords carry extra matching weight. Questions about the bank,
// its governor or its payment systems should not match on surface
// similarity alone.
var importantKeywords = map[string]struct{}{
	"central": {}, "bank": {}, "currency": {}, "rial": {}, "omr": {},
	"oman": {}, "cbo": {}, "governor": {}, "established": {}, "mission": {},
	"headquarters": {}, "policy": {}, "monetary": {}, "supervision": {},
	"regulation": {}, "payment": {}, "system": {}, "rtgs": {}, "ach": {},
	"wps": {}, "maal": {}, "fintech": {}, "islamic": {}, "sharia": {},
}

// conflictingPairs penalize matches that mix up distinct topics, for
// example currency questions landing on certificate-of-deposit entries.
var conflictingPairs = [][2][]string{
	{{"central", "bank"}, {"currency", "rial"}},
	{{"currency", "rial"}, {"central", "bank"}},
	{{"governor"}, {"currency", "rial"}},
	{{"currency", "rial"}, {"governor"}},
	{{"established"}, {"currency", "rial"}},
	{{"currency", "rial"}, {"established"}},
	{{"currency"}, {"auction", "cd", "deposit"}},
	{{"auction", "cd", "deposit"}, {"currency"}},
}

// FAQTier answers questions from a curated markdown FAQ file. It is the
// first tier of the chain: a confident FAQ hit short-circuits retrieval.
type FAQTier struct {
	entries   []FAQEntry
	threshold float64
}

// NewFAQTier loads the FAQ file at config.Path. A missing or empty file is
// not an error; the tier simply never matches.
func NewFAQTier(config *FAQConfig) *FAQTier {
	tier := &FAQTier{threshold: config.Threshold}
	if tier.threshold <= 0 {
		tier.threshold = 0.3
	}
	if config.Path == "" {
		return tier
	}

	data, err := os.ReadFile(config.Path)
	if err != nil {
		logger.Warnw("failed to load FAQ file", "path", config.Path, "error", err.Error())
		return tier
	}

	tier.entries = ParseFAQ(string(data))
	logger.Infow("loaded FAQ knowledge base", "path", config.Path, "entries", len(tier.entries))
	return tier
}

// Name implements Responder.
func (t *FAQTier) Name() string { return SourceFAQ }

// Entries returns the number of loaded FAQ entries.
func (t *FAQTier) Entries() int { return len(t.entries) }

// TryAnswer implements Responder.
func (t *FAQTier) TryAnswer(ctx context.Context, question, lang string, departments []string) (*Answer, bool, error) {
	if len(t.entries) == 0 {
		return nil, false, nil
	}
	if lang == "" {
		lang = translate.DetectLanguage(question)
	}

	userQuestion := strings.ToLower(strings.TrimSpace(question))

	var best *FAQEntry
	bestScore := 0.0
	for i := range t.entries {
		score := faqSimilarity(userQuestion, strings.ToLower(t.entries[i].Question))
		if score > bestScore && score >= t.threshold {
			bestScore = score
			best = &t.entries[i]
		}
	}
	if best == nil {
		return nil, false, nil
	}

	logger.Infow("FAQ match",
		"category", best.Category,
		"score", fmt.Sprintf("%.2f", bestScore),
	)
	return &Answer{
		Text:        best.Answer,
		TextEN:      best.Answer,
		Source:      SourceFAQ,
		Language:    lang,
		Departments: departments,
	}, true, nil
}

// ParseFAQ parses a markdown FAQ document. Categories are "## " headings
// and entries are "**Q: ...** A: ..." pairs.
func ParseFAQ(content string) []FAQEntry {
	var entries []FAQEntry

	category := "General"
	for _, section := range strings.Split("\n"+content, "\n## ") {
		section = strings.TrimSpace(section)
		if section == "" {
			continue
		}

		body := section
		if idx := strings.IndexByte(section, '\n'); idx >= 0 {
			if title := strings.TrimSpace(section[:idx]); title != "" && !strings.HasPrefix(title, "**Q:") {
				category = title
				body = section[idx+1:]
			}
		} else if !strings.HasPrefix(section, "**Q:") {
			continue
		}

		for _, block := range strings.Split(body, "**Q:")[1:] {
			end := strings.Index(block, "**")
			if end < 0 {
				continue
			}
			q := strings.TrimSpace(block[:end])
			rest := strings.TrimSpace(block[end+2:])
			if !strings.HasPrefix(rest, "A:") {
				continue
			}
			a := strings.TrimSpace(rest[2:])
			if q == "" || a == "" {
				continue
			}
			entries = append(entries, FAQEntry{Question: q, Answer: a, Category: category})
		}
	}
	return entries
}

// faqSimilarity scores how well a user question matches an FAQ question.
// Weighted blend of important-keyword agreement, sequence similarity and
// word overlap, minus a penalty when the two mix conflicting topics.
func faqSimilarity(userQuestion, faqQuestion string) float64 {
	userWords := wordSet(userQuestion)
	faqWords := wordSet(faqQuestion)

	userImportant := intersectKeywords(userWords)
	faqImportant := intersectKeywords(faqWords)

	importantMatch := 0.0
	if len(userImportant) > 0 && len(faqImportant) > 0 {
		common := 0
		for w := range userImportant {
			if _, ok := faqImportant[w]; ok {
				common++
			}
		}
		importantMatch = float64(common) / float64(max(len(userImportant), len(faqImportant)))
	}

	conflictPenalty := 0.0
	for _, pair := range conflictingPairs {
		if anyWordIn(userWords, pair[0]) && anyWordIn(faqWords, pair[1]) {
			conflictPenalty = 0.4
			break
		}
	}

	basic := SequenceRatio(userQuestion, faqQuestion)

	common := 0
	for w := range userWords {
		if _, ok := faqWords[w]; ok {
			common++
		}
	}
	wordOverlap := 0.0
	if len(userWords) > 0 || len(faqWords) > 0 {
		wordOverlap = float64(common) / float64(max(len(userWords), len(faqWords)))
	}

	score := importantMatch*0.4 + basic*0.4 + wordOverlap*0.2 - conflictPenalty
	if score < 0 {
		return 0
	}
	return score
}

// SequenceRatio is a character-level similarity ratio in [0, 1].
func SequenceRatio(a, b string) float64 {
	matcher := difflib.NewMatcher(charSlice(a), charSlice(b))
	return matcher.Ratio()
}

func charSlice(s string) []string {
	runes := []rune(s)
	out := make([]string, len(runes))
	for i, r := range runes {
		out[i] = string(r)
	}
	return out
}

func wordSet(s string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, w := range strings.Fields(s) {
		set[w] = struct{}{}
	}
	return set
}

func intersectKeywords(words map[string]struct{}) map[string]struct{} {
	out := make(map[string]struct{})
	for w := range words {
		if _, ok := importantKeywords[w]; ok {
			out[w] = struct{}{}
		}
	}
	return out
}

func anyWordIn(words map[string]struct{}, candidates []string) bool {
	for _, c := range candidates {
		if _, ok := words[c]; ok {
			return true
		}
	}
	return false
}
