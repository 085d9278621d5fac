// Package metrics collects business metrics for the assistant service.
package metrics

import (
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

// Tier labels, in chain order. Keep in sync with the answer sources in biz.
var tierLabels = []string{"faq", "rag", "tfidf", "llm_fallback", "patterns", "department_template"}

// Metrics tracks query, chain and ingestion counters.
type Metrics struct {
	queriesTotal       uint64
	queriesCacheHits   uint64
	queriesCacheMisses uint64
	queriesErrors      uint64
	queryDuration      float64

	answersByTier map[string]*uint64

	documentsIngested uint64
	chunksIndexed     uint64
	ingestErrors      uint64

	translationsTotal     uint64
	translationsFallbacks uint64

	startTime  time.Time
	durationMu sync.Mutex
}

var (
	global *Metrics
	once   sync.Once
)

// Get returns the process-wide metrics instance.
func Get() *Metrics {
	once.Do(func() {
		global = newMetrics()
	})
	return global
}

func newMetrics() *Metrics {
	m := &Metrics{
		answersByTier: make(map[string]*uint64, len(tierLabels)),
		startTime:     time.Now(),
	}
	for _, tier := range tierLabels {
		m.answersByTier[tier] = new(uint64)
	}
	return m
}

// RecordQuery records one query and its outcome.
func (m *Metrics) RecordQuery(duration time.Duration, cacheHit bool, err error) {
	atomic.AddUint64(&m.queriesTotal, 1)
	if err != nil {
		atomic.AddUint64(&m.queriesErrors, 1)
		return
	}
	if cacheHit {
		atomic.AddUint64(&m.queriesCacheHits, 1)
	} else {
		atomic.AddUint64(&m.queriesCacheMisses, 1)
	}

	m.durationMu.Lock()
	m.queryDuration += duration.Seconds()
	m.durationMu.Unlock()
}

// RecordAnswer records which tier produced an answer.
func (m *Metrics) RecordAnswer(tier string) {
	if counter, ok := m.answersByTier[tier]; ok {
		atomic.AddUint64(counter, 1)
	}
}

// RecordIngestion records a completed or failed document ingestion.
func (m *Metrics) RecordIngestion(chunks int, err error) {
	if err != nil {
		atomic.AddUint64(&m.ingestErrors, 1)
		return
	}
	atomic.AddUint64(&m.documentsIngested, 1)
	atomic.AddUint64(&m.chunksIndexed, uint64(chunks))
}

// RecordTranslation records a translation call. fallback reports whether
// the original text was kept because the provider failed.
func (m *Metrics) RecordTranslation(fallback bool) {
	atomic.AddUint64(&m.translationsTotal, 1)
	if fallback {
		atomic.AddUint64(&m.translationsFallbacks, 1)
	}
}

// Export renders the metrics in Prometheus text format.
func (m *Metrics) Export(namespace, subsystem string) string {
	var sb strings.Builder
	prefix := namespace
	if subsystem != "" {
		prefix = prefix + "_" + subsystem
	}

	counter := func(name, help string, value uint64) {
		sb.WriteString(fmt.Sprintf("# HELP %s_%s %s\n", prefix, name, help))
		sb.WriteString(fmt.Sprintf("# TYPE %s_%s counter\n", prefix, name))
		sb.WriteString(fmt.Sprintf("%s_%s %d\n\n", prefix, name, value))
	}

	counter("queries_total", "Total number of queries.", atomic.LoadUint64(&m.queriesTotal))
	counter("queries_cache_hits_total", "Number of answer cache hits.", atomic.LoadUint64(&m.queriesCacheHits))
	counter("queries_cache_misses_total", "Number of answer cache misses.", atomic.LoadUint64(&m.queriesCacheMisses))
	counter("queries_errors_total", "Number of query errors.", atomic.LoadUint64(&m.queriesErrors))

	hits := atomic.LoadUint64(&m.queriesCacheHits)
	misses := atomic.LoadUint64(&m.queriesCacheMisses)
	hitRate := 0.0
	if hits+misses > 0 {
		hitRate = float64(hits) / float64(hits+misses)
	}
	sb.WriteString(fmt.Sprintf("# HELP %s_cache_hit_rate Answer cache hit rate (0-1).\n", prefix))
	sb.WriteString(fmt.Sprintf("# TYPE %s_cache_hit_rate gauge\n", prefix))
	sb.WriteString(fmt.Sprintf("%s_cache_hit_rate %.4f\n\n", prefix, hitRate))

	m.durationMu.Lock()
	queryDuration := m.queryDuration
	m.durationMu.Unlock()
	sb.WriteString(fmt.Sprintf("# HELP %s_query_duration_seconds_total Total query duration.\n", prefix))
	sb.WriteString(fmt.Sprintf("# TYPE %s_query_duration_seconds_total counter\n", prefix))
	sb.WriteString(fmt.Sprintf("%s_query_duration_seconds_total %.6f\n\n", prefix, queryDuration))

	sb.WriteString(fmt.Sprintf("# HELP %s_answers_total Answers produced, labeled by chain tier.\n", prefix))
	sb.WriteString(fmt.Sprintf("# TYPE %s_answers_total counter\n", prefix))
	for _, tier := range tierLabels {
		sb.WriteString(fmt.Sprintf("%s_answers_total{tier=%q} %d\n", prefix, tier, atomic.LoadUint64(m.answersByTier[tier])))
	}
	sb.WriteString("\n")

	counter("documents_ingested_total", "Total documents ingested.", atomic.LoadUint64(&m.documentsIngested))
	counter("chunks_indexed_total", "Total chunks indexed.", atomic.LoadUint64(&m.chunksIndexed))
	counter("ingest_errors_total", "Number of ingestion errors.", atomic.LoadUint64(&m.ingestErrors))
	counter("translations_total", "Total translation calls.", atomic.LoadUint64(&m.translationsTotal))
	counter("translation_fallbacks_total", "Translations that kept the original text.", atomic.LoadUint64(&m.translationsFallbacks))

	uptime := time.Since(m.startTime).Seconds()
	sb.WriteString(fmt.Sprintf("# HELP %s_uptime_seconds Service uptime in seconds.\n", prefix))
	sb.WriteString(fmt.Sprintf("# TYPE %s_uptime_seconds gauge\n", prefix))
	sb.WriteString(fmt.Sprintf("%s_uptime_seconds %.2f\n\n", prefix, uptime))

	return sb.String()
}

// Stats returns the current counters for the status endpoint.
func (m *Metrics) Stats() map[string]interface{} {
	m.durationMu.Lock()
	queryDuration := m.queryDuration
	m.durationMu.Unlock()

	total := atomic.LoadUint64(&m.queriesTotal)
	hits := atomic.LoadUint64(&m.queriesCacheHits)
	misses := atomic.LoadUint64(&m.queriesCacheMisses)
	hitRate := 0.0
	if hits+misses > 0 {
		hitRate = float64(hits) / float64(hits+misses)
	}
	avgDuration := 0.0
	if total > 0 {
		avgDuration = queryDuration / float64(total)
	}

	tiers := make(map[string]uint64, len(tierLabels))
	for _, tier := range tierLabels {
		tiers[tier] = atomic.LoadUint64(m.answersByTier[tier])
	}

	return map[string]interface{}{
		"queries": map[string]interface{}{
			"total":             total,
			"cache_hits":        hits,
			"cache_misses":      misses,
			"cache_hit_rate":    hitRate,
			"errors":            atomic.LoadUint64(&m.queriesErrors),
			"avg_duration_secs": avgDuration,
		},
		"answers_by_tier": tiers,
		"ingestion": map[string]interface{}{
			"documents": atomic.LoadUint64(&m.documentsIngested),
			"chunks":    atomic.LoadUint64(&m.chunksIndexed),
			"errors":    atomic.LoadUint64(&m.ingestErrors),
		},
		"translation": map[string]interface{}{
			"total":     atomic.LoadUint64(&m.translationsTotal),
			"fallbacks": atomic.LoadUint64(&m.translationsFallbacks),
		},
		"uptime_seconds": time.Since(m.startTime).Seconds(),
	}
}

// Reset clears all counters. Test helper.
func (m *Metrics) Reset() {
	atomic.StoreUint64(&m.queriesTotal, 0)
	atomic.StoreUint64(&m.queriesCacheHits, 0)
	atomic.StoreUint64(&m.queriesCacheMisses, 0)
	atomic.StoreUint64(&m.queriesErrors, 0)
	for _, counter := range m.answersByTier {
		atomic.StoreUint64(counter, 0)
	}
	atomic.StoreUint64(&m.documentsIngested, 0)
	atomic.StoreUint64(&m.chunksIndexed, 0)
	atomic.StoreUint64(&m.ingestErrors, 0)
	atomic.StoreUint64(&m.translationsTotal, 0)
	atomic.StoreUint64(&m.translationsFallbacks, 0)

	m.durationMu.Lock()
	m.queryDuration = 0
	m.startTime = time.Now()
	m.durationMu.Unlock()
}
