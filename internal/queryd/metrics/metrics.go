// Package metrics collects business metrics for the query service.
package metrics

import (
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

// QueryMetrics holds the service's business counters. All counters are
// updated with atomics; duration sums take a small mutex.
type QueryMetrics struct {
	queriesTotal     uint64
	queriesCacheHits uint64
	queriesErrors    uint64

	retrievalTotal    uint64
	retrievalErrors   uint64
	retrievalDuration float64

	synthesisTotal    uint64
	synthesisErrors   uint64
	synthesisTimeouts uint64
	synthesisDegraded uint64
	synthesisDuration float64

	intentCounts sync.Map // intent name -> *uint64

	startTime  time.Time
	durationMu sync.Mutex
}

var (
	global *QueryMetrics
	once   sync.Once
)

// Get returns the process-wide metrics instance.
func Get() *QueryMetrics {
	once.Do(func() {
		global = &QueryMetrics{startTime: time.Now()}
	})
	return global
}

// RecordQuery records one handled query.
func (m *QueryMetrics) RecordQuery(intent string, cacheHit bool, err error) {
	atomic.AddUint64(&m.queriesTotal, 1)
	if err != nil {
		atomic.AddUint64(&m.queriesErrors, 1)
		return
	}
	if cacheHit {
		atomic.AddUint64(&m.queriesCacheHits, 1)
	}
	if intent != "" {
		v, _ := m.intentCounts.LoadOrStore(intent, new(uint64))
		atomic.AddUint64(v.(*uint64), 1)
	}
}

// RecordRetrieval records a retrieval pass.
func (m *QueryMetrics) RecordRetrieval(duration time.Duration, err error) {
	atomic.AddUint64(&m.retrievalTotal, 1)
	if err != nil {
		atomic.AddUint64(&m.retrievalErrors, 1)
		return
	}
	m.durationMu.Lock()
	m.retrievalDuration += duration.Seconds()
	m.durationMu.Unlock()
}

// RecordSynthesis records a synthesis attempt. Timed-out and otherwise
// failed syntheses both count as degraded responses.
func (m *QueryMetrics) RecordSynthesis(duration time.Duration, timedOut bool, err error) {
	atomic.AddUint64(&m.synthesisTotal, 1)
	if timedOut {
		atomic.AddUint64(&m.synthesisTimeouts, 1)
		atomic.AddUint64(&m.synthesisDegraded, 1)
		return
	}
	if err != nil {
		atomic.AddUint64(&m.synthesisErrors, 1)
		atomic.AddUint64(&m.synthesisDegraded, 1)
		return
	}
	m.durationMu.Lock()
	m.synthesisDuration += duration.Seconds()
	m.durationMu.Unlock()
}

// Stats returns the current counters for the stats endpoint.
func (m *QueryMetrics) Stats() map[string]any {
	m.durationMu.Lock()
	retrievalDuration := m.retrievalDuration
	synthesisDuration := m.synthesisDuration
	m.durationMu.Unlock()

	queries := atomic.LoadUint64(&m.queriesTotal)
	hits := atomic.LoadUint64(&m.queriesCacheHits)
	hitRate := 0.0
	if queries > 0 {
		hitRate = float64(hits) / float64(queries)
	}

	retrievals := atomic.LoadUint64(&m.retrievalTotal)
	avgRetrieval := 0.0
	if retrievals > 0 {
		avgRetrieval = retrievalDuration / float64(retrievals)
	}

	syntheses := atomic.LoadUint64(&m.synthesisTotal)
	avgSynthesis := 0.0
	if ok := syntheses - atomic.LoadUint64(&m.synthesisErrors) - atomic.LoadUint64(&m.synthesisTimeouts); ok > 0 {
		avgSynthesis = synthesisDuration / float64(ok)
	}

	intents := make(map[string]uint64)
	m.intentCounts.Range(func(k, v any) bool {
		intents[k.(string)] = atomic.LoadUint64(v.(*uint64))
		return true
	})

	return map[string]any{
		"queries": map[string]any{
			"total":          queries,
			"cache_hits":     hits,
			"cache_hit_rate": hitRate,
			"errors":         atomic.LoadUint64(&m.queriesErrors),
			"by_intent":      intents,
		},
		"retrieval": map[string]any{
			"total":             retrievals,
			"errors":            atomic.LoadUint64(&m.retrievalErrors),
			"avg_duration_secs": avgRetrieval,
		},
		"synthesis": map[string]any{
			"total":             syntheses,
			"errors":            atomic.LoadUint64(&m.synthesisErrors),
			"timeouts":          atomic.LoadUint64(&m.synthesisTimeouts),
			"degraded":          atomic.LoadUint64(&m.synthesisDegraded),
			"avg_duration_secs": avgSynthesis,
		},
		"uptime_seconds": time.Since(m.startTime).Seconds(),
	}
}

// Export renders the counters in Prometheus text format.
func (m *QueryMetrics) Export(namespace string) string {
	var sb strings.Builder

	counter := func(name, help string, value uint64) {
		fmt.Fprintf(&sb, "# HELP %s_%s %s\n", namespace, name, help)
		fmt.Fprintf(&sb, "# TYPE %s_%s counter\n", namespace, name)
		fmt.Fprintf(&sb, "%s_%s %d\n\n", namespace, name, value)
	}

	counter("queries_total", "Total number of queries.", atomic.LoadUint64(&m.queriesTotal))
	counter("queries_cache_hits_total", "Number of cache hits.", atomic.LoadUint64(&m.queriesCacheHits))
	counter("queries_errors_total", "Number of query errors.", atomic.LoadUint64(&m.queriesErrors))
	counter("retrieval_total", "Total number of retrieval passes.", atomic.LoadUint64(&m.retrievalTotal))
	counter("retrieval_errors_total", "Number of retrieval errors.", atomic.LoadUint64(&m.retrievalErrors))
	counter("synthesis_total", "Total number of synthesis attempts.", atomic.LoadUint64(&m.synthesisTotal))
	counter("synthesis_errors_total", "Number of synthesis errors.", atomic.LoadUint64(&m.synthesisErrors))
	counter("synthesis_timeouts_total", "Number of synthesis timeouts.", atomic.LoadUint64(&m.synthesisTimeouts))
	counter("synthesis_degraded_total", "Number of degraded responses.", atomic.LoadUint64(&m.synthesisDegraded))

	m.durationMu.Lock()
	retrievalDuration := m.retrievalDuration
	synthesisDuration := m.synthesisDuration
	m.durationMu.Unlock()

	fmt.Fprintf(&sb, "# HELP %s_retrieval_duration_seconds_total Total retrieval duration.\n", namespace)
	fmt.Fprintf(&sb, "# TYPE %s_retrieval_duration_seconds_total counter\n", namespace)
	fmt.Fprintf(&sb, "%s_retrieval_duration_seconds_total %.6f\n\n", namespace, retrievalDuration)

	fmt.Fprintf(&sb, "# HELP %s_synthesis_duration_seconds_total Total synthesis duration.\n", namespace)
	fmt.Fprintf(&sb, "# TYPE %s_synthesis_duration_seconds_total counter\n", namespace)
	fmt.Fprintf(&sb, "%s_synthesis_duration_seconds_total %.6f\n\n", namespace, synthesisDuration)

	fmt.Fprintf(&sb, "# HELP %s_uptime_seconds Service uptime in seconds.\n", namespace)
	fmt.Fprintf(&sb, "# TYPE %s_uptime_seconds gauge\n", namespace)
	fmt.Fprintf(&sb, "%s_uptime_seconds %.2f\n", namespace, time.Since(m.startTime).Seconds())

	return sb.String()
}

// Reset zeroes every counter. Tests only.
func (m *QueryMetrics) Reset() {
	atomic.StoreUint64(&m.queriesTotal, 0)
	atomic.StoreUint64(&m.queriesCacheHits, 0)
	atomic.StoreUint64(&m.queriesErrors, 0)
	atomic.StoreUint64(&m.retrievalTotal, 0)
	atomic.StoreUint64(&m.retrievalErrors, 0)
	atomic.StoreUint64(&m.synthesisTotal, 0)
	atomic.StoreUint64(&m.synthesisErrors, 0)
	atomic.StoreUint64(&m.synthesisTimeouts, 0)
	atomic.StoreUint64(&m.synthesisDegraded, 0)

	m.intentCounts.Range(func(k, _ any) bool {
		m.intentCounts.Delete(k)
		return true
	})

	m.durationMu.Lock()
	m.retrievalDuration = 0
	m.synthesisDuration = 0
	m.startTime = time.Now()
	m.durationMu.Unlock()
}
