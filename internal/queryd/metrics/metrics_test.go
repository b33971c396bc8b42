package metrics

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQueryMetrics_RecordAndStats(t *testing.T) {
	m := Get()
	m.Reset()

	m.RecordQuery("person", false, nil)
	m.RecordQuery("person", true, nil)
	m.RecordQuery("general", false, errors.New("boom"))
	m.RecordRetrieval(100*time.Millisecond, nil)
	m.RecordRetrieval(0, errors.New("down"))
	m.RecordSynthesis(2*time.Second, false, nil)
	m.RecordSynthesis(0, true, nil)
	m.RecordSynthesis(0, false, errors.New("malformed"))

	stats := m.Stats()

	queries := stats["queries"].(map[string]any)
	assert.Equal(t, uint64(3), queries["total"])
	assert.Equal(t, uint64(1), queries["cache_hits"])
	assert.Equal(t, uint64(1), queries["errors"])
	intents := queries["by_intent"].(map[string]uint64)
	assert.Equal(t, uint64(2), intents["person"])

	retrieval := stats["retrieval"].(map[string]any)
	assert.Equal(t, uint64(2), retrieval["total"])
	assert.Equal(t, uint64(1), retrieval["errors"])

	synthesis := stats["synthesis"].(map[string]any)
	assert.Equal(t, uint64(3), synthesis["total"])
	assert.Equal(t, uint64(1), synthesis["timeouts"])
	assert.Equal(t, uint64(1), synthesis["errors"])
	assert.Equal(t, uint64(2), synthesis["degraded"])
}

func TestQueryMetrics_Export(t *testing.T) {
	m := Get()
	m.Reset()
	m.RecordQuery("person", false, nil)

	out := m.Export("queryd")
	require.NotEmpty(t, out)
	assert.Contains(t, out, "queryd_queries_total 1")
	assert.Contains(t, out, "# TYPE queryd_queries_total counter")
	assert.True(t, strings.Contains(out, "queryd_uptime_seconds"))
}

func TestQueryMetrics_GetIsSingleton(t *testing.T) {
	assert.Same(t, Get(), Get())
}
