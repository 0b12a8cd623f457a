package metrics

import (
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

var collectorNamespaceSeq uint64

func nextTestNamespace() string {
	seq := atomic.AddUint64(&collectorNamespaceSeq, 1)
	return fmt.Sprintf("test_%d", seq)
}

// =============================================================================
// 🧪 Collector 测试
// =============================================================================

func TestNewCollector(t *testing.T) {
	logger := zap.NewNop()
	collector := NewCollector(nextTestNamespace(), logger)

	assert.NotNil(t, collector)
	assert.NotNil(t, collector.httpRequestsTotal)
	assert.NotNil(t, collector.runsTotal)
	assert.NotNil(t, collector.specialistsTotal)
	assert.NotNil(t, collector.jobTransitions)
	assert.NotNil(t, collector.memoryErrors)
}

func TestCollector_RecordHTTPRequest(t *testing.T) {
	collector := NewCollector(nextTestNamespace(), zap.NewNop())

	collector.RecordHTTPRequest("POST", "/swarm/run", 200, 100*time.Millisecond)

	count := testutil.CollectAndCount(collector.httpRequestsTotal)
	assert.Greater(t, count, 0)

	collector.RecordHTTPRequest("POST", "/swarm/run", 500, 50*time.Millisecond)

	newCount := testutil.CollectAndCount(collector.httpRequestsTotal)
	assert.GreaterOrEqual(t, newCount, count)
}

func TestCollector_RecordRun(t *testing.T) {
	collector := NewCollector(nextTestNamespace(), zap.NewNop())

	collector.RecordRun("completed", 2*time.Second)
	collector.RecordRun("partial", 5*time.Second)
	collector.RecordRun("completed", time.Second)

	value := testutil.ToFloat64(collector.runsTotal.WithLabelValues("completed"))
	assert.Equal(t, 2.0, value)
	value = testutil.ToFloat64(collector.runsTotal.WithLabelValues("partial"))
	assert.Equal(t, 1.0, value)
}

func TestCollector_RecordSpecialist(t *testing.T) {
	collector := NewCollector(nextTestNamespace(), zap.NewNop())

	collector.RecordSpecialist("ok", 800*time.Millisecond, 1200, 0.012)
	collector.RecordSpecialist("timed_out", 60*time.Second, 0, 0)
	collector.RecordSpecialist("ok", 400*time.Millisecond, 300, 0.003)

	assert.Equal(t, 2.0, testutil.ToFloat64(collector.specialistsTotal.WithLabelValues("ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(collector.specialistsTotal.WithLabelValues("timed_out")))
	assert.Equal(t, 1500.0, testutil.ToFloat64(collector.specialistTokens))
	assert.InDelta(t, 0.015, testutil.ToFloat64(collector.specialistCost), 1e-9)
}

func TestCollector_RecordJobTransition(t *testing.T) {
	collector := NewCollector(nextTestNamespace(), zap.NewNop())

	collector.RecordJobTransition("pending")
	collector.RecordJobTransition("running")
	collector.RecordJobTransition("completed")
	collector.RecordJobTransition("running")

	assert.Equal(t, 2.0, testutil.ToFloat64(collector.jobTransitions.WithLabelValues("running")))
	assert.Equal(t, 1.0, testutil.ToFloat64(collector.jobTransitions.WithLabelValues("completed")))
}

func TestCollector_RecordMemoryError(t *testing.T) {
	collector := NewCollector(nextTestNamespace(), zap.NewNop())

	collector.RecordMemoryError("read")
	collector.RecordMemoryError("append")
	collector.RecordMemoryError("read")

	assert.Equal(t, 2.0, testutil.ToFloat64(collector.memoryErrors.WithLabelValues("read")))
}

func TestStatusCode(t *testing.T) {
	assert.Equal(t, "2xx", statusCode(204))
	assert.Equal(t, "3xx", statusCode(302))
	assert.Equal(t, "4xx", statusCode(404))
	assert.Equal(t, "5xx", statusCode(503))
	assert.Equal(t, "unknown", statusCode(42))
}
