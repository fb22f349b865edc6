package middleware

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/guttosm/pack-assistant/internal/domain/model"
	"github.com/guttosm/pack-assistant/internal/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// batchRecorder captures CreateLogs batches. A non-nil gate blocks every write
// until it is closed.
type batchRecorder struct {
	*mocks.MockLoggingService

	mu      sync.Mutex
	batches [][]*model.LogEntry
	gate    chan struct{}
	err     error
}

func newBatchRecorder() *batchRecorder {
	return &batchRecorder{MockLoggingService: new(mocks.MockLoggingService)}
}

func (r *batchRecorder) CreateLogs(_ context.Context, entries []*model.LogEntry) error {
	if r.gate != nil {
		<-r.gate
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.batches = append(r.batches, entries)
	return r.err
}

func (r *batchRecorder) entries() []*model.LogEntry {
	r.mu.Lock()
	defer r.mu.Unlock()
	var all []*model.LogEntry
	for _, b := range r.batches {
		all = append(all, b...)
	}
	return all
}

func (r *batchRecorder) batchSizes() []int {
	r.mu.Lock()
	defer r.mu.Unlock()
	sizes := make([]int, len(r.batches))
	for i, b := range r.batches {
		sizes[i] = len(b)
	}
	return sizes
}

func requestEntry(path string) *model.LogEntry {
	return &model.LogEntry{Level: "info", Message: "HTTP request", Path: path}
}

func auditEntry(orderID, action string) *model.LogEntry {
	return &model.LogEntry{Level: "info", Message: "audit", OrderID: orderID, ActionType: action}
}

func TestDefaultAsyncLoggerConfig(t *testing.T) {
	cfg := DefaultAsyncLoggerConfig()

	assert.Equal(t, 1000, cfg.BufferSize)
	assert.Equal(t, 50, cfg.BatchSize)
	assert.Positive(t, cfg.FlushInterval)
	assert.Positive(t, cfg.AuditWait)
}

func TestNewAsyncLogger(t *testing.T) {
	assert.Nil(t, NewAsyncLogger(nil, DefaultAsyncLoggerConfig()))

	al := NewAsyncLogger(newBatchRecorder(), AsyncLoggerConfig{NumWorkers: -1, BatchSize: 0})
	require.NotNil(t, al)
	defer al.Stop()

	assert.Equal(t, 1, al.cfg.NumWorkers)
	assert.Equal(t, 1, al.cfg.BatchSize)
	assert.Equal(t, DefaultAsyncLoggerConfig().FlushInterval, al.cfg.FlushInterval)
	assert.Equal(t, DefaultAsyncLoggerConfig().WriteTimeout, al.cfg.WriteTimeout)
}

func TestAsyncLogger_WritesFullBatches(t *testing.T) {
	rec := newBatchRecorder()
	al := NewAsyncLogger(rec, AsyncLoggerConfig{
		BufferSize:    20,
		NumWorkers:    1,
		BatchSize:     4,
		FlushInterval: time.Hour,
	})

	for i := 0; i < 8; i++ {
		require.True(t, al.Log(requestEntry("/api/packing/ORD-1")))
	}

	assert.Eventually(t, func() bool {
		return len(rec.batchSizes()) == 2
	}, time.Second, 10*time.Millisecond)
	assert.Equal(t, []int{4, 4}, rec.batchSizes())

	al.Stop()
	stats := al.Stats()
	assert.Equal(t, int64(8), stats.Written)
	assert.Equal(t, int64(2), stats.Batches)
}

func TestAsyncLogger_FlushesPartialBatchOnInterval(t *testing.T) {
	rec := newBatchRecorder()
	al := NewAsyncLogger(rec, AsyncLoggerConfig{
		BufferSize:    10,
		NumWorkers:    1,
		BatchSize:     50,
		FlushInterval: 20 * time.Millisecond,
	})
	defer al.Stop()

	al.Log(auditEntry("ORD-1", ActionOpenSession))
	al.Log(auditEntry("ORD-1", ActionConnect))

	assert.Eventually(t, func() bool {
		return len(rec.entries()) == 2
	}, time.Second, 10*time.Millisecond)
	assert.Equal(t, []int{2}, rec.batchSizes())
}

func TestAsyncLogger_StopDrainsQueue(t *testing.T) {
	rec := newBatchRecorder()
	al := NewAsyncLogger(rec, AsyncLoggerConfig{
		BufferSize:    100,
		NumWorkers:    3,
		BatchSize:     7,
		FlushInterval: time.Hour,
	})

	for i := 0; i < 30; i++ {
		al.Log(requestEntry("/api/orders/ORD-2"))
	}
	al.Stop()
	al.Stop()

	assert.Len(t, rec.entries(), 30)
	assert.Equal(t, int64(30), al.Stats().Written)
}

func TestAsyncLogger_FullBuffer(t *testing.T) {
	rec := newBatchRecorder()
	rec.gate = make(chan struct{})
	al := NewAsyncLogger(rec, AsyncLoggerConfig{
		BufferSize:    2,
		NumWorkers:    1,
		BatchSize:     1,
		FlushInterval: time.Hour,
		AuditWait:     30 * time.Millisecond,
	})

	// The worker takes one entry and blocks on the gate; two more fill the buffer.
	require.True(t, al.Log(requestEntry("/a")))
	require.Eventually(t, func() bool { return len(al.entries) == 0 }, time.Second, 5*time.Millisecond)
	require.True(t, al.Log(requestEntry("/b")))
	require.True(t, al.Log(requestEntry("/c")))

	t.Run("request entries are dropped immediately", func(t *testing.T) {
		start := time.Now()
		assert.False(t, al.Log(requestEntry("/d")))
		assert.Less(t, time.Since(start), 25*time.Millisecond)
	})

	t.Run("audit entries wait before being dropped", func(t *testing.T) {
		start := time.Now()
		assert.False(t, al.Log(auditEntry("ORD-3", ActionSetQuantity)))
		assert.GreaterOrEqual(t, time.Since(start), 30*time.Millisecond)
	})

	t.Run("audit entries take freed room", func(t *testing.T) {
		close(rec.gate)
		assert.True(t, al.Log(auditEntry("ORD-3", ActionFlushDraft)))
	})

	al.Stop()
	stats := al.Stats()
	assert.Equal(t, int64(2), stats.Dropped)
	assert.Equal(t, int64(4), stats.Written)
}

func TestAsyncLogger_WriteFailure(t *testing.T) {
	rec := newBatchRecorder()
	rec.err = errors.New("mongo unavailable")
	al := NewAsyncLogger(rec, AsyncLoggerConfig{BufferSize: 10, NumWorkers: 1, BatchSize: 5})

	for i := 0; i < 3; i++ {
		al.Log(requestEntry("/api/packing/ORD-4"))
	}
	al.Stop()

	stats := al.Stats()
	assert.Equal(t, int64(3), stats.Failed)
	assert.Zero(t, stats.Written)
}

func TestGlobalAsyncLogger(t *testing.T) {
	assert.Nil(t, GetAsyncLogger())

	first := newBatchRecorder()
	InitAsyncLogger(first, DefaultAsyncLoggerConfig())
	require.NotNil(t, GetAsyncLogger())
	GetAsyncLogger().Log(auditEntry("ORD-5", ActionImportOrder))

	// Replacing the writer drains the previous one.
	second := newBatchRecorder()
	InitAsyncLogger(second, DefaultAsyncLoggerConfig())
	assert.Len(t, first.entries(), 1)

	StopAsyncLogger()
	assert.Nil(t, GetAsyncLogger())
	StopAsyncLogger()
}
