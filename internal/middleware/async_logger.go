package middleware

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/guttosm/pack-assistant/internal/domain/model"
	"github.com/guttosm/pack-assistant/internal/logger"
	"github.com/guttosm/pack-assistant/internal/service"
)

// AsyncLoggerConfig controls the request and audit log writer.
type AsyncLoggerConfig struct {
	// BufferSize bounds the number of entries waiting to be written.
	BufferSize int
	// NumWorkers is the number of goroutines writing batches.
	NumWorkers int
	// BatchSize is the largest batch a worker writes in one call.
	BatchSize int
	// FlushInterval is how long a partial batch may wait.
	FlushInterval time.Duration
	// WriteTimeout bounds a single batch write.
	WriteTimeout time.Duration
	// AuditWait is how long an audit entry may block on a full buffer before
	// it is dropped. Request log entries never block.
	AuditWait time.Duration
}

// DefaultAsyncLoggerConfig returns the production defaults.
func DefaultAsyncLoggerConfig() AsyncLoggerConfig {
	return AsyncLoggerConfig{
		BufferSize:    1000,
		NumWorkers:    2,
		BatchSize:     50,
		FlushInterval: 200 * time.Millisecond,
		WriteTimeout:  5 * time.Second,
		AuditWait:     50 * time.Millisecond,
	}
}

// AsyncLoggerStats is a snapshot of the writer counters.
type AsyncLoggerStats struct {
	Enqueued int64
	Dropped  int64
	Written  int64
	Failed   int64
	Batches  int64
}

// AsyncLogger persists log entries off the request path. Workers group
// entries into batches and store them with one CreateLogs call each.
type AsyncLogger struct {
	svc     service.LoggingService
	cfg     AsyncLoggerConfig
	entries chan *model.LogEntry
	stopCh  chan struct{}
	wg      sync.WaitGroup
	once    sync.Once

	enqueued atomic.Int64
	dropped  atomic.Int64
	written  atomic.Int64
	failed   atomic.Int64
	batches  atomic.Int64
}

// NewAsyncLogger starts the workers. It returns nil without a logging service.
func NewAsyncLogger(svc service.LoggingService, cfg AsyncLoggerConfig) *AsyncLogger {
	if svc == nil {
		return nil
	}
	cfg = withAsyncDefaults(cfg)

	al := &AsyncLogger{
		svc:     svc,
		cfg:     cfg,
		entries: make(chan *model.LogEntry, cfg.BufferSize),
		stopCh:  make(chan struct{}),
	}
	for i := 0; i < cfg.NumWorkers; i++ {
		al.wg.Add(1)
		go al.run()
	}
	return al
}

func withAsyncDefaults(cfg AsyncLoggerConfig) AsyncLoggerConfig {
	def := DefaultAsyncLoggerConfig()
	if cfg.BufferSize < 0 {
		cfg.BufferSize = 0
	}
	if cfg.NumWorkers <= 0 {
		cfg.NumWorkers = 1
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 1
	}
	if cfg.FlushInterval <= 0 {
		cfg.FlushInterval = def.FlushInterval
	}
	if cfg.WriteTimeout <= 0 {
		cfg.WriteTimeout = def.WriteTimeout
	}
	return cfg
}

func (al *AsyncLogger) run() {
	defer al.wg.Done()

	ticker := time.NewTicker(al.cfg.FlushInterval)
	defer ticker.Stop()

	batch := make([]*model.LogEntry, 0, al.cfg.BatchSize)
	flush := func() {
		if len(batch) > 0 {
			al.write(batch)
			batch = make([]*model.LogEntry, 0, al.cfg.BatchSize)
		}
	}

	for {
		select {
		case entry := <-al.entries:
			batch = append(batch, entry)
			if len(batch) >= al.cfg.BatchSize {
				flush()
			}
		case <-ticker.C:
			flush()
		case <-al.stopCh:
			for {
				select {
				case entry := <-al.entries:
					batch = append(batch, entry)
					if len(batch) >= al.cfg.BatchSize {
						flush()
					}
				default:
					flush()
					return
				}
			}
		}
	}
}

func (al *AsyncLogger) write(batch []*model.LogEntry) {
	ctx, cancel := context.WithTimeout(context.Background(), al.cfg.WriteTimeout)
	defer cancel()

	al.batches.Add(1)
	if err := al.svc.CreateLogs(ctx, batch); err != nil {
		al.failed.Add(int64(len(batch)))
		log := logger.Logger()
		log.Warn().Err(err).Int("entries", len(batch)).Msg("Failed to write log batch")
		return
	}
	al.written.Add(int64(len(batch)))
}

// Log queues an entry and reports whether it was accepted. Audit entries wait
// up to AuditWait for room in the buffer; other entries are dropped at once.
func (al *AsyncLogger) Log(entry *model.LogEntry) bool {
	select {
	case al.entries <- entry:
		al.enqueued.Add(1)
		return true
	default:
	}

	if entry.IsAudit() && al.cfg.AuditWait > 0 {
		timer := time.NewTimer(al.cfg.AuditWait)
		defer timer.Stop()
		select {
		case al.entries <- entry:
			al.enqueued.Add(1)
			return true
		case <-timer.C:
		}
	}

	al.dropped.Add(1)
	return false
}

// Stop writes everything still queued and waits for the workers.
func (al *AsyncLogger) Stop() {
	al.once.Do(func() {
		close(al.stopCh)
		al.wg.Wait()
	})
}

// Stats returns the current counters.
func (al *AsyncLogger) Stats() AsyncLoggerStats {
	return AsyncLoggerStats{
		Enqueued: al.enqueued.Load(),
		Dropped:  al.dropped.Load(),
		Written:  al.written.Load(),
		Failed:   al.failed.Load(),
		Batches:  al.batches.Load(),
	}
}

var (
	globalAsyncLogger   *AsyncLogger
	globalAsyncLoggerMu sync.RWMutex
)

// InitAsyncLogger installs the process-wide writer used by RequestLogger and
// AuditLog, stopping any previous one.
func InitAsyncLogger(svc service.LoggingService, cfg AsyncLoggerConfig) {
	globalAsyncLoggerMu.Lock()
	defer globalAsyncLoggerMu.Unlock()

	if globalAsyncLogger != nil {
		globalAsyncLogger.Stop()
	}
	globalAsyncLogger = NewAsyncLogger(svc, cfg)
}

// GetAsyncLogger returns the process-wide writer, or nil.
func GetAsyncLogger() *AsyncLogger {
	globalAsyncLoggerMu.RLock()
	defer globalAsyncLoggerMu.RUnlock()
	return globalAsyncLogger
}

// StopAsyncLogger drains and removes the process-wide writer.
func StopAsyncLogger() {
	globalAsyncLoggerMu.Lock()
	defer globalAsyncLoggerMu.Unlock()

	if globalAsyncLogger != nil {
		globalAsyncLogger.Stop()
		globalAsyncLogger = nil
	}
}
