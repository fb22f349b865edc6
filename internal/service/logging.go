package service

import (
	"context"
	"time"

	"github.com/guttosm/pack-assistant/internal/domain/model"
	"github.com/guttosm/pack-assistant/internal/repository"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// LoggingService stores request logs and operator audit entries.
type LoggingService interface {
	CreateLog(ctx context.Context, entry *model.LogEntry) error
	// CreateLogs stores a batch in one write. An empty batch is a no-op.
	CreateLogs(ctx context.Context, entries []*model.LogEntry) error
	QueryLogs(ctx context.Context, opts model.LogQueryOptions) ([]model.LogEntry, error)
	CountLogs(ctx context.Context, opts model.LogQueryOptions) (int64, error)
	// OrderActivity returns a page of the audit entries recorded for an order.
	OrderActivity(ctx context.Context, orderID string, limit, skip int) (*model.OrderActivity, error)
}

// Activity page bounds.
const (
	DefaultActivityLimit = 50
	MaxActivityLimit     = 500
)

// LoggingServiceImpl is the MongoDB backed LoggingService.
type LoggingServiceImpl struct {
	repo repository.LogsRepositoryInterface
	now  func() time.Time
}

// NewLoggingService creates a LoggingService over the logs repository.
func NewLoggingService(repo repository.LogsRepositoryInterface) LoggingService {
	return &LoggingServiceImpl{repo: repo, now: time.Now}
}

// CreateLog stores a single entry, assigning its id and timestamp when unset.
func (s *LoggingServiceImpl) CreateLog(ctx context.Context, entry *model.LogEntry) error {
	return s.repo.Create(ctx, s.stamp(entry))
}

// CreateLogs stores a batch with one insert.
func (s *LoggingServiceImpl) CreateLogs(ctx context.Context, entries []*model.LogEntry) error {
	if len(entries) == 0 {
		return nil
	}

	docs := make([]*repository.LogEntryDocument, 0, len(entries))
	for _, entry := range entries {
		docs = append(docs, s.stamp(entry))
	}
	return s.repo.CreateMany(ctx, docs)
}

// QueryLogs returns the matching entries, newest first.
func (s *LoggingServiceImpl) QueryLogs(ctx context.Context, opts model.LogQueryOptions) ([]model.LogEntry, error) {
	docs, err := s.repo.Query(ctx, queryFor(opts))
	if err != nil {
		return nil, err
	}

	entries := make([]model.LogEntry, 0, len(docs))
	for _, doc := range docs {
		entries = append(entries, fromDocument(doc))
	}
	return entries, nil
}

// CountLogs counts the matching entries.
func (s *LoggingServiceImpl) CountLogs(ctx context.Context, opts model.LogQueryOptions) (int64, error) {
	return s.repo.Count(ctx, queryFor(opts))
}

// OrderActivity returns the order's audit entries, newest first. Request logs
// for the order's routes are excluded.
func (s *LoggingServiceImpl) OrderActivity(ctx context.Context, orderID string, limit, skip int) (*model.OrderActivity, error) {
	switch {
	case limit <= 0:
		limit = DefaultActivityLimit
	case limit > MaxActivityLimit:
		limit = MaxActivityLimit
	}
	if skip < 0 {
		skip = 0
	}

	opts := model.LogQueryOptions{OrderID: orderID, AuditOnly: true, Limit: limit, Skip: skip}
	total, err := s.CountLogs(ctx, opts)
	if err != nil {
		return nil, err
	}

	activity := &model.OrderActivity{
		OrderID: orderID,
		Total:   total,
		Limit:   limit,
		Skip:    skip,
		Entries: []model.LogEntry{},
	}
	if total == 0 || int64(skip) >= total {
		return activity, nil
	}

	entries, err := s.QueryLogs(ctx, opts)
	if err != nil {
		return nil, err
	}
	activity.Entries = entries
	return activity, nil
}

// stamp fills in the id and timestamp the caller left empty and converts the
// entry for storage. The entry is updated so callers see the stored id.
func (s *LoggingServiceImpl) stamp(entry *model.LogEntry) *repository.LogEntryDocument {
	if entry.ID.IsZero() {
		entry.ID = primitive.NewObjectID()
	}
	if entry.Timestamp.IsZero() {
		entry.Timestamp = s.now()
	}
	doc := repository.LogEntryDocument(*entry)
	return &doc
}

func fromDocument(doc *repository.LogEntryDocument) model.LogEntry {
	return model.LogEntry(*doc)
}

func queryFor(opts model.LogQueryOptions) repository.LogQueryOptions {
	return repository.LogQueryOptions(opts)
}
