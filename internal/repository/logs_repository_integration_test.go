//go:build integration

package repository

import (
	"context"
	"testing"
	"time"

	"github.com/guttosm/pack-assistant/internal/circuitbreaker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
)

func TestLogsRepository_Integration(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	db := openTestDB(t)
	t.Cleanup(func() { require.NoError(t, db.Close(ctx)) })
	require.NoError(t, db.SetLogsTTL(ctx, 30*24*time.Hour))

	repo := NewLogsRepository(db)
	base := time.Now().Add(-time.Hour).Truncate(time.Millisecond)

	request := &LogEntryDocument{
		Level:      "warn",
		Message:    "HTTP request",
		RequestID:  "req-1",
		Method:     "POST",
		Path:       "/api/packing/SO-7/connections",
		StatusCode: 409,
		OrderID:    "SO-7",
	}
	require.NoError(t, repo.Create(ctx, request))
	assert.False(t, request.ID.IsZero())
	assert.False(t, request.Timestamp.IsZero())

	audit := []*LogEntryDocument{
		{Timestamp: base, Level: "info", Message: "Session opened", OrderID: "SO-7", OperatorID: "op-1", ActionType: "open_session"},
		{Timestamp: base.Add(time.Minute), Level: "info", Message: "Units connected", OrderID: "SO-7", OperatorID: "op-1", ActionType: "connect"},
		{Timestamp: base.Add(2 * time.Minute), Level: "error", Message: "Draft flush failed", OrderID: "SO-7", OperatorID: "op-1", ActionType: "flush_draft", Error: "circuit breaker is open"},
		{Timestamp: base, Level: "info", Message: "Units connected", OrderID: "SO-8", OperatorID: "op-2", ActionType: "connect"},
	}
	require.NoError(t, repo.CreateMany(ctx, audit))
	require.NoError(t, repo.CreateMany(ctx, nil))

	var stored LogEntryDocument
	require.NoError(t, db.Logs.FindOne(ctx, bson.M{"_id": audit[1].ID}).Decode(&stored))
	assert.Equal(t, "connect", stored.ActionType)
	assert.True(t, base.Add(time.Minute).Equal(stored.Timestamp))

	tests := []struct {
		name    string
		opts    LogQueryOptions
		want    []string
		wantLen int64
	}{
		{
			name:    "order audit trail newest first",
			opts:    LogQueryOptions{OrderID: "SO-7", AuditOnly: true},
			want:    []string{"flush_draft", "connect", "open_session"},
			wantLen: 3,
		},
		{
			name:    "one action across orders",
			opts:    LogQueryOptions{Action: "connect"},
			want:    []string{"connect", "connect"},
			wantLen: 2,
		},
		{
			name:    "paging",
			opts:    LogQueryOptions{OrderID: "SO-7", AuditOnly: true, Limit: 1, Skip: 1},
			want:    []string{"connect"},
			wantLen: 3,
		},
		{
			name:    "failed actions",
			opts:    LogQueryOptions{OrderID: "SO-7", Level: "error"},
			want:    []string{"flush_draft"},
			wantLen: 1,
		},
		{
			name:    "request logs by path fragment",
			opts:    LogQueryOptions{Path: "so-7/CONNECTIONS", Method: "POST"},
			want:    []string{""},
			wantLen: 1,
		},
		{
			name:    "nothing matches",
			opts:    LogQueryOptions{OrderID: "SO-404"},
			want:    []string{},
			wantLen: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			found, err := repo.Query(ctx, tt.opts)
			require.NoError(t, err)
			require.NotNil(t, found)

			actions := make([]string, 0, len(found))
			for _, e := range found {
				actions = append(actions, e.ActionType)
			}
			assert.Equal(t, tt.want, actions)

			count, err := repo.Count(ctx, tt.opts)
			require.NoError(t, err)
			assert.Equal(t, tt.wantLen, count)
		})
	}

	t.Run("time window", func(t *testing.T) {
		from, to := base.Add(30*time.Second), base.Add(90*time.Second)
		found, err := repo.Query(ctx, LogQueryOptions{OrderID: "SO-7", StartTime: &from, EndTime: &to})
		require.NoError(t, err)
		require.Len(t, found, 1)
		assert.Equal(t, "connect", found[0].ActionType)
	})
}

func TestLogsRepositoryWithCircuitBreaker_Integration(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	db := openTestDB(t)
	t.Cleanup(func() { require.NoError(t, db.Close(ctx)) })

	cb := circuitbreaker.New(circuitbreaker.DefaultConfig())
	repo := NewLogsRepositoryWithCircuitBreaker(NewLogsRepository(db), cb)

	require.NoError(t, repo.CreateMany(ctx, []*LogEntryDocument{
		{Level: "info", Message: "Box number set", OrderID: "SO-3", ActionType: "set_box_number"},
	}))
	count, err := repo.Count(ctx, LogQueryOptions{OrderID: "SO-3", AuditOnly: true})
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	stats := cb.GetStats()
	assert.Equal(t, "closed", stats.State)
	assert.Zero(t, stats.FailureCount)
}
