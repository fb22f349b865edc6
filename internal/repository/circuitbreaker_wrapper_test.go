//go:build !integration

package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/guttosm/pack-assistant/internal/circuitbreaker"
	"github.com/guttosm/pack-assistant/internal/domain/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errStore = errors.New("store unavailable")

type failingDrafts struct {
	*MemoryDraftsRepository
	calls int
}

func (f *failingDrafts) Get(_ context.Context, _ string) (*model.Draft, error) {
	f.calls++
	return nil, errStore
}

type failingLogs struct {
	calls int
}

func (f *failingLogs) Create(context.Context, *LogEntryDocument) error {
	f.calls++
	return errStore
}

func (f *failingLogs) CreateMany(context.Context, []*LogEntryDocument) error {
	f.calls++
	return errStore
}

func (f *failingLogs) Query(context.Context, LogQueryOptions) ([]*LogEntryDocument, error) {
	return nil, errStore
}

func (f *failingLogs) Count(context.Context, LogQueryOptions) (int64, error) {
	return 0, errStore
}

func testBreaker() *circuitbreaker.CircuitBreaker {
	return circuitbreaker.New(circuitbreaker.Config{
		FailureThreshold: 2,
		SuccessThreshold: 1,
		Timeout:          time.Hour,
		Name:             "test",
	})
}

func TestDraftsRepositoryWithCircuitBreaker(t *testing.T) {
	ctx := context.Background()

	t.Run("passes results through when closed", func(t *testing.T) {
		inner := NewMemoryDraftsRepository()
		repo := NewDraftsRepositoryWithCircuitBreaker(inner, testBreaker())

		require.NoError(t, repo.SaveState(ctx, "ORD-1", model.PackingStateMap{"u1": {Quantity: 1, BoxNumber: 1}}, "op"))
		require.NoError(t, repo.SaveBoxes(ctx, "ORD-1", []model.Box{{BoxNumber: 1}}, "op"))
		d, err := repo.Get(ctx, "ORD-1")
		require.NoError(t, err)
		assert.Equal(t, 1, d.PackingState["u1"].Quantity)
		require.NoError(t, repo.Delete(ctx, "ORD-1"))
		assert.Equal(t, "closed", repo.GetCircuitBreaker().GetStats().State)
	})

	t.Run("opens after repeated failures and stops calling the store", func(t *testing.T) {
		inner := &failingDrafts{MemoryDraftsRepository: NewMemoryDraftsRepository()}
		repo := NewDraftsRepositoryWithCircuitBreaker(inner, testBreaker())

		for i := 0; i < 2; i++ {
			_, err := repo.Get(ctx, "ORD-1")
			assert.ErrorIs(t, err, errStore)
		}
		_, err := repo.Get(ctx, "ORD-1")

		assert.ErrorIs(t, err, circuitbreaker.ErrCircuitOpen)
		assert.Equal(t, 2, inner.calls)
	})
}

func TestCapacitySettingsRepositoryWithCircuitBreaker(t *testing.T) {
	ctx := context.Background()
	repo := NewCapacitySettingsRepositoryWithCircuitBreaker(NewMemoryCapacitySettingsRepository(), testBreaker())

	require.NoError(t, repo.Upsert(ctx, &model.MaxPerBoxSetting{CatalogNumber: "X1", MaxQuantity: 10}))
	batch, err := repo.GetByCatalogNumbers(ctx, []string{"X1", "X2"})
	require.NoError(t, err)
	assert.Len(t, batch, 1)

	one, err := repo.GetByCatalogNumber(ctx, "X1")
	require.NoError(t, err)
	assert.Equal(t, 10, one.MaxQuantity)

	all, err := repo.GetAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)

	deleted, err := repo.Delete(ctx, "X1")
	require.NoError(t, err)
	assert.True(t, deleted)
}

func TestOrdersRepositoryWithCircuitBreaker(t *testing.T) {
	ctx := context.Background()
	repo := NewOrdersRepositoryWithCircuitBreaker(NewMemoryOrdersRepository(), testBreaker())

	require.NoError(t, repo.Upsert(ctx, &model.Order{ID: "ORD-1"}))
	got, err := repo.Get(ctx, "ORD-1")
	require.NoError(t, err)
	assert.Equal(t, "ORD-1", got.ID)
	assert.NotNil(t, repo.GetCircuitBreaker())
}

func TestLogsRepositoryWithCircuitBreaker_DropsWritesWhenOpen(t *testing.T) {
	ctx := context.Background()
	inner := &failingLogs{}
	repo := NewLogsRepositoryWithCircuitBreaker(inner, testBreaker())

	assert.ErrorIs(t, repo.Create(ctx, &LogEntryDocument{}), errStore)
	assert.ErrorIs(t, repo.CreateMany(ctx, []*LogEntryDocument{{}}), errStore)

	assert.NoError(t, repo.Create(ctx, &LogEntryDocument{}))
	assert.NoError(t, repo.CreateMany(ctx, []*LogEntryDocument{{}}))
	assert.Equal(t, 2, inner.calls)

	_, err := repo.Query(ctx, LogQueryOptions{})
	assert.ErrorIs(t, err, circuitbreaker.ErrCircuitOpen)
}
