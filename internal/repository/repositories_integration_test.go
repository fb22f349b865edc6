//go:build integration

package repository

import (
	"context"
	"testing"
	"time"

	"github.com/guttosm/pack-assistant/internal/domain/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOrdersRepository_Integration(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	db := openTestDB(t)
	defer func() {
		require.NoError(t, db.Close(ctx))
	}()
	repo := NewOrdersRepository(db)

	missing, err := repo.Get(ctx, "ORD-404")
	require.NoError(t, err)
	assert.Nil(t, missing)

	order := &model.Order{
		ID:       "ORD-1",
		Customer: "ACME",
		Items: []model.OrderLineItem{
			{ItemID: "L1", CatalogNumber: "X1", OrderedQuantity: 25, UnitWeight: 0.5},
			{ItemID: "L2", CatalogNumber: "Y2", OrderedQuantity: 3},
		},
	}
	require.NoError(t, repo.Upsert(ctx, order))
	created := order.CreatedAt
	assert.False(t, created.IsZero())

	got, err := repo.Get(ctx, "ORD-1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "ACME", got.Customer)
	assert.Equal(t, order.Items, got.Items)

	time.Sleep(5 * time.Millisecond)
	order.Items = order.Items[:1]
	require.NoError(t, repo.Upsert(ctx, order))
	assert.Equal(t, created.Unix(), order.CreatedAt.Unix())

	got, err = repo.Get(ctx, "ORD-1")
	require.NoError(t, err)
	assert.Len(t, got.Items, 1)
}

func TestCapacitySettingsRepository_Integration(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	db := openTestDB(t)
	defer func() {
		require.NoError(t, db.Close(ctx))
	}()
	repo := NewCapacitySettingsRepository(db)

	for _, s := range []model.MaxPerBoxSetting{
		{CatalogNumber: "X2", MaxQuantity: 4},
		{CatalogNumber: "X1", MaxQuantity: 10, UpdatedBy: "op-1"},
		{CatalogNumber: "X3", MaxQuantity: 1},
	} {
		setting := s
		require.NoError(t, repo.Upsert(ctx, &setting))
	}

	t.Run("get all is sorted", func(t *testing.T) {
		all, err := repo.GetAll(ctx)
		require.NoError(t, err)
		require.Len(t, all, 3)
		assert.Equal(t, []string{"X1", "X2", "X3"}, []string{all[0].CatalogNumber, all[1].CatalogNumber, all[2].CatalogNumber})
	})

	t.Run("batch lookup skips unknown", func(t *testing.T) {
		batch, err := repo.GetByCatalogNumbers(ctx, []string{"X3", "nope", "X1"})
		require.NoError(t, err)
		require.Len(t, batch, 2)
		assert.Equal(t, 10, batch[0].MaxQuantity)
		assert.Equal(t, 1, batch[1].MaxQuantity)
	})

	t.Run("empty batch", func(t *testing.T) {
		batch, err := repo.GetByCatalogNumbers(ctx, nil)
		require.NoError(t, err)
		assert.Empty(t, batch)
	})

	t.Run("upsert replaces", func(t *testing.T) {
		require.NoError(t, repo.Upsert(ctx, &model.MaxPerBoxSetting{CatalogNumber: "X2", MaxQuantity: 8}))
		got, err := repo.GetByCatalogNumber(ctx, "X2")
		require.NoError(t, err)
		assert.Equal(t, 8, got.MaxQuantity)
	})

	t.Run("delete", func(t *testing.T) {
		deleted, err := repo.Delete(ctx, "X3")
		require.NoError(t, err)
		assert.True(t, deleted)

		deleted, err = repo.Delete(ctx, "X3")
		require.NoError(t, err)
		assert.False(t, deleted)

		got, err := repo.GetByCatalogNumber(ctx, "X3")
		require.NoError(t, err)
		assert.Nil(t, got)
	})
}

func TestDraftsRepository_Integration(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	db := openTestDB(t)
	defer func() {
		require.NoError(t, db.Close(ctx))
	}()
	repo := NewDraftsRepository(db)

	none, err := repo.Get(ctx, "ORD-1")
	require.NoError(t, err)
	assert.Nil(t, none)

	state := model.PackingStateMap{
		"L1_split_1": {Quantity: 10, BoxNumber: 1},
		"L1_split_2": {Quantity: 0, BoxNumber: 1},
	}
	boxes := []model.Box{{
		BoxNumber:   1,
		Items:       []model.BoxItem{{UnitID: "L1_split_1", CatalogNumber: "X1", Quantity: 10}},
		Members:     []string{"L1_split_1", "L1_split_2"},
		TotalWeight: 5,
	}}

	require.NoError(t, repo.SaveState(ctx, "ORD-1", state, "op-1"))
	require.NoError(t, repo.SaveBoxes(ctx, "ORD-1", boxes, "op-1"))

	draft, err := repo.Get(ctx, "ORD-1")
	require.NoError(t, err)
	require.NotNil(t, draft)
	assert.Equal(t, state, draft.PackingState)
	assert.Equal(t, boxes, draft.Boxes)
	assert.False(t, draft.StateSavedAt.IsZero())
	assert.False(t, draft.BoxesSavedAt.IsZero())
	assert.Equal(t, "op-1", draft.UpdatedBy)

	require.NoError(t, repo.Delete(ctx, "ORD-1"))
	draft, err = repo.Get(ctx, "ORD-1")
	require.NoError(t, err)
	assert.Nil(t, draft)
	require.NoError(t, repo.Delete(ctx, "ORD-1"))
}
