package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/guttosm/pack-assistant/internal/domain/model"
	"github.com/guttosm/pack-assistant/internal/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func TestCapacityResolver_ResolveAll(t *testing.T) {
	tests := []struct {
		name      string
		input     []string
		setupMock func(*mocks.MockCapacitySettingsRepository)
		expected  Capacities
	}{
		{
			name:  "batches distinct catalog numbers into one lookup",
			input: []string{"X1", "X2", "X1", "X3"},
			setupMock: func(m *mocks.MockCapacitySettingsRepository) {
				m.On("GetByCatalogNumbers", mock.Anything, []string{"X1", "X2", "X3"}).
					Return([]model.MaxPerBoxSetting{
						{CatalogNumber: "X1", MaxQuantity: 10},
						{CatalogNumber: "X3", MaxQuantity: 2},
					}, nil).Once()
			},
			expected: Capacities{"X1": 10, "X3": 2},
		},
		{
			name:  "store error means unbounded",
			input: []string{"X1"},
			setupMock: func(m *mocks.MockCapacitySettingsRepository) {
				m.On("GetByCatalogNumbers", mock.Anything, []string{"X1"}).
					Return(nil, errors.New("connection refused")).Once()
			},
			expected: Capacities{},
		},
		{
			name:  "non-positive setting is ignored",
			input: []string{"X1", "X2"},
			setupMock: func(m *mocks.MockCapacitySettingsRepository) {
				m.On("GetByCatalogNumbers", mock.Anything, []string{"X1", "X2"}).
					Return([]model.MaxPerBoxSetting{
						{CatalogNumber: "X1", MaxQuantity: 0},
						{CatalogNumber: "X2", MaxQuantity: -3},
					}, nil).Once()
			},
			expected: Capacities{},
		},
		{
			name:      "empty input skips the store",
			input:     nil,
			setupMock: func(*mocks.MockCapacitySettingsRepository) {},
			expected:  Capacities{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(mocks.MockCapacitySettingsRepository)
			tt.setupMock(repo)
			resolver := NewCapacityResolver(repo, nil)

			got := resolver.ResolveAll(context.Background(), tt.input)

			assert.Equal(t, tt.expected, got)
			repo.AssertExpectations(t)
		})
	}
}

func TestCapacityResolver_CachesHitsAndMisses(t *testing.T) {
	repo := new(mocks.MockCapacitySettingsRepository)
	repo.On("GetByCatalogNumbers", mock.Anything, []string{"X1", "NONE"}).
		Return([]model.MaxPerBoxSetting{{CatalogNumber: "X1", MaxQuantity: 10}}, nil).Once()

	c := NewShardedCache(64, time.Minute, 2)
	defer c.Stop()
	resolver := NewCapacityResolver(repo, c)

	first := resolver.ResolveAll(context.Background(), []string{"X1", "NONE"})
	second := resolver.ResolveAll(context.Background(), []string{"X1", "NONE"})

	assert.Equal(t, Capacities{"X1": 10}, first)
	assert.Equal(t, first, second)
	repo.AssertNumberOfCalls(t, "GetByCatalogNumbers", 1)
}

func TestCapacityResolver_ErrorsAreNotCached(t *testing.T) {
	repo := new(mocks.MockCapacitySettingsRepository)
	repo.On("GetByCatalogNumbers", mock.Anything, []string{"X1"}).
		Return(nil, errors.New("timeout")).Once()
	repo.On("GetByCatalogNumbers", mock.Anything, []string{"X1"}).
		Return([]model.MaxPerBoxSetting{{CatalogNumber: "X1", MaxQuantity: 4}}, nil).Once()

	c := NewShardedCache(64, time.Minute, 2)
	defer c.Stop()
	resolver := NewCapacityResolver(repo, c)

	_, ok := resolver.Resolve(context.Background(), "X1")
	assert.False(t, ok)

	max, ok := resolver.Resolve(context.Background(), "X1")
	assert.True(t, ok)
	assert.Equal(t, 4, max)
}

func TestCapacityResolver_Invalidate(t *testing.T) {
	repo := new(mocks.MockCapacitySettingsRepository)
	repo.On("GetByCatalogNumbers", mock.Anything, []string{"X1"}).
		Return([]model.MaxPerBoxSetting{{CatalogNumber: "X1", MaxQuantity: 10}}, nil).Once()
	repo.On("GetByCatalogNumbers", mock.Anything, []string{"X1"}).
		Return([]model.MaxPerBoxSetting{{CatalogNumber: "X1", MaxQuantity: 6}}, nil).Once()

	c := NewShardedCache(64, time.Minute, 2)
	defer c.Stop()
	resolver := NewCapacityResolver(repo, c)

	max, _ := resolver.Resolve(context.Background(), "X1")
	assert.Equal(t, 10, max)

	resolver.Invalidate("X1")
	max, _ = resolver.Resolve(context.Background(), "X1")
	assert.Equal(t, 6, max)
}

func TestCapacityResolver_NilRepository(t *testing.T) {
	resolver := NewCapacityResolver(nil, nil)

	_, ok := resolver.Resolve(context.Background(), "X1")

	assert.False(t, ok)
	assert.NotPanics(t, func() { resolver.Invalidate("X1") })
}
