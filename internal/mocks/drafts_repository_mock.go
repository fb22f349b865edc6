// Code generated manually. DO NOT EDIT.

package mocks

import (
	"context"

	"github.com/guttosm/pack-assistant/internal/domain/model"
	"github.com/stretchr/testify/mock"
)

type MockDraftsRepository struct {
	mock.Mock
}

func (m *MockDraftsRepository) Get(ctx context.Context, orderID string) (*model.Draft, error) {
	args := m.Called(ctx, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Draft), args.Error(1)
}

func (m *MockDraftsRepository) SaveState(ctx context.Context, orderID string, state model.PackingStateMap, savedBy string) error {
	args := m.Called(ctx, orderID, state, savedBy)
	return args.Error(0)
}

func (m *MockDraftsRepository) SaveBoxes(ctx context.Context, orderID string, boxes []model.Box, savedBy string) error {
	args := m.Called(ctx, orderID, boxes, savedBy)
	return args.Error(0)
}

func (m *MockDraftsRepository) Delete(ctx context.Context, orderID string) error {
	args := m.Called(ctx, orderID)
	return args.Error(0)
}
