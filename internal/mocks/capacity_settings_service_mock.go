// Code generated manually. DO NOT EDIT.

package mocks

import (
	"context"

	"github.com/guttosm/pack-assistant/internal/domain/model"
	"github.com/stretchr/testify/mock"
)

type MockCapacitySettingsService struct {
	mock.Mock
}

// NewMockCapacitySettingsService creates a mock and asserts its expectations on cleanup.
func NewMockCapacitySettingsService(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockCapacitySettingsService {
	m := &MockCapacitySettingsService{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *MockCapacitySettingsService) GetAll(ctx context.Context) ([]model.MaxPerBoxSetting, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.MaxPerBoxSetting), args.Error(1)
}

func (m *MockCapacitySettingsService) GetByCatalogNumber(ctx context.Context, catalogNumber string) (*model.MaxPerBoxSetting, error) {
	args := m.Called(ctx, catalogNumber)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.MaxPerBoxSetting), args.Error(1)
}

func (m *MockCapacitySettingsService) Upsert(ctx context.Context, catalogNumber string, maxQuantity int, updatedBy string) (*model.MaxPerBoxSetting, error) {
	args := m.Called(ctx, catalogNumber, maxQuantity, updatedBy)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.MaxPerBoxSetting), args.Error(1)
}

func (m *MockCapacitySettingsService) Delete(ctx context.Context, catalogNumber string) error {
	args := m.Called(ctx, catalogNumber)
	return args.Error(0)
}
