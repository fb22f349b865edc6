// Code generated manually. DO NOT EDIT.

package mocks

import (
	"context"

	"github.com/guttosm/pack-assistant/internal/domain/model"
	"github.com/stretchr/testify/mock"
)

type MockCapacitySettingsRepository struct {
	mock.Mock
}

func (m *MockCapacitySettingsRepository) GetAll(ctx context.Context) ([]model.MaxPerBoxSetting, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.MaxPerBoxSetting), args.Error(1)
}

func (m *MockCapacitySettingsRepository) GetByCatalogNumber(ctx context.Context, catalogNumber string) (*model.MaxPerBoxSetting, error) {
	args := m.Called(ctx, catalogNumber)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.MaxPerBoxSetting), args.Error(1)
}

func (m *MockCapacitySettingsRepository) GetByCatalogNumbers(ctx context.Context, catalogNumbers []string) ([]model.MaxPerBoxSetting, error) {
	args := m.Called(ctx, catalogNumbers)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.MaxPerBoxSetting), args.Error(1)
}

func (m *MockCapacitySettingsRepository) Upsert(ctx context.Context, setting *model.MaxPerBoxSetting) error {
	args := m.Called(ctx, setting)
	return args.Error(0)
}

func (m *MockCapacitySettingsRepository) Delete(ctx context.Context, catalogNumber string) (bool, error) {
	args := m.Called(ctx, catalogNumber)
	return args.Bool(0), args.Error(1)
}
