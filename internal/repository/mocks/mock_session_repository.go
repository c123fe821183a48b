package mocks

import (
	"context"

	"sessionvault/internal/model"

	"github.com/stretchr/testify/mock"
)

type MockSessionRepository struct {
	mock.Mock
}

func (m *MockSessionRepository) Create(ctx context.Context, f *model.SessionFile) (*model.SessionFile, error) {
	args := m.Called(ctx, f)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.SessionFile), args.Error(1)
}

func (m *MockSessionRepository) List(ctx context.Context) ([]model.SessionFile, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.SessionFile), args.Error(1)
}

func (m *MockSessionRepository) FindByStorageKey(ctx context.Context, key string) (*model.SessionFile, error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.SessionFile), args.Error(1)
}

func (m *MockSessionRepository) Latest(ctx context.Context) (*model.SessionFile, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.SessionFile), args.Error(1)
}

func (m *MockSessionRepository) DeleteByStorageKey(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}
