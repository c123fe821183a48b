package mocks

import (
	"context"

	"sessionvault/internal/model"
	"sessionvault/internal/service"

	"github.com/stretchr/testify/mock"
)

type MockStatusService struct {
	mock.Mock
}

var _ service.StatusService = (*MockStatusService)(nil)

func (m *MockStatusService) Get(ctx context.Context) (*model.BotStatus, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.BotStatus), args.Error(1)
}

func (m *MockStatusService) Set(ctx context.Context, st model.BotStatus) error {
	args := m.Called(ctx, st)
	return args.Error(0)
}

func (m *MockStatusService) GenerateQR(ctx context.Context) (string, error) {
	args := m.Called(ctx)
	return args.String(0), args.Error(1)
}

func (m *MockStatusService) Connect(ctx context.Context) (*model.BotStatus, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.BotStatus), args.Error(1)
}

func (m *MockStatusService) MarkRestored(ctx context.Context) (*model.BotStatus, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.BotStatus), args.Error(1)
}
