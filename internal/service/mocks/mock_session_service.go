package mocks

import (
	"context"

	"sessionvault/internal/model"
	"sessionvault/internal/service"

	"github.com/stretchr/testify/mock"
)

type MockSessionService struct {
	mock.Mock
}

var _ service.SessionService = (*MockSessionService)(nil)

func (m *MockSessionService) Upload(ctx context.Context, filename string, content []byte) (*model.SessionFile, error) {
	args := m.Called(ctx, filename, content)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.SessionFile), args.Error(1)
}

func (m *MockSessionService) List(ctx context.Context) ([]model.SessionFile, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.SessionFile), args.Error(1)
}

func (m *MockSessionService) Download(ctx context.Context, key string) (*service.DownloadResult, error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.DownloadResult), args.Error(1)
}

func (m *MockSessionService) Delete(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

func (m *MockSessionService) RestoreLatest(ctx context.Context) (*service.RestoreResult, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.RestoreResult), args.Error(1)
}
