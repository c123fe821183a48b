package mocks

import (
	"context"

	"sessionvault/internal/model"

	"github.com/stretchr/testify/mock"
)

type MockStatusRepository struct {
	mock.Mock
}

func (m *MockStatusRepository) Get(ctx context.Context, id string) (*model.BotStatus, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.BotStatus), args.Error(1)
}

func (m *MockStatusRepository) Upsert(ctx context.Context, st *model.BotStatus) error {
	args := m.Called(ctx, st)
	return args.Error(0)
}
