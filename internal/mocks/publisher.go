package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"findsync/internal/models"
)

type PublisherMock struct {
	mock.Mock
}

func (m *PublisherMock) Publish(ctx context.Context, routingKey string, event any) error {
	args := m.Called(ctx, routingKey, event)
	return args.Error(0)
}

type BroadcasterMock struct {
	mock.Mock
}

func (m *BroadcasterMock) BroadcastNewItem(ctx context.Context, item models.Item) error {
	args := m.Called(ctx, item)
	return args.Error(0)
}
