package matchmaking

import (
	"context"

	"pairlink/backend/internal/gateway"
	"pairlink/backend/internal/models"

	"github.com/stretchr/testify/mock"
)

type MockGateway struct {
	mock.Mock
}

func (m *MockGateway) Send(ctx context.Context, to models.Identity, text string, keyboard gateway.Keyboard) error {
	args := m.Called(ctx, to, text, keyboard)
	return args.Error(0)
}
