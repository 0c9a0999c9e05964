package engine

import (
	"context"

	"pairlink/backend/internal/gateway"
	"pairlink/backend/internal/matchmaking"
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

type MockMatchmaker struct {
	mock.Mock
}

func (m *MockMatchmaker) RequestMatch(ctx context.Context, requester models.Identity, requesterDisplay string, ref matchmaking.PartnerRef) error {
	args := m.Called(ctx, requester, requesterDisplay, ref)
	return args.Error(0)
}

func (m *MockMatchmaker) CancelMatch(ctx context.Context, requester models.Identity) error {
	args := m.Called(ctx, requester)
	return args.Error(0)
}
