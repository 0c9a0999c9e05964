package matchmaking

import (
	"pairlink/backend/internal/models"

	"github.com/stretchr/testify/mock"
)

type MockStorage struct {
	mock.Mock
}

func (m *MockStorage) SaveUserIfNotExists(user *models.User) (*models.User, error) {
	args := m.Called(user)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockStorage) GetUserByTelegramID(telegramID int64) (*models.User, error) {
	args := m.Called(telegramID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockStorage) GetUserByHandle(handle string) (*models.User, error) {
	args := m.Called(handle)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockStorage) PromoteShadowUser(handle string, telegramID int64, firstName, lastName string) (*models.User, error) {
	args := m.Called(handle, telegramID, firstName, lastName)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockStorage) SetConversationState(identity models.Identity, state models.ConversationState) error {
	args := m.Called(identity, state)
	return args.Error(0)
}

func (m *MockStorage) GetConversationState(identity models.Identity) (models.ConversationState, error) {
	args := m.Called(identity)
	return args.Get(0).(models.ConversationState), args.Error(1)
}

func (m *MockStorage) SavePendingIntentIfNotExists(intent *models.PendingIntent) error {
	args := m.Called(intent)
	return args.Error(0)
}

func (m *MockStorage) FindPendingIntentFor(identity models.Identity) (*models.PendingIntent, error) {
	args := m.Called(identity)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.PendingIntent), args.Error(1)
}

func (m *MockStorage) DeletePendingIntent(intentID uint) error {
	args := m.Called(intentID)
	return args.Error(0)
}

func (m *MockStorage) ListPendingIntents() ([]models.PendingIntent, error) {
	args := m.Called()
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.PendingIntent), args.Error(1)
}

func (m *MockStorage) SaveConnectionIfNotExists(userRef, partnerRef string) (*models.Connection, error) {
	args := m.Called(userRef, partnerRef)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Connection), args.Error(1)
}

func (m *MockStorage) SetConnectionState(userRef, partnerRef string, state models.ConnectionState) error {
	args := m.Called(userRef, partnerRef, state)
	return args.Error(0)
}

func (m *MockStorage) StampConnectionTimelog(connectionID uint, stamp models.ConnectionTimelog) error {
	args := m.Called(connectionID, stamp)
	return args.Error(0)
}

func (m *MockStorage) GetLatestConnection(userRef, partnerRef string) (*models.Connection, error) {
	args := m.Called(userRef, partnerRef)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Connection), args.Error(1)
}

func (m *MockStorage) ListConnectionsForUser(refs []string) ([]models.Connection, error) {
	args := m.Called(refs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Connection), args.Error(1)
}

func (m *MockStorage) ListConnectionsByStates(states []models.ConnectionState) ([]models.Connection, error) {
	args := m.Called(states)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Connection), args.Error(1)
}

func (m *MockStorage) PublishMatchEvent(event models.MatchEvent) error {
	args := m.Called(event)
	return args.Error(0)
}
