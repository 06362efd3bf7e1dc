package testutil

import (
	"context"

	"github.com/dimitrije/unimag/internal/models"
	"github.com/dimitrije/unimag/internal/session"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// MockGateway mocks the auth gateway
type MockGateway struct {
	mock.Mock
}

func (m *MockGateway) SignUp(ctx context.Context, in models.SignUpInput) (*models.SignUpResult, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.SignUpResult), args.Error(1)
}

func (m *MockGateway) SignIn(ctx context.Context, email, password string) (*models.Session, error) {
	args := m.Called(ctx, email, password)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Session), args.Error(1)
}

func (m *MockGateway) SignOut(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockGateway) GetSession(ctx context.Context) (*models.Session, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Session), args.Error(1)
}

func (m *MockGateway) GetUserProfile(ctx context.Context, id uuid.UUID) (*models.UserProfile, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.UserProfile), args.Error(1)
}

func (m *MockGateway) UpdateProfile(ctx context.Context, id uuid.UUID, updates models.ProfileUpdate) (*models.UserProfile, error) {
	args := m.Called(ctx, id, updates)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.UserProfile), args.Error(1)
}

func (m *MockGateway) OnAuthStateChange(fn func(models.AuthChange)) func() {
	args := m.Called(fn)
	return args.Get(0).(func())
}

// MockSessionStore mocks the session store as seen by handlers
type MockSessionStore struct {
	mock.Mock
}

func (m *MockSessionStore) Snapshot() session.State {
	args := m.Called()
	return args.Get(0).(session.State)
}

func (m *MockSessionStore) Watch() (<-chan session.State, func()) {
	args := m.Called()
	return args.Get(0).(<-chan session.State), args.Get(1).(func())
}

func (m *MockSessionStore) SignUp(ctx context.Context, in models.SignUpInput) (*models.SignUpResult, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.SignUpResult), args.Error(1)
}

func (m *MockSessionStore) SignIn(ctx context.Context, email, password string) error {
	args := m.Called(ctx, email, password)
	return args.Error(0)
}

func (m *MockSessionStore) SignOut(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockSessionStore) UpdateProfile(ctx context.Context, updates models.ProfileUpdate) error {
	args := m.Called(ctx, updates)
	return args.Error(0)
}

// MockPasswordService mocks the password operations of the gateway
type MockPasswordService struct {
	mock.Mock
}

func (m *MockPasswordService) ResetPassword(ctx context.Context, email string) error {
	args := m.Called(ctx, email)
	return args.Error(0)
}

func (m *MockPasswordService) UpdatePassword(ctx context.Context, newPassword string) error {
	args := m.Called(ctx, newPassword)
	return args.Error(0)
}

func (m *MockPasswordService) VerifyRecovery(ctx context.Context, tokenHash string) (*models.Session, error) {
	args := m.Called(ctx, tokenHash)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Session), args.Error(1)
}
