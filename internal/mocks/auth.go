package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/pageza/mealtrack/backend/internal/gateway"
	"github.com/pageza/mealtrack/backend/internal/types"
)

// MockAuthService is a mock implementation of the auth gateway plus token validation
type MockAuthService struct {
	mock.Mock
}

var _ gateway.AuthGateway = (*MockAuthService)(nil)

func (m *MockAuthService) ValidateToken(ctx context.Context, token string) (*types.TokenClaims, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.TokenClaims), args.Error(1)
}

func (m *MockAuthService) GetSession(ctx context.Context, token string) (*gateway.Identity, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*gateway.Identity), args.Error(1)
}

func (m *MockAuthService) SignInWithPassword(ctx context.Context, email, password string) (*gateway.Identity, error) {
	args := m.Called(ctx, email, password)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*gateway.Identity), args.Error(1)
}

func (m *MockAuthService) SignUp(ctx context.Context, email, password, name string) (*gateway.Identity, error) {
	args := m.Called(ctx, email, password, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*gateway.Identity), args.Error(1)
}

func (m *MockAuthService) SignInWithIDToken(ctx context.Context, provider, idToken string) (*gateway.Identity, error) {
	args := m.Called(ctx, provider, idToken)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*gateway.Identity), args.Error(1)
}

func (m *MockAuthService) SignOut(ctx context.Context, token string) error {
	args := m.Called(ctx, token)
	return args.Error(0)
}
