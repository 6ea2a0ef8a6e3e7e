package mocks

import (
	"context"
	"io"
	"time"

	"github.com/stretchr/testify/mock"
)

// MockObjectStorage is a mock implementation of the avatar object storage
type MockObjectStorage struct {
	mock.Mock
}

func (m *MockObjectStorage) PutObject(ctx context.Context, objectKey, contentType string, body io.Reader, size int64) error {
	args := m.Called(ctx, objectKey, contentType, body, size)
	return args.Error(0)
}

func (m *MockObjectStorage) GeneratePresignedURL(ctx context.Context, objectKey string, expiration time.Duration) (string, error) {
	args := m.Called(ctx, objectKey, expiration)
	return args.String(0), args.Error(1)
}
