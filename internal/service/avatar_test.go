package service_test

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/pageza/mealtrack/backend/internal/mocks"
	"github.com/pageza/mealtrack/backend/internal/service"
)

func TestAvatarUpload(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()
	storage := new(mocks.MockObjectStorage)
	svc := service.NewAvatarService(storage)

	var key string
	storage.On("PutObject", ctx, mock.AnythingOfType("string"), "image/png", mock.Anything, int64(4)).
		Run(func(args mock.Arguments) { key = args.String(1) }).
		Return(nil).Once()
	storage.On("GeneratePresignedURL", ctx, mock.AnythingOfType("string"), 7*24*time.Hour).
		Return("https://bucket.example.com/avatar.png?sig=1", nil).Once()

	url, err := svc.Upload(ctx, userID, "image/png", bytes.NewReader([]byte("\x89PNG")), 4)
	require.NoError(t, err)
	assert.Equal(t, "https://bucket.example.com/avatar.png?sig=1", url)
	assert.True(t, strings.HasPrefix(key, "avatars/"+userID.String()+"/"), key)
	assert.True(t, strings.HasSuffix(key, ".png"), key)
	storage.AssertExpectations(t)
}

func TestAvatarUploadRejectsInvalidFiles(t *testing.T) {
	storage := new(mocks.MockObjectStorage)
	svc := service.NewAvatarService(storage)

	tests := []struct {
		name        string
		contentType string
		size        int64
	}{
		{"unsupported type", "image/gif", 10},
		{"empty", "image/jpeg", 0},
		{"too large", "image/jpeg", 6 << 20},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Upload(context.Background(), uuid.New(), tt.contentType, strings.NewReader("x"), tt.size)
			assert.ErrorIs(t, err, service.ErrInvalidAvatar)
		})
	}
	storage.AssertNotCalled(t, "PutObject", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestAvatarUploadStorageErrors(t *testing.T) {
	ctx := context.Background()

	t.Run("not configured", func(t *testing.T) {
		_, err := service.NewAvatarService(nil).Upload(ctx, uuid.New(), "image/png", strings.NewReader("x"), 1)
		assert.ErrorIs(t, err, service.ErrStorageUnavailable)
	})

	t.Run("put fails", func(t *testing.T) {
		storage := new(mocks.MockObjectStorage)
		boom := errors.New("access denied")
		storage.On("PutObject", ctx, mock.Anything, "image/webp", mock.Anything, int64(1)).Return(boom)

		_, err := service.NewAvatarService(storage).Upload(ctx, uuid.New(), "image/webp", strings.NewReader("x"), 1)
		assert.ErrorIs(t, err, boom)
		storage.AssertNotCalled(t, "GeneratePresignedURL", mock.Anything, mock.Anything, mock.Anything)
	})
}
