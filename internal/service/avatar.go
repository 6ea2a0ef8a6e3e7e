package service

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
)

const (
	maxAvatarSize = 5 << 20
	// S3 SigV4 presigned URLs are valid for at most seven days.
	avatarURLTTL = 7 * 24 * time.Hour
)

var avatarExtensions = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
}

// AvatarService uploads profile pictures to object storage.
type AvatarService struct {
	storage ObjectStorage
}

var _ IAvatarService = (*AvatarService)(nil)

// NewAvatarService returns a service backed by storage, which may be nil when
// no bucket is configured.
func NewAvatarService(storage ObjectStorage) *AvatarService {
	return &AvatarService{storage: storage}
}

// Upload stores the image and returns a URL it can be fetched from.
func (s *AvatarService) Upload(ctx context.Context, userID uuid.UUID, contentType string, body io.Reader, size int64) (string, error) {
	if s.storage == nil {
		return "", ErrStorageUnavailable
	}
	ext, ok := avatarExtensions[contentType]
	if !ok || size <= 0 || size > maxAvatarSize {
		return "", ErrInvalidAvatar
	}

	key := fmt.Sprintf("avatars/%s/%s%s", userID, uuid.NewString(), ext)
	if err := s.storage.PutObject(ctx, key, contentType, body, size); err != nil {
		return "", fmt.Errorf("upload avatar: %w", err)
	}

	url, err := s.storage.GeneratePresignedURL(ctx, key, avatarURLTTL)
	if err != nil {
		return "", fmt.Errorf("presign avatar: %w", err)
	}
	return url, nil
}
