package service

import (
	"context"
	"io"
	"time"

	"github.com/google/uuid"

	"github.com/pageza/mealtrack/backend/internal/gateway"
	"github.com/pageza/mealtrack/backend/internal/models"
	"github.com/pageza/mealtrack/backend/internal/types"
)

// IAuthService is the session issuer plus bearer token validation for middleware
type IAuthService interface {
	gateway.AuthGateway
	ValidateToken(ctx context.Context, token string) (*types.TokenClaims, error)
}

// IFoodService defines the interface for food catalog operations
type IFoodService interface {
	Search(ctx context.Context, name string, category models.FoodCategory, limit int) ([]models.Food, error)
	Get(ctx context.Context, id uuid.UUID) (*models.Food, error)
	Similar(ctx context.Context, id uuid.UUID, limit int) ([]models.Food, error)
}

// IStatsService defines the interface for period statistics
type IStatsService interface {
	Summary(ctx context.Context, userID uuid.UUID, period Period, anchor time.Time, target int) (*types.StatsSummary, error)
	Invalidate(ctx context.Context, userID uuid.UUID) error
}

// IAvatarService stores profile pictures
type IAvatarService interface {
	Upload(ctx context.Context, userID uuid.UUID, contentType string, body io.Reader, size int64) (string, error)
}

// ObjectStorage is the subset of S3 used for avatars
type ObjectStorage interface {
	PutObject(ctx context.Context, objectKey, contentType string, body io.Reader, size int64) error
	GeneratePresignedURL(ctx context.Context, objectKey string, expiration time.Duration) (string, error)
}

// TokenVerifier validates third-party ID tokens
type TokenVerifier interface {
	Verify(ctx context.Context, idToken string) (*ExternalIdentity, error)
}

// ExternalIdentity is the verified subject of an OAuth ID token
type ExternalIdentity struct {
	Subject       string
	Email         string
	EmailVerified bool
	Name          string
}
