package service

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/pageza/mealtrack/backend/internal/gateway"
	"github.com/pageza/mealtrack/backend/internal/models"
	"github.com/pageza/mealtrack/backend/internal/types"
)

const (
	defaultTokenTTL   = 24 * time.Hour
	minPasswordLength = 6
	revokedKeyPrefix  = "auth:revoked:"
)

// AuthService issues JWT sessions for email/password and Google accounts.
type AuthService struct {
	db        *gorm.DB
	jwtSecret string
	ttl       time.Duration
	revoked   revocationList
	google    TokenVerifier
	log       logrus.FieldLogger
	now       func() time.Time
}

var _ IAuthService = (*AuthService)(nil)

// AuthOption configures an AuthService
type AuthOption func(*AuthService)

// WithTokenTTL sets the session lifetime
func WithTokenTTL(ttl time.Duration) AuthOption {
	return func(s *AuthService) {
		if ttl > 0 {
			s.ttl = ttl
		}
	}
}

// WithRedis keeps revoked tokens in Redis so sign-out survives restarts
func WithRedis(client *redis.Client) AuthOption {
	return func(s *AuthService) {
		if client != nil {
			s.revoked = &redisRevocations{client: client}
		}
	}
}

// WithGoogleVerifier enables Google sign-in
func WithGoogleVerifier(v TokenVerifier) AuthOption {
	return func(s *AuthService) { s.google = v }
}

// WithAuthLogger sets the logger
func WithAuthLogger(log logrus.FieldLogger) AuthOption {
	return func(s *AuthService) { s.log = log }
}

func NewAuthService(db *gorm.DB, jwtSecret string, opts ...AuthOption) *AuthService {
	s := &AuthService{
		db:        db,
		jwtSecret: jwtSecret,
		ttl:       defaultTokenTTL,
		revoked:   newMemoryRevocations(),
		log:       logrus.StandardLogger(),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *AuthService) SignUp(ctx context.Context, email, password, name string) (*gateway.Identity, error) {
	email = normalizeEmail(email)
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, ErrInvalidEmail
	}
	if len(password) < minPasswordLength {
		return nil, ErrWeakPassword
	}

	var count int64
	if err := s.db.WithContext(ctx).Model(&models.User{}).Where("email = ?", email).Count(&count).Error; err != nil {
		return nil, fmt.Errorf("check existing user: %w", err)
	}
	if count > 0 {
		return nil, ErrEmailTaken
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		ID:           uuid.New(),
		Name:         strings.TrimSpace(name),
		Email:        email,
		PasswordHash: string(hashedPassword),
		Provider:     models.ProviderEmail,
	}
	if err := s.db.WithContext(ctx).Create(user).Error; err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}

	s.log.WithField("user_id", user.ID).Info("user signed up")
	return s.issue(user)
}

func (s *AuthService) SignInWithPassword(ctx context.Context, email, password string) (*gateway.Identity, error) {
	var user models.User
	if err := s.db.WithContext(ctx).Where("email = ?", normalizeEmail(email)).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	if user.PasswordHash == "" {
		return nil, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	return s.issue(&user)
}

// SignInWithIDToken signs in with a provider ID token, creating the user on
// first use.
func (s *AuthService) SignInWithIDToken(ctx context.Context, provider, idToken string) (*gateway.Identity, error) {
	if provider != models.ProviderGoogle {
		return nil, ErrUnsupportedProvider
	}
	if s.google == nil {
		return nil, ErrOAuthNotConfigured
	}

	ext, err := s.google.Verify(ctx, idToken)
	if err != nil {
		return nil, err
	}
	email := normalizeEmail(ext.Email)
	if email == "" || !ext.EmailVerified {
		return nil, ErrInvalidToken
	}

	var user models.User
	err = s.db.WithContext(ctx).Where("email = ?", email).First(&user).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		user = models.User{
			ID:       uuid.New(),
			Name:     ext.Name,
			Email:    email,
			Provider: models.ProviderGoogle,
		}
		if err := s.db.WithContext(ctx).Create(&user).Error; err != nil {
			return nil, fmt.Errorf("create user: %w", err)
		}
		s.log.WithField("user_id", user.ID).Info("user signed up with google")
	case err != nil:
		return nil, fmt.Errorf("find user: %w", err)
	}

	return s.issue(&user)
}

// GetSession resolves a bearer token. Invalid, expired and revoked tokens
// are treated as no session.
func (s *AuthService) GetSession(ctx context.Context, token string) (*gateway.Identity, error) {
	if token == "" {
		return nil, nil
	}
	claims, err := s.ValidateToken(ctx, token)
	if err != nil {
		if errors.Is(err, ErrInvalidToken) {
			return nil, nil
		}
		return nil, err
	}
	return &gateway.Identity{
		ID:        claims.UserID,
		Email:     claims.Email,
		Name:      claims.Name,
		Token:     token,
		ExpiresAt: claims.ExpiresAt.Time,
	}, nil
}

// SignOut revokes token until it would have expired.
func (s *AuthService) SignOut(ctx context.Context, token string) error {
	claims, err := s.parse(token)
	if err != nil {
		return nil
	}
	ttl := claims.ExpiresAt.Time.Sub(s.now())
	if ttl <= 0 {
		return nil
	}
	if err := s.revoked.Revoke(ctx, claims.ID, ttl); err != nil {
		return fmt.Errorf("revoke token: %w", err)
	}
	s.log.WithField("user_id", claims.UserID).Info("user signed out")
	return nil
}

func (s *AuthService) ValidateToken(ctx context.Context, token string) (*types.TokenClaims, error) {
	claims, err := s.parse(token)
	if err != nil {
		return nil, err
	}
	revoked, err := s.revoked.IsRevoked(ctx, claims.ID)
	if err != nil {
		return nil, fmt.Errorf("check revocation: %w", err)
	}
	if revoked {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

func (s *AuthService) parse(tokenString string) (*types.TokenClaims, error) {
	claims := &types.TokenClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(s.jwtSecret), nil
	}, jwt.WithTimeFunc(s.now))
	if err != nil || !token.Valid || claims.UserID == uuid.Nil || claims.ExpiresAt == nil {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

func (s *AuthService) issue(user *models.User) (*gateway.Identity, error) {
	now := s.now()
	expires := now.Add(s.ttl)
	claims := &types.TokenClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   user.ID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expires),
		},
		UserID: user.ID,
		Email:  user.Email,
		Name:   user.Name,
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.jwtSecret))
	if err != nil {
		return nil, fmt.Errorf("sign token: %w", err)
	}
	return &gateway.Identity{
		ID:        user.ID,
		Email:     user.Email,
		Name:      user.Name,
		Token:     token,
		ExpiresAt: expires,
	}, nil
}

type revocationList interface {
	Revoke(ctx context.Context, jti string, ttl time.Duration) error
	IsRevoked(ctx context.Context, jti string) (bool, error)
}

type redisRevocations struct {
	client *redis.Client
}

func (r *redisRevocations) Revoke(ctx context.Context, jti string, ttl time.Duration) error {
	return r.client.Set(ctx, revokedKeyPrefix+jti, 1, ttl).Err()
}

func (r *redisRevocations) IsRevoked(ctx context.Context, jti string) (bool, error) {
	n, err := r.client.Exists(ctx, revokedKeyPrefix+jti).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// memoryRevocations is used when Redis is not configured.
type memoryRevocations struct {
	mu      sync.Mutex
	entries map[string]time.Time
}

func newMemoryRevocations() *memoryRevocations {
	return &memoryRevocations{entries: make(map[string]time.Time)}
}

func (m *memoryRevocations) Revoke(_ context.Context, jti string, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := time.Now()
	for k, exp := range m.entries {
		if now.After(exp) {
			delete(m.entries, k)
		}
	}
	m.entries[jti] = now.Add(ttl)
	return nil
}

func (m *memoryRevocations) IsRevoked(_ context.Context, jti string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	exp, ok := m.entries[jti]
	return ok && time.Now().Before(exp), nil
}
