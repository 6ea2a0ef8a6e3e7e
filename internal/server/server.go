package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/pageza/mealtrack/backend/config"
	"github.com/pageza/mealtrack/backend/internal/api"
	"github.com/pageza/mealtrack/backend/internal/gateway"
	"github.com/pageza/mealtrack/backend/internal/middleware"
	"github.com/pageza/mealtrack/backend/internal/realtime"
	"github.com/pageza/mealtrack/backend/internal/router"
	"github.com/pageza/mealtrack/backend/internal/service"
	"github.com/pageza/mealtrack/backend/internal/workspace"
)

const (
	shutdownTimeout = 5 * time.Second
	sweepInterval   = time.Minute
)

// Server represents the HTTP server
type Server struct {
	cfg      *config.Config
	router   *gin.Engine
	http     *http.Server
	db       *gorm.DB
	registry *workspace.Registry
	log      logrus.FieldLogger
}

// New wires services, handlers and middleware. redisClient may be nil.
func New(ctx context.Context, cfg *config.Config, db *gorm.DB, redisClient *redis.Client, log logrus.FieldLogger) *Server {
	if cfg.Environment == config.Production {
		gin.SetMode(gin.ReleaseMode)
	}

	gw := gateway.NewGormGateway(db)

	authOpts := []service.AuthOption{
		service.WithTokenTTL(cfg.JWTTTL),
		service.WithAuthLogger(log),
	}
	if redisClient != nil {
		authOpts = append(authOpts, service.WithRedis(redisClient))
	}
	if cfg.GoogleClientID != "" {
		authOpts = append(authOpts, service.WithGoogleVerifier(
			service.NewGoogleTokenVerifier(cfg.GoogleTokenInfoURL, cfg.GoogleClientID)))
	}
	auth := service.NewAuthService(db, cfg.JWTSecret, authOpts...)

	stats := service.NewStatsService(db, redisClient, cfg.StatsCacheTTL, log)
	hub := realtime.NewHub(log)
	registry := workspace.NewRegistry(auth, gw,
		workspace.WithLogger(log),
		workspace.WithHub(hub),
		workspace.WithStats(stats),
		workspace.WithIdleTimeout(cfg.JWTTTL),
	)

	var storage service.ObjectStorage
	s3cfg, err := config.NewS3Config(ctx, cfg)
	switch {
	case err == nil:
		storage = s3cfg
	case errors.Is(err, config.ErrStorageNotConfigured):
		log.Info("avatar storage not configured; uploads disabled")
	default:
		log.WithError(err).Warn("failed to initialize avatar storage; uploads disabled")
	}

	engine := router.SetupRouter(log, cfg.CORSOrigins, api.Dependencies{
		Auth:     auth,
		Registry: registry,
		Foods:    service.NewFoodService(db, gw),
		Stats:    stats,
		Avatars:  service.NewAvatarService(storage),
		Hub:      hub,
		Limiter:  middleware.NewMealMutationRateLimiter(redisClient, cfg.RateLimitPerMinute),
		Ping:     pinger(db),
		Log:      log,
	})

	return &Server{
		cfg:      cfg,
		router:   engine,
		db:       db,
		registry: registry,
		log:      log,
	}
}

func pinger(db *gorm.DB) func(ctx context.Context) error {
	return func(ctx context.Context) error {
		sqlDB, err := db.DB()
		if err != nil {
			return err
		}
		return sqlDB.PingContext(ctx)
	}
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	s.http = &http.Server{
		Addr:              fmt.Sprintf("%s:%s", s.cfg.ServerHost, s.cfg.ServerPort),
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errChan := make(chan error, 1)
	go func() {
		s.log.WithField("addr", s.http.Addr).Info("starting server")
		if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- err
		}
		close(errChan)
	}()

	ticker := time.NewTicker(sweepInterval)
	defer ticker.Stop()

	for {
		select {
		case err, ok := <-errChan:
			if ok {
				return fmt.Errorf("server: %w", err)
			}
			return nil
		case now := <-ticker.C:
			s.registry.Sweep(now)
		case <-ctx.Done():
			s.log.Info("shutting down server")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			return s.Stop(shutdownCtx)
		}
	}
}

// Stop gracefully stops the HTTP server
func (s *Server) Stop(ctx context.Context) error {
	if s.http != nil {
		return s.http.Shutdown(ctx)
	}
	return nil
}
