package server

import (
	"context"
	"net"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pageza/mealtrack/backend/config"
	"github.com/pageza/mealtrack/backend/internal/logging"
	"github.com/pageza/mealtrack/backend/internal/testhelpers"
)

func testConfig() *config.Config {
	return &config.Config{
		Environment:        config.Test,
		ServerHost:         "127.0.0.1",
		ServerPort:         "0",
		DBDriver:           "sqlite",
		JWTSecret:          "test-secret",
		JWTTTL:             time.Hour,
		CORSOrigins:        []string{"http://localhost:5173"},
		RateLimitPerMinute: 60,
		StatsCacheTTL:      time.Minute,
	}
}

func TestNew(t *testing.T) {
	gin.SetMode(gin.TestMode)
	db := testhelpers.NewSQLiteDB(t)

	srv := New(context.Background(), testConfig(), db, nil, logging.Discard())
	require.NotNil(t, srv)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	srv.Handler().ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodOptions, "/api/v1/foods", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", http.MethodGet)
	srv.Handler().ServeHTTP(w, req)
	assert.Equal(t, "http://localhost:5173", w.Header().Get("Access-Control-Allow-Origin"))

	w = httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/foods", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestStartStopsOnCancel(t *testing.T) {
	gin.SetMode(gin.TestMode)
	db := testhelpers.NewSQLiteDB(t)

	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	port := l.Addr().(*net.TCPAddr).Port
	require.NoError(t, l.Close())

	cfg := testConfig()
	cfg.ServerPort = strconv.Itoa(port)
	srv := New(context.Background(), cfg, db, nil, logging.Discard())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Start(ctx) }()

	require.Eventually(t, func() bool {
		resp, err := http.Get("http://127.0.0.1:" + cfg.ServerPort + "/health")
		if err != nil {
			return false
		}
		resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 5*time.Second, 50*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
}
