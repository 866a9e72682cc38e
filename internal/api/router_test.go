package routes

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	v1 "github.com/mnuddindev/winoreat/internal/api/v1"
	"github.com/mnuddindev/winoreat/internal/config"
	"github.com/mnuddindev/winoreat/internal/db/dbtest"
	"github.com/mnuddindev/winoreat/internal/models"
	"github.com/mnuddindev/winoreat/internal/naver"
	"github.com/mnuddindev/winoreat/internal/services/restaurants"
	"github.com/mnuddindev/winoreat/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newApp(t *testing.T, cfg *config.Config) *fiber.App {
	t.Helper()
	gdb := dbtest.New(t, models.RegisterModels()...)
	log, err := logger.NewLogger(logger.WithOutputDir(t.TempDir()), logger.WithStdout(nil))
	require.NoError(t, err)
	t.Cleanup(log.Close)

	svc := restaurants.NewService(gdb, naver.NewClient(naver.Credentials{}, naver.Credentials{}))
	app := fiber.New()
	NewRoutes(app, cfg, gdb, log, v1.NewHandler(gdb, svc, v1.WithLogger(log)))
	return app
}

func TestHealthAndRequestID(t *testing.T) {
	app := newApp(t, &config.Config{CORSOrigins: "*", RateLimitMax: 100, RateLimitExpiration: time.Minute})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/health", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Get(fiber.HeaderXRequestID))

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/api/v1/bugs", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestRateLimitPerClientIP(t *testing.T) {
	app := newApp(t, &config.Config{CORSOrigins: "*", RateLimitMax: 2, RateLimitExpiration: time.Minute})

	hit := func(ip string) int {
		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		req.Header.Set(fiber.HeaderXForwardedFor, ip)
		resp, err := app.Test(req)
		require.NoError(t, err)
		return resp.StatusCode
	}

	assert.Equal(t, http.StatusOK, hit("1.1.1.1"))
	assert.Equal(t, http.StatusOK, hit("1.1.1.1"))
	assert.Equal(t, http.StatusTooManyRequests, hit("1.1.1.1"))
	assert.Equal(t, http.StatusOK, hit("2.2.2.2"))
}
