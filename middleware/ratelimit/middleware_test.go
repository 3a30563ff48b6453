package ratelimit

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
)

func setupLimitedRoute(cfg *Config) *echo.Echo {
	e := echo.New()
	e.POST("/login", func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	}, Middleware(cfg))
	return e
}

func hit(e *echo.Echo) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/login", nil)
	req.RemoteAddr = "10.0.0.1:1234"
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestMiddleware_AllowsWithinRate(t *testing.T) {
	e := setupLimitedRoute(&Config{Rate: 3, Period: time.Minute})

	for i := 0; i < 3; i++ {
		rec := hit(e)
		assert.Equal(t, http.StatusOK, rec.Code)
	}
}

func TestMiddleware_RejectsOverRate(t *testing.T) {
	e := setupLimitedRoute(&Config{Rate: 2, Period: time.Minute})

	hit(e)
	hit(e)
	rec := hit(e)

	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "0", rec.Header().Get("X-RateLimit-Remaining"))
}

func TestMiddleware_Headers(t *testing.T) {
	e := setupLimitedRoute(&Config{Rate: 5, Period: time.Minute})

	rec := hit(e)
	assert.Equal(t, "5", rec.Header().Get("X-RateLimit-Limit"))
	assert.Equal(t, "4", rec.Header().Get("X-RateLimit-Remaining"))
	assert.NotEmpty(t, rec.Header().Get("X-RateLimit-Reset"))
}

func TestMiddleware_SeparateKeys(t *testing.T) {
	e := setupLimitedRoute(&Config{Rate: 1, Period: time.Minute})

	rec := hit(e)
	assert.Equal(t, http.StatusOK, rec.Code)

	req := httptest.NewRequest(http.MethodPost, "/login", nil)
	req.RemoteAddr = "10.0.0.2:1234"
	other := httptest.NewRecorder()
	e.ServeHTTP(other, req)
	assert.Equal(t, http.StatusOK, other.Code)
}

func TestMemoryStore_WindowReset(t *testing.T) {
	store := NewMemoryStore()

	store.Increment("key", time.Now().Add(10*time.Millisecond))
	count, _, exists := store.Get("key")
	assert.True(t, exists)
	assert.Equal(t, 1, count)

	time.Sleep(20 * time.Millisecond)

	_, _, exists = store.Get("key")
	assert.False(t, exists)

	count = store.Increment("key", time.Now().Add(time.Minute))
	assert.Equal(t, 1, count)
}

func TestMemoryStore_Reset(t *testing.T) {
	store := NewMemoryStore()

	store.Increment("key", time.Now().Add(time.Minute))
	store.Reset("key")

	_, _, exists := store.Get("key")
	assert.False(t, exists)
}
