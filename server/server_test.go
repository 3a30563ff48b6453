package server

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/campuskit/tokenauth/config"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer() *Server {
	return New(&config.Config{
		Server: config.ServerConfig{Host: "localhost", Port: "0"},
	})
}

func TestNew(t *testing.T) {
	srv := newTestServer()
	require.NotNil(t, srv)
	assert.NotNil(t, srv.Echo())
	assert.True(t, srv.Echo().HideBanner)
}

func TestServer_Routes(t *testing.T) {
	srv := newTestServer()

	srv.Get("/ping", func(c echo.Context) error {
		return c.String(http.StatusOK, "pong")
	})
	srv.Post("/echo", func(c echo.Context) error {
		return c.NoContent(http.StatusCreated)
	})

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	rec := httptest.NewRecorder()
	srv.Echo().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "pong", rec.Body.String())

	req = httptest.NewRequest(http.MethodPost, "/echo", nil)
	rec = httptest.NewRecorder()
	srv.Echo().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusCreated, rec.Code)
}

func TestServer_Group(t *testing.T) {
	srv := newTestServer()

	g := srv.Group("/api")
	g.GET("/status", func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/api/status", nil)
	rec := httptest.NewRecorder()
	srv.Echo().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}
