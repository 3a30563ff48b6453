package directory

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/campuskit/tokenauth/config"
	"github.com/campuskit/tokenauth/services/token"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(baseURL string) *Client {
	return NewClient(&config.Config{
		Directory: config.DirectoryConfig{
			BaseURL: baseURL,
			Timeout: time.Second,
		},
	}, nil)
}

func TestClient_LookupPrincipal(t *testing.T) {
	ctx := context.Background()

	t.Run("found", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/principals/student", r.URL.Path)
			assert.Equal(t, "alice@campus.edu", r.URL.Query().Get("identifier"))

			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{"id":"abc-123","hashed_secret":"$2a$04$hash","role":"student"}`))
		}))
		defer srv.Close()

		principal, err := newTestClient(srv.URL).LookupPrincipal(ctx, "alice@campus.edu", KindStudent)
		require.NoError(t, err)
		assert.Equal(t, "abc-123", principal.ID)
		assert.Equal(t, "$2a$04$hash", principal.HashedSecret)
		assert.Equal(t, token.RoleStudent, principal.Role)
	})

	t.Run("not found", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
		}))
		defer srv.Close()

		_, err := newTestClient(srv.URL).LookupPrincipal(ctx, "ghost@campus.edu", KindFaculty)
		assert.ErrorIs(t, err, ErrPrincipalNotFound)
	})

	t.Run("server error maps to unavailable", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}))
		defer srv.Close()

		_, err := newTestClient(srv.URL).LookupPrincipal(ctx, "alice@campus.edu", KindStudent)
		assert.ErrorIs(t, err, ErrUnavailable)
	})

	t.Run("unreachable directory maps to unavailable", func(t *testing.T) {
		_, err := newTestClient("http://127.0.0.1:1").LookupPrincipal(ctx, "alice@campus.edu", KindStudent)
		assert.ErrorIs(t, err, ErrUnavailable)
	})

	t.Run("incomplete record maps to unavailable", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"id":"abc-123"}`))
		}))
		defer srv.Close()

		_, err := newTestClient(srv.URL).LookupPrincipal(ctx, "alice@campus.edu", KindStudent)
		assert.ErrorIs(t, err, ErrUnavailable)
	})

	t.Run("invalid kind rejected locally", func(t *testing.T) {
		_, err := newTestClient("http://unused").LookupPrincipal(ctx, "alice@campus.edu", PrincipalKind("staff"))
		assert.ErrorIs(t, err, ErrUnknownPrincipalKind)
	})
}
