package refreshtoken

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/campuskit/tokenauth/config"
	"github.com/campuskit/tokenauth/services/token"
	"github.com/campuskit/tokenauth/testutils"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func getTestRefreshConfig() *config.Config {
	return &config.Config{
		RefreshToken: config.RefreshTokenConfig{
			TokenLength:     32,
			Expiry:          24 * time.Hour,
			CleanupInterval: time.Hour,
			StoreTimeout:    5 * time.Second,
		},
	}
}

func newTestService(t *testing.T) *Service {
	db := testutils.SetupTestDB(t, &RefreshToken{})
	return NewService(db, getTestRefreshConfig(), nil)
}

func TestService_Create(t *testing.T) {
	service := newTestService(t)
	ctx := context.Background()
	subjectID := uuid.New().String()

	t.Run("creates usable record", func(t *testing.T) {
		sessionInfo := SessionInfo{
			IPAddress: "192.168.1.1",
			UserAgent: "test-agent",
			DeviceInfo: map[string]any{
				"os":      "linux",
				"browser": "firefox",
			},
		}

		data, err := service.Create(ctx, subjectID, token.RoleStudent, sessionInfo)
		require.NoError(t, err)
		assert.NotEmpty(t, data.Value)
		assert.NotEmpty(t, data.Hash)
		assert.NotZero(t, data.TokenID)
		assert.True(t, data.ExpiresAt.After(time.Now()))

		var stored RefreshToken
		require.NoError(t, service.db.Where("id = ?", data.TokenID).First(&stored).Error)
		assert.Equal(t, subjectID, stored.SubjectID)
		assert.Equal(t, token.RoleStudent, stored.Role)
		assert.Equal(t, data.Hash, stored.TokenHash)
		assert.False(t, stored.Revoked)
		assert.NotEmpty(t, stored.DeviceInfo)
		assert.True(t, stored.Usable(time.Now()))
	})

	t.Run("raw value never stored", func(t *testing.T) {
		data, err := service.Create(ctx, subjectID, token.RoleStudent, SessionInfo{})
		require.NoError(t, err)

		var count int64
		service.db.Model(&RefreshToken{}).Where("token_hash = ?", data.Value).Count(&count)
		assert.Zero(t, count)
	})

	t.Run("distinct values per token", func(t *testing.T) {
		first, err := service.Create(ctx, subjectID, token.RoleStudent, SessionInfo{})
		require.NoError(t, err)
		second, err := service.Create(ctx, subjectID, token.RoleStudent, SessionInfo{})
		require.NoError(t, err)
		assert.NotEqual(t, first.Value, second.Value)
	})
}

func TestService_FindByValue(t *testing.T) {
	service := newTestService(t)
	ctx := context.Background()
	subjectID := uuid.New().String()

	t.Run("found", func(t *testing.T) {
		data, err := service.Create(ctx, subjectID, token.RoleFaculty, SessionInfo{})
		require.NoError(t, err)

		record, err := service.FindByValue(ctx, data.Value)
		require.NoError(t, err)
		assert.Equal(t, data.TokenID, record.ID)
		assert.Equal(t, subjectID, record.SubjectID)
		assert.Equal(t, token.RoleFaculty, record.Role)
	})

	t.Run("not found", func(t *testing.T) {
		record, err := service.FindByValue(ctx, "no-such-value")
		assert.ErrorIs(t, err, ErrTokenNotFound)
		assert.Nil(t, record)
	})
}

func TestService_Consume(t *testing.T) {
	ctx := context.Background()

	t.Run("single consume succeeds once", func(t *testing.T) {
		service := newTestService(t)
		data, err := service.Create(ctx, uuid.New().String(), token.RoleStudent, SessionInfo{})
		require.NoError(t, err)

		require.NoError(t, service.Consume(ctx, data.Value))

		record, err := service.FindByValue(ctx, data.Value)
		require.NoError(t, err)
		assert.True(t, record.Revoked)
		assert.False(t, record.Usable(time.Now()))

		assert.ErrorIs(t, service.Consume(ctx, data.Value), ErrTokenConsumed)
	})

	t.Run("unknown value reports consumed", func(t *testing.T) {
		service := newTestService(t)
		assert.ErrorIs(t, service.Consume(ctx, "unknown"), ErrTokenConsumed)
	})

	t.Run("exactly one concurrent winner", func(t *testing.T) {
		service := newTestService(t)
		data, err := service.Create(ctx, uuid.New().String(), token.RoleStudent, SessionInfo{})
		require.NoError(t, err)

		const callers = 16
		var wg sync.WaitGroup
		results := make(chan error, callers)

		for i := 0; i < callers; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				results <- service.Consume(ctx, data.Value)
			}()
		}
		wg.Wait()
		close(results)

		successes, failures := 0, 0
		for err := range results {
			if err == nil {
				successes++
			} else {
				assert.ErrorIs(t, err, ErrTokenConsumed)
				failures++
			}
		}

		assert.Equal(t, 1, successes)
		assert.Equal(t, callers-1, failures)
	})
}

func TestService_RevokeAllForSubject(t *testing.T) {
	service := newTestService(t)
	ctx := context.Background()
	subjectID := uuid.New().String()
	otherSubject := uuid.New().String()

	for i := 0; i < 3; i++ {
		_, err := service.Create(ctx, subjectID, token.RoleStudent, SessionInfo{})
		require.NoError(t, err)
	}
	otherData, err := service.Create(ctx, otherSubject, token.RoleStudent, SessionInfo{})
	require.NoError(t, err)

	revoked, err := service.RevokeAllForSubject(ctx, subjectID)
	require.NoError(t, err)
	assert.EqualValues(t, 3, revoked)

	var live int64
	service.db.Model(&RefreshToken{}).
		Where("subject_id = ? AND revoked = ?", subjectID, false).
		Count(&live)
	assert.Zero(t, live)

	otherRecord, err := service.FindByValue(ctx, otherData.Value)
	require.NoError(t, err)
	assert.False(t, otherRecord.Revoked)

	revoked, err = service.RevokeAllForSubject(ctx, subjectID)
	require.NoError(t, err)
	assert.Zero(t, revoked)
}

func TestService_DeleteExpiredBefore(t *testing.T) {
	service := newTestService(t)
	ctx := context.Background()
	subjectID := uuid.New().String()

	liveData, err := service.Create(ctx, subjectID, token.RoleStudent, SessionInfo{})
	require.NoError(t, err)

	expired := RefreshToken{
		SubjectID: subjectID,
		Role:      token.RoleStudent,
		TokenHash: hashToken("expired-value"),
		ExpiresAt: time.Now().Add(-time.Hour),
	}
	require.NoError(t, service.db.Create(&expired).Error)

	deleted, err := service.DeleteExpiredBefore(ctx, time.Now())
	require.NoError(t, err)
	assert.EqualValues(t, 1, deleted)

	_, err = service.FindByValue(ctx, "expired-value")
	assert.ErrorIs(t, err, ErrTokenNotFound)

	record, err := service.FindByValue(ctx, liveData.Value)
	require.NoError(t, err)
	assert.True(t, record.Usable(time.Now()))

	deleted, err = service.DeleteExpiredBefore(ctx, time.Now())
	require.NoError(t, err)
	assert.Zero(t, deleted)
}

func TestService_CleanupExpiredTokens(t *testing.T) {
	service := newTestService(t)
	ctx := context.Background()

	expired := RefreshToken{
		SubjectID: uuid.New().String(),
		Role:      token.RoleFaculty,
		TokenHash: hashToken("stale"),
		ExpiresAt: time.Now().Add(-time.Minute),
	}
	require.NoError(t, service.db.Create(&expired).Error)

	require.NoError(t, service.CleanupExpiredTokens(ctx))

	var count int64
	service.db.Model(&RefreshToken{}).Count(&count)
	assert.Zero(t, count)
}

func TestRefreshToken_Usable(t *testing.T) {
	now := time.Now()

	tests := []struct {
		name   string
		record RefreshToken
		usable bool
	}{
		{"live", RefreshToken{Revoked: false, ExpiresAt: now.Add(time.Hour)}, true},
		{"revoked", RefreshToken{Revoked: true, ExpiresAt: now.Add(time.Hour)}, false},
		{"expired", RefreshToken{Revoked: false, ExpiresAt: now.Add(-time.Hour)}, false},
		{"revoked and expired", RefreshToken{Revoked: true, ExpiresAt: now.Add(-time.Hour)}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.usable, tt.record.Usable(now))
		})
	}
}
