package jwt

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestManager(accessExpiry, refreshExpiry time.Duration) *Manager {
	return NewManager("test-secret-key-for-unit-tests-only!", "postdrop-test", accessExpiry, refreshExpiry)
}

func TestManager_GenerateTokenPair(t *testing.T) {
	m := newTestManager(15*time.Minute, 24*time.Hour)

	t.Run("生成令牌对并验证声明", func(t *testing.T) {
		pair, err := m.GenerateTokenPair("user-1", "alice")
		require.NoError(t, err)
		require.NotEmpty(t, pair.AccessToken)
		require.NotEmpty(t, pair.RefreshToken)
		assert.Equal(t, int64(900), pair.ExpiresIn)

		claims, err := m.ValidateToken(pair.AccessToken)
		require.NoError(t, err)
		assert.Equal(t, "user-1", claims.UserID)
		assert.Equal(t, "alice", claims.Username)
		assert.Equal(t, "postdrop-test", claims.Issuer)
	})
}

func TestManager_ValidateToken(t *testing.T) {
	m := newTestManager(15*time.Minute, 24*time.Hour)

	t.Run("格式错误的令牌返回 ErrInvalidToken", func(t *testing.T) {
		_, err := m.ValidateToken("not-a-token")
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("其他密钥签发的令牌无效", func(t *testing.T) {
		other := NewManager("another-secret-that-does-not-match!", "postdrop-test", time.Minute, time.Hour)
		pair, err := other.GenerateTokenPair("user-1", "alice")
		require.NoError(t, err)

		_, err = m.ValidateToken(pair.AccessToken)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("过期令牌返回 ErrExpiredToken", func(t *testing.T) {
		expired := newTestManager(-time.Minute, time.Hour)
		pair, err := expired.GenerateTokenPair("user-1", "alice")
		require.NoError(t, err)

		_, err = m.ValidateToken(pair.AccessToken)
		assert.ErrorIs(t, err, ErrExpiredToken)
	})
}

func TestManager_RefreshAccessToken(t *testing.T) {
	m := newTestManager(15*time.Minute, 24*time.Hour)

	t.Run("刷新令牌换取新访问令牌", func(t *testing.T) {
		pair, err := m.GenerateTokenPair("user-1", "alice")
		require.NoError(t, err)

		access, err := m.RefreshAccessToken(pair.RefreshToken)
		require.NoError(t, err)

		claims, err := m.ValidateToken(access)
		require.NoError(t, err)
		assert.Equal(t, "user-1", claims.UserID)
	})

	t.Run("无效刷新令牌被拒绝", func(t *testing.T) {
		_, err := m.RefreshAccessToken("garbage")
		assert.ErrorIs(t, err, ErrInvalidToken)
	})
}
