package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"postdrop/backend/internal/storage/memory"
)

func TestService_Register(t *testing.T) {
	t.Run("注册成功", func(t *testing.T) {
		svc := NewService(memory.NewStore())

		user, err := svc.Register(RegisterInput{Username: "alice", Password: "password123"})
		require.NoError(t, err)
		assert.NotEmpty(t, user.ID)
		assert.Equal(t, "alice", user.Username)
		assert.NotEqual(t, "password123", user.PasswordHash)
	})

	t.Run("用户名重复被拒绝", func(t *testing.T) {
		svc := NewService(memory.NewStore())

		_, err := svc.Register(RegisterInput{Username: "alice", Password: "password123"})
		require.NoError(t, err)

		_, err = svc.Register(RegisterInput{Username: "Alice", Password: "password456"})
		assert.ErrorIs(t, err, ErrUsernameExists)
	})

	t.Run("非法用户名被拒绝", func(t *testing.T) {
		svc := NewService(memory.NewStore())

		_, err := svc.Register(RegisterInput{Username: "a", Password: "password123"})
		assert.ErrorIs(t, err, ErrInvalidUsername)

		_, err = svc.Register(RegisterInput{Username: "bad name!", Password: "password123"})
		assert.ErrorIs(t, err, ErrInvalidUsername)
	})

	t.Run("弱密码被拒绝", func(t *testing.T) {
		svc := NewService(memory.NewStore())

		_, err := svc.Register(RegisterInput{Username: "alice", Password: "short"})
		assert.Error(t, err)
	})
}

func TestService_Login(t *testing.T) {
	t.Run("登录成功", func(t *testing.T) {
		svc := NewService(memory.NewStore())

		registered, err := svc.Register(RegisterInput{Username: "alice", Password: "password123"})
		require.NoError(t, err)

		user, err := svc.Login(LoginInput{Username: "alice", Password: "password123"})
		require.NoError(t, err)
		assert.Equal(t, registered.ID, user.ID)
	})

	t.Run("密码错误返回 ErrInvalidCredentials", func(t *testing.T) {
		svc := NewService(memory.NewStore())

		_, err := svc.Register(RegisterInput{Username: "alice", Password: "password123"})
		require.NoError(t, err)

		_, err = svc.Login(LoginInput{Username: "alice", Password: "wrong-password"})
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("用户不存在返回 ErrInvalidCredentials", func(t *testing.T) {
		svc := NewService(memory.NewStore())

		_, err := svc.Login(LoginInput{Username: "nobody", Password: "password123"})
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})
}

func TestCheckPassword(t *testing.T) {
	hash, err := HashPassword("password123")
	require.NoError(t, err)

	assert.True(t, CheckPassword("password123", hash))
	assert.False(t, CheckPassword("password124", hash))
}
