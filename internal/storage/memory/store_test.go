package memory

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"postdrop/backend/internal/domain"
)

func newMailbox(id, ownerID string, ttl time.Duration) *domain.Mailbox {
	now := time.Now().UTC()
	return &domain.Mailbox{
		ID:           id,
		OwnerID:      ownerID,
		Address:      id + "@sharklasers.com",
		LocalPart:    id,
		Domain:       "sharklasers.com",
		SessionToken: "sid-" + id,
		CreatedAt:    now,
		ExpiresAt:    now.Add(ttl),
	}
}

func TestStore_Mailboxes(t *testing.T) {
	t.Run("保存并获取邮箱成功", func(t *testing.T) {
		store := NewStore()
		mb := newMailbox("mb-1", "user-1", time.Hour)

		require.NoError(t, store.SaveMailbox(mb))

		got, err := store.GetMailbox("mb-1", "user-1")
		require.NoError(t, err)
		assert.Equal(t, mb.Address, got.Address)
		assert.Equal(t, mb.SessionToken, got.SessionToken)
	})

	t.Run("重复ID保存失败", func(t *testing.T) {
		store := NewStore()
		require.NoError(t, store.SaveMailbox(newMailbox("mb-1", "user-1", time.Hour)))

		err := store.SaveMailbox(newMailbox("mb-1", "user-1", time.Hour))
		assert.Error(t, err)
	})

	t.Run("所有者不匹配视同不存在", func(t *testing.T) {
		store := NewStore()
		require.NoError(t, store.SaveMailbox(newMailbox("mb-1", "user-1", time.Hour)))

		got, err := store.GetMailbox("mb-1", "user-2")
		assert.Nil(t, got)
		assert.ErrorIs(t, err, ErrMailboxNotFound)
	})

	t.Run("过期邮箱按不存在处理", func(t *testing.T) {
		store := NewStore()
		require.NoError(t, store.SaveMailbox(newMailbox("mb-1", "user-1", -time.Minute)))

		got, err := store.GetMailbox("mb-1", "user-1")
		assert.Nil(t, got)
		assert.ErrorIs(t, err, ErrMailboxNotFound)
	})

	t.Run("按所有者列出全部邮箱且维持插入顺序", func(t *testing.T) {
		store := NewStore()
		require.NoError(t, store.SaveMailbox(newMailbox("mb-a", "user-1", time.Hour)))
		require.NoError(t, store.SaveMailbox(newMailbox("mb-b", "user-1", time.Hour)))
		require.NoError(t, store.SaveMailbox(newMailbox("mb-c", "user-2", time.Hour)))

		mailboxes := store.ListMailboxesByOwner("user-1")
		require.Len(t, mailboxes, 2)
		assert.Equal(t, "mb-a", mailboxes[0].ID)
		assert.Equal(t, "mb-b", mailboxes[1].ID)
	})

	t.Run("列表不包含过期邮箱", func(t *testing.T) {
		store := NewStore()
		require.NoError(t, store.SaveMailbox(newMailbox("mb-live", "user-1", time.Hour)))
		require.NoError(t, store.SaveMailbox(newMailbox("mb-dead", "user-1", -time.Minute)))

		mailboxes := store.ListMailboxesByOwner("user-1")
		require.Len(t, mailboxes, 1)
		assert.Equal(t, "mb-live", mailboxes[0].ID)
	})

	t.Run("删除仅在所有者匹配时生效", func(t *testing.T) {
		store := NewStore()
		require.NoError(t, store.SaveMailbox(newMailbox("mb-1", "user-1", time.Hour)))

		assert.False(t, store.RemoveMailbox("mb-1", "user-2"))
		assert.True(t, store.RemoveMailbox("mb-1", "user-1"))
		assert.False(t, store.RemoveMailbox("mb-1", "user-1"))

		_, err := store.GetMailbox("mb-1", "user-1")
		assert.ErrorIs(t, err, ErrMailboxNotFound)
	})

	t.Run("清理过期邮箱返回数量", func(t *testing.T) {
		store := NewStore()
		require.NoError(t, store.SaveMailbox(newMailbox("mb-1", "user-1", -time.Minute)))
		require.NoError(t, store.SaveMailbox(newMailbox("mb-2", "user-1", -time.Minute)))
		require.NoError(t, store.SaveMailbox(newMailbox("mb-3", "user-1", time.Hour)))

		count, err := store.DeleteExpiredMailboxes()
		require.NoError(t, err)
		assert.Equal(t, 2, count)
		assert.Len(t, store.ListMailboxesByOwner("user-1"), 1)
	})
}

func TestStore_Users(t *testing.T) {
	t.Run("创建并查询用户", func(t *testing.T) {
		store := NewStore()
		user := &domain.User{ID: "u-1", Username: "Alice", CreatedAt: time.Now()}

		require.NoError(t, store.CreateUser(user))

		byID, err := store.GetUserByID("u-1")
		require.NoError(t, err)
		assert.Equal(t, "Alice", byID.Username)

		// 用户名查询不区分大小写
		byName, err := store.GetUserByUsername("alice")
		require.NoError(t, err)
		assert.Equal(t, "u-1", byName.ID)
	})

	t.Run("用户名重复创建失败", func(t *testing.T) {
		store := NewStore()
		require.NoError(t, store.CreateUser(&domain.User{ID: "u-1", Username: "alice"}))

		err := store.CreateUser(&domain.User{ID: "u-2", Username: "ALICE"})
		assert.ErrorIs(t, err, ErrUsernameExists)
	})

	t.Run("查询不存在的用户失败", func(t *testing.T) {
		store := NewStore()

		_, err := store.GetUserByID("missing")
		assert.ErrorIs(t, err, ErrUserNotFound)

		_, err = store.GetUserByUsername("missing")
		assert.ErrorIs(t, err, ErrUserNotFound)
	})
}

func TestStore_ConcurrentAccess(t *testing.T) {
	t.Run("并发读写不产生竞争", func(t *testing.T) {
		store := NewStore()
		var wg sync.WaitGroup

		for i := 0; i < 20; i++ {
			wg.Add(1)
			go func(n int) {
				defer wg.Done()
				id := fmt.Sprintf("mb-%d", n)
				_ = store.SaveMailbox(newMailbox(id, "user-1", time.Hour))
				_, _ = store.GetMailbox(id, "user-1")
				_ = store.ListMailboxesByOwner("user-1")
				store.RemoveMailbox(id, "user-1")
			}(i)
		}
		wg.Wait()

		assert.Empty(t, store.ListMailboxesByOwner("user-1"))
	})
}
