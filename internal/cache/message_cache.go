package cache

import (
	"context"
	"sync"
	"time"

	"postdrop/backend/internal/domain"
)

// MessageCache 进程内邮件列表缓存。
//
// 上游是轮询式 API，短 TTL 缓存可以吸收客户端的高频刷新；
// 键为邮箱的会话凭证。使用 sync.Map 实现无锁读取，
// 过期条目由后台循环定期回收。
type MessageCache struct {
	data sync.Map
	ttl  time.Duration
	done chan struct{}
}

type cacheEntry struct {
	messages  []domain.Message
	expiresAt time.Time
}

// NewMessageCache 创建进程内邮件列表缓存。
func NewMessageCache(ttl time.Duration) *MessageCache {
	c := &MessageCache{
		ttl:  ttl,
		done: make(chan struct{}),
	}

	go c.cleanupLoop()

	return c
}

// Get 获取缓存的邮件列表。
func (c *MessageCache) Get(_ context.Context, sessionToken string) ([]domain.Message, bool) {
	val, ok := c.data.Load(sessionToken)
	if !ok {
		return nil, false
	}

	entry := val.(*cacheEntry)
	if time.Now().After(entry.expiresAt) {
		c.data.Delete(sessionToken)
		return nil, false
	}

	return entry.messages, true
}

// Set 写入邮件列表。
func (c *MessageCache) Set(_ context.Context, sessionToken string, messages []domain.Message) {
	c.data.Store(sessionToken, &cacheEntry{
		messages:  messages,
		expiresAt: time.Now().Add(c.ttl),
	})
}

// Invalidate 删除指定会话的缓存。
func (c *MessageCache) Invalidate(_ context.Context, sessionToken string) {
	c.data.Delete(sessionToken)
}

// Close 停止后台清理。
func (c *MessageCache) Close() {
	close(c.done)
}

// cleanupLoop 定期清理过期条目。
func (c *MessageCache) cleanupLoop() {
	ticker := time.NewTicker(1 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-c.done:
			return
		case <-ticker.C:
			now := time.Now()
			c.data.Range(func(key, value interface{}) bool {
				entry := value.(*cacheEntry)
				if now.After(entry.expiresAt) {
					c.data.Delete(key)
				}
				return true
			})
		}
	}
}
