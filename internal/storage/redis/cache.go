// Package redis 提供基于 Redis 的邮件列表缓存。
//
// 多实例部署时共享缓存可以避免各实例各自打满上游配额；
// 缓存不可用时降级为未命中，绝不阻断读路径。
package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"postdrop/backend/internal/domain"
)

// MessageCache Redis 邮件列表缓存实现。
type MessageCache struct {
	client *goredis.Client
	ttl    time.Duration
	log    *zap.Logger
}

// NewMessageCache 创建 Redis 缓存实例并验证连接。
func NewMessageCache(addr, password string, db int, ttl time.Duration, log *zap.Logger) (*MessageCache, error) {
	client := goredis.NewClient(&goredis.Options{
		Addr:         addr,
		Password:     password,
		DB:           db,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolSize:     10,
		MinIdleConns: 2,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	if log == nil {
		log = zap.NewNop()
	}

	return &MessageCache{
		client: client,
		ttl:    ttl,
		log:    log,
	}, nil
}

func cacheKey(sessionToken string) string {
	return fmt.Sprintf("messages:%s", sessionToken)
}

// Get 获取缓存的邮件列表，任何 Redis 错误都降级为未命中。
func (c *MessageCache) Get(ctx context.Context, sessionToken string) ([]domain.Message, bool) {
	data, err := c.client.Get(ctx, cacheKey(sessionToken)).Result()
	if err != nil {
		if err != goredis.Nil {
			c.log.Warn("redis cache read failed", zap.Error(err))
		}
		return nil, false
	}

	var messages []domain.Message
	if err := json.Unmarshal([]byte(data), &messages); err != nil {
		c.log.Warn("redis cache entry corrupted", zap.Error(err))
		return nil, false
	}
	return messages, true
}

// Set 写入邮件列表，失败只记录日志。
func (c *MessageCache) Set(ctx context.Context, sessionToken string, messages []domain.Message) {
	data, err := json.Marshal(messages)
	if err != nil {
		c.log.Warn("redis cache marshal failed", zap.Error(err))
		return
	}
	if err := c.client.Set(ctx, cacheKey(sessionToken), data, c.ttl).Err(); err != nil {
		c.log.Warn("redis cache write failed", zap.Error(err))
	}
}

// Invalidate 删除指定会话的缓存。
func (c *MessageCache) Invalidate(ctx context.Context, sessionToken string) {
	if err := c.client.Del(ctx, cacheKey(sessionToken)).Err(); err != nil {
		c.log.Warn("redis cache delete failed", zap.Error(err))
	}
}

// Ping 测试 Redis 连接，供健康检查使用。
func (c *MessageCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

// Close 关闭 Redis 连接。
func (c *MessageCache) Close() error {
	return c.client.Close()
}
