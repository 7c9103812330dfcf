package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

// RedisCache 有效权限缓存实现
type RedisCache struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// Config Redis配置
type Config struct {
	Host     string
	Port     int
	Password string
	DB       int
	Prefix   string
	TTL      time.Duration
}

// NewRedisCache 创建Redis缓存实例
func NewRedisCache(config *Config) *RedisCache {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", config.Host, config.Port),
		Password: config.Password,
		DB:       config.DB,
	})

	prefix := config.Prefix
	if prefix == "" {
		prefix = "vhp:cache"
	}

	ttl := config.TTL
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}

	return &RedisCache{
		client: client,
		prefix: prefix,
		ttl:    ttl,
	}
}

// NewRedisCacheWithClient 使用已有客户端创建缓存实例（测试用）
func NewRedisCacheWithClient(client *redis.Client, prefix string, ttl time.Duration) *RedisCache {
	if prefix == "" {
		prefix = "vhp:cache"
	}
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &RedisCache{client: client, prefix: prefix, ttl: ttl}
}

// Close 关闭Redis连接
func (c *RedisCache) Close() error {
	return c.client.Close()
}

// Ping 测试Redis连接
func (c *RedisCache) Ping() error {
	ctx := context.Background()
	return c.client.Ping(ctx).Err()
}

// permissionKey 有效权限缓存键
func (c *RedisCache) permissionKey(vendorUniqueID string) string {
	return fmt.Sprintf("%s:effective_permissions:%s", c.prefix, vendorUniqueID)
}

// GetEffectivePermissions 读取厂商有效权限缓存，未命中返回 (nil, false)
func (c *RedisCache) GetEffectivePermissions(ctx context.Context, vendorUniqueID string, out interface{}) (bool, error) {
	data, err := c.client.Get(ctx, c.permissionKey(vendorUniqueID)).Bytes()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal(data, out); err != nil {
		// 缓存内容损坏按未命中处理，同时删除脏数据
		c.client.Del(ctx, c.permissionKey(vendorUniqueID))
		return false, nil
	}
	return true, nil
}

// SetEffectivePermissions 写入厂商有效权限缓存
//
// ttl大于0时覆盖默认缓存寿命。委托带endDate时调用方必须用它压缩
// 寿命，缓存条目不能活过委托的逻辑过期时刻。
func (c *RedisCache) SetEffectivePermissions(ctx context.Context, vendorUniqueID string, value interface{}, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	if ttl <= 0 || ttl > c.ttl {
		ttl = c.ttl
	}
	return c.client.Set(ctx, c.permissionKey(vendorUniqueID), data, ttl).Err()
}

// InvalidateEffectivePermissions 失效厂商有效权限缓存
func (c *RedisCache) InvalidateEffectivePermissions(ctx context.Context, vendorUniqueIDs ...string) error {
	if len(vendorUniqueIDs) == 0 {
		return nil
	}
	keys := make([]string, 0, len(vendorUniqueIDs))
	for _, id := range vendorUniqueIDs {
		keys = append(keys, c.permissionKey(id))
	}
	return c.client.Del(ctx, keys...).Err()
}
