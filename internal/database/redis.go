package database

import (
	"sync"
	"time"

	"vhp/pkg/cache"
	"vhp/pkg/config"
)

var (
	redisCacheInstance *cache.RedisCache
	redisCacheOnce     sync.Once
)

// GetRedisCache 获取Redis缓存的单例实例
func GetRedisCache() *cache.RedisCache {
	redisCacheOnce.Do(func() {
		cfg := config.GetConfig()
		ttl, err := time.ParseDuration(cfg.Redis.CacheTTL)
		if err != nil {
			ttl = 5 * time.Minute
		}
		redisCacheInstance = cache.NewRedisCache(&cache.Config{
			Host:     cfg.Redis.Host,
			Port:     cfg.Redis.Port,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
			Prefix:   cfg.Redis.Prefix,
			TTL:      ttl,
		})
	})
	return redisCacheInstance
}

// SetRedisCache 注入缓存实例（测试用）
func SetRedisCache(c *cache.RedisCache) {
	redisCacheInstance = c
	redisCacheOnce.Do(func() {})
}

// CloseRedisCache 关闭Redis连接
func CloseRedisCache() error {
	if redisCacheInstance != nil {
		return redisCacheInstance.Close()
	}
	return nil
}
