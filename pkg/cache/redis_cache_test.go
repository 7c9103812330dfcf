package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type permissionView struct {
	AllPermissions []string `json:"all_permissions"`
}

func setupCache(t *testing.T) (*miniredis.Miniredis, *RedisCache) {
	t.Helper()

	server := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: server.Addr()})
	t.Cleanup(func() { client.Close() })
	return server, NewRedisCacheWithClient(client, "vhp:cache", time.Minute)
}

func TestEffectivePermissionsCacheRoundTrip(t *testing.T) {
	_, c := setupCache(t)
	ctx := context.Background()

	var out permissionView
	hit, err := c.GetEffectivePermissions(ctx, "SUPER001", &out)
	require.NoError(t, err)
	assert.False(t, hit)

	value := permissionView{AllPermissions: []string{"fleetManagement.canViewFleet"}}
	require.NoError(t, c.SetEffectivePermissions(ctx, "SUPER001", value, 0))

	hit, err = c.GetEffectivePermissions(ctx, "SUPER001", &out)
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, value.AllPermissions, out.AllPermissions)

	// 键按厂商隔离
	hit, err = c.GetEffectivePermissions(ctx, "OTHER", &out)
	require.NoError(t, err)
	assert.False(t, hit)
}

func TestEffectivePermissionsCacheInvalidate(t *testing.T) {
	_, c := setupCache(t)
	ctx := context.Background()

	value := permissionView{AllPermissions: []string{"reporting.canViewReports"}}
	require.NoError(t, c.SetEffectivePermissions(ctx, "A", value, 0))
	require.NoError(t, c.SetEffectivePermissions(ctx, "B", value, 0))

	require.NoError(t, c.InvalidateEffectivePermissions(ctx, "A", "B"))

	var out permissionView
	hit, err := c.GetEffectivePermissions(ctx, "A", &out)
	require.NoError(t, err)
	assert.False(t, hit)
	hit, err = c.GetEffectivePermissions(ctx, "B", &out)
	require.NoError(t, err)
	assert.False(t, hit)

	// 空ID列表是空操作
	require.NoError(t, c.InvalidateEffectivePermissions(ctx))
}

func TestEffectivePermissionsCacheExpiry(t *testing.T) {
	server, c := setupCache(t)
	ctx := context.Background()

	value := permissionView{AllPermissions: []string{"reporting.canViewReports"}}
	require.NoError(t, c.SetEffectivePermissions(ctx, "SUPER001", value, 0))

	server.FastForward(2 * time.Minute)

	var out permissionView
	hit, err := c.GetEffectivePermissions(ctx, "SUPER001", &out)
	require.NoError(t, err)
	assert.False(t, hit)
}

func TestEffectivePermissionsCacheCustomTTL(t *testing.T) {
	server, c := setupCache(t)
	ctx := context.Background()

	value := permissionView{AllPermissions: []string{"reporting.canViewReports"}}

	// 自定义寿命小于默认值时生效
	require.NoError(t, c.SetEffectivePermissions(ctx, "SHORT", value, 10*time.Second))
	assert.Equal(t, 10*time.Second, server.TTL(c.permissionKey("SHORT")))

	// 零值与超出默认的寿命都回落到默认值
	require.NoError(t, c.SetEffectivePermissions(ctx, "DEFAULT", value, 0))
	assert.Equal(t, time.Minute, server.TTL(c.permissionKey("DEFAULT")))
	require.NoError(t, c.SetEffectivePermissions(ctx, "LONG", value, time.Hour))
	assert.Equal(t, time.Minute, server.TTL(c.permissionKey("LONG")))
}

func TestEffectivePermissionsCacheCorruptValue(t *testing.T) {
	server, c := setupCache(t)
	ctx := context.Background()

	key := c.permissionKey("SUPER001")
	require.NoError(t, server.Set(key, "not-json"))

	// 损坏的缓存按未命中处理并清除脏数据
	var out permissionView
	hit, err := c.GetEffectivePermissions(ctx, "SUPER001", &out)
	require.NoError(t, err)
	assert.False(t, hit)
	assert.False(t, server.Exists(key))
}
