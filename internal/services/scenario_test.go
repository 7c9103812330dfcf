package services

import (
	"context"
	"testing"
	"time"

	"vhp/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// 完整业务流：入驻 → 默认授权 → 委托 → 有效权限 → 撤销 → 有效权限回退
func TestDelegationLifecycleEndToEnd(t *testing.T) {
	db := setupTestDB(t)
	vendorService := NewVendorService(db)
	permissionService := NewPermissionService(db, nil)
	delegationService := NewDelegationService(db, nil)
	seedAllRoles(t, db)

	ctx := context.Background()

	// 逐级入驻
	_, err := vendorService.Create(CreateVendorParams{
		UniqueID: "SUPER001", Name: "平台总部", Email: "super@example.com",
		Password: "Super@123", Level: models.LevelSuper,
	})
	require.NoError(t, err)
	_, err = vendorService.Create(CreateVendorParams{
		UniqueID: "REG-NORTH", Name: "北区", Email: "north@example.com",
		Password: "North@123", Level: models.LevelRegional, Region: "NORTH",
		ParentID: "SUPER001",
	})
	require.NoError(t, err)
	_, err = vendorService.Create(CreateVendorParams{
		UniqueID: "CITY-DEL", Name: "德里", Email: "delhi@example.com",
		Password: "Delhi@123", Level: models.LevelCity, Region: "NORTH", City: "Delhi",
		ParentID: "REG-NORTH",
	})
	require.NoError(t, err)
	_, err = vendorService.Create(CreateVendorParams{
		UniqueID: "LOCAL-DEL1", Name: "德里一号", Email: "local1@example.com",
		Password: "Local@123", Level: models.LevelLocal, Region: "NORTH", City: "Delhi",
		ParentID: "CITY-DEL",
	})
	require.NoError(t, err)

	// 按层级分配默认权限
	for _, v := range []struct {
		id    string
		level int
	}{
		{"SUPER001", models.LevelSuper},
		{"CITY-DEL", models.LevelCity},
		{"LOCAL-DEL1", models.LevelLocal},
	} {
		_, err := permissionService.AssignDefaultRole(v.id, v.level)
		require.NoError(t, err)
	}

	// 委托前本地厂商没有司机入职能力
	has, err := permissionService.HasPermission(ctx, "LOCAL-DEL1", "driverManagement.canOnboardDrivers")
	require.NoError(t, err)
	assert.False(t, has)

	// 城市厂商先预校验再委托
	perms := []string{"driverManagement.canOnboardDrivers", "driverManagement.canVerifyDrivers"}
	require.NoError(t, permissionService.ValidateDelegationRequest("CITY-DEL", "LOCAL-DEL1", perms))

	delegation, err := delegationService.Create(CreateDelegationParams{
		DelegatorID:          "CITY-DEL",
		DelegateID:           "LOCAL-DEL1",
		DelegationType:       models.DelegationTypeTemporary,
		DelegatedPermissions: perms,
		Scope:                models.DelegationScope{Cities: []string{"Delhi"}},
		StartDate:            time.Now(),
		EndDate:              timePtr(time.Now().Add(30 * 24 * time.Hour)),
	})
	require.NoError(t, err)

	// 委托生效后能力立即可见
	has, err = permissionService.HasPermission(ctx, "LOCAL-DEL1", "driverManagement.canOnboardDrivers")
	require.NoError(t, err)
	assert.True(t, has)

	effective, err := permissionService.GetEffectivePermissions(ctx, "LOCAL-DEL1")
	require.NoError(t, err)
	assert.Equal(t, perms, effective.DelegatedPermissions)

	// 受托人有效委托可查
	active, err := delegationService.QueryActive("LOCAL-DEL1", DelegationRoleDelegate)
	require.NoError(t, err)
	require.Len(t, active, 1)

	// 撤销后能力立即回收
	_, err = delegationService.Revoke(delegation.ID, "CITY-DEL")
	require.NoError(t, err)

	has, err = permissionService.HasPermission(ctx, "LOCAL-DEL1", "driverManagement.canOnboardDrivers")
	require.NoError(t, err)
	assert.False(t, has)

	active, err = delegationService.QueryActive("LOCAL-DEL1", DelegationRoleDelegate)
	require.NoError(t, err)
	assert.Empty(t, active)

	// 历史仍保留完整记录
	history, err := delegationService.History("LOCAL-DEL1", "received")
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, models.DelegationStatusRevoked, history[0].Status)
}

// 过期委托不进入有效权限，即使status尚未被清理任务处理
func TestExpiredDelegationExcludedFromEffective(t *testing.T) {
	db := setupTestDB(t)
	permissionService := NewPermissionService(db, nil)
	delegationService := NewDelegationService(db, nil)
	seedAllRoles(t, db)
	seedHierarchy(t, db)

	_, err := permissionService.AssignDefaultRole("LOCAL-DEL1", models.LevelLocal)
	require.NoError(t, err)

	delegation, err := delegationService.Create(CreateDelegationParams{
		DelegatorID:          "CITY-DEL",
		DelegateID:           "LOCAL-DEL1",
		DelegationType:       models.DelegationTypeTemporary,
		DelegatedPermissions: []string{"driverManagement.canOnboardDrivers"},
		StartDate:            time.Now().Add(-48 * time.Hour),
		EndDate:              timePtr(time.Now().Add(time.Hour)),
	})
	require.NoError(t, err)

	ctx := context.Background()
	has, err := permissionService.HasPermission(ctx, "LOCAL-DEL1", "driverManagement.canOnboardDrivers")
	require.NoError(t, err)
	assert.True(t, has)

	// endDate回拨到过去，status仍为ACTIVE
	require.NoError(t, db.Model(delegation).Update("end_date", time.Now().Add(-time.Hour)).Error)

	has, err = permissionService.HasPermission(ctx, "LOCAL-DEL1", "driverManagement.canOnboardDrivers")
	require.NoError(t, err)
	assert.False(t, has)

	effective, err := permissionService.GetEffectivePermissions(ctx, "LOCAL-DEL1")
	require.NoError(t, err)
	assert.Empty(t, effective.DelegatedPermissions)
}
