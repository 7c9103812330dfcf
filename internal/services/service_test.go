package services

import (
	"fmt"
	"testing"
	"time"

	"vhp/internal/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// setupTestDB 为每个测试创建独立的内存数据库
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&models.Vendor{},
		&models.Role{},
		&models.DefaultPermissionGrant{},
		&models.Delegation{},
	))
	return db
}

// fullTestMatrix 所有能力位为true的权限矩阵
func fullTestMatrix() models.PermissionMatrix {
	var m models.PermissionMatrix
	for _, path := range models.AllCapabilityPaths() {
		m.Set(path, true)
	}
	return m
}

// fullTestDelegatable 所有可委托能力位为true的子集矩阵
func fullTestDelegatable() models.DelegatableMatrix {
	var d models.DelegatableMatrix
	for _, path := range models.AllCapabilityPaths() {
		// 子集形状之外的路径Set返回false，直接跳过
		d.Set(path, true)
	}
	return d
}

// seedRole 插入一个层级角色模板
func seedRole(t *testing.T, db *gorm.DB, name string, level int, permissions models.PermissionMatrix, canDelegate bool, delegatable models.DelegatableMatrix) *models.Role {
	t.Helper()

	role := &models.Role{
		RoleName:               name,
		Level:                  level,
		Permissions:            datatypes.NewJSONType(permissions),
		CanDelegate:            canDelegate,
		DelegatablePermissions: datatypes.NewJSONType(delegatable),
	}
	require.NoError(t, db.Create(role).Error)
	return role
}

// seedAllRoles 插入四个层级的角色模板，1-3级可委托全部子集能力
func seedAllRoles(t *testing.T, db *gorm.DB) {
	t.Helper()

	full := fullTestMatrix()
	delegatable := fullTestDelegatable()
	seedRole(t, db, "SUPER_VENDOR", models.LevelSuper, full, true, delegatable)
	seedRole(t, db, "REGIONAL_VENDOR", models.LevelRegional, full, true, delegatable)
	seedRole(t, db, "CITY_VENDOR", models.LevelCity, full, true, delegatable)

	var local models.PermissionMatrix
	local.Set("fleetManagement.canViewFleet", true)
	local.Set("bookingManagement.canViewBookings", true)
	seedRole(t, db, "LOCAL_VENDOR", models.LevelLocal, local, false, models.DelegatableMatrix{})
}

// seedVendor 直接插入厂商记录，绕过入驻校验
func seedVendor(t *testing.T, db *gorm.DB, uniqueID string, level int, region, city, parentID string) *models.Vendor {
	t.Helper()

	vendor := &models.Vendor{
		UniqueID: uniqueID,
		Name:     "厂商" + uniqueID,
		Email:    uniqueID + "@example.com",
		Level:    level,
		Status:   models.VendorStatusActive,
	}
	if region != "" {
		vendor.Region = &region
	}
	if city != "" {
		vendor.City = &city
	}
	if parentID != "" {
		vendor.ParentID = &parentID
	}
	require.NoError(t, vendor.SetPassword("Test@123"))
	require.NoError(t, db.Create(vendor).Error)
	return vendor
}

// seedHierarchy 构建四级标准链：SUPER001 → REG-NORTH → CITY-DEL → LOCAL-DEL1
func seedHierarchy(t *testing.T, db *gorm.DB) {
	t.Helper()

	seedVendor(t, db, "SUPER001", models.LevelSuper, "", "", "")
	seedVendor(t, db, "REG-NORTH", models.LevelRegional, "NORTH", "", "SUPER001")
	seedVendor(t, db, "CITY-DEL", models.LevelCity, "NORTH", "Delhi", "REG-NORTH")
	seedVendor(t, db, "LOCAL-DEL1", models.LevelLocal, "NORTH", "Delhi", "CITY-DEL")
}

func timePtr(v time.Time) *time.Time { return &v }
