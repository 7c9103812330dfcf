package main

import (
	"fmt"
	"vhp/internal/database"
	"vhp/internal/models"
	"vhp/internal/services"
	"vhp/pkg/logger"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// seedData 初始化种子数据
func seedData() error {
	appLogger := logger.GetLogger()
	appLogger.Info("Starting seed data initialization...")

	db := database.GetDB()

	// 1. 创建各层级默认角色模板
	if err := createDefaultRoles(db); err != nil {
		return fmt.Errorf("创建默认角色模板失败: %v", err)
	}

	// 2. 创建默认超级厂商
	if err := createDefaultSuperVendor(db); err != nil {
		return fmt.Errorf("创建默认超级厂商失败: %v", err)
	}

	appLogger.Info("Seed data initialization completed successfully")
	return nil
}

// fullMatrix 返回所有能力位为true的权限矩阵
func fullMatrix() models.PermissionMatrix {
	var m models.PermissionMatrix
	for _, path := range models.AllCapabilityPaths() {
		m.Set(path, true)
	}
	return m
}

// fullDelegatableMatrix 返回所有可委托能力位为true的子集矩阵
func fullDelegatableMatrix() models.DelegatableMatrix {
	return models.DelegatableMatrix{
		FleetManagement: models.DelegatableFleetPermissions{
			CanManageFleet: true, CanViewFleet: true, CanAddVehicles: true,
		},
		DriverManagement: models.DelegatableDriverPermissions{
			CanOnboardDrivers: true, CanVerifyDrivers: true, CanViewDrivers: true,
		},
		BookingManagement: models.DelegatableBookingPermissions{
			CanCreateBookings: true, CanViewBookings: true,
		},
		PaymentManagement: models.DelegatablePaymentPermissions{
			CanProcessPayments: true, CanViewPayments: true,
		},
		ComplianceManagement: models.DelegatableCompliancePermissions{
			CanTrackCompliance: true, CanViewComplianceReports: true,
		},
	}
}

// regionalMatrix 区域厂商默认权限
func regionalMatrix() models.PermissionMatrix {
	m := fullMatrix()
	// 支付处理与资金类操作保留在超级厂商
	m.Set("paymentManagement.canProcessPayments", false)
	return m
}

// cityMatrix 城市厂商默认权限
func cityMatrix() models.PermissionMatrix {
	return models.PermissionMatrix{
		FleetManagement: models.FleetManagementPermissions{
			CanManageFleet: true, CanViewFleet: true, CanAddVehicles: true,
			CanUpdateVehicleDetails: true,
		},
		DriverManagement: models.DriverManagementPermissions{
			CanOnboardDrivers: true, CanVerifyDrivers: true, CanViewDrivers: true,
			CanUpdateDriverDetails: true,
		},
		BookingManagement: models.BookingManagementPermissions{
			CanCreateBookings: true, CanViewBookings: true, CanUpdateBookings: true,
			CanCancelBookings: true,
		},
		PaymentManagement: models.PaymentManagementPermissions{
			CanViewPayments: true,
		},
		ComplianceManagement: models.ComplianceManagementPermissions{
			CanTrackCompliance: true, CanViewComplianceReports: true,
		},
		VendorManagement: models.VendorManagementPermissions{
			CanManageSubVendors: true, CanViewSubVendors: true,
			CanCreateSubVendors: true, CanUpdateSubVendorDetails: true,
		},
		Reporting: models.ReportingPermissions{
			CanViewReports: true, CanGenerateReports: true,
		},
	}
}

// cityDelegatableMatrix 城市厂商可向本地厂商委托的能力
func cityDelegatableMatrix() models.DelegatableMatrix {
	return models.DelegatableMatrix{
		FleetManagement: models.DelegatableFleetPermissions{
			CanViewFleet: true, CanAddVehicles: true,
		},
		DriverManagement: models.DelegatableDriverPermissions{
			CanOnboardDrivers: true, CanViewDrivers: true,
		},
		BookingManagement: models.DelegatableBookingPermissions{
			CanCreateBookings: true, CanViewBookings: true,
		},
		PaymentManagement: models.DelegatablePaymentPermissions{
			CanViewPayments: true,
		},
		ComplianceManagement: models.DelegatableCompliancePermissions{
			CanViewComplianceReports: true,
		},
	}
}

// localMatrix 本地厂商默认权限
func localMatrix() models.PermissionMatrix {
	return models.PermissionMatrix{
		FleetManagement: models.FleetManagementPermissions{
			CanViewFleet: true,
		},
		DriverManagement: models.DriverManagementPermissions{
			CanViewDrivers: true,
		},
		BookingManagement: models.BookingManagementPermissions{
			CanCreateBookings: true, CanViewBookings: true,
		},
		ComplianceManagement: models.ComplianceManagementPermissions{
			CanTrackCompliance: true,
		},
		Reporting: models.ReportingPermissions{
			CanViewReports: true,
		},
	}
}

// createDefaultRoles 创建四个层级的默认角色模板
func createDefaultRoles(db *gorm.DB) error {
	defaultRoles := []models.Role{
		{
			RoleName:               "SUPER_VENDOR",
			Level:                  models.LevelSuper,
			Permissions:            datatypes.NewJSONType(fullMatrix()),
			CanDelegate:            true,
			DelegatablePermissions: datatypes.NewJSONType(fullDelegatableMatrix()),
		},
		{
			RoleName:               "REGIONAL_VENDOR",
			Level:                  models.LevelRegional,
			Permissions:            datatypes.NewJSONType(regionalMatrix()),
			CanDelegate:            true,
			DelegatablePermissions: datatypes.NewJSONType(fullDelegatableMatrix()),
		},
		{
			RoleName:               "CITY_VENDOR",
			Level:                  models.LevelCity,
			Permissions:            datatypes.NewJSONType(cityMatrix()),
			CanDelegate:            true,
			DelegatablePermissions: datatypes.NewJSONType(cityDelegatableMatrix()),
		},
		{
			RoleName:               "LOCAL_VENDOR",
			Level:                  models.LevelLocal,
			Permissions:            datatypes.NewJSONType(localMatrix()),
			CanDelegate:            false,
			DelegatablePermissions: datatypes.NewJSONType(models.DelegatableMatrix{}),
		},
	}

	for _, role := range defaultRoles {
		var count int64
		db.Model(&models.Role{}).Where("role_name = ?", role.RoleName).Count(&count)
		if count > 0 {
			continue
		}
		if err := db.Create(&role).Error; err != nil {
			return fmt.Errorf("创建角色 %s 失败: %v", role.RoleName, err)
		}
	}

	logger.GetLogger().Info("默认角色模板初始化完成")
	return nil
}

// createDefaultSuperVendor 创建默认超级厂商并授予层级默认权限
func createDefaultSuperVendor(db *gorm.DB) error {
	var count int64
	db.Model(&models.Vendor{}).Where("unique_id = ?", "SUPER001").Count(&count)
	if count > 0 {
		logger.GetLogger().Info("默认超级厂商已存在，跳过创建")
		return nil
	}

	vendor := &models.Vendor{
		UniqueID: "SUPER001",
		Name:     "平台总部",
		Email:    "super@example.com",
		Level:    models.LevelSuper,
		Status:   models.VendorStatusActive,
	}

	// 设置密码
	if err := vendor.SetPassword("Super@123"); err != nil {
		return fmt.Errorf("设置密码失败: %v", err)
	}

	if err := db.Create(vendor).Error; err != nil {
		return err
	}

	// 授予层级默认权限
	permissionService := services.NewPermissionService(db, database.GetRedisCache())
	if _, err := permissionService.AssignDefaultRole(vendor.UniqueID, vendor.Level); err != nil {
		return fmt.Errorf("分配默认角色失败: %v", err)
	}

	logger.GetLogger().Infof("默认超级厂商创建成功 - 编号: SUPER001, 密码: Super@123")
	return nil
}
