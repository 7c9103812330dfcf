package database

import (
	"vhp/internal/models"
	"vhp/pkg/logger"
)

// Migrate 执行数据库迁移
func Migrate() error {
	appLogger := logger.GetLogger()
	appLogger.Info("Starting database migration...")

	err := db.AutoMigrate(
		&models.Vendor{},
		&models.Role{},
		&models.DefaultPermissionGrant{},
		&models.Delegation{},
	)
	if err != nil {
		appLogger.Errorf("Database migration failed: %v", err)
		return err
	}

	// 同一对(delegator, delegate)最多一条ACTIVE委托，
	// 用部分唯一索引在存储层封死创建时的并发竞态
	err = db.Exec(`CREATE UNIQUE INDEX IF NOT EXISTS idx_delegations_active_pair
		ON delegations (delegator_id, delegate_id) WHERE status = 'ACTIVE'`).Error
	if err != nil {
		appLogger.Errorf("Failed to create active delegation pair index: %v", err)
		return err
	}

	appLogger.Info("Database migration completed successfully")
	return nil
}
