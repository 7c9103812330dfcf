package database

import (
	"fmt"
	"sync"

	"vhp/pkg/config"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

var (
	db     *gorm.DB
	dbOnce sync.Once
	dbErr  error
)

// Initialize 初始化数据库连接
func Initialize(cfg *config.Config) error {
	dbOnce.Do(func() {
		dsn := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
			cfg.Database.Host, cfg.Database.Port, cfg.Database.User,
			cfg.Database.Password, cfg.Database.DBName, cfg.Database.SSLMode)

		gormDB, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
			Logger: gormlogger.Default.LogMode(gormlogger.Silent),
		})
		if err != nil {
			dbErr = fmt.Errorf("连接数据库失败: %v", err)
			return
		}

		// 配置连接池
		sqlDB, err := gormDB.DB()
		if err != nil {
			dbErr = fmt.Errorf("获取数据库实例失败: %v", err)
			return
		}
		sqlDB.SetMaxOpenConns(20)
		sqlDB.SetMaxIdleConns(5)

		db = gormDB
	})
	return dbErr
}

// GetDB 获取数据库实例
func GetDB() *gorm.DB {
	return db
}

// SetDB 注入数据库实例（测试用）
func SetDB(gormDB *gorm.DB) {
	db = gormDB
}

// Close 关闭数据库连接
func Close() error {
	if db == nil {
		return nil
	}
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
