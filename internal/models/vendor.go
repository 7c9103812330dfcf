package models

import (
	"golang.org/x/crypto/bcrypt"
)

// Vendor 厂商模型
//
// 层级引用使用业务键 unique_id，而不是存储主键。
type Vendor struct {
	BaseModel
	UniqueID     string  `json:"unique_id" gorm:"uniqueIndex;not null;size:50"`
	Name         string  `json:"name" gorm:"not null;size:100"`
	Email        string  `json:"email" gorm:"unique;not null;size:100;index"`
	PasswordHash string  `json:"-" gorm:"not null;size:255"`
	Phone        string  `json:"phone" gorm:"size:20"`
	Address      string  `json:"address" gorm:"size:255"`
	Level        int     `json:"level" gorm:"not null;index:idx_vendors_level_region;index:idx_vendors_level_city"`
	Region       *string `json:"region" gorm:"size:20;index:idx_vendors_level_region"`
	City         *string `json:"city" gorm:"size:100;index:idx_vendors_level_city"`
	Locality     *string `json:"locality" gorm:"size:100"`
	Status       string  `json:"status" gorm:"default:'ACTIVE';size:20"`
	ParentID     *string `json:"parent_id" gorm:"size:50;index"` // 上级厂商的unique_id，仅一级厂商为空
}

// TableName 表名
func (v *Vendor) TableName() string {
	return "vendors"
}

// 厂商层级常量：数字越小权限越高
const (
	LevelSuper    = 1 // 超级厂商
	LevelRegional = 2 // 区域厂商
	LevelCity     = 3 // 城市厂商
	LevelLocal    = 4 // 本地厂商
)

// 厂商状态常量
const (
	VendorStatusActive    = "ACTIVE"
	VendorStatusInactive  = "INACTIVE"
	VendorStatusSuspended = "SUSPENDED"
)

// 区域常量
const (
	RegionNorth   = "NORTH"
	RegionSouth   = "SOUTH"
	RegionEast    = "EAST"
	RegionWest    = "WEST"
	RegionCentral = "CENTRAL"
)

// ValidRegions 合法区域集合
var ValidRegions = []string{RegionNorth, RegionSouth, RegionEast, RegionWest, RegionCentral}

// IsValidLevel 校验层级取值
func IsValidLevel(level int) bool {
	return level >= LevelSuper && level <= LevelLocal
}

// IsValidRegion 校验区域取值
func IsValidRegion(region string) bool {
	for _, r := range ValidRegions {
		if r == region {
			return true
		}
	}
	return false
}

// IsValidVendorStatus 校验厂商状态取值
func IsValidVendorStatus(status string) bool {
	return status == VendorStatusActive || status == VendorStatusInactive || status == VendorStatusSuspended
}

// SetPassword 设置密码 - 数据操作方法
func (v *Vendor) SetPassword(password string) error {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	v.PasswordHash = string(hashedPassword)
	return nil
}

// CheckPassword 验证密码 - 数据操作方法
func (v *Vendor) CheckPassword(password string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(v.PasswordHash), []byte(password))
	return err == nil
}

// RegionValue 读取区域值，空指针返回空串
func (v *Vendor) RegionValue() string {
	if v.Region == nil {
		return ""
	}
	return *v.Region
}

// CityValue 读取城市值，空指针返回空串
func (v *Vendor) CityValue() string {
	if v.City == nil {
		return ""
	}
	return *v.City
}
