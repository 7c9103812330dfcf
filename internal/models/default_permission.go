package models

import (
	"time"

	"gorm.io/datatypes"
)

// DefaultPermissionGrant 厂商默认权限授权
//
// 每个厂商有且仅有一条（vendor_unique_id唯一约束）。grantedPermissions
// 在分配时从角色模板按值拷贝，之后只通过显式的权限更新操作修改，
// 每次修改按能力位逐条追加历史。
type DefaultPermissionGrant struct {
	BaseModel
	VendorUniqueID     string                                         `json:"vendor_unique_id" gorm:"uniqueIndex;not null;size:50"`
	VendorLevel        int                                            `json:"vendor_level" gorm:"not null;index"`
	GrantedPermissions datatypes.JSONType[PermissionMatrix]           `json:"granted_permissions" gorm:"not null"`
	PermissionHistory  datatypes.JSONSlice[PermissionHistoryEntry]    `json:"permission_history"`
	Version            uint                                           `json:"version" gorm:"not null;default:1"` // 乐观锁版本号
}

// TableName 表名
func (g *DefaultPermissionGrant) TableName() string {
	return "default_permission_grants"
}

// 历史记录变更类型常量
const (
	ChangeTypeDefault   = "DEFAULT"
	ChangeTypeDelegated = "DELEGATED"
	ChangeTypeRevoked   = "REVOKED"
)

// PermissionHistoryEntry 权限变更历史记录（只追加）
type PermissionHistoryEntry struct {
	GrantedBy     string    `json:"granted_by"` // 操作人的厂商unique_id
	ChangeType    string    `json:"change_type"`
	Permission    string    `json:"permission"` // "module.capability" 或 "ALL"
	PreviousValue bool      `json:"previous_value"`
	NewValue      bool      `json:"new_value"`
	Notes         string    `json:"notes"`
	Timestamp     time.Time `json:"timestamp"`
}
