package models

import "gorm.io/datatypes"

// Role 角色模板模型
//
// 每个层级一份默认权限模板。模板创建后只被引用、不被修改，
// 厂商授权时按值拷贝permissions矩阵。
type Role struct {
	BaseModel
	RoleName               string                                `json:"role_name" gorm:"uniqueIndex;not null;size:100"`
	Level                  int                                   `json:"level" gorm:"not null;index"`
	Permissions            datatypes.JSONType[PermissionMatrix]  `json:"permissions" gorm:"not null"`
	CanDelegate            bool                                  `json:"can_delegate" gorm:"default:false"`
	DelegatablePermissions datatypes.JSONType[DelegatableMatrix] `json:"delegatable_permissions"`
}

// TableName 表名
func (r *Role) TableName() string {
	return "roles"
}
