package models

import (
	"time"

	"gorm.io/datatypes"
)

// Delegation 权限委托模型
//
// delegator/delegate均为厂商业务键unique_id。状态机：
// ACTIVE → REVOKED（终态，仅委托人可触发）。过期不是写入的状态转换，
// 而是读取时的派生计算，见 IsActiveAt。
type Delegation struct {
	BaseModel
	DelegatorID          string                                    `json:"delegator_id" gorm:"not null;size:50;index:idx_delegations_pair"`
	DelegateID           string                                    `json:"delegate_id" gorm:"not null;size:50;index:idx_delegations_pair;index"`
	DelegationType       string                                    `json:"delegation_type" gorm:"not null;size:20"`
	DelegatedPermissions datatypes.JSONSlice[string]               `json:"delegated_permissions" gorm:"not null"`
	Scope                datatypes.JSONType[DelegationScope]       `json:"scope"`
	Conditions           datatypes.JSONType[DelegationConditions]  `json:"conditions"`
	StartDate            time.Time                                 `json:"start_date" gorm:"not null"`
	EndDate              *time.Time                                `json:"end_date"` // TEMPORARY必填，PERMANENT/CONDITIONAL可空
	Status               string                                    `json:"status" gorm:"not null;default:'ACTIVE';size:20;index"`
	AuditLog             datatypes.JSONSlice[DelegationAuditEntry] `json:"audit_log"`
}

// TableName 表名
func (d *Delegation) TableName() string {
	return "delegations"
}

// 委托类型常量
const (
	DelegationTypeTemporary   = "TEMPORARY"
	DelegationTypePermanent   = "PERMANENT"
	DelegationTypeConditional = "CONDITIONAL"
)

// 委托状态常量
const (
	DelegationStatusActive  = "ACTIVE"
	DelegationStatusRevoked = "REVOKED"
	DelegationStatusExpired = "EXPIRED"
)

// 审计动作常量
const (
	AuditActionCreated           = "DELEGATION_CREATED"
	AuditActionRevoked           = "DELEGATION_REVOKED"
	AuditActionConditionsUpdated = "CONDITIONS_UPDATED"
)

// IsValidDelegationType 校验委托类型取值
func IsValidDelegationType(delegationType string) bool {
	return delegationType == DelegationTypeTemporary ||
		delegationType == DelegationTypePermanent ||
		delegationType == DelegationTypeConditional
}

// DelegationScope 委托作用域：限定受托人可以行使权限的地域和功能模块
type DelegationScope struct {
	Regions []string `json:"regions,omitempty"`
	Cities  []string `json:"cities,omitempty"`
	Modules []string `json:"modules,omitempty"`
}

// IsEmpty 作用域是否为空（空作用域不做限制）
func (s DelegationScope) IsEmpty() bool {
	return len(s.Regions) == 0 && len(s.Cities) == 0 && len(s.Modules) == 0
}

// DelegationConditions 委托条件：全部为可选过滤器，空值表示该维度不限制
type DelegationConditions struct {
	AllowedLocalVendors  []string `json:"allowed_local_vendors,omitempty"`
	AllowedRegions       []string `json:"allowed_regions,omitempty"`
	AllowedCities        []string `json:"allowed_cities,omitempty"`
	MaxAmount            *float64 `json:"max_amount,omitempty"`
	RequiresApproval     *bool    `json:"requires_approval,omitempty"`
	TimeLimit            *string  `json:"time_limit,omitempty"`
	NotificationRequired *bool    `json:"notification_required,omitempty"`
}

// DelegationAuditEntry 委托审计记录（只追加）
type DelegationAuditEntry struct {
	Action      string    `json:"action"`
	PerformedBy string    `json:"performed_by"` // 操作人的厂商unique_id
	Details     string    `json:"details"`
	Timestamp   time.Time `json:"timestamp"`
}

// IsActiveAt 委托在指定时刻是否逻辑有效
//
// 过期是存储状态与endDate的纯函数：status为ACTIVE但endDate已过的
// 委托视为无效，所有读取点必须使用本函数而不是只看status字段。
func (d *Delegation) IsActiveAt(now time.Time) bool {
	if d.Status != DelegationStatusActive {
		return false
	}
	if d.EndDate != nil && !d.EndDate.After(now) {
		return false
	}
	return true
}

// HasPermission 委托是否包含指定能力路径
func (d *Delegation) HasPermission(path string) bool {
	for _, p := range d.DelegatedPermissions {
		if p == path {
			return true
		}
	}
	return false
}
