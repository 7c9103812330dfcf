package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"vhp/internal/models"
	"vhp/pkg/cache"
	apperrors "vhp/pkg/errors"
	"vhp/pkg/logger"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// DelegationService 委托引擎
//
// 独占Delegation集合的写入。委托生命周期：创建（ACTIVE）、撤销
// （终态REVOKED）、条件更新（不变更状态）、逻辑过期（读取时派生，
// 见 models.Delegation.IsActiveAt）。
type DelegationService struct {
	db    *gorm.DB
	cache *cache.RedisCache // 可为空，空时不做缓存失效
}

func NewDelegationService(db *gorm.DB, redisCache *cache.RedisCache) *DelegationService {
	return &DelegationService{db: db, cache: redisCache}
}

// 查询委托时的角色取值
const (
	DelegationRoleDelegator = "delegator"
	DelegationRoleDelegate  = "delegate"
)

// CreateDelegationParams 创建委托参数
type CreateDelegationParams struct {
	DelegatorID          string
	DelegateID           string
	DelegationType       string
	DelegatedPermissions []string
	Scope                models.DelegationScope
	Conditions           models.DelegationConditions
	StartDate            time.Time
	EndDate              *time.Time
}

// ========== 生命周期操作 ==========

// Create 创建委托
//
// 校验顺序：双方厂商存在 → 层级严格下级 → 地域包含 → 类型合法 →
// 日期区间合法 → 能力路径合法 → 作用域包含 → 同厂商对无重复ACTIVE
// 委托。每一步失败都带独立的错误类别短路返回。
func (s *DelegationService) Create(params CreateDelegationParams) (*models.Delegation, error) {
	var delegator, delegate models.Vendor
	err := s.db.Where("unique_id = ?", params.DelegatorID).First(&delegator).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.NewNotFound("委托厂商不存在")
	}
	if err != nil {
		return nil, err
	}
	err = s.db.Where("unique_id = ?", params.DelegateID).First(&delegate).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.NewNotFound("受托厂商不存在")
	}
	if err != nil {
		return nil, err
	}

	if err := validateHierarchyAndScope(&delegator, &delegate); err != nil {
		return nil, err
	}

	if !models.IsValidDelegationType(params.DelegationType) {
		return nil, apperrors.NewInvalidArgument("委托类型必须是TEMPORARY、PERMANENT或CONDITIONAL")
	}

	if params.DelegationType == models.DelegationTypeTemporary {
		if params.EndDate == nil {
			return nil, apperrors.NewInvalidArgument("TEMPORARY委托必须指定endDate")
		}
		if !params.EndDate.After(params.StartDate) {
			return nil, apperrors.NewInvalidArgument("endDate必须晚于startDate")
		}
	}
	if params.DelegationType == models.DelegationTypePermanent && params.EndDate != nil {
		return nil, apperrors.NewInvalidArgument("PERMANENT委托不能指定endDate")
	}

	if len(params.DelegatedPermissions) == 0 {
		return nil, apperrors.NewInvalidArgument("委托权限列表不能为空")
	}
	for _, path := range params.DelegatedPermissions {
		if !models.IsValidCapabilityPath(path) {
			return nil, apperrors.NewInvalidArgument("非法的能力路径: " + path)
		}
	}

	if err := validateScopeContainment(&delegator, params.Scope); err != nil {
		return nil, err
	}

	// 同一对厂商最多一条ACTIVE委托；部分唯一索引兜底并发创建
	var count int64
	s.db.Model(&models.Delegation{}).
		Where("delegator_id = ? AND delegate_id = ? AND status = ?",
			params.DelegatorID, params.DelegateID, models.DelegationStatusActive).
		Count(&count)
	if count > 0 {
		return nil, apperrors.NewConflict("该厂商对之间已存在有效委托")
	}

	delegation := &models.Delegation{
		DelegatorID:          params.DelegatorID,
		DelegateID:           params.DelegateID,
		DelegationType:       params.DelegationType,
		DelegatedPermissions: datatypes.NewJSONSlice(params.DelegatedPermissions),
		Scope:                datatypes.NewJSONType(params.Scope),
		Conditions:           datatypes.NewJSONType(params.Conditions),
		StartDate:            params.StartDate,
		EndDate:              params.EndDate,
		Status:               models.DelegationStatusActive,
		AuditLog: datatypes.NewJSONSlice([]models.DelegationAuditEntry{
			{
				Action:      models.AuditActionCreated,
				PerformedBy: params.DelegatorID,
				Details:     "Delegation created",
				Timestamp:   time.Now(),
			},
		}),
	}

	if err := s.db.Create(delegation).Error; err != nil {
		return nil, err
	}

	s.invalidateCache(params.DelegateID)
	return delegation, nil
}

// GetByID 按ID查询委托
func (s *DelegationService) GetByID(id uint) (*models.Delegation, error) {
	var delegation models.Delegation
	err := s.db.First(&delegation, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.NewNotFound("委托不存在")
	}
	if err != nil {
		return nil, err
	}
	return &delegation, nil
}

// Revoke 撤销委托
//
// 仅原委托人可撤销；只有ACTIVE状态可被撤销，REVOKED和EXPIRED
// 一律拒绝。撤销是终态转换。
func (s *DelegationService) Revoke(delegationID uint, requestingDelegatorID string) (*models.Delegation, error) {
	delegation, err := s.GetByID(delegationID)
	if err != nil {
		return nil, err
	}

	if delegation.DelegatorID != requestingDelegatorID {
		return nil, apperrors.NewForbidden("只有委托人可以撤销委托")
	}

	if delegation.Status != models.DelegationStatusActive {
		return nil, apperrors.NewInvalidArgument("只有ACTIVE状态的委托可以撤销")
	}

	delegation.Status = models.DelegationStatusRevoked
	delegation.AuditLog = append(delegation.AuditLog, models.DelegationAuditEntry{
		Action:      models.AuditActionRevoked,
		PerformedBy: requestingDelegatorID,
		Details:     "Delegation revoked by delegator",
		Timestamp:   time.Now(),
	})

	if err := s.db.Save(delegation).Error; err != nil {
		return nil, err
	}

	s.invalidateCache(delegation.DelegateID)
	return delegation, nil
}

// UpdateConditions 更新委托条件
//
// 与撤销相同的授权规则。浅合并：请求中出现的维度覆盖原值，
// 未出现的维度保留。不改变status和delegatedPermissions。
func (s *DelegationService) UpdateConditions(delegationID uint, requestingDelegatorID string, newConditions models.DelegationConditions) (*models.Delegation, error) {
	delegation, err := s.GetByID(delegationID)
	if err != nil {
		return nil, err
	}

	if delegation.DelegatorID != requestingDelegatorID {
		return nil, apperrors.NewForbidden("只有委托人可以更新委托条件")
	}

	merged := mergeConditions(delegation.Conditions.Data(), newConditions)
	delegation.Conditions = datatypes.NewJSONType(merged)
	delegation.AuditLog = append(delegation.AuditLog, models.DelegationAuditEntry{
		Action:      models.AuditActionConditionsUpdated,
		PerformedBy: requestingDelegatorID,
		Details:     "Delegation conditions updated",
		Timestamp:   time.Now(),
	})

	if err := s.db.Save(delegation).Error; err != nil {
		return nil, err
	}

	s.invalidateCache(delegation.DelegateID)
	return delegation, nil
}

// mergeConditions 条件浅合并：非nil的维度覆盖，nil的维度保留原值
func mergeConditions(current, next models.DelegationConditions) models.DelegationConditions {
	if next.AllowedLocalVendors != nil {
		current.AllowedLocalVendors = next.AllowedLocalVendors
	}
	if next.AllowedRegions != nil {
		current.AllowedRegions = next.AllowedRegions
	}
	if next.AllowedCities != nil {
		current.AllowedCities = next.AllowedCities
	}
	if next.MaxAmount != nil {
		current.MaxAmount = next.MaxAmount
	}
	if next.RequiresApproval != nil {
		current.RequiresApproval = next.RequiresApproval
	}
	if next.TimeLimit != nil {
		current.TimeLimit = next.TimeLimit
	}
	if next.NotificationRequired != nil {
		current.NotificationRequired = next.NotificationRequired
	}
	return current
}

// ========== 查询操作 ==========

// QueryActive 查询厂商作为指定角色的当前有效委托
//
// 逻辑过期过滤在查询时应用：endDate为空或严格大于当前时间。
func (s *DelegationService) QueryActive(vendorUniqueID, role string) ([]*models.Delegation, error) {
	var column string
	switch role {
	case DelegationRoleDelegator:
		column = "delegator_id"
	case DelegationRoleDelegate:
		column = "delegate_id"
	default:
		return nil, apperrors.NewInvalidArgument("type必须是delegator或delegate")
	}

	now := time.Now()
	var delegations []*models.Delegation
	err := s.db.
		Where(column+" = ? AND status = ?", vendorUniqueID, models.DelegationStatusActive).
		Where("end_date IS NULL OR end_date > ?", now).
		Find(&delegations).Error
	if err != nil {
		return nil, err
	}
	return delegations, nil
}

// History 查询厂商的委托历史，包含已撤销和已过期的记录
func (s *DelegationService) History(vendorUniqueID, direction string) ([]*models.Delegation, error) {
	query := s.db.Model(&models.Delegation{})
	switch direction {
	case "given":
		query = query.Where("delegator_id = ?", vendorUniqueID)
	case "received":
		query = query.Where("delegate_id = ?", vendorUniqueID)
	default:
		query = query.Where("delegator_id = ? OR delegate_id = ?", vendorUniqueID, vendorUniqueID)
	}

	var delegations []*models.Delegation
	err := query.Order("created_at DESC").Find(&delegations).Error
	if err != nil {
		return nil, err
	}
	return delegations, nil
}

// CanPerformAction 受托人能否对目标厂商执行指定动作
//
// 遍历受托人的当前有效委托，任意一条同时满足"包含该动作"和
// "目标通过全部非空条件过滤器"即放行；单条不满足只跳过该条，
// 不短路整个判定。全部遍历完仍无匹配则拒绝。
func (s *DelegationService) CanPerformAction(delegateID, action, targetVendorID string) (bool, error) {
	now := time.Now()
	var delegations []*models.Delegation
	err := s.db.
		Where("delegate_id = ? AND status = ?", delegateID, models.DelegationStatusActive).
		Where("end_date IS NULL OR end_date > ?", now).
		Find(&delegations).Error
	if err != nil {
		return false, err
	}

	var targetVendor *models.Vendor
	for _, delegation := range delegations {
		if !delegation.IsActiveAt(now) {
			continue
		}
		if !delegation.HasPermission(action) {
			continue
		}

		if targetVendor == nil {
			var vendor models.Vendor
			err := s.db.Where("unique_id = ?", targetVendorID).First(&vendor).Error
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return false, apperrors.NewNotFound("目标厂商不存在")
			}
			if err != nil {
				return false, err
			}
			targetVendor = &vendor
		}

		conditions := delegation.Conditions.Data()
		if len(conditions.AllowedLocalVendors) > 0 &&
			!containsString(conditions.AllowedLocalVendors, targetVendorID) {
			continue
		}
		if len(conditions.AllowedRegions) > 0 &&
			!containsString(conditions.AllowedRegions, targetVendor.RegionValue()) {
			continue
		}
		if len(conditions.AllowedCities) > 0 &&
			!containsString(conditions.AllowedCities, targetVendor.CityValue()) {
			continue
		}

		return true, nil
	}
	return false, nil
}

// ========== 过期清理 ==========

// SweepExpired 将endDate已过的ACTIVE委托批量置为EXPIRED
//
// 纯粹的存储整理：所有读取路径仍然按IsActiveAt的读取时语义过滤，
// 不依赖这里写入的状态。返回本次处理的记录数。
func (s *DelegationService) SweepExpired(now time.Time) (int64, error) {
	result := s.db.Model(&models.Delegation{}).
		Where("status = ? AND end_date IS NOT NULL AND end_date <= ?", models.DelegationStatusActive, now).
		Update("status", models.DelegationStatusExpired)
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}

// ========== 校验辅助 ==========

// validateHierarchyAndScope 层级与地域包含校验
//
// 受托人level必须严格大于委托人level。区域厂商只能委托同区域，
// 城市厂商只能委托同城市；一级厂商不受地域限制，四级厂商没有
// 更低层级可供校验。
func validateHierarchyAndScope(delegator, delegate *models.Vendor) error {
	if delegate.Level <= delegator.Level {
		return apperrors.NewInvalidHierarchy("受托厂商层级必须低于委托厂商")
	}

	switch delegator.Level {
	case models.LevelRegional:
		if delegator.Region == nil || delegate.Region == nil || *delegate.Region != *delegator.Region {
			return apperrors.NewInvalidScope("受托厂商必须与委托厂商同区域")
		}
	case models.LevelCity:
		if delegator.City == nil || delegate.City == nil || *delegate.City != *delegator.City {
			return apperrors.NewInvalidScope("受托厂商必须与委托厂商同城市")
		}
	}
	return nil
}

// validateScopeContainment 委托作用域必须落在委托人自身的地域内
func validateScopeContainment(delegator *models.Vendor, scope models.DelegationScope) error {
	if scope.IsEmpty() {
		return nil
	}

	if delegator.Level == models.LevelRegional && delegator.Region != nil {
		for _, region := range scope.Regions {
			if region != *delegator.Region {
				return apperrors.NewInvalidScope(fmt.Sprintf("作用域区域%s超出委托厂商的区域", region))
			}
		}
	}
	if delegator.Level == models.LevelCity && delegator.City != nil {
		for _, city := range scope.Cities {
			if city != *delegator.City {
				return apperrors.NewInvalidScope(fmt.Sprintf("作用域城市%s超出委托厂商的城市", city))
			}
		}
	}
	for _, module := range scope.Modules {
		if !containsString(matrixModules(), module) {
			return apperrors.NewInvalidArgument("作用域包含未知模块: " + module)
		}
	}
	return nil
}

// matrixModules 权限矩阵的模块名集合
func matrixModules() []string {
	seen := make(map[string]bool)
	var modules []string
	for _, path := range models.AllCapabilityPaths() {
		for i := 0; i < len(path); i++ {
			if path[i] == '.' {
				module := path[:i]
				if !seen[module] {
					seen[module] = true
					modules = append(modules, module)
				}
				break
			}
		}
	}
	return modules
}

func containsString(items []string, target string) bool {
	for _, item := range items {
		if item == target {
			return true
		}
	}
	return false
}

// invalidateCache 失效受托厂商的有效权限缓存
func (s *DelegationService) invalidateCache(vendorUniqueIDs ...string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.InvalidateEffectivePermissions(context.Background(), vendorUniqueIDs...); err != nil {
		logger.GetLogger().Warnf("失效权限缓存失败: %v", err)
	}
}
