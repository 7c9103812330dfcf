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

// PermissionService 权限解析服务
//
// 负责默认权限授权的生命周期和有效权限计算：有效权限 = 角色默认
// 权限 ∪ 当前有效委托的权限。
type PermissionService struct {
	db    *gorm.DB
	cache *cache.RedisCache // 可为空，空时不启用缓存
}

func NewPermissionService(db *gorm.DB, redisCache *cache.RedisCache) *PermissionService {
	return &PermissionService{db: db, cache: redisCache}
}

// grantUpdateRetries 乐观锁冲突时的重试次数上限
const grantUpdateRetries = 3

// ========== 默认授权 ==========

// AssignDefaultRole 按层级为厂商分配默认权限
//
// 每个厂商只允许分配一次，重复分配返回Conflict。矩阵从角色模板
// 按值拷贝，不持有模板引用。
func (s *PermissionService) AssignDefaultRole(vendorUniqueID string, level int) (*models.DefaultPermissionGrant, error) {
	var vendor models.Vendor
	err := s.db.Where("unique_id = ?", vendorUniqueID).First(&vendor).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.NewNotFound("厂商不存在")
	}
	if err != nil {
		return nil, err
	}

	var count int64
	s.db.Model(&models.DefaultPermissionGrant{}).Where("vendor_unique_id = ?", vendorUniqueID).Count(&count)
	if count > 0 {
		return nil, apperrors.NewConflict("该厂商的默认权限已设置")
	}

	var role models.Role
	err = s.db.Where("level = ?", level).First(&role).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.NewNotFound("该层级没有对应的角色模板")
	}
	if err != nil {
		return nil, err
	}

	grant := &models.DefaultPermissionGrant{
		VendorUniqueID:     vendorUniqueID,
		VendorLevel:        level,
		GrantedPermissions: datatypes.NewJSONType(role.Permissions.Data()),
		PermissionHistory: datatypes.NewJSONSlice([]models.PermissionHistoryEntry{
			{
				GrantedBy:     vendorUniqueID,
				ChangeType:    models.ChangeTypeDefault,
				Permission:    "ALL",
				PreviousValue: false,
				NewValue:      true,
				Notes:         "按厂商层级设置初始权限",
				Timestamp:     time.Now(),
			},
		}),
		Version: 1,
	}

	if err := s.db.Create(grant).Error; err != nil {
		return nil, err
	}

	s.invalidateCache(vendorUniqueID)
	return grant, nil
}

// GetGrant 查询厂商的默认权限授权
func (s *PermissionService) GetGrant(vendorUniqueID string) (*models.DefaultPermissionGrant, error) {
	var grant models.DefaultPermissionGrant
	err := s.db.Where("vendor_unique_id = ?", vendorUniqueID).First(&grant).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.NewNotFound("该厂商没有权限记录")
	}
	if err != nil {
		return nil, err
	}
	return &grant, nil
}

// DeleteGrant 删除厂商的默认权限授权
func (s *PermissionService) DeleteGrant(vendorUniqueID string) error {
	result := s.db.Where("vendor_unique_id = ?", vendorUniqueID).Delete(&models.DefaultPermissionGrant{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return apperrors.NewNotFound("该厂商没有权限记录")
	}
	s.invalidateCache(vendorUniqueID)
	return nil
}

// UpdatePermissions 更新厂商的默认权限矩阵
//
// 逐能力位对比，只有发生变化的位才写入并追加一条历史。整体
// 使用版本号乐观锁，并发更新冲突时有限次重试，避免互相覆盖
// 对方的历史记录。返回更新后的授权和实际发生的变更列表。
func (s *PermissionService) UpdatePermissions(vendorUniqueID, changedBy string, next models.PermissionMatrix) (*models.DefaultPermissionGrant, []models.PermissionChange, error) {
	for attempt := 0; attempt < grantUpdateRetries; attempt++ {
		grant, err := s.GetGrant(vendorUniqueID)
		if err != nil {
			return nil, nil, err
		}

		current := grant.GrantedPermissions.Data()
		changes := current.Diff(&next)
		if len(changes) == 0 {
			// 无差异不落库、不写历史
			return grant, nil, nil
		}

		now := time.Now()
		history := []models.PermissionHistoryEntry(grant.PermissionHistory)
		for _, change := range changes {
			current.Set(change.Path, change.New)
			history = append(history, models.PermissionHistoryEntry{
				GrantedBy:     changedBy,
				ChangeType:    models.ChangeTypeDefault,
				Permission:    change.Path,
				PreviousValue: change.Previous,
				NewValue:      change.New,
				Notes:         fmt.Sprintf("Changed from %v to %v", change.Previous, change.New),
				Timestamp:     now,
			})
		}

		result := s.db.Model(&models.DefaultPermissionGrant{}).
			Where("vendor_unique_id = ? AND version = ?", vendorUniqueID, grant.Version).
			Updates(map[string]interface{}{
				"granted_permissions": datatypes.NewJSONType(current),
				"permission_history":  datatypes.NewJSONSlice(history),
				"version":             grant.Version + 1,
			})
		if result.Error != nil {
			return nil, nil, result.Error
		}
		if result.RowsAffected == 0 {
			// 版本冲突，重读重算
			continue
		}

		grant.GrantedPermissions = datatypes.NewJSONType(current)
		grant.PermissionHistory = datatypes.NewJSONSlice(history)
		grant.Version++
		s.invalidateCache(vendorUniqueID)
		return grant, changes, nil
	}
	return nil, nil, fmt.Errorf("权限更新冲突重试%d次后放弃", grantUpdateRetries)
}

// ========== 有效权限计算 ==========

// EffectivePermissions 有效权限视图：区分角色来源与委托来源
type EffectivePermissions struct {
	RolePermissions      []string `json:"role_permissions"`
	DelegatedPermissions []string `json:"delegated_permissions"`
	AllPermissions       []string `json:"all_permissions"`
}

// GetEffectivePermissions 计算厂商的有效权限
//
// 角色权限来自默认授权矩阵的true位；委托权限来自该厂商作为受托人
// 的全部当前有效委托的并集；allPermissions为两者的去重并集。
// 结果走Redis缓存，缓存不可用时直接回源计算。缓存寿命被最早到期
// 的委托endDate压缩，过期时刻之后不会再从缓存读到已失效的能力。
func (s *PermissionService) GetEffectivePermissions(ctx context.Context, vendorUniqueID string) (*EffectivePermissions, error) {
	if s.cache != nil {
		var cached EffectivePermissions
		hit, err := s.cache.GetEffectivePermissions(ctx, vendorUniqueID, &cached)
		if err != nil {
			logger.GetLogger().Warnf("读取权限缓存失败，回源计算: %v", err)
		} else if hit {
			return &cached, nil
		}
	}

	grant, err := s.GetGrant(vendorUniqueID)
	if err != nil {
		return nil, err
	}

	matrix := grant.GrantedPermissions.Data()
	rolePermissions := matrix.Flatten()

	now := time.Now()
	delegated, expiresAt, err := s.activeDelegatedPermissions(vendorUniqueID, now)
	if err != nil {
		return nil, err
	}

	result := &EffectivePermissions{
		RolePermissions:      rolePermissions,
		DelegatedPermissions: delegated,
		AllPermissions:       unionCapabilityPaths(rolePermissions, delegated),
	}

	if s.cache != nil {
		var ttl time.Duration
		if expiresAt != nil {
			ttl = expiresAt.Sub(now)
		}
		if expiresAt == nil || ttl > 0 {
			if err := s.cache.SetEffectivePermissions(ctx, vendorUniqueID, result, ttl); err != nil {
				logger.GetLogger().Warnf("写入权限缓存失败: %v", err)
			}
		}
	}
	return result, nil
}

// activeDelegatedPermissions 该厂商作为受托人的当前有效委托权限并集
//
// 第二个返回值是参与计算的委托中最早的endDate（全部无期限时为nil），
// 调用方用它限制缓存条目的存活时间。
func (s *PermissionService) activeDelegatedPermissions(vendorUniqueID string, now time.Time) ([]string, *time.Time, error) {
	var delegations []*models.Delegation
	err := s.db.
		Where("delegate_id = ? AND status = ?", vendorUniqueID, models.DelegationStatusActive).
		Where("end_date IS NULL OR end_date > ?", now).
		Find(&delegations).Error
	if err != nil {
		return nil, nil, err
	}

	seen := make(map[string]bool)
	var earliestEnd *time.Time
	for _, d := range delegations {
		// 查询条件已过滤，IsActiveAt再兜底一次读取时语义
		if !d.IsActiveAt(now) {
			continue
		}
		for _, p := range d.DelegatedPermissions {
			seen[p] = true
		}
		if d.EndDate != nil && (earliestEnd == nil || d.EndDate.Before(*earliestEnd)) {
			earliestEnd = d.EndDate
		}
	}

	var result []string
	for _, path := range models.AllCapabilityPaths() {
		if seen[path] {
			result = append(result, path)
		}
	}
	return result, earliestEnd, nil
}

// unionCapabilityPaths 求两组能力路径的去重并集，顺序与矩阵形状一致
func unionCapabilityPaths(a, b []string) []string {
	seen := make(map[string]bool, len(a)+len(b))
	for _, p := range a {
		seen[p] = true
	}
	for _, p := range b {
		seen[p] = true
	}

	var result []string
	for _, path := range models.AllCapabilityPaths() {
		if seen[path] {
			result = append(result, path)
		}
	}
	return result
}

// HasPermission 厂商是否拥有指定能力（角色或委托来源均可）
func (s *PermissionService) HasPermission(ctx context.Context, vendorUniqueID, capabilityPath string) (bool, error) {
	if !models.IsValidCapabilityPath(capabilityPath) {
		return false, apperrors.NewInvalidArgument("非法的能力路径: " + capabilityPath)
	}

	effective, err := s.GetEffectivePermissions(ctx, vendorUniqueID)
	if err != nil {
		return false, err
	}
	for _, p := range effective.AllPermissions {
		if p == capabilityPath {
			return true, nil
		}
	}
	return false, nil
}

// ========== 委托资格校验 ==========

// CanDelegatePermission 厂商是否可以委托指定能力
//
// 要求厂商所属层级的角色模板canDelegate为true，且该能力出现在
// 模板的可委托子集中并为true。
func (s *PermissionService) CanDelegatePermission(vendorUniqueID, capabilityPath string) (bool, error) {
	grant, err := s.GetGrant(vendorUniqueID)
	if err != nil {
		return false, err
	}

	var role models.Role
	err = s.db.Where("level = ?", grant.VendorLevel).First(&role).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, apperrors.NewNotFound("该层级没有对应的角色模板")
	}
	if err != nil {
		return false, err
	}

	if !role.CanDelegate {
		return false, nil
	}

	delegatable := role.DelegatablePermissions.Data()
	allowed, ok := delegatable.Get(capabilityPath)
	if !ok {
		// 不在可委托子集形状内的能力一律不可委托
		return false, nil
	}
	return allowed, nil
}

// ValidateDelegationRequest 校验一次委托请求
//
// 组合层级/地域校验与逐能力的可委托性校验；遇到第一个不可委托的
// 能力即失败并在消息中点名。
func (s *PermissionService) ValidateDelegationRequest(delegatorID, delegateID string, capabilityPaths []string) error {
	var delegator, delegate models.Vendor
	err := s.db.Where("unique_id = ?", delegatorID).First(&delegator).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperrors.NewNotFound("委托厂商不存在")
	}
	if err != nil {
		return err
	}
	err = s.db.Where("unique_id = ?", delegateID).First(&delegate).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperrors.NewNotFound("受托厂商不存在")
	}
	if err != nil {
		return err
	}

	if err := validateHierarchyAndScope(&delegator, &delegate); err != nil {
		return err
	}

	for _, path := range capabilityPaths {
		if !models.IsValidCapabilityPath(path) {
			return apperrors.NewInvalidArgument("非法的能力路径: " + path)
		}
		ok, err := s.CanDelegatePermission(delegatorID, path)
		if err != nil {
			return err
		}
		if !ok {
			return apperrors.NewPermissionDenied("该能力不可委托: " + path)
		}
	}
	return nil
}

// invalidateCache 失效厂商的有效权限缓存
func (s *PermissionService) invalidateCache(vendorUniqueIDs ...string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.InvalidateEffectivePermissions(context.Background(), vendorUniqueIDs...); err != nil {
		logger.GetLogger().Warnf("失效权限缓存失败: %v", err)
	}
}
