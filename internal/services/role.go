package services

import (
	"errors"
	"unicode/utf8"

	"vhp/internal/models"
	apperrors "vhp/pkg/errors"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// RoleService 角色模板服务
type RoleService struct {
	db *gorm.DB
}

func NewRoleService(db *gorm.DB) *RoleService {
	return &RoleService{db: db}
}

// ========== 基础CRUD方法 ==========

// Create 创建角色模板
func (s *RoleService) Create(roleName string, level int, permissions models.PermissionMatrix, canDelegate bool, delegatablePermissions models.DelegatableMatrix) (*models.Role, error) {
	if err := s.ValidateCreateParams(roleName, level); err != nil {
		return nil, err
	}

	// 角色名称唯一
	var count int64
	s.db.Model(&models.Role{}).Where("role_name = ?", roleName).Count(&count)
	if count > 0 {
		return nil, apperrors.NewConflict("角色名称已存在")
	}

	role := &models.Role{
		RoleName:               roleName,
		Level:                  level,
		Permissions:            datatypes.NewJSONType(permissions),
		CanDelegate:            canDelegate,
		DelegatablePermissions: datatypes.NewJSONType(delegatablePermissions),
	}

	if err := s.db.Create(role).Error; err != nil {
		return nil, err
	}
	return role, nil
}

// GetByLevel 按层级查询角色模板
func (s *RoleService) GetByLevel(level int) (*models.Role, error) {
	var role models.Role
	err := s.db.Where("level = ?", level).First(&role).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.NewNotFound("该层级没有对应的角色模板")
	}
	if err != nil {
		return nil, err
	}
	return &role, nil
}

// GetByName 按名称查询角色模板
func (s *RoleService) GetByName(roleName string) (*models.Role, error) {
	var role models.Role
	err := s.db.Where("role_name = ?", roleName).First(&role).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.NewNotFound("角色不存在")
	}
	if err != nil {
		return nil, err
	}
	return &role, nil
}

// GetWithPage 分页查询角色模板
func (s *RoleService) GetWithPage(level int, page, pageSize int) ([]*models.Role, int64, error) {
	var roles []*models.Role
	var total int64

	query := s.db.Model(&models.Role{})
	if level > 0 {
		query = query.Where("level = ?", level)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	err := query.Offset(offset).Limit(pageSize).Find(&roles).Error
	if err != nil {
		return nil, 0, err
	}

	return roles, total, nil
}

// ========== 验证方法 ==========

// ValidateCreateParams 验证创建角色的参数
func (s *RoleService) ValidateCreateParams(roleName string, level int) error {
	runeCount := utf8.RuneCountInString(roleName)
	if runeCount < 2 || runeCount > 100 {
		return apperrors.NewInvalidArgument("角色名称长度必须在2-100个字符之间")
	}
	if !models.IsValidLevel(level) {
		return apperrors.NewInvalidArgument("层级必须在1-4之间")
	}
	return nil
}
