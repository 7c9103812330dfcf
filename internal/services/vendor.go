package services

import (
	"errors"
	"fmt"
	"strings"

	"vhp/internal/models"
	apperrors "vhp/pkg/errors"
	"vhp/pkg/jwt"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// VendorService 厂商目录服务
type VendorService struct {
	db *gorm.DB
}

func NewVendorService(db *gorm.DB) *VendorService {
	return &VendorService{db: db}
}

// CreateVendorParams 厂商入驻参数
type CreateVendorParams struct {
	UniqueID string
	Name     string
	Email    string
	Password string
	Phone    string
	Address  string
	Level    int
	Region   string
	City     string
	Locality string
	ParentID string // 上级厂商unique_id，一级厂商为空
}

// ========== 基础CRUD方法 ==========

// Create 厂商入驻
//
// 层级不变量：非根厂商的level必须严格大于上级的level；二级厂商的
// 区域必须与上级一致（上级有区域时）；城市级厂商在有城市作用域的
// 上级之下时城市必须一致。
func (s *VendorService) Create(params CreateVendorParams) (*models.Vendor, error) {
	if params.Name == "" || params.Email == "" || params.Password == "" {
		return nil, apperrors.NewInvalidArgument("名称、邮箱和密码为必填项")
	}
	if !models.IsValidLevel(params.Level) {
		return nil, apperrors.NewInvalidArgument("层级必须在1-4之间")
	}
	if params.Region != "" && !models.IsValidRegion(strings.ToUpper(params.Region)) {
		return nil, apperrors.NewInvalidArgument("非法的区域取值")
	}

	var parent *models.Vendor
	if params.Level == models.LevelSuper {
		if params.ParentID != "" {
			return nil, apperrors.NewInvalidHierarchy("超级厂商不能有上级厂商")
		}
	} else {
		if params.ParentID == "" {
			return nil, apperrors.NewInvalidHierarchy("非超级厂商必须指定上级厂商")
		}
		found, err := s.GetByUniqueID(params.ParentID)
		if err != nil {
			return nil, err
		}
		parent = found

		// 子级level必须严格大于上级level
		if params.Level <= parent.Level {
			return nil, apperrors.NewInvalidHierarchy("下级厂商层级必须低于上级厂商")
		}

		// 地域包含约束
		if params.Level == models.LevelRegional && parent.Region != nil &&
			!strings.EqualFold(params.Region, *parent.Region) {
			return nil, apperrors.NewInvalidScope("区域厂商必须与上级厂商同区域")
		}
		if params.Level == models.LevelCity && parent.City != nil &&
			params.City != *parent.City {
			return nil, apperrors.NewInvalidScope("城市厂商必须与上级厂商同城市")
		}
	}

	uniqueID := params.UniqueID
	if uniqueID == "" {
		uniqueID = uuid.NewString()
	}

	// 业务键与邮箱唯一
	var count int64
	s.db.Model(&models.Vendor{}).Where("unique_id = ?", uniqueID).Count(&count)
	if count > 0 {
		return nil, apperrors.NewConflict("厂商编号已存在")
	}
	s.db.Model(&models.Vendor{}).Where("email = ?", params.Email).Count(&count)
	if count > 0 {
		return nil, apperrors.NewConflict("邮箱已被使用")
	}

	vendor := &models.Vendor{
		UniqueID: uniqueID,
		Name:     params.Name,
		Email:    params.Email,
		Phone:    params.Phone,
		Address:  params.Address,
		Level:    params.Level,
		Status:   models.VendorStatusActive,
	}
	if params.Region != "" {
		region := strings.ToUpper(params.Region)
		vendor.Region = &region
	}
	if params.City != "" {
		city := params.City
		vendor.City = &city
	}
	if params.Locality != "" {
		locality := params.Locality
		vendor.Locality = &locality
	}
	if parent != nil {
		parentID := parent.UniqueID
		vendor.ParentID = &parentID
	}

	if err := vendor.SetPassword(params.Password); err != nil {
		return nil, fmt.Errorf("密码加密失败: %v", err)
	}

	if err := s.db.Create(vendor).Error; err != nil {
		return nil, err
	}
	return vendor, nil
}

// GetByUniqueID 按业务键查询厂商
func (s *VendorService) GetByUniqueID(uniqueID string) (*models.Vendor, error) {
	var vendor models.Vendor
	err := s.db.Where("unique_id = ?", uniqueID).First(&vendor).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.NewNotFound("厂商不存在")
	}
	if err != nil {
		return nil, err
	}
	return &vendor, nil
}

// GetChildren 查询直接下级厂商
func (s *VendorService) GetChildren(parentUniqueID string) ([]*models.Vendor, error) {
	var children []*models.Vendor
	err := s.db.Where("parent_id = ?", parentUniqueID).Find(&children).Error
	return children, err
}

// GetByLevelAndRegion 按层级和区域查询厂商
func (s *VendorService) GetByLevelAndRegion(level int, region string) ([]*models.Vendor, error) {
	var vendors []*models.Vendor
	err := s.db.Where("level = ? AND region = ?", level, strings.ToUpper(region)).Find(&vendors).Error
	return vendors, err
}

// GetWithPage 分页查询厂商，支持按层级和状态筛选
func (s *VendorService) GetWithPage(level int, status string, page, pageSize int) ([]*models.Vendor, int64, error) {
	var vendors []*models.Vendor
	var total int64

	query := s.db.Model(&models.Vendor{})
	if level > 0 {
		query = query.Where("level = ?", level)
	}
	if status != "" {
		query = query.Where("status = ?", status)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	err := query.Offset(offset).Limit(pageSize).Find(&vendors).Error
	if err != nil {
		return nil, 0, err
	}

	return vendors, total, nil
}

// ========== 状态流转方法 ==========

// UpdateStatus 厂商状态流转（本域内厂商从不硬删除）
func (s *VendorService) UpdateStatus(uniqueID, status string) (*models.Vendor, error) {
	if !models.IsValidVendorStatus(status) {
		return nil, apperrors.NewInvalidArgument("状态只能是ACTIVE、INACTIVE或SUSPENDED")
	}
	vendor, err := s.GetByUniqueID(uniqueID)
	if err != nil {
		return nil, err
	}
	vendor.Status = status
	if err := s.db.Save(vendor).Error; err != nil {
		return nil, err
	}
	return vendor, nil
}

// ========== 认证方法 ==========

// LoginResult 登录结果
type LoginResult struct {
	Token  string         `json:"token"`
	Vendor *models.Vendor `json:"vendor"`
}

// Login 厂商登录：业务键+密码换取JWT
func (s *VendorService) Login(uniqueID, password string) (*LoginResult, error) {
	vendor, err := s.GetByUniqueID(uniqueID)
	if err != nil {
		return nil, err
	}

	if !vendor.CheckPassword(password) {
		return nil, apperrors.NewInvalidArgument("凭证无效")
	}

	if vendor.Status != models.VendorStatusActive {
		return nil, apperrors.NewForbidden("厂商已被停用")
	}

	token, err := jwt.GetJWTManager().GenerateToken(vendor.ID, vendor.UniqueID, vendor.Level)
	if err != nil {
		return nil, fmt.Errorf("生成令牌失败: %v", err)
	}

	return &LoginResult{Token: token, Vendor: vendor}, nil
}
