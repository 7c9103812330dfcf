package handlers

import (
	"vhp/internal/models"
	"vhp/internal/services"
	"vhp/pkg/response"

	"github.com/gin-gonic/gin"
)

type AssignDefaultRoleRequest struct {
	VendorUniqueID string `json:"vendor_unique_id" binding:"required"`
	Level          int    `json:"level" binding:"required,min=1,max=4"`
}

type UpdatePermissionsRequest struct {
	VendorUniqueID     string                  `json:"vendor_unique_id" binding:"required"`
	GrantedPermissions models.PermissionMatrix `json:"granted_permissions"`
}

type DeleteGrantRequest struct {
	VendorUniqueID string `json:"vendor_unique_id" binding:"required"`
}

type ValidateDelegationRequest struct {
	DelegatorID          string   `json:"delegator_id" binding:"required"`
	DelegateID           string   `json:"delegate_id" binding:"required"`
	DelegatedPermissions []string `json:"delegated_permissions" binding:"required,min=1"`
}

// PermissionHandler 权限解析处理器
type PermissionHandler struct {
	service *services.PermissionService
}

func NewPermissionHandler(service *services.PermissionService) *PermissionHandler {
	return &PermissionHandler{service: service}
}

// AssignDefaultRole 按层级分配默认权限
func (h *PermissionHandler) AssignDefaultRole(c *gin.Context) {
	var req AssignDefaultRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "参数错误")
		return
	}

	grant, err := h.service.AssignDefaultRole(req.VendorUniqueID, req.Level)
	if err != nil {
		response.HandleError(c, err, "设置默认权限失败")
		return
	}

	response.SuccessWithMessage(c, "默认权限设置成功", grant)
}

// GetGrant 查询厂商的默认权限授权
func (h *PermissionHandler) GetGrant(c *gin.Context) {
	uniqueID := c.Query("unique_id")
	if uniqueID == "" {
		response.BadRequest(c, "unique_id为必填项")
		return
	}

	grant, err := h.service.GetGrant(uniqueID)
	if err != nil {
		response.HandleError(c, err, "查询失败")
		return
	}
	response.Success(c, grant)
}

// UpdatePermissions 更新厂商的默认权限矩阵
func (h *PermissionHandler) UpdatePermissions(c *gin.Context) {
	var req UpdatePermissionsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "参数错误")
		return
	}

	changedBy := c.GetString("vendor_unique_id")

	grant, changes, err := h.service.UpdatePermissions(req.VendorUniqueID, changedBy, req.GrantedPermissions)
	if err != nil {
		response.HandleError(c, err, "更新权限失败")
		return
	}

	response.SuccessWithMessage(c, "权限更新成功", gin.H{
		"grant":           grant,
		"applied_changes": changes,
	})
}

// DeleteGrant 删除厂商的默认权限授权
func (h *PermissionHandler) DeleteGrant(c *gin.Context) {
	var req DeleteGrantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "参数错误")
		return
	}

	if err := h.service.DeleteGrant(req.VendorUniqueID); err != nil {
		response.HandleError(c, err, "删除失败")
		return
	}
	response.SuccessWithMessage(c, "权限删除成功", nil)
}

// GetEffectivePermissions 查询厂商的有效权限视图
func (h *PermissionHandler) GetEffectivePermissions(c *gin.Context) {
	effective, err := h.service.GetEffectivePermissions(c.Request.Context(), c.Param("unique_id"))
	if err != nil {
		response.HandleError(c, err, "查询失败")
		return
	}
	response.Success(c, effective)
}

// CheckPermission 点查询：厂商是否拥有指定能力
func (h *PermissionHandler) CheckPermission(c *gin.Context) {
	capabilityPath := c.Query("capability")
	if capabilityPath == "" {
		response.BadRequest(c, "capability为必填项")
		return
	}

	has, err := h.service.HasPermission(c.Request.Context(), c.Param("unique_id"), capabilityPath)
	if err != nil {
		response.HandleError(c, err, "权限检查失败")
		return
	}
	response.Success(c, gin.H{"has_permission": has})
}

// ValidateDelegation 预校验一次委托请求
func (h *PermissionHandler) ValidateDelegation(c *gin.Context) {
	var req ValidateDelegationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "参数错误")
		return
	}

	if err := h.service.ValidateDelegationRequest(req.DelegatorID, req.DelegateID, req.DelegatedPermissions); err != nil {
		response.HandleError(c, err, "校验失败")
		return
	}
	response.SuccessWithMessage(c, "委托请求合法", gin.H{"valid": true})
}
