package handlers

import (
	"strconv"

	"vhp/internal/models"
	"vhp/internal/services"
	"vhp/pkg/pagination"
	"vhp/pkg/response"

	"github.com/gin-gonic/gin"
)

type CreateRoleRequest struct {
	RoleName               string                   `json:"role_name" binding:"required"`
	Level                  int                      `json:"level" binding:"required,min=1,max=4"`
	Permissions            models.PermissionMatrix  `json:"permissions"`
	CanDelegate            bool                     `json:"can_delegate"`
	DelegatablePermissions models.DelegatableMatrix `json:"delegatable_permissions"`
}

// RoleHandler 角色模板处理器
type RoleHandler struct {
	service *services.RoleService
}

func NewRoleHandler(service *services.RoleService) *RoleHandler {
	return &RoleHandler{service: service}
}

// Create 创建角色模板
func (h *RoleHandler) Create(c *gin.Context) {
	var req CreateRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "参数错误")
		return
	}

	role, err := h.service.Create(req.RoleName, req.Level, req.Permissions, req.CanDelegate, req.DelegatablePermissions)
	if err != nil {
		response.HandleError(c, err, "创建角色失败")
		return
	}

	response.SuccessWithMessage(c, "角色创建成功", role)
}

// GetByLevel 按层级查询角色模板
func (h *RoleHandler) GetByLevel(c *gin.Context) {
	level, err := strconv.Atoi(c.Param("level"))
	if err != nil {
		response.BadRequest(c, "层级格式错误")
		return
	}

	role, err := h.service.GetByLevel(level)
	if err != nil {
		response.HandleError(c, err, "查询失败")
		return
	}
	response.Success(c, role)
}

// GetByName 按名称查询角色模板
func (h *RoleHandler) GetByName(c *gin.Context) {
	role, err := h.service.GetByName(c.Param("role_name"))
	if err != nil {
		response.HandleError(c, err, "查询失败")
		return
	}
	response.Success(c, role)
}

// GetAll 分页查询角色模板
func (h *RoleHandler) GetAll(c *gin.Context) {
	pageParams := pagination.ParsePageParams(c)

	level := 0
	if levelStr := c.Query("level"); levelStr != "" {
		parsed, err := strconv.Atoi(levelStr)
		if err != nil {
			response.BadRequest(c, "层级格式错误")
			return
		}
		level = parsed
	}

	roles, total, err := h.service.GetWithPage(level, pageParams.Page, pageParams.PageSize)
	if err != nil {
		response.HandleError(c, err, "查询失败")
		return
	}

	pageInfo := pagination.NewPageInfo(pageParams.Page, pageParams.PageSize, total)
	response.SuccessWithPage(c, roles, pageInfo)
}
