package handlers

import (
	"strconv"
	"time"

	"vhp/internal/models"
	"vhp/internal/services"
	"vhp/pkg/response"

	"github.com/gin-gonic/gin"
)

type CreateDelegationRequest struct {
	DelegatorID          string                      `json:"delegator_id" binding:"required"`
	DelegateID           string                      `json:"delegate_id" binding:"required"`
	DelegationType       string                      `json:"delegation_type" binding:"required"`
	DelegatedPermissions []string                    `json:"delegated_permissions" binding:"required,min=1,dive,capability"`
	Scope                models.DelegationScope      `json:"scope"`
	Conditions           models.DelegationConditions `json:"conditions"`
	StartDate            time.Time                   `json:"start_date" binding:"required"`
	EndDate              *time.Time                  `json:"end_date"`
}

type RevokeDelegationRequest struct {
	DelegatorID string `json:"delegator_id" binding:"required"`
}

type UpdateConditionsRequest struct {
	DelegatorID   string                      `json:"delegator_id" binding:"required"`
	NewConditions models.DelegationConditions `json:"new_conditions"`
}

// DelegationHandler 委托处理器
type DelegationHandler struct {
	service           *services.DelegationService
	permissionService *services.PermissionService
}

func NewDelegationHandler(service *services.DelegationService, permissionService *services.PermissionService) *DelegationHandler {
	return &DelegationHandler{
		service:           service,
		permissionService: permissionService,
	}
}

// Create 创建委托
//
// 先做委托资格校验（委托人角色必须可委托所有请求的能力），
// 再走委托引擎的创建校验序列。
func (h *DelegationHandler) Create(c *gin.Context) {
	var req CreateDelegationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "参数错误")
		return
	}

	if err := h.permissionService.ValidateDelegationRequest(req.DelegatorID, req.DelegateID, req.DelegatedPermissions); err != nil {
		response.HandleError(c, err, "委托校验失败")
		return
	}

	delegation, err := h.service.Create(services.CreateDelegationParams{
		DelegatorID:          req.DelegatorID,
		DelegateID:           req.DelegateID,
		DelegationType:       req.DelegationType,
		DelegatedPermissions: req.DelegatedPermissions,
		Scope:                req.Scope,
		Conditions:           req.Conditions,
		StartDate:            req.StartDate,
		EndDate:              req.EndDate,
	})
	if err != nil {
		response.HandleError(c, err, "创建委托失败")
		return
	}

	response.SuccessWithMessage(c, "委托创建成功", delegation)
}

// GetByID 查询委托详情
func (h *DelegationHandler) GetByID(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "ID格式错误")
		return
	}

	delegation, err := h.service.GetByID(uint(id))
	if err != nil {
		response.HandleError(c, err, "查询失败")
		return
	}
	response.Success(c, delegation)
}

// Revoke 撤销委托
func (h *DelegationHandler) Revoke(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "ID格式错误")
		return
	}

	var req RevokeDelegationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "参数错误")
		return
	}

	delegation, err := h.service.Revoke(uint(id), req.DelegatorID)
	if err != nil {
		response.HandleError(c, err, "撤销委托失败")
		return
	}
	response.SuccessWithMessage(c, "委托已撤销", delegation)
}

// UpdateConditions 更新委托条件
func (h *DelegationHandler) UpdateConditions(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "ID格式错误")
		return
	}

	var req UpdateConditionsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "参数错误")
		return
	}

	delegation, err := h.service.UpdateConditions(uint(id), req.DelegatorID, req.NewConditions)
	if err != nil {
		response.HandleError(c, err, "更新委托条件失败")
		return
	}
	response.SuccessWithMessage(c, "委托条件已更新", delegation)
}

// GetActive 查询厂商作为指定角色的当前有效委托
func (h *DelegationHandler) GetActive(c *gin.Context) {
	role := c.DefaultQuery("type", services.DelegationRoleDelegate)

	delegations, err := h.service.QueryActive(c.Param("unique_id"), role)
	if err != nil {
		response.HandleError(c, err, "查询失败")
		return
	}
	response.Success(c, delegations)
}

// GetHistory 查询厂商的委托历史
func (h *DelegationHandler) GetHistory(c *gin.Context) {
	direction := c.Query("type") // "given"、"received" 或留空查全部

	delegations, err := h.service.History(c.Param("unique_id"), direction)
	if err != nil {
		response.HandleError(c, err, "查询失败")
		return
	}
	response.Success(c, delegations)
}

// CanPerformAction 受托人能否对目标厂商执行指定动作
func (h *DelegationHandler) CanPerformAction(c *gin.Context) {
	delegateID := c.Param("unique_id")
	action := c.Query("action")
	targetVendorID := c.Query("target")
	if action == "" || targetVendorID == "" {
		response.BadRequest(c, "action和target为必填项")
		return
	}

	canPerform, err := h.service.CanPerformAction(delegateID, action, targetVendorID)
	if err != nil {
		response.HandleError(c, err, "权限检查失败")
		return
	}
	response.Success(c, gin.H{"can_perform": canPerform})
}
