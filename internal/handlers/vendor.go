package handlers

import (
	"strconv"

	"vhp/internal/services"
	"vhp/pkg/pagination"
	"vhp/pkg/response"

	"github.com/gin-gonic/gin"
)

type CreateVendorRequest struct {
	UniqueID string `json:"unique_id"`
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
	Phone    string `json:"phone"`
	Address  string `json:"address"`
	Level    int    `json:"level" binding:"required,min=1,max=4"`
	Region   string `json:"region" binding:"region"`
	City     string `json:"city"`
	Locality string `json:"locality"`
	ParentID string `json:"parent_id"`
}

type UpdateVendorStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// VendorHandler 厂商处理器
type VendorHandler struct {
	service *services.VendorService
}

func NewVendorHandler(service *services.VendorService) *VendorHandler {
	return &VendorHandler{service: service}
}

// Create 厂商入驻
func (h *VendorHandler) Create(c *gin.Context) {
	var req CreateVendorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "参数错误")
		return
	}

	vendor, err := h.service.Create(services.CreateVendorParams{
		UniqueID: req.UniqueID,
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Phone:    req.Phone,
		Address:  req.Address,
		Level:    req.Level,
		Region:   req.Region,
		City:     req.City,
		Locality: req.Locality,
		ParentID: req.ParentID,
	})
	if err != nil {
		response.HandleError(c, err, "创建厂商失败")
		return
	}

	response.SuccessWithMessage(c, "厂商创建成功", vendor)
}

// GetByUniqueID 按业务键查询厂商
func (h *VendorHandler) GetByUniqueID(c *gin.Context) {
	vendor, err := h.service.GetByUniqueID(c.Param("unique_id"))
	if err != nil {
		response.HandleError(c, err, "查询失败")
		return
	}
	response.Success(c, vendor)
}

// GetChildren 查询直接下级厂商
func (h *VendorHandler) GetChildren(c *gin.Context) {
	children, err := h.service.GetChildren(c.Param("unique_id"))
	if err != nil {
		response.HandleError(c, err, "查询失败")
		return
	}
	response.Success(c, children)
}

// GetAll 分页查询厂商
func (h *VendorHandler) GetAll(c *gin.Context) {
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
	status := c.Query("status")

	vendors, total, err := h.service.GetWithPage(level, status, pageParams.Page, pageParams.PageSize)
	if err != nil {
		response.HandleError(c, err, "查询失败")
		return
	}

	pageInfo := pagination.NewPageInfo(pageParams.Page, pageParams.PageSize, total)
	response.SuccessWithPage(c, vendors, pageInfo)
}

// UpdateStatus 厂商状态流转
func (h *VendorHandler) UpdateStatus(c *gin.Context) {
	var req UpdateVendorStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "参数错误")
		return
	}

	vendor, err := h.service.UpdateStatus(c.Param("unique_id"), req.Status)
	if err != nil {
		response.HandleError(c, err, "更新失败")
		return
	}
	response.Success(c, vendor)
}
